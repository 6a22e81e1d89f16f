package contracttest

import (
	"context"
	"sync"
	"testing"

	"github.com/skillsprint/roadmap-api/internal/ports/out/generator"
)

type CleanupFunc = func()

// GeneratorFactory returns a Generator whose upstream answers every prompt with reply.
type GeneratorFactory func(t *testing.T, reply string) (generator.Generator, CleanupFunc)

// RunGenerator checks the behavior every generator.Generator adapter must share.
func RunGenerator(t *testing.T, newGen GeneratorFactory) {
	t.Helper()

	const reply = "```json\n{\"title\":\"Contract\"}\n```"

	t.Run("returns upstream text verbatim", func(t *testing.T) {
		g, cleanup := newGen(t, reply)
		if cleanup != nil {
			t.Cleanup(cleanup)
		}
		got, err := g.GenerateText(context.Background(), "Create a roadmap for Go in 7 days.")
		if err != nil {
			t.Fatalf("GenerateText: %v", err)
		}
		if got != reply {
			t.Fatalf("text: got %q want %q", got, reply)
		}
	})

	t.Run("canceled context fails", func(t *testing.T) {
		g, cleanup := newGen(t, reply)
		if cleanup != nil {
			t.Cleanup(cleanup)
		}
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		if _, err := g.GenerateText(ctx, "p"); err == nil {
			t.Fatalf("expected error for canceled context")
		}
	})

	t.Run("safe for concurrent use", func(t *testing.T) {
		g, cleanup := newGen(t, reply)
		if cleanup != nil {
			t.Cleanup(cleanup)
		}
		var wg sync.WaitGroup
		errs := make(chan error, 8)
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if _, err := g.GenerateText(context.Background(), "p"); err != nil {
					errs <- err
				}
			}()
		}
		wg.Wait()
		close(errs)
		for err := range errs {
			t.Fatalf("concurrent GenerateText: %v", err)
		}
	})
}
