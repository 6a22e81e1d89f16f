package generator

import "context"

// Generator turns a prompt into free-form text.
//
// Implementations surface upstream failures verbatim in the error message; classification
// into user-facing kinds happens in the roadmaps service.
type Generator interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}
