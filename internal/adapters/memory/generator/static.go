package generator

import (
	"context"
	"sync"
)

// Static is an in-memory Generator returning a fixed response.
// It records every prompt it receives and is safe for concurrent use.
type Static struct {
	mu      sync.Mutex
	text    string
	err     error
	prompts []string
}

func NewStatic(text string) *Static {
	return &Static{text: text}
}

// NewFailing returns a Static whose every call fails with err.
func NewFailing(err error) *Static {
	return &Static{err: err}
}

// NewCanned returns a Static serving SampleRoadmap wrapped in a json code fence, the way
// hosted models usually answer. Used by GENERATOR_BACKEND=static for local runs.
func NewCanned() *Static {
	return NewStatic("```json\n" + SampleRoadmap + "\n```")
}

func (s *Static) GenerateText(ctx context.Context, prompt string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prompts = append(s.prompts, prompt)
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if s.err != nil {
		return "", s.err
	}
	return s.text, nil
}

// Calls reports how many times GenerateText was invoked.
func (s *Static) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.prompts)
}

// LastPrompt returns the most recent prompt, or "" when never called.
func (s *Static) LastPrompt() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.prompts) == 0 {
		return ""
	}
	return s.prompts[len(s.prompts)-1]
}

// SampleRoadmap is a schema-conformant roadmap document.
const SampleRoadmap = `{
  "title": "Rust in 30 Days",
  "overview": "From ownership basics to a small CLI tool.",
  "totalDays": 30,
  "phases": [
    {
      "name": "Foundations",
      "durationDays": 10,
      "goals": ["Understand ownership and borrowing"],
      "topics": [
        {
          "name": "Ownership",
          "resources": [{"name": "The Rust Book, ch. 4", "url": "https://doc.rust-lang.org/book/ch04-00-understanding-ownership.html"}]
        }
      ],
      "milestones": ["Finish rustlings move_semantics"]
    },
    {
      "name": "Building Things",
      "durationDays": 20,
      "goals": ["Ship a CLI"],
      "topics": [
        {
          "name": "Error handling",
          "resources": [{"name": "Rust by Example: Error handling", "url": "https://doc.rust-lang.org/rust-by-example/error.html"}]
        }
      ],
      "milestones": ["Publish a crate"]
    }
  ],
  "resources": {
    "websites": [{"name": "Rust Lang", "url": "https://www.rust-lang.org"}],
    "courses": [],
    "videos": [],
    "books": [{"name": "The Rust Programming Language", "url": "https://doc.rust-lang.org/book/"}],
    "githubProjects": [{"name": "rustlings", "url": "https://github.com/rust-lang/rustlings"}]
  },
  "projects": ["grep clone"],
  "successMetrics": ["Can explain the borrow checker's rules"]
}`
