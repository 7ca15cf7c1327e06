// Package llm provides interfaces and implementations for generative AI
// completion clients used by the insights and chat services.
package llm

import "context"

// Client defines the interface for generating text completions.
type Client interface {
	// Complete sends a prompt and returns the raw completion text.
	Complete(ctx context.Context, prompt string) (string, error)
}
