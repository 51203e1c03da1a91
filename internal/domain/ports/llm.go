package ports

import "context"

// LLM defines the interface for answer synthesis.
type LLM interface {
	// Answer generates an answer to the question conditioned on the given
	// context passages, in retrieval order.
	Answer(ctx context.Context, question string, contexts []string) (string, error)

	// Ping checks that the LLM endpoint is reachable.
	Ping(ctx context.Context) error
}
