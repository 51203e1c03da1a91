// Package mocks provides mock implementations for testing.
package mocks

import "context"

// LLM is a mock implementation of ports.LLM.
type LLM struct {
	AnswerResult string
	AnswerErr    error
	PingErr      error

	// LastQuestion and LastContexts record the most recent Answer call.
	LastQuestion string
	LastContexts []string
}

// Answer returns the configured answer or error.
func (m *LLM) Answer(ctx context.Context, question string, contexts []string) (string, error) {
	m.LastQuestion = question
	m.LastContexts = contexts
	if m.AnswerErr != nil {
		return "", m.AnswerErr
	}
	return m.AnswerResult, nil
}

// Ping returns the configured error.
func (m *LLM) Ping(ctx context.Context) error {
	return m.PingErr
}
