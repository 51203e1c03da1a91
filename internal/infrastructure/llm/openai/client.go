// Package openai provides an LLM implementation using any OpenAI-compatible
// chat completion endpoint, including a local Ollama instance.
package openai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/ersonp/codex-core/internal/infrastructure/config"
)

const systemPrompt = `You are an assistant answering questions about a document collection.
Answer using ONLY the context passages provided. If the context does not
contain the answer, say that you don't know. Be concise.`

// maxContextChars caps the assembled context so a query over large chunks
// stays inside the model's window.
const maxContextChars = 24000

// Client implements the LLM interface using the OpenAI chat API.
type Client struct {
	client      *openai.Client
	model       string
	temperature float32
}

// NewClient creates a new chat completion client. When cfg.BaseURL is set the
// client talks to that endpoint instead of api.openai.com; Ollama's
// OpenAI-compatible API (http://host:11434/v1) works unchanged.
func NewClient(cfg config.LLMConfig) (*Client, error) {
	if cfg.APIKey == "" && cfg.BaseURL == "" {
		return nil, errors.New("LLM API key is required")
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	model := "gpt-4o-mini"
	if cfg.Model != "" {
		model = cfg.Model
	}

	return &Client{
		client:      openai.NewClientWithConfig(clientCfg),
		model:       model,
		temperature: cfg.Temperature,
	}, nil
}

// Ping checks that the chat endpoint is reachable by listing models.
func (c *Client) Ping(ctx context.Context) error {
	if _, err := c.client.ListModels(ctx); err != nil {
		return fmt.Errorf("pinging llm endpoint: %w", err)
	}
	return nil
}

// Answer generates an answer to the question conditioned on the given
// context passages.
func (c *Client) Answer(ctx context.Context, question string, contexts []string) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: systemPrompt,
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: BuildPrompt(question, contexts),
			},
		},
		Temperature: c.temperature,
	})
	if err != nil {
		return "", fmt.Errorf("calling chat endpoint: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", errors.New("no response from chat endpoint")
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// BuildPrompt assembles the user message: numbered context passages followed
// by the question. Passages past maxContextChars are dropped in retrieval
// order, keeping the highest-ranked ones.
func BuildPrompt(question string, contexts []string) string {
	var b strings.Builder

	b.WriteString("Context:\n")
	total := 0
	for i, passage := range contexts {
		if total+len(passage) > maxContextChars && i > 0 {
			break
		}
		fmt.Fprintf(&b, "[%d] %s\n\n", i+1, passage)
		total += len(passage)
	}

	b.WriteString("Question: ")
	b.WriteString(question)

	return b.String()
}
