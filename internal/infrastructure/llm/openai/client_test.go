package openai

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ersonp/codex-core/internal/infrastructure/config"
)

func TestNewClient(t *testing.T) {
	t.Run("requires key or base url", func(t *testing.T) {
		_, err := NewClient(config.LLMConfig{})
		require.Error(t, err)
	})

	t.Run("key alone is enough", func(t *testing.T) {
		c, err := NewClient(config.LLMConfig{APIKey: "sk-test"})
		require.NoError(t, err)
		assert.Equal(t, "gpt-4o-mini", c.model)
	})

	t.Run("base url alone is enough for local endpoints", func(t *testing.T) {
		c, err := NewClient(config.LLMConfig{BaseURL: "http://localhost:11434/v1", Model: "llama3"})
		require.NoError(t, err)
		assert.Equal(t, "llama3", c.model)
	})
}

func TestBuildPrompt(t *testing.T) {
	t.Run("numbers passages and appends question", func(t *testing.T) {
		prompt := BuildPrompt("what color?", []string{"the sky is blue", "grass is green"})

		assert.Contains(t, prompt, "[1] the sky is blue")
		assert.Contains(t, prompt, "[2] grass is green")
		assert.True(t, strings.HasSuffix(prompt, "Question: what color?"))
	})

	t.Run("no context", func(t *testing.T) {
		prompt := BuildPrompt("anything?", nil)

		assert.Contains(t, prompt, "Context:")
		assert.Contains(t, prompt, "Question: anything?")
	})

	t.Run("drops passages past the context cap", func(t *testing.T) {
		big := strings.Repeat("x", maxContextChars)
		prompt := BuildPrompt("q", []string{big, "dropped passage"})

		assert.Contains(t, prompt, "[1]")
		assert.NotContains(t, prompt, "dropped passage")
	})

	t.Run("first passage always kept even when oversized", func(t *testing.T) {
		big := strings.Repeat("x", maxContextChars+100)
		prompt := BuildPrompt("q", []string{big})

		assert.Contains(t, prompt, "[1]")
	})
}
