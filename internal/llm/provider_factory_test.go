package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProviderFactory_ExplicitProvider(t *testing.T) {
	factory := NewProviderFactory("openai-key", "gemini-key")
	ctx := context.Background()

	t.Run("openai", func(t *testing.T) {
		provider, err := factory.GetProvider(ctx, "gemini-2.5-flash", "openai")
		require.NoError(t, err)
		assert.Equal(t, "openai", provider.Name())
	})

	t.Run("openai uppercase", func(t *testing.T) {
		provider, err := factory.GetProvider(ctx, "", "OpenAI")
		require.NoError(t, err)
		assert.Equal(t, "openai", provider.Name())
	})

	t.Run("unknown provider", func(t *testing.T) {
		provider, err := factory.GetProvider(ctx, "", "anthropic")
		require.Error(t, err)
		assert.Nil(t, provider)
		assert.Contains(t, err.Error(), "unknown provider")
	})
}

func TestProviderFactory_ModelRouting(t *testing.T) {
	factory := NewProviderFactory("openai-key", "gemini-key")
	ctx := context.Background()

	tests := []struct {
		model        string
		wantProvider string
	}{
		{"gpt-5-mini", "openai"},
		{"gpt-5-nano", "openai"},
		{"GPT-5", "openai"},
		{"gemini-2.5-flash", "gemini"},
		{"gemini-2.5-pro", "gemini"},
		{"something-else", "gemini"}, // unknown models default to gemini
	}

	for _, tt := range tests {
		t.Run(tt.model, func(t *testing.T) {
			provider, err := factory.GetProvider(ctx, tt.model, "")
			require.NoError(t, err)
			assert.Equal(t, tt.wantProvider, provider.Name())
		})
	}
}

func TestProviderFactory_MissingKeys(t *testing.T) {
	factory := NewProviderFactory("", "")
	ctx := context.Background()

	t.Run("openai key missing", func(t *testing.T) {
		provider, err := factory.GetProvider(ctx, "gpt-5-mini", "")
		require.Error(t, err)
		assert.Nil(t, provider)
		assert.True(t, errors.Is(err, ErrNotConfigured))
		assert.Contains(t, err.Error(), "OPENAI_API_KEY")
	})

	t.Run("gemini key missing", func(t *testing.T) {
		provider, err := factory.GetProvider(ctx, "gemini-2.5-flash", "")
		require.Error(t, err)
		assert.Nil(t, provider)
		assert.True(t, errors.Is(err, ErrNotConfigured))
		assert.Contains(t, err.Error(), "GEMINI_API_KEY")
	})

	t.Run("explicit provider with missing key", func(t *testing.T) {
		provider, err := factory.GetProvider(ctx, "", "openai")
		require.Error(t, err)
		assert.Nil(t, provider)
		assert.True(t, errors.Is(err, ErrNotConfigured))
	})
}
