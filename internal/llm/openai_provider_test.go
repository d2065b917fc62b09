package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOpenAIProvider(t *testing.T) {
	provider := NewOpenAIProvider("test-api-key")
	require.NotNil(t, provider)
	assert.Equal(t, "openai", provider.Name())
	assert.NotNil(t, provider.client)
}

func TestOpenAIProvider_BuildRequestParams(t *testing.T) {
	provider := NewOpenAIProvider("test-key")

	request := &GenerationRequest{
		Model:        "gpt-5-mini",
		SystemPrompt: "You are a biography writer.",
		UserPrompt:   "Write a biography for Ada.",
	}

	params := provider.buildRequestParams(request)
	assert.Equal(t, "gpt-5-mini", params.Model)
	assert.NotNil(t, params.Instructions.Value)
	assert.Equal(t, "You are a biography writer.", params.Instructions.Value)
	require.NotNil(t, params.Input.OfInputItemList)
	assert.Equal(t, 1, len(params.Input.OfInputItemList))
}

func TestOpenAIProvider_ReasoningEffort(t *testing.T) {
	provider := NewOpenAIProvider("test-key")

	tests := []struct {
		model         string
		wantReasoning bool
	}{
		{"gpt-5", true},
		{"gpt-5-mini", true},
		{"gpt-5-nano", true},
		{"gpt-4o", false},
	}

	for _, tt := range tests {
		t.Run(tt.model, func(t *testing.T) {
			request := &GenerationRequest{
				Model:        tt.model,
				SystemPrompt: "test",
				UserPrompt:   "test",
			}
			params := provider.buildRequestParams(request)
			if tt.wantReasoning {
				assert.NotEmpty(t, params.Reasoning.Effort)
			} else {
				assert.Empty(t, params.Reasoning.Effort)
			}
		})
	}
}
