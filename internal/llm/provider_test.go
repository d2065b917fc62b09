package llm

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockProvider is a test implementation of the Provider interface
type MockProvider struct {
	name               string
	generateFunc       func(ctx context.Context, request *GenerationRequest) (*GenerationResponse, error)
	generateStreamFunc func(ctx context.Context, request *GenerationRequest, callback StreamCallback) (*GenerationResponse, error)
}

func (m *MockProvider) Name() string {
	return m.name
}

func (m *MockProvider) Generate(ctx context.Context, request *GenerationRequest) (*GenerationResponse, error) {
	if m.generateFunc != nil {
		return m.generateFunc(ctx, request)
	}
	return &GenerationResponse{}, nil
}

func (m *MockProvider) GenerateStream(
	ctx context.Context, request *GenerationRequest, callback StreamCallback,
) (*GenerationResponse, error) {
	if m.generateStreamFunc != nil {
		return m.generateStreamFunc(ctx, request, callback)
	}
	return &GenerationResponse{}, nil
}

func TestProviderInterface(t *testing.T) {
	mock := &MockProvider{
		name: "mock",
	}

	assert.Equal(t, "mock", mock.Name())
}

func TestGenerationRequest(t *testing.T) {
	req := &GenerationRequest{
		Model:        "test-model",
		SystemPrompt: "You write biographies.",
		UserPrompt:   "Write a biography for Ada.",
	}

	assert.Equal(t, "test-model", req.Model)
	assert.Equal(t, "You write biographies.", req.SystemPrompt)
	assert.Equal(t, "Write a biography for Ada.", req.UserPrompt)
}

func TestGenerationResponse(t *testing.T) {
	resp := &GenerationResponse{
		Text:  "Ada is a pioneering engineer.",
		Model: "gemini-2.5-flash",
		Usage: Usage{InputTokens: 120, OutputTokens: 48, TotalTokens: 168},
	}

	assert.Equal(t, "Ada is a pioneering engineer.", resp.Text)
	assert.Equal(t, int64(168), resp.Usage.TotalTokens)
}

func TestMockProviderGenerate(t *testing.T) {
	callCount := 0
	mock := &MockProvider{
		name: "test",
		generateFunc: func(_ context.Context, request *GenerationRequest) (*GenerationResponse, error) {
			callCount++
			require.Equal(t, "test-model", request.Model)
			return &GenerationResponse{
				Text: "A short biography.",
			}, nil
		},
	}

	req := &GenerationRequest{
		Model: "test-model",
	}

	resp, err := mock.Generate(context.Background(), req)
	require.NoError(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, 1, callCount)
	assert.Equal(t, "A short biography.", resp.Text)
}

func TestStreamCallback(t *testing.T) {
	callCount := 0
	callback := func(event StreamEvent) error {
		callCount++
		assert.NotEmpty(t, event.Type)
		return nil
	}

	err := callback(StreamEvent{Type: "test", Message: "test message"})
	assert.NoError(t, err)
	assert.Equal(t, 1, callCount)
}
