package llm

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/getsentry/sentry-go"
	"google.golang.org/genai"
)

const (
	providerNameGemini = "gemini"
	maxLogEventCount   = 5
	geminiUserRole     = "user"
)

// GeminiProvider implements the Provider interface using Google's Gemini API
type GeminiProvider struct {
	client *genai.Client
}

// NewGeminiProvider creates a new Gemini provider
func NewGeminiProvider(ctx context.Context, apiKey string) (*GeminiProvider, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiProvider{
		client: client,
	}, nil
}

// Name returns the provider name
func (p *GeminiProvider) Name() string {
	return providerNameGemini
}

// Generate implements non-streaming generation using Gemini's API
func (p *GeminiProvider) Generate(ctx context.Context, request *GenerationRequest) (*GenerationResponse, error) {
	startTime := time.Now()
	log.Printf("✍️  GEMINI GENERATION REQUEST STARTED (Model: %s)", request.Model)

	// Start Sentry transaction
	transaction := sentry.StartTransaction(ctx, "gemini.generate")
	defer transaction.Finish()

	transaction.SetTag("model", request.Model)
	transaction.SetTag("provider", "gemini")

	contents := p.buildGeminiContents(request.UserPrompt)
	config := p.buildGenerateConfig(request.SystemPrompt)

	log.Printf("🚨 GEMINI: About to call Gemini API with model='%s'", request.Model)

	// Call Gemini API
	span := transaction.StartChild("gemini.api_call")
	apiStartTime := time.Now()
	result, err := p.client.Models.GenerateContent(ctx, request.Model, contents, config)
	apiDuration := time.Since(apiStartTime)
	span.Finish()

	if err != nil {
		log.Printf("❌ GEMINI REQUEST FAILED after %v: %v", apiDuration, err)
		transaction.SetTag("success", "false")
		sentry.CaptureException(err)
		return nil, fmt.Errorf("gemini request failed: %w", err)
	}

	log.Printf("⏱️  GEMINI API CALL COMPLETED in %v", apiDuration)

	// Process response
	response, err := p.processGeminiResponse(result, request.Model, startTime, transaction)
	if err != nil {
		transaction.SetTag("success", "false")
		sentry.CaptureException(err)
		return nil, err
	}

	transaction.SetTag("success", "true")
	return response, nil
}

// GenerateStream implements streaming generation for Gemini
func (p *GeminiProvider) GenerateStream(
	ctx context.Context, request *GenerationRequest, callback StreamCallback,
) (*GenerationResponse, error) {
	startTime := time.Now()
	log.Printf("✍️  GEMINI STREAMING GENERATION REQUEST STARTED (Model: %s)", request.Model)

	// Start Sentry transaction
	transaction := sentry.StartTransaction(ctx, "gemini.generate_stream")
	defer transaction.Finish()

	transaction.SetTag("model", request.Model)
	transaction.SetTag("provider", "gemini")
	transaction.SetTag("streaming", "true")

	contents := p.buildGeminiContents(request.UserPrompt)
	config := p.buildGenerateConfig(request.SystemPrompt)

	log.Printf("🚨 GEMINI STREAMING: About to call Gemini streaming API with model='%s'", request.Model)

	// Call Gemini streaming API
	iter := p.client.Models.GenerateContentStream(ctx, request.Model, contents, config)

	// Process stream
	response, err := p.processGeminiStream(iter, request.Model, callback, startTime)
	if err != nil {
		transaction.SetTag("success", "false")
		sentry.CaptureException(err)
		return nil, err
	}

	transaction.SetTag("success", "true")
	log.Printf("✅ GEMINI STREAMING GENERATION COMPLETED in %v", time.Since(startTime))

	return response, nil
}

// buildGeminiContents wraps the user prompt in Gemini Content format
func (p *GeminiProvider) buildGeminiContents(userPrompt string) []*genai.Content {
	return []*genai.Content{
		{
			Role:  geminiUserRole,
			Parts: []*genai.Part{{Text: userPrompt}},
		},
	}
}

// buildGenerateConfig attaches the system instruction when present
func (p *GeminiProvider) buildGenerateConfig(systemPrompt string) *genai.GenerateContentConfig {
	config := &genai.GenerateContentConfig{}
	if systemPrompt != "" {
		config.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: systemPrompt}},
		}
	}
	return config
}

// processGeminiResponse converts a Gemini response to our GenerationResponse
func (p *GeminiProvider) processGeminiResponse(
	result *genai.GenerateContentResponse,
	model string,
	startTime time.Time,
	transaction *sentry.Span,
) (*GenerationResponse, error) {
	span := transaction.StartChild("process_response")
	defer span.Finish()

	if len(result.Candidates) == 0 {
		return nil, fmt.Errorf("no candidates in Gemini response")
	}

	candidate := result.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return nil, fmt.Errorf("no parts in Gemini response")
	}

	textOutput := candidate.Content.Parts[0].Text
	log.Printf("📥 GEMINI RESPONSE: output_length=%d", len(textOutput))

	if textOutput == "" {
		return nil, fmt.Errorf("gemini response did not include any output text")
	}

	response := &GenerationResponse{
		Text:  textOutput,
		Model: model,
		Usage: usageFromGemini(result.UsageMetadata),
	}

	totalDuration := time.Since(startTime)
	log.Printf("✅ GEMINI GENERATION COMPLETED in %v (chars: %d)", totalDuration, len(textOutput))

	return response, nil
}

// processGeminiStream accumulates streamed chunks into a full response
func (p *GeminiProvider) processGeminiStream(
	iter func(yield func(*genai.GenerateContentResponse, error) bool),
	model string,
	callback StreamCallback,
	startTime time.Time,
) (*GenerationResponse, error) {
	var accumulatedText string
	var finalUsage *genai.GenerateContentResponseUsageMetadata
	eventCount := 0

	// Send initial event
	_ = callback(StreamEvent{Type: "started", Message: "Generating biography..."})

	// Iterate over stream using Go 1.23+ iterator pattern
	for chunk, err := range iter {
		if err != nil {
			log.Printf("❌ GEMINI STREAMING ERROR: %v", err)
			return nil, fmt.Errorf("gemini stream error: %w", err)
		}

		eventCount++

		// Stream chunk text as deltas
		if len(chunk.Candidates) > 0 && chunk.Candidates[0].Content != nil && len(chunk.Candidates[0].Content.Parts) > 0 {
			text := chunk.Candidates[0].Content.Parts[0].Text
			if text != "" {
				accumulatedText += text
				_ = callback(StreamEvent{
					Type:    "text_delta",
					Message: text,
					Data: map[string]interface{}{
						"accumulated_length": len(accumulatedText),
					},
				})
			}
			if eventCount <= maxLogEventCount {
				log.Printf("✅ Gemini chunk #%d: +%d chars (total: %d)", eventCount, len(text), len(accumulatedText))
			}
		}

		// Save usage metadata
		if chunk.UsageMetadata != nil {
			finalUsage = chunk.UsageMetadata
		}
	}

	log.Printf("📦 Gemini stream complete - accumulated text: %d chars", len(accumulatedText))

	if accumulatedText == "" {
		return nil, fmt.Errorf("gemini stream produced no output text")
	}

	// Send completion event
	_ = callback(StreamEvent{
		Type:    "completed",
		Message: "Generation complete",
		Data: map[string]interface{}{
			"total_length": len(accumulatedText),
			"event_count":  eventCount,
		},
	})

	response := &GenerationResponse{
		Text:  accumulatedText,
		Model: model,
		Usage: usageFromGemini(finalUsage),
	}

	totalDuration := time.Since(startTime)
	log.Printf("⏱️  GEMINI STREAMING TIME: %v (chars: %d)", totalDuration, len(accumulatedText))

	return response, nil
}

// usageFromGemini maps Gemini usage metadata to our Usage type
func usageFromGemini(metadata *genai.GenerateContentResponseUsageMetadata) Usage {
	if metadata == nil {
		return Usage{}
	}
	log.Printf("📊 GEMINI USAGE: input=%d, output=%d, total=%d",
		metadata.PromptTokenCount,
		metadata.CandidatesTokenCount,
		metadata.TotalTokenCount)
	return Usage{
		InputTokens:  int64(metadata.PromptTokenCount),
		OutputTokens: int64(metadata.CandidatesTokenCount),
		TotalTokens:  int64(metadata.TotalTokenCount),
	}
}
