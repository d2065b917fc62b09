package llm

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/responses"
	"github.com/openai/openai-go/shared"
)

const (
	// Provider name
	providerNameOpenAI = "openai"

	// Logging limits
	maxLogEventCountOpenAI = 5

	// Heartbeat interval for streaming (in events, keeps slow clients alive)
	heartbeatEventInterval = 50
)

// modelsWithReasoning lists models that accept a reasoning effort parameter.
// Biography copy does not benefit from deep reasoning, so requests stay at
// the lowest latency setting.
var modelsWithReasoning = map[string]bool{
	"gpt-5":      true,
	"gpt-5-mini": true,
	"gpt-5-nano": true,
}

// OpenAIProvider implements the Provider interface using OpenAI's Responses API
type OpenAIProvider struct {
	client *openai.Client
}

// NewOpenAIProvider creates a new OpenAI provider
func NewOpenAIProvider(apiKey string) *OpenAIProvider {
	client := openai.NewClient(option.WithAPIKey(apiKey))
	return &OpenAIProvider{
		client: &client,
	}
}

// Name returns the provider name
func (p *OpenAIProvider) Name() string {
	return providerNameOpenAI
}

// Generate implements non-streaming generation using OpenAI's Responses API
func (p *OpenAIProvider) Generate(ctx context.Context, request *GenerationRequest) (*GenerationResponse, error) {
	startTime := time.Now()
	log.Printf("✍️  OPENAI GENERATION REQUEST STARTED (Model: %s)", request.Model)

	// Start Sentry transaction
	transaction := sentry.StartTransaction(ctx, "openai.generate")
	defer transaction.Finish()

	transaction.SetTag("model", request.Model)
	transaction.SetTag("provider", "openai")

	params := p.buildRequestParams(request)

	// Call OpenAI API with Sentry span
	span := transaction.StartChild("openai.api_call")
	apiStartTime := time.Now()
	resp, err := p.client.Responses.New(ctx, params)
	apiDuration := time.Since(apiStartTime)
	span.Finish()

	if err != nil {
		log.Printf("❌ OPENAI REQUEST FAILED after %v: %v", apiDuration, err)
		transaction.SetTag("success", "false")
		sentry.CaptureException(err)
		return nil, fmt.Errorf("openai request failed: %w", err)
	}

	log.Printf("⏱️  OPENAI API CALL COMPLETED in %v", apiDuration)

	response, err := p.processResponse(resp, request.Model, startTime, transaction)
	if err != nil {
		transaction.SetTag("success", "false")
		sentry.CaptureException(err)
		return nil, err
	}

	transaction.SetTag("success", "true")
	return response, nil
}

// GenerateStream implements streaming generation using OpenAI's Responses API.
// It streams text chunks as they arrive from the LLM and calls the callback for each chunk.
func (p *OpenAIProvider) GenerateStream(
	ctx context.Context,
	request *GenerationRequest,
	callback StreamCallback,
) (*GenerationResponse, error) {
	startTime := time.Now()
	log.Printf("✍️  OPENAI STREAMING GENERATION REQUEST STARTED (Model: %s)", request.Model)

	// Start Sentry transaction
	transaction := sentry.StartTransaction(ctx, "openai.generate_stream")
	defer transaction.Finish()

	transaction.SetTag("model", request.Model)
	transaction.SetTag("provider", "openai")
	transaction.SetTag("streaming", "true")

	params := p.buildRequestParams(request)

	// Send initial event
	if callback != nil {
		_ = callback(StreamEvent{Type: "started", Message: "Starting generation..."})
	}

	// Call OpenAI streaming API
	span := transaction.StartChild("openai.api_stream")
	stream := p.client.Responses.NewStreaming(ctx, params)
	defer stream.Close()

	// Accumulate text and track usage
	var accumulatedText string
	var finalResponse *responses.Response
	eventCount := 0

	// Process stream events
	for stream.Next() {
		event := stream.Current()
		eventCount++

		if eventCount <= maxLogEventCountOpenAI {
			log.Printf("📥 Stream event #%d: type=%s", eventCount, event.Type)
		}

		switch event.Type {
		case "response.output_text.delta":
			// Text delta - this is what we stream to clients
			textDelta := event.AsResponseOutputTextDelta()
			delta := textDelta.Delta
			if delta != "" {
				accumulatedText += delta
				if callback != nil {
					_ = callback(StreamEvent{
						Type:    "text_delta",
						Message: delta,
						Data: map[string]interface{}{
							"accumulated_length": len(accumulatedText),
						},
					})
				}
			}

		case "response.output_text.done":
			log.Printf("✅ Text output complete: %d chars accumulated", len(accumulatedText))

		case "response.completed":
			completedEvent := event.AsResponseCompleted()
			finalResponse = &completedEvent.Response
			log.Printf("✅ Response completed")

		case "response.failed":
			failedEvent := event.AsResponseFailed()
			log.Printf("❌ Stream failed: %s", failedEvent.Response.Error.Message)
			span.Finish()
			transaction.SetTag("success", "false")
			return nil, fmt.Errorf("streaming failed: %s", failedEvent.Response.Error.Message)

		case "error":
			errorEvent := event.AsError()
			log.Printf("❌ Stream error: %s", errorEvent.Message)
			span.Finish()
			transaction.SetTag("success", "false")
			return nil, fmt.Errorf("stream error: %s", errorEvent.Message)

		default:
			if eventCount <= maxLogEventCountOpenAI {
				log.Printf("📋 Other event type: %s", event.Type)
			}
		}

		// Send periodic heartbeat
		if eventCount%heartbeatEventInterval == 0 {
			elapsed := time.Since(startTime)
			if callback != nil {
				_ = callback(StreamEvent{
					Type:    "heartbeat",
					Message: "Processing...",
					Data: map[string]interface{}{
						"events_received": eventCount,
						"elapsed_seconds": int(elapsed.Seconds()),
					},
				})
			}
		}
	}

	span.Finish()

	// Check for stream error
	if err := stream.Err(); err != nil {
		log.Printf("❌ Stream error: %v", err)
		transaction.SetTag("success", "false")
		sentry.CaptureException(err)
		return nil, fmt.Errorf("stream error: %w", err)
	}

	if accumulatedText == "" {
		transaction.SetTag("success", "false")
		return nil, fmt.Errorf("openai stream produced no output text")
	}

	duration := time.Since(startTime)
	log.Printf("✅ OPENAI STREAMING COMPLETE: %d events, %d chars, %v duration",
		eventCount, len(accumulatedText), duration)

	// Send completion event
	if callback != nil {
		_ = callback(StreamEvent{
			Type:    "completed",
			Message: "Generation complete",
			Data: map[string]interface{}{
				"total_length": len(accumulatedText),
				"event_count":  eventCount,
			},
		})
	}

	response := &GenerationResponse{
		Text:  accumulatedText,
		Model: request.Model,
	}

	// Extract usage from final response if available
	if finalResponse != nil {
		response.Usage = usageFromOpenAI(finalResponse.Usage)
		p.logUsageStats(finalResponse.Usage)
	}

	transaction.SetTag("success", "true")
	return response, nil
}

// buildRequestParams converts our request into Responses API parameters
func (p *OpenAIProvider) buildRequestParams(request *GenerationRequest) responses.ResponseNewParams {
	inputItems := responses.ResponseInputParam{
		responses.ResponseInputItemParamOfMessage(request.UserPrompt, responses.EasyInputMessageRoleUser),
	}

	params := responses.ResponseNewParams{
		Model: request.Model,
		Input: responses.ResponseNewParamsInputUnion{
			OfInputItemList: inputItems,
		},
		Instructions: openai.String(request.SystemPrompt),
	}

	// Only include the Reasoning parameter for models that support it
	if modelsWithReasoning[request.Model] {
		params.Reasoning = shared.ReasoningParam{
			Effort: responses.ReasoningEffortLow,
		}
	}

	return params
}

// processResponse converts a Responses API result to our GenerationResponse
func (p *OpenAIProvider) processResponse(
	resp *responses.Response,
	model string,
	startTime time.Time,
	transaction *sentry.Span,
) (*GenerationResponse, error) {
	span := transaction.StartChild("process_response")
	defer span.Finish()

	textOutput := resp.OutputText()
	log.Printf("📥 OPENAI RESPONSE: output_length=%d, output_items=%d", len(textOutput), len(resp.Output))

	if textOutput == "" {
		return nil, fmt.Errorf("openai response did not include any output text")
	}

	p.logUsageStats(resp.Usage)

	totalDuration := time.Since(startTime)
	log.Printf("✅ OPENAI GENERATION COMPLETED in %v (chars: %d)", totalDuration, len(textOutput))

	return &GenerationResponse{
		Text:  textOutput,
		Model: model,
		Usage: usageFromOpenAI(resp.Usage),
	}, nil
}

// logUsageStats logs token usage reported by OpenAI
func (p *OpenAIProvider) logUsageStats(usage responses.ResponseUsage) {
	reasoningTokens := int64(0)
	if usage.OutputTokensDetails.ReasoningTokens > 0 {
		reasoningTokens = usage.OutputTokensDetails.ReasoningTokens
	}
	log.Printf("📊 OPENAI USAGE: input=%d, output=%d, reasoning=%d, total=%d",
		usage.InputTokens, usage.OutputTokens,
		reasoningTokens, usage.TotalTokens)
}

// usageFromOpenAI maps Responses API usage to our Usage type
func usageFromOpenAI(usage responses.ResponseUsage) Usage {
	return Usage{
		InputTokens:  usage.InputTokens,
		OutputTokens: usage.OutputTokens,
		TotalTokens:  usage.TotalTokens,
	}
}
