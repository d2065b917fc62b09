package bio

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/bioforge-ai/bioforge-api/internal/llm"
	"github.com/bioforge-ai/bioforge-api/internal/logger"
	"github.com/bioforge-ai/bioforge-api/internal/metrics"
	"github.com/bioforge-ai/bioforge-api/internal/observability"
	"github.com/bioforge-ai/bioforge-api/internal/prompt"
)

// DefaultModel is used when a request does not name a model
const DefaultModel = "gemini-2.5-flash"

// AllowedModels lists the models a request may name
var AllowedModels = map[string]bool{
	// Google Gemini 2.5 models
	"gemini-2.5-flash": true,
	"gemini-2.5-pro":   true,
	// OpenAI GPT-5 models
	"gpt-5-mini": true,
	"gpt-5-nano": true,
}

// AllowedModelNames returns the allowlist in stable order
func AllowedModelNames() []string {
	names := make([]string, 0, len(AllowedModels))
	for name := range AllowedModels {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ProviderResolver yields a configured provider for a model/provider pair.
// *llm.ProviderFactory satisfies it; tests substitute stubs.
type ProviderResolver interface {
	GetProvider(ctx context.Context, model, providerName string) (llm.Provider, error)
}

// Request describes one biography generation
type Request struct {
	Info     string
	Style    prompt.Style
	Model    string
	Provider string // optional explicit provider override
}

// Result is a completed biography generation
type Result struct {
	Biography string
	Model     string
	Provider  string
	Style     prompt.Style
	Usage     llm.Usage
	Duration  time.Duration
	CostUSD   float64
}

// ServiceConfig wires the service's collaborators. Only Resolver is
// required; nil observability clients disable their concern.
type ServiceConfig struct {
	Resolver     ProviderResolver
	DefaultModel string
	Langfuse     *observability.LangfuseClient
	Sentry       *metrics.SentryMetrics
	CloudWatch   *metrics.Client
}

// Service orchestrates prompt construction, the provider call, and
// post-processing for biography generation. Everything it talks to is
// injected at construction time.
type Service struct {
	resolver     ProviderResolver
	builder      *prompt.BioPromptBuilder
	langfuse     *observability.LangfuseClient
	sentry       *metrics.SentryMetrics
	cloudwatch   *metrics.Client
	defaultModel string
}

// NewService creates a biography generation service
func NewService(cfg ServiceConfig) *Service {
	defaultModel := cfg.DefaultModel
	if defaultModel == "" {
		defaultModel = DefaultModel
	}

	return &Service{
		resolver:     cfg.Resolver,
		builder:      prompt.NewBioPromptBuilder(),
		langfuse:     cfg.Langfuse,
		sentry:       cfg.Sentry,
		cloudwatch:   cfg.CloudWatch,
		defaultModel: defaultModel,
	}
}

// generationPlan is a validated request with its provider and prompts resolved
type generationPlan struct {
	provider     llm.Provider
	model        string
	style        prompt.Style
	systemPrompt string
	userPrompt   string
}

// Generate produces biography copy for the given request.
// The response text is trimmed of surrounding whitespace before it is
// returned; no other post-processing happens here.
func (s *Service) Generate(ctx context.Context, req Request) (*Result, error) {
	plan, err := s.prepare(ctx, req)
	if err != nil {
		return nil, err
	}

	trace, gen := s.traceStart(ctx, plan)

	startTime := time.Now()
	resp, err := plan.provider.Generate(ctx, &llm.GenerationRequest{
		Model:        plan.model,
		SystemPrompt: plan.systemPrompt,
		UserPrompt:   plan.userPrompt,
	})
	duration := time.Since(startTime)

	s.recordDuration(ctx, plan.style, duration, err == nil)

	if err != nil {
		s.traceError(trace, gen, err)
		return nil, &ProviderError{Provider: plan.provider.Name(), Err: err}
	}

	result, err := s.finish(ctx, plan, resp, duration)
	if err != nil {
		s.traceError(trace, gen, err)
		return nil, err
	}

	s.traceFinish(trace, gen, plan, resp)
	return result, nil
}

// StreamGenerate mirrors Generate over the provider's streaming path.
// The callback receives interim events; the returned Result carries the
// final trimmed text.
func (s *Service) StreamGenerate(ctx context.Context, req Request, callback llm.StreamCallback) (*Result, error) {
	plan, err := s.prepare(ctx, req)
	if err != nil {
		return nil, err
	}

	trace, gen := s.traceStart(ctx, plan)

	startTime := time.Now()
	resp, err := plan.provider.GenerateStream(ctx, &llm.GenerationRequest{
		Model:        plan.model,
		SystemPrompt: plan.systemPrompt,
		UserPrompt:   plan.userPrompt,
	}, callback)
	duration := time.Since(startTime)

	s.recordDuration(ctx, plan.style, duration, err == nil)

	if err != nil {
		s.traceError(trace, gen, err)
		return nil, &ProviderError{Provider: plan.provider.Name(), Err: err}
	}

	result, err := s.finish(ctx, plan, resp, duration)
	if err != nil {
		s.traceError(trace, gen, err)
		return nil, err
	}

	s.traceFinish(trace, gen, plan, resp)
	return result, nil
}

// Validate runs every pre-dispatch check for req without calling the
// provider: the input guard, style and model validation, and credential
// resolution. A nil error means Generate would reach the provider.
func (s *Service) Validate(ctx context.Context, req Request) error {
	_, err := s.prepare(ctx, req)
	return err
}

// prepare validates the request and resolves its provider.
// The provider lookup happens before anything else so a missing credential
// surfaces here, with zero provider calls made.
func (s *Service) prepare(ctx context.Context, req Request) (*generationPlan, error) {
	if strings.TrimSpace(req.Info) == "" {
		return nil, ErrEmptyInput
	}

	style := req.Style
	if style == "" {
		style = prompt.StyleProfessional
	}
	if !style.Valid() {
		return nil, fmt.Errorf("unknown style: %q (allowed: professional, social)", style)
	}

	model := req.Model
	if model == "" {
		model = s.defaultModel
	}
	if !AllowedModels[model] {
		return nil, fmt.Errorf("invalid model %q (allowed: %s)", model, strings.Join(AllowedModelNames(), ", "))
	}

	provider, err := s.resolver.GetProvider(ctx, model, req.Provider)
	if err != nil {
		if errors.Is(err, llm.ErrNotConfigured) {
			return nil, &ConfigurationError{Err: err}
		}
		return nil, err
	}

	userPrompt, err := s.builder.Build(req.Info, style)
	if err != nil {
		return nil, err
	}

	systemPrompt, err := s.builder.System(style)
	if err != nil {
		return nil, err
	}

	return &generationPlan{
		provider:     provider,
		model:        model,
		style:        style,
		systemPrompt: systemPrompt,
		userPrompt:   userPrompt,
	}, nil
}

// finish trims the response text and records usage
func (s *Service) finish(ctx context.Context, plan *generationPlan, resp *llm.GenerationResponse, duration time.Duration) (*Result, error) {
	biography := strings.TrimSpace(resp.Text)
	if biography == "" {
		return nil, &ProviderError{
			Provider: plan.provider.Name(),
			Err:      errors.New("provider returned an empty biography"),
		}
	}

	s.recordUsage(ctx, plan.provider.Name(), plan.model, resp.Usage)
	logger.LogBioGeneration(ctx, plan.model, plan.style.String(), duration, resp.Usage.TotalTokens, nil)

	return &Result{
		Biography: biography,
		Model:     plan.model,
		Provider:  plan.provider.Name(),
		Style:     plan.style,
		Usage:     resp.Usage,
		Duration:  duration,
		CostUSD:   observability.CalculateCost(plan.model, resp.Usage),
	}, nil
}

// traceStart opens a Langfuse trace and generation span when enabled
func (s *Service) traceStart(ctx context.Context, plan *generationPlan) (*observability.Trace, *observability.Generation) {
	if s.langfuse == nil || !s.langfuse.IsEnabled() {
		return nil, nil
	}

	trace := s.langfuse.StartTrace(ctx, "bio.generate", map[string]interface{}{
		"model": plan.model,
		"style": plan.style.String(),
	})
	gen := trace.Generation("provider.generate", map[string]interface{}{
		"provider": plan.provider.Name(),
	})
	return trace, gen
}

// traceFinish records a successful generation in Langfuse
func (s *Service) traceFinish(trace *observability.Trace, gen *observability.Generation, plan *generationPlan, resp *llm.GenerationResponse) {
	if gen != nil {
		gen.LogGeneration(plan.model, plan.systemPrompt, plan.userPrompt, resp, map[string]interface{}{
			"style":    plan.style.String(),
			"provider": plan.provider.Name(),
		})
		gen.Finish()
	}
	if trace != nil {
		trace.Finish()
	}
}

// traceError records a failed generation in Langfuse
func (s *Service) traceError(trace *observability.Trace, gen *observability.Generation, err error) {
	if gen != nil {
		gen.SetLevel("ERROR")
		gen.Metadata(map[string]interface{}{"error": err.Error()})
		gen.Finish()
	}
	if trace != nil {
		trace.Finish()
	}
}

func (s *Service) recordDuration(ctx context.Context, style prompt.Style, duration time.Duration, success bool) {
	if s.sentry != nil {
		s.sentry.RecordGenerationDuration(ctx, style.String(), duration, success)
	}
	if s.cloudwatch != nil {
		s.cloudwatch.RecordGenerationDuration(style.String(), duration, success)
	}
}

func (s *Service) recordUsage(ctx context.Context, provider, model string, usage llm.Usage) {
	if s.sentry != nil {
		s.sentry.RecordTokenUsage(ctx, provider, model, usage.TotalTokens, usage.InputTokens, usage.OutputTokens)
	}
	if s.cloudwatch != nil {
		s.cloudwatch.RecordTokenUsage(provider, model, usage.TotalTokens, usage.InputTokens, usage.OutputTokens)
	}
}
