package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/follmon10/memo-ai/internal/config"
	"github.com/follmon10/memo-ai/internal/llm"
	"github.com/follmon10/memo-ai/internal/models"
)

// retryBaseDelay is the initial backoff delay, doubled per attempt.
const retryBaseDelay = 500 * time.Millisecond

// chatApologyMessage is the degraded chat reply after retries are exhausted.
const chatApologyMessage = "Sorry, I couldn't reach the AI service just now. Your message was not lost, please try again."

// chatAuthHintMessage replaces the apology when the failure is
// credential-related, since retrying won't help until keys are fixed.
const chatAuthHintMessage = "The AI provider rejected the configured API key. Please check the server's provider credentials."

// ImageGenerator produces an image for a prompt and returns it as a data
// URL. Generation mechanics live behind this contract.
type ImageGenerator interface {
	Generate(ctx context.Context, modelID, prompt string) (string, error)
}

// AnalyzeRequest is one analysis pipeline invocation.
type AnalyzeRequest struct {
	Text         string
	Schema       models.Schema
	Examples     []map[string]any
	SystemPrompt string
	Model        string
	ImageData    string
}

// ChatRequest is one chat pipeline invocation.
type ChatRequest struct {
	Text             string
	Schema           models.Schema
	History          []models.Message
	SystemPrompt     string
	ReferenceContext string
	ImageData        string
	Model            string
	GenerateImage    bool
}

// ChatResult extends the pipeline envelope with chat-specific fields.
type ChatResult struct {
	models.PipelineResult
	GeneratedImage string `json:"generated_image,omitempty"`
	RawResponse    string `json:"raw_response,omitempty"`
}

// Pipeline sequences selection, prompt construction, the transport call,
// extraction, and coercion. Its boundary contract is "always return a usable
// result": only ErrNoAvailableModel aborts, every other failure degrades.
type Pipeline struct {
	cfg        *config.Config
	selector   *llm.Selector
	transport  Transport
	prompts    *PromptBuilder
	coercer    *Coercer
	normalizer *Normalizer
	imageGen   ImageGenerator
	logger     *slog.Logger
	sleep      func(ctx context.Context, d time.Duration)
}

// NewPipeline wires the pipeline. imageGen may be nil when image generation
// is not configured.
func NewPipeline(cfg *config.Config, selector *llm.Selector, transport Transport, prompts *PromptBuilder, coercer *Coercer, normalizer *Normalizer, imageGen ImageGenerator, logger *slog.Logger) *Pipeline {
	return &Pipeline{
		cfg:        cfg,
		selector:   selector,
		transport:  transport,
		prompts:    prompts,
		coercer:    coercer,
		normalizer: normalizer,
		imageGen:   imageGen,
		logger:     logger,
		sleep:      sleepContext,
	}
}

// AnalyzeText runs the single-shot analysis pipeline. The returned result is
// degraded (title-only properties) rather than an error whenever the model
// call ultimately fails.
func (p *Pipeline) AnalyzeText(ctx context.Context, req AnalyzeRequest) (*models.PipelineResult, error) {
	log := p.logger.With("run_id", ulid.Make().String())

	kind := llm.InputText
	if req.ImageData != "" {
		kind = llm.InputVision
	}

	sel, err := p.selector.Select(ctx, kind, req.Model)
	if err != nil {
		return nil, err
	}
	selection := selectionOf(sel)

	prompt := p.prompts.BuildAnalysisPrompt(req.Text, req.Schema, req.Examples, req.SystemPrompt)
	messages := []models.Message{{Role: "user", Content: prompt, ImageData: req.ImageData}}

	call, err := p.callWithRetry(ctx, log, sel.ModelID, messages, true)
	if err != nil {
		log.Warn("analysis degraded after transport failure",
			"model", sel.ModelID,
			"error", err,
		)
		props := map[string]models.CoercedProperty{}
		EnsureTitle(props, req.Schema, req.Text)
		return &models.PipelineResult{
			Properties:  props,
			Selection:   selection,
			Degraded:    true,
			ErrorDetail: llm.GetUserMessage(err),
		}, nil
	}

	extraction := Extract(call.Content, ModeAnalysis)
	props := p.coercer.Coerce(extraction.Object, req.Schema)
	EnsureTitle(props, req.Schema, req.Text)

	return &models.PipelineResult{
		Properties: props,
		Usage:      call.Usage,
		Cost:       call.Cost,
		Selection:  selection,
		Recovered:  extraction.Recovered,
	}, nil
}

// Chat runs the multi-turn chat pipeline, or the image-generation path when
// the caller requested it.
func (p *Pipeline) Chat(ctx context.Context, req ChatRequest) (*ChatResult, error) {
	log := p.logger.With("run_id", ulid.Make().String())

	if req.GenerateImage {
		return p.chatGenerateImage(ctx, log, req)
	}

	kind := llm.InputText
	if req.ImageData != "" {
		kind = llm.InputVision
	}

	sel, err := p.selector.Select(ctx, kind, req.Model)
	if err != nil {
		return nil, err
	}
	selection := selectionOf(sel)

	messages := p.prompts.BuildChatMessages(req.Text, req.Schema, req.SystemPrompt, req.History, req.ReferenceContext, req.ImageData)

	call, err := p.callWithRetry(ctx, log, sel.ModelID, messages, true)
	if err != nil {
		log.Warn("chat degraded after transport failure",
			"model", sel.ModelID,
			"error", err,
		)
		msg := chatApologyMessage
		if llm.IsAuthError(err) {
			msg = chatAuthHintMessage
		}
		return &ChatResult{PipelineResult: models.PipelineResult{
			Message:     msg,
			Selection:   selection,
			Degraded:    true,
			ErrorDetail: llm.GetUserMessage(err),
		}}, nil
	}

	extraction := Extract(call.Content, ModeChat)
	payload := p.normalizer.Normalize(extraction.Object, req.Schema)
	if len(payload.Properties) > 0 {
		EnsureTitle(payload.Properties, req.Schema, req.Text)
	}

	return &ChatResult{
		PipelineResult: models.PipelineResult{
			Properties: payload.Properties,
			Message:    payload.Message,
			Usage:      call.Usage,
			Cost:       call.Cost,
			Selection:  selection,
			Recovered:  extraction.Recovered,
		},
		RawResponse: payload.RawResponse,
	}, nil
}

func (p *Pipeline) chatGenerateImage(ctx context.Context, log *slog.Logger, req ChatRequest) (*ChatResult, error) {
	sel, err := p.selector.Select(ctx, llm.InputImageGeneration, req.Model)
	if err != nil {
		return nil, err
	}
	selection := selectionOf(sel)

	if p.imageGen == nil {
		return &ChatResult{PipelineResult: models.PipelineResult{
			Message:     "Image generation is not configured on this server.",
			Selection:   selection,
			Degraded:    true,
			ErrorDetail: "no image generator configured",
		}}, nil
	}

	image, err := p.imageGen.Generate(ctx, sel.ModelID, req.Text)
	if err != nil {
		log.Warn("image generation failed",
			"model", sel.ModelID,
			"error", err,
		)
		return &ChatResult{PipelineResult: models.PipelineResult{
			Message:     chatApologyMessage,
			Selection:   selection,
			Degraded:    true,
			ErrorDetail: llm.GetUserMessage(err),
		}}, nil
	}

	return &ChatResult{
		PipelineResult: models.PipelineResult{
			Message:   "Here is the image you asked for.",
			Selection: selection,
		},
		GeneratedImage: image,
	}, nil
}

// callWithRetry wraps the transport call with the pipeline's retry policy:
// up to LLMMaxRetries additional attempts, exponential backoff, retries only
// for errors classified retryable. Extraction and coercion are deterministic
// and sit outside this loop.
func (p *Pipeline) callWithRetry(ctx context.Context, log *slog.Logger, modelID string, messages []models.Message, jsonMode bool) (*CallResult, error) {
	attempts := 1 + p.cfg.LLMMaxRetries
	delay := retryBaseDelay

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		call, err := p.transport.Send(ctx, modelID, messages, jsonMode)
		if err == nil {
			return call, nil
		}
		lastErr = err

		if attempt == attempts || !llm.IsRetryable(err) {
			break
		}
		if ctx.Err() != nil {
			break
		}

		log.Info("retrying LLM call",
			"model", modelID,
			"attempt", attempt,
			"delay_ms", delay.Milliseconds(),
			"error", err,
		)
		p.sleep(ctx, delay)
		delay *= 2
	}
	return nil, lastErr
}

func selectionOf(sel llm.Selection) models.ModelSelection {
	return models.ModelSelection{
		Requested:          sel.RequestedID,
		Used:               sel.ModelID,
		FellBack:           sel.FellBack,
		CapabilityMismatch: sel.CapabilityMismatch,
	}
}

// sleepContext sleeps for d or until the context is cancelled.
func sleepContext(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
