package handlers

import (
	"context"
	"log/slog"

	"github.com/follmon10/memo-ai/internal/models"
	"github.com/follmon10/memo-ai/internal/service"
)

// AnalyzeHandler handles single-shot analysis requests.
type AnalyzeHandler struct {
	pipeline *service.Pipeline
	logger   *slog.Logger
}

// NewAnalyzeHandler creates a new analyze handler.
func NewAnalyzeHandler(pipeline *service.Pipeline, logger *slog.Logger) *AnalyzeHandler {
	return &AnalyzeHandler{pipeline: pipeline, logger: logger}
}

// AnalyzeInput represents an analyze request.
type AnalyzeInput struct {
	Body struct {
		Text         string                      `json:"text" minLength:"1" doc:"Input text to analyze"`
		Schema       map[string]SchemaProperty   `json:"schema" doc:"Target schema: property name to definition"`
		Examples     []map[string]any            `json:"examples,omitempty" doc:"Prior records as raw store property maps, used for few-shot grounding"`
		SystemPrompt string                      `json:"system_prompt,omitempty" doc:"Override for the default system prompt"`
		Model        string                      `json:"model,omitempty" doc:"Explicit model choice, provider-prefixed (e.g. gemini/gemini-2.5-flash)"`
		ImageData    string                      `json:"image_data,omitempty" doc:"Optional image as a base64 data URL"`
	}
}

// SchemaProperty is the wire form of one schema property definition.
type SchemaProperty struct {
	Type    string   `json:"type" enum:"title,rich_text,select,multi_select,status,date,checkbox,number,people,files" doc:"Store-native property type"`
	Options []string `json:"options,omitempty" doc:"Allowed option names for select-like types"`
}

// AnalyzeOutput represents an analyze response.
type AnalyzeOutput struct {
	Body PipelineResultBody
}

// PipelineResultBody is the shared response envelope for pipeline runs.
type PipelineResultBody struct {
	Properties     map[string]models.CoercedProperty `json:"properties" doc:"Coerced store-native properties"`
	Message        string                            `json:"message,omitempty" doc:"Assistant message (chat only)"`
	Usage          models.TokenUsage                 `json:"usage" doc:"Token usage for the LLM call"`
	CostUSD        float64                           `json:"cost_usd" doc:"Estimated cost in USD"`
	ModelSelection models.ModelSelection             `json:"model_selection" doc:"Which model was requested vs. used"`
	Degraded       bool                              `json:"degraded" doc:"True when the result is a fallback after retries were exhausted"`
	Recovered      bool                              `json:"recovered,omitempty" doc:"True when JSON had to be recovered from malformed output"`
	ErrorDetail    string                            `json:"error_detail,omitempty" doc:"Diagnostic detail for degraded results"`
}

// Analyze runs the analysis pipeline on the submitted text.
func (h *AnalyzeHandler) Analyze(ctx context.Context, input *AnalyzeInput) (*AnalyzeOutput, error) {
	schema, err := schemaFromWire(input.Body.Schema)
	if err != nil {
		return nil, err
	}

	result, err := h.pipeline.AnalyzeText(ctx, service.AnalyzeRequest{
		Text:         input.Body.Text,
		Schema:       schema,
		Examples:     service.SimplifyExamples(schema, input.Body.Examples),
		SystemPrompt: input.Body.SystemPrompt,
		Model:        input.Body.Model,
		ImageData:    input.Body.ImageData,
	})
	if err != nil {
		return nil, pipelineError(err)
	}

	return &AnalyzeOutput{Body: resultBody(result)}, nil
}

func resultBody(r *models.PipelineResult) PipelineResultBody {
	return PipelineResultBody{
		Properties:     r.Properties,
		Message:        r.Message,
		Usage:          r.Usage,
		CostUSD:        r.Cost,
		ModelSelection: r.Selection,
		Degraded:       r.Degraded,
		Recovered:      r.Recovered,
		ErrorDetail:    r.ErrorDetail,
	}
}
