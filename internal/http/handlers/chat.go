package handlers

import (
	"context"
	"log/slog"

	"github.com/follmon10/memo-ai/internal/models"
	"github.com/follmon10/memo-ai/internal/service"
)

// ChatHandler handles multi-turn chat requests.
type ChatHandler struct {
	pipeline *service.Pipeline
	logger   *slog.Logger
}

// NewChatHandler creates a new chat handler.
func NewChatHandler(pipeline *service.Pipeline, logger *slog.Logger) *ChatHandler {
	return &ChatHandler{pipeline: pipeline, logger: logger}
}

// ChatMessage is one prior conversation turn.
type ChatMessage struct {
	Role    string `json:"role" enum:"user,assistant" doc:"Turn author"`
	Content string `json:"content" doc:"Turn text"`
}

// ChatInput represents a chat request.
type ChatInput struct {
	Body struct {
		Text             string                    `json:"text" minLength:"1" doc:"New user message"`
		Schema           map[string]SchemaProperty `json:"schema,omitempty" doc:"Target schema for save requests"`
		History          []ChatMessage             `json:"history,omitempty" doc:"Prior conversation turns, oldest first"`
		SystemPrompt     string                    `json:"system_prompt,omitempty" doc:"Override for the default system prompt"`
		ReferenceContext string                    `json:"reference_context,omitempty" doc:"Extra context shown to the model as a system message"`
		ImageData        string                    `json:"image_data,omitempty" doc:"Optional image as a base64 data URL"`
		Model            string                    `json:"model,omitempty" doc:"Explicit model choice, provider-prefixed"`
		GenerateImage    bool                      `json:"generate_image,omitempty" doc:"Generate an image from the message instead of chatting"`
	}
}

// ChatOutput represents a chat response.
type ChatOutput struct {
	Body ChatResponseBody
}

// ChatResponseBody extends the pipeline envelope with chat-only fields.
type ChatResponseBody struct {
	PipelineResultBody
	GeneratedImage string `json:"generated_image,omitempty" doc:"Generated image as a base64 data URL"`
	RawResponse    string `json:"raw_response,omitempty" doc:"Raw model output when extraction failed"`
}

// Chat runs the chat pipeline.
func (h *ChatHandler) Chat(ctx context.Context, input *ChatInput) (*ChatOutput, error) {
	var schema models.Schema
	if len(input.Body.Schema) > 0 {
		var err error
		schema, err = schemaFromWire(input.Body.Schema)
		if err != nil {
			return nil, err
		}
	}

	history := make([]models.Message, 0, len(input.Body.History))
	for _, m := range input.Body.History {
		history = append(history, models.Message{Role: m.Role, Content: m.Content})
	}

	result, err := h.pipeline.Chat(ctx, service.ChatRequest{
		Text:             input.Body.Text,
		Schema:           schema,
		History:          history,
		SystemPrompt:     input.Body.SystemPrompt,
		ReferenceContext: input.Body.ReferenceContext,
		ImageData:        input.Body.ImageData,
		Model:            input.Body.Model,
		GenerateImage:    input.Body.GenerateImage,
	})
	if err != nil {
		return nil, pipelineError(err)
	}

	return &ChatOutput{Body: ChatResponseBody{
		PipelineResultBody: resultBody(&result.PipelineResult),
		GeneratedImage:     result.GeneratedImage,
		RawResponse:        result.RawResponse,
	}}, nil
}
