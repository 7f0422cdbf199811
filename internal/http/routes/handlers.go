// Package routes wires HTTP handlers to their paths in one place so the
// server and the OpenAPI output always agree on the surface.
package routes

import (
	"context"
	"log/slog"

	"github.com/follmon10/memo-ai/internal/http/handlers"
	"github.com/follmon10/memo-ai/internal/service"
)

// Handlers aggregates the handler set passed to Register.
type Handlers struct {
	HealthCheck func(ctx context.Context, input *struct{}) (*handlers.HealthCheckOutput, error)

	Analyze *handlers.AnalyzeHandler
	Chat    *handlers.ChatHandler
	Models  *handlers.ModelsHandler
}

// NewHandlers builds the handler set from the service layer.
func NewHandlers(svcs *service.Services, logger *slog.Logger) *Handlers {
	return &Handlers{
		HealthCheck: handlers.HealthCheck,
		Analyze:     handlers.NewAnalyzeHandler(svcs.Pipeline, logger),
		Chat:        handlers.NewChatHandler(svcs.Pipeline, logger),
		Models:      handlers.NewModelsHandler(svcs.Registry, logger),
	}
}
