package handlers

import (
	"fmt"

	"github.com/danielgtaylor/huma/v2"

	"github.com/follmon10/memo-ai/internal/llm"
	"github.com/follmon10/memo-ai/internal/models"
)

// schemaFromWire converts the request's schema map into the domain Schema,
// rejecting unknown property types up front so the pipeline never sees them.
func schemaFromWire(wire map[string]SchemaProperty) (models.Schema, error) {
	if len(wire) == 0 {
		return nil, huma.Error422UnprocessableEntity("schema must contain at least one property")
	}

	schema := make(models.Schema, len(wire))
	for name, def := range wire {
		t := models.PropertyType(def.Type)
		if !t.Valid() {
			return nil, huma.Error422UnprocessableEntity(fmt.Sprintf("property %q has unsupported type %q", name, def.Type))
		}
		schema[name] = models.PropertyDef{Type: t, Options: def.Options}
	}
	return schema, nil
}

// pipelineError maps pipeline errors to HTTP errors. The only error the
// pipeline propagates is the fatal no-model condition; anything else is a
// server bug.
func pipelineError(err error) error {
	if llm.IsNoAvailableModel(err) {
		return huma.Error503ServiceUnavailable("no model is available for this request; check provider API keys", err)
	}
	return huma.Error500InternalServerError("pipeline failure", err)
}
