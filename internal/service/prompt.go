package service

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/follmon10/memo-ai/internal/config"
	"github.com/follmon10/memo-ai/internal/models"
)

// maxFewShotExamples caps how many prior entries are rendered into a prompt.
const maxFewShotExamples = 3

// PromptBuilder renders schemas, few-shot examples, and conversation history
// into prompts and message lists.
type PromptBuilder struct {
	cfg    *config.Config
	logger *slog.Logger
	loc    *time.Location
	now    func() time.Time
}

// NewPromptBuilder creates a builder. An unparseable configured timezone
// falls back to UTC.
func NewPromptBuilder(cfg *config.Config, logger *slog.Logger) *PromptBuilder {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		logger.Warn("invalid timezone, using UTC", "timezone", cfg.Timezone, "error", err)
		loc = time.UTC
	}
	return &PromptBuilder{cfg: cfg, logger: logger, loc: loc, now: time.Now}
}

// BuildAnalysisPrompt constructs the single-shot analysis prompt: system
// instructions, a schema summary, recent examples, and the input text.
func (p *PromptBuilder) BuildAnalysisPrompt(text string, schema models.Schema, examples []map[string]any, systemPrompt string) string {
	if systemPrompt == "" {
		systemPrompt = p.cfg.DefaultSystemPrompt
	}

	var b strings.Builder
	b.Grow(len(text) + 1024)

	if systemPrompt != "" {
		b.WriteString(systemPrompt)
		b.WriteString("\n\n")
	}

	b.WriteString("Analyze the following input and fill in the database properties.\n\n")
	b.WriteString("Database Properties:\n")
	b.WriteString(summarizeSchema(schema))
	b.WriteString("\n")
	b.WriteString(renderExamples(examples))
	b.WriteString("\n")
	b.WriteString("Current time: ")
	b.WriteString(p.currentTime())
	b.WriteString("\n\nInput:\n")
	b.WriteString(text)
	b.WriteString("\n\nRespond with ONLY a valid JSON object mapping property names to values. No markdown formatting or explanation.")

	return b.String()
}

// chatOutputContract is the output instruction appended to every chat system
// prompt. The assistant converses naturally but its output must stay machine
// checkable.
const chatOutputContract = `Respond with a single JSON object with these fields:
- "message" (required): your conversational reply to the user
- "properties" (optional): a JSON object mapping database property names to values, ONLY when the user asks to save or record something; otherwise null

Do not wrap the JSON in markdown fences.`

// BuildChatMessages constructs the multi-turn chat message list: a system
// message with schema and output contract, optional reference context, prior
// history, then the user turn. imageData, when set, attaches to the final
// user message.
func (p *PromptBuilder) BuildChatMessages(text string, schema models.Schema, systemPrompt string, history []models.Message, referenceContext, imageData string) []models.Message {
	if systemPrompt == "" {
		systemPrompt = p.cfg.DefaultSystemPrompt
	}

	var sys strings.Builder
	if systemPrompt != "" {
		sys.WriteString(systemPrompt)
		sys.WriteString("\n\n")
	}
	sys.WriteString("Database Properties:\n")
	sys.WriteString(summarizeSchema(schema))
	sys.WriteString("\nCurrent time: ")
	sys.WriteString(p.currentTime())
	sys.WriteString("\n\n")
	sys.WriteString(chatOutputContract)

	msgs := make([]models.Message, 0, len(history)+3)
	msgs = append(msgs, models.Message{Role: "system", Content: sys.String()})

	if referenceContext != "" {
		msgs = append(msgs, models.Message{
			Role:    "system",
			Content: "Reference context:\n" + referenceContext,
		})
	}

	for _, h := range history {
		role := h.Role
		if role != "user" && role != "assistant" {
			continue
		}
		msgs = append(msgs, models.Message{Role: role, Content: h.Content})
	}

	msgs = append(msgs, models.Message{Role: "user", Content: text, ImageData: imageData})
	return msgs
}

// summarizeSchema renders one "name -> type" line per property, with the
// option set appended for select-like types. Sorted for stable prompts.
func summarizeSchema(schema models.Schema) string {
	names := make([]string, 0, len(schema))
	for name := range schema {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	for _, name := range names {
		def := schema[name]
		b.WriteString("- ")
		b.WriteString(name)
		b.WriteString(" -> ")
		b.WriteString(string(def.Type))
		if (def.Type == models.PropertySelect || def.Type == models.PropertyMultiSelect || def.Type == models.PropertyStatus) && len(def.Options) > 0 {
			b.WriteString(" (options: ")
			b.WriteString(strings.Join(def.Options, ", "))
			b.WriteString(")")
		}
		b.WriteString("\n")
	}
	return b.String()
}

// renderExamples renders up to maxFewShotExamples prior entries as JSON
// lines. The section header is always present so the model is not misled
// about data availability when there are no examples.
func renderExamples(examples []map[string]any) string {
	var b strings.Builder
	b.WriteString("Recent Examples:\n")
	if len(examples) == 0 {
		b.WriteString("(none)\n")
		return b.String()
	}

	n := len(examples)
	if n > maxFewShotExamples {
		n = maxFewShotExamples
	}
	for i := 0; i < n; i++ {
		line, err := json.Marshal(examples[i])
		if err != nil {
			continue
		}
		b.Write(line)
		b.WriteString("\n")
	}
	return b.String()
}

func (p *PromptBuilder) currentTime() string {
	return fmt.Sprintf("%s (%s)", p.now().In(p.loc).Format("2006-01-02 15:04"), p.loc.String())
}

// SimplifyExamples reduces raw store property maps to flat value maps for
// few-shot rendering, using the coercion-inverse extraction rules.
func SimplifyExamples(schema models.Schema, pages []map[string]any) []map[string]any {
	out := make([]map[string]any, 0, len(pages))
	for _, page := range pages {
		flat := make(map[string]any, len(page))
		for name, raw := range page {
			def, ok := schema[name]
			if !ok {
				continue
			}
			if v, ok := models.SimplifyStoreProperty(def, raw); ok {
				flat[name] = v
			}
		}
		if len(flat) > 0 {
			out = append(out, flat)
		}
	}
	return out
}
