package service

import (
	"io"
	"log/slog"
	"testing"

	"github.com/follmon10/memo-ai/internal/models"
)

func testCoercer() *Coercer {
	return NewCoercer(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestCoerce_NumberFromString(t *testing.T) {
	schema := models.Schema{"Priority": {Type: models.PropertyNumber}}

	got := testCoercer().Coerce(map[string]any{"Priority": "5"}, schema)

	prop, ok := got["Priority"]
	if !ok {
		t.Fatal("Priority missing from output")
	}
	if prop.Number == nil || *prop.Number != 5.0 {
		t.Errorf("Number = %v, want 5.0", prop.Number)
	}
}

func TestCoerce_NumberParseFailureDropsSilently(t *testing.T) {
	schema := models.Schema{"Priority": {Type: models.PropertyNumber}}

	got := testCoercer().Coerce(map[string]any{"Priority": "abc"}, schema)

	if len(got) != 0 {
		t.Errorf("output = %v, want empty map", got)
	}
}

func TestCoerce_UnknownKeysDropped(t *testing.T) {
	schema := models.Schema{"Name": {Type: models.PropertyTitle}}

	got := testCoercer().Coerce(map[string]any{
		"Name":     "Team sync",
		"Surprise": "value",
	}, schema)

	if len(got) != 1 {
		t.Errorf("output has %d keys, want 1", len(got))
	}
	if _, ok := got["Surprise"]; ok {
		t.Error("key absent from schema must be dropped")
	}
}

func TestCoerce_Select(t *testing.T) {
	schema := models.Schema{"Status": {Type: models.PropertySelect, Options: []string{"Todo", "Done"}}}

	tests := []struct {
		name  string
		input any
		want  string
		drop  bool
	}{
		{"plain string", "Done", "Done", false},
		{"name object", map[string]any{"name": "Todo"}, "Todo", false},
		{"empty string dropped", "", "", true},
		{"null dropped", nil, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := testCoercer().Coerce(map[string]any{"Status": tt.input}, schema)
			prop, ok := got["Status"]
			if tt.drop {
				if ok {
					t.Errorf("got %v, want dropped", prop)
				}
				return
			}
			if !ok || prop.Select == nil || prop.Select.Name != tt.want {
				t.Errorf("Select = %+v, want name %q", prop.Select, tt.want)
			}
		})
	}
}

func TestCoerce_MultiSelect(t *testing.T) {
	schema := models.Schema{"Tags": {Type: models.PropertyMultiSelect}}

	tests := []struct {
		name  string
		input any
		want  []string
	}{
		{"string list", []any{"a", "b"}, []string{"a", "b"}},
		{"scalar wrapped", "solo", []string{"solo"}},
		{"name objects", []any{map[string]any{"name": "x"}}, []string{"x"}},
		{"empty entries dropped", []any{"a", "", nil}, []string{"a"}},
		// An empty result still emits the key so the store clears the property.
		{"empty list kept", []any{}, []string{}},
		{"all entries unusable kept", []any{nil, ""}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := testCoercer().Coerce(map[string]any{"Tags": tt.input}, schema)
			prop, ok := got["Tags"]
			if !ok {
				t.Fatal("Tags missing from output")
			}
			if len(prop.MultiSelect) != len(tt.want) {
				t.Fatalf("MultiSelect has %d entries, want %d", len(prop.MultiSelect), len(tt.want))
			}
			for i, w := range tt.want {
				if prop.MultiSelect[i].Name != w {
					t.Errorf("entry %d = %q, want %q", i, prop.MultiSelect[i].Name, w)
				}
			}
		})
	}
}

func TestCoerce_Date(t *testing.T) {
	schema := models.Schema{"Due": {Type: models.PropertyDate}}

	got := testCoercer().Coerce(map[string]any{"Due": map[string]any{"start": "2026-09-01"}}, schema)
	prop, ok := got["Due"]
	if !ok || prop.Date == nil || prop.Date.Start != "2026-09-01" {
		t.Errorf("Date = %+v, want start 2026-09-01", prop.Date)
	}

	got = testCoercer().Coerce(map[string]any{"Due": "2026-09-02"}, schema)
	if prop := got["Due"]; prop.Date == nil || prop.Date.Start != "2026-09-02" {
		t.Errorf("Date = %+v, want start 2026-09-02", prop.Date)
	}
}

func TestCoerce_CheckboxAlwaysEmitted(t *testing.T) {
	schema := models.Schema{"Done": {Type: models.PropertyCheckbox}}

	tests := []struct {
		name  string
		input any
		want  bool
	}{
		{"true bool", true, true},
		{"false bool", false, false},
		{"yes string", "yes", true},
		{"no string", "no", false},
		{"null is false", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := testCoercer().Coerce(map[string]any{"Done": tt.input}, schema)
			prop, ok := got["Done"]
			if !ok {
				t.Fatal("checkbox must always be emitted")
			}
			if prop.Checkbox == nil || *prop.Checkbox != tt.want {
				t.Errorf("Checkbox = %v, want %v", prop.Checkbox, tt.want)
			}
		})
	}
}

func TestCoerce_TitleJoinsList(t *testing.T) {
	schema := models.Schema{"Name": {Type: models.PropertyTitle}}

	got := testCoercer().Coerce(map[string]any{"Name": []any{"Weekly", "sync"}}, schema)
	prop, ok := got["Name"]
	if !ok || len(prop.Title) == 0 {
		t.Fatal("Name missing from output")
	}
	if prop.Title[0].Text.Content != "Weekly, sync" {
		t.Errorf("title = %q, want joined list", prop.Title[0].Text.Content)
	}
}

func TestCoerce_PeopleAndFilesDropped(t *testing.T) {
	schema := models.Schema{
		"Owner":       {Type: models.PropertyPeople},
		"Attachments": {Type: models.PropertyFiles},
	}

	got := testCoercer().Coerce(map[string]any{
		"Owner":       "someone",
		"Attachments": []any{"a.txt"},
	}, schema)

	if len(got) != 0 {
		t.Errorf("output = %v, want empty (people/files unsupported)", got)
	}
}

func TestCoerce_OutputKeysSubsetOfSchema(t *testing.T) {
	schema := models.Schema{
		"Name": {Type: models.PropertyTitle},
		"Due":  {Type: models.PropertyDate},
	}
	input := map[string]any{
		"Name":  "x",
		"Due":   12345,
		"Extra": "y",
		"Other": nil,
	}

	got := testCoercer().Coerce(input, schema)
	for key := range got {
		if _, ok := schema[key]; !ok {
			t.Errorf("output key %q not in schema", key)
		}
	}
}

func TestEnsureTitle(t *testing.T) {
	schema := models.Schema{"Name": {Type: models.PropertyTitle}}

	props := map[string]models.CoercedProperty{}
	EnsureTitle(props, schema, "Buy milk\nand eggs")
	prop, ok := props["Name"]
	if !ok || len(prop.Title) == 0 {
		t.Fatal("title not synthesized")
	}
	if prop.Title[0].Text.Content != "Buy milk" {
		t.Errorf("title = %q, want first line", prop.Title[0].Text.Content)
	}

	// Existing title is left alone.
	props["Name"] = models.TitleProperty("Keep me")
	EnsureTitle(props, schema, "other text")
	if props["Name"].Title[0].Text.Content != "Keep me" {
		t.Error("existing title must not be overwritten")
	}
}

func TestFallbackTitle(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"first line", "Buy milk\nmore detail", "Buy milk"},
		{"skips blank lines", "\n\n  \nActual content", "Actual content"},
		{"empty input", "   ", "Untitled"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FallbackTitle(tt.in); got != tt.want {
				t.Errorf("FallbackTitle(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}

	long := make([]rune, 0, 150)
	for i := 0; i < 150; i++ {
		long = append(long, 'あ')
	}
	got := FallbackTitle(string(long))
	if len([]rune(got)) != maxFallbackTitleLength {
		t.Errorf("truncated length = %d runes, want %d", len([]rune(got)), maxFallbackTitleLength)
	}
}
