package models

import (
	"fmt"
	"strings"
)

// ValueKind discriminates the variants of an ExtractedValue.
type ValueKind int

const (
	ValueAbsent ValueKind = iota
	ValueString
	ValueNumber
	ValueBool
	ValueList
	ValueObject
)

// String returns the kind name for logging.
func (k ValueKind) String() string {
	switch k {
	case ValueAbsent:
		return "absent"
	case ValueString:
		return "string"
	case ValueNumber:
		return "number"
	case ValueBool:
		return "bool"
	case ValueList:
		return "list"
	case ValueObject:
		return "object"
	}
	return "unknown"
}

// ExtractedValue is a schema-agnostic intermediate value recovered from LLM
// output. It is a closed variant so the coercer can switch exhaustively
// instead of type-asserting raw interface values.
type ExtractedValue struct {
	kind ValueKind
	str  string
	num  float64
	b    bool
	list []ExtractedValue
	obj  map[string]ExtractedValue
}

// Absent is the zero ExtractedValue.
var Absent = ExtractedValue{}

// StringValue builds a string variant.
func StringValue(s string) ExtractedValue { return ExtractedValue{kind: ValueString, str: s} }

// NumberValue builds a number variant.
func NumberValue(n float64) ExtractedValue { return ExtractedValue{kind: ValueNumber, num: n} }

// BoolValue builds a bool variant.
func BoolValue(b bool) ExtractedValue { return ExtractedValue{kind: ValueBool, b: b} }

// ListValue builds a list variant.
func ListValue(items []ExtractedValue) ExtractedValue {
	return ExtractedValue{kind: ValueList, list: items}
}

// ObjectValue builds an object variant.
func ObjectValue(fields map[string]ExtractedValue) ExtractedValue {
	return ExtractedValue{kind: ValueObject, obj: fields}
}

// ValueOf converts a decoded JSON value (as produced by encoding/json into
// interface{}) into the corresponding ExtractedValue variant. nil maps to
// Absent.
func ValueOf(v any) ExtractedValue {
	switch x := v.(type) {
	case nil:
		return Absent
	case string:
		return StringValue(x)
	case bool:
		return BoolValue(x)
	case float64:
		return NumberValue(x)
	case int:
		return NumberValue(float64(x))
	case int64:
		return NumberValue(float64(x))
	case []any:
		items := make([]ExtractedValue, 0, len(x))
		for _, item := range x {
			items = append(items, ValueOf(item))
		}
		return ListValue(items)
	case map[string]any:
		fields := make(map[string]ExtractedValue, len(x))
		for k, item := range x {
			fields[k] = ValueOf(item)
		}
		return ObjectValue(fields)
	default:
		// Unknown dynamic types degrade to their string rendering rather
		// than being dropped outright.
		return StringValue(fmt.Sprintf("%v", x))
	}
}

// Kind returns the variant discriminator.
func (v ExtractedValue) Kind() ValueKind { return v.kind }

// IsAbsent reports whether the value carries no data.
func (v ExtractedValue) IsAbsent() bool { return v.kind == ValueAbsent }

// AsString returns the string payload; ok is false for non-string variants.
func (v ExtractedValue) AsString() (string, bool) {
	if v.kind != ValueString {
		return "", false
	}
	return v.str, true
}

// AsNumber returns the numeric payload; ok is false for non-number variants.
func (v ExtractedValue) AsNumber() (float64, bool) {
	if v.kind != ValueNumber {
		return 0, false
	}
	return v.num, true
}

// AsBool returns the bool payload; ok is false for non-bool variants.
func (v ExtractedValue) AsBool() (bool, bool) {
	if v.kind != ValueBool {
		return false, false
	}
	return v.b, true
}

// AsList returns the list payload; ok is false for non-list variants.
func (v ExtractedValue) AsList() ([]ExtractedValue, bool) {
	if v.kind != ValueList {
		return nil, false
	}
	return v.list, true
}

// AsObject returns the object payload; ok is false for non-object variants.
func (v ExtractedValue) AsObject() (map[string]ExtractedValue, bool) {
	if v.kind != ValueObject {
		return nil, false
	}
	return v.obj, true
}

// Field looks up a named field on an object variant.
func (v ExtractedValue) Field(name string) (ExtractedValue, bool) {
	if v.kind != ValueObject {
		return Absent, false
	}
	f, ok := v.obj[name]
	return f, ok
}

// Text renders the value as plain text the way the store would display it:
// lists are joined with ", ", objects prefer a "name" field, numbers drop a
// trailing ".0".
func (v ExtractedValue) Text() string {
	switch v.kind {
	case ValueString:
		return v.str
	case ValueNumber:
		if v.num == float64(int64(v.num)) {
			return fmt.Sprintf("%d", int64(v.num))
		}
		return fmt.Sprintf("%g", v.num)
	case ValueBool:
		if v.b {
			return "true"
		}
		return "false"
	case ValueList:
		parts := make([]string, 0, len(v.list))
		for _, item := range v.list {
			if s := item.Text(); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, ", ")
	case ValueObject:
		if name, ok := v.obj["name"]; ok {
			return name.Text()
		}
		return ""
	}
	return ""
}

// Truthy reports whether the value coerces to boolean true. Mirrors the
// loose truthiness model LLM output tends to assume: empty strings, zero,
// false, empty containers and absent are all false.
func (v ExtractedValue) Truthy() bool {
	switch v.kind {
	case ValueString:
		s := strings.ToLower(strings.TrimSpace(v.str))
		return s != "" && s != "false" && s != "no" && s != "0"
	case ValueNumber:
		return v.num != 0
	case ValueBool:
		return v.b
	case ValueList:
		return len(v.list) > 0
	case ValueObject:
		return len(v.obj) > 0
	}
	return false
}
