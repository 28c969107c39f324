package providers

import "encoding/json"

// stripKeys removes JSON-Schema metadata keys that several provider APIs
// reject or silently ignore on tool parameter schemas: $schema headers,
// additionalProperties, default values, examples, and human-facing
// titles. Schemas authored against the standard library's encoding of
// Go structs (or hand-written with documentation fields) commonly carry
// these; stripped recursively so nested object/array schemas are clean
// too.
var hygieneStripKeys = map[string]bool{
	"$schema":              true,
	"additionalProperties": true,
	"default":              true,
	"examples":             true,
	"title":                true,
}

// SanitizeSchema returns a copy of a JSON-Schema document with the keys
// in hygieneStripKeys removed at every nesting level.
func SanitizeSchema(schema json.RawMessage) json.RawMessage {
	var v any
	if err := json.Unmarshal(schema, &v); err != nil {
		return schema
	}
	cleaned := stripHygiene(v)
	out, err := json.Marshal(cleaned)
	if err != nil {
		return schema
	}
	return out
}

func stripHygiene(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, child := range val {
			if hygieneStripKeys[k] {
				continue
			}
			out[k] = stripHygiene(child)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, child := range val {
			out[i] = stripHygiene(child)
		}
		return out
	default:
		return val
	}
}
