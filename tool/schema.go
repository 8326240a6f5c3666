package tool

import (
	"encoding/json"

	"github.com/invopop/jsonschema"
)

// ReflectSchema derives a JSON Schema object from a Go struct type. Field
// names follow json tags; use jsonschema_description tags for per-field
// descriptions. The schema is inlined (no $ref/$defs indirection) so it can
// be handed to model providers verbatim.
func ReflectSchema[T any]() map[string]any {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}

	var v T
	schema := reflector.Reflect(v)

	raw, err := json.Marshal(schema)
	if err != nil {
		return map[string]any{"type": "object", "properties": map[string]any{}}
	}

	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		return map[string]any{"type": "object", "properties": map[string]any{}}
	}

	// Providers expect a bare object schema.
	delete(out, "$schema")
	delete(out, "$id")

	return out
}
