package llm

import "encoding/json"

// SchemaValidator checks a JSON document against a schema. valid=false
// reports a schema violation in the document; a non-nil error reports a
// failure of the validator itself.
type SchemaValidator func(data []byte) (valid bool, err error)

// ResponseSchema constrains a structured completion. Exactly one of
// Validator or JSONSchema must be set: Validator performs local
// validation, JSONSchema is forwarded to the provider as a json_schema
// response format.
type ResponseSchema struct {
	Name       string
	Validator  SchemaValidator
	JSONSchema map[string]any
}

func (s ResponseSchema) isZero() bool {
	return s.Validator == nil && s.JSONSchema == nil
}

// responseFormat builds the response_format body field for this schema.
func (s ResponseSchema) responseFormat() map[string]any {
	if s.JSONSchema != nil {
		name := s.Name
		if name == "" {
			name = "response"
		}
		return map[string]any{
			"type": "json_schema",
			"json_schema": map[string]any{
				"name":   name,
				"strict": true,
				"schema": s.JSONSchema,
			},
		}
	}
	return map[string]any{"type": "json_object"}
}

// StructuredResponse is the result of a schema-constrained completion.
// Data holds the validated JSON document.
type StructuredResponse struct {
	AIResponse
	Data json.RawMessage
}
