package driven

import (
	"context"
	"encoding/json"
)

// CompletionService is the contract to an external language model provider.
//
// Implementations may include:
//   - OpenAI (GPT-4, GPT-3.5)
//   - Anthropic (Claude)
//   - Ollama (local models)
type CompletionService interface {
	// Invoke sends role instructions plus task input to the provider and
	// returns raw JSON conforming to the requested shape. Implementations
	// are responsible for steering the model towards the shape (JSON mode,
	// schema-in-prompt) but NOT for validating field counts - that belongs
	// to the completion gateway.
	//
	// Failures of any kind (network, timeout, provider-side error,
	// unparseable output) must be wrapped with domain.ErrProvider.
	Invoke(ctx context.Context, instructions, input string, shape ShapeDescriptor) (json.RawMessage, error)

	// ModelName returns the name of the model being used.
	ModelName() string

	// Ping validates the service is reachable by making a lightweight
	// test request. Used at startup to verify connectivity.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// FieldType enumerates the primitive shapes a completion field can take.
type FieldType string

const (
	// FieldText is a plain string field.
	FieldText FieldType = "text"

	// FieldTextArray is an array of strings.
	FieldTextArray FieldType = "text_array"

	// FieldObjectArray is an array of objects whose members are
	// described by the field's Items.
	FieldObjectArray FieldType = "object_array"
)

// ShapeField describes one named field of an expected output shape.
type ShapeField struct {
	// Name is the JSON key of the field.
	Name string

	// Type is the field's kind.
	Type FieldType

	// Description tells the model what the field should contain.
	Description string

	// Items describes the members of each object when Type is
	// FieldObjectArray. Nested arrays are not supported.
	Items []ShapeField
}

// ShapeDescriptor declares the structured output expected from a
// completion call. Providers render it into whatever structured-output
// mechanism they support.
type ShapeDescriptor struct {
	// Name labels the shape (used in span names and error messages).
	Name string

	// Fields are the required top-level fields.
	Fields []ShapeField
}
