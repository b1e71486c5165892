// Package llm provides helpers shared by the completion provider
// adapters: rendering a shape descriptor into model instructions and
// extracting the JSON object from a model reply.
package llm

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/custodia-labs/descry-cli/internal/core/domain"
	"github.com/custodia-labs/descry-cli/internal/core/ports/driven"
)

// RenderShapeInstructions describes the expected JSON output for
// providers without native structured output. The rendered block is
// appended to the role instructions.
func RenderShapeInstructions(shape driven.ShapeDescriptor) string {
	var b strings.Builder
	b.WriteString("Respond with a single JSON object and nothing else. Fields:\n")
	for _, f := range shape.Fields {
		renderField(&b, f, "")
	}
	return b.String()
}

func renderField(b *strings.Builder, f driven.ShapeField, indent string) {
	switch f.Type {
	case driven.FieldText:
		fmt.Fprintf(b, "%s- %q: string. %s\n", indent, f.Name, f.Description)
	case driven.FieldTextArray:
		fmt.Fprintf(b, "%s- %q: array of strings. %s\n", indent, f.Name, f.Description)
	case driven.FieldObjectArray:
		fmt.Fprintf(b, "%s- %q: array of objects. %s Each object has:\n", indent, f.Name, f.Description)
		for _, item := range f.Items {
			renderField(b, item, indent+"  ")
		}
	}
}

// ExtractJSON pulls the JSON object out of a model reply, tolerating
// surrounding prose and markdown code fences. Returns
// domain.ErrMalformedCompletion when no valid object can be found.
func ExtractJSON(reply string) (json.RawMessage, error) {
	reply = strings.TrimSpace(reply)

	if strings.HasPrefix(reply, "```") {
		reply = strings.TrimPrefix(reply, "```json")
		reply = strings.TrimPrefix(reply, "```")
		if i := strings.LastIndex(reply, "```"); i >= 0 {
			reply = reply[:i]
		}
		reply = strings.TrimSpace(reply)
	}

	start := strings.Index(reply, "{")
	end := strings.LastIndex(reply, "}")
	if start < 0 || end < start {
		return nil, fmt.Errorf("%w: no JSON object in reply", domain.ErrMalformedCompletion)
	}
	candidate := reply[start : end+1]

	if !json.Valid([]byte(candidate)) {
		return nil, fmt.Errorf("%w: reply is not valid JSON", domain.ErrMalformedCompletion)
	}

	return json.RawMessage(candidate), nil
}
