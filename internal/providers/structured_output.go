package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// maxStructuredRepairs is how many times a rejected reply is sent back to
// the model for correction.
const maxStructuredRepairs = 2

// ErrStructuredOutput is returned when a model never produced output
// matching the requested schema.
var ErrStructuredOutput = errors.New("invalid structured output")

// Schema is a JSON schema compiled once and used both to instruct the
// model and to validate its replies.
type Schema struct {
	name     string
	source   []byte
	compiled *jsonschema.Schema
}

// NewSchema compiles doc, any JSON-encodable schema document.
func NewSchema(name string, doc any) (*Schema, error) {
	source, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("schema %s: %w", name, err)
	}
	url := name + ".json"
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(url, bytes.NewReader(source)); err != nil {
		return nil, fmt.Errorf("schema %s: %w", name, err)
	}
	compiled, err := compiler.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("schema %s: %w", name, err)
	}
	return &Schema{name: name, source: source, compiled: compiled}, nil
}

func mustSchema(name string, doc any) *Schema {
	s, err := NewSchema(name, doc)
	if err != nil {
		panic(err)
	}
	return s
}

// Name returns the schema name.
func (s *Schema) Name() string {
	return s.name
}

// String returns the compact schema document.
func (s *Schema) String() string {
	return string(s.source)
}

// Validate checks a JSON document against the schema.
func (s *Schema) Validate(doc json.RawMessage) error {
	var v any
	if err := json.Unmarshal(doc, &v); err != nil {
		return fmt.Errorf("reply is not valid JSON: %w", err)
	}
	if err := s.compiled.Validate(v); err != nil {
		return fmt.Errorf("reply does not match the %s schema: %w", s.name, err)
	}
	return nil
}

// ChatStructured asks the model for a JSON object matching schema and
// returns it compacted. The schema is appended to the system prompt and
// rejected replies are answered with the validation error, up to
// maxStructuredRepairs times. Client errors are returned unwrapped.
// req is not modified.
func ChatStructured(ctx context.Context, client LLMClient, req *ChatRequest, schema *Schema) (json.RawMessage, error) {
	conv := *req
	conv.JSON = true
	conv.Messages = withSchema(req.Messages, schema)

	var lastErr error
	for i := 0; i <= maxStructuredRepairs; i++ {
		result, err := client.Chat(ctx, &conv)
		if err != nil {
			return nil, err
		}

		doc, err := decodeJSONReply(result.Content)
		if err == nil {
			err = schema.Validate(doc)
		}
		if err == nil {
			return doc, nil
		}

		lastErr = err
		conv.Messages = append(conv.Messages,
			Message{Role: RoleAssistant, Content: result.Content},
			Message{Role: RoleUser, Content: fmt.Sprintf(
				"That reply was rejected: %v\nReply again with only the corrected JSON object.", err)},
		)
	}
	return nil, fmt.Errorf("%w: %s: %v", ErrStructuredOutput, schema.name, lastErr)
}

// withSchema copies msgs and adds the reply format to the system prompt,
// inserting one if msgs has none.
func withSchema(msgs []Message, schema *Schema) []Message {
	instruction := "Reply with a single JSON object, and nothing else, that validates against this JSON schema:\n" + schema.String()

	out := make([]Message, 0, len(msgs)+1)
	if len(msgs) > 0 && msgs[0].Role == RoleSystem {
		out = append(out, Message{Role: RoleSystem, Content: msgs[0].Content + "\n\n" + instruction})
		return append(out, msgs[1:]...)
	}
	out = append(out, Message{Role: RoleSystem, Content: instruction})
	return append(out, msgs...)
}

// decodeJSONReply reads the first JSON value in a model reply. Text before
// it, such as a markdown fence, and anything after it are ignored.
func decodeJSONReply(content string) (json.RawMessage, error) {
	start := strings.IndexAny(content, "{[")
	if start < 0 {
		return nil, errors.New("reply contains no JSON")
	}

	var raw json.RawMessage
	if err := json.NewDecoder(strings.NewReader(content[start:])).Decode(&raw); err != nil {
		return nil, fmt.Errorf("reply is not valid JSON: %w", err)
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return nil, fmt.Errorf("reply is not valid JSON: %w", err)
	}
	return buf.Bytes(), nil
}
