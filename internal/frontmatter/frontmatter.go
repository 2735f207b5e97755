// Package frontmatter reads and writes the structured metadata header
// of a note. Fields are open-ended key/value pairs with heterogeneous
// value types, so they are modelled as map[string]any rather than a
// fixed struct.
package frontmatter

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/adrg/frontmatter"
	"gopkg.in/yaml.v3"
)

// Document is a note split into its metadata fields and Markdown body.
type Document struct {
	Fields map[string]any
	Body   string
}

// Parse splits raw note content into frontmatter fields and body.
// Malformed frontmatter never fails extraction: the whole content is
// returned as body with empty fields.
func Parse(data []byte) Document {
	var fields map[string]any
	body, err := frontmatter.Parse(bytes.NewReader(data), &fields)
	if err != nil {
		return Document{Fields: map[string]any{}, Body: string(data)}
	}
	if fields == nil {
		fields = map[string]any{}
	}
	return Document{Fields: fields, Body: string(body)}
}

// Serialize renders fields and body back into note content with YAML
// frontmatter fences. Empty fields produce the bare body.
func Serialize(fields map[string]any, body string) (string, error) {
	if len(fields) == 0 {
		return body, nil
	}
	block, err := yaml.Marshal(fields)
	if err != nil {
		return "", fmt.Errorf("frontmatter: marshal: %w", err)
	}
	var b strings.Builder
	b.WriteString("---\n")
	b.Write(block)
	b.WriteString("---\n")
	if body != "" {
		b.WriteString("\n")
		b.WriteString(strings.TrimLeft(body, "\n"))
	}
	return b.String(), nil
}
