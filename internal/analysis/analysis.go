// Package analysis asks a language model to structure resumes and compare them
// against a job description.
package analysis

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"text/template"
)

// ErrInvalidResponse is returned when the model's reply is not the expected JSON object.
var ErrInvalidResponse = errors.New("language model returned invalid JSON")

//go:embed prompts/*.md
var promptFS embed.FS

var prompts = template.Must(template.New("prompts").
	Funcs(template.FuncMap{"inc": func(i int) int { return i + 1 }}).
	ParseFS(promptFS, "prompts/*.md"))

const previewLength = 300

func render(name string, data interface{}) (string, error) {
	var b strings.Builder
	if err := prompts.ExecuteTemplate(&b, name, data); err != nil {
		return "", fmt.Errorf("render prompt %s: %w", name, err)
	}
	return b.String(), nil
}

// decodeObject parses the first JSON object in a model reply, tolerating
// Markdown code fences and surrounding prose.
func decodeObject(reply string) (map[string]interface{}, error) {
	s := stripFences(reply)
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end < start {
		return nil, fmt.Errorf("%w: no JSON object in response", ErrInvalidResponse)
	}
	var obj map[string]interface{}
	if err := json.Unmarshal([]byte(s[start:end+1]), &obj); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	return obj, nil
}

func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:] // language tag
	}
	s = strings.TrimSpace(s)
	return strings.TrimSuffix(s, "```")
}

// stringValue renders a decoded JSON value as text. Arrays are joined with ", ".
func stringValue(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case []interface{}:
		return strings.Join(stringList(t), ", ")
	case map[string]interface{}:
		b, _ := json.Marshal(t)
		return string(b)
	default:
		return strings.TrimSpace(fmt.Sprint(t))
	}
}

// stringList normalizes an array or a delimited string into non-empty items.
func stringList(v interface{}) []string {
	var items []string
	switch t := v.(type) {
	case []interface{}:
		for _, item := range t {
			items = append(items, stringValue(item))
		}
	case string:
		items = strings.FieldsFunc(t, func(r rune) bool {
			return r == ',' || r == ';' || r == '\n'
		})
	case nil:
		return []string{}
	default:
		items = []string{stringValue(t)}
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
