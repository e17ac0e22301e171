package output

import (
	"encoding/json"
	"io"

	"gopkg.in/yaml.v3"
)

// Encode writes v as YAML when f is FormatYAML and as JSON otherwise.
func Encode(w io.Writer, f Format, v any) error {
	if f == FormatYAML {
		return WriteYAML(w, v)
	}
	return WriteJSON(w, v)
}

// WriteJSON writes v as indented JSON. Item names are written as-is, so
// "&" and "<" are not escaped.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

// WriteYAML writes v as YAML indented by two spaces.
func WriteYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		_ = enc.Close()
		return err
	}
	return enc.Close()
}
