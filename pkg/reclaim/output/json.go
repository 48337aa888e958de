package output

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// JSONFormatter produces indented JSON output of the full report.
type JSONFormatter struct{}

// Format writes the report as JSON.
func (f *JSONFormatter) Format(w *bytes.Buffer, r *Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("encoding json: %w", err)
	}
	return nil
}

func init() {
	Register("json", func() Formatter {
		return &JSONFormatter{}
	})
}
