package output

import (
	"bytes"
	"fmt"
)

// PlainFormatter produces unstyled tab-separated output suitable for
// piping into other tools.
type PlainFormatter struct{}

// Format writes one finding per line: size, rule, path.
func (f *PlainFormatter) Format(w *bytes.Buffer, r *Report) error {
	for _, finding := range r.Findings {
		fmt.Fprintf(w, "%d\t%s\t%s\n", finding.Size, finding.Rule, finding.Path)
	}
	return nil
}

func init() {
	Register("plain", func() Formatter {
		return &PlainFormatter{}
	})
}
