package report

import (
	"encoding/json"
	"io"

	"github.com/dhamidi/tml/format"
	"github.com/dhamidi/tml/markup"
)

type JSONDiagnostic struct {
	Severity    string          `json:"severity"`
	Code        string          `json:"code"`
	Subject     string          `json:"subject,omitempty"`
	Description string          `json:"description"`
	Span        format.JSONSpan `json:"span"`
}

type jsonFile struct {
	Path        string           `json:"path"`
	Diagnostics []JSONDiagnostic `json:"diagnostics"`
}

// DiagnosticsToJSON converts diagnostics for encoding. The result is never nil.
func DiagnosticsToJSON(diags []markup.Diagnostic) []JSONDiagnostic {
	out := make([]JSONDiagnostic, 0, len(diags))
	for _, d := range diags {
		out = append(out, JSONDiagnostic{
			Severity:    d.Severity.String(),
			Code:        d.Code,
			Subject:     d.Subject,
			Description: markup.DescribeCode(d.Code),
			Span:        format.SpanToJSON(d.Span),
		})
	}
	return out
}

// WriteJSON writes one entry per file, with zero-based positions.
func WriteJSON(w io.Writer, files []FileDiagnostics) error {
	out := make([]jsonFile, 0, len(files))
	for _, f := range files {
		out = append(out, jsonFile{Path: f.Path, Diagnostics: DiagnosticsToJSON(f.Diagnostics)})
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(out)
}
