package report

import (
	"encoding/json"
	"io"
	"path/filepath"
	"strings"

	"github.com/dhamidi/tml/markup"
)

// SARIF 2.1.0 constants
const (
	SARIFSchemaURI = "https://raw.githubusercontent.com/oasis-tcs/sarif-spec/master/Schemata/sarif-schema-2.1.0.json"
	SARIFVersion   = "2.1.0"
	ToolName       = "tml"
)

// SARIF is the top-level SARIF log.
type SARIF struct {
	Schema  string `json:"$schema"`
	Version string `json:"version"`
	Runs    []Run  `json:"runs"`
}

type Run struct {
	Tool    Tool     `json:"tool"`
	Results []Result `json:"results"`
}

type Tool struct {
	Driver Driver `json:"driver"`
}

type Driver struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	Rules   []Rule `json:"rules,omitempty"`
}

type Rule struct {
	ID               string  `json:"id"`
	ShortDescription Message `json:"shortDescription"`
}

type Result struct {
	RuleID    string     `json:"ruleId"`
	Level     string     `json:"level"`
	Message   Message    `json:"message"`
	Locations []Location `json:"locations"`
}

type Message struct {
	Text string `json:"text"`
}

type Location struct {
	PhysicalLocation PhysicalLocation `json:"physicalLocation"`
}

type PhysicalLocation struct {
	ArtifactLocation ArtifactLocation `json:"artifactLocation"`
	Region           Region           `json:"region"`
}

type ArtifactLocation struct {
	URI string `json:"uri"`
}

// Region is 1-based; EndColumn is exclusive.
type Region struct {
	StartLine   int `json:"startLine"`
	StartColumn int `json:"startColumn"`
	EndLine     int `json:"endLine"`
	EndColumn   int `json:"endColumn"`
}

func NewSARIF(version string) *SARIF {
	return &SARIF{
		Schema:  SARIFSchemaURI,
		Version: SARIFVersion,
		Runs: []Run{
			{
				Tool:    Tool{Driver: Driver{Name: ToolName, Version: version, Rules: []Rule{}}},
				Results: []Result{},
			},
		},
	}
}

// AddFile adds a result per diagnostic and a rule per code not yet seen.
func (s *SARIF) AddFile(f FileDiagnostics) {
	run := &s.Runs[0]
	for _, d := range f.Diagnostics {
		s.addRule(d.Code)
		text := markup.DescribeCode(d.Code)
		if d.Subject != "" {
			text = d.Subject + ": " + text
		}
		run.Results = append(run.Results, Result{
			RuleID:  d.Code,
			Level:   sarifLevel(d.Severity),
			Message: Message{Text: text},
			Locations: []Location{{
				PhysicalLocation: PhysicalLocation{
					ArtifactLocation: ArtifactLocation{URI: fileURI(f.Path)},
					Region: Region{
						StartLine:   d.Span.Start.Line + 1,
						StartColumn: d.Span.Start.Column + 1,
						EndLine:     d.Span.End.Line + 1,
						EndColumn:   d.Span.End.Column + 1,
					},
				},
			}},
		})
	}
}

func (s *SARIF) addRule(code string) {
	driver := &s.Runs[0].Tool.Driver
	for _, r := range driver.Rules {
		if r.ID == code {
			return
		}
	}
	driver.Rules = append(driver.Rules, Rule{ID: code, ShortDescription: Message{Text: markup.DescribeCode(code)}})
}

// WriteTo writes the log as indented JSON.
func (s *SARIF) WriteTo(w io.Writer) (int64, error) {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return 0, err
	}
	n, err := w.Write(append(data, '\n'))
	return int64(n), err
}

func sarifLevel(sev markup.Severity) string {
	switch {
	case sev >= markup.SeverityError:
		return "error"
	case sev == markup.SeverityWarn:
		return "warning"
	}
	return "note"
}

// fileURI keeps relative paths relative and gives absolute ones a
// file:// scheme.
func fileURI(path string) string {
	if filepath.IsAbs(path) {
		path = filepath.ToSlash(path)
		if !strings.HasPrefix(path, "/") {
			path = "/" + path
		}
		return "file://" + path
	}
	return filepath.ToSlash(path)
}
