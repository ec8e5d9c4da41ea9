package markup

import (
	"fmt"
	"slices"
	"sync"

	"github.com/tliron/commonlog"
)

// Diagnostic codes reported by the tokenizer and the tree builder.
const (
	ErrBadCharAfterLessThan            = "errBadCharAfterLessThan"
	ErrEofBeforeTagName                = "errEofBeforeTagName"
	ErrLtSlashGt                       = "errLtSlashGt"
	ErrBadCharAfterLtSlash             = "errBadCharAfterLtSlash"
	ErrQuestionMarkInTag               = "errQuestionMarkInTag"
	ErrBogusComment                    = "errBogusComment"
	ErrEofInTag                        = "errEofInTag"
	ErrDuplicateAttribute              = "errDuplicateAttribute"
	ErrBadCharInAttributeName          = "errBadCharInAttributeName"
	ErrEqualsSignBeforeAttributeName   = "errEqualsSignBeforeAttributeName"
	ErrAttributeValueMissing           = "errAttributeValueMissing"
	ErrBadCharInUnquotedAttributeValue = "errBadCharInUnquotedAttributeValue"
	ErrNoSpaceBetweenAttributes        = "errNoSpaceBetweenAttributes"
	ErrSlashNotFollowedByGt            = "errSlashNotFollowedByGt"
	ErrEndTagWithAttributes            = "errEndTagWithAttributes"
	ErrEndTagWithTrailingSolidus       = "errEndTagWithTrailingSolidus"
	ErrPrematureEndOfComment           = "errPrematureEndOfComment"
	ErrEofInComment                    = "errEofInComment"
	ErrEofInDoctype                    = "errEofInDoctype"
	ErrEofInCdata                      = "errEofInCdata"
	ErrSelfClosingNonVoid              = "errSelfClosingNonVoid"
	ErrEndTagForVoidElement            = "errEndTagForVoidElement"
	ErrStrayEndTag                     = "errStrayEndTag"
	ErrUnclosedElement                 = "errUnclosedElement"
)

var diagnosticDescriptions = map[string]string{
	ErrBadCharAfterLessThan:            "'<' is not followed by a tag name; treated as text",
	ErrEofBeforeTagName:                "end of input where a tag name was expected",
	ErrLtSlashGt:                       "'</>' has no tag name and is ignored",
	ErrBadCharAfterLtSlash:             "'</' is not followed by a tag name; treated as a comment",
	ErrQuestionMarkInTag:               "'<?' is treated as a comment",
	ErrBogusComment:                    "markup declaration is not a comment, doctype or CDATA section",
	ErrEofInTag:                        "end of input inside a tag; the tag is dropped",
	ErrDuplicateAttribute:              "duplicate attribute; the later one is dropped",
	ErrBadCharInAttributeName:          "quote or '<' inside an attribute name",
	ErrEqualsSignBeforeAttributeName:   "'=' where an attribute name was expected",
	ErrAttributeValueMissing:           "'=' is not followed by a value",
	ErrBadCharInUnquotedAttributeValue: "quote, '<', '=' or '`' inside an unquoted attribute value",
	ErrNoSpaceBetweenAttributes:        "missing whitespace between attributes",
	ErrSlashNotFollowedByGt:            "'/' inside a tag is not followed by '>'",
	ErrEndTagWithAttributes:            "end tag has attributes",
	ErrEndTagWithTrailingSolidus:       "end tag ends with '/>'",
	ErrPrematureEndOfComment:           "comment closed by '>' right after its opening",
	ErrEofInComment:                    "end of input inside a comment",
	ErrEofInDoctype:                    "end of input inside a doctype",
	ErrEofInCdata:                      "end of input inside a CDATA section",
	ErrSelfClosingNonVoid:              "element may not use self-closing syntax",
	ErrEndTagForVoidElement:            "void element has an end tag",
	ErrStrayEndTag:                     "end tag does not match an open element",
	ErrUnclosedElement:                 "element is not closed",
}

// DescribeCode returns a one-line explanation of a diagnostic code.
func DescribeCode(code string) string {
	if desc, ok := diagnosticDescriptions[code]; ok {
		return desc
	}
	return code
}

// Codes returns every diagnostic code the core can report.
func Codes() []string {
	codes := make([]string, 0, len(diagnosticDescriptions))
	for code := range diagnosticDescriptions {
		codes = append(codes, code)
	}
	slices.Sort(codes)
	return codes
}

type Severity int

const (
	SeverityDebug Severity = iota
	SeverityInfo
	SeverityWarn
	SeverityError
	SeverityFatal
)

var severityNames = map[Severity]string{
	SeverityDebug: "debug",
	SeverityInfo:  "info",
	SeverityWarn:  "warning",
	SeverityError: "error",
	SeverityFatal: "fatal",
}

func (s Severity) String() string {
	if name, ok := severityNames[s]; ok {
		return name
	}
	return "unknown"
}

// Diagnostic is a located report. Subject names the element or attribute
// involved, if any.
type Diagnostic struct {
	Severity Severity
	Code     string
	Span     Span
	Subject  string
}

func (d Diagnostic) String() string {
	s := fmt.Sprintf("%s: %s %s", d.Span.Start, d.Severity, d.Code)
	if d.Subject != "" {
		s += " (" + d.Subject + ")"
	}
	return s
}

// Diagnostics receives anomaly codes. Parsing always continues after a
// report.
type Diagnostics interface {
	Debug(message string)
	Info(message string)
	Warn(message string)
	Error(message string)
	Fatal(message string)
}

// Reporter is implemented by sinks that want the located record rather
// than the bare code.
type Reporter interface {
	Report(d Diagnostic)
}

func report(sink Diagnostics, d Diagnostic) {
	if sink == nil {
		return
	}
	if r, ok := sink.(Reporter); ok {
		r.Report(d)
		return
	}
	switch d.Severity {
	case SeverityDebug:
		sink.Debug(d.Code)
	case SeverityInfo:
		sink.Info(d.Code)
	case SeverityWarn:
		sink.Warn(d.Code)
	case SeverityError:
		sink.Error(d.Code)
	default:
		sink.Fatal(d.Code)
	}
}

// Discard drops every diagnostic.
var Discard Diagnostics = discard{}

type discard struct{}

func (discard) Debug(string) {}
func (discard) Info(string)  {}
func (discard) Warn(string)  {}
func (discard) Error(string) {}
func (discard) Fatal(string) {}

// Collector records diagnostics in report order. It is safe for
// concurrent use.
type Collector struct {
	mu    sync.Mutex
	items []Diagnostic
}

func (c *Collector) Report(d Diagnostic) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = append(c.items, d)
}

func (c *Collector) Debug(message string) { c.Report(Diagnostic{Severity: SeverityDebug, Code: message}) }
func (c *Collector) Info(message string)  { c.Report(Diagnostic{Severity: SeverityInfo, Code: message}) }
func (c *Collector) Warn(message string)  { c.Report(Diagnostic{Severity: SeverityWarn, Code: message}) }
func (c *Collector) Error(message string) { c.Report(Diagnostic{Severity: SeverityError, Code: message}) }
func (c *Collector) Fatal(message string) { c.Report(Diagnostic{Severity: SeverityFatal, Code: message}) }

// Diagnostics returns a copy of the recorded diagnostics.
func (c *Collector) Diagnostics() []Diagnostic {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Diagnostic(nil), c.items...)
}

// Codes returns the recorded codes in order.
func (c *Collector) Codes() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	var codes []string
	for _, d := range c.items {
		codes = append(codes, d.Code)
	}
	return codes
}

// Has reports whether code was recorded at least once.
func (c *Collector) Has(code string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, d := range c.items {
		if d.Code == code {
			return true
		}
	}
	return false
}

// LogSink forwards diagnostics to a commonlog logger. Fatal maps to
// Critical.
type LogSink struct {
	Log  commonlog.Logger
	File string
}

func NewLogSink(name string) *LogSink {
	return &LogSink{Log: commonlog.GetLogger(name)}
}

func (s *LogSink) Debug(message string) { s.Log.Debug(message) }
func (s *LogSink) Info(message string)  { s.Log.Info(message) }
func (s *LogSink) Warn(message string)  { s.Log.Warning(message) }
func (s *LogSink) Error(message string) { s.Log.Error(message) }
func (s *LogSink) Fatal(message string) { s.Log.Critical(message) }

func (s *LogSink) Report(d Diagnostic) {
	kv := []any{"line", d.Span.Start.Line + 1, "column", d.Span.Start.Column + 1}
	if s.File != "" {
		kv = append(kv, "file", s.File)
	}
	if d.Subject != "" {
		kv = append(kv, "subject", d.Subject)
	}
	switch d.Severity {
	case SeverityDebug:
		s.Log.Debug(d.Code, kv...)
	case SeverityInfo:
		s.Log.Info(d.Code, kv...)
	case SeverityWarn:
		s.Log.Warning(d.Code, kv...)
	case SeverityError:
		s.Log.Error(d.Code, kv...)
	default:
		s.Log.Critical(d.Code, kv...)
	}
}

// Tee returns a sink that forwards every diagnostic to each of sinks.
func Tee(sinks ...Diagnostics) Diagnostics {
	return tee(sinks)
}

type tee []Diagnostics

func (t tee) Report(d Diagnostic) {
	for _, sink := range t {
		report(sink, d)
	}
}

func (t tee) Debug(message string) { t.Report(Diagnostic{Severity: SeverityDebug, Code: message}) }
func (t tee) Info(message string)  { t.Report(Diagnostic{Severity: SeverityInfo, Code: message}) }
func (t tee) Warn(message string)  { t.Report(Diagnostic{Severity: SeverityWarn, Code: message}) }
func (t tee) Error(message string) { t.Report(Diagnostic{Severity: SeverityError, Code: message}) }
func (t tee) Fatal(message string) { t.Report(Diagnostic{Severity: SeverityFatal, Code: message}) }

// HasErrors reports whether any diagnostic is an error or worse.
func HasErrors(diags []Diagnostic) bool {
	for _, d := range diags {
		if d.Severity >= SeverityError {
			return true
		}
	}
	return false
}
