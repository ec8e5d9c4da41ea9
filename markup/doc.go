// Package markup is an error-tolerant parser for HTML-like template
// markup.
//
// # Overview
//
// Source text is turned into an ordered forest of located nodes: tags,
// text runs, comments, CDATA sections and doctypes. Malformed input never
// stops a parse. Every anomaly is reported to a Diagnostics sink and the
// best-effort tree is returned.
//
// # Architecture
//
//	┌─────────────┐     ┌─────────────┐     ┌─────────────┐
//	│   Reader    │────▶│  Tokenizer  │────▶│ TreeBuilder │
//	│   (runes)   │     │  (tokens)   │     │   (nodes)   │
//	└─────────────┘     └─────────────┘     └─────────────┘
//	                           ▲                   │
//	                           └───────────────────┘
//	                            SetContentModel
//
// The Reader hands out one rune at a time with one rune of pushback. The
// Tokenizer runs an HTML5-style state machine and calls a TokenHandler.
// The TreeBuilder is that handler: it keeps a stack of open elements and
// tells the Tokenizer to scan the body of script, style, textarea and
// title as raw text.
//
// # Usage
//
//	nodes, diags := markup.Parse(src, markup.WithCDATA(true))
//	for _, d := range diags {
//	    fmt.Println(d)
//	}
//
// A Parser can be reused; every Parse call starts from fresh state:
//
//	p := markup.NewParser(markup.WithResolver(registry.Lookup))
//	nodes := p.Parse(src)
//
// # Positions
//
// Lines and columns are zero-based and count runes. A Span ends at the
// position just after its last character. The Reader reports the line
// of a line feed as the line it terminates; the following character
// starts the next line.
//
// # Element descriptions
//
// How an element is treated is decided by its NodeDescription: whether
// it is void, whether it may use "/>", which content model its body
// has, and whether it closes implicitly. DefaultDescription covers the
// built-in HTML elements; a Registry adds or overrides entries.
//
// # Content models
//
//   - Data: markup is parsed as usual.
//   - RawText: the body is text up to the matching end tag. An HTML
//     comment opener starts an escaped section, inside which "<name"
//     starts a double-escaped section where even the matching end tag
//     does not close the element. This is the behavior of script.
//   - EscapableRawText: the body is text up to the matching end tag,
//     with no escaped sections. This is the behavior of textarea.
//
// # Diagnostics
//
// Anomalies are reported by code, for example errEofInComment or
// errStrayEndTag. Sinks that implement Reporter receive the full
// Diagnostic with its span. Collector records them; LogSink forwards
// them to a commonlog logger.
//
// Internal invariant violations panic with *InvariantError. They are
// never caused by input text. Extra checks are compiled in with the
// tmldebug build tag.
package markup
