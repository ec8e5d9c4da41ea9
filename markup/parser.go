package markup

import (
	"fmt"
	"io"
)

// Parser turns template source into a node forest. Each call to Parse
// uses a fresh Tokenizer and TreeBuilder, so one Parser may be shared by
// concurrent callers as long as its diagnostics sink is safe for that.
type Parser struct {
	opts options
}

func NewParser(opts ...Option) *Parser {
	return &Parser{opts: buildOptions(opts)}
}

// Parse normalizes line endings in text and returns the root nodes.
func (p *Parser) Parse(text string) []Node {
	builder := newTreeBuilder(p.opts)
	tokenizer := newTokenizer(builder, p.opts)
	builder.SetTokenizer(tokenizer)

	tokenizer.Start()
	tokenizer.Tokenize(NewReader(Normalize(text)))
	return builder.Tree()
}

// Parse parses text and returns the tree with every diagnostic reported
// along the way. A sink passed with WithDiagnostics still receives them.
func Parse(text string, opts ...Option) ([]Node, []Diagnostic) {
	o := buildOptions(opts)
	collector := &Collector{}
	o.diagnostics = Tee(o.diagnostics, collector)
	p := &Parser{opts: o}
	nodes := p.Parse(text)
	return nodes, collector.Diagnostics()
}

// ParseReader reads all of r and parses it.
func ParseReader(r io.Reader, opts ...Option) ([]Node, []Diagnostic, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, nil, fmt.Errorf("read source: %w", err)
	}
	nodes, diags := Parse(string(data), opts...)
	return nodes, diags, nil
}
