package markup

import (
	"errors"
	"math/rand/v2"
	"strconv"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/google/go-cmp/cmp"
)

// shape renders a forest compactly: tags as name(children...), text as a
// quoted string, other nodes as kind:value.
func shape(nodes []Node) string {
	parts := make([]string, 0, len(nodes))
	for _, n := range nodes {
		switch n := n.(type) {
		case *Tag:
			parts = append(parts, n.Name+"("+shape(n.Children)+")")
		case *Text:
			parts = append(parts, strconv.Quote(n.Value))
		case *Comment:
			parts = append(parts, "comment:"+n.Value)
		case *CData:
			parts = append(parts, "cdata:"+n.Value)
		case *Doctype:
			parts = append(parts, "doctype:"+n.Value)
		}
	}
	return strings.Join(parts, ",")
}

func codes(diags []Diagnostic) []string {
	var out []string
	for _, d := range diags {
		out = append(out, d.Code)
	}
	return out
}

func liRegistry() *Registry {
	r := NewRegistry()
	r.Define("li", NodeDescription{ClosedByParent: true, ClosedByChildren: map[string]bool{"li": true}})
	return r
}

func TestParseTree(t *testing.T) {
	tests := []struct {
		name  string
		input string
		opts  []Option
		want  string
		codes []string
	}{
		{
			name:  "bare less-than coalesces",
			input: "1 < 2",
			want:  `"1 < 2"`,
			codes: []string{ErrBadCharAfterLessThan},
		},
		{
			name:  "script body",
			input: `<script>for(var i=0;i<0;){++i;}</script>`,
			want:  `script("for(var i=0;i<0;){++i;}")`,
		},
		{
			name:  "textarea body",
			input: `<textarea><br>Hello!<br></textarea>`,
			want:  `textarea("<br>Hello!<br>")`,
		},
		{
			name:  "stray end tag",
			input: `<a></b>`,
			want:  `a()`,
			codes: []string{ErrStrayEndTag, ErrUnclosedElement},
		},
		{
			name:  "text around a stray end tag is not merged",
			input: `a</b>c`,
			want:  `"a","c"`,
			codes: []string{ErrStrayEndTag},
		},
		{
			name:  "text around a void end tag is not merged",
			input: `a</br>c`,
			want:  `"a","c"`,
			codes: []string{ErrEndTagForVoidElement},
		},
		{
			name:  "stray end tag leaves stack unchanged",
			input: `<a><b></a></b>`,
			want:  `a(b())`,
			codes: []string{ErrStrayEndTag, ErrUnclosedElement},
		},
		{
			name:  "cdata disabled",
			input: `<![CDATA[data]]>`,
			want:  `comment:[CDATA[data]]`,
			codes: []string{ErrBogusComment},
		},
		{
			name:  "cdata enabled",
			input: `<![CDATA[data]]>`,
			opts:  []Option{WithCDATA(true)},
			want:  `cdata:data`,
		},
		{
			name:  "void end tag",
			input: `<br>x</br>`,
			want:  `br(),"x"`,
			codes: []string{ErrEndTagForVoidElement},
		},
		{
			name:  "void element has no children",
			input: `<p><img><span>a</span></p>`,
			want:  `p(img(),span("a"))`,
		},
		{
			name:  "self closing non void",
			input: `<div/>x`,
			want:  `div(),"x"`,
			codes: []string{ErrSelfClosingNonVoid},
		},
		{
			name:  "self closing non void html4",
			input: `<div/>x`,
			opts:  []Option{WithHTML4(true)},
			want:  `div("x")`,
			codes: []string{ErrSelfClosingNonVoid, ErrUnclosedElement},
		},
		{
			name:  "self closing allowed",
			input: `<svg/><br/>`,
			want:  `svg(),br()`,
		},
		{
			name:  "closed by child and parent",
			input: `<ul><li>a<li>b</ul>`,
			opts:  []Option{WithResolver(liRegistry().Lookup)},
			want:  `ul(li("a"),li("b"))`,
		},
		{
			name:  "closed by parent is not unclosed",
			input: `<li>a`,
			opts:  []Option{WithResolver(liRegistry().Lookup)},
			want:  `li("a")`,
		},
		{
			name:  "comments coalesce",
			input: `<!--a--><!--b-->`,
			want:  `comment:ab`,
		},
		{
			name:  "comments disabled",
			input: `a<!--x-->b`,
			opts:  []Option{WithComments(false)},
			want:  `"ab"`,
		},
		{
			name:  "text does not merge across elements",
			input: `a<b></b>c`,
			want:  `"a",b(),"c"`,
		},
		{
			name:  "doctype and cdata are standalone",
			input: `<!DOCTYPE html>x<![CDATA[y]]>z`,
			opts:  []Option{WithCDATA(true)},
			want:  `doctype:html,"x",cdata:y,"z"`,
		},
		{
			name:  "pre drops first line feed",
			input: "<pre>\nx</pre>",
			want:  `pre("x")`,
		},
		{
			name:  "textarea drops only one line feed",
			input: "<textarea>\n\nx</textarea>",
			want:  `textarea("\nx")`,
		},
		{
			name:  "pre keeps later line feed",
			input: "<pre><b></b>\nx</pre>",
			want:  `pre(b(),"\nx")`,
		},
		{
			name:  "names are case sensitive",
			input: `<DIV></div>`,
			want:  `DIV()`,
			codes: []string{ErrStrayEndTag, ErrUnclosedElement},
		},
		{
			name:  "lower case tag names",
			input: `<DIV></div>`,
			opts:  []Option{WithLowerCaseTagNames(true)},
			want:  `div()`,
		},
		{
			name:  "raw text element from registry",
			input: `<code-block><b>x</b></code-block>`,
			opts: []Option{WithResolver(func(name string) NodeDescription {
				if name == "code-block" {
					return NodeDescription{ContentModel: RawText}
				}
				return DefaultDescription(name)
			})},
			want: `code-block("<b>x</b>")`,
		},
		{
			name:  "crlf normalized",
			input: "a\r\nb",
			want:  `"a\nb"`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nodes, diags := Parse(tt.input, tt.opts...)
			if got := shape(nodes); got != tt.want {
				t.Errorf("tree = %s, want %s", got, tt.want)
			}
			if diff := cmp.Diff(tt.codes, codes(diags)); diff != "" {
				t.Errorf("diagnostics mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseSpans(t *testing.T) {
	nodes, _ := Parse("1 < 2")
	if want := (Span{Start: Position{Line: 0, Column: 0}, End: Position{Line: 0, Column: 5}}); nodes[0].Location() != want {
		t.Errorf("coalesced text Span = %v, want %v", nodes[0].Location(), want)
	}

	nodes, _ = Parse("a</b>c")
	if want := (Span{End: Position{Column: 1}}); nodes[0].Location() != want {
		t.Errorf("text before stray end tag Span = %v, want %v", nodes[0].Location(), want)
	}
	if want := (Span{Start: Position{Column: 5}, End: Position{Column: 6}}); nodes[1].Location() != want {
		t.Errorf("text after stray end tag Span = %v, want %v", nodes[1].Location(), want)
	}

	nodes, _ = Parse("<a>x</a><b>")
	a := nodes[0].(*Tag)
	if want := (Span{Start: Position{Column: 0}, End: Position{Column: 8}}); a.Span != want {
		t.Errorf("a.Span = %v, want %v", a.Span, want)
	}
	if want := (Span{Start: Position{Column: 0}, End: Position{Column: 3}}); a.StartTag != want {
		t.Errorf("a.StartTag = %v, want %v", a.StartTag, want)
	}
	if a.EndTag == nil || *a.EndTag != (Span{Start: Position{Column: 4}, End: Position{Column: 8}}) {
		t.Errorf("a.EndTag = %v", a.EndTag)
	}
	b := nodes[1].(*Tag)
	if b.EndTag != nil {
		t.Errorf("implicitly closed b has EndTag %v", b.EndTag)
	}
	if want := (Span{Start: Position{Column: 8}, End: Position{Column: 11}}); b.Span != want {
		t.Errorf("b.Span = %v, want %v", b.Span, want)
	}

	nodes, _ = Parse("<pre>\nx</pre>")
	text := nodes[0].(*Tag).Children[0]
	if want := (Position{Line: 1, Column: 0}); text.Location().Start != want {
		t.Errorf("pre text starts at %v, want %v", text.Location().Start, want)
	}
}

func TestParseLinks(t *testing.T) {
	nodes, _ := Parse("<a>x<b></b>y</a><c></c>")
	a := nodes[0].(*Tag)
	c := nodes[1].(*Tag)
	x, b, y := a.Children[0], a.Children[1], a.Children[2]

	if a.Parent() != nil {
		t.Error("root a has a parent")
	}
	if a.Next() != Node(c) || c.Prev() != Node(a) {
		t.Error("root siblings are not linked")
	}
	if x.Prev() != nil || x.Next() != b {
		t.Error("x links wrong")
	}
	if b.Prev() != x || b.Next() != y {
		t.Error("b links wrong")
	}
	if y.Next() != nil {
		t.Error("y has a next sibling")
	}
	for _, child := range a.Children {
		if child.Parent() != a {
			t.Errorf("%v parent = %v, want a", child.Kind(), child.Parent())
		}
	}
}

func TestParseAttributes(t *testing.T) {
	nodes, _ := Parse(`<input type="text" disabled>`)
	tag := nodes[0].(*Tag)
	if !tag.Void {
		t.Error("input should be void")
	}
	typ, ok := tag.Attribute("type")
	if !ok || typ.ValueOr("") != "text" {
		t.Errorf("type = %+v, %v", typ, ok)
	}
	disabled, ok := tag.Attribute("disabled")
	if !ok || disabled.HasValue() {
		t.Errorf("disabled = %+v, %v; want present without value", disabled, ok)
	}
	if _, ok := tag.Attribute("missing"); ok {
		t.Error("missing attribute found")
	}
}

func TestParserIsReusable(t *testing.T) {
	p := NewParser()
	first := p.Parse("<a>")
	second := p.Parse("<b></b>")
	if got := shape(first); got != "a()" {
		t.Errorf("first = %s", got)
	}
	if got := shape(second); got != "b()" {
		t.Errorf("second = %s", got)
	}
}

func TestParseForwardsToSink(t *testing.T) {
	sink := &Collector{}
	_, diags := Parse("<a>", WithDiagnostics(sink))
	if len(diags) != 1 {
		t.Fatalf("len(diags) = %d, want 1", len(diags))
	}
	if !sink.Has(ErrUnclosedElement) {
		t.Error("sink did not receive errUnclosedElement")
	}
	d := diags[0]
	if d.Severity != SeverityWarn || d.Subject != "a" {
		t.Errorf("diagnostic = %+v", d)
	}
}

// plainSink only implements the leveled methods.
type plainSink struct {
	warnings []string
	errors   []string
}

func (s *plainSink) Debug(string)         {}
func (s *plainSink) Info(string)          {}
func (s *plainSink) Warn(message string)  { s.warnings = append(s.warnings, message) }
func (s *plainSink) Error(message string) { s.errors = append(s.errors, message) }
func (s *plainSink) Fatal(string)         {}

func TestParseLeveledSink(t *testing.T) {
	sink := &plainSink{}
	NewParser(WithDiagnostics(sink)).Parse("<a></b>")
	if diff := cmp.Diff([]string{ErrStrayEndTag}, sink.errors); diff != "" {
		t.Errorf("errors mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{ErrUnclosedElement}, sink.warnings); diff != "" {
		t.Errorf("warnings mismatch (-want +got):\n%s", diff)
	}
}

func TestParseReader(t *testing.T) {
	nodes, _, err := ParseReader(strings.NewReader("<a>x</a>"))
	if err != nil {
		t.Fatalf("ParseReader: %v", err)
	}
	if got := shape(nodes); got != `a("x")` {
		t.Errorf("tree = %s", got)
	}

	boom := errors.New("boom")
	if _, _, err := ParseReader(iotest.ErrReader(boom)); !errors.Is(err, boom) {
		t.Errorf("err = %v, want %v", err, boom)
	}
}

func TestParseArbitraryInput(t *testing.T) {
	alphabet := []rune("<>/!-=\"' \nabsciptxt[]CDAT?é")
	rng := rand.New(rand.NewPCG(1, 2))
	for i := 0; i < 500; i++ {
		n := rng.IntN(40)
		runes := make([]rune, n)
		for j := range runes {
			runes[j] = alphabet[rng.IntN(len(alphabet))]
		}
		input := string(runes)
		for _, opts := range [][]Option{nil, {WithCDATA(true), WithHTML4(true), WithComments(false)}} {
			nodes, _ := Parse(input, opts...)
			Walk(nodes, func(n Node) bool {
				if tag, ok := n.(*Tag); ok && tag.Void && len(tag.Children) > 0 {
					t.Errorf("input %q: void %s has children", input, tag.Name)
				}
				return true
			})
		}
	}
}
