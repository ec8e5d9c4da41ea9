package markup

import (
	"fmt"
	"strings"
)

type TokenKind int

const (
	TokenOpenTag TokenKind = iota
	TokenCloseTag
	TokenText
	TokenComment
	TokenCDATA
	TokenDoctype
	TokenEOF
)

var tokenKindNames = map[TokenKind]string{
	TokenOpenTag:  "OpenTag",
	TokenCloseTag: "CloseTag",
	TokenText:     "Text",
	TokenComment:  "Comment",
	TokenCDATA:    "CDATA",
	TokenDoctype:  "Doctype",
	TokenEOF:      "EOF",
}

func (k TokenKind) String() string {
	if name, ok := tokenKindNames[k]; ok {
		return name
	}
	return "Unknown"
}

// Token is one event of the tokenizer. Name is set for tags, Data for
// text, comments, CDATA sections and doctypes.
type Token struct {
	Kind        TokenKind
	Name        string
	Data        string
	Attributes  []Attribute
	SelfClosing bool
	Span        Span
}

func (t Token) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s %s", t.Kind, t.Span)
	switch t.Kind {
	case TokenOpenTag:
		fmt.Fprintf(&sb, " <%s", t.Name)
		for _, a := range t.Attributes {
			sb.WriteString(" " + a.Name)
			if a.Value != nil {
				fmt.Fprintf(&sb, "=%q", *a.Value)
			}
		}
		if t.SelfClosing {
			sb.WriteString(" /")
		}
		sb.WriteString(">")
	case TokenCloseTag:
		fmt.Fprintf(&sb, " </%s>", t.Name)
	case TokenEOF:
	default:
		fmt.Fprintf(&sb, " %q", t.Data)
	}
	return sb.String()
}

// TokenHandler receives the token stream. OnStart is called once before
// the first token and OnEOF once after the last.
type TokenHandler interface {
	OnStart()
	OnOpenTag(name string, attrs []Attribute, selfClosing bool, span Span)
	OnCloseTag(name string, span Span)
	OnText(data string, span Span)
	OnComment(data string, span Span)
	OnCDATA(data string, span Span)
	OnDoctype(data string, span Span)
	OnEOF()
}

// ContentModelSwitcher lets a handler change how the body of the element
// it just opened is scanned.
type ContentModelSwitcher interface {
	SetContentModel(model ContentModel, expectedEndTag string)
}

// TokenRecorder is a TokenHandler that keeps every token.
type TokenRecorder struct {
	Tokens []Token
}

func (r *TokenRecorder) OnStart() { r.Tokens = nil }

func (r *TokenRecorder) OnOpenTag(name string, attrs []Attribute, selfClosing bool, span Span) {
	r.Tokens = append(r.Tokens, Token{Kind: TokenOpenTag, Name: name, Attributes: attrs, SelfClosing: selfClosing, Span: span})
}

func (r *TokenRecorder) OnCloseTag(name string, span Span) {
	r.Tokens = append(r.Tokens, Token{Kind: TokenCloseTag, Name: name, Span: span})
}

func (r *TokenRecorder) OnText(data string, span Span) {
	r.Tokens = append(r.Tokens, Token{Kind: TokenText, Data: data, Span: span})
}

func (r *TokenRecorder) OnComment(data string, span Span) {
	r.Tokens = append(r.Tokens, Token{Kind: TokenComment, Data: data, Span: span})
}

func (r *TokenRecorder) OnCDATA(data string, span Span) {
	r.Tokens = append(r.Tokens, Token{Kind: TokenCDATA, Data: data, Span: span})
}

func (r *TokenRecorder) OnDoctype(data string, span Span) {
	r.Tokens = append(r.Tokens, Token{Kind: TokenDoctype, Data: data, Span: span})
}

func (r *TokenRecorder) OnEOF() {
	r.Tokens = append(r.Tokens, Token{Kind: TokenEOF})
}

// dispatch delivers tok to h.
func dispatch(h TokenHandler, tok Token) {
	switch tok.Kind {
	case TokenOpenTag:
		h.OnOpenTag(tok.Name, tok.Attributes, tok.SelfClosing, tok.Span)
	case TokenCloseTag:
		h.OnCloseTag(tok.Name, tok.Span)
	case TokenText:
		h.OnText(tok.Data, tok.Span)
	case TokenComment:
		h.OnComment(tok.Data, tok.Span)
	case TokenCDATA:
		h.OnCDATA(tok.Data, tok.Span)
	case TokenDoctype:
		h.OnDoctype(tok.Data, tok.Span)
	case TokenEOF:
		h.OnEOF()
	}
}
