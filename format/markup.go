package format

import (
	"io"
	"strings"

	"golang.org/x/net/html"

	"github.com/dhamidi/tml/markup"
)

// MarkupEncoder writes a forest back as markup. Text is written as it
// appeared in the source unless Canonical is set, in which case entities
// are decoded and re-escaped. Bodies of raw-text elements are always
// written verbatim.
type MarkupEncoder struct {
	w         io.Writer
	resolver  markup.Resolver
	Canonical bool
}

func NewMarkupEncoder(w io.Writer, resolver markup.Resolver) *MarkupEncoder {
	if resolver == nil {
		resolver = markup.DefaultDescription
	}
	return &MarkupEncoder{w: w, resolver: resolver}
}

func (e *MarkupEncoder) Encode(nodes []markup.Node) error {
	text, err := e.MarshalText(nodes)
	if err != nil {
		return err
	}
	_, err = e.w.Write(text)
	return err
}

func (e *MarkupEncoder) MarshalText(nodes []markup.Node) ([]byte, error) {
	var sb strings.Builder
	for _, n := range nodes {
		e.writeNode(&sb, n, false)
	}
	return []byte(sb.String()), nil
}

func (e *MarkupEncoder) writeNode(sb *strings.Builder, n markup.Node, raw bool) {
	switch n := n.(type) {
	case *markup.Text:
		if raw || !e.Canonical {
			sb.WriteString(n.Value)
		} else {
			sb.WriteString(html.EscapeString(html.UnescapeString(n.Value)))
		}
	case *markup.Comment:
		sb.WriteString("<!--" + n.Value + "-->")
	case *markup.CData:
		sb.WriteString("<![CDATA[" + n.Value + "]]>")
	case *markup.Doctype:
		sb.WriteString("<!DOCTYPE " + n.Value + ">")
	case *markup.Tag:
		e.writeTag(sb, n)
	}
}

func (e *MarkupEncoder) writeTag(sb *strings.Builder, t *markup.Tag) {
	desc := e.resolver(t.Name)
	sb.WriteString("<" + t.Name)
	for _, a := range t.Attributes {
		sb.WriteString(" " + a.Name)
		if a.Value != nil {
			sb.WriteString(`="` + e.attributeValue(*a.Value) + `"`)
		}
	}
	if t.SelfClosing {
		sb.WriteString("/>")
		return
	}
	sb.WriteString(">")
	if t.Void {
		return
	}
	if desc.IgnoreFirstLF {
		// The parser drops one leading newline; write it back so a
		// newline that was content survives a re-parse.
		if text, ok := t.FirstChild().(*markup.Text); ok && strings.HasPrefix(text.Value, "\n") {
			sb.WriteString("\n")
		}
	}
	raw := desc.ContentModel != markup.Data
	for _, child := range t.Children {
		e.writeNode(sb, child, raw)
	}
	if t.EndTag != nil || !desc.ClosedByParent {
		sb.WriteString("</" + t.Name + ">")
	}
}

func (e *MarkupEncoder) attributeValue(v string) string {
	if e.Canonical {
		return html.EscapeString(html.UnescapeString(v))
	}
	return strings.ReplaceAll(v, `"`, "&quot;")
}
