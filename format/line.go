package format

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dhamidi/tml/markup"
)

// LineEncoder writes one tab-separated record per node, in document
// order:
//
//	depth  kind  name  start  end  flags  value
//
// Empty columns are written as "-" so every line has the same number of
// fields.
type LineEncoder struct {
	w io.Writer
}

func NewLineEncoder(w io.Writer) *LineEncoder {
	return &LineEncoder{w: w}
}

func (e *LineEncoder) Encode(nodes []markup.Node) error {
	text, err := e.MarshalText(nodes)
	if err != nil {
		return err
	}
	_, err = e.w.Write(text)
	return err
}

func (e *LineEncoder) MarshalText(nodes []markup.Node) ([]byte, error) {
	var sb strings.Builder
	e.writeNodes(&sb, nodes, 0)
	return []byte(sb.String()), nil
}

func (e *LineEncoder) writeNodes(sb *strings.Builder, nodes []markup.Node, depth int) {
	for _, n := range nodes {
		span := n.Location()
		name, value := "-", "-"
		flags := "-"

		switch n := n.(type) {
		case *markup.Tag:
			name = n.Name
			flags = tagFlags(n)
		case *markup.Text:
			value = strconv.Quote(n.Value)
		case *markup.Comment:
			value = strconv.Quote(n.Value)
		case *markup.CData:
			value = strconv.Quote(n.Value)
		case *markup.Doctype:
			value = strconv.Quote(n.Value)
		}

		fmt.Fprintf(sb, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
			depth, strings.ToLower(n.Kind().String()), name, span.Start, span.End, flags, value)

		if tag, ok := n.(*markup.Tag); ok {
			e.writeNodes(sb, tag.Children, depth+1)
		}
	}
}

func tagFlags(t *markup.Tag) string {
	var flags []string
	if t.Void {
		flags = append(flags, "void")
	}
	if t.SelfClosing {
		flags = append(flags, "self-closing")
	}
	if t.EndTag == nil && !t.Void && !t.SelfClosing {
		flags = append(flags, "implicit-end")
	}
	if len(flags) == 0 {
		return "-"
	}
	return strings.Join(flags, ",")
}
