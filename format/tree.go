package format

import (
	"fmt"
	"io"
	"strings"

	"github.com/dhamidi/tml/markup"
)

// TreeEncoder writes one line per node, indented by depth.
type TreeEncoder struct {
	w         io.Writer
	positions bool
}

func NewTreeEncoder(w io.Writer, positions bool) *TreeEncoder {
	return &TreeEncoder{w: w, positions: positions}
}

func (e *TreeEncoder) Encode(nodes []markup.Node) error {
	text, err := e.MarshalText(nodes)
	if err != nil {
		return err
	}
	_, err = e.w.Write(text)
	return err
}

func (e *TreeEncoder) MarshalText(nodes []markup.Node) ([]byte, error) {
	var sb strings.Builder
	for _, n := range nodes {
		e.writeNode(&sb, n, 0)
	}
	return []byte(sb.String()), nil
}

func (e *TreeEncoder) writeNode(sb *strings.Builder, n markup.Node, depth int) {
	indent := strings.Repeat("  ", depth)
	sb.WriteString(indent)
	sb.WriteString(n.Kind().String())

	switch n := n.(type) {
	case *markup.Tag:
		sb.WriteString(" " + n.Name)
		if n.SelfClosing {
			sb.WriteString(" /")
		}
	case *markup.Text:
		fmt.Fprintf(sb, " %q", n.Value)
	case *markup.Comment:
		fmt.Fprintf(sb, " %q", n.Value)
	case *markup.CData:
		fmt.Fprintf(sb, " %q", n.Value)
	case *markup.Doctype:
		fmt.Fprintf(sb, " %q", n.Value)
	}
	if e.positions {
		fmt.Fprintf(sb, " [%s]", n.Location())
	}
	sb.WriteString("\n")

	tag, ok := n.(*markup.Tag)
	if !ok {
		return
	}
	for _, a := range tag.Attributes {
		sb.WriteString(indent + "  @" + a.Name)
		if a.Value != nil {
			fmt.Fprintf(sb, "=%q", *a.Value)
		}
		if e.positions {
			fmt.Fprintf(sb, " [%s]", a.Span)
		}
		sb.WriteString("\n")
	}
	for _, child := range tag.Children {
		e.writeNode(sb, child, depth+1)
	}
}
