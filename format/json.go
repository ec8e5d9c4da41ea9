package format

import (
	"encoding/json"
	"io"

	"github.com/dhamidi/tml/markup"
)

type JSONEncoder struct {
	w io.Writer
}

func NewJSONEncoder(w io.Writer) *JSONEncoder {
	return &JSONEncoder{w: w}
}

func (e *JSONEncoder) Encode(nodes []markup.Node) error {
	text, err := e.MarshalText(nodes)
	if err != nil {
		return err
	}
	if _, err := e.w.Write(text); err != nil {
		return err
	}
	_, err = e.w.Write([]byte("\n"))
	return err
}

func (e *JSONEncoder) MarshalText(nodes []markup.Node) ([]byte, error) {
	return json.MarshalIndent(JSONNodes(nodes), "", "  ")
}

// JSONNode is the JSON form of a markup.Node.
type JSONNode struct {
	Kind        string          `json:"kind"`
	Name        string          `json:"name,omitempty"`
	Value       *string         `json:"value,omitempty"`
	Attributes  []JSONAttribute `json:"attributes,omitempty"`
	SelfClosing bool            `json:"selfClosing,omitempty"`
	Void        bool            `json:"void,omitempty"`
	Span        JSONSpan        `json:"span"`
	Children    []*JSONNode     `json:"children,omitempty"`
}

type JSONAttribute struct {
	Name  string   `json:"name"`
	Value *string  `json:"value,omitempty"`
	Span  JSONSpan `json:"span"`
}

type JSONSpan struct {
	Start JSONPosition `json:"start"`
	End   JSONPosition `json:"end"`
}

type JSONPosition struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

func SpanToJSON(s markup.Span) JSONSpan {
	return JSONSpan{
		Start: JSONPosition{Line: s.Start.Line, Column: s.Start.Column},
		End:   JSONPosition{Line: s.End.Line, Column: s.End.Column},
	}
}

// JSONNodes converts a forest for encoding. The result is never nil.
func JSONNodes(nodes []markup.Node) []*JSONNode {
	out := make([]*JSONNode, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, nodeToJSON(n))
	}
	return out
}

func nodeToJSON(n markup.Node) *JSONNode {
	jn := &JSONNode{
		Kind: n.Kind().String(),
		Span: SpanToJSON(n.Location()),
	}
	switch n := n.(type) {
	case *markup.Text:
		jn.Value = &n.Value
	case *markup.Comment:
		jn.Value = &n.Value
	case *markup.CData:
		jn.Value = &n.Value
	case *markup.Doctype:
		jn.Value = &n.Value
	case *markup.Tag:
		jn.Name = n.Name
		jn.SelfClosing = n.SelfClosing
		jn.Void = n.Void
		for _, a := range n.Attributes {
			jn.Attributes = append(jn.Attributes, JSONAttribute{
				Name:  a.Name,
				Value: a.Value,
				Span:  SpanToJSON(a.Span),
			})
		}
		for _, child := range n.Children {
			jn.Children = append(jn.Children, nodeToJSON(child))
		}
	}
	return jn
}
