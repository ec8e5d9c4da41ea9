package markup

import "strings"

type NodeKind int

const (
	KindText NodeKind = iota
	KindComment
	KindCData
	KindDoctype
	KindTag
)

var nodeKindNames = map[NodeKind]string{
	KindText:    "Text",
	KindComment: "Comment",
	KindCData:   "CData",
	KindDoctype: "Doctype",
	KindTag:     "Tag",
}

func (k NodeKind) String() string {
	if name, ok := nodeKindNames[k]; ok {
		return name
	}
	return "Unknown"
}

// Node is implemented by *Text, *Comment, *CData, *Doctype and *Tag only.
//
// Parent, Prev and Next are lookups; ownership runs strictly from a Tag
// to its Children and from the root slice to the top-level nodes.
type Node interface {
	Kind() NodeKind
	Location() Span
	Parent() *Tag
	Prev() Node
	Next() Node
	links() *nodeLinks
}

type nodeLinks struct {
	Span   Span
	parent *Tag
	prev   Node
	next   Node
}

func (l *nodeLinks) Location() Span    { return l.Span }
func (l *nodeLinks) Parent() *Tag      { return l.parent }
func (l *nodeLinks) Prev() Node        { return l.prev }
func (l *nodeLinks) Next() Node        { return l.next }
func (l *nodeLinks) links() *nodeLinks { return l }

// Text is a run of character data.
type Text struct {
	nodeLinks
	Value string
}

func (*Text) Kind() NodeKind { return KindText }

// Comment holds the content between <!-- and -->, or of a bogus comment.
type Comment struct {
	nodeLinks
	Value string
}

func (*Comment) Kind() NodeKind { return KindComment }

// CData holds the content between <![CDATA[ and ]]>.
type CData struct {
	nodeLinks
	Value string
}

func (*CData) Kind() NodeKind { return KindCData }

// Doctype holds whatever follows the DOCTYPE keyword, e.g. "html".
type Doctype struct {
	nodeLinks
	Value string
}

func (*Doctype) Kind() NodeKind { return KindDoctype }

// Attribute is a name with an optional value. Value is nil when the
// attribute was written without '='.
type Attribute struct {
	Name  string
	Value *string
	Span  Span
}

// HasValue reports whether the attribute was written with '='.
func (a Attribute) HasValue() bool {
	return a.Value != nil
}

// ValueOr returns the attribute value, or def if it has none.
func (a Attribute) ValueOr(def string) string {
	if a.Value == nil {
		return def
	}
	return *a.Value
}

// Tag is an element. Its span covers the start tag and, when the
// element was closed explicitly, everything up to the end of its end tag.
type Tag struct {
	nodeLinks
	Name        string
	Attributes  []Attribute
	Children    []Node
	SelfClosing bool
	Void        bool
	StartTag    Span
	EndTag      *Span // nil when closed implicitly
}

func (*Tag) Kind() NodeKind { return KindTag }

// Attribute returns the first attribute with the given name.
func (t *Tag) Attribute(name string) (Attribute, bool) {
	for _, a := range t.Attributes {
		if a.Name == name {
			return a, true
		}
	}
	return Attribute{}, false
}

func (t *Tag) FirstChild() Node {
	if len(t.Children) == 0 {
		return nil
	}
	return t.Children[0]
}

func (t *Tag) LastChild() Node {
	if len(t.Children) == 0 {
		return nil
	}
	return t.Children[len(t.Children)-1]
}

// ChildrenOfKind returns the direct children of the given kind.
func (t *Tag) ChildrenOfKind(kind NodeKind) []Node {
	var result []Node
	for _, child := range t.Children {
		if child.Kind() == kind {
			result = append(result, child)
		}
	}
	return result
}

// TextContent concatenates the values of all descendant Text and CData nodes.
func TextContent(n Node) string {
	var sb strings.Builder
	var walk func(Node)
	walk = func(n Node) {
		switch n := n.(type) {
		case *Text:
			sb.WriteString(n.Value)
		case *CData:
			sb.WriteString(n.Value)
		case *Tag:
			for _, child := range n.Children {
				walk(child)
			}
		}
	}
	walk(n)
	return sb.String()
}

// Walk visits nodes depth-first in document order. Returning false from
// fn skips the children of the visited node.
func Walk(nodes []Node, fn func(Node) bool) {
	for _, n := range nodes {
		if !fn(n) {
			continue
		}
		if tag, ok := n.(*Tag); ok {
			Walk(tag.Children, fn)
		}
	}
}

// NodeAt returns the innermost node whose span contains pos, or nil.
func NodeAt(nodes []Node, pos Position) Node {
	var found Node
	Walk(nodes, func(n Node) bool {
		if !n.Location().Contains(pos) {
			return false
		}
		found = n
		return true
	})
	return found
}
