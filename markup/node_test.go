package markup

import (
	"testing"
)

func TestNodeKindString(t *testing.T) {
	tests := []struct {
		kind NodeKind
		want string
	}{
		{KindText, "Text"},
		{KindComment, "Comment"},
		{KindCData, "CData"},
		{KindDoctype, "Doctype"},
		{KindTag, "Tag"},
		{NodeKind(9999), "Unknown"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.kind.String(); got != tt.want {
				t.Errorf("NodeKind(%d).String() = %q, want %q", tt.kind, got, tt.want)
			}
		})
	}
}

func TestTextContent(t *testing.T) {
	nodes, _ := Parse(`<p>a<b>b<!--c--></b><![CDATA[d]]></p>`, WithCDATA(true))
	if got := TextContent(nodes[0]); got != "abd" {
		t.Errorf("TextContent = %q, want %q", got, "abd")
	}
}

func TestWalkSkipsChildren(t *testing.T) {
	nodes, _ := Parse(`<a><b>x</b></a><c>y</c>`)
	var visited []string
	Walk(nodes, func(n Node) bool {
		if tag, ok := n.(*Tag); ok {
			visited = append(visited, tag.Name)
			return tag.Name != "a"
		}
		visited = append(visited, n.Kind().String())
		return true
	})
	want := []string{"a", "c", "Text"}
	if len(visited) != len(want) {
		t.Fatalf("visited = %v, want %v", visited, want)
	}
	for i := range want {
		if visited[i] != want[i] {
			t.Errorf("visited[%d] = %q, want %q", i, visited[i], want[i])
		}
	}
}

func TestNodeAt(t *testing.T) {
	nodes, _ := Parse("<div>\n  <span>hi</span>\n</div>")
	tests := []struct {
		pos  Position
		want string
	}{
		{Position{Line: 0, Column: 1}, "div"},
		{Position{Line: 1, Column: 3}, "span"},
		{Position{Line: 1, Column: 8}, "Text"},
		{Position{Line: 5, Column: 0}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.pos.String(), func(t *testing.T) {
			n := NodeAt(nodes, tt.pos)
			got := ""
			switch n := n.(type) {
			case *Tag:
				got = n.Name
			case nil:
			default:
				got = n.Kind().String()
			}
			if got != tt.want {
				t.Errorf("NodeAt(%v) = %q, want %q", tt.pos, got, tt.want)
			}
		})
	}
}

func TestTagChildren(t *testing.T) {
	nodes, _ := Parse(`<ul><li>a</li>text<li>b</li></ul>`)
	ul := nodes[0].(*Tag)
	if got := len(ul.ChildrenOfKind(KindTag)); got != 2 {
		t.Errorf("tag children = %d, want 2", got)
	}
	if first := ul.FirstChild().(*Tag); first.Name != "li" {
		t.Errorf("FirstChild = %s", first.Name)
	}
	if last := ul.LastChild().(*Tag); TextContent(last) != "b" {
		t.Errorf("LastChild text = %q", TextContent(last))
	}
	empty := &Tag{Name: "x"}
	if empty.FirstChild() != nil || empty.LastChild() != nil {
		t.Error("empty tag has children")
	}
}

func TestPositionAndSpan(t *testing.T) {
	s := Span{Start: Position{Line: 1, Column: 2}, End: Position{Line: 2, Column: 0}}
	if !s.Contains(Position{Line: 1, Column: 2}) {
		t.Error("span should contain its start")
	}
	if s.Contains(Position{Line: 2, Column: 0}) {
		t.Error("span should not contain its end")
	}
	if !s.Contains(Position{Line: 1, Column: 99}) {
		t.Error("span should contain the rest of its first line")
	}
	if got := s.String(); got != "1:2-2:0" {
		t.Errorf("String() = %q", got)
	}
}
