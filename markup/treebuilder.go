package markup

import "strings"

type frame struct {
	tag  *Tag
	desc NodeDescription
	// textSeen is set once the element received its first text token.
	textSeen bool
}

// TreeBuilder turns a token stream into a node forest. It implements
// TokenHandler and never fails: malformed structure is reported and the
// best-effort tree is kept.
type TreeBuilder struct {
	resolver    Resolver
	diagnostics Diagnostics
	html4       bool
	tokenizer   ContentModelSwitcher

	tree         []Node
	stack        []*frame
	lastAppended Node
}

func NewTreeBuilder(resolver Resolver, opts ...Option) *TreeBuilder {
	o := buildOptions(opts)
	if resolver != nil {
		o.resolver = resolver
	}
	return newTreeBuilder(o)
}

func newTreeBuilder(o options) *TreeBuilder {
	return &TreeBuilder{
		resolver:    o.resolver,
		diagnostics: o.diagnostics,
		html4:       o.html4,
	}
}

// SetTokenizer connects the tokenizer whose content model is switched
// when a raw-text element opens.
func (b *TreeBuilder) SetTokenizer(t ContentModelSwitcher) {
	b.tokenizer = t
}

// Tree returns the root nodes built so far.
func (b *TreeBuilder) Tree() []Node {
	return b.tree
}

func (b *TreeBuilder) OnStart() {
	b.tree = nil
	b.stack = nil
	b.lastAppended = nil
}

func (b *TreeBuilder) OnOpenTag(name string, attrs []Attribute, selfClosing bool, span Span) {
	desc := b.resolver(name)
	if selfClosing && !desc.AllowSelfClosing {
		if b.html4 {
			b.report(SeverityWarn, ErrSelfClosingNonVoid, span, name)
			selfClosing = false
		} else {
			b.report(SeverityError, ErrSelfClosingNonVoid, span, name)
		}
	}
	if top := b.top(); top != nil && top.desc.IsClosedByChild(name) {
		b.stack = b.stack[:len(b.stack)-1]
	}

	tag := &Tag{
		Name:        name,
		Attributes:  attrs,
		SelfClosing: selfClosing,
		Void:        desc.Void,
		StartTag:    span,
	}
	tag.Span = span
	b.append(tag)
	b.lastAppended = nil

	if desc.Void || selfClosing {
		return
	}
	b.stack = append(b.stack, &frame{tag: tag, desc: desc})
	if desc.ContentModel != Data && b.tokenizer != nil {
		b.tokenizer.SetContentModel(desc.ContentModel, name)
	}
}

func (b *TreeBuilder) OnCloseTag(name string, span Span) {
	if b.resolver(name).Void {
		b.report(SeverityError, ErrEndTagForVoidElement, span, name)
		b.lastAppended = nil
		return
	}
	for i := len(b.stack) - 1; i >= 0; i-- {
		f := b.stack[i]
		if f.tag.Name == name {
			end := span
			f.tag.EndTag = &end
			f.tag.Span.End = span.End
			b.stack = b.stack[:i]
			b.lastAppended = nil
			return
		}
		if !f.desc.ClosedByParent {
			break
		}
	}
	b.report(SeverityError, ErrStrayEndTag, span, name)
	b.lastAppended = nil
}

func (b *TreeBuilder) OnText(data string, span Span) {
	if top := b.top(); top != nil && !top.textSeen {
		top.textSeen = true
		if top.desc.IgnoreFirstLF && len(top.tag.Children) == 0 && strings.HasPrefix(data, "\n") {
			data = data[1:]
			span.Start = Position{Line: span.Start.Line + 1}
		}
	}
	if data == "" {
		return
	}
	if text, ok := b.lastAppended.(*Text); ok {
		text.Value += data
		text.Span.End = span.End
		return
	}
	text := &Text{Value: data}
	text.Span = span
	b.append(text)
	b.lastAppended = text
}

func (b *TreeBuilder) OnComment(data string, span Span) {
	if comment, ok := b.lastAppended.(*Comment); ok {
		comment.Value += data
		comment.Span.End = span.End
		return
	}
	comment := &Comment{Value: data}
	comment.Span = span
	b.append(comment)
	b.lastAppended = comment
}

func (b *TreeBuilder) OnCDATA(data string, span Span) {
	cdata := &CData{Value: data}
	cdata.Span = span
	b.append(cdata)
	b.lastAppended = nil
}

func (b *TreeBuilder) OnDoctype(data string, span Span) {
	doctype := &Doctype{Value: data}
	doctype.Span = span
	b.append(doctype)
	b.lastAppended = nil
}

func (b *TreeBuilder) OnEOF() {
	for i := len(b.stack) - 1; i >= 0; i-- {
		f := b.stack[i]
		if !f.desc.ClosedByParent {
			b.report(SeverityWarn, ErrUnclosedElement, f.tag.StartTag, f.tag.Name)
		}
	}
	b.stack = nil
	b.lastAppended = nil
}

func (b *TreeBuilder) top() *frame {
	if len(b.stack) == 0 {
		return nil
	}
	return b.stack[len(b.stack)-1]
}

// append adds n as the last child of the current element, or as a new
// root, and links it to its previous sibling.
func (b *TreeBuilder) append(n Node) {
	var parent *Tag
	siblings := b.tree
	if top := b.top(); top != nil {
		parent = top.tag
		siblings = parent.Children
	}
	if debugAssertions && parent != nil && parent.Void {
		panic(&InvariantError{Message: "void element " + parent.Name + " gained a child"})
	}
	links := n.links()
	links.parent = parent
	if len(siblings) > 0 {
		prev := siblings[len(siblings)-1]
		prev.links().next = n
		links.prev = prev
	}
	if parent != nil {
		parent.Children = append(parent.Children, n)
	} else {
		b.tree = append(b.tree, n)
	}
}

func (b *TreeBuilder) report(severity Severity, code string, span Span, subject string) {
	report(b.diagnostics, Diagnostic{Severity: severity, Code: code, Span: span, Subject: subject})
}
