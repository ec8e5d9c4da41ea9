package markup

import (
	"slices"
	"strings"
)

// ContentModel classifies how the body of an element is tokenized.
type ContentModel int

const (
	// Data bodies are parsed as markup.
	Data ContentModel = iota
	// RawText bodies are literal text ending at the matching end tag
	// (script, style).
	RawText
	// EscapableRawText bodies are literal text that only recognizes its
	// own end tag (textarea, title).
	EscapableRawText
)

var contentModelNames = map[ContentModel]string{
	Data:             "data",
	RawText:          "raw_text",
	EscapableRawText: "escapable_raw_text",
}

func (m ContentModel) String() string {
	if name, ok := contentModelNames[m]; ok {
		return name
	}
	return "unknown"
}

// ParseContentModel is the inverse of ContentModel.String.
func ParseContentModel(s string) (ContentModel, bool) {
	for m, name := range contentModelNames {
		if strings.EqualFold(s, name) {
			return m, true
		}
	}
	return Data, false
}

// NodeDescription holds the per-element facts used by the tokenizer
// (content model) and the tree builder (structure).
type NodeDescription struct {
	Void              bool
	AllowSelfClosing  bool
	ClosedByParent    bool
	ClosedByChildren  map[string]bool
	IgnoreFirstLF     bool
	ContentModel      ContentModel
	ImplicitNamespace string
}

// IsClosedByChild reports whether opening child implicitly closes an
// element with this description.
func (d NodeDescription) IsClosedByChild(child string) bool {
	return d.Void || d.ClosedByChildren[toLowerASCII(child)]
}

// Resolver maps an element name to its description.
type Resolver func(name string) NodeDescription

var voidElements = []string{
	"area", "base", "br", "col", "embed", "hr", "img", "input",
	"link", "meta", "param", "source", "track", "wbr",
}

var builtinDescriptions = func() map[string]NodeDescription {
	m := make(map[string]NodeDescription)
	for _, name := range voidElements {
		m[name] = NodeDescription{Void: true, AllowSelfClosing: true, ClosedByParent: true}
	}
	for _, name := range []string{"script", "style", "xmp", "iframe", "noembed", "noframes"} {
		m[name] = NodeDescription{ContentModel: RawText}
	}
	m["title"] = NodeDescription{ContentModel: EscapableRawText}
	m["textarea"] = NodeDescription{ContentModel: EscapableRawText, IgnoreFirstLF: true}
	m["pre"] = NodeDescription{IgnoreFirstLF: true}
	m["listing"] = NodeDescription{IgnoreFirstLF: true}
	m["svg"] = NodeDescription{ImplicitNamespace: "svg", AllowSelfClosing: true}
	m["math"] = NodeDescription{ImplicitNamespace: "math", AllowSelfClosing: true}
	return m
}()

// DefaultDescription is the built-in Resolver. Unknown names get a Data
// content model with every other fact false.
func DefaultDescription(name string) NodeDescription {
	if d, ok := builtinDescriptions[name]; ok {
		return d
	}
	if d, ok := builtinDescriptions[toLowerASCII(name)]; ok {
		return d
	}
	return NodeDescription{ContentModel: Data}
}

// Registry layers explicit definitions over a fallback resolver so a host
// grammar can describe its own component names.
type Registry struct {
	defs     map[string]NodeDescription
	fallback Resolver
}

// NewRegistry returns a registry that falls back to DefaultDescription.
func NewRegistry() *Registry {
	return NewRegistryWithFallback(DefaultDescription)
}

func NewRegistryWithFallback(fallback Resolver) *Registry {
	if fallback == nil {
		fallback = DefaultDescription
	}
	return &Registry{
		defs:     make(map[string]NodeDescription),
		fallback: fallback,
	}
}

// Define sets the description for name, replacing any built-in entry.
func (r *Registry) Define(name string, d NodeDescription) {
	if len(d.ClosedByChildren) > 0 {
		normalized := make(map[string]bool, len(d.ClosedByChildren))
		for child, ok := range d.ClosedByChildren {
			normalized[toLowerASCII(child)] = ok
		}
		d.ClosedByChildren = normalized
	}
	r.defs[name] = d
}

// Lookup resolves name. It has the Resolver signature.
func (r *Registry) Lookup(name string) NodeDescription {
	if d, ok := r.defs[name]; ok {
		return d
	}
	if d, ok := r.defs[toLowerASCII(name)]; ok {
		return d
	}
	return r.fallback(name)
}

// Names returns the explicitly defined names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.defs))
	for name := range r.defs {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func toLowerASCII(s string) string {
	for i := 0; i < len(s); i++ {
		if c := s[i]; 'A' <= c && c <= 'Z' {
			b := []byte(s)
			for j := i; j < len(b); j++ {
				if 'A' <= b[j] && b[j] <= 'Z' {
					b[j] += 'a' - 'A'
				}
			}
			return string(b)
		}
	}
	return s
}
