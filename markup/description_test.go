package markup

import (
	"slices"
	"testing"
)

func TestDefaultDescription(t *testing.T) {
	tests := []struct {
		name          string
		void          bool
		selfClosing   bool
		model         ContentModel
		ignoreFirstLF bool
		namespace     string
	}{
		{"br", true, true, Data, false, ""},
		{"IMG", true, true, Data, false, ""},
		{"script", false, false, RawText, false, ""},
		{"Style", false, false, RawText, false, ""},
		{"title", false, false, EscapableRawText, false, ""},
		{"textarea", false, false, EscapableRawText, true, ""},
		{"pre", false, false, Data, true, ""},
		{"svg", false, true, Data, false, "svg"},
		{"div", false, false, Data, false, ""},
		{"my-widget", false, false, Data, false, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := DefaultDescription(tt.name)
			if d.Void != tt.void {
				t.Errorf("Void = %v, want %v", d.Void, tt.void)
			}
			if d.AllowSelfClosing != tt.selfClosing {
				t.Errorf("AllowSelfClosing = %v, want %v", d.AllowSelfClosing, tt.selfClosing)
			}
			if d.ContentModel != tt.model {
				t.Errorf("ContentModel = %v, want %v", d.ContentModel, tt.model)
			}
			if d.IgnoreFirstLF != tt.ignoreFirstLF {
				t.Errorf("IgnoreFirstLF = %v, want %v", d.IgnoreFirstLF, tt.ignoreFirstLF)
			}
			if d.ImplicitNamespace != tt.namespace {
				t.Errorf("ImplicitNamespace = %q, want %q", d.ImplicitNamespace, tt.namespace)
			}
		})
	}
}

func TestNoBuiltinClosedByChildren(t *testing.T) {
	for name, d := range builtinDescriptions {
		if len(d.ClosedByChildren) != 0 {
			t.Errorf("%s declares ClosedByChildren %v", name, d.ClosedByChildren)
		}
	}
}

func TestIsClosedByChild(t *testing.T) {
	li := NodeDescription{ClosedByChildren: map[string]bool{"li": true}}
	if !li.IsClosedByChild("li") {
		t.Error("li.IsClosedByChild(li) = false, want true")
	}
	if !li.IsClosedByChild("LI") {
		t.Error("li.IsClosedByChild(LI) = false, want true")
	}
	if li.IsClosedByChild("span") {
		t.Error("li.IsClosedByChild(span) = true, want false")
	}
	if !DefaultDescription("br").IsClosedByChild("anything") {
		t.Error("void element must be closed by any child")
	}
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	r.Define("x-icon", NodeDescription{Void: true, AllowSelfClosing: true})
	r.Define("script", NodeDescription{ContentModel: Data})
	r.Define("item", NodeDescription{ClosedByChildren: map[string]bool{"ITEM": true}})

	if !r.Lookup("x-icon").Void {
		t.Error("x-icon should be void")
	}
	if got := r.Lookup("script").ContentModel; got != Data {
		t.Errorf("overridden script ContentModel = %v, want %v", got, Data)
	}
	if got := r.Lookup("style").ContentModel; got != RawText {
		t.Errorf("fallback style ContentModel = %v, want %v", got, RawText)
	}
	if !r.Lookup("item").IsClosedByChild("item") {
		t.Error("ClosedByChildren keys should be normalized")
	}
	if got, want := r.Names(), []string{"item", "script", "x-icon"}; !slices.Equal(got, want) {
		t.Errorf("Names() = %v, want %v", got, want)
	}
}

func TestContentModelString(t *testing.T) {
	tests := []struct {
		model ContentModel
		want  string
	}{
		{Data, "data"},
		{RawText, "raw_text"},
		{EscapableRawText, "escapable_raw_text"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.model.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
			parsed, ok := ParseContentModel(tt.want)
			if !ok || parsed != tt.model {
				t.Errorf("ParseContentModel(%q) = %v, %v", tt.want, parsed, ok)
			}
		})
	}
	if _, ok := ParseContentModel("bogus"); ok {
		t.Error("ParseContentModel(bogus) succeeded")
	}
}
