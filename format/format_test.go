package format

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/dhamidi/tml/markup"
)

func parse(t *testing.T, src string) []markup.Node {
	t.Helper()
	nodes, _ := markup.Parse(src, markup.WithCDATA(true))
	return nodes
}

func TestTreeEncoder(t *testing.T) {
	nodes := parse(t, `<a href="x" hidden>hi<br/></a><!--c-->`)
	var buf bytes.Buffer
	if err := NewTreeEncoder(&buf, false).Encode(nodes); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	want := strings.Join([]string{
		`Tag a`,
		`  @href="x"`,
		`  @hidden`,
		`  Text "hi"`,
		`  Tag br /`,
		`Comment "c"`,
		``,
	}, "\n")
	if diff := cmp.Diff(want, buf.String()); diff != "" {
		t.Errorf("tree mismatch (-want +got):\n%s", diff)
	}
}

func TestTreeEncoderPositions(t *testing.T) {
	nodes := parse(t, "<p>x</p>")
	text, err := NewTreeEncoder(nil, true).MarshalText(nodes)
	if err != nil {
		t.Fatalf("MarshalText: %v", err)
	}
	want := "Tag p [0:0-0:8]\n  Text \"x\" [0:3-0:4]\n"
	if string(text) != want {
		t.Errorf("got %q, want %q", text, want)
	}
}

func TestJSONEncoder(t *testing.T) {
	nodes := parse(t, `<a href="x" hidden>hi</a>`)
	var buf bytes.Buffer
	if err := NewJSONEncoder(&buf).Encode(nodes); err != nil {
		t.Fatalf("Encode: %v", err)
	}

	var got []JSONNode
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("len = %d, want 1", len(got))
	}
	a := got[0]
	if a.Kind != "Tag" || a.Name != "a" {
		t.Errorf("root = %s %s", a.Kind, a.Name)
	}
	if len(a.Attributes) != 2 {
		t.Fatalf("attributes = %+v", a.Attributes)
	}
	if a.Attributes[0].Value == nil || *a.Attributes[0].Value != "x" {
		t.Errorf("href value = %v", a.Attributes[0].Value)
	}
	if a.Attributes[1].Value != nil {
		t.Errorf("hidden has value %q", *a.Attributes[1].Value)
	}
	if len(a.Children) != 1 || a.Children[0].Value == nil || *a.Children[0].Value != "hi" {
		t.Errorf("children = %+v", a.Children)
	}
	if a.Span.End.Column != 25 {
		t.Errorf("span end column = %d, want 25", a.Span.End.Column)
	}
	if !strings.Contains(buf.String(), `"hidden"`) || strings.Contains(buf.String(), `"value": null`) {
		t.Errorf("unexpected JSON: %s", buf.String())
	}
}

func TestJSONNodesEmpty(t *testing.T) {
	if got := JSONNodes(nil); got == nil || len(got) != 0 {
		t.Errorf("JSONNodes(nil) = %v, want empty slice", got)
	}
}

func TestMarkupEncoderRoundTrip(t *testing.T) {
	inputs := []string{
		`<!DOCTYPE html><html><body class="x">text</body></html>`,
		`<div><br><img src="a.png"><input disabled></div>`,
		`<svg/><p>a &amp; b</p>`,
		`<script>if (a<b && c) { x = "</div>"; }</script>`,
		`<textarea><b>not a tag</b></textarea>`,
		`<!-- note --><![CDATA[raw]]>`,
		"<pre>\n\nx</pre>",
		"<textarea>\n\nx</textarea>",
	}
	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			text, err := NewMarkupEncoder(nil, nil).MarshalText(parse(t, input))
			if err != nil {
				t.Fatalf("MarshalText: %v", err)
			}
			if string(text) != input {
				t.Errorf("got  %s\nwant %s", text, input)
			}
		})
	}
}

func TestMarkupEncoderKeepsLeadingNewline(t *testing.T) {
	nodes := parse(t, "<pre>\n\nx</pre>")
	text, _ := NewMarkupEncoder(nil, nil).MarshalText(nodes)
	again := parse(t, string(text))
	if got, want := markup.TextContent(again[0]), "\nx"; got != want {
		t.Errorf("re-parsed pre text = %q, want %q", got, want)
	}

	nodes = parse(t, "<pre>\nx</pre>")
	text, _ = NewMarkupEncoder(nil, nil).MarshalText(nodes)
	if want := "<pre>x</pre>"; string(text) != want {
		t.Errorf("got %q, want %q", text, want)
	}
}

func TestMarkupEncoderRepairs(t *testing.T) {
	nodes := parse(t, `<div><span>x`)
	text, _ := NewMarkupEncoder(nil, nil).MarshalText(nodes)
	if want := `<div><span>x</span></div>`; string(text) != want {
		t.Errorf("got %s, want %s", text, want)
	}
}

func TestMarkupEncoderCanonical(t *testing.T) {
	nodes := parse(t, `<p title='a"b'>1 < 2 &amp; 3</p><script>a<b</script>`)
	enc := NewMarkupEncoder(nil, nil)
	enc.Canonical = true
	text, _ := enc.MarshalText(nodes)
	want := `<p title="a&#34;b">1 &lt; 2 &amp; 3</p><script>a<b</script>`
	if string(text) != want {
		t.Errorf("got  %s\nwant %s", text, want)
	}
}

func TestLineEncoder(t *testing.T) {
	nodes := parse(t, "<p>a<br></p><div>\n<x/>")
	var buf bytes.Buffer
	if err := NewLineEncoder(&buf).Encode(nodes); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	want := strings.Join([]string{
		"0\ttag\tp\t0:0\t0:12\t-\t-",
		"1\ttext\t-\t0:3\t0:4\t-\t\"a\"",
		"1\ttag\tbr\t0:4\t0:8\tvoid\t-",
		"0\ttag\tdiv\t0:12\t0:17\timplicit-end\t-",
		"1\ttext\t-\t0:17\t0:18\t-\t\"\\n\"",
		"1\ttag\tx\t1:0\t1:4\tself-closing\t-",
		"",
	}, "\n")
	if diff := cmp.Diff(want, buf.String()); diff != "" {
		t.Errorf("lines mismatch (-want +got):\n%s", diff)
	}
}

func TestNew(t *testing.T) {
	for _, name := range Names {
		if _, err := New(name, &bytes.Buffer{}, false, nil); err != nil {
			t.Errorf("New(%q): %v", name, err)
		}
	}
	if _, err := New("yaml", &bytes.Buffer{}, false, nil); err == nil {
		t.Error("New(yaml) succeeded")
	}
}
