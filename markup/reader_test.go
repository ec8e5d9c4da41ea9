package markup

import (
	"testing"
)

func TestReaderLagOnePositions(t *testing.T) {
	r := NewReader("a\nb")

	tests := []struct {
		char rune
		pos  Position
	}{
		{'a', Position{Line: 0, Column: 0}},
		{'\n', Position{Line: 0, Column: 1}},
		{'b', Position{Line: 1, Column: 0}},
	}
	for _, tt := range tests {
		c := r.Consume()
		if c != tt.char {
			t.Fatalf("Consume() = %q, want %q", c, tt.char)
		}
		if got := r.Position(); got != tt.pos {
			t.Errorf("Position() after %q = %v, want %v", tt.char, got, tt.pos)
		}
	}
	if c := r.Consume(); c != EOF {
		t.Errorf("Consume() at end = %q, want EOF", c)
	}
	if r.HasNext() {
		t.Error("HasNext() at end = true, want false")
	}
}

func TestReaderReconsumeReproducesPosition(t *testing.T) {
	input := "ab\n\ncd"
	r := NewReader(input)
	for range []rune(input) {
		c := r.Consume()
		pos := r.Position()

		r.Reconsume()
		if !r.HasNext() {
			t.Fatal("HasNext() after Reconsume = false, want true")
		}
		again := r.Consume()
		if again != c {
			t.Errorf("Consume() after Reconsume = %q, want %q", again, c)
		}
		if got := r.Position(); got != pos {
			t.Errorf("Position() after Reconsume of %q = %v, want %v", c, got, pos)
		}
	}
}

func TestReaderReconsumeNoOp(t *testing.T) {
	r := NewReader("x")
	r.Reconsume()
	if c := r.Consume(); c != 'x' {
		t.Errorf("Consume() after early Reconsume = %q, want 'x'", c)
	}
	if c := r.Consume(); c != EOF {
		t.Fatalf("Consume() = %q, want EOF", c)
	}
	r.Reconsume()
	if c := r.Consume(); c != EOF {
		t.Errorf("Consume() after Reconsume at EOF = %q, want EOF", c)
	}
}

func TestReaderEmpty(t *testing.T) {
	r := NewReader("")
	if r.HasNext() {
		t.Error("HasNext() = true, want false")
	}
	if c := r.Consume(); c != EOF {
		t.Errorf("Consume() = %q, want EOF", c)
	}
}

func TestReaderMultibyte(t *testing.T) {
	r := NewReader("é€x")
	r.Consume()
	r.Consume()
	if c := r.Consume(); c != 'x' {
		t.Fatalf("Consume() = %q, want 'x'", c)
	}
	if got := r.Position(); got.Column != 2 {
		t.Errorf("Column = %d, want 2", got.Column)
	}
}

func TestReaderIndexOutOfRangePanics(t *testing.T) {
	r := NewReader("ab")
	r.length = 3

	defer func() {
		v := recover()
		if v == nil {
			t.Fatal("expected panic")
		}
		if _, ok := v.(*InvariantError); !ok {
			t.Errorf("panic value = %T, want *InvariantError", v)
		}
	}()
	for i := 0; i < 3; i++ {
		r.Consume()
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"none", "a\nb", "a\nb"},
		{"crlf", "a\r\nb", "a\nb"},
		{"cr", "a\rb", "a\nb"},
		{"mixed", "a\r\r\nb\r", "a\n\nb\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.input); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
