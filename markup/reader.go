package markup

import (
	"fmt"
	"strings"
)

// EOF is returned by Reader.Consume once the input is exhausted.
const EOF rune = -1

// InvariantError signals a bug in the core, never malformed input.
type InvariantError struct {
	Message string
}

func (e *InvariantError) Error() string {
	return "markup: invariant violated: " + e.Message
}

// Normalize collapses CRLF pairs and lone carriage returns into a single
// line feed. The Reader expects normalized input.
func Normalize(text string) string {
	if !strings.ContainsRune(text, '\r') {
		return text
	}
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.ReplaceAll(text, "\r", "\n")
}

// Reader is a single-character cursor over normalized text with one
// character of pushback.
//
// Positions lag by one: consuming a line feed does not advance the line;
// the line is incremented when the character after it is consumed.
type Reader struct {
	input  []rune
	length int
	index  int

	pos       Position
	afterLF   bool
	last      rune
	started   bool
	atEOF     bool
	reconsume bool
}

func NewReader(text string) *Reader {
	input := []rune(text)
	return &Reader{
		input:  input,
		length: len(input),
		pos:    Position{Line: 0, Column: -1},
	}
}

// Consume returns the next character, or EOF.
func (r *Reader) Consume() rune {
	if r.reconsume {
		r.reconsume = false
		return r.last
	}
	if r.index >= r.length {
		r.atEOF = true
		return EOF
	}
	c := r.charAt(r.index)
	r.index++
	switch {
	case !r.started:
		r.started = true
		r.pos = Position{}
	case r.afterLF:
		r.pos.Line++
		r.pos.Column = 0
	default:
		r.pos.Column++
	}
	r.afterLF = c == '\n'
	r.last = c
	return c
}

// Reconsume makes the next Consume return the current character again
// without moving the cursor. It is a no-op before the first Consume and
// once EOF has been returned.
func (r *Reader) Reconsume() {
	if !r.started || r.atEOF {
		return
	}
	if debugAssertions && r.reconsume {
		panic(&InvariantError{Message: "reconsume requested twice"})
	}
	r.reconsume = true
}

// HasNext reports whether Consume would return a character.
func (r *Reader) HasNext() bool {
	return r.reconsume || r.index < r.length
}

// Position returns the position of the most recently consumed character.
func (r *Reader) Position() Position {
	return r.pos
}

func (r *Reader) charAt(i int) rune {
	if i < 0 || i >= len(r.input) {
		panic(&InvariantError{Message: fmt.Sprintf("character index %d outside [0,%d)", i, len(r.input))})
	}
	return r.input[i]
}
