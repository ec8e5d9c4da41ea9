package format

import (
	"fmt"
	"io"

	"github.com/dhamidi/tml/markup"
)

// Encoder writes a node forest to its underlying writer.
type Encoder interface {
	Encode(nodes []markup.Node) error
}

// Names lists the formats accepted by New.
var Names = []string{"tree", "json", "markup", "lines"}

// New returns the encoder registered under name.
func New(name string, w io.Writer, positions bool, resolver markup.Resolver) (Encoder, error) {
	switch name {
	case "tree":
		return NewTreeEncoder(w, positions), nil
	case "json":
		return NewJSONEncoder(w), nil
	case "markup":
		return NewMarkupEncoder(w, resolver), nil
	case "lines":
		return NewLineEncoder(w), nil
	}
	return nil, fmt.Errorf("unknown format %q (want one of %v)", name, Names)
}
