package markup

// Tokenizer drives the lexer over a Reader and delivers tokens to a
// handler. Diagnostics are reported in the order they arise, interleaved
// with the tokens.
type Tokenizer struct {
	handler     TokenHandler
	diagnostics Diagnostics
	lx          *lexer
}

func NewTokenizer(handler TokenHandler, opts ...Option) *Tokenizer {
	o := buildOptions(opts)
	return newTokenizer(handler, o)
}

func newTokenizer(handler TokenHandler, o options) *Tokenizer {
	return &Tokenizer{
		handler:     handler,
		diagnostics: o.diagnostics,
		lx:          newLexer(o),
	}
}

// Start resets the tokenizer and notifies the handler.
func (t *Tokenizer) Start() {
	t.lx.reset()
	t.handler.OnStart()
}

// SetContentModel switches how the following characters are scanned. A
// handler calls it from OnOpenTag; it applies from the next character.
func (t *Tokenizer) SetContentModel(model ContentModel, expectedEndTag string) {
	t.lx.setContentModel(model, expectedEndTag)
}

// Tokenize consumes r to the end. It never fails for malformed input.
func (t *Tokenizer) Tokenize(r *Reader) {
	for {
		c := r.Consume()
		var pos Position
		if c == EOF {
			if r.started {
				pos = r.Position().After()
			}
		} else {
			pos = r.Position()
		}
		again := t.lx.step(c, pos)
		t.drain()
		if c == EOF {
			return
		}
		if again {
			r.Reconsume()
		}
	}
}

func (t *Tokenizer) drain() {
	for _, e := range t.lx.takeEffects() {
		if e.diag != nil {
			report(t.diagnostics, *e.diag)
			continue
		}
		dispatch(t.handler, e.token)
	}
}

// Tokens scans text and returns its tokens, EOF included. Element
// bodies are scanned with the content model the resolver assigns, as
// they are during a parse.
func Tokens(text string, opts ...Option) []Token {
	o := buildOptions(opts)
	rec := &switchingRecorder{resolver: o.resolver, html4: o.html4}
	t := newTokenizer(rec, o)
	rec.tokenizer = t
	t.Start()
	t.Tokenize(NewReader(Normalize(text)))
	return rec.Tokens
}

type switchingRecorder struct {
	TokenRecorder
	resolver  Resolver
	html4     bool
	tokenizer ContentModelSwitcher
}

func (r *switchingRecorder) OnOpenTag(name string, attrs []Attribute, selfClosing bool, span Span) {
	r.TokenRecorder.OnOpenTag(name, attrs, selfClosing, span)
	desc := r.resolver(name)
	if selfClosing && r.html4 && !desc.AllowSelfClosing {
		// The tree builder opens the element in this case.
		selfClosing = false
	}
	if !selfClosing && !desc.Void && desc.ContentModel != Data {
		r.tokenizer.SetContentModel(desc.ContentModel, name)
	}
}
