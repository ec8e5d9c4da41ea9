package markup

// Option configures a Parser, Tokenizer or TreeBuilder.
type Option func(*options)

type options struct {
	resolver      Resolver
	diagnostics   Diagnostics
	allowComments bool
	allowCDATA    bool
	lowerCase     bool
	html4         bool
}

func defaultOptions() options {
	return options{
		resolver:      DefaultDescription,
		diagnostics:   Discard,
		allowComments: true,
	}
}

func buildOptions(opts []Option) options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.resolver == nil {
		o.resolver = DefaultDescription
	}
	if o.diagnostics == nil {
		o.diagnostics = Discard
	}
	return o
}

// WithResolver sets the element descriptor lookup.
func WithResolver(r Resolver) Option {
	return func(o *options) {
		o.resolver = r
	}
}

// WithDiagnostics sets the sink for lexical and structural anomalies.
func WithDiagnostics(d Diagnostics) Option {
	return func(o *options) {
		o.diagnostics = d
	}
}

// WithComments controls whether comments become nodes. Enabled by default.
func WithComments(enabled bool) Option {
	return func(o *options) {
		o.allowComments = enabled
	}
}

// WithCDATA enables <![CDATA[...]]> sections. When disabled they are
// scanned as bogus comments.
func WithCDATA(enabled bool) Option {
	return func(o *options) {
		o.allowCDATA = enabled
	}
}

// WithLowerCaseTagNames lower-cases the ASCII letters of tag names.
// Attribute names are never changed.
func WithLowerCaseTagNames(enabled bool) Option {
	return func(o *options) {
		o.lowerCase = enabled
	}
}

// WithHTML4 enables legacy leniency: a disallowed "/>" is ignored with a
// warning instead of an error.
func WithHTML4(enabled bool) Option {
	return func(o *options) {
		o.html4 = enabled
	}
}
