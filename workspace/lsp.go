package workspace

import (
	"context"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/tliron/commonlog"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"github.com/tliron/glsp/server"
	"golang.org/x/net/html/atom"

	"github.com/dhamidi/tml/config"
	"github.com/dhamidi/tml/markup"

	_ "github.com/tliron/commonlog/simple"
)

const lsName = "tml"

// LSPServer speaks the language server protocol over stdio. Columns are
// exchanged as rune offsets.
type LSPServer struct {
	ws      *Workspace
	cfg     *config.Config
	handler protocol.Handler
	server  *server.Server
	version string
	log     commonlog.Logger
}

// NewLSPServer creates a server. When cfg is nil the configuration is
// looked up from the client's root directory during initialize.
func NewLSPServer(version string, cfg *config.Config) *LSPServer {
	ls := &LSPServer{
		cfg:     cfg,
		version: version,
		log:     commonlog.GetLogger("tml.lsp"),
	}

	ls.handler = protocol.Handler{
		Initialize:                 ls.initialize,
		Initialized:                ls.initialized,
		Shutdown:                   ls.shutdown,
		SetTrace:                   ls.setTrace,
		TextDocumentDidOpen:        ls.textDocumentDidOpen,
		TextDocumentDidChange:      ls.textDocumentDidChange,
		TextDocumentDidClose:       ls.textDocumentDidClose,
		TextDocumentDidSave:        ls.textDocumentDidSave,
		TextDocumentDocumentSymbol: ls.textDocumentDocumentSymbol,
		TextDocumentHover:          ls.textDocumentHover,
		TextDocumentCompletion:     ls.textDocumentCompletion,
	}

	ls.server = server.NewServer(&ls.handler, lsName, false)

	return ls
}

func (ls *LSPServer) RunStdio() error {
	return ls.server.RunStdio()
}

func (ls *LSPServer) initialize(ctx *glsp.Context, params *protocol.InitializeParams) (any, error) {
	rootDir := "."
	if params.RootPath != nil && *params.RootPath != "" {
		rootDir = *params.RootPath
	} else if params.RootURI != nil && *params.RootURI != "" {
		if path, err := uriToPath(*params.RootURI); err == nil {
			rootDir = path
		}
	}

	cfg := ls.cfg
	if cfg == nil {
		loaded, err := config.LoadDir(rootDir)
		if err != nil {
			ls.log.Warning("falling back to default configuration", "root", rootDir, "error", err)
			loaded = config.Default()
		}
		cfg = loaded
	}
	ls.ws = New(rootDir, cfg)

	capabilities := ls.handler.CreateServerCapabilities()

	capabilities.TextDocumentSync = &protocol.TextDocumentSyncOptions{
		OpenClose: boolPtr(true),
		Change:    intPtr(int(protocol.TextDocumentSyncKindFull)),
		Save: &protocol.SaveOptions{
			IncludeText: boolPtr(true),
		},
	}

	capabilities.CompletionProvider = &protocol.CompletionOptions{
		TriggerCharacters: []string{"<", "/"},
	}

	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    lsName,
			Version: &ls.version,
		},
	}, nil
}

func (ls *LSPServer) initialized(ctx *glsp.Context, params *protocol.InitializedParams) error {
	if err := ls.ws.ScanAll(context.Background()); err != nil {
		ls.log.Error("initial scan failed", "root", ls.ws.Root(), "error", err)
	}
	return nil
}

func (ls *LSPServer) shutdown(ctx *glsp.Context) error {
	return nil
}

func (ls *LSPServer) setTrace(ctx *glsp.Context, params *protocol.SetTraceParams) error {
	protocol.SetTraceValue(params.Value)
	return nil
}

func (ls *LSPServer) textDocumentDidOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	path, err := uriToPath(params.TextDocument.URI)
	if err != nil {
		return nil
	}
	doc := ls.ws.UpdateFile(path, params.TextDocument.Text)
	ls.publish(ctx, params.TextDocument.URI, doc.Diagnostics)
	return nil
}

func (ls *LSPServer) textDocumentDidChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	path, err := uriToPath(params.TextDocument.URI)
	if err != nil {
		return nil
	}
	if len(params.ContentChanges) > 0 {
		change := params.ContentChanges[len(params.ContentChanges)-1]
		if textChange, ok := change.(protocol.TextDocumentContentChangeEventWhole); ok {
			doc := ls.ws.UpdateFile(path, textChange.Text)
			ls.publish(ctx, params.TextDocument.URI, doc.Diagnostics)
		}
	}
	return nil
}

func (ls *LSPServer) textDocumentDidClose(ctx *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	ls.publish(ctx, params.TextDocument.URI, nil)
	return nil
}

func (ls *LSPServer) textDocumentDidSave(ctx *glsp.Context, params *protocol.DidSaveTextDocumentParams) error {
	path, err := uriToPath(params.TextDocument.URI)
	if err != nil {
		return nil
	}
	var doc *Document
	if params.Text != nil {
		doc = ls.ws.UpdateFile(path, *params.Text)
	} else if doc, err = ls.ws.ScanFile(path); err != nil {
		ls.log.Warning("rescan on save failed", "path", path, "error", err)
		return nil
	}
	ls.publish(ctx, params.TextDocument.URI, doc.Diagnostics)
	return nil
}

func (ls *LSPServer) publish(ctx *glsp.Context, uri protocol.DocumentUri, diags []markup.Diagnostic) {
	ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: toLSPDiagnostics(diags),
	})
}

func (ls *LSPServer) textDocumentDocumentSymbol(ctx *glsp.Context, params *protocol.DocumentSymbolParams) (any, error) {
	path, err := uriToPath(params.TextDocument.URI)
	if err != nil {
		return nil, nil
	}
	doc := ls.ws.GetFile(path)
	if doc == nil {
		return nil, nil
	}
	return documentSymbols(doc.Nodes), nil
}

func (ls *LSPServer) textDocumentHover(ctx *glsp.Context, params *protocol.HoverParams) (*protocol.Hover, error) {
	path, err := uriToPath(params.TextDocument.URI)
	if err != nil {
		return nil, nil
	}
	tag := ls.ws.TagAt(path, fromLSPPosition(params.Position))
	if tag == nil {
		return nil, nil
	}
	r := toLSPRange(tag.StartTag)
	return &protocol.Hover{
		Contents: protocol.MarkupContent{
			Kind:  protocol.MarkupKindMarkdown,
			Value: hoverText(tag, ls.ws.Describe(tag.Name)),
		},
		Range: &r,
	}, nil
}

func (ls *LSPServer) textDocumentCompletion(ctx *glsp.Context, params *protocol.CompletionParams) (any, error) {
	path, err := uriToPath(params.TextDocument.URI)
	if err != nil {
		return nil, nil
	}
	doc := ls.ws.GetFile(path)
	if doc == nil {
		return nil, nil
	}

	prefix, ok := tagNamePrefix(doc.Content, fromLSPPosition(params.Position))
	if !ok {
		return nil, nil
	}

	var items []protocol.CompletionItem
	for _, name := range ls.completionNames() {
		if !strings.HasPrefix(name, prefix) {
			continue
		}
		kind := protocol.CompletionItemKindProperty
		detail := describeBrief(ls.ws.Describe(name))
		items = append(items, protocol.CompletionItem{
			Label:  name,
			Kind:   &kind,
			Detail: &detail,
		})
	}
	return items, nil
}

// completionNames lists configured elements followed by every element
// name already used in the workspace.
func (ls *LSPServer) completionNames() []string {
	seen := make(map[string]bool)
	var names []string
	add := func(name string) {
		if name != "" && !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	for _, name := range ls.ws.registry.Names() {
		add(name)
	}
	for _, doc := range ls.ws.Documents() {
		markup.Walk(doc.Nodes, func(n markup.Node) bool {
			if tag, ok := n.(*markup.Tag); ok {
				add(tag.Name)
			}
			return true
		})
	}
	return names
}

// tagNamePrefix returns the partial tag name typed right before pos, if
// pos is inside a start or end tag name.
func tagNamePrefix(content string, pos markup.Position) (string, bool) {
	lines := strings.Split(markup.Normalize(content), "\n")
	if pos.Line < 0 || pos.Line >= len(lines) {
		return "", false
	}
	line := []rune(lines[pos.Line])
	col := min(pos.Column, len(line))

	start := col
	for start > 0 && isNameRune(line[start-1]) {
		start--
	}
	i := start
	if i > 0 && line[i-1] == '/' {
		i--
	}
	if i == 0 || line[i-1] != '<' {
		return "", false
	}
	return string(line[start:col]), true
}

func isNameRune(r rune) bool {
	return r == '-' || r == '_' || r == ':' || r == '.' ||
		('a' <= r && r <= 'z') || ('A' <= r && r <= 'Z') || ('0' <= r && r <= '9')
}

func toLSPDiagnostics(diags []markup.Diagnostic) []protocol.Diagnostic {
	out := make([]protocol.Diagnostic, 0, len(diags))
	source := lsName
	for _, d := range diags {
		severity := toLSPSeverity(d.Severity)
		message := markup.DescribeCode(d.Code)
		if d.Subject != "" {
			message = fmt.Sprintf("%s (%s)", message, d.Subject)
		}
		out = append(out, protocol.Diagnostic{
			Range:    toLSPRange(d.Span),
			Severity: &severity,
			Code:     &protocol.IntegerOrString{Value: d.Code},
			Source:   &source,
			Message:  message,
		})
	}
	return out
}

func toLSPSeverity(s markup.Severity) protocol.DiagnosticSeverity {
	switch s {
	case markup.SeverityError, markup.SeverityFatal:
		return protocol.DiagnosticSeverityError
	case markup.SeverityWarn:
		return protocol.DiagnosticSeverityWarning
	case markup.SeverityInfo:
		return protocol.DiagnosticSeverityInformation
	default:
		return protocol.DiagnosticSeverityHint
	}
}

func documentSymbols(nodes []markup.Node) []protocol.DocumentSymbol {
	var symbols []protocol.DocumentSymbol
	for _, n := range nodes {
		tag, ok := n.(*markup.Tag)
		if !ok {
			continue
		}
		sym := protocol.DocumentSymbol{
			Name:           symbolName(tag),
			Kind:           protocol.SymbolKindObject,
			Range:          toLSPRange(tag.Span),
			SelectionRange: toLSPRange(tag.StartTag),
			Children:       documentSymbols(tag.Children),
		}
		if len(tag.Attributes) > 0 {
			detail := fmt.Sprintf("%d attributes", len(tag.Attributes))
			if len(tag.Attributes) == 1 {
				detail = "1 attribute"
			}
			sym.Detail = &detail
		}
		symbols = append(symbols, sym)
	}
	return symbols
}

// symbolName is the tag name decorated with its id and classes.
func symbolName(tag *markup.Tag) string {
	var b strings.Builder
	b.WriteString(tag.Name)
	if id, ok := tag.Attribute("id"); ok && id.HasValue() {
		b.WriteString("#")
		b.WriteString(*id.Value)
	}
	if class, ok := tag.Attribute("class"); ok && class.HasValue() {
		for _, c := range strings.Fields(*class.Value) {
			b.WriteString(".")
			b.WriteString(c)
		}
	}
	return b.String()
}

func hoverText(tag *markup.Tag, desc markup.NodeDescription) string {
	var b strings.Builder
	fmt.Fprintf(&b, "**<%s>**", tag.Name)
	if atom.Lookup([]byte(tag.Name)) != 0 {
		b.WriteString(" standard HTML element")
	} else {
		b.WriteString(" custom element")
	}
	b.WriteString("\n\n")
	b.WriteString(describeBrief(desc))

	switch {
	case tag.SelfClosing:
		b.WriteString("\n\nwritten self-closing")
	case tag.Void:
		b.WriteString("\n\nvoid, has no end tag")
	case tag.EndTag == nil:
		b.WriteString("\n\nclosed implicitly")
	}
	if n := len(tag.Attributes); n > 0 {
		fmt.Fprintf(&b, "\n\n%d attribute(s)", n)
	}
	return b.String()
}

func describeBrief(desc markup.NodeDescription) string {
	facts := []string{"content: " + desc.ContentModel.String()}
	if desc.Void {
		facts = append(facts, "void")
	}
	if desc.AllowSelfClosing {
		facts = append(facts, "self-closing allowed")
	}
	if desc.ClosedByParent {
		facts = append(facts, "closed by parent")
	}
	if desc.IgnoreFirstLF {
		facts = append(facts, "ignores first newline")
	}
	if desc.ImplicitNamespace != "" {
		facts = append(facts, "namespace "+desc.ImplicitNamespace)
	}
	return strings.Join(facts, ", ")
}

func toLSPPosition(p markup.Position) protocol.Position {
	return protocol.Position{
		Line:      protocol.UInteger(p.Line),
		Character: protocol.UInteger(p.Column),
	}
}

func fromLSPPosition(p protocol.Position) markup.Position {
	return markup.Position{Line: int(p.Line), Column: int(p.Character)}
}

func toLSPRange(s markup.Span) protocol.Range {
	return protocol.Range{Start: toLSPPosition(s.Start), End: toLSPPosition(s.End)}
}

func uriToPath(uri string) (string, error) {
	if strings.HasPrefix(uri, "file://") {
		parsed, err := url.Parse(uri)
		if err != nil {
			return "", err
		}
		return filepath.Clean(parsed.Path), nil
	}
	return uri, nil
}

func boolPtr(b bool) *bool {
	return &b
}

func intPtr(i int) *protocol.TextDocumentSyncKind {
	v := protocol.TextDocumentSyncKind(i)
	return &v
}
