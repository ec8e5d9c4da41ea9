// Package ui serves the browser playground: paste markup, see the tree
// and the diagnostics the parser reports for it.
package ui

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/tliron/commonlog"

	"github.com/dhamidi/tml/config"
	"github.com/dhamidi/tml/format"
	"github.com/dhamidi/tml/markup"
	"github.com/dhamidi/tml/report"
	"github.com/dhamidi/tml/workspace"
)

//go:embed static templates
var embeddedFS embed.FS

// maxSourceBytes bounds the size of a posted document.
const maxSourceBytes = 4 << 20

type Server struct {
	cfg        *config.Config
	ws         *workspace.Workspace
	staticFS   fs.FS
	mux        *http.ServeMux
	templateFS fs.FS
	funcMap    template.FuncMap
	log        commonlog.Logger
}

// NewServer creates the playground. ws may be nil, in which case the
// file browser is empty.
func NewServer(cfg *config.Config, ws *workspace.Workspace) (*Server, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	staticFS := overlayFS("ui/static", mustSub(embeddedFS, "static"))
	templateFS := overlayFS("ui/templates", mustSub(embeddedFS, "templates"))

	funcMap := template.FuncMap{
		"tree": func(nodes []markup.Node) string {
			text, err := format.NewTreeEncoder(nil, true).MarshalText(nodes)
			if err != nil {
				return err.Error()
			}
			return string(text)
		},
		"describe": markup.DescribeCode,
		"fileURL": func(path string) string {
			return "/files/" + strings.TrimPrefix(filepath.ToSlash(path), "/")
		},
		"severityClass": func(sev markup.Severity) string {
			return "sev-" + sev.String()
		},
		"lineCol": func(p markup.Position) string {
			return fmt.Sprintf("%d:%d", p.Line+1, p.Column+1)
		},
		"counts": func(doc *workspace.Document) string {
			errs, warns := report.Counts([]report.FileDiagnostics{{Path: doc.Path, Diagnostics: doc.Diagnostics}})
			return fmt.Sprintf("%d errors, %d warnings", errs, warns)
		},
	}

	if _, err := template.New("").Funcs(funcMap).ParseFS(templateFS, "*.html"); err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	s := &Server{
		cfg:        cfg,
		ws:         ws,
		staticFS:   staticFS,
		mux:        http.NewServeMux(),
		templateFS: templateFS,
		funcMap:    funcMap,
		log:        commonlog.GetLogger("tml.ui"),
	}

	s.mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.FS(staticFS))))
	s.mux.HandleFunc("POST /api/parse", s.handleParse)
	s.mux.HandleFunc("GET /api/files", s.handleFiles)
	s.mux.HandleFunc("GET /files/{path...}", s.handleFile)
	s.mux.HandleFunc("GET /", s.handleIndex)

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.log.Debug("request", "method", r.Method, "path", r.URL.Path)
	s.mux.ServeHTTP(w, r)
}

func (s *Server) render(w http.ResponseWriter, name string, data any) {
	tmpl, err := template.New("").Funcs(s.funcMap).ParseFS(s.templateFS, "*.html")
	if err != nil {
		http.Error(w, "template error: "+err.Error(), http.StatusInternalServerError)
		return
	}
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		s.log.Error("render failed", "template", name, "error", err)
		http.Error(w, "template error: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	buf.WriteTo(w)
}

// ParseOptions are the parser switches a playground request may set.
// Unset fields keep the server's configuration.
type ParseOptions struct {
	AllowComments      *bool `json:"allowComments,omitempty"`
	AllowCDATA         *bool `json:"allowCDATA,omitempty"`
	TagNameToLowerCase *bool `json:"tagNameToLowerCase,omitempty"`
	HTML4              *bool `json:"html4,omitempty"`
}

type ParseRequest struct {
	Source  string       `json:"source"`
	Options ParseOptions `json:"options"`
}

type ParseResponse struct {
	Tree        []*format.JSONNode      `json:"tree"`
	Diagnostics []report.JSONDiagnostic `json:"diagnostics"`
	Markup      string                  `json:"markup"`
}

func (s *Server) parserOptions(o ParseOptions) []markup.Option {
	opts := s.cfg.ParserOptions()
	if o.AllowComments != nil {
		opts = append(opts, markup.WithComments(*o.AllowComments))
	}
	if o.AllowCDATA != nil {
		opts = append(opts, markup.WithCDATA(*o.AllowCDATA))
	}
	if o.TagNameToLowerCase != nil {
		opts = append(opts, markup.WithLowerCaseTagNames(*o.TagNameToLowerCase))
	}
	if o.HTML4 != nil {
		opts = append(opts, markup.WithHTML4(*o.HTML4))
	}
	return opts
}

func (s *Server) parse(req ParseRequest) (*ParseResponse, error) {
	nodes, diags := markup.Parse(req.Source, s.parserOptions(req.Options)...)
	text, err := format.NewMarkupEncoder(nil, s.cfg.Registry().Lookup).MarshalText(nodes)
	if err != nil {
		return nil, fmt.Errorf("serialize tree: %w", err)
	}
	return &ParseResponse{
		Tree:        format.JSONNodes(nodes),
		Diagnostics: report.DiagnosticsToJSON(diags),
		Markup:      string(text),
	}, nil
}

func (s *Server) handleParse(w http.ResponseWriter, r *http.Request) {
	var req ParseRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxSourceBytes)

	contentType := r.Header.Get("Content-Type")
	if strings.HasPrefix(contentType, "application/json") {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid JSON: "+err.Error(), http.StatusBadRequest)
			return
		}
	} else {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "invalid form data: "+err.Error(), http.StatusBadRequest)
			return
		}
		req.Source = r.FormValue("source")
		req.Options = ParseOptions{
			AllowComments:      formBool(r, "allowComments"),
			AllowCDATA:         formBool(r, "allowCDATA"),
			TagNameToLowerCase: formBool(r, "tagNameToLowerCase"),
			HTML4:              formBool(r, "html4"),
		}
	}

	resp, err := s.parse(req)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	s.log.Info("parsed playground source", "bytes", len(req.Source), "diagnostics", len(resp.Diagnostics))

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		s.log.Error("write response failed", "error", err)
	}
}

func formBool(r *http.Request, key string) *bool {
	if !r.Form.Has(key) {
		return nil
	}
	v := r.FormValue(key)
	b := v == "on" || v == "true" || v == "1"
	return &b
}

type fileSummary struct {
	Path     string `json:"path"`
	Errors   int    `json:"errors"`
	Warnings int    `json:"warnings"`
}

func (s *Server) documents() []*workspace.Document {
	if s.ws == nil {
		return nil
	}
	return s.ws.Documents()
}

func (s *Server) handleFiles(w http.ResponseWriter, r *http.Request) {
	files := []fileSummary{}
	for _, doc := range s.documents() {
		errs, warns := report.Counts([]report.FileDiagnostics{{Path: doc.Path, Diagnostics: doc.Diagnostics}})
		files = append(files, fileSummary{Path: doc.Path, Errors: errs, Warnings: warns})
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(files); err != nil {
		s.log.Error("write response failed", "error", err)
	}
}

func (s *Server) handleFile(w http.ResponseWriter, r *http.Request) {
	path := r.PathValue("path")
	var doc *workspace.Document
	if s.ws != nil {
		doc = s.ws.GetFile(path)
		if doc == nil {
			doc = s.ws.GetFile("/" + path)
		}
	}
	if doc == nil {
		http.Error(w, "file not found", http.StatusNotFound)
		return
	}
	s.render(w, "file.html", doc)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	data := struct {
		Documents []*workspace.Document
		Config    *config.Config
	}{
		Documents: s.documents(),
		Config:    s.cfg,
	}
	s.render(w, "index.html", data)
}

func mustSub(fsys fs.FS, dir string) fs.FS {
	sub, err := fs.Sub(fsys, dir)
	if err != nil {
		panic(err)
	}
	return sub
}

// overlayFS prefers files on disk below primaryPath so templates can be
// edited without rebuilding.
type overlayFSType struct {
	primary   fs.FS
	secondary fs.FS
}

func overlayFS(primaryPath string, secondary fs.FS) fs.FS {
	return &overlayFSType{
		primary:   os.DirFS(primaryPath),
		secondary: secondary,
	}
}

func (o *overlayFSType) Open(name string) (fs.File, error) {
	f, err := o.primary.Open(name)
	if err == nil {
		return f, nil
	}
	return o.secondary.Open(name)
}

func (o *overlayFSType) ReadDir(name string) ([]fs.DirEntry, error) {
	entries := make(map[string]fs.DirEntry)

	if rd, ok := o.secondary.(fs.ReadDirFS); ok {
		if list, err := rd.ReadDir(name); err == nil {
			for _, e := range list {
				entries[e.Name()] = e
			}
		}
	}

	if rd, ok := o.primary.(fs.ReadDirFS); ok {
		if list, err := rd.ReadDir(name); err == nil {
			for _, e := range list {
				entries[e.Name()] = e
			}
		}
	}

	result := make([]fs.DirEntry, 0, len(entries))
	for _, e := range entries {
		result = append(result, e)
	}
	return result, nil
}
