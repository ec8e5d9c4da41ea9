// Package workspace keeps parsed templates of a project in memory and
// serves them to editors.
package workspace

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"slices"
	"strings"
	"sync"

	"github.com/tliron/commonlog"
	"golang.org/x/sync/errgroup"

	"github.com/dhamidi/tml/config"
	"github.com/dhamidi/tml/markup"
)

// Document is one parsed template.
type Document struct {
	Path        string
	Content     string
	Nodes       []markup.Node
	Diagnostics []markup.Diagnostic
}

// Workspace is safe for concurrent use.
type Workspace struct {
	mu       sync.RWMutex
	root     string
	cfg      *config.Config
	registry *markup.Registry
	opts     []markup.Option
	docs     map[string]*Document
	log      commonlog.Logger
}

func New(root string, cfg *config.Config) *Workspace {
	if cfg == nil {
		cfg = config.Default()
	}
	return &Workspace{
		root:     root,
		cfg:      cfg,
		registry: cfg.Registry(),
		opts:     cfg.ParserOptions(),
		docs:     make(map[string]*Document),
		log:      commonlog.GetLogger("tml.workspace"),
	}
}

func (w *Workspace) Root() string {
	return w.root
}

func (w *Workspace) Config() *config.Config {
	return w.cfg
}

// ScanAll discovers and parses every template below the root, several
// files at a time.
func (w *Workspace) ScanAll(ctx context.Context) error {
	paths, err := Discover(ctx, w.root, w.cfg)
	if err != nil {
		return fmt.Errorf("discover templates in %s: %w", w.root, err)
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, runtime.NumCPU()))
	for _, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			_, err := w.ScanFile(path)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	w.log.Info("scanned workspace", "root", w.root, "files", len(paths))
	return nil
}

// ScanFile reads and parses path.
func (w *Workspace) ScanFile(path string) (*Document, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return w.UpdateFile(path, string(content)), nil
}

// UpdateFile parses content as the new state of path.
func (w *Workspace) UpdateFile(path, content string) *Document {
	doc := w.parse(path, content)

	w.mu.Lock()
	defer w.mu.Unlock()
	w.docs[path] = doc
	return doc
}

func (w *Workspace) parse(path, content string) *Document {
	nodes, diags := markup.Parse(content, w.opts...)
	w.log.Debug("parsed", "path", path, "nodes", len(nodes), "diagnostics", len(diags))
	return &Document{
		Path:        path,
		Content:     content,
		Nodes:       nodes,
		Diagnostics: diags,
	}
}

func (w *Workspace) RemoveFile(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.docs, path)
}

// GetFile returns the document for path, or nil.
func (w *Workspace) GetFile(path string) *Document {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.docs[path]
}

// Documents returns every document, sorted by path.
func (w *Workspace) Documents() []*Document {
	w.mu.RLock()
	docs := make([]*Document, 0, len(w.docs))
	for _, doc := range w.docs {
		docs = append(docs, doc)
	}
	w.mu.RUnlock()

	slices.SortFunc(docs, func(a, b *Document) int {
		return strings.Compare(a.Path, b.Path)
	})
	return docs
}

// TagAt returns the innermost element of path whose span contains pos.
func (w *Workspace) TagAt(path string, pos markup.Position) *markup.Tag {
	doc := w.GetFile(path)
	if doc == nil {
		return nil
	}
	n := markup.NodeAt(doc.Nodes, pos)
	if n == nil {
		return nil
	}
	if tag, ok := n.(*markup.Tag); ok {
		return tag
	}
	return n.Parent()
}

// Describe resolves name with the workspace's element registry.
func (w *Workspace) Describe(name string) markup.NodeDescription {
	return w.registry.Lookup(name)
}
