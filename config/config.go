// Package config loads .tml.yaml project files.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	gitignore "github.com/sabhiram/go-gitignore"
	"gopkg.in/yaml.v3"

	"github.com/dhamidi/tml/markup"
)

// FileName is the project file looked up by Find.
const FileName = ".tml.yaml"

// Config is the contents of a project file.
type Config struct {
	// Path is the file the config was loaded from, empty for Default.
	Path string `yaml:"-"`

	Parser     Parser             `yaml:"parser"`
	Extensions []string           `yaml:"extensions"`
	Exclude    []string           `yaml:"exclude"`
	Elements   map[string]Element `yaml:"elements"`

	exclude *gitignore.GitIgnore
}

// Parser mirrors the markup parser options.
type Parser struct {
	AllowComments      bool `yaml:"allowComments"`
	AllowCDATA         bool `yaml:"allowCDATA"`
	TagNameToLowerCase bool `yaml:"tagNameToLowerCase"`
	HTML4              bool `yaml:"html4"`
}

// Element describes a project-specific element, or overrides a built-in
// one.
type Element struct {
	Void             bool     `yaml:"void"`
	SelfClosing      bool     `yaml:"selfClosing"`
	ClosedByParent   bool     `yaml:"closedByParent"`
	ClosedByChildren []string `yaml:"closedByChildren"`
	IgnoreFirstLF    bool     `yaml:"ignoreFirstLF"`
	ContentModel     string   `yaml:"contentModel"`
	Namespace        string   `yaml:"namespace"`
}

// Default returns the configuration used when no project file exists.
func Default() *Config {
	c := &Config{
		Parser:     Parser{AllowComments: true},
		Extensions: []string{".html", ".htm", ".tmpl", ".tml"},
	}
	c.compileExclude()
	return c
}

// Parse reads a project file's contents. Keys that are absent keep their
// default values.
func Parse(data []byte) (*Config, error) {
	c := Default()
	if err := yaml.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	for i, ext := range c.Extensions {
		if !strings.HasPrefix(ext, ".") {
			c.Extensions[i] = "." + ext
		}
	}
	for name, el := range c.Elements {
		if el.ContentModel == "" {
			continue
		}
		model, ok := markup.ParseContentModel(el.ContentModel)
		if !ok {
			return nil, fmt.Errorf("element %s: unknown content model %q", name, el.ContentModel)
		}
		if el.Void && model != markup.Data {
			return nil, fmt.Errorf("element %s: void elements have no content model", name)
		}
	}
	c.compileExclude()
	return c, nil
}

// Load reads the project file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", path, err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	c.Path = path
	return c, nil
}

// Find returns the nearest project file in dir or one of its parents.
func Find(dir string) (string, bool) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", false
	}
	for {
		candidate := filepath.Join(dir, FileName)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

// LoadDir loads the nearest project file above dir, or returns Default.
func LoadDir(dir string) (*Config, error) {
	path, ok := Find(dir)
	if !ok {
		return Default(), nil
	}
	return Load(path)
}

// Root is the directory paths in Exclude are relative to.
func (c *Config) Root() string {
	if c.Path == "" {
		return "."
	}
	return filepath.Dir(c.Path)
}

// ParserOptions returns the markup options this config selects,
// including a resolver for its elements.
func (c *Config) ParserOptions() []markup.Option {
	return []markup.Option{
		markup.WithComments(c.Parser.AllowComments),
		markup.WithCDATA(c.Parser.AllowCDATA),
		markup.WithLowerCaseTagNames(c.Parser.TagNameToLowerCase),
		markup.WithHTML4(c.Parser.HTML4),
		markup.WithResolver(c.Registry().Lookup),
	}
}

// Registry returns the built-in descriptions overlaid with Elements.
func (c *Config) Registry() *markup.Registry {
	r := markup.NewRegistry()
	for name, el := range c.Elements {
		model, _ := markup.ParseContentModel(el.ContentModel)
		d := markup.NodeDescription{
			Void:              el.Void,
			AllowSelfClosing:  el.SelfClosing || el.Void,
			ClosedByParent:    el.ClosedByParent || el.Void,
			IgnoreFirstLF:     el.IgnoreFirstLF,
			ContentModel:      model,
			ImplicitNamespace: el.Namespace,
		}
		if len(el.ClosedByChildren) > 0 {
			d.ClosedByChildren = make(map[string]bool, len(el.ClosedByChildren))
			for _, child := range el.ClosedByChildren {
				d.ClosedByChildren[child] = true
			}
		}
		r.Define(name, d)
	}
	return r
}

// Matches reports whether path, relative to Root, is a template this
// config selects.
func (c *Config) Matches(path string) bool {
	if !slices.Contains(c.Extensions, strings.ToLower(filepath.Ext(path))) {
		return false
	}
	if c.exclude == nil {
		c.compileExclude()
	}
	return !c.exclude.MatchesPath(filepath.ToSlash(path))
}

func (c *Config) compileExclude() {
	c.exclude = gitignore.CompileIgnoreLines(c.Exclude...)
}
