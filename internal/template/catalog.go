// Package template holds the topology template catalog and expands templates
// into concrete devices and connections.
package template

import (
	"embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"topodiagram/internal/domain"

	"gopkg.in/yaml.v3"
)

//go:embed templates/*.yaml
var builtinFS embed.FS

// ErrUnknownKind is returned when no template is registered for a topology kind
var ErrUnknownKind = errors.New("unknown topology kind")

// Catalog is the set of templates loaded at startup. It is not modified after
// loading; Get hands out copies.
type Catalog struct {
	templates map[domain.TopologyKind]domain.Template
}

// NewCatalog creates an empty catalog
func NewCatalog() *Catalog {
	return &Catalog{templates: make(map[domain.TopologyKind]domain.Template)}
}

// Builtin returns a catalog holding the embedded fiber, radio, wifi and SD-WAN
// templates
func Builtin() (*Catalog, error) {
	c := NewCatalog()
	if err := c.LoadFS(builtinFS, "templates/*.yaml"); err != nil {
		return nil, fmt.Errorf("failed to load builtin templates: %w", err)
	}
	return c, nil
}

// LoadDir adds every *.yaml and *.yml template in dir, replacing templates of
// the same kind
func (c *Catalog) LoadDir(dir string) error {
	fsys := os.DirFS(dir)
	for _, pattern := range []string{"*.yaml", "*.yml"} {
		if err := c.LoadFS(fsys, pattern); err != nil {
			return fmt.Errorf("failed to load templates from %s: %w", dir, err)
		}
	}
	return nil
}

// LoadFS adds every template file matching pattern in fsys
func (c *Catalog) LoadFS(fsys fs.FS, pattern string) error {
	paths, err := fs.Glob(fsys, pattern)
	if err != nil {
		return err
	}
	sort.Strings(paths)

	for _, path := range paths {
		f, err := fsys.Open(path)
		if err != nil {
			return fmt.Errorf("open %s: %w", path, err)
		}
		tmpl, err := Parse(f)
		f.Close()
		if err != nil {
			return fmt.Errorf("%s: %w", filepath.Base(path), err)
		}
		c.Add(*tmpl)
	}
	return nil
}

// Add registers a template under its kind
func (c *Catalog) Add(t domain.Template) {
	c.templates[t.Kind] = cloneTemplate(t)
}

// Get returns a copy of the template registered for kind
func (c *Catalog) Get(kind domain.TopologyKind) (domain.Template, error) {
	t, ok := c.templates[kind]
	if !ok {
		return domain.Template{}, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	return cloneTemplate(t), nil
}

// Kinds returns the registered topology kinds in sorted order
func (c *Catalog) Kinds() []domain.TopologyKind {
	kinds := make([]domain.TopologyKind, 0, len(c.templates))
	for k := range c.templates {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}

// Templates returns copies of every registered template in kind order
func (c *Catalog) Templates() []domain.Template {
	out := make([]domain.Template, 0, len(c.templates))
	for _, k := range c.Kinds() {
		out = append(out, cloneTemplate(c.templates[k]))
	}
	return out
}

// Parse decodes and validates a YAML template
func Parse(r io.Reader) (*domain.Template, error) {
	var t domain.Template
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(&t); err != nil {
		return nil, fmt.Errorf("failed to parse template: %w", err)
	}
	if err := Validate(&t); err != nil {
		return nil, err
	}
	return &t, nil
}

// Validate checks the structural requirements of a template. Rules naming
// undeclared archetypes are allowed; they produce dangling connections.
func Validate(t *domain.Template) error {
	if t.Kind == "" {
		return fmt.Errorf("template kind is required")
	}
	if t.Layout.Width <= 0 || t.Layout.Height <= 0 {
		return fmt.Errorf("template %s: layout width and height must be positive", t.Kind)
	}
	if t.Layout.Padding < 0 {
		return fmt.Errorf("template %s: layout padding must not be negative", t.Kind)
	}

	seen := make(map[string]bool, len(t.DeviceArchetypes))
	for _, a := range t.DeviceArchetypes {
		if a.ArchetypeID == "" {
			return fmt.Errorf("template %s: archetype ID is required", t.Kind)
		}
		if a.QuantityKey == "" {
			return fmt.Errorf("template %s: archetype %s has no quantity key", t.Kind, a.ArchetypeID)
		}
		if seen[a.ArchetypeID] {
			return fmt.Errorf("template %s: duplicate archetype %s", t.Kind, a.ArchetypeID)
		}
		seen[a.ArchetypeID] = true
	}
	return nil
}

func cloneTemplate(t domain.Template) domain.Template {
	t.DeviceArchetypes = append([]domain.DeviceArchetype(nil), t.DeviceArchetypes...)
	t.ConnectionRules = append([]domain.ConnectionRule(nil), t.ConnectionRules...)
	return t
}
