// Package sources holds the static feed registry.
package sources

import (
	"errors"
	"fmt"
	"os"

	"github.com/bilgisen/aidigest/internal/models"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Registry validation errors.
var (
	ErrNoSources       = errors.New("at least one source is required")
	ErrDuplicateSource = errors.New("duplicate source name")
)

// DefaultCategory is used for sources that declare no category.
const DefaultCategory = "Global"

// Registry is the ordered, immutable list of feed sources for a process.
type Registry struct {
	sources []models.Source
	rank    map[string]int
}

type registryFile struct {
	Sources []models.Source `yaml:"sources"`
}

// New validates sources and builds a registry preserving their order.
func New(list []models.Source) (*Registry, error) {
	if len(list) == 0 {
		return nil, ErrNoSources
	}

	validate := validator.New()
	r := &Registry{
		sources: make([]models.Source, 0, len(list)),
		rank:    make(map[string]int, len(list)),
	}
	for i, src := range list {
		if err := validate.Struct(src); err != nil {
			return nil, fmt.Errorf("source %d (%q): %w", i, src.Name, err)
		}
		if _, dup := r.rank[src.Name]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateSource, src.Name)
		}
		if src.Category == "" {
			src.Category = DefaultCategory
		}
		r.rank[src.Name] = len(r.sources)
		r.sources = append(r.sources, src)
	}
	return r, nil
}

// Default returns the built-in AI/ML source registry.
func Default() *Registry {
	r, err := New(defaultSources)
	if err != nil {
		panic(fmt.Sprintf("built-in source registry is invalid: %v", err))
	}
	return r
}

// LoadFile reads a YAML registry of the form `sources: [{name, url, category}]`.
func LoadFile(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read sources file: %w", err)
	}
	var file registryFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse sources file: %w", err)
	}
	return New(file.Sources)
}

// Load returns the registry from path, or the built-in one when path is empty.
func Load(path string) (*Registry, error) {
	if path == "" {
		return Default(), nil
	}
	return LoadFile(path)
}

// Sources returns a copy of the registry in declaration order.
func (r *Registry) Sources() []models.Source {
	out := make([]models.Source, len(r.sources))
	copy(out, r.sources)
	return out
}

// Rank returns the declaration index of a source; unknown names sort after all known ones.
func (r *Registry) Rank(name string) int {
	if i, ok := r.rank[name]; ok {
		return i
	}
	return len(r.sources)
}

// Lookup returns the source with the given name.
func (r *Registry) Lookup(name string) (models.Source, bool) {
	i, ok := r.rank[name]
	if !ok {
		return models.Source{}, false
	}
	return r.sources[i], true
}

// Categories returns the distinct categories in first-seen order.
func (r *Registry) Categories() []string {
	seen := make(map[string]bool)
	var out []string
	for _, s := range r.sources {
		if !seen[s.Category] {
			seen[s.Category] = true
			out = append(out, s.Category)
		}
	}
	return out
}

func (r *Registry) Len() int {
	return len(r.sources)
}
