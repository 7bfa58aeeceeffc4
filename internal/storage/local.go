package storage

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/bilgisen/aidigest/internal/export"
)

// LocalStore writes each edition to its own directory under basePath and
// keeps an index.html linking every edition's HTML page.
type LocalStore struct {
	basePath string
	mu       sync.RWMutex
}

func NewLocalStore(basePath string) (*LocalStore, error) {
	// Create base directory if it doesn't exist
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}

	return &LocalStore{
		basePath: basePath,
	}, nil
}

func (s *LocalStore) Publish(ctx context.Context, edition string, files []Artifact) ([]string, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}
	if err := ValidateEdition(edition); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	dir := filepath.Join(s.basePath, edition)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create edition directory: %w", err)
	}

	locations := make([]string, 0, len(files))
	for _, f := range files {
		if f.Name != filepath.Base(f.Name) {
			return locations, fmt.Errorf("invalid artifact name %q", f.Name)
		}
		path := filepath.Join(dir, f.Name)
		if err := os.WriteFile(path, f.Data, 0644); err != nil {
			return locations, fmt.Errorf("failed to write %s: %w", f.Name, err)
		}
		locations = append(locations, path)
	}

	if err := s.writeIndex(); err != nil {
		return locations, err
	}
	return locations, nil
}

// Editions lists published editions, newest name first.
func (s *LocalStore) Editions(ctx context.Context) ([]string, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.editions()
}

// ReadFile returns one artifact of a published edition.
func (s *LocalStore) ReadFile(ctx context.Context, edition, name string) ([]byte, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}
	if err := ValidateEdition(edition); err != nil {
		return nil, err
	}
	if name != filepath.Base(name) {
		return nil, fmt.Errorf("invalid artifact name %q", name)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(filepath.Join(s.basePath, edition, name))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s/%s: %w", edition, name, err)
	}
	return data, nil
}

func (s *LocalStore) editions() ([]string, error) {
	entries, err := os.ReadDir(s.basePath)
	if err != nil {
		return nil, fmt.Errorf("error reading storage directory: %w", err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() && ValidateEdition(e.Name()) == nil {
			names = append(names, e.Name())
		}
	}
	sort.Sort(sort.Reverse(sort.StringSlice(names)))
	return names, nil
}

func (s *LocalStore) writeIndex() error {
	names, err := s.editions()
	if err != nil {
		return err
	}

	entries := make([]export.IndexEntry, 0, len(names))
	for _, name := range names {
		entries = append(entries, export.IndexEntry{Name: name, Href: name + "/newsletter.html"})
	}

	var buf bytes.Buffer
	if err := export.RenderIndex(&buf, entries); err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(s.basePath, "index.html"), buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write index: %w", err)
	}
	return nil
}
