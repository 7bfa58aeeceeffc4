package sources

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/bilgisen/aidigest/internal/models"
)

func writeTempFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sources.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to create temp sources file: %v", err)
	}
	return path
}

func TestDefaultRegistry(t *testing.T) {
	r := Default()
	if r.Len() != 20 {
		t.Fatalf("Expected 20 built-in sources, got %d", r.Len())
	}
	if r.Rank("OpenAI Blog") != 0 {
		t.Errorf("Expected OpenAI Blog first, got rank %d", r.Rank("OpenAI Blog"))
	}
	if r.Rank("Sony AI Blog") != 19 {
		t.Errorf("Expected Sony AI Blog last, got rank %d", r.Rank("Sony AI Blog"))
	}
	if r.Rank("unknown") != 20 {
		t.Errorf("Expected unknown source to rank after all, got %d", r.Rank("unknown"))
	}

	cats := r.Categories()
	want := []string{"North America", "Europe", "Global", "Asia"}
	if len(cats) != len(want) {
		t.Fatalf("Expected categories %v, got %v", want, cats)
	}
	for i := range want {
		if cats[i] != want[i] {
			t.Errorf("Category %d: expected %q, got %q", i, want[i], cats[i])
		}
	}
}

func TestLoadFile(t *testing.T) {
	path := writeTempFile(t, `
sources:
  - name: "Feed A"
    url: "https://a.test/rss"
    category: "Europe"
  - name: "Feed B"
    url: "https://b.test/atom.xml"
`)

	r, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	srcs := r.Sources()
	if len(srcs) != 2 {
		t.Fatalf("Expected 2 sources, got %d", len(srcs))
	}
	if srcs[1].Category != DefaultCategory {
		t.Errorf("Expected default category %q, got %q", DefaultCategory, srcs[1].Category)
	}
	if src, ok := r.Lookup("Feed A"); !ok || src.URL != "https://a.test/rss" {
		t.Errorf("Lookup(Feed A) = %+v, %v", src, ok)
	}
}

func TestNewRejectsInvalidSources(t *testing.T) {
	tests := []struct {
		name    string
		sources []models.Source
		wantErr error
	}{
		{"empty", nil, ErrNoSources},
		{"duplicate", []models.Source{
			{Name: "A", URL: "https://a.test/rss"},
			{Name: "A", URL: "https://b.test/rss"},
		}, ErrDuplicateSource},
		{"missing url", []models.Source{{Name: "A"}}, nil},
		{"bad url", []models.Source{{Name: "A", URL: "not a url"}}, nil},
		{"missing name", []models.Source{{URL: "https://a.test/rss"}}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.sources)
			if err == nil {
				t.Fatal("Expected an error")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Fatalf("Expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestLoadEmptyPathUsesDefaults(t *testing.T) {
	r, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if r.Len() != 20 {
		t.Fatalf("Expected built-in registry, got %d sources", r.Len())
	}
}

func TestSourcesReturnsCopy(t *testing.T) {
	r := Default()
	srcs := r.Sources()
	srcs[0].Name = "mutated"
	if r.Sources()[0].Name != "OpenAI Blog" {
		t.Fatal("Sources() exposes internal slice")
	}
}
