package feed

import (
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/bilgisen/aidigest/internal/models"
	"github.com/mmcdole/gofeed"
	ext "github.com/mmcdole/gofeed/extensions"
)

var testSource = models.Source{Name: "Test Feed", URL: "https://feed.test/rss", Category: "Global"}

func TestNormalizeNeverPanicsOnEmptyItems(t *testing.T) {
	n := NewNormalizer()
	items := []*gofeed.Item{nil, {}, {Title: "   ", Links: []string{"", " "}}}

	for i, item := range items {
		a := n.Normalize(item, testSource)
		if a.Title != UntitledTitle {
			t.Errorf("item %d: expected title %q, got %q", i, UntitledTitle, a.Title)
		}
		if a.Link != "" {
			t.Errorf("item %d: expected empty link, got %q", i, a.Link)
		}
		if a.PublishedAt != nil {
			t.Errorf("item %d: expected nil date, got %v", i, a.PublishedAt)
		}
		if a.SourceName != testSource.Name || a.Category != testSource.Category {
			t.Errorf("item %d: source not traced: %+v", i, a)
		}
	}
}

func TestNormalizeFields(t *testing.T) {
	published := time.Date(2024, 1, 15, 10, 0, 0, 0, time.FixedZone("EST", -5*3600))
	item := &gofeed.Item{
		Title:           "  <b>New</b>   model &amp; results ",
		Links:           []string{"", "https://x.test/post"},
		Description:     "<p>First paragraph.</p><script>alert(1)</script><p>Second&nbsp;one.</p>",
		PublishedParsed: &published,
		Authors:         []*gofeed.Person{{Name: "Ada"}, {Name: " Grace "}},
	}

	a := NewNormalizer().Normalize(item, testSource)

	if a.Title != "New model & results" {
		t.Errorf("Title = %q", a.Title)
	}
	if a.Link != "https://x.test/post" {
		t.Errorf("Link = %q", a.Link)
	}
	if a.Summary != "First paragraph. Second one." {
		t.Errorf("Summary = %q", a.Summary)
	}
	if a.Authors != "Ada, Grace" {
		t.Errorf("Authors = %q", a.Authors)
	}
	if a.PublishedAt == nil || a.PublishedAt.Location() != time.UTC || !a.PublishedAt.Equal(published) {
		t.Errorf("PublishedAt = %v, want %v in UTC", a.PublishedAt, published)
	}
}

func TestNormalizeKeepsLiteralAngleBrackets(t *testing.T) {
	n := NewNormalizer()
	tests := []struct {
		title, description string
		wantTitle          string
		wantSummary        string
	}{
		{"Why x<y matters for LLMs", "", "Why x<y matters for LLMs", ""},
		{"Using <T> generics in Go", "", "Using <T> generics in Go", ""},
		{"T", "Inequality a<b holds in most cases, see results.", "T", "Inequality a<b holds in most cases, see results."},
		{"a &lt; b", "Scores 3 > 2 &amp; rising", "a < b", "Scores 3 > 2 & rising"},
		{"T", "<!-- note -->Kept text", "T", "Kept text"},
	}
	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			a := n.Normalize(&gofeed.Item{Title: tt.title, Description: tt.description}, testSource)
			if a.Title != tt.wantTitle {
				t.Errorf("Title = %q, want %q", a.Title, tt.wantTitle)
			}
			if a.Summary != tt.wantSummary {
				t.Errorf("Summary = %q, want %q", a.Summary, tt.wantSummary)
			}
		})
	}
}

func TestNormalizeFallsBackToContent(t *testing.T) {
	item := &gofeed.Item{Title: "T", Content: "<div>Body text</div>"}
	a := NewNormalizer().Normalize(item, testSource)
	if a.Summary != "Body text" {
		t.Errorf("Summary = %q", a.Summary)
	}
}

func TestNormalizeTruncatesSummary(t *testing.T) {
	item := &gofeed.Item{Title: "T", Description: strings.Repeat("é", MaxSummaryRunes+50)}
	a := NewNormalizer().Normalize(item, testSource)
	if n := utf8.RuneCountInString(a.Summary); n != MaxSummaryRunes {
		t.Fatalf("expected %d runes, got %d", MaxSummaryRunes, n)
	}
	if !strings.HasSuffix(a.Summary, "…") {
		t.Errorf("expected ellipsis suffix, got %q", a.Summary[len(a.Summary)-8:])
	}
}

func TestParseEntryTime(t *testing.T) {
	want := time.Date(2024, 1, 15, 15, 0, 0, 0, time.UTC)
	tests := []struct {
		name string
		item *gofeed.Item
		want *time.Time
	}{
		{"published string rfc1123z", &gofeed.Item{Published: "Mon, 15 Jan 2024 10:00:00 -0500"}, &want},
		{"updated string rfc3339", &gofeed.Item{Updated: "2024-01-15T15:00:00Z"}, &want},
		{"zone-less read as utc", &gofeed.Item{Published: "2024-01-15 15:00:00"}, &want},
		{"dublin core", &gofeed.Item{DublinCoreExt: &ext.DublinCoreExtension{Date: []string{"2024-01-15T16:00:00+01:00"}}}, &want},
		{"garbage", &gofeed.Item{Published: "next tuesday"}, nil},
		{"missing", &gofeed.Item{}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseEntryTime(tt.item)
			switch {
			case tt.want == nil && got != nil:
				t.Fatalf("expected nil, got %v", got)
			case tt.want != nil && got == nil:
				t.Fatalf("expected %v, got nil", tt.want)
			case tt.want != nil && (!got.Equal(*tt.want) || got.Location() != time.UTC):
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestTruncate(t *testing.T) {
	if got := Truncate("short", 10); got != "short" {
		t.Errorf("Truncate short = %q", got)
	}
	if got := Truncate("abcdef", 4); got != "abc…" {
		t.Errorf("Truncate = %q", got)
	}
	if got := Truncate("abc", 0); got != "" {
		t.Errorf("Truncate zero = %q", got)
	}
}
