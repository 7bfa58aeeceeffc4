package models

import (
	"encoding/json"
	"strings"
	"time"
)

// Article is the canonical record every feed entry is normalized into
type Article struct {
	Title            string     `json:"title"`
	Link             string     `json:"link"`
	Summary          string     `json:"summary"`
	PublishedAt      *time.Time `json:"published_at,omitempty"`
	SourceName       string     `json:"source_name"`
	Category         string     `json:"category"`
	Authors          string     `json:"authors,omitempty"`
	GeneratedSummary *string    `json:"generated_summary,omitempty"`
}

// HasDate reports whether the article carries a parsed publication time.
func (a Article) HasDate() bool {
	return a.PublishedAt != nil
}

// PublishedISO returns the publication time as RFC3339 in UTC, or "" when unknown.
func (a Article) PublishedISO() string {
	if a.PublishedAt == nil {
		return ""
	}
	return a.PublishedAt.UTC().Format(time.RFC3339)
}

// GeneratedText returns the generated summary or "" when none was attached.
func (a Article) GeneratedText() string {
	if a.GeneratedSummary == nil {
		return ""
	}
	return *a.GeneratedSummary
}

// WithGeneratedSummary returns a copy of the article carrying the given summary.
func (a Article) WithGeneratedSummary(text string) Article {
	a.GeneratedSummary = &text
	return a
}

// Before reports whether a sorts ahead of b in ArticleSet order: newest first,
// undated last, then title ascending. rank breaks the remaining ties by source
// position and may be nil.
func Before(a, b Article, rank func(source string) int) bool {
	switch {
	case a.PublishedAt != nil && b.PublishedAt == nil:
		return true
	case a.PublishedAt == nil && b.PublishedAt != nil:
		return false
	case a.PublishedAt != nil && !a.PublishedAt.Equal(*b.PublishedAt):
		return a.PublishedAt.After(*b.PublishedAt)
	}
	if c := strings.Compare(a.Title, b.Title); c != 0 {
		return c < 0
	}
	if rank != nil {
		if ra, rb := rank(a.SourceName), rank(b.SourceName); ra != rb {
			return ra < rb
		}
	}
	if a.SourceName != b.SourceName {
		return a.SourceName < b.SourceName
	}
	return a.Link < b.Link
}

// ArticleSet is an ordered, read-only collection of articles produced by one run.
// Operations that change content return a new set.
type ArticleSet struct {
	items []Article
}

// NewArticleSet wraps items, which must already be in ArticleSet order.
// The slice is copied.
func NewArticleSet(items []Article) ArticleSet {
	cp := make([]Article, len(items))
	copy(cp, items)
	return ArticleSet{items: cp}
}

func (s ArticleSet) Len() int {
	return len(s.items)
}

func (s ArticleSet) At(i int) Article {
	return s.items[i]
}

// Items returns a copy of the underlying articles.
func (s ArticleSet) Items() []Article {
	cp := make([]Article, len(s.items))
	copy(cp, s.items)
	return cp
}

// Replace returns a new set with the article at index i swapped for a.
func (s ArticleSet) Replace(i int, a Article) ArticleSet {
	out := NewArticleSet(s.items)
	out.items[i] = a
	return out
}

// Slice returns the articles in [from, to) as a new set, clamped to bounds.
func (s ArticleSet) Slice(from, to int) ArticleSet {
	if from < 0 {
		from = 0
	}
	if to > len(s.items) {
		to = len(s.items)
	}
	if from >= to {
		return ArticleSet{}
	}
	return NewArticleSet(s.items[from:to])
}

// IndexOfLink returns the position of the first article with the given link, or -1.
func (s ArticleSet) IndexOfLink(link string) int {
	for i, a := range s.items {
		if a.Link == link {
			return i
		}
	}
	return -1
}

func (s ArticleSet) MarshalJSON() ([]byte, error) {
	if s.items == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(s.items)
}
