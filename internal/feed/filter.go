package feed

import (
	"errors"
	"strings"
	"time"

	"github.com/bilgisen/aidigest/internal/models"
)

// ErrInvalidRange is returned by Query.Validate when From is after To.
var ErrInvalidRange = errors.New("date_from must not be after date_to")

// Query selects a view of an ArticleSet. From and To are civil dates and
// either may be zero to leave that side open. When any date bound is set,
// articles without a publication date are excluded.
type Query struct {
	From       time.Time
	To         time.Time
	Search     string
	Sources    []string
	Categories []string
	// Location decides which calendar day a publication time falls on. Nil means UTC.
	Location *time.Location
}

// Validate checks the query for contradictory bounds.
func (q Query) Validate() error {
	if !q.From.IsZero() && !q.To.IsZero() && civilDay(q.From) > civilDay(q.To) {
		return ErrInvalidRange
	}
	return nil
}

func (q Query) hasDateRange() bool {
	return !q.From.IsZero() || !q.To.IsZero()
}

func (q Query) location() *time.Location {
	if q.Location == nil {
		return time.UTC
	}
	return q.Location
}

// Matches reports whether a single article passes every predicate of q.
func (q Query) Matches(a models.Article) bool {
	if q.hasDateRange() {
		if a.PublishedAt == nil {
			return false
		}
		day := civilDay(a.PublishedAt.In(q.location()))
		if !q.From.IsZero() && day < civilDay(q.From) {
			return false
		}
		if !q.To.IsZero() && day > civilDay(q.To) {
			return false
		}
	}
	if len(q.Sources) > 0 && !contains(q.Sources, a.SourceName) {
		return false
	}
	if len(q.Categories) > 0 && !contains(q.Categories, a.Category) {
		return false
	}
	if search := strings.ToLower(strings.TrimSpace(q.Search)); search != "" {
		text := strings.ToLower(a.Title + " " + a.Summary)
		if !strings.Contains(text, search) {
			return false
		}
	}
	return true
}

// Filter returns the articles of set matching q, in their original order.
func Filter(set models.ArticleSet, q Query) models.ArticleSet {
	out := make([]models.Article, 0, set.Len())
	for i := 0; i < set.Len(); i++ {
		if a := set.At(i); q.Matches(a) {
			out = append(out, a)
		}
	}
	return models.NewArticleSet(out)
}

// Intersect combines two queries into one selecting exactly the articles both
// select. It reports false when the combination has no single-query form:
// different non-empty search texts, disjoint source or category lists, or
// different locations.
func Intersect(q1, q2 Query) (Query, bool) {
	if q1.Location != nil && q2.Location != nil && q1.Location.String() != q2.Location.String() {
		return Query{}, false
	}
	out := Query{Location: q1.Location}
	if out.Location == nil {
		out.Location = q2.Location
	}

	out.From = laterBound(q1.From, q2.From)
	out.To = earlierBound(q1.To, q2.To)

	s1, s2 := strings.ToLower(strings.TrimSpace(q1.Search)), strings.ToLower(strings.TrimSpace(q2.Search))
	switch {
	case s1 == "" || s1 == s2:
		out.Search = s2
	case s2 == "":
		out.Search = s1
	case strings.Contains(s1, s2):
		out.Search = s1
	case strings.Contains(s2, s1):
		out.Search = s2
	default:
		return Query{}, false
	}

	var ok bool
	if out.Sources, ok = intersectList(q1.Sources, q2.Sources); !ok {
		return Query{}, false
	}
	if out.Categories, ok = intersectList(q1.Categories, q2.Categories); !ok {
		return Query{}, false
	}
	return out, true
}

// Page returns the 1-based page of set with the given size, clamping page to
// the valid range, along with the clamped page and the page count.
func Page(set models.ArticleSet, page, size int) (models.ArticleSet, int, int) {
	if size <= 0 {
		size = 10
	}
	total := (set.Len() + size - 1) / size
	if total < 1 {
		total = 1
	}
	if page < 1 {
		page = 1
	}
	if page > total {
		page = total
	}
	start := (page - 1) * size
	return set.Slice(start, start+size), page, total
}

// DateRange returns From/To bounds spanning the last days calendar days up to now.
func DateRange(now time.Time, days int) (time.Time, time.Time) {
	to := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return to.AddDate(0, 0, -days), to
}

func civilDay(t time.Time) int {
	y, m, d := t.Date()
	return y*10000 + int(m)*100 + d
}

func laterBound(a, b time.Time) time.Time {
	switch {
	case a.IsZero():
		return b
	case b.IsZero():
		return a
	case civilDay(a) >= civilDay(b):
		return a
	default:
		return b
	}
}

func earlierBound(a, b time.Time) time.Time {
	switch {
	case a.IsZero():
		return b
	case b.IsZero():
		return a
	case civilDay(a) <= civilDay(b):
		return a
	default:
		return b
	}
}

func intersectList(a, b []string) ([]string, bool) {
	switch {
	case len(a) == 0:
		return b, true
	case len(b) == 0:
		return a, true
	}
	var out []string
	for _, v := range a {
		if contains(b, v) {
			out = append(out, v)
		}
	}
	return out, len(out) > 0
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
