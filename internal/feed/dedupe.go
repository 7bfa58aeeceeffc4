package feed

import (
	"net/url"
	"sort"
	"strings"

	"github.com/bilgisen/aidigest/internal/models"
)

// Deduplicator collapses articles that share a dedup key into one survivor.
type Deduplicator struct {
	rank func(source string) int
}

// NewDeduplicator builds a deduplicator. rank gives each source's registry
// position; nil treats all sources as equal and falls back to name order.
func NewDeduplicator(rank func(source string) int) *Deduplicator {
	if rank == nil {
		rank = func(string) int { return 0 }
	}
	return &Deduplicator{rank: rank}
}

// Dedupe groups articles by Key, keeps one survivor per group and returns the
// survivors in ArticleSet order. The result does not depend on input order.
func (d *Deduplicator) Dedupe(articles []models.Article) models.ArticleSet {
	index := make(map[string]int, len(articles))
	survivors := make([]models.Article, 0, len(articles))

	for _, a := range articles {
		key := Key(a)
		if i, ok := index[key]; ok {
			if d.prefer(a, survivors[i]) {
				survivors[i] = a
			}
			continue
		}
		index[key] = len(survivors)
		survivors = append(survivors, a)
	}

	sort.SliceStable(survivors, func(i, j int) bool {
		return models.Before(survivors[i], survivors[j], d.rank)
	})
	return models.NewArticleSet(survivors)
}

// prefer reports whether candidate should replace current as a group's survivor.
func (d *Deduplicator) prefer(candidate, current models.Article) bool {
	if candidate.HasDate() != current.HasDate() {
		return candidate.HasDate()
	}
	if rc, rs := d.rank(candidate.SourceName), d.rank(current.SourceName); rc != rs {
		return rc < rs
	}
	return contentLess(candidate, current)
}

// contentLess is a total order over the remaining fields so that equal-rank
// duplicates resolve the same way regardless of arrival order.
func contentLess(a, b models.Article) bool {
	pairs := [][2]string{
		{a.SourceName, b.SourceName},
		{a.Title, b.Title},
		{a.Link, b.Link},
		{a.Summary, b.Summary},
		{a.PublishedISO(), b.PublishedISO()},
		{a.Authors, b.Authors},
		{a.Category, b.Category},
		{a.GeneratedText(), b.GeneratedText()},
	}
	for _, p := range pairs {
		if p[0] != p[1] {
			return p[0] < p[1]
		}
	}
	if a.HasDate() && b.HasDate() && !a.PublishedAt.Equal(*b.PublishedAt) {
		return a.PublishedAt.Before(*b.PublishedAt)
	}
	return false
}

// Key returns the dedup key: the normalized link when it is a well-formed
// http(s) URL, otherwise the normalized title scoped to the source.
func Key(a models.Article) string {
	if link, ok := NormalizeLink(a.Link); ok {
		return "link:" + link
	}
	return "title:" + NormalizeTitle(a.Title) + "|" + a.SourceName
}

// NormalizeLink reduces an article URL to host and path: scheme, "www.",
// trailing slash, query and fragment are ignored and the host is lowercased.
func NormalizeLink(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", false
	}
	scheme := strings.ToLower(u.Scheme)
	if (scheme != "http" && scheme != "https") || u.Hostname() == "" {
		return "", false
	}

	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	if port := u.Port(); port != "" && port != "80" && port != "443" {
		host += ":" + port
	}
	path := strings.TrimRight(u.EscapedPath(), "/")
	return host + path, true
}

// NormalizeTitle lowercases a title and collapses its whitespace.
func NormalizeTitle(title string) string {
	return strings.ToLower(collapseSpace(title))
}
