package feed

import (
	"html"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/bilgisen/aidigest/internal/models"
	"github.com/mmcdole/gofeed"
	xhtml "golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

const (
	// UntitledTitle replaces missing or empty entry titles.
	UntitledTitle = "(untitled)"
	// MaxSummaryRunes bounds the plain-text summary kept per article.
	MaxSummaryRunes = 1000
)

// Layouts tried, in order, for date strings gofeed could not parse itself.
// Layouts without a zone are read as UTC.
var dateLayouts = []string{
	time.RFC1123Z,
	time.RFC1123,
	time.RFC822Z,
	time.RFC822,
	"Mon, 2 Jan 2006 15:04:05 -0700",
	"Mon, 2 Jan 2006 15:04:05 MST",
	"Mon, 2 Jan 2006 15:04 -0700",
	"2 Jan 2006 15:04:05 -0700",
	"02 Jan 2006 15:04:05 -0700",
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05Z0700",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05 -0700",
	"2006-01-02 15:04:05",
	"2006-01-02",
	time.ANSIC,
	time.UnixDate,
	"January 2, 2006",
	"Jan 2, 2006",
}

// Normalizer maps raw feed items onto the canonical Article shape.
// It never fails: malformed fields fall back to safe defaults.
type Normalizer struct {
	htmlTagRegex *regexp.Regexp
	markupRegex  *regexp.Regexp
}

func NewNormalizer() *Normalizer {
	return &Normalizer{
		htmlTagRegex: regexp.MustCompile(`<[^>]*>`),
		markupRegex:  regexp.MustCompile(`<(?:!--|/?([a-zA-Z][a-zA-Z0-9]*)(?:\s[^<>]*)?/?>)`),
	}
}

// Normalize converts one feed item from src into an Article.
func (n *Normalizer) Normalize(item *gofeed.Item, src models.Source) models.Article {
	article := models.Article{
		Title:      UntitledTitle,
		SourceName: src.Name,
		Category:   src.Category,
	}
	if item == nil {
		return article
	}

	if title := n.CleanHTML(item.Title); title != "" {
		article.Title = title
	}
	article.Link = entryLink(item)
	article.PublishedAt = ParseEntryTime(item)
	article.Authors = entryAuthors(item)

	body := item.Description
	if strings.TrimSpace(body) == "" {
		body = item.Content
	}
	article.Summary = Truncate(n.CleanHTML(body), MaxSummaryRunes)

	return article
}

// NormalizeAll converts every item of one source, preserving feed order.
func (n *Normalizer) NormalizeAll(items []*gofeed.Item, src models.Source) []models.Article {
	out := make([]models.Article, 0, len(items))
	for _, item := range items {
		out = append(out, n.Normalize(item, src))
	}
	return out
}

// CleanHTML removes markup, decodes entities and collapses whitespace.
// Input without a recognizable HTML element is treated as plain text, so a
// literal "<" as in "x<y" or "<T>" is kept.
func (n *Normalizer) CleanHTML(input string) string {
	if strings.TrimSpace(input) == "" {
		return ""
	}
	if !n.hasMarkup(input) {
		return collapseSpace(html.UnescapeString(input))
	}

	node, err := xhtml.Parse(strings.NewReader(input))
	if err != nil {
		cleaned := n.htmlTagRegex.ReplaceAllString(input, " ")
		return collapseSpace(html.UnescapeString(cleaned))
	}

	var b strings.Builder
	extractText(node, &b)
	return collapseSpace(b.String())
}

// hasMarkup reports whether s contains a comment or a tag naming a known
// HTML element.
func (n *Normalizer) hasMarkup(s string) bool {
	if !strings.Contains(s, "<") {
		return false
	}
	for _, m := range n.markupRegex.FindAllStringSubmatch(s, -1) {
		if m[1] == "" || atom.Lookup([]byte(strings.ToLower(m[1]))) != 0 {
			return true
		}
	}
	return false
}

func extractText(node *xhtml.Node, b *strings.Builder) {
	switch node.Type {
	case xhtml.TextNode:
		b.WriteString(node.Data)
	case xhtml.ElementNode:
		switch node.Data {
		case "script", "style", "noscript", "iframe":
			return
		case "br", "p", "div", "li", "h1", "h2", "h3", "h4", "h5", "h6", "tr", "blockquote":
			b.WriteByte(' ')
		}
	}

	for child := node.FirstChild; child != nil; child = child.NextSibling {
		extractText(child, b)
	}

	if node.Type == xhtml.ElementNode {
		b.WriteByte(' ')
	}
}

// ParseEntryTime returns the first publication time that can be read from the
// item, in UTC, or nil when none parses.
func ParseEntryTime(item *gofeed.Item) *time.Time {
	if item == nil {
		return nil
	}
	for _, parsed := range []*time.Time{item.PublishedParsed, item.UpdatedParsed} {
		if parsed != nil && !parsed.IsZero() {
			t := parsed.UTC()
			return &t
		}
	}

	candidates := []string{item.Published, item.Updated}
	if item.DublinCoreExt != nil {
		candidates = append(candidates, item.DublinCoreExt.Date...)
	}
	for _, value := range candidates {
		if t, ok := ParseDate(value); ok {
			return &t
		}
	}
	return nil
}

// ParseDate tries the known feed date layouts and returns the first match in UTC.
func ParseDate(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// Truncate cuts s to at most max runes, marking the cut with an ellipsis.
func Truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return strings.TrimSpace(string(runes[:max-1])) + "…"
}

func entryLink(item *gofeed.Item) string {
	if link := strings.TrimSpace(item.Link); link != "" {
		return link
	}
	for _, link := range item.Links {
		if link = strings.TrimSpace(link); link != "" {
			return link
		}
	}
	return ""
}

func entryAuthors(item *gofeed.Item) string {
	if item.Author != nil && strings.TrimSpace(item.Author.Name) != "" {
		return strings.TrimSpace(item.Author.Name)
	}
	var names []string
	for _, p := range item.Authors {
		if p != nil && strings.TrimSpace(p.Name) != "" {
			names = append(names, strings.TrimSpace(p.Name))
		}
	}
	return strings.Join(names, ", ")
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
