package export

import (
	"time"

	"github.com/bilgisen/aidigest/internal/models"
)

// Document is a titled, dated digest of articles ready for rendering.
type Document struct {
	Title       string
	Intro       string
	From        time.Time
	To          time.Time
	GeneratedAt time.Time
	Articles    models.ArticleSet
	// Location is used for displayed dates. Nil means UTC.
	Location *time.Location
}

func (d Document) location() *time.Location {
	if d.Location == nil {
		return time.UTC
	}
	return d.Location
}

// Period formats the covered date range for display.
func (d Document) Period() string {
	if d.From.IsZero() && d.To.IsZero() {
		return ""
	}
	return d.From.Format("January 2, 2006") + " - " + d.To.Format("January 2, 2006")
}

// DisplayDate formats an article's publication time in the document location.
func (d Document) DisplayDate(a models.Article) string {
	if a.PublishedAt == nil {
		return "Date unknown"
	}
	return a.PublishedAt.In(d.location()).Format("Jan 2, 2006 15:04")
}
