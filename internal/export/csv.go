// Package export renders article sets as CSV, HTML, DOCX and terminal tables.
package export

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/bilgisen/aidigest/internal/models"
)

// Columns is the fixed CSV header.
var Columns = []string{"title", "source_name", "category", "published_at", "link", "summary", "generated_summary"}

// ErrBadHeader is returned by ReadCSV when the header does not match Columns.
var ErrBadHeader = errors.New("unexpected CSV header")

// WriteCSV writes set as CSV with a header row. published_at is RFC3339 UTC
// or empty; generated_summary is empty when absent.
func WriteCSV(w io.Writer, set models.ArticleSet) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Columns); err != nil {
		return fmt.Errorf("write CSV header: %w", err)
	}
	for i := 0; i < set.Len(); i++ {
		a := set.At(i)
		record := []string{a.Title, a.SourceName, a.Category, a.PublishedISO(), a.Link, a.Summary, a.GeneratedText()}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write CSV row %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadCSV parses output of WriteCSV back into an ArticleSet, keeping row order.
func ReadCSV(r io.Reader) (models.ArticleSet, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(Columns)

	header, err := cr.Read()
	if err == io.EOF {
		return models.ArticleSet{}, fmt.Errorf("%w: empty input", ErrBadHeader)
	}
	if err != nil {
		return models.ArticleSet{}, fmt.Errorf("read CSV header: %w", err)
	}
	for i, col := range Columns {
		if header[i] != col {
			return models.ArticleSet{}, fmt.Errorf("%w: column %d is %q, want %q", ErrBadHeader, i, header[i], col)
		}
	}

	var items []models.Article
	for line := 2; ; line++ {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return models.ArticleSet{}, fmt.Errorf("read CSV line %d: %w", line, err)
		}

		a := models.Article{
			Title:      record[0],
			SourceName: record[1],
			Category:   record[2],
			Link:       record[4],
			Summary:    record[5],
		}
		if record[3] != "" {
			t, err := time.Parse(time.RFC3339, record[3])
			if err != nil {
				return models.ArticleSet{}, fmt.Errorf("line %d: invalid published_at: %w", line, err)
			}
			t = t.UTC()
			a.PublishedAt = &t
		}
		if record[6] != "" {
			a = a.WithGeneratedSummary(record[6])
		}
		items = append(items, a)
	}
	return models.NewArticleSet(items), nil
}
