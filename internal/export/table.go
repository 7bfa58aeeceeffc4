package export

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/bilgisen/aidigest/internal/models"
	"github.com/mattn/go-runewidth"
)

const (
	titleWidth  = 60
	sourceWidth = 24
	dateWidth   = 16
)

// WriteTable prints set as a fixed-width table sized by display width, so
// CJK titles line up with ASCII ones.
func WriteTable(w io.Writer, set models.ArticleSet, loc *time.Location) error {
	if loc == nil {
		loc = time.UTC
	}
	rows := [][]string{{"PUBLISHED", "SOURCE", "TITLE"}}
	for _, a := range set.Items() {
		date := "-"
		if a.PublishedAt != nil {
			date = a.PublishedAt.In(loc).Format("2006-01-02 15:04")
		}
		rows = append(rows, []string{date, a.SourceName, a.Title})
	}

	widths := []int{dateWidth, sourceWidth, titleWidth}
	for i, row := range rows {
		var sb strings.Builder
		for j, cell := range row {
			cell = runewidth.Truncate(cell, widths[j], "…")
			if j < len(row)-1 {
				cell = runewidth.FillRight(cell, widths[j]) + "  "
			}
			sb.WriteString(cell)
		}
		if _, err := fmt.Fprintln(w, strings.TrimRight(sb.String(), " ")); err != nil {
			return err
		}
		if i == 0 {
			if _, err := fmt.Fprintln(w, strings.Repeat("-", dateWidth+sourceWidth+titleWidth+4)); err != nil {
				return err
			}
		}
	}
	return nil
}

// WriteFailures prints one line per failed source, sorted by name.
func WriteFailures(w io.Writer, report models.FailureReport) error {
	if len(report) == 0 {
		_, err := fmt.Fprintln(w, "All sources fetched successfully.")
		return err
	}
	names := make([]string, 0, len(report))
	for name := range report {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		f := report[name]
		line := runewidth.FillRight(runewidth.Truncate(name, sourceWidth, "…"), sourceWidth) + "  " + string(f.Kind)
		if f.StatusCode != 0 {
			line += fmt.Sprintf(" (%d)", f.StatusCode)
		}
		if f.Reason != "" {
			line += ": " + f.Reason
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
