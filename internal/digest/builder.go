// Package digest builds and publishes the periodic AI article digest.
package digest

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bilgisen/aidigest/internal/ai"
	"github.com/bilgisen/aidigest/internal/export"
	"github.com/bilgisen/aidigest/internal/feed"
	"github.com/bilgisen/aidigest/internal/logger"
	"github.com/bilgisen/aidigest/internal/models"
	"github.com/bilgisen/aidigest/internal/notify"
	"github.com/bilgisen/aidigest/internal/storage"
)

const (
	Title       = "AI Articles Digest"
	EmptyIntro  = "No articles available for this period."
	HTMLFile    = "newsletter.html"
	CSVFile     = "newsletter.csv"
	DOCXFile    = "newsletter.docx"
	editionDate = "2006-01-02"
)

// Runner produces one aggregation result.
type Runner interface {
	Run(ctx context.Context) *feed.Result
}

// Options tune what goes into an edition.
type Options struct {
	PeriodDays int
	TopN       int
	Summarize  bool
	Location   *time.Location
}

// Edition is one built digest with its rendered files.
type Edition struct {
	Name      string
	Document  export.Document
	Result    *feed.Result
	Artifacts []storage.Artifact
}

// Artifact returns the named rendered file, if present.
func (e *Edition) Artifact(name string) (storage.Artifact, bool) {
	for _, a := range e.Artifacts {
		if a.Name == name {
			return a, true
		}
	}
	return storage.Artifact{}, false
}

type Builder struct {
	runner     Runner
	summarizer ai.Summarizer
	publisher  storage.Publisher
	notifier   notify.Notifier
	opts       Options
}

// NewBuilder wires a digest builder. publisher and notifier may be nil.
func NewBuilder(runner Runner, summarizer ai.Summarizer, publisher storage.Publisher, notifier notify.Notifier, opts Options) *Builder {
	if opts.PeriodDays <= 0 {
		opts.PeriodDays = 7
	}
	if opts.TopN <= 0 {
		opts.TopN = 10
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if summarizer == nil {
		summarizer = ai.Unavailable{}
	}
	return &Builder{
		runner:     runner,
		summarizer: summarizer,
		publisher:  publisher,
		notifier:   notifier,
		opts:       opts,
	}
}

// Build runs the pipeline and renders the edition for the period ending at now.
func (b *Builder) Build(ctx context.Context, now time.Time) (*Edition, error) {
	result := b.runner.Run(ctx)
	log := logger.WithRun(result.RunID)

	now = now.In(b.opts.Location)
	from, to := feed.DateRange(now, b.opts.PeriodDays)
	recent := feed.Filter(result.Articles, feed.Query{From: from, To: to, Location: b.opts.Location})
	top, _, _ := feed.Page(recent, 1, b.opts.TopN)

	if b.opts.Summarize {
		top = ai.Enrich(ctx, b.summarizer, top)
	}

	doc := export.Document{
		Title:       Title,
		Intro:       Intro(top.Items()),
		From:        from,
		To:          to,
		GeneratedAt: now,
		Articles:    top,
		Location:    b.opts.Location,
	}

	artifacts, err := Render(doc)
	if err != nil {
		return nil, err
	}

	log.Info().
		Int("candidates", recent.Len()).
		Int("selected", top.Len()).
		Int("failed_sources", len(result.Failures)).
		Msg("Built digest edition")

	return &Edition{
		Name:      now.Format(editionDate),
		Document:  doc,
		Result:    result,
		Artifacts: artifacts,
	}, nil
}

// Run builds an edition, publishes it and sends the notification. A failed
// notification is logged and does not fail the run.
func (b *Builder) Run(ctx context.Context, now time.Time) (*Edition, error) {
	edition, err := b.Build(ctx, now)
	if err != nil {
		return nil, fmt.Errorf("error building digest: %w", err)
	}
	log := logger.WithRun(edition.Result.RunID)

	var locations []string
	if b.publisher != nil {
		locations, err = b.publisher.Publish(ctx, edition.Name, edition.Artifacts)
		if err != nil {
			return edition, fmt.Errorf("error publishing digest: %w", err)
		}
		log.Info().Strs("locations", locations).Msg("Published digest")
	}

	if b.notifier != nil {
		csv, _ := edition.Artifact(CSVFile)
		html, _ := edition.Artifact(HTMLFile)
		notice := notify.Notice{
			Title:     edition.Document.Title,
			Intro:     edition.Document.Intro,
			Articles:  edition.Document.Articles,
			HTMLName:  HTMLFile,
			HTML:      html.Data,
			CSVName:   CSVFile,
			CSV:       csv.Data,
			Locations: locations,
		}
		if err := b.notifier.Notify(ctx, notice); err != nil {
			log.Error().Err(err).Msg("Failed to send digest notification")
		}
	}
	return edition, nil
}

// Intro is the lead paragraph: the first three titles, or the empty-period text.
func Intro(articles []models.Article) string {
	if len(articles) == 0 {
		return EmptyIntro
	}
	n := len(articles)
	if n > 3 {
		n = 3
	}
	titles := make([]string, 0, n)
	for _, a := range articles[:n] {
		titles = append(titles, a.Title)
	}
	return "This week's AI digest highlights the top advancements and discussions in the field. " +
		"Key topics include " + strings.Join(titles, ", ") + ". " +
		"Stay updated with the latest breakthroughs and insights from the AI community."
}

// Render produces the HTML, CSV and DOCX files for doc.
func Render(doc export.Document) ([]storage.Artifact, error) {
	var html bytes.Buffer
	if err := export.RenderHTML(&html, doc); err != nil {
		return nil, err
	}

	var csv bytes.Buffer
	if err := export.WriteCSV(&csv, doc.Articles); err != nil {
		return nil, fmt.Errorf("render digest CSV: %w", err)
	}

	docx, err := renderDOCX(doc)
	if err != nil {
		return nil, err
	}

	return []storage.Artifact{
		{Name: HTMLFile, ContentType: "text/html; charset=utf-8", Data: html.Bytes()},
		{Name: CSVFile, ContentType: "text/csv; charset=utf-8", Data: csv.Bytes()},
		{Name: DOCXFile, ContentType: "application/vnd.openxmlformats-officedocument.wordprocessingml.document", Data: docx},
	}, nil
}

func renderDOCX(doc export.Document) ([]byte, error) {
	dir, err := os.MkdirTemp("", "aidigest-docx-")
	if err != nil {
		return nil, fmt.Errorf("create DOCX temp dir: %w", err)
	}
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, DOCXFile)
	if err := export.SaveDOCX(path, doc); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read DOCX: %w", err)
	}
	return data, nil
}
