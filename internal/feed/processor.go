package feed

import (
	"context"
	"time"

	"github.com/bilgisen/aidigest/internal/logger"
	"github.com/bilgisen/aidigest/internal/models"
	"github.com/bilgisen/aidigest/internal/sources"
	"github.com/google/uuid"
)

// Result is the immutable outcome of one aggregation run.
type Result struct {
	RunID        string               `json:"run_id"`
	StartedAt    time.Time            `json:"started_at"`
	FinishedAt   time.Time            `json:"finished_at"`
	Articles     models.ArticleSet    `json:"articles"`
	Failures     models.FailureReport `json:"failures"`
	SourceCounts map[string]int       `json:"source_counts"`
}

// Succeeded returns how many sources contributed to the run.
func (r *Result) Succeeded() int {
	return len(r.SourceCounts)
}

type Processor struct {
	registry   *sources.Registry
	fetcher    *Fetcher
	normalizer *Normalizer
	dedup      *Deduplicator
	now        func() time.Time
}

func NewProcessor(registry *sources.Registry, fetcher *Fetcher) *Processor {
	return &Processor{
		registry:   registry,
		fetcher:    fetcher,
		normalizer: NewNormalizer(),
		dedup:      NewDeduplicator(registry.Rank),
		now:        time.Now,
	}
}

// Registry returns the source registry the processor runs against.
func (p *Processor) Registry() *sources.Registry {
	return p.registry
}

// Run fetches every registered source, normalizes and deduplicates the
// entries, and returns the resulting set with the failure report. Per-source
// failures never abort the run, so a run where every source failed still
// returns an empty set.
func (p *Processor) Run(ctx context.Context) *Result {
	result := &Result{
		RunID:        uuid.NewString(),
		StartedAt:    p.now().UTC(),
		Failures:     models.FailureReport{},
		SourceCounts: map[string]int{},
	}
	log := logger.WithRun(result.RunID)
	srcs := p.registry.Sources()

	log.Info().
		Int("sources", len(srcs)).
		Msg("Starting aggregation run")

	var articles []models.Article
	for _, res := range p.fetcher.FetchAll(ctx, srcs) {
		if res.Failure != nil {
			result.Failures[res.Source.Name] = *res.Failure
			continue
		}
		normalized := p.normalizer.NormalizeAll(res.Items, res.Source)
		result.SourceCounts[res.Source.Name] = len(normalized)
		articles = append(articles, normalized...)
	}

	result.Articles = p.dedup.Dedupe(articles)
	result.FinishedAt = p.now().UTC()

	log.Info().
		Int("entries", len(articles)).
		Int("articles", result.Articles.Len()).
		Int("failed_sources", len(result.Failures)).
		Dur("duration", result.FinishedAt.Sub(result.StartedAt)).
		Msg("Finished aggregation run")

	return result
}
