// Package ai attaches generated summaries to articles.
package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bilgisen/aidigest/internal/cache"
	"github.com/bilgisen/aidigest/internal/config"
	"github.com/bilgisen/aidigest/internal/logger"
	"github.com/bilgisen/aidigest/internal/models"
	"github.com/bilgisen/aidigest/internal/utils"
)

// ErrSummarizerUnavailable is returned when no summary backend is configured.
var ErrSummarizerUnavailable = errors.New("summarizer unavailable")

// Summarizer produces a short generated summary for an article.
type Summarizer interface {
	Summarize(ctx context.Context, title, summary string) (string, error)
	Available() bool
}

// NewSummarizer picks the backend once at startup: Gemini when an API key is
// configured, otherwise Unavailable. A non-nil store caches results.
func NewSummarizer(cfg *config.Config, store cache.Store) Summarizer {
	if strings.TrimSpace(cfg.AIApiKey) == "" {
		logger.Get().Info().Msg("AI_API_KEY not set, summaries disabled")
		return Unavailable{}
	}

	var s Summarizer = NewGeminiSummarizer(NewGeminiClient(cfg.AIApiKey, cfg.AIModel, cfg.AITimeout))
	if store != nil {
		s = NewCachedSummarizer(s, store, cfg.AIModel, cfg.CacheTTL)
	}
	return s
}

// Unavailable is the Summarizer used when no backend is configured.
type Unavailable struct{}

func (Unavailable) Summarize(context.Context, string, string) (string, error) {
	return "", ErrSummarizerUnavailable
}

func (Unavailable) Available() bool { return false }

// Generator is a single-prompt text model.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

type GeminiSummarizer struct {
	generator Generator
	post      *PostProcessor
}

func NewGeminiSummarizer(g Generator) *GeminiSummarizer {
	return &GeminiSummarizer{
		generator: g,
		post:      NewPostProcessor(),
	}
}

func (s *GeminiSummarizer) Available() bool { return true }

func (s *GeminiSummarizer) Summarize(ctx context.Context, title, summary string) (string, error) {
	if strings.TrimSpace(title) == "" && strings.TrimSpace(summary) == "" {
		return "", errors.New("nothing to summarize")
	}

	raw, err := s.generator.Generate(ctx, BuildSummaryPrompt(title, summary))
	if err != nil {
		return "", fmt.Errorf("error calling Gemini API: %w", err)
	}

	text, err := s.post.ProcessSummary(raw)
	if err != nil {
		return "", fmt.Errorf("error processing Gemini response: %w", err)
	}
	return text, nil
}

// CachedSummarizer serves repeated requests for the same article text from a
// cache store. Cache errors degrade to a direct call.
type CachedSummarizer struct {
	next  Summarizer
	store cache.Store
	model string
	ttl   time.Duration
}

func NewCachedSummarizer(next Summarizer, store cache.Store, model string, ttl time.Duration) *CachedSummarizer {
	return &CachedSummarizer{next: next, store: store, model: model, ttl: ttl}
}

func (c *CachedSummarizer) Available() bool { return c.next.Available() }

func (c *CachedSummarizer) Summarize(ctx context.Context, title, summary string) (string, error) {
	log := logger.Get()
	key := utils.CacheKey(c.model, title, summary)

	cached, err := c.store.Get(ctx, key)
	switch {
	case err == nil:
		return cached, nil
	case !errors.Is(err, cache.ErrMiss):
		log.Warn().Err(err).Msg("Summary cache read failed")
	}

	text, err := c.next.Summarize(ctx, title, summary)
	if err != nil {
		return "", err
	}
	if err := c.store.Set(ctx, key, text, c.ttl); err != nil {
		log.Warn().Err(err).Msg("Summary cache write failed")
	}
	return text, nil
}

// Enrich returns a copy of set with a generated summary attached to each
// article the summarizer succeeds on. Failures are logged and leave the
// article without one. Order and membership are unchanged.
func Enrich(ctx context.Context, s Summarizer, set models.ArticleSet) models.ArticleSet {
	if s == nil || !s.Available() {
		return set
	}

	log := logger.Get()
	items := set.Items()
	failed := 0
	for i, a := range items {
		if ctx.Err() != nil {
			log.Warn().Int("remaining", len(items)-i).Msg("Summarization stopped, context done")
			break
		}
		if a.GeneratedSummary != nil {
			continue
		}
		text, err := s.Summarize(ctx, a.Title, a.Summary)
		if err != nil {
			failed++
			log.Warn().
				Err(err).
				Str("link", a.Link).
				Str("source", a.SourceName).
				Msg("Failed to summarize article")
			continue
		}
		items[i] = a.WithGeneratedSummary(text)
	}

	log.Info().
		Int("articles", len(items)).
		Int("failed", failed).
		Msg("Finished summarizing articles")
	return models.NewArticleSet(items)
}
