package api

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bilgisen/aidigest/internal/ai"
	"github.com/bilgisen/aidigest/internal/cache"
	"github.com/bilgisen/aidigest/internal/config"
	"github.com/bilgisen/aidigest/internal/export"
	"github.com/bilgisen/aidigest/internal/feed"
	"github.com/bilgisen/aidigest/internal/logger"
	"github.com/bilgisen/aidigest/internal/middleware"
	"github.com/bilgisen/aidigest/internal/models"
	"github.com/bilgisen/aidigest/internal/sources"
	"github.com/gofiber/fiber/v2"
)

const defaultPageSize = 10

// Runner produces one aggregation result.
type Runner interface {
	Run(ctx context.Context) *feed.Result
}

// ArticlesQuery is the query string accepted by the article endpoints.
type ArticlesQuery struct {
	From       string   `query:"from" validate:"omitempty,datetime=2006-01-02"`
	To         string   `query:"to" validate:"omitempty,datetime=2006-01-02"`
	Q          string   `query:"q" validate:"max=200"`
	Sources    []string `query:"source" validate:"dive,max=200"`
	Categories []string `query:"category" validate:"dive,max=200"`
	Page       int      `query:"page" validate:"omitempty,min=1"`
	PageSize   int      `query:"page_size" validate:"omitempty,min=1,max=100"`
}

// SummarizeRequest is the body of POST /articles/summarize.
type SummarizeRequest struct {
	Link string `json:"link" validate:"required,url"`
}

// ToQuery converts the request into a filter query. Without from and to it
// covers the last defaultDays days in loc.
func (q *ArticlesQuery) ToQuery(now time.Time, loc *time.Location, defaultDays int) (feed.Query, error) {
	out := feed.Query{
		Search:     q.Q,
		Sources:    q.Sources,
		Categories: q.Categories,
		Location:   loc,
	}

	var err error
	if q.From != "" {
		if out.From, err = time.ParseInLocation("2006-01-02", q.From, loc); err != nil {
			return feed.Query{}, fmt.Errorf("invalid from: %w", err)
		}
	}
	if q.To != "" {
		if out.To, err = time.ParseInLocation("2006-01-02", q.To, loc); err != nil {
			return feed.Query{}, fmt.Errorf("invalid to: %w", err)
		}
	}
	if q.From == "" && q.To == "" {
		out.From, out.To = feed.DateRange(now.In(loc), defaultDays)
	}
	return out, out.Validate()
}

type Handlers struct {
	config     *config.Config
	runner     Runner
	registry   *sources.Registry
	summarizer ai.Summarizer
	store      cache.Store
	location   *time.Location
	now        func() time.Time

	snapshot  atomic.Pointer[feed.Result]
	refreshMu sync.Mutex
}

// NewHandlers wires the API. store is the summary cache and may be nil.
func NewHandlers(cfg *config.Config, runner Runner, registry *sources.Registry, summarizer ai.Summarizer, store cache.Store) *Handlers {
	if summarizer == nil {
		summarizer = ai.Unavailable{}
	}
	return &Handlers{
		config:     cfg,
		runner:     runner,
		registry:   registry,
		summarizer: summarizer,
		store:      store,
		location:   cfg.Location(),
		now:        time.Now,
	}
}

// Snapshot returns the latest run, starting a new one when there is none or
// it is older than SNAPSHOT_TTL. Concurrent callers share one refresh.
func (h *Handlers) Snapshot(ctx context.Context) *feed.Result {
	if cur := h.snapshot.Load(); cur != nil && !h.stale(cur) {
		return cur
	}

	h.refreshMu.Lock()
	defer h.refreshMu.Unlock()
	if cur := h.snapshot.Load(); cur != nil && !h.stale(cur) {
		return cur
	}
	return h.refreshLocked(ctx)
}

// Refresh forces a new run and publishes it as the snapshot.
func (h *Handlers) Refresh(ctx context.Context) *feed.Result {
	h.refreshMu.Lock()
	defer h.refreshMu.Unlock()
	return h.refreshLocked(ctx)
}

func (h *Handlers) refreshLocked(ctx context.Context) *feed.Result {
	// A client disconnect must not abort a run other requests are waiting on.
	result := h.runner.Run(context.WithoutCancel(ctx))
	h.snapshot.Store(result)
	return result
}

func (h *Handlers) stale(r *feed.Result) bool {
	return h.config.SnapshotTTL > 0 && h.now().Sub(r.FinishedAt) > h.config.SnapshotTTL
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(c *fiber.Ctx) error {
	resp := fiber.Map{
		"status":     "ok",
		"time":       h.now().UTC().Format(time.RFC3339),
		"sources":    h.registry.Len(),
		"summarizer": h.summarizer.Available(),
	}
	if cur := h.snapshot.Load(); cur != nil {
		resp["last_run"] = cur.FinishedAt.Format(time.RFC3339)
		resp["last_run_id"] = cur.RunID
	}
	return c.JSON(resp)
}

func (h *Handlers) filtered(c *fiber.Ctx) (*feed.Result, feed.Query, *ArticlesQuery, error) {
	params := middleware.Query[ArticlesQuery](c)
	q, err := params.ToQuery(h.now(), h.location, h.config.DefaultDays)
	if err != nil {
		if errors.Is(err, feed.ErrInvalidRange) {
			return nil, q, params, fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		return nil, q, params, fiber.NewError(fiber.StatusBadRequest, "invalid date")
	}
	return h.Snapshot(c.UserContext()), q, params, nil
}

// ListArticles handles GET /articles
func (h *Handlers) ListArticles(c *fiber.Ctx) error {
	result, q, params, err := h.filtered(c)
	if err != nil {
		return err
	}

	size := params.PageSize
	if size == 0 {
		size = defaultPageSize
	}
	matched := feed.Filter(result.Articles, q)
	page, current, totalPages := feed.Page(matched, params.Page, size)

	return c.JSON(fiber.Map{
		"run_id":       result.RunID,
		"generated_at": result.FinishedAt.Format(time.RFC3339),
		"from":         formatDay(q.From),
		"to":           formatDay(q.To),
		"page":         current,
		"page_size":    size,
		"total":        matched.Len(),
		"total_pages":  totalPages,
		"items":        page,
	})
}

// ExportCSV handles GET /articles/export.csv
func (h *Handlers) ExportCSV(c *fiber.Ctx) error {
	result, q, _, err := h.filtered(c)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := export.WriteCSV(&buf, feed.Filter(result.Articles, q)); err != nil {
		return fmt.Errorf("error writing CSV: %w", err)
	}

	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="ai_articles.csv"`)
	return c.Send(buf.Bytes())
}

// ListSources handles GET /sources
func (h *Handlers) ListSources(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"sources":    h.registry.Sources(),
		"categories": h.registry.Categories(),
	})
}

// GetSource handles GET /sources/:name
func (h *Handlers) GetSource(c *fiber.Ctx) error {
	name, err := url.PathUnescape(c.Params("name"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid source name")
	}
	src, ok := h.registry.Lookup(name)
	if !ok {
		return fiber.NewError(fiber.StatusNotFound, "Source not found")
	}

	resp := fiber.Map{"source": src}
	if cur := h.snapshot.Load(); cur != nil {
		resp["articles"] = cur.SourceCounts[src.Name]
		if f, failed := cur.Failures[src.Name]; failed {
			resp["failure"] = f
		}
	}
	return c.JSON(resp)
}

// Failures handles GET /failures
func (h *Handlers) Failures(c *fiber.Ctx) error {
	result := h.Snapshot(c.UserContext())
	return c.JSON(fiber.Map{
		"run_id":   result.RunID,
		"failures": result.Failures,
	})
}

// SummarizeArticle handles POST /articles/summarize. The generated summary is
// attached to the current snapshot if it has not been replaced meanwhile.
func (h *Handlers) SummarizeArticle(c *fiber.Ctx) error {
	if !h.summarizer.Available() {
		return fiber.NewError(fiber.StatusServiceUnavailable, "Summaries are not configured")
	}

	req := middleware.Body[SummarizeRequest](c)
	result := h.Snapshot(c.UserContext())
	i := result.Articles.IndexOfLink(req.Link)
	if i < 0 {
		return fiber.NewError(fiber.StatusNotFound, "Article not found")
	}

	article := result.Articles.At(i)
	if article.GeneratedSummary == nil {
		text, err := h.summarizer.Summarize(c.UserContext(), article.Title, article.Summary)
		if err != nil {
			logger.Get().Error().Err(err).Str("link", req.Link).Msg("Error summarizing article")
			return fiber.NewError(fiber.StatusBadGateway, "Failed to generate summary")
		}
		article = article.WithGeneratedSummary(text)
		h.attachSummary(result.RunID, article)
	}

	return c.JSON(article)
}

// attachSummary stores a summarized article in the snapshot of run runID.
// Concurrent updates of the same run are retried; a replaced run is left alone.
func (h *Handlers) attachSummary(runID string, article models.Article) {
	for {
		cur := h.snapshot.Load()
		if cur == nil || cur.RunID != runID {
			return
		}
		i := cur.Articles.IndexOfLink(article.Link)
		if i < 0 || cur.Articles.At(i).GeneratedSummary != nil {
			return
		}

		updated := *cur
		updated.Articles = cur.Articles.Replace(i, article)
		if h.snapshot.CompareAndSwap(cur, &updated) {
			return
		}
	}
}

// RefreshArticles handles POST /admin/refresh
func (h *Handlers) RefreshArticles(c *fiber.Ctx) error {
	start := h.now()
	result := h.Refresh(c.UserContext())

	return c.JSON(fiber.Map{
		"status":    "refreshed",
		"run_id":    result.RunID,
		"articles":  result.Articles.Len(),
		"succeeded": result.Succeeded(),
		"failed":    len(result.Failures),
		"duration":  h.now().Sub(start).String(),
	})
}

// ClearCache handles POST /admin/cache/clear
func (h *Handlers) ClearCache(c *fiber.Ctx) error {
	if h.store == nil {
		return fiber.NewError(fiber.StatusServiceUnavailable, "Summary cache is not configured")
	}
	if err := h.store.Clear(c.UserContext()); err != nil {
		return fmt.Errorf("error clearing summary cache: %w", err)
	}
	logger.Get().Info().Msg("Summary cache cleared")
	return c.JSON(fiber.Map{"status": "cleared"})
}

func formatDay(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}
