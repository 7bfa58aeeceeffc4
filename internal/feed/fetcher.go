package feed

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/bilgisen/aidigest/internal/logger"
	"github.com/bilgisen/aidigest/internal/models"
	"github.com/go-resty/resty/v2"
	"github.com/mmcdole/gofeed"
)

const (
	defaultFetchTimeout = 15 * time.Second
	defaultConcurrency  = 5
	// MaxFeedBytes caps how much of a feed response is read.
	MaxFeedBytes = 10 << 20
	userAgent    = "Mozilla/5.0 (compatible; aidigest/1.0; +https://github.com/bilgisen/aidigest)"
	acceptHeader = "application/rss+xml, application/atom+xml, application/feed+json, application/xml;q=0.9, text/xml;q=0.8, */*;q=0.1"
)

// SourceResult is the outcome of fetching one source: either items or a failure.
type SourceResult struct {
	Source   models.Source
	Items    []*gofeed.Item
	Failure  *models.FetchFailure
	Duration time.Duration
}

// Fetcher retrieves and parses feeds with a bounded worker pool.
type Fetcher struct {
	client      *resty.Client
	timeout     time.Duration
	concurrency int
}

func NewFetcher(timeout time.Duration, concurrency int) *Fetcher {
	if timeout <= 0 {
		timeout = defaultFetchTimeout
	}
	if concurrency < 1 {
		concurrency = defaultConcurrency
	}
	return &Fetcher{
		client: resty.New().
			SetTimeout(timeout).
			SetRetryCount(0).
			SetHeader("User-Agent", userAgent).
			SetHeader("Accept", acceptHeader),
		timeout:     timeout,
		concurrency: concurrency,
	}
}

// FetchFeed retrieves one source and parses its entries. A non-nil failure
// means the source contributes nothing this run.
func (f *Fetcher) FetchFeed(ctx context.Context, src models.Source) (items []*gofeed.Item, failure *models.FetchFailure) {
	defer func() {
		if r := recover(); r != nil {
			items = nil
			failure = newFailure(src, models.FailureUnknown, fmt.Sprintf("panic while parsing feed: %v", r), 0)
		}
	}()

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	resp, err := f.client.R().
		SetContext(ctx).
		SetDoNotParseResponse(true).
		Get(src.URL)
	if err != nil {
		return nil, newFailure(src, classifyError(err), err.Error(), 0)
	}
	body := resp.RawBody()
	if body == nil {
		return nil, newFailure(src, models.FailureParseError, "empty response body", resp.StatusCode())
	}
	defer body.Close()

	switch status := resp.StatusCode(); {
	case status == http.StatusTooManyRequests:
		return nil, newFailure(src, models.FailureRateLimited, resp.Status(), status)
	case status < 200 || status >= 300:
		return nil, newFailure(src, models.FailureHTTPError, resp.Status(), status)
	}

	data, err := io.ReadAll(io.LimitReader(body, MaxFeedBytes))
	if err != nil {
		return nil, newFailure(src, classifyError(err), fmt.Sprintf("failed to read feed body: %v", err), resp.StatusCode())
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, newFailure(src, models.FailureParseError, "empty feed body", resp.StatusCode())
	}

	parsed, err := gofeed.NewParser().Parse(bytes.NewReader(data))
	if err != nil {
		return nil, newFailure(src, models.FailureParseError, err.Error(), resp.StatusCode())
	}
	return parsed.Items, nil
}

// FetchAll fetches every source with at most concurrency requests in flight.
// Results are returned in source order; failures are recorded per source and
// never abort the others. Sources not started before ctx is done are marked
// as cancelled.
func (f *Fetcher) FetchAll(ctx context.Context, srcs []models.Source) []SourceResult {
	log := logger.Get()
	results := make([]SourceResult, len(srcs))
	if len(srcs) == 0 {
		return results
	}

	workers := f.concurrency
	if workers > len(srcs) {
		workers = len(srcs)
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				start := time.Now()
				items, failure := f.FetchFeed(ctx, srcs[i])
				results[i] = SourceResult{
					Source:   srcs[i],
					Items:    items,
					Failure:  failure,
					Duration: time.Since(start),
				}

				event := logger.WithSource(log, srcs[i].Name).Debug()
				if failure != nil {
					event = logger.WithSource(log, srcs[i].Name).Warn().
						Str("kind", string(failure.Kind)).
						Str("reason", failure.Reason)
				}
				event.Int("items", len(items)).
					Dur("duration", results[i].Duration).
					Msg("Fetched source")
			}
		}()
	}

	dispatched := 0
dispatch:
	for ; dispatched < len(srcs); dispatched++ {
		select {
		case jobs <- dispatched:
		case <-ctx.Done():
			break dispatch
		}
	}
	close(jobs)
	wg.Wait()

	for i := dispatched; i < len(srcs); i++ {
		results[i] = SourceResult{
			Source:  srcs[i],
			Failure: newFailure(srcs[i], models.FailureUnknown, "run cancelled before fetch started", 0),
		}
	}
	return results
}

func newFailure(src models.Source, kind models.FailureKind, reason string, status int) *models.FetchFailure {
	return &models.FetchFailure{
		Source:     src.Name,
		Kind:       kind,
		Reason:     reason,
		StatusCode: status,
	}
}

func classifyError(err error) models.FailureKind {
	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return models.FailureTimeout
	case errors.As(err, &netErr) && netErr.Timeout():
		return models.FailureTimeout
	default:
		return models.FailureUnknown
	}
}
