package feed

import (
	"context"
	"testing"
	"time"

	"github.com/bilgisen/aidigest/internal/models"
	"github.com/bilgisen/aidigest/internal/sources"
)

func TestProcessorRun(t *testing.T) {
	srv := newFeedServer(t)
	registry, err := sources.New([]models.Source{
		{Name: "Primary", URL: srv.URL + "/rss", Category: "Europe"},
		{Name: "Mirror", URL: srv.URL + "/rss", Category: "Asia"},
		{Name: "Atom", URL: srv.URL + "/atom"},
		{Name: "Broken", URL: srv.URL + "/broken"},
	})
	if err != nil {
		t.Fatalf("Failed to build registry: %v", err)
	}

	p := NewProcessor(registry, NewFetcher(2*time.Second, 3))
	res := p.Run(context.Background())

	if res.RunID == "" {
		t.Error("expected a run ID")
	}
	if res.FinishedAt.Before(res.StartedAt) {
		t.Errorf("finished %v before started %v", res.FinishedAt, res.StartedAt)
	}
	if res.Succeeded() != 3 {
		t.Errorf("expected 3 successful sources, got %d", res.Succeeded())
	}

	failure, ok := res.Failures["Broken"]
	if !ok || failure.Kind != models.FailureHTTPError {
		t.Fatalf("expected http_error for Broken, got %+v", res.Failures)
	}

	if res.Articles.Len() != 3 {
		t.Fatalf("expected 3 deduplicated articles, got %d: %v", res.Articles.Len(), titles(res.Articles))
	}
	want := []string{"Atom entry", "First post", "Second post"}
	for i, title := range want {
		a := res.Articles.At(i)
		if a.Title != title {
			t.Errorf("position %d: expected %q, got %q", i, title, a.Title)
		}
	}
	for i := 0; i < res.Articles.Len(); i++ {
		if a := res.Articles.At(i); a.Link != "https://atom.test/entry" && a.SourceName != "Primary" {
			t.Errorf("expected duplicates to resolve to Primary, got %s for %s", a.SourceName, a.Title)
		}
	}
	if undated := res.Articles.At(2); undated.PublishedAt != nil {
		t.Errorf("expected unparseable date to be nil, got %v", undated.PublishedAt)
	}
}

func TestProcessorRunAllSourcesFail(t *testing.T) {
	srv := newFeedServer(t)
	registry, err := sources.New([]models.Source{
		{Name: "Broken", URL: srv.URL + "/broken"},
		{Name: "Garbage", URL: srv.URL + "/garbage"},
	})
	if err != nil {
		t.Fatalf("Failed to build registry: %v", err)
	}

	res := NewProcessor(registry, NewFetcher(time.Second, 2)).Run(context.Background())
	if res.Articles.Len() != 0 {
		t.Fatalf("expected empty set, got %d", res.Articles.Len())
	}
	kinds := res.Failures.Kinds()
	if kinds["Broken"] != models.FailureHTTPError || kinds["Garbage"] != models.FailureParseError {
		t.Fatalf("unexpected failure kinds: %v", kinds)
	}
}
