package storage

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

func artifacts() []Artifact {
	return []Artifact{
		{Name: "newsletter.html", ContentType: "text/html; charset=utf-8", Data: []byte("<html></html>")},
		{Name: "newsletter.csv", ContentType: "text/csv", Data: []byte("title\n")},
	}
}

func TestLocalStorePublish(t *testing.T) {
	ctx := context.Background()
	base := t.TempDir()
	store, err := NewLocalStore(base)
	if err != nil {
		t.Fatalf("NewLocalStore failed: %v", err)
	}

	for _, edition := range []string{"2024-01-05", "2024-01-12"} {
		locs, err := store.Publish(ctx, edition, artifacts())
		if err != nil {
			t.Fatalf("Publish(%s) failed: %v", edition, err)
		}
		if len(locs) != 2 || locs[0] != filepath.Join(base, edition, "newsletter.html") {
			t.Fatalf("unexpected locations %v", locs)
		}
	}

	editions, err := store.Editions(ctx)
	if err != nil {
		t.Fatalf("Editions failed: %v", err)
	}
	if !reflect.DeepEqual(editions, []string{"2024-01-12", "2024-01-05"}) {
		t.Fatalf("unexpected editions %v", editions)
	}

	data, err := store.ReadFile(ctx, "2024-01-12", "newsletter.csv")
	if err != nil || string(data) != "title\n" {
		t.Fatalf("ReadFile = %q, %v", data, err)
	}

	index, err := os.ReadFile(filepath.Join(base, "index.html"))
	if err != nil {
		t.Fatalf("index not written: %v", err)
	}
	first := strings.Index(string(index), "2024-01-12/newsletter.html")
	second := strings.Index(string(index), "2024-01-05/newsletter.html")
	if first < 0 || second < 0 || first > second {
		t.Fatalf("index should list newest edition first:\n%s", index)
	}
}

func TestLocalStoreRejectsUnsafeNames(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocalStore failed: %v", err)
	}
	ctx := context.Background()

	if _, err := store.Publish(ctx, "../escape", artifacts()); err == nil {
		t.Error("expected error for edition outside the store")
	}
	if _, err := store.Publish(ctx, "2024-01-12", []Artifact{{Name: "../x.html"}}); err == nil {
		t.Error("expected error for artifact outside the edition")
	}
	if _, err := store.ReadFile(ctx, "2024-01-12", "../../etc/passwd"); err == nil {
		t.Error("expected error reading outside the edition")
	}
}

type fakeS3 struct {
	keys   []string
	bodies map[string]string
	types  map[string]string
	err    error
}

func (f *fakeS3) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	body, _ := io.ReadAll(in.Body)
	key := aws.ToString(in.Bucket) + "/" + aws.ToString(in.Key)
	f.keys = append(f.keys, key)
	f.bodies[key] = string(body)
	f.types[key] = aws.ToString(in.ContentType)
	return &s3.PutObjectOutput{}, nil
}

func TestR2StorePublish(t *testing.T) {
	fake := &fakeS3{bodies: map[string]string{}, types: map[string]string{}}
	store := NewR2Store(fake, "bucket", "/digests/")

	locs, err := store.Publish(context.Background(), "2024-01-12", artifacts())
	if err != nil {
		t.Fatalf("Publish failed: %v", err)
	}
	want := []string{"bucket/digests/2024-01-12/newsletter.html", "bucket/digests/2024-01-12/newsletter.csv"}
	if !reflect.DeepEqual(fake.keys, want) {
		t.Fatalf("unexpected keys %v", fake.keys)
	}
	if locs[0] != "r2://bucket/digests/2024-01-12/newsletter.html" {
		t.Errorf("unexpected location %s", locs[0])
	}
	if fake.bodies[want[1]] != "title\n" || fake.types[want[1]] != "text/csv" {
		t.Errorf("unexpected upload %q %q", fake.bodies[want[1]], fake.types[want[1]])
	}
}

func TestMultiJoinsErrors(t *testing.T) {
	boom := errors.New("boom")
	local, err := NewLocalStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocalStore failed: %v", err)
	}
	m := Multi{NewR2Store(&fakeS3{err: boom}, "b", ""), local}

	locs, err := m.Publish(context.Background(), "2024-01-12", artifacts())
	if !errors.Is(err, boom) {
		t.Fatalf("expected joined upload error, got %v", err)
	}
	if len(locs) != 2 {
		t.Fatalf("expected local publish to proceed, got %v", locs)
	}
}
