package publisher

import (
	"context"
	"errors"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"auto_blog_publisher/generator"
)

func newTestPublisher(t *testing.T, repo *fakeRepo) (*Publisher, *Staging) {
	t.Helper()
	srv := httptest.NewServer(repo.handler(t))
	t.Cleanup(srv.Close)
	staging, err := NewStaging(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	gh := newTestGitHub(t, srv)
	p, err := New(staging, gh, zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	return p, staging
}

func TestPublishCommitsRenderedPost(t *testing.T) {
	repo := newFakeRepo()
	p, staging := newTestPublisher(t, repo)

	post := generator.BlogPost{
		Title:       "Niacinamide burns my skin",
		Description: "Why it stings and what to do",
		Tags:        []string{"niacinamide"},
		Categories:  []string{"Ingredients"},
		Body:        "## What happened\n\nIt stings.",
	}

	filename, err := p.Publish(context.Background(), post, "", time.Date(2024, 3, 4, 5, 6, 7, 0, time.UTC))
	if err != nil {
		t.Fatalf("Publish() error = %v", err)
	}
	if filename != "niacinamide-burns-my-skin.md" {
		t.Errorf("filename = %q", filename)
	}

	if len(repo.paths) != 1 || repo.paths[0] != "content/posts/niacinamide-burns-my-skin.md" {
		t.Errorf("committed paths = %v", repo.paths)
	}

	// The rendered document is also staged locally.
	local, err := os.ReadFile(filepath.Join(staging.Root, "posts", filename))
	if err != nil {
		t.Fatalf("staged post missing: %v", err)
	}
	for _, want := range []string{"---\n", "title: Niacinamide burns my skin", "{{< skin-analysis >}}"} {
		if !strings.Contains(string(local), want) {
			t.Errorf("staged post missing %q", want)
		}
	}
}

func TestPublishWithImage(t *testing.T) {
	repo := newFakeRepo()
	p, staging := newTestPublisher(t, repo)

	rel, err := staging.SaveImage("cover.jpg", strings.NewReader("jpeg bytes"))
	if err != nil {
		t.Fatal(err)
	}

	post := generator.BlogPost{
		Title: "With Image", Description: "d",
		Tags: []string{"a"}, Categories: []string{"b"}, Body: "c",
	}
	if _, err := p.Publish(context.Background(), post, rel, time.Now()); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}

	if len(repo.paths) != 2 {
		t.Fatalf("committed %d files, want image + post", len(repo.paths))
	}
	if repo.paths[0] != "assets/"+rel {
		t.Errorf("image path = %q", repo.paths[0])
	}
	if repo.paths[1] != "content/posts/with-image.md" {
		t.Errorf("post path = %q", repo.paths[1])
	}
}

func TestPublishRejectsColonTitle(t *testing.T) {
	repo := newFakeRepo()
	p, _ := newTestPublisher(t, repo)

	post := generator.BlogPost{
		Title: "Retinol: A Guide", Description: "d",
		Tags: []string{"a"}, Categories: []string{"b"}, Body: "c",
	}
	_, err := p.Publish(context.Background(), post, "", time.Now())

	var validationErr *ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("error = %T, want *ValidationError", err)
	}
	if validationErr.Field != "title" {
		t.Errorf("field = %q", validationErr.Field)
	}
	if len(repo.paths) != 0 {
		t.Errorf("nothing must be committed on validation failure, got %v", repo.paths)
	}
}

func TestPublishMissingStagedImage(t *testing.T) {
	repo := newFakeRepo()
	p, _ := newTestPublisher(t, repo)

	post := generator.BlogPost{
		Title: "t", Description: "d",
		Tags: []string{"a"}, Categories: []string{"b"}, Body: "c",
	}
	if _, err := p.Publish(context.Background(), post, "images/missing.jpg", time.Now()); err == nil {
		t.Error("expected error for missing staged image")
	}
	if len(repo.paths) != 0 {
		t.Errorf("nothing must be committed when the image is unreadable, got %v", repo.paths)
	}
}
