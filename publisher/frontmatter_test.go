package publisher

import (
	"strings"
	"testing"
	"time"

	"auto_blog_publisher/generator"
)

func TestValidateForPublish(t *testing.T) {
	tests := []struct {
		name      string
		post      generator.BlogPost
		wantOK    bool
		wantField string
	}{
		{
			name:   "clean post",
			post:   generator.BlogPost{Title: "Gentle Cleansers", Description: "A roundup"},
			wantOK: true,
		},
		{
			name:      "colon in title",
			post:      generator.BlogPost{Title: "Retinol: A Guide", Description: "ok"},
			wantOK:    false,
			wantField: "title",
		},
		{
			name:      "colon in description",
			post:      generator.BlogPost{Title: "ok", Description: "Step 1: cleanse"},
			wantOK:    false,
			wantField: "description",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, reason := ValidateForPublish(tt.post)
			if ok != tt.wantOK {
				t.Fatalf("ValidateForPublish() ok = %v, want %v (reason %q)", ok, tt.wantOK, reason)
			}
			if !tt.wantOK && !strings.Contains(reason, tt.wantField) {
				t.Errorf("reason %q does not identify field %q", reason, tt.wantField)
			}
		})
	}
}

func TestFilename(t *testing.T) {
	tests := []struct {
		title string
		want  string
	}{
		{title: "Best Retinol: A Review!", want: "best-retinol-a-review.md"},
		{title: "Niacinamide burns my skin", want: "niacinamide-burns-my-skin.md"},
		{title: "  Multiple   spaces  here ", want: "multiple-spaces-here.md"},
		{title: "UPPER case 123", want: "upper-case-123.md"},
		{title: "!!!", want: "untitled.md"},
	}
	for _, tt := range tests {
		if got := Filename(tt.title); got != tt.want {
			t.Errorf("Filename(%q) = %q, want %q", tt.title, got, tt.want)
		}
	}
}

func TestFilenameDeterministic(t *testing.T) {
	title := "Some Product Review (2024)"
	first := Filename(title)
	for i := 0; i < 3; i++ {
		if got := Filename(title); got != first {
			t.Fatalf("Filename not deterministic: %q vs %q", got, first)
		}
	}
}

func TestRenderMarkdown(t *testing.T) {
	post := generator.BlogPost{
		Title:       "Retinol: A Guide",
		Description: "Start here: the basics",
		Tags:        []string{"retinol", "skincare"},
		Categories:  []string{"Ingredients"},
		Body:        "## Intro\n\nStart slow.",
	}
	now := time.Date(2024, 3, 4, 5, 6, 7, 0, time.UTC)

	out, err := RenderMarkdown(post, "", now)
	if err != nil {
		t.Fatalf("RenderMarkdown() error = %v", err)
	}

	checks := []string{
		"---\n",
		"title: Retinol&#58; A Guide",
		"description: Start here&#58; the basics",
		"2024-03-04T05:06:07Z",
		"- retinol",
		"- skincare",
		"- Ingredients",
		"image: images/blog2.jpg",
		"## Intro\n\nStart slow.",
		"{{< skin-analysis >}}",
		"**Experience personalized skincare recommendations with COSMI Skin! Your skin will thank you!**",
	}
	for _, want := range checks {
		if !strings.Contains(out, want) {
			t.Errorf("rendered markdown missing %q\n---\n%s", want, out)
		}
	}
	if strings.Contains(out, "Retinol: A Guide") {
		t.Error("unescaped colon survived into the front matter")
	}
}

func TestRenderMarkdownCustomImage(t *testing.T) {
	post := generator.BlogPost{Title: "t", Description: "d", Tags: []string{"a"}, Categories: []string{"b"}, Body: "body"}
	out, err := RenderMarkdown(post, "images/20240101_120000.jpg", time.Now())
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "image: images/20240101_120000.jpg") {
		t.Errorf("custom image path missing:\n%s", out)
	}
}

func TestRenderMarkdownEscapingIsSafetyNet(t *testing.T) {
	// Validation can be bypassed; serialization must still escape.
	post := generator.BlogPost{Title: "A: B", Description: "C: D", Tags: []string{"x"}, Categories: []string{"y"}, Body: "z"}
	if ok, _ := ValidateForPublish(post); ok {
		t.Fatal("post with colons should not validate")
	}
	out, err := RenderMarkdown(post, "", time.Now())
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "A&#58; B") || !strings.Contains(out, "C&#58; D") {
		t.Errorf("colons not escaped:\n%s", out)
	}
}
