package generator

import (
	"encoding/json"
	"fmt"
	"strings"

	"auto_blog_publisher/fetcher"
)

const (
	descriptionLimit = 155

	// sentinelBody is used when synthesis failed before any response arrived.
	sentinelBody = "Error generating content"

	fallbackTag      = "skincare"
	fallbackCategory = "General Skincare"
)

var requiredFields = []string{"title", "description", "tags", "categories", "body"}

// ConvertEscapedNewlines replaces literal two-character newline escapes with
// actual line breaks. Applying it twice yields the same result as once.
func ConvertEscapedNewlines(text string) string {
	return strings.ReplaceAll(text, `\n`, "\n")
}

// ParseBlogPost decodes raw model output and enforces the five-field contract.
// The body's escaped newlines are converted before the post is returned.
func ParseBlogPost(raw string) (BlogPost, error) {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &probe); err != nil {
		return BlogPost{}, fmt.Errorf("decode model output: %w", err)
	}
	for _, field := range requiredFields {
		value, ok := probe[field]
		if !ok || string(value) == "null" {
			return BlogPost{}, fmt.Errorf("missing required field %q", field)
		}
	}

	var post BlogPost
	if err := json.Unmarshal([]byte(raw), &post); err != nil {
		return BlogPost{}, fmt.Errorf("decode model output: %w", err)
	}
	post.Body = ConvertEscapedNewlines(post.Body)
	return post, nil
}

// FallbackPost builds the degraded but schema-complete document used when
// synthesis fails. raw is the latest model response, or empty when none was
// ever obtained.
func FallbackPost(d fetcher.Discussion, raw string) BlogPost {
	body := raw
	if body == "" {
		body = sentinelBody
	}
	return BlogPost{
		Title:       d.Title,
		Description: truncateDescription(d.Content),
		Tags:        []string{fallbackTag},
		Categories:  []string{fallbackCategory},
		Body:        ConvertEscapedNewlines(body),
	}
}

func truncateDescription(content string) string {
	runes := []rune(content)
	if len(runes) <= descriptionLimit {
		return content
	}
	return string(runes[:descriptionLimit]) + "..."
}
