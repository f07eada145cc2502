package publisher

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"gopkg.in/yaml.v3"

	"auto_blog_publisher/generator"
)

const (
	// defaultImage is used when a post has no staged image of its own.
	defaultImage = "images/blog2.jpg"

	// promoFooter is appended after the body of every published post.
	promoFooter = "{{< skin-analysis >}}\n---  \n**Experience personalized skincare recommendations with COSMI Skin! Your skin will thank you!**\n"

	dateLayout = "2006-01-02T15:04:05Z"
)

// ValidationError reports a document field that would corrupt the YAML
// front matter when published.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func validatePost(post generator.BlogPost) *ValidationError {
	if strings.Contains(post.Title, ":") {
		return &ValidationError{
			Field:  "title",
			Reason: "title contains a colon (:) which can cause YAML parsing issues; remove colons from the title",
		}
	}
	if strings.Contains(post.Description, ":") {
		return &ValidationError{
			Field:  "description",
			Reason: "description contains a colon (:) which can cause YAML parsing issues; remove colons from the description",
		}
	}
	return nil
}

// ValidateForPublish checks title and description for YAML-unsafe colons.
// Validation is advisory: serialization escapes colons regardless.
func ValidateForPublish(post generator.BlogPost) (bool, string) {
	if err := validatePost(post); err != nil {
		return false, err.Reason
	}
	return true, ""
}

// escapeColons substitutes the HTML entity so a stray colon cannot break the
// colon-delimited front matter. Applied at serialization time as a safety net
// even when validation passed.
func escapeColons(s string) string {
	return strings.ReplaceAll(s, ":", "&#58;")
}

// Filename derives the kebab-case markdown filename from a post title:
// lower-case, strip everything but letters/digits/spaces, hyphenate.
func Filename(title string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(title) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			b.WriteRune(r)
		}
	}
	parts := strings.Fields(b.String())
	if len(parts) == 0 {
		return "untitled.md"
	}
	return strings.Join(parts, "-") + ".md"
}

type frontMatter struct {
	Title       string   `yaml:"title"`
	Date        string   `yaml:"date"`
	Description string   `yaml:"description"`
	Tags        []string `yaml:"tags"`
	Categories  []string `yaml:"categories"`
	Image       string   `yaml:"image"`
}

// RenderMarkdown assembles the persisted document: YAML front matter, the raw
// markdown body, and the fixed promotional footer.
func RenderMarkdown(post generator.BlogPost, imagePath string, now time.Time) (string, error) {
	if imagePath == "" {
		imagePath = defaultImage
	}
	header := frontMatter{
		Title:       escapeColons(post.Title),
		Date:        now.UTC().Format(dateLayout),
		Description: escapeColons(post.Description),
		Tags:        post.Tags,
		Categories:  post.Categories,
		Image:       imagePath,
	}
	headerYAML, err := yaml.Marshal(header)
	if err != nil {
		return "", fmt.Errorf("marshal front matter: %w", err)
	}

	var sb strings.Builder
	sb.WriteString("---\n")
	sb.WriteString(strings.TrimSpace(string(headerYAML)))
	sb.WriteString("\n---\n\n")
	sb.WriteString(post.Body)
	sb.WriteString("\n\n")
	sb.WriteString(promoFooter)
	return sb.String(), nil
}
