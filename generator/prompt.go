package generator

import (
	"fmt"
	"strings"

	"auto_blog_publisher/fetcher"
)

const (
	// targetSite is the publication persona the model writes for.
	targetSite = "cosmi.skin"

	// refineInstruction is the fixed second-pass prompt.
	refineInstruction = "Improve the quality of your blog post, keeping the same JSON structure."
)

// BuildDraftPrompt embeds the full discussion plus the fixed authoring
// instructions into a single first-pass message.
func BuildDraftPrompt(d fetcher.Discussion) Message {
	var sb strings.Builder
	sb.WriteString("Create a blog post about skincare based on the discussion below.\n\n")
	fmt.Fprintf(&sb, "Discussion title: %s\n", d.Title)
	fmt.Fprintf(&sb, "Discussion content:\n%s\n\n", d.Content)
	sb.WriteString("Top comments:\n")
	for i, comment := range d.Comments {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, comment)
	}
	fmt.Fprintf(&sb, "\nThis discussion has %d total comments and a score of %d.\n\n", d.NumComments, d.Score)

	sb.WriteString("Format the output as a JSON object with the following schema:\n")
	sb.WriteString(`{
  "title": "SEO-optimized title without colon",
  "description": "Meta description (155 characters max) without colon",
  "tags": ["relevant tags"],
  "categories": ["primary categories for this blog"],
  "body": "body in markdown format"
}
`)
	sb.WriteString("\nKey requirements:\n")
	fmt.Fprintf(&sb, "1. Target website: %s\n", targetSite)
	sb.WriteString("2. Tags should be relevant skincare keywords.\n")
	sb.WriteString("3. Categories should be broader classifications (e.g., \"Skincare\", \"Product Reviews\", \"Ingredients\").\n")
	sb.WriteString("4. Body formatting:\n")
	sb.WriteString("   - Strictly in Markdown format (use `#` for headings, `*` for bullet points, etc.).\n")
	sb.WriteString("   - Do NOT use JSON or any structured markup inside the body.\n")
	sb.WriteString("   - Do NOT use escape sequences like \\u2019; use proper punctuation.\n")
	sb.WriteString("   - Ensure proper markdown hierarchy with headings, subheadings, and lists where necessary.\n")
	sb.WriteString("5. Include insights from the comments.\n\n")
	sb.WriteString("Rules to follow while generating the blog:\n")
	sb.WriteString("1. Never mention Reddit or its users anywhere.\n")
	sb.WriteString("2. The blog should be SEO optimized.\n")

	return Message{Role: RoleUser, Content: sb.String()}
}
