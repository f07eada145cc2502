package generator

// BlogPost is the structured document produced by synthesis. All five fields
// are always populated, on the fallback path included.
type BlogPost struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
	Categories  []string `json:"categories"`
	Body        string   `json:"body"`
}
