package fetcher

// Discussion is one source thread plus its filtered top comments.
// Immutable once fetched.
type Discussion struct {
	Title       string   `json:"title"`
	Content     string   `json:"content"`
	Comments    []string `json:"comments"`
	NumComments int      `json:"num_comments"`
	Score       int      `json:"score"`
}

// listing mirrors the source API's envelope for both thread and comment results.
type listing struct {
	Data struct {
		Children []listingChild `json:"children"`
	} `json:"data"`
}

type listingChild struct {
	Kind string    `json:"kind"`
	Data childData `json:"data"`
}

// childData carries the fields used from both thread (t3) and comment (t1) nodes.
type childData struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Selftext    string `json:"selftext"`
	NumComments int    `json:"num_comments"`
	Score       int    `json:"score"`
	Body        string `json:"body"`
}

type tokenResp struct {
	AccessToken string `json:"access_token"`
	Error       string `json:"error"`
}
