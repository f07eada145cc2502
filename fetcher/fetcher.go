package fetcher

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"auto_blog_publisher/config"
)

const (
	tokenURL   = "https://www.reddit.com/api/v1/access_token"
	apiBaseURL = "https://oauth.reddit.com"

	defaultSearchLimit = 20

	// A thread qualifies only with strictly more than this many total comments.
	minThreadComments = 10
	// Comment bodies at or below this length are noise and are skipped.
	minCommentLength = 50
	// At most this many comments are extracted per thread, best-ranked first.
	maxCommentsPerThread = 10
)

// FetchError reports a source connectivity or authentication failure.
// It is fatal to the current run; retry policy belongs to the caller.
type FetchError struct {
	Op         string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: status %d: %v", e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("fetch %s: %v", e.Op, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Client talks to the discussion source over its OAuth HTTP API.
type Client struct {
	cfg    config.RedditConfig
	client *http.Client
	log    zerolog.Logger

	token    string
	tokenURL string
	apiURL   string
}

// New creates a Client. Authentication happens lazily on the first search.
func New(cfg config.RedditConfig, client *http.Client, log zerolog.Logger) (*Client, error) {
	if cfg.ClientID == "" || cfg.ClientSecret == "" || cfg.Username == "" || cfg.Password == "" {
		return nil, errors.New("reddit config must include client_id, client_secret, username, and password")
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "auto_blog_publisher/1.0"
	}
	if client == nil {
		client = &http.Client{Timeout: 60 * time.Second}
	}
	return &Client{
		cfg:      cfg,
		client:   client,
		log:      log.With().Str("component", "fetcher").Logger(),
		tokenURL: tokenURL,
		apiURL:   apiBaseURL,
	}, nil
}

// Search queries a subreddit for threads matching query, sorted by relevance.
// limit bounds the number of threads examined, not the number returned: threads
// without enough engagement or without any qualifying comment are dropped.
func (c *Client) Search(ctx context.Context, subreddit, query string, limit int) ([]Discussion, error) {
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	if err := c.ensureToken(ctx); err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("q", query)
	q.Set("sort", "relevance")
	q.Set("restrict_sr", "1")
	q.Set("limit", strconv.Itoa(limit))
	q.Set("raw_json", "1")

	var threads listing
	searchURL := fmt.Sprintf("%s/r/%s/search?%s", c.apiURL, url.PathEscape(subreddit), q.Encode())
	if err := c.getJSON(ctx, "search", searchURL, &threads); err != nil {
		return nil, err
	}

	var discussions []Discussion
	for _, child := range threads.Data.Children {
		if child.Kind != "t3" {
			continue
		}
		thread := child.Data
		if thread.NumComments <= minThreadComments {
			continue
		}
		comments, err := c.fetchComments(ctx, thread.ID)
		if err != nil {
			return nil, err
		}
		if len(comments) == 0 {
			continue
		}
		discussions = append(discussions, Discussion{
			Title:       thread.Title,
			Content:     thread.Selftext,
			Comments:    comments,
			NumComments: thread.NumComments,
			Score:       thread.Score,
		})
	}

	c.log.Info().
		Str("subreddit", subreddit).
		Str("query", query).
		Int("discussions", len(discussions)).
		Msg("search complete")
	return discussions, nil
}

// fetchComments pulls the best-ranked comments of a thread, skipping
// continuation placeholders and short bodies, capped at maxCommentsPerThread.
func (c *Client) fetchComments(ctx context.Context, threadID string) ([]string, error) {
	q := url.Values{}
	q.Set("sort", "best")
	q.Set("depth", "1")
	q.Set("limit", "100")
	q.Set("raw_json", "1")

	// The comments endpoint returns a pair of listings: the thread, then its comment tree.
	var listings []listing
	commentsURL := fmt.Sprintf("%s/comments/%s?%s", c.apiURL, url.PathEscape(threadID), q.Encode())
	if err := c.getJSON(ctx, "comments", commentsURL, &listings); err != nil {
		return nil, err
	}
	if len(listings) < 2 {
		return nil, nil
	}

	var comments []string
	for _, child := range listings[1].Data.Children {
		if child.Kind != "t1" {
			// "more" children are continuation placeholders, not comments.
			continue
		}
		if utf8.RuneCountInString(child.Data.Body) <= minCommentLength {
			continue
		}
		comments = append(comments, child.Data.Body)
		if len(comments) >= maxCommentsPerThread {
			break
		}
	}
	return comments, nil
}

// ensureToken performs the OAuth password grant once and caches the result.
func (c *Client) ensureToken(ctx context.Context) error {
	if c.token != "" {
		return nil
	}

	form := url.Values{}
	form.Set("grant_type", "password")
	form.Set("username", c.cfg.Username)
	form.Set("password", c.cfg.Password)

	req, err := http.NewRequestWithContext(ctx, "POST", c.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return &FetchError{Op: "authenticate", Err: err}
	}
	req.SetBasicAuth(c.cfg.ClientID, c.cfg.ClientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", c.cfg.UserAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return &FetchError{Op: "authenticate", Err: err}
	}
	defer resp.Body.Close()

	var data tokenResp
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return &FetchError{Op: "authenticate", StatusCode: resp.StatusCode, Err: err}
	}
	if data.AccessToken == "" {
		return &FetchError{
			Op:         "authenticate",
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("source rejected credentials: %s", data.Error),
		}
	}
	c.token = data.AccessToken
	return nil
}

func (c *Client) getJSON(ctx context.Context, op, rawURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, "GET", rawURL, nil)
	if err != nil {
		return &FetchError{Op: op, Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("User-Agent", c.cfg.UserAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return &FetchError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &FetchError{Op: op, StatusCode: resp.StatusCode, Err: errors.New("unexpected status")}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &FetchError{Op: op, Err: err}
	}
	return nil
}
