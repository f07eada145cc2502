package publisher

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"

	"auto_blog_publisher/config"
)

const githubAPIBaseURL = "https://api.github.com"

// TransportError reports a remote content store rejection for one file.
type TransportError struct {
	Path       string
	StatusCode int
	Body       string
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("publish %s: remote store returned %d: %s", e.Path, e.StatusCode, e.Body)
}

// File is one blob to commit, addressed by its repository-relative path.
type File struct {
	RepoPath string
	Content  []byte
}

// GitHub commits files to a content repository through the contents API.
type GitHub struct {
	cfg     config.GitHubConfig
	client  *http.Client
	log     zerolog.Logger
	baseURL string
}

func NewGitHub(cfg config.GitHubConfig, client *http.Client, log zerolog.Logger) (*GitHub, error) {
	if cfg.Owner == "" || cfg.Repo == "" || cfg.Token == "" {
		return nil, errors.New("github config must include owner, repo, and token")
	}
	if cfg.Branch == "" {
		cfg.Branch = "main"
	}
	if client == nil {
		client = &http.Client{Timeout: 60 * time.Second}
	}
	return &GitHub{
		cfg:     cfg,
		client:  client,
		log:     log.With().Str("component", "github").Logger(),
		baseURL: githubAPIBaseURL,
	}, nil
}

// CommitFiles performs a create-or-update for each file in order, stopping at
// the first failure so the caller knows exactly which file did not land.
func (g *GitHub) CommitFiles(ctx context.Context, files []File, message string) error {
	for _, file := range files {
		if err := g.commitFile(ctx, file, message); err != nil {
			return err
		}
		g.log.Info().Str("path", file.RepoPath).Msg("committed file")
	}
	return nil
}

type contentsResp struct {
	SHA string `json:"sha"`
}

type putPayload struct {
	Message string `json:"message"`
	Content string `json:"content"`
	Branch  string `json:"branch"`
	SHA     string `json:"sha,omitempty"`
}

// commitFile reads the current blob SHA if the file exists, then writes the
// new content. An existing SHA turns the write into an update.
func (g *GitHub) commitFile(ctx context.Context, file File, message string) error {
	contentsURL := fmt.Sprintf("%s/repos/%s/%s/contents/%s",
		g.baseURL, url.PathEscape(g.cfg.Owner), url.PathEscape(g.cfg.Repo), file.RepoPath)

	sha, err := g.currentSHA(ctx, contentsURL, file.RepoPath)
	if err != nil {
		return err
	}

	payload := putPayload{
		Message: message,
		Content: base64.StdEncoding.EncodeToString(file.Content),
		Branch:  g.cfg.Branch,
		SHA:     sha,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, "PUT", contentsURL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	g.setHeaders(req)
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("publish %s: %w", file.RepoPath, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return &TransportError{Path: file.RepoPath, StatusCode: resp.StatusCode, Body: string(detail)}
	}
	return nil
}

// currentSHA returns the existing blob SHA, or empty when the file is absent.
func (g *GitHub) currentSHA(ctx context.Context, contentsURL, repoPath string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", contentsURL, nil)
	if err != nil {
		return "", err
	}
	g.setHeaders(req)
	q := req.URL.Query()
	q.Set("ref", g.cfg.Branch)
	req.URL.RawQuery = q.Encode()

	resp, err := g.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("publish %s: %w", repoPath, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		var data contentsResp
		if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
			return "", fmt.Errorf("publish %s: decode contents: %w", repoPath, err)
		}
		return data.SHA, nil
	case http.StatusNotFound:
		return "", nil
	default:
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return "", &TransportError{Path: repoPath, StatusCode: resp.StatusCode, Body: string(detail)}
	}
}

func (g *GitHub) setHeaders(req *http.Request) {
	req.Header.Set("Authorization", "token "+g.cfg.Token)
	req.Header.Set("Accept", "application/vnd.github+json")
}
