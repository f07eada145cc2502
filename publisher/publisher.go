package publisher

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"auto_blog_publisher/generator"
)

// Repository layout: images under the assets root, documents under the posts root.
const (
	repoAssetsPrefix = "assets"
	repoPostsPrefix  = "content/posts"
)

// Publisher ties rendering, local staging, and the remote content store together.
type Publisher struct {
	staging *Staging
	github  *GitHub
	log     zerolog.Logger
}

func New(staging *Staging, github *GitHub, log zerolog.Logger) (*Publisher, error) {
	if staging == nil {
		return nil, errors.New("staging is required")
	}
	if github == nil {
		return nil, errors.New("github client is required")
	}
	return &Publisher{
		staging: staging,
		github:  github,
		log:     log.With().Str("component", "publisher").Logger(),
	}, nil
}

// Publish renders the post, stages the markdown locally, and commits the
// document plus its optional image to the remote store. imageRel is a
// staging-relative path like "images/20240101_120000.jpg", or empty for the
// default image. Returns the published markdown filename.
func (p *Publisher) Publish(ctx context.Context, post generator.BlogPost, imageRel string, now time.Time) (string, error) {
	if err := validatePost(post); err != nil {
		return "", err
	}

	content, err := RenderMarkdown(post, imageRel, now)
	if err != nil {
		return "", err
	}
	filename := Filename(post.Title)
	if _, err := p.staging.WritePost(filename, content); err != nil {
		return "", fmt.Errorf("stage post: %w", err)
	}

	var files []File
	if imageRel != "" {
		data, err := os.ReadFile(p.staging.ImagePath(imageRel))
		if err != nil {
			return "", fmt.Errorf("read staged image: %w", err)
		}
		files = append(files, File{RepoPath: path.Join(repoAssetsPrefix, imageRel), Content: data})
	}
	files = append(files, File{RepoPath: path.Join(repoPostsPrefix, filename), Content: []byte(content)})

	slug := strings.TrimSuffix(filename, ".md")
	message := fmt.Sprintf("Create Blog %q", slug)
	if err := p.github.CommitFiles(ctx, files, message); err != nil {
		return "", err
	}

	p.log.Info().Str("file", filename).Msg("post published")
	return filename, nil
}
