package pipeline

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"auto_blog_publisher/fetcher"
	"auto_blog_publisher/generator"
)

// Source yields discussions matching a topic query.
type Source interface {
	Search(ctx context.Context, subreddit, query string, limit int) ([]fetcher.Discussion, error)
}

// Synthesizer turns one discussion into a schema-complete blog post.
type Synthesizer interface {
	Synthesize(ctx context.Context, d fetcher.Discussion) generator.BlogPost
}

// Runner drives fetch -> synthesize for every matching discussion.
type Runner struct {
	source Source
	agent  Synthesizer
	limit  int
	log    zerolog.Logger
}

func NewRunner(source Source, agent Synthesizer, limit int, log zerolog.Logger) (*Runner, error) {
	if source == nil {
		return nil, errors.New("discussion source is required")
	}
	if agent == nil {
		return nil, errors.New("synthesizer is required")
	}
	return &Runner{
		source: source,
		agent:  agent,
		limit:  limit,
		log:    log.With().Str("component", "pipeline").Logger(),
	}, nil
}

// Run fetches discussions and synthesizes each one sequentially in source
// order. A fetch failure aborts the whole run; a synthesis failure degrades
// only that discussion (the agent returns its fallback document), so no
// discussion is ever skipped.
func (r *Runner) Run(ctx context.Context, subreddit, query string) ([]generator.BlogPost, error) {
	discussions, err := r.source.Search(ctx, subreddit, query, r.limit)
	if err != nil {
		return nil, err
	}

	posts := make([]generator.BlogPost, 0, len(discussions))
	for _, d := range discussions {
		r.log.Info().
			Str("discussion", d.Title).
			Int("comments", len(d.Comments)).
			Int("score", d.Score).
			Msg("synthesizing")
		posts = append(posts, r.agent.Synthesize(ctx, d))
	}

	r.log.Info().Int("count", len(posts)).Msg("pipeline run complete")
	return posts, nil
}
