package generator

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"auto_blog_publisher/fetcher"
)

// Agent turns a discussion into a blog post through a two-pass refine loop.
type Agent struct {
	llm LLMClient
	log zerolog.Logger
}

func NewAgent(llm LLMClient, log zerolog.Logger) (*Agent, error) {
	if llm == nil {
		return nil, errors.New("llm client is required")
	}
	return &Agent{llm: llm, log: log.With().Str("component", "generator").Logger()}, nil
}

// Synthesize runs the draft pass, appends the refine instruction, runs the
// second pass, and parses the result. Every failure mode degrades to the
// fallback document; synthesis never returns an error to the caller.
//
// The conversation is a local message list scoped to this one call.
func (a *Agent) Synthesize(ctx context.Context, d fetcher.Discussion) BlogPost {
	msgs := []Message{BuildDraftPrompt(d)}

	first, err := a.llm.Complete(ctx, msgs)
	if err != nil {
		a.log.Error().Err(err).Str("discussion", d.Title).Msg("draft pass failed")
		return FallbackPost(d, "")
	}

	msgs = append(msgs,
		Message{Role: RoleAssistant, Content: first},
		Message{Role: RoleUser, Content: refineInstruction},
	)

	second, err := a.llm.Complete(ctx, msgs)
	if err != nil {
		a.log.Error().Err(err).Str("discussion", d.Title).Msg("refine pass failed")
		return FallbackPost(d, first)
	}

	post, err := ParseBlogPost(second)
	if err != nil {
		a.log.Warn().Err(err).Str("discussion", d.Title).Msg("model output rejected, using fallback")
		return FallbackPost(d, second)
	}
	return post
}
