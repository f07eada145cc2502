package generator

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"auto_blog_publisher/fetcher"
)

// scriptedLLM replays a fixed sequence of responses and records every call.
type scriptedLLM struct {
	responses []string
	errs      []error
	calls     [][]Message
}

func (s *scriptedLLM) Complete(_ context.Context, msgs []Message) (string, error) {
	i := len(s.calls)
	s.calls = append(s.calls, msgs)
	if i < len(s.errs) && s.errs[i] != nil {
		return "", s.errs[i]
	}
	if i < len(s.responses) {
		return s.responses[i], nil
	}
	return "", errors.New("no scripted response")
}

func testDiscussion() fetcher.Discussion {
	return fetcher.Discussion{
		Title:       "Niacinamide burns my skin",
		Content:     strings.Repeat("c", 200),
		Comments:    []string{strings.Repeat("c1", 30)},
		NumComments: 15,
		Score:       40,
	}
}

const validResponse = `{"title":"Why Niacinamide Stings","description":"Understanding the tingle","tags":["niacinamide"],"categories":["Ingredients"],"body":"## What is going on\\n\\nBarrier damage."}`

func TestSynthesizeSuccess(t *testing.T) {
	llm := &scriptedLLM{responses: []string{`{"draft":true}`, validResponse}}
	agent, err := NewAgent(llm, zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}

	post := agent.Synthesize(context.Background(), testDiscussion())

	if len(llm.calls) != 2 {
		t.Fatalf("expected 2 passes, got %d", len(llm.calls))
	}
	if post.Title != "Why Niacinamide Stings" {
		t.Errorf("title = %q, fallback not expected", post.Title)
	}
	if post.Body == "" || !strings.Contains(post.Body, "## What is going on\n\nBarrier damage.") {
		t.Errorf("body = %q", post.Body)
	}

	// The refine pass sees the draft prompt, the model turn, and the fixed instruction.
	second := llm.calls[1]
	if len(second) != 3 {
		t.Fatalf("refine conversation has %d messages, want 3", len(second))
	}
	if second[1].Role != RoleAssistant || second[1].Content != `{"draft":true}` {
		t.Errorf("model turn not appended: %+v", second[1])
	}
	if second[2].Content != refineInstruction {
		t.Errorf("refine instruction = %q", second[2].Content)
	}
}

func TestSynthesizeSecondPassUnparsable(t *testing.T) {
	llm := &scriptedLLM{responses: []string{`{"draft":true}`, "not valid json at all"}}
	agent, _ := NewAgent(llm, zerolog.Nop())
	d := testDiscussion()

	post := agent.Synthesize(context.Background(), d)

	if post.Title != d.Title {
		t.Errorf("title = %q, want fallback to discussion title", post.Title)
	}
	if want := strings.Repeat("c", 155) + "..."; post.Description != want {
		t.Errorf("description = %q, want truncated discussion content", post.Description)
	}
	if post.Body != "not valid json at all" {
		t.Errorf("body = %q, want raw second-pass response", post.Body)
	}
	if len(llm.calls) != 2 {
		t.Errorf("both passes must still run, got %d calls", len(llm.calls))
	}
}

func TestSynthesizeFirstPassFails(t *testing.T) {
	llm := &scriptedLLM{errs: []error{errors.New("backend down")}}
	agent, _ := NewAgent(llm, zerolog.Nop())

	post := agent.Synthesize(context.Background(), testDiscussion())

	if len(llm.calls) != 1 {
		t.Fatalf("refine pass must not run without a draft, got %d calls", len(llm.calls))
	}
	if post.Body != "Error generating content" {
		t.Errorf("body = %q, want sentinel", post.Body)
	}
	if post.Title == "" || post.Description == "" || post.Tags == nil || post.Categories == nil {
		t.Errorf("fallback must be schema-complete: %+v", post)
	}
}

func TestSynthesizeSecondPassFails(t *testing.T) {
	llm := &scriptedLLM{
		responses: []string{`first pass text`},
		errs:      []error{nil, errors.New("rate limited")},
	}
	agent, _ := NewAgent(llm, zerolog.Nop())

	post := agent.Synthesize(context.Background(), testDiscussion())

	if post.Body != "first pass text" {
		t.Errorf("body = %q, want first-pass response as fallback body", post.Body)
	}
}

func TestSynthesizeNeverReturnsIncompletePost(t *testing.T) {
	scripts := []*scriptedLLM{
		{responses: []string{`{"draft":true}`, validResponse}},
		{responses: []string{`{"draft":true}`, `{"title":"only a title"}`}},
		{errs: []error{errors.New("down")}},
	}
	for _, llm := range scripts {
		agent, _ := NewAgent(llm, zerolog.Nop())
		post := agent.Synthesize(context.Background(), testDiscussion())
		if post.Title == "" || post.Description == "" || post.Body == "" ||
			post.Tags == nil || post.Categories == nil {
			t.Errorf("incomplete post: %+v", post)
		}
	}
}
