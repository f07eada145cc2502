package generator

import (
	"context"
	"encoding/json"
)

// MockLLM is a placeholder implementation for local runs and tests. It returns
// a schema-complete document without calling an external model.
type MockLLM struct{}

func (MockLLM) Complete(_ context.Context, _ []Message) (string, error) {
	post := BlogPost{
		Title:       "A Locally Generated Skincare Article",
		Description: "Placeholder article produced without calling an external model",
		Tags:        []string{"skincare"},
		Categories:  []string{"General Skincare"},
		// Literal escape sequences on purpose, so the newline post-processing runs.
		Body: `## Overview\n\nThis draft was generated by the mock backend.\n\n* No external calls\n* Schema-complete output`,
	}
	raw, err := json.Marshal(post)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}
