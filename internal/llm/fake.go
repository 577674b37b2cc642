package llm

import (
	"context"
	"strings"
	"sync"
)

// FakeGenerator returns canned responses for offline runs and tests. A response
// is chosen by the first registered substring found in the prompt; otherwise
// Default is returned.
type FakeGenerator struct {
	Default string

	mu        sync.Mutex
	responses []fakeResponse
	prompts   []string
	err       error
}

type fakeResponse struct {
	match string
	text  string
}

func NewFakeGenerator(defaultText string) *FakeGenerator {
	return &FakeGenerator{Default: defaultText}
}

// On registers text as the answer to prompts containing match.
func (f *FakeGenerator) On(match, text string) *FakeGenerator {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses = append(f.responses, fakeResponse{match: match, text: text})
	return f
}

// FailWith makes every later call return err.
func (f *FakeGenerator) FailWith(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

// Prompts returns the prompts received so far.
func (f *FakeGenerator) Prompts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.prompts))
	copy(out, f.prompts)
	return out
}

func (f *FakeGenerator) Name() string { return "FakeLLM" }
func (f *FakeGenerator) Close() error { return nil }

func (f *FakeGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prompts = append(f.prompts, prompt)
	if f.err != nil {
		return "", f.err
	}
	for _, r := range f.responses {
		if strings.Contains(prompt, r.match) {
			return r.text, nil
		}
	}
	if f.Default == "" {
		return "", ErrEmptyResponse
	}
	return f.Default, nil
}
