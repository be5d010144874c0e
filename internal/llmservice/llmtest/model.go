// Package llmtest provides a scripted llms.Model for tests.
package llmtest

import (
	"context"
	"sync"

	"github.com/tmc/langchaingo/llms"
)

// Model replies with Reply (or Err) and records every prompt it receives.
// Replies, when set, are consumed in order before falling back to Reply.
type Model struct {
	mu      sync.Mutex
	Reply   string
	Replies []string
	Err     error
	Prompts []string
}

var _ llms.Model = (*Model)(nil)

func (m *Model) GenerateContent(_ context.Context, messages []llms.MessageContent, _ ...llms.CallOption) (*llms.ContentResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var prompt string
	for _, msg := range messages {
		for _, part := range msg.Parts {
			if text, ok := part.(llms.TextContent); ok {
				prompt += text.Text
			}
		}
	}
	m.Prompts = append(m.Prompts, prompt)

	if m.Err != nil {
		return nil, m.Err
	}
	reply := m.Reply
	if len(m.Replies) > 0 {
		reply, m.Replies = m.Replies[0], m.Replies[1:]
	}
	return &llms.ContentResponse{Choices: []*llms.ContentChoice{{Content: reply}}}, nil
}

func (m *Model) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, m, prompt, options...)
}

// LastPrompt returns the most recent prompt, or "" when none was sent.
func (m *Model) LastPrompt() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Prompts) == 0 {
		return ""
	}
	return m.Prompts[len(m.Prompts)-1]
}
