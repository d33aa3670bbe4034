package llm

import (
	"context"
	"sync"
)

// Mock is a Completer with scripted replies. With no Replies it answers
// with Default, which is also what LLM_MODE=mock serves.
type Mock struct {
	mu      sync.Mutex
	Replies []string
	Err     error
	Default string
	calls   []CompletionRequest
}

func NewMock(replies ...string) *Mock {
	return &Mock{
		Replies: replies,
		Default: "Thank you for sharing that with me. How are you feeling right now?",
	}
}

func (m *Mock) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, req)
	if m.Err != nil {
		return "", m.Err
	}
	if len(m.Replies) == 0 {
		return m.Default, nil
	}
	out := m.Replies[0]
	m.Replies = m.Replies[1:]
	return out, nil
}

func (m *Mock) Calls() []CompletionRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]CompletionRequest(nil), m.calls...)
}
