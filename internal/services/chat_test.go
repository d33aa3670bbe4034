package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/mentamind-backend/internal/analysis"
	"github.com/yungbote/mentamind-backend/internal/data/repos/testutil"
	"github.com/yungbote/mentamind-backend/internal/observability"
	"github.com/yungbote/mentamind-backend/internal/pkg/dbctx"
	"github.com/yungbote/mentamind-backend/internal/platform/apierr"
	"github.com/yungbote/mentamind-backend/internal/platform/llm"
	"github.com/yungbote/mentamind-backend/internal/policy"
	"github.com/yungbote/mentamind-backend/internal/safety"
)

type fakeQueue struct {
	mu   sync.Mutex
	jobs []analysis.Job
}

func (q *fakeQueue) Enqueue(job analysis.Job) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.jobs = append(q.jobs, job)
	return true
}

func (q *fakeQueue) Jobs() []analysis.Job {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]analysis.Job(nil), q.jobs...)
}

func newChat(t *testing.T, completer llm.Completer, q AnalysisEnqueuer, m *observability.Metrics) *chatService {
	t.Helper()
	svc := NewChatService(testutil.Logger(t), safety.NewClassifier(policy.Default(), "in"), completer, q, m, 0).(*chatService)
	svc.now = func() time.Time { return time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC) }
	return svc
}

func history(userTurns int) []llm.Message {
	var out []llm.Message
	for i := 0; i < userTurns; i++ {
		out = append(out,
			llm.Message{Role: llm.RoleUser, Content: fmt.Sprintf("user %d", i)},
			llm.Message{Role: llm.RoleAssistant, Content: fmt.Sprintf("assistant %d", i)},
		)
	}
	return out
}

func TestChatCrisisSkipsCompletion(t *testing.T) {
	mock := llm.NewMock()
	m := observability.New()
	q := &fakeQueue{}
	svc := newChat(t, mock, q, m)

	reply, err := svc.Respond(dbctx.Context{Ctx: context.Background()}, "anon-1", ChatRequest{
		Message: "I just want to KILL MYSELF today",
		History: history(4),
	})
	require.NoError(t, err)
	assert.True(t, reply.Crisis)
	assert.Contains(t, reply.Message, "iCall")
	assert.Empty(t, mock.Calls())
	assert.Empty(t, q.Jobs())
	assert.Equal(t, float64(1), m.CrisisDetections("chat"))
}

func TestChatSendsSystemPromptAndRecentHistory(t *testing.T) {
	mock := llm.NewMock("  That sounds really hard.  ")
	svc := newChat(t, mock, &fakeQueue{}, nil)

	reply, err := svc.Respond(dbctx.Context{Ctx: context.Background()}, "anon-1", ChatRequest{
		Message: "I had a great walk today",
		History: history(8),
	})
	require.NoError(t, err)
	assert.False(t, reply.Crisis)
	assert.Equal(t, "  That sounds really hard.  ", reply.Message)

	calls := mock.Calls()
	require.Len(t, calls, 1)
	req := calls[0]
	assert.Equal(t, chatSystemPrompt, req.System)
	assert.Equal(t, chatMaxTokens, req.MaxTokens)
	assert.Equal(t, DefaultTemperature, req.Temperature)
	require.Len(t, req.History, chatHistoryWindow+1)
	assert.Equal(t, "user 3", req.History[0].Content)
	assert.Equal(t, llm.Message{Role: llm.RoleUser, Content: "I had a great walk today"}, req.History[chatHistoryWindow])
}

func TestChatFallbacks(t *testing.T) {
	failing := llm.NewMock()
	failing.Err = &llm.HTTPError{StatusCode: http.StatusBadGateway}
	q := &fakeQueue{}
	svc := newChat(t, failing, q, nil)
	reply, err := svc.Respond(dbctx.Context{Ctx: context.Background()}, "anon-1", ChatRequest{Message: "hello", History: history(4)})
	require.NoError(t, err)
	assert.Equal(t, chatFallbackReply, reply.Message)
	assert.Empty(t, q.Jobs(), "failed completions are not analyzed")

	svc = newChat(t, llm.NewMock("   "), q, nil)
	reply, err = svc.Respond(dbctx.Context{Ctx: context.Background()}, "anon-1", ChatRequest{Message: "hello"})
	require.NoError(t, err)
	assert.Equal(t, chatEmptyReply, reply.Message)
}

func TestChatEnqueuesEveryFifthUserMessage(t *testing.T) {
	q := &fakeQueue{}
	svc := newChat(t, llm.NewMock("reply four", "reply five"), q, nil)
	dbc := dbctx.Context{Ctx: context.Background()}

	_, err := svc.Respond(dbc, "anon-1", ChatRequest{Message: "fourth", History: history(3)})
	require.NoError(t, err)
	assert.Empty(t, q.Jobs())

	withNoise := append(history(4), llm.Message{Role: "system", Content: "ignore me"})
	_, err = svc.Respond(dbc, "anon-1", ChatRequest{Message: "fifth", History: withNoise})
	require.NoError(t, err)

	jobs := q.Jobs()
	require.Len(t, jobs, 1)
	assert.Equal(t, "anon-1", jobs[0].SessionID)
	turns := jobs[0].Turns
	require.Len(t, turns, 10)
	assert.Equal(t, llm.Message{Role: llm.RoleUser, Content: "fifth"}, turns[8])
	assert.Equal(t, llm.Message{Role: llm.RoleAssistant, Content: "reply five"}, turns[9])
}

func TestChatValidation(t *testing.T) {
	mock := llm.NewMock()
	svc := newChat(t, mock, nil, nil)
	dbc := dbctx.Context{Ctx: context.Background()}

	cases := []struct {
		name    string
		message string
		code    string
	}{
		{"empty", "", "message_required"},
		{"blank", "   ", "message_required"},
		{"too long", strings.Repeat("a", MaxContentLength+1), "message_too_long"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Respond(dbc, "anon-1", ChatRequest{Message: tc.message})
			var ae *apierr.Error
			require.True(t, errors.As(err, &ae), "err=%v", err)
			assert.Equal(t, http.StatusBadRequest, ae.Status)
			assert.Equal(t, tc.code, ae.Code)
		})
	}
	assert.Empty(t, mock.Calls())

	_, err := svc.Respond(dbc, "anon-1", ChatRequest{Message: strings.Repeat("é", MaxContentLength)})
	assert.NoError(t, err, "limit counts characters, not bytes")
}
