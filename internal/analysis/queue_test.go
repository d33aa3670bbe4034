package analysis

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/mentamind-backend/internal/domain"
	"github.com/yungbote/mentamind-backend/internal/observability"
	"github.com/yungbote/mentamind-backend/internal/pkg/dbctx"
	"github.com/yungbote/mentamind-backend/internal/platform/llm"
)

type memStore struct {
	mu   sync.Mutex
	rows []*domain.EmotionAnalysis
	err  error
	done chan struct{}
}

func (s *memStore) Create(dbc dbctx.Context, row *domain.EmotionAnalysis) (*domain.EmotionAnalysis, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	defer func() {
		if s.done != nil {
			s.done <- struct{}{}
		}
	}()
	if s.err != nil {
		return nil, s.err
	}
	s.rows = append(s.rows, row)
	return row, nil
}

func TestQueueAnalyzesAndStores(t *testing.T) {
	mock := llm.NewMock(`{"primary_emotions":["sadness"],"themes":[" Family "],"possible_core_issue":"Grief","intensity":"high"}`)
	store := &memStore{done: make(chan struct{}, 1)}
	q := NewQueue(NewAnalyzer(mock, nil, nil), store, 1, 4, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	errCh := make(chan error, 1)
	go func() { errCh <- q.Run(ctx) }()

	require.True(t, q.Enqueue(Job{SessionID: "anon-1", Turns: conversation(5)}))
	select {
	case <-store.done:
	case <-time.After(5 * time.Second):
		t.Fatalf("analysis was not stored")
	}

	store.mu.Lock()
	require.Len(t, store.rows, 1)
	row := store.rows[0]
	store.mu.Unlock()
	assert.Equal(t, "anon-1", row.SessionID)
	assert.Equal(t, []string{"family"}, []string(row.Themes))
	assert.Equal(t, "grief", row.PossibleCoreIssue)

	cancel()
	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatalf("queue did not stop")
	}
}

func TestQueueDropsWhenFull(t *testing.T) {
	m := observability.New()
	q := NewQueue(NewAnalyzer(llm.NewMock(), nil, nil), &memStore{}, 1, 1, nil, m)

	assert.True(t, q.Enqueue(Job{SessionID: "a"}))
	assert.False(t, q.Enqueue(Job{SessionID: "b"}))
	assert.Equal(t, 1, q.Len())
}

func TestQueueSurvivesStoreErrors(t *testing.T) {
	mock := llm.NewMock(`{"primary_emotions":["x"],"intensity":"low"}`, `{"primary_emotions":["y"],"intensity":"low"}`)
	store := &memStore{err: errors.New("db down"), done: make(chan struct{}, 2)}
	q := NewQueue(NewAnalyzer(mock, nil, nil), store, 1, 4, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = q.Run(ctx) }()

	q.Enqueue(Job{SessionID: "a", Turns: conversation(3)})
	q.Enqueue(Job{SessionID: "b", Turns: conversation(3)})
	for i := 0; i < 2; i++ {
		select {
		case <-store.done:
		case <-time.After(5 * time.Second):
			t.Fatalf("worker stopped after a store error")
		}
	}
}
