package analysis

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/yungbote/mentamind-backend/internal/domain"
	"github.com/yungbote/mentamind-backend/internal/observability"
	"github.com/yungbote/mentamind-backend/internal/pkg/dbctx"
	"github.com/yungbote/mentamind-backend/internal/platform/llm"
	"github.com/yungbote/mentamind-backend/internal/platform/logger"
)

const (
	DefaultQueueWorkers = 2
	DefaultQueueSize    = 256
	jobTimeout          = 60 * time.Second
)

// Store persists finished analyses.
type Store interface {
	Create(dbc dbctx.Context, row *domain.EmotionAnalysis) (*domain.EmotionAnalysis, error)
}

type Job struct {
	SessionID string
	Turns     []llm.Message
}

// Queue hands conversations from request handlers to a fixed pool of
// analysis workers. Enqueue never blocks the request path.
type Queue struct {
	jobs     chan Job
	analyzer *Analyzer
	store    Store
	workers  int
	log      *logger.Logger
	metrics  *observability.Metrics
}

func NewQueue(analyzer *Analyzer, store Store, workers, size int, log *logger.Logger, m *observability.Metrics) *Queue {
	if workers < 1 {
		workers = DefaultQueueWorkers
	}
	if size < 1 {
		size = DefaultQueueSize
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Queue{
		jobs:     make(chan Job, size),
		analyzer: analyzer,
		store:    store,
		workers:  workers,
		log:      log.With("component", "AnalysisQueue"),
		metrics:  m,
	}
}

// Enqueue reports false when the queue is full and the job was dropped.
func (q *Queue) Enqueue(job Job) bool {
	job.Turns = append([]llm.Message(nil), job.Turns...)
	select {
	case q.jobs <- job:
		q.metrics.SetAnalysisQueueDepth(len(q.jobs))
		return true
	default:
		q.metrics.IncAnalysisDropped()
		q.log.Warn("analysis queue full; dropping job", "session_id", job.SessionID, "capacity", cap(q.jobs))
		return false
	}
}

func (q *Queue) Len() int { return len(q.jobs) }

// Run starts the worker pool and blocks until ctx is done.
func (q *Queue) Run(ctx context.Context) error {
	q.log.Info("Starting analysis worker pool", "concurrency", q.workers)
	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < q.workers; i++ {
		workerID := i + 1
		g.Go(func() error {
			q.runLoop(gctx, workerID)
			return nil
		})
	}
	err := g.Wait()
	if n := len(q.jobs); n > 0 {
		q.log.Warn("analysis queue stopped with pending jobs", "pending", n)
	}
	return err
}

func (q *Queue) runLoop(ctx context.Context, workerID int) {
	for {
		select {
		case <-ctx.Done():
			q.log.Debug("Analysis worker stopped", "worker_id", workerID)
			return
		case job := <-q.jobs:
			q.metrics.SetAnalysisQueueDepth(len(q.jobs))
			if err := q.process(ctx, workerID, job); err != nil {
				q.log.Warn("analysis job failed", "worker_id", workerID, "session_id", job.SessionID, "error", err)
			}
		}
	}
}

func (q *Queue) process(ctx context.Context, workerID int, job Job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			q.log.Error("Analysis job panic", "worker_id", workerID, "session_id", job.SessionID, "panic", r)
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	jctx, cancel := context.WithTimeout(ctx, jobTimeout)
	defer cancel()

	result := q.analyzer.Analyze(jctx, job.SessionID, job.Turns)
	if result == nil {
		return nil
	}
	if _, err := q.store.Create(dbctx.Context{Ctx: jctx}, SanitizeAnalysis(result)); err != nil {
		q.metrics.ObserveAnalysis("store_error", 0)
		return fmt.Errorf("store analysis: %w", err)
	}
	return nil
}
