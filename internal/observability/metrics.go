package observability

import (
	"context"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/yungbote/mentamind-backend/internal/platform/envutil"
	"github.com/yungbote/mentamind-backend/internal/platform/logger"
)

type Metrics struct {
	apiRequests *CounterVec
	apiLatency  *HistogramVec
	apiInflight *Gauge
	apiErrors   *Counter

	llmRequests *CounterVec
	llmLatency  *HistogramVec
	llmTokens   *CounterVec

	rateLimitDecisions *CounterVec
	rateLimitSwept     *Counter

	crisisDetections *CounterVec

	analysisRuns    *CounterVec
	analysisLatency *HistogramVec
	analysisQueue   *Gauge
	analysisDropped *Counter
	summaryRuns     *CounterVec

	pgStats   *GaugeVec
	redisUp   *Gauge
	redisPing *Gauge

	all []promWriter
}

var (
	initOnce sync.Once
	instance *Metrics
)

func Enabled() bool {
	return envutil.Bool("METRICS_ENABLED", false)
}

// Current returns the process-wide metrics, or nil when metrics are disabled.
// Every method on *Metrics is nil-safe.
func Current() *Metrics {
	return instance
}

func scrapeInterval() time.Duration {
	return envutil.Seconds("METRICS_SCRAPE_INTERVAL_SECONDS", 10*time.Second)
}

func Init(log *logger.Logger) *Metrics {
	if !Enabled() {
		return nil
	}
	initOnce.Do(func() {
		instance = New()
		if log != nil {
			log.Info("metrics enabled")
		}
	})
	return instance
}

// New builds an unregistered metrics set. Init is the process entry point.
func New() *Metrics {
	latency := []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30}
	m := &Metrics{
		apiRequests: NewCounterVec("mm_api_requests_total", "Total API requests by method/route/status.", []string{"method", "route", "status"}),
		apiLatency:  NewHistogramVec("mm_api_request_duration_seconds", "API request latency in seconds by method/route/status.", []string{"method", "route", "status"}, latency),
		apiInflight: NewGauge("mm_api_inflight_requests", "In-flight API requests."),
		apiErrors:   NewCounter("mm_api_requests_error_total", "API requests that ended in a 5xx."),

		llmRequests: NewCounterVec("mm_llm_requests_total", "Completion requests by model/endpoint/status.", []string{"model", "endpoint", "status"}),
		llmLatency:  NewHistogramVec("mm_llm_request_duration_seconds", "Completion latency in seconds.", []string{"model", "endpoint", "status"}, latency),
		llmTokens:   NewCounterVec("mm_llm_tokens_total", "Completion tokens by model/kind.", []string{"model", "kind"}),

		rateLimitDecisions: NewCounterVec("mm_rate_limit_decisions_total", "Rate limit decisions by action/outcome.", []string{"action", "outcome"}),
		rateLimitSwept:     NewCounter("mm_rate_limit_swept_total", "Expired rate limit records removed by the sweeper."),

		crisisDetections: NewCounterVec("mm_crisis_detections_total", "Messages that matched a crisis phrase, by surface.", []string{"surface"}),

		analysisRuns:    NewCounterVec("mm_analysis_runs_total", "Background emotion analyses by outcome.", []string{"outcome"}),
		analysisLatency: NewHistogramVec("mm_analysis_duration_seconds", "Background emotion analysis latency.", []string{"outcome"}, latency),
		analysisQueue:   NewGauge("mm_analysis_queue_depth", "Analyses waiting for a worker."),
		analysisDropped: NewCounter("mm_analysis_dropped_total", "Analyses dropped because the queue was full."),
		summaryRuns:     NewCounterVec("mm_summary_runs_total", "Clinical summary generations by outcome.", []string{"outcome"}),

		pgStats:   NewGaugeVec("mm_db_pool", "Database pool stats.", []string{"stat"}),
		redisUp:   NewGauge("mm_redis_up", "Redis reachability (1=up)."),
		redisPing: NewGauge("mm_redis_ping_seconds", "Redis ping latency in seconds."),
	}
	m.all = []promWriter{
		m.apiRequests, m.apiLatency, m.apiInflight, m.apiErrors,
		m.llmRequests, m.llmLatency, m.llmTokens,
		m.rateLimitDecisions, m.rateLimitSwept,
		m.crisisDetections,
		m.analysisRuns, m.analysisLatency, m.analysisQueue, m.analysisDropped, m.summaryRuns,
		m.pgStats, m.redisUp, m.redisPing,
	}
	return m
}

func (m *Metrics) StartServer(ctx context.Context, log *logger.Logger, addr string) {
	if m == nil {
		return
	}
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           http.HandlerFunc(m.WriteHTTP),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		_ = srv.Shutdown(shutdownCtx)
		cancel()
	}()
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			if log != nil {
				log.Error("metrics server failed", "error", err, "addr", addr)
			}
		}
	}()
}

func (m *Metrics) WriteHTTP(w http.ResponseWriter, r *http.Request) {
	if m == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	_ = m.WritePrometheus(w)
}

func (m *Metrics) WritePrometheus(w io.Writer) error {
	if m == nil {
		return nil
	}
	for _, pw := range m.all {
		if err := pw.WritePrometheus(w); err != nil {
			return err
		}
	}
	return nil
}

func (m *Metrics) ObserveAPI(method, route, status string, dur time.Duration) {
	if m == nil {
		return
	}
	if method == "" {
		method = "UNKNOWN"
	}
	m.apiRequests.Inc(method, route, status)
	m.apiLatency.Observe(dur.Seconds(), method, route, status)
	if strings.HasPrefix(status, "5") {
		m.apiErrors.Inc()
	}
}

func (m *Metrics) ApiInflightInc() {
	if m == nil {
		return
	}
	m.apiInflight.Inc()
}

func (m *Metrics) ApiInflightDec() {
	if m == nil {
		return
	}
	m.apiInflight.Dec()
}

func (m *Metrics) ObserveLLMRequest(model, endpoint, status string, dur time.Duration, inputTokens, outputTokens int) {
	if m == nil {
		return
	}
	m.llmRequests.Inc(model, endpoint, status)
	if dur > 0 {
		m.llmLatency.Observe(dur.Seconds(), model, endpoint, status)
	}
	if inputTokens > 0 {
		m.llmTokens.Add(float64(inputTokens), model, "input")
	}
	if outputTokens > 0 {
		m.llmTokens.Add(float64(outputTokens), model, "output")
	}
}

// ObserveRateLimit records one limiter decision. outcome is allowed, rejected or fail_open.
func (m *Metrics) ObserveRateLimit(action, outcome string) {
	if m == nil {
		return
	}
	m.rateLimitDecisions.Inc(action, outcome)
}

func (m *Metrics) RateLimitDecisions(action, outcome string) float64 {
	if m == nil {
		return 0
	}
	return m.rateLimitDecisions.Value(action, outcome)
}

func (m *Metrics) AddRateLimitSwept(n int64) {
	if m == nil || n <= 0 {
		return
	}
	m.rateLimitSwept.Add(float64(n))
}

func (m *Metrics) IncCrisisDetection(surface string) {
	if m == nil {
		return
	}
	m.crisisDetections.Inc(surface)
}

func (m *Metrics) CrisisDetections(surface string) float64 {
	if m == nil {
		return 0
	}
	return m.crisisDetections.Value(surface)
}

func (m *Metrics) ObserveAnalysis(outcome string, dur time.Duration) {
	if m == nil {
		return
	}
	m.analysisRuns.Inc(outcome)
	m.analysisLatency.Observe(dur.Seconds(), outcome)
}

func (m *Metrics) SetAnalysisQueueDepth(n int) {
	if m == nil {
		return
	}
	m.analysisQueue.Set(float64(n))
}

func (m *Metrics) IncAnalysisDropped() {
	if m == nil {
		return
	}
	m.analysisDropped.Inc()
}

func (m *Metrics) IncSummary(outcome string) {
	if m == nil {
		return
	}
	m.summaryRuns.Inc(outcome)
}

func (m *Metrics) StartPostgresCollector(ctx context.Context, log *logger.Logger, db *gorm.DB) {
	if m == nil || db == nil {
		return
	}
	interval := scrapeInterval()
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				sqlDB, err := db.DB()
				if err != nil {
					if log != nil {
						log.Warn("metrics: db stats unavailable", "error", err)
					}
					continue
				}
				stats := sqlDB.Stats()
				m.pgStats.Set(float64(stats.OpenConnections), "open_connections")
				m.pgStats.Set(float64(stats.InUse), "in_use")
				m.pgStats.Set(float64(stats.Idle), "idle")
				m.pgStats.Set(float64(stats.WaitCount), "wait_count")
				m.pgStats.Set(stats.WaitDuration.Seconds(), "wait_duration_seconds")
				m.pgStats.Set(float64(stats.MaxOpenConnections), "max_open_connections")
			}
		}
	}()
}

// StartRedisCollector pings the shared client on every scrape interval.
func (m *Metrics) StartRedisCollector(ctx context.Context, log *logger.Logger, rdb redis.UniversalClient) {
	if m == nil || rdb == nil {
		return
	}
	interval := scrapeInterval()
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				start := time.Now()
				if err := rdb.Ping(ctx).Err(); err != nil {
					m.redisUp.Set(0)
					if log != nil {
						log.Warn("metrics: redis ping failed", "error", err)
					}
					continue
				}
				m.redisUp.Set(1)
				m.redisPing.Set(time.Since(start).Seconds())
			}
		}
	}()
}
