package monitoring

import (
	"net/http"
	"sort"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds application metrics. Counters are kept both as atomics for the
// /health summary and as Prometheus collectors for /metrics.
type Metrics struct {
	RequestCount        int64
	ErrorCount          int64
	AssessmentCount     int64
	InvalidCount        int64
	TotalResponseTime   int64 // in nanoseconds
	TimedRequests       int64
	StartTime           time.Time

	// Last 1000 response times for percentiles
	ResponseTimes      []time.Duration
	ResponseTimesMutex sync.RWMutex

	RequestCountByStatus map[int]int64
	StatusMutex          sync.RWMutex

	AssessmentsByTier map[string]int64
	TierMutex         sync.RWMutex

	RateLimitBlocks        int64
	RateLimitRedisErrors   int64
	RateLimitFallbackCount int64

	registry           *prometheus.Registry
	httpRequests       *prometheus.CounterVec
	httpDuration       *prometheus.HistogramVec
	assessments        *prometheus.CounterVec
	probability        prometheus.Histogram
	validationFailures *prometheus.CounterVec
	rateLimitBlocks    prometheus.Counter
	rateLimitFallbacks prometheus.Counter
}

// NewMetrics creates a metrics instance with its own Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		StartTime:            time.Now(),
		ResponseTimes:        make([]time.Duration, 0, 1000),
		RequestCountByStatus: make(map[int]int64),
		AssessmentsByTier:    make(map[string]int64),
		registry:             prometheus.NewRegistry(),

		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "frailty_http_requests_total",
			Help: "Total number of HTTP requests by route and status",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "frailty_http_request_duration_seconds",
			Help:    "Latency of HTTP handlers",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		assessments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "frailty_assessments_total",
			Help: "Total number of completed assessments by risk tier",
		}, []string{"tier", "channel"}),
		probability: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "frailty_probability",
			Help:    "Distribution of clamped frailty probabilities",
			Buckets: prometheus.LinearBuckets(0.1, 0.1, 9),
		}),
		validationFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "frailty_validation_failures_total",
			Help: "Rejected assessment inputs by field",
		}, []string{"field"}),
		rateLimitBlocks: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "frailty_rate_limit_blocks_total",
			Help: "Requests rejected by the rate limiter",
		}),
		rateLimitFallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "frailty_rate_limit_fallback_total",
			Help: "Rate limit decisions served by the in-memory fallback",
		}),
	}

	m.registry.MustRegister(
		m.httpRequests,
		m.httpDuration,
		m.assessments,
		m.probability,
		m.validationFailures,
		m.rateLimitBlocks,
		m.rateLimitFallbacks,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

// Handler serves the Prometheus exposition format for this instance.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) IncrementRequest() {
	atomic.AddInt64(&m.RequestCount, 1)
}

func (m *Metrics) IncrementError() {
	atomic.AddInt64(&m.ErrorCount, 1)
}

// ObserveRequest records one finished HTTP request. route is the matched
// pattern, never the raw path.
func (m *Metrics) ObserveRequest(method, route string, status int, duration time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordAssessment counts a completed assessment. Only the tier and the
// clamped probability are recorded.
func (m *Metrics) RecordAssessment(tier, channel string, probability float64) {
	atomic.AddInt64(&m.AssessmentCount, 1)

	m.TierMutex.Lock()
	m.AssessmentsByTier[tier]++
	m.TierMutex.Unlock()

	m.assessments.WithLabelValues(tier, channel).Inc()
	m.probability.Observe(probability)
}

// RecordValidationFailure counts a rejected input per offending field.
func (m *Metrics) RecordValidationFailure(fields []string) {
	atomic.AddInt64(&m.InvalidCount, 1)
	for _, f := range fields {
		m.validationFailures.WithLabelValues(f).Inc()
	}
}

// RecordResponseTime records response time for the mean and percentiles
func (m *Metrics) RecordResponseTime(duration time.Duration) {
	atomic.AddInt64(&m.TotalResponseTime, duration.Nanoseconds())
	atomic.AddInt64(&m.TimedRequests, 1)

	m.ResponseTimesMutex.Lock()
	m.ResponseTimes = append(m.ResponseTimes, duration)
	if len(m.ResponseTimes) > 1000 {
		m.ResponseTimes = m.ResponseTimes[1:]
	}
	m.ResponseTimesMutex.Unlock()
}

func (m *Metrics) RecordRequestByStatus(statusCode int) {
	m.StatusMutex.Lock()
	defer m.StatusMutex.Unlock()
	m.RequestCountByStatus[statusCode]++
}

// AverageResponseTime is the mean over every recorded response.
func (m *Metrics) AverageResponseTime() time.Duration {
	n := atomic.LoadInt64(&m.TimedRequests)
	if n == 0 {
		return 0
	}
	return time.Duration(atomic.LoadInt64(&m.TotalResponseTime) / n)
}

// GetPercentileResponseTime calculates percentile response time
func (m *Metrics) GetPercentileResponseTime(percentile float64) time.Duration {
	m.ResponseTimesMutex.RLock()
	defer m.ResponseTimesMutex.RUnlock()

	if len(m.ResponseTimes) == 0 {
		return 0
	}

	times := make([]time.Duration, len(m.ResponseTimes))
	copy(times, m.ResponseTimes)

	sort.Slice(times, func(i, j int) bool {
		return times[i] < times[j]
	})

	index := int(float64(len(times)-1) * percentile / 100.0)
	if index >= len(times) {
		index = len(times) - 1
	}

	return times[index]
}

func (m *Metrics) GetStatusCodeDistribution() map[int]int64 {
	m.StatusMutex.RLock()
	defer m.StatusMutex.RUnlock()

	distribution := make(map[int]int64, len(m.RequestCountByStatus))
	for code, count := range m.RequestCountByStatus {
		distribution[code] = count
	}
	return distribution
}

func (m *Metrics) GetTierDistribution() map[string]int64 {
	m.TierMutex.RLock()
	defer m.TierMutex.RUnlock()

	distribution := make(map[string]int64, len(m.AssessmentsByTier))
	for tier, count := range m.AssessmentsByTier {
		distribution[tier] = count
	}
	return distribution
}

// GetStats returns current metrics statistics
func (m *Metrics) GetStats() map[string]interface{} {
	requests := atomic.LoadInt64(&m.RequestCount)
	errors := atomic.LoadInt64(&m.ErrorCount)

	errorRate := float64(0)
	if requests > 0 {
		errorRate = float64(errors) / float64(requests) * 100
	}

	return map[string]interface{}{
		"uptime_seconds":           time.Since(m.StartTime).Seconds(),
		"total_requests":           requests,
		"error_count":              errors,
		"error_rate_percent":       errorRate,
		"assessments":              atomic.LoadInt64(&m.AssessmentCount),
		"invalid_inputs":           atomic.LoadInt64(&m.InvalidCount),
		"assessments_by_tier":      m.GetTierDistribution(),
		"avg_response_time_ms":     float64(m.AverageResponseTime()) / 1000000,
		"p50_response_time_ms":     float64(m.GetPercentileResponseTime(50)) / 1000000,
		"p95_response_time_ms":     float64(m.GetPercentileResponseTime(95)) / 1000000,
		"p99_response_time_ms":     float64(m.GetPercentileResponseTime(99)) / 1000000,
		"status_code_distribution": m.GetStatusCodeDistribution(),
		"rate_limit":               m.GetRateLimitStats(),
		"start_time":               m.StartTime.Format(time.RFC3339),
	}
}

func (m *Metrics) IncrementRateLimitBlock() {
	atomic.AddInt64(&m.RateLimitBlocks, 1)
	m.rateLimitBlocks.Inc()
}

func (m *Metrics) IncrementRateLimitRedisError() {
	atomic.AddInt64(&m.RateLimitRedisErrors, 1)
}

func (m *Metrics) IncrementRateLimitFallback() {
	atomic.AddInt64(&m.RateLimitFallbackCount, 1)
	m.rateLimitFallbacks.Inc()
}

func (m *Metrics) GetRateLimitStats() map[string]interface{} {
	return map[string]interface{}{
		"blocks":         atomic.LoadInt64(&m.RateLimitBlocks),
		"redis_errors":   atomic.LoadInt64(&m.RateLimitRedisErrors),
		"fallback_count": atomic.LoadInt64(&m.RateLimitFallbackCount),
	}
}
