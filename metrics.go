package familykit

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// DecisionMetrics summarises the permission checks performed by a checker.
type DecisionMetrics struct {
	TotalChecks     int64         `json:"total_checks"`
	AllowedChecks   int64         `json:"allowed_checks"`
	DeniedChecks    int64         `json:"denied_checks"`
	FailedChecks    int64         `json:"failed_checks"`
	AverageDuration time.Duration `json:"average_duration"`
	MaxDuration     time.Duration `json:"max_duration"`
	LastReset       time.Time     `json:"last_reset"`
}

// decisionMonitor holds the in-process decision counters.
type decisionMonitor struct {
	totalCount    int64
	allowedCount  int64
	deniedCount   int64
	failedCount   int64
	totalDuration int64 // nanoseconds
	maxDuration   int64 // nanoseconds
	lastReset     time.Time
	mu            sync.RWMutex
}

func newDecisionMonitor() *decisionMonitor {
	return &decisionMonitor{lastReset: time.Now()}
}

func (dm *decisionMonitor) record(duration time.Duration, v Verdict) {
	dm.mu.RLock()
	defer dm.mu.RUnlock()

	atomic.AddInt64(&dm.totalCount, 1)
	atomic.AddInt64(&dm.totalDuration, int64(duration))

	switch {
	case v.Success:
		atomic.AddInt64(&dm.allowedCount, 1)
	case v.ErrorCode == CodePermissionCheckError:
		atomic.AddInt64(&dm.failedCount, 1)
	default:
		atomic.AddInt64(&dm.deniedCount, 1)
	}

	durationNs := int64(duration)
	for {
		current := atomic.LoadInt64(&dm.maxDuration)
		if durationNs <= current || atomic.CompareAndSwapInt64(&dm.maxDuration, current, durationNs) {
			break
		}
	}
}

func (dm *decisionMonitor) snapshot() DecisionMetrics {
	dm.mu.RLock()
	defer dm.mu.RUnlock()

	total := atomic.LoadInt64(&dm.totalCount)

	var avg time.Duration
	if total > 0 {
		avg = time.Duration(atomic.LoadInt64(&dm.totalDuration) / total)
	}

	return DecisionMetrics{
		TotalChecks:     total,
		AllowedChecks:   atomic.LoadInt64(&dm.allowedCount),
		DeniedChecks:    atomic.LoadInt64(&dm.deniedCount),
		FailedChecks:    atomic.LoadInt64(&dm.failedCount),
		AverageDuration: avg,
		MaxDuration:     time.Duration(atomic.LoadInt64(&dm.maxDuration)),
		LastReset:       dm.lastReset,
	}
}

func (dm *decisionMonitor) reset() {
	dm.mu.Lock()
	defer dm.mu.Unlock()

	atomic.StoreInt64(&dm.totalCount, 0)
	atomic.StoreInt64(&dm.allowedCount, 0)
	atomic.StoreInt64(&dm.deniedCount, 0)
	atomic.StoreInt64(&dm.failedCount, 0)
	atomic.StoreInt64(&dm.totalDuration, 0)
	atomic.StoreInt64(&dm.maxDuration, 0)
	dm.lastReset = time.Now()
}

// Metrics exports permission decisions to Prometheus.
type Metrics struct {
	decisions *prometheus.CounterVec
	duration  *prometheus.HistogramVec
}

// NewMetrics creates the decision collectors and registers them with reg.
// A nil reg leaves the collectors unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		decisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "familykit",
			Name:      "permission_decisions_total",
			Help:      "Permission checks by resource type, operation and result.",
		}, []string{"resource_type", "operation", "result"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "familykit",
			Name:      "permission_check_duration_seconds",
			Help:      "Time spent evaluating a permission check.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
		}, []string{"resource_type"}),
	}

	if reg != nil {
		reg.MustRegister(m.decisions, m.duration)
	}
	return m
}

// unknownLabel replaces resource types and operations the registry does not
// know, keeping label cardinality bounded.
const unknownLabel = "unknown"

func (m *Metrics) observe(resourceType, op string, v Verdict, duration time.Duration) {
	if m == nil {
		return
	}

	result := "allowed"
	if !v.Success {
		result = string(v.ErrorCode)
	}
	m.decisions.WithLabelValues(resourceType, op, result).Inc()
	m.duration.WithLabelValues(resourceType).Observe(duration.Seconds())
}
