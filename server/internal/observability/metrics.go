package observability

import (
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

// Metrics collects request and intent counters for the HTTP API.
type Metrics struct {
	mu sync.Mutex

	// Counters
	requestTotal  atomic.Int64
	requestFailed atomic.Int64

	routeMetrics map[string]*RouteMetrics
	intents      map[string]int64
}

// RouteMetrics represents metrics for one route.
type RouteMetrics struct {
	count         atomic.Int64
	totalDuration atomic.Int64 // milliseconds
	errorCount    atomic.Int64
}

// NewMetrics creates a new metrics collector.
func NewMetrics() *Metrics {
	return &Metrics{
		routeMetrics: make(map[string]*RouteMetrics),
		intents:      make(map[string]int64),
	}
}

// RecordRequest records a handled request.
func (m *Metrics) RecordRequest(route string, duration time.Duration, failed bool) {
	m.requestTotal.Add(1)
	rm := m.getRouteMetrics(route)
	rm.count.Add(1)
	rm.totalDuration.Add(duration.Milliseconds())
	if failed {
		m.requestFailed.Add(1)
		rm.errorCount.Add(1)
	}
}

// RecordIntent counts a parsed chat intent.
func (m *Metrics) RecordIntent(kind string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.intents[kind]++
}

func (m *Metrics) getRouteMetrics(route string) *RouteMetrics {
	m.mu.Lock()
	defer m.mu.Unlock()

	rm, ok := m.routeMetrics[route]
	if !ok {
		rm = &RouteMetrics{}
		m.routeMetrics[route] = rm
	}
	return rm
}

// Reset resets all metrics (useful for testing).
func (m *Metrics) Reset() {
	m.requestTotal.Store(0)
	m.requestFailed.Store(0)

	m.mu.Lock()
	m.routeMetrics = make(map[string]*RouteMetrics)
	m.intents = make(map[string]int64)
	m.mu.Unlock()
}

// Snapshot returns a snapshot of current metrics.
func (m *Metrics) Snapshot() *MetricsSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	routes := make([]RouteMetricsSnapshot, 0, len(m.routeMetrics))
	for route, rm := range m.routeMetrics {
		snap := RouteMetricsSnapshot{
			Route:      route,
			Count:      rm.count.Load(),
			ErrorCount: rm.errorCount.Load(),
		}
		if snap.Count > 0 {
			snap.AverageDuration = rm.totalDuration.Load() / snap.Count
		}
		routes = append(routes, snap)
	}
	sort.Slice(routes, func(i, j int) bool { return routes[i].Route < routes[j].Route })

	intents := make(map[string]int64, len(m.intents))
	for k, v := range m.intents {
		intents[k] = v
	}

	return &MetricsSnapshot{
		RequestTotal:  m.requestTotal.Load(),
		RequestFailed: m.requestFailed.Load(),
		Routes:        routes,
		Intents:       intents,
	}
}

// MetricsSnapshot represents a point-in-time snapshot of metrics.
type MetricsSnapshot struct {
	RequestTotal  int64                  `json:"request_total"`
	RequestFailed int64                  `json:"request_failed"`
	Routes        []RouteMetricsSnapshot `json:"routes"`
	Intents       map[string]int64       `json:"intents"`
}

// RouteMetricsSnapshot represents metrics for one route.
type RouteMetricsSnapshot struct {
	Route           string `json:"route"`
	Count           int64  `json:"count"`
	ErrorCount      int64  `json:"error_count"`
	AverageDuration int64  `json:"avg_latency_ms"`
}

// SuccessRate returns the success rate as a percentage (0-100).
func (s *MetricsSnapshot) SuccessRate() float64 {
	if s.RequestTotal == 0 {
		return 100.0
	}
	return float64(s.RequestTotal-s.RequestFailed) / float64(s.RequestTotal) * 100.0
}
