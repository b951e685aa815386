package input

import (
	"slices"
	"sync"
	"sync/atomic"
	"time"
)

// Counter names one routing counter.
type Counter int

const (
	CountKeyDown Counter = iota
	CountKeyUp
	CountConsumed
	CountHostDefault
	CountLongPress
	CountMultiTapReplace
	CountHookConsumed
	CountSinkFailure
	CountDelayedRefresh
	CountSession
	CountNavMode
	numCounters
)

// latencySamples is the size of the latency ring.
const latencySamples = 512

// Metrics counts routing outcomes and samples per-event latency. It is
// safe for concurrent use.
type Metrics struct {
	enabled  atomic.Bool
	counters [numCounters]atomic.Uint64
	peak     atomic.Int64

	mu      sync.Mutex
	ring    [latencySamples]time.Duration
	next    int
	samples int
}

func NewMetrics() *Metrics {
	m := &Metrics{}
	m.enabled.Store(true)
	return m
}

// SetEnabled turns collection on or off. Counts already taken stay.
func (m *Metrics) SetEnabled(enabled bool) { m.enabled.Store(enabled) }

func (m *Metrics) IsEnabled() bool { return m.enabled.Load() }

// Count adds one to c.
func (m *Metrics) Count(c Counter) {
	if m.enabled.Load() {
		m.counters[c].Add(1)
	}
}

// CountDecision counts d as consumed or passed to the host.
func (m *Metrics) CountDecision(d Decision) {
	if d == Consume {
		m.Count(CountConsumed)
	} else {
		m.Count(CountHostDefault)
	}
}

// Observe counts one key event and samples how long routing it took.
func (m *Metrics) Observe(down bool, latency time.Duration) {
	if !m.enabled.Load() {
		return
	}
	if down {
		m.counters[CountKeyDown].Add(1)
	} else {
		m.counters[CountKeyUp].Add(1)
	}
	for ns := latency.Nanoseconds(); ; {
		cur := m.peak.Load()
		if ns <= cur || m.peak.CompareAndSwap(cur, ns) {
			break
		}
	}

	m.mu.Lock()
	m.ring[m.next] = latency
	m.next = (m.next + 1) % latencySamples
	m.samples = min(m.samples+1, latencySamples)
	m.mu.Unlock()
}

// Time starts timing a key event; call the returned function when the
// event has been routed.
func (m *Metrics) Time(down bool) func() time.Duration {
	start := time.Now()
	return func() time.Duration {
		elapsed := time.Since(start)
		m.Observe(down, elapsed)
		return elapsed
	}
}

// MetricsSnapshot is a copy of the counters and latency statistics.
// Latency statistics cover the most recent samples; PeakLatency covers
// everything since the last Reset.
type MetricsSnapshot struct {
	KeyDowns          uint64
	KeyUps            uint64
	Consumed          uint64
	HostDefault       uint64
	LongPresses       uint64
	MultiTapReplaces  uint64
	HookConsumptions  uint64
	SinkFailures      uint64
	DelayedRefreshes  uint64
	SessionsStarted   uint64
	NavModeEngagement uint64

	AvgLatency  time.Duration
	MaxLatency  time.Duration
	P99Latency  time.Duration
	PeakLatency time.Duration
}

func (m *Metrics) Snapshot() MetricsSnapshot {
	c := func(k Counter) uint64 { return m.counters[k].Load() }
	snap := MetricsSnapshot{
		KeyDowns:          c(CountKeyDown),
		KeyUps:            c(CountKeyUp),
		Consumed:          c(CountConsumed),
		HostDefault:       c(CountHostDefault),
		LongPresses:       c(CountLongPress),
		MultiTapReplaces:  c(CountMultiTapReplace),
		HookConsumptions:  c(CountHookConsumed),
		SinkFailures:      c(CountSinkFailure),
		DelayedRefreshes:  c(CountDelayedRefresh),
		SessionsStarted:   c(CountSession),
		NavModeEngagement: c(CountNavMode),
		PeakLatency:       time.Duration(m.peak.Load()),
	}

	m.mu.Lock()
	recent := slices.Clone(m.ring[:m.samples])
	m.mu.Unlock()
	snap.AvgLatency, snap.MaxLatency, snap.P99Latency = latencyStats(recent)
	return snap
}

// latencyStats sorts samples in place.
func latencyStats(samples []time.Duration) (avg, maxLat, p99 time.Duration) {
	if len(samples) == 0 {
		return 0, 0, 0
	}
	slices.Sort(samples)
	var sum time.Duration
	for _, s := range samples {
		sum += s
	}
	n := len(samples)
	return sum / time.Duration(n), samples[n-1], samples[min(n*99/100, n-1)]
}

// Reset zeroes every counter and drops the latency samples.
func (m *Metrics) Reset() {
	for i := range m.counters {
		m.counters[i].Store(0)
	}
	m.peak.Store(0)
	m.mu.Lock()
	m.next, m.samples = 0, 0
	m.mu.Unlock()
}

// HealthStatus reports whether routing keeps up with typing.
type HealthStatus struct {
	Healthy          bool
	SinkFailures     uint64
	PeakLatency      time.Duration
	LatencyThreshold time.Duration
	Message          string
}

// HealthCheck compares the peak latency against threshold. Sink failures
// are reported but do not make routing unhealthy: a detached field is an
// ordinary condition.
func (m *Metrics) HealthCheck(threshold time.Duration) HealthStatus {
	h := HealthStatus{
		Healthy:          true,
		SinkFailures:     m.counters[CountSinkFailure].Load(),
		PeakLatency:      time.Duration(m.peak.Load()),
		LatencyThreshold: threshold,
		Message:          "healthy",
	}
	if h.PeakLatency > threshold {
		h.Healthy = false
		h.Message = "latency threshold exceeded"
	}
	return h
}
