package metrics

import (
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

// Counter names exposed on the admin metrics endpoint.
const (
	OTPIssued      = "otp_issued_total"
	OTPVerified    = "otp_verified_total"
	OTPRejected    = "otp_rejected_total"
	OrdersPlaced   = "orders_placed_total"
	OrdersRejected = "orders_rejected_total"
	OrdersFailed   = "orders_failed_total"
	OrderLatencyMs = "order_latency_ms_total"
)

type Counter struct {
	value uint64
}

func (c *Counter) Inc() {
	atomic.AddUint64(&c.value, 1)
}

func (c *Counter) Add(n uint64) {
	atomic.AddUint64(&c.value, n)
}

func (c *Counter) Load() uint64 {
	return atomic.LoadUint64(&c.value)
}

type Timer struct {
	start time.Time
}

func StartTimer() *Timer {
	return &Timer{start: time.Now()}
}

func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}

// Registry hands out named counters, creating them on first use.
type Registry struct {
	mu       sync.RWMutex
	counters map[string]*Counter
}

func NewRegistry() *Registry {
	return &Registry{counters: make(map[string]*Counter)}
}

func (r *Registry) Counter(name string) *Counter {
	r.mu.RLock()
	c, ok := r.counters[name]
	r.mu.RUnlock()
	if ok {
		return c
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok = r.counters[name]; !ok {
		c = &Counter{}
		r.counters[name] = c
	}
	return c
}

// ObserveMs adds the timer's elapsed milliseconds to the named counter.
func (r *Registry) ObserveMs(name string, t *Timer) {
	r.Counter(name).Add(uint64(t.Duration().Milliseconds()))
}

// Snapshot returns current values keyed by counter name.
func (r *Registry) Snapshot() map[string]uint64 {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]uint64, len(r.counters))
	for name, c := range r.counters {
		out[name] = c.Load()
	}
	return out
}

func (r *Registry) Names() []string {
	snap := r.Snapshot()
	names := make([]string, 0, len(snap))
	for n := range snap {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
