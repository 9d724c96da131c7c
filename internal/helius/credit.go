package helius

import "sync"

// Meter tracks credits consumed during one analysis against a caller
// supplied ceiling. The total is the literal sum of declared per-call
// costs recorded as calls are issued, never an estimate: credits spent
// by a strategy that later fails stay counted.
//
// The ceiling is a soft accounting signal. Nothing stops a fetch that
// would exceed it; callers read Exhausted after the run to decide
// whether to request fewer transactions next time.
type Meter struct {
	mu      sync.Mutex
	used    int
	ceiling int // 0 means unlimited
}

// NewMeter creates a credit meter with the given ceiling.
func NewMeter(ceiling int) *Meter {
	return &Meter{ceiling: ceiling}
}

// Add records cost units consumed by a remote call.
func (m *Meter) Add(cost int) {
	if cost <= 0 {
		return
	}
	m.mu.Lock()
	m.used += cost
	m.mu.Unlock()
}

// Used returns the total cost units consumed so far.
func (m *Meter) Used() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.used
}

// Ceiling returns the configured budget, 0 if unlimited.
func (m *Meter) Ceiling() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ceiling
}

// Exhausted reports whether consumed credits reached the ceiling.
func (m *Meter) Exhausted() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ceiling > 0 && m.used >= m.ceiling
}
