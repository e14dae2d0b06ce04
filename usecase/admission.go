package usecase

import "sync"

// DefaultMaxConcurrent is how many evaluations may be in flight at
// once.
const DefaultMaxConcurrent = 2

// AdmissionController bounds the number of concurrent evaluations. A
// slot is acquired by the orchestrator before any state transition and
// released by the scoring task on every exit path, so the ceiling
// holds even when admission checks race.
type AdmissionController struct {
	mu       sync.Mutex
	limit    int
	inFlight int
}

func NewAdmissionController(limit int) *AdmissionController {
	if limit <= 0 {
		limit = DefaultMaxConcurrent
	}
	return &AdmissionController{limit: limit}
}

// TryAcquire claims a slot, reporting false when the ceiling is
// reached. It never blocks.
func (a *AdmissionController) TryAcquire() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.inFlight >= a.limit {
		return false
	}
	a.inFlight++
	return true
}

// Release returns a slot claimed by TryAcquire.
func (a *AdmissionController) Release() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.inFlight > 0 {
		a.inFlight--
	}
}

// InFlight returns the number of currently held slots.
func (a *AdmissionController) InFlight() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.inFlight
}
