package resilience

import (
	"sort"
	"sync"
	"time"

	"github.com/sony/gobreaker/v2"
)

// Condition summarises a provider for the ops status endpoint.
type Condition string

const (
	ConditionHealthy     Condition = "healthy"
	ConditionDegraded    Condition = "degraded"
	ConditionUnavailable Condition = "unavailable"
)

// Breaker exposes the circuit breaker of a registered client. *Client
// implements it.
type Breaker interface {
	CircuitBreakerState() gobreaker.State
	CircuitBreakerCounts() gobreaker.Counts
}

// ProviderHealth is a point-in-time view of one upstream provider.
type ProviderHealth struct {
	Name         string
	CircuitState gobreaker.State
	Counts       gobreaker.Counts

	// Successes and Failures count completed calls since registration,
	// independent of the breaker's own rolling counts.
	Successes uint64
	Failures  uint64

	LastSuccessAt *time.Time
	LastFailureAt *time.Time
	LastError     string
}

// Condition is unavailable while the circuit is open. A half-open circuit,
// or a closed one whose most recent call failed, is degraded.
func (h *ProviderHealth) Condition() Condition {
	switch h.CircuitState {
	case gobreaker.StateOpen:
		return ConditionUnavailable
	case gobreaker.StateHalfOpen:
		return ConditionDegraded
	}
	if h.LastFailureAt != nil && (h.LastSuccessAt == nil || h.LastFailureAt.After(*h.LastSuccessAt)) {
		return ConditionDegraded
	}
	return ConditionHealthy
}

// Registry records call outcomes for the weather and holiday clients.
type Registry struct {
	mu        sync.RWMutex
	providers map[string]*providerEntry
	now       func() time.Time
}

type providerEntry struct {
	breaker     Breaker
	successes   uint64
	failures    uint64
	lastSuccess time.Time
	lastFailure time.Time
	lastError   string
}

func NewRegistry() *Registry {
	return &Registry{
		providers: make(map[string]*providerEntry),
		now:       time.Now,
	}
}

// Register adds or replaces a provider. Outcomes recorded for a name that
// was never registered are dropped.
func (r *Registry) Register(name string, breaker Breaker) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[name] = &providerEntry{breaker: breaker}
}

func (r *Registry) RecordSuccess(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.providers[name]; ok {
		p.successes++
		p.lastSuccess = r.now()
	}
}

func (r *Registry) RecordFailure(name string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.providers[name]; ok {
		p.failures++
		p.lastFailure = r.now()
		if err != nil {
			p.lastError = err.Error()
		}
	}
}

// Health returns nil for an unknown provider.
func (r *Registry) Health(name string) *ProviderHealth {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.providers[name]
	if !ok {
		return nil
	}
	return p.snapshot(name)
}

// All returns every provider ordered by name.
func (r *Registry) All() []*ProviderHealth {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := make([]*ProviderHealth, 0, len(r.providers))
	for name, p := range r.providers {
		all = append(all, p.snapshot(name))
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Name < all[j].Name })
	return all
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.providers)
}

func (p *providerEntry) snapshot(name string) *ProviderHealth {
	h := &ProviderHealth{
		Name:      name,
		Successes: p.successes,
		Failures:  p.failures,
		LastError: p.lastError,
	}
	if p.breaker != nil {
		h.CircuitState = p.breaker.CircuitBreakerState()
		h.Counts = p.breaker.CircuitBreakerCounts()
	}
	if !p.lastSuccess.IsZero() {
		t := p.lastSuccess
		h.LastSuccessAt = &t
	}
	if !p.lastFailure.IsZero() {
		t := p.lastFailure
		h.LastFailureAt = &t
	}
	return h
}
