// Package health serves the /livez and /readyz probe endpoints.
//
// Probes are registered once at startup and evaluated together by a single
// background loop. A probe flips to failing only after several consecutive
// errors and recovers on the first success, so a transient error does not
// take the service out of rotation.
package health

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"sync/atomic"
	"time"
)

// CheckFunc probes one dependency. A nil return means healthy.
type CheckFunc func(ctx context.Context) error

// kind separates process-liveness probes from traffic-readiness probes.
type kind int

const (
	liveness kind = iota
	readiness
)

const (
	// failAfter is how many consecutive errors flip a probe to failing.
	failAfter = 3
	// recoverAfter is how many consecutive successes flip it back.
	recoverAfter = 1
)

// probe is one registered check plus its evaluation state. mu guards the
// state fields: the evaluation loop writes them, HTTP handlers read them.
type probe struct {
	name    string
	kind    kind
	timeout time.Duration
	fn      CheckFunc

	mu      sync.Mutex
	failing bool
	lastErr error
	errRun  int
	okRun   int
}

// eval runs the probe once and advances the consecutive-result counters.
func (p *probe) eval(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	err := p.fn(ctx)
	cancel()

	p.mu.Lock()
	defer p.mu.Unlock()

	p.lastErr = err
	if err != nil {
		p.okRun = 0
		p.errRun++
		if p.errRun >= failAfter {
			p.failing = true
		}
		return
	}
	p.errRun = 0
	p.okRun++
	if p.okRun >= recoverAfter {
		p.failing = false
	}
}

// failure returns the message to report for a failing probe, or "" while the
// probe passes. Probes start in the passing state.
func (p *probe) failure() string {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.failing {
		return ""
	}
	if p.lastErr != nil {
		return p.lastErr.Error()
	}
	return "check failed"
}

// Service evaluates registered probes and serves their state over HTTP.
type Service struct {
	ready atomic.Bool

	// mu guards probes and cancel. Registration happens before Start; the
	// endpoints only take a snapshot of the slice.
	mu     sync.Mutex
	probes []*probe
	cancel context.CancelFunc
}

// New returns a Service with no probes registered. It reports not-ready
// until SetReady(true) is called after initialization completes.
func New() *Service {
	return &Service{}
}

func (s *Service) add(k kind, name string, timeout time.Duration, fn CheckFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.probes = append(s.probes, &probe{name: name, kind: k, timeout: timeout, fn: fn})
}

// AddLivenessCheck registers a probe answering whether the process itself is
// functioning (deadlocks, goroutine leaks).
func (s *Service) AddLivenessCheck(name string, timeout time.Duration, fn CheckFunc) {
	s.add(liveness, name, timeout, fn)
}

// AddReadinessCheck registers a probe answering whether the service can take
// traffic right now (database connectivity).
func (s *Service) AddReadinessCheck(name string, timeout time.Duration, fn CheckFunc) {
	s.add(readiness, name, timeout, fn)
}

// Start launches the evaluation loop: every probe runs once immediately and
// then on each tick of the interval. Register all probes before Start.
func (s *Service) Start(ctx context.Context, interval time.Duration) {
	ctx, cancel := context.WithCancel(ctx)

	s.mu.Lock()
	s.cancel = cancel
	probes := make([]*probe, len(s.probes))
	copy(probes, s.probes)
	s.mu.Unlock()

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for _, p := range probes {
			p.eval(ctx)
		}
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				for _, p := range probes {
					p.eval(ctx)
				}
			}
		}
	}()
}

// Stop halts the evaluation loop. Safe to call more than once.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

// SetReady flips the manual readiness gate: true once startup wiring is
// complete, false at the start of graceful shutdown so load balancers drain
// the instance.
func (s *Service) SetReady(ready bool) {
	s.ready.Store(ready)
}

// Ready reports whether the gate is open and every readiness probe passes.
func (s *Service) Ready() bool {
	if !s.ready.Load() {
		return false
	}
	return len(s.failures(readiness)) == 0
}

// failures snapshots the failing probes of one kind, keyed by probe name.
func (s *Service) failures(k kind) map[string]string {
	s.mu.Lock()
	probes := make([]*probe, 0, len(s.probes))
	for _, p := range s.probes {
		if p.kind == k {
			probes = append(probes, p)
		}
	}
	s.mu.Unlock()

	failed := make(map[string]string)
	for _, p := range probes {
		if msg := p.failure(); msg != "" {
			failed[p.name] = msg
		}
	}
	return failed
}

// probeResponse is the body shape served by both endpoints.
type probeResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// LiveEndpoint serves GET /livez: 200 when every liveness probe passes,
// otherwise 503 listing the failing probes.
func (s *Service) LiveEndpoint(w http.ResponseWriter, _ *http.Request) {
	s.respond(w, s.failures(liveness))
}

// ReadyEndpoint serves GET /readyz: 200 only when SetReady(true) has been
// called and every readiness probe passes.
func (s *Service) ReadyEndpoint(w http.ResponseWriter, _ *http.Request) {
	failed := s.failures(readiness)
	if !s.ready.Load() {
		failed["_readiness"] = "service is not ready"
	}
	s.respond(w, failed)
}

func (s *Service) respond(w http.ResponseWriter, failed map[string]string) {
	resp := probeResponse{Status: "ok"}
	code := http.StatusOK
	if len(failed) > 0 {
		resp = probeResponse{Status: "unhealthy", Checks: failed}
		code = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	// Status is already on the wire; an encode failure here means the client
	// went away.
	_ = json.NewEncoder(w).Encode(resp)
}
