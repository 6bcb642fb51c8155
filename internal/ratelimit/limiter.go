// Package ratelimit implements a proactive, per-endpoint admission
// controller fed by observed rate-limit response headers.
package ratelimit

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"
)

// Rate limit response headers.
const (
	HeaderLimit     = "X-RateLimit-Limit"
	HeaderRemaining = "X-RateLimit-Remaining"
	HeaderReset     = "X-RateLimit-Reset"
)

// releaseGrace is the fallback spacing between queued releases when a
// released waiter never reports fresh headers (cancelled request, transport
// failure). It keeps the queue draining without batching waiters.
const releaseGrace = 50 * time.Millisecond

// waiter is one caller blocked on an exhausted endpoint window.
type waiter struct {
	ready chan struct{}
}

// endpointState tracks the last observed quota window for one endpoint and
// the FIFO queue of callers blocked on it. Each endpoint has its own lock
// so unrelated endpoints never serialize each other.
type endpointState struct {
	mu sync.Mutex

	// known is false until the first real header for the endpoint is
	// seen, and again after a reset window has lapsed without fresh
	// headers. Unknown state admits callers immediately.
	known     bool
	limit     int
	remaining int
	reset     time.Time

	waiters []*waiter
	timer   *time.Timer
}

// Limiter admits requests per endpoint based on the server's rate-limit
// headers. Remaining counts are only ever set from observed server data,
// never decremented speculatively on admission; bursts issued before the
// first response returns can therefore overrun a nearly-exhausted window.
type Limiter struct {
	mu        sync.RWMutex
	endpoints map[string]*endpointState
}

// NewLimiter creates an empty limiter.
func NewLimiter() *Limiter {
	return &Limiter{
		endpoints: make(map[string]*endpointState),
	}
}

// state returns the state for endpoint, creating it lazily.
func (l *Limiter) state(endpoint string) *endpointState {
	l.mu.RLock()
	s, ok := l.endpoints[endpoint]
	l.mu.RUnlock()

	if ok {
		return s
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if s, ok = l.endpoints[endpoint]; !ok {
		s = &endpointState{}
		l.endpoints[endpoint] = s
	}

	return s
}

// WaitForSlot blocks until it is safe to issue a request to endpoint.
// Callers are released strictly in enqueue order, one at a time. Context
// cancellation abandons the wait without corrupting the queue for others.
func (l *Limiter) WaitForSlot(ctx context.Context, endpoint string) error {
	s := l.state(endpoint)

	s.mu.Lock()

	if !s.known || s.remaining > 0 {
		s.mu.Unlock()

		return nil
	}

	w := &waiter{ready: make(chan struct{})}
	s.waiters = append(s.waiters, w)
	s.ensureTimerLocked(time.Until(s.reset))
	s.mu.Unlock()

	select {
	case <-w.ready:
		return nil
	case <-ctx.Done():
		s.mu.Lock()
		removed := s.removeLocked(w)
		s.mu.Unlock()

		if !removed {
			// Already released but no request will follow; nudge the
			// queue so the next waiter is not stranded.
			s.mu.Lock()
			s.advanceLocked()
			s.mu.Unlock()
		}

		return fmt.Errorf("waiting for rate limit slot on %s: %w", endpoint, ctx.Err())
	}
}

// UpdateLimits records a quota window observed for endpoint. Called after
// every response carrying rate-limit headers, success or error.
func (l *Limiter) UpdateLimits(endpoint string, limit, remaining int, reset time.Time) {
	s := l.state(endpoint)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.known = true
	s.limit = limit
	s.remaining = remaining
	s.reset = reset

	s.stopTimerLocked()
	s.advanceLocked()
}

// UpdateFromHeaders feeds UpdateLimits from response headers. Responses
// without the full header set leave the cached state unchanged.
func (l *Limiter) UpdateFromHeaders(endpoint string, headers http.Header) {
	limitVal := headers.Get(HeaderLimit)
	remainingVal := headers.Get(HeaderRemaining)
	resetVal := headers.Get(HeaderReset)

	if limitVal == "" || remainingVal == "" || resetVal == "" {
		return
	}

	limit, err := strconv.Atoi(limitVal)
	if err != nil || limit < 0 {
		return
	}

	remaining, err := strconv.Atoi(remainingVal)
	if err != nil || remaining < 0 {
		return
	}

	resetUnix, err := strconv.ParseInt(resetVal, 10, 64)
	if err != nil {
		return
	}

	l.UpdateLimits(endpoint, limit, remaining, time.Unix(resetUnix, 0))
}

// Snapshot returns the last observed window for endpoint, or ok=false when
// nothing has been observed yet.
func (l *Limiter) Snapshot(endpoint string) (limit, remaining int, reset time.Time, ok bool) {
	s := l.state(endpoint)

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.limit, s.remaining, s.reset, s.known
}

// advanceLocked releases the head waiter when the current state admits a
// request, or arms the reset timer when it does not. Caller holds s.mu.
func (s *endpointState) advanceLocked() {
	if len(s.waiters) == 0 {
		return
	}

	if s.known && s.remaining == 0 {
		s.ensureTimerLocked(time.Until(s.reset))

		return
	}

	s.releaseHeadLocked()

	if len(s.waiters) > 0 {
		// The released waiter's next response normally drives the
		// queue; the grace timer covers the case where it never lands.
		s.ensureTimerLocked(releaseGrace)
	}
}

// releaseHeadLocked releases exactly the first queued waiter.
func (s *endpointState) releaseHeadLocked() {
	w := s.waiters[0]
	s.waiters = s.waiters[1:]
	close(w.ready)
}

// ensureTimerLocked arms the release timer if not already armed. Negative
// delays (clock skew, lapsed windows) clamp to zero.
func (s *endpointState) ensureTimerLocked(delay time.Duration) {
	if s.timer != nil {
		return
	}

	if delay < 0 {
		delay = 0
	}

	s.timer = time.AfterFunc(delay, s.fire)
}

// stopTimerLocked disarms a pending release timer.
func (s *endpointState) stopTimerLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

// fire runs when the reset (or grace) delay elapses without fresh headers.
// The recorded window is stale at that point, so the state drops back to
// unknown and the queue drains one waiter at a time.
func (s *endpointState) fire() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.timer = nil

	if s.known && s.remaining == 0 && time.Now().Before(s.reset) {
		// An update pushed the reset further out while the timer was
		// pending; re-arm for the new window.
		s.ensureTimerLocked(time.Until(s.reset))

		return
	}

	s.known = false
	s.advanceLocked()
}

// removeLocked drops w from the queue, reporting whether it was present.
func (s *endpointState) removeLocked(w *waiter) bool {
	for i, queued := range s.waiters {
		if queued == w {
			s.waiters = append(s.waiters[:i], s.waiters[i+1:]...)

			return true
		}
	}

	return false
}
