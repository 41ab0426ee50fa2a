/*
Package resilience provides a circuit breaker for calls into engine backends.

# Overview

Engine backends can fail in ways the browser core cannot repair: a page
server that stops answering, or an embedded engine that refuses to create
new sessions. The breaker makes repeated failures fail fast instead of
queueing more work against a broken dependency. It never retries; retry
policy belongs to the caller.

# States

- Closed: calls pass through, failures are counted
- Open: calls fail immediately with ErrCircuitOpen until Timeout elapses
- Half-Open: up to MaxRequests trial calls decide whether to close again

# Usage

	breaker := resilience.New("engine-create", resilience.Settings{
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts resilience.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})

	session, err := resilience.Call(breaker, func() (engine.Session, error) {
		return backend.CreateSession(false)
	})
*/
package resilience
