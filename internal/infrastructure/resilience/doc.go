/*
Package resilience provides circuit breaker implementation for graceful degradation.

# Overview

Outbound page fetches go through a breaker per remote host. A host that keeps
failing is short-circuited with ErrCircuitOpen until its timeout elapses,
instead of tying up search fan-out and pagination with doomed requests.

# Features

- Three-state circuit breaker (Closed, Open, Half-Open)
- Configurable failure thresholds and timeouts
- Pluggable success classification (client errors need not trip a breaker)
- Per-key breaker groups
- State change callbacks for monitoring

# Usage

	hosts := resilience.NewGroup("fetch", resilience.Settings{
		MaxRequests: 3,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts resilience.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})

	resp, err := resilience.Call(hosts.Get(u.Host), func() (*Response, error) {
		return do(req)
	})

# States

	Closed --[failures]-> Open --[timeout]-> Half-Open --[successes]-> Closed
	                                           |
	                                    [failure]
	                                           |
	                                           v
	                                         Open
*/
package resilience
