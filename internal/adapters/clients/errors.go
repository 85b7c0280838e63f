// Package clients provides the instrumented outbound HTTP client.
package clients

import "errors"

// Client errors are infrastructure failures. Adapters built on the client
// translate them into domain errors.
var (
	// ErrCircuitOpen is returned without a network call while the breaker is open.
	ErrCircuitOpen = errors.New("circuit breaker open")

	// ErrRequestFailed wraps transport failures: DNS, connect, TLS, timeouts.
	ErrRequestFailed = errors.New("request failed")
)
