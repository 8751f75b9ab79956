package resilience

import (
	"errors"
	"net"
	"strings"
	"syscall"
)

// Transient wraps an error that is safe to retry (timeout, 5xx, connection
// failure). StatusCode is zero for non-HTTP failures.
type Transient struct {
	Err        error
	StatusCode int
}

func (e *Transient) Error() string { return e.Err.Error() }

func (e *Transient) Unwrap() error { return e.Err }

// MarkTransient wraps err as retryable, with an optional HTTP status code.
func MarkTransient(err error, statusCode int) *Transient {
	return &Transient{Err: err, StatusCode: statusCode}
}

// IsTransient reports whether err (or anything in its chain) is a Transient
// wrapper or matches a common transient network failure.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}

	var te *Transient
	if errors.As(err, &te) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	if errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNABORTED) {
		return true
	}

	// Wrapped errors from HTTP clients often only carry the message.
	msg := strings.ToLower(err.Error())
	for _, p := range []string{
		"connection reset by peer",
		"broken pipe",
		"temporary failure in name resolution",
		"no such host",
		"tls handshake timeout",
		"i/o timeout",
		"context deadline exceeded",
	} {
		if strings.Contains(msg, p) {
			return true
		}
	}

	return false
}

// IsTransientHTTPStatus reports whether an HTTP status code indicates a
// server-side condition that is safe to retry.
func IsTransientHTTPStatus(statusCode int) bool {
	switch statusCode {
	case 408, 429, 500, 502, 503, 504:
		return true
	default:
		return false
	}
}
