package search

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// Transport failure stages reported in TransportError.Op.
const (
	OpRequest = "request"
	OpStatus  = "status"
	OpDecode  = "decode"
)

// TransportError reports that a backend call could not complete: the
// connection failed or timed out, the status was not 2xx, or the payload
// could not be decoded.
type TransportError struct {
	Op         string
	Query      string
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.Op == OpStatus {
		return fmt.Sprintf("search %q: backend returned HTTP %d", e.Query, e.StatusCode)
	}
	if e.Err == nil {
		return fmt.Sprintf("search %q: %s failed", e.Query, e.Op)
	}
	return fmt.Sprintf("search %q: %s: %v", e.Query, e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Timeout reports whether the failure was caused by a deadline.
func (e *TransportError) Timeout() bool {
	if errors.Is(e.Err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(e.Err, &netErr) && netErr.Timeout()
}

// Canceled reports whether the request was aborted by its caller.
func (e *TransportError) Canceled() bool {
	return errors.Is(e.Err, context.Canceled)
}

// IsTransportError reports whether err is or wraps a *TransportError.
func IsTransportError(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}
