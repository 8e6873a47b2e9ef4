package client

import (
	"errors"
	"fmt"
)

// ErrMissingToken is returned by calls that need a session when none is stored.
var ErrMissingToken = errors.New("Missing session token")

// TransportError is a remote call that did not complete successfully: the
// request failed on the network, or the server answered with a non-2xx status.
type TransportError struct {
	Op         string
	StatusCode int    // 0 when no response was received
	Message    string // server-provided error text, if any
	Err        error
}

func (e *TransportError) Error() string {
	switch {
	case e.Message != "":
		return e.Message
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	default:
		return fmt.Sprintf("%s failed with status %d", e.Op, e.StatusCode)
	}
}

func (e *TransportError) Unwrap() error { return e.Err }

// IsStatus reports whether err is a TransportError carrying status.
func IsStatus(err error, status int) bool {
	var te *TransportError
	return errors.As(err, &te) && te.StatusCode == status
}

// retryable reports whether a failure says something about the server's
// health. Client errors do not trip the breaker.
func retryable(err error) bool {
	var te *TransportError
	if !errors.As(err, &te) {
		return err != nil
	}
	return te.StatusCode == 0 || te.StatusCode >= 500
}
