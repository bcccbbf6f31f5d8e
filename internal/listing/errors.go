package listing

import (
	"errors"
	"fmt"
	"net/http"
)

// NetworkError means the request never reached the server or no response
// came back (transport failure, timeout, cancelled context).
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: network failure: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// ServerError means the server answered with a non-2xx status.
type ServerError struct {
	Op         string
	StatusCode int
	Message    string
}

func (e *ServerError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s: server responded %d", e.Op, e.StatusCode)
	}
	return fmt.Sprintf("%s: server responded %d: %s", e.Op, e.StatusCode, e.Message)
}

// IsNetwork reports whether err is, or wraps, a *NetworkError.
func IsNetwork(err error) bool {
	var ne *NetworkError
	return errors.As(err, &ne)
}

// IsServer reports whether err is, or wraps, a *ServerError.
func IsServer(err error) bool {
	var se *ServerError
	return errors.As(err, &se)
}

// Reason renders err as short text for a notification.
func Reason(err error) string {
	var se *ServerError
	if errors.As(err, &se) {
		if se.Message != "" {
			return se.Message
		}
		return fmt.Sprintf("%s (%d)", http.StatusText(se.StatusCode), se.StatusCode)
	}
	var ne *NetworkError
	if errors.As(err, &ne) {
		return "network error: " + ne.Err.Error()
	}
	if err == nil {
		return ""
	}
	return err.Error()
}
