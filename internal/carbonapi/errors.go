package carbonapi

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrUnauthorized marks 401/403 responses, usually a missing or expired token.
var ErrUnauthorized = errors.New("carbonapi: unauthorized")

// Kind classifies where a request failed.
type Kind int

const (
	KindTransport Kind = iota // no response
	KindStatus                // non-2xx response
	KindDecode                // malformed body
)

func (k Kind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindStatus:
		return "status"
	case KindDecode:
		return "decode"
	default:
		return "unknown"
	}
}

// Error is returned for every failed request.
type Error struct {
	Kind     Kind
	Endpoint string
	Status   int
	Err      error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindStatus:
		return fmt.Sprintf("carbonapi: %s: unexpected status %d", e.Endpoint, e.Status)
	case KindDecode:
		return fmt.Sprintf("carbonapi: %s: decoding response: %v", e.Endpoint, e.Err)
	default:
		return fmt.Sprintf("carbonapi: %s: request failed: %v", e.Endpoint, e.Err)
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is lets errors.Is(err, ErrUnauthorized) match auth failures.
func (e *Error) Is(target error) bool {
	return target == ErrUnauthorized && e.Kind == KindStatus &&
		(e.Status == http.StatusUnauthorized || e.Status == http.StatusForbidden)
}

// Reason collapses err into the opaque string shown to the presentation layer.
// Status failures become "HTTP <status>"; everything else uses the underlying message.
func Reason(err error) string {
	if err == nil {
		return ""
	}
	var apiErr *Error
	if errors.As(err, &apiErr) {
		if apiErr.Kind == KindStatus {
			return fmt.Sprintf("HTTP %d", apiErr.Status)
		}
		if apiErr.Err != nil {
			return apiErr.Err.Error()
		}
	}
	return err.Error()
}

// KindOf reports the failure kind, defaulting to KindTransport for foreign errors.
func KindOf(err error) Kind {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return KindTransport
}
