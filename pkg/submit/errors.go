package submit

import (
	"errors"
	"fmt"
)

// Sentinel errors for submissions.
var (
	ErrFormRequired   = errors.New("submit: form is required")
	ErrNoTokenSource  = errors.New("submit: token provider unavailable")
	ErrUndecodable    = errors.New("submit: response body is not decodable")
	ErrRequestFailed  = errors.New("submit: request failed")
	ErrContextMissing = errors.New("submit: context is required")
)

// IsTransportError reports whether err describes a request that produced no
// usable response.
func IsTransportError(err error) bool {
	return errors.Is(err, ErrRequestFailed) || errors.Is(err, ErrUndecodable)
}

// StatusError carries the HTTP status of a response whose body could not be
// decoded.
type StatusError struct {
	Code int
	Err  error
}

func (e StatusError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("submit: status %d: %v", e.Code, e.Err)
	}
	return fmt.Sprintf("submit: status %d", e.Code)
}

func (e StatusError) Unwrap() error { return e.Err }

// StatusCode returns the HTTP status.
func (e StatusError) StatusCode() int { return e.Code }
