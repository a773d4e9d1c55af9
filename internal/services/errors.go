package services

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/desertthunder/musicpal/internal/shared"
)

// FetchError describes a failed request for a single resource.
//
// It matches [shared.ErrAPIRequest] for transport and status failures, [shared.ErrMalformedResponse] for bodies that
// could not be decoded, [shared.ErrTimeout] when the per-request timeout fired and [shared.ErrTokenExpired] on 401.
type FetchError struct {
	Resource string // URL that was requested
	Status   int    // HTTP status, 0 when no response was received
	Err      error  // underlying cause, may be nil

	kinds []error
}

func (e *FetchError) Error() string {
	msg := fmt.Sprintf("fetch %s", e.Resource)
	if e.Status != 0 {
		msg += fmt.Sprintf(": status %d", e.Status)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	} else if len(e.kinds) > 0 {
		msg += ": " + e.kinds[len(e.kinds)-1].Error()
	}
	return msg
}

func (e *FetchError) Unwrap() []error {
	errs := append([]error(nil), e.kinds...)
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// IsTransient reports whether err is a timeout, a 429 or a 5xx.
func IsTransient(err error) bool {
	var fe *FetchError
	if !errors.As(err, &fe) {
		return false
	}
	return errors.Is(err, shared.ErrTimeout) || fe.Status == http.StatusTooManyRequests || fe.Status >= 500
}

func statusError(resource string, status int) *FetchError {
	kinds := []error{shared.ErrAPIRequest}
	switch status {
	case http.StatusUnauthorized:
		kinds = append(kinds, shared.ErrTokenExpired)
	case http.StatusNotFound:
		kinds = append(kinds, shared.ErrNotFound)
	}
	return &FetchError{Resource: resource, Status: status, kinds: kinds}
}

func transportError(resource string, err error, timedOut bool) *FetchError {
	kinds := []error{shared.ErrAPIRequest}
	if timedOut {
		kinds = append(kinds, shared.ErrTimeout)
	}
	return &FetchError{Resource: resource, Err: err, kinds: kinds}
}

func decodeError(resource string, status int, err error) *FetchError {
	return &FetchError{Resource: resource, Status: status, Err: err, kinds: []error{shared.ErrMalformedResponse}}
}
