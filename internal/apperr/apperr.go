// Package apperr classifies failures so transports can map them to responses
// without knowing which component produced them.
package apperr

import (
	"errors"
	"net/http"
)

type Kind uint8

const (
	Internal Kind = iota
	AuthFailure
	MalformedInput
	NotFound
	UpstreamFailure
)

func (k Kind) String() string {
	switch k {
	case AuthFailure:
		return "auth_failure"
	case MalformedInput:
		return "malformed_input"
	case NotFound:
		return "not_found"
	case UpstreamFailure:
		return "upstream_failure"
	default:
		return "internal"
	}
}

// HTTPStatus maps a kind onto the status code the webhook endpoint answers with.
// UpstreamFailure is acknowledged because the local transition already committed.
func (k Kind) HTTPStatus() int {
	switch k {
	case AuthFailure:
		return http.StatusUnauthorized
	case MalformedInput:
		return http.StatusBadRequest
	case NotFound:
		return http.StatusNotFound
	case UpstreamFailure:
		return http.StatusOK
	default:
		return http.StatusInternalServerError
	}
}

type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Op == "" {
		return e.Err.Error()
	}
	return e.Op + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

// E wraps err with a kind and the operation that produced it.
func E(kind Kind, op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Op: op, Err: err}
}

// KindOf returns the kind of the outermost classified error in the chain,
// or Internal when nothing in the chain is classified.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Internal
}

func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
