package types

import (
	"errors"
	"fmt"

	"github.com/hashicorp/go-multierror"
)

// Error kinds. Client kinds mean the input or the configuration was bad,
// server kinds mean the system itself failed.
var (
	ErrMalformedIdentity    = errors.New("malformed identity")
	ErrUnknownReference     = errors.New("unknown reference")
	ErrUnresolvedReference  = errors.New("unresolved reference")
	ErrInvalidFilter        = errors.New("invalid filter")
	ErrInvalidConfiguration = errors.New("invalid configuration")
	ErrNoExpectationFound   = errors.New("no expectation found")
	ErrNotFound             = errors.New("not found")
	ErrMissingParameter     = errors.New("missing parameter")

	ErrInvalidExpectation = errors.New("invalid expectation")
	ErrStorageFailure     = errors.New("storage failure")
	ErrIOFailure          = errors.New("io failure")
)

var clientKinds = []error{
	ErrMalformedIdentity,
	ErrUnknownReference,
	ErrUnresolvedReference,
	ErrInvalidFilter,
	ErrInvalidConfiguration,
	ErrNoExpectationFound,
	ErrNotFound,
	ErrMissingParameter,
}

// Error attaches a message to one of the error kinds above
type Error struct {
	Kind error
	Msg  string
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Msg == "" {
		return e.Kind.Error()
	}
	return fmt.Sprintf("%s: %s", e.Kind.Error(), e.Msg)
}

func (e *Error) Unwrap() error { return e.Kind }

// Errorf builds an *Error of the given kind
func Errorf(kind error, format string, args ...any) error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// IsClientError reports whether err was caused by the caller's input or by
// configuration drift rather than by a broken system. An aggregate error is a
// client error only if every member is.
func IsClientError(err error) bool {
	if err == nil {
		return false
	}
	var merr *multierror.Error
	if errors.As(err, &merr) && len(merr.Errors) > 0 {
		for _, member := range merr.Errors {
			if !IsClientError(member) {
				return false
			}
		}
		return true
	}
	for _, kind := range clientKinds {
		if errors.Is(err, kind) {
			return true
		}
	}
	return false
}
