package types

import (
	"errors"
	"fmt"
	"testing"

	"github.com/hashicorp/go-multierror"
	"github.com/stretchr/testify/assert"
)

func TestIsClientError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil", err: nil, want: false},
		{name: "malformed", err: Errorf(ErrMalformedIdentity, "x"), want: true},
		{name: "wrapped unresolved", err: fmt.Errorf("project P1: %w", Errorf(ErrUnresolvedReference, "jdk")), want: true},
		{name: "storage", err: Errorf(ErrStorageFailure, "closed"), want: false},
		{name: "invalid expectation", err: Errorf(ErrInvalidExpectation, "short"), want: false},
		{name: "plain error", err: errors.New("boom"), want: false},
		{
			name: "all client members",
			err:  multierror.Append(Errorf(ErrUnknownReference, "a"), Errorf(ErrUnresolvedReference, "b")),
			want: true,
		},
		{
			name: "one server member",
			err:  multierror.Append(Errorf(ErrUnknownReference, "a"), Errorf(ErrIOFailure, "b")),
			want: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsClientError(tt.err))
		})
	}
}

func TestErrorMessage(t *testing.T) {
	err := Errorf(ErrNotFound, "project %s", "P1")
	assert.Equal(t, "not found: project P1", err.Error())
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.Equal(t, "missing parameter", (&Error{Kind: ErrMissingParameter}).Error())
}
