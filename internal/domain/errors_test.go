package domain

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTransportError(t *testing.T) {
	cause := context.DeadlineExceeded
	err := fmt.Errorf("fetch page: %w", &TransportError{Kind: TransportUnreachable, Err: cause})

	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.False(t, IsNotFound(err))
	assert.True(t, IsNotFound(&TransportError{Kind: TransportNotFound}))
	assert.False(t, IsNotFound(errors.New("not found")))
	assert.Contains(t, (&TransportError{Kind: TransportServer, StatusCode: 502}).Error(), "502")
}

func TestAuthError_Recoverable(t *testing.T) {
	tests := []struct {
		kind AuthErrorKind
		want bool
	}{
		{AuthUnavailable, false},
		{AuthNotEnrolled, false},
		{AuthChallengeFailed, true},
		{AuthUserCancelled, true},
		{AuthSystemCancelled, false},
		{AuthPasscodeNotSet, false},
		{AuthLockedOut, false},
		{AuthInvalidContext, false},
		{AuthTimeout, true},
		{AuthUnknown, false},
	}
	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			e := NewAuthError(tt.kind)
			assert.Equal(t, tt.want, e.Recoverable())
			assert.NotEmpty(t, e.Message())
		})
	}
}

func TestAuthError_IsMatchesKind(t *testing.T) {
	err := fmt.Errorf("unlock: %w", &AuthError{Kind: AuthLockedOut})

	assert.ErrorIs(t, err, NewAuthError(AuthLockedOut))
	assert.NotErrorIs(t, err, NewAuthError(AuthTimeout))

	ae, ok := AsAuthError(err)
	assert.True(t, ok)
	assert.Equal(t, AuthLockedOut, ae.Kind)

	_, ok = AsAuthError(errors.New("plain"))
	assert.False(t, ok)
}

func TestAuthError_UnknownCarriesDetail(t *testing.T) {
	e := &AuthError{Kind: AuthUnknown, Detail: "sensor exploded"}
	assert.Contains(t, e.Error(), "sensor exploded")
	assert.Contains(t, e.Message(), "sensor exploded")
}
