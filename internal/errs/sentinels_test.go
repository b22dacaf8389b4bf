package errs

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMessage(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		fallback string
		want     string
	}{
		{
			name:     "remote message preferred",
			err:      &RemoteError{StatusCode: 400, Msg: "invalid mobile number"},
			fallback: "Failed to send OTP",
			want:     "invalid mobile number",
		},
		{
			name:     "wrapped remote message",
			err:      fmt.Errorf("request failed: %w", &RemoteError{StatusCode: 401, Msg: "incorrect password"}),
			fallback: "Login failed",
			want:     "incorrect password",
		},
		{
			name:     "remote without message falls back",
			err:      &RemoteError{StatusCode: 500},
			fallback: "Something went wrong",
			want:     "Something went wrong",
		},
		{
			name:     "validation detail surfaces",
			err:      fmt.Errorf("%w: please enter a valid mobile number", ErrValidation),
			fallback: "Failed to send OTP",
			want:     "please enter a valid mobile number",
		},
		{
			name:     "bare sentinel surfaces its own text",
			err:      ErrSessionExpired,
			fallback: "Authentication failed",
			want:     "session expired",
		},
		{
			name:     "transport failure always uses the fallback",
			err:      fmt.Errorf("%w: dial tcp: connection refused", ErrNetwork),
			fallback: "Failed to fetch courses",
			want:     "Failed to fetch courses",
		},
		{
			name:     "unknown error uses the fallback",
			err:      errors.New("boom"),
			fallback: "Something went wrong",
			want:     "Something went wrong",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Message(tt.err, tt.fallback))
		})
	}
}

func TestRemoteError_Error(t *testing.T) {
	assert.Equal(t, "invalid OTP", (&RemoteError{StatusCode: 400, Msg: "invalid OTP"}).Error())
	assert.Equal(t, "remote request rejected", (&RemoteError{StatusCode: 500}).Error())
}
