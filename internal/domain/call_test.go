package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateTargets(t *testing.T) {
	alice := UserID("alice")

	tests := []struct {
		name    string
		targets []UserID
		wantErr error
	}{
		{name: "single target", targets: []UserID{"bob"}},
		{name: "five targets", targets: []UserID{"b", "c", "d", "e", "f"}},
		{name: "empty set", targets: nil, wantErr: ErrInvalidTargetSet},
		{name: "six targets", targets: []UserID{"b", "c", "d", "e", "f", "g"}, wantErr: ErrInvalidTargetSet},
		{name: "self target", targets: []UserID{"bob", "alice"}, wantErr: ErrInvalidTargetSet},
		{name: "duplicate target", targets: []UserID{"bob", "bob"}, wantErr: ErrInvalidTargetSet},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTargets(alice, tt.targets)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestParticipantStatusTerminal(t *testing.T) {
	assert.False(t, StatusInvited.Terminal())
	assert.False(t, StatusAccepted.Terminal())
	assert.False(t, StatusConnected.Terminal())
	assert.True(t, StatusRejected.Terminal())
	assert.True(t, StatusLeft.Terminal())
}

func TestParseUserID(t *testing.T) {
	uid, err := ParseUserID("alice")
	require.NoError(t, err)
	assert.Equal(t, UserID("alice"), uid)

	_, err = ParseUserID("")
	assert.ErrorIs(t, err, ErrUserIDEmpty)

	long := make([]byte, MaxUserIDLen+1)
	for i := range long {
		long[i] = 'a'
	}
	_, err = ParseUserID(string(long))
	assert.ErrorIs(t, err, ErrUserIDTooLong)
}

func TestNewCallIDUnique(t *testing.T) {
	a := NewCallID()
	b := NewCallID()
	assert.NotEmpty(t, a)
	assert.NotEqual(t, a, b)
}
