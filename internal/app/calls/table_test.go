package calls

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuanvu2703/Nemo-social-network/internal/domain"
)

func TestTableCreateValidates(t *testing.T) {
	tbl := NewTable()

	tests := []struct {
		name    string
		targets []domain.UserID
		wantErr bool
	}{
		{"ok", []domain.UserID{"bob"}, false},
		{"empty", nil, true},
		{"self", []domain.UserID{"alice"}, true},
		{"duplicate", []domain.UserID{"bob", "bob"}, true},
		{"too many", []domain.UserID{"b", "c", "d", "e", "f", "g"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			view, err := tbl.Create("alice", tt.targets)
			if tt.wantErr {
				assert.ErrorIs(t, err, domain.ErrInvalidTargetSet)
				return
			}
			require.NoError(t, err)
			assert.NotEmpty(t, view.ID)
			assert.Equal(t, domain.CallRinging, view.Status)
			assert.Equal(t, domain.UserID("alice"), view.Initiator)
		})
	}
}

func TestTableTransition(t *testing.T) {
	tbl := NewTable()
	view, err := tbl.Create("alice", []domain.UserID{"bob"})
	require.NoError(t, err)

	got, err := tbl.Transition(view.ID, "bob", domain.StatusAccepted)
	require.NoError(t, err)
	assert.Equal(t, domain.CallActive, got.Status)

	_, err = tbl.Transition("nope", "bob", domain.StatusLeft)
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)

	_, err = tbl.Transition(view.ID, "mallory", domain.StatusAccepted)
	assert.ErrorIs(t, err, domain.ErrNotParticipant)
}

func TestTableAuthorize(t *testing.T) {
	tbl := NewTable()
	view, err := tbl.Create("alice", []domain.UserID{"bob"})
	require.NoError(t, err)

	assert.NoError(t, tbl.Authorize(view.ID, "alice", "bob"))
	assert.ErrorIs(t, tbl.Authorize(view.ID, "alice", "mallory"), domain.ErrNotParticipant)
	assert.ErrorIs(t, tbl.Authorize("nope", "alice", "bob"), domain.ErrSessionNotFound)

	// A rejected target is no longer authorized.
	_, err = tbl.Transition(view.ID, "bob", domain.StatusRejected)
	require.NoError(t, err)
	assert.ErrorIs(t, tbl.Authorize(view.ID, "alice", "bob"), domain.ErrNotParticipant)
}

func TestTableBetween(t *testing.T) {
	tbl := NewTable()

	_, ok := tbl.Between("alice", "bob")
	assert.False(t, ok)

	first, err := tbl.Create("alice", []domain.UserID{"bob"})
	require.NoError(t, err)

	got, ok := tbl.Between("alice", "bob")
	require.True(t, ok)
	assert.Equal(t, first.ID, got.ID)

	// Order of the pair does not matter.
	got, ok = tbl.Between("bob", "alice")
	require.True(t, ok)
	assert.Equal(t, first.ID, got.ID)

	_, ok = tbl.Between("alice", "carol")
	assert.False(t, ok)
}

func TestTableWithAndList(t *testing.T) {
	tbl := NewTable()
	v1, err := tbl.Create("alice", []domain.UserID{"bob"})
	require.NoError(t, err)
	_, err = tbl.Create("carol", []domain.UserID{"dave"})
	require.NoError(t, err)

	assert.Len(t, tbl.With("alice"), 1)
	assert.Len(t, tbl.With("bob"), 1)
	assert.Empty(t, tbl.With("mallory"))
	assert.Len(t, tbl.List(), 2)
	assert.Equal(t, 2, tbl.Len())

	tbl.Remove(v1.ID)
	assert.Empty(t, tbl.With("alice"))
	assert.Equal(t, 1, tbl.Len())

	tbl.Clear()
	assert.Equal(t, 0, tbl.Len())
}

func TestTableStaleInvites(t *testing.T) {
	tbl := NewTable()
	view, err := tbl.Create("alice", []domain.UserID{"bob", "carol"})
	require.NoError(t, err)
	_, err = tbl.Transition(view.ID, "bob", domain.StatusAccepted)
	require.NoError(t, err)

	// Cutoff in the past: nothing is stale yet.
	assert.Empty(t, tbl.StaleInvites(time.Now().Add(-time.Minute)))

	// Cutoff in the future: only carol is still ringing.
	stale := tbl.StaleInvites(time.Now().Add(time.Minute))
	require.Len(t, stale, 1)
	assert.Equal(t, view.ID, stale[0].CallID)
	assert.Equal(t, domain.UserID("alice"), stale[0].Initiator)
	assert.Equal(t, domain.UserID("carol"), stale[0].Target)
}

func TestTableParticipants(t *testing.T) {
	tbl := NewTable()
	view, err := tbl.Create("alice", []domain.UserID{"bob"})
	require.NoError(t, err)

	got, err := tbl.Participants(view.ID)
	require.NoError(t, err)
	assert.Equal(t, []domain.UserID{"alice", "bob"}, got)

	_, err = tbl.Participants("nope")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}
