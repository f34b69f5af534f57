package usecase

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPresenceSyncExcludesSelf(t *testing.T) {
	tracker := NewPresenceTracker("me")
	tracker.Sync([]string{"me", "alice", "bob"})

	assert.Equal(t, []string{"alice", "bob"}, tracker.Online())
	assert.False(t, tracker.IsOnline("me"))
}

func TestPresenceSyncReplacesWholesale(t *testing.T) {
	tracker := NewPresenceTracker("me")
	tracker.Sync([]string{"alice", "bob"})
	tracker.Sync([]string{"carol"})

	assert.Equal(t, []string{"carol"}, tracker.Online())
	assert.False(t, tracker.IsOnline("alice"))
}

func TestPresenceJoinLeave(t *testing.T) {
	tracker := NewPresenceTracker("me")

	tracker.Join("alice")
	tracker.Join("alice")
	tracker.Join("me")
	assert.Equal(t, []string{"alice"}, tracker.Online())

	tracker.Leave("alice")
	tracker.Leave("alice")
	assert.Empty(t, tracker.Online())
}
