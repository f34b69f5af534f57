package usecase

import "sort"

// PresenceTracker mirrors the channel's presence set. Absence means
// offline-or-unknown, not necessarily offline. The local user is never a
// member of its own set.
type PresenceTracker struct {
	selfID string
	online map[string]struct{}
}

func NewPresenceTracker(selfID string) *PresenceTracker {
	return &PresenceTracker{
		selfID: selfID,
		online: make(map[string]struct{}),
	}
}

// Sync replaces the set wholesale with the channel's reported members.
func (pt *PresenceTracker) Sync(members []string) {
	online := make(map[string]struct{}, len(members))
	for _, id := range members {
		if id != pt.selfID {
			online[id] = struct{}{}
		}
	}
	pt.online = online
}

// Join adds a member. Adding a present member is a no-op.
func (pt *PresenceTracker) Join(userID string) {
	if userID == pt.selfID {
		return
	}
	pt.online[userID] = struct{}{}
}

// Leave removes a member. Removing an absent member is a no-op.
func (pt *PresenceTracker) Leave(userID string) {
	delete(pt.online, userID)
}

func (pt *PresenceTracker) IsOnline(userID string) bool {
	_, ok := pt.online[userID]
	return ok
}

// Online returns the sorted member ids.
func (pt *PresenceTracker) Online() []string {
	ids := make([]string, 0, len(pt.online))
	for id := range pt.online {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
