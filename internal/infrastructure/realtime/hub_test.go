package realtime

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campuslink/internal/domain/entity"
)

type recordingSub struct {
	inserts []string
	syncs   [][]string
	joins   []string
	leaves  []string
	ready   bool
}

func (r *recordingSub) handlers() Handlers {
	return Handlers{
		OnInsert:        func(m *entity.Message) { r.inserts = append(r.inserts, m.ID) },
		OnPresenceSync:  func(members []string) { r.syncs = append(r.syncs, members) },
		OnPresenceJoin:  func(id string) { r.joins = append(r.joins, id) },
		OnPresenceLeave: func(id string) { r.leaves = append(r.leaves, id) },
		OnSubscribed:    func() { r.ready = true },
	}
}

func TestSubscribeReportsReady(t *testing.T) {
	hub := NewHub()
	rec := &recordingSub{}

	sub := hub.Subscribe("messaging-alice", rec.handlers())

	assert.True(t, rec.ready)
	assert.Equal(t, "messaging-alice", sub.Topic())
}

func TestPublishInsertReachesAllOpenSubscriptions(t *testing.T) {
	hub := NewHub()
	recA := &recordingSub{}
	recB := &recordingSub{}
	hub.Subscribe("messaging-alice", recA.handlers())
	subB := hub.Subscribe("messaging-bob", recB.handlers())

	hub.PublishInsert(&entity.Message{ID: "m1"})

	assert.Equal(t, []string{"m1"}, recA.inserts)
	assert.Equal(t, []string{"m1"}, recB.inserts)

	subB.Unsubscribe()
	hub.PublishInsert(&entity.Message{ID: "m2"})

	assert.Equal(t, []string{"m1", "m2"}, recA.inserts)
	assert.Equal(t, []string{"m1"}, recB.inserts, "no delivery after Unsubscribe returns")
}

func TestTrackAnnouncesJoinAndSyncsSelf(t *testing.T) {
	hub := NewHub()
	recA := &recordingSub{}
	recB := &recordingSub{}
	subA := hub.Subscribe("messaging-alice", recA.handlers())
	subB := hub.Subscribe("messaging-bob", recB.handlers())

	subA.Track("alice")
	subB.Track("bob")

	// Alice saw bob join; bob's own snapshot already contained both.
	assert.Equal(t, []string{"bob"}, recA.joins)
	require.Len(t, recB.syncs, 1)
	assert.Equal(t, []string{"alice", "bob"}, recB.syncs[0])
	assert.Equal(t, []string{"alice", "bob"}, hub.Members())

	// Tracking twice is a no-op.
	subB.Track("bob")
	assert.Len(t, recA.joins, 1)
}

func TestUnsubscribeWithdrawsPresence(t *testing.T) {
	hub := NewHub()
	recA := &recordingSub{}
	recB := &recordingSub{}
	subA := hub.Subscribe("messaging-alice", recA.handlers())
	subB := hub.Subscribe("messaging-bob", recB.handlers())
	subA.Track("alice")
	subB.Track("bob")

	subB.Unsubscribe()

	assert.Equal(t, []string{"bob"}, recA.leaves)
	assert.Equal(t, []string{"alice"}, hub.Members())

	subB.Unsubscribe() // idempotent
	assert.Len(t, recA.leaves, 1)
}

func TestSubscribeReplacesExistingTopic(t *testing.T) {
	hub := NewHub()
	old := &recordingSub{}
	oldSub := hub.Subscribe("messaging-alice", old.handlers())
	oldSub.Track("alice")

	fresh := &recordingSub{}
	hub.Subscribe("messaging-alice", fresh.handlers())

	// The replaced subscription is closed and its presence withdrawn.
	hub.PublishInsert(&entity.Message{ID: "m1"})
	assert.Empty(t, old.inserts)
	assert.Equal(t, []string{"m1"}, fresh.inserts)
	assert.Empty(t, hub.Members())
}
