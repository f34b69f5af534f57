package usecase

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campuslink/internal/domain/entity"
	"campuslink/internal/infrastructure/realtime"
	"campuslink/pkg/errors"
)

type sessionFixture struct {
	hub         *realtime.Hub
	messageRepo *fakeMessageRepo
	userRepo    *fakeUserRepo
	courseRepo  *fakeCourseRepo
	users       map[string]*entity.User
}

func newSessionFixture() *sessionFixture {
	alice := &entity.User{ID: "alice", Email: "alice@campus.edu", Role: entity.RoleStudent, FirstName: "Alice", LastName: "Ng"}
	bob := &entity.User{ID: "bob", Email: "bob@campus.edu", Role: entity.RoleStudent, FirstName: "Bob", LastName: "Chen"}
	prof := &entity.User{ID: "prof", Email: "prof@campus.edu", Role: entity.RoleTeacher, FirstName: "Dana", LastName: "Ruiz"}

	return &sessionFixture{
		hub:         realtime.NewHub(),
		messageRepo: newFakeMessageRepo(),
		userRepo:    newFakeUserRepo(alice, bob, prof),
		courseRepo: newFakeCourseRepo(&entity.Course{
			ID:         "cs101",
			Name:       "Intro to Computer Science",
			TeacherID:  "prof",
			StudentIDs: []string{"alice", "bob"},
		}),
		users: map[string]*entity.User{"alice": alice, "bob": bob, "prof": prof},
	}
}

func (f *sessionFixture) attach(t *testing.T, userID string) *MessagingSession {
	t.Helper()
	session := NewMessagingSession(f.users[userID], f.hub, f.messageRepo, f.userRepo, f.courseRepo, MessagingOptions{})
	require.NoError(t, session.Attach(context.Background()))
	require.Equal(t, SessionAttached, session.State())
	return session
}

type eventRecorder struct {
	mu     sync.Mutex
	events []string
}

func (r *eventRecorder) notifier() SessionNotifier {
	return func(event string, data interface{}) {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.events = append(r.events, event)
	}
}

func (r *eventRecorder) has(event string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.events {
		if e == event {
			return true
		}
	}
	return false
}

func TestSendRejectsInvalidContentWithoutStoreCall(t *testing.T) {
	f := newSessionFixture()
	session := NewMessagingSession(f.users["alice"], f.hub, f.messageRepo, f.userRepo, f.courseRepo, MessagingOptions{MaxContentLength: 5})

	cases := []struct {
		name      string
		content   string
		recipient string
	}{
		{"empty content", "   ", "bob"},
		{"over length", "too long for the limit", "bob"},
		{"no recipient", "hello", ""},
		{"self send", "hi", "alice"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := session.Send(context.Background(), tc.content, tc.recipient, "")
			require.Error(t, err)
			assert.True(t, errors.Is(err, "VALIDATION_ERROR"))
		})
	}

	assert.Zero(t, f.messageRepo.createCount(), "rejected sends must not reach the store")
}

func TestSendDeliversThroughBroadcast(t *testing.T) {
	f := newSessionFixture()
	sender := f.attach(t, "alice")
	receiver := f.attach(t, "bob")

	recorder := &eventRecorder{}
	receiver.SetNotifier(recorder.notifier())

	message, err := sender.Send(context.Background(), "hello bob", "bob", "")
	require.NoError(t, err)
	require.NotEmpty(t, message.ID)

	// Receiver's index picked the message up from the broadcast.
	conversations := receiver.Conversations()
	require.Len(t, conversations, 1)
	assert.Equal(t, "alice", conversations[0].CounterpartID)
	assert.Equal(t, "hello bob", conversations[0].LastMessage)
	assert.Equal(t, 1, conversations[0].UnreadCount)
	assert.Equal(t, 1, receiver.UnreadTotal())
	assert.True(t, recorder.has("new_message"))

	// Sender sees the conversation too, without unread.
	senderConvs := sender.Conversations()
	require.Len(t, senderConvs, 1)
	assert.Equal(t, "bob", senderConvs[0].CounterpartID)
	assert.Equal(t, 0, senderConvs[0].UnreadCount)

	// Neither side has the message in its stream until a selection happens.
	assert.Empty(t, receiver.Messages())
}

func TestDuplicateBroadcastIgnored(t *testing.T) {
	f := newSessionFixture()
	receiver := f.attach(t, "bob")

	message := &entity.Message{ID: "m1", SenderID: "alice", RecipientID: "bob", Content: "once"}
	f.hub.PublishInsert(message)
	f.hub.PublishInsert(message)

	assert.Equal(t, 1, receiver.UnreadTotal())
}

func TestIrrelevantBroadcastIgnored(t *testing.T) {
	f := newSessionFixture()
	receiver := f.attach(t, "bob")

	f.hub.PublishInsert(&entity.Message{ID: "m1", SenderID: "alice", RecipientID: "prof", Content: "private"})

	assert.Empty(t, receiver.Conversations())
	assert.Zero(t, receiver.UnreadTotal())
}

func TestSelectConversationLoadsHistoryAndMarksRead(t *testing.T) {
	f := newSessionFixture()
	f.messageRepo.seed("m1", "alice", "bob", "", "first", false)
	f.messageRepo.seed("m2", "alice", "bob", "", "second", false)

	receiver := f.attach(t, "bob")
	require.Equal(t, 2, receiver.UnreadTotal())

	require.NoError(t, receiver.SelectConversation(context.Background(), "alice"))

	messages := receiver.Messages()
	require.Len(t, messages, 2)
	assert.Equal(t, "first", messages[0].Content)
	assert.Equal(t, "alice", receiver.ActiveConversation())
	assert.Zero(t, receiver.UnreadTotal())

	// Read state reached the store.
	summaries, err := f.messageRepo.ConversationSummaries(context.Background(), "bob")
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Zero(t, summaries[0].UnreadCount)
}

func TestSelectConversationEmptyHistorySeedsEntry(t *testing.T) {
	f := newSessionFixture()
	session := f.attach(t, "alice")

	require.NoError(t, session.SelectConversation(context.Background(), "bob"))

	assert.Empty(t, session.Messages())
	conversations := session.Conversations()
	require.Len(t, conversations, 1)
	assert.Equal(t, "bob", conversations[0].CounterpartID)
	assert.Equal(t, "Bob Chen", conversations[0].CounterpartName)
	assert.Zero(t, conversations[0].UnreadCount)
}

func TestActiveConversationReceivesLiveAppends(t *testing.T) {
	f := newSessionFixture()
	sender := f.attach(t, "alice")
	receiver := f.attach(t, "bob")

	require.NoError(t, receiver.SelectConversation(context.Background(), "alice"))

	_, err := sender.Send(context.Background(), "live one", "bob", "")
	require.NoError(t, err)

	messages := receiver.Messages()
	require.Len(t, messages, 1)
	assert.Equal(t, "live one", messages[0].Content)

	// Active conversation means the unread counter was bumped but can be
	// cleared without another history load.
	assert.Equal(t, 1, receiver.UnreadTotal())
	receiver.MarkRead(context.Background(), "alice")
	assert.Zero(t, receiver.UnreadTotal())
}

func TestCourseThreadFansOutToMembers(t *testing.T) {
	f := newSessionFixture()
	student := f.attach(t, "alice")
	classmate := f.attach(t, "bob")
	teacher := f.attach(t, "prof")

	require.NoError(t, student.SelectConversation(context.Background(), "cs101"))

	// Active selection supplies the course target.
	_, err := student.Send(context.Background(), "when is the deadline?", "", "")
	require.NoError(t, err)

	for _, session := range []*MessagingSession{classmate, teacher} {
		conv, ok := sessionConversation(session, "cs101")
		require.True(t, ok)
		assert.Equal(t, entity.ConversationCourse, conv.Kind)
		assert.Equal(t, 1, conv.UnreadCount)
	}

	// The sender's own thread shows the message without unread.
	conv, ok := sessionConversation(student, "cs101")
	require.True(t, ok)
	assert.Equal(t, "when is the deadline?", conv.LastMessage)
	assert.Zero(t, conv.UnreadCount)
	assert.Equal(t, "Intro to Computer Science", conv.CounterpartName)

	// And it landed in the active stream.
	messages := student.Messages()
	require.Len(t, messages, 1)
}

func TestPresenceLifecycle(t *testing.T) {
	f := newSessionFixture()
	alice := f.attach(t, "alice")

	recorder := &eventRecorder{}
	alice.SetNotifier(recorder.notifier())

	bob := f.attach(t, "bob")
	assert.True(t, alice.IsOnline("bob"))
	assert.True(t, recorder.has("presence_join"))

	// The joiner got a snapshot excluding itself.
	assert.Equal(t, []string{"alice"}, bob.OnlineUsers())
	assert.False(t, bob.IsOnline("bob"))

	bob.Detach()
	assert.False(t, alice.IsOnline("bob"))
	assert.True(t, recorder.has("presence_leave"))
}

func TestDetachStopsDelivery(t *testing.T) {
	f := newSessionFixture()
	session := f.attach(t, "bob")
	session.Detach()
	require.Equal(t, SessionUnattached, session.State())

	f.hub.PublishInsert(&entity.Message{ID: "m1", SenderID: "alice", RecipientID: "bob", Content: "late"})

	assert.Empty(t, session.Conversations())
	assert.Zero(t, session.UnreadTotal())
}

func TestResubscribeKeepsLoadedState(t *testing.T) {
	f := newSessionFixture()
	f.messageRepo.seed("m1", "alice", "bob", "", "kept", false)

	session := f.attach(t, "bob")
	require.Len(t, session.Conversations(), 1)

	session.Resubscribe()
	require.Equal(t, SessionAttached, session.State())

	// Conversations survived and live delivery works again.
	require.Len(t, session.Conversations(), 1)
	f.hub.PublishInsert(&entity.Message{ID: "m2", SenderID: "alice", RecipientID: "bob", Content: "fresh"})
	assert.Equal(t, 2, session.UnreadTotal())
}

func TestSessionManagerReplacesLiveSession(t *testing.T) {
	f := newSessionFixture()
	manager := NewSessionManager(f.hub, f.messageRepo, f.userRepo, f.courseRepo, MessagingOptions{})

	first, err := manager.Attach(context.Background(), f.users["bob"])
	require.NoError(t, err)

	second, err := manager.Attach(context.Background(), f.users["bob"])
	require.NoError(t, err)
	require.NotSame(t, first, second)

	assert.Equal(t, SessionUnattached, first.State())
	assert.Equal(t, SessionAttached, second.State())

	// A stale connection closing late cannot take down the replacement.
	manager.Detach("bob", first)
	got, err := manager.Get("bob")
	require.NoError(t, err)
	assert.Same(t, second, got)
	assert.Equal(t, SessionAttached, second.State())

	manager.Detach("bob", second)
	_, err = manager.Get("bob")
	assert.Error(t, err)
}

func TestSessionManagerConcurrentAttachLeavesOneLiveSession(t *testing.T) {
	f := newSessionFixture()
	manager := NewSessionManager(f.hub, f.messageRepo, f.userRepo, f.courseRepo, MessagingOptions{})

	sessions := make([]*MessagingSession, 2)
	var wg sync.WaitGroup
	for i := range sessions {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			session, err := manager.Attach(context.Background(), f.users["bob"])
			assert.NoError(t, err)
			sessions[i] = session
		}(i)
	}
	wg.Wait()

	current, err := manager.Get("bob")
	require.NoError(t, err)
	require.Equal(t, SessionAttached, current.State())

	// Whichever attach lost the race had its session torn down fully, not
	// left attached without a registration.
	for _, session := range sessions {
		if session != current {
			assert.Equal(t, SessionUnattached, session.State())
		}
	}
}

func sessionConversation(session *MessagingSession, counterpartID string) (entity.Conversation, bool) {
	for _, conv := range session.Conversations() {
		if conv.CounterpartID == counterpartID {
			return conv, true
		}
	}
	return entity.Conversation{}, false
}
