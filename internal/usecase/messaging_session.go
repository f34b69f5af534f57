package usecase

import (
	"context"
	"log"
	"strings"
	"sync"
	"unicode/utf8"

	"campuslink/internal/domain/entity"
	"campuslink/internal/domain/repository"
	"campuslink/internal/infrastructure/realtime"
	"campuslink/pkg/errors"
)

const maxMessageContentLength = 2000

type SessionState string

const (
	SessionUnattached SessionState = "unattached"
	SessionAttaching  SessionState = "attaching"
	SessionAttached   SessionState = "attached"
	SessionDetaching  SessionState = "detaching"
)

// SessionNotifier pushes realtime events out to a connected client.
type SessionNotifier func(event string, data interface{})

// MessagingOptions tunes the core; zero values fall back to defaults.
type MessagingOptions struct {
	HistoryWindow    int
	MaxContentLength int
}

// MessagingSession is the composition root of the messaging core for one
// signed-in identity. It exclusively owns the realtime subscription and is
// the only mutator of the index, stream and presence set. Public methods and
// channel callbacks are serialized through a single mutex; hub methods are
// never invoked while it is held.
type MessagingSession struct {
	mu    sync.Mutex
	user  *entity.User
	state SessionState

	hub *realtime.Hub
	sub *realtime.Subscription

	messageRepo repository.MessageRepository
	userRepo    repository.UserRepository
	courseRepo  repository.CourseRepository

	index    *ConversationIndex
	stream   *MessageStream
	presence *PresenceTracker

	active     string
	courses    map[string]struct{}
	maxContent int
	notify     SessionNotifier
}

func NewMessagingSession(
	user *entity.User,
	hub *realtime.Hub,
	messageRepo repository.MessageRepository,
	userRepo repository.UserRepository,
	courseRepo repository.CourseRepository,
	opts MessagingOptions,
) *MessagingSession {
	maxContent := opts.MaxContentLength
	if maxContent <= 0 {
		maxContent = maxMessageContentLength
	}
	return &MessagingSession{
		user:        user,
		state:       SessionUnattached,
		hub:         hub,
		messageRepo: messageRepo,
		userRepo:    userRepo,
		courseRepo:  courseRepo,
		index:       NewConversationIndex(user.ID, messageRepo, userRepo, courseRepo),
		stream:      NewMessageStream(opts.HistoryWindow),
		presence:    NewPresenceTracker(user.ID),
		courses:     make(map[string]struct{}),
		maxContent:  maxContent,
	}
}

// SetNotifier registers the client-facing event sink. Pass nil to detach it.
func (s *MessagingSession) SetNotifier(notify SessionNotifier) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notify = notify
}

func (s *MessagingSession) User() *entity.User { return s.user }

func (s *MessagingSession) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Attach opens the per-identity channel and performs the initial
// conversation load. The session ends up attached even when the initial load
// fails; the load error is returned so the caller can surface it, and the
// index stays empty rather than partially populated.
func (s *MessagingSession) Attach(ctx context.Context) error {
	s.mu.Lock()
	if s.state != SessionUnattached {
		s.mu.Unlock()
		return errors.Conflict("messaging session is already attached")
	}
	s.state = SessionAttaching
	s.mu.Unlock()

	s.loadCourseMembership(ctx)

	loadErr := func() error {
		s.mu.Lock()
		defer s.mu.Unlock()
		return s.index.Load(ctx)
	}()

	s.openChannel()

	if loadErr != nil {
		log.Printf("MessagingSession Attach Warning: initial load failed for user %s: %v", s.user.ID, loadErr)
	}
	return loadErr
}

// Detach unsubscribes the channel first, so no callback can fire into a
// session that has already cleared its state, then resets everything.
func (s *MessagingSession) Detach() {
	s.mu.Lock()
	if s.state == SessionUnattached || s.state == SessionDetaching {
		s.mu.Unlock()
		return
	}
	s.state = SessionDetaching
	sub := s.sub
	s.sub = nil
	s.mu.Unlock()

	if sub != nil {
		sub.Unsubscribe()
	}

	s.mu.Lock()
	s.index = NewConversationIndex(s.user.ID, s.messageRepo, s.userRepo, s.courseRepo)
	s.stream = NewMessageStream(s.stream.window)
	s.presence = NewPresenceTracker(s.user.ID)
	s.active = ""
	s.notify = nil
	s.state = SessionUnattached
	s.mu.Unlock()
}

// Resubscribe rebuilds the channel after a drop using the same
// teardown/rebuild sequence as an identity switch. Loaded conversations and
// history are kept; only presence and live delivery restart.
func (s *MessagingSession) Resubscribe() {
	s.mu.Lock()
	if s.state != SessionAttached {
		s.mu.Unlock()
		return
	}
	sub := s.sub
	s.sub = nil
	s.state = SessionAttaching
	s.mu.Unlock()

	if sub != nil {
		sub.Unsubscribe()
	}
	s.openChannel()
}

// Send validates content, inserts into the store and publishes the insert
// event. It never mutates the stream directly: the authoritative update
// arrives back through the broadcast, keeping a single source of truth.
func (s *MessagingSession) Send(ctx context.Context, content, recipientID, courseID string) (*entity.Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, errors.Validation("message content is empty")
	}
	if utf8.RuneCountInString(content) > s.maxContent {
		return nil, errors.Validation("message content exceeds maximum length")
	}

	if recipientID == "" && courseID == "" {
		s.mu.Lock()
		if _, isCourse := s.courses[s.active]; isCourse {
			courseID = s.active
		} else {
			recipientID = s.active
		}
		s.mu.Unlock()
	}
	if recipientID == "" && courseID == "" {
		return nil, errors.Validation("message has no recipient")
	}
	if recipientID == s.user.ID {
		return nil, errors.Validation("cannot send a message to yourself")
	}

	message := &entity.Message{
		SenderID:    s.user.ID,
		RecipientID: recipientID,
		CourseID:    courseID,
		Content:     content,
		Type:        entity.MessageTypeText,
	}

	if err := s.messageRepo.Create(ctx, message); err != nil {
		log.Printf("MessagingSession Send Error: user %s: %v", s.user.ID, err)
		return nil, err
	}

	s.hub.PublishInsert(message)
	return message, nil
}

// SelectConversation switches the active selection, reloads history for the
// new counterpart and marks it read. An empty id clears the selection.
func (s *MessagingSession) SelectConversation(ctx context.Context, counterpartID string) error {
	kind := entity.ConversationDirect
	s.mu.Lock()
	if _, ok := s.courses[counterpartID]; ok {
		kind = entity.ConversationCourse
	}
	s.active = counterpartID
	generation := s.stream.Switch(counterpartID)
	if counterpartID != "" {
		s.index.Seed(counterpartID, kind)
		s.index.MarkRead(counterpartID)
	}
	s.mu.Unlock()

	if counterpartID == "" {
		return nil
	}

	s.resolveCounterpart(ctx, counterpartID, kind)

	var history []*entity.Message
	var err error
	if kind == entity.ConversationCourse {
		history, err = s.messageRepo.ListForCourse(ctx, counterpartID, s.stream.window)
	} else {
		history, err = s.messageRepo.ListBetween(ctx, s.user.ID, counterpartID, s.stream.window)
	}
	if err != nil {
		log.Printf("MessagingSession Error: history load failed for %s/%s: %v", s.user.ID, counterpartID, err)
		return errors.Internal("Failed to load messages", err)
	}

	s.mu.Lock()
	filled := s.stream.Fill(generation, history)
	s.mu.Unlock()

	if filled && kind == entity.ConversationDirect {
		// Persist the read state best-effort; the local counter is already zero.
		if err := s.messageRepo.MarkConversationRead(ctx, s.user.ID, counterpartID); err != nil {
			log.Printf("MessagingSession Warning: mark read failed for %s/%s: %v", s.user.ID, counterpartID, err)
		}
	}
	return nil
}

// MarkRead zeroes the unread counter for one conversation and persists the
// read state best-effort.
func (s *MessagingSession) MarkRead(ctx context.Context, counterpartID string) {
	s.mu.Lock()
	conv, known := s.index.Get(counterpartID)
	s.index.MarkRead(counterpartID)
	s.mu.Unlock()

	if known && conv.Kind == entity.ConversationDirect {
		if err := s.messageRepo.MarkConversationRead(ctx, s.user.ID, counterpartID); err != nil {
			log.Printf("MessagingSession Warning: mark read failed for %s/%s: %v", s.user.ID, counterpartID, err)
		}
	}
}

// Search filters the loaded history of the active conversation only.
func (s *MessagingSession) Search(query string) []*entity.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stream.Search(query)
}

// Conversations returns the index snapshot with live online flags merged in.
func (s *MessagingSession) Conversations() []entity.Conversation {
	s.mu.Lock()
	defer s.mu.Unlock()
	conversations := s.index.Conversations()
	for i := range conversations {
		if conversations[i].Kind == entity.ConversationDirect {
			conversations[i].Online = s.presence.IsOnline(conversations[i].CounterpartID)
		}
	}
	return conversations
}

// Messages returns the loaded history of the active conversation.
func (s *MessagingSession) Messages() []*entity.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stream.Messages()
}

func (s *MessagingSession) ActiveConversation() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

func (s *MessagingSession) UnreadTotal() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index.TotalUnread()
}

func (s *MessagingSession) OnlineUsers() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.presence.Online()
}

func (s *MessagingSession) IsOnline(userID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.presence.IsOnline(userID)
}

func (s *MessagingSession) openChannel() {
	sub := s.hub.Subscribe("messaging-"+s.user.ID, realtime.Handlers{
		OnInsert:        s.handleInsert,
		OnPresenceSync:  s.handlePresenceSync,
		OnPresenceJoin:  s.handlePresenceJoin,
		OnPresenceLeave: s.handlePresenceLeave,
		OnSubscribed:    s.handleSubscribed,
	})

	s.mu.Lock()
	s.sub = sub
	s.mu.Unlock()

	// Announce local presence only once the channel reported subscribed.
	sub.Track(s.user.ID)
}

func (s *MessagingSession) handleSubscribed() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == SessionAttaching {
		s.state = SessionAttached
	}
}

// handleInsert is the single incoming-message callback: fired once per
// distinct message id, it updates the index and, for the active
// conversation, the stream.
func (s *MessagingSession) handleInsert(message *entity.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != SessionAttached && s.state != SessionAttaching {
		return
	}

	relevant := message.Involves(s.user.ID)
	if !relevant && message.CourseID != "" {
		_, relevant = s.courses[message.CourseID]
	}
	if !relevant {
		return
	}

	if !s.index.ApplyIncoming(message) {
		return // duplicate delivery
	}

	if counterpart := message.CounterpartFor(s.user.ID); counterpart != "" && counterpart == s.active {
		s.stream.Append(message)
	}

	s.emitLocked("new_message", message)
}

func (s *MessagingSession) handlePresenceSync(members []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.presence.Sync(members)
	s.emitLocked("presence_sync", s.presence.Online())
}

func (s *MessagingSession) handlePresenceJoin(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.presence.Join(userID)
	s.emitLocked("presence_join", userID)
}

func (s *MessagingSession) handlePresenceLeave(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.presence.Leave(userID)
	s.emitLocked("presence_leave", userID)
}

func (s *MessagingSession) emitLocked(event string, data interface{}) {
	if s.notify != nil {
		s.notify(event, data)
	}
}

func (s *MessagingSession) loadCourseMembership(ctx context.Context) {
	var (
		courses []*entity.Course
		err     error
	)
	switch s.user.Role {
	case entity.RoleTeacher:
		courses, _, err = s.courseRepo.ListByTeacher(ctx, s.user.ID, -1, 0)
	default:
		courses, _, err = s.courseRepo.ListByStudent(ctx, s.user.ID, -1, 0)
	}
	if err != nil {
		log.Printf("MessagingSession Warning: course membership load failed for %s: %v", s.user.ID, err)
		return
	}

	membership := make(map[string]struct{}, len(courses))
	for _, course := range courses {
		membership[course.ID] = struct{}{}
	}

	s.mu.Lock()
	s.courses = membership
	s.mu.Unlock()
}

func (s *MessagingSession) resolveCounterpart(ctx context.Context, counterpartID string, kind entity.ConversationKind) {
	var name, avatar string
	switch kind {
	case entity.ConversationCourse:
		course, err := s.courseRepo.GetByID(ctx, counterpartID)
		if err != nil {
			return
		}
		name = course.Name
	default:
		user, err := s.userRepo.GetByID(ctx, counterpartID)
		if err != nil {
			return
		}
		name = user.DisplayName()
		avatar = user.AvatarURL
	}

	s.mu.Lock()
	s.index.SetIdentity(counterpartID, name, avatar)
	s.mu.Unlock()
}
