package usecase

import (
	"context"
	"log"
	"sync"

	"campuslink/internal/domain/entity"
	"campuslink/internal/domain/repository"
	"campuslink/internal/infrastructure/realtime"
	"campuslink/pkg/errors"
)

// SessionManager keeps exactly one live messaging session per signed-in
// identity. Attaching an identity that already has a session tears the old
// one down fully before the new one opens, so there are never two channels
// for the same user.
type SessionManager struct {
	mu       sync.Mutex
	sessions map[string]*MessagingSession
	attach   map[string]*sync.Mutex

	hub         *realtime.Hub
	messageRepo repository.MessageRepository
	userRepo    repository.UserRepository
	courseRepo  repository.CourseRepository
	opts        MessagingOptions
}

func NewSessionManager(
	hub *realtime.Hub,
	messageRepo repository.MessageRepository,
	userRepo repository.UserRepository,
	courseRepo repository.CourseRepository,
	opts MessagingOptions,
) *SessionManager {
	return &SessionManager{
		sessions:    make(map[string]*MessagingSession),
		attach:      make(map[string]*sync.Mutex),
		hub:         hub,
		messageRepo: messageRepo,
		userRepo:    userRepo,
		courseRepo:  courseRepo,
		opts:        opts,
	}
}

// Attach opens a session for the user. The returned error, if any, is the
// initial load failure; the session is live either way. Attaches for the same
// identity are serialized: without that, two racing connections could both
// pass the replace window and leave a session attached but unregistered.
func (m *SessionManager) Attach(ctx context.Context, user *entity.User) (*MessagingSession, error) {
	lock := m.attachLock(user.ID)
	lock.Lock()
	defer lock.Unlock()

	m.mu.Lock()
	previous := m.sessions[user.ID]
	delete(m.sessions, user.ID)
	m.mu.Unlock()

	if previous != nil {
		log.Printf("SessionManager: replacing live session for user %s", user.ID)
		previous.Detach()
	}

	session := NewMessagingSession(user, m.hub, m.messageRepo, m.userRepo, m.courseRepo, m.opts)
	err := session.Attach(ctx)

	m.mu.Lock()
	m.sessions[user.ID] = session
	m.mu.Unlock()

	return session, err
}

func (m *SessionManager) attachLock(userID string) *sync.Mutex {
	m.mu.Lock()
	defer m.mu.Unlock()
	lock, ok := m.attach[userID]
	if !ok {
		lock = &sync.Mutex{}
		m.attach[userID] = lock
	}
	return lock
}

// Get returns the live session for the user.
func (m *SessionManager) Get(userID string) (*MessagingSession, error) {
	m.mu.Lock()
	session, ok := m.sessions[userID]
	m.mu.Unlock()
	if !ok {
		return nil, errors.NotFound("Messaging session", nil)
	}
	return session, nil
}

// Detach tears down the user's session if it is still the given one. A stale
// connection closing late cannot take down its replacement.
func (m *SessionManager) Detach(userID string, session *MessagingSession) {
	m.mu.Lock()
	current, ok := m.sessions[userID]
	if ok && current == session {
		delete(m.sessions, userID)
	} else {
		session = nil
	}
	m.mu.Unlock()

	if session != nil {
		session.Detach()
	}
}
