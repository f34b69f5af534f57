package usecase

import (
	"context"
	"log"
	"sort"

	"campuslink/internal/domain/entity"
	"campuslink/internal/domain/repository"
	"campuslink/pkg/errors"
)

const unknownUserLabel = "Unknown User"

// appliedHistoryLimit bounds the per-counterpart dedupe memory. A channel
// redelivery arrives close to the original, so a short id history suffices.
const appliedHistoryLimit = 128

// appliedHistory remembers the most recently applied message ids for one
// counterpart so redeliveries are dropped even when they are not adjacent.
type appliedHistory struct {
	ids   map[string]struct{}
	order []string
}

func newAppliedHistory() *appliedHistory {
	return &appliedHistory{ids: make(map[string]struct{})}
}

func (h *appliedHistory) seen(id string) bool {
	_, ok := h.ids[id]
	return ok
}

func (h *appliedHistory) record(id string) {
	h.ids[id] = struct{}{}
	h.order = append(h.order, id)
	if len(h.order) > appliedHistoryLimit {
		oldest := h.order[0]
		h.order = h.order[1:]
		delete(h.ids, oldest)
	}
}

// ConversationIndex derives one entry per counterpart from the message log
// and keeps it live as messages arrive. Entries are sorted by last-message
// time descending, ties broken by counterpart id. The index is not safe for
// concurrent use; the owning session serializes access.
type ConversationIndex struct {
	selfID      string
	messageRepo repository.MessageRepository
	userRepo    repository.UserRepository
	courseRepo  repository.CourseRepository

	conversations []*entity.Conversation
	byCounterpart map[string]*entity.Conversation
	applied       map[string]*appliedHistory
	totalUnread   int
}

func NewConversationIndex(selfID string, messageRepo repository.MessageRepository, userRepo repository.UserRepository, courseRepo repository.CourseRepository) *ConversationIndex {
	return &ConversationIndex{
		selfID:        selfID,
		messageRepo:   messageRepo,
		userRepo:      userRepo,
		courseRepo:    courseRepo,
		byCounterpart: make(map[string]*entity.Conversation),
		applied:       make(map[string]*appliedHistory),
	}
}

// Load fetches conversation summaries and resolves counterpart identities.
// On a failed fetch the index is left empty, never partially populated.
// Identity resolution failures degrade to a placeholder label.
func (ci *ConversationIndex) Load(ctx context.Context) error {
	summaries, err := ci.messageRepo.ConversationSummaries(ctx, ci.selfID)
	if err != nil {
		log.Printf("ConversationIndex Load Error: user %s: %v", ci.selfID, err)
		return errors.Internal("Failed to load conversations", err)
	}

	conversations := make([]*entity.Conversation, 0, len(summaries))
	byCounterpart := make(map[string]*entity.Conversation, len(summaries))

	for _, summary := range summaries {
		if _, exists := byCounterpart[summary.CounterpartID]; exists {
			continue
		}
		conv := &entity.Conversation{
			CounterpartID:   summary.CounterpartID,
			Kind:            summary.Kind,
			LastMessage:     summary.LastMessage,
			LastMessageTime: summary.LastMessageTime,
			UnreadCount:     summary.UnreadCount,
		}
		ci.resolveIdentity(ctx, conv)
		conversations = append(conversations, conv)
		byCounterpart[summary.CounterpartID] = conv
	}

	sortConversations(conversations)

	ci.conversations = conversations
	ci.byCounterpart = byCounterpart
	ci.applied = make(map[string]*appliedHistory)
	ci.recomputeTotal()

	return nil
}

// ApplyIncoming upserts the entry for the message's counterpart. It is
// idempotent keyed by message id: an at-least-once channel may redeliver any
// earlier message, not just the most recent one, and every redelivery must
// leave the index untouched. It reports whether the message was new.
func (ci *ConversationIndex) ApplyIncoming(message *entity.Message) bool {
	counterpart := message.CounterpartFor(ci.selfID)
	if counterpart == "" {
		return false
	}
	history := ci.applied[counterpart]
	if history == nil {
		history = newAppliedHistory()
		ci.applied[counterpart] = history
	}
	if history.seen(message.ID) {
		return false
	}
	history.record(message.ID)

	fromOther := message.SenderID != ci.selfID

	conv, ok := ci.byCounterpart[counterpart]
	if !ok {
		kind := entity.ConversationDirect
		if message.CourseID != "" {
			kind = entity.ConversationCourse
		}
		conv = &entity.Conversation{
			CounterpartID:   counterpart,
			Kind:            kind,
			CounterpartName: unknownUserLabel, // resolved on the next full load
		}
		ci.conversations = append(ci.conversations, conv)
		ci.byCounterpart[counterpart] = conv
	}

	// A late-arriving older message still counts, but must not regress the
	// preview to older content.
	if !message.CreatedAt.Before(conv.LastMessageTime) {
		conv.LastMessage = message.Content
		conv.LastMessageTime = message.CreatedAt
	}
	if fromOther {
		conv.UnreadCount++
	}

	sortConversations(ci.conversations)
	ci.recomputeTotal()
	return true
}

// MarkRead zeroes the conversation's unread counter and recomputes the total.
func (ci *ConversationIndex) MarkRead(counterpartID string) {
	if conv, ok := ci.byCounterpart[counterpartID]; ok {
		conv.UnreadCount = 0
	}
	ci.recomputeTotal()
}

// Seed materializes a zero-state entry for an explicitly selected counterpart
// that has no message history yet.
func (ci *ConversationIndex) Seed(counterpartID string, kind entity.ConversationKind) {
	if counterpartID == "" {
		return
	}
	if _, ok := ci.byCounterpart[counterpartID]; ok {
		return
	}
	conv := &entity.Conversation{
		CounterpartID:   counterpartID,
		Kind:            kind,
		CounterpartName: unknownUserLabel,
	}
	ci.conversations = append(ci.conversations, conv)
	ci.byCounterpart[counterpartID] = conv
	sortConversations(ci.conversations)
}

// SetIdentity fills in resolved display fields for a counterpart.
func (ci *ConversationIndex) SetIdentity(counterpartID, name, avatar string) {
	if conv, ok := ci.byCounterpart[counterpartID]; ok {
		conv.CounterpartName = name
		conv.CounterpartAvatar = avatar
	}
}

// Conversations returns a snapshot of the index in display order.
func (ci *ConversationIndex) Conversations() []entity.Conversation {
	out := make([]entity.Conversation, len(ci.conversations))
	for i, conv := range ci.conversations {
		out[i] = *conv
	}
	return out
}

// Get returns a copy of one entry.
func (ci *ConversationIndex) Get(counterpartID string) (entity.Conversation, bool) {
	if conv, ok := ci.byCounterpart[counterpartID]; ok {
		return *conv, true
	}
	return entity.Conversation{}, false
}

// TotalUnread is the sum of unread counters across all conversations.
func (ci *ConversationIndex) TotalUnread() int {
	return ci.totalUnread
}

func (ci *ConversationIndex) resolveIdentity(ctx context.Context, conv *entity.Conversation) {
	switch conv.Kind {
	case entity.ConversationCourse:
		course, err := ci.courseRepo.GetByID(ctx, conv.CounterpartID)
		if err != nil {
			log.Printf("ConversationIndex Warning: course %s not resolved: %v", conv.CounterpartID, err)
			conv.CounterpartName = "Course"
			return
		}
		conv.CounterpartName = course.Name
	default:
		user, err := ci.userRepo.GetByID(ctx, conv.CounterpartID)
		if err != nil {
			log.Printf("ConversationIndex Warning: user %s not resolved: %v", conv.CounterpartID, err)
			conv.CounterpartName = unknownUserLabel
			return
		}
		conv.CounterpartName = user.DisplayName()
		conv.CounterpartAvatar = user.AvatarURL
	}
}

func (ci *ConversationIndex) recomputeTotal() {
	total := 0
	for _, conv := range ci.conversations {
		total += conv.UnreadCount
	}
	ci.totalUnread = total
}

func sortConversations(conversations []*entity.Conversation) {
	sort.SliceStable(conversations, func(i, j int) bool {
		if conversations[i].LastMessageTime.Equal(conversations[j].LastMessageTime) {
			return conversations[i].CounterpartID < conversations[j].CounterpartID
		}
		return conversations[i].LastMessageTime.After(conversations[j].LastMessageTime)
	})
}
