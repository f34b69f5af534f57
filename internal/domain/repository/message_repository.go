package repository

import (
	"context"

	"campuslink/internal/domain/entity"
)

// MessageRepository is the durable conversation store. The message log is
// append-only; creation time is assigned here and is the ordering authority.
type MessageRepository interface {
	Create(ctx context.Context, message *entity.Message) error

	// ListBetween returns the most recent limit messages exchanged between the
	// two users (both directions), ordered by creation time ascending.
	ListBetween(ctx context.Context, userA, userB string, limit int) ([]*entity.Message, error)

	// ListForCourse returns the most recent limit messages of a course thread,
	// ordered by creation time ascending.
	ListForCourse(ctx context.Context, courseID string, limit int) ([]*entity.Message, error)

	// ConversationSummaries aggregates the user's message history into one
	// entry per counterpart with last message and unread count.
	ConversationSummaries(ctx context.Context, userID string) ([]*entity.ConversationSummary, error)

	// MarkConversationRead persists the read flag on messages the user
	// received from the counterpart.
	MarkConversationRead(ctx context.Context, userID, counterpartID string) error
}
