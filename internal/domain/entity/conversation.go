package entity

import "time"

type ConversationKind string

const (
	ConversationDirect ConversationKind = "direct"
	ConversationCourse ConversationKind = "course"
)

// Conversation is a derived view over the message log, never stored: one
// entry per counterpart, kept sorted by last-message time descending.
type Conversation struct {
	CounterpartID     string           `json:"counterpart_id"`
	Kind              ConversationKind `json:"kind"`
	CounterpartName   string           `json:"counterpart_name"`
	CounterpartAvatar string           `json:"counterpart_avatar,omitempty"`
	LastMessage       string           `json:"last_message,omitempty"`
	LastMessageTime   time.Time        `json:"last_message_time"`
	UnreadCount       int              `json:"unread_count"`
	Online            bool             `json:"online"`
}

// ConversationSummary is what the store reports per counterpart before
// identity resolution.
type ConversationSummary struct {
	CounterpartID   string
	Kind            ConversationKind
	LastMessage     string
	LastMessageTime time.Time
	UnreadCount     int
}
