package entity

import "time"

const MessageTypeText = "text"

// Message is immutable once stored. RecipientID is empty for course-scoped
// broadcasts, in which case CourseID identifies the thread.
type Message struct {
	ID          string    `json:"id" firestore:"id"`
	SenderID    string    `json:"sender_id" firestore:"senderId"`
	RecipientID string    `json:"recipient_id,omitempty" firestore:"recipientId,omitempty"`
	CourseID    string    `json:"course_id,omitempty" firestore:"courseId,omitempty"`
	Content     string    `json:"content" firestore:"content"`
	Type        string    `json:"type" firestore:"type"`
	Read        bool      `json:"read" firestore:"read"`
	CreatedAt   time.Time `json:"created_at" firestore:"createdAt"`
}

// CounterpartFor returns the conversation key this message belongs to from
// the given user's point of view: the course id for course threads, otherwise
// the other participant.
func (m *Message) CounterpartFor(userID string) string {
	if m.CourseID != "" {
		return m.CourseID
	}
	if m.SenderID == userID {
		return m.RecipientID
	}
	return m.SenderID
}

// Involves reports whether the user is the sender or the recipient.
func (m *Message) Involves(userID string) bool {
	return m.SenderID == userID || m.RecipientID == userID
}
