package repository

import (
	"context"
	"log"
	"sort"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"google.golang.org/api/iterator"

	"campuslink/internal/domain/entity"
	"campuslink/internal/domain/repository"
	"campuslink/pkg/errors"
)

type firestoreMessageRepository struct {
	client *firestore.Client
}

func NewFirestoreMessageRepository(client *firestore.Client) repository.MessageRepository {
	return &firestoreMessageRepository{
		client: client,
	}
}

func (r *firestoreMessageRepository) Create(ctx context.Context, message *entity.Message) error {
	if message.ID == "" {
		message.ID = uuid.New().String()
	}
	if message.Type == "" {
		message.Type = entity.MessageTypeText
	}
	message.CreatedAt = time.Now()

	_, err := r.client.Collection("messages").Doc(message.ID).Set(ctx, message)
	if err != nil {
		return errors.Internal("Failed to create message", err)
	}

	return nil
}

func (r *firestoreMessageRepository) ListBetween(ctx context.Context, userA, userB string, limit int) ([]*entity.Message, error) {
	sent, err := r.collect(ctx, r.client.Collection("messages").
		Where("senderId", "==", userA).
		Where("recipientId", "==", userB))
	if err != nil {
		return nil, err
	}

	received, err := r.collect(ctx, r.client.Collection("messages").
		Where("senderId", "==", userB).
		Where("recipientId", "==", userA))
	if err != nil {
		return nil, err
	}

	messages := append(sent, received...)
	sortAscending(messages)
	return tail(messages, limit), nil
}

func (r *firestoreMessageRepository) ListForCourse(ctx context.Context, courseID string, limit int) ([]*entity.Message, error) {
	messages, err := r.collect(ctx, r.client.Collection("messages").
		Where("courseId", "==", courseID))
	if err != nil {
		return nil, err
	}

	sortAscending(messages)
	return tail(messages, limit), nil
}

// ConversationSummaries groups the user's direct history by counterpart. A
// summary's unread count is the number of received messages not yet flagged
// read; course threads the user wrote to surface here too so they stay in
// the index across reloads.
func (r *firestoreMessageRepository) ConversationSummaries(ctx context.Context, userID string) ([]*entity.ConversationSummary, error) {
	sent, err := r.collect(ctx, r.client.Collection("messages").
		Where("senderId", "==", userID))
	if err != nil {
		return nil, err
	}

	received, err := r.collect(ctx, r.client.Collection("messages").
		Where("recipientId", "==", userID))
	if err != nil {
		return nil, err
	}

	messages := append(sent, received...)
	sortAscending(messages)

	byCounterpart := make(map[string]*entity.ConversationSummary)
	order := make([]string, 0)

	for _, message := range messages {
		counterpart := message.CounterpartFor(userID)
		if counterpart == "" {
			continue
		}

		summary, ok := byCounterpart[counterpart]
		if !ok {
			kind := entity.ConversationDirect
			if message.CourseID != "" {
				kind = entity.ConversationCourse
			}
			summary = &entity.ConversationSummary{
				CounterpartID: counterpart,
				Kind:          kind,
			}
			byCounterpart[counterpart] = summary
			order = append(order, counterpart)
		}

		summary.LastMessage = message.Content
		summary.LastMessageTime = message.CreatedAt
		if message.SenderID != userID && !message.Read {
			summary.UnreadCount++
		}
	}

	summaries := make([]*entity.ConversationSummary, 0, len(order))
	for _, counterpart := range order {
		summaries = append(summaries, byCounterpart[counterpart])
	}
	return summaries, nil
}

func (r *firestoreMessageRepository) MarkConversationRead(ctx context.Context, userID, counterpartID string) error {
	iter := r.client.Collection("messages").
		Where("senderId", "==", counterpartID).
		Where("recipientId", "==", userID).
		Where("read", "==", false).
		Documents(ctx)

	batch := r.client.Batch()
	updated := 0

	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			log.Printf("Firestore error while marking conversation read for user %s: %v", userID, err)
			return errors.Internal("Failed to mark conversation as read", err)
		}

		batch.Update(doc.Ref, []firestore.Update{{Path: "read", Value: true}})
		updated++
	}

	if updated == 0 {
		return nil
	}

	if _, err := batch.Commit(ctx); err != nil {
		return errors.Internal("Failed to mark conversation as read", err)
	}
	return nil
}

func (r *firestoreMessageRepository) collect(ctx context.Context, query firestore.Query) ([]*entity.Message, error) {
	iter := query.Documents(ctx)
	var messages []*entity.Message

	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			log.Printf("Firestore error while iterating messages: %v", err)
			return nil, errors.Internal("Failed to iterate messages", err)
		}

		var message entity.Message
		if err := doc.DataTo(&message); err != nil {
			return nil, errors.Internal("Failed to parse message data", err)
		}
		messages = append(messages, &message)
	}

	return messages, nil
}

func sortAscending(messages []*entity.Message) {
	sort.SliceStable(messages, func(i, j int) bool {
		if messages[i].CreatedAt.Equal(messages[j].CreatedAt) {
			return messages[i].ID < messages[j].ID
		}
		return messages[i].CreatedAt.Before(messages[j].CreatedAt)
	})
}

func tail(messages []*entity.Message, limit int) []*entity.Message {
	if limit > 0 && len(messages) > limit {
		return messages[len(messages)-limit:]
	}
	return messages
}
