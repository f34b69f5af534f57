package usecase

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"campuslink/internal/domain/entity"
)

func makeMessages(n int) []*entity.Message {
	messages := make([]*entity.Message, n)
	for i := range messages {
		messages[i] = &entity.Message{
			ID:      fmt.Sprintf("msg-%d", i+1),
			Content: fmt.Sprintf("message %d", i+1),
		}
	}
	return messages
}

func TestMessageStreamFillTruncatesToWindow(t *testing.T) {
	stream := NewMessageStream(3)
	gen := stream.Switch("other")

	assert.True(t, stream.Fill(gen, makeMessages(5)))

	got := stream.Messages()
	assert.Len(t, got, 3)
	assert.Equal(t, "msg-3", got[0].ID)
	assert.Equal(t, "msg-5", got[2].ID)
}

func TestMessageStreamStaleFillRejected(t *testing.T) {
	stream := NewMessageStream(10)

	staleGen := stream.Switch("first")
	freshGen := stream.Switch("second")

	assert.False(t, stream.Fill(staleGen, makeMessages(2)), "history for a superseded selection must be discarded")
	assert.Empty(t, stream.Messages())

	assert.True(t, stream.Fill(freshGen, makeMessages(2)))
	assert.Len(t, stream.Messages(), 2)
	assert.Equal(t, "second", stream.Counterpart())
}

func TestMessageStreamAppendDeduplicates(t *testing.T) {
	stream := NewMessageStream(10)
	stream.Switch("other")

	message := &entity.Message{ID: "msg-1", Content: "hello"}
	assert.True(t, stream.Append(message))
	assert.False(t, stream.Append(message))
	assert.Len(t, stream.Messages(), 1)
}

func TestMessageStreamAppendEvictsOldest(t *testing.T) {
	stream := NewMessageStream(2)
	stream.Switch("other")

	for _, m := range makeMessages(3) {
		stream.Append(m)
	}

	got := stream.Messages()
	assert.Len(t, got, 2)
	assert.Equal(t, "msg-2", got[0].ID)
	assert.Equal(t, "msg-3", got[1].ID)
}

func TestMessageStreamSearch(t *testing.T) {
	stream := NewMessageStream(10)
	gen := stream.Switch("other")
	stream.Fill(gen, []*entity.Message{
		{ID: "a", Content: "Lecture notes for Monday"},
		{ID: "b", Content: "see you tomorrow"},
		{ID: "c", Content: "NOTES attached"},
	})

	matches := stream.Search("notes")
	assert.Len(t, matches, 2)

	assert.Nil(t, stream.Search("   "), "blank query returns no matches")
	assert.Empty(t, stream.Search("missing"))
}
