package usecase

import (
	"strings"

	"campuslink/internal/domain/entity"
)

const defaultHistoryWindow = 50

// MessageStream holds the ordered history of the single active conversation,
// bounded to a fixed window. Switching counterparts bumps a generation
// counter so that a history load resolving after a later switch is discarded.
type MessageStream struct {
	window      int
	counterpart string
	generation  int
	messages    []*entity.Message
}

func NewMessageStream(window int) *MessageStream {
	if window <= 0 {
		window = defaultHistoryWindow
	}
	return &MessageStream{window: window}
}

// Switch clears the stream for a new counterpart and returns the generation
// token the subsequent Fill must present.
func (ms *MessageStream) Switch(counterpartID string) int {
	ms.counterpart = counterpartID
	ms.messages = nil
	ms.generation++
	return ms.generation
}

// Fill installs a loaded history. A result carrying a stale generation is
// rejected so it cannot overwrite the state of a newer selection.
func (ms *MessageStream) Fill(generation int, history []*entity.Message) bool {
	if generation != ms.generation {
		return false
	}
	if len(history) > ms.window {
		history = history[len(history)-ms.window:]
	}
	ms.messages = append([]*entity.Message(nil), history...)
	return true
}

// Append adds one message to the end of the stream, deduplicating by id and
// dropping the oldest entry once the window is exceeded.
func (ms *MessageStream) Append(message *entity.Message) bool {
	for _, existing := range ms.messages {
		if existing.ID == message.ID {
			return false
		}
	}
	ms.messages = append(ms.messages, message)
	if len(ms.messages) > ms.window {
		ms.messages = ms.messages[len(ms.messages)-ms.window:]
	}
	return true
}

// Counterpart returns the id the stream is currently loaded for.
func (ms *MessageStream) Counterpart() string {
	return ms.counterpart
}

// Messages returns a snapshot of the loaded history, oldest first.
func (ms *MessageStream) Messages() []*entity.Message {
	return append([]*entity.Message(nil), ms.messages...)
}

// Search filters the loaded history by case-insensitive substring match.
// It never consults the store.
func (ms *MessageStream) Search(query string) []*entity.Message {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}
	query = strings.ToLower(query)
	var matches []*entity.Message
	for _, message := range ms.messages {
		if strings.Contains(strings.ToLower(message.Content), query) {
			matches = append(matches, message)
		}
	}
	return matches
}
