package entity

// Room is one isolated match plus its chat history, addressed by a short
// public code. The room registry is the only component that retains Room
// references; everyone else re-resolves by id per operation.
type Room struct {
	ID       string        `json:"id"`
	Game     *Match        `json:"game"`
	Messages []ChatMessage `json:"messages,omitempty"`
}

func NewRoom(id string, game *Match) *Room {
	return &Room{
		ID:   id,
		Game: game,
	}
}

// AppendMessage - appends to the chat log, evicting the oldest message
// once the log holds MaxChatMessages entries.
func (that *Room) AppendMessage(message ChatMessage) {
	that.Messages = append(that.Messages, message)

	if len(that.Messages) > MaxChatMessages {
		that.Messages = that.Messages[len(that.Messages)-MaxChatMessages:]
	}
}

// Snapshot - returns a deep copy safe to hand to another goroutine.
func (that *Room) Snapshot() *Room {
	return &Room{
		ID:       that.ID,
		Game:     that.Game.Snapshot(),
		Messages: append([]ChatMessage(nil), that.Messages...),
	}
}
