package entity

import (
	"time"

	"github.com/google/uuid"
)

// MaxChatMessages bounds the per-room chat log; the oldest message is
// evicted once the log is full.
const MaxChatMessages = 50

// MaxChatTextLen is the longest accepted chat text, in runes.
const MaxChatTextLen = 200

// ChatMessage is immutable once created.
type ChatMessage struct {
	ID         string `json:"id"`
	PlayerID   string `json:"player_id"`
	PlayerName string `json:"player_name"`
	Text       string `json:"text"`
	Timestamp  int64  `json:"timestamp"`
}

// NewChatMessage - stamps a new message with a fresh id and the current
// unix-millisecond time.
func NewChatMessage(playerID, playerName, text string) ChatMessage {
	return ChatMessage{
		ID:         uuid.NewString(),
		PlayerID:   playerID,
		PlayerName: playerName,
		Text:       text,
		Timestamp:  time.Now().UnixMilli(),
	}
}
