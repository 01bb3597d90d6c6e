package websocket

import (
	"encoding/json"

	"github.com/rocketscienceinc/othello-backend/internal/entity"
)

// Message represents a WebSocket message with an action type and a payload.
type Message struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// RequestPayload is the union of every inbound payload shape. Row and Col
// are pointers so a missing coordinate is distinguishable from 0.
type RequestPayload struct {
	SessionID  string `json:"session_id,omitempty"`
	RoomID     string `json:"room_id,omitempty"`
	Name       string `json:"name,omitempty"`
	Avatar     string `json:"avatar,omitempty"`
	Difficulty string `json:"difficulty,omitempty"`
	Row        *int   `json:"row,omitempty"`
	Col        *int   `json:"col,omitempty"`
	Text       string `json:"text,omitempty"`
}

type ResponsePayload struct {
	SessionID   string              `json:"session_id,omitempty"`
	RoomID      string              `json:"room_id,omitempty"`
	Game        *entity.Match       `json:"game,omitempty"`
	Message     *entity.ChatMessage `json:"message,omitempty"`
	SecondsLeft *int                `json:"seconds_left,omitempty"`
	Error       string              `json:"error,omitempty"`
}

const (
	actionConnect     = "connect"
	actionCreateRoom  = "room:create"
	actionJoinRoom    = "room:join"
	actionCreateAI    = "room:ai"
	actionPlayerReady = "room:ready"
	actionResetMatch  = "room:reset"
	actionSubmitMove  = "game:move"
	actionSendChat    = "chat:send"

	actionRoomState   = "room:state"
	actionChatMessage = "chat:message"
	actionClockTick   = "clock:tick"
	actionError       = "error"
)
