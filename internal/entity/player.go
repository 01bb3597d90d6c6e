package entity

import "strings"

// AIPlayerID is the sentinel identity occupying the AI seat.
const AIPlayerID = "AI"

const aiAvatar = "🤖"

type Player struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Avatar  string `json:"avatar"`
	Seat    Seat   `json:"seat"`
	IsReady bool   `json:"is_ready"`
}

func (that *Player) IsAI() bool {
	return that.ID == AIPlayerID
}

// NewAIPlayer - returns the computer opponent for the given difficulty.
// It is ready from the moment it sits down.
func NewAIPlayer(difficulty string) *Player {
	return &Player{
		ID:      AIPlayerID,
		Name:    "AI (" + strings.ToUpper(difficulty) + ")",
		Avatar:  aiAvatar,
		IsReady: true,
	}
}
