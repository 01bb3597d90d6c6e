package entity

import (
	"fmt"

	"github.com/rocketscienceinc/othello-backend/internal/apperror"
)

const (
	StatusWaiting  = "waiting"
	StatusPlaying  = "playing"
	StatusFinished = "finished"
)

const (
	HumanType  = "human"
	WithAIType = "ai"
)

const (
	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"
)

// DefaultTurnSeconds is the starting value of the per-turn countdown.
const DefaultTurnSeconds = 30

const maxPlayers = 2

// Match is one game instance: board, seats, turn pointer, cached scores,
// the legal moves of the seat to move and the remaining turn clock.
//
// ValidMoves must always equal Board.LegalMoves(Turn); every method that
// touches the board or the turn pointer recomputes it before returning.
type Match struct {
	Board      Board     `json:"board"`
	Turn       Seat      `json:"turn"`
	Players    []*Player `json:"players"`
	Status     string    `json:"status"`
	Scores     Score     `json:"scores"`
	ValidMoves []Coord   `json:"valid_moves"`
	TimeLeft   int       `json:"time_left"`
	Type       string    `json:"type"`
	Difficulty string    `json:"difficulty,omitempty"`
}

// NewMatch - returns a waiting match over the canonical opening board.
func NewMatch(matchType string) *Match {
	board := NewBoard()

	return &Match{
		Board:      board,
		Turn:       SeatDark,
		Status:     StatusWaiting,
		Scores:     board.Tally(),
		ValidMoves: board.LegalMoves(SeatDark),
		TimeLeft:   DefaultTurnSeconds,
		Type:       matchType,
	}
}

func (that *Match) IsWaiting() bool {
	return that.Status == StatusWaiting
}

func (that *Match) IsPlaying() bool {
	return that.Status == StatusPlaying
}

func (that *Match) IsFinished() bool {
	return that.Status == StatusFinished
}

func (that *Match) IsWithAI() bool {
	return that.Type == WithAIType
}

// AddPlayer - seats the player on the lowest free seat.
func (that *Match) AddPlayer(player *Player) error {
	if len(that.Players) >= maxPlayers {
		return fmt.Errorf("%w: %d seats taken", apperror.ErrRoomFull, maxPlayers)
	}

	player.Seat = SeatDark
	for _, occupant := range that.Players {
		if occupant.Seat == SeatDark {
			player.Seat = SeatLight
		}
	}

	that.Players = append(that.Players, player)

	return nil
}

// RemovePlayer - vacates the seat held by the given identity and reports
// whether a seat was actually freed.
func (that *Match) RemovePlayer(playerID string) bool {
	for i, player := range that.Players {
		if player.ID == playerID {
			that.Players = append(that.Players[:i], that.Players[i+1:]...)
			return true
		}
	}

	return false
}

// PlayerByID - returns the seated player with the given identity, if any.
func (that *Match) PlayerByID(playerID string) *Player {
	for _, player := range that.Players {
		if player.ID == playerID {
			return player
		}
	}

	return nil
}

// AIPlayer - returns the AI occupant, if any.
func (that *Match) AIPlayer() *Player {
	for _, player := range that.Players {
		if player.IsAI() {
			return player
		}
	}

	return nil
}

// IsEmpty - reports whether no human occupies a seat. A room whose only
// occupant is the AI sentinel counts as empty and is torn down.
func (that *Match) IsEmpty() bool {
	for _, player := range that.Players {
		if !player.IsAI() {
			return false
		}
	}

	return true
}

// MarkReady - sets the caller's ready flag and, once both seats are taken
// and ready, transitions the match from waiting to playing. It reports
// whether the match just started.
func (that *Match) MarkReady(playerID string) bool {
	player := that.PlayerByID(playerID)
	if player == nil {
		return false
	}

	player.IsReady = true

	if !that.IsWaiting() || len(that.Players) < maxPlayers {
		return false
	}

	for _, occupant := range that.Players {
		if !occupant.IsReady {
			return false
		}
	}

	that.Status = StatusPlaying

	return true
}

// SubmitMove - applies a move for the seated identity. The move must come
// from the seat whose turn it is, while the match is playing, and land on
// a currently-legal coordinate; otherwise the match state is untouched.
func (that *Match) SubmitMove(playerID string, coord Coord) error {
	if !that.IsPlaying() {
		return fmt.Errorf("%w: match is not in progress", apperror.ErrIllegalMove)
	}

	player := that.PlayerByID(playerID)
	if player == nil || player.Seat != that.Turn {
		return apperror.ErrNotYourTurn
	}

	if !that.isValidMove(coord) {
		return fmt.Errorf("%w: %d,%d", apperror.ErrIllegalMove, coord.Row, coord.Col)
	}

	that.applyMove(player.Seat, coord)

	return nil
}

// ApplyMoveFor - applies a move for the given seat without an identity
// check. The AI turn and tests go through here; legality is still enforced.
func (that *Match) ApplyMoveFor(seat Seat, coord Coord) error {
	if !that.IsPlaying() {
		return fmt.Errorf("%w: match is not in progress", apperror.ErrIllegalMove)
	}

	if seat != that.Turn {
		return apperror.ErrNotYourTurn
	}

	if !that.isValidMove(coord) {
		return fmt.Errorf("%w: %d,%d", apperror.ErrIllegalMove, coord.Row, coord.Col)
	}

	that.applyMove(seat, coord)

	return nil
}

func (that *Match) isValidMove(coord Coord) bool {
	for _, move := range that.ValidMoves {
		if move == coord {
			return true
		}
	}

	return false
}

func (that *Match) applyMove(seat Seat, coord Coord) {
	that.Board = that.Board.Apply(coord, seat)
	that.Scores = that.Board.Tally()
	that.advanceTurn(seat)
}

// advanceTurn - hands the turn to the mover's opponent, applying the
// double-skip rule: an opponent without legal moves passes the turn back
// to the mover, and the match finishes only when both seats are stuck.
func (that *Match) advanceTurn(mover Seat) {
	next := mover.Opposite()
	that.Turn = next
	that.ValidMoves = that.Board.LegalMoves(next)

	if len(that.ValidMoves) > 0 {
		return
	}

	if that.Board.IsTerminal() {
		that.Status = StatusFinished
		that.ValidMoves = nil
		return
	}

	that.Turn = mover
	that.ValidMoves = that.Board.LegalMoves(mover)
}

// SkipTurn - forces the turn away from the current holder without touching
// the board, as when the turn clock runs out. The same double-skip rule and
// terminal detection apply as for a played move.
func (that *Match) SkipTurn() {
	if !that.IsPlaying() {
		return
	}

	that.advanceTurn(that.Turn)
}

// Reset - restores the initial board, scores, turn and legal moves. Human
// rooms fall back to waiting with readiness cleared; AI rooms re-enter
// playing directly since the AI seat is always ready.
func (that *Match) Reset() {
	board := NewBoard()

	that.Board = board
	that.Turn = SeatDark
	that.Scores = board.Tally()
	that.ValidMoves = board.LegalMoves(SeatDark)
	that.TimeLeft = DefaultTurnSeconds

	if that.IsWithAI() {
		that.Status = StatusPlaying
		return
	}

	that.Status = StatusWaiting
	for _, player := range that.Players {
		player.IsReady = false
	}
}

// Snapshot - returns a deep copy safe to hand to another goroutine.
func (that *Match) Snapshot() *Match {
	match := *that

	match.Players = make([]*Player, len(that.Players))
	for i, player := range that.Players {
		copied := *player
		match.Players[i] = &copied
	}

	match.ValidMoves = append([]Coord(nil), that.ValidMoves...)

	return &match
}
