package service

import (
	"math/rand"

	"github.com/rocketscienceinc/othello-backend/internal/entity"
)

const (
	cornerBonus = 25
	edgeBonus   = 5
)

// StrategistService picks moves for the computer-controlled seat.
type StrategistService interface {
	PickMove(board entity.Board, seat entity.Seat, difficulty string) (entity.Coord, bool)
}

type strategistService struct{}

func NewStrategistService() StrategistService {
	return &strategistService{}
}

// PickMove - returns a legal move for the given seat, or false when the
// seat has none. A missing move means "pass", not an error.
func (that *strategistService) PickMove(board entity.Board, seat entity.Seat, difficulty string) (entity.Coord, bool) {
	moves := board.LegalMoves(seat)
	if len(moves) == 0 {
		return entity.Coord{}, false
	}

	switch difficulty {
	case entity.DifficultyMedium:
		return that.pickMediumMove(moves), true
	case entity.DifficultyHard:
		return that.pickHardMove(board, seat, moves), true
	default:
		return that.pickRandomMove(moves), true
	}
}

func (that *strategistService) pickRandomMove(moves []entity.Coord) entity.Coord {
	return moves[rand.Intn(len(moves))] //nolint: gosec // it's ok
}

// pickMediumMove - prefers corners, then edges, then any legal move, with
// a uniform-random tie-break inside the preferred set.
func (that *strategistService) pickMediumMove(moves []entity.Coord) entity.Coord {
	var corners, edges []entity.Coord

	for _, move := range moves {
		switch {
		case isCorner(move):
			corners = append(corners, move)
		case isEdge(move):
			edges = append(edges, move)
		}
	}

	if len(corners) > 0 {
		return that.pickRandomMove(corners)
	}

	if len(edges) > 0 {
		return that.pickRandomMove(edges)
	}

	return that.pickRandomMove(moves)
}

// pickHardMove - plays every legal move on a scratch board and keeps the
// strictly highest-valued result. Moves arrive in row-major order and ties
// go to the first candidate, so the choice is deterministic.
func (that *strategistService) pickHardMove(board entity.Board, seat entity.Seat, moves []entity.Coord) entity.Coord {
	bestMove := moves[0]
	bestValue := evaluateBoard(board.Apply(bestMove, seat), seat)

	for _, move := range moves[1:] {
		value := evaluateBoard(board.Apply(move, seat), seat)
		if value > bestValue {
			bestValue = value
			bestMove = move
		}
	}

	return bestMove
}

// evaluateBoard - values a board from the given seat's perspective: piece
// difference, plus a corner bonus, plus an edge bonus. Corners lie on the
// edge rows and columns, so they score in the edge loop as well.
func evaluateBoard(board entity.Board, seat entity.Seat) int {
	own := seat.Cell()
	opponent := seat.Opposite().Cell()

	score := board.Tally()
	value := score.Dark - score.Light
	if seat == entity.SeatLight {
		value = -value
	}

	corners := []entity.Coord{{Row: 0, Col: 0}, {Row: 0, Col: 7}, {Row: 7, Col: 0}, {Row: 7, Col: 7}}
	for _, corner := range corners {
		switch board.At(corner) {
		case own:
			value += cornerBonus
		case opponent:
			value -= cornerBonus
		}
	}

	for row := 0; row < entity.BoardSize; row++ {
		for col := 0; col < entity.BoardSize; col++ {
			coord := entity.Coord{Row: row, Col: col}
			if !isEdge(coord) {
				continue
			}

			switch board.At(coord) {
			case own:
				value += edgeBonus
			case opponent:
				value -= edgeBonus
			}
		}
	}

	return value
}

func isCorner(coord entity.Coord) bool {
	return (coord.Row == 0 || coord.Row == entity.BoardSize-1) &&
		(coord.Col == 0 || coord.Col == entity.BoardSize-1)
}

func isEdge(coord entity.Coord) bool {
	return coord.Row == 0 || coord.Row == entity.BoardSize-1 ||
		coord.Col == 0 || coord.Col == entity.BoardSize-1
}
