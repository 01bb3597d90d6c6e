package service

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/othello-backend/internal/entity"
)

func TestStrategistService_PickMove(t *testing.T) {
	strategist := NewStrategistService()

	t.Run("no legal move means pass", func(t *testing.T) {
		// Given: a board where dark has nothing to outflank
		var board entity.Board

		// When: the strategist is asked for a move
		_, ok := strategist.PickMove(board, entity.SeatDark, entity.DifficultyHard)

		// Then: it passes instead of erroring
		require.False(t, ok)
	})

	t.Run("easy picks a legal move", func(t *testing.T) {
		board := entity.NewBoard()
		legal := board.LegalMoves(entity.SeatDark)

		for i := 0; i < 20; i++ {
			move, ok := strategist.PickMove(board, entity.SeatDark, entity.DifficultyEasy)
			require.True(t, ok)
			require.Contains(t, legal, move)
		}
	})

	t.Run("unknown difficulty falls back to easy", func(t *testing.T) {
		board := entity.NewBoard()

		move, ok := strategist.PickMove(board, entity.SeatDark, "nightmare")
		require.True(t, ok)
		require.Contains(t, board.LegalMoves(entity.SeatDark), move)
	})
}

func TestStrategistService_Medium(t *testing.T) {
	strategist := NewStrategistService()

	t.Run("prefers a corner", func(t *testing.T) {
		// Given: a board where (0,0) and an interior cell are both legal
		var board entity.Board
		board[0][1] = entity.CellLight
		board[0][2] = entity.CellDark
		board[4][4] = entity.CellLight
		board[4][5] = entity.CellDark

		legal := board.LegalMoves(entity.SeatDark)
		require.Contains(t, legal, entity.Coord{Row: 0, Col: 0})
		require.Contains(t, legal, entity.Coord{Row: 4, Col: 3})

		// Then: medium always takes the corner
		for i := 0; i < 20; i++ {
			move, ok := strategist.PickMove(board, entity.SeatDark, entity.DifficultyMedium)
			require.True(t, ok)
			require.Equal(t, entity.Coord{Row: 0, Col: 0}, move)
		}
	})

	t.Run("prefers an edge when no corner is legal", func(t *testing.T) {
		// Given: a board where the only edge move is (0,3)
		var board entity.Board
		board[0][4] = entity.CellLight
		board[0][5] = entity.CellDark
		board[4][4] = entity.CellLight
		board[4][5] = entity.CellDark

		legal := board.LegalMoves(entity.SeatDark)
		require.Contains(t, legal, entity.Coord{Row: 0, Col: 3})
		require.Contains(t, legal, entity.Coord{Row: 4, Col: 3})

		for i := 0; i < 20; i++ {
			move, ok := strategist.PickMove(board, entity.SeatDark, entity.DifficultyMedium)
			require.True(t, ok)
			require.Equal(t, entity.Coord{Row: 0, Col: 3}, move)
		}
	})
}

func TestStrategistService_Hard(t *testing.T) {
	strategist := NewStrategistService()

	t.Run("deterministic with first-move tie-break", func(t *testing.T) {
		// Given: the opening board, all four dark openings score equal
		board := entity.NewBoard()

		// Then: hard always returns the first move in row-major order
		for i := 0; i < 20; i++ {
			move, ok := strategist.PickMove(board, entity.SeatDark, entity.DifficultyHard)
			require.True(t, ok)
			require.Equal(t, entity.Coord{Row: 2, Col: 3}, move)
		}
	})

	t.Run("corner bonus dominates", func(t *testing.T) {
		// Given: a corner capture and a bland interior capture
		var board entity.Board
		board[0][1] = entity.CellLight
		board[0][2] = entity.CellDark
		board[4][4] = entity.CellLight
		board[4][5] = entity.CellDark

		move, ok := strategist.PickMove(board, entity.SeatDark, entity.DifficultyHard)
		require.True(t, ok)
		require.Equal(t, entity.Coord{Row: 0, Col: 0}, move)
	})
}

func TestEvaluateBoard(t *testing.T) {
	t.Run("symmetric for both seats", func(t *testing.T) {
		board := entity.NewBoard()

		require.Equal(t, 0, evaluateBoard(board, entity.SeatDark))
		require.Equal(t, 0, evaluateBoard(board, entity.SeatLight))
	})

	t.Run("corners score the corner and the edge bonus", func(t *testing.T) {
		// Given: a lone dark corner piece
		var board entity.Board
		board[0][0] = entity.CellDark

		// Then: one piece, one corner bonus, one edge bonus
		require.Equal(t, 1+25+5, evaluateBoard(board, entity.SeatDark))
		require.Equal(t, -(1 + 25 + 5), evaluateBoard(board, entity.SeatLight))
	})

	t.Run("plain edge cells score once", func(t *testing.T) {
		var board entity.Board
		board[0][3] = entity.CellDark

		require.Equal(t, 1+5, evaluateBoard(board, entity.SeatDark))
	})
}
