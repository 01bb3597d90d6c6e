package entity

const BoardSize = 8

// Cell is the content of a single board square.
type Cell int

const (
	CellEmpty Cell = 0
	CellDark  Cell = 1
	CellLight Cell = 2
)

// Seat is one of the two playing positions. Seat one always plays the
// dark pieces and moves first.
type Seat int

const (
	SeatNone  Seat = 0
	SeatDark  Seat = 1
	SeatLight Seat = 2
)

// Opposite - returns the other seat.
func (that Seat) Opposite() Seat {
	if that == SeatDark {
		return SeatLight
	}

	return SeatDark
}

// Cell - returns the cell value placed by this seat.
func (that Seat) Cell() Cell {
	return Cell(that)
}

func (that Seat) String() string {
	switch that {
	case SeatDark:
		return "dark"
	case SeatLight:
		return "light"
	default:
		return "none"
	}
}

// Coord addresses a board square, row and column both in [0, 7].
type Coord struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// InBounds - reports whether the coordinate lies on the board.
func (that Coord) InBounds() bool {
	return that.Row >= 0 && that.Row < BoardSize && that.Col >= 0 && that.Col < BoardSize
}

// Score holds the piece tally per seat.
type Score struct {
	Dark  int `json:"dark"`
	Light int `json:"light"`
}

// directions are the 8 compass offsets an outflank is walked along.
var directions = [8][2]int{
	{-1, -1}, {-1, 0}, {-1, 1},
	{0, -1}, {0, 1},
	{1, -1}, {1, 0}, {1, 1},
}

// Board is an 8x8 grid of cells. It is a value type: assignment copies
// the whole grid, so move application never aliases the input board.
type Board [BoardSize][BoardSize]Cell

// NewBoard - returns a board with the canonical four-piece opening.
func NewBoard() Board {
	var board Board

	board[3][3] = CellLight
	board[3][4] = CellDark
	board[4][3] = CellDark
	board[4][4] = CellLight

	return board
}

// At - returns the cell at the given coordinate.
func (that Board) At(coord Coord) Cell {
	return that[coord.Row][coord.Col]
}

// CanPlace - reports whether placing a piece for seat at coord outflanks
// at least one run of opposing pieces.
func (that Board) CanPlace(coord Coord, seat Seat) bool {
	if !coord.InBounds() || that.At(coord) != CellEmpty {
		return false
	}

	for _, dir := range directions {
		if that.wouldFlip(coord, dir[0], dir[1], seat) {
			return true
		}
	}

	return false
}

// wouldFlip - walks from coord along one direction and reports whether the
// walk crosses at least one opposing piece and ends on an own piece before
// hitting an empty cell or the board edge.
func (that Board) wouldFlip(coord Coord, dRow, dCol int, seat Seat) bool {
	opponent := seat.Opposite().Cell()
	own := seat.Cell()

	row, col := coord.Row+dRow, coord.Col+dCol
	sawOpponent := false

	for row >= 0 && row < BoardSize && col >= 0 && col < BoardSize {
		switch that[row][col] {
		case CellEmpty:
			return false
		case opponent:
			sawOpponent = true
		case own:
			return sawOpponent
		}

		row += dRow
		col += dCol
	}

	return false
}

// LegalMoves - returns every coordinate where seat may place a piece,
// in row-major order. Row-major order is part of the contract: the hard
// strategist breaks ties by taking the first move of this slice.
func (that Board) LegalMoves(seat Seat) []Coord {
	var moves []Coord

	for row := 0; row < BoardSize; row++ {
		for col := 0; col < BoardSize; col++ {
			coord := Coord{Row: row, Col: col}
			if that.At(coord) == CellEmpty && that.CanPlace(coord, seat) {
				moves = append(moves, coord)
			}
		}
	}

	return moves
}

// Apply - returns a new board with seat's piece placed at coord and every
// outflanked run flipped. The receiver is a value, so the caller's board
// is left untouched.
func (that Board) Apply(coord Coord, seat Seat) Board {
	board := that
	board[coord.Row][coord.Col] = seat.Cell()

	opponent := seat.Opposite().Cell()

	for _, dir := range directions {
		if !that.wouldFlip(coord, dir[0], dir[1], seat) {
			continue
		}

		row, col := coord.Row+dir[0], coord.Col+dir[1]
		for board[row][col] == opponent {
			board[row][col] = seat.Cell()
			row += dir[0]
			col += dir[1]
		}
	}

	return board
}

// Tally - counts the pieces of both seats.
func (that Board) Tally() Score {
	var score Score

	for row := 0; row < BoardSize; row++ {
		for col := 0; col < BoardSize; col++ {
			switch that[row][col] {
			case CellDark:
				score.Dark++
			case CellLight:
				score.Light++
			}
		}
	}

	return score
}

// IsTerminal - reports whether the game is over. A single seat without
// legal moves only skips its turn; the game ends when both seats are stuck.
func (that Board) IsTerminal() bool {
	return len(that.LegalMoves(SeatDark)) == 0 && len(that.LegalMoves(SeatLight)) == 0
}
