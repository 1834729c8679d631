package game

import (
	"errors"
	"fmt"
)

// ErrIllegalMove reports a drop into a full or out-of-range column, or a move
// attempted after the game has ended. Engine-internal callers treat it as a
// logic bug; filtering human input is the UI's job.
var ErrIllegalMove = errors.New("illegal move")

// Cell is the content of one board position.
type Cell int8

const (
	Empty Cell = iota
	Player1
	Player2
)

func (c Cell) String() string {
	switch c {
	case Player1:
		return "Player1"
	case Player2:
		return "Player2"
	default:
		return "Empty"
	}
}

// Opponent returns the other player.
func Opponent(p Cell) Cell {
	if p == Player1 {
		return Player2
	}
	return Player1
}

// Status is the phase of a game.
type Status int8

const (
	InProgress Status = iota
	Won
	Draw
)

// Outcome is the terminal condition of a board. Winner is set only when
// Status is Won.
type Outcome struct {
	Status Status
	Winner Cell
}

// The four line directions that can complete a connect: horizontal, vertical
// and both diagonals.
var directions = [4][2]int{{0, 1}, {1, 0}, {1, 1}, {1, -1}}

// Board is the single piece of mutable game state. Row 0 is the bottom row,
// so a dropped piece lands at the column's current height. The outcome is
// maintained incrementally on every placement by scanning only the four lines
// through the just-placed cell.
type Board struct {
	cfg     Config
	cells   []Cell // row-major, row 0 at the bottom
	heights []int
	moves   int
	outcome Outcome
}

func NewBoard(cfg Config) (*Board, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Board{
		cfg:     cfg,
		cells:   make([]Cell, cfg.Rows*cfg.Cols),
		heights: make([]int, cfg.Cols),
	}, nil
}

func (b *Board) Config() Config { return b.cfg }

// MoveCount is the number of pieces placed so far.
func (b *Board) MoveCount() int { return b.moves }

// Height is the number of pieces in a column.
func (b *Board) Height(col int) int { return b.heights[col] }

// Cell returns the content at (row, col) with row 0 at the bottom. Positions
// off the board read as Empty.
func (b *Board) Cell(row, col int) Cell {
	if row < 0 || row >= b.cfg.Rows || col < 0 || col >= b.cfg.Cols {
		return Empty
	}
	return b.cells[row*b.cfg.Cols+col]
}

// Outcome reports the game's terminal condition after the latest move.
func (b *Board) Outcome() Outcome { return b.outcome }

func (b *Board) Full() bool { return b.moves == len(b.cells) }

// CanPlay reports whether dropping into col is currently legal.
func (b *Board) CanPlay(col int) bool {
	return b.outcome.Status == InProgress && col >= 0 && col < b.cfg.Cols && b.heights[col] < b.cfg.Rows
}

// LegalMoves lists all playable columns left to right. It is empty once the
// game has a terminal outcome.
func (b *Board) LegalMoves() []int {
	moves := make([]int, 0, b.cfg.Cols)
	if b.outcome.Status != InProgress {
		return moves
	}
	for col := 0; col < b.cfg.Cols; col++ {
		if b.heights[col] < b.cfg.Rows {
			moves = append(moves, col)
		}
	}
	return moves
}

// Apply drops a piece for player into col. The piece lands in the lowest
// empty row and the outcome is recomputed from the landing cell outward.
func (b *Board) Apply(col int, player Cell) error {
	if player != Player1 && player != Player2 {
		return fmt.Errorf("%w: %v cannot place pieces", ErrIllegalMove, player)
	}
	if b.outcome.Status != InProgress {
		return fmt.Errorf("%w: game is already over", ErrIllegalMove)
	}
	if col < 0 || col >= b.cfg.Cols {
		return fmt.Errorf("%w: column %d out of range [0, %d)", ErrIllegalMove, col, b.cfg.Cols)
	}
	if b.heights[col] >= b.cfg.Rows {
		return fmt.Errorf("%w: column %d is full", ErrIllegalMove, col)
	}

	row := b.heights[col]
	b.cells[row*b.cfg.Cols+col] = player
	b.heights[col]++
	b.moves++

	if b.lineThrough(row, col, player) {
		b.outcome = Outcome{Status: Won, Winner: player}
	} else if b.moves == len(b.cells) {
		b.outcome = Outcome{Status: Draw}
	}
	return nil
}

// Undo removes the piece most recently dropped into col. It exists so the
// searcher can backtrack on a single borrowed board instead of copying it per
// node; it is not a gameplay feature and the turn controller never calls it.
func (b *Board) Undo(col int) error {
	if col < 0 || col >= b.cfg.Cols {
		return fmt.Errorf("%w: column %d out of range [0, %d)", ErrIllegalMove, col, b.cfg.Cols)
	}
	if b.heights[col] == 0 {
		return fmt.Errorf("%w: column %d is empty", ErrIllegalMove, col)
	}
	b.heights[col]--
	b.cells[b.heights[col]*b.cfg.Cols+col] = Empty
	b.moves--
	// The position before the undone move was necessarily still in progress.
	b.outcome = Outcome{}
	return nil
}

// Clone returns an independent copy of the board.
func (b *Board) Clone() *Board {
	return &Board{
		cfg:     b.cfg,
		cells:   append([]Cell(nil), b.cells...),
		heights: append([]int(nil), b.heights...),
		moves:   b.moves,
		outcome: b.outcome,
	}
}

// Snapshot returns the grid contents for display, top row first.
func (b *Board) Snapshot() [][]Cell {
	grid := make([][]Cell, b.cfg.Rows)
	for r := 0; r < b.cfg.Rows; r++ {
		row := make([]Cell, b.cfg.Cols)
		src := b.cfg.Rows - 1 - r
		copy(row, b.cells[src*b.cfg.Cols:(src+1)*b.cfg.Cols])
		grid[r] = row
	}
	return grid
}

// WinningLine returns the cells (row, col pairs, row 0 at the bottom) of one
// completed line once the game is won, for display highlighting. It returns
// nil while the game is in progress or drawn.
func (b *Board) WinningLine() [][2]int {
	if b.outcome.Status != Won {
		return nil
	}
	length := b.cfg.ConnectLength
	for r := 0; r < b.cfg.Rows; r++ {
		for c := 0; c < b.cfg.Cols; c++ {
			for _, d := range directions {
				endR := r + (length-1)*d[0]
				endC := c + (length-1)*d[1]
				if endR < 0 || endR >= b.cfg.Rows || endC < 0 || endC >= b.cfg.Cols {
					continue
				}
				line := make([][2]int, 0, length)
				for i := 0; i < length; i++ {
					row, col := r+i*d[0], c+i*d[1]
					if b.cells[row*b.cfg.Cols+col] != b.outcome.Winner {
						line = nil
						break
					}
					line = append(line, [2]int{row, col})
				}
				if line != nil {
					return line
				}
			}
		}
	}
	return nil
}

// lineThrough reports whether the piece just placed at (row, col) completes a
// run of ConnectLength for player in any direction.
func (b *Board) lineThrough(row, col int, player Cell) bool {
	for _, d := range directions {
		run := 1 + b.runLength(row, col, d[0], d[1], player) + b.runLength(row, col, -d[0], -d[1], player)
		if run >= b.cfg.ConnectLength {
			return true
		}
	}
	return false
}

// runLength counts consecutive player pieces from (row, col) exclusive,
// walking in direction (dr, dc).
func (b *Board) runLength(row, col, dr, dc int, player Cell) int {
	n := 0
	r, c := row+dr, col+dc
	for r >= 0 && r < b.cfg.Rows && c >= 0 && c < b.cfg.Cols && b.cells[r*b.cfg.Cols+c] == player {
		n++
		r += dr
		c += dc
	}
	return n
}
