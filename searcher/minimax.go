package searcher

import (
	"fmt"

	"connectfour/game"
)

// infScore bounds the alpha-beta window. It must exceed any score the search
// can return, including depth-adjusted terminal scores.
const infScore = 2 * game.WinScore

type Option func(m *Minimax)

// WithCollector attaches a metrics collector to the search.
func WithCollector(c Collector) Option {
	return func(m *Minimax) {
		if c != nil {
			m.collector = c
		}
	}
}

// Minimax is a depth-bounded adversarial searcher with alpha-beta pruning.
// Depth is the sole difficulty knob: higher depth is strictly more capable
// and strictly more expensive.
type Minimax struct {
	depth     int
	collector Collector
}

func NewMinimax(depth int, options ...Option) *Minimax {
	if depth <= 0 {
		panic("search depth must be positive")
	}
	m := &Minimax{
		depth:     depth,
		collector: NewNoCollector(),
	}
	for _, option := range options {
		option(m)
	}
	return m
}

func (m *Minimax) Depth() int { return m.depth }

// FindMove returns the best column for player on the given board. Moves are
// explored in left-to-right column order and ties keep the first candidate,
// so results are deterministic. The board is mutated through apply/undo pairs
// during the search and handed back exactly as it came in.
func (m *Minimax) FindMove(b *game.Board, player game.Cell) (int, error) {
	moves := b.LegalMoves()
	if len(moves) == 0 {
		return 0, fmt.Errorf("%w: no legal moves for %v", game.ErrIllegalMove, player)
	}
	m.collector.Start(m.depth)

	best := moves[0]
	bestScore := -infScore
	alpha, beta := -infScore, infScore
	for _, col := range moves {
		mustApply(b, col, player)
		score := m.search(b, player, m.depth-1, alpha, beta, false)
		mustUndo(b, col)
		if score > bestScore {
			best, bestScore = col, score
		}
		if bestScore > alpha {
			alpha = bestScore
		}
	}
	return best, nil
}

// search scores the position for player. Terminal scores decay with the depth
// consumed so far, so a faster forced win outranks a slower one and a slower
// loss outranks a faster one.
func (m *Minimax) search(b *game.Board, player game.Cell, depth, alpha, beta int, maximizing bool) int {
	m.collector.AddNode()

	switch out := b.Outcome(); out.Status {
	case game.Won:
		if out.Winner == player {
			return game.WinScore + depth
		}
		return -(game.WinScore + depth)
	case game.Draw:
		return 0
	}
	if depth == 0 {
		return game.Evaluate(b, player)
	}

	mover := player
	if !maximizing {
		mover = game.Opponent(player)
	}
	cols := b.Config().Cols

	if maximizing {
		best := -infScore
		for col := 0; col < cols; col++ {
			if !b.CanPlay(col) {
				continue
			}
			mustApply(b, col, mover)
			score := m.search(b, player, depth-1, alpha, beta, false)
			mustUndo(b, col)
			if score > best {
				best = score
			}
			if best > alpha {
				alpha = best
			}
			if alpha >= beta {
				m.collector.AddCutoff()
				break
			}
		}
		return best
	}

	worst := infScore
	for col := 0; col < cols; col++ {
		if !b.CanPlay(col) {
			continue
		}
		mustApply(b, col, mover)
		score := m.search(b, player, depth-1, alpha, beta, true)
		mustUndo(b, col)
		if score < worst {
			worst = score
		}
		if worst < beta {
			beta = worst
		}
		if alpha >= beta {
			m.collector.AddCutoff()
			break
		}
	}
	return worst
}

// The search only ever plays moves it has verified legal; a failure here is a
// bug in the engine, not a recoverable condition.
func mustApply(b *game.Board, col int, player game.Cell) {
	if err := b.Apply(col, player); err != nil {
		panic(err)
	}
}

func mustUndo(b *game.Board, col int) {
	if err := b.Undo(col); err != nil {
		panic(err)
	}
}
