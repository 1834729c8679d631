package agent

import (
	"fmt"

	"golang.org/x/exp/rand"

	"connectfour/game"
	"connectfour/learner"
	"connectfour/searcher"
)

// Kind enumerates the closed set of move strategies.
type Kind int

const (
	Random Kind = iota
	Heuristic
	Minimax
	QLearning
)

func (k Kind) String() string {
	switch k {
	case Random:
		return "random"
	case Heuristic:
		return "heuristic"
	case Minimax:
		return "minimax"
	case QLearning:
		return "qlearning"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Strategy is one of the four automated opponents. Build one with the New*
// constructors; the zero value is not usable.
type Strategy struct {
	kind    Kind
	rng     *rand.Rand
	minimax *searcher.Minimax
	table   *learner.QTable
}

// NewRandom plays uniformly among the legal columns.
func NewRandom(seed uint64) *Strategy {
	return &Strategy{kind: Random, rng: rand.New(rand.NewSource(seed))}
}

// NewHeuristic plays the one-ply move that maximizes the static evaluation.
func NewHeuristic() *Strategy {
	return &Strategy{kind: Heuristic}
}

// NewMinimax plays a depth-bounded alpha-beta search.
func NewMinimax(depth int, options ...searcher.Option) *Strategy {
	return &Strategy{kind: Minimax, minimax: searcher.NewMinimax(depth, options...)}
}

// NewQLearning exploits a trained table, reading it only.
func NewQLearning(table *learner.QTable) *Strategy {
	return &Strategy{kind: QLearning, table: table}
}

func (s *Strategy) Kind() Kind { return s.kind }

// ChooseMove dispatches on the strategy variant and returns the chosen
// column. It fails only when the board has no legal move left.
func (s *Strategy) ChooseMove(b *game.Board, player game.Cell) (int, error) {
	moves := b.LegalMoves()
	if len(moves) == 0 {
		return 0, fmt.Errorf("%w: no legal moves for %v", game.ErrIllegalMove, player)
	}
	switch s.kind {
	case Random:
		return moves[s.rng.Intn(len(moves))], nil
	case Heuristic:
		return bestByEvaluation(b, player, moves), nil
	case Minimax:
		return s.minimax.FindMove(b, player)
	case QLearning:
		return s.qMove(b, player, moves), nil
	default:
		return 0, fmt.Errorf("unknown strategy kind %v", s.kind)
	}
}

// bestByEvaluation tries each legal move and keeps the one with the best
// resulting evaluation, leftmost on ties.
func bestByEvaluation(b *game.Board, player game.Cell, moves []int) int {
	best := moves[0]
	bestScore := 0
	for i, col := range moves {
		if err := b.Apply(col, player); err != nil {
			panic(err)
		}
		score := game.Evaluate(b, player)
		if err := b.Undo(col); err != nil {
			panic(err)
		}
		if i == 0 || score > bestScore {
			best, bestScore = col, score
		}
	}
	return best
}

// qMove exploits the table's values for the current state. For states the
// table cannot distinguish yet it prefers the center, which degrades far
// better against novel positions than a fixed column would.
func (s *Strategy) qMove(b *game.Board, player game.Cell, moves []int) int {
	key := learner.StateKey(b, player)
	if col, seen := s.table.Best(key, moves); seen {
		return col
	}
	return closestToCenter(moves, b.Config().Cols/2)
}

func closestToCenter(moves []int, center int) int {
	best := moves[0]
	bestDist := distance(moves[0], center)
	for _, col := range moves[1:] {
		if d := distance(col, center); d < bestDist {
			best, bestDist = col, d
		}
	}
	return best
}

func distance(a, b int) int {
	if a < b {
		return b - a
	}
	return a - b
}
