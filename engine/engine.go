package engine

import (
	"fmt"

	"github.com/rs/zerolog/log"

	"connectfour/game"
)

// Strategy produces a column for the player to move. *agent.Strategy
// implements it; keeping the interface here leaves the engine agnostic of
// the concrete strategy set.
type Strategy interface {
	ChooseMove(b *game.Board, player game.Cell) (int, error)
}

// Update reports one applied move to the caller.
type Update struct {
	Player  game.Cell
	Column  int
	Outcome game.Outcome
}

// Engine alternates turns between two strategies on one board until the game
// reaches a terminal outcome. It owns the board exclusively for the duration
// of the game.
type Engine struct {
	board      *game.Board
	strategies [2]Strategy
	current    game.Cell
	history    []Update
}

func New(cfg game.Config, player1, player2 Strategy) (*Engine, error) {
	if player1 == nil || player2 == nil {
		return nil, fmt.Errorf("both players need a strategy")
	}
	board, err := game.NewBoard(cfg)
	if err != nil {
		return nil, err
	}
	return &Engine{
		board:      board,
		strategies: [2]Strategy{player1, player2},
		current:    game.Player1,
	}, nil
}

// Board exposes the game state for rendering. Callers must treat it as
// read-only.
func (e *Engine) Board() *game.Board { return e.board }

func (e *Engine) CurrentPlayer() game.Cell { return e.current }

func (e *Engine) Done() bool { return e.board.Outcome().Status != game.InProgress }

// History lists every move applied so far, in order.
func (e *Engine) History() []Update { return e.history }

// Step runs one turn: the active strategy picks a column and the move is
// applied. A strategy returning an illegal column is a programming or
// configuration error and surfaces as a fatal error; the turn is never
// retried.
func (e *Engine) Step() (Update, error) {
	if e.Done() {
		return Update{}, fmt.Errorf("%w: game is already over", game.ErrIllegalMove)
	}

	idx := 0
	if e.current == game.Player2 {
		idx = 1
	}
	col, err := e.strategies[idx].ChooseMove(e.board, e.current)
	if err != nil {
		return Update{}, fmt.Errorf("%v strategy failed: %w", e.current, err)
	}
	if err := e.board.Apply(col, e.current); err != nil {
		return Update{}, fmt.Errorf("%v chose column %d: %w", e.current, col, err)
	}

	update := Update{Player: e.current, Column: col, Outcome: e.board.Outcome()}
	e.history = append(e.history, update)
	if update.Outcome.Status == game.InProgress {
		e.current = game.Opponent(e.current)
	}
	return update, nil
}

// Run steps the game to completion and returns the final outcome.
func (e *Engine) Run() (game.Outcome, error) {
	log.Debug().Msgf("%v is starting", e.current)
	for !e.Done() {
		update, err := e.Step()
		if err != nil {
			return game.Outcome{}, err
		}
		log.Debug().Msgf("%v played column %d", update.Player, update.Column)
	}

	outcome := e.board.Outcome()
	if outcome.Status == game.Won {
		log.Debug().Msgf("%v won after %d moves", outcome.Winner, e.board.MoveCount())
	} else {
		log.Debug().Msgf("game drawn after %d moves", e.board.MoveCount())
	}
	return outcome, nil
}
