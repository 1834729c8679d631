package learner

import (
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"
	"golang.org/x/exp/rand"

	"connectfour/game"
)

// Rewards attributed to the player who just moved.
const (
	rewardWin  = 1.0
	rewardLoss = -1.0
	rewardDraw = 0.0
)

// TrainerConfig holds the hyperparameters of a self-play training run.
type TrainerConfig struct {
	Episodes     int
	Alpha        float64 // learning rate
	Gamma        float64 // discount factor
	Epsilon      float64 // exploration rate
	EpsilonMin   float64 // floor for decayed exploration
	EpsilonDecay float64 // per-episode multiplier; 0 or >=1 disables decay
	Seed         uint64
	LogEvery     int // episodes between progress logs; 0 silences
}

func (c TrainerConfig) validate() error {
	if c.Episodes <= 0 {
		return fmt.Errorf("training needs a positive episode count, got %d", c.Episodes)
	}
	if c.Alpha <= 0 || c.Alpha > 1 {
		return fmt.Errorf("learning rate %v out of range (0, 1]", c.Alpha)
	}
	if c.Gamma < 0 || c.Gamma > 1 {
		return fmt.Errorf("discount factor %v out of range [0, 1]", c.Gamma)
	}
	if c.Epsilon < 0 || c.Epsilon > 1 {
		return fmt.Errorf("exploration rate %v out of range [0, 1]", c.Epsilon)
	}
	return nil
}

// Stats summarizes a training run.
type Stats struct {
	Episodes     int
	P1Wins       int
	P2Wins       int
	Draws        int
	States       int
	FinalEpsilon float64
}

// Trainer runs Q-learning self-play episodes against a single table. It takes
// exclusive write access to the table for the duration of Run; create the
// trainer, run it, then hand the table to read-only play.
type Trainer struct {
	boardCfg game.Config
	table    *QTable
	cfg      TrainerConfig
	rng      *rand.Rand
}

func NewTrainer(boardCfg game.Config, table *QTable, cfg TrainerConfig) (*Trainer, error) {
	if err := boardCfg.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if table.Cols() != boardCfg.Cols {
		return nil, fmt.Errorf("q-table has %d columns, board wants %d", table.Cols(), boardCfg.Cols)
	}
	return &Trainer{
		boardCfg: boardCfg,
		table:    table,
		cfg:      cfg,
		rng:      rand.New(rand.NewSource(cfg.Seed)),
	}, nil
}

// Run plays the configured number of self-play episodes. Both sides update
// the shared table from their own perspective.
func (t *Trainer) Run() (Stats, error) {
	stats := Stats{}
	epsilon := t.cfg.Epsilon
	for episode := 1; episode <= t.cfg.Episodes; episode++ {
		outcome, err := t.playEpisode(epsilon)
		if err != nil {
			return stats, err
		}
		stats.Episodes++
		switch {
		case outcome.Status == game.Draw:
			stats.Draws++
		case outcome.Winner == game.Player1:
			stats.P1Wins++
		default:
			stats.P2Wins++
		}
		if t.cfg.EpsilonDecay > 0 && t.cfg.EpsilonDecay < 1 {
			epsilon *= t.cfg.EpsilonDecay
			if epsilon < t.cfg.EpsilonMin {
				epsilon = t.cfg.EpsilonMin
			}
		}
		if t.cfg.LogEvery > 0 && episode%t.cfg.LogEvery == 0 {
			log.Info().Msgf("completed %d of %d training episodes (%d states, epsilon %.3f)",
				episode, t.cfg.Episodes, t.table.Len(), epsilon)
		}
	}
	stats.States = t.table.Len()
	stats.FinalEpsilon = epsilon
	return stats, nil
}

// pendingUpdate is a player's last state-action pair, waiting for the value
// of the next state from which that same player moves.
type pendingUpdate struct {
	key    string
	action int
	valid  bool
}

// playEpisode runs one self-play game. Each move's update target is
// r + gamma * max_a' Q(s', a'), where s' is the next position the mover faces
// (terminal positions contribute zero future value). Wins earn +1, losses -1,
// draws and ordinary steps 0.
func (t *Trainer) playEpisode(epsilon float64) (game.Outcome, error) {
	board, err := game.NewBoard(t.boardCfg)
	if err != nil {
		return game.Outcome{}, err
	}

	var pending [2]pendingUpdate
	mover := game.Player1
	for {
		idx := playerIndex(mover)
		key := StateKey(board, mover)
		legal := board.LegalMoves()

		// The mover is back on turn: settle their previous move against the
		// value of the position they ended up in.
		if p := pending[idx]; p.valid {
			t.table.Learn(p.key, p.action, t.cfg.Gamma*t.table.Max(key, legal), t.cfg.Alpha)
		}

		action := t.selectAction(key, legal, epsilon)
		pending[idx] = pendingUpdate{key: key, action: action, valid: true}
		if err := board.Apply(action, mover); err != nil {
			return game.Outcome{}, err
		}

		outcome := board.Outcome()
		switch outcome.Status {
		case game.Won:
			t.table.Learn(key, action, rewardWin, t.cfg.Alpha)
			if p := pending[1-idx]; p.valid {
				t.table.Learn(p.key, p.action, rewardLoss, t.cfg.Alpha)
			}
			return outcome, nil
		case game.Draw:
			t.table.Learn(key, action, rewardDraw, t.cfg.Alpha)
			if p := pending[1-idx]; p.valid {
				t.table.Learn(p.key, p.action, rewardDraw, t.cfg.Alpha)
			}
			return outcome, nil
		}
		mover = game.Opponent(mover)
	}
}

// selectAction is epsilon-greedy: explore uniformly with probability epsilon,
// otherwise exploit the current values with left-to-right tie-breaking.
func (t *Trainer) selectAction(key string, legal []int, epsilon float64) int {
	if t.rng.Float64() < epsilon {
		return legal[t.rng.Intn(len(legal))]
	}
	if col, seen := t.table.Best(key, legal); seen {
		return col
	}
	return legal[0]
}

func playerIndex(p game.Cell) int {
	if p == game.Player2 {
		return 1
	}
	return 0
}

// TrainParallel trains one table per worker over independent episodes and
// averages the results into a single table, the episode-isolated alternative
// to sharing one table across goroutines.
func TrainParallel(boardCfg game.Config, cfg TrainerConfig, workers int) (*QTable, Stats, error) {
	if workers <= 0 {
		workers = 1
	}

	tables := make([]*QTable, workers)
	results := make([]Stats, workers)
	errs := make([]error, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		tables[i] = NewQTable(boardCfg.Cols)
		workerCfg := cfg
		workerCfg.Seed = cfg.Seed + uint64(i)*0x9e3779b9
		workerCfg.LogEvery = 0
		trainer, err := NewTrainer(boardCfg, tables[i], workerCfg)
		if err != nil {
			return nil, Stats{}, err
		}
		wg.Add(1)
		go func(i int, trainer *Trainer) {
			defer wg.Done()
			results[i], errs[i] = trainer.Run()
		}(i, trainer)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, Stats{}, err
		}
	}

	merged := tables[0]
	merged.Merge(tables[1:]...)

	total := Stats{FinalEpsilon: results[0].FinalEpsilon}
	for _, s := range results {
		total.Episodes += s.Episodes
		total.P1Wins += s.P1Wins
		total.P2Wins += s.P2Wins
		total.Draws += s.Draws
	}
	total.States = merged.Len()
	return merged, total, nil
}
