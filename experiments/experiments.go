package experiments

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"connectfour/agent"
	"connectfour/engine"
	"connectfour/experiments/metrics"
	"connectfour/game"
	"connectfour/learner"
	"connectfour/searcher"
)

const NumGames = 50 // Per matchup, alternating the starting seat

// RunStrengthExperiment pits every other strategy against the random
// baseline on the given board and writes agent configs, game records and
// per-move search costs to CSV.
func RunStrengthExperiment(boardCfg game.Config, table *learner.QTable) error {
	configs := []metrics.AgentConfig{
		{ID: 0, Kind: "random", Seed: 1},
		{ID: 1, Kind: "heuristic"},
		{ID: 2, Kind: "minimax", Depth: 4},
		{ID: 3, Kind: "minimax", Depth: 6},
		{ID: 4, Kind: "qlearning"},
	}
	baseline := configs[0]
	matchUps := [][2]metrics.AgentConfig{}
	for _, config := range configs[1:] {
		matchUps = append(matchUps, [2]metrics.AgentConfig{baseline, config})
	}
	return runExperiment("strength_vs_random", boardCfg, table, configs, matchUps)
}

func runExperiment(name string, boardCfg game.Config, table *learner.QTable,
	configs []metrics.AgentConfig, matchUps [][2]metrics.AgentConfig) error {
	writer, err := metrics.NewWriter("experiments", name)
	if err != nil {
		return fmt.Errorf("failed to create experiment writer: %w", err)
	}
	if err := writer.WriteAgentConfigs(configs); err != nil {
		return fmt.Errorf("failed to store agent configs: %w", err)
	}

	log.Info().Msgf("starting %s experiment...", name)

	count := 0
	gameRecords := []metrics.GameRecord{}
	moveRecords := []metrics.MoveRecord{}
	for mi, matchup := range matchUps {
		log.Info().Msgf("starting matchup %d of %d between agent %d (%s) and agent %d (%s)...",
			mi+1, len(matchUps), matchup[0].ID, matchup[0].Kind, matchup[1].ID, matchup[1].Kind)

		wins := map[int]int{}
		draws := 0
		for i := 0; i < NumGames; i++ {
			// Alternate the starting seat so neither agent banks the
			// first-move advantage.
			first, second := matchup[0], matchup[1]
			if i%2 == 1 {
				first, second = second, first
			}

			count++
			gameRecord, gameMoves, err := runGame(count, boardCfg, table, first, second)
			if err != nil {
				return err
			}
			gameRecords = append(gameRecords, gameRecord)
			moveRecords = append(moveRecords, gameMoves...)

			switch gameRecord.Winner {
			case game.Player1.String():
				wins[first.ID]++
			case game.Player2.String():
				wins[second.ID]++
			default:
				draws++
			}
		}

		log.Info().Msgf("completed matchup %d of %d: agent %d won %d, agent %d won %d, %d draws over %d games",
			mi+1, len(matchUps), matchup[0].ID, wins[matchup[0].ID], matchup[1].ID, wins[matchup[1].ID], draws, NumGames)
	}

	if err := writer.WriteGameRecords(gameRecords); err != nil {
		return fmt.Errorf("failed to write game records: %w", err)
	}
	if err := writer.WriteMoveRecords(moveRecords); err != nil {
		return fmt.Errorf("failed to write move records: %w", err)
	}

	log.Info().Msgf("completed %s experiment, results in %s", name, writer.BaseDir())
	return nil
}

// runGame executes a single game between two agent configs, first moving
// first, and returns its records.
func runGame(gameID int, boardCfg game.Config, table *learner.QTable,
	first, second metrics.AgentConfig) (metrics.GameRecord, []metrics.MoveRecord, error) {
	collectors := map[game.Cell]searcher.Collector{}

	strategy1, err := buildStrategy(first, table, uint64(gameID), game.Player1, collectors)
	if err != nil {
		return metrics.GameRecord{}, nil, err
	}
	strategy2, err := buildStrategy(second, table, uint64(gameID), game.Player2, collectors)
	if err != nil {
		return metrics.GameRecord{}, nil, err
	}

	e, err := engine.New(boardCfg, strategy1, strategy2)
	if err != nil {
		return metrics.GameRecord{}, nil, err
	}

	start := time.Now()
	moveRecords := []metrics.MoveRecord{}
	step := 0
	for !e.Done() {
		update, err := e.Step()
		if err != nil {
			return metrics.GameRecord{}, nil, err
		}
		step++
		record := metrics.MoveRecord{
			Game:   gameID,
			Step:   step,
			Player: update.Player.String(),
			Column: update.Column,
		}
		if collector := collectors[update.Player]; collector != nil {
			searchMetrics := collector.Complete()
			record.Nodes = searchMetrics.Nodes
			record.Cutoffs = searchMetrics.Cutoffs
			record.Duration = searchMetrics.Duration
		}
		moveRecords = append(moveRecords, record)
	}

	outcome := e.Board().Outcome()
	winner := "Draw"
	if outcome.Status == game.Won {
		winner = outcome.Winner.String()
	}
	gameRecord := metrics.GameRecord{
		ID:       gameID,
		Agent1:   first.ID,
		Agent2:   second.ID,
		Winner:   winner,
		Moves:    e.Board().MoveCount(),
		Duration: time.Since(start),
	}
	return gameRecord, moveRecords, nil
}

func buildStrategy(cfg metrics.AgentConfig, table *learner.QTable, gameSeed uint64,
	seat game.Cell, collectors map[game.Cell]searcher.Collector) (*agent.Strategy, error) {
	switch cfg.Kind {
	case "random":
		return agent.NewRandom(cfg.Seed + gameSeed*31), nil
	case "heuristic":
		return agent.NewHeuristic(), nil
	case "minimax":
		collector := searcher.NewCollector()
		collectors[seat] = collector
		return agent.NewMinimax(cfg.Depth, searcher.WithCollector(collector)), nil
	case "qlearning":
		if table == nil {
			return nil, fmt.Errorf("qlearning agent needs a trained table")
		}
		return agent.NewQLearning(table), nil
	default:
		return nil, fmt.Errorf("unknown agent kind %q", cfg.Kind)
	}
}
