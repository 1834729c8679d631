package main

import (
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"connectfour/experiments"
	"connectfour/game"
	"connectfour/learner"
)

const trainingWorkers = 4

func main() {
	boardCfg := game.SmallPreset.Config()

	table, stats, err := learner.TrainParallel(boardCfg, learner.TrainerConfig{
		Episodes:     20000,
		Alpha:        0.25,
		Gamma:        0.95,
		Epsilon:      0.4,
		EpsilonMin:   0.05,
		EpsilonDecay: 0.9997,
		Seed:         42,
	}, trainingWorkers)
	if err != nil {
		log.Fatal().Err(err).Msg("training failed")
	}
	log.Info().Msgf("trained %d episodes across %d workers: %d states, %d/%d/%d win/loss/draw",
		stats.Episodes, trainingWorkers, stats.States, stats.P1Wins, stats.P2Wins, stats.Draws)

	if err := saveTable(table, boardCfg); err != nil {
		log.Fatal().Err(err).Msg("failed to persist q-table")
	}

	if err := experiments.RunStrengthExperiment(boardCfg, table); err != nil {
		log.Fatal().Err(err).Msg("experiment failed")
	}
}

func saveTable(table *learner.QTable, boardCfg game.Config) error {
	path := learner.SavePath(boardCfg)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := table.Save(f); err != nil {
		return err
	}
	log.Info().Msgf("saved q-table with %d states to %s", table.Len(), path)
	return nil
}
