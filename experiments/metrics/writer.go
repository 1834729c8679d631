package metrics

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// AgentConfig identifies one agent configuration under evaluation.
type AgentConfig struct {
	ID    int
	Kind  string
	Depth int    // minimax only
	Seed  uint64 // randomized strategies only
}

// GameRecord is the result of a single evaluated game.
type GameRecord struct {
	ID       int
	Agent1   int // AgentConfig.ID, moving first
	Agent2   int // AgentConfig.ID, moving second
	Winner   string
	Moves    int
	Duration time.Duration
}

// MoveRecord is the per-move search cost within a game. Nodes and Cutoffs are
// zero for strategies that do not search.
type MoveRecord struct {
	Game     int // GameRecord.ID
	Step     int
	Player   string
	Column   int
	Nodes    int64
	Cutoffs  int64
	Duration time.Duration
}

// Writer stores experiment results as CSV files under a timestamped
// directory.
type Writer struct {
	baseDir string
}

func NewWriter(root, name string) (*Writer, error) {
	// Create a subfolder named by current timestamp
	timestamp := time.Now().UTC().Format(time.RFC3339)
	baseDir := filepath.Join(root, name, timestamp)
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}
	return &Writer{baseDir: baseDir}, nil
}

func (w *Writer) BaseDir() string { return w.baseDir }

func (w *Writer) WriteAgentConfigs(configs []AgentConfig) error {
	path := filepath.Join(w.baseDir, "agent_configs.csv")
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create agent configs file: %w", err)
	}
	defer f.Close()

	writer := csv.NewWriter(f)
	defer writer.Flush()

	header := []string{"id", "kind", "depth", "seed"}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write agent configs header: %w", err)
	}

	for _, config := range configs {
		row := []string{
			strconv.Itoa(config.ID),
			config.Kind,
			strconv.Itoa(config.Depth),
			strconv.FormatUint(config.Seed, 10),
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write agent config row: %w", err)
		}
	}
	return nil
}

func (w *Writer) WriteGameRecords(records []GameRecord) error {
	path := filepath.Join(w.baseDir, "game_records.csv")
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create game records file: %w", err)
	}
	defer f.Close()

	writer := csv.NewWriter(f)
	defer writer.Flush()

	header := []string{"id", "agent1", "agent2", "winner", "moves", "duration"}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write game records header: %w", err)
	}

	for _, record := range records {
		row := []string{
			strconv.Itoa(record.ID),
			strconv.Itoa(record.Agent1),
			strconv.Itoa(record.Agent2),
			record.Winner,
			strconv.Itoa(record.Moves),
			record.Duration.String(),
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write game record row: %w", err)
		}
	}
	return nil
}

func (w *Writer) WriteMoveRecords(records []MoveRecord) error {
	path := filepath.Join(w.baseDir, "move_records.csv")
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create move records file: %w", err)
	}
	defer f.Close()

	writer := csv.NewWriter(f)
	defer writer.Flush()

	header := []string{"game", "step", "player", "column", "nodes", "cutoffs", "duration"}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write move records header: %w", err)
	}

	for _, record := range records {
		row := []string{
			strconv.Itoa(record.Game),
			strconv.Itoa(record.Step),
			record.Player,
			strconv.Itoa(record.Column),
			strconv.FormatInt(record.Nodes, 10),
			strconv.FormatInt(record.Cutoffs, 10),
			record.Duration.String(),
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write move record row: %w", err)
		}
	}
	return nil
}
