package metrics

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestWriter(t *testing.T) {
	t.Run("creates a timestamped experiment directory", func(t *testing.T) {
		root := t.TempDir()
		writer, err := NewWriter(root, "strength")
		require.NoError(t, err)

		require.DirExists(t, writer.BaseDir())
		rel, err := filepath.Rel(root, writer.BaseDir())
		require.NoError(t, err)
		require.Equal(t, "strength", filepath.Dir(rel))
	})

	t.Run("writes agent configs with a header", func(t *testing.T) {
		writer, err := NewWriter(t.TempDir(), "test")
		require.NoError(t, err)

		configs := []AgentConfig{
			{ID: 0, Kind: "random", Seed: 7},
			{ID: 1, Kind: "minimax", Depth: 4},
		}
		require.NoError(t, writer.WriteAgentConfigs(configs))

		rows := readCSV(t, filepath.Join(writer.BaseDir(), "agent_configs.csv"))
		require.Len(t, rows, 3)
		require.Equal(t, []string{"id", "kind", "depth", "seed"}, rows[0])
		require.Equal(t, []string{"0", "random", "0", "7"}, rows[1])
		require.Equal(t, []string{"1", "minimax", "4", "0"}, rows[2])
	})

	t.Run("writes game and move records", func(t *testing.T) {
		writer, err := NewWriter(t.TempDir(), "test")
		require.NoError(t, err)

		games := []GameRecord{
			{ID: 1, Agent1: 0, Agent2: 2, Winner: "Player1", Moves: 9, Duration: 2 * time.Millisecond},
		}
		require.NoError(t, writer.WriteGameRecords(games))

		moves := []MoveRecord{
			{Game: 1, Step: 1, Player: "Player1", Column: 3, Nodes: 120, Cutoffs: 14, Duration: time.Millisecond},
			{Game: 1, Step: 2, Player: "Player2", Column: 2},
		}
		require.NoError(t, writer.WriteMoveRecords(moves))

		gameRows := readCSV(t, filepath.Join(writer.BaseDir(), "game_records.csv"))
		require.Len(t, gameRows, 2)
		require.Equal(t, []string{"1", "0", "2", "Player1", "9", "2ms"}, gameRows[1])

		moveRows := readCSV(t, filepath.Join(writer.BaseDir(), "move_records.csv"))
		require.Len(t, moveRows, 3)
		require.Equal(t, []string{"game", "step", "player", "column", "nodes", "cutoffs", "duration"}, moveRows[0])
		require.Equal(t, []string{"1", "1", "Player1", "3", "120", "14", "1ms"}, moveRows[1])
		require.Equal(t, []string{"1", "2", "Player2", "2", "0", "0", "0s"}, moveRows[2])
	})
}
