package learner

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"connectfour/game"
)

func boardWithMoves(t *testing.T, cfg game.Config, moves map[int][]game.Cell) *game.Board {
	t.Helper()
	b, err := game.NewBoard(cfg)
	require.NoError(t, err)
	for col := 0; col < cfg.Cols; col++ {
		for _, player := range moves[col] {
			require.NoError(t, b.Apply(col, player))
		}
	}
	return b
}

func TestStateKey(t *testing.T) {
	t.Run("distinguishes boards differing in one cell", func(t *testing.T) {
		cfg := game.SmallPreset.Config()
		a := boardWithMoves(t, cfg, map[int][]game.Cell{0: {game.Player1}})
		b := boardWithMoves(t, cfg, map[int][]game.Cell{1: {game.Player1}})
		c := boardWithMoves(t, cfg, map[int][]game.Cell{0: {game.Player2}})

		require.NotEqual(t, StateKey(a, game.Player1), StateKey(b, game.Player1))
		require.NotEqual(t, StateKey(a, game.Player1), StateKey(c, game.Player1))
	})

	t.Run("is stable for the same board", func(t *testing.T) {
		cfg := game.DefaultConfig()
		b := boardWithMoves(t, cfg, map[int][]game.Cell{
			3: {game.Player1, game.Player2},
			4: {game.Player1},
		})
		require.Equal(t, StateKey(b, game.Player1), StateKey(b, game.Player1))
	})

	t.Run("is relative to the player about to move", func(t *testing.T) {
		cfg := game.SmallPreset.Config()
		a := boardWithMoves(t, cfg, map[int][]game.Cell{
			0: {game.Player1},
			1: {game.Player2},
		})
		mirrored := boardWithMoves(t, cfg, map[int][]game.Cell{
			0: {game.Player2},
			1: {game.Player1},
		})

		require.Equal(t, StateKey(a, game.Player1), StateKey(mirrored, game.Player2),
			"Color-swapped boards should share one entry when seen from the mover")
		require.NotEqual(t, StateKey(a, game.Player1), StateKey(a, game.Player2))
	})

	t.Run("separates columns so heights stay unambiguous", func(t *testing.T) {
		cfg := game.SmallPreset.Config()
		stacked := boardWithMoves(t, cfg, map[int][]game.Cell{
			0: {game.Player1, game.Player1},
		})
		spread := boardWithMoves(t, cfg, map[int][]game.Cell{
			0: {game.Player1},
			1: {game.Player1},
		})

		require.NotEqual(t, StateKey(stacked, game.Player1), StateKey(spread, game.Player1))
		require.True(t, strings.Contains(StateKey(stacked, game.Player1), "|"))
	})
}

func TestQTable(t *testing.T) {
	t.Run("unseen states read as empty", func(t *testing.T) {
		table := NewQTable(4)
		require.Equal(t, 0, table.Len())
		require.Nil(t, table.Lookup("nowhere"))
		require.Equal(t, 0.0, table.Max("nowhere", []int{0, 1, 2, 3}))

		_, seen := table.Best("nowhere", []int{0, 1, 2, 3})
		require.False(t, seen)
	})

	t.Run("learn moves the value toward the target", func(t *testing.T) {
		table := NewQTable(4)
		table.Learn("s", 2, 1.0, 0.5)
		require.Equal(t, []float64{0, 0, 0.5, 0}, table.Lookup("s"))

		table.Learn("s", 2, 1.0, 0.5)
		require.Equal(t, 0.75, table.Lookup("s")[2])
	})

	t.Run("best picks the highest legal value", func(t *testing.T) {
		table := NewQTable(4)
		table.Learn("s", 1, 0.2, 1.0)
		table.Learn("s", 3, 0.9, 1.0)

		col, seen := table.Best("s", []int{0, 1, 2, 3})
		require.True(t, seen)
		require.Equal(t, 3, col)
	})

	t.Run("best ignores illegal columns", func(t *testing.T) {
		table := NewQTable(4)
		table.Learn("s", 3, 0.9, 1.0)
		table.Learn("s", 1, 0.2, 1.0)

		col, seen := table.Best("s", []int{0, 1, 2})
		require.True(t, seen)
		require.Equal(t, 1, col, "The best value overall sits in a full column and must be skipped")
	})

	t.Run("best reports indistinct states as unseen", func(t *testing.T) {
		table := NewQTable(4)
		table.Learn("s", 0, 0.5, 1.0)
		table.Learn("s", 1, 0.5, 1.0)

		_, seen := table.Best("s", []int{0, 1})
		require.False(t, seen, "Equal values carry no preference and should defer to the caller's fallback")

		_, seen = table.Best("s", nil)
		require.False(t, seen)
	})

	t.Run("merge averages values across tables", func(t *testing.T) {
		a := NewQTable(4)
		a.Learn("shared", 0, 4.0, 1.0)
		a.Learn("only-a", 1, 1.0, 1.0)

		b := NewQTable(4)
		b.Learn("shared", 0, 2.0, 1.0)
		b.Learn("only-b", 2, 3.0, 1.0)

		a.Merge(b)

		require.Equal(t, 3, a.Len())
		require.Equal(t, 3.0, a.Lookup("shared")[0], "Overlapping states average")
		require.Equal(t, 1.0, a.Lookup("only-a")[1], "States seen once keep their values")
		require.Equal(t, 3.0, a.Lookup("only-b")[2])
	})
}

func TestSaveLoad(t *testing.T) {
	t.Run("round-trips exactly", func(t *testing.T) {
		table := NewQTable(4)
		table.Learn("2mo|0|1m|0", 1, 0.75, 1.0)
		table.Learn("0|0|0|0", 2, -0.25, 1.0)

		var first bytes.Buffer
		require.NoError(t, table.Save(&first))

		loaded, err := Load(bytes.NewReader(first.Bytes()))
		require.NoError(t, err)
		require.Equal(t, table.Len(), loaded.Len())
		require.Equal(t, table.Cols(), loaded.Cols())
		require.Equal(t, table.Lookup("0|0|0|0"), loaded.Lookup("0|0|0|0"))

		var second bytes.Buffer
		require.NoError(t, loaded.Save(&second))
		require.Equal(t, first.Bytes(), second.Bytes(),
			"Saving a loaded table should reproduce the file byte for byte")
	})

	t.Run("rejects corrupt files", func(t *testing.T) {
		_, err := Load(strings.NewReader("not json"))
		require.Error(t, err)

		_, err = Load(strings.NewReader(`{"cols":0,"values":{}}`))
		require.Error(t, err)

		_, err = Load(strings.NewReader(`{"cols":4,"values":{"s":[1,2]}}`))
		require.Error(t, err, "Row lengths must match the column count")
	})

	t.Run("save path names the board geometry", func(t *testing.T) {
		require.Equal(t, "rl_data/qtable_7x6.json", SavePath(game.DefaultConfig()))
		require.Equal(t, "rl_data/qtable_4x4.json", SavePath(game.SmallPreset.Config()))
	})
}
