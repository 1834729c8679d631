package learner

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"connectfour/game"
)

// StateKey encodes the full board relative to the player about to move: the
// mover's own pieces read 'm' and the opponent's 'o'. Each column is written
// as its piece count followed by the pieces bottom-up, columns joined by '|',
// so boards differing in any cell get distinct keys and the same board always
// encodes identically. Encoding relative to the mover lets both self-play
// sides share one table.
func StateKey(b *game.Board, mover game.Cell) string {
	cfg := b.Config()
	var sb strings.Builder
	sb.Grow(cfg.Cols * (cfg.Rows + 2))
	for col := 0; col < cfg.Cols; col++ {
		if col > 0 {
			sb.WriteByte('|')
		}
		height := b.Height(col)
		sb.WriteString(strconv.Itoa(height))
		for row := 0; row < height; row++ {
			if b.Cell(row, col) == mover {
				sb.WriteByte('m')
			} else {
				sb.WriteByte('o')
			}
		}
	}
	return sb.String()
}

// QTable maps state keys to per-column action values. Unseen states default
// to zero. All accesses are guarded, so training workers may share a table;
// interactive play only ever reads.
type QTable struct {
	mu     sync.RWMutex
	cols   int
	values map[string][]float64
}

func NewQTable(cols int) *QTable {
	return &QTable{
		cols:   cols,
		values: make(map[string][]float64),
	}
}

func (t *QTable) Cols() int { return t.cols }

// Len is the number of states the table has seen.
func (t *QTable) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.values)
}

// Lookup returns a copy of the action values for key, or nil when unseen.
func (t *QTable) Lookup(key string) []float64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	row, ok := t.values[key]
	if !ok {
		return nil
	}
	return append([]float64(nil), row...)
}

// Best returns the legal action with the highest value, preferring the
// leftmost column on ties. The second result is false when the state is
// unseen or its legal actions are still indistinguishable, so callers can
// fall back to a better default than an arbitrary fixed column.
func (t *QTable) Best(key string, legal []int) (int, bool) {
	if len(legal) == 0 {
		return 0, false
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	row, ok := t.values[key]
	if !ok {
		return 0, false
	}
	best := legal[0]
	bestValue := row[best]
	distinct := false
	for _, col := range legal[1:] {
		if row[col] != bestValue {
			distinct = true
		}
		if row[col] > bestValue {
			best, bestValue = col, row[col]
		}
	}
	if !distinct {
		return 0, false
	}
	return best, true
}

// Max returns the highest value among the legal actions, zero for unseen
// states or when no action is legal.
func (t *QTable) Max(key string, legal []int) float64 {
	if len(legal) == 0 {
		return 0
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	row, ok := t.values[key]
	if !ok {
		return 0
	}
	max := row[legal[0]]
	for _, col := range legal[1:] {
		if row[col] > max {
			max = row[col]
		}
	}
	return max
}

// Learn nudges Q(key, action) toward target by the learning rate alpha.
func (t *QTable) Learn(key string, action int, target, alpha float64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	row, ok := t.values[key]
	if !ok {
		row = make([]float64, t.cols)
		t.values[key] = row
	}
	row[action] += alpha * (target - row[action])
}

// Merge folds independently trained tables into t, averaging each state's
// action values across the tables that have seen it.
func (t *QTable) Merge(others ...*QTable) {
	t.mu.Lock()
	defer t.mu.Unlock()

	counts := make(map[string]int, len(t.values))
	for key := range t.values {
		counts[key] = 1
	}
	for _, other := range others {
		other.mu.RLock()
		for key, row := range other.values {
			dst, ok := t.values[key]
			if !ok {
				dst = make([]float64, t.cols)
				t.values[key] = dst
			}
			for i, v := range row {
				dst[i] += v
			}
			counts[key]++
		}
		other.mu.RUnlock()
	}
	for key, n := range counts {
		if n < 2 {
			continue
		}
		row := t.values[key]
		for i := range row {
			row[i] /= float64(n)
		}
	}
}

type qtableFile struct {
	Cols   int                  `json:"cols"`
	Values map[string][]float64 `json:"values"`
}

// Save writes the table as JSON. Map keys are emitted in sorted order, so
// saving a freshly loaded table reproduces the file byte for byte.
func (t *QTable) Save(w io.Writer) error {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if err := json.NewEncoder(w).Encode(qtableFile{Cols: t.cols, Values: t.values}); err != nil {
		return fmt.Errorf("failed to encode q-table: %w", err)
	}
	return nil
}

// Load reads a table previously written by Save.
func Load(r io.Reader) (*QTable, error) {
	var file qtableFile
	if err := json.NewDecoder(r).Decode(&file); err != nil {
		return nil, fmt.Errorf("failed to decode q-table: %w", err)
	}
	if file.Cols <= 0 {
		return nil, fmt.Errorf("q-table has invalid column count %d", file.Cols)
	}
	for key, row := range file.Values {
		if len(row) != file.Cols {
			return nil, fmt.Errorf("q-table row for state %q has %d values, want %d", key, len(row), file.Cols)
		}
	}
	table := &QTable{cols: file.Cols, values: file.Values}
	if table.values == nil {
		table.values = make(map[string][]float64)
	}
	return table, nil
}

// SavePath names a table file by board geometry, e.g. rl_data/qtable_7x6.json.
func SavePath(cfg game.Config) string {
	return filepath.Join("rl_data", fmt.Sprintf("qtable_%dx%d.json", cfg.Cols, cfg.Rows))
}
