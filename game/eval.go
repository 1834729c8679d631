package game

// WinScore is the saturating magnitude Evaluate returns for decided games.
// Heuristic scores for undecided positions stay well inside (-WinScore,
// WinScore) so a real win always dominates.
const WinScore = 1 << 20

// Evaluate scores the board from perspective's point of view. A completed win
// saturates to +WinScore (-WinScore for a loss) and a draw is zero. Otherwise
// every window of ConnectLength consecutive cells contributes: windows held
// by a single player score by how full they already are, steeply favoring
// near-complete lines, while contested windows are dead and score nothing.
// A small per-piece bonus rewards presence near the center columns, where
// more winning lines intersect.
func Evaluate(b *Board, perspective Cell) int {
	switch out := b.Outcome(); out.Status {
	case Won:
		if out.Winner == perspective {
			return WinScore
		}
		return -WinScore
	case Draw:
		return 0
	}

	opponent := Opponent(perspective)
	length := b.cfg.ConnectLength
	score := 0
	for r := 0; r < b.cfg.Rows; r++ {
		for c := 0; c < b.cfg.Cols; c++ {
			for _, d := range directions {
				endR := r + (length-1)*d[0]
				endC := c + (length-1)*d[1]
				if endR < 0 || endR >= b.cfg.Rows || endC < 0 || endC >= b.cfg.Cols {
					continue
				}
				score += b.scoreWindow(r, c, d[0], d[1], perspective, opponent)
			}
		}
	}
	return score + b.centerBias(perspective)
}

func (b *Board) scoreWindow(row, col, dr, dc int, mine, theirs Cell) int {
	own, opp := 0, 0
	for i := 0; i < b.cfg.ConnectLength; i++ {
		switch b.cells[(row+i*dr)*b.cfg.Cols+col+i*dc] {
		case mine:
			own++
		case theirs:
			opp++
		}
	}
	if own > 0 && opp > 0 {
		return 0
	}
	if own > 0 {
		return own * own * own
	}
	return -opp * opp * opp
}

// centerBias scores each placed piece by its column's proximity to the
// horizontal center, positive for perspective and negative for the opponent.
func (b *Board) centerBias(perspective Cell) int {
	center := b.cfg.Cols / 2
	bias := 0
	for col := 0; col < b.cfg.Cols; col++ {
		closeness := center - abs(col-center)
		if closeness == 0 {
			continue
		}
		for row := 0; row < b.heights[col]; row++ {
			if b.cells[row*b.cfg.Cols+col] == perspective {
				bias += closeness
			} else {
				bias -= closeness
			}
		}
	}
	return bias
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
