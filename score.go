package tetris

import (
	"math"
	"time"
)

const (
	linesPerLevel = 10
	comboBonus    = 50
)

// Points for clearing 1 to 4 lines at level 1, when the bottom row is
// left empty and otherwise.
var (
	clearBonusPoints = [...]int{1: 800, 2: 1200, 3: 1800, 4: 2000}
	linePoints       = [...]int{1: 100, 2: 300, 3: 500, 4: 800}
)

// linesScore is what clearing the given number of lines is worth, before
// the combo bonus. Counts outside 1..4 are worth nothing.
func linesScore(lines, level int, bottomEmpty bool) int {
	if lines < 1 || lines >= len(linePoints) {
		return 0
	}
	if bottomEmpty {
		return clearBonusPoints[lines] * level
	}
	return linePoints[lines] * level
}

// award scores the lines cleared by one lock and advances the combo and
// level counters. A lock that clears nothing only breaks the combo.
func (s *Session) award(lines int) {
	if lines == 0 {
		s.combo = 0
		return
	}

	s.score += linesScore(lines, s.level, s.grid.RowEmpty(Rows-1))
	if s.combo > 0 {
		s.score += comboBonus * s.combo * s.level
	}
	s.combo++

	s.totalLines += lines
	s.lines += lines
	for s.lines >= linesPerLevel {
		s.level++
		s.lines -= linesPerLevel
	}
}

// GravityInterval is how long a piece hangs on each row at the given
// level.
func GravityInterval(level int) time.Duration {
	if level < 1 {
		level = 1
	}
	n := float64(level - 1)
	ms := int(1000 * math.Pow(0.8-n*0.007, n))
	if ms < 1 {
		ms = 1
	}
	return time.Duration(ms) * time.Millisecond
}
