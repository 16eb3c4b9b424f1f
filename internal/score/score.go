package score

import (
	"math"
	"time"

	"github.com/ohadf2015/boggle-new-sub010/internal/constants"
)

// BaseScore returns the length-based score of a word. One-letter words score
// nothing; an empty word signals invalid input with -1.
func BaseScore(word string) int {
	n := len(word)
	switch {
	case n == 0:
		return -1
	case n == 1:
		return 0
	default:
		return n - 1
	}
}

// comboFactor scales the combo level by word length. Seven letters and up
// share the top factor.
func comboFactor(length int) float64 {
	switch {
	case length >= 7:
		return 2.0
	case length == 6:
		return 1.5
	case length == 5:
		return 1.0
	case length == 4:
		return 0.5
	default:
		return 0.25
	}
}

// ComboBonus is the integer bonus for submitting a word at a given combo
// level. Level is clamped to [0, 10]; negative levels earn nothing.
func ComboBonus(level, length int) int {
	if level <= 0 {
		return 0
	}
	if level > constants.ComboLevelCap {
		level = constants.ComboLevelCap
	}
	return int(math.Floor(comboFactor(length) * float64(level)))
}

// CalculateWordScore is the authoritative score for an accepted word.
func CalculateWordScore(word string, comboLevel int) int {
	return BaseScore(word) + ComboBonus(comboLevel, len(word))
}

// LegacyComboMultiplier is kept for compatibility displays only; the
// authoritative score never uses it.
func LegacyComboMultiplier(comboLevel int) float64 {
	switch {
	case comboLevel <= 2:
		return 1.00
	case comboLevel <= 4:
		return 1.25
	case comboLevel <= 6:
		return 1.50
	case comboLevel <= 8:
		return 1.75
	case comboLevel <= 10:
		return 2.00
	default:
		return 2.25
	}
}

// ComboWindow is how long the combo stays alive after a word at the given
// level: it grows with the level and caps at ten seconds.
func ComboWindow(level int) time.Duration {
	ms := constants.ComboWindowBaseMs + level*constants.ComboWindowStepMs
	if ms > constants.ComboWindowMaxMs {
		ms = constants.ComboWindowMaxMs
	}
	return time.Duration(ms) * time.Millisecond
}
