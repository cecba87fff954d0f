package domain

import (
	"math/rand"
	"strings"
)

// Difficulty is the closed set of game levels.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "EASY"
	DifficultyNormal Difficulty = "NORMAL"
	DifficultyHard   Difficulty = "HARD"
	DifficultyExpert Difficulty = "EXPERT"
)

// Difficulties lists every valid level in ascending order.
var Difficulties = []Difficulty{DifficultyEasy, DifficultyNormal, DifficultyHard, DifficultyExpert}

// ParseDifficulty validates a required difficulty value (case-insensitive).
func ParseDifficulty(raw string) (Difficulty, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", ErrMissingLevel
	}
	d := Difficulty(strings.ToUpper(raw))
	if !d.Valid() {
		return "", ErrInvalidLevel
	}
	return d, nil
}

// ParseOptionalDifficulty is ParseDifficulty for call sites where the level
// may be omitted; empty or "NONE" selects NORMAL.
func ParseOptionalDifficulty(raw string) (Difficulty, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.EqualFold(raw, "none") {
		return DifficultyNormal, nil
	}
	return ParseDifficulty(raw)
}

func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyEasy, DifficultyNormal, DifficultyHard, DifficultyExpert:
		return true
	}
	return false
}

// WordLengthRange returns the half-open [min, max) range of word lengths.
func (d Difficulty) WordLengthRange() (int, int) {
	switch d {
	case DifficultyEasy:
		return 4, 6
	case DifficultyNormal:
		return 6, 9
	case DifficultyHard:
		return 9, 13
	case DifficultyExpert:
		return 7, 18
	default:
		return 6, 8
	}
}

// AttemptsAllowed is the number of incorrect guesses a game tolerates.
func (d Difficulty) AttemptsAllowed() int {
	switch d {
	case DifficultyEasy:
		return 9
	case DifficultyNormal:
		return 8
	case DifficultyHard:
		return 7
	case DifficultyExpert:
		return 5
	default:
		return 8
	}
}

// RandomWordLength picks a length uniformly from WordLengthRange.
func (d Difficulty) RandomWordLength(rnd *rand.Rand) int {
	lo, hi := d.WordLengthRange()
	return lo + rnd.Intn(hi-lo)
}
