package domain_test

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hangman-service/internal/domain"
)

var testNow = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func newGame(t *testing.T, word string, d domain.Difficulty) *domain.Game {
	t.Helper()
	g, err := domain.NewGame("g1", "alice", word, d, testNow)
	require.NoError(t, err)
	return g
}

func TestRevealMasksUnguessedPositions(t *testing.T) {
	assert.Equal(t, "______", domain.Reveal("CARPET", nil))
	assert.Equal(t, "C_____", domain.Reveal("CARPET", []string{"C"}))
	assert.Equal(t, "C___E_", domain.Reveal("CARPET", []string{"C", "Z", "E"}))
	assert.Equal(t, "B_BB__", domain.Reveal("BUBBLE", []string{"B"}))
}

func TestRevealWholeWordGuessRevealsEverything(t *testing.T) {
	assert.Equal(t, "CARPET", domain.Reveal("CARPET", []string{"Z", "CARPET"}))
	assert.Equal(t, "______", domain.Reveal("CARPET", []string{"CARPAT"}))
}

func TestRevealIsMonotonic(t *testing.T) {
	word := "MISSISSIPPI"
	guesses := []string{"S", "X", "MISS", "I", "P", "Q", "M"}
	prev := 0
	for i := range guesses {
		revealed := strings.Count(domain.Reveal(word, guesses[:i+1]), string(domain.Placeholder))
		revealed = len(word) - revealed
		assert.GreaterOrEqual(t, revealed, prev)
		assert.Equal(t, domain.Reveal(word, guesses[:i+1]), domain.Reveal(word, guesses[:i+1]))
		prev = revealed
	}
	assert.Equal(t, len(word), prev)
}

func TestNewGameRejectsShortWords(t *testing.T) {
	_, err := domain.NewGame("g1", "alice", "abc", domain.DifficultyNormal, testNow)
	require.ErrorIs(t, err, domain.ErrInvalidWord)

	_, err = domain.NewGame("g1", "alice", "", domain.DifficultyNormal, testNow)
	require.ErrorIs(t, err, domain.ErrInvalidWord)
}

func TestNewGameUppercasesAndSetsBudget(t *testing.T) {
	g := newGame(t, "carpet", domain.DifficultyHard)
	assert.Equal(t, "CARPET", g.Word)
	assert.Equal(t, 7, g.AttemptsAllowed)
	assert.Equal(t, 7, g.AttemptsRemaining)
	assert.Equal(t, domain.StatusActive, g.Status)
	assert.False(t, g.Over())
	assert.Empty(t, g.Guesses)
	assert.Empty(t, g.History)
}

func TestCarpetExample(t *testing.T) {
	g := newGame(t, "CARPET", domain.DifficultyNormal)

	out, err := g.Guess("C")
	require.NoError(t, err)
	assert.Equal(t, "C_____", g.Reveal())
	assert.Equal(t, 8, g.AttemptsRemaining)
	assert.Equal(t, "C_____ Keep Going!", out.Message)
	assert.False(t, out.Finished)

	out, err = g.Guess("Z")
	require.NoError(t, err)
	assert.Equal(t, "C_____", g.Reveal())
	assert.Equal(t, 7, g.AttemptsRemaining)
	assert.Equal(t, "C_____ Incorrect Guess! Keep Going!", out.Message)

	out, err = g.Guess("carpet")
	require.NoError(t, err)
	assert.True(t, out.Finished)
	assert.Equal(t, domain.StatusWon, g.Status)
	assert.Equal(t, "You win! Word is: CARPET", out.Message)
	assert.Equal(t, "Guess: CARPET, Result: You win! Word is: CARPET", g.History[len(g.History)-1])

	score := g.Score(testNow)
	assert.True(t, score.Won)
	assert.Equal(t, 1, score.Guesses)
	assert.Equal(t, domain.DifficultyNormal, score.Difficulty)
	assert.Equal(t, "alice", score.Owner)
}

func TestLossOnLastAttempt(t *testing.T) {
	g := &domain.Game{
		ID:                "g1",
		Owner:             "alice",
		Word:              "DOG",
		Difficulty:        domain.DifficultyNormal,
		AttemptsAllowed:   1,
		AttemptsRemaining: 1,
		Status:            domain.StatusActive,
	}

	out, err := g.Guess("X")
	require.NoError(t, err)
	assert.True(t, out.Finished)
	assert.Equal(t, domain.StatusLost, g.Status)
	assert.Equal(t, 0, g.AttemptsRemaining)
	assert.Contains(t, out.Message, "The word was DOG")

	score := g.Score(testNow)
	assert.False(t, score.Won)
	assert.Equal(t, 1, score.Guesses)
}

func TestWinByLetters(t *testing.T) {
	g := newGame(t, "BUBBLE", domain.DifficultyEasy)
	for _, l := range []string{"b", "u", "l"} {
		out, err := g.Guess(l)
		require.NoError(t, err)
		require.False(t, out.Finished)
	}
	out, err := g.Guess("e")
	require.NoError(t, err)
	assert.True(t, out.Finished)
	assert.Equal(t, "You win! Word is: BUBBLE", out.Message)
	assert.Equal(t, 0, g.Score(testNow).Guesses)
}

func TestDuplicateGuessIsFree(t *testing.T) {
	g := newGame(t, "DOGS", domain.DifficultyNormal)

	_, err := g.Guess("dog")
	require.NoError(t, err)
	remaining, count := g.AttemptsRemaining, len(g.Guesses)

	out, err := g.Guess("DOG")
	require.NoError(t, err)
	assert.Equal(t, domain.MsgAlreadyGuessed, out.Message)
	assert.False(t, out.Changed)
	assert.Equal(t, remaining, g.AttemptsRemaining)
	assert.Len(t, g.Guesses, count)

	_, err = g.Guess("x")
	require.NoError(t, err)
	out, err = g.Guess("X")
	require.NoError(t, err)
	assert.False(t, out.Changed)
	assert.Equal(t, remaining-1, g.AttemptsRemaining)
}

func TestFailedWordGuessAlwaysCosts(t *testing.T) {
	g := newGame(t, "CARPET", domain.DifficultyNormal)
	out, err := g.Guess("CARPETS")
	require.NoError(t, err)
	assert.Equal(t, 7, g.AttemptsRemaining)
	assert.Equal(t, "______ Incorrect Guess! Keep Going!", out.Message)
}

func TestInvalidGuesses(t *testing.T) {
	g := newGame(t, "CARPET", domain.DifficultyNormal)
	for _, raw := range []string{"", "a1", "car pet", "-"} {
		_, err := g.Guess(raw)
		require.Error(t, err, raw)
		assert.True(t, errors.Is(err, domain.ErrInvalidInput), raw)
	}
	assert.Empty(t, g.Guesses)
	assert.Equal(t, 8, g.AttemptsRemaining)
}

func TestTerminalGameIsFrozen(t *testing.T) {
	g := newGame(t, "CARPET", domain.DifficultyNormal)
	_, err := g.Guess("CARPET")
	require.NoError(t, err)

	guesses, history, remaining := len(g.Guesses), len(g.History), g.AttemptsRemaining
	out, err := g.Guess("Z")
	require.NoError(t, err)
	assert.Equal(t, domain.MsgAlreadyOver, out.Message)
	assert.False(t, out.Changed)
	assert.False(t, out.Finished)

	// Malformed guesses on a finished game are still a no-op message.
	out, err = g.Guess("1")
	require.NoError(t, err)
	assert.Equal(t, domain.MsgAlreadyOver, out.Message)

	cancel := g.Cancel()
	assert.Equal(t, domain.MsgCannotCancel, cancel.Message)
	assert.False(t, cancel.Finished)

	assert.Len(t, g.Guesses, guesses)
	assert.Len(t, g.History, history)
	assert.Equal(t, remaining, g.AttemptsRemaining)
	assert.Equal(t, domain.StatusWon, g.Status)
}

func TestAttemptsNeverIncrease(t *testing.T) {
	g := newGame(t, "ZEBRA", domain.DifficultyExpert)
	prev := g.AttemptsRemaining
	finished := 0
	for _, raw := range []string{"q", "e", "zebras", "q", "w", "x", "y", "v", "u"} {
		out, err := g.Guess(raw)
		require.NoError(t, err)
		if out.Finished {
			finished++
		}
		assert.LessOrEqual(t, g.AttemptsRemaining, prev)
		assert.GreaterOrEqual(t, g.AttemptsRemaining, 0)
		prev = g.AttemptsRemaining
	}
	assert.Equal(t, 1, finished)
	assert.Equal(t, domain.StatusLost, g.Status)
}

func TestCancel(t *testing.T) {
	g := newGame(t, "CARPET", domain.DifficultyNormal)
	_, err := g.Guess("Z")
	require.NoError(t, err)

	out := g.Cancel()
	assert.True(t, out.Finished)
	assert.Equal(t, domain.MsgCanceled, out.Message)
	assert.Equal(t, domain.StatusCanceled, g.Status)
	assert.True(t, g.Over())

	score := g.Score(testNow)
	assert.False(t, score.Won)
	assert.Equal(t, 1, score.Guesses)
}

func TestViewSnapshot(t *testing.T) {
	g := newGame(t, "CARPET", domain.DifficultyNormal)
	_, err := g.Guess("a")
	require.NoError(t, err)

	v := g.View("hello")
	assert.Equal(t, "g1", v.Key)
	assert.Equal(t, "_A____", v.GuessStatus)
	assert.Equal(t, []string{"A"}, v.Guesses)
	assert.Equal(t, "alice", v.UserName)
	assert.Equal(t, "hello", v.Message)
	assert.False(t, v.GameOver)

	v.Guesses[0] = "Q"
	assert.Equal(t, "A", g.Guesses[0])
}
