package domain_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hangman-service/internal/domain"
)

func TestComputeRankingsFiltersByDifficulty(t *testing.T) {
	users := []domain.User{{Name: "alice"}, {Name: "bob"}, {Name: "carol"}}
	scores := []domain.Score{
		{Owner: "alice", Difficulty: domain.DifficultyEasy, Won: true},
		{Owner: "alice", Difficulty: domain.DifficultyEasy, Won: false},
		{Owner: "alice", Difficulty: domain.DifficultyEasy, Won: true},
		{Owner: "alice", Difficulty: domain.DifficultyHard, Won: false},
		{Owner: "bob", Difficulty: domain.DifficultyEasy, Won: true},
		{Owner: "bob", Difficulty: domain.DifficultyHard, Won: true},
		{Owner: "bob", Difficulty: domain.DifficultyHard, Won: true},
	}

	rankings := domain.ComputeRankings(users, scores, domain.DifficultyEasy)
	require.Len(t, rankings, 3)

	assert.Equal(t, "bob", rankings[0].UserName)
	assert.Equal(t, 100.0, rankings[0].WinPercentage)
	assert.Equal(t, 1, rankings[0].Games)

	assert.Equal(t, "alice", rankings[1].UserName)
	assert.Equal(t, 66.67, rankings[1].WinPercentage)
	assert.Equal(t, 2, rankings[1].Wins)
	assert.Equal(t, 3, rankings[1].Games)

	assert.Equal(t, "carol", rankings[2].UserName)
	assert.Equal(t, 0.0, rankings[2].WinPercentage)
	assert.Equal(t, 0, rankings[2].Games)
	assert.Equal(t, domain.DifficultyEasy, rankings[2].Difficulty)
}

func TestHighScoresOrdering(t *testing.T) {
	day := func(d int) time.Time { return time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC) }
	scores := []domain.Score{
		{GameID: "a", Difficulty: domain.DifficultyNormal, Won: true, Guesses: 3, Date: day(1)},
		{GameID: "b", Difficulty: domain.DifficultyNormal, Won: true, Guesses: 1, Date: day(2)},
		{GameID: "c", Difficulty: domain.DifficultyNormal, Won: false, Guesses: 0, Date: day(3)},
		{GameID: "d", Difficulty: domain.DifficultyHard, Won: true, Guesses: 0, Date: day(4)},
		{GameID: "e", Difficulty: domain.DifficultyNormal, Won: true, Guesses: 1, Date: day(5)},
		{GameID: "f", Difficulty: domain.DifficultyNormal, Won: true, Guesses: 2, Date: day(6)},
	}

	top := domain.HighScores(scores, domain.DifficultyNormal, 3)
	ids := make([]string, 0, len(top))
	for _, s := range top {
		ids = append(ids, s.GameID)
	}
	assert.Equal(t, []string{"e", "b", "f"}, ids)

	assert.Len(t, domain.HighScores(scores, domain.DifficultyNormal, 10), 4)
	assert.Empty(t, domain.HighScores(scores, domain.DifficultyNormal, 0))
	assert.Empty(t, domain.HighScores(scores, domain.DifficultyEasy, 5))
}
