package domain

import (
	"math"
	"sort"
)

// ComputeRankings derives per-user win percentages at difficulty d. Scores
// are filtered to d before both the win count and the game count are taken;
// users without games at d rank with 0%.
func ComputeRankings(users []User, scores []Score, d Difficulty) []Ranking {
	type tally struct{ wins, games int }
	tallies := make(map[string]*tally, len(users))
	for _, u := range users {
		tallies[u.Name] = &tally{}
	}
	for _, s := range scores {
		if s.Difficulty != d {
			continue
		}
		t, ok := tallies[s.Owner]
		if !ok {
			continue
		}
		t.games++
		if s.Won {
			t.wins++
		}
	}

	rankings := make([]Ranking, 0, len(users))
	for _, u := range users {
		t := tallies[u.Name]
		rankings = append(rankings, Ranking{
			UserName:      u.Name,
			Difficulty:    d,
			WinPercentage: winPercentage(t.wins, t.games),
			Wins:          t.wins,
			Games:         t.games,
		})
	}

	// Best percentage first, then more wins, then name.
	sort.SliceStable(rankings, func(i, j int) bool {
		if rankings[i].WinPercentage != rankings[j].WinPercentage {
			return rankings[i].WinPercentage > rankings[j].WinPercentage
		}
		if rankings[i].Wins != rankings[j].Wins {
			return rankings[i].Wins > rankings[j].Wins
		}
		return rankings[i].UserName < rankings[j].UserName
	})
	return rankings
}

func winPercentage(wins, games int) float64 {
	if games == 0 {
		return 0
	}
	return math.Round(float64(wins)/float64(games)*100*100) / 100
}

// HighScores keeps the won scores at difficulty d, fewest guesses first and
// most recent first among ties, truncated to limit.
func HighScores(scores []Score, d Difficulty, limit int) []Score {
	out := make([]Score, 0, len(scores))
	for _, s := range scores {
		if s.Difficulty == d && s.Won {
			out = append(out, s)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Guesses != out[j].Guesses {
			return out[i].Guesses < out[j].Guesses
		}
		return out[i].Date.After(out[j].Date)
	})
	if limit >= 0 && limit < len(out) {
		out = out[:limit]
	}
	return out
}
