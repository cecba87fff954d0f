package memory

import (
	"context"
	"testing"
	"time"

	"hangman-service/internal/app"
	"hangman-service/internal/domain"
)

func TestStoreUsers(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	if err := store.CreateUser(ctx, domain.User{Name: "bob"}); err != nil {
		t.Fatalf("create user: %v", err)
	}
	if err := store.CreateUser(ctx, domain.User{Name: "alice", Email: "a@example.com"}); err != nil {
		t.Fatalf("create user: %v", err)
	}
	if err := store.CreateUser(ctx, domain.User{Name: "bob"}); err != domain.ErrUserExists {
		t.Fatalf("expected duplicate error, got %v", err)
	}

	user, err := store.GetUser(ctx, "alice")
	if err != nil || user.Email != "a@example.com" {
		t.Fatalf("expected alice, got %+v (%v)", user, err)
	}
	if _, err := store.GetUser(ctx, "nobody"); err != domain.ErrUserNotFound {
		t.Fatalf("expected not found, got %v", err)
	}

	users, _ := store.ListUsers(ctx)
	if len(users) != 2 || users[0].Name != "alice" || users[1].Name != "bob" {
		t.Fatalf("expected users sorted by name, got %+v", users)
	}
}

func TestStoreGamesAreCopied(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	game := sampleGame(t, "g1", "alice", time.Unix(1, 0))

	if err := store.CreateGame(ctx, game); err != nil {
		t.Fatalf("create game: %v", err)
	}
	game.Guesses = append(game.Guesses, "Z")

	loaded, err := store.GetGame(ctx, "g1")
	if err != nil {
		t.Fatalf("get game: %v", err)
	}
	if len(loaded.Guesses) != 0 {
		t.Fatalf("expected stored game to be isolated, got %v", loaded.Guesses)
	}

	if _, err := store.GetGame(ctx, "missing"); err != domain.ErrGameNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestStoreFinishGameOnce(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	game := sampleGame(t, "g1", "alice", time.Unix(1, 0))
	_ = store.CreateGame(ctx, game)

	game.Cancel()
	if err := store.FinishGame(ctx, game, game.Score(time.Unix(2, 0))); err != nil {
		t.Fatalf("finish game: %v", err)
	}
	if err := store.FinishGame(ctx, game, game.Score(time.Unix(3, 0))); err != domain.ErrGameFinished {
		t.Fatalf("expected second finish to fail, got %v", err)
	}
	if err := store.UpdateGame(ctx, game); err != domain.ErrGameFinished {
		t.Fatalf("expected update of finished game to fail, got %v", err)
	}

	scores, _ := store.ListScores(ctx, app.ScoreFilter{})
	if len(scores) != 1 {
		t.Fatalf("expected exactly one score, got %d", len(scores))
	}
	active, _ := store.ListActiveGames(ctx)
	if len(active) != 0 {
		t.Fatalf("expected no active games, got %d", len(active))
	}
}

func TestStoreListings(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	_ = store.CreateGame(ctx, sampleGame(t, "g2", "alice", time.Unix(20, 0)))
	_ = store.CreateGame(ctx, sampleGame(t, "g1", "alice", time.Unix(10, 0)))
	_ = store.CreateGame(ctx, sampleGame(t, "g3", "bob", time.Unix(30, 0)))

	games, _ := store.ListGamesByOwner(ctx, "alice")
	if len(games) != 2 || games[0].ID != "g1" || games[1].ID != "g2" {
		t.Fatalf("expected alice's games in creation order, got %d", len(games))
	}

	won := sampleGame(t, "g4", "bob", time.Unix(40, 0))
	_ = store.CreateGame(ctx, won)
	_, _ = won.Guess("CARPET")
	_ = store.FinishGame(ctx, won, won.Score(time.Unix(41, 0)))

	scores, _ := store.ListScores(ctx, app.ScoreFilter{Owner: "bob", WonOnly: true, Difficulty: domain.DifficultyNormal})
	if len(scores) != 1 || scores[0].GameID != "g4" {
		t.Fatalf("expected bob's win, got %+v", scores)
	}
	scores, _ = store.ListScores(ctx, app.ScoreFilter{Owner: "alice"})
	if len(scores) != 0 {
		t.Fatalf("expected no scores for alice, got %+v", scores)
	}
}

func sampleGame(t *testing.T, id, owner string, created time.Time) *domain.Game {
	t.Helper()
	game, err := domain.NewGame(id, owner, "carpet", domain.DifficultyNormal, created)
	if err != nil {
		t.Fatalf("new game: %v", err)
	}
	return game
}
