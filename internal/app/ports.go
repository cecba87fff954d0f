package app

import (
	"context"

	"hangman-service/internal/domain"
)

// UserRepository stores registered users.
type UserRepository interface {
	// CreateUser fails with domain.ErrUserExists when the name is taken.
	CreateUser(ctx context.Context, user domain.User) error
	GetUser(ctx context.Context, name string) (domain.User, error)
	ListUsers(ctx context.Context) ([]domain.User, error)
}

// GameRepository stores games by key.
type GameRepository interface {
	CreateGame(ctx context.Context, game *domain.Game) error
	GetGame(ctx context.Context, id string) (*domain.Game, error)
	UpdateGame(ctx context.Context, game *domain.Game) error
	// FinishGame persists a game that just became terminal together with its
	// score. Implementations must refuse a game that is already terminal in
	// storage with domain.ErrGameFinished.
	FinishGame(ctx context.Context, game *domain.Game, score domain.Score) error
	ListGamesByOwner(ctx context.Context, owner string) ([]*domain.Game, error)
	ListActiveGames(ctx context.Context) ([]*domain.Game, error)
}

// ScoreFilter narrows a score listing; zero values match everything.
type ScoreFilter struct {
	Owner      string
	Difficulty domain.Difficulty
	WonOnly    bool
}

// Match reports whether s passes the filter.
func (f ScoreFilter) Match(s domain.Score) bool {
	if f.Owner != "" && s.Owner != f.Owner {
		return false
	}
	if f.Difficulty != "" && s.Difficulty != f.Difficulty {
		return false
	}
	if f.WonOnly && !s.Won {
		return false
	}
	return true
}

// ScoreRepository lists recorded scores. Scores are written only through
// GameRepository.FinishGame.
type ScoreRepository interface {
	ListScores(ctx context.Context, filter ScoreFilter) ([]domain.Score, error)
}

// WordSource supplies a random word of the requested length.
type WordSource interface {
	FetchWord(ctx context.Context, length int) (string, error)
}

// AverageCache holds the last published average-attempts message.
type AverageCache interface {
	// Get returns "" when nothing has been published yet.
	Get(ctx context.Context) (string, error)
	Set(ctx context.Context, value string) error
}

// GameLocker serializes writers of a single game.
type GameLocker interface {
	Lock(ctx context.Context, key string) (unlock func(), err error)
}

// TaskQueue defers background tasks such as the average recompute.
type TaskQueue interface {
	Enqueue(ctx context.Context, task string) error
}

// Mailer delivers reminder emails.
type Mailer interface {
	SendMail(ctx context.Context, to, subject, body string) error
}
