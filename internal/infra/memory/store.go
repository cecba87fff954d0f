package memory

import (
	"context"
	"sort"
	"sync"

	"hangman-service/internal/app"
	"hangman-service/internal/domain"
)

// Store is an in-memory implementation of the user, game and score
// repositories. Games are copied on the way in and out so callers never
// share slices with the store.
type Store struct {
	mu     sync.RWMutex
	users  map[string]domain.User
	games  map[string]*domain.Game
	scores []domain.Score
}

func NewStore() *Store {
	return &Store{
		users: make(map[string]domain.User),
		games: make(map[string]*domain.Game),
	}
}

func (s *Store) CreateUser(_ context.Context, user domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[user.Name]; ok {
		return domain.ErrUserExists
	}
	s.users[user.Name] = user
	return nil
}

func (s *Store) GetUser(_ context.Context, name string) (domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[name]
	if !ok {
		return domain.User{}, domain.ErrUserNotFound
	}
	return user, nil
}

func (s *Store) ListUsers(_ context.Context) ([]domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	users := make([]domain.User, 0, len(s.users))
	for _, u := range s.users {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].Name < users[j].Name })
	return users, nil
}

func (s *Store) CreateGame(_ context.Context, game *domain.Game) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.games[game.ID] = game.Clone()
	return nil
}

func (s *Store) GetGame(_ context.Context, id string) (*domain.Game, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	game, ok := s.games[id]
	if !ok {
		return nil, domain.ErrGameNotFound
	}
	return game.Clone(), nil
}

func (s *Store) UpdateGame(_ context.Context, game *domain.Game) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.games[game.ID]
	if !ok {
		return domain.ErrGameNotFound
	}
	if stored.Over() {
		return domain.ErrGameFinished
	}
	s.games[game.ID] = game.Clone()
	return nil
}

func (s *Store) FinishGame(_ context.Context, game *domain.Game, score domain.Score) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.games[game.ID]
	if !ok {
		return domain.ErrGameNotFound
	}
	if stored.Over() {
		return domain.ErrGameFinished
	}
	s.games[game.ID] = game.Clone()
	s.scores = append(s.scores, score)
	return nil
}

func (s *Store) ListGamesByOwner(_ context.Context, owner string) ([]*domain.Game, error) {
	return s.listGames(func(g *domain.Game) bool { return g.Owner == owner }), nil
}

func (s *Store) ListActiveGames(_ context.Context) ([]*domain.Game, error) {
	return s.listGames(func(g *domain.Game) bool { return !g.Over() }), nil
}

func (s *Store) listGames(keep func(*domain.Game) bool) []*domain.Game {
	s.mu.RLock()
	defer s.mu.RUnlock()
	games := make([]*domain.Game, 0)
	for _, g := range s.games {
		if keep(g) {
			games = append(games, g.Clone())
		}
	}
	sort.Slice(games, func(i, j int) bool {
		if !games[i].CreatedAt.Equal(games[j].CreatedAt) {
			return games[i].CreatedAt.Before(games[j].CreatedAt)
		}
		return games[i].ID < games[j].ID
	})
	return games
}

func (s *Store) ListScores(_ context.Context, filter app.ScoreFilter) ([]domain.Score, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	scores := make([]domain.Score, 0, len(s.scores))
	for _, sc := range s.scores {
		if filter.Match(sc) {
			scores = append(scores, sc)
		}
	}
	return scores, nil
}
