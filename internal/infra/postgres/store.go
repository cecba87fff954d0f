package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"hangman-service/internal/app"
	"hangman-service/internal/domain"
)

const uniqueViolation = "23505"

// Store implements the user, game and score repositories on Postgres.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func (s *Store) CreateUser(ctx context.Context, user domain.User) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO users (name, email, created_at) VALUES ($1, $2, $3)`,
		user.Name, user.Email, user.CreatedAt)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return domain.ErrUserExists
	}
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (s *Store) GetUser(ctx context.Context, name string) (domain.User, error) {
	var u domain.User
	err := s.pool.QueryRow(ctx,
		`SELECT name, email, created_at FROM users WHERE name=$1`, name).
		Scan(&u.Name, &u.Email, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.User{}, domain.ErrUserNotFound
	}
	if err != nil {
		return domain.User{}, fmt.Errorf("load user: %w", err)
	}
	return u, nil
}

func (s *Store) ListUsers(ctx context.Context) ([]domain.User, error) {
	rows, err := s.pool.Query(ctx, `SELECT name, email, created_at FROM users ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	users := make([]domain.User, 0)
	for rows.Next() {
		var u domain.User
		if err := rows.Scan(&u.Name, &u.Email, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

const gameColumns = `id, owner, word, difficulty, attempts_allowed, attempts_remaining, status, guesses, history, created_at`

func (s *Store) CreateGame(ctx context.Context, game *domain.Game) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO games (`+gameColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		game.ID, game.Owner, game.Word, string(game.Difficulty),
		game.AttemptsAllowed, game.AttemptsRemaining, string(game.Status),
		game.Guesses, game.History, game.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert game: %w", err)
	}
	return nil
}

func (s *Store) GetGame(ctx context.Context, id string) (*domain.Game, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+gameColumns+` FROM games WHERE id=$1`, id)
	game, err := scanGame(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrGameNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load game: %w", err)
	}
	return game, nil
}

func (s *Store) UpdateGame(ctx context.Context, game *domain.Game) error {
	return updateActive(ctx, s.pool, game)
}

// FinishGame writes the terminal game state and its score in one
// transaction. The conditional update makes a second finisher fail.
func (s *Store) FinishGame(ctx context.Context, game *domain.Game, score domain.Score) error {
	return s.pool.BeginFunc(ctx, func(tx pgx.Tx) error {
		if err := updateActive(ctx, tx, game); err != nil {
			return err
		}
		_, err := tx.Exec(ctx,
			`INSERT INTO scores (game_id, owner, date, won, guesses, difficulty) VALUES ($1, $2, $3, $4, $5, $6)`,
			score.GameID, score.Owner, score.Date, score.Won, score.Guesses, string(score.Difficulty))
		if err != nil {
			return fmt.Errorf("insert score: %w", err)
		}
		return nil
	})
}

type execer interface {
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

// updateActive only touches rows still ACTIVE.
func updateActive(ctx context.Context, db execer, game *domain.Game) error {
	tag, err := db.Exec(ctx,
		`UPDATE games SET attempts_remaining=$2, status=$3, guesses=$4, history=$5
		 WHERE id=$1 AND status=$6`,
		game.ID, game.AttemptsRemaining, string(game.Status), game.Guesses, game.History,
		string(domain.StatusActive))
	if err != nil {
		return fmt.Errorf("update game: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrGameFinished
	}
	return nil
}

func (s *Store) ListGamesByOwner(ctx context.Context, owner string) ([]*domain.Game, error) {
	return s.listGames(ctx, `WHERE owner=$1`, owner)
}

func (s *Store) ListActiveGames(ctx context.Context) ([]*domain.Game, error) {
	return s.listGames(ctx, `WHERE status=$1`, string(domain.StatusActive))
}

func (s *Store) listGames(ctx context.Context, where string, args ...interface{}) ([]*domain.Game, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+gameColumns+` FROM games `+where+` ORDER BY created_at, id`, args...)
	if err != nil {
		return nil, fmt.Errorf("list games: %w", err)
	}
	defer rows.Close()

	games := make([]*domain.Game, 0)
	for rows.Next() {
		g, err := scanGame(rows)
		if err != nil {
			return nil, fmt.Errorf("scan game: %w", err)
		}
		games = append(games, g)
	}
	return games, rows.Err()
}

func scanGame(row pgx.Row) (*domain.Game, error) {
	var (
		g                  domain.Game
		difficulty, status string
	)
	err := row.Scan(&g.ID, &g.Owner, &g.Word, &difficulty, &g.AttemptsAllowed,
		&g.AttemptsRemaining, &status, &g.Guesses, &g.History, &g.CreatedAt)
	if err != nil {
		return nil, err
	}
	g.Difficulty = domain.Difficulty(difficulty)
	g.Status = domain.GameStatus(status)
	if g.Guesses == nil {
		g.Guesses = []string{}
	}
	if g.History == nil {
		g.History = []string{}
	}
	return &g, nil
}

func (s *Store) ListScores(ctx context.Context, filter app.ScoreFilter) ([]domain.Score, error) {
	var (
		conds []string
		args  []interface{}
	)
	if filter.Owner != "" {
		args = append(args, filter.Owner)
		conds = append(conds, fmt.Sprintf("owner=$%d", len(args)))
	}
	if filter.Difficulty != "" {
		args = append(args, string(filter.Difficulty))
		conds = append(conds, fmt.Sprintf("difficulty=$%d", len(args)))
	}
	if filter.WonOnly {
		conds = append(conds, "won")
	}
	query := `SELECT game_id, owner, date, won, guesses, difficulty FROM scores`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY date, game_id"

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list scores: %w", err)
	}
	defer rows.Close()

	scores := make([]domain.Score, 0)
	for rows.Next() {
		var (
			sc         domain.Score
			difficulty string
			date       time.Time
		)
		if err := rows.Scan(&sc.GameID, &sc.Owner, &date, &sc.Won, &sc.Guesses, &difficulty); err != nil {
			return nil, fmt.Errorf("scan score: %w", err)
		}
		sc.Date = date.UTC()
		sc.Difficulty = domain.Difficulty(difficulty)
		scores = append(scores, sc)
	}
	return scores, rows.Err()
}

// Ping reports whether the pool can reach the database.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}
