package app

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"hangman-service/internal/domain"
)

// Background task names understood by RunTask.
const (
	TaskCacheAverageAttempts = "cache_average_attempts"
	TaskSendReminders        = "send_reminders"
)

const defaultWordAttempts = 2

// Dependencies wires the service to its collaborators. Tasks and Mailer are
// optional.
type Dependencies struct {
	Users  UserRepository
	Games  GameRepository
	Scores ScoreRepository
	Words  WordSource
	Cache  AverageCache
	Locker GameLocker
	Tasks  TaskQueue
	Mailer Mailer

	// WordAttempts is how many times the word source is asked before the
	// game creation fails with domain.ErrInvalidWord. Defaults to 2.
	WordAttempts int
	Now          func() time.Time
	Rand         *rand.Rand
}

// HangmanService contains the hangman use cases.
type HangmanService struct {
	users  UserRepository
	games  GameRepository
	scores ScoreRepository
	words  WordSource
	cache  AverageCache
	locker GameLocker
	tasks  TaskQueue
	mailer Mailer

	wordAttempts int
	now          func() time.Time
	sf           singleflight.Group

	rndMu sync.Mutex
	rnd   *rand.Rand
}

func NewHangmanService(deps Dependencies) *HangmanService {
	s := &HangmanService{
		users:        deps.Users,
		games:        deps.Games,
		scores:       deps.Scores,
		words:        deps.Words,
		cache:        deps.Cache,
		locker:       deps.Locker,
		tasks:        deps.Tasks,
		mailer:       deps.Mailer,
		wordAttempts: deps.WordAttempts,
		now:          deps.Now,
		rnd:          deps.Rand,
	}
	if s.wordAttempts <= 0 {
		s.wordAttempts = defaultWordAttempts
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.rnd == nil {
		s.rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return s
}

// SetTaskQueue attaches the queue after construction, for queues whose
// consumers need the service itself.
func (s *HangmanService) SetTaskQueue(q TaskQueue) {
	s.tasks = q
}

// CreateUser registers a user with a unique name.
func (s *HangmanService) CreateUser(ctx context.Context, name, email string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", domain.ErrMissingName
	}
	user := domain.User{Name: name, Email: strings.TrimSpace(email), CreatedAt: s.now()}
	if err := s.users.CreateUser(ctx, user); err != nil {
		return "", err
	}
	log.WithField("user", name).Info("user created")
	return fmt.Sprintf("User %s created!", name), nil
}

// NewGame starts a game for userName. An empty difficulty selects NORMAL.
func (s *HangmanService) NewGame(ctx context.Context, userName, difficulty string) (domain.GameView, error) {
	user, err := s.users.GetUser(ctx, userName)
	if err != nil {
		return domain.GameView{}, err
	}
	level, err := domain.ParseOptionalDifficulty(difficulty)
	if err != nil {
		return domain.GameView{}, err
	}
	word, err := s.fetchWord(ctx, level)
	if err != nil {
		return domain.GameView{}, err
	}
	game, err := domain.NewGame(uuid.NewString(), user.Name, word, level, s.now())
	if err != nil {
		return domain.GameView{}, err
	}
	if err := s.games.CreateGame(ctx, game); err != nil {
		return domain.GameView{}, err
	}

	log.WithFields(log.Fields{
		"game":       game.ID,
		"user":       user.Name,
		"difficulty": level,
	}).Info("game created")

	// The average only feeds an informational endpoint; refresh it out of band.
	s.enqueue(ctx, TaskCacheAverageAttempts)
	return game.View(domain.MsgNewGame), nil
}

func (s *HangmanService) fetchWord(ctx context.Context, level domain.Difficulty) (string, error) {
	var lastErr error
	for attempt := 1; attempt <= s.wordAttempts; attempt++ {
		length := s.wordLength(level)
		raw, err := s.words.FetchWord(ctx, length)
		if err == nil {
			word, nerr := domain.NormalizeWord(raw)
			if nerr == nil {
				return word, nil
			}
			err = nerr
		}
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		lastErr = err
		log.WithFields(log.Fields{
			"attempt": attempt,
			"length":  length,
		}).WithError(err).Warn("word source returned no usable word")
	}
	log.WithField("attempts", s.wordAttempts).WithError(lastErr).Error("no usable word from word source")
	return "", domain.ErrWordTooShort
}

func (s *HangmanService) wordLength(level domain.Difficulty) int {
	s.rndMu.Lock()
	defer s.rndMu.Unlock()
	return level.RandomWordLength(s.rnd)
}

// GetGame returns the current state of a game.
func (s *HangmanService) GetGame(ctx context.Context, key string) (domain.GameView, error) {
	game, err := s.loadGame(ctx, key)
	if err != nil {
		return domain.GameView{}, err
	}
	if game.Over() {
		return game.View(domain.MsgGameIsOver), nil
	}
	return game.View(domain.MsgMakeMove), nil
}

// MakeMove submits a guess. Guesses on a finished game and repeated guesses
// succeed with an explanatory message and change nothing.
func (s *HangmanService) MakeMove(ctx context.Context, key, guess string) (domain.GameView, error) {
	return s.mutate(ctx, key, func(g *domain.Game) (domain.Outcome, error) {
		return g.Guess(guess)
	})
}

// CancelGame ends an active game as a loss.
func (s *HangmanService) CancelGame(ctx context.Context, key string) (domain.GameView, error) {
	return s.mutate(ctx, key, func(g *domain.Game) (domain.Outcome, error) {
		return g.Cancel(), nil
	})
}

// mutate runs one state transition under the game's lock and persists the
// result, recording the score on the terminal transition.
func (s *HangmanService) mutate(ctx context.Context, key string, apply func(*domain.Game) (domain.Outcome, error)) (domain.GameView, error) {
	key, err := canonicalKey(key)
	if err != nil {
		return domain.GameView{}, err
	}
	unlock, err := s.locker.Lock(ctx, key)
	if err != nil {
		return domain.GameView{}, fmt.Errorf("lock game %s: %w", key, err)
	}
	defer unlock()

	game, err := s.games.GetGame(ctx, key)
	if err != nil {
		return domain.GameView{}, err
	}
	outcome, err := apply(game)
	if err != nil {
		return domain.GameView{}, err
	}

	switch {
	case outcome.Finished:
		score := game.Score(s.now())
		if err := s.games.FinishGame(ctx, game, score); err != nil {
			return domain.GameView{}, err
		}
		log.WithFields(log.Fields{
			"game":    game.ID,
			"user":    game.Owner,
			"status":  game.Status,
			"guesses": score.Guesses,
		}).Info("game finished")
	case outcome.Changed:
		if err := s.games.UpdateGame(ctx, game); err != nil {
			return domain.GameView{}, err
		}
	}
	return game.View(outcome.Message), nil
}

// GetGameHistory returns the narrated guesses of a game in order.
func (s *HangmanService) GetGameHistory(ctx context.Context, key string) ([]string, error) {
	game, err := s.loadGame(ctx, key)
	if err != nil {
		return nil, err
	}
	return append([]string{}, game.History...), nil
}

// GetUserGames lists every game owned by userName.
func (s *HangmanService) GetUserGames(ctx context.Context, userName string) ([]domain.GameView, error) {
	if _, err := s.users.GetUser(ctx, userName); err != nil {
		return nil, err
	}
	games, err := s.games.ListGamesByOwner(ctx, userName)
	if err != nil {
		return nil, err
	}
	views := make([]domain.GameView, 0, len(games))
	for _, g := range games {
		views = append(views, g.View(""))
	}
	return views, nil
}

// GetScores lists all scores.
func (s *HangmanService) GetScores(ctx context.Context) ([]domain.Score, error) {
	return s.scores.ListScores(ctx, ScoreFilter{})
}

// GetUserScores lists the scores of one user.
func (s *HangmanService) GetUserScores(ctx context.Context, userName string) ([]domain.Score, error) {
	if _, err := s.users.GetUser(ctx, userName); err != nil {
		return nil, err
	}
	return s.scores.ListScores(ctx, ScoreFilter{Owner: userName})
}

// GetHighScores returns the best won scores at a difficulty, fewest guesses
// first and most recent first among ties.
func (s *HangmanService) GetHighScores(ctx context.Context, difficulty string, limit int) ([]domain.Score, error) {
	level, err := domain.ParseDifficulty(difficulty)
	if err != nil {
		return nil, err
	}
	if limit < 0 {
		return nil, domain.ErrInvalidLimit
	}
	scores, err := s.scores.ListScores(ctx, ScoreFilter{Difficulty: level, WonOnly: true})
	if err != nil {
		return nil, err
	}
	return domain.HighScores(scores, level, limit), nil
}

// GetUserRankings ranks every user by win percentage at a difficulty.
func (s *HangmanService) GetUserRankings(ctx context.Context, difficulty string) ([]domain.Ranking, error) {
	level, err := domain.ParseDifficulty(difficulty)
	if err != nil {
		return nil, err
	}
	users, err := s.users.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	scores, err := s.scores.ListScores(ctx, ScoreFilter{Difficulty: level})
	if err != nil {
		return nil, err
	}
	return domain.ComputeRankings(users, scores, level), nil
}

// GetAverageAttemptsRemaining returns the last published average message.
func (s *HangmanService) GetAverageAttemptsRemaining(ctx context.Context) (string, error) {
	return s.cache.Get(ctx)
}

// CacheAverageAttempts recomputes the average attempts remaining across
// active games and publishes it. With no active games the published value
// is left as is. Concurrent calls share one recompute.
func (s *HangmanService) CacheAverageAttempts(ctx context.Context) error {
	_, err, _ := s.sf.Do(TaskCacheAverageAttempts, func() (interface{}, error) {
		games, err := s.games.ListActiveGames(ctx)
		if err != nil {
			return nil, err
		}
		if len(games) == 0 {
			return nil, nil
		}
		total := 0
		for _, g := range games {
			total += g.AttemptsRemaining
		}
		average := float64(total) / float64(len(games))
		msg := fmt.Sprintf("The average moves remaining is %.2f", average)
		if err := s.cache.Set(ctx, msg); err != nil {
			return nil, err
		}
		log.WithField("active_games", len(games)).Debug("average attempts cached")
		return nil, nil
	})
	return err
}

// SendReminders emails the owner of every active game that has an email
// address. Delivery failures are logged and skipped; the number of sent
// reminders is returned.
func (s *HangmanService) SendReminders(ctx context.Context) (int, error) {
	if s.mailer == nil {
		return 0, nil
	}
	games, err := s.games.ListActiveGames(ctx)
	if err != nil {
		return 0, err
	}
	users := make(map[string]domain.User)
	sent := 0
	for _, g := range games {
		user, ok := users[g.Owner]
		if !ok {
			user, err = s.users.GetUser(ctx, g.Owner)
			if err != nil {
				log.WithField("user", g.Owner).WithError(err).Warn("reminder skipped")
				continue
			}
			users[g.Owner] = user
		}
		if user.Email == "" {
			continue
		}
		subject, body := reminder(user, g)
		if err := s.mailer.SendMail(ctx, user.Email, subject, body); err != nil {
			log.WithFields(log.Fields{
				"user": user.Name,
				"game": g.ID,
			}).WithError(err).Error("send reminder")
			continue
		}
		sent++
	}
	log.WithField("sent", sent).Info("reminders sent")
	return sent, nil
}

func reminder(user domain.User, g *domain.Game) (string, string) {
	subject := "Your Hangman move is waiting for you"
	body := fmt.Sprintf("Hi %s, don't forget to make your move in Hangman!\n", user.Name)
	body += fmt.Sprintf("The current status of your game is %s, ", g.Reveal())
	body += fmt.Sprintf("and you have %d guesses left.", g.AttemptsRemaining)
	return subject, body
}

// RunTask executes a background task by name.
func (s *HangmanService) RunTask(ctx context.Context, task string) error {
	switch task {
	case TaskCacheAverageAttempts:
		return s.CacheAverageAttempts(ctx)
	case TaskSendReminders:
		_, err := s.SendReminders(ctx)
		return err
	default:
		return domain.ErrUnknownTask
	}
}

func (s *HangmanService) enqueue(ctx context.Context, task string) {
	if s.tasks == nil {
		return
	}
	if err := s.tasks.Enqueue(ctx, task); err != nil {
		log.WithField("task", task).WithError(err).Warn("enqueue task")
	}
}

func (s *HangmanService) loadGame(ctx context.Context, key string) (*domain.Game, error) {
	key, err := canonicalKey(key)
	if err != nil {
		return nil, err
	}
	return s.games.GetGame(ctx, key)
}

func canonicalKey(key string) (string, error) {
	id, err := uuid.Parse(key)
	if err != nil {
		return "", domain.ErrInvalidKey
	}
	return id.String(), nil
}
