package domain

import "time"

// User is a registered player. Names are unique and act as identity.
type User struct {
	Name      string    `json:"user_name"`
	Email     string    `json:"email,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// GameStatus is the position of a game in its lifecycle.
type GameStatus string

const (
	StatusActive   GameStatus = "ACTIVE"
	StatusWon      GameStatus = "WON"
	StatusLost     GameStatus = "LOST"
	StatusCanceled GameStatus = "CANCELED"
)

// Terminal reports whether no further transition may leave the status.
func (s GameStatus) Terminal() bool {
	return s == StatusWon || s == StatusLost || s == StatusCanceled
}

// Game is a single hangman round owned by one user.
type Game struct {
	ID                string
	Owner             string
	Word              string
	Difficulty        Difficulty
	AttemptsAllowed   int
	AttemptsRemaining int
	Status            GameStatus
	Guesses           []string
	History           []string
	CreatedAt         time.Time
}

// GameView is the outbound snapshot of a game.
type GameView struct {
	Key               string     `json:"urlsafe_key"`
	AttemptsRemaining int        `json:"attempts_remaining"`
	GameOver          bool       `json:"game_over"`
	Message           string     `json:"message"`
	Guesses           []string   `json:"guesses"`
	GuessStatus       string     `json:"guess_status"`
	UserName          string     `json:"user_name"`
	Difficulty        Difficulty `json:"difficulty"`
}

// Score is the immutable outcome of one finished game.
type Score struct {
	GameID     string     `json:"game_key"`
	Owner      string     `json:"user_name"`
	Date       time.Time  `json:"date"`
	Won        bool       `json:"won"`
	Guesses    int        `json:"guesses"`
	Difficulty Difficulty `json:"difficulty"`
}

// Ranking is a user's win percentage at one difficulty.
type Ranking struct {
	UserName      string     `json:"user_name"`
	Difficulty    Difficulty `json:"difficulty"`
	WinPercentage float64    `json:"win_percentage"`
	Wins          int        `json:"wins"`
	Games         int        `json:"games"`
}
