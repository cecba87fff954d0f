package domain

import (
	"fmt"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

// Placeholder masks positions of the word that have not been guessed yet.
const Placeholder = '_'

const minWordLength = 4

// Messages returned alongside game snapshots.
const (
	MsgNewGame        = "Good luck playing! Take a guess, letter or word!"
	MsgMakeMove       = "Make a move!"
	MsgGameIsOver     = "Game is over."
	MsgAlreadyOver    = "Game already over!"
	MsgAlreadyGuessed = "You have already guessed this value. Try something else!"
	MsgCanceled       = "Game canceled!"
	MsgCannotCancel   = "Game is over. Cannot cancel game."
)

// NormalizeWord uppercases a word from the word source and rejects words
// too short to play.
func NormalizeWord(raw string) (string, error) {
	word := strings.ToUpper(strings.TrimSpace(raw))
	if utf8.RuneCountInString(word) < minWordLength {
		return "", ErrWordTooShort
	}
	return word, nil
}

// NewGame builds an active game for owner around word.
func NewGame(id, owner, word string, difficulty Difficulty, now time.Time) (*Game, error) {
	word, err := NormalizeWord(word)
	if err != nil {
		return nil, err
	}
	attempts := difficulty.AttemptsAllowed()
	return &Game{
		ID:                id,
		Owner:             owner,
		Word:              word,
		Difficulty:        difficulty,
		AttemptsAllowed:   attempts,
		AttemptsRemaining: attempts,
		Status:            StatusActive,
		Guesses:           []string{},
		History:           []string{},
		CreatedAt:         now,
	}, nil
}

// Reveal renders word with every position not covered by a single-letter
// guess replaced by Placeholder. A whole-word guess equal to word reveals
// every position.
func Reveal(word string, guesses []string) string {
	letters := make(map[rune]struct{}, len(guesses))
	for _, g := range guesses {
		if g == "" {
			continue
		}
		if utf8.RuneCountInString(g) > 1 {
			if g == word {
				return word
			}
			continue
		}
		r, _ := utf8.DecodeRuneInString(g)
		letters[r] = struct{}{}
	}

	var b strings.Builder
	b.Grow(len(word))
	for _, c := range word {
		if _, ok := letters[c]; ok {
			b.WriteRune(c)
		} else {
			b.WriteRune(Placeholder)
		}
	}
	return b.String()
}

// NormalizeGuess validates a raw guess and returns its uppercase form.
func NormalizeGuess(raw string) (string, error) {
	if raw == "" {
		return "", ErrMissingGuess
	}
	for _, r := range raw {
		if !unicode.IsLetter(r) {
			return "", ErrNonAlphaGuess
		}
	}
	return strings.ToUpper(raw), nil
}

// Over reports whether the game reached a terminal state.
func (g *Game) Over() bool {
	return g.Status.Terminal()
}

// Reveal is the current reveal string of the game.
func (g *Game) Reveal() string {
	return Reveal(g.Word, g.Guesses)
}

// Outcome describes what a guess or cancellation did to a game.
type Outcome struct {
	Message string
	// Changed is set when the game must be persisted.
	Changed bool
	// Finished is set on the transition into a terminal state; exactly one
	// Score must be recorded for it.
	Finished bool
}

// Guess applies one guess. A finished game or a repeated guess leaves the
// game untouched and only yields a message; malformed guesses are errors.
func (g *Game) Guess(raw string) (Outcome, error) {
	if g.Over() {
		return Outcome{Message: MsgAlreadyOver}, nil
	}
	guess, err := NormalizeGuess(raw)
	if err != nil {
		return Outcome{}, err
	}
	for _, prev := range g.Guesses {
		if prev == guess {
			return Outcome{Message: MsgAlreadyGuessed}, nil
		}
	}

	g.Guesses = append(g.Guesses, guess)
	msg := g.Reveal()

	if utf8.RuneCountInString(guess) > 1 {
		if guess == g.Word {
			return g.finish(guess, StatusWon, "You win! Word is: "+g.Word), nil
		}
		g.AttemptsRemaining--
		msg += " Incorrect Guess!"
	} else {
		// Win detection compares the reveal string itself against the word.
		if msg == g.Word {
			return g.finish(guess, StatusWon, "You win! Word is: "+msg), nil
		}
		if !strings.Contains(g.Word, guess) {
			g.AttemptsRemaining--
			msg += " Incorrect Guess!"
		}
	}

	if g.AttemptsRemaining < 1 {
		g.AttemptsRemaining = 0
		return g.finish(guess, StatusLost, msg+" Game over! The word was "+g.Word), nil
	}

	msg += " Keep Going!"
	g.History = append(g.History, historyLine(guess, msg))
	return Outcome{Message: msg, Changed: true}, nil
}

// Cancel ends an active game as a loss.
func (g *Game) Cancel() Outcome {
	if g.Over() {
		return Outcome{Message: MsgCannotCancel}
	}
	g.History = append(g.History, MsgCanceled)
	g.Status = StatusCanceled
	return Outcome{Message: MsgCanceled, Changed: true, Finished: true}
}

func (g *Game) finish(guess string, status GameStatus, msg string) Outcome {
	g.History = append(g.History, historyLine(guess, msg))
	g.Status = status
	return Outcome{Message: msg, Changed: true, Finished: true}
}

func historyLine(guess, result string) string {
	return fmt.Sprintf("Guess: %s, Result: %s", guess, result)
}

// Score builds the score record of a finished game.
func (g *Game) Score(now time.Time) Score {
	return Score{
		GameID:     g.ID,
		Owner:      g.Owner,
		Date:       now,
		Won:        g.Status == StatusWon,
		Guesses:    g.AttemptsAllowed - g.AttemptsRemaining,
		Difficulty: g.Difficulty,
	}
}

// View renders the outbound snapshot with message attached.
func (g *Game) View(message string) GameView {
	guesses := make([]string, len(g.Guesses))
	copy(guesses, g.Guesses)
	return GameView{
		Key:               g.ID,
		AttemptsRemaining: g.AttemptsRemaining,
		GameOver:          g.Over(),
		Message:           message,
		Guesses:           guesses,
		GuessStatus:       g.Reveal(),
		UserName:          g.Owner,
		Difficulty:        g.Difficulty,
	}
}

// Clone returns a deep copy safe to mutate independently.
func (g *Game) Clone() *Game {
	c := *g
	c.Guesses = append([]string{}, g.Guesses...)
	c.History = append([]string{}, g.History...)
	return &c
}
