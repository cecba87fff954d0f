package domain

import "errors"

// Error kinds. Every error returned by the service wraps exactly one of these,
// so transports can classify failures with errors.Is.
var (
	// ErrNotFound is returned for unknown user names and game keys.
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned when a unique name is already taken.
	ErrConflict = errors.New("conflict")
	// ErrInvalidInput covers malformed guesses, keys and difficulties.
	ErrInvalidInput = errors.New("invalid input")
	// ErrInvalidWord indicates the word source returned unusable data.
	ErrInvalidWord = errors.New("invalid word")
)

var (
	ErrUserNotFound  = newError(ErrNotFound, "A User with that name does not exist!")
	ErrGameNotFound  = newError(ErrNotFound, "Game not found!")
	ErrUserExists    = newError(ErrConflict, "A User with that name already exists!")
	ErrGameFinished  = newError(ErrConflict, "Game already finished")
	ErrMissingName   = newError(ErrInvalidInput, "The request is missing a user name!")
	ErrMissingGuess  = newError(ErrInvalidInput, "The guess is missing a value")
	ErrNonAlphaGuess = newError(ErrInvalidInput, "The guess contains non-alphabet characters")
	ErrInvalidKey    = newError(ErrInvalidInput, "Invalid Key")
	ErrMissingLevel  = newError(ErrInvalidInput, "The request is missing a game difficulty!")
	ErrInvalidLevel  = newError(ErrInvalidInput, "Attribute error, parameter: difficulty.  Valid values: EASY, NORMAL, HARD, EXPERT")
	ErrInvalidLimit  = newError(ErrInvalidInput, "number_of_results must be a non-negative integer")
	ErrUnknownTask   = newError(ErrInvalidInput, "Unknown task")
	ErrWordTooShort  = newError(ErrInvalidWord, "Unable to generate a word to guess!")
)

// Error is a descriptive failure classified by one of the kind sentinels.
type Error struct {
	Kind    error
	Message string
}

func newError(kind error, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Kind }
