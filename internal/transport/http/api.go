package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	log "github.com/sirupsen/logrus"

	"hangman-service/internal/app"
	"hangman-service/internal/domain"
)

// API exposes the hangman use cases as JSON over HTTP.
type API struct {
	service *app.HangmanService
	ws      *WSHandler
	checks  []Pinger
}

// Pinger is a backing service that /healthz checks for readiness.
type Pinger interface {
	Ping(ctx context.Context) error
}

func NewAPI(service *app.HangmanService, checks ...Pinger) *API {
	return &API{service: service, ws: NewWSHandler(service), checks: checks}
}

type createUserRequest struct {
	UserName string `json:"user_name"`
	Email    string `json:"email"`
}

type newGameRequest struct {
	UserName   string `json:"user_name"`
	Difficulty string `json:"difficulty"`
}

type makeMoveRequest struct {
	Guess string `json:"guess"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type listResponse[T any] struct {
	Items []T `json:"items"`
}

type remindersResponse struct {
	Sent int `json:"sent"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Routes builds the router. The websocket endpoint sits outside the request
// timeout.
func (a *API) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(requestLogger)

	r.Get("/healthz", a.healthz)
	r.Get("/ws", a.ws.ServeWS)

	r.Group(func(r chi.Router) {
		r.Use(chimw.Timeout(15 * time.Second))

		r.Post("/user", a.createUser)

		r.Post("/game", a.newGame)
		r.Get("/game/{key}", a.getGame)
		r.Put("/game/{key}", a.makeMove)
		r.Post("/game/cancel/{key}", a.cancelGame)
		r.Get("/game/{key}/history", a.gameHistory)
		r.Get("/user/{user_name}/games", a.userGames)

		r.Get("/scores", a.scores)
		r.Get("/scores/user/{user_name}", a.userScores)
		r.Get("/scores/high/limit/{number_of_results}", a.highScores)
		r.Get("/rankings", a.rankings)

		r.Get("/games/average_attempts", a.averageAttempts)
		r.Post("/tasks/cache_average_attempts", a.cacheAverageAttempts)
		r.Post("/crons/send_reminder", a.sendReminders)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "route not found"})
	})
	return r
}

func (a *API) healthz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	for _, c := range a.checks {
		if err := c.Ping(ctx); err != nil {
			log.WithError(err).Warn("readiness check failed")
			writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "not ready"})
			return
		}
	}
	_, _ = w.Write([]byte("ok"))
}

func (a *API) createUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if !decode(w, r, &req) {
		return
	}
	msg, err := a.service.CreateUser(r.Context(), req.UserName, req.Email)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: msg})
}

func (a *API) newGame(w http.ResponseWriter, r *http.Request) {
	var req newGameRequest
	if !decode(w, r, &req) {
		return
	}
	view, err := a.service.NewGame(r.Context(), req.UserName, req.Difficulty)
	respond(w, r, view, err)
}

func (a *API) getGame(w http.ResponseWriter, r *http.Request) {
	view, err := a.service.GetGame(r.Context(), chi.URLParam(r, "key"))
	respond(w, r, view, err)
}

func (a *API) makeMove(w http.ResponseWriter, r *http.Request) {
	var req makeMoveRequest
	if !decode(w, r, &req) {
		return
	}
	view, err := a.service.MakeMove(r.Context(), chi.URLParam(r, "key"), req.Guess)
	respond(w, r, view, err)
}

func (a *API) cancelGame(w http.ResponseWriter, r *http.Request) {
	view, err := a.service.CancelGame(r.Context(), chi.URLParam(r, "key"))
	respond(w, r, view, err)
}

func (a *API) gameHistory(w http.ResponseWriter, r *http.Request) {
	history, err := a.service.GetGameHistory(r.Context(), chi.URLParam(r, "key"))
	respond(w, r, listResponse[string]{Items: history}, err)
}

func (a *API) userGames(w http.ResponseWriter, r *http.Request) {
	games, err := a.service.GetUserGames(r.Context(), chi.URLParam(r, "user_name"))
	respond(w, r, listResponse[domain.GameView]{Items: games}, err)
}

func (a *API) scores(w http.ResponseWriter, r *http.Request) {
	scores, err := a.service.GetScores(r.Context())
	respond(w, r, listResponse[domain.Score]{Items: scores}, err)
}

func (a *API) userScores(w http.ResponseWriter, r *http.Request) {
	scores, err := a.service.GetUserScores(r.Context(), chi.URLParam(r, "user_name"))
	respond(w, r, listResponse[domain.Score]{Items: scores}, err)
}

func (a *API) highScores(w http.ResponseWriter, r *http.Request) {
	limit, err := strconv.Atoi(chi.URLParam(r, "number_of_results"))
	if err != nil {
		writeError(w, r, domain.ErrInvalidLimit)
		return
	}
	scores, err := a.service.GetHighScores(r.Context(), r.URL.Query().Get("difficulty"), limit)
	respond(w, r, listResponse[domain.Score]{Items: scores}, err)
}

func (a *API) rankings(w http.ResponseWriter, r *http.Request) {
	rankings, err := a.service.GetUserRankings(r.Context(), r.URL.Query().Get("difficulty"))
	respond(w, r, listResponse[domain.Ranking]{Items: rankings}, err)
}

func (a *API) averageAttempts(w http.ResponseWriter, r *http.Request) {
	msg, err := a.service.GetAverageAttemptsRemaining(r.Context())
	respond(w, r, messageResponse{Message: msg}, err)
}

func (a *API) cacheAverageAttempts(w http.ResponseWriter, r *http.Request) {
	if err := a.service.CacheAverageAttempts(r.Context()); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) sendReminders(w http.ResponseWriter, r *http.Request) {
	sent, err := a.service.SendReminders(r.Context())
	respond(w, r, remindersResponse{Sent: sent}, err)
}

func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return false
	}
	return true
}

func respond(w http.ResponseWriter, r *http.Request, body any, err error) {
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, body)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.WithError(err).Warn("encode response")
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	entry := log.WithFields(log.Fields{
		"method": r.Method,
		"path":   r.URL.Path,
	})
	writeJSON(w, statusFor(err), errorResponse{Error: clientMessage(entry, err)})
}

// clientMessage is the error text safe to show a client. Errors outside the
// domain kinds are logged on entry and masked.
func clientMessage(entry *log.Entry, err error) string {
	if statusFor(err) == http.StatusInternalServerError {
		entry.WithError(err).Error("request failed")
		return "internal server error"
	}
	return err.Error()
}

// statusFor maps domain error kinds to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrInvalidWord):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		log.WithFields(log.Fields{
			"method":     r.Method,
			"path":       r.URL.Path,
			"status":     ww.Status(),
			"duration":   time.Since(start).String(),
			"request_id": chimw.GetReqID(r.Context()),
		}).Debug("request")
	})
}
