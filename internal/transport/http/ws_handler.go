package http

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"

	"hangman-service/internal/app"
	"hangman-service/internal/domain"
)

// WSHandler lets a client play one game over a websocket.
type WSHandler struct {
	service  *app.HangmanService
	upgrader websocket.Upgrader
}

func NewWSHandler(service *app.HangmanService) *WSHandler {
	return &WSHandler{
		service: service,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type guessPayload struct {
	Guess string `json:"guess"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

func errorMessage(msg string) outboundMessage[any] {
	return outboundMessage[any]{Type: "error", Payload: errorPayload{Message: msg}}
}

func gameMessage(view domain.GameView) outboundMessage[any] {
	return outboundMessage[any]{Type: "game", Payload: view}
}

// ServeWS upgrades the request and relays guesses for the game named by the
// gameId query parameter. Every accepted move is answered with a game
// snapshot; failures are reported as error messages without closing.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	gameID := r.URL.Query().Get("gameId")
	if gameID == "" {
		http.Error(w, "missing gameId", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.WithError(err).Warn("ws upgrade failed")
		return
	}
	defer conn.Close()

	ctx := r.Context()
	entry := log.WithField("game", gameID)
	view, err := h.service.GetGame(ctx, gameID)
	if err != nil {
		_ = conn.WriteJSON(errorMessage(clientMessage(entry, err)))
		return
	}

	out := newOutbox(16)
	go out.run(conn, entry)
	defer func() {
		close(out.send)
		<-out.done
	}()

	if !out.push(gameMessage(view)) {
		return
	}

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			return
		}
		var msg outboundMessage[any]
		switch inbound.Type {
		case "guess":
			var payload guessPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				msg = errorMessage("invalid guess payload")
				break
			}
			view, err := h.service.MakeMove(ctx, gameID, payload.Guess)
			msg = reply(entry, view, err)
		case "cancel":
			view, err := h.service.CancelGame(ctx, gameID)
			msg = reply(entry, view, err)
		default:
			msg = errorMessage("unsupported message type")
		}
		if !out.push(msg) {
			return
		}
	}
}

func reply(entry *log.Entry, view domain.GameView, err error) outboundMessage[any] {
	if err != nil {
		return errorMessage(clientMessage(entry, err))
	}
	return gameMessage(view)
}

// outbox serializes writes to a websocket connection. Only run writes to
// the connection; once it stops, push refuses further messages.
type outbox struct {
	send chan outboundMessage[any]
	done chan struct{}
}

func newOutbox(size int) *outbox {
	return &outbox{
		send: make(chan outboundMessage[any], size),
		done: make(chan struct{}),
	}
}

func (o *outbox) run(conn *websocket.Conn, entry *log.Entry) {
	defer close(o.done)
	for msg := range o.send {
		if err := conn.WriteJSON(msg); err != nil {
			entry.WithError(err).Warn("ws write error")
			// Unblocks the reader.
			_ = conn.Close()
			return
		}
	}
}

// push queues msg and reports false when the writer has stopped.
func (o *outbox) push(msg outboundMessage[any]) bool {
	select {
	case <-o.done:
		return false
	default:
	}
	select {
	case o.send <- msg:
		return true
	case <-o.done:
		return false
	}
}
