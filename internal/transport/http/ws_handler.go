package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"vocab-sprint/internal/app"
	"vocab-sprint/internal/auth"
	"vocab-sprint/internal/domain"
)

// WSHandler streams session events to the player and accepts skips.
type WSHandler struct {
	game     *app.GameService
	identity *auth.Service
	upgrader websocket.Upgrader
}

func NewWSHandler(game *app.GameService, identity *auth.Service) *WSHandler {
	return &WSHandler{
		game:     game,
		identity: identity,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type string `json:"type"`
}

// closeFrame tells the writer to close the connection once queued events are flushed.
var closeFrame = domain.Event{Type: "close"}

// ServeWS upgrades the request and relays the session's events until either side leaves.
// Browsers cannot set headers on websocket requests, so the token may come as ?token=.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "id")
	token := r.URL.Query().Get("token")
	if token == "" {
		token = bearerToken(r)
	}
	user, err := h.identity.Authenticate(r.Context(), token)
	if err != nil {
		writeError(w, err)
		return
	}

	updates, cancel, err := h.game.Subscribe(r.Context(), sessionID, user.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	defer cancel()

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	send := make(chan domain.Event, 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	updatesDone := make(chan struct{})

	go func() {
		defer close(writerDone)
		for msg := range send {
			if msg.Type == closeFrame.Type {
				_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "session closed"))
				conn.Close()
				return
			}
			if err := conn.WriteJSON(msg); err != nil {
				log.Printf("ws write error: %v", err)
				conn.Close()
				return
			}
		}
	}()

	push := func(msg domain.Event) bool {
		select {
		case send <- msg:
			return true
		case <-writerDone:
			return false
		}
	}

	go func() {
		defer close(updatesDone)
		for {
			select {
			case update, ok := <-updates:
				if !ok {
					// session torn down
					push(closeFrame)
					return
				}
				select {
				case send <- update:
				case <-writerDone:
					return
				case <-closeSignals:
					return
				}
			case <-closeSignals:
				return
			}
		}
	}()

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			var syntaxErr *json.SyntaxError
			var typeErr *json.UnmarshalTypeError
			if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
				push(domain.Event{Type: "error", Payload: errorPayload{Message: "invalid message"}})
				continue
			}
			break
		}
		switch inbound.Type {
		case "skip":
			if _, err := h.game.Skip(r.Context(), sessionID, user.ID); err != nil {
				push(domain.Event{Type: "error", Payload: errorPayload{Message: messageFor(err)}})
			}
		default:
			push(domain.Event{Type: "error", Payload: errorPayload{Message: "unsupported message type"}})
		}
	}

	close(closeSignals)
	<-updatesDone
	close(send)
	<-writerDone
}
