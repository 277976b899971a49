// internal/httpserver/ws.go
//
// Websocket stream for a single player's session.
// The connection's read loop handles one message at a time and writes the
// reply before reading the next, so a player never has two submissions in
// flight against their session.

package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/wordscramble/internal/game"
	"github.com/robalobadob/wordscramble/internal/store"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 1024

	// Budget for handling one message, dictionary lookup included
	messageTimeout = 10 * time.Second
)

// Client → server message types.
const (
	msgSubmit  = "submit"
	msgRestart = "restart"
	msgState   = "state"
	msgPing    = "ping"
)

// Server → client message types.
const (
	msgResult = "result"
	msgError  = "error"
	msgPong   = "pong"
)

// Error codes for msgError replies.
const (
	errCodeInvalidMessage = "INVALID_MESSAGE"
	errCodeNotFound       = "GAME_NOT_FOUND"
	errCodeStartup        = "STARTUP_FAILURE"
	errCodeInternal       = "INTERNAL_ERROR"
)

type wsIn struct {
	Type string `json:"type"`
	Word string `json:"word,omitempty"`
}

type wsOut struct {
	Type     string      `json:"type"`
	Result   *submitRes  `json:"result,omitempty"`
	State    *stateRes   `json:"state,omitempty"`
	RootWord string      `json:"rootWord,omitempty"`
	Error    *wsErrorOut `json:"error,omitempty"`
}

type wsErrorOut struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (s *Server) upgrader() websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			o := r.Header.Get("Origin")
			return o == "" || o == s.origin
		},
	}
}

// handleWS upgrades the request and serves the caller's session until the
// peer disconnects.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	sid := sessionID(r)
	if _, err := s.snapshot(r.Context(), sid); err != nil {
		writeStoreError(w, err)
		return
	}

	up := s.upgrader()
	conn, err := up.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()
	log.Info().Str("gameId", sid).Msg("websocket connected")

	done := make(chan struct{})
	defer close(done)
	go pingLoop(conn, done)

	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Debug().Err(err).Str("gameId", sid).Msg("websocket read error")
			}
			return
		}

		out := s.handleWSMessage(sid, data)
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteJSON(out); err != nil {
			log.Debug().Err(err).Str("gameId", sid).Msg("websocket write error")
			return
		}
	}
}

// pingLoop keeps the connection alive. WriteControl may run concurrently
// with the read loop's writes.
func pingLoop(conn *websocket.Conn, done <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}

// handleWSMessage processes one client message and builds the reply.
func (s *Server) handleWSMessage(sid string, data []byte) wsOut {
	var msg wsIn
	if err := json.Unmarshal(data, &msg); err != nil {
		return wsError(errCodeInvalidMessage, "Invalid message format")
	}

	ctx, cancel := context.WithTimeout(context.Background(), messageTimeout)
	defer cancel()

	switch msg.Type {
	case msgSubmit:
		res, _, err := s.submit(ctx, sid, msg.Word)
		if err != nil {
			return storeWSError(err)
		}
		return wsOut{Type: msgResult, Result: &res}

	case msgRestart:
		var root string
		err := s.store.Update(ctx, sid, func(sess *game.Session) error {
			var err error
			root, err = sess.Start(ctx)
			return err
		})
		if game.Fatal(err) {
			log.Error().Err(err).Str("gameId", sid).Msg("restart game")
			return wsError(errCodeStartup, "No root word available")
		}
		if err != nil {
			return storeWSError(err)
		}
		return wsOut{Type: msgState, RootWord: root}

	case msgState:
		snap, err := s.snapshot(ctx, sid)
		if err != nil {
			return storeWSError(err)
		}
		st := toStateRes(snap)
		return wsOut{Type: msgState, State: &st, RootWord: st.RootWord}

	case msgPing:
		return wsOut{Type: msgPong}
	}
	return wsError(errCodeInvalidMessage, "Unknown message type")
}

func wsError(code, message string) wsOut {
	return wsOut{Type: msgError, Error: &wsErrorOut{Code: code, Message: message}}
}

func storeWSError(err error) wsOut {
	if errors.Is(err, store.ErrNotFound) {
		return wsError(errCodeNotFound, "Game not found")
	}
	log.Error().Err(err).Msg("session access")
	return wsError(errCodeInternal, "Internal error")
}
