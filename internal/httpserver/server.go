// internal/httpserver/server.go
//
// HTTP server wiring for the word scramble backend.
// Responsibilities:
//   - Router + middleware (JSON, CORS, timeouts, panic recovery, request IDs, logging).
//   - Public endpoints: "/", "/health", "/debug/words", POST /game/new.
//   - Token-gated game endpoints: POST /game/submit, POST /game/restart,
//     GET /game/state, GET /game/ws.
//
// Notes:
//   - Each player owns one game.Session; the store serializes calls to it.
//   - Word rejections are game results, not transport failures: they are
//     returned with 200 and outcome "rejected". Only an unavailable
//     dictionary maps to 503 so clients know to retry.

package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"
	"golang.org/x/text/language"

	"github.com/robalobadob/wordscramble/internal/dictionary"
	"github.com/robalobadob/wordscramble/internal/game"
	"github.com/robalobadob/wordscramble/internal/store"
	"github.com/robalobadob/wordscramble/internal/words"
)

// Options configures a Server.
type Options struct {
	Provider     words.Provider
	Oracle       dictionary.Oracle
	Language     language.Tag
	JWTSecret    string
	TokenTTL     time.Duration
	ClientOrigin string
	PoolSize     int // root word pool size, reported by /debug/words
}

// Server bundles router, session store and game collaborators.
type Server struct {
	r        *chi.Mux
	http     *http.Server
	store    store.Store
	provider words.Provider
	oracle   dictionary.Oracle
	lang     language.Tag
	tokens   *tokenIssuer
	origin   string
	poolSize int
}

// New constructs a Server, installs middleware, and registers routes.
func New(st store.Store, opts Options) *Server {
	lang := opts.Language
	if lang == language.Und {
		lang = dictionary.DefaultLanguage
	}
	origin := opts.ClientOrigin
	if origin == "" {
		origin = "http://localhost:5173"
	}
	s := &Server{
		r:        chi.NewRouter(),
		store:    st,
		provider: opts.Provider,
		oracle:   opts.Oracle,
		lang:     lang,
		tokens:   newTokenIssuer(opts.JWTSecret, opts.TokenTTL),
		origin:   origin,
		poolSize: opts.PoolSize,
	}

	// --- middleware ---
	s.r.Use(chimw.RequestID)
	s.r.Use(chimw.RealIP)
	s.r.Use(requestLogger)
	s.r.Use(chimw.Recoverer)
	s.r.Use(s.cors)

	// Websocket route sits outside the timeout + JSON middleware: the
	// connection outlives any single request budget.
	s.r.With(s.requireSession()).Get("/game/ws", s.handleWS)

	s.r.Group(func(r chi.Router) {
		r.Use(chimw.Timeout(10 * time.Second))
		r.Use(jsonContentType)

		// --- diagnostics ---
		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"service":"wordscramble-go","endpoints":["/health","POST /game/new","POST /game/submit","POST /game/restart","GET /game/state","GET /game/ws"]}`))
		})
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"ok":true}`))
		})
		r.Get("/debug/words", func(w http.ResponseWriter, r *http.Request) {
			_ = json.NewEncoder(w).Encode(map[string]int{"startWords": s.poolSize, "sessions": s.store.Len()})
		})

		r.Post("/game/new", s.handleNewGame)

		r.Group(func(r chi.Router) {
			r.Use(s.requireSession())
			r.Post("/game/submit", s.handleSubmit)
			r.Post("/game/restart", s.handleRestart)
			r.Get("/game/state", s.handleState)
		})
	})

	// JSON 404 for easier debugging
	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"not_found"}`, http.StatusNotFound)
	})

	return s
}

// Start begins serving HTTP on addr. It returns http.ErrServerClosed after Shutdown.
func (s *Server) Start(addr string) error {
	s.http = &http.Server{Addr: addr, Handler: s.r, ReadHeaderTimeout: 5 * time.Second}
	return s.http.ListenAndServe()
}

// Shutdown gracefully stops a server started with Start.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.http == nil {
		return nil
	}
	return s.http.Shutdown(ctx)
}

// Router exposes the internal router (useful for tests).
func (s *Server) Router() chi.Router { return s.r }

// ----------------------------- middleware ----------------------------------

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// cors enables CORS for the configured client origin.
func (s *Server) cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Vary", "Origin")
		w.Header().Set("Access-Control-Allow-Origin", s.origin)
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// requestLogger logs one line per request.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		log.Debug().
			Str("requestId", chimw.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("elapsed", time.Since(start)).
			Msg("request")
	})
}

// ------------------------------ GAME ---------------------------------------

type newGameRes struct {
	GameID    string    `json:"gameId"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	RootWord  string    `json:"rootWord"`
	Language  string    `json:"language"`
}

// handleNewGame creates a session, starts it, and returns a token for it.
// A session that cannot start is never stored.
func (s *Server) handleNewGame(w http.ResponseWriter, r *http.Request) {
	sess := game.New(s.provider, s.oracle, game.WithLanguage(s.lang))
	root, err := sess.Start(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("start game")
		http.Error(w, `{"error":"startup_failure"}`, http.StatusInternalServerError)
		return
	}
	if err := s.store.Save(r.Context(), sess); err != nil {
		log.Error().Err(err).Msg("save game")
		http.Error(w, `{"error":"save_failed"}`, http.StatusInternalServerError)
		return
	}
	tok, exp, err := s.tokens.sign(sess.ID())
	if err != nil {
		log.Error().Err(err).Msg("sign token")
		_ = s.store.Delete(r.Context(), sess.ID())
		http.Error(w, `{"error":"sign_failed"}`, http.StatusInternalServerError)
		return
	}

	log.Info().Str("gameId", sess.ID()).Msg("game created")
	_ = json.NewEncoder(w).Encode(newGameRes{
		GameID:    sess.ID(),
		Token:     tok,
		ExpiresAt: exp,
		RootWord:  root,
		Language:  sess.Language().String(),
	})
}

type submitReq struct {
	Word string `json:"word"`
}

type submitRes struct {
	Outcome game.Outcome `json:"outcome"`
	Word    string       `json:"word"`
	Score   int          `json:"score"`
	Reason  string       `json:"reason,omitempty"`
	Title   string       `json:"title,omitempty"`
	Message string       `json:"message,omitempty"`
}

// handleSubmit runs a word through the caller's session.
func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var req submitReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"bad_json"}`, http.StatusBadRequest)
		return
	}
	res, status, err := s.submit(r.Context(), sessionID(r), req.Word)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(res)
}

// submit applies a word to a stored session and converts the outcome into a
// response payload plus HTTP status. The returned error is non-nil only when
// the session itself could not be reached.
func (s *Server) submit(ctx context.Context, sid, word string) (submitRes, int, error) {
	var (
		res    game.Result
		subErr error
		score  int
	)
	err := s.store.Update(ctx, sid, func(sess *game.Session) error {
		res, subErr = sess.Submit(ctx, word)
		score = sess.Score()
		return nil
	})
	if err != nil {
		return submitRes{}, 0, err
	}
	out, status := toSubmitRes(res, subErr, score)
	return out, status, nil
}

// toSubmitRes converts a Submit outcome into a payload and HTTP status.
func toSubmitRes(res game.Result, err error, score int) (submitRes, int) {
	if err == nil {
		return submitRes{Outcome: res.Outcome, Word: res.Word, Score: res.Score}, http.StatusOK
	}
	if errors.Is(err, game.ErrNotStarted) {
		return submitRes{Outcome: game.OutcomeRejected, Score: score, Reason: game.Reason(err)}, http.StatusConflict
	}

	out := submitRes{Outcome: game.OutcomeRejected, Score: score, Reason: game.Reason(err)}
	var rej *game.RejectionError
	if errors.As(err, &rej) {
		out.Word, out.Title, out.Message = rej.Word, rej.Title, rej.Message
	}
	status := http.StatusOK
	if errors.Is(err, game.ErrOracleUnavailable) {
		log.Warn().Err(err).Msg("dictionary unavailable")
		status = http.StatusServiceUnavailable
	}
	return out, status
}

type restartRes struct {
	RootWord string `json:"rootWord"`
}

// handleRestart starts a fresh game in the caller's session.
func (s *Server) handleRestart(w http.ResponseWriter, r *http.Request) {
	var root string
	err := s.store.Update(r.Context(), sessionID(r), func(sess *game.Session) error {
		var err error
		root, err = sess.Start(r.Context())
		return err
	})
	if game.Fatal(err) {
		log.Error().Err(err).Str("gameId", sessionID(r)).Msg("restart game")
		http.Error(w, `{"error":"startup_failure"}`, http.StatusInternalServerError)
		return
	}
	if err != nil {
		writeStoreError(w, err)
		return
	}
	_ = json.NewEncoder(w).Encode(restartRes{RootWord: root})
}

type stateRes struct {
	GameID    string    `json:"gameId"`
	State     string    `json:"state"`
	RootWord  string    `json:"rootWord"`
	UsedWords []string  `json:"usedWords"`
	Score     int       `json:"score"`
	Language  string    `json:"language"`
	StartedAt time.Time `json:"startedAt"`
}

func toStateRes(snap game.Snapshot) stateRes {
	if snap.UsedWords == nil {
		snap.UsedWords = []string{}
	}
	return stateRes{
		GameID:    snap.ID,
		State:     snap.State.String(),
		RootWord:  snap.RootWord,
		UsedWords: snap.UsedWords,
		Score:     snap.Score,
		Language:  snap.Language,
		StartedAt: snap.StartedAt,
	}
}

// handleState returns a snapshot of the caller's session.
func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	snap, err := s.snapshot(r.Context(), sessionID(r))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	_ = json.NewEncoder(w).Encode(toStateRes(snap))
}

func (s *Server) snapshot(ctx context.Context, sid string) (game.Snapshot, error) {
	var snap game.Snapshot
	err := s.store.Update(ctx, sid, func(sess *game.Session) error {
		snap = sess.Snapshot()
		return nil
	})
	return snap, err
}

// writeStoreError maps store lookup failures to HTTP errors.
func writeStoreError(w http.ResponseWriter, err error) {
	if errors.Is(err, store.ErrNotFound) {
		http.Error(w, `{"error":"not_found"}`, http.StatusNotFound)
		return
	}
	log.Error().Err(err).Msg("session access")
	http.Error(w, `{"error":"internal"}`, http.StatusInternalServerError)
}
