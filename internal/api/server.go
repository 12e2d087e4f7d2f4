// Package api provides the HTTP API for observing and steering the loop.
// GET endpoints are public (read-only observation).
// POST endpoints require a bearer token (admin control plane) and are rate
// limited per client.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/invopop/jsonschema"
	"github.com/jonboulle/clockwork"

	"github.com/talgya/timeloop/internal/controls"
	"github.com/talgya/timeloop/internal/engine"
	"github.com/talgya/timeloop/internal/level"
	"github.com/talgya/timeloop/internal/persistence"
)

const (
	maxStreamConns = 8
	writeWait      = 5 * time.Second
	maxSpeed       = 100
)

// Server serves the loop over HTTP.
type Server struct {
	Eng         *engine.Engine
	DB          *persistence.DB // optional; /events answers 503 without it
	Port        int
	AdminKey    string   // Bearer token for POST endpoints. Empty = POST disabled.
	CORSOrigins []string // allowed in addition to local dev servers
	AdminRate   int      // admin requests per minute per client

	// StreamInterval is the push period of /stream. Defaults to 100ms.
	StreamInterval time.Duration
	// Clock drives rate limiting and streaming. Defaults to wall time.
	Clock clockwork.Clock

	streamConns atomic.Int32
	httpServer  *http.Server
}

// Handler builds the route table.
func (s *Server) Handler() http.Handler {
	if s.Clock == nil {
		s.Clock = clockwork.NewRealClock()
	}
	rate := s.AdminRate
	if rate <= 0 {
		rate = 60
	}
	limiter := NewRateLimiter(rate, time.Minute, s.Clock)
	schema := (&jsonschema.Reflector{DoNotReference: true}).Reflect(&level.Frame{})
	origins := allowedOrigins(s.CORSOrigins)

	mux := http.NewServeMux()

	// Public endpoints.
	mux.HandleFunc("GET /api/v1/status", s.handleStatus)
	mux.HandleFunc("GET /api/v1/events", s.handleEvents)
	mux.HandleFunc("GET /api/v1/schema", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, schema)
	})
	mux.HandleFunc("GET /api/v1/stream", s.handleStream(origins))

	// Admin endpoints.
	admin := func(h http.HandlerFunc) http.HandlerFunc {
		return s.adminOnly(RateLimitMiddleware(limiter, h))
	}
	mux.HandleFunc("POST /api/v1/seek", admin(s.handleSeek))
	mux.HandleFunc("POST /api/v1/speed", admin(s.handleSpeed))
	mux.HandleFunc("POST /api/v1/rewind", admin(s.handleRewind))
	mux.HandleFunc("POST /api/v1/press", admin(s.handlePress))

	return corsMiddleware(origins, mux)
}

// Start begins serving the HTTP API in a goroutine.
func (s *Server) Start() {
	addr := fmt.Sprintf(":%d", s.Port)
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	slog.Info("HTTP API starting", "addr", addr, "admin_auth", s.AdminKey != "")

	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("HTTP server error", "error", err)
		}
	}()
}

// Shutdown stops accepting requests and waits for active ones.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}

func allowedOrigins(extra []string) map[string]bool {
	origins := map[string]bool{
		"http://localhost:5173": true,
		"http://localhost:4173": true,
		"http://localhost:3000": true,
	}
	for _, origin := range extra {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins[origin] = true
		}
	}
	return origins
}

// corsMiddleware adds CORS headers for allowed frontend origins.
func corsMiddleware(origins map[string]bool, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origins[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) checkBearerToken(r *http.Request) bool {
	token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	return ok && token == s.AdminKey
}

// adminOnly wraps a handler to require bearer token auth.
func (s *Server) adminOnly(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.AdminKey == "" {
			http.Error(w, "admin endpoints disabled (no TIMELOOP_ADMIN_KEY set)", http.StatusForbidden)
			return
		}
		if !s.checkBearerToken(r) {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next(w, r)
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Eng.Frame())
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	if s.DB == nil {
		http.Error(w, "journal unavailable", http.StatusServiceUnavailable)
		return
	}
	limit := 50
	if l := r.URL.Query().Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 && n <= 500 {
			limit = n
		}
	}

	events, err := s.DB.RecentEvents(limit)
	if err != nil {
		slog.Error("events query failed", "error", err)
		http.Error(w, "events query failed", http.StatusInternalServerError)
		return
	}
	if events == nil {
		events = []persistence.LifecycleEvent{}
	}
	writeJSON(w, http.StatusOK, events)
}

func (s *Server) handleSeek(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Time *float64 `json:"time"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Time == nil {
		http.Error(w, "invalid json (want {\"time\": seconds})", http.StatusBadRequest)
		return
	}
	s.submit(w, engine.Seek(*req.Time))
}

func (s *Server) handleSpeed(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Speed *float64 `json:"speed"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Speed == nil {
		http.Error(w, "invalid json (want {\"speed\": scale})", http.StatusBadRequest)
		return
	}
	if *req.Speed < 0 || *req.Speed > maxSpeed {
		http.Error(w, fmt.Sprintf("speed must be 0-%d", maxSpeed), http.StatusBadRequest)
		return
	}
	s.submit(w, engine.SetSpeed(*req.Speed))
}

func (s *Server) handleRewind(w http.ResponseWriter, r *http.Request) {
	s.submit(w, engine.Rewind())
}

func (s *Server) handlePress(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Control string `json:"control"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json (want {\"control\": name})", http.StatusBadRequest)
		return
	}
	// The control table is fixed once the level is built.
	if _, ok := s.Eng.Level.Control(req.Control).(*controls.Button); !ok {
		http.Error(w, "unknown button: "+req.Control, http.StatusNotFound)
		return
	}
	s.submit(w, engine.Press(req.Control))
}

func (s *Server) submit(w http.ResponseWriter, cmd engine.Command) {
	if !s.Eng.Submit(cmd) {
		http.Error(w, "command queue full", http.StatusServiceUnavailable)
		return
	}
	slog.Info("admin command queued", "command", cmd.Name)
	writeJSON(w, http.StatusAccepted, map[string]string{"queued": cmd.Name})
}

// handleStream pushes each new frame over a websocket. Clients only
// observe; anything they send is discarded.
func (s *Server) handleStream(origins map[string]bool) http.HandlerFunc {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 4096,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return origin == "" || origins[origin]
		},
	}
	interval := s.StreamInterval
	if interval <= 0 {
		interval = 100 * time.Millisecond
	}

	return func(w http.ResponseWriter, r *http.Request) {
		if n := s.streamConns.Add(1); n > maxStreamConns {
			s.streamConns.Add(-1)
			http.Error(w, "too many stream connections", http.StatusServiceUnavailable)
			return
		}
		defer s.streamConns.Add(-1)

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			slog.Warn("stream upgrade failed", "error", err)
			return
		}
		defer conn.Close()
		slog.Info("stream client connected", "remote", clientIP(r))

		closed := make(chan struct{})
		go func() {
			defer close(closed)
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()

		var last *level.Frame
		send := func() bool {
			f := s.Eng.Frame()
			if f == last {
				return true
			}
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(f); err != nil {
				slog.Debug("stream write failed", "error", err)
				return false
			}
			last = f
			return true
		}
		if !send() {
			return
		}

		ticker := s.Clock.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.Chan():
				if !send() {
					return
				}
			case <-closed:
				slog.Info("stream client disconnected", "remote", clientIP(r))
				return
			case <-r.Context().Done():
				return
			}
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(data); err != nil {
		slog.Debug("response encode failed", "error", err)
	}
}
