// Package hostapi exposes the GBA machine to an out-of-process host
// over HTTP + WebSocket: session create/destroy, the Host API surface
// named in spec §6 (step, run_to_vblank, set_key, read_mem, write_mem,
// add/remove_breakpoint, load/save_backup), and event/frame streaming.
// Grounded on the teacher's api/ + service/ packages, generalized from
// "debug an assembled program" to "drive a running console."
package hostapi

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/advanceemu/gba/internal/logtag"
)

// Server is the HTTP+WebSocket front end, grounded on api.Server.
type Server struct {
	sessions    *SessionManager
	broadcaster *Broadcaster
	mux         *http.ServeMux
	server      *http.Server
	port        int
}

// NewServer builds a Server listening on 127.0.0.1:port once started.
func NewServer(port int) *Server {
	s := &Server{
		sessions:    NewSessionManager(),
		broadcaster: NewBroadcaster(),
		mux:         http.NewServeMux(),
		port:        port,
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("/health", s.handleHealth)
	s.mux.HandleFunc("/api/v1/ws", s.handleWebSocket)
	s.mux.HandleFunc("/api/v1/session", s.handleSessionCollection)
	s.mux.HandleFunc("/api/v1/session/", s.handleSessionRoute)
}

// Handler returns the server's mux wrapped in CORS middleware.
func (s *Server) Handler() http.Handler {
	return s.corsMiddleware(s.mux)
}

// Start blocks serving on 127.0.0.1:port.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         fmt.Sprintf("127.0.0.1:%d", s.port),
		Handler:      s.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	logtag.Printf(logtag.MMIO, "host API listening on http://127.0.0.1:%d", s.port)
	return s.server.ListenAndServe()
}

// Shutdown closes the broadcaster, every session, and the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.broadcaster.Close()
	for _, id := range s.sessions.List() {
		_ = s.sessions.Destroy(id)
	}
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// corsMiddleware allows only localhost origins, matching the teacher's
// security-conscious default (api/server.go) rather than a permissive
// wildcard.
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if isAllowedOrigin(origin) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
		}
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func isAllowedOrigin(origin string) bool {
	if origin == "" {
		return true
	}
	for _, prefix := range []string{"http://localhost:", "http://127.0.0.1:", "https://localhost:", "file://"} {
		if strings.HasPrefix(origin, prefix) {
			return true
		}
	}
	return origin == "http://localhost" || origin == "http://127.0.0.1"
}
