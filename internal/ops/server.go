package ops

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/mux"

	"github.com/spotcell-game/server/internal/middleware"
	"github.com/spotcell-game/server/internal/model"
	"github.com/spotcell-game/server/internal/session"
	"github.com/spotcell-game/server/internal/storage"
)

// Status is the operational snapshot served by GET /status
type Status struct {
	Sessions int            `json:"sessions"`
	Games    map[string]int `json:"games"`
}

// Server exposes health and status over HTTP, separate from the game port
type Server struct {
	server    *http.Server
	directory *storage.Directory
	sessions  *session.Registry
	logger    *slog.Logger
}

// NewServer creates the ops listener on addr
func NewServer(addr string, directory *storage.Directory, sessions *session.Registry, logger *slog.Logger) *Server {
	s := &Server{
		directory: directory,
		sessions:  sessions,
		logger:    logger,
	}

	r := mux.NewRouter()
	r.Use(middleware.Recovery(logger, middleware.DefaultPanicHandler))
	r.Use(middleware.Logging(logger))
	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/status", s.handleStatus).Methods(http.MethodGet)

	s.server = &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	return s
}

// Start begins serving until Shutdown
func (s *Server) Start() error {
	s.logger.Info("ops listener starting", slog.String("addr", s.server.Addr))
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("ops server error: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the listener
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	games, err := s.directory.List(r.Context())
	if err != nil {
		s.logger.Error("status listing failed", slog.String("error", err.Error()))
		http.Error(w, "storage unavailable", http.StatusServiceUnavailable)
		return
	}

	status := Status{
		Sessions: s.sessions.Count(),
		Games: map[string]int{
			string(model.GameStateWaiting):    0,
			string(model.GameStateInProgress): 0,
			string(model.GameStateFinished):   0,
		},
	}
	for _, g := range games {
		status.Games[string(g.State)]++
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(status); err != nil {
		s.logger.Error("status encoding failed", slog.String("error", err.Error()))
	}
}
