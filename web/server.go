package web

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"oscreplay/player"
)

// Controller is the part of the player the HTTP API drives.
type Controller interface {
	Start(ctx context.Context) error
	Stop()
	Status() player.Status
}

type Server struct {
	Hub *Hub

	ctrl     Controller
	gatherer prometheus.Gatherer
	// ctx bounds cycles started through /play.
	ctx      context.Context
}

func NewServer(ctx context.Context, ctrl Controller, gatherer prometheus.Gatherer) *Server {
	return &Server{
		Hub:      NewHub(),
		ctrl:     ctrl,
		gatherer: gatherer,
		ctx:      ctx,
	}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /status", s.handleStatus)
	mux.HandleFunc("POST /play", s.handlePlay)
	mux.HandleFunc("POST /stop", s.handleStop)
	mux.HandleFunc("GET /ws", func(w http.ResponseWriter, r *http.Request) {
		serveWs(s.Hub, w, r)
	})
	if s.gatherer != nil {
		mux.Handle("GET /metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}
	return mux
}

// ListenAndServe runs the hub and the HTTP server until ctx is done.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	go s.Hub.Run(ctx)

	srv := &http.Server{Addr: addr, Handler: s.Handler()}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	log.Printf("HTTP server listening on %s", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.ctrl.Status())
}

func (s *Server) handlePlay(w http.ResponseWriter, r *http.Request) {
	err := s.ctrl.Start(s.ctx)
	switch {
	case err == nil:
		writeJSON(w, http.StatusAccepted, s.ctrl.Status())
	case errors.Is(err, player.ErrAlreadyPlaying):
		writeError(w, http.StatusConflict, err)
	case errors.Is(err, player.ErrInvalidAddress),
		errors.Is(err, player.ErrInvalidConfiguration),
		errors.Is(err, player.ErrNoBuffer):
		writeError(w, http.StatusBadRequest, err)
	default:
		writeError(w, http.StatusInternalServerError, err)
	}
}

func (s *Server) handleStop(w http.ResponseWriter, r *http.Request) {
	s.ctrl.Stop()
	writeJSON(w, http.StatusOK, s.ctrl.Status())
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Write response: %v", err)
	}
}

func writeError(w http.ResponseWriter, code int, err error) {
	writeJSON(w, code, map[string]string{"error": err.Error()})
}
