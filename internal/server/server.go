// Package server exposes training snapshots to external renderers over HTTP
// and websockets.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	channerics "github.com/niceyeti/channerics/channels"

	"snakeevo/internal/trainer"
)

// Server holds the latest snapshot and fans it out to websocket subscribers
type Server struct {
	log *slog.Logger

	mu          sync.RWMutex
	latest      *trainer.Snapshot
	subscribers map[chan trainer.Snapshot]struct{}
}

// New creates a server with no snapshot yet
func New(log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{
		log:         log,
		subscribers: make(map[chan trainer.Snapshot]struct{}),
	}
}

// Consume reads snapshots until ctx is done or the source is closed
func (s *Server) Consume(ctx context.Context, snapshots <-chan trainer.Snapshot) {
	for snap := range channerics.OrDone(ctx.Done(), snapshots) {
		s.Publish(snap)
	}
}

// Publish stores snap as the latest snapshot and offers it to every
// subscriber. A subscriber that has not taken the previous one gets it
// replaced.
func (s *Server) Publish(snap trainer.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.latest = &snap
	for ch := range s.subscribers {
		select {
		case <-ch:
		default:
		}
		ch <- snap
	}
}

// Latest returns the most recent snapshot, if any
func (s *Server) Latest() (trainer.Snapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.latest == nil {
		return trainer.Snapshot{}, false
	}
	return *s.latest, true
}

// subscribe registers a mailbox that starts with the latest snapshot
func (s *Server) subscribe() chan trainer.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch := make(chan trainer.Snapshot, 1)
	if s.latest != nil {
		ch <- *s.latest
	}
	s.subscribers[ch] = struct{}{}
	return ch
}

func (s *Server) unsubscribe(ch chan trainer.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.subscribers, ch)
}

// Handler routes the snapshot endpoints
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/snapshot", s.serveSnapshot).Methods(http.MethodGet)
	r.HandleFunc("/ws", s.serveWebsocket).Methods(http.MethodGet)
	return r
}

// ListenAndServe serves until ctx is done, then shuts down gracefully
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		errc <- srv.ListenAndServe()
	}()
	s.log.Info("snapshot server listening", "addr", addr)

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) serveSnapshot(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.Latest()
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(snap); err != nil {
		s.log.Warn("failed to write snapshot", "err", err)
	}
}

func (s *Server) serveWebsocket(w http.ResponseWriter, r *http.Request) {
	updates := s.subscribe()
	defer s.unsubscribe(updates)

	cli, err := newClient(updates, w, r)
	if err != nil {
		s.log.Warn("websocket upgrade failed", "err", err)
		return
	}
	defer cli.Close()

	if err := cli.Sync(); err != nil && !isClosure(err) {
		s.log.Debug("websocket client gone", "remote", r.RemoteAddr, "err", err)
	}
}
