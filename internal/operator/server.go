// Package operator exposes the human-operator command surface: managing
// subscribers and overriding balances. It runs as an independent task next to
// the watch loop; the two share nothing but the store.
package operator

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"gift_watcher/internal/domain"
)

type SubscriberStore interface {
	List(ctx context.Context) ([]domain.Subscriber, error)
	SetBalance(ctx context.Context, userID, balance int64) error
	Add(ctx context.Context, userID int64) error
}

type Server struct {
	store  SubscriberStore
	logger *slog.Logger
	srv    *http.Server
}

func NewServer(addr string, store SubscriberStore, logger *slog.Logger) *Server {
	s := &Server{
		store:  store,
		logger: logger.With("component", "operator"),
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Route("/subscribers", func(r chi.Router) {
		r.Get("/", s.handleList)
		r.Post("/", s.handleAdd)
		r.Put("/{userID}/balance", s.handleSetBalance)
	})

	s.srv = &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	return s
}

// Handler returns the underlying router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.srv.Handler
}

func (s *Server) Start() error {
	s.logger.Info("operator server listening", "addr", s.srv.Addr)
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
