// Package server exposes quiz sessions over a JSON API with a WebSocket
// stream of timer updates.
package server

import (
	"context"
	"errors"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/skillgenie/skillgenie/internal/questions"
	"github.com/skillgenie/skillgenie/internal/quiz"
	"github.com/skillgenie/skillgenie/internal/results"
	"github.com/skillgenie/skillgenie/internal/store"
)

// Options configures a Server.
type Options struct {
	Provider questions.Provider
	Sink     results.Sink
	Attempts store.AttemptRepo

	// PassingScore is used for quizzes that do not carry their own.
	PassingScore int

	// Retention is how long finished or never-started sessions stay
	// queryable before the ticker drops them.
	Retention time.Duration

	// Clock defaults to time.Now.
	Clock func() time.Time

	// LogRequests enables chi's request logger.
	LogRequests bool
}

// Server owns the live sessions and the HTTP handlers that drive them.
type Server struct {
	opts     Options
	registry *quiz.Registry
	hub      *Hub
	router   chi.Router

	mu   sync.RWMutex
	live map[string]*liveSession
}

// liveSession is what the server knows about a session beyond the engine
// state. pending and recordTries are only touched under the session's
// registry lock.
type liveSession struct {
	quiz      *questions.Quiz
	userID    string
	createdAt time.Time

	// pending holds the sinks that have not yet accepted the result.
	pending     []results.Sink
	recordTries int
}

const (
	// DefaultRetention keeps sessions for ten minutes after completion.
	DefaultRetention = 10 * time.Minute

	// maxRecordTries bounds how often a failing sink is retried.
	maxRecordTries = 5
)

// New creates a Server. Provider is required; a nil Sink discards results.
func New(opts Options) *Server {
	if opts.Sink == nil {
		opts.Sink = results.Discard
	}
	if opts.PassingScore <= 0 {
		opts.PassingScore = quiz.DefaultPassingScore
	}
	if opts.Retention <= 0 {
		opts.Retention = DefaultRetention
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}

	s := &Server{
		opts:     opts,
		registry: quiz.NewRegistry(),
		hub:      NewHub(),
		live:     make(map[string]*liveSession),
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()

	if s.opts.LogRequests {
		r.Use(chimiddleware.Logger)
	}
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.RequestID)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Post("/quizzes/generate", s.handleGenerate)

		r.Route("/sessions/{id}", func(r chi.Router) {
			r.Get("/", s.handleGetSession)
			r.Post("/start", s.handleStart)
			r.Post("/select", s.handleSelect)
			r.Post("/next", s.handleNext)
			r.Post("/previous", s.handlePrevious)
			r.Post("/complete", s.handleComplete)
			r.Get("/score", s.handleScore)
			r.Get("/ws", s.handleWebSocket)
		})

		r.Get("/attempts", s.handleListAttempts)
		r.Get("/attempts/stats", s.handleAttemptStats)
		r.Get("/attempts/{sessionID}", s.handleGetAttempt)
	})
	return r
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Registry returns the live session registry.
func (s *Server) Registry() *quiz.Registry {
	return s.registry
}

// ListenAndServe serves on addr and runs the ticker until ctx is done,
// then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	tickCtx, stopTicker := context.WithCancel(ctx)
	defer stopTicker()
	go s.RunTicker(tickCtx, time.Second)

	errCh := make(chan error, 1)
	go func() {
		log.Printf("skillgenie API listening on %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Println("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s.hub.CloseAll()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}

func (s *Server) lookup(id string) *liveSession {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.live[id]
}

func (s *Server) newLiveSession(q *questions.Quiz, userID string) *liveSession {
	return &liveSession{
		quiz:      q,
		userID:    userID,
		createdAt: s.opts.Clock(),
		pending:   results.Sinks(s.opts.Sink),
	}
}

func (s *Server) add(sess *quiz.Session, ls *liveSession) {
	s.mu.Lock()
	s.live[sess.ID()] = ls
	s.mu.Unlock()
	s.registry.Put(sess)
}

func (s *Server) remove(id string) {
	s.registry.Remove(id)
	s.mu.Lock()
	delete(s.live, id)
	s.mu.Unlock()
	s.hub.CloseSession(id)
}

func (s *Server) passingScore(ls *liveSession) int {
	if ls != nil && ls.quiz.PassingScore > 0 {
		return ls.quiz.PassingScore
	}
	return s.opts.PassingScore
}

// recordIfDone delivers the result of a completed session to every sink
// that has not yet accepted it. Sinks that succeed are never called again;
// failing ones are retried on later calls until maxRecordTries is reached.
// Callers hold the session's registry lock.
func (s *Server) recordIfDone(ctx context.Context, sess *quiz.Session, ls *liveSession) {
	if ls == nil || len(ls.pending) == 0 || ls.recordTries >= maxRecordTries ||
		sess.Phase() != quiz.PhaseCompleted {
		return
	}
	res, err := sess.Score(s.passingScore(ls))
	if err != nil {
		log.Printf("score session %s: %v", sess.ID(), err)
		return
	}

	ls.recordTries++
	attempt := results.NewAttempt(ls.quiz, ls.userID, res)
	failed := ls.pending[:0]
	for _, sink := range ls.pending {
		if err := sink.Record(ctx, attempt); err != nil {
			log.Printf("record session %s (try %d): %v", sess.ID(), ls.recordTries, err)
			failed = append(failed, sink)
		}
	}
	ls.pending = failed
	if len(failed) > 0 && ls.recordTries == maxRecordTries {
		log.Printf("giving up recording session %s: %d sink(s) still failing", sess.ID(), len(failed))
	}
}
