package server

import (
	"context"
	"time"

	"github.com/skillgenie/skillgenie/internal/quiz"
)

// RunTicker calls TickAll every interval until ctx is done.
func (s *Server) RunTicker(ctx context.Context, interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			s.TickAll(ctx)
		}
	}
}

// TickAll advances the timer of every in-progress session by one second,
// retries recording of completed sessions, and drops sessions that have
// outlived Options.Retention. Completed sessions expire whether or not
// every sink accepted their result. Each session is handled under its own
// lock.
func (s *Server) TickAll(ctx context.Context) {
	now := s.opts.Clock()
	for _, id := range s.registry.IDs() {
		ls := s.lookup(id)

		var expired bool
		err := s.registry.Do(id, func(sess *quiz.Session) error {
			switch sess.Phase() {
			case quiz.PhaseInProgress:
				if err := sess.Tick(); err != nil {
					return err
				}
				s.recordIfDone(ctx, sess, ls)
				s.hub.Broadcast(id, sess.Snapshot())
			case quiz.PhaseNotStarted:
				expired = ls != nil && now.Sub(ls.createdAt) > s.opts.Retention
			case quiz.PhaseCompleted:
				s.recordIfDone(ctx, sess, ls)
				expired = now.Sub(sess.CompletedAt()) > s.opts.Retention
			}
			return nil
		})
		if err == nil && expired {
			s.remove(id)
		}
	}
}
