// Package results delivers graded quiz attempts to their destinations.
// Shells call a Sink after a session completes; the quiz engine itself
// never sees one.
package results

import (
	"context"
	"errors"

	"github.com/skillgenie/skillgenie/internal/questions"
	"github.com/skillgenie/skillgenie/internal/quiz"
	"github.com/skillgenie/skillgenie/internal/store"
)

// AnonymousUser is the user ID recorded when a shell has no user.
const AnonymousUser = "anonymous"

// Attempt is a graded session together with what was played.
type Attempt struct {
	UserID     string            `json:"user_id"`
	Title      string            `json:"title"`
	Topic      string            `json:"topic"`
	Difficulty string            `json:"difficulty"`
	Result     *quiz.ScoreResult `json:"result"`
}

// NewAttempt builds an Attempt for a completed session of q.
func NewAttempt(q *questions.Quiz, userID string, res *quiz.ScoreResult) Attempt {
	if userID == "" {
		userID = AnonymousUser
	}
	return Attempt{
		UserID:     userID,
		Title:      q.Title,
		Topic:      q.Topic,
		Difficulty: string(q.Difficulty),
		Result:     res,
	}
}

// AttemptData converts a to its stored form.
func (a Attempt) AttemptData() store.AttemptData {
	r := a.Result
	data := store.AttemptData{
		SessionID:      r.SessionID,
		UserID:         a.UserID,
		Title:          a.Title,
		Topic:          a.Topic,
		Difficulty:     a.Difficulty,
		PercentScore:   r.PercentScore,
		CorrectCount:   r.CorrectCount,
		TotalQuestions: r.TotalQuestions,
		PassingScore:   r.PassingScore,
		Passed:         r.Passed,
		ElapsedSeconds: r.ElapsedSeconds,
		AutoSubmitted:  r.AutoSubmitted,
		CompletedAt:    r.CompletedAt,
		Answers:        make([]store.AttemptAnswer, len(r.PerQuestion)),
	}
	for i, pq := range r.PerQuestion {
		data.Answers[i] = store.AttemptAnswer{
			QuestionID:     pq.QuestionID,
			SelectedOption: pq.SelectedOption,
			CorrectOption:  pq.CorrectOption,
			IsCorrect:      pq.IsCorrect,
		}
	}
	return data
}

// Sink receives graded attempts.
type Sink interface {
	Record(ctx context.Context, a Attempt) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, a Attempt) error

func (f SinkFunc) Record(ctx context.Context, a Attempt) error { return f(ctx, a) }

// Multi fans an attempt out to every sink. All sinks run even if some
// fail; the failures are joined.
type Multi []Sink

func (m Multi) Record(ctx context.Context, a Attempt) error {
	var errs []error
	for _, s := range m {
		if err := s.Record(ctx, a); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Sinks expands s into its leaf sinks, flattening nested Multi values.
// A nil sink yields nothing.
func Sinks(s Sink) []Sink {
	m, ok := s.(Multi)
	if !ok {
		if s == nil {
			return nil
		}
		return []Sink{s}
	}
	var out []Sink
	for _, inner := range m {
		out = append(out, Sinks(inner)...)
	}
	return out
}

// Discard is a Sink that drops every attempt.
var Discard Sink = SinkFunc(func(context.Context, Attempt) error { return nil })
