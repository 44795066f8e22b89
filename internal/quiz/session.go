package quiz

import (
	"time"

	"github.com/google/uuid"
)

// Phase represents where a session is in its lifecycle.
type Phase int

const (
	PhaseNotStarted Phase = iota // Created, timer not running
	PhaseInProgress              // Accepting navigation, answers and ticks
	PhaseCompleted               // Terminal; read-only
)

func (p Phase) String() string {
	switch p {
	case PhaseNotStarted:
		return "not_started"
	case PhaseInProgress:
		return "in_progress"
	case PhaseCompleted:
		return "completed"
	default:
		return "unknown"
	}
}

// Unanswered is the recorded value for a question the learner moved past
// (or ran out of time on) without choosing an option.
const Unanswered = -1

// Session is the state of one quiz attempt.
//
// A Session is not safe for concurrent use. Callers that share a session
// across goroutines must serialize access, e.g. through Registry.Do.
// Every mutating method either applies its transition fully or returns an
// error and leaves the session untouched.
type Session struct {
	id        string
	questions []Question
	timeLimit int
	now       func() time.Time

	current   int
	selection int         // Unanswered when nothing is selected
	answers   map[int]int // question index -> option index or Unanswered
	remaining int
	phase     Phase

	startedAt     time.Time
	completedAt   time.Time
	autoSubmitted bool
}

// Option configures a Session at creation.
type Option func(*Session)

// WithID sets the session ID instead of generating a UUID.
func WithID(id string) Option {
	return func(s *Session) { s.id = id }
}

// WithClock sets the clock used for StartedAt and CompletedAt. A nil
// clock keeps time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Session) {
		if now != nil {
			s.now = now
		}
	}
}

// NewSession creates a session in PhaseNotStarted. The question slice is
// copied; later changes by the caller do not affect the session.
func NewSession(questions []Question, timeLimitSeconds int, opts ...Option) (*Session, error) {
	if err := ValidateQuestions(questions); err != nil {
		return nil, err
	}
	if timeLimitSeconds <= 0 {
		return nil, &InvalidInputError{Field: "time_limit", Reason: "must be positive"}
	}

	qs := make([]Question, len(questions))
	for i, q := range questions {
		q.Options = append([]string(nil), q.Options...)
		qs[i] = q
	}

	s := &Session{
		id:        uuid.New().String(),
		questions: qs,
		timeLimit: timeLimitSeconds,
		now:       time.Now,
		selection: Unanswered,
		answers:   make(map[int]int),
		remaining: timeLimitSeconds,
		phase:     PhaseNotStarted,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Start moves the session to PhaseInProgress and records the start time.
func (s *Session) Start() error {
	if s.phase != PhaseNotStarted {
		return &InvalidStateError{Op: "start", Phase: s.phase}
	}
	s.phase = PhaseInProgress
	s.startedAt = s.now()
	return nil
}

// SelectAnswer sets the tentative answer for the current question. Nothing
// is recorded until the learner navigates away or the session completes.
func (s *Session) SelectAnswer(option int) error {
	if s.phase != PhaseInProgress {
		return &InvalidStateError{Op: "select", Phase: s.phase}
	}
	if !s.questions[s.current].HasOption(option) {
		return &InvalidInputError{
			Op:     "select",
			Field:  "option",
			Reason: "index out of range for current question",
		}
	}
	s.selection = option
	return nil
}

// ClearSelection drops the tentative answer for the current question.
func (s *Session) ClearSelection() error {
	if s.phase != PhaseInProgress {
		return &InvalidStateError{Op: "clear", Phase: s.phase}
	}
	s.selection = Unanswered
	return nil
}

// Next commits the current selection and moves forward. On the last
// question it completes the session instead.
func (s *Session) Next() error {
	if s.phase != PhaseInProgress {
		return &InvalidStateError{Op: "next", Phase: s.phase}
	}
	s.commit()
	if s.current == len(s.questions)-1 {
		s.finish(false)
		return nil
	}
	s.current++
	s.restoreSelection()
	return nil
}

// Previous moves back one question without committing the current
// selection. On the first question it does nothing.
func (s *Session) Previous() error {
	if s.phase != PhaseInProgress {
		return &InvalidStateError{Op: "previous", Phase: s.phase}
	}
	if s.current == 0 {
		return nil
	}
	s.current--
	s.restoreSelection()
	return nil
}

// Tick accounts for one elapsed second. When the time runs out the session
// is completed with every unanswered question recorded as Unanswered.
func (s *Session) Tick() error {
	if s.phase != PhaseInProgress {
		return &InvalidStateError{Op: "tick", Phase: s.phase}
	}
	if s.remaining > 0 {
		s.remaining--
	}
	if s.remaining == 0 {
		s.commit()
		s.finish(true)
	}
	return nil
}

// Complete submits the session. Calling it on a completed session is a
// no-op.
func (s *Session) Complete() error {
	switch s.phase {
	case PhaseCompleted:
		return nil
	case PhaseNotStarted:
		return &InvalidStateError{Op: "complete", Phase: s.phase}
	}
	s.commit()
	s.finish(false)
	return nil
}

// commit records the tentative selection for the current question.
func (s *Session) commit() {
	s.answers[s.current] = s.selection
}

func (s *Session) restoreSelection() {
	if a, ok := s.answers[s.current]; ok {
		s.selection = a
		return
	}
	s.selection = Unanswered
}

func (s *Session) finish(auto bool) {
	for i := range s.questions {
		if _, ok := s.answers[i]; !ok {
			s.answers[i] = Unanswered
		}
	}
	s.phase = PhaseCompleted
	s.completedAt = s.now()
	s.autoSubmitted = auto
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Phase returns the current lifecycle phase.
func (s *Session) Phase() Phase { return s.phase }

// CurrentIndex returns the index of the displayed question.
func (s *Session) CurrentIndex() int { return s.current }

// Current returns the displayed question.
func (s *Session) Current() Question { return s.questions[s.current] }

// Len returns the number of questions.
func (s *Session) Len() int { return len(s.questions) }

// Questions returns a copy of the question sequence.
func (s *Session) Questions() []Question {
	out := make([]Question, len(s.questions))
	copy(out, s.questions)
	return out
}

// Selection returns the tentative answer for the current question, or
// Unanswered.
func (s *Session) Selection() int { return s.selection }

// Answer returns the recorded answer for question i and whether an entry
// exists. A recorded entry may itself be Unanswered.
func (s *Session) Answer(i int) (int, bool) {
	a, ok := s.answers[i]
	return a, ok
}

// RecordedCount returns how many questions have a recorded entry.
func (s *Session) RecordedCount() int { return len(s.answers) }

// RemainingSeconds returns the time left on the clock.
func (s *Session) RemainingSeconds() int { return s.remaining }

// TimeLimit returns the configured time limit in seconds.
func (s *Session) TimeLimit() int { return s.timeLimit }

// ElapsedSeconds returns the time used so far.
func (s *Session) ElapsedSeconds() int { return s.timeLimit - s.remaining }

// StartedAt returns when Start was called, or the zero time.
func (s *Session) StartedAt() time.Time { return s.startedAt }

// CompletedAt returns when the session completed, or the zero time.
func (s *Session) CompletedAt() time.Time { return s.completedAt }

// AutoSubmitted reports whether the session was completed by the timer.
func (s *Session) AutoSubmitted() bool { return s.autoSubmitted }
