// Package tui is the terminal quiz shell.
package tui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/skillgenie/skillgenie/internal/questions"
	"github.com/skillgenie/skillgenie/internal/quiz"
	"github.com/skillgenie/skillgenie/internal/results"
)

// screen is the part of the quiz being shown.
type screen int

const (
	screenIntro screen = iota
	screenQuestion
	screenResult
)

// Options configures a Model.
type Options struct {
	// Sink receives the result once the quiz completes. Nil discards it.
	Sink   results.Sink
	UserID string

	// Clock is passed to the session. Defaults to time.Now.
	Clock func() time.Time
}

// Model is the Bubble Tea model for one quiz attempt.
type Model struct {
	quiz    *questions.Quiz
	session *quiz.Session
	opts    Options

	screen          screen
	showExplanation bool
	result          *quiz.ScoreResult
	errMsg          string

	// One recorder per finished attempt; the last is the current one.
	recorders []*recorder

	// Set on the update loop when the current attempt's record command
	// reports back.
	recorded bool
	saveErr  error

	width  int
	height int
}

// New creates a Model for q. The session is created immediately and
// started when the learner leaves the intro screen.
func New(q *questions.Quiz, opts Options) (*Model, error) {
	if opts.Sink == nil {
		opts.Sink = results.Discard
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	s, err := q.NewSession(quiz.WithClock(opts.Clock))
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	return &Model{quiz: q, session: s, opts: opts}, nil
}

// Session returns the underlying session.
func (m *Model) Session() *quiz.Session { return m.session }

// Result returns the score once the quiz has completed, else nil.
func (m *Model) Result() *quiz.ScoreResult { return m.result }

// RecordErr returns the errors from recording results, if any. Call it
// after Run returns.
func (m *Model) RecordErr() error {
	var errs []error
	for _, r := range m.recorders {
		errs = append(errs, r.err)
	}
	return errors.Join(errs...)
}

// recorder delivers one attempt to the sink at most once.
type recorder struct {
	once    sync.Once
	attempt results.Attempt
	err     error
}

func (r *recorder) record(sink results.Sink) error {
	r.once.Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		r.err = sink.Record(ctx, r.attempt)
	})
	return r.err
}

func (m *Model) Init() tea.Cmd {
	return nil
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tickMsg:
		return m, m.handleTick()

	case recordedMsg:
		if msg.rec == m.current() {
			m.recorded = true
			m.saveErr = msg.Err
		}
		return m, nil

	case tea.KeyPressMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		switch m.screen {
		case screenIntro:
			return m, m.handleIntroKey(msg)
		case screenQuestion:
			return m, m.handleQuestionKey(msg)
		case screenResult:
			return m, m.handleResultKey(msg)
		}
	}
	return m, nil
}

func (m *Model) handleIntroKey(msg tea.KeyPressMsg) tea.Cmd {
	switch msg.String() {
	case "enter", "space":
		if err := m.session.Start(); err != nil {
			m.errMsg = err.Error()
			return nil
		}
		m.screen = screenQuestion
		return tick()
	case "q", "esc":
		return tea.Quit
	}
	return nil
}

func (m *Model) handleQuestionKey(msg tea.KeyPressMsg) tea.Cmd {
	m.errMsg = ""
	key := msg.String()

	var err error
	switch key {
	case "up", "k":
		err = m.moveSelection(-1)
	case "down", "j":
		err = m.moveSelection(1)
	case "1", "2", "3", "4", "5", "6", "7", "8", "9":
		idx := int(key[0] - '1')
		if m.session.Current().HasOption(idx) {
			err = m.session.SelectAnswer(idx)
		}
	case "enter", "right", "l":
		m.showExplanation = false
		err = m.session.Next()
	case "left", "h":
		m.showExplanation = false
		err = m.session.Previous()
	case "s":
		err = m.session.Complete()
	case "e":
		if m.session.Selection() != quiz.Unanswered {
			m.showExplanation = !m.showExplanation
		}
	}
	if err != nil {
		m.errMsg = err.Error()
		return nil
	}
	return m.finishIfDone()
}

// moveSelection moves the tentative selection up or down, starting from
// the first option when nothing is selected.
func (m *Model) moveSelection(delta int) error {
	n := len(m.session.Current().Options)
	sel := m.session.Selection()
	if sel == quiz.Unanswered {
		return m.session.SelectAnswer(0)
	}
	return m.session.SelectAnswer(min(max(sel+delta, 0), n-1))
}

func (m *Model) handleResultKey(msg tea.KeyPressMsg) tea.Cmd {
	switch msg.String() {
	case "enter", "q", "esc":
		return tea.Quit
	case "r":
		m.retake()
	}
	return nil
}

// retake replaces the finished session with a fresh one for the same quiz
// and returns to the intro screen. The finished attempt is still recorded.
func (m *Model) retake() {
	s, err := m.quiz.NewSession(quiz.WithClock(m.opts.Clock))
	if err != nil {
		m.errMsg = err.Error()
		return
	}
	m.session = s
	m.screen = screenIntro
	m.result = nil
	m.showExplanation = false
	m.errMsg = ""
	m.recorded = false
	m.saveErr = nil
}

func (m *Model) handleTick() tea.Cmd {
	if m.session.Phase() != quiz.PhaseInProgress {
		return nil
	}
	if err := m.session.Tick(); err != nil {
		m.errMsg = err.Error()
		return nil
	}
	if cmd := m.finishIfDone(); cmd != nil {
		return cmd
	}
	return tick()
}

// finishIfDone scores a completed session, switches to the result screen
// and returns the command that records the result.
func (m *Model) finishIfDone() tea.Cmd {
	if m.session.Phase() != quiz.PhaseCompleted || m.result != nil {
		return nil
	}
	res, err := m.session.Score(m.quiz.PassingScore)
	if err != nil {
		m.errMsg = err.Error()
		return nil
	}
	m.result = res
	m.screen = screenResult
	m.showExplanation = false

	rec := &recorder{attempt: results.NewAttempt(m.quiz, m.opts.UserID, res)}
	m.recorders = append(m.recorders, rec)
	sink := m.opts.Sink
	return func() tea.Msg {
		return recordedMsg{rec: rec, Err: rec.record(sink)}
	}
}

func (m *Model) current() *recorder {
	if len(m.recorders) == 0 {
		return nil
	}
	return m.recorders[len(m.recorders)-1]
}

// record sends the current result to the sink. It runs at most once per
// attempt.
func (m *Model) record() error {
	if rec := m.current(); rec != nil {
		return rec.record(m.opts.Sink)
	}
	return nil
}

func tick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Run plays q in the terminal and returns the final model.
func Run(q *questions.Quiz, opts Options) (*Model, error) {
	m, err := New(q, opts)
	if err != nil {
		return nil, err
	}
	p := tea.NewProgram(m)
	if _, err := p.Run(); err != nil {
		fmt.Fprintln(os.Stderr, "Error running program:", err)
		return nil, err
	}
	// The program may exit before the record commands have run.
	for _, rec := range m.recorders {
		rec.record(m.opts.Sink)
	}
	return m, nil
}
