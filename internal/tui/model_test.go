package tui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/skillgenie/skillgenie/internal/questions"
	"github.com/skillgenie/skillgenie/internal/quiz"
	"github.com/skillgenie/skillgenie/internal/results"
)

func keyPress(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Text: string(r)}
}

func specialKey(code rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: code}
}

func testQuiz() *questions.Quiz {
	return &questions.Quiz{
		Title:            "Mini Stats",
		Topic:            "Statistics",
		TimeLimitSeconds: 3,
		PassingScore:     50,
		Questions: []quiz.Question{
			{ID: 1, Prompt: "Mean of 1 and 3?", Options: []string{"1", "2", "3"}, CorrectOption: 1, Explanation: "(1+3)/2"},
			{ID: 2, Prompt: "Mode of 1, 1, 2?", Options: []string{"1", "2"}, CorrectOption: 0, Explanation: "Most frequent."},
		},
	}
}

type captureSink struct {
	attempts []results.Attempt
	err      error
}

func (c *captureSink) Record(_ context.Context, a results.Attempt) error {
	c.attempts = append(c.attempts, a)
	return c.err
}

func newModel(t *testing.T, sink results.Sink) *Model {
	t.Helper()
	m, err := New(testQuiz(), Options{Sink: sink, UserID: "cli"})
	if err != nil {
		t.Fatalf("new model: %v", err)
	}
	return m
}

func send(m *Model, msgs ...tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	for _, msg := range msgs {
		_, cmd = m.Update(msg)
	}
	return cmd
}

func TestIntro_EnterStartsSession(t *testing.T) {
	m := newModel(t, nil)
	if m.Session().Phase() != quiz.PhaseNotStarted {
		t.Fatal("session should not start before Enter")
	}
	cmd := send(m, specialKey(tea.KeyEnter))
	if m.Session().Phase() != quiz.PhaseInProgress || m.screen != screenQuestion {
		t.Fatalf("phase = %s, screen = %d", m.Session().Phase(), m.screen)
	}
	if cmd == nil {
		t.Fatal("expected tick command after start")
	}
}

func TestIntro_Quit(t *testing.T) {
	m := newModel(t, nil)
	cmd := send(m, keyPress('q'))
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatal("expected tea.QuitMsg")
	}
}

func TestQuestion_SelectKeys(t *testing.T) {
	m := newModel(t, nil)
	send(m, specialKey(tea.KeyEnter))

	tests := []struct {
		msg  tea.Msg
		want int
	}{
		{specialKey(tea.KeyDown), 0},
		{specialKey(tea.KeyDown), 1},
		{specialKey(tea.KeyDown), 2},
		{specialKey(tea.KeyDown), 2},
		{specialKey(tea.KeyUp), 1},
		{keyPress('1'), 0},
		{keyPress('3'), 2},
		{keyPress('9'), 2}, // out of range is ignored
		{keyPress('k'), 1},
	}
	for i, tt := range tests {
		send(m, tt.msg)
		if got := m.Session().Selection(); got != tt.want {
			t.Fatalf("step %d: selection = %d, want %d", i, got, tt.want)
		}
	}
}

func TestQuestion_Navigation(t *testing.T) {
	m := newModel(t, nil)
	send(m, specialKey(tea.KeyEnter), keyPress('2'), specialKey(tea.KeyRight))

	if m.Session().CurrentIndex() != 1 {
		t.Fatalf("index = %d, want 1", m.Session().CurrentIndex())
	}
	if a, ok := m.Session().Answer(0); !ok || a != 1 {
		t.Fatalf("answer 0 = %d, %v", a, ok)
	}

	send(m, specialKey(tea.KeyLeft))
	if m.Session().CurrentIndex() != 0 || m.Session().Selection() != 1 {
		t.Fatalf("index %d selection %d", m.Session().CurrentIndex(), m.Session().Selection())
	}

	send(m, specialKey(tea.KeyLeft))
	if m.Session().CurrentIndex() != 0 || m.errMsg != "" {
		t.Fatalf("previous at first question should be a silent no-op, err %q", m.errMsg)
	}
}

func TestQuestion_ExplanationToggle(t *testing.T) {
	m := newModel(t, nil)
	send(m, specialKey(tea.KeyEnter), keyPress('e'))
	if m.showExplanation {
		t.Fatal("explanation should need a selection first")
	}

	send(m, keyPress('1'), keyPress('e'))
	if !m.showExplanation {
		t.Fatal("expected explanation shown")
	}
	if !strings.Contains(m.renderQuestion(), "(1+3)/2") {
		t.Fatal("explanation missing from view")
	}

	send(m, specialKey(tea.KeyEnter))
	if m.showExplanation {
		t.Fatal("explanation should hide on navigation")
	}
	if _, err := m.Session().Score(50); err == nil {
		t.Fatal("showing an explanation must not complete the session")
	}
}

func TestLastQuestion_CompletesAndRecords(t *testing.T) {
	sink := &captureSink{}
	m := newModel(t, sink)

	cmd := send(m,
		specialKey(tea.KeyEnter),
		keyPress('2'), specialKey(tea.KeyEnter),
		keyPress('2'), specialKey(tea.KeyEnter),
	)
	if m.screen != screenResult {
		t.Fatalf("screen = %d, want result", m.screen)
	}
	r := m.Result()
	if r == nil || r.CorrectCount != 1 || r.PercentScore != 50 || !r.Passed {
		t.Fatalf("result = %+v", r)
	}

	if cmd == nil {
		t.Fatal("expected record command")
	}
	send(m, cmd())
	if len(sink.attempts) != 1 || sink.attempts[0].UserID != "cli" {
		t.Fatalf("attempts = %+v", sink.attempts)
	}
	if !strings.Contains(m.renderResult(), "Result saved.") {
		t.Fatal("expected saved note")
	}

	// Recording again is a no-op.
	m.record()
	if len(sink.attempts) != 1 {
		t.Fatalf("attempts = %d after second record", len(sink.attempts))
	}
}

func TestResult_RetakeStartsFreshSession(t *testing.T) {
	sink := &captureSink{}
	m := newModel(t, sink)
	first := m.Session()

	recordCmd := send(m, specialKey(tea.KeyEnter), keyPress('s'))
	if m.screen != screenResult {
		t.Fatalf("screen = %d, want result", m.screen)
	}
	if !strings.Contains(m.renderResult(), quiz.FeedbackFailed) {
		t.Fatal("result should show feedback")
	}

	send(m, keyPress('r'))
	if m.screen != screenIntro || m.Result() != nil {
		t.Fatalf("screen = %d, result = %+v after retake", m.screen, m.Result())
	}
	if m.Session() == first || m.Session().Phase() != quiz.PhaseNotStarted {
		t.Fatal("retake should create a new unstarted session")
	}

	// The first attempt's save report must not mark the new attempt saved.
	send(m, recordCmd())
	if m.recorded {
		t.Fatal("stale record message applied to the new attempt")
	}

	cmd := send(m,
		specialKey(tea.KeyEnter),
		keyPress('2'), specialKey(tea.KeyEnter),
		keyPress('1'), specialKey(tea.KeyEnter),
	)
	r := m.Result()
	if r == nil || r.PercentScore != 100 || r.TotalPoints != 2*quiz.PointsPerCorrect {
		t.Fatalf("result = %+v", r)
	}
	if !strings.Contains(m.renderResult(), quiz.FeedbackExcellent) {
		t.Fatal("expected excellent feedback")
	}
	send(m, cmd())
	if len(sink.attempts) != 2 || sink.attempts[0].Result.SessionID == sink.attempts[1].Result.SessionID {
		t.Fatalf("attempts = %+v", sink.attempts)
	}
	if m.RecordErr() != nil {
		t.Fatalf("RecordErr = %v", m.RecordErr())
	}
}

func TestSubmitKey(t *testing.T) {
	m := newModel(t, nil)
	send(m, specialKey(tea.KeyEnter), keyPress('2'), keyPress('s'))
	if m.Session().Phase() != quiz.PhaseCompleted {
		t.Fatal("expected completed after submit")
	}
	if a, _ := m.Session().Answer(1); a != quiz.Unanswered {
		t.Fatalf("second answer = %d, want unanswered", a)
	}
	if !strings.Contains(m.renderResult(), "unanswered") {
		t.Fatal("review should show unanswered question")
	}
}

func TestTick_AutoSubmit(t *testing.T) {
	sink := &captureSink{err: errors.New("disk full")}
	m := newModel(t, sink)
	send(m, specialKey(tea.KeyEnter), keyPress('2'))

	if cmd := send(m, tickMsg(time.Now())); cmd == nil {
		t.Fatal("expected next tick")
	}
	send(m, tickMsg(time.Now()))
	if m.Session().RemainingSeconds() != 1 {
		t.Fatalf("remaining = %d", m.Session().RemainingSeconds())
	}

	cmd := send(m, tickMsg(time.Now()))
	if m.screen != screenResult || !m.Result().AutoSubmitted {
		t.Fatal("expected auto-submitted result")
	}
	if m.Result().CorrectCount != 1 {
		t.Fatalf("tentative selection should be committed, correct = %d", m.Result().CorrectCount)
	}
	send(m, cmd())
	if !strings.Contains(m.renderResult(), "Could not save result: disk full") {
		t.Fatal("expected save error in view")
	}
	if !strings.Contains(m.renderResult(), "submitted automatically") {
		t.Fatal("expected auto-submit note")
	}

	if cmd := send(m, tickMsg(time.Now())); cmd != nil {
		t.Fatal("ticks after completion should stop")
	}
}

func TestView(t *testing.T) {
	m := newModel(t, nil)
	if out := m.render(); out != "" {
		t.Fatal("expected empty view before size is known")
	}

	send(m, tea.WindowSizeMsg{Width: 100, Height: 30})
	if !strings.Contains(m.render(), "Mini Stats") {
		t.Fatal("intro should show the title")
	}

	send(m, specialKey(tea.KeyEnter))
	out := m.render()
	for _, want := range []string{"Question 1 of 2", "Mean of 1 and 3?", "0:03"} {
		if !strings.Contains(out, want) {
			t.Errorf("view missing %q", want)
		}
	}

	send(m, tea.WindowSizeMsg{Width: 20, Height: 5})
	if !strings.Contains(m.render(), "Terminal too small") {
		t.Fatal("expected size warning")
	}
}

func TestFormatClock(t *testing.T) {
	tests := map[int]string{0: "0:00", 59: "0:59", 60: "1:00", 600: "10:00", 61: "1:01"}
	for in, want := range tests {
		if got := formatClock(in); got != want {
			t.Errorf("formatClock(%d) = %q, want %q", in, got, want)
		}
	}
}
