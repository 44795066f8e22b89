package quiz

import (
	"errors"
	"testing"
	"time"
)

var fixedNow = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

func testQuestions(correct ...int) []Question {
	qs := make([]Question, len(correct))
	for i, c := range correct {
		qs[i] = Question{
			ID:            i + 1,
			Prompt:        "Question?",
			Options:       []string{"A", "B", "C", "D"},
			CorrectOption: c,
			Explanation:   "Because.",
		}
	}
	return qs
}

func newStarted(t *testing.T, timeLimit int, correct ...int) *Session {
	t.Helper()
	s, err := NewSession(testQuestions(correct...), timeLimit, WithClock(fixedClock))
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	if err := s.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	return s
}

func TestNewSession_InitialState(t *testing.T) {
	s, err := NewSession(testQuestions(1, 0, 2), 90)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Phase() != PhaseNotStarted {
		t.Errorf("Phase = %s, want not_started", s.Phase())
	}
	if s.RemainingSeconds() != 90 {
		t.Errorf("RemainingSeconds = %d, want 90", s.RemainingSeconds())
	}
	if s.CurrentIndex() != 0 {
		t.Errorf("CurrentIndex = %d, want 0", s.CurrentIndex())
	}
	if s.RecordedCount() != 0 {
		t.Errorf("RecordedCount = %d, want 0", s.RecordedCount())
	}
	if s.Selection() != Unanswered {
		t.Errorf("Selection = %d, want Unanswered", s.Selection())
	}
	if s.ID() == "" {
		t.Error("expected generated session ID")
	}
}

func TestNewSession_InvalidInput(t *testing.T) {
	tests := []struct {
		name      string
		questions []Question
		timeLimit int
	}{
		{"no questions", nil, 60},
		{"zero time limit", testQuestions(0), 0},
		{"negative time limit", testQuestions(0), -5},
		{"one option", []Question{{ID: 1, Prompt: "?", Options: []string{"A"}}}, 60},
		{"correct index too high", []Question{{ID: 1, Prompt: "?", Options: []string{"A", "B"}, CorrectOption: 2}}, 60},
		{"correct index negative", []Question{{ID: 1, Prompt: "?", Options: []string{"A", "B"}, CorrectOption: -1}}, 60},
		{"duplicate ids", []Question{
			{ID: 7, Prompt: "?", Options: []string{"A", "B"}},
			{ID: 7, Prompt: "?", Options: []string{"A", "B"}},
		}, 60},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewSession(tt.questions, tt.timeLimit)
			if !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got %v", err)
			}
			var inErr *InvalidInputError
			if !errors.As(err, &inErr) {
				t.Fatalf("expected *InvalidInputError, got %T", err)
			}
		})
	}
}

func TestNewSession_CopiesQuestions(t *testing.T) {
	qs := testQuestions(0, 1)
	s, err := NewSession(qs, 60)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	qs[0].Prompt = "changed"
	qs[0].Options[0] = "changed"

	if s.Current().Prompt == "changed" || s.Current().Options[0] == "changed" {
		t.Error("session shares question storage with caller")
	}
}

func TestWithClock_NilKeepsDefault(t *testing.T) {
	s, err := NewSession(testQuestions(0), 60, WithClock(nil))
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	before := time.Now()
	if err := s.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if s.StartedAt().Before(before) {
		t.Errorf("StartedAt = %v, want wall clock time after %v", s.StartedAt(), before)
	}
}

func TestStart_Twice(t *testing.T) {
	s := newStarted(t, 60, 0, 1)
	if err := s.SelectAnswer(2); err != nil {
		t.Fatalf("SelectAnswer: %v", err)
	}
	before := s.Snapshot()

	err := s.Start()
	var stErr *InvalidStateError
	if !errors.As(err, &stErr) {
		t.Fatalf("expected *InvalidStateError, got %v", err)
	}
	if stErr.Phase != PhaseInProgress {
		t.Errorf("error phase = %s, want in_progress", stErr.Phase)
	}

	after := s.Snapshot()
	if after.Phase != before.Phase || after.Selection != before.Selection ||
		after.RemainingSeconds != before.RemainingSeconds || after.CurrentIndex != before.CurrentIndex {
		t.Errorf("state changed after failed Start: before=%+v after=%+v", before, after)
	}
	if !s.StartedAt().Equal(fixedNow) {
		t.Errorf("StartedAt = %v, want %v", s.StartedAt(), fixedNow)
	}
}

func TestOperationsBeforeStart(t *testing.T) {
	s, err := NewSession(testQuestions(0, 1), 60)
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}

	ops := map[string]func() error{
		"select":   func() error { return s.SelectAnswer(0) },
		"next":     s.Next,
		"previous": s.Previous,
		"tick":     s.Tick,
		"complete": s.Complete,
		"score":    func() error { _, err := s.Score(DefaultPassingScore); return err },
	}
	for name, op := range ops {
		if err := op(); !errors.Is(err, ErrInvalidState) {
			t.Errorf("%s before start: expected ErrInvalidState, got %v", name, err)
		}
	}
	if s.Phase() != PhaseNotStarted || s.RemainingSeconds() != 60 {
		t.Error("failed operations mutated the session")
	}
}

func TestSelectAnswer_OutOfRange(t *testing.T) {
	s := newStarted(t, 60, 0)
	if err := s.SelectAnswer(1); err != nil {
		t.Fatalf("SelectAnswer: %v", err)
	}

	for _, opt := range []int{-1, 4, 100} {
		if err := s.SelectAnswer(opt); !errors.Is(err, ErrInvalidInput) {
			t.Errorf("SelectAnswer(%d): expected ErrInvalidInput, got %v", opt, err)
		}
	}
	if s.Selection() != 1 {
		t.Errorf("Selection = %d, want 1 (unchanged)", s.Selection())
	}
}

func TestSelectAnswer_NotCommittedUntilNavigation(t *testing.T) {
	s := newStarted(t, 60, 0, 1)
	if err := s.SelectAnswer(3); err != nil {
		t.Fatalf("SelectAnswer: %v", err)
	}
	if _, ok := s.Answer(0); ok {
		t.Fatal("selection recorded before navigation")
	}
	if err := s.SelectAnswer(2); err != nil {
		t.Fatalf("SelectAnswer: %v", err)
	}
	if err := s.Next(); err != nil {
		t.Fatalf("Next: %v", err)
	}
	if a, _ := s.Answer(0); a != 2 {
		t.Errorf("recorded answer = %d, want 2 (last selection)", a)
	}
}

func TestNext_UnansweredRecorded(t *testing.T) {
	s := newStarted(t, 60, 0, 1)
	if err := s.Next(); err != nil {
		t.Fatalf("Next: %v", err)
	}
	a, ok := s.Answer(0)
	if !ok || a != Unanswered {
		t.Errorf("Answer(0) = %d, %v; want Unanswered, true", a, ok)
	}
	if s.CurrentIndex() != 1 {
		t.Errorf("CurrentIndex = %d, want 1", s.CurrentIndex())
	}
	if s.Selection() != Unanswered {
		t.Errorf("Selection = %d, want cleared", s.Selection())
	}
}

func TestSelectNextPrevious_RestoresSelection(t *testing.T) {
	s := newStarted(t, 60, 0, 1, 2)
	if err := s.SelectAnswer(3); err != nil {
		t.Fatalf("SelectAnswer: %v", err)
	}
	if err := s.Next(); err != nil {
		t.Fatalf("Next: %v", err)
	}
	if err := s.Previous(); err != nil {
		t.Fatalf("Previous: %v", err)
	}
	if s.CurrentIndex() != 0 {
		t.Fatalf("CurrentIndex = %d, want 0", s.CurrentIndex())
	}
	if s.Selection() != 3 {
		t.Errorf("Selection = %d, want 3", s.Selection())
	}
}

func TestPrevious_DoesNotCommit(t *testing.T) {
	s := newStarted(t, 60, 0, 1, 2)
	if err := s.Next(); err != nil {
		t.Fatalf("Next: %v", err)
	}
	if err := s.SelectAnswer(1); err != nil {
		t.Fatalf("SelectAnswer: %v", err)
	}
	if err := s.Previous(); err != nil {
		t.Fatalf("Previous: %v", err)
	}
	if _, ok := s.Answer(1); ok {
		t.Error("Previous committed the selection for question 1")
	}

	// Moving forward again restores nothing for question 1.
	if err := s.Next(); err != nil {
		t.Fatalf("Next: %v", err)
	}
	if s.Selection() != Unanswered {
		t.Errorf("Selection = %d, want Unanswered", s.Selection())
	}
}

func TestRevisit_OverwritesRecordedAnswer(t *testing.T) {
	s := newStarted(t, 60, 0, 1, 2)
	_ = s.SelectAnswer(1)
	_ = s.Next()
	_ = s.Previous()
	_ = s.SelectAnswer(0)
	_ = s.Next()

	if a, _ := s.Answer(0); a != 0 {
		t.Errorf("Answer(0) = %d, want 0 (overwritten)", a)
	}
	if s.RecordedCount() != 1 {
		t.Errorf("RecordedCount = %d, want 1", s.RecordedCount())
	}
}

func TestPrevious_AtFirstQuestion(t *testing.T) {
	s := newStarted(t, 60, 0, 1)
	_ = s.SelectAnswer(2)

	if err := s.Previous(); err != nil {
		t.Fatalf("Previous at index 0: unexpected error %v", err)
	}
	if s.CurrentIndex() != 0 {
		t.Errorf("CurrentIndex = %d, want 0", s.CurrentIndex())
	}
	if s.Selection() != 2 {
		t.Errorf("Selection = %d, want 2 (unchanged)", s.Selection())
	}
}

func TestNext_LastQuestionCompletes(t *testing.T) {
	s := newStarted(t, 60, 0, 1)
	_ = s.Next()
	_ = s.SelectAnswer(1)
	if err := s.Next(); err != nil {
		t.Fatalf("Next: %v", err)
	}
	if s.Phase() != PhaseCompleted {
		t.Fatalf("Phase = %s, want completed", s.Phase())
	}
	if s.CurrentIndex() != 1 {
		t.Errorf("CurrentIndex = %d, want 1", s.CurrentIndex())
	}
	if a, _ := s.Answer(1); a != 1 {
		t.Errorf("Answer(1) = %d, want 1", a)
	}
	if s.AutoSubmitted() {
		t.Error("expected AutoSubmitted false for manual submit")
	}
	if !s.CompletedAt().Equal(fixedNow) {
		t.Errorf("CompletedAt = %v, want %v", s.CompletedAt(), fixedNow)
	}
}

func TestTick_CountsDown(t *testing.T) {
	s := newStarted(t, 5, 0)
	for i := 0; i < 3; i++ {
		if err := s.Tick(); err != nil {
			t.Fatalf("Tick: %v", err)
		}
	}
	if s.RemainingSeconds() != 2 {
		t.Errorf("RemainingSeconds = %d, want 2", s.RemainingSeconds())
	}
	if s.Phase() != PhaseInProgress {
		t.Errorf("Phase = %s, want in_progress", s.Phase())
	}
	if s.ElapsedSeconds() != 3 {
		t.Errorf("ElapsedSeconds = %d, want 3", s.ElapsedSeconds())
	}
}

func TestTick_ExpiryAutoSubmits(t *testing.T) {
	tests := []struct {
		name     string
		answered int
	}{
		{"none answered", 0},
		{"one answered", 1},
		{"all answered but last uncommitted", 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			const limit = 10
			s := newStarted(t, limit, 0, 1, 2)
			for i := 0; i < tt.answered; i++ {
				_ = s.SelectAnswer(i)
				_ = s.Next()
			}
			_ = s.SelectAnswer(2)

			for i := 0; i < limit; i++ {
				if err := s.Tick(); err != nil {
					t.Fatalf("Tick %d: %v", i, err)
				}
			}

			if s.Phase() != PhaseCompleted {
				t.Fatalf("Phase = %s, want completed", s.Phase())
			}
			if s.RemainingSeconds() != 0 {
				t.Errorf("RemainingSeconds = %d, want 0", s.RemainingSeconds())
			}
			if !s.AutoSubmitted() {
				t.Error("expected AutoSubmitted")
			}
			if s.RecordedCount() != 3 {
				t.Errorf("RecordedCount = %d, want 3", s.RecordedCount())
			}
			if a, _ := s.Answer(tt.answered); a != 2 {
				t.Errorf("current tentative answer = %d, want 2 committed", a)
			}
			if err := s.Tick(); !errors.Is(err, ErrInvalidState) {
				t.Errorf("Tick after completion: expected ErrInvalidState, got %v", err)
			}
		})
	}
}

func TestComplete_Idempotent(t *testing.T) {
	s := newStarted(t, 60, 1, 0, 3)
	_ = s.SelectAnswer(1)
	_ = s.Next()
	_ = s.Tick()

	if err := s.Complete(); err != nil {
		t.Fatalf("Complete: %v", err)
	}
	first, err := s.Score(DefaultPassingScore)
	if err != nil {
		t.Fatalf("Score: %v", err)
	}

	if err := s.Complete(); err != nil {
		t.Fatalf("second Complete: %v", err)
	}
	second, err := s.Score(DefaultPassingScore)
	if err != nil {
		t.Fatalf("Score: %v", err)
	}

	if first.PercentScore != second.PercentScore || first.CorrectCount != second.CorrectCount ||
		first.ElapsedSeconds != second.ElapsedSeconds || !first.CompletedAt.Equal(second.CompletedAt) {
		t.Errorf("results differ: %+v vs %+v", first, second)
	}
	for i := range first.PerQuestion {
		if first.PerQuestion[i] != second.PerQuestion[i] {
			t.Errorf("PerQuestion[%d] differs: %+v vs %+v", i, first.PerQuestion[i], second.PerQuestion[i])
		}
	}
}

func TestCompletedIsReadOnly(t *testing.T) {
	s := newStarted(t, 60, 0, 1)
	_ = s.SelectAnswer(0)
	_ = s.Complete()

	for name, op := range map[string]func() error{
		"select":   func() error { return s.SelectAnswer(1) },
		"next":     s.Next,
		"previous": s.Previous,
		"tick":     s.Tick,
		"start":    s.Start,
		"clear":    s.ClearSelection,
	} {
		if err := op(); !errors.Is(err, ErrInvalidState) {
			t.Errorf("%s after completion: expected ErrInvalidState, got %v", name, err)
		}
	}
	if a, _ := s.Answer(0); a != 0 {
		t.Errorf("Answer(0) = %d, want 0", a)
	}
}

func TestClearSelection(t *testing.T) {
	s := newStarted(t, 60, 0, 1)
	_ = s.SelectAnswer(1)
	if err := s.ClearSelection(); err != nil {
		t.Fatalf("ClearSelection: %v", err)
	}
	_ = s.Next()
	if a, _ := s.Answer(0); a != Unanswered {
		t.Errorf("Answer(0) = %d, want Unanswered", a)
	}
}

func TestSnapshot_HidesAnswersUntilCompleted(t *testing.T) {
	s := newStarted(t, 60, 1, 0)
	v := s.Snapshot()
	if v.Question.CorrectOption != nil || v.Question.Explanation != "" {
		t.Error("in-progress snapshot reveals the correct option")
	}
	if v.Review != nil {
		t.Error("in-progress snapshot has review entries")
	}
	if len(v.Answers) != 2 || v.Answers[0] != Unanswered {
		t.Errorf("Answers = %v, want [-1 -1]", v.Answers)
	}

	_ = s.Complete()
	v = s.Snapshot()
	if v.Phase != "completed" {
		t.Errorf("Phase = %q, want completed", v.Phase)
	}
	if len(v.Review) != 2 || v.Review[0].CorrectOption == nil || *v.Review[0].CorrectOption != 1 {
		t.Errorf("Review = %+v, want correct options revealed", v.Review)
	}
	if v.CompletedAt == nil {
		t.Error("expected CompletedAt in completed snapshot")
	}
}
