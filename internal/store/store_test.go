package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestPragmasApplied(t *testing.T) {
	s := openTestStore(t)
	db := s.DB()

	tests := []struct {
		pragma string
		want   string
	}{
		{"journal_mode", "wal"},
		{"foreign_keys", "1"},
		{"synchronous", "1"}, // NORMAL = 1
	}

	for _, tt := range tests {
		var got string
		err := db.QueryRow("PRAGMA " + tt.pragma).Scan(&got)
		if err != nil {
			t.Errorf("PRAGMA %s: %v", tt.pragma, err)
			continue
		}
		if got != tt.want {
			t.Errorf("PRAGMA %s = %q, want %q", tt.pragma, got, tt.want)
		}
	}
}

func TestAutoMigrationCreatesTables(t *testing.T) {
	s := openTestStore(t)
	db := s.DB()

	for _, table := range []string{"quiz_attempts", "llm_request_events", "global_sequence"} {
		var name string
		err := db.QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?", table,
		).Scan(&name)
		if err != nil {
			t.Fatalf("query sqlite_master for %s: %v", table, err)
		}
		if name != table {
			t.Errorf("table name = %q, want %q", name, table)
		}
	}
}

func TestReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reopen.db")
	ctx := context.Background()

	s, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, err := s.AttemptRepo().SaveAttempt(ctx, sampleAttempt("s1", "stats", 80)); err != nil {
		t.Fatalf("save: %v", err)
	}
	s.Close()

	s, err = Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s.Close()

	got, err := s.AttemptRepo().GetAttempt(ctx, "s1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got == nil || got.PercentScore != 80 {
		t.Fatalf("got %+v, want attempt with score 80", got)
	}

	// The sequence continues after reopening.
	rec, err := s.AttemptRepo().SaveAttempt(ctx, sampleAttempt("s2", "stats", 50))
	if err != nil {
		t.Fatalf("save after reopen: %v", err)
	}
	if rec.Sequence != 2 {
		t.Errorf("sequence = %d, want 2", rec.Sequence)
	}
}

func TestSequenceCounter(t *testing.T) {
	s := openTestStore(t)
	db := s.DB()
	ctx := context.Background()

	sc, err := newSequenceCounter(db)
	if err != nil {
		t.Fatalf("new sequence counter: %v", err)
	}

	var seqs []int64
	for i := 0; i < 5; i++ {
		seq, err := sc.Next(ctx)
		if err != nil {
			t.Fatalf("next %d: %v", i, err)
		}
		seqs = append(seqs, seq)
	}

	// Should be monotonically increasing starting from 1.
	for i, seq := range seqs {
		expected := int64(i + 1)
		if seq != expected {
			t.Errorf("seq[%d] = %d, want %d", i, seq, expected)
		}
	}
}

func sampleAttempt(sessionID, topic string, score int) AttemptData {
	return AttemptData{
		SessionID:      sessionID,
		UserID:         "learner",
		Title:          "Sample",
		Topic:          topic,
		Difficulty:     "medium",
		PercentScore:   score,
		CorrectCount:   score / 10,
		TotalQuestions: 10,
		PassingScore:   70,
		Passed:         score >= 70,
		ElapsedSeconds: 120,
		CompletedAt:    time.Date(2026, 2, 1, 9, 30, 0, 0, time.UTC),
		Answers: []AttemptAnswer{
			{QuestionID: 1, SelectedOption: 0, CorrectOption: 0, IsCorrect: true},
			{QuestionID: 2, SelectedOption: -1, CorrectOption: 2, IsCorrect: false},
		},
	}
}

func TestAttemptSaveAndGet(t *testing.T) {
	s := openTestStore(t)
	repo := s.AttemptRepo()
	ctx := context.Background()

	got, err := repo.GetAttempt(ctx, "missing")
	if err != nil {
		t.Fatalf("get (empty): %v", err)
	}
	if got != nil {
		t.Fatal("expected nil attempt when none exist")
	}

	data := sampleAttempt("sess-1", "statistics", 90)
	data.AutoSubmitted = true
	rec, err := repo.SaveAttempt(ctx, data)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if rec.ID == 0 || rec.Sequence != 1 {
		t.Errorf("record id=%d seq=%d, want non-zero id and seq 1", rec.ID, rec.Sequence)
	}

	got, err = repo.GetAttempt(ctx, "sess-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got == nil {
		t.Fatal("expected stored attempt")
	}
	if got.PercentScore != 90 || !got.Passed || !got.AutoSubmitted || got.Topic != "statistics" {
		t.Errorf("unexpected attempt: %+v", got)
	}
	if !got.CompletedAt.Equal(data.CompletedAt) {
		t.Errorf("completed at = %v, want %v", got.CompletedAt, data.CompletedAt)
	}
	if len(got.Answers) != 2 || got.Answers[1].SelectedOption != -1 || !got.Answers[0].IsCorrect {
		t.Errorf("answers = %+v", got.Answers)
	}
}

func TestAttemptSaveDuplicate(t *testing.T) {
	s := openTestStore(t)
	repo := s.AttemptRepo()
	ctx := context.Background()

	if _, err := repo.SaveAttempt(ctx, sampleAttempt("dup", "t", 40)); err != nil {
		t.Fatalf("save: %v", err)
	}
	_, err := repo.SaveAttempt(ctx, sampleAttempt("dup", "t", 100))
	if !errors.Is(err, ErrDuplicateAttempt) {
		t.Fatalf("expected ErrDuplicateAttempt, got %v", err)
	}

	got, _ := repo.GetAttempt(ctx, "dup")
	if got.PercentScore != 40 {
		t.Errorf("score = %d, want original 40", got.PercentScore)
	}
}

func TestListAttempts(t *testing.T) {
	s := openTestStore(t)
	repo := s.AttemptRepo()
	ctx := context.Background()

	for i, topic := range []string{"stats", "algebra", "stats", "stats"} {
		if _, err := repo.SaveAttempt(ctx, sampleAttempt(string(rune('a'+i)), topic, 50+i*10)); err != nil {
			t.Fatalf("save %d: %v", i, err)
		}
	}

	all, err := repo.ListAttempts(ctx, QueryOpts{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 4 {
		t.Fatalf("len = %d, want 4", len(all))
	}
	if all[0].SessionID != "d" || all[3].SessionID != "a" {
		t.Errorf("order = %s..%s, want newest first", all[0].SessionID, all[3].SessionID)
	}

	stats, err := repo.ListAttempts(ctx, QueryOpts{Topic: "stats", Limit: 2})
	if err != nil {
		t.Fatalf("list filtered: %v", err)
	}
	if len(stats) != 2 || stats[0].SessionID != "d" || stats[1].SessionID != "c" {
		t.Errorf("filtered = %+v", stats)
	}

	after, err := repo.ListAttempts(ctx, QueryOpts{After: 2})
	if err != nil {
		t.Fatalf("list after: %v", err)
	}
	if len(after) != 2 {
		t.Errorf("len(after) = %d, want 2", len(after))
	}
}

func TestAttemptStats(t *testing.T) {
	s := openTestStore(t)
	repo := s.AttemptRepo()
	ctx := context.Background()

	empty, err := repo.AttemptStats(ctx, QueryOpts{})
	if err != nil {
		t.Fatalf("stats (empty): %v", err)
	}
	if *empty != (AttemptStats{}) {
		t.Errorf("empty stats = %+v, want zero", *empty)
	}

	for i, score := range []int{60, 80, 100} {
		if _, err := repo.SaveAttempt(ctx, sampleAttempt(string(rune('a'+i)), "stats", score)); err != nil {
			t.Fatalf("save: %v", err)
		}
	}
	if _, err := repo.SaveAttempt(ctx, sampleAttempt("z", "algebra", 10)); err != nil {
		t.Fatalf("save: %v", err)
	}

	st, err := repo.AttemptStats(ctx, QueryOpts{Topic: "stats"})
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if st.Attempts != 3 || st.BestScore != 100 || st.PassCount != 2 {
		t.Errorf("stats = %+v", st)
	}
	if st.AverageScore != 80 {
		t.Errorf("average = %v, want 80", st.AverageScore)
	}
}

func TestLLMEvents(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	events := []LLMRequestEventData{
		{Provider: "openai", Model: "gpt-4o-mini", Purpose: "quiz-gen", Topic: "Statistics", InputTokens: 100, OutputTokens: 50, LatencyMs: 200, Success: true, RequestBody: "req", ResponseBody: "resp"},
		{Provider: "openai", Model: "gpt-4o-mini", Purpose: "quiz-gen", Topic: "Algebra", InputTokens: 300, OutputTokens: 150, LatencyMs: 400, Success: true},
		{Provider: "gemini", Model: "gemini-2.0-flash", Purpose: "explain", InputTokens: 10, LatencyMs: 50, Success: false, ErrorMessage: "boom"},
	}
	for _, e := range events {
		if err := repo.AppendLLMRequest(ctx, e); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	list, err := repo.QueryLLMEvents(ctx, QueryOpts{Limit: 2})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(list) != 2 || list[0].Purpose != "explain" {
		t.Fatalf("query = %+v", list)
	}

	first, err := repo.GetLLMEvent(ctx, list[1].ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if first == nil || first.OutputTokens != 150 {
		t.Errorf("get = %+v", first)
	}
	missing, err := repo.GetLLMEvent(ctx, 9999)
	if err != nil || missing != nil {
		t.Errorf("get missing = %+v, %v", missing, err)
	}

	byPurpose, err := repo.LLMUsageByPurpose(ctx)
	if err != nil {
		t.Fatalf("usage by purpose: %v", err)
	}
	if len(byPurpose) != 2 {
		t.Fatalf("usage by purpose = %+v", byPurpose)
	}
	qg := byPurpose[1]
	if qg.Purpose != "quiz-gen" || qg.Calls != 2 || qg.InputTokens != 400 || qg.AvgLatencyMs != 300 {
		t.Errorf("quiz-gen usage = %+v", qg)
	}

	byModel, err := repo.LLMUsageByModel(ctx)
	if err != nil {
		t.Fatalf("usage by model: %v", err)
	}
	if len(byModel) != 1 || byModel[0].Model != "gpt-4o-mini" || byModel[0].OutputTokens != 200 {
		t.Errorf("usage by model = %+v", byModel)
	}
}

func TestQueryLLMEvents_Filters(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	events := []LLMRequestEventData{
		{Provider: "mock", Model: "mock", Purpose: "quiz-gen", Topic: "Statistics", Success: true},
		{Provider: "mock", Model: "mock", Purpose: "unknown", Success: true},
		{Provider: "mock", Model: "mock", Purpose: "quiz-gen", Topic: "Algebra", Success: false, ErrorMessage: "rate limited"},
		{Provider: "mock", Model: "mock", Purpose: "quiz-gen", Topic: "Statistics", Success: true, InputTokens: 20, OutputTokens: 10},
	}
	for _, e := range events {
		if err := repo.AppendLLMRequest(ctx, e); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	tests := []struct {
		name   string
		opts   QueryOpts
		topics []string
	}{
		{"purpose", QueryOpts{Purpose: "quiz-gen"}, []string{"Statistics", "Algebra", "Statistics"}},
		{"purpose with limit", QueryOpts{Purpose: "quiz-gen", Limit: 2}, []string{"Statistics", "Algebra"}},
		{"topic", QueryOpts{Topic: "Statistics"}, []string{"Statistics", "Statistics"}},
		{"no match", QueryOpts{Purpose: "explain"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repo.QueryLLMEvents(ctx, tt.opts)
			if err != nil {
				t.Fatalf("query: %v", err)
			}
			if len(got) != len(tt.topics) {
				t.Fatalf("got %d events, want %d", len(got), len(tt.topics))
			}
			for i, e := range got {
				if e.Topic != tt.topics[i] {
					t.Errorf("event %d topic = %q, want %q", i, e.Topic, tt.topics[i])
				}
			}
		})
	}

	byTopic, err := repo.LLMUsageByTopic(ctx)
	if err != nil {
		t.Fatalf("usage by topic: %v", err)
	}
	if len(byTopic) != 2 {
		t.Fatalf("usage by topic = %+v", byTopic)
	}
	if a := byTopic[0]; a.Topic != "Algebra" || a.Calls != 1 || a.Failures != 1 {
		t.Errorf("algebra usage = %+v", a)
	}
	if st := byTopic[1]; st.Topic != "Statistics" || st.Calls != 2 || st.Failures != 0 || st.InputTokens != 20 {
		t.Errorf("statistics usage = %+v", st)
	}
}

func TestSequenceSharedAcrossTables(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if err := s.EventRepo().AppendLLMRequest(ctx, LLMRequestEventData{Provider: "mock", Model: "mock", Purpose: "quiz-gen", Success: true}); err != nil {
		t.Fatalf("append: %v", err)
	}
	rec, err := s.AttemptRepo().SaveAttempt(ctx, sampleAttempt("after-llm", "stats", 70))
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if rec.Sequence != 2 {
		t.Errorf("attempt sequence = %d, want 2", rec.Sequence)
	}
}
