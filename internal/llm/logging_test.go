package llm

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/skillgenie/skillgenie/internal/store"
)

type recordingRepo struct {
	store.EventRepo
	events []store.LLMRequestEventData
	err    error
}

func (r *recordingRepo) AppendLLMRequest(_ context.Context, data store.LLMRequestEventData) error {
	r.events = append(r.events, data)
	return r.err
}

func TestLoggingProvider_RecordsSuccess(t *testing.T) {
	repo := &recordingRepo{}
	mock := NewMockProvider(MockResponse{Content: okContent, Usage: Usage{InputTokens: 7, OutputTokens: 3}})
	p := WithLogging(mock, ProviderMock, repo)

	ctx := WithTopic(WithPurpose(context.Background(), PurposeQuizGen), "Statistics")
	if _, err := p.Generate(ctx, Request{System: "sys", Messages: UserMessage("make a quiz"), Schema: optionsSchema()}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(repo.events) != 1 {
		t.Fatalf("events = %d, want 1", len(repo.events))
	}
	ev := repo.events[0]
	if ev.Provider != ProviderMock || ev.Model != "mock" || ev.Purpose != PurposeQuizGen || ev.Topic != "Statistics" {
		t.Fatalf("event = %+v", ev)
	}
	if !ev.Success || ev.InputTokens != 7 || ev.OutputTokens != 3 || ev.ResponseBody != string(okContent) {
		t.Fatalf("event = %+v", ev)
	}
	for _, want := range []string{"[system]", "[user]\nmake a quiz", "[schema: test-question]"} {
		if !strings.Contains(ev.RequestBody, want) {
			t.Errorf("request body missing %q:\n%s", want, ev.RequestBody)
		}
	}
}

func TestLoggingProvider_RecordsFailureAndIgnoresRepoErrors(t *testing.T) {
	repo := &recordingRepo{err: errors.New("disk full")}
	mock := NewMockProvider(MockResponse{Err: &ErrProviderUnavailable{Err: errors.New("down")}})
	p := WithLogging(mock, ProviderMock, repo)

	_, err := p.Generate(context.Background(), Request{})
	var un *ErrProviderUnavailable
	if !errors.As(err, &un) {
		t.Fatalf("expected provider error to pass through, got %v", err)
	}
	if len(repo.events) != 1 || repo.events[0].Success || repo.events[0].ErrorMessage == "" {
		t.Fatalf("events = %+v", repo.events)
	}
	if repo.events[0].Purpose != PurposeUnknown || repo.events[0].Topic != "" {
		t.Fatalf("purpose = %q, topic = %q", repo.events[0].Purpose, repo.events[0].Topic)
	}
}
