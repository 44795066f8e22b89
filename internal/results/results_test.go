package results

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skillgenie/skillgenie/internal/questions"
	"github.com/skillgenie/skillgenie/internal/quiz"
	"github.com/skillgenie/skillgenie/internal/store"
)

var completedAt = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

func testAttempt(t *testing.T, userID string) Attempt {
	t.Helper()
	q, err := questions.NewBankProvider(nil).Quiz(context.Background(), questions.Request{Count: 5})
	require.NoError(t, err)

	s, err := q.NewSession(quiz.WithID("sess-1"), quiz.WithClock(func() time.Time { return completedAt }))
	require.NoError(t, err)
	require.NoError(t, s.Start())
	for i := 0; i < s.Len(); i++ {
		require.NoError(t, s.SelectAnswer(s.Current().CorrectOption))
		require.NoError(t, s.Next())
	}
	res, err := s.Score(q.PassingScore)
	require.NoError(t, err)
	return NewAttempt(q, userID, res)
}

func TestNewAttempt(t *testing.T) {
	a := testAttempt(t, "")
	assert.Equal(t, AnonymousUser, a.UserID)
	assert.Equal(t, "Statistics & Probability", a.Topic)
	assert.Equal(t, 100, a.Result.PercentScore)

	data := a.AttemptData()
	assert.Equal(t, "sess-1", data.SessionID)
	assert.Equal(t, 5, data.TotalQuestions)
	assert.True(t, data.Passed)
	assert.Equal(t, completedAt, data.CompletedAt)
	require.Len(t, data.Answers, 5)
	assert.Equal(t, 1, data.Answers[0].QuestionID)
	assert.True(t, data.Answers[4].IsCorrect)
}

func TestStoreSink(t *testing.T) {
	st, err := store.Open(filepath.Join(t.TempDir(), "results.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	sink := NewStoreSink(st.AttemptRepo())
	a := testAttempt(t, "learner-7")
	ctx := context.Background()

	require.NoError(t, sink.Record(ctx, a))
	require.NoError(t, sink.Record(ctx, a), "recording the same session twice is not an error")

	rec, err := st.AttemptRepo().GetAttempt(ctx, "sess-1")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, "learner-7", rec.UserID)
	assert.Equal(t, 100, rec.PercentScore)

	list, err := st.AttemptRepo().ListAttempts(ctx, store.QueryOpts{})
	require.NoError(t, err)
	assert.Len(t, list, 1)

	assert.Error(t, sink.Record(ctx, Attempt{}))
}

type fakePublisher struct {
	channel string
	payload []byte
	err     error
}

func (f *fakePublisher) Publish(ctx context.Context, channel string, message any) *redis.IntCmd {
	f.channel = channel
	f.payload, _ = message.([]byte)
	cmd := redis.NewIntCmd(ctx)
	if f.err != nil {
		cmd.SetErr(f.err)
	} else {
		cmd.SetVal(1)
	}
	return cmd
}

func TestRedisSink(t *testing.T) {
	pub := &fakePublisher{}
	sink := NewRedisSink(pub)

	require.NoError(t, sink.Record(context.Background(), testAttempt(t, "learner-7")))
	assert.Equal(t, "quiz_results:learner-7", pub.channel)

	var msg map[string]any
	require.NoError(t, json.Unmarshal(pub.payload, &msg))
	assert.Equal(t, "quiz_result", msg["type"])
	assert.Equal(t, "learner-7", msg["user_id"])
	result, ok := msg["result"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(100), result["percent_score"])
}

func TestRedisSink_PublishError(t *testing.T) {
	pub := &fakePublisher{err: errors.New("connection refused")}
	err := NewRedisSink(pub).Record(context.Background(), testAttempt(t, "u"))
	assert.ErrorContains(t, err, "connection refused")
}

func TestChannel(t *testing.T) {
	assert.Equal(t, "quiz_results:anonymous", Channel(""))
	assert.Equal(t, "quiz_results:42", Channel("42"))
}

func TestMulti_RunsAllSinks(t *testing.T) {
	var calls int
	ok := SinkFunc(func(context.Context, Attempt) error { calls++; return nil })
	errA := errors.New("a failed")
	errB := errors.New("b failed")
	failA := SinkFunc(func(context.Context, Attempt) error { calls++; return errA })
	failB := SinkFunc(func(context.Context, Attempt) error { calls++; return errB })

	err := Multi{failA, ok, failB}.Record(context.Background(), Attempt{})
	assert.Equal(t, 3, calls)
	assert.ErrorIs(t, err, errA)
	assert.ErrorIs(t, err, errB)

	assert.NoError(t, Multi{ok, Discard}.Record(context.Background(), Attempt{}))
}

func TestSinks_Flattens(t *testing.T) {
	a := SinkFunc(func(context.Context, Attempt) error { return nil })
	b := SinkFunc(func(context.Context, Attempt) error { return nil })

	assert.Len(t, Sinks(Multi{a, Multi{b, Discard}}), 3)
	assert.Len(t, Sinks(a), 1)
	assert.Empty(t, Sinks(nil))
	assert.Empty(t, Sinks(Multi{}))
}
