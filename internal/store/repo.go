package store

import (
	"context"
	"time"
)

// QueryOpts configures record queries with filtering and pagination.
type QueryOpts struct {
	Limit  int       // max results (0 = unlimited)
	After  int64     // sequence > After
	Before int64     // sequence < Before
	From   time.Time // timestamp >= From
	To     time.Time // timestamp <= To
	Topic   string    // exact match
	UserID  string    // attempts only; exact match
	Purpose string    // LLM events only; exact match
}

// LLMRequestEventData captures the data for a single LLM request event.
type LLMRequestEventData struct {
	Provider     string
	Model        string
	Purpose      string
	Topic        string // quiz topic the request generated for, if any
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// LLMEventRecord is a stored LLM request event.
type LLMEventRecord struct {
	ID        int
	Sequence  int64
	Timestamp time.Time
	LLMRequestEventData
}

// PurposeUsage aggregates LLM usage for one purpose label.
type PurposeUsage struct {
	Purpose      string
	Calls        int
	InputTokens  int
	OutputTokens int
	AvgLatencyMs int64
}

// ModelUsage aggregates LLM usage for one model.
type ModelUsage struct {
	Model        string
	Calls        int
	InputTokens  int
	OutputTokens int
}

// TopicUsage aggregates LLM usage for one quiz topic.
type TopicUsage struct {
	Topic        string
	Calls        int
	Failures     int
	InputTokens  int
	OutputTokens int
}

// EventRepo provides append and query access to LLM request events.
type EventRepo interface {
	// AppendLLMRequest records an LLM API call event.
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error

	// QueryLLMEvents returns events newest first.
	QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMEventRecord, error)

	// GetLLMEvent returns the event with the given ID, or nil if none exists.
	GetLLMEvent(ctx context.Context, id int) (*LLMEventRecord, error)

	LLMUsageByPurpose(ctx context.Context) ([]PurposeUsage, error)
	LLMUsageByModel(ctx context.Context) ([]ModelUsage, error)

	// LLMUsageByTopic groups events that carry a quiz topic.
	LLMUsageByTopic(ctx context.Context) ([]TopicUsage, error)
}

// AttemptAnswer is the graded answer to one question of an attempt.
type AttemptAnswer struct {
	QuestionID     int  `json:"question_id"`
	SelectedOption int  `json:"selected_option"`
	CorrectOption  int  `json:"correct_option"`
	IsCorrect      bool `json:"is_correct"`
}

// AttemptData captures one completed quiz attempt.
type AttemptData struct {
	SessionID      string
	UserID         string
	Title          string
	Topic          string
	Difficulty     string
	PercentScore   int
	CorrectCount   int
	TotalQuestions int
	PassingScore   int
	Passed         bool
	ElapsedSeconds int
	AutoSubmitted  bool
	CompletedAt    time.Time
	Answers        []AttemptAnswer
}

// AttemptRecord is a stored quiz attempt.
type AttemptRecord struct {
	ID       int
	Sequence int64
	AttemptData
}

// AttemptStats summarizes the attempts matching a filter.
type AttemptStats struct {
	Attempts     int
	BestScore    int
	AverageScore float64
	PassCount    int
}

// AttemptRepo stores completed quiz attempts.
type AttemptRepo interface {
	// SaveAttempt stores a completed attempt. Saving a second attempt for the
	// same session returns ErrDuplicateAttempt.
	SaveAttempt(ctx context.Context, data AttemptData) (*AttemptRecord, error)

	// ListAttempts returns attempts newest first.
	ListAttempts(ctx context.Context, opts QueryOpts) ([]AttemptRecord, error)

	// GetAttempt returns the attempt for a session ID, or nil if none exists.
	GetAttempt(ctx context.Context, sessionID string) (*AttemptRecord, error)

	// AttemptStats aggregates attempts, optionally filtered by topic and user.
	AttemptStats(ctx context.Context, opts QueryOpts) (*AttemptStats, error)
}
