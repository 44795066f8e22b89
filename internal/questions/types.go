package questions

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/skillgenie/skillgenie/internal/quiz"
)

// Provider supplies the question sequence for a new quiz session.
type Provider interface {
	// Quiz returns a quiz for req. Request problems are reported as
	// *quiz.InvalidInputError so shells can surface them as user errors.
	Quiz(ctx context.Context, req Request) (*Quiz, error)
}

// Difficulty is the requested quiz difficulty.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Valid reports whether d is one of the known difficulties.
func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}

// Request limits and defaults.
const (
	MinTopicLength = 2
	MaxTopicLength = 100
	MinCount       = 5
	MaxCount       = 20

	DefaultTopic              = "Data Science"
	DefaultDifficulty         = DifficultyMedium
	DefaultCount              = 10
	DefaultSecondsPerQuestion = 60
)

// Request describes the quiz a learner asked for.
type Request struct {
	Topic      string     `json:"topic"`
	Difficulty Difficulty `json:"difficulty"`
	Count      int        `json:"questionCount"`

	// Exclude lists prompts the learner has already seen. Generators avoid
	// repeating them.
	Exclude []string `json:"-"`
}

// WithDefaults returns r with the topic trimmed and empty fields filled in.
func (r Request) WithDefaults() Request {
	r.Topic = strings.TrimSpace(r.Topic)
	if r.Topic == "" {
		r.Topic = DefaultTopic
	}
	if r.Difficulty == "" {
		r.Difficulty = DefaultDifficulty
	}
	if r.Count == 0 {
		r.Count = DefaultCount
	}
	return r
}

// Validate checks r against the request limits. Call WithDefaults first
// if empty fields should be accepted.
func (r Request) Validate() error {
	if err := r.validateTopic(); err != nil {
		return err
	}
	if err := r.validateDifficulty(); err != nil {
		return err
	}
	if r.Count < MinCount || r.Count > MaxCount {
		return &quiz.InvalidInputError{
			Op:     "generate",
			Field:  "questionCount",
			Reason: fmt.Sprintf("%d not in [%d, %d]", r.Count, MinCount, MaxCount),
		}
	}
	return nil
}

func (r Request) validateTopic() error {
	n := utf8.RuneCountInString(strings.TrimSpace(r.Topic))
	if n < MinTopicLength || n > MaxTopicLength {
		return &quiz.InvalidInputError{
			Op:     "generate",
			Field:  "topic",
			Reason: fmt.Sprintf("length %d not in [%d, %d]", n, MinTopicLength, MaxTopicLength),
		}
	}
	return nil
}

func (r Request) validateDifficulty() error {
	if !r.Difficulty.Valid() {
		return &quiz.InvalidInputError{
			Op:     "generate",
			Field:  "difficulty",
			Reason: fmt.Sprintf("%q is not easy, medium or hard", r.Difficulty),
		}
	}
	return nil
}

// Quiz is a ready-to-play question sequence with its session settings.
// It is also the on-disk bank file format.
type Quiz struct {
	Title            string          `json:"title" yaml:"title"`
	Description      string          `json:"description,omitempty" yaml:"description,omitempty"`
	Topic            string          `json:"topic" yaml:"topic"`
	Difficulty       Difficulty      `json:"difficulty" yaml:"difficulty"`
	TimeLimitSeconds int             `json:"time_limit_seconds" yaml:"time_limit_seconds"`
	PassingScore     int             `json:"passing_score" yaml:"passing_score,omitempty"`
	Questions        []quiz.Question `json:"questions" yaml:"questions"`
}

// NewSession creates a NotStarted session for q.
func (q *Quiz) NewSession(opts ...quiz.Option) (*quiz.Session, error) {
	return quiz.NewSession(q.Questions, q.TimeLimitSeconds, opts...)
}

// Prompts returns the prompt of every question in order.
func (q *Quiz) Prompts() []string {
	out := make([]string, len(q.Questions))
	for i, qq := range q.Questions {
		out[i] = qq.Prompt
	}
	return out
}

func titleFor(topic string) string {
	return topic + " Quiz"
}

func orDefault(s, def string) string {
	if s = strings.TrimSpace(s); s == "" {
		return def
	}
	return s
}
