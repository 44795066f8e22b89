package llm

import "context"

type contextKey string

const (
	purposeKey contextKey = "llm_purpose"
	topicKey   contextKey = "llm_topic"
)

// Purpose labels recorded with each request event.
const (
	PurposeQuizGen = "quiz-gen"
	PurposeUnknown = "unknown"
)

// WithPurpose attaches a purpose label to the context for event logging.
func WithPurpose(ctx context.Context, purpose string) context.Context {
	return context.WithValue(ctx, purposeKey, purpose)
}

// PurposeFrom returns the purpose label on ctx, or PurposeUnknown.
func PurposeFrom(ctx context.Context) string {
	if v, ok := ctx.Value(purposeKey).(string); ok {
		return v
	}
	return PurposeUnknown
}

// WithTopic attaches the quiz topic a request is generating for.
func WithTopic(ctx context.Context, topic string) context.Context {
	return context.WithValue(ctx, topicKey, topic)
}

// TopicFrom returns the quiz topic on ctx, or "".
func TopicFrom(ctx context.Context) string {
	v, _ := ctx.Value(topicKey).(string)
	return v
}
