package results

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// ChannelPrefix is prepended to the user ID to form the pub/sub channel.
const ChannelPrefix = "quiz_results:"

// Publisher is the subset of *redis.Client used by RedisSink.
type Publisher interface {
	Publish(ctx context.Context, channel string, message any) *redis.IntCmd
}

// RedisSink publishes each attempt as JSON on the user's results channel.
type RedisSink struct {
	client Publisher
}

// NewRedisSink creates a RedisSink publishing through client.
func NewRedisSink(client Publisher) *RedisSink {
	return &RedisSink{client: client}
}

// resultMessage is the published payload.
type resultMessage struct {
	Type string `json:"type"`
	Attempt
}

func (s *RedisSink) Record(ctx context.Context, a Attempt) error {
	if a.Result == nil {
		return errors.New("publish attempt: missing result")
	}
	payload, err := json.Marshal(resultMessage{Type: "quiz_result", Attempt: a})
	if err != nil {
		return fmt.Errorf("publish attempt: %w", err)
	}
	if err := s.client.Publish(ctx, Channel(a.UserID), payload).Err(); err != nil {
		return fmt.Errorf("publish attempt: %w", err)
	}
	return nil
}

// Channel returns the results channel for userID.
func Channel(userID string) string {
	if userID == "" {
		userID = AnonymousUser
	}
	return ChannelPrefix + userID
}

// DialRedis connects to the Redis server at url and checks it answers.
func DialRedis(ctx context.Context, url string) (*redis.Client, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}
	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}
	return client, nil
}
