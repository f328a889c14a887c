package events

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// StreamPublisher appends notices to one Redis stream.
type StreamPublisher struct {
	client *redis.Client
	stream string
}

// NewStreamPublisher binds a publisher to stream.
func NewStreamPublisher(client *redis.Client, stream string) *StreamPublisher {
	return &StreamPublisher{client: client, stream: stream}
}

// Publish implements Publisher.
func (p *StreamPublisher) Publish(ctx context.Context, notice *RateNotice) error {
	err := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		Values: map[string]any{
			"email":     notice.Email,
			"message":   notice.Message,
			"info_type": notice.InfoType,
		},
	}).Err()
	if err != nil {
		return fmt.Errorf("publishing to stream %s: %w", p.stream, err)
	}
	return nil
}

// PublishFailure implements FailurePublisher.
func (p *StreamPublisher) PublishFailure(ctx context.Context, notice *FailedNotice) error {
	err := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		Values: map[string]any{
			"email":     notice.Email,
			"message":   notice.Message,
			"info_type": notice.InfoType,
			"error":     notice.Error,
		},
	}).Err()
	if err != nil {
		return fmt.Errorf("publishing to stream %s: %w", p.stream, err)
	}
	return nil
}

var (
	_ Publisher        = (*StreamPublisher)(nil)
	_ FailurePublisher = (*StreamPublisher)(nil)
)
