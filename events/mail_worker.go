package events

import (
	"context"
	"errors"
	"math/rand"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// MailSender delivers one rendered notice to a recipient. Implementations
// signal retryable failures with an error exposing Temporary() bool.
type MailSender interface {
	Send(ctx context.Context, to, message, infoType string) error
}

const (
	defaultAttempts = 3
	defaultBackoff  = 5 * time.Second
	defaultJitter   = 2 * time.Second
)

// MailWorker consumes rate notices from the stream through a consumer
// group and hands them to the sender. Transient send failures are retried
// with fixed plus jittered backoff; after the attempt budget is spent the
// notice goes to the dead-letter stream instead of being dropped.
// Non-transient failures are logged and acknowledged immediately.
type MailWorker struct {
	client   *redis.Client
	stream   string
	group    string
	consumer string

	sender    MailSender
	dlq       FailurePublisher
	attempts  int
	backoff   time.Duration
	maxJitter time.Duration
}

// NewMailWorker builds a worker with the default retry budget.
func NewMailWorker(client *redis.Client, stream, group, consumer string, sender MailSender, dlq FailurePublisher) *MailWorker {
	return &MailWorker{
		client:   client,
		stream:   stream,
		group:    group,
		consumer: consumer,
		sender:    sender,
		dlq:       dlq,
		attempts:  defaultAttempts,
		backoff:   defaultBackoff,
		maxJitter: defaultJitter,
	}
}

// Run consumes until ctx is cancelled.
func (w *MailWorker) Run(ctx context.Context) error {
	if err := w.ensureGroup(ctx); err != nil {
		return err
	}

	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		streams, err := w.client.XReadGroup(ctx, &redis.XReadGroupArgs{
			Group:    w.group,
			Consumer: w.consumer,
			Streams:  []string{w.stream, ">"},
			Count:    10,
			Block:    5 * time.Second,
		}).Result()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			log.Error().Err(err).Str("stream", w.stream).Msg("reading notice stream failed")
			continue
		}

		for _, stream := range streams {
			for _, msg := range stream.Messages {
				w.process(ctx, noticeFromValues(msg.Values))
				if err := w.client.XAck(ctx, w.stream, w.group, msg.ID).Err(); err != nil {
					log.Warn().Err(err).Str("id", msg.ID).Msg("failed to ack notice")
				}
			}
		}
	}
}

func (w *MailWorker) ensureGroup(ctx context.Context) error {
	err := w.client.XGroupCreateMkStream(ctx, w.stream, w.group, "0").Err()
	if err != nil && !strings.Contains(err.Error(), "BUSYGROUP") {
		return err
	}
	return nil
}

// process drives the retry loop for one notice.
func (w *MailWorker) process(ctx context.Context, notice *RateNotice) {
	var lastErr error
	for attempt := 1; attempt <= w.attempts; attempt++ {
		err := w.sender.Send(ctx, notice.Email, notice.Message, notice.InfoType)
		if err == nil {
			return
		}
		if !isTransient(err) {
			// Permanent failure: the message cannot improve with retries.
			log.Error().Err(err).Str("email", notice.Email).Msg("mail delivery failed permanently")
			return
		}
		lastErr = err
		log.Warn().Err(err).Int("attempt", attempt).Str("email", notice.Email).
			Msg("transient mail delivery failure")
		if attempt < w.attempts {
			if !sleepCtx(ctx, w.backoff+jitter(w.maxJitter)) {
				return
			}
		}
	}

	failed := &FailedNotice{
		Email:    notice.Email,
		Message:  notice.Message,
		InfoType: notice.InfoType,
		Error:    lastErr.Error(),
	}
	if err := w.dlq.PublishFailure(ctx, failed); err != nil {
		log.Error().Err(err).Str("email", notice.Email).Msg("failed to dead-letter exhausted notice")
	}
}

func noticeFromValues(values map[string]any) *RateNotice {
	str := func(key string) string {
		s, _ := values[key].(string)
		return s
	}
	return &RateNotice{
		Email:    str("email"),
		Message:  str("message"),
		InfoType: str("info_type"),
	}
}

func jitter(max time.Duration) time.Duration {
	if max <= 0 {
		return 0
	}
	return time.Duration(rand.Int63n(int64(max)))
}

func isTransient(err error) bool {
	var temp interface{ Temporary() bool }
	return errors.As(err, &temp) && temp.Temporary()
}

// sleepCtx waits d or until ctx is done; reports whether the full wait
// elapsed.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
