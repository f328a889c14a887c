// Package events is the asynchronous notification pipeline: the gateway
// publishes rate responses to a durable stream, and the mail worker
// delivers them with bounded retry and a dead-letter stream.
package events

import "context"

// Info kinds carried by a notice, one per currency operation that
// supports email delivery.
const (
	InfoLive   = "live"
	InfoHist   = "hist"
	InfoChange = "change"
	InfoDaily  = "daily"
)

// RateNotice is one email request: the recipient, the serialized response
// payload and the kind of information it holds.
type RateNotice struct {
	Email    string `json:"email"`
	Message  string `json:"message"`
	InfoType string `json:"info_type"`
}

// FailedNotice is a RateNotice that exhausted delivery retries, routed to
// the dead-letter stream together with the final error.
type FailedNotice struct {
	Email    string `json:"email"`
	Message  string `json:"message"`
	InfoType string `json:"info_type"`
	Error    string `json:"error"`
}

// Publisher enqueues notices onto the durable stream. Publishing is
// fire-and-forget from the caller's perspective: delivery retries belong
// to the consumer, not here.
type Publisher interface {
	Publish(ctx context.Context, notice *RateNotice) error
}

// FailurePublisher routes exhausted notices to the dead-letter stream.
type FailurePublisher interface {
	PublishFailure(ctx context.Context, notice *FailedNotice) error
}
