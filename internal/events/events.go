// Package events publishes domain events about posts, profiles and accounts.
package events

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"devconnect/internal/middleware"
	"devconnect/internal/observability"
)

// Event types double as AMQP routing keys.
const (
	PostCreated       = "post.created"
	PostDeleted       = "post.deleted"
	PostLiked         = "post.liked"
	PostUnliked       = "post.unliked"
	CommentAdded      = "comment.added"
	CommentRemoved    = "comment.removed"
	AccountRegistered = "account.registered"
	AccountDeleted    = "account.deleted"
	ProfileUpserted   = "profile.upserted"
)

// Event is a single domain change.
type Event struct {
	Type        string    `json:"type"`
	ActorID     string    `json:"actor_id"`
	PostID      string    `json:"post_id,omitempty"`
	RecipientID string    `json:"recipient_id,omitempty"` // account the change is addressed to
	Payload     any       `json:"payload,omitempty"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// IsFeed reports whether the event changes the post feed.
func (e Event) IsFeed() bool {
	switch e.Type {
	case PostCreated, PostDeleted, PostLiked, PostUnliked, CommentAdded, CommentRemoved:
		return true
	}
	return false
}

// Publisher delivers events to one sink.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

// Noop discards every event.
type Noop struct{}

func (Noop) Publish(context.Context, Event) error { return nil }
func (Noop) Close() error                         { return nil }

// Fanout delivers each event to every sink. A failing sink never blocks the
// others and never fails the caller's request; failures are logged.
type Fanout struct {
	sinks []Publisher
}

// NewFanout combines sinks, skipping nil entries.
func NewFanout(sinks ...Publisher) *Fanout {
	f := &Fanout{}
	for _, s := range sinks {
		if s != nil {
			f.sinks = append(f.sinks, s)
		}
	}
	return f
}

// Publish stamps the event and hands it to every sink.
func (f *Fanout) Publish(ctx context.Context, event Event) error {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}
	observability.DomainEvents.WithLabelValues(event.Type).Inc()

	var errs []error
	for _, s := range f.sinks {
		if err := s.Publish(ctx, event); err != nil {
			middleware.Logger.WarnContext(ctx, "event publish failed",
				slog.String("event_type", event.Type),
				slog.String("error", err.Error()),
			)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Close closes every sink.
func (f *Fanout) Close() error {
	var errs []error
	for _, s := range f.sinks {
		errs = append(errs, s.Close())
	}
	return errors.Join(errs...)
}

// Recorder keeps published events in memory for tests.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) Publish(_ context.Context, event Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

func (r *Recorder) Close() error { return nil }

// Events returns a copy of everything published so far.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// Types returns the type of every recorded event in order.
func (r *Recorder) Types() []string {
	var out []string
	for _, e := range r.Events() {
		out = append(out, e.Type)
	}
	return out
}
