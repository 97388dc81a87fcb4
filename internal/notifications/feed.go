package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"devconnect/internal/events"
	"devconnect/internal/featureflags"
)

// FeedMessage is the frame pushed to websocket clients when the post feed changes.
type FeedMessage struct {
	Type       string    `json:"type"`
	PostID     string    `json:"post_id,omitempty"`
	ActorID    string    `json:"actor_id"`
	Payload    any       `json:"payload,omitempty"`
	Direct     bool      `json:"direct,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// FeedPublisher turns feed events into websocket frames. With Redis available
// frames go through the broadcast channel so every instance sees them;
// otherwise they are delivered to the local hub directly.
type FeedPublisher struct {
	hub      *Hub
	notifier *Notifier
	flags    *featureflags.Manager
}

// NewFeedPublisher wires the hub and notifier into an events.Publisher.
func NewFeedPublisher(hub *Hub, notifier *Notifier, flags *featureflags.Manager) *FeedPublisher {
	return &FeedPublisher{hub: hub, notifier: notifier, flags: flags}
}

// Publish forwards feed events while the realtime_feed flag is on. An event
// addressed to someone other than its actor also gets a direct frame on the
// recipient's own channel.
func (p *FeedPublisher) Publish(ctx context.Context, event events.Event) error {
	if !event.IsFeed() || !p.flags.EnabledGlobally(featureflags.RealtimeFeed) {
		return nil
	}

	msg := FeedMessage{
		Type:       event.Type,
		PostID:     event.PostID,
		ActorID:    event.ActorID,
		Payload:    event.Payload,
		OccurredAt: event.OccurredAt,
	}
	if err := p.deliver(ctx, "", msg); err != nil {
		return err
	}

	if event.RecipientID == "" || event.RecipientID == event.ActorID {
		return nil
	}
	msg.Direct = true
	return p.deliver(ctx, event.RecipientID, msg)
}

// deliver sends msg to userID, or to everyone when userID is empty.
func (p *FeedPublisher) deliver(ctx context.Context, userID string, msg FeedMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal feed message: %w", err)
	}

	if p.notifier.Enabled() {
		if userID == "" {
			return p.notifier.PublishBroadcast(ctx, string(data))
		}
		return p.notifier.PublishUser(ctx, userID, string(data))
	}
	if p.hub == nil {
		return nil
	}
	if userID == "" {
		p.hub.BroadcastAll(string(data))
	} else {
		p.hub.Broadcast(userID, string(data))
	}
	return nil
}

// Close is a no-op; the hub and notifier are shut down by their owner.
func (p *FeedPublisher) Close() error { return nil }
