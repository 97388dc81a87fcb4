// Package notifications delivers feed updates to connected websocket clients.
package notifications

import (
	"context"
	"log/slog"
	"runtime/debug"
	"strings"

	"devconnect/internal/middleware"

	"github.com/redis/go-redis/v9"
)

const (
	// BroadcastChannel carries feed updates for every connected client.
	BroadcastChannel = "feed:broadcast"

	userChannelPrefix = "feed:user:"
)

// UserChannel derives the Redis channel name for one account.
func UserChannel(userID string) string {
	return userChannelPrefix + userID
}

// Notifier publishes feed payloads into Redis channels so every API instance
// can forward them to its own websocket clients.
type Notifier struct {
	rdb *redis.Client
}

// NewNotifier creates a new Notifier. rdb may be nil, in which case publishing is a no-op.
func NewNotifier(rdb *redis.Client) *Notifier {
	return &Notifier{rdb: rdb}
}

// Enabled reports whether the notifier is backed by Redis.
func (n *Notifier) Enabled() bool {
	return n != nil && n.rdb != nil
}

// PublishUser sends a payload to one account's channel.
func (n *Notifier) PublishUser(ctx context.Context, userID, payload string) error {
	if !n.Enabled() {
		return nil
	}
	return n.rdb.Publish(ctx, UserChannel(userID), payload).Err()
}

// PublishBroadcast sends a payload to every connected client.
func (n *Notifier) PublishBroadcast(ctx context.Context, payload string) error {
	if !n.Enabled() {
		return nil
	}
	return n.rdb.Publish(ctx, BroadcastChannel, payload).Err()
}

// StartSubscriber subscribes to the broadcast and per-user channels and calls
// onMessage for each incoming message until ctx is cancelled.
func (n *Notifier) StartSubscriber(ctx context.Context, onMessage func(channel, payload string)) error {
	if !n.Enabled() {
		return nil
	}
	sub := n.rdb.PSubscribe(ctx, BroadcastChannel, userChannelPrefix+"*")
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return err
	}
	ch := sub.Channel()

	go func() {
		defer func() { _ = sub.Close() }()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				func() {
					defer func() {
						if r := recover(); r != nil {
							middleware.Logger.Error("panic in feed subscriber",
								slog.Any("panic", r), slog.String("stack", string(debug.Stack())))
						}
					}()
					onMessage(msg.Channel, msg.Payload)
				}()
			}
		}
	}()

	return nil
}

func userFromChannel(channel string) (string, bool) {
	id, ok := strings.CutPrefix(channel, userChannelPrefix)
	return id, ok && id != ""
}
