package notifications

import (
	"context"
	"encoding/json"
	"testing"

	"devconnect/internal/events"
	"devconnect/internal/featureflags"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFeedPublisher_LocalDelivery(t *testing.T) {
	hub := NewHub()
	c, err := hub.Register(uuid.NewString(), nil)
	require.NoError(t, err)
	defer func() { _ = hub.Shutdown(context.Background()) }()

	p := NewFeedPublisher(hub, NewNotifier(nil), featureflags.NewManager("realtime_feed=on"))
	postID, actor := uuid.NewString(), uuid.NewString()

	require.NoError(t, p.Publish(context.Background(), events.Event{Type: events.AccountRegistered, ActorID: actor}))
	assert.Empty(t, c.Send, "non-feed events are not pushed")

	require.NoError(t, p.Publish(context.Background(), events.Event{
		Type:    events.PostLiked,
		ActorID: actor,
		PostID:  postID,
		Payload: []map[string]string{{"user": actor}},
	}))

	var msg FeedMessage
	require.NoError(t, json.Unmarshal([]byte(receive(t, c)), &msg))
	assert.Equal(t, events.PostLiked, msg.Type)
	assert.Equal(t, postID, msg.PostID)
	assert.Equal(t, actor, msg.ActorID)
	assert.NotNil(t, msg.Payload)
}

func TestFeedPublisher_FlagOff(t *testing.T) {
	hub := NewHub()
	c, err := hub.Register(uuid.NewString(), nil)
	require.NoError(t, err)
	defer func() { _ = hub.Shutdown(context.Background()) }()

	for _, flags := range []string{"realtime_feed=off", "realtime_feed=50%", ""} {
		p := NewFeedPublisher(hub, NewNotifier(nil), featureflags.NewManager(flags))
		require.NoError(t, p.Publish(context.Background(), events.Event{Type: events.PostCreated}))
		assert.Empty(t, c.Send, flags)
	}
}

func TestFeedPublisher_ThroughRedis(t *testing.T) {
	rdb := newTestRedis(t)
	n := NewNotifier(rdb)
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	c, err := hub.Register(uuid.NewString(), nil)
	require.NoError(t, err)
	require.NoError(t, hub.StartWiring(ctx, n))

	p := NewFeedPublisher(hub, n, featureflags.NewManager("realtime_feed=on"))
	require.NoError(t, p.Publish(ctx, events.Event{Type: events.CommentAdded, PostID: "p1"}))

	var msg FeedMessage
	require.NoError(t, json.Unmarshal([]byte(receive(t, c)), &msg))
	assert.Equal(t, events.CommentAdded, msg.Type)
	assert.Equal(t, "p1", msg.PostID)
	assert.Empty(t, c.Send, "delivered once, not also locally")

	require.NoError(t, hub.Shutdown(context.Background()))
}

func TestFeedPublisher_DirectToRecipient(t *testing.T) {
	author, liker := uuid.NewString(), uuid.NewString()

	tests := []struct {
		name  string
		redis bool
	}{
		{"local hub", false},
		{"through redis", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			hub := NewHub()
			n := NewNotifier(nil)
			if tt.redis {
				n = NewNotifier(newTestRedis(t))
			}
			authorConn, err := hub.Register(author, nil)
			require.NoError(t, err)
			likerConn, err := hub.Register(liker, nil)
			require.NoError(t, err)
			require.NoError(t, hub.StartWiring(ctx, n))

			p := NewFeedPublisher(hub, n, featureflags.NewManager("realtime_feed=on"))
			require.NoError(t, p.Publish(ctx, events.Event{
				Type:        events.PostLiked,
				ActorID:     liker,
				PostID:      "p1",
				RecipientID: author,
			}))

			var broadcast, direct FeedMessage
			require.NoError(t, json.Unmarshal([]byte(receive(t, authorConn)), &broadcast))
			require.NoError(t, json.Unmarshal([]byte(receive(t, authorConn)), &direct))
			assert.False(t, broadcast.Direct)
			assert.True(t, direct.Direct)
			assert.Equal(t, events.PostLiked, direct.Type)
			assert.Equal(t, liker, direct.ActorID)

			var seen FeedMessage
			require.NoError(t, json.Unmarshal([]byte(receive(t, likerConn)), &seen))
			assert.False(t, seen.Direct)
			assert.Empty(t, likerConn.Send, "actor only gets the broadcast")

			require.NoError(t, hub.Shutdown(context.Background()))
		})
	}
}

func TestFeedPublisher_NoDirectFrameForOwnAction(t *testing.T) {
	hub := NewHub()
	author := uuid.NewString()
	c, err := hub.Register(author, nil)
	require.NoError(t, err)
	defer func() { _ = hub.Shutdown(context.Background()) }()

	p := NewFeedPublisher(hub, NewNotifier(nil), featureflags.NewManager("realtime_feed=on"))
	require.NoError(t, p.Publish(context.Background(), events.Event{
		Type:        events.CommentAdded,
		ActorID:     author,
		PostID:      "p1",
		RecipientID: author,
	}))

	receive(t, c)
	assert.Empty(t, c.Send)
}
