// Package notifications fans community events out to websocket clients through Redis pub/sub.
package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"runtime/debug"

	"forum/internal/middleware"
	"forum/internal/models"

	"github.com/redis/go-redis/v9"
)

// CommunityEventsChannel carries community events between instances.
const CommunityEventsChannel = "communities:events"

// Event types sent on CommunityEventsChannel.
const (
	EventCommunityCreated = "community_created"
	EventPostCreated      = "post_created"
	EventCommentCreated   = "comment_created"
)

// Event is the envelope written to Redis and forwarded verbatim to websocket clients.
type Event struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// Notifier publishes events into Redis.
type Notifier struct {
	rdb *redis.Client
}

// NewNotifier creates a Notifier. A nil client makes every call a no-op.
func NewNotifier(rdb *redis.Client) *Notifier {
	return &Notifier{rdb: rdb}
}

// Publish marshals ev onto CommunityEventsChannel.
func (n *Notifier) Publish(ctx context.Context, ev Event) error {
	if n.rdb == nil {
		return nil
	}
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	return n.rdb.Publish(ctx, CommunityEventsChannel, payload).Err()
}

// PublishCommunityCreated announces c to every instance.
func (n *Notifier) PublishCommunityCreated(ctx context.Context, c *models.Community) error {
	return n.Publish(ctx, Event{Type: EventCommunityCreated, Payload: models.NewCommunityView(c)})
}

// PublishPostCreated announces a new post in its community.
func (n *Notifier) PublishPostCreated(ctx context.Context, p *models.Post) error {
	return n.Publish(ctx, Event{Type: EventPostCreated, Payload: models.NewPostView(p)})
}

// PublishCommentCreated announces a new comment.
func (n *Notifier) PublishCommentCreated(ctx context.Context, c *models.Comment) error {
	return n.Publish(ctx, Event{Type: EventCommentCreated, Payload: models.NewCommentView(c)})
}

// StartSubscriber subscribes to CommunityEventsChannel and calls onMessage for each payload
// until ctx is cancelled. It returns once the subscription is confirmed.
func (n *Notifier) StartSubscriber(ctx context.Context, onMessage func(payload string)) error {
	if n.rdb == nil {
		return nil
	}

	sub := n.rdb.Subscribe(ctx, CommunityEventsChannel)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return fmt.Errorf("subscribe %s: %w", CommunityEventsChannel, err)
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
							middleware.Logger.Error("panic in community event subscriber",
								"panic", r, "stack", string(debug.Stack()))
						}
					}()
					onMessage(msg.Payload)
				}()
			}
		}
	}()

	return nil
}
