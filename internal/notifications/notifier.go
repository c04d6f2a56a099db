// Package notifications publishes publication events into Redis channels so
// downstream consumers (feed rebuilders, mail digests) can react without
// coupling to the write path.
package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"inkwell/internal/middleware"
)

// EventType identifies what happened to a post.
type EventType string

const (
	EventPostPublished EventType = "post.published"
)

// ChannelPosts is the Redis channel all post events land on.
const ChannelPosts = "inkwell:events:posts"

// AuthorChannel derives the per-author event channel name.
func AuthorChannel(authorID uint) string {
	return fmt.Sprintf("inkwell:events:author:%d", authorID)
}

// Event is the wire payload published for each post lifecycle change.
type Event struct {
	ID       string    `json:"id"`
	Type     EventType `json:"type"`
	Slug     string    `json:"slug"`
	AuthorID uint      `json:"author_id"`
	At       time.Time `json:"at"`
}

// Notifier publishes events into Redis. A nil Redis client turns every
// publish into a no-op, so callers never need to guard on availability.
type Notifier struct {
	rdb *redis.Client
}

func NewNotifier(rdb *redis.Client) *Notifier {
	return &Notifier{rdb: rdb}
}

// PublishPostEvent fires an event for the given post on both the global and
// the per-author channel. Delivery is best-effort: a publish failure is
// logged and never propagated to the write path that triggered it.
func (n *Notifier) PublishPostEvent(ctx context.Context, typ EventType, slug string, authorID uint) {
	if n == nil || n.rdb == nil {
		return
	}

	event := Event{
		ID:       uuid.NewString(),
		Type:     typ,
		Slug:     slug,
		AuthorID: authorID,
		At:       time.Now().UTC(),
	}
	payload, err := json.Marshal(event)
	if err != nil {
		middleware.Logger.WarnContext(ctx, "event marshal failed",
			slog.String("type", string(typ)), slog.String("error", err.Error()))
		return
	}

	if err := n.rdb.Publish(ctx, ChannelPosts, payload).Err(); err != nil {
		middleware.Logger.WarnContext(ctx, "event publish failed",
			slog.String("channel", ChannelPosts), slog.String("error", err.Error()))
	}
	if err := n.rdb.Publish(ctx, AuthorChannel(authorID), payload).Err(); err != nil {
		middleware.Logger.WarnContext(ctx, "event publish failed",
			slog.String("channel", AuthorChannel(authorID)), slog.String("error", err.Error()))
	}
}

// StartSubscriber subscribes to every post event channel and calls onEvent
// for each decoded event until ctx is cancelled. Malformed payloads are
// skipped.
func (n *Notifier) StartSubscriber(ctx context.Context, onEvent func(channel string, event Event)) error {
	if n == nil || n.rdb == nil {
		return nil
	}
	sub := n.rdb.PSubscribe(ctx, ChannelPosts, "inkwell:events:author:*")
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
				var event Event
				if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
					middleware.Logger.Warn("event decode failed",
						slog.String("channel", msg.Channel), slog.String("error", err.Error()))
					continue
				}
				func() {
					defer func() {
						if r := recover(); r != nil {
							middleware.Logger.Error("panic in event subscriber",
								slog.Any("panic", r), slog.String("stack", string(debug.Stack())))
						}
					}()
					onEvent(msg.Channel, event)
				}()
			}
		}
	}()

	return nil
}
