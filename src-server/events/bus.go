// Package events carries in-process notifications between plugins, such as
// a profile that changed outside the interaction that shows it.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

const TopicProfileUpdated = "profile.updated"

type ProfileUpdated struct {
	DiscordUserID string `json:"discordUserId"`
	Reason        string `json:"reason"`
}

type Bus struct {
	log    *slog.Logger
	pubSub *gochannel.GoChannel
}

func NewBus(logger *slog.Logger) *Bus {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bus{
		log: logger,
		pubSub: gochannel.NewGoChannel(
			gochannel.Config{OutputChannelBuffer: 64},
			watermill.NewSlogLogger(logger),
		),
	}
}

func (b *Bus) PublishProfileUpdated(event ProfileUpdated) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("PublishProfileUpdated: %w", err)
	}
	msg := message.NewMessage(watermill.NewUUID(), payload)
	if err := b.pubSub.Publish(TopicProfileUpdated, msg); err != nil {
		return fmt.Errorf("PublishProfileUpdated: %w", err)
	}
	return nil
}

// OnProfileUpdated runs fn for every profile update until ctx is done or the
// bus is closed. fn runs on a single goroutine; delivery order between
// publishes is not guaranteed.
func (b *Bus) OnProfileUpdated(ctx context.Context, fn func(ctx context.Context, event ProfileUpdated) error) error {
	messages, err := b.pubSub.Subscribe(ctx, TopicProfileUpdated)
	if err != nil {
		return fmt.Errorf("OnProfileUpdated: %w", err)
	}
	go func() {
		for msg := range messages {
			var event ProfileUpdated
			if err := json.Unmarshal(msg.Payload, &event); err != nil {
				b.log.Warn("dropping malformed profile event", "uuid", msg.UUID, "error", err)
				msg.Ack()
				continue
			}
			if err := fn(msg.Context(), event); err != nil {
				b.log.Warn("can't handle profile event", "user", event.DiscordUserID, "error", err)
			}
			msg.Ack()
		}
	}()
	return nil
}

func (b *Bus) Close() error {
	return b.pubSub.Close()
}
