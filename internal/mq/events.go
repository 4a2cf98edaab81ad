package mq

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jjudge-oj/userapi/types"
)

const (
	attrEventType   = "event_type"
	attrContentType = "content_type"
	jsonContentType = "application/json"
)

// UserEventPublisher serializes user lifecycle events onto a channel.
type UserEventPublisher struct {
	backend Backend
	channel string
}

func NewUserEventPublisher(backend Backend, channel string) *UserEventPublisher {
	return &UserEventPublisher{backend: backend, channel: channel}
}

func (p *UserEventPublisher) PublishUserEvent(ctx context.Context, event types.UserEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	attrs := map[string]string{
		attrEventType:   string(event.Type),
		attrContentType: jsonContentType,
	}
	if _, err := p.backend.Publish(ctx, p.channel, data, attrs); err != nil {
		return fmt.Errorf("publish %s: %w", event.Type, err)
	}
	return nil
}

// ConsumeUserEvents blocks, decoding each message on channel and passing it to fn.
// Messages that fail to decode are acknowledged and dropped so they do not
// redeliver forever.
func ConsumeUserEvents(ctx context.Context, backend Backend, channel string, fn func(context.Context, types.UserEvent) error) error {
	return backend.Subscribe(ctx, channel, func(ctx context.Context, msg Message) error {
		var event types.UserEvent
		if err := json.Unmarshal(msg.Data, &event); err != nil {
			return nil
		}
		return fn(ctx, event)
	})
}
