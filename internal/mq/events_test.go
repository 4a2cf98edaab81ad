package mq

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jjudge-oj/userapi/config"
	"github.com/jjudge-oj/userapi/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// loopback delivers published messages to the subscriber of the same channel.
type loopback struct {
	published []Message
	channels  []string
}

func (l *loopback) Publish(_ context.Context, channel string, data []byte, attrs map[string]string) (string, error) {
	l.channels = append(l.channels, channel)
	l.published = append(l.published, Message{ID: "m1", Data: data, Attributes: attrs})
	return "m1", nil
}

func (l *loopback) Subscribe(ctx context.Context, _ string, handler Handler) error {
	for _, msg := range l.published {
		if err := handler(ctx, msg); err != nil {
			return err
		}
	}
	return nil
}

func (l *loopback) Close() error { return nil }

func TestUserEventRoundTrip(t *testing.T) {
	ctx := context.Background()
	backend := &loopback{}
	publisher := NewUserEventPublisher(backend, "users.events")

	event := types.UserEvent{
		ID:         "evt-1",
		Type:       types.UserCreated,
		UserID:     7,
		User:       &types.User{ID: 7, Username: "neo", PasswordHash: "secret-hash"},
		OccurredAt: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
	}
	require.NoError(t, publisher.PublishUserEvent(ctx, event))

	require.Len(t, backend.published, 1)
	assert.Equal(t, []string{"users.events"}, backend.channels)
	assert.Equal(t, "user.created", backend.published[0].Attributes["event_type"])
	assert.NotContains(t, string(backend.published[0].Data), "secret-hash")

	// An undecodable message is skipped rather than failing the consumer.
	backend.published = append(backend.published, Message{Data: []byte("{not json")})

	var got []types.UserEvent
	err := ConsumeUserEvents(ctx, backend, "users.events", func(_ context.Context, e types.UserEvent) error {
		got = append(got, e)
		return nil
	})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, types.UserCreated, got[0].Type)
	assert.Equal(t, "neo", got[0].User.Username)
	assert.Empty(t, got[0].User.PasswordHash)
}

func TestNewBackendSelection(t *testing.T) {
	_, err := NewBackend(context.Background(), config.Config{})
	assert.True(t, errors.Is(err, ErrNoBackend))

	_, err = NewBackend(context.Background(), config.Config{MQ: config.MQConfig{Backend: "kafka"}})
	assert.EqualError(t, err, `unknown message queue backend "kafka"`)

	_, err = NewBackend(context.Background(), config.Config{MQ: config.MQConfig{Backend: "rabbitmq"}})
	assert.EqualError(t, err, "rabbitmq url is required")
}
