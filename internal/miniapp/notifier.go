package miniapp

import (
	"context"
	"encoding/json"
	"time"

	"github.com/appetiteclub/apt/events"
	"github.com/appetiteclub/miniapp/internal/order"
	"github.com/appetiteclub/miniapp/pkg/event"
)

// EventNotifier publishes user notifications on the platform message channel.
type EventNotifier struct {
	publisher events.Publisher
	topic     string
	now       func() time.Time
}

func NewEventNotifier(publisher events.Publisher) *EventNotifier {
	return &EventNotifier{
		publisher: publisher,
		topic:     event.NotificationTopic,
		now:       time.Now,
	}
}

func (n *EventNotifier) Notify(ctx context.Context, userID string, level order.Level, message string) error {
	msg, err := json.Marshal(event.NotificationEvent{
		EventType:  event.EventNotificationNew,
		OccurredAt: n.now().UTC(),
		UserID:     userID,
		Level:      string(level),
		Message:    message,
	})
	if err != nil {
		return err
	}
	return n.publisher.Publish(ctx, n.topic, msg)
}
