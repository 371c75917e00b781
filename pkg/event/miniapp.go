package event

import "time"

// Subjects on the platform message channel. The chat bot bridges them to the web view.
const (
	WebAppDataTopic   = "miniapp.web_app_data"
	ViewControlTopic  = "miniapp.view_control"
	NotificationTopic = "miniapp.notifications"
)

const (
	EventViewClose       = "view.close"
	EventNotificationNew = "notification.new"
)

// ViewControlEvent asks the platform to act on the user's embedded view.
type ViewControlEvent struct {
	EventType  string    `json:"event_type"`
	OccurredAt time.Time `json:"occurred_at"`
	UserID     string    `json:"user_id"`
	RequestID  string    `json:"request_id,omitempty"`
}

// NotificationEvent is a transient user-facing message (toast).
type NotificationEvent struct {
	EventType  string    `json:"event_type"`
	OccurredAt time.Time `json:"occurred_at"`
	UserID     string    `json:"user_id"`
	Level      string    `json:"level"`
	Message    string    `json:"message"`
}
