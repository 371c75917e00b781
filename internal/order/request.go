package order

import (
	"context"
	"time"

	"github.com/appetiteclub/miniapp/internal/cart"
	"github.com/appetiteclub/miniapp/internal/money"
	"github.com/google/uuid"
)

// Request is the immutable snapshot handed to a Transport, built once per checkout attempt.
type Request struct {
	ID            uuid.UUID
	UserID        string
	Lines         []cart.Line
	Total         money.Amount
	DeliveryType  string
	ScheduledTime string
	Address       string
	Notes         string
	CreatedAt     time.Time
}

// Confirmation describes a delivered order. OrderID is zero when the transport assigns none.
type Confirmation struct {
	RequestID     uuid.UUID    `json:"request_id"`
	OrderID       int64        `json:"order_id,omitempty"`
	Total         money.Amount `json:"total"`
	ScheduledTime string       `json:"scheduled_time"`
	Transport     string       `json:"transport"`
}

func (c Confirmation) HasOrderID() bool {
	return c.OrderID != 0
}

// Transport delivers a Request. Submit blocks until the outcome is known or ctx ends;
// callers that must stay responsive run it on their own goroutine.
type Transport interface {
	Name() string
	Submit(ctx context.Context, req Request) (Confirmation, error)
}

// Level classifies a user notification.
type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

// Notifier shows a transient message to the user.
type Notifier interface {
	Notify(ctx context.Context, userID string, level Level, message string) error
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, userID string, level Level, message string) error

func (f NotifierFunc) Notify(ctx context.Context, userID string, level Level, message string) error {
	return f(ctx, userID, level, message)
}
