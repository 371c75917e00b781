package transport

import (
	"context"
	"sync"
	"time"

	"github.com/appetiteclub/miniapp/internal/cart"
	"github.com/appetiteclub/miniapp/internal/order"
	"github.com/google/uuid"
)

type published struct {
	topic string
	msg   []byte
}

// MockPublisher is a test mock for events.Publisher
type MockPublisher struct {
	mu          sync.Mutex
	messages    []published
	PublishFunc func(ctx context.Context, topic string, msg []byte) error
}

func (m *MockPublisher) Publish(ctx context.Context, topic string, msg []byte) error {
	if m.PublishFunc != nil {
		if err := m.PublishFunc(ctx, topic, msg); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, published{topic: topic, msg: msg})
	return nil
}

func (m *MockPublisher) Messages() []published {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]published(nil), m.messages...)
}

// deferred captures functions scheduled with a delay so tests can run them on demand.
type deferred struct {
	delays []time.Duration
	funcs  []func()
}

func (d *deferred) afterFunc(delay time.Duration, f func()) {
	d.delays = append(d.delays, delay)
	d.funcs = append(d.funcs, f)
}

func (d *deferred) runAll() {
	for _, f := range d.funcs {
		f()
	}
}

func sampleRequest(userID string) order.Request {
	return order.Request{
		ID:     uuid.MustParse("7f9c24e8-3b12-4a2b-9c7f-0d5c2e1b4a11"),
		UserID: userID,
		Lines: []cart.Line{
			{ItemID: "1", Name: "Латте", UnitPrice: 25000, Quantity: 2, Options: cart.SelectedOptions{"Молоко": "овсяное"}},
			{ItemID: "1", Name: "Латте", UnitPrice: 25000, Quantity: 1},
			{ItemID: "croissant", Name: "Круассан", UnitPrice: 18000, Quantity: 1},
		},
		Total:         93000,
		DeliveryType:  "pickup",
		ScheduledTime: "Через 30 минут",
		Notes:         "без сахара",
		CreatedAt:     time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC),
	}
}
