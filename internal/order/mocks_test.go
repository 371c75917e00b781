package order

import (
	"context"
	"sync"

	"github.com/appetiteclub/miniapp/internal/cart"
	"github.com/appetiteclub/miniapp/internal/menu"
)

// MockTransport is a test mock for Transport
type MockTransport struct {
	mu         sync.Mutex
	requests   []Request
	SubmitFunc func(ctx context.Context, req Request) (Confirmation, error)
}

func (m *MockTransport) Name() string {
	return "mock"
}

func (m *MockTransport) Submit(ctx context.Context, req Request) (Confirmation, error) {
	m.mu.Lock()
	m.requests = append(m.requests, req)
	m.mu.Unlock()
	if m.SubmitFunc != nil {
		return m.SubmitFunc(ctx, req)
	}
	return Confirmation{}, nil
}

func (m *MockTransport) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}

// MockKV is a test mock for KV
type MockKV struct {
	values  map[string]string
	SetFunc func(ctx context.Context, key, value string) error
}

func NewMockKV() *MockKV {
	return &MockKV{values: make(map[string]string)}
}

func (m *MockKV) Get(ctx context.Context, key string) (string, bool, error) {
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *MockKV) Set(ctx context.Context, key, value string) error {
	if m.SetFunc != nil {
		return m.SetFunc(ctx, key, value)
	}
	m.values[key] = value
	return nil
}

type notification struct {
	userID  string
	level   Level
	message string
}

// MockNotifier records notifications.
type MockNotifier struct {
	sent []notification
}

func (m *MockNotifier) Notify(ctx context.Context, userID string, level Level, message string) error {
	m.sent = append(m.sent, notification{userID: userID, level: level, message: message})
	return nil
}

func (m *MockNotifier) Last() notification {
	if len(m.sent) == 0 {
		return notification{}
	}
	return m.sent[len(m.sent)-1]
}

var (
	latte     = menu.MenuItem{ID: "latte", Name: "Латте", Price: 25000}
	croissant = menu.MenuItem{ID: "croissant", Name: "Круассан", Price: 18000}
)

func filledCart() *cart.Store {
	ctx := context.Background()
	s := cart.NewStore(nil)
	s.AddItem(ctx, latte, nil)
	s.AddItem(ctx, latte, nil)
	s.AddItem(ctx, croissant, nil)
	return s
}
