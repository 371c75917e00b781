package miniapp

import (
	"context"
	"sync"

	"github.com/appetiteclub/miniapp/internal/menu"
	"github.com/appetiteclub/miniapp/internal/order"
	"github.com/appetiteclub/miniapp/internal/transport"
)

// MockTransport is a test mock for order.Transport
type MockTransport struct {
	mu         sync.Mutex
	calls      int
	SubmitFunc func(ctx context.Context, req order.Request) (order.Confirmation, error)
}

func (m *MockTransport) Name() string {
	return "mock"
}

func (m *MockTransport) Submit(ctx context.Context, req order.Request) (order.Confirmation, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
	if m.SubmitFunc != nil {
		return m.SubmitFunc(ctx, req)
	}
	return order.Confirmation{}, nil
}

func (m *MockTransport) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// MockPublisher is a test mock for events.Publisher
type MockPublisher struct {
	mu       sync.Mutex
	topics   []string
	messages [][]byte
}

func (m *MockPublisher) Publish(ctx context.Context, topic string, msg []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.topics = append(m.topics, topic)
	m.messages = append(m.messages, msg)
	return nil
}

// MockAccounts is a test mock for AccountService
type MockAccounts struct {
	profile         transport.Profile
	orders          []transport.OrderSummary
	ProfileFunc     func(ctx context.Context, userID string) (transport.Profile, error)
	SaveProfileFunc func(ctx context.Context, userID string, p transport.Profile) error
	OrdersFunc      func(ctx context.Context, userID string) ([]transport.OrderSummary, error)
}

func (m *MockAccounts) Profile(ctx context.Context, userID string) (transport.Profile, error) {
	if m.ProfileFunc != nil {
		return m.ProfileFunc(ctx, userID)
	}
	return m.profile, nil
}

func (m *MockAccounts) SaveProfile(ctx context.Context, userID string, p transport.Profile) error {
	if m.SaveProfileFunc != nil {
		return m.SaveProfileFunc(ctx, userID, p)
	}
	m.profile = p
	return nil
}

func (m *MockAccounts) Orders(ctx context.Context, userID string) ([]transport.OrderSummary, error) {
	if m.OrdersFunc != nil {
		return m.OrdersFunc(ctx, userID)
	}
	return m.orders, nil
}

func testCatalog() *menu.Catalog {
	return menu.NewCatalog([]menu.Category{
		{
			ID:   "coffee",
			Name: "Кофе",
			Items: []menu.MenuItem{
				{
					ID:    "1",
					Name:  "Латте",
					Price: 25000,
					OptionGroups: []menu.OptionGroup{
						{Name: "Молоко", Choices: []string{"обычное", "овсяное"}},
					},
				},
			},
		},
		{
			ID:    "bakery",
			Name:  "Выпечка",
			Items: []menu.MenuItem{{ID: "4", Name: "Круассан", Price: 18000}},
		},
	})
}
