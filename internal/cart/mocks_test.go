package cart

import (
	"context"
	"sync"

	"github.com/appetiteclub/miniapp/internal/menu"
)

// MockKV is a test mock for KV
type MockKV struct {
	mu      sync.Mutex
	values  map[string]string
	writes  int
	GetFunc func(ctx context.Context, key string) (string, bool, error)
	SetFunc func(ctx context.Context, key, value string) error
}

func NewMockKV() *MockKV {
	return &MockKV{values: make(map[string]string)}
}

func (m *MockKV) Get(ctx context.Context, key string) (string, bool, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, key)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *MockKV) Set(ctx context.Context, key, value string) error {
	m.mu.Lock()
	m.writes++
	m.mu.Unlock()
	if m.SetFunc != nil {
		return m.SetFunc(ctx, key, value)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

func (m *MockKV) Writes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}

// recorder collects events delivered to an observer.
type recorder struct {
	events []Event
}

func (r *recorder) observe(ev Event) {
	r.events = append(r.events, ev)
}

var (
	latte = menu.MenuItem{
		ID:    "1",
		Name:  "Латте",
		Price: 25000,
		OptionGroups: []menu.OptionGroup{
			{Name: "Молоко", Choices: []string{"обычное", "овсяное"}},
			{Name: "Сироп", Choices: []string{"ваниль", "карамель"}},
		},
	}
	espresso  = menu.MenuItem{ID: "espresso", Name: "Эспрессо", Price: 15000}
	croissant = menu.MenuItem{ID: "4", Name: "Круассан", Price: 18000}
)

func testCatalog() *menu.Catalog {
	return menu.NewCatalog([]menu.Category{
		{ID: "coffee", Name: "Кофе", Items: []menu.MenuItem{latte, espresso}},
		{ID: "bakery", Name: "Выпечка", Items: []menu.MenuItem{croissant}},
	})
}

func menuID(s string) menu.ItemID {
	return menu.ItemID(s)
}
