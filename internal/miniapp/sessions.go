package miniapp

import (
	"context"
	"sync"

	"github.com/appetiteclub/apt"
	"github.com/appetiteclub/miniapp/internal/cart"
	"github.com/appetiteclub/miniapp/internal/menu"
	"github.com/appetiteclub/miniapp/internal/order"
	"github.com/appetiteclub/miniapp/internal/storage"
)

// Session is one chat user's cart and checkout composer.
type Session struct {
	UserID   string
	Cart     *cart.Store
	Composer *order.Composer
}

type SessionDeps struct {
	Storage   storage.Store
	Catalog   *menu.Catalog
	Transport order.Transport
	Notifier  order.Notifier
	Phrases   order.Phrases
	Observers []cart.Observer
}

// Sessions keeps one Session per user, rehydrating the cart from storage on first use.
type Sessions struct {
	mu       sync.Mutex
	sessions map[string]*Session
	deps     SessionDeps
	logger   apt.Logger
}

func NewSessions(deps SessionDeps, logger apt.Logger) *Sessions {
	if logger == nil {
		logger = apt.NewNoopLogger()
	}
	if deps.Storage == nil {
		deps.Storage = storage.NewMemoryStore()
	}
	if deps.Phrases.Locale == "" {
		deps.Phrases = order.PhrasesFor(order.DefaultLocale)
	}
	return &Sessions{
		sessions: make(map[string]*Session),
		deps:     deps,
		logger:   logger,
	}
}

// Get returns the user's session. A cart that cannot be read from storage starts empty.
func (s *Sessions) Get(ctx context.Context, userID string) *Session {
	s.mu.Lock()
	session, ok := s.sessions[userID]
	s.mu.Unlock()
	if ok {
		return session
	}

	created := s.open(ctx, userID)

	s.mu.Lock()
	defer s.mu.Unlock()
	if session, ok := s.sessions[userID]; ok {
		return session
	}
	s.sessions[userID] = created
	return created
}

// Forget drops the in-memory session; the next Get reloads it from storage.
func (s *Sessions) Forget(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, userID)
}

func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *Sessions) open(ctx context.Context, userID string) *Session {
	log := s.logger.With("user_id", userID)
	scoped := storage.Scope(s.deps.Storage, userID)

	opts := []cart.Option{cart.WithLogger(log)}
	for _, o := range s.deps.Observers {
		opts = append(opts, cart.WithObserver(o))
	}

	store, err := cart.Load(ctx, scoped, s.deps.Catalog, opts...)
	if err != nil {
		log.Error("cart restored empty", "error", err)
	}

	composer := order.NewComposer(s.deps.Transport, scoped,
		order.WithNotifier(s.deps.Notifier),
		order.WithPhrases(s.deps.Phrases),
		order.WithComposerLogger(log),
	)

	return &Session{UserID: userID, Cart: store, Composer: composer}
}
