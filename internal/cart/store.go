package cart

import (
	"context"
	"sync"

	"github.com/appetiteclub/apt"
	"github.com/appetiteclub/miniapp/internal/menu"
	"github.com/appetiteclub/miniapp/internal/money"
)

// KV is the persistence the cart needs. *storage.Scoped satisfies it.
type KV interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

// EventKind names the mutation that produced an Event.
type EventKind string

const (
	EventAdded           EventKind = "added"
	EventQuantityChanged EventKind = "quantity_changed"
	EventRemoved         EventKind = "removed"
	EventCleared         EventKind = "cleared"
	EventSettled         EventKind = "settled"
)

// Event is delivered to observers after every mutation, once the new state is persisted.
type Event struct {
	Kind  EventKind
	Key   LineKey
	Lines []Line
	Total money.Amount
	Count int
}

// Observer receives cart events. Observers run under the store lock and must not call back into the store.
type Observer func(Event)

type Option func(*Store)

func WithLogger(logger apt.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithObserver(o Observer) Option {
	return func(s *Store) {
		if o != nil {
			s.observers = append(s.observers, o)
		}
	}
}

// entry is a line plus the generation it was created in. A line removed and added
// again gets a new generation.
type entry struct {
	key  LineKey
	gen  uint64
	line Line
}

// Batch is the cart content captured for one checkout attempt.
type Batch struct {
	Lines []Line
	gens  map[LineKey]uint64
}

// Store is one user's cart. All methods are safe for concurrent use; mutations are serialised.
type Store struct {
	mu        sync.Mutex
	entries   []entry
	lastGen   uint64
	kv        KV
	observers []Observer
	logger    apt.Logger
}

// NewStore returns an empty cart persisted through kv. kv may be nil for a purely in-memory cart.
func NewStore(kv KV, opts ...Option) *Store {
	s := &Store{
		kv:     kv,
		logger: apt.NewNoopLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Subscribe registers an observer for subsequent mutations.
func (s *Store) Subscribe(o Observer) {
	if o == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = append(s.observers, o)
}

// AddItem adds one unit of item with the given options. Options are canonicalised against the
// item's declared groups first, so equal selections always land on the same line.
func (s *Store) AddItem(ctx context.Context, item menu.MenuItem, opts SelectedOptions) Line {
	opts = Canonicalize(item, opts)
	key := KeyFor(item.ID, opts)

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexLocked(key)
	if idx < 0 {
		s.appendLocked(key, Line{
			ItemID:    item.ID,
			Name:      item.Name,
			UnitPrice: item.Price,
			Quantity:  1,
			Options:   opts,
		})
		idx = len(s.entries) - 1
	} else {
		s.entries[idx].line.Quantity++
	}

	added := s.entries[idx].line.clone()
	s.commitLocked(ctx, Event{Kind: EventAdded, Key: key})
	return added
}

// RemoveLine deletes the line with key. Removing an absent line does nothing.
func (s *Store) RemoveLine(ctx context.Context, key LineKey) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removeLocked(ctx, key)
}

// SetQuantity overwrites a line's quantity. Quantities below 1 remove the line.
func (s *Store) SetQuantity(ctx context.Context, key LineKey, quantity int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if quantity < 1 {
		s.removeLocked(ctx, key)
		return
	}

	idx := s.indexLocked(key)
	if idx < 0 {
		return
	}
	s.entries[idx].line.Quantity = quantity
	s.commitLocked(ctx, Event{Kind: EventQuantityChanged, Key: key})
}

// Clear empties the cart. The persisted entry is overwritten with an empty list.
func (s *Store) Clear(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = nil
	s.commitLocked(ctx, Event{Kind: EventCleared})
}

// Capture snapshots the cart for a checkout attempt.
func (s *Store) Capture() Batch {
	s.mu.Lock()
	defer s.mu.Unlock()

	b := Batch{
		Lines: s.snapshotLocked(),
		gens:  make(map[LineKey]uint64, len(s.entries)),
	}
	for _, e := range s.entries {
		b.gens[e.key] = e.gen
	}
	return b
}

// Settle removes what an accepted order contained. Only lines that existed when b was
// captured are reduced; quantities added since, including lines removed and added again,
// stay in the cart for the next checkout.
func (s *Store) Settle(ctx context.Context, b Batch) {
	s.mu.Lock()
	defer s.mu.Unlock()

	submitted := make(map[LineKey]int, len(b.Lines))
	for _, l := range b.Lines {
		submitted[l.Key()] += l.Quantity
	}

	kept := s.entries[:0]
	for _, e := range s.entries {
		if gen, ok := b.gens[e.key]; ok && gen == e.gen {
			e.line.Quantity -= submitted[e.key]
		}
		if e.line.Quantity > 0 {
			kept = append(kept, e)
		}
	}
	s.entries = kept
	if len(s.entries) == 0 {
		s.entries = nil
	}
	s.commitLocked(ctx, Event{Kind: EventSettled})
}

// Total is the sum of line subtotals in minor units.
func (s *Store) Total() money.Amount {
	return Total(s.Snapshot())
}

// Count is the total number of units in the cart.
func (s *Store) Count() int {
	return Count(s.Snapshot())
}

// Len is the number of distinct lines.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Line returns a copy of the line with key.
func (s *Store) Line(key LineKey) (Line, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.indexLocked(key)
	if idx < 0 {
		return Line{}, false
	}
	return s.entries[idx].line.clone(), true
}

// Snapshot returns a copy of all lines in insertion order.
func (s *Store) Snapshot() []Line {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Store) removeLocked(ctx context.Context, key LineKey) {
	idx := s.indexLocked(key)
	if idx < 0 {
		return
	}
	s.entries = append(s.entries[:idx], s.entries[idx+1:]...)
	s.commitLocked(ctx, Event{Kind: EventRemoved, Key: key})
}

func (s *Store) appendLocked(key LineKey, line Line) {
	s.lastGen++
	s.entries = append(s.entries, entry{key: key, gen: s.lastGen, line: line})
}

func (s *Store) indexLocked(key LineKey) int {
	for i, e := range s.entries {
		if e.key == key {
			return i
		}
	}
	return -1
}

func (s *Store) snapshotLocked() []Line {
	lines := make([]Line, 0, len(s.entries))
	for _, e := range s.entries {
		lines = append(lines, e.line.clone())
	}
	return lines
}

// commitLocked persists the current state and then notifies observers.
// A failed write is logged; the in-memory cart stays authoritative.
func (s *Store) commitLocked(ctx context.Context, ev Event) {
	lines := s.snapshotLocked()

	if s.kv != nil {
		if err := s.persist(ctx, lines); err != nil {
			s.logger.Error("cannot persist cart", "event", string(ev.Kind), "error", err)
		}
	}

	ev.Lines = lines
	ev.Total = Total(lines)
	ev.Count = Count(lines)
	for _, o := range s.observers {
		o(ev)
	}
}

func (s *Store) persist(ctx context.Context, lines []Line) error {
	data, err := Encode(lines)
	if err != nil {
		return err
	}
	return s.kv.Set(ctx, StorageKey, data)
}
