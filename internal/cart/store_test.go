package cart

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/appetiteclub/miniapp/internal/money"
)

func TestAddItemDeduplicates(t *testing.T) {
	tests := []struct {
		name      string
		adds      []SelectedOptions
		wantLines int
		wantCount int
	}{
		{
			name:      "sameOptionsShareLine",
			adds:      []SelectedOptions{{"Молоко": "овсяное"}, {"Молоко": "овсяное"}, {"Молоко": "овсяное"}},
			wantLines: 1,
			wantCount: 3,
		},
		{
			name:      "differentOptionsSplitLines",
			adds:      []SelectedOptions{{"Молоко": "овсяное"}, {"Молоко": "обычное"}, nil},
			wantLines: 3,
			wantCount: 3,
		},
		{
			name:      "emptyChoiceIsNoSelection",
			adds:      []SelectedOptions{nil, {"Сироп": ""}, {}},
			wantLines: 1,
			wantCount: 3,
		},
		{
			name:      "undeclaredGroupIgnored",
			adds:      []SelectedOptions{{"Размер": "XL"}, nil},
			wantLines: 1,
			wantCount: 2,
		},
		{
			name:      "optionOrderIrrelevant",
			adds:      []SelectedOptions{{"Молоко": "овсяное", "Сироп": "ваниль"}, {"Сироп": "ваниль", "Молоко": "овсяное"}},
			wantLines: 1,
			wantCount: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewStore(NewMockKV())
			for _, opts := range tt.adds {
				s.AddItem(context.Background(), latte, opts)
			}

			if got := s.Len(); got != tt.wantLines {
				t.Errorf("Len() = %d, want %d", got, tt.wantLines)
			}
			if got := s.Count(); got != tt.wantCount {
				t.Errorf("Count() = %d, want %d", got, tt.wantCount)
			}
		})
	}
}

func TestAddItemCapturesPrice(t *testing.T) {
	s := NewStore(nil)
	line := s.AddItem(context.Background(), espresso, nil)

	if line.UnitPrice != 15000 || line.Name != "Эспрессо" || line.Quantity != 1 {
		t.Fatalf("unexpected line %+v", line)
	}

	repriced := espresso
	repriced.Price = 99999
	line = s.AddItem(context.Background(), repriced, nil)

	if line.UnitPrice != 15000 {
		t.Errorf("unit price changed to %d, want the price captured on first add", line.UnitPrice)
	}
	if line.Quantity != 2 {
		t.Errorf("quantity = %d, want 2", line.Quantity)
	}
}

func TestTotalScenario(t *testing.T) {
	ctx := context.Background()
	s := NewStore(NewMockKV())

	s.AddItem(ctx, latte, SelectedOptions{"Молоко": "овсяное"})
	s.AddItem(ctx, latte, SelectedOptions{"Молоко": "овсяное"})
	s.AddItem(ctx, croissant, nil)

	if got := s.Total(); got != money.Amount(68000) {
		t.Errorf("Total() = %d, want 68000", got)
	}
	if got := s.Count(); got != 3 {
		t.Errorf("Count() = %d, want 3", got)
	}

	lines := s.Snapshot()
	if len(lines) != 2 || lines[0].ItemID != "1" || lines[1].ItemID != "4" {
		t.Fatalf("Snapshot() = %+v, want latte then croissant", lines)
	}
	if lines[0].Quantity != 2 || lines[0].Options["Молоко"] != "овсяное" {
		t.Errorf("latte line = %+v", lines[0])
	}
}

func TestSetQuantity(t *testing.T) {
	tests := []struct {
		name      string
		quantity  int
		wantFound bool
		wantQty   int
	}{
		{name: "overwrite", quantity: 5, wantFound: true, wantQty: 5},
		{name: "one", quantity: 1, wantFound: true, wantQty: 1},
		{name: "zeroRemoves", quantity: 0, wantFound: false},
		{name: "negativeRemoves", quantity: -1, wantFound: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			s := NewStore(NewMockKV())
			line := s.AddItem(ctx, latte, nil)
			s.AddItem(ctx, croissant, nil)

			s.SetQuantity(ctx, line.Key(), tt.quantity)

			got, found := s.Line(line.Key())
			if found != tt.wantFound {
				t.Fatalf("Line() found = %v, want %v", found, tt.wantFound)
			}
			if found && got.Quantity != tt.wantQty {
				t.Errorf("Quantity = %d, want %d", got.Quantity, tt.wantQty)
			}
			if _, ok := s.Line(KeyFor(croissant.ID, nil)); !ok {
				t.Error("unrelated line was touched")
			}
		})
	}
}

func TestSetQuantityBelowOneMatchesRemove(t *testing.T) {
	ctx := context.Background()
	viaSet := NewStore(nil)
	viaRemove := NewStore(nil)
	for _, s := range []*Store{viaSet, viaRemove} {
		s.AddItem(ctx, latte, nil)
		s.AddItem(ctx, espresso, nil)
	}

	viaSet.SetQuantity(ctx, KeyFor(latte.ID, nil), 0)
	viaRemove.RemoveLine(ctx, KeyFor(latte.ID, nil))

	a, _ := Encode(viaSet.Snapshot())
	b, _ := Encode(viaRemove.Snapshot())
	if a != b {
		t.Errorf("SetQuantity(0) state %s differs from RemoveLine state %s", a, b)
	}
}

func TestMissingKeyIsNoop(t *testing.T) {
	ctx := context.Background()
	kv := NewMockKV()
	rec := &recorder{}
	s := NewStore(kv, WithObserver(rec.observe))

	s.RemoveLine(ctx, "nope")
	s.SetQuantity(ctx, "nope", 3)

	if kv.Writes() != 0 {
		t.Errorf("writes = %d, want 0", kv.Writes())
	}
	if len(rec.events) != 0 {
		t.Errorf("events = %d, want 0", len(rec.events))
	}
}

func TestMutationsPersistAndNotify(t *testing.T) {
	ctx := context.Background()
	kv := NewMockKV()
	rec := &recorder{}
	s := NewStore(kv)
	s.Subscribe(rec.observe)

	line := s.AddItem(ctx, latte, nil)
	s.SetQuantity(ctx, line.Key(), 3)
	s.AddItem(ctx, croissant, nil)
	s.RemoveLine(ctx, line.Key())
	s.Clear(ctx)

	wantKinds := []EventKind{EventAdded, EventQuantityChanged, EventAdded, EventRemoved, EventCleared}
	if len(rec.events) != len(wantKinds) {
		t.Fatalf("events = %d, want %d", len(rec.events), len(wantKinds))
	}
	for i, kind := range wantKinds {
		if rec.events[i].Kind != kind {
			t.Errorf("event %d kind = %s, want %s", i, rec.events[i].Kind, kind)
		}
	}
	if ev := rec.events[2]; ev.Total != 25000*3+18000 || ev.Count != 4 {
		t.Errorf("event totals = %d/%d, want 93000/4", ev.Total, ev.Count)
	}

	if kv.Writes() != len(wantKinds) {
		t.Errorf("writes = %d, want %d", kv.Writes(), len(wantKinds))
	}
	if got := kv.values[StorageKey]; got != "[]" {
		t.Errorf("persisted after clear = %s, want []", got)
	}
}

func TestPersistFailureKeepsMemoryState(t *testing.T) {
	ctx := context.Background()
	kv := NewMockKV()
	kv.SetFunc = func(ctx context.Context, key, value string) error {
		return errors.New("quota exceeded")
	}
	rec := &recorder{}
	s := NewStore(kv, WithObserver(rec.observe))

	s.AddItem(ctx, latte, nil)

	if s.Count() != 1 {
		t.Errorf("Count() = %d, want 1", s.Count())
	}
	if len(rec.events) != 1 {
		t.Errorf("observers not notified after failed write")
	}
}

func TestSnapshotIsCopy(t *testing.T) {
	ctx := context.Background()
	s := NewStore(nil)
	s.AddItem(ctx, latte, SelectedOptions{"Молоко": "овсяное"})

	lines := s.Snapshot()
	lines[0].Quantity = 42
	lines[0].Options["Молоко"] = "обычное"

	got := s.Snapshot()[0]
	if got.Quantity != 1 || got.Options["Молоко"] != "овсяное" {
		t.Errorf("store mutated through snapshot: %+v", got)
	}
}

func TestConcurrentAdds(t *testing.T) {
	ctx := context.Background()
	s := NewStore(NewMockKV())

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.AddItem(ctx, espresso, nil)
		}()
	}
	wg.Wait()

	if s.Len() != 1 || s.Count() != 50 {
		t.Errorf("Len/Count = %d/%d, want 1/50", s.Len(), s.Count())
	}
	if s.Total() != 50*15000 {
		t.Errorf("Total() = %d, want %d", s.Total(), 50*15000)
	}
}

func TestKeyFor(t *testing.T) {
	tests := []struct {
		name string
		id   string
		opts SelectedOptions
		want LineKey
	}{
		{name: "noOptions", id: "latte", want: "latte"},
		{name: "sortedOptions", id: "latte", opts: SelectedOptions{"syrup": "vanilla", "milk": "oat"}, want: "latte?milk=oat&syrup=vanilla"},
		{name: "escapedID", id: "flat white", want: "flat%20white"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KeyFor(menuID(tt.id), tt.opts); got != tt.want {
				t.Errorf("KeyFor() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSettleKeepsLaterAdditions(t *testing.T) {
	ctx := context.Background()
	kv := NewMockKV()
	rec := &recorder{}
	s := NewStore(kv)

	s.AddItem(ctx, latte, nil)
	s.AddItem(ctx, latte, nil)
	s.AddItem(ctx, espresso, nil)
	submitted := s.Capture()

	s.AddItem(ctx, latte, nil)
	s.AddItem(ctx, croissant, nil)
	s.Subscribe(rec.observe)

	s.Settle(ctx, submitted)

	lines := s.Snapshot()
	if len(lines) != 2 {
		t.Fatalf("lines = %+v, want latte and croissant", lines)
	}
	if lines[0].ItemID != latte.ID || lines[0].Quantity != 1 {
		t.Errorf("latte line = %+v, want quantity 1", lines[0])
	}
	if lines[1].ItemID != croissant.ID || lines[1].Quantity != 1 {
		t.Errorf("croissant line = %+v, want quantity 1", lines[1])
	}
	if len(rec.events) != 1 || rec.events[0].Kind != EventSettled || rec.events[0].Total != 25000+18000 {
		t.Errorf("events = %+v", rec.events)
	}
}

func TestSettleEverything(t *testing.T) {
	ctx := context.Background()
	kv := NewMockKV()
	s := NewStore(kv)

	s.AddItem(ctx, latte, nil)
	s.AddItem(ctx, croissant, nil)
	s.Settle(ctx, s.Capture())

	if s.Len() != 0 {
		t.Errorf("Len() = %d, want 0", s.Len())
	}
	if got := kv.values[StorageKey]; got != "[]" {
		t.Errorf("persisted = %s, want []", got)
	}
}

func TestSettleKeepsLineRemovedAndAddedAgain(t *testing.T) {
	ctx := context.Background()
	s := NewStore(nil)

	line := s.AddItem(ctx, latte, nil)
	s.AddItem(ctx, latte, nil)
	submitted := s.Capture()

	s.RemoveLine(ctx, line.Key())
	s.AddItem(ctx, latte, nil)

	s.Settle(ctx, submitted)

	got, ok := s.Line(line.Key())
	if !ok || got.Quantity != 1 {
		t.Errorf("Line() = %+v, %v; want the re-added latte with quantity 1", got, ok)
	}
}

func TestSettleLoadedCart(t *testing.T) {
	ctx := context.Background()
	kv := NewMockKV()
	kv.values[StorageKey] = `[{"id":"1","name":"Латте","price":25000,"quantity":2,"options":null}]`

	s, err := Load(ctx, kv, testCatalog())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	b := s.Capture()
	s.AddItem(ctx, croissant, nil)
	s.Settle(ctx, b)

	lines := s.Snapshot()
	if len(lines) != 1 || lines[0].ItemID != croissant.ID {
		t.Errorf("lines = %+v, want only the croissant", lines)
	}
}
