package cart

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"

	"github.com/appetiteclub/miniapp/internal/menu"
)

// StorageKey is the storage entry holding the serialised cart.
const StorageKey = "coffeeShopCart"

// ErrUnknownFormat is returned by Decode when the data is neither a line list nor a legacy quantity map.
var ErrUnknownFormat = errors.New("unrecognised cart format")

// Encode serialises lines as a JSON array.
func Encode(lines []Line) (string, error) {
	if lines == nil {
		lines = []Line{}
	}
	data, err := json.Marshal(lines)
	if err != nil {
		return "", fmt.Errorf("cannot encode cart: %w", err)
	}
	return string(data), nil
}

// Decode parses persisted cart data. Two shapes are accepted: the current line array and the
// legacy object mapping item id to quantity. Legacy entries are upgraded through catalog
// (ids the catalog does not know are dropped) and legacy is reported true.
// In both shapes lines with quantity below 1 are dropped and lines sharing a key are merged.
func Decode(data string, catalog *menu.Catalog) (lines []Line, legacy bool, err error) {
	raw := bytes.TrimSpace([]byte(data))
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, false, nil
	}

	switch raw[0] {
	case '[':
		var stored []Line
		if err := json.Unmarshal(raw, &stored); err != nil {
			return nil, false, fmt.Errorf("cannot decode cart lines: %w", err)
		}
		return normalise(stored, catalog), false, nil

	case '{':
		var quantities map[string]json.Number
		if err := json.Unmarshal(raw, &quantities); err != nil {
			return nil, true, fmt.Errorf("cannot decode legacy cart: %w", err)
		}
		return upgrade(quantities, catalog), true, nil

	default:
		return nil, false, ErrUnknownFormat
	}
}

// Load rehydrates a cart from kv. The returned store is always usable: when the stored data
// cannot be read or decoded the cart starts empty and the error says what was lost.
// A legacy entry is rewritten in the current format straight away.
func Load(ctx context.Context, kv KV, catalog *menu.Catalog, opts ...Option) (*Store, error) {
	s := NewStore(kv, opts...)
	if kv == nil {
		return s, nil
	}

	data, found, err := kv.Get(ctx, StorageKey)
	if err != nil {
		return s, fmt.Errorf("cannot read cart: %w", err)
	}
	if !found {
		return s, nil
	}

	lines, legacy, err := Decode(data, catalog)
	if err != nil {
		s.logger.Error("discarding unreadable cart", "error", err)
		return s, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, l := range lines {
		s.appendLocked(l.Key(), l)
	}

	if legacy {
		s.logger.Info("upgraded legacy cart", "lines", len(lines))
		if err := s.persist(ctx, s.snapshotLocked()); err != nil {
			s.logger.Error("cannot persist upgraded cart", "error", err)
		}
	}
	return s, nil
}

func normalise(stored []Line, catalog *menu.Catalog) []Line {
	var lines []Line
	index := make(map[LineKey]int)

	for _, l := range stored {
		if l.Quantity < 1 || l.ItemID == "" {
			continue
		}
		if item, ok := catalog.Item(l.ItemID); ok {
			l.Options = Canonicalize(item, l.Options)
		} else {
			l.Options = dropEmpty(l.Options)
		}

		key := l.Key()
		if i, seen := index[key]; seen {
			lines[i].Quantity += l.Quantity
			continue
		}
		index[key] = len(lines)
		lines = append(lines, l)
	}
	return lines
}

func upgrade(quantities map[string]json.Number, catalog *menu.Catalog) []Line {
	var lines []Line
	for id, n := range quantities {
		quantity, err := strconv.Atoi(n.String())
		if err != nil || quantity < 1 {
			continue
		}
		item, ok := catalog.Item(menu.ItemID(id))
		if !ok {
			continue
		}
		lines = append(lines, Line{
			ItemID:    item.ID,
			Name:      item.Name,
			UnitPrice: item.Price,
			Quantity:  quantity,
		})
	}

	// Map order is random; fall back to menu order for a stable cart.
	position := make(map[menu.ItemID]int)
	for i, item := range catalog.Items() {
		position[item.ID] = i
	}
	sort.SliceStable(lines, func(i, j int) bool {
		return position[lines[i].ItemID] < position[lines[j].ItemID]
	})
	return lines
}

func dropEmpty(opts SelectedOptions) SelectedOptions {
	var out SelectedOptions
	for k, v := range opts {
		if v == "" {
			continue
		}
		if out == nil {
			out = make(SelectedOptions)
		}
		out[k] = v
	}
	return out
}
