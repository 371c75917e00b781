package cart

import (
	"net/url"

	"github.com/appetiteclub/miniapp/internal/menu"
	"github.com/appetiteclub/miniapp/internal/money"
)

// SelectedOptions maps an option group name to the chosen value.
// A missing group means "no selection".
type SelectedOptions map[string]string

// Canonicalize keeps only non-empty selections for groups the item declares.
// It returns nil when nothing remains so that "no options" has a single representation.
func Canonicalize(item menu.MenuItem, opts SelectedOptions) SelectedOptions {
	var out SelectedOptions
	for name, choice := range opts {
		if choice == "" {
			continue
		}
		if _, declared := item.OptionGroup(name); !declared {
			continue
		}
		if out == nil {
			out = make(SelectedOptions, len(opts))
		}
		out[name] = choice
	}
	return out
}

func (o SelectedOptions) clone() SelectedOptions {
	if len(o) == 0 {
		return nil
	}
	out := make(SelectedOptions, len(o))
	for k, v := range o {
		out[k] = v
	}
	return out
}

// LineKey is the identity used to de-duplicate cart lines: the item id plus its
// options in a canonical (sorted, escaped) form.
type LineKey string

// KeyFor builds the line key for an item id and an already canonical selection.
func KeyFor(id menu.ItemID, opts SelectedOptions) LineKey {
	key := url.PathEscape(string(id))
	if len(opts) == 0 {
		return LineKey(key)
	}

	values := url.Values{}
	for name, choice := range opts {
		values.Set(name, choice)
	}
	return LineKey(key + "?" + values.Encode())
}

// Line is one cart position. Price and name are captured when the item is first added.
type Line struct {
	ItemID    menu.ItemID     `json:"id"`
	Name      string          `json:"name"`
	UnitPrice money.Amount    `json:"price"`
	Quantity  int             `json:"quantity"`
	Options   SelectedOptions `json:"options"`
}

// Key returns the line's de-duplication key.
func (l Line) Key() LineKey {
	return KeyFor(l.ItemID, l.Options)
}

// Subtotal is UnitPrice × Quantity.
func (l Line) Subtotal() money.Amount {
	return l.UnitPrice.Times(l.Quantity)
}

func (l Line) clone() Line {
	l.Options = l.Options.clone()
	return l
}

// Total sums the subtotals of lines.
func Total(lines []Line) money.Amount {
	var total money.Amount
	for _, l := range lines {
		total += l.Subtotal()
	}
	return total
}

// Count sums the quantities of lines (the cart badge number).
func Count(lines []Line) int {
	count := 0
	for _, l := range lines {
		count += l.Quantity
	}
	return count
}
