package menu

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/appetiteclub/miniapp/internal/money"
)

// PriceUnit tells the decoder how a document writes prices.
type PriceUnit string

const (
	// MinorUnits prices are integers in kopecks/cents.
	MinorUnits PriceUnit = "minor"
	// MajorUnits prices are decimal roubles/dollars and are converted exactly.
	MajorUnits PriceUnit = "major"
)

// ParsePriceUnit maps a config value to a PriceUnit, defaulting to MinorUnits.
func ParsePriceUnit(s string) (PriceUnit, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", string(MinorUnits):
		return MinorUnits, nil
	case string(MajorUnits):
		return MajorUnits, nil
	default:
		return "", fmt.Errorf("unknown price unit %q", s)
	}
}

type wireItem struct {
	ID          ItemID        `json:"id"`
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Price       json.Number   `json:"price"`
	Options     []OptionGroup `json:"options"`
}

type wireCategory struct {
	ID    json.RawMessage `json:"id"`
	Name  string          `json:"name"`
	Items []wireItem      `json:"items"`
}

type wireCategorised struct {
	Categories []wireCategory `json:"categories"`
}

// Decode normalises a menu document. Two shapes are accepted:
//
//	{"categories": [{"id": ..., "name": ..., "items": [...]}]}
//	{"Coffee": [...], "Desserts": [...]}
//
// In the flat shape the category name doubles as its id and document order is kept.
func Decode(data []byte, unit PriceUnit) (*Catalog, error) {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("menu document must be a JSON object: %w", err)
	}

	if raw, ok := probe["categories"]; ok && isArray(raw) {
		var structured wireCategorised
		if err := json.Unmarshal(data, &structured); err != nil {
			return nil, fmt.Errorf("cannot decode categories: %w", err)
		}
		return fromStructured(structured.Categories, unit)
	}
	return fromFlat(data, unit)
}

func fromStructured(wire []wireCategory, unit PriceUnit) (*Catalog, error) {
	categories := make([]Category, 0, len(wire))
	for i, wc := range wire {
		items, err := convertItems(wc.Items, unit)
		if err != nil {
			return nil, fmt.Errorf("category %q: %w", wc.Name, err)
		}
		id := categoryID(wc.ID)
		if id == "" {
			id = fmt.Sprintf("%d", i+1)
		}
		categories = append(categories, Category{ID: id, Name: wc.Name, Items: items})
	}
	return NewCatalog(categories), nil
}

func fromFlat(data []byte, unit PriceUnit) (*Catalog, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("cannot read menu document: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("menu document must be a JSON object")
	}

	var categories []Category
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("cannot read category name: %w", err)
		}
		name, _ := tok.(string)

		var wire []wireItem
		if err := dec.Decode(&wire); err != nil {
			return nil, fmt.Errorf("category %q: %w", name, err)
		}
		items, err := convertItems(wire, unit)
		if err != nil {
			return nil, fmt.Errorf("category %q: %w", name, err)
		}
		categories = append(categories, Category{ID: name, Name: name, Items: items})
	}

	return NewCatalog(categories), nil
}

func convertItems(wire []wireItem, unit PriceUnit) ([]MenuItem, error) {
	items := make([]MenuItem, 0, len(wire))
	for _, w := range wire {
		if w.ID == "" {
			return nil, fmt.Errorf("item %q has no id", w.Name)
		}
		price, err := convertPrice(w.Price, unit)
		if err != nil {
			return nil, fmt.Errorf("item %s: %w", w.ID, err)
		}
		items = append(items, MenuItem{
			ID:           w.ID,
			Name:         w.Name,
			Description:  w.Description,
			Price:        price,
			OptionGroups: w.Options,
		})
	}
	return items, nil
}

func convertPrice(n json.Number, unit PriceUnit) (money.Amount, error) {
	if n == "" {
		return 0, fmt.Errorf("missing price")
	}
	var (
		amount money.Amount
		err    error
	)
	if unit == MajorUnits {
		amount, err = money.ParseMajor(n.String())
	} else {
		var v int64
		v, err = n.Int64()
		if err != nil {
			err = fmt.Errorf("price %s is not an integer amount of minor units", n.String())
		}
		amount = money.Amount(v)
	}
	if err != nil {
		return 0, err
	}
	if amount < 0 {
		return 0, fmt.Errorf("price cannot be negative")
	}
	return amount, nil
}

func isArray(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) > 0 && raw[0] == '['
}

func categoryID(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}
