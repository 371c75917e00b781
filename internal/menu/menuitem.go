package menu

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/appetiteclub/miniapp/internal/money"
)

// ItemID identifies a menu item. Menu documents use both numeric and string ids.
type ItemID string

func (id ItemID) String() string {
	return string(id)
}

// IsNumeric reports whether the id is a canonical non-negative integer literal that fits
// in an int64, the only numbers UnmarshalJSON reads back.
func (id ItemID) IsNumeric() bool {
	s := string(id)
	if s == "" || (len(s) > 1 && s[0] == '0') {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	_, err := strconv.ParseInt(s, 10, 64)
	return err == nil
}

// MarshalJSON writes numeric ids as JSON numbers so backends comparing integer ids keep matching.
func (id ItemID) MarshalJSON() ([]byte, error) {
	if id.IsNumeric() {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}

func (id *ItemID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ItemID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("item id must be a string or a number: %w", err)
	}
	if _, err := strconv.ParseInt(n.String(), 10, 64); err != nil {
		return fmt.Errorf("item id %s is not an integer", n.String())
	}
	*id = ItemID(n.String())
	return nil
}

// OptionGroup is a named set of mutually exclusive choices, e.g. "Молоко": [обычное, овсяное].
type OptionGroup struct {
	Name    string   `json:"name"`
	Choices []string `json:"choices"`
}

// Allows reports whether choice is one of the group's declared choices.
func (g OptionGroup) Allows(choice string) bool {
	for _, c := range g.Choices {
		if c == choice {
			return true
		}
	}
	return false
}

// MenuItem is an orderable product. Items are immutable once the catalog is loaded.
type MenuItem struct {
	ID           ItemID        `json:"id"`
	Name         string        `json:"name"`
	Description  string        `json:"description"`
	Price        money.Amount  `json:"price"`
	OptionGroups []OptionGroup `json:"options,omitempty"`
}

// OptionGroup returns the declared group with the given name.
func (m MenuItem) OptionGroup(name string) (OptionGroup, bool) {
	for _, g := range m.OptionGroups {
		if g.Name == name {
			return g, true
		}
	}
	return OptionGroup{}, false
}

// ValidateOptions checks a group->choice selection against the declared option groups.
// Empty values mean "no selection" and are always accepted.
func (m MenuItem) ValidateOptions(selected map[string]string) []string {
	var errors []string

	for name, choice := range selected {
		if choice == "" {
			continue
		}
		group, ok := m.OptionGroup(name)
		if !ok {
			errors = append(errors, fmt.Sprintf("option %q is not offered for %s", name, m.Name))
			continue
		}
		if !group.Allows(choice) {
			errors = append(errors, fmt.Sprintf("%q is not a valid choice for option %q", choice, name))
		}
	}

	return errors
}
