package order

import (
	"context"
	"fmt"
	"strings"

	"github.com/appetiteclub/miniapp/pkg/enums/deliverytype"
)

// Storage entries for the remembered checkout form.
const (
	KeyDeliveryType = "deliveryType"
	KeyAddress      = "address"
	KeyNotes        = "notes"
)

// KV is the persistence the checkout form needs. *storage.Scoped satisfies it.
type KV interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

// Preferences is the checkout form remembered between orders.
type Preferences struct {
	DeliveryType string `json:"delivery_type"`
	Address      string `json:"address"`
	Notes        string `json:"notes"`
}

func DefaultPreferences() Preferences {
	return Preferences{DeliveryType: deliverytype.Default.Code()}
}

// Normalize trims fields and fills the default delivery type.
func (p Preferences) Normalize() Preferences {
	p.DeliveryType = strings.TrimSpace(p.DeliveryType)
	if p.DeliveryType == "" {
		p.DeliveryType = deliverytype.Default.Code()
	}
	p.Address = strings.TrimSpace(p.Address)
	p.Notes = strings.TrimSpace(p.Notes)
	return p
}

func (p Preferences) Validate() error {
	if deliverytype.ByName(p.DeliveryType) == nil {
		return fmt.Errorf("%w: %q", ErrInvalidDeliveryType, p.DeliveryType)
	}
	return nil
}

// AddressHint is the placeholder the form shows for the address field.
func (p Preferences) AddressHint() string {
	if d := deliverytype.ByName(p.DeliveryType); d != nil {
		return d.AddressHint()
	}
	return deliverytype.Default.AddressHint()
}

// LoadPreferences reads the remembered form. Missing entries keep their defaults.
func LoadPreferences(ctx context.Context, kv KV) (Preferences, error) {
	p := DefaultPreferences()
	if kv == nil {
		return p, nil
	}

	fields := []struct {
		key string
		dst *string
	}{
		{KeyDeliveryType, &p.DeliveryType},
		{KeyAddress, &p.Address},
		{KeyNotes, &p.Notes},
	}
	for _, f := range fields {
		value, found, err := kv.Get(ctx, f.key)
		if err != nil {
			return DefaultPreferences(), fmt.Errorf("cannot read %s: %w", f.key, err)
		}
		if found {
			*f.dst = value
		}
	}

	p = p.Normalize()
	if p.Validate() != nil {
		p.DeliveryType = deliverytype.Default.Code()
	}
	return p, nil
}

// SavePreferences writes all three entries. It stops at the first failing write.
func SavePreferences(ctx context.Context, kv KV, p Preferences) error {
	if kv == nil {
		return nil
	}
	entries := [][2]string{
		{KeyDeliveryType, p.DeliveryType},
		{KeyAddress, p.Address},
		{KeyNotes, p.Notes},
	}
	for _, e := range entries {
		if err := kv.Set(ctx, e[0], e[1]); err != nil {
			return fmt.Errorf("cannot save %s: %w", e[0], err)
		}
	}
	return nil
}
