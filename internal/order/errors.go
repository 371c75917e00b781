package order

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyCart            = errors.New("cart is empty")
	ErrMissingScheduledTime = errors.New("custom scheduled time is empty")
	ErrInvalidDeliveryType  = errors.New("unknown delivery type")
	ErrNoTransport          = errors.New("no transport configured")
)

// TransportError is returned when a request could not be delivered or was rejected downstream.
// The cart is left untouched so the user can retry.
type TransportError struct {
	Transport string
	Err       error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s transport: %v", e.Transport, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// IsValidation reports whether err was raised before any transport call.
func IsValidation(err error) bool {
	return errors.Is(err, ErrEmptyCart) ||
		errors.Is(err, ErrMissingScheduledTime) ||
		errors.Is(err, ErrInvalidDeliveryType)
}
