package order

import (
	"errors"
	"fmt"
	"strings"
)

// Scheduled time choices offered by the checkout form.
const (
	ScheduleNow     = "now"
	ScheduleIn30Min = "30min"
	ScheduleIn1Hour = "1hour"
	ScheduleCustom  = "custom"
)

// Phrases holds the user-facing text for one locale.
type Phrases struct {
	Locale string

	Now     string
	In30Min string
	In1Hour string

	EmptyCart        string
	MissingTime      string
	InvalidDelivery  string
	Submitted        string
	SubmittedWithID  string // format with the order id
	SubmissionFailed string
}

var phrasebook = map[string]Phrases{
	"ru": {
		Locale:           "ru",
		Now:              "Как можно скорее",
		In30Min:          "Через 30 минут",
		In1Hour:          "Через 1 час",
		EmptyCart:        "Корзина пуста",
		MissingTime:      "Укажите время заказа",
		InvalidDelivery:  "Выберите способ получения",
		Submitted:        "Заказ успешно оформлен!",
		SubmittedWithID:  "Заказ #%d оформлен!",
		SubmissionFailed: "Ошибка при оформлении заказа",
	},
	"en": {
		Locale:           "en",
		Now:              "As soon as possible",
		In30Min:          "In 30 minutes",
		In1Hour:          "In 1 hour",
		EmptyCart:        "Your cart is empty",
		MissingTime:      "Please choose a time",
		InvalidDelivery:  "Please choose how to receive the order",
		Submitted:        "Order placed!",
		SubmittedWithID:  "Order #%d placed!",
		SubmissionFailed: "Could not place the order",
	},
}

// DefaultLocale is the shop's language.
const DefaultLocale = "ru"

// PhrasesFor returns the phrases for locale ("en-US" matches "en"), falling back to DefaultLocale.
func PhrasesFor(locale string) Phrases {
	locale = strings.ToLower(strings.TrimSpace(locale))
	if i := strings.IndexAny(locale, "-_"); i > 0 {
		locale = locale[:i]
	}
	if p, ok := phrasebook[locale]; ok {
		return p
	}
	return phrasebook[DefaultLocale]
}

// ResolveSchedule maps a scheduled time choice to the text sent with the order.
// "custom" takes the caller's explicit time, which must not be empty.
// Values outside the vocabulary are already resolved and pass through unchanged.
func (p Phrases) ResolveSchedule(raw, custom string) (string, error) {
	switch raw {
	case ScheduleNow:
		return p.Now, nil
	case ScheduleIn30Min:
		return p.In30Min, nil
	case ScheduleIn1Hour:
		return p.In1Hour, nil
	case ScheduleCustom:
		custom = strings.TrimSpace(custom)
		if custom == "" {
			return "", ErrMissingScheduledTime
		}
		return custom, nil
	default:
		return raw, nil
	}
}

// SuccessMessage is the notification for a delivered order.
func (p Phrases) SuccessMessage(c Confirmation) string {
	if c.HasOrderID() {
		return fmt.Sprintf(p.SubmittedWithID, c.OrderID)
	}
	return p.Submitted
}

// ErrorMessage is the notification for a failed checkout.
func (p Phrases) ErrorMessage(err error) string {
	switch {
	case errors.Is(err, ErrEmptyCart):
		return p.EmptyCart
	case errors.Is(err, ErrMissingScheduledTime):
		return p.MissingTime
	case errors.Is(err, ErrInvalidDeliveryType):
		return p.InvalidDelivery
	default:
		return p.SubmissionFailed
	}
}
