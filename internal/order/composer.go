package order

import (
	"context"
	"errors"
	"time"

	"github.com/appetiteclub/apt"
	"github.com/appetiteclub/miniapp/internal/cart"
	"github.com/google/uuid"
)

// Cart is the part of cart.Store the composer uses.
type Cart interface {
	Capture() cart.Batch
	Settle(ctx context.Context, b cart.Batch)
}

// Checkout is the submitted checkout form.
type Checkout struct {
	Preferences
	ScheduledTime string `json:"scheduled_time"`
	CustomTime    string `json:"custom_time"`
}

type ComposerOption func(*Composer)

func WithNotifier(n Notifier) ComposerOption {
	return func(c *Composer) {
		c.notifier = n
	}
}

func WithComposerLogger(logger apt.Logger) ComposerOption {
	return func(c *Composer) {
		if logger != nil {
			c.logger = logger
		}
	}
}

func WithPhrases(p Phrases) ComposerOption {
	return func(c *Composer) {
		c.phrases = p
	}
}

func WithClock(now func() time.Time) ComposerOption {
	return func(c *Composer) {
		if now != nil {
			c.now = now
		}
	}
}

// Composer turns a cart and a checkout form into a Request and hands it to the transport.
// Every submission is attempted exactly once; retrying is the caller's decision.
type Composer struct {
	transport Transport
	prefs     KV
	notifier  Notifier
	phrases   Phrases
	logger    apt.Logger
	now       func() time.Time
}

// NewComposer builds a composer. prefs is where the checkout form is remembered; it may be nil.
func NewComposer(transport Transport, prefs KV, opts ...ComposerOption) *Composer {
	c := &Composer{
		transport: transport,
		prefs:     prefs,
		phrases:   PhrasesFor(DefaultLocale),
		logger:    apt.NewNoopLogger(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Composer) Phrases() Phrases {
	return c.phrases
}

// Preferences returns the remembered checkout form, or the defaults when it cannot be read.
func (c *Composer) Preferences(ctx context.Context) Preferences {
	p, err := LoadPreferences(ctx, c.prefs)
	if err != nil {
		c.logger.Error("cannot load checkout preferences", "error", err)
	}
	return p
}

// Submit validates the checkout, remembers the form, and delivers the order.
// On success the submitted lines are settled out of the cart. On failure the cart is left as it was and the
// returned error is either a validation sentinel or a *TransportError.
// No cart lock is held while the transport runs.
func (c *Composer) Submit(ctx context.Context, userID string, store Cart, in Checkout) (Confirmation, error) {
	log := c.logger.With("user_id", userID)

	batch := store.Capture()
	lines := batch.Lines
	if len(lines) == 0 {
		return Confirmation{}, c.reject(ctx, userID, ErrEmptyCart)
	}

	prefs := in.Preferences.Normalize()
	if err := prefs.Validate(); err != nil {
		return Confirmation{}, c.reject(ctx, userID, err)
	}

	scheduled, err := c.phrases.ResolveSchedule(in.ScheduledTime, in.CustomTime)
	if err != nil {
		return Confirmation{}, c.reject(ctx, userID, err)
	}

	if err := SavePreferences(ctx, c.prefs, prefs); err != nil {
		log.Error("cannot remember checkout preferences", "error", err)
	}

	req := Request{
		ID:            uuid.New(),
		UserID:        userID,
		Lines:         lines,
		Total:         cart.Total(lines),
		DeliveryType:  prefs.DeliveryType,
		ScheduledTime: scheduled,
		Address:       prefs.Address,
		Notes:         prefs.Notes,
		CreatedAt:     c.now().UTC(),
	}

	conf, err := c.submit(ctx, req)
	if err != nil {
		var terr *TransportError
		if !errors.As(err, &terr) {
			terr = &TransportError{Transport: c.transportName(), Err: err}
		}
		log.Error("order submission failed", "request_id", req.ID.String(), "transport", terr.Transport, "error", terr.Err)
		c.notify(ctx, userID, LevelError, c.phrases.ErrorMessage(terr))
		return Confirmation{}, terr
	}

	store.Settle(ctx, batch)

	conf.RequestID = req.ID
	conf.Total = req.Total
	conf.ScheduledTime = req.ScheduledTime
	if conf.Transport == "" {
		conf.Transport = c.transportName()
	}

	log.Info("order submitted", "request_id", req.ID.String(), "transport", conf.Transport, "order_id", conf.OrderID, "total", int64(conf.Total))
	c.notify(ctx, userID, LevelSuccess, c.phrases.SuccessMessage(conf))
	return conf, nil
}

func (c *Composer) submit(ctx context.Context, req Request) (Confirmation, error) {
	if c.transport == nil {
		return Confirmation{}, ErrNoTransport
	}
	return c.transport.Submit(ctx, req)
}

func (c *Composer) transportName() string {
	if c.transport == nil {
		return "none"
	}
	return c.transport.Name()
}

func (c *Composer) reject(ctx context.Context, userID string, err error) error {
	c.logger.Debug("checkout rejected", "user_id", userID, "reason", err.Error())
	c.notify(ctx, userID, LevelError, c.phrases.ErrorMessage(err))
	return err
}

func (c *Composer) notify(ctx context.Context, userID string, level Level, message string) {
	if c.notifier == nil {
		return
	}
	if err := c.notifier.Notify(ctx, userID, level, message); err != nil {
		c.logger.Error("cannot deliver notification", "user_id", userID, "error", err)
	}
}
