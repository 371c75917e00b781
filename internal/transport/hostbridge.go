package transport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/appetiteclub/apt"
	"github.com/appetiteclub/apt/events"
	"github.com/appetiteclub/miniapp/internal/cart"
	"github.com/appetiteclub/miniapp/internal/menu"
	"github.com/appetiteclub/miniapp/internal/money"
	"github.com/appetiteclub/miniapp/internal/order"
	"github.com/appetiteclub/miniapp/pkg/event"
)

const HostBridgeName = "hostbridge"

// DefaultCloseDelay is how long the view stays open after a successful hand-off.
const DefaultCloseDelay = 3 * time.Second

const closePublishTimeout = 5 * time.Second

type webAppItem struct {
	ID       menu.ItemID       `json:"id"`
	Name     string            `json:"name"`
	Price    money.Amount      `json:"price"`
	Quantity int               `json:"quantity"`
	Options  map[string]string `json:"options"`
}

// webAppData is the message the chat platform relays to the shop bot.
type webAppData struct {
	UserID        any          `json:"user_id"`
	Items         []webAppItem `json:"items"`
	Total         money.Amount `json:"total"`
	DeliveryType  string       `json:"delivery_type"`
	ScheduledTime string       `json:"scheduled_time"`
	Address       string       `json:"address"`
	Notes         string       `json:"notes"`
}

type HostBridgeOption func(*HostBridge)

func WithTopic(topic string) HostBridgeOption {
	return func(h *HostBridge) {
		if topic != "" {
			h.topic = topic
		}
	}
}

// WithCloseDelay sets the delay before the view is closed. Zero or less disables closing.
func WithCloseDelay(d time.Duration) HostBridgeOption {
	return func(h *HostBridge) {
		h.closeDelay = d
	}
}

func WithHostBridgeLogger(logger apt.Logger) HostBridgeOption {
	return func(h *HostBridge) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// HostBridge hands orders to the embedding chat platform. The platform gives no synchronous
// answer, so a successful publish is a successful submission without an order id.
type HostBridge struct {
	publisher  events.Publisher
	topic      string
	closeDelay time.Duration
	afterFunc  func(d time.Duration, f func())
	now        func() time.Time
	logger     apt.Logger
}

func NewHostBridge(publisher events.Publisher, opts ...HostBridgeOption) *HostBridge {
	h := &HostBridge{
		publisher:  publisher,
		topic:      event.WebAppDataTopic,
		closeDelay: DefaultCloseDelay,
		afterFunc: func(d time.Duration, f func()) {
			time.AfterFunc(d, f)
		},
		now:    time.Now,
		logger: apt.NewNoopLogger(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *HostBridge) Name() string {
	return HostBridgeName
}

func (h *HostBridge) Submit(ctx context.Context, req order.Request) (order.Confirmation, error) {
	if h.publisher == nil {
		return order.Confirmation{}, h.fail(errors.New("no platform channel configured"))
	}

	data, err := json.Marshal(toWebAppData(req))
	if err != nil {
		return order.Confirmation{}, h.fail(fmt.Errorf("encode order: %w", err))
	}

	if err := h.publisher.Publish(ctx, h.topic, data); err != nil {
		return order.Confirmation{}, h.fail(err)
	}

	h.scheduleClose(req)
	return order.Confirmation{Transport: HostBridgeName}, nil
}

func (h *HostBridge) fail(err error) error {
	return &order.TransportError{Transport: HostBridgeName, Err: err}
}

func (h *HostBridge) scheduleClose(req order.Request) {
	if h.closeDelay <= 0 {
		return
	}

	h.afterFunc(h.closeDelay, func() {
		msg, err := json.Marshal(event.ViewControlEvent{
			EventType:  event.EventViewClose,
			OccurredAt: h.now().UTC(),
			UserID:     req.UserID,
			RequestID:  req.ID.String(),
		})
		if err != nil {
			h.logger.Error("cannot encode view close", "error", err)
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), closePublishTimeout)
		defer cancel()
		if err := h.publisher.Publish(ctx, event.ViewControlTopic, msg); err != nil {
			h.logger.Error("cannot close view", "user_id", req.UserID, "error", err)
		}
	})
}

func toWebAppData(req order.Request) webAppData {
	items := make([]webAppItem, 0, len(req.Lines))
	for _, l := range req.Lines {
		items = append(items, webAppItem{
			ID:       l.ItemID,
			Name:     l.Name,
			Price:    l.UnitPrice,
			Quantity: l.Quantity,
			Options:  optionsOrEmpty(l.Options),
		})
	}

	return webAppData{
		UserID:        platformUserID(req.UserID),
		Items:         items,
		Total:         req.Total,
		DeliveryType:  req.DeliveryType,
		ScheduledTime: req.ScheduledTime,
		Address:       req.Address,
		Notes:         req.Notes,
	}
}

func optionsOrEmpty(opts cart.SelectedOptions) map[string]string {
	if opts == nil {
		return map[string]string{}
	}
	return opts
}

// platformUserID keeps numeric chat ids numeric on the wire; "guest" and other names stay strings.
func platformUserID(userID string) any {
	if id, err := strconv.ParseInt(userID, 10, 64); err == nil {
		return id
	}
	return userID
}
