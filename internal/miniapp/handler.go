package miniapp

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/appetiteclub/apt"
	"github.com/appetiteclub/apt/telemetry"
	"github.com/appetiteclub/miniapp/internal/cart"
	"github.com/appetiteclub/miniapp/internal/menu"
	"github.com/appetiteclub/miniapp/internal/metrics"
	"github.com/appetiteclub/miniapp/internal/money"
	"github.com/appetiteclub/miniapp/internal/order"
	"github.com/appetiteclub/miniapp/internal/transport"
	"github.com/appetiteclub/miniapp/pkg/enums/deliverytype"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"golang.org/x/text/language"
)

const MaxBodyBytes = 1 << 20

const (
	UserHeader = "X-Telegram-User-ID"
	GuestUser  = "guest"
	maxUserID  = 64
)

// AccountService is the profile and order-history backend.
type AccountService interface {
	Profile(ctx context.Context, userID string) (transport.Profile, error)
	SaveProfile(ctx context.Context, userID string, p transport.Profile) error
	Orders(ctx context.Context, userID string) ([]transport.OrderSummary, error)
}

type Handler struct {
	logger   apt.Logger
	config   *apt.Config
	tlm      *telemetry.HTTP
	catalog  *menu.Catalog
	sessions *Sessions
	accounts AccountService
	metrics  *metrics.Metrics
	currency string
	language language.Tag
}

type HandlerDeps struct {
	Catalog  *menu.Catalog
	Sessions *Sessions
	Accounts AccountService
	Metrics  *metrics.Metrics
}

func NewHandler(hd HandlerDeps, config *apt.Config, logger apt.Logger) *Handler {
	if logger == nil {
		logger = apt.NewNoopLogger()
	}
	if config == nil {
		config = apt.NewConfig()
	}
	if hd.Catalog == nil {
		hd.Catalog = menu.EmptyCatalog()
	}
	if hd.Sessions == nil {
		hd.Sessions = NewSessions(SessionDeps{Catalog: hd.Catalog}, logger)
	}

	tag, err := language.Parse(config.GetStringOrDef("checkout.locale", order.DefaultLocale))
	if err != nil {
		tag = language.Russian
	}

	return &Handler{
		logger:   logger,
		config:   config,
		tlm:      telemetry.NewHTTP(),
		catalog:  hd.Catalog,
		sessions: hd.Sessions,
		accounts: hd.Accounts,
		metrics:  hd.Metrics,
		currency: config.GetStringOrDef("currency.code", "RUB"),
		language: tag,
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.instrument)

		r.Get("/menu", h.GetMenu)

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", h.GetCart)
			r.Delete("/", h.ClearCart)
			r.Post("/items", h.AddItem)
			r.Put("/lines", h.SetQuantity)
			r.Delete("/lines", h.RemoveLine)
		})

		r.Route("/checkout", func(r chi.Router) {
			r.Get("/preferences", h.GetPreferences)
			r.Post("/", h.Checkout)
		})

		r.Get("/profile", h.GetProfile)
		r.Put("/profile", h.UpdateProfile)
		r.Get("/orders", h.ListOrders)
	})

	if h.metrics != nil {
		r.Method(http.MethodGet, "/metrics", h.metrics.Handler())
	}
}

// Menu

func (h *Handler) GetMenu(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.GetMenu")
	defer finish()

	apt.RespondSuccess(w, h.catalog)
}

// Cart

type AddItemRequest struct {
	ItemID  menu.ItemID       `json:"item_id"`
	Options map[string]string `json:"options"`
}

type SetQuantityRequest struct {
	Quantity *int `json:"quantity"`
}

func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.GetCart")
	defer finish()

	session, ok := h.session(w, r)
	if !ok {
		return
	}

	apt.RespondSuccess(w, h.cartView(session.Cart.Snapshot()))
}

func (h *Handler) AddItem(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.AddItem")
	defer finish()

	log := h.log(r)

	session, ok := h.session(w, r)
	if !ok {
		return
	}

	var req AddItemRequest
	if !h.decode(w, r, log, &req) {
		return
	}

	item, found := h.catalog.Item(req.ItemID)
	if !found {
		log.Debug("unknown menu item", "item_id", req.ItemID.String())
		apt.RespondError(w, http.StatusBadRequest, "Unknown menu item")
		return
	}

	if problems := item.ValidateOptions(req.Options); len(problems) > 0 {
		log.Debug("invalid options", "item_id", req.ItemID.String(), "errors", problems)
		apt.RespondError(w, http.StatusBadRequest, strings.Join(problems, "; "))
		return
	}

	line := session.Cart.AddItem(r.Context(), item, req.Options)

	w.WriteHeader(http.StatusCreated)
	apt.RespondSuccess(w, map[string]any{
		"line": h.lineView(line),
		"cart": h.cartView(session.Cart.Snapshot()),
	})
}

func (h *Handler) SetQuantity(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.SetQuantity")
	defer finish()

	log := h.log(r)

	session, ok := h.session(w, r)
	if !ok {
		return
	}

	key, ok := h.lineKey(w, r)
	if !ok {
		return
	}

	var req SetQuantityRequest
	if !h.decode(w, r, log, &req) {
		return
	}
	if req.Quantity == nil {
		apt.RespondError(w, http.StatusBadRequest, "quantity is required")
		return
	}

	session.Cart.SetQuantity(r.Context(), key, *req.Quantity)
	apt.RespondSuccess(w, h.cartView(session.Cart.Snapshot()))
}

func (h *Handler) RemoveLine(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.RemoveLine")
	defer finish()

	session, ok := h.session(w, r)
	if !ok {
		return
	}

	key, ok := h.lineKey(w, r)
	if !ok {
		return
	}

	session.Cart.RemoveLine(r.Context(), key)
	apt.RespondSuccess(w, h.cartView(session.Cart.Snapshot()))
}

func (h *Handler) ClearCart(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.ClearCart")
	defer finish()

	session, ok := h.session(w, r)
	if !ok {
		return
	}

	session.Cart.Clear(r.Context())
	apt.RespondSuccess(w, h.cartView(nil))
}

// Checkout

type PreferencesResponse struct {
	order.Preferences
	AddressHint   string         `json:"address_hint"`
	DeliveryTypes []deliveryView `json:"delivery_types"`
}

type deliveryView struct {
	Code  string `json:"code"`
	Label string `json:"label"`
}

type CheckoutResponse struct {
	Confirmation order.Confirmation `json:"confirmation"`
	Message      string             `json:"message"`
	TotalText    string             `json:"total_text"`
}

func (h *Handler) GetPreferences(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.GetPreferences")
	defer finish()

	session, ok := h.session(w, r)
	if !ok {
		return
	}

	prefs := session.Composer.Preferences(r.Context())
	types := make([]deliveryView, 0, len(deliverytype.All))
	for _, d := range deliverytype.All {
		types = append(types, deliveryView{Code: d.Code(), Label: d.Label()})
	}

	apt.RespondSuccess(w, PreferencesResponse{
		Preferences:   prefs,
		AddressHint:   prefs.AddressHint(),
		DeliveryTypes: types,
	})
}

func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.Checkout")
	defer finish()

	log := h.log(r)

	session, ok := h.session(w, r)
	if !ok {
		return
	}

	var req order.Checkout
	if !h.decode(w, r, log, &req) {
		return
	}

	conf, err := session.Composer.Submit(r.Context(), session.UserID, session.Cart, req)
	phrases := session.Composer.Phrases()
	if err != nil {
		var terr *order.TransportError
		switch {
		case order.IsValidation(err):
			apt.RespondError(w, http.StatusBadRequest, phrases.ErrorMessage(err))
		case errors.As(err, &terr):
			apt.RespondError(w, http.StatusBadGateway, phrases.ErrorMessage(err))
		default:
			log.Error("checkout failed", "error", err)
			apt.RespondError(w, http.StatusInternalServerError, phrases.ErrorMessage(err))
		}
		return
	}

	w.WriteHeader(http.StatusCreated)
	apt.RespondSuccess(w, CheckoutResponse{
		Confirmation: conf,
		Message:      phrases.SuccessMessage(conf),
		TotalText:    money.Format(conf.Total, h.language, h.currency),
	})
}

// Account

func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.GetProfile")
	defer finish()

	log := h.log(r)

	userID, ok := h.accountUser(w, r)
	if !ok {
		return
	}

	profile, err := h.accounts.Profile(r.Context(), userID)
	if err != nil {
		h.respondAccountError(w, log, "cannot load profile", err)
		return
	}

	apt.RespondSuccess(w, profile)
}

func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.UpdateProfile")
	defer finish()

	log := h.log(r)

	userID, ok := h.accountUser(w, r)
	if !ok {
		return
	}

	var profile transport.Profile
	if !h.decode(w, r, log, &profile) {
		return
	}
	profile.Name = strings.TrimSpace(profile.Name)
	profile.Phone = strings.TrimSpace(profile.Phone)

	if err := h.accounts.SaveProfile(r.Context(), userID, profile); err != nil {
		h.respondAccountError(w, log, "cannot save profile", err)
		return
	}

	apt.RespondSuccess(w, profile)
}

func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.ListOrders")
	defer finish()

	log := h.log(r)

	userID, ok := h.accountUser(w, r)
	if !ok {
		return
	}

	orders, err := h.accounts.Orders(r.Context(), userID)
	if err != nil {
		h.respondAccountError(w, log, "cannot load orders", err)
		return
	}

	apt.RespondCollection(w, orders, "order")
}

func (h *Handler) accountUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	if h.accounts == nil {
		apt.RespondError(w, http.StatusServiceUnavailable, "Account service is not configured")
		return "", false
	}

	userID, ok := h.userID(w, r)
	if !ok {
		return "", false
	}
	if _, err := strconv.ParseInt(userID, 10, 64); err != nil {
		apt.RespondError(w, http.StatusBadRequest, "A chat user is required")
		return "", false
	}
	return userID, true
}

func (h *Handler) respondAccountError(w http.ResponseWriter, log apt.Logger, msg string, err error) {
	log.Error(msg, "error", err)
	var serr *transport.StatusError
	if errors.As(err, &serr) && serr.Status == http.StatusNotFound {
		apt.RespondError(w, http.StatusNotFound, "Not found")
		return
	}
	apt.RespondError(w, http.StatusBadGateway, "Account service unavailable")
}

// Helpers

func (h *Handler) userID(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID := strings.TrimSpace(r.Header.Get(UserHeader))
	if userID == "" {
		userID = strings.TrimSpace(r.URL.Query().Get("user_id"))
	}
	if userID == "" {
		return GuestUser, true
	}
	if len(userID) > maxUserID || strings.ContainsAny(userID, "/ \t\r\n") {
		apt.RespondError(w, http.StatusBadRequest, "Invalid user id")
		return "", false
	}
	return userID, true
}

func (h *Handler) session(w http.ResponseWriter, r *http.Request) (*Session, bool) {
	userID, ok := h.userID(w, r)
	if !ok {
		return nil, false
	}
	return h.sessions.Get(r.Context(), userID), true
}

func (h *Handler) lineKey(w http.ResponseWriter, r *http.Request) (cart.LineKey, bool) {
	key := r.URL.Query().Get("key")
	if key == "" {
		apt.RespondError(w, http.StatusBadRequest, "key is required")
		return "", false
	}
	return cart.LineKey(key), true
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, log apt.Logger, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	defer r.Body.Close()

	body, err := io.ReadAll(r.Body)
	if err != nil {
		log.Debug("failed to read request body", "error", err)
		apt.RespondError(w, http.StatusBadRequest, "Failed to read request body")
		return false
	}

	if err := json.Unmarshal(body, dst); err != nil {
		log.Debug("failed to decode request body", "error", err)
		apt.RespondError(w, http.StatusBadRequest, "Invalid JSON in request body")
		return false
	}
	return true
}

func (h *Handler) instrument(next http.Handler) http.Handler {
	if h.metrics == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		h.metrics.ObserveRequest(r.Method+" "+route, status, started)
	})
}

func (h *Handler) log(r *http.Request) apt.Logger {
	return h.logger.With("request_id", chimw.GetReqID(r.Context()))
}
