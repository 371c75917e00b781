package transport

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/appetiteclub/apt"
	"github.com/appetiteclub/miniapp/internal/menu"
	"github.com/appetiteclub/miniapp/internal/order"
)

const RemoteName = "remote"

const createOrderPath = "/api/create_order"

const statusOK = "ok"

type createOrderItem struct {
	ID  menu.ItemID `json:"id"`
	Qty int         `json:"qty"`
}

type createOrderRequest struct {
	TgID       int64             `json:"tg_id"`
	Items      []createOrderItem `json:"items"`
	PickupTime *string           `json:"pickup_time"`
}

type createOrderResponse struct {
	Status  string `json:"status"`
	OrderID *int64 `json:"order_id"`
}

// RemoteOrderAPI submits orders to the shop backend over HTTP and waits for the assigned order id.
type RemoteOrderAPI struct {
	client apiClient
	logger apt.Logger
}

func NewRemoteOrderAPI(baseURL string, httpClient *http.Client, logger apt.Logger) *RemoteOrderAPI {
	if logger == nil {
		logger = apt.NewNoopLogger()
	}
	return &RemoteOrderAPI{
		client: newAPIClient(baseURL, httpClient),
		logger: logger,
	}
}

func (r *RemoteOrderAPI) Name() string {
	return RemoteName
}

// Submit posts the item/quantity projection of req. Only {"status":"ok","order_id":N} counts as success.
func (r *RemoteOrderAPI) Submit(ctx context.Context, req order.Request) (order.Confirmation, error) {
	body, err := projectOrder(req)
	if err != nil {
		return order.Confirmation{}, r.fail(err)
	}

	var resp createOrderResponse
	if err := r.client.do(ctx, http.MethodPost, createOrderPath, nil, body, &resp); err != nil {
		return order.Confirmation{}, r.fail(err)
	}

	if resp.Status != statusOK {
		return order.Confirmation{}, r.fail(fmt.Errorf("backend answered status %q", resp.Status))
	}
	if resp.OrderID == nil {
		return order.Confirmation{}, r.fail(errors.New("backend answered ok without an order id"))
	}

	r.logger.Debug("remote order created", "request_id", req.ID.String(), "order_id", *resp.OrderID)
	return order.Confirmation{OrderID: *resp.OrderID, Transport: RemoteName}, nil
}

func (r *RemoteOrderAPI) fail(err error) error {
	return &order.TransportError{Transport: RemoteName, Err: err}
}

// projectOrder keeps one entry per item id; the backend has no notion of options.
func projectOrder(req order.Request) (createOrderRequest, error) {
	tgID, err := chatUserID(req.UserID)
	if err != nil {
		return createOrderRequest{}, err
	}

	body := createOrderRequest{TgID: tgID, Items: []createOrderItem{}}
	index := make(map[menu.ItemID]int)
	for _, l := range req.Lines {
		if i, ok := index[l.ItemID]; ok {
			body.Items[i].Qty += l.Quantity
			continue
		}
		index[l.ItemID] = len(body.Items)
		body.Items = append(body.Items, createOrderItem{ID: l.ItemID, Qty: l.Quantity})
	}

	if req.ScheduledTime != "" {
		pickup := req.ScheduledTime
		body.PickupTime = &pickup
	}
	return body, nil
}
