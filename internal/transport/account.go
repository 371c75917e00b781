package transport

import (
	"context"
	"fmt"
	"net/http"

	"github.com/appetiteclub/miniapp/internal/money"
	"github.com/appetiteclub/miniapp/pkg/enums/orderstatus"
)

const (
	profilePath = "/api/profile"
	ordersPath  = "/api/orders"
)

type Profile struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

// OrderSummary is one entry of the user's order history.
type OrderSummary struct {
	ID          int64        `json:"id"`
	Status      string       `json:"status"`
	StatusLabel string       `json:"status_label"`
	PickupTime  *string      `json:"pickup_time"`
	TotalPrice  money.Amount `json:"total_price"`
}

// AccountClient reads and updates the user's profile and order history on the shop backend.
type AccountClient struct {
	client apiClient
}

func NewAccountClient(baseURL string, httpClient *http.Client) *AccountClient {
	return &AccountClient{client: newAPIClient(baseURL, httpClient)}
}

func (a *AccountClient) Profile(ctx context.Context, userID string) (Profile, error) {
	query, err := userQuery(userID)
	if err != nil {
		return Profile{}, err
	}

	var p Profile
	if err := a.client.do(ctx, http.MethodGet, profilePath, query, nil, &p); err != nil {
		return Profile{}, err
	}
	return p, nil
}

func (a *AccountClient) SaveProfile(ctx context.Context, userID string, p Profile) error {
	query, err := userQuery(userID)
	if err != nil {
		return err
	}

	var resp struct {
		Status string `json:"status"`
	}
	if err := a.client.do(ctx, http.MethodPost, profilePath, query, p, &resp); err != nil {
		return err
	}
	if resp.Status != statusOK {
		return fmt.Errorf("profile update answered status %q", resp.Status)
	}
	return nil
}

// Orders returns the order history, newest first as the backend sends it.
func (a *AccountClient) Orders(ctx context.Context, userID string) ([]OrderSummary, error) {
	query, err := userQuery(userID)
	if err != nil {
		return nil, err
	}

	var orders []OrderSummary
	if err := a.client.do(ctx, http.MethodGet, ordersPath, query, nil, &orders); err != nil {
		return nil, err
	}
	for i := range orders {
		orders[i].StatusLabel = orderstatus.LabelFor(orders[i].Status)
	}
	if orders == nil {
		orders = []OrderSummary{}
	}
	return orders, nil
}
