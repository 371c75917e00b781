package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/appetiteclub/apt"

	"github.com/appetiteclub/miniapp/internal/cart"
	"github.com/appetiteclub/miniapp/internal/storage"
)

// ClearCart removes the stored cart of one user. Checkout preferences are kept.
func ClearCart(ctx context.Context, config *apt.Config, logger apt.Logger, userID string) error {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return fmt.Errorf("user id is required")
	}

	backend, driver, err := openBackend(ctx, config, logger)
	if err != nil {
		return err
	}
	defer backend.Stop(context.Background())

	if err := storage.Scope(backend, userID).Delete(ctx, cart.StorageKey); err != nil {
		return fmt.Errorf("delete cart in %s storage: %w", driver, err)
	}
	return nil
}
