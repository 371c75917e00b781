package commands

import (
	"context"
	"fmt"

	"github.com/appetiteclub/apt"

	"github.com/appetiteclub/miniapp/internal/miniapp"
)

// ResetDB deletes every stored entry of the configured backend. USE WITH CAUTION
func ResetDB(ctx context.Context, config *apt.Config, logger apt.Logger) error {
	backend, driver, err := openBackend(ctx, config, logger)
	if err != nil {
		return err
	}
	defer backend.Stop(context.Background())

	logger.Infof("⚠️  DANGER: This will delete ALL carts and checkout preferences in %s storage!", driver)
	logger.Infof("⚠️  This action cannot be undone!")

	n, err := backend.Reset(ctx)
	if err != nil {
		return fmt.Errorf("reset %s storage: %w", driver, err)
	}

	logger.Info("Storage entries deleted", "driver", driver, "count", n)
	return nil
}

func openBackend(ctx context.Context, config *apt.Config, logger apt.Logger) (miniapp.Backend, string, error) {
	backend, driver, err := miniapp.NewBackend(config, logger)
	if err != nil {
		return nil, "", err
	}
	if err := backend.Start(ctx); err != nil {
		return nil, "", fmt.Errorf("start %s storage: %w", driver, err)
	}
	return backend, driver, nil
}
