package miniapp

import (
	"context"
	"fmt"

	"github.com/appetiteclub/apt"
	"github.com/appetiteclub/miniapp/internal/mongo"
	"github.com/appetiteclub/miniapp/internal/postgres"
	"github.com/appetiteclub/miniapp/internal/storage"
)

// Backend is a storage.Store the service starts, stops and can wipe.
type Backend interface {
	storage.Store
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
	Reset(ctx context.Context) (int64, error)
}

type memoryBackend struct {
	*storage.MemoryStore
}

func (memoryBackend) Start(context.Context) error { return nil }
func (memoryBackend) Stop(context.Context) error  { return nil }

// NewBackend selects the persistence driver named by storage.driver. The backend is not started.
func NewBackend(config *apt.Config, logger apt.Logger) (Backend, string, error) {
	driver, err := storage.ParseDriver(config.GetStringOrDef("storage.driver", storage.DriverMemory))
	if err != nil {
		return nil, "", err
	}

	switch driver {
	case storage.DriverMongo:
		return mongo.NewKVStore(config, logger), driver, nil
	case storage.DriverPostgres:
		return postgres.NewKVStore(config, logger), driver, nil
	case storage.DriverMemory:
		return memoryBackend{storage.NewMemoryStore()}, driver, nil
	default:
		return nil, "", fmt.Errorf("unsupported storage driver %q", driver)
	}
}
