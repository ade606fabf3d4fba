package providers

import (
	"github.com/samber/do/v2"

	"github.com/vitrinaapp/vitrina-store/internal/config"
	"github.com/vitrinaapp/vitrina-store/internal/logger"
	"github.com/vitrinaapp/vitrina-store/internal/persist"
)

// PersistenceHandle wraps the persistence adapter with shutdown capability.
type PersistenceHandle struct {
	*persist.Adapter
}

// Shutdown implements do.Shutdownable.
func (h *PersistenceHandle) Shutdown() error {
	return h.Close()
}

// ProvidePersistence opens the configured storage backend and wraps it in an
// adapter bound to the configured key.
func ProvidePersistence(i do.Injector) (*PersistenceHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	storage, err := persist.Open(cfg.Storage, log.Logger)
	if err != nil {
		return nil, err
	}

	log.Info("Snapshot storage opened",
		"driver", cfg.Storage.Driver,
		"key", cfg.Storage.Key,
	)

	return &PersistenceHandle{
		Adapter: persist.NewAdapter(storage, cfg.Storage.Key, log.Logger),
	}, nil
}
