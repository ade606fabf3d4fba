package providers

import (
	"github.com/samber/do/v2"

	"github.com/vitrinaapp/vitrina-store/internal/backend"
	"github.com/vitrinaapp/vitrina-store/internal/config"
	"github.com/vitrinaapp/vitrina-store/internal/logger"
)

// BackendHandle wraps the backend client with shutdown capability.
type BackendHandle struct {
	*backend.Client
}

// Shutdown implements do.Shutdownable.
func (h *BackendHandle) Shutdown() error {
	h.Close()
	return nil
}

// ProvideBackend provides the HTTP + websocket backend client.
func ProvideBackend(i do.Injector) (*BackendHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	client, err := backend.NewClient(cfg.Backend, log.Logger)
	if err != nil {
		return nil, err
	}

	log.Info("Backend client configured",
		"base_url", cfg.Backend.BaseURL,
		"feed_url", cfg.Backend.FeedURL,
	)

	return &BackendHandle{Client: client}, nil
}
