package providers

import (
	"github.com/jonboulle/clockwork"
	"github.com/samber/do/v2"

	"github.com/vitrinaapp/vitrina-store/internal/cache"
	"github.com/vitrinaapp/vitrina-store/internal/config"
	"github.com/vitrinaapp/vitrina-store/internal/facade"
	"github.com/vitrinaapp/vitrina-store/internal/logger"
	"github.com/vitrinaapp/vitrina-store/internal/search"
	"github.com/vitrinaapp/vitrina-store/internal/store"
)

// SearchIndexHandle wraps the in-memory feed index with shutdown capability.
type SearchIndexHandle struct {
	*search.Index
}

// Shutdown implements do.Shutdownable.
func (h *SearchIndexHandle) Shutdown() error {
	return h.Close()
}

// ProvideSearchIndex provides the local search index over loaded content.
func ProvideSearchIndex(i do.Injector) (*SearchIndexHandle, error) {
	log := do.MustInvoke[*logger.Logger](i)

	index, err := search.NewIndex(log.Logger)
	if err != nil {
		return nil, err
	}
	return &SearchIndexHandle{Index: index}, nil
}

// ProvideClock provides the wall clock shared by the store and bridge.
func ProvideClock(i do.Injector) (clockwork.Clock, error) {
	return clockwork.NewRealClock(), nil
}

// StoreHandle wraps the store with shutdown capability.
type StoreHandle struct {
	*store.Store
}

// Shutdown implements do.Shutdownable.
func (h *StoreHandle) Shutdown() error {
	h.Close()
	return nil
}

// ProvideStore builds the store and hydrates it from durable storage.
func ProvideStore(i do.Injector) (*StoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	clock := do.MustInvoke[clockwork.Clock](i)
	backendHandle := do.MustInvoke[*BackendHandle](i)
	indexHandle := do.MustInvoke[*SearchIndexHandle](i)
	persistence := do.MustInvoke[*PersistenceHandle](i)

	profiles, err := cache.NewProfileCache(backendHandle.Client,
		cache.WithTTL(cfg.Store.ProfileTTL),
		cache.WithSize(cfg.Store.ProfileCacheSize),
		cache.WithClock(clock),
		cache.WithLogger(log.Logger),
	)
	if err != nil {
		return nil, err
	}

	s, err := store.New(store.Options{
		Backend:    backendHandle.Client,
		Profiles:   profiles,
		Search:     indexHandle.Index,
		Logger:     log.Logger,
		Clock:      clock,
		ToastDelay: cfg.Store.ToastDelay,
		PageSize:   cfg.Store.PageSize,
	})
	if err != nil {
		return nil, err
	}

	ctx, cancel := startupContext()
	defer cancel()
	restored := s.AttachPersistence(ctx, persistence.Adapter)

	log.Info("Store initialized",
		"restored", restored,
		"authenticated", s.Get().IsAuthenticated(),
	)

	return &StoreHandle{Store: s}, nil
}

// FacadeHandle wraps the facade with shutdown capability.
type FacadeHandle struct {
	*facade.Facade
}

// Shutdown implements do.Shutdownable. Background actions drain before the
// store closes.
func (h *FacadeHandle) Shutdown() error {
	h.Close()
	return nil
}

// ProvideFacade provides the facade the bridge dispatches into.
func ProvideFacade(i do.Injector) (*FacadeHandle, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return &FacadeHandle{Facade: facade.New(storeHandle.Store, log.Logger)}, nil
}
