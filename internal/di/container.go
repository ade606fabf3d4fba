// Package di provides dependency injection configuration for vitrinad.
package di

import (
	"github.com/jonboulle/clockwork"
	"github.com/samber/do/v2"

	"github.com/vitrinaapp/vitrina-store/internal/auth"
	"github.com/vitrinaapp/vitrina-store/internal/config"
	"github.com/vitrinaapp/vitrina-store/internal/di/providers"
	"github.com/vitrinaapp/vitrina-store/internal/logger"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)
	do.Provide(injector, providers.ProvideClock)

	// Collaborators
	do.Provide(injector, providers.ProvidePersistence)
	do.Provide(injector, providers.ProvideBackend)
	do.Provide(injector, providers.ProvideSearchIndex)

	// State
	do.Provide(injector, providers.ProvideStore)
	do.Provide(injector, providers.ProvideFacade)

	// Bridge
	do.Provide(injector, providers.ProvideTokenService)
	do.Provide(injector, providers.ProvideSSEManager)
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap initializes every service so configuration and storage errors
// surface before the bridge starts listening.
func Bootstrap(injector *do.RootScope) error {
	if _, err := do.Invoke[*config.Config](injector); err != nil {
		return err
	}
	_ = do.MustInvoke[*logger.Logger](injector)
	_ = do.MustInvoke[clockwork.Clock](injector)

	for _, step := range []func() error{
		invoke[*providers.PersistenceHandle](injector),
		invoke[*providers.BackendHandle](injector),
		invoke[*providers.SearchIndexHandle](injector),
		invoke[*providers.StoreHandle](injector),
		invoke[*providers.FacadeHandle](injector),
		invoke[*auth.TokenService](injector),
		invoke[*providers.SSEManagerHandle](injector),
		invoke[*providers.HTTPServerHandle](injector),
	} {
		if err := step(); err != nil {
			return err
		}
	}

	// Reconnect a restored session once everything is wired.
	do.MustInvoke[*providers.FacadeHandle](injector).Resume()

	return nil
}

func invoke[T any](injector do.Injector) func() error {
	return func() error {
		_, err := do.Invoke[T](injector)
		return err
	}
}
