package providers

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/samber/do/v2"

	"github.com/vitrinaapp/vitrina-store/internal/api"
	"github.com/vitrinaapp/vitrina-store/internal/auth"
	"github.com/vitrinaapp/vitrina-store/internal/config"
	"github.com/vitrinaapp/vitrina-store/internal/facade"
	"github.com/vitrinaapp/vitrina-store/internal/logger"
	"github.com/vitrinaapp/vitrina-store/internal/ratelimit"
	"github.com/vitrinaapp/vitrina-store/internal/sse"
)

const (
	// Action dispatch budget per client IP.
	bridgeActionRPS   = 20
	bridgeActionBurst = 40
)

// ProvideTokenService provides the PASETO bridge token service.
func ProvideTokenService(i do.Injector) (*auth.TokenService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	clock := do.MustInvoke[clockwork.Clock](i)

	key, err := auth.LoadOrGenerateKey(cfg.Storage.Path)
	if err != nil {
		return nil, err
	}

	log.Info("Bridge key loaded", "token_duration", cfg.Bridge.TokenDuration)

	return auth.NewTokenService(key, cfg.Bridge.TokenDuration, clock)
}

// SSEManagerHandle wraps the SSE manager with its context and the store
// subscription feeding it.
type SSEManagerHandle struct {
	*sse.Manager
	cancel      context.CancelFunc
	unsubscribe func()
}

// Shutdown implements do.Shutdownable.
func (h *SSEManagerHandle) Shutdown() error {
	h.unsubscribe()
	h.cancel()
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return h.Manager.Shutdown(ctx)
}

// ProvideSSEManager starts the SSE manager and feeds it a view per store change.
func ProvideSSEManager(i do.Injector) (*SSEManagerHandle, error) {
	log := do.MustInvoke[*logger.Logger](i)
	facadeHandle := do.MustInvoke[*FacadeHandle](i)

	manager := sse.NewManager(log.Logger, sse.DefaultHeartbeat)

	ctx, cancel := context.WithCancel(context.Background())
	go manager.Start(ctx)

	unsubscribe := facadeHandle.Subscribe(func(view facade.View) {
		manager.Emit(sse.NewStateChangedEvent(view))
	})

	log.Info("SSE manager started")

	return &SSEManagerHandle{
		Manager:     manager,
		cancel:      cancel,
		unsubscribe: unsubscribe,
	}, nil
}

// HTTPServerHandle wraps http.Server with Shutdownable.
type HTTPServerHandle struct {
	*http.Server
	limiter *ratelimit.KeyedRateLimiter
}

// Shutdown implements do.Shutdownable.
func (h *HTTPServerHandle) Shutdown() error {
	defer h.limiter.Stop()
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return h.Server.Shutdown(ctx)
}

// ProvideHTTPServer provides the bridge HTTP server bound to loopback.
func ProvideHTTPServer(i do.Injector) (*HTTPServerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	facadeHandle := do.MustInvoke[*FacadeHandle](i)
	tokens := do.MustInvoke[*auth.TokenService](i)
	sseHandle := do.MustInvoke[*SSEManagerHandle](i)

	limiter := ratelimit.New(bridgeActionRPS, bridgeActionBurst)

	server := api.NewServer(facadeHandle.Facade, tokens, sseHandle.Manager, api.Options{
		AllowedOrigins: cfg.Bridge.AllowedOrigins,
		Limiter:        limiter,
	}, log.Component("bridge"))

	return &HTTPServerHandle{
		Server: &http.Server{
			Addr:              net.JoinHostPort("127.0.0.1", cfg.Bridge.Port),
			Handler:           server,
			ReadHeaderTimeout: 10 * time.Second,
			IdleTimeout:       120 * time.Second,
		},
		limiter: limiter,
	}, nil
}
