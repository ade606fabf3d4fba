// Package main provides the entry point for vitrinad, the process that owns
// the Vitrina client store and serves it to the UI shell over a local bridge.
package main

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/samber/do/v2"

	"github.com/vitrinaapp/vitrina-store/internal/auth"
	"github.com/vitrinaapp/vitrina-store/internal/config"
	"github.com/vitrinaapp/vitrina-store/internal/di"
	"github.com/vitrinaapp/vitrina-store/internal/di/providers"
	"github.com/vitrinaapp/vitrina-store/internal/logger"
)

// shellClient names the token subject handed to the UI shell.
const shellClient = "vitrina-shell"

func main() {
	injector := di.NewContainer()

	if err := di.Bootstrap(injector); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to bootstrap vitrinad: %v\n", err)
		os.Exit(1)
	}

	log := do.MustInvoke[*logger.Logger](injector)
	cfg := do.MustInvoke[*config.Config](injector)
	tokens := do.MustInvoke[*auth.TokenService](injector)
	server := do.MustInvoke[*providers.HTTPServerHandle](injector)

	token, expires, err := tokens.Issue(shellClient)
	if err != nil {
		log.Fatal("Failed to issue bridge token", "error", err)
	}
	tokenPath, err := auth.WriteToken(cfg.Storage.Path, token)
	if err != nil {
		log.Fatal("Failed to write bridge token", "error", err)
	}
	log.Info("Bridge token issued", "path", tokenPath, "expires", expires)

	go func() {
		log.Info("Bridge listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("Bridge server failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down vitrinad gracefully...")

	// The container shuts down dependents first: bridge, then facade and
	// store, then storage.
	if err := injector.Shutdown(); err != nil {
		log.Error("Shutdown error", "error", err)
	}

	log.Info("Store closed")
}
