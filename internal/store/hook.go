package store

import (
	"context"
	"log/slog"
)

// Hook receives telemetry for every applied store mutation.
type Hook interface {
	OnAction(name string, attrs ...slog.Attr)
}

// LogHook writes mutations as debug records.
type LogHook struct {
	logger *slog.Logger
}

// NewLogHook creates a hook logging through logger.
func NewLogHook(logger *slog.Logger) LogHook {
	return LogHook{logger: logger}
}

// OnAction implements Hook.
func (h LogHook) OnAction(name string, attrs ...slog.Attr) {
	h.logger.LogAttrs(context.Background(), slog.LevelDebug, "store action",
		append([]slog.Attr{slog.String("action", name)}, attrs...)...)
}

// NoopHook discards telemetry.
type NoopHook struct{}

// OnAction implements Hook.
func (NoopHook) OnAction(string, ...slog.Attr) {}
