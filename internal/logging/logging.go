// Package logging builds the zap loggers used by the proposal binaries.
package logging

import (
	"fmt"

	"go.uber.org/zap"
)

// New returns a JSON logger writing to stderr at the named level ("debug",
// "info", "warn" or "error").
func New(level string) (*zap.Logger, error) {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, fmt.Errorf("log level %q: %w", level, err)
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = lvl
	cfg.DisableStacktrace = true
	return cfg.Build()
}
