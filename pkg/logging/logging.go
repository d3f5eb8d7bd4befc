// Package logging builds the application logger. The terminal belongs to the
// UI, so log lines go to a file instead of stderr.
package logging

import (
	"fmt"

	"github.com/trusttrade/trusttrade/pkg/runtime"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	DefaultFilename = "trusttrade.log"
)

// New returns a JSON logger writing to path at the given level. An empty path
// selects trusttrade.log under the XDG state directory.
func New(level, path string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	if path == "" {
		path, err = runtime.StateFile(DefaultFilename)
		if err != nil {
			return nil, fmt.Errorf("unable to determine log file: %w", err)
		}
	}

	config := zap.NewProductionConfig()
	config.Level = zap.NewAtomicLevelAt(lvl)
	config.OutputPaths = []string{path}
	config.ErrorOutputPaths = []string{path}
	config.EncoderConfig.TimeKey = "ts"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	logger, err := config.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return logger, nil
}

// OrNop lets components accept a nil logger.
func OrNop(l *zap.Logger) *zap.Logger {
	if l == nil {
		return zap.NewNop()
	}
	return l
}
