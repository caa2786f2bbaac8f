package cli

import (
	"go.uber.org/zap"

	"github.com/mzorec/logsift/internal/logging"
)

// newPipelineLogger builds the diagnostic logger for pipeline internals.
// Logger construction failing never blocks the pipeline.
func newPipelineLogger(globals *Globals) *zap.Logger {
	level := "info"
	if globals.Config != nil && globals.Config.Level != "" {
		level = globals.Config.Level
	}
	logger, err := logging.New(level, globals.Verbose)
	if err != nil {
		return zap.NewNop()
	}
	return logger
}
