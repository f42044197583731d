// Package observability wires structured logging for the CLI.
package observability

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// CLILogger is the process-wide logger for CLI commands. It is a no-op
// until Init runs, so packages can log unconditionally.
var CLILogger = zap.NewNop()

// Init builds the CLI logger. Output goes to stderr so it never mixes
// with command results on stdout. Verbose enables debug level.
func Init(verbose bool) error {
	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	} else {
		cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	}

	log, err := cfg.Build()
	if err != nil {
		return err
	}
	CLILogger = log
	return nil
}

// Sync flushes buffered log entries. Safe to call on a no-op logger.
func Sync() {
	_ = CLILogger.Sync()
}
