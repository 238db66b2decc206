package logging

import (
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/winsuspend/winsuspend/internal/config"
)

// New builds a logger from the log configuration. Output goes to stderr
// unless a log file is configured, console-encoded in either case so the
// daemon's output reads well in a journal.
func New(cfg config.LogConfig) (*zap.SugaredLogger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	zcfg := zap.NewProductionConfig()
	zcfg.Level = zap.NewAtomicLevelAt(level)
	zcfg.Encoding = "console"
	zcfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	zcfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	zcfg.OutputPaths = []string{"stderr"}
	zcfg.ErrorOutputPaths = []string{"stderr"}
	if cfg.File != "" {
		zcfg.OutputPaths = []string{cfg.File}
		zcfg.ErrorOutputPaths = []string{cfg.File}
	}

	logger, err := zcfg.Build()
	if err != nil {
		return nil, errors.Wrap(err, "build logger")
	}
	return logger.Sugar(), nil
}

// Nop returns a logger that discards everything. Used in tests.
func Nop() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}
