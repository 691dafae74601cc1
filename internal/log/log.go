// Package log builds the zap logger of the command line and carries it on the context.
package log

import (
	"context"
	"os"
	"path/filepath"
	"syscall"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/term"
)

type contextKey struct{}

type flushFunc func()

// NewProductionLogger logs to stdout with a console encoder, coloured when stdout is a terminal,
// and to logFile as JSON when it is set.
func NewProductionLogger(logFile string, verbose bool) (*zap.SugaredLogger, flushFunc, error) {
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "timestamp"
	encoderConfig.EncodeTime = zapcore.RFC3339NanoTimeEncoder

	level := zap.InfoLevel
	if verbose {
		level = zap.DebugLevel
	}

	consoleConfig := encoderConfig
	if term.IsTerminal(int(os.Stdout.Fd())) {
		consoleConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	cores := []zapcore.Core{
		zapcore.NewCore(
			zapcore.NewConsoleEncoder(consoleConfig),
			zapcore.AddSync(os.Stdout),
			level,
		),
	}

	var logFileHandle *os.File
	if logFile != "" {
		err := os.MkdirAll(filepath.Dir(logFile), 0o755)
		if err != nil {
			return nil, nil, errors.Wrap(err, "unable to create log directory")
		}
		logFileHandle, err = os.OpenFile(logFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, nil, errors.Wrap(err, "unable to open log file")
		}
		cores = append(cores, zapcore.NewCore(
			zapcore.NewJSONEncoder(encoderConfig),
			zapcore.AddSync(logFileHandle),
			level,
		))
	}

	logger := zap.New(zapcore.NewTee(cores...)).Sugar()

	flush := func() {
		err := logger.Sync()
		// stdout can not be synced when it is a terminal
		if err != nil && !errors.Is(err, syscall.ENOTTY) && !errors.Is(err, syscall.EINVAL) {
			_, _ = os.Stderr.WriteString("unable to flush logs: " + err.Error() + "\n")
		}
		if logFileHandle != nil {
			_ = logFileHandle.Close()
		}
	}

	return logger, flush, nil
}

func WithLogger(ctx context.Context, logger *zap.SugaredLogger) context.Context {
	return context.WithValue(ctx, contextKey{}, logger)
}

func MustGetLogger(ctx context.Context) *zap.SugaredLogger {
	logger, ok := ctx.Value(contextKey{}).(*zap.SugaredLogger)
	if !ok {
		panic("logger not found on context")
	}

	return logger
}

func NewTestContext() context.Context {
	logger, _ := zap.NewDevelopment()

	return WithLogger(context.Background(), logger.Sugar())
}
