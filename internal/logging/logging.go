package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	lumberjack "gopkg.in/natefinch/lumberjack.v2"
)

// Rotation policy for the file sink.
const (
	maxLogFileSizeMB = 10
	maxLogBackups    = 5
)

// Options selects the sinks and record format for a logger handle.
type Options struct {
	// Level is one of DEBUG, INFO, WARNING, ERROR, CRITICAL.
	Level string
	// ToFile adds a rotating file sink next to the console sink.
	ToFile bool
	// FilePath is the log file location; its directory is created if absent.
	FilePath string
	// JSONFormat selects one-JSON-object-per-line records instead of a
	// plain templated line.
	JSONFormat bool
}

// ParseLevel resolves a textual level name to a zap severity.
// Unrecognized names are a caller error.
func ParseLevel(name string) (zapcore.Level, error) {
	switch strings.ToUpper(name) {
	case "DEBUG":
		return zapcore.DebugLevel, nil
	case "INFO":
		return zapcore.InfoLevel, nil
	case "WARNING", "WARN":
		return zapcore.WarnLevel, nil
	case "ERROR":
		return zapcore.ErrorLevel, nil
	case "CRITICAL":
		// Fatal is used as a threshold only; filtering at a level never exits.
		return zapcore.FatalLevel, nil
	default:
		return zapcore.InvalidLevel, fmt.Errorf("unknown log level %q", name)
	}
}

// Setup builds a logger handle from the given options: a console sink always,
// plus a rotating file sink when requested. Every call constructs fresh
// sinks and returns an independent handle, so reconfiguration can never
// accumulate duplicate outputs. The handle is safe for concurrent use.
func Setup(opts Options) (*zap.Logger, error) {
	level, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, err
	}

	encoder := newEncoder(opts.JSONFormat)
	cores := []zapcore.Core{
		zapcore.NewCore(encoder, zapcore.Lock(os.Stdout), level),
	}

	if opts.ToFile {
		if dir := filepath.Dir(opts.FilePath); dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create log directory: %w", err)
			}
		}
		rotating := &lumberjack.Logger{
			Filename:   opts.FilePath,
			MaxSize:    maxLogFileSizeMB,
			MaxBackups: maxLogBackups,
		}
		cores = append(cores, zapcore.NewCore(encoder, zapcore.AddSync(rotating), level))
	}

	logger := zap.New(zapcore.NewTee(cores...), zap.AddCaller())

	logger.Info("Logging initialized", zap.String("level", strings.ToUpper(opts.Level)))
	if opts.ToFile {
		logger.Info("Logging to file", zap.String("file", opts.FilePath))
	}

	return logger, nil
}

// ServerLogger derives the handle used by the HTTP serving layer. It is
// clamped to warn and above so request-level noise cannot drown application
// logs, regardless of the global level.
func ServerLogger(base *zap.Logger) *zap.Logger {
	return base.Named("http.server").WithOptions(zap.IncreaseLevel(zapcore.WarnLevel))
}

func newEncoder(jsonFormat bool) zapcore.Encoder {
	if jsonFormat {
		cfg := zap.NewProductionEncoderConfig()
		cfg.TimeKey = "timestamp"
		cfg.MessageKey = "message"
		cfg.EncodeTime = zapcore.ISO8601TimeEncoder
		cfg.StacktraceKey = "stacktrace"
		return zapcore.NewJSONEncoder(cfg)
	}

	cfg := zap.NewDevelopmentEncoderConfig()
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	return zapcore.NewConsoleEncoder(cfg)
}
