package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/hearthctl/homie-core/internal/infrastructure/config"
)

// Logger is the controller's slog wrapper. Every log line carries the
// service and version attributes, so the bus activity of several homiectl
// instances can be told apart in an aggregated stream.
//
// Safe for concurrent use; slog handlers are.
type Logger struct {
	*slog.Logger
}

// New builds a Logger from the logging section of config.yaml: level
// filter, json or text rendering, stdout or stderr. Unknown values fall
// back to info/json/stdout rather than failing startup, since the logger
// has to exist before anything can report a config problem.
func New(cfg config.LoggingConfig, version string) *Logger {
	var output io.Writer
	switch strings.ToLower(cfg.Output) {
	case "stderr":
		output = os.Stderr
	default:
		output = os.Stdout
	}

	opts := &slog.HandlerOptions{
		Level: parseLevel(cfg.Level),
	}

	var handler slog.Handler
	switch strings.ToLower(cfg.Format) {
	case "text":
		handler = slog.NewTextHandler(output, opts)
	default:
		handler = slog.NewJSONHandler(output, opts)
	}

	handler = handler.WithAttrs([]slog.Attr{
		slog.String("service", "homiectl"),
		slog.String("version", version),
	})

	return &Logger{
		Logger: slog.New(handler),
	}
}

// parseLevel maps a config string to a slog.Level, defaulting to info.
func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// With returns a derived Logger carrying extra default attributes.
// Subsystems tag themselves this way:
//
//	mqttLog := log.With("component", "mqtt")
func (l *Logger) With(args ...any) *Logger {
	return &Logger{
		Logger: l.Logger.With(args...),
	}
}

// Default returns the bootstrap logger used between process start and
// config load: info level, json, stdout.
func Default() *Logger {
	return New(config.LoggingConfig{
		Level:  "info",
		Format: "json",
		Output: "stdout",
	}, "dev")
}
