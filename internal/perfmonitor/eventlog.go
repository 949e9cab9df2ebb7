package perfmonitor

import (
	"encoding/json"
	"io"

	"gopkg.in/natefinch/lumberjack.v2"
)

// EventLogConfig configures the optional rotating optimization-event log,
// mirroring pkg/logger/logger.go's lumberjack.Logger wiring.
type EventLogConfig struct {
	Filename   string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// NewEventLogWriter returns a rotating writer for optimization events, or
// nil if cfg.Filename is empty (events are only logged via slog then).
func NewEventLogWriter(cfg EventLogConfig) io.Writer {
	if cfg.Filename == "" {
		return nil
	}
	return &lumberjack.Logger{
		Filename:   cfg.Filename,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
		Compress:   cfg.Compress,
	}
}

// WithEventLogWriter appends each optimization event as a JSON line to w.
func WithEventLogWriter(w io.Writer) Option {
	return WithEventSink(func(evt OptimizationEvent) {
		if w == nil {
			return
		}
		enc := json.NewEncoder(w)
		_ = enc.Encode(evt)
	})
}
