package telemetry

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
)

// teeHandler forwards every record to the primary handler and persists
// warning-or-worse records to a durable secondary handler, so operator
// warnings survive the terminal session.
type teeHandler struct {
	primary slog.Handler
	durable slog.Handler
}

func (h teeHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.primary.Enabled(ctx, level) || level >= slog.LevelWarn
}

func (h teeHandler) Handle(ctx context.Context, record slog.Record) error {
	var err error
	if h.primary.Enabled(ctx, record.Level) {
		err = h.primary.Handle(ctx, record)
	}
	if h.durable != nil && record.Level >= slog.LevelWarn {
		if durableErr := h.durable.Handle(ctx, record.Clone()); err == nil {
			err = durableErr
		}
	}
	return err
}

func (h teeHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := teeHandler{primary: h.primary.WithAttrs(attrs)}
	if h.durable != nil {
		out.durable = h.durable.WithAttrs(attrs)
	}
	return out
}

func (h teeHandler) WithGroup(name string) slog.Handler {
	out := teeHandler{primary: h.primary.WithGroup(name)}
	if h.durable != nil {
		out.durable = h.durable.WithGroup(name)
	}
	return out
}

// InitSlog installs the default text handler on stderr.
func InitSlog(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})))
}

// InitSlogWithWarnLog installs the default handler plus a durable sink
// that appends every warning and error to the given file.
func InitSlogWithWarnLog(debug bool, warnLogPath string) error {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}

	if err := os.MkdirAll(filepath.Dir(warnLogPath), 0755); err != nil {
		return err
	}
	file, err := os.OpenFile(warnLogPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}

	slog.SetDefault(slog.New(teeHandler{
		primary: slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: level,
		}),
		durable: slog.NewTextHandler(file, &slog.HandlerOptions{
			Level: slog.LevelWarn,
		}),
	}))
	return nil
}
