package logger

import (
	"context"
	"log/slog"
	"os"

	"github.com/mattn/go-isatty"

	"webpconv/internal/config"
)

// SetupDefault настраивает глобальный slog. Текстовый формат - если он
// запрошен явно или вывод идет в терминал, иначе JSON.
func SetupDefault(cfg config.Logger) {
	opts := &slog.HandlerOptions{Level: cfg.Level}
	if cfg.Plaintext || isatty.IsTerminal(os.Stderr.Fd()) {
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, opts)))
	} else {
		slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, opts)))
	}
}

type loggerKey struct{}

func Context(ctx context.Context, log *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, log)
}

func FromContext(ctx context.Context) *slog.Logger {
	log := ctx.Value(loggerKey{})
	if log != nil {
		return log.(*slog.Logger)
	}
	return slog.Default()
}
