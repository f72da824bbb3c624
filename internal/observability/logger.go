package observability

import (
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"

	"github.com/swfm/backend/internal/config"
)

// NewLogger builds the application logger: colorized text in development,
// JSON elsewhere.
func NewLogger(cfg *config.Config) *slog.Logger {
	if cfg.AppEnv == "development" {
		h := tint.NewHandler(os.Stdout, &tint.Options{
			Level:      cfg.LogLevel,
			TimeFormat: time.Kitchen,
		})
		return slog.New(h).With("app", "swfm-backend")
	}

	h := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	})
	return slog.New(h).With(
		"app", "swfm-backend",
		"env", cfg.AppEnv,
	)
}
