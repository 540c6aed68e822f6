package logging

import (
	"fmt"
	"strings"

	"github.com/andresmejia3/eigenfaces/internal/eigenface"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds a zap logger writing to stderr. format is "console" or "json";
// level is any zap level name ("debug", "info", "warn", "error").
// An empty level disables logging.
func New(level, format string) (*zap.Logger, error) {
	if level == "" {
		return zap.NewNop(), nil
	}

	lvl, err := zapcore.ParseLevel(strings.ToLower(level))
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	cfg := zap.NewProductionConfig()
	switch format {
	case "", "console":
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	case "json":
	default:
		return nil, fmt.Errorf("invalid log format %q (want console or json)", format)
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	cfg.DisableStacktrace = true

	return cfg.Build()
}

// Observer reports model construction through a zap logger: stages at info
// level and individual images at debug level.
type Observer struct {
	Logger *zap.Logger
}

func (o Observer) Stage(s eigenface.Stage) {
	o.Logger.Info("eigenface stage", zap.String("stage", string(s)))
}

func (o Observer) Loading(p eigenface.Progress) {
	o.Logger.Debug("loading face",
		zap.Int("subject", p.Ref.Subject),
		zap.Int("image", p.Ref.Image),
		zap.Int("index", p.Index),
		zap.Int("total", p.Total),
		zap.String("path", p.Path),
	)
}
