package logging

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/tokenstd/revert-registry/internal/config"
)

// New builds the application logger: JSON to stderr, and when LOG_FILE is
// configured, the same stream teed into a size-rotated file via lumberjack.
// Rotation happens in-process, so no external logrotate setup is needed.
func New(cfg *config.Config) (*zap.Logger, error) {
	if cfg.LogFile == "" {
		return zap.NewProduction()
	}

	encCfg := zap.NewProductionEncoderConfig()
	enc := zapcore.NewJSONEncoder(encCfg)

	rotated := zapcore.AddSync(&lumberjack.Logger{
		Filename:   cfg.LogFile,
		MaxSize:    cfg.LogMaxSizeMB,
		MaxBackups: cfg.LogMaxBackups,
		MaxAge:     cfg.LogMaxAgeDays,
		Compress:   true,
	})

	core := zapcore.NewTee(
		zapcore.NewCore(enc, zapcore.Lock(os.Stderr), zapcore.InfoLevel),
		zapcore.NewCore(enc, rotated, zapcore.InfoLevel),
	)

	return zap.New(core, zap.AddCaller()), nil
}
