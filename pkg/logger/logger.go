// Package logger, uygulama genelinde kullanılan zap logger'ı kurar.
//
// Her alt sistem kendi isimli child logger'ını alır:
//
//	log := logger.New("info", "json")
//	sessionLog := log.Named("session")
//	sessionLog.Info("login", zap.String("user", username))
package logger

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New, verilen seviye ve formatta bir *zap.Logger oluşturur.
//
// level: debug, info, warn, error (büyük/küçük harf fark etmez).
// format: "json" (production) veya "console" (development, renkli seviye).
func New(level, format string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(strings.ToLower(level))
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	var cfg zap.Config
	switch strings.ToLower(format) {
	case "json", "":
		cfg = zap.NewProductionConfig()
		cfg.EncoderConfig.TimeKey = "time"
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	case "console":
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	default:
		return nil, fmt.Errorf("invalid log format %q: must be json or console", format)
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)

	return cfg.Build()
}

