package logging

import (
	"strings"

	"go.uber.org/zap"
)

// New builds a zap logger. "prod" and "production" select the JSON
// production config, anything else the console development config.
func New(mode, level string) (*zap.Logger, error) {
	var cfg zap.Config
	switch strings.ToLower(mode) {
	case "prod", "production":
		cfg = zap.NewProductionConfig()
	default:
		cfg = zap.NewDevelopmentConfig()
	}
	if level != "" {
		lvl, err := zap.ParseAtomicLevel(level)
		if err != nil {
			return nil, err
		}
		cfg.Level = lvl
	}
	// stdout carries the converted document in cli mode
	cfg.OutputPaths = []string{"stderr"}
	return cfg.Build()
}
