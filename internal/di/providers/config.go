// Package providers contains dependency injection providers for the NoteBook server.
package providers

import (
	"path/filepath"

	"github.com/samber/do/v2"

	"github.com/macontouch/notebook/internal/config"
	"github.com/macontouch/notebook/internal/logger"
)

// ProvideConfig provides the application configuration.
func ProvideConfig(i do.Injector) (*config.Config, error) {
	return config.LoadConfig()
}

// ProvideLogger provides the structured logger.
func ProvideLogger(i do.Injector) (*logger.Logger, error) {
	cfg := do.MustInvoke[*config.Config](i)

	fileCfg := logger.FileConfig{}
	if cfg.Logger.File != "" {
		fileCfg.Path = cfg.Logger.File
		if !filepath.IsAbs(fileCfg.Path) {
			fileCfg.Path = filepath.Join(cfg.Storage.DataPath, fileCfg.Path)
		}
	}

	log := logger.New(logger.Config{
		Level:       logger.ParseLevel(cfg.Logger.Level),
		AddSource:   cfg.App.Environment == "development",
		Environment: cfg.App.Environment,
		File:        fileCfg,
	})

	log.Info("Starting NoteBook Server",
		"environment", cfg.App.Environment,
		"log_level", cfg.Logger.Level,
		"data_path", cfg.Storage.DataPath,
		"kv_backend", cfg.Storage.KVBackend,
		"remote_url", cfg.Remote.URL,
	)

	return log, nil
}
