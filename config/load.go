package config

import (
	"log/slog"
	"os"

	"github.com/caarlos0/env/v11"
)

func Load() App {
	cfg, err := env.ParseAs[App]()
	if err != nil {
		slog.Error("config load failed", "err", err)
		panic(err)
	}
	// PORT wins over APP_PORT on PaaS hosts.
	if p := os.Getenv("PORT"); p != "" {
		cfg.Port = p
	}
	return cfg
}
