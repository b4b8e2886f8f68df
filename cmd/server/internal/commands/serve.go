package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"orgregistry/internal/config"
	"orgregistry/internal/logger"
	"orgregistry/internal/server"

	"github.com/gin-gonic/gin"
)

type ServeCmd struct {
	StoreFlags `embed:""`

	Host string `help:"listen host (overrides SERVER_HOST)"`
	Port string `help:"listen port (overrides SERVER_PORT)"`
}

func (c *ServeCmd) Run(ctx context.Context, globals *Globals) error {
	cfg := c.load(globals)
	if c.Host != "" {
		cfg.Server.Host = c.Host
	}
	if c.Port != "" {
		cfg.Server.Port = c.Port
	}

	log := logger.Setup(cfg.LogDebug)
	if !cfg.LogDebug {
		gin.SetMode(gin.ReleaseMode)
	}
	if cfg.Token.Secret == config.DefaultJWTSecret {
		log.Warn().Msg("JWT_SECRET is not set, using the built-in development secret")
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = log.WithContext(ctx)

	log.Info().Str("version", globals.Version).Bool("debug", cfg.LogDebug).Msg("Starting server")

	srv, err := server.New(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := srv.Close(); err != nil {
			log.Error().Err(err).Msg("failed to close storage")
		}
	}()

	return srv.Run(ctx)
}
