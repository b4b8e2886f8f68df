package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"orgregistry/internal/logger"
	"orgregistry/internal/server"
	"orgregistry/internal/service"
)

type AuditCmd struct {
	StoreFlags `embed:""`

	Repair bool          `help:"delete orphaned admins and partitions, re-provision missing partitions"`
	Grace  time.Duration `help:"ignore admins younger than this" default:"5m"`
}

func (c *AuditCmd) Run(ctx context.Context, globals *Globals) error {
	cfg := c.load(globals)
	log := logger.Setup(cfg.LogDebug)
	ctx = log.WithContext(ctx)

	store, client, err := server.InitRepositories(ctx, cfg)
	if err != nil {
		return err
	}
	if client != nil {
		defer func() { _ = client.Disconnect(context.Background()) }()
	}

	report, err := service.NewAuditService(store).WithGracePeriod(c.Grace).Run(ctx, c.Repair)
	if report != nil {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if encErr := enc.Encode(report); encErr != nil {
			return fmt.Errorf("write report: %w", encErr)
		}
	}
	return err
}
