package main

import (
	"context"

	"orgregistry/cmd/server/internal/commands"
	"orgregistry/internal/version"

	"github.com/alecthomas/kong"
)

var cli struct {
	Debug   bool             `help:"Enable debug logging."`
	Version kong.VersionFlag `help:"Print version and exit."`

	Serve commands.ServeCmd   `cmd:"" default:"1" help:"Start the organization registry HTTP API"`
	Audit commands.AuditCmd   `cmd:"" help:"Report (and optionally repair) inconsistent organizations, admins and partitions"`
	Info  commands.VersionCmd `cmd:"" help:"Print build information as JSON"`
}

func main() {
	ctx := context.Background()
	cmd := kong.Parse(&cli,
		kong.Name("orgregistry"),
		kong.Description("Multi-tenant organization registry"),
		kong.Vars{
			"version": version.Get().String(),
		},
		kong.BindTo(ctx, (*context.Context)(nil)))
	err := cmd.Run(&commands.Globals{Debug: cli.Debug, Version: version.Get().String()})
	cmd.FatalIfErrorf(err)
}
