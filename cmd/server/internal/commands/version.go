package commands

import (
	"encoding/json"
	"os"

	"orgregistry/internal/version"
)

type VersionCmd struct{}

func (c *VersionCmd) Run() error {
	return json.NewEncoder(os.Stdout).Encode(version.Get())
}
