package commands

import (
	"orgregistry/internal/config"
)

type Globals struct {
	Debug   bool
	Version string
}

// StoreFlags override the environment configuration for storage
type StoreFlags struct {
	Store    string `help:"store type (mongo or memory), overrides STORE_TYPE"`
	MongoURI string `help:"MongoDB connection string" name:"mongo-uri"`
	MongoDB  string `help:"MongoDB database name" name:"mongo-db"`
}

// load reads the environment and applies any flags set on the command line
func (f *StoreFlags) load(globals *Globals) *config.Config {
	cfg := config.New()
	if f.Store != "" {
		cfg.StoreType = f.Store
	}
	if f.MongoURI != "" {
		cfg.Mongo.URI = f.MongoURI
	}
	if f.MongoDB != "" {
		cfg.Mongo.Database = f.MongoDB
	}
	if globals.Debug {
		cfg.LogDebug = true
	}
	return cfg
}
