package config

import (
	"errors"

	"github.com/andrew-solarstorm/go-packages/common"
)

type StorageConfig struct {
	// DBPath is the path to the BoltDB file for pool persistence.
	// Default: "./data/router.db"
	DBPath string

	// PersistenceEnabled controls whether pools are persisted to disk.
	// Default: true
	PersistenceEnabled bool

	// PersistInterval is how often dirty pools are batch-saved to disk (in seconds).
	// Default: 30
	PersistInterval int
}

func (c *StorageConfig) Key() string {
	return STORAGE_CONFIG_KEY
}

func (c *StorageConfig) Load() error {
	c.DBPath = common.GetEnvOrDefault("STORAGE_DB_PATH", "./data/router.db")
	c.PersistenceEnabled = common.GetEnvOrDefault("STORAGE_PERSISTENCE_ENABLED", "true") == "true"
	c.PersistInterval = common.GetEnvOrDefaultInt("STORAGE_PERSIST_INTERVAL", 30)
	return c.Validate()
}

func (c *StorageConfig) Validate() error {
	if !c.PersistenceEnabled {
		return nil
	}
	if c.DBPath == "" {
		return errors.New("STORAGE_DB_PATH is required when persistence is enabled")
	}
	if c.PersistInterval <= 0 {
		return errors.New("STORAGE_PERSIST_INTERVAL must be positive")
	}
	return nil
}
