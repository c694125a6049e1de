package config

import (
	"errors"

	"github.com/andrew-solarstorm/go-packages/common"
)

type ServerEnv = string

var (
	DevEnv     ServerEnv = "dev"
	StagingEnv ServerEnv = "staging"
	ProdEnv    ServerEnv = "prod"
)

const (
	GENERAL_CONFIG_KEY = "general-config"
	ROUTER_CONFIG_KEY  = "router-config"
	STORAGE_CONFIG_KEY = "storage-config"
)

type GeneralConfig struct {
	HTTPPort  string
	HTTPHost  string
	Env       string
	LogLevel  string
	LogPretty bool

	// AdminAPIKey guards /api/v1/admin. Empty disables the admin routes.
	AdminAPIKey string

	RateLimit int
	RateBurst int
}

func (gc *GeneralConfig) Key() string {
	return GENERAL_CONFIG_KEY
}

func (gc *GeneralConfig) Load() error {
	gc.HTTPPort = common.GetEnvOrDefault("HTTP_PORT", "8080")
	gc.HTTPHost = common.GetEnvOrDefault("HTTP_HOST", "localhost")
	gc.Env = common.GetEnvOrDefault("ENV", "dev")
	gc.LogLevel = common.GetEnvOrDefault("LOG_LEVEL", "INFO")
	gc.LogPretty = common.GetEnvOrDefault("LOG_PRETTY", "false") == "true"
	gc.AdminAPIKey = common.GetEnvOrDefault("ADMIN_API_KEY", "")
	gc.RateLimit = common.GetEnvOrDefaultInt("HTTP_RATE_LIMIT", 10)
	gc.RateBurst = common.GetEnvOrDefaultInt("HTTP_RATE_BURST", 20)
	return gc.Validate()
}

func (gc *GeneralConfig) Validate() error {
	if gc.HTTPPort == "" || gc.HTTPHost == "" || gc.Env == "" {
		return errors.New("invalid server config")
	}
	if gc.RateLimit <= 0 || gc.RateBurst < gc.RateLimit {
		return errors.New("invalid rate limit config")
	}
	return nil
}
