package config

import (
	"fmt"

	"github.com/andrew-solarstorm/go-packages/common"
)

const (
	defaultMaxHops = 3
	maxHopsLimit   = 6
)

type RouterConfig struct {
	// DefaultMaxHops is used when a quote request does not set maxHops.
	// Default: 3
	DefaultMaxHops int

	// Parallelism is the number of routes simulated concurrently per quote.
	// 1 keeps evaluation sequential.
	// Default: 4
	Parallelism int

	// QuoteCacheSize bounds the LRU of computed quotes. 0 disables caching.
	// Default: 4096
	QuoteCacheSize int

	// DefaultSlippageBps applies when a request omits slippageBps.
	// Default: 50
	DefaultSlippageBps int
}

func (c *RouterConfig) Key() string {
	return ROUTER_CONFIG_KEY
}

func (c *RouterConfig) Load() error {
	c.DefaultMaxHops = common.GetEnvOrDefaultInt("ROUTER_DEFAULT_MAX_HOPS", defaultMaxHops)
	c.Parallelism = common.GetEnvOrDefaultInt("ROUTER_PARALLELISM", 4)
	c.QuoteCacheSize = common.GetEnvOrDefaultInt("ROUTER_QUOTE_CACHE_SIZE", 4096)
	c.DefaultSlippageBps = common.GetEnvOrDefaultInt("ROUTER_DEFAULT_SLIPPAGE_BPS", 50)
	return c.Validate()
}

func (c *RouterConfig) Validate() error {
	if c.DefaultMaxHops < 1 || c.DefaultMaxHops > maxHopsLimit {
		return fmt.Errorf("ROUTER_DEFAULT_MAX_HOPS must be within 1..%d, got %d", maxHopsLimit, c.DefaultMaxHops)
	}
	if c.Parallelism < 1 {
		return fmt.Errorf("ROUTER_PARALLELISM must be positive, got %d", c.Parallelism)
	}
	if c.QuoteCacheSize < 0 {
		return fmt.Errorf("ROUTER_QUOTE_CACHE_SIZE must not be negative, got %d", c.QuoteCacheSize)
	}
	if c.DefaultSlippageBps < 0 || c.DefaultSlippageBps >= 10000 {
		return fmt.Errorf("ROUTER_DEFAULT_SLIPPAGE_BPS must be within 0..9999, got %d", c.DefaultSlippageBps)
	}
	return nil
}
