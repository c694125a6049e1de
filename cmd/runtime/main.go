package main

import (
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	container "github.com/thehyperflames/dicontainer-go"

	"github.com/hxuan190/swap-router/internal/common"
	"github.com/hxuan190/swap-router/internal/config"
	"github.com/hxuan190/swap-router/internal/http"
	"github.com/hxuan190/swap-router/internal/services/market"
	"github.com/hxuan190/swap-router/internal/services/router"
)

// @title Swap Router API
// @version 1.0
// @description Multi-hop swap router over constant-product liquidity pools.
// @description
// @description ## - Features
// @description - **Multi-Hop Routing**: Every simple route up to maxHops pools deep is enumerated and simulated
// @description - **Both Sides**: bid (ExactIn) maximises output, ask (ExactOut) minimises input
// @description - **Exact Integer Math**: Floor on outputs and ceiling on required inputs, never in the trader's favour
// @description - **Price Impact Analysis**: Route price impact with severity warnings
// @description - **Slippage Protection**: Minimum output or maximum input threshold on every quote
// @description
// @description ## - Usage Tips
// @description - Use smallest token units
// @description - Default slippage is 50 bps (0.5%)
// @description - Admin routes require the X-Admin-Key header
// @BasePath /
// @schemes https http
// @tag.name quote
// @tag.description Swap quotes and candidate routes
// @tag.name pools
// @tag.description Pool state and statistics
// @tag.name tokens
// @tag.description Token metadata
// @tag.name admin
// @tag.description Pool and token ingestion

func main() {
	common.InitRuntime()

	// load env
	if err := godotenv.Load(); err != nil {
		log.Warn().Err(err).Msg("no .env file loaded, using process environment")
	}

	general := &config.GeneralConfig{}
	if err := general.Load(); err != nil {
		log.Error().Err(err).Msg("invalid general config")
		return
	}
	common.InitLogger(general.LogLevel, general.LogPretty)

	// di container config
	conf := container.NewConf(
		general,
		&config.RouterConfig{},
		&config.StorageConfig{},
	)

	// di container
	dic, err := container.New(
		// config
		conf,

		// services
		&router.Graph{},
		&router.Router{},
		&market.Service{},

		&http.HTTPService{},
	)
	if err != nil {
		log.Error().Err(err).Msg("failed to create di container")
		return
	}

	// Run blocks until SIGINT/SIGTERM
	if err := dic.Run(); err != nil {
		log.Error().Err(err).Msg("failed to run di container")
		return
	}

	log.Info().Msg("Shutting down services...")
	if err := dic.Stop(); err != nil {
		log.Error().Err(err).Msg("error during shutdown")
	}
	log.Info().Msg("Shutdown complete")
}
