// Applies the embedded schema migrations and exits. Useful as an init
// container when the API runs with RUN_MIGRATIONS=false.
package main

import (
	"github.com/rs/zerolog/log"

	"graficaos.service/internal/config"
	"graficaos.service/pkg/database"
	"graficaos.service/pkg/logger"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Could not load configuration")
	}

	logger.Setup(cfg.IsLocalDev)

	db, err := database.NewConnection(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Error opening database")
	}
	defer db.Close()

	if err := database.RunMigrations(db); err != nil {
		log.Fatal().Err(err).Msg("Could not migrate database")
	}
}
