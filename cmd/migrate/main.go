// Command migrate applies the Postgres schema migrations.
//
//	migrate up
//	migrate down
package main

import (
	"os"

	"github.com/rs/zerolog/log"

	"timesheets.service/internal/config"
	"timesheets.service/internal/db/migrate"
	"timesheets.service/pkg/logger"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Could not load configuration")
	}
	logger.Setup(cfg.IsLocalDev)

	if cfg.DBDriver != config.DriverPostgres {
		log.Info().Str("driver", cfg.DBDriver).Msg("Nothing to migrate, the schema is applied on open")
		return
	}

	direction := "up"
	if len(os.Args) > 1 {
		direction = os.Args[1]
	}

	if err := migrate.Run(cfg.PostgresDSN(), direction); err != nil {
		log.Fatal().Err(err).Str("direction", direction).Msg("Migration failed")
	}
	log.Info().Str("direction", direction).Msg("Migration complete")
}
