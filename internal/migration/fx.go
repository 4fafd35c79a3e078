package migration

import (
	"github.com/smallbiznis/kudos/internal/config"
	"gorm.io/gorm"

	"go.uber.org/fx"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
		// Embedded migrations are written for postgres; sqlite deployments
		// (dev, tests) build their schema through AutoMigrate instead.
		if cfg.DBType != "postgres" {
			return AutoMigrate(conn)
		}

		sqlDB, err := conn.DB()
		if err != nil {
			return err
		}
		return RunMigrations(sqlDB)
	}),
)
