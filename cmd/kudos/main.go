package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/kudos/internal/clock"
	"github.com/smallbiznis/kudos/internal/config"
	"github.com/smallbiznis/kudos/internal/logger"
	"github.com/smallbiznis/kudos/internal/migration"
	"github.com/smallbiznis/kudos/internal/server"
	"github.com/smallbiznis/kudos/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		// Core infrastructure
		config.Module,
		logger.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		migration.Module,

		// Ledger domains + HTTP surface
		server.Module,
	)
	app.Run()
}

func RegisterSnowflake(cfg config.Config) *snowflake.Node {
	node, err := snowflake.NewNode(cfg.NodeID)
	if err != nil {
		panic(err)
	}
	return node
}
