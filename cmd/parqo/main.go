package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/parqo/internal/clock"
	"github.com/smallbiznis/parqo/internal/config"
	"github.com/smallbiznis/parqo/internal/migration"
	"github.com/smallbiznis/parqo/internal/observability"
	"github.com/smallbiznis/parqo/internal/scheduler"
	"github.com/smallbiznis/parqo/internal/server"
	"github.com/smallbiznis/parqo/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		// Core Infrastructure
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,

		// Functional Domains
		migration.Module,
		server.Module,
		scheduler.Module,
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
