package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/voltra/internal/audit"
	"github.com/smallbiznis/voltra/internal/billing"
	"github.com/smallbiznis/voltra/internal/config"
	"github.com/smallbiznis/voltra/internal/consumption"
	"github.com/smallbiznis/voltra/internal/export"
	"github.com/smallbiznis/voltra/internal/metrics"
	"github.com/smallbiznis/voltra/internal/migration"
	"github.com/smallbiznis/voltra/internal/providers/pdf"
	"github.com/smallbiznis/voltra/internal/server"
	"github.com/smallbiznis/voltra/internal/subscriber"
	"github.com/smallbiznis/voltra/internal/tariff"
	"github.com/smallbiznis/voltra/internal/ticket"
	"github.com/smallbiznis/voltra/pkg/db"
	"github.com/smallbiznis/voltra/pkg/log"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		// Core infrastructure
		config.Module,
		log.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		metrics.Module,
		migration.Module,

		// Domain modules
		tariff.Module,
		billing.Module,
		audit.Module,
		subscriber.Module,
		consumption.Module,
		ticket.Module,
		export.Module,
		pdf.Module,

		server.Module,
	)
	app.Run()
}

func RegisterSnowflake() (*snowflake.Node, error) {
	return snowflake.NewNode(1)
}
