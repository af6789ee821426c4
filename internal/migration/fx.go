package migration

import (
	"github.com/bwmarrin/snowflake"
	auditdomain "github.com/smallbiznis/voltra/internal/audit/domain"
	"github.com/smallbiznis/voltra/internal/config"
	consumptiondomain "github.com/smallbiznis/voltra/internal/consumption/domain"
	"github.com/smallbiznis/voltra/internal/seed"
	subscriberdomain "github.com/smallbiznis/voltra/internal/subscriber/domain"
	ticketdomain "github.com/smallbiznis/voltra/internal/ticket/domain"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config, genID *snowflake.Node) error {
		if cfg.DBType == "postgres" {
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			if err := RunMigrations(sqlDB); err != nil {
				return err
			}
		} else {
			if err := conn.AutoMigrate(
				&subscriberdomain.Subscriber{},
				&consumptiondomain.Record{},
				&ticketdomain.Ticket{},
				&ticketdomain.Message{},
				&auditdomain.Entry{},
			); err != nil {
				return err
			}
		}

		return seed.EnsureDefaultAdmin(conn, genID)
	}),
)
