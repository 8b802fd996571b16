package migration

import (
	billingdomain "github.com/smallbiznis/parqo/internal/billing/domain"
	"github.com/smallbiznis/parqo/internal/config"
	customerdomain "github.com/smallbiznis/parqo/internal/customer/domain"
	ownershipdomain "github.com/smallbiznis/parqo/internal/ownership/domain"
	vehicledomain "github.com/smallbiznis/parqo/internal/vehicle/domain"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
		if cfg.DBType != "postgres" {
			// mysql and sqlite (tests, local scratch setups) fall back to
			// schema sync; the SQL migrations target postgres.
			return conn.AutoMigrate(
				&customerdomain.Customer{},
				&vehicledomain.Vehicle{},
				&ownershipdomain.OwnershipInterval{},
				&billingdomain.Invoice{},
				&billingdomain.InvoiceVehicle{},
			)
		}

		sqlDB, err := conn.DB()
		if err != nil {
			return err
		}
		return RunMigrations(sqlDB)
	}),
)
