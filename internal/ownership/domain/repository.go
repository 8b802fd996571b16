package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, interval *OwnershipInterval) error
	// FindOpenByVehicleForUpdate locks and returns the vehicle's open
	// interval, or nil when none exists.
	FindOpenByVehicleForUpdate(ctx context.Context, db *gorm.DB, vehicleID snowflake.ID) (*OwnershipInterval, error)
	// Close sets the interval's end timestamp. The one permitted mutation.
	Close(ctx context.Context, db *gorm.DB, id snowflake.ID, endAt time.Time) error
	// ListOverlapping returns every interval of the customer (across all
	// vehicles) that overlaps [from, to], open intervals included.
	ListOverlapping(ctx context.Context, db *gorm.DB, customerID snowflake.ID, from, to time.Time) ([]OwnershipInterval, error)
	ListByVehicle(ctx context.Context, db *gorm.DB, vehicleID snowflake.ID) ([]OwnershipInterval, error)
}
