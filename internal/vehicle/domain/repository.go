package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type ListVehicleFilter struct {
	Plate      string
	CustomerID snowflake.ID
	Offset     int
	Limit      int
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, vehicle *Vehicle) error
	Update(ctx context.Context, db *gorm.DB, vehicle *Vehicle) error
	Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Vehicle, error)
	// FindByIDForUpdate locks the vehicle row for the duration of the
	// caller's transaction.
	FindByIDForUpdate(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Vehicle, error)
	FindByPlate(ctx context.Context, db *gorm.DB, plate string) (*Vehicle, error)
	PlateExists(ctx context.Context, db *gorm.DB, plate string, excludeID snowflake.ID) (bool, error)
	// SetOwner updates the denormalized owner pointer. Called by the
	// ownership ledger writer only.
	SetOwner(ctx context.Context, db *gorm.DB, vehicleID, customerID snowflake.ID, at time.Time) error
	List(ctx context.Context, db *gorm.DB, filter ListVehicleFilter) ([]Vehicle, int64, error)
	ListByCustomer(ctx context.Context, db *gorm.DB, customerID snowflake.ID) ([]Vehicle, error)
}
