package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// Service is the only writer of the ownership ledger. Every code path that
// creates a vehicle or moves it between customers must go through it inside
// the same transaction as the vehicle write, otherwise the ledger and the
// vehicle's owner pointer drift apart.
type Service interface {
	// RegisterVehicleCreated seeds the ledger with the vehicle's opening
	// interval. Runs in the caller's transaction together with the vehicle
	// insert.
	RegisterVehicleCreated(ctx context.Context, tx *gorm.DB, vehicleID, customerID snowflake.ID, at time.Time) error
	// RegisterOwnershipChange closes the open interval, opens a new one for
	// the new customer and updates the vehicle's owner pointer, all in the
	// caller's transaction. Returns false when the owner is unchanged.
	RegisterOwnershipChange(ctx context.Context, tx *gorm.DB, vehicleID, newCustomerID snowflake.ID, at time.Time) (bool, error)
	// RegisterVehicleRemoved closes the open interval when a vehicle leaves
	// the fleet; the closed history stays for billing.
	RegisterVehicleRemoved(ctx context.Context, tx *gorm.DB, vehicleID snowflake.ID, at time.Time) error

	ListByCustomerOverlapping(ctx context.Context, customerID snowflake.ID, from, to time.Time) ([]OwnershipInterval, error)
	ListByVehicle(ctx context.Context, vehicleID snowflake.ID) ([]OwnershipInterval, error)
}

var (
	ErrUnknownCustomer  = errors.New("unknown_customer")
	ErrUnknownVehicle   = errors.New("unknown_vehicle")
	ErrInvalidTimestamp = errors.New("invalid_timestamp")

	// ErrNoOpenInterval means the ledger is structurally broken for a
	// vehicle: an ownership change was requested but no open interval
	// exists to close. Never recovered automatically.
	ErrNoOpenInterval = errors.New("no_open_interval")
)
