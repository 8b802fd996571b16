// Package domain contains the vehicle ownership ledger models.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// OwnershipInterval is one entry of the append-mostly ownership ledger: the
// span of time during which a vehicle belonged to a customer. A nil EndAt
// marks the interval as open (present-tense ownership). An interval is
// written once and mutated exactly once, to set EndAt when ownership moves.
//
// Per vehicle the ledger guarantees at most one open interval and no
// overlapping spans; the open interval's customer always equals the
// vehicle's denormalized owner pointer.
type OwnershipInterval struct {
	ID         snowflake.ID `gorm:"primaryKey" json:"id"`
	VehicleID  snowflake.ID `gorm:"not null;index:idx_ownership_vehicle" json:"vehicle_id"`
	CustomerID snowflake.ID `gorm:"not null;index:idx_ownership_customer" json:"customer_id"`
	StartAt    time.Time    `gorm:"not null" json:"start_at"`
	EndAt      *time.Time   `json:"end_at,omitempty"`
}

// TableName sets the database table name.
func (OwnershipInterval) TableName() string { return "ownership_intervals" }

// Open reports whether the interval has no end yet.
func (i OwnershipInterval) Open() bool { return i.EndAt == nil }
