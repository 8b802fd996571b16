// Package domain contains the vehicle registry models.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Vehicle is a registered vehicle. Plate is stored in canonical form
// (uppercase, alphanumeric only) and is unique across the fleet.
// CustomerID is the denormalized current owner; the ownership ledger is
// the source of truth for history.
type Vehicle struct {
	ID         snowflake.ID `gorm:"primaryKey" json:"id"`
	Plate      string       `gorm:"not null;uniqueIndex:ux_vehicles_plate" json:"plate"`
	Model      string       `json:"model"`
	Year       *int         `json:"year,omitempty"`
	CustomerID snowflake.ID `gorm:"not null;index:idx_vehicles_customer" json:"customer_id"`
	CreatedAt  time.Time    `json:"created_at"`
	UpdatedAt  time.Time    `json:"updated_at"`
}

// TableName sets the database table name.
func (Vehicle) TableName() string { return "vehicles" }
