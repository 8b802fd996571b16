// Package domain contains persistence models for the customer directory.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Customer is a garage customer. Subscribers are billed a flat monthly fee
// prorated by days of vehicle coverage; MonthlyFeeCents is meaningful only
// when Subscriber is set and defaults to 0 when unset.
type Customer struct {
	ID              snowflake.ID `gorm:"primaryKey" json:"id"`
	Name            string       `gorm:"not null;index:idx_customers_name_phone" json:"name"`
	Phone           string       `gorm:"index:idx_customers_name_phone" json:"phone,omitempty"`
	Address         string       `json:"address,omitempty"`
	Subscriber      bool         `gorm:"not null;default:false" json:"subscriber"`
	MonthlyFeeCents *int64       `json:"monthly_fee_cents,omitempty"`
	CreatedAt       time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt       time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Customer) TableName() string { return "customers" }

// FeeCents returns the monthly fee, defaulting to 0 when unset.
func (c Customer) FeeCents() int64 {
	if c.MonthlyFeeCents == nil {
		return 0
	}
	return *c.MonthlyFeeCents
}
