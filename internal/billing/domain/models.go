// Package domain contains the subscription invoicing models.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// Invoice is a customer's charge for one billing month. The amount is
// prorated by the days the customer actually held vehicles during the
// period, derived from the ownership ledger. At most one invoice exists
// per (customer, period).
type Invoice struct {
	ID          snowflake.ID      `gorm:"primaryKey" json:"id"`
	CustomerID  snowflake.ID      `gorm:"not null;uniqueIndex:ux_invoices_customer_period" json:"customer_id"`
	Period      string            `gorm:"not null;uniqueIndex:ux_invoices_customer_period" json:"period"`
	AmountCents int64             `gorm:"not null" json:"amount_cents"`
	Note        string            `json:"note"`
	Metadata    datatypes.JSONMap `json:"metadata,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
}

// TableName sets the database table name.
func (Invoice) TableName() string { return "invoices" }

// InvoiceVehicle links an invoice to a vehicle that contributed active
// days to it.
type InvoiceVehicle struct {
	InvoiceID snowflake.ID `gorm:"primaryKey" json:"invoice_id"`
	VehicleID snowflake.ID `gorm:"primaryKey" json:"vehicle_id"`
}

// TableName sets the database table name.
func (InvoiceVehicle) TableName() string { return "invoice_vehicles" }

// InvoiceSummary is the list read model: the invoice plus how many
// vehicles backed it.
type InvoiceSummary struct {
	Invoice
	VehicleCount int64 `json:"vehicle_count"`
}
