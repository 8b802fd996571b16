package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type ListInvoiceFilter struct {
	CustomerID snowflake.ID
	Period     string
	Offset     int
	Limit      int
}

type Repository interface {
	ExistsForPeriod(ctx context.Context, db *gorm.DB, customerID snowflake.ID, period string) (bool, error)
	// Insert writes the invoice and its vehicle links together.
	Insert(ctx context.Context, db *gorm.DB, invoice *Invoice, vehicleIDs []snowflake.ID) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Invoice, error)
	List(ctx context.Context, db *gorm.DB, filter ListInvoiceFilter) ([]InvoiceSummary, int64, error)
	// ListPlates returns the plates of the vehicles linked to an invoice.
	ListPlates(ctx context.Context, db *gorm.DB, invoiceID snowflake.ID) ([]string, error)
}
