package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
)

type ListInvoiceRequest struct {
	CustomerID string `form:"customer_id"`
	Period     string `form:"period"`
	Page       int    `form:"page"`
	PageSize   int    `form:"page_size"`
}

type ListInvoiceResponse struct {
	Total    int64            `json:"total"`
	Invoices []InvoiceSummary `json:"invoices"`
}

// InvoiceDetail is the single-invoice read model with the contributing
// vehicle plates resolved.
type InvoiceDetail struct {
	Invoice
	Plates []string `json:"plates"`
}

// GenerationResult reports one billing run.
type GenerationResult struct {
	Period    string    `json:"period"`
	Generated []Invoice `json:"generated"`
	Skipped   int       `json:"skipped"`
}

type Service interface {
	// GenerateInvoices runs the billing engine for a period: for every
	// subscriber it reads the ownership ledger, prorates the monthly fee
	// by active days and writes the invoice. Idempotent per (customer,
	// period). Partial failure bills the customers it can and reports
	// the rest.
	GenerateInvoices(ctx context.Context, period Period) (GenerationResult, error)
	GetByID(ctx context.Context, id string) (InvoiceDetail, error)
	List(ctx context.Context, req ListInvoiceRequest) (ListInvoiceResponse, error)
	// ActiveDays returns the merged count of calendar days within the
	// period on which the customer held at least one vehicle.
	ActiveDays(ctx context.Context, customerID snowflake.ID, period Period) (int, error)
	// CoverageDays is ActiveDays over an arbitrary [from, to] range.
	CoverageDays(ctx context.Context, customerID snowflake.ID, from, to time.Time) (int, error)
}

var (
	ErrGenerationLocked = errors.New("generation_in_progress")
	ErrNotFound         = errors.New("invoice_not_found")
	ErrInvalidID        = errors.New("invalid_invoice_id")
	ErrInvalidRange     = errors.New("invalid_range")
)
