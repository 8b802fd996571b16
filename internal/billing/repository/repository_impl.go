package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/parqo/internal/billing/domain"
	"gorm.io/gorm"
)

type repository struct{}

func Provide() domain.Repository { return &repository{} }

func (r *repository) ExistsForPeriod(ctx context.Context, db *gorm.DB, customerID snowflake.ID, period string) (bool, error) {
	var count int64
	err := db.WithContext(ctx).
		Model(&domain.Invoice{}).
		Where("customer_id = ? AND period = ?", customerID, period).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *repository) Insert(ctx context.Context, db *gorm.DB, invoice *domain.Invoice, vehicleIDs []snowflake.ID) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(invoice).Error; err != nil {
			return err
		}
		if len(vehicleIDs) == 0 {
			return nil
		}

		links := make([]domain.InvoiceVehicle, 0, len(vehicleIDs))
		for _, vehicleID := range vehicleIDs {
			links = append(links, domain.InvoiceVehicle{InvoiceID: invoice.ID, VehicleID: vehicleID})
		}
		return tx.Create(&links).Error
	})
}

func (r *repository) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Invoice, error) {
	var invoice domain.Invoice
	err := db.WithContext(ctx).Where("id = ?", id).First(&invoice).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &invoice, nil
}

func (r *repository) List(ctx context.Context, db *gorm.DB, filter domain.ListInvoiceFilter) ([]domain.InvoiceSummary, int64, error) {
	q := db.WithContext(ctx).Model(&domain.Invoice{})
	if filter.CustomerID != 0 {
		q = q.Where("customer_id = ?", filter.CustomerID)
	}
	if filter.Period != "" {
		q = q.Where("period = ?", filter.Period)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var summaries []domain.InvoiceSummary
	err := q.
		Select("invoices.*, (SELECT COUNT(*) FROM invoice_vehicles iv WHERE iv.invoice_id = invoices.id) AS vehicle_count").
		Order("period desc, customer_id asc").
		Offset(filter.Offset).
		Limit(filter.Limit).
		Find(&summaries).Error
	return summaries, total, err
}

func (r *repository) ListPlates(ctx context.Context, db *gorm.DB, invoiceID snowflake.ID) ([]string, error) {
	var plates []string
	err := db.WithContext(ctx).
		Table("invoice_vehicles").
		Select("vehicles.plate").
		Joins("JOIN vehicles ON vehicles.id = invoice_vehicles.vehicle_id").
		Where("invoice_vehicles.invoice_id = ?", invoiceID).
		Order("vehicles.plate asc").
		Scan(&plates).Error
	return plates, err
}
