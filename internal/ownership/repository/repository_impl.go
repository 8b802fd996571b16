package repository

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/parqo/internal/ownership/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repository struct{}

func Provide() domain.Repository { return &repository{} }

func (r *repository) Insert(ctx context.Context, db *gorm.DB, interval *domain.OwnershipInterval) error {
	return db.WithContext(ctx).Create(interval).Error
}

func (r *repository) FindOpenByVehicleForUpdate(ctx context.Context, db *gorm.DB, vehicleID snowflake.ID) (*domain.OwnershipInterval, error) {
	var interval domain.OwnershipInterval
	err := forUpdate(db.WithContext(ctx)).
		Where("vehicle_id = ? AND end_at IS NULL", vehicleID).
		First(&interval).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &interval, nil
}

func (r *repository) Close(ctx context.Context, db *gorm.DB, id snowflake.ID, endAt time.Time) error {
	return db.WithContext(ctx).
		Model(&domain.OwnershipInterval{}).
		Where("id = ? AND end_at IS NULL", id).
		Update("end_at", endAt).Error
}

func (r *repository) ListOverlapping(ctx context.Context, db *gorm.DB, customerID snowflake.ID, from, to time.Time) ([]domain.OwnershipInterval, error) {
	var intervals []domain.OwnershipInterval
	err := db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Where("start_at <= ?", to).
		Where("end_at IS NULL OR end_at >= ?", from).
		Order("start_at asc, id asc").
		Find(&intervals).Error
	return intervals, err
}

func (r *repository) ListByVehicle(ctx context.Context, db *gorm.DB, vehicleID snowflake.ID) ([]domain.OwnershipInterval, error) {
	var intervals []domain.OwnershipInterval
	err := db.WithContext(ctx).
		Where("vehicle_id = ?", vehicleID).
		Order("start_at asc, id asc").
		Find(&intervals).Error
	return intervals, err
}

// forUpdate adds a row lock on dialects that support it. sqlite (used in
// tests) serializes writers on its own and rejects FOR UPDATE.
func forUpdate(db *gorm.DB) *gorm.DB {
	if db.Dialector.Name() == "sqlite" {
		return db
	}
	return db.Clauses(clause.Locking{Strength: "UPDATE"})
}
