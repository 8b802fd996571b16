package repository

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/parqo/internal/vehicle/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repository struct{}

func Provide() domain.Repository { return &repository{} }

func (r *repository) Insert(ctx context.Context, db *gorm.DB, vehicle *domain.Vehicle) error {
	return db.WithContext(ctx).Create(vehicle).Error
}

func (r *repository) Update(ctx context.Context, db *gorm.DB, vehicle *domain.Vehicle) error {
	return db.WithContext(ctx).Save(vehicle).Error
}

func (r *repository) Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	return db.WithContext(ctx).Delete(&domain.Vehicle{}, "id = ?", id).Error
}

func (r *repository) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Vehicle, error) {
	return r.findOne(db.WithContext(ctx), "id = ?", id)
}

func (r *repository) FindByIDForUpdate(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Vehicle, error) {
	return r.findOne(forUpdate(db.WithContext(ctx)), "id = ?", id)
}

func (r *repository) FindByPlate(ctx context.Context, db *gorm.DB, plate string) (*domain.Vehicle, error) {
	return r.findOne(db.WithContext(ctx), "plate = ?", plate)
}

func (r *repository) findOne(db *gorm.DB, query string, args ...any) (*domain.Vehicle, error) {
	var vehicle domain.Vehicle
	err := db.Where(query, args...).First(&vehicle).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &vehicle, nil
}

func (r *repository) PlateExists(ctx context.Context, db *gorm.DB, plate string, excludeID snowflake.ID) (bool, error) {
	q := db.WithContext(ctx).Model(&domain.Vehicle{}).Where("plate = ?", plate)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *repository) SetOwner(ctx context.Context, db *gorm.DB, vehicleID, customerID snowflake.ID, at time.Time) error {
	return db.WithContext(ctx).
		Model(&domain.Vehicle{}).
		Where("id = ?", vehicleID).
		Updates(map[string]any{"customer_id": customerID, "updated_at": at}).Error
}

func (r *repository) List(ctx context.Context, db *gorm.DB, filter domain.ListVehicleFilter) ([]domain.Vehicle, int64, error) {
	q := db.WithContext(ctx).Model(&domain.Vehicle{})
	if filter.Plate != "" {
		q = q.Where("plate LIKE ?", "%"+filter.Plate+"%")
	}
	if filter.CustomerID != 0 {
		q = q.Where("customer_id = ?", filter.CustomerID)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var vehicles []domain.Vehicle
	err := q.Order("plate asc, id asc").
		Offset(filter.Offset).
		Limit(filter.Limit).
		Find(&vehicles).Error
	return vehicles, total, err
}

func (r *repository) ListByCustomer(ctx context.Context, db *gorm.DB, customerID snowflake.ID) ([]domain.Vehicle, error) {
	var vehicles []domain.Vehicle
	err := db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Order("plate asc").
		Find(&vehicles).Error
	return vehicles, err
}

func forUpdate(db *gorm.DB) *gorm.DB {
	if db.Dialector.Name() == "sqlite" {
		return db
	}
	return db.Clauses(clause.Locking{Strength: "UPDATE"})
}
