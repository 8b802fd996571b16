package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/parqo/internal/customer/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, customer *domain.Customer) error {
	return db.WithContext(ctx).Create(customer).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, customer *domain.Customer) error {
	return db.WithContext(ctx).Save(customer).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	return db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Customer{}).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Customer, error) {
	var customer domain.Customer
	err := db.WithContext(ctx).Where("id = ?", id).First(&customer).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &customer, nil
}

func (r *repo) FindByNamePhone(ctx context.Context, db *gorm.DB, name, phone string) (*domain.Customer, error) {
	var customer domain.Customer
	err := db.WithContext(ctx).Where("name = ? AND phone = ?", name, phone).First(&customer).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &customer, nil
}

func (r *repo) HasDuplicate(ctx context.Context, db *gorm.DB, name, phone string, excludeID snowflake.ID) (bool, error) {
	stmt := db.WithContext(ctx).
		Model(&domain.Customer{}).
		Where("name = ? AND phone = ?", name, phone)
	if excludeID != 0 {
		stmt = stmt.Where("id <> ?", excludeID)
	}
	var count int64
	if err := stmt.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *repo) Exists(ctx context.Context, db *gorm.DB, id snowflake.ID) (bool, error) {
	var count int64
	err := db.WithContext(ctx).
		Model(&domain.Customer{}).
		Where("id = ?", id).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListCustomerFilter) ([]domain.Customer, int64, error) {
	stmt := db.WithContext(ctx).Model(&domain.Customer{})
	if filter.Name != "" {
		stmt = stmt.Where("name LIKE ?", "%"+filter.Name+"%")
	}
	switch filter.Subscriber {
	case domain.SubscriberOnly:
		stmt = stmt.Where("subscriber = ?", true)
	case domain.SubscriberNone:
		stmt = stmt.Where("subscriber = ?", false)
	}

	var total int64
	if err := stmt.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var customers []domain.Customer
	err := stmt.
		Order("name asc, id asc").
		Offset(filter.Offset).
		Limit(filter.Limit).
		Find(&customers).Error
	if err != nil {
		return nil, 0, err
	}
	return customers, total, nil
}

func (r *repo) ListSubscribers(ctx context.Context, db *gorm.DB) ([]domain.Customer, error) {
	var customers []domain.Customer
	err := db.WithContext(ctx).
		Where("subscriber = ?", true).
		Order("id asc").
		Find(&customers).Error
	if err != nil {
		return nil, err
	}
	return customers, nil
}

func (r *repo) CountVehicles(ctx context.Context, db *gorm.DB, customerID snowflake.ID) (int64, error) {
	var count int64
	err := db.WithContext(ctx).
		Table("vehicles").
		Where("customer_id = ?", customerID).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}
