package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// SubscriberFilter narrows a listing to subscribers, non-subscribers or all.
type SubscriberFilter string

const (
	SubscriberAll  SubscriberFilter = "all"
	SubscriberOnly SubscriberFilter = "true"
	SubscriberNone SubscriberFilter = "false"
)

type ListCustomerFilter struct {
	Name       string
	Subscriber SubscriberFilter
	Offset     int
	Limit      int
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, customer *Customer) error
	Update(ctx context.Context, db *gorm.DB, customer *Customer) error
	Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Customer, error)
	FindByNamePhone(ctx context.Context, db *gorm.DB, name, phone string) (*Customer, error)
	// HasDuplicate reports another customer with the same name and phone,
	// excluding excludeID when non-zero.
	HasDuplicate(ctx context.Context, db *gorm.DB, name, phone string, excludeID snowflake.ID) (bool, error)
	Exists(ctx context.Context, db *gorm.DB, id snowflake.ID) (bool, error)
	List(ctx context.Context, db *gorm.DB, filter ListCustomerFilter) ([]Customer, int64, error)
	ListSubscribers(ctx context.Context, db *gorm.DB) ([]Customer, error)
	CountVehicles(ctx context.Context, db *gorm.DB, customerID snowflake.ID) (int64, error)
}
