package domain

import (
	"context"
	"errors"
)

type CreateCustomerRequest struct {
	Name            string
	Phone           string
	Address         string
	Subscriber      bool
	MonthlyFeeCents *int64
}

type UpdateCustomerRequest struct {
	ID              string
	Name            string
	Phone           string
	Address         string
	Subscriber      bool
	MonthlyFeeCents *int64
}

type ListCustomerRequest struct {
	Page       int
	PageSize   int
	Name       string
	Subscriber string
}

type ListCustomerResponse struct {
	Total     int64      `json:"total"`
	Customers []Customer `json:"customers"`
}

type Service interface {
	Create(ctx context.Context, req CreateCustomerRequest) (Customer, error)
	GetByID(ctx context.Context, id string) (Customer, error)
	Update(ctx context.Context, req UpdateCustomerRequest) (Customer, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, req ListCustomerRequest) (ListCustomerResponse, error)
	// FindOrCreate matches on (name, phone) and is used by the CSV importer.
	FindOrCreate(ctx context.Context, req CreateCustomerRequest) (Customer, error)
}

var (
	ErrInvalidName       = errors.New("invalid_name")
	ErrInvalidMonthlyFee = errors.New("invalid_monthly_fee")
	ErrInvalidID         = errors.New("invalid_id")
	ErrCustomerExists    = errors.New("customer_exists")
	ErrNotFound          = errors.New("not_found")
	ErrHasVehicles       = errors.New("customer_has_vehicles")
)
