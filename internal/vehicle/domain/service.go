package domain

import (
	"context"
	"errors"

	ownershipdomain "github.com/smallbiznis/parqo/internal/ownership/domain"
)

type CreateVehicleRequest struct {
	Plate      string `json:"plate"`
	Model      string `json:"model"`
	Year       *int   `json:"year,omitempty"`
	CustomerID string `json:"customer_id"`
}

type UpdateVehicleRequest struct {
	ID         string `json:"-"`
	Plate      string `json:"plate"`
	Model      string `json:"model"`
	Year       *int   `json:"year,omitempty"`
	CustomerID string `json:"customer_id"`
}

type ListVehicleRequest struct {
	Plate      string `form:"plate"`
	CustomerID string `form:"customer_id"`
	Page       int    `form:"page"`
	PageSize   int    `form:"page_size"`
}

type ListVehicleResponse struct {
	Total    int64     `json:"total"`
	Vehicles []Vehicle `json:"vehicles"`
}

// VehicleHistory pairs a vehicle with its full ownership trail.
type VehicleHistory struct {
	Vehicle   Vehicle                             `json:"vehicle"`
	Intervals []ownershipdomain.OwnershipInterval `json:"intervals"`
}

type Service interface {
	Create(ctx context.Context, req CreateVehicleRequest) (Vehicle, error)
	GetByID(ctx context.Context, id string) (Vehicle, error)
	GetHistory(ctx context.Context, id string) (VehicleHistory, error)
	Update(ctx context.Context, req UpdateVehicleRequest) (Vehicle, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, req ListVehicleRequest) (ListVehicleResponse, error)
}

var (
	ErrInvalidPlate    = errors.New("invalid_plate")
	ErrPlateExists     = errors.New("plate_exists")
	ErrUnknownCustomer = errors.New("unknown_customer")
	ErrNotFound        = errors.New("vehicle_not_found")
	ErrInvalidID       = errors.New("invalid_vehicle_id")
)
