package service

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	customerdomain "github.com/smallbiznis/parqo/internal/customer/domain"
	"github.com/smallbiznis/parqo/internal/observability/metrics"
	"github.com/smallbiznis/parqo/internal/ownership/domain"
	vehicledomain "github.com/smallbiznis/parqo/internal/vehicle/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB           *gorm.DB
	Log          *zap.Logger
	GenID        *snowflake.Node
	Repo         domain.Repository
	CustomerRepo customerdomain.Repository
	VehicleRepo  vehicledomain.Repository
	Metrics      *metrics.Metrics `optional:"true"`
}

type Service struct {
	db           *gorm.DB
	log          *zap.Logger
	genID        *snowflake.Node
	repo         domain.Repository
	customerRepo customerdomain.Repository
	vehicleRepo  vehicledomain.Repository
	metrics      *metrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		db:           p.DB,
		log:          p.Log.Named("ownership.service"),
		genID:        p.GenID,
		repo:         p.Repo,
		customerRepo: p.CustomerRepo,
		vehicleRepo:  p.VehicleRepo,
		metrics:      p.Metrics,
	}
}

func (s *Service) RegisterVehicleCreated(ctx context.Context, tx *gorm.DB, vehicleID, customerID snowflake.ID, at time.Time) error {
	if at.IsZero() {
		return domain.ErrInvalidTimestamp
	}

	exists, err := s.customerRepo.Exists(ctx, tx, customerID)
	if err != nil {
		return err
	}
	if !exists {
		return domain.ErrUnknownCustomer
	}

	interval := domain.OwnershipInterval{
		ID:         s.genID.Generate(),
		VehicleID:  vehicleID,
		CustomerID: customerID,
		StartAt:    at.UTC(),
	}
	if err := s.repo.Insert(ctx, tx, &interval); err != nil {
		return err
	}

	s.metrics.RecordOwnershipTransition(ctx, "created")
	s.log.Info("ownership interval opened",
		zap.String("vehicle_id", vehicleID.String()),
		zap.String("customer_id", customerID.String()),
	)
	return nil
}

func (s *Service) RegisterOwnershipChange(ctx context.Context, tx *gorm.DB, vehicleID, newCustomerID snowflake.ID, at time.Time) (bool, error) {
	if at.IsZero() {
		return false, domain.ErrInvalidTimestamp
	}

	exists, err := s.customerRepo.Exists(ctx, tx, newCustomerID)
	if err != nil {
		return false, err
	}
	if !exists {
		return false, domain.ErrUnknownCustomer
	}

	open, err := s.repo.FindOpenByVehicleForUpdate(ctx, tx, vehicleID)
	if err != nil {
		return false, err
	}
	if open == nil {
		return false, domain.ErrNoOpenInterval
	}
	if open.CustomerID == newCustomerID {
		return false, nil
	}

	at = at.UTC()
	if at.Before(open.StartAt) {
		return false, domain.ErrInvalidTimestamp
	}

	if err := s.repo.Close(ctx, tx, open.ID, at); err != nil {
		return false, err
	}
	next := domain.OwnershipInterval{
		ID:         s.genID.Generate(),
		VehicleID:  vehicleID,
		CustomerID: newCustomerID,
		StartAt:    at,
	}
	if err := s.repo.Insert(ctx, tx, &next); err != nil {
		return false, err
	}
	if err := s.vehicleRepo.SetOwner(ctx, tx, vehicleID, newCustomerID, at); err != nil {
		return false, err
	}

	s.metrics.RecordOwnershipTransition(ctx, "changed")
	s.log.Info("ownership changed",
		zap.String("vehicle_id", vehicleID.String()),
		zap.String("from_customer_id", open.CustomerID.String()),
		zap.String("to_customer_id", newCustomerID.String()),
	)
	return true, nil
}

func (s *Service) RegisterVehicleRemoved(ctx context.Context, tx *gorm.DB, vehicleID snowflake.ID, at time.Time) error {
	if at.IsZero() {
		return domain.ErrInvalidTimestamp
	}

	open, err := s.repo.FindOpenByVehicleForUpdate(ctx, tx, vehicleID)
	if err != nil {
		return err
	}
	if open == nil {
		// Already closed; removal is idempotent on the ledger side.
		return nil
	}

	at = at.UTC()
	if at.Before(open.StartAt) {
		at = open.StartAt
	}
	if err := s.repo.Close(ctx, tx, open.ID, at); err != nil {
		return err
	}

	s.metrics.RecordOwnershipTransition(ctx, "removed")
	s.log.Info("ownership interval closed on removal",
		zap.String("vehicle_id", vehicleID.String()),
		zap.String("customer_id", open.CustomerID.String()),
	)
	return nil
}

func (s *Service) ListByCustomerOverlapping(ctx context.Context, customerID snowflake.ID, from, to time.Time) ([]domain.OwnershipInterval, error) {
	return s.repo.ListOverlapping(ctx, s.db, customerID, from.UTC(), to.UTC())
}

func (s *Service) ListByVehicle(ctx context.Context, vehicleID snowflake.ID) ([]domain.OwnershipInterval, error) {
	return s.repo.ListByVehicle(ctx, s.db, vehicleID)
}
