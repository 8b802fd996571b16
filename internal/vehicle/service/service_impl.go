package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/parqo/internal/clock"
	"github.com/smallbiznis/parqo/internal/config"
	customerdomain "github.com/smallbiznis/parqo/internal/customer/domain"
	ownershipdomain "github.com/smallbiznis/parqo/internal/ownership/domain"
	"github.com/smallbiznis/parqo/internal/plate"
	"github.com/smallbiznis/parqo/internal/vehicle/domain"
	"github.com/smallbiznis/parqo/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB           *gorm.DB
	Log          *zap.Logger
	GenID        *snowflake.Node
	Clock        clock.Clock
	Billing      *config.BillingConfigHolder
	Repo         domain.Repository
	CustomerRepo customerdomain.Repository
	Ownership    ownershipdomain.Service
}

type Service struct {
	db           *gorm.DB
	log          *zap.Logger
	genID        *snowflake.Node
	clock        clock.Clock
	billing      *config.BillingConfigHolder
	repo         domain.Repository
	customerRepo customerdomain.Repository
	ownership    ownershipdomain.Service
}

func New(p Params) domain.Service {
	return &Service{
		db:           p.DB,
		log:          p.Log.Named("vehicle.service"),
		genID:        p.GenID,
		clock:        p.Clock,
		billing:      p.Billing,
		repo:         p.Repo,
		customerRepo: p.CustomerRepo,
		ownership:    p.Ownership,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateVehicleRequest) (domain.Vehicle, error) {
	canonical, err := s.canonicalPlate(req.Plate)
	if err != nil {
		return domain.Vehicle{}, err
	}
	customerID, err := parseCustomerID(req.CustomerID)
	if err != nil {
		return domain.Vehicle{}, err
	}

	now := s.clock.Now()
	vehicle := domain.Vehicle{
		ID:         s.genID.Generate(),
		Plate:      canonical,
		Model:      strings.TrimSpace(req.Model),
		Year:       req.Year,
		CustomerID: customerID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		exists, err := s.customerRepo.Exists(ctx, tx, customerID)
		if err != nil {
			return err
		}
		if !exists {
			return domain.ErrUnknownCustomer
		}

		taken, err := s.repo.PlateExists(ctx, tx, canonical, 0)
		if err != nil {
			return err
		}
		if taken {
			return domain.ErrPlateExists
		}

		if err := s.repo.Insert(ctx, tx, &vehicle); err != nil {
			return err
		}
		return s.ownership.RegisterVehicleCreated(ctx, tx, vehicle.ID, customerID, now)
	})
	if err != nil {
		return domain.Vehicle{}, err
	}

	s.log.Info("vehicle registered",
		zap.String("vehicle_id", vehicle.ID.String()),
		zap.String("plate", vehicle.Plate),
		zap.String("customer_id", customerID.String()),
	)
	return vehicle, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (domain.Vehicle, error) {
	vehicleID, err := parseID(id)
	if err != nil {
		return domain.Vehicle{}, err
	}

	vehicle, err := s.repo.FindByID(ctx, s.db, vehicleID)
	if err != nil {
		return domain.Vehicle{}, err
	}
	if vehicle == nil {
		return domain.Vehicle{}, domain.ErrNotFound
	}
	return *vehicle, nil
}

func (s *Service) GetHistory(ctx context.Context, id string) (domain.VehicleHistory, error) {
	vehicle, err := s.GetByID(ctx, id)
	if err != nil {
		return domain.VehicleHistory{}, err
	}

	intervals, err := s.ownership.ListByVehicle(ctx, vehicle.ID)
	if err != nil {
		return domain.VehicleHistory{}, err
	}
	return domain.VehicleHistory{Vehicle: vehicle, Intervals: intervals}, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateVehicleRequest) (domain.Vehicle, error) {
	vehicleID, err := parseID(req.ID)
	if err != nil {
		return domain.Vehicle{}, err
	}
	canonical, err := s.canonicalPlate(req.Plate)
	if err != nil {
		return domain.Vehicle{}, err
	}
	customerID, err := parseCustomerID(req.CustomerID)
	if err != nil {
		return domain.Vehicle{}, err
	}

	var updated domain.Vehicle
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		vehicle, err := s.repo.FindByIDForUpdate(ctx, tx, vehicleID)
		if err != nil {
			return err
		}
		if vehicle == nil {
			return domain.ErrNotFound
		}

		if canonical != vehicle.Plate {
			taken, err := s.repo.PlateExists(ctx, tx, canonical, vehicleID)
			if err != nil {
				return err
			}
			if taken {
				return domain.ErrPlateExists
			}
		}

		now := s.clock.Now()
		vehicle.Plate = canonical
		vehicle.Model = strings.TrimSpace(req.Model)
		vehicle.Year = req.Year
		vehicle.UpdatedAt = now
		if err := s.repo.Update(ctx, tx, vehicle); err != nil {
			return err
		}

		// The ledger writer flips the owner pointer when the customer
		// actually changes; a same-owner update is a plain field edit.
		if _, err := s.ownership.RegisterOwnershipChange(ctx, tx, vehicleID, customerID, now); err != nil {
			return err
		}

		vehicle.CustomerID = customerID
		updated = *vehicle
		return nil
	})
	if err != nil {
		return domain.Vehicle{}, err
	}
	return updated, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	vehicleID, err := parseID(id)
	if err != nil {
		return err
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		vehicle, err := s.repo.FindByIDForUpdate(ctx, tx, vehicleID)
		if err != nil {
			return err
		}
		if vehicle == nil {
			return domain.ErrNotFound
		}

		if err := s.ownership.RegisterVehicleRemoved(ctx, tx, vehicleID, s.clock.Now()); err != nil {
			return err
		}
		return s.repo.Delete(ctx, tx, vehicleID)
	})
}

func (s *Service) List(ctx context.Context, req domain.ListVehicleRequest) (domain.ListVehicleResponse, error) {
	offset, limit := pagination.Normalize(req.Page, req.PageSize)

	filter := domain.ListVehicleFilter{
		Plate:  plate.Normalize(req.Plate),
		Offset: offset,
		Limit:  limit,
	}
	if raw := strings.TrimSpace(req.CustomerID); raw != "" {
		customerID, err := parseCustomerID(raw)
		if err != nil {
			return domain.ListVehicleResponse{}, err
		}
		filter.CustomerID = customerID
	}

	vehicles, total, err := s.repo.List(ctx, s.db, filter)
	if err != nil {
		return domain.ListVehicleResponse{}, err
	}
	return domain.ListVehicleResponse{Total: total, Vehicles: vehicles}, nil
}

func (s *Service) canonicalPlate(raw string) (string, error) {
	canonical := plate.Normalize(raw)
	if !s.billing.PlateValidator().Valid(canonical) {
		return "", domain.ErrInvalidPlate
	}
	return canonical, nil
}

func parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}

func parseCustomerID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrUnknownCustomer
	}
	return id, nil
}
