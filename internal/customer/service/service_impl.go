package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/parqo/internal/clock"
	"github.com/smallbiznis/parqo/internal/customer/domain"
	"github.com/smallbiznis/parqo/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	repo  domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("customer.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateCustomerRequest) (domain.Customer, error) {
	name, phone, err := normalize(req.Name, req.Phone)
	if err != nil {
		return domain.Customer{}, err
	}
	if err := validFee(req.MonthlyFeeCents); err != nil {
		return domain.Customer{}, err
	}

	dup, err := s.repo.HasDuplicate(ctx, s.db, name, phone, 0)
	if err != nil {
		return domain.Customer{}, err
	}
	if dup {
		return domain.Customer{}, domain.ErrCustomerExists
	}

	now := s.clock.Now()
	customer := domain.Customer{
		ID:              s.genID.Generate(),
		Name:            name,
		Phone:           phone,
		Address:         strings.TrimSpace(req.Address),
		Subscriber:      req.Subscriber,
		MonthlyFeeCents: req.MonthlyFeeCents,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.repo.Insert(ctx, s.db, &customer); err != nil {
		return domain.Customer{}, err
	}

	s.log.Info("customer created",
		zap.String("customer_id", customer.ID.String()),
		zap.Bool("subscriber", customer.Subscriber),
	)
	return customer, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (domain.Customer, error) {
	customerID, err := parseID(id)
	if err != nil {
		return domain.Customer{}, err
	}

	customer, err := s.repo.FindByID(ctx, s.db, customerID)
	if err != nil {
		return domain.Customer{}, err
	}
	if customer == nil {
		return domain.Customer{}, domain.ErrNotFound
	}
	return *customer, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateCustomerRequest) (domain.Customer, error) {
	customerID, err := parseID(req.ID)
	if err != nil {
		return domain.Customer{}, err
	}
	name, phone, err := normalize(req.Name, req.Phone)
	if err != nil {
		return domain.Customer{}, err
	}
	if err := validFee(req.MonthlyFeeCents); err != nil {
		return domain.Customer{}, err
	}

	dup, err := s.repo.HasDuplicate(ctx, s.db, name, phone, customerID)
	if err != nil {
		return domain.Customer{}, err
	}
	if dup {
		return domain.Customer{}, domain.ErrCustomerExists
	}

	customer, err := s.repo.FindByID(ctx, s.db, customerID)
	if err != nil {
		return domain.Customer{}, err
	}
	if customer == nil {
		return domain.Customer{}, domain.ErrNotFound
	}

	customer.Name = name
	customer.Phone = phone
	customer.Address = strings.TrimSpace(req.Address)
	customer.Subscriber = req.Subscriber
	customer.MonthlyFeeCents = req.MonthlyFeeCents
	customer.UpdatedAt = s.clock.Now()

	if err := s.repo.Update(ctx, s.db, customer); err != nil {
		return domain.Customer{}, err
	}
	return *customer, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	customerID, err := parseID(id)
	if err != nil {
		return err
	}

	customer, err := s.repo.FindByID(ctx, s.db, customerID)
	if err != nil {
		return err
	}
	if customer == nil {
		return domain.ErrNotFound
	}

	vehicles, err := s.repo.CountVehicles(ctx, s.db, customerID)
	if err != nil {
		return err
	}
	if vehicles > 0 {
		return domain.ErrHasVehicles
	}

	return s.repo.Delete(ctx, s.db, customerID)
}

func (s *Service) List(ctx context.Context, req domain.ListCustomerRequest) (domain.ListCustomerResponse, error) {
	offset, limit := pagination.Normalize(req.Page, req.PageSize)

	subscriber := domain.SubscriberFilter(strings.TrimSpace(req.Subscriber))
	switch subscriber {
	case domain.SubscriberOnly, domain.SubscriberNone:
	default:
		subscriber = domain.SubscriberAll
	}

	customers, total, err := s.repo.List(ctx, s.db, domain.ListCustomerFilter{
		Name:       strings.TrimSpace(req.Name),
		Subscriber: subscriber,
		Offset:     offset,
		Limit:      limit,
	})
	if err != nil {
		return domain.ListCustomerResponse{}, err
	}

	return domain.ListCustomerResponse{Total: total, Customers: customers}, nil
}

func (s *Service) FindOrCreate(ctx context.Context, req domain.CreateCustomerRequest) (domain.Customer, error) {
	name, phone, err := normalize(req.Name, req.Phone)
	if err != nil {
		return domain.Customer{}, err
	}

	existing, err := s.repo.FindByNamePhone(ctx, s.db, name, phone)
	if err != nil {
		return domain.Customer{}, err
	}
	if existing != nil {
		return *existing, nil
	}
	return s.Create(ctx, req)
}

func normalize(name, phone string) (string, string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", "", domain.ErrInvalidName
	}
	return name, digits(phone), nil
}

// digits keeps only numeric characters, the canonical phone form.
func digits(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func validFee(fee *int64) error {
	if fee != nil && *fee < 0 {
		return domain.ErrInvalidMonthlyFee
	}
	return nil
}

func parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}
