package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/parqo/internal/billing/domain"
	"github.com/smallbiznis/parqo/internal/clock"
	"github.com/smallbiznis/parqo/internal/config"
	customerdomain "github.com/smallbiznis/parqo/internal/customer/domain"
	"github.com/smallbiznis/parqo/internal/observability/metrics"
	ownershipdomain "github.com/smallbiznis/parqo/internal/ownership/domain"
	"github.com/smallbiznis/parqo/internal/ratelimit"
	"github.com/smallbiznis/parqo/pkg/db"
	"github.com/smallbiznis/parqo/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB            *gorm.DB
	Log           *zap.Logger
	GenID         *snowflake.Node
	Clock         clock.Clock
	Billing       *config.BillingConfigHolder
	Repo          domain.Repository
	CustomerRepo  customerdomain.Repository
	OwnershipRepo ownershipdomain.Repository
	Locker        *ratelimit.Locker `optional:"true"`
	Metrics       *metrics.Metrics  `optional:"true"`
}

type Service struct {
	db            *gorm.DB
	log           *zap.Logger
	genID         *snowflake.Node
	clock         clock.Clock
	billing       *config.BillingConfigHolder
	repo          domain.Repository
	customerRepo  customerdomain.Repository
	ownershipRepo ownershipdomain.Repository
	locker        *ratelimit.Locker
	metrics       *metrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		db:            p.DB,
		log:           p.Log.Named("billing.service"),
		genID:         p.GenID,
		clock:         p.Clock,
		billing:       p.Billing,
		repo:          p.Repo,
		customerRepo:  p.CustomerRepo,
		ownershipRepo: p.OwnershipRepo,
		locker:        p.Locker,
		metrics:       p.Metrics,
	}
}

func (s *Service) GenerateInvoices(ctx context.Context, period domain.Period) (domain.GenerationResult, error) {
	result := domain.GenerationResult{Period: period.String()}

	if s.locker != nil {
		key := "billing:generate:" + period.String()
		token, ok, err := s.locker.TryLock(ctx, key, s.billing.Get().GenerationLockTTL())
		if err != nil {
			return result, err
		}
		if !ok {
			return result, domain.ErrGenerationLocked
		}
		defer func() {
			if err := s.locker.Release(context.WithoutCancel(ctx), key, token); err != nil {
				s.log.Warn("failed to release generation lock", zap.Error(err))
			}
		}()
	}

	subscribers, err := s.customerRepo.ListSubscribers(ctx, s.db)
	if err != nil {
		return result, err
	}

	var failures []error
	for _, customer := range subscribers {
		if err := ctx.Err(); err != nil {
			failures = append(failures, err)
			break
		}

		invoice, generated, err := s.generateOne(ctx, customer, period)
		if err != nil {
			failures = append(failures, fmt.Errorf("customer %s: %w", customer.ID, err))
			continue
		}
		if !generated {
			result.Skipped++
			continue
		}
		result.Generated = append(result.Generated, invoice)
		s.metrics.RecordInvoiceGenerated(ctx, period.String())
	}

	s.log.Info("billing run finished",
		zap.String("period", period.String()),
		zap.Int("generated", len(result.Generated)),
		zap.Int("skipped", result.Skipped),
		zap.Int("failed", len(failures)),
	)
	return result, errors.Join(failures...)
}

// generateOne bills a single customer for the period. Returns false when
// the customer has nothing to bill or was billed already.
func (s *Service) generateOne(ctx context.Context, customer customerdomain.Customer, period domain.Period) (domain.Invoice, bool, error) {
	exists, err := s.repo.ExistsForPeriod(ctx, s.db, customer.ID, period.String())
	if err != nil {
		return domain.Invoice{}, false, err
	}
	if exists {
		return domain.Invoice{}, false, nil
	}

	intervals, err := s.ownershipRepo.ListOverlapping(ctx, s.db, customer.ID, period.Start(), period.End())
	if err != nil {
		return domain.Invoice{}, false, err
	}

	days := activeDays(intervals, period)
	if days == 0 {
		return domain.Invoice{}, false, nil
	}

	totalDays := period.Days()
	amount := prorate(customer.FeeCents(), days, totalDays)

	invoice := domain.Invoice{
		ID:          s.genID.Generate(),
		CustomerID:  customer.ID,
		Period:      period.String(),
		AmountCents: amount,
		Note:        fmt.Sprintf("%d/%d active days", days, totalDays),
		Metadata: datatypes.JSONMap{
			"active_days":       days,
			"total_days":        totalDays,
			"monthly_fee_cents": customer.FeeCents(),
		},
		CreatedAt: s.clock.Now(),
	}

	if err := s.repo.Insert(ctx, s.db, &invoice, contributingVehicles(intervals, period)); err != nil {
		// A concurrent run won the race for this (customer, period).
		if db.IsDuplicateKeyErr(err) {
			return domain.Invoice{}, false, nil
		}
		return domain.Invoice{}, false, err
	}
	return invoice, true, nil
}

// contributingVehicles returns the distinct vehicles whose intervals
// touch the period, in first-seen order.
func contributingVehicles(intervals []ownershipdomain.OwnershipInterval, period domain.Period) []snowflake.ID {
	seen := make(map[snowflake.ID]struct{}, len(intervals))
	var ids []snowflake.ID
	for _, interval := range intervals {
		if _, ok := clipToPeriod(interval, period); !ok {
			continue
		}
		if _, dup := seen[interval.VehicleID]; dup {
			continue
		}
		seen[interval.VehicleID] = struct{}{}
		ids = append(ids, interval.VehicleID)
	}
	return ids
}

func (s *Service) GetByID(ctx context.Context, id string) (domain.InvoiceDetail, error) {
	invoiceID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil || invoiceID == 0 {
		return domain.InvoiceDetail{}, domain.ErrInvalidID
	}

	invoice, err := s.repo.FindByID(ctx, s.db, invoiceID)
	if err != nil {
		return domain.InvoiceDetail{}, err
	}
	if invoice == nil {
		return domain.InvoiceDetail{}, domain.ErrNotFound
	}

	plates, err := s.repo.ListPlates(ctx, s.db, invoiceID)
	if err != nil {
		return domain.InvoiceDetail{}, err
	}
	return domain.InvoiceDetail{Invoice: *invoice, Plates: plates}, nil
}

func (s *Service) List(ctx context.Context, req domain.ListInvoiceRequest) (domain.ListInvoiceResponse, error) {
	offset, limit := pagination.Normalize(req.Page, req.PageSize)

	filter := domain.ListInvoiceFilter{
		Offset: offset,
		Limit:  limit,
	}
	if raw := strings.TrimSpace(req.CustomerID); raw != "" {
		customerID, err := snowflake.ParseString(raw)
		if err != nil || customerID == 0 {
			return domain.ListInvoiceResponse{}, customerdomain.ErrInvalidID
		}
		filter.CustomerID = customerID
	}
	if raw := strings.TrimSpace(req.Period); raw != "" {
		period, err := domain.ParsePeriod(raw)
		if err != nil {
			return domain.ListInvoiceResponse{}, err
		}
		filter.Period = period.String()
	}

	invoices, total, err := s.repo.List(ctx, s.db, filter)
	if err != nil {
		return domain.ListInvoiceResponse{}, err
	}
	return domain.ListInvoiceResponse{Total: total, Invoices: invoices}, nil
}

func (s *Service) ActiveDays(ctx context.Context, customerID snowflake.ID, period domain.Period) (int, error) {
	return s.CoverageDays(ctx, customerID, period.Start(), period.End())
}

func (s *Service) CoverageDays(ctx context.Context, customerID snowflake.ID, from, to time.Time) (int, error) {
	from, to = from.UTC(), to.UTC()
	if to.Before(from) {
		return 0, domain.ErrInvalidRange
	}

	intervals, err := s.ownershipRepo.ListOverlapping(ctx, s.db, customerID, from, to)
	if err != nil {
		return 0, err
	}
	return activeDaysBetween(intervals, dayIndex(from), dayIndex(to)), nil
}
