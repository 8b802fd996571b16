package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	billingdomain "github.com/smallbiznis/parqo/internal/billing/domain"
	"github.com/smallbiznis/parqo/internal/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type billingStub struct {
	periods []string
	err     error
}

func (b *billingStub) GenerateInvoices(ctx context.Context, period billingdomain.Period) (billingdomain.GenerationResult, error) {
	b.periods = append(b.periods, period.String())
	return billingdomain.GenerationResult{Period: period.String()}, b.err
}

func (b *billingStub) GetByID(ctx context.Context, id string) (billingdomain.InvoiceDetail, error) {
	return billingdomain.InvoiceDetail{}, billingdomain.ErrNotFound
}

func (b *billingStub) List(ctx context.Context, req billingdomain.ListInvoiceRequest) (billingdomain.ListInvoiceResponse, error) {
	return billingdomain.ListInvoiceResponse{}, nil
}

func (b *billingStub) ActiveDays(ctx context.Context, customerID snowflake.ID, period billingdomain.Period) (int, error) {
	return 0, nil
}

func (b *billingStub) CoverageDays(ctx context.Context, customerID snowflake.ID, from, to time.Time) (int, error) {
	return 0, nil
}

func TestRunOnce_BillsPreviousMonth(t *testing.T) {
	stub := &billingStub{}
	fakeClock := clock.NewFakeClock(time.Date(2025, 7, 3, 4, 0, 0, 0, time.UTC))

	s, err := New(Params{Log: zap.NewNop(), BillingSvc: stub, Clock: fakeClock})
	require.NoError(t, err)

	require.NoError(t, s.RunOnce(context.Background()))
	assert.Equal(t, []string{"2025-06"}, stub.periods)

	// A month later the scheduler moves on with the clock.
	fakeClock.Advance(31 * 24 * time.Hour)
	require.NoError(t, s.RunOnce(context.Background()))
	assert.Equal(t, []string{"2025-06", "2025-07"}, stub.periods)
}

func TestRunOnce_YearBoundary(t *testing.T) {
	stub := &billingStub{}
	fakeClock := clock.NewFakeClock(time.Date(2026, 1, 1, 0, 30, 0, 0, time.UTC))

	s, err := New(Params{Log: zap.NewNop(), BillingSvc: stub, Clock: fakeClock})
	require.NoError(t, err)

	require.NoError(t, s.RunOnce(context.Background()))
	assert.Equal(t, []string{"2025-12"}, stub.periods)
}

func TestRunOnce_GenerationLockedIsNotAnError(t *testing.T) {
	stub := &billingStub{err: billingdomain.ErrGenerationLocked}
	s, err := New(Params{
		Log:        zap.NewNop(),
		BillingSvc: stub,
		Clock:      clock.NewFakeClock(time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)),
	})
	require.NoError(t, err)

	assert.NoError(t, s.RunOnce(context.Background()))
}

func TestRunOnce_PropagatesFailures(t *testing.T) {
	wantErr := errors.New("db down")
	stub := &billingStub{err: wantErr}
	s, err := New(Params{
		Log:        zap.NewNop(),
		BillingSvc: stub,
		Clock:      clock.NewFakeClock(time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)),
	})
	require.NoError(t, err)

	assert.ErrorIs(t, s.RunOnce(context.Background()), wantErr)
}

func TestNew_RequiresDependencies(t *testing.T) {
	_, err := New(Params{Log: zap.NewNop()})
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestConfigDefaults(t *testing.T) {
	cfg := Config{}.withDefaults()
	assert.Equal(t, 6*time.Hour, cfg.CheckInterval)

	cfg = Config{CheckInterval: time.Minute}.withDefaults()
	assert.Equal(t, time.Minute, cfg.CheckInterval)
}
