package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/smallbiznis/parqo/internal/clock"
	"github.com/smallbiznis/parqo/internal/config"
	customerdomain "github.com/smallbiznis/parqo/internal/customer/domain"
	customerrepo "github.com/smallbiznis/parqo/internal/customer/repository"
	ownershipdomain "github.com/smallbiznis/parqo/internal/ownership/domain"
	ownershiprepo "github.com/smallbiznis/parqo/internal/ownership/repository"
	ownershipservice "github.com/smallbiznis/parqo/internal/ownership/service"
	"github.com/smallbiznis/parqo/internal/vehicle/domain"
	vehiclerepo "github.com/smallbiznis/parqo/internal/vehicle/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupVehicleTest(t *testing.T) (*gorm.DB, domain.Service, *clock.FakeClock, *snowflake.Node) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&customerdomain.Customer{},
		&domain.Vehicle{},
		&ownershipdomain.OwnershipInterval{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	holder, err := config.NewStaticBillingConfigHolder(config.DefaultBillingConfig())
	require.NoError(t, err)

	fakeClock := clock.NewFakeClock(time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC))
	vehicleRepo := vehiclerepo.Provide()
	customerRepo := customerrepo.Provide()

	ownershipSvc := ownershipservice.New(ownershipservice.Params{
		DB:           db,
		Log:          zap.NewNop(),
		GenID:        node,
		Repo:         ownershiprepo.Provide(),
		CustomerRepo: customerRepo,
		VehicleRepo:  vehicleRepo,
	})

	svc := New(Params{
		DB:           db,
		Log:          zap.NewNop(),
		GenID:        node,
		Clock:        fakeClock,
		Billing:      holder,
		Repo:         vehicleRepo,
		CustomerRepo: customerRepo,
		Ownership:    ownershipSvc,
	})
	return db, svc, fakeClock, node
}

func seedCustomer(t *testing.T, db *gorm.DB, node *snowflake.Node) customerdomain.Customer {
	t.Helper()
	customer := customerdomain.Customer{
		ID:         node.Generate(),
		Name:       fmt.Sprintf("customer-%s", node.Generate()),
		Subscriber: true,
	}
	require.NoError(t, db.Create(&customer).Error)
	return customer
}

func TestCreateVehicle_NormalizesPlateAndOpensLedger(t *testing.T) {
	db, svc, _, node := setupVehicleTest(t)
	customer := seedCustomer(t, db, node)

	vehicle, err := svc.Create(context.Background(), domain.CreateVehicleRequest{
		Plate:      "abc-1d23",
		Model:      "Onix",
		CustomerID: customer.ID.String(),
	})
	require.NoError(t, err)
	assert.Equal(t, "ABC1D23", vehicle.Plate)

	var intervals []ownershipdomain.OwnershipInterval
	require.NoError(t, db.Where("vehicle_id = ?", vehicle.ID).Find(&intervals).Error)
	require.Len(t, intervals, 1)
	assert.Equal(t, customer.ID, intervals[0].CustomerID)
	assert.Nil(t, intervals[0].EndAt)
}

func TestCreateVehicle_LegacyPlateAccepted(t *testing.T) {
	db, svc, _, node := setupVehicleTest(t)
	customer := seedCustomer(t, db, node)

	vehicle, err := svc.Create(context.Background(), domain.CreateVehicleRequest{
		Plate:      "AbC 1234",
		CustomerID: customer.ID.String(),
	})
	require.NoError(t, err)
	assert.Equal(t, "ABC1234", vehicle.Plate)
}

func TestCreateVehicle_InvalidPlate(t *testing.T) {
	db, svc, _, node := setupVehicleTest(t)
	customer := seedCustomer(t, db, node)

	_, err := svc.Create(context.Background(), domain.CreateVehicleRequest{
		Plate:      "12345",
		CustomerID: customer.ID.String(),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidPlate)
}

func TestCreateVehicle_DuplicatePlate(t *testing.T) {
	db, svc, _, node := setupVehicleTest(t)
	customer := seedCustomer(t, db, node)

	_, err := svc.Create(context.Background(), domain.CreateVehicleRequest{
		Plate:      "ABC1D23",
		CustomerID: customer.ID.String(),
	})
	require.NoError(t, err)

	// Same plate modulo formatting.
	_, err = svc.Create(context.Background(), domain.CreateVehicleRequest{
		Plate:      "abc-1d23",
		CustomerID: customer.ID.String(),
	})
	assert.ErrorIs(t, err, domain.ErrPlateExists)
}

func TestCreateVehicle_UnknownCustomer(t *testing.T) {
	_, svc, _, node := setupVehicleTest(t)

	_, err := svc.Create(context.Background(), domain.CreateVehicleRequest{
		Plate:      "ABC1D23",
		CustomerID: node.Generate().String(),
	})
	assert.ErrorIs(t, err, domain.ErrUnknownCustomer)
}

func TestUpdateVehicle_OwnerChangeWritesLedger(t *testing.T) {
	db, svc, fakeClock, node := setupVehicleTest(t)
	seller := seedCustomer(t, db, node)
	buyer := seedCustomer(t, db, node)

	vehicle, err := svc.Create(context.Background(), domain.CreateVehicleRequest{
		Plate:      "ABC1D23",
		Model:      "Onix",
		CustomerID: seller.ID.String(),
	})
	require.NoError(t, err)

	fakeClock.Advance(14 * 24 * time.Hour)
	updated, err := svc.Update(context.Background(), domain.UpdateVehicleRequest{
		ID:         vehicle.ID.String(),
		Plate:      "ABC1D23",
		Model:      "Onix LT",
		CustomerID: buyer.ID.String(),
	})
	require.NoError(t, err)
	assert.Equal(t, buyer.ID, updated.CustomerID)
	assert.Equal(t, "Onix LT", updated.Model)

	var intervals []ownershipdomain.OwnershipInterval
	require.NoError(t, db.Where("vehicle_id = ?", vehicle.ID).Order("start_at asc").Find(&intervals).Error)
	require.Len(t, intervals, 2)
	assert.NotNil(t, intervals[0].EndAt)
	assert.Equal(t, seller.ID, intervals[0].CustomerID)
	assert.Nil(t, intervals[1].EndAt)
	assert.Equal(t, buyer.ID, intervals[1].CustomerID)
}

func TestDeleteVehicle_ClosesLedgerAndKeepsHistory(t *testing.T) {
	db, svc, fakeClock, node := setupVehicleTest(t)
	customer := seedCustomer(t, db, node)

	vehicle, err := svc.Create(context.Background(), domain.CreateVehicleRequest{
		Plate:      "ABC1D23",
		CustomerID: customer.ID.String(),
	})
	require.NoError(t, err)

	fakeClock.Advance(10 * 24 * time.Hour)
	require.NoError(t, svc.Delete(context.Background(), vehicle.ID.String()))

	_, err = svc.GetByID(context.Background(), vehicle.ID.String())
	assert.ErrorIs(t, err, domain.ErrNotFound)

	// The closed interval stays behind for billing.
	var intervals []ownershipdomain.OwnershipInterval
	require.NoError(t, db.Where("vehicle_id = ?", vehicle.ID).Find(&intervals).Error)
	require.Len(t, intervals, 1)
	assert.NotNil(t, intervals[0].EndAt)
}

func TestListVehicles_FilterByPlateFragment(t *testing.T) {
	db, svc, _, node := setupVehicleTest(t)
	customer := seedCustomer(t, db, node)

	for _, plate := range []string{"ABC1D23", "XYZ9A87"} {
		_, err := svc.Create(context.Background(), domain.CreateVehicleRequest{
			Plate:      plate,
			CustomerID: customer.ID.String(),
		})
		require.NoError(t, err)
	}

	resp, err := svc.List(context.Background(), domain.ListVehicleRequest{Plate: "xyz"})
	require.NoError(t, err)
	require.Len(t, resp.Vehicles, 1)
	assert.Equal(t, "XYZ9A87", resp.Vehicles[0].Plate)
}
