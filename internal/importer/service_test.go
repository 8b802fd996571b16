package importer

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/smallbiznis/parqo/internal/clock"
	"github.com/smallbiznis/parqo/internal/config"
	customerdomain "github.com/smallbiznis/parqo/internal/customer/domain"
	customerrepo "github.com/smallbiznis/parqo/internal/customer/repository"
	customerservice "github.com/smallbiznis/parqo/internal/customer/service"
	ownershipdomain "github.com/smallbiznis/parqo/internal/ownership/domain"
	ownershiprepo "github.com/smallbiznis/parqo/internal/ownership/repository"
	ownershipservice "github.com/smallbiznis/parqo/internal/ownership/service"
	vehicledomain "github.com/smallbiznis/parqo/internal/vehicle/domain"
	vehiclerepo "github.com/smallbiznis/parqo/internal/vehicle/repository"
	vehicleservice "github.com/smallbiznis/parqo/internal/vehicle/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupImportTest(t *testing.T) (*gorm.DB, *Service) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&customerdomain.Customer{},
		&vehicledomain.Vehicle{},
		&ownershipdomain.OwnershipInterval{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	holder, err := config.NewStaticBillingConfigHolder(config.DefaultBillingConfig())
	require.NoError(t, err)

	fakeClock := clock.NewFakeClock(time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC))
	log := zap.NewNop()
	vehicleRepo := vehiclerepo.Provide()
	customerRepo := customerrepo.Provide()

	customerSvc := customerservice.New(customerservice.Params{
		DB:    db,
		Log:   log,
		GenID: node,
		Clock: fakeClock,
		Repo:  customerRepo,
	})
	ownershipSvc := ownershipservice.New(ownershipservice.Params{
		DB:           db,
		Log:          log,
		GenID:        node,
		Repo:         ownershiprepo.Provide(),
		CustomerRepo: customerRepo,
		VehicleRepo:  vehicleRepo,
	})
	vehicleSvc := vehicleservice.New(vehicleservice.Params{
		DB:           db,
		Log:          log,
		GenID:        node,
		Clock:        fakeClock,
		Billing:      holder,
		Repo:         vehicleRepo,
		CustomerRepo: customerRepo,
		Ownership:    ownershipSvc,
	})

	svc := New(Params{
		Log:       log,
		Customers: customerSvc,
		Vehicles:  vehicleSvc,
	})
	return db, svc
}

func TestImportCSV_HappyPath(t *testing.T) {
	db, svc := setupImportTest(t)

	csvData := strings.Join([]string{
		"placa,modelo,ano,cliente_identificador,cliente_nome,cliente_telefone,cliente_endereco,mensalista,valor_mensalidade",
		"ABC1D23,Onix,2022,c1,Maria Silva,(11) 99999-0001,Rua A 10,sim,\"300,00\"",
		"XYZ9A87,Gol,2019,c1,,,,,",
		"DEF4G56,Corolla,2021,c2,Joao Souza,11999990002,Rua B 20,true,150.50",
	}, "\n")

	summary, err := svc.ImportCSV(context.Background(), strings.NewReader(csvData))
	require.NoError(t, err)
	assert.Equal(t, 3, summary.Processed)
	assert.Equal(t, 3, summary.Inserted)
	assert.Empty(t, summary.Errors)

	// Two rows shared the c1 reference, so only two customers exist.
	var customers []customerdomain.Customer
	require.NoError(t, db.Order("name asc").Find(&customers).Error)
	require.Len(t, customers, 2)
	assert.Equal(t, "Joao Souza", customers[0].Name)
	assert.Equal(t, int64(15050), customers[0].FeeCents())
	assert.Equal(t, "Maria Silva", customers[1].Name)
	assert.Equal(t, int64(30000), customers[1].FeeCents())

	var vehicles []vehicledomain.Vehicle
	require.NoError(t, db.Find(&vehicles).Error)
	assert.Len(t, vehicles, 3)

	// Every imported vehicle has an open ownership interval.
	var open int64
	require.NoError(t, db.Model(&ownershipdomain.OwnershipInterval{}).
		Where("end_at IS NULL").Count(&open).Error)
	assert.Equal(t, int64(3), open)
}

func TestImportCSV_BadRowsReportedAndSkipped(t *testing.T) {
	db, svc := setupImportTest(t)

	csvData := strings.Join([]string{
		"placa,modelo,ano,cliente_identificador,cliente_nome,cliente_telefone,cliente_endereco,mensalista,valor_mensalidade",
		"ABC1D23,Onix,2022,c1,Maria Silva,11999990001,Rua A 10,sim,\"300,00\"",
		"BADPLATE,Uno,1999,c2,Jose Lima,11999990003,Rua C 30,nao,0",
		"DEF4G56,Fiesta,not-a-year,c3,Ana Rocha,11999990004,Rua D 40,sim,200.00",
		"ABC1D23,Onix,2022,c1,,,,,",
	}, "\n")

	summary, err := svc.ImportCSV(context.Background(), strings.NewReader(csvData))
	require.NoError(t, err)
	assert.Equal(t, 4, summary.Processed)
	assert.Equal(t, 1, summary.Inserted)
	require.Len(t, summary.Errors, 3)

	// Error lines are 1-based file positions, header included.
	assert.Equal(t, 3, summary.Errors[0].Line)
	assert.Equal(t, 4, summary.Errors[1].Line)
	assert.Equal(t, 5, summary.Errors[2].Line)

	var vehicles int64
	require.NoError(t, db.Model(&vehicledomain.Vehicle{}).Count(&vehicles).Error)
	assert.Equal(t, int64(1), vehicles)
}

func TestImportCSV_NoHeader(t *testing.T) {
	db, svc := setupImportTest(t)

	csvData := "ABC1D23,Onix,2022,c1,Maria Silva,11999990001,Rua A 10,sim,\"300,00\"\n"

	summary, err := svc.ImportCSV(context.Background(), strings.NewReader(csvData))
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Processed)
	assert.Equal(t, 1, summary.Inserted)

	var vehicles int64
	require.NoError(t, db.Model(&vehicledomain.Vehicle{}).Count(&vehicles).Error)
	assert.Equal(t, int64(1), vehicles)
}

func TestParseMoneyCents(t *testing.T) {
	cases := map[string]int64{
		"300,00": 30000,
		"300.00": 30000,
		"300":    30000,
		"150.5":  15050,
		"0":      0,
	}
	for input, want := range cases {
		got, err := parseMoneyCents(input)
		require.NoError(t, err, input)
		require.NotNil(t, got, input)
		assert.Equal(t, want, *got, input)
	}

	empty, err := parseMoneyCents("  ")
	require.NoError(t, err)
	assert.Nil(t, empty)

	_, err = parseMoneyCents("10.123")
	assert.Error(t, err)
}
