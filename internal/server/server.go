package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/smallbiznis/parqo/internal/billing"
	billingdomain "github.com/smallbiznis/parqo/internal/billing/domain"
	"github.com/smallbiznis/parqo/internal/config"
	"github.com/smallbiznis/parqo/internal/customer"
	customerdomain "github.com/smallbiznis/parqo/internal/customer/domain"
	"github.com/smallbiznis/parqo/internal/importer"
	"github.com/smallbiznis/parqo/internal/observability"
	obsmiddleware "github.com/smallbiznis/parqo/internal/observability/logger"
	obsmetrics "github.com/smallbiznis/parqo/internal/observability/metrics"
	obstracing "github.com/smallbiznis/parqo/internal/observability/tracing"
	"github.com/smallbiznis/parqo/internal/ownership"
	"github.com/smallbiznis/parqo/internal/ratelimit"
	"github.com/smallbiznis/parqo/internal/vehicle"
	vehicledomain "github.com/smallbiznis/parqo/internal/vehicle/domain"
	"go.uber.org/fx"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	ratelimit.Module,
	customer.Module,
	vehicle.Module,
	ownership.Module,
	billing.Module,
	importer.Module,
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obsmiddleware.GinMiddleware(obsmiddleware.MiddlewareConfig{
		Debug: obsCfg.Debug(),
	}))
	r.Use(obstracing.GinMiddleware())
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	return NewEngine(obsCfg, httpMetrics)
}

func run(lc fx.Lifecycle, r *gin.Engine, cfg config.Config) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine      *gin.Engine
	cfg         config.Config
	customerSvc customerdomain.Service
	vehicleSvc  vehicledomain.Service
	billingSvc  billingdomain.Service
	importSvc   *importer.Service
}

type ServerParams struct {
	fx.In

	Gin         *gin.Engine
	Cfg         config.Config
	CustomerSvc customerdomain.Service
	VehicleSvc  vehicledomain.Service
	BillingSvc  billingdomain.Service
	ImportSvc   *importer.Service
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:      p.Gin,
		cfg:         p.Cfg,
		customerSvc: p.CustomerSvc,
		vehicleSvc:  p.VehicleSvc,
		billingSvc:  p.BillingSvc,
		importSvc:   p.ImportSvc,
	}

	svc.registerAPIRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api/v1")

	// -------- Customers --------
	api.GET("/customers", s.ListCustomers)
	api.POST("/customers", s.CreateCustomer)
	api.GET("/customers/:id", s.GetCustomerByID)
	api.GET("/customers/:id/coverage", s.GetCustomerCoverage)
	api.PUT("/customers/:id", s.UpdateCustomer)
	api.DELETE("/customers/:id", s.DeleteCustomer)

	// -------- Vehicles --------
	api.GET("/vehicles", s.ListVehicles)
	api.POST("/vehicles", s.CreateVehicle)
	api.GET("/vehicles/:id", s.GetVehicleByID)
	api.GET("/vehicles/:id/history", s.GetVehicleHistory)
	api.PUT("/vehicles/:id", s.UpdateVehicle)
	api.DELETE("/vehicles/:id", s.DeleteVehicle)

	// -------- Invoices --------
	api.GET("/invoices", s.ListInvoices)
	api.GET("/invoices/:id", s.GetInvoiceByID)
	api.GET("/invoices/:id/plates", s.ListInvoicePlates)
	api.POST("/invoices/generate", s.GenerateInvoices)

	// -------- Import --------
	api.POST("/import/csv", s.ImportCSV)
}
