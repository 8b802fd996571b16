package metrics

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Config configures the metrics provider.
type Config struct {
	Enabled          bool
	ExporterEndpoint string
	ExporterProtocol string
	ServiceName      string
	Environment      string
}

// Metrics exposes application-level instruments.
type Metrics struct {
	invoicesGenerated    metric.Int64Counter
	ownershipTransitions metric.Int64Counter
	importRows           metric.Int64Counter
}

// NewProvider configures and registers the meter provider.
func NewProvider(lc fx.Lifecycle, cfg Config, log *zap.Logger) (metric.MeterProvider, error) {
	if !cfg.Enabled {
		provider := noop.NewMeterProvider()
		otel.SetMeterProvider(provider)
		return provider, nil
	}

	exporter, err := newExporter(cfg.ExporterProtocol, cfg.ExporterEndpoint)
	if err != nil {
		return nil, err
	}

	reader := sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(10*time.Second))
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	otel.SetMeterProvider(provider)

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			log.Info("shutting down meter provider")
			return provider.Shutdown(ctx)
		},
	})

	log.Info("metrics initialized",
		zap.String("endpoint", cfg.ExporterEndpoint),
		zap.String("protocol", cfg.ExporterProtocol),
	)

	return provider, nil
}

// New configures the domain metrics instruments.
func New(cfg Config, provider metric.MeterProvider) (*Metrics, error) {
	name := strings.TrimSpace(cfg.ServiceName)
	if name == "" {
		name = "parqo"
	}
	meter := provider.Meter(name)

	invoicesGenerated, err := meter.Int64Counter("parqo_invoices_generated_total")
	if err != nil {
		return nil, err
	}
	ownershipTransitions, err := meter.Int64Counter("parqo_ownership_transitions_total")
	if err != nil {
		return nil, err
	}
	importRows, err := meter.Int64Counter("parqo_import_rows_total")
	if err != nil {
		return nil, err
	}

	return &Metrics{
		invoicesGenerated:    invoicesGenerated,
		ownershipTransitions: ownershipTransitions,
		importRows:           importRows,
	}, nil
}

// RecordInvoiceGenerated increments the invoice counter for a billing period.
func (m *Metrics) RecordInvoiceGenerated(ctx context.Context, period string) {
	if m == nil {
		return
	}
	m.invoicesGenerated.Add(ctx, 1, metric.WithAttributes(
		attribute.String("period", strings.TrimSpace(period)),
	))
}

// RecordOwnershipTransition increments the ledger transition counter.
// kind is "created", "changed" or "removed".
func (m *Metrics) RecordOwnershipTransition(ctx context.Context, kind string) {
	if m == nil {
		return
	}
	m.ownershipTransitions.Add(ctx, 1, metric.WithAttributes(
		attribute.String("kind", strings.TrimSpace(kind)),
	))
}

// RecordImportRow counts processed CSV import rows by outcome.
func (m *Metrics) RecordImportRow(ctx context.Context, ok bool) {
	if m == nil {
		return
	}
	outcome := "inserted"
	if !ok {
		outcome = "failed"
	}
	m.importRows.Add(ctx, 1, metric.WithAttributes(
		attribute.String("outcome", outcome),
	))
}

func newExporter(protocol, endpoint string) (sdkmetric.Exporter, error) {
	switch strings.ToLower(strings.TrimSpace(protocol)) {
	case "http", "http/protobuf":
		opts := []otlpmetrichttp.Option{otlpmetrichttp.WithInsecure()}
		if endpoint != "" {
			opts = append(opts, otlpmetrichttp.WithEndpoint(endpoint))
		}
		return otlpmetrichttp.New(context.Background(), opts...)
	case "", "grpc":
		opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithInsecure()}
		if endpoint != "" {
			opts = append(opts, otlpmetricgrpc.WithEndpoint(endpoint))
		}
		return otlpmetricgrpc.New(context.Background(), opts...)
	default:
		return nil, fmt.Errorf("unsupported otlp metric protocol %q", protocol)
	}
}
