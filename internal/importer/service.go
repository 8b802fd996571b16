// Package importer loads vehicles and their owners from CSV files.
package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	customerdomain "github.com/smallbiznis/parqo/internal/customer/domain"
	"github.com/smallbiznis/parqo/internal/observability/metrics"
	vehicledomain "github.com/smallbiznis/parqo/internal/vehicle/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Expected column order. A header row matching the first column name is
// skipped.
const expectedColumns = 9

// RowError is one rejected CSV row.
type RowError struct {
	Line    int    `json:"line"`
	Message string `json:"message"`
}

// Summary reports an import run. Rows are independent: a bad row is
// recorded and the run continues.
type Summary struct {
	Processed int        `json:"processed"`
	Inserted  int        `json:"inserted"`
	Errors    []RowError `json:"errors,omitempty"`
}

type Params struct {
	fx.In

	Log       *zap.Logger
	Customers customerdomain.Service
	Vehicles  vehicledomain.Service
	Metrics   *metrics.Metrics `optional:"true"`
}

type Service struct {
	log       *zap.Logger
	customers customerdomain.Service
	vehicles  vehicledomain.Service
	metrics   *metrics.Metrics
}

func New(p Params) *Service {
	return &Service{
		log:       p.Log.Named("importer"),
		customers: p.Customers,
		vehicles:  p.Vehicles,
		metrics:   p.Metrics,
	}
}

// ImportCSV reads rows of the form
//
//	plate,model,year,customer_ref,customer_name,customer_phone,customer_address,subscriber,monthly_fee
//
// resolving each row's customer (created on first sight, matched on
// name+phone afterwards) and registering the vehicle under them.
// customer_ref lets several rows in one file share a customer without
// repeating identical name+phone values.
func (s *Service) ImportCSV(ctx context.Context, r io.Reader) (Summary, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var summary Summary
	refs := make(map[string]string)
	line := 0

	for {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			summary.Errors = append(summary.Errors, RowError{Line: line, Message: err.Error()})
			s.metrics.RecordImportRow(ctx, false)
			continue
		}
		if line == 1 && isHeader(record) {
			continue
		}

		summary.Processed++
		if err := s.importRow(ctx, record, refs); err != nil {
			summary.Errors = append(summary.Errors, RowError{Line: line, Message: err.Error()})
			s.metrics.RecordImportRow(ctx, false)
			continue
		}
		summary.Inserted++
		s.metrics.RecordImportRow(ctx, true)
	}

	s.log.Info("csv import finished",
		zap.Int("processed", summary.Processed),
		zap.Int("inserted", summary.Inserted),
		zap.Int("errors", len(summary.Errors)),
	)
	return summary, nil
}

func (s *Service) importRow(ctx context.Context, record []string, refs map[string]string) error {
	if len(record) != expectedColumns {
		return fmt.Errorf("expected %d columns, got %d", expectedColumns, len(record))
	}

	plate := record[0]
	model := record[1]
	year, err := parseYear(record[2])
	if err != nil {
		return err
	}
	ref := strings.TrimSpace(record[3])

	customerID, ok := refs[ref]
	if !ok || ref == "" {
		subscriber, err := parseBool(record[7])
		if err != nil {
			return fmt.Errorf("subscriber: %w", err)
		}
		fee, err := parseMoneyCents(record[8])
		if err != nil {
			return fmt.Errorf("monthly fee: %w", err)
		}

		customer, err := s.customers.FindOrCreate(ctx, customerdomain.CreateCustomerRequest{
			Name:            record[4],
			Phone:           record[5],
			Address:         record[6],
			Subscriber:      subscriber,
			MonthlyFeeCents: fee,
		})
		if err != nil {
			return err
		}
		customerID = customer.ID.String()
		if ref != "" {
			refs[ref] = customerID
		}
	}

	_, err = s.vehicles.Create(ctx, vehicledomain.CreateVehicleRequest{
		Plate:      plate,
		Model:      model,
		Year:       year,
		CustomerID: customerID,
	})
	return err
}

func isHeader(record []string) bool {
	if len(record) == 0 {
		return false
	}
	first := strings.ToLower(strings.TrimSpace(record[0]))
	return first == "plate" || first == "placa"
}

func parseYear(value string) (*int, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	year, err := strconv.Atoi(value)
	if err != nil {
		return nil, fmt.Errorf("year: %w", err)
	}
	return &year, nil
}

func parseBool(value string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "0", "false", "nao", "não", "n":
		return false, nil
	case "1", "true", "sim", "s":
		return true, nil
	}
	return false, fmt.Errorf("unrecognized boolean %q", value)
}

// parseMoneyCents parses a decimal amount ("300.00", also "300,00") into
// integer cents. More than two fraction digits is rejected rather than
// silently rounded.
func parseMoneyCents(value string) (*int64, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	value = strings.ReplaceAll(value, ",", ".")

	whole, frac, _ := strings.Cut(value, ".")
	if len(frac) > 2 {
		return nil, fmt.Errorf("too many decimal places in %q", value)
	}
	for len(frac) < 2 {
		frac += "0"
	}

	units, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("amount %q: %w", value, err)
	}
	cents, err := strconv.ParseInt(frac, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("amount %q: %w", value, err)
	}

	total := units*100 + cents
	if units < 0 || strings.HasPrefix(whole, "-") {
		total = units*100 - cents
	}
	return &total, nil
}
