// Package service owns the imported dataset and the active filters. Every
// mutation is written through to the key-value store.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/transport-report/internal/domain/import/parser"
	"github.com/FACorreiaa/transport-report/internal/domain/record"
	"github.com/FACorreiaa/transport-report/internal/domain/report"
	"github.com/FACorreiaa/transport-report/pkg/metrics"
	"github.com/FACorreiaa/transport-report/pkg/storage"
)

// Store keys
const (
	DataKey     = "transportData"
	FileNameKey = "transportFileName"
)

const tracerName = "github.com/FACorreiaa/transport-report/internal/domain/report/service"

// ErrInvalidFile wraps every failure to read an uploaded spreadsheet
var ErrInvalidFile = errors.New("invalid spreadsheet")

// ImportResult describes a completed import
type ImportResult struct {
	FileName    string             `json:"file_name"`
	Records     int                `json:"records"`
	Diagnostics parser.Diagnostics `json:"diagnostics"`
}

// Service orchestrates imports, filtering and deletions over one dataset
type Service struct {
	store     storage.Store
	extractor *parser.Extractor
	opts      report.Options
	logger    *slog.Logger
	metrics   *metrics.Metrics
	tracer    trace.Tracer

	mu          sync.RWMutex
	records     []*record.Record
	fileName    string
	selection   report.Selection
	diagnostics *parser.Diagnostics
	snapshot    *report.Snapshot
}

// NewService creates a new service with an empty dataset. Call Load to
// restore the persisted one.
func NewService(store storage.Store, extractor *parser.Extractor, opts report.Options, logger *slog.Logger, m *metrics.Metrics) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Service{
		store:     store,
		extractor: extractor,
		opts:      opts,
		logger:    logger,
		metrics:   m,
		tracer:    otel.Tracer(tracerName),
	}
	s.rebuild()
	return s
}

// Load restores the dataset from the store. Malformed persisted data is
// discarded and the dataset starts empty.
func (s *Service) Load(ctx context.Context) error {
	ctx, span := s.tracer.Start(ctx, "report.Load")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.store.Get(ctx, DataKey)
	if errors.Is(err, storage.ErrNotFound) {
		s.reset()
		return nil
	}
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to load dataset: %w", err)
	}

	records, err := decodeRecords(data)
	if err != nil {
		s.logger.WarnContext(ctx, "discarding malformed persisted dataset",
			slog.String("key", DataKey),
			slog.Int("bytes", len(data)),
			slog.Any("error", err))
		s.reset()
		return s.save(ctx)
	}

	fileName := ""
	if name, err := s.store.Get(ctx, FileNameKey); err == nil {
		fileName = string(name)
	} else if !errors.Is(err, storage.ErrNotFound) {
		s.logger.WarnContext(ctx, "failed to load file name", slog.Any("error", err))
	}

	s.records = records
	s.fileName = fileName
	s.selection = report.Selection{}
	s.diagnostics = nil
	s.rebuild()

	span.SetAttributes(attribute.Int("records", len(records)))
	s.logger.InfoContext(ctx, "dataset restored",
		slog.String("file_name", fileName),
		slog.Int("records", len(records)))
	return nil
}

func decodeRecords(data []byte) ([]*record.Record, error) {
	var raw []*record.Record
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	records := raw[:0]
	for _, r := range raw {
		if r != nil {
			records = append(records, r)
		}
	}
	return records, nil
}

// Import extracts the records of an uploaded file and replaces the dataset.
// The selection is reset. On extraction failure the dataset is untouched.
func (s *Service) Import(ctx context.Context, fileName string, data []byte) (*ImportResult, error) {
	ctx, span := s.tracer.Start(ctx, "report.Import", trace.WithAttributes(
		attribute.String("file_name", fileName),
		attribute.Int("bytes", len(data)),
	))
	defer span.End()

	format := parser.DetectFormat(fileName, data)
	start := time.Now()
	result, err := s.extractor.Extract(fileName, data)
	s.metrics.ObserveImport(string(format), recordCount(result), time.Since(start), err)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "extract failed")
		s.logger.WarnContext(ctx, "import failed",
			slog.String("file_name", fileName),
			slog.String("format", string(format)),
			slog.Any("error", err))
		return nil, fmt.Errorf("%w %s: %w", ErrInvalidFile, fileName, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	diag := result.Diagnostics
	s.records = result.Records
	s.fileName = fileName
	s.selection = report.Selection{}
	s.diagnostics = &diag
	s.rebuild()

	span.SetAttributes(
		attribute.Int("records", len(result.Records)),
		attribute.Int("header_row", diag.HeaderRowIndex),
	)
	s.logger.InfoContext(ctx, "spreadsheet imported",
		slog.String("file_name", fileName),
		slog.String("format", string(diag.Format)),
		slog.Int("header_row", diag.HeaderRowIndex),
		slog.Int("records", len(result.Records)),
		slog.Int("skipped_rows", diag.SkippedRows),
		slog.Any("first_record_keys", diag.FirstRecordKeys))

	if err := s.save(ctx); err != nil {
		span.RecordError(err)
		return nil, err
	}

	return &ImportResult{
		FileName:    fileName,
		Records:     len(result.Records),
		Diagnostics: diag,
	}, nil
}

func recordCount(r *parser.Result) int {
	if r == nil {
		return 0
	}
	return len(r.Records)
}

// SelectDriver sets the driver filter; empty clears it
func (s *Service) SelectDriver(driver string) report.Selection {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selection = s.selection.WithDriver(driver)
	return s.selection
}

// SelectMonth sets the month filter and clears the week filter
func (s *Service) SelectMonth(month string) report.Selection {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selection = s.selection.WithMonth(month)
	return s.selection
}

// SelectWeek sets the week filter and clears the month filter
func (s *Service) SelectWeek(week string) report.Selection {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selection = s.selection.WithWeek(week)
	return s.selection
}

// ClearFilters removes every filter
func (s *Service) ClearFilters() report.Selection {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selection = report.Selection{}
	return s.selection
}

// Selection returns the active filters
func (s *Service) Selection() report.Selection {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selection
}

// DeleteAll empties the dataset and removes the persisted entries
func (s *Service) DeleteAll(ctx context.Context) (int, error) {
	ctx, span := s.tracer.Start(ctx, "report.DeleteAll")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := len(s.records)
	s.reset()
	s.metrics.ObserveDeletion("all", removed)
	s.logger.InfoContext(ctx, "dataset deleted", slog.Int("records", removed))
	return removed, s.save(ctx)
}

// DeleteMonth removes exactly the records whose month key equals key
func (s *Service) DeleteMonth(ctx context.Context, key string) (int, error) {
	ctx, span := s.tracer.Start(ctx, "report.DeleteMonth", trace.WithAttributes(attribute.String("month", key)))
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := s.removeIndexes(s.snapshot.MatchMonth(key))
	if s.selection.Month == key {
		s.selection = s.selection.WithMonth("")
	}
	return removed, s.afterDelete(ctx, "month", key, removed)
}

// DeleteWeek removes exactly the records whose week key equals key
func (s *Service) DeleteWeek(ctx context.Context, key string) (int, error) {
	ctx, span := s.tracer.Start(ctx, "report.DeleteWeek", trace.WithAttributes(attribute.String("week", key)))
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := s.removeIndexes(s.snapshot.MatchWeek(key))
	if s.selection.Week == key {
		s.selection = s.selection.WithWeek("")
	}
	return removed, s.afterDelete(ctx, "week", key, removed)
}

// PruneBefore removes every dated record earlier than cutoff. Undated
// records are kept. A period filter left without records is cleared.
func (s *Service) PruneBefore(ctx context.Context, cutoff time.Time) (int, error) {
	ctx, span := s.tracer.Start(ctx, "report.PruneBefore", trace.WithAttributes(attribute.String("cutoff", cutoff.Format(time.DateOnly))))
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	var idx []int
	for i := range s.records {
		if d := s.snapshot.Derived(i); d.HasDate && d.Date.Before(cutoff) {
			idx = append(idx, i)
		}
	}
	removed := s.removeIndexes(idx)
	if s.selection.Month != "" && !slices.Contains(s.snapshot.Months(), s.selection.Month) {
		s.selection = s.selection.WithMonth("")
	}
	if s.selection.Week != "" && !slices.Contains(s.snapshot.Weeks(), s.selection.Week) {
		s.selection = s.selection.WithWeek("")
	}
	return removed, s.afterDelete(ctx, "retention", cutoff.Format(time.DateOnly), removed)
}

func (s *Service) afterDelete(ctx context.Context, scope, key string, removed int) error {
	s.metrics.ObserveDeletion(scope, removed)
	s.logger.InfoContext(ctx, "records deleted",
		slog.String("scope", scope),
		slog.String("key", key),
		slog.Int("records", removed),
		slog.Int("remaining", len(s.records)))
	if removed == 0 {
		return nil
	}
	return s.save(ctx)
}

// removeIndexes drops the records at the given ascending positions
func (s *Service) removeIndexes(idx []int) int {
	if len(idx) == 0 {
		return 0
	}
	kept := make([]*record.Record, 0, len(s.records)-len(idx))
	next := 0
	for i, r := range s.records {
		if next < len(idx) && idx[next] == i {
			next++
			continue
		}
		kept = append(kept, r)
	}
	s.records = kept
	if len(kept) == 0 {
		s.fileName = ""
		s.diagnostics = nil
	}
	s.rebuild()
	return len(idx)
}

// View derives the report for the current dataset and selection
func (s *Service) View() report.View {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v := report.BuildView(s.snapshot, s.selection)
	v.FileName = s.fileName
	v.Diagnostics = s.diagnostics
	return v
}

// SearchDrivers returns the dataset drivers matching query, closest first
func (s *Service) SearchDrivers(query string, limit int) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return report.SearchDrivers(s.snapshot.Drivers(), query, limit)
}

// Len returns the number of records in the dataset
func (s *Service) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

func (s *Service) reset() {
	s.records = nil
	s.fileName = ""
	s.selection = report.Selection{}
	s.diagnostics = nil
	s.rebuild()
}

func (s *Service) rebuild() {
	s.snapshot = report.NewSnapshot(s.records, s.opts)
	s.metrics.SetDatasetSize(len(s.records))
}

// save writes the dataset through to the store. An empty dataset removes
// both entries instead of storing an empty list.
func (s *Service) save(ctx context.Context) error {
	ctx, span := s.tracer.Start(ctx, "report.save")
	defer span.End()

	if len(s.records) == 0 {
		if err := s.store.Remove(ctx, DataKey); err != nil {
			return fmt.Errorf("failed to remove dataset: %w", err)
		}
		if err := s.store.Remove(ctx, FileNameKey); err != nil {
			return fmt.Errorf("failed to remove file name: %w", err)
		}
		return nil
	}

	data, err := json.Marshal(s.records)
	if err != nil {
		return fmt.Errorf("failed to encode dataset: %w", err)
	}
	if err := s.store.Set(ctx, DataKey, data); err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to save dataset: %w", err)
	}
	if err := s.store.Set(ctx, FileNameKey, []byte(s.fileName)); err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to save file name: %w", err)
	}
	span.SetAttributes(attribute.Int("bytes", len(data)))
	return nil
}
