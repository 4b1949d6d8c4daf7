// Package store holds loaded datasets in memory and persists them: an
// immutable Snapshot for analytics, a parquet archive of the raw records and
// a SQLite history of derived metrics.
package store

import (
	"context"
	"errors"

	"shopmetrics/internal/domain"
)

// ErrNoData is returned when an archive or history holds nothing to read.
var ErrNoData = errors.New("store: no data")

// Archive persists snapshots and restores them.
type Archive interface {
	// WriteSnapshot persists every dataset of snap, one file per date.
	WriteSnapshot(ctx context.Context, snap *Snapshot) (int, error)

	// ReadSnapshot rebuilds a Snapshot from everything archived.
	ReadSnapshot(ctx context.Context) (*Snapshot, error)

	// ListDates returns the archived dates of one dataset in order.
	ListDates(ctx context.Context, ds Dataset) ([]string, error)
}

// History records derived metrics across loads.
type History interface {
	// SavePeriods upserts one row per series entry, keyed by date.
	SavePeriods(ctx context.Context, rows []domain.PeriodComparison) error

	// Periods returns every recorded series entry in date order.
	Periods(ctx context.Context) ([]domain.PeriodComparison, error)

	// SaveKPI upserts the scalar KPI figures for their date.
	SaveKPI(ctx context.Context, kpi domain.KPIMetrics) error

	// KPI returns the recorded KPI figures for date.
	KPI(ctx context.Context, date string) (domain.KPIMetrics, error)
}
