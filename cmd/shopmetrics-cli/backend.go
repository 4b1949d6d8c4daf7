package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"shopmetrics/internal/config"
	"shopmetrics/internal/domain"
	"shopmetrics/internal/engine"
	"shopmetrics/internal/gather"
	"shopmetrics/internal/store"
	"shopmetrics/pkg/shopmetrics"
)

// backend answers report queries either from the local data directory or
// from a running shopmetrics-server.
type backend interface {
	Dates(ctx context.Context) (dates []string, latest string, err error)
	KPI(ctx context.Context, date string) (domain.KPIMetrics, error)
	ProviderStats(ctx context.Context, date string) (domain.ProviderStats, error)
	PaymentSummary(ctx context.Context, date string) (domain.PaymentSummary, error)
	Agencies(ctx context.Context, date string) (string, []domain.AgencyPerformance, error)
	Period(ctx context.Context) ([]domain.PeriodComparison, error)
}

var (
	_ backend = (*localBackend)(nil)
	_ backend = (*remoteBackend)(nil)
)

// ---------------------------------------------------------------------------
// Local
// ---------------------------------------------------------------------------

type localBackend struct {
	engine *engine.Engine
}

func newLocalBackend(ctx context.Context, cfg *config.Config, log *slog.Logger) (*localBackend, error) {
	snap, err := loadSnapshot(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	opts := append(cfg.Analytics.EngineOptions(), engine.WithLogger(log))
	return &localBackend{engine: engine.New(snap, opts...)}, nil
}

// loadSnapshot reads the configured data directory. A directory without
// order files yields an empty snapshot.
func loadSnapshot(ctx context.Context, cfg *config.Config, log *slog.Logger) (*store.Snapshot, error) {
	src := gather.NewDirSource(cfg.Storage.DataDir, cfg.Datasets.Dirs(), cfg.Datasets.Ext, log)
	data, err := src.Load(ctx)
	if err != nil && !errors.Is(err, gather.ErrNoOrders) {
		return nil, fmt.Errorf("loading %s: %w", src.Name(), err)
	}
	return store.Load(data), nil
}

// resolve defaults date to the latest loaded date and checks it is on the
// axis.
func (b *localBackend) resolve(date string) (string, error) {
	if date == "" {
		latest, ok := b.engine.LatestDate()
		if !ok {
			return "", store.ErrNoData
		}
		return latest, nil
	}
	if _, ok := engine.ParseDateKey(date); !ok {
		return "", fmt.Errorf("invalid date %q: want YYYYMMDD", date)
	}
	return date, nil
}

func (b *localBackend) Dates(context.Context) ([]string, string, error) {
	latest, _ := b.engine.LatestDate()
	return b.engine.Dates(), latest, nil
}

func (b *localBackend) KPI(_ context.Context, date string) (domain.KPIMetrics, error) {
	date, err := b.resolve(date)
	if err != nil {
		return domain.KPIMetrics{}, err
	}
	return b.engine.KPI(date), nil
}

func (b *localBackend) ProviderStats(_ context.Context, date string) (domain.ProviderStats, error) {
	date, err := b.resolve(date)
	if err != nil {
		return domain.ProviderStats{}, err
	}
	return b.engine.ProviderStats(date), nil
}

func (b *localBackend) PaymentSummary(_ context.Context, date string) (domain.PaymentSummary, error) {
	date, err := b.resolve(date)
	if err != nil {
		return domain.PaymentSummary{}, err
	}
	prev, _ := b.engine.PreviousDate(date)
	return b.engine.PaymentSummary(date, prev), nil
}

func (b *localBackend) Agencies(_ context.Context, date string) (string, []domain.AgencyPerformance, error) {
	date, err := b.resolve(date)
	if err != nil {
		return "", nil, err
	}
	return date, b.engine.AgencyPerformance(date), nil
}

func (b *localBackend) Period(context.Context) ([]domain.PeriodComparison, error) {
	return b.engine.PeriodComparison(), nil
}

// ---------------------------------------------------------------------------
// Remote
// ---------------------------------------------------------------------------

type remoteBackend struct {
	client *shopmetrics.Client
}

func (b *remoteBackend) Dates(ctx context.Context) ([]string, string, error) {
	resp, err := b.client.Dates(ctx)
	return resp.Dates, resp.Latest, err
}

func (b *remoteBackend) KPI(ctx context.Context, date string) (domain.KPIMetrics, error) {
	return b.client.KPI(ctx, date)
}

func (b *remoteBackend) ProviderStats(ctx context.Context, date string) (domain.ProviderStats, error) {
	return b.client.ProviderStats(ctx, date)
}

func (b *remoteBackend) PaymentSummary(ctx context.Context, date string) (domain.PaymentSummary, error) {
	return b.client.PaymentSummary(ctx, date, "")
}

func (b *remoteBackend) Agencies(ctx context.Context, date string) (string, []domain.AgencyPerformance, error) {
	resp, err := b.client.Agencies(ctx, date)
	return resp.Date, resp.Agencies, err
}

func (b *remoteBackend) Period(ctx context.Context) ([]domain.PeriodComparison, error) {
	return b.client.Period(ctx)
}
