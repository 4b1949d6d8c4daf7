package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"shopmetrics/internal/domain"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver.
)

// Compile-time interface check.
var _ History = (*SQLiteHistory)(nil)

// SQLiteHistory implements History backed by a SQLite database.
type SQLiteHistory struct {
	db *sql.DB
}

var historySchema = []string{`
CREATE TABLE IF NOT EXISTS periods (
	date                        TEXT PRIMARY KEY,
	total_shops                 INTEGER NOT NULL,
	active_shops                INTEGER NOT NULL,
	pending_shops               INTEGER NOT NULL,
	new_shops                   INTEGER NOT NULL,
	risk_shops                  INTEGER NOT NULL,
	weekly_sol_pay_count        INTEGER NOT NULL,
	weekly_sol_pay_amount       INTEGER NOT NULL,
	weekly_kakao_pay_count      INTEGER NOT NULL,
	weekly_kakao_pay_amount     INTEGER NOT NULL,
	weekly_payment_count        INTEGER NOT NULL,
	weekly_payment_amount       INTEGER NOT NULL,
	cumulative_sol_pay_count    INTEGER NOT NULL,
	cumulative_sol_pay_amount   INTEGER NOT NULL,
	cumulative_kakao_pay_count  INTEGER NOT NULL,
	cumulative_kakao_pay_amount INTEGER NOT NULL,
	cumulative_payment_count    INTEGER NOT NULL,
	cumulative_payment_amount   INTEGER NOT NULL
)`, `
CREATE TABLE IF NOT EXISTS kpi (
	date                   TEXT PRIMARY KEY,
	total_shops            INTEGER NOT NULL,
	active_shops           INTEGER NOT NULL,
	pending_shops          INTEGER NOT NULL,
	terminated_shops       INTEGER NOT NULL,
	prepaid_shops          INTEGER NOT NULL,
	postpaid_shops         INTEGER NOT NULL,
	new_shops              INTEGER NOT NULL,
	new_shops_prepaid      INTEGER NOT NULL,
	new_shops_postpaid     INTEGER NOT NULL,
	new_to_active_shops    INTEGER NOT NULL,
	risk_shops             INTEGER NOT NULL,
	risk_shops_prepaid     INTEGER NOT NULL,
	risk_shops_postpaid    INTEGER NOT NULL,
	total_devices          INTEGER NOT NULL,
	devices_prepaid        INTEGER NOT NULL,
	devices_postpaid       INTEGER NOT NULL,
	avg_devices_per_shop   REAL    NOT NULL,
	sol_pay_shops          INTEGER NOT NULL,
	sol_pay_total_amount   INTEGER NOT NULL,
	sol_pay_total_count    INTEGER NOT NULL,
	kakao_pay_shops        INTEGER NOT NULL,
	kakao_pay_total_amount INTEGER NOT NULL,
	kakao_pay_total_count  INTEGER NOT NULL
)`,
}

// NewSQLiteHistory opens (or creates) a SQLite database at dbPath and
// ensures the history tables exist.
func NewSQLiteHistory(dbPath string) (*SQLiteHistory, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}
	for _, stmt := range historySchema {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("creating history tables: %w", err)
		}
	}
	return &SQLiteHistory{db: db}, nil
}

// Close closes the underlying database connection.
func (h *SQLiteHistory) Close() error {
	return h.db.Close()
}

// ---------------------------------------------------------------------------
// Period series
// ---------------------------------------------------------------------------

// SavePeriods upserts the series in a single transaction.
func (h *SQLiteHistory) SavePeriods(ctx context.Context, rows []domain.PeriodComparison) error {
	tx, err := h.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `INSERT OR REPLACE INTO periods (
		date, total_shops, active_shops, pending_shops, new_shops, risk_shops,
		weekly_sol_pay_count, weekly_sol_pay_amount, weekly_kakao_pay_count,
		weekly_kakao_pay_amount, weekly_payment_count, weekly_payment_amount,
		cumulative_sol_pay_count, cumulative_sol_pay_amount, cumulative_kakao_pay_count,
		cumulative_kakao_pay_amount, cumulative_payment_count, cumulative_payment_amount
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, p := range rows {
		if _, err := stmt.ExecContext(ctx,
			p.Date, p.TotalShops, p.ActiveShops, p.PendingShops, p.NewShops, p.RiskShops,
			p.WeeklySolPayCount, p.WeeklySolPayAmount, p.WeeklyKakaoPayCount,
			p.WeeklyKakaoPayAmount, p.WeeklyPaymentCount, p.WeeklyPaymentAmount,
			p.CumulativeSolPayCount, p.CumulativeSolPayAmount, p.CumulativeKakaoPayCount,
			p.CumulativeKakaoPayAmount, p.CumulativePaymentCount, p.CumulativePaymentAmount,
		); err != nil {
			return fmt.Errorf("saving period %s: %w", p.Date, err)
		}
	}
	return tx.Commit()
}

// Periods returns the recorded series ordered by date. It returns ErrNoData
// when nothing has been recorded.
func (h *SQLiteHistory) Periods(ctx context.Context) ([]domain.PeriodComparison, error) {
	rows, err := h.db.QueryContext(ctx, `SELECT
		date, total_shops, active_shops, pending_shops, new_shops, risk_shops,
		weekly_sol_pay_count, weekly_sol_pay_amount, weekly_kakao_pay_count,
		weekly_kakao_pay_amount, weekly_payment_count, weekly_payment_amount,
		cumulative_sol_pay_count, cumulative_sol_pay_amount, cumulative_kakao_pay_count,
		cumulative_kakao_pay_amount, cumulative_payment_count, cumulative_payment_amount
	FROM periods ORDER BY date`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.PeriodComparison
	for rows.Next() {
		var p domain.PeriodComparison
		if err := rows.Scan(
			&p.Date, &p.TotalShops, &p.ActiveShops, &p.PendingShops, &p.NewShops, &p.RiskShops,
			&p.WeeklySolPayCount, &p.WeeklySolPayAmount, &p.WeeklyKakaoPayCount,
			&p.WeeklyKakaoPayAmount, &p.WeeklyPaymentCount, &p.WeeklyPaymentAmount,
			&p.CumulativeSolPayCount, &p.CumulativeSolPayAmount, &p.CumulativeKakaoPayCount,
			&p.CumulativeKakaoPayAmount, &p.CumulativePaymentCount, &p.CumulativePaymentAmount,
		); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, ErrNoData
	}
	return out, nil
}

// ---------------------------------------------------------------------------
// KPI
// ---------------------------------------------------------------------------

// SaveKPI upserts the scalar KPI figures. The risk store list is not kept.
func (h *SQLiteHistory) SaveKPI(ctx context.Context, k domain.KPIMetrics) error {
	_, err := h.db.ExecContext(ctx, `INSERT OR REPLACE INTO kpi (
		date, total_shops, active_shops, pending_shops, terminated_shops,
		prepaid_shops, postpaid_shops, new_shops, new_shops_prepaid,
		new_shops_postpaid, new_to_active_shops, risk_shops, risk_shops_prepaid,
		risk_shops_postpaid, total_devices, devices_prepaid, devices_postpaid,
		avg_devices_per_shop, sol_pay_shops, sol_pay_total_amount, sol_pay_total_count,
		kakao_pay_shops, kakao_pay_total_amount, kakao_pay_total_count
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		k.Date, k.TotalShops, k.ActiveShops, k.PendingShops, k.TerminatedShops,
		k.PrepaidShops, k.PostpaidShops, k.NewShops, k.NewShopsPrepaid,
		k.NewShopsPostpaid, k.NewToActiveShops, k.RiskShops, k.RiskShopsPrepaid,
		k.RiskShopsPostpaid, k.TotalDevices, k.DevicesPrepaid, k.DevicesPostpaid,
		k.AvgDevicesPerShop, k.SolPayShops, k.SolPayTotalAmount, k.SolPayTotalCount,
		k.KakaoPayShops, k.KakaoPayTotalAmount, k.KakaoPayTotalCount,
	)
	if err != nil {
		return fmt.Errorf("saving kpi %s: %w", k.Date, err)
	}
	return nil
}

// KPI returns the recorded figures for date, or ErrNoData.
func (h *SQLiteHistory) KPI(ctx context.Context, date string) (domain.KPIMetrics, error) {
	var k domain.KPIMetrics
	err := h.db.QueryRowContext(ctx, `SELECT
		date, total_shops, active_shops, pending_shops, terminated_shops,
		prepaid_shops, postpaid_shops, new_shops, new_shops_prepaid,
		new_shops_postpaid, new_to_active_shops, risk_shops, risk_shops_prepaid,
		risk_shops_postpaid, total_devices, devices_prepaid, devices_postpaid,
		avg_devices_per_shop, sol_pay_shops, sol_pay_total_amount, sol_pay_total_count,
		kakao_pay_shops, kakao_pay_total_amount, kakao_pay_total_count
	FROM kpi WHERE date = ?`, date).Scan(
		&k.Date, &k.TotalShops, &k.ActiveShops, &k.PendingShops, &k.TerminatedShops,
		&k.PrepaidShops, &k.PostpaidShops, &k.NewShops, &k.NewShopsPrepaid,
		&k.NewShopsPostpaid, &k.NewToActiveShops, &k.RiskShops, &k.RiskShopsPrepaid,
		&k.RiskShopsPostpaid, &k.TotalDevices, &k.DevicesPrepaid, &k.DevicesPostpaid,
		&k.AvgDevicesPerShop, &k.SolPayShops, &k.SolPayTotalAmount, &k.SolPayTotalCount,
		&k.KakaoPayShops, &k.KakaoPayTotalAmount, &k.KakaoPayTotalCount,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return k, ErrNoData
	}
	if err != nil {
		return k, err
	}
	return k, nil
}
