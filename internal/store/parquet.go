package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/parquet-go/parquet-go"

	"shopmetrics/internal/domain"
)

// Compile-time interface check.
var _ Archive = (*ParquetArchive)(nil)

// ParquetArchive implements Archive using one Parquet file per dataset and
// date:
//
//	<Dir>/<dataset>/<YYYYMMDD>.parquet
type ParquetArchive struct {
	Dir string
}

// NewParquetArchive creates a ParquetArchive rooted at dir.
func NewParquetArchive(dir string) *ParquetArchive {
	return &ParquetArchive{Dir: dir}
}

// ---------------------------------------------------------------------------
// Parquet record types (on-disk schema)
// ---------------------------------------------------------------------------

// PaymentRow is the Parquet schema for payment records. Enumerations are
// stored as their source text.
type PaymentRow struct {
	PayType          string `parquet:"pg_yn"`
	ShopCode         string `parquet:"shop_code"`
	ShopName         string `parquet:"shop_name"`
	Count            int64  `parquet:"count"`
	TotalPrice       int64  `parquet:"total_price"`
	SolPayAmount     int64  `parquet:"sol_pay_amt"`
	SolPayCount      int64  `parquet:"sol_pay_count"`
	KakaoMoneyAmount int64  `parquet:"kakao_money_amt"`
	KakaoMoneyCount  int64  `parquet:"kakao_money_count"`
}

// OrderRow is the Parquet schema for order records.
type OrderRow struct {
	PayType          string `parquet:"pg_yn"`
	ShopCode         string `parquet:"shop_code"`
	ShopName         string `parquet:"shop_name"`
	POSCode          string `parquet:"pos_code"`
	SolPayPromotion  string `parquet:"sol_pay_promotion_yn"`
	NicePayPromotion string `parquet:"nice_pay_promotion_yn"`
	Registered       string `parquet:"ins_datetime"`
	FormattedDate    string `parquet:"formatted_date"`
	Company          string `parquet:"company_name"`
	PrevCompany      string `parquet:"prev_company_name"`
	Status           string `parquet:"shop_status"`
	FormattedDate2   string `parquet:"formatted_date_2"`
	DeviceCount      int64  `parquet:"device_count"`
	TableCount       int64  `parquet:"table_count"`
	TotalCountAll    int64  `parquet:"total_count_all"`
	OrderCountAll    int64  `parquet:"order_count_all"`
	TotalCountNoPOS  int64  `parquet:"total_count_no_pos"`
	TotalPriceNoPOS  int64  `parquet:"total_price_no_pos"`
	OrderCountNoPOS  int64  `parquet:"order_count_no_pos"`
	PriceNoPOS       int64  `parquet:"price_no_pos"`
}

// ---------------------------------------------------------------------------
// Archive implementation
// ---------------------------------------------------------------------------

// WriteSnapshot writes every date of every dataset, replacing files that
// already exist for the same date. It returns the number of files written.
func (a *ParquetArchive) WriteSnapshot(ctx context.Context, snap *Snapshot) (int, error) {
	written := 0
	for _, ds := range Datasets {
		for _, date := range snap.DatasetDates(ds) {
			if err := ctx.Err(); err != nil {
				return written, err
			}
			path := a.path(ds, date)

			var err error
			if ds == DatasetOrders {
				err = writeParquetFile(path, toOrderRows(snap.Orders(date)))
			} else {
				rows := snap.Payments(date)
				if ds == DatasetCumulative {
					rows = snap.Cumulative(date)
				}
				err = writeParquetFile(path, toPaymentRows(rows))
			}
			if err != nil {
				return written, fmt.Errorf("writing %s/%s: %w", ds, date, err)
			}
			written++
		}
	}
	return written, nil
}

// ReadSnapshot reads every archived file back into a Snapshot. It returns
// ErrNoData when no order dates are archived.
func (a *ParquetArchive) ReadSnapshot(ctx context.Context) (*Snapshot, error) {
	payments := make(map[string][]domain.PaymentRecord)
	cumulative := make(map[string][]domain.PaymentRecord)
	orders := make(map[string][]domain.OrderRecord)

	for _, ds := range Datasets {
		dates, err := a.ListDates(ctx, ds)
		if err != nil {
			return nil, err
		}
		for _, date := range dates {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			path := a.path(ds, date)
			switch ds {
			case DatasetOrders:
				rows, err := readParquetFile[OrderRow](path)
				if err != nil {
					return nil, fmt.Errorf("reading %s/%s: %w", ds, date, err)
				}
				orders[date] = fromOrderRows(rows)
			default:
				rows, err := readParquetFile[PaymentRow](path)
				if err != nil {
					return nil, fmt.Errorf("reading %s/%s: %w", ds, date, err)
				}
				if ds == DatasetPayments {
					payments[date] = fromPaymentRows(rows)
				} else {
					cumulative[date] = fromPaymentRows(rows)
				}
			}
		}
	}

	if len(orders) == 0 {
		return nil, ErrNoData
	}
	return newSnapshot(payments, cumulative, orders), nil
}

// ListDates lists the archived dates of one dataset. A missing dataset
// directory yields no dates.
func (a *ParquetArchive) ListDates(_ context.Context, ds Dataset) ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(a.Dir, string(ds)))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var dates []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".parquet") {
			continue
		}
		dates = append(dates, strings.TrimSuffix(name, ".parquet"))
	}
	sort.Strings(dates)
	return dates, nil
}

// path returns <Dir>/<dataset>/<date>.parquet.
func (a *ParquetArchive) path(ds Dataset, date string) string {
	return filepath.Join(a.Dir, string(ds), date+".parquet")
}

// ---------------------------------------------------------------------------
// Row conversion
// ---------------------------------------------------------------------------

func toPaymentRows(records []domain.PaymentRecord) []PaymentRow {
	rows := make([]PaymentRow, len(records))
	for i := range records {
		r := &records[i]
		rows[i] = PaymentRow{
			PayType:          r.PayTypeText(),
			ShopCode:         r.ShopCode,
			ShopName:         r.ShopName,
			Count:            r.Count,
			TotalPrice:       r.TotalPrice,
			SolPayAmount:     r.SolPayAmount,
			SolPayCount:      r.SolPayCount,
			KakaoMoneyAmount: r.KakaoMoneyAmount,
			KakaoMoneyCount:  r.KakaoMoneyCount,
		}
	}
	return rows
}

func fromPaymentRows(rows []PaymentRow) []domain.PaymentRecord {
	records := make([]domain.PaymentRecord, len(rows))
	for i, r := range rows {
		records[i] = domain.PaymentRecord{
			PayType:          domain.ParsePayType(r.PayType),
			PayTypeRaw:       r.PayType,
			ShopCode:         r.ShopCode,
			ShopName:         r.ShopName,
			Count:            r.Count,
			TotalPrice:       r.TotalPrice,
			SolPayAmount:     r.SolPayAmount,
			SolPayCount:      r.SolPayCount,
			KakaoMoneyAmount: r.KakaoMoneyAmount,
			KakaoMoneyCount:  r.KakaoMoneyCount,
		}
	}
	return records
}

func toOrderRows(records []domain.OrderRecord) []OrderRow {
	rows := make([]OrderRow, len(records))
	for i := range records {
		r := &records[i]
		rows[i] = OrderRow{
			PayType:          r.PayTypeText(),
			ShopCode:         r.ShopCode,
			ShopName:         r.ShopName,
			POSCode:          r.POSCode,
			SolPayPromotion:  string(r.SolPayPromotion),
			NicePayPromotion: string(r.NicePayPromotion),
			Registered:       r.Registered,
			FormattedDate:    r.FormattedDate,
			Company:          r.Company,
			PrevCompany:      r.PrevCompany,
			Status:           r.StatusText(),
			FormattedDate2:   r.FormattedDate2,
			DeviceCount:      r.DeviceCount,
			TableCount:       r.TableCount,
			TotalCountAll:    r.TotalCountAll,
			OrderCountAll:    r.OrderCountAll,
			TotalCountNoPOS:  r.TotalCountNoPOS,
			TotalPriceNoPOS:  r.TotalPriceNoPOS,
			OrderCountNoPOS:  r.OrderCountNoPOS,
			PriceNoPOS:       r.PriceNoPOS,
		}
	}
	return rows
}

func fromOrderRows(rows []OrderRow) []domain.OrderRecord {
	records := make([]domain.OrderRecord, len(rows))
	for i, r := range rows {
		records[i] = domain.OrderRecord{
			PayType:          domain.ParsePayType(r.PayType),
			PayTypeRaw:       r.PayType,
			ShopCode:         r.ShopCode,
			ShopName:         r.ShopName,
			POSCode:          r.POSCode,
			SolPayPromotion:  domain.Flag(r.SolPayPromotion),
			NicePayPromotion: domain.Flag(r.NicePayPromotion),
			Registered:       r.Registered,
			FormattedDate:    r.FormattedDate,
			Company:          r.Company,
			PrevCompany:      r.PrevCompany,
			Status:           domain.ParseShopStatus(r.Status),
			StatusRaw:        r.Status,
			FormattedDate2:   r.FormattedDate2,
			DeviceCount:      r.DeviceCount,
			TableCount:       r.TableCount,
			TotalCountAll:    r.TotalCountAll,
			OrderCountAll:    r.OrderCountAll,
			TotalCountNoPOS:  r.TotalCountNoPOS,
			TotalPriceNoPOS:  r.TotalPriceNoPOS,
			OrderCountNoPOS:  r.OrderCountNoPOS,
			PriceNoPOS:       r.PriceNoPOS,
		}
	}
	return records
}

// ---------------------------------------------------------------------------
// Parquet file helpers
// ---------------------------------------------------------------------------

func writeParquetFile[T any](path string, records []T) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return parquet.WriteFile(path, records)
}

func readParquetFile[T any](path string) ([]T, error) {
	rows, err := parquet.ReadFile[T](path)
	if err != nil {
		return nil, err
	}
	return rows, nil
}
