package store

import (
	"path/filepath"
	"slices"
	"strings"

	"shopmetrics/internal/domain"
	"shopmetrics/internal/record"
)

// Dataset names one of the three date-keyed datasets.
type Dataset string

const (
	DatasetPayments   Dataset = "payments"
	DatasetCumulative Dataset = "cumulative"
	DatasetOrders     Dataset = "orders"
)

// Datasets lists every dataset in load order.
var Datasets = []Dataset{DatasetPayments, DatasetCumulative, DatasetOrders}

// CSVFile is one raw dataset file. Filename minus its extension is the date
// key.
type CSVFile struct {
	Filename string `json:"filename"`
	Content  string `json:"content"`
}

// LoadedData is the raw input of a load: the files of each dataset.
type LoadedData struct {
	Payments   []CSVFile `json:"payments"`
	Cumulative []CSVFile `json:"cumulative"`
	Orders     []CSVFile `json:"orders"`
}

// Files returns the files of one dataset.
func (d *LoadedData) Files(ds Dataset) []CSVFile {
	switch ds {
	case DatasetPayments:
		return d.Payments
	case DatasetCumulative:
		return d.Cumulative
	default:
		return d.Orders
	}
}

// DateKey derives the date key from a dataset filename by dropping any
// directory and the .csv extension ("20240115.csv" -> "20240115").
func DateKey(filename string) string {
	return strings.TrimSuffix(filepath.Base(filename), ".csv")
}

// Snapshot holds parsed records for every loaded date. It is immutable once
// built; a new load produces a new Snapshot.
type Snapshot struct {
	payments   map[string][]domain.PaymentRecord
	cumulative map[string][]domain.PaymentRecord
	orders     map[string][]domain.OrderRecord
	dates      []string
}

// Load parses every file with the parser matching its dataset and builds a
// Snapshot. Malformed rows are dropped by the parser; Load itself never
// fails. When two files map to the same date key the later one wins.
func Load(data LoadedData) *Snapshot {
	payments := make(map[string][]domain.PaymentRecord, len(data.Payments))
	for _, f := range data.Payments {
		payments[DateKey(f.Filename)] = record.ParsePayments(f.Content)
	}
	cumulative := make(map[string][]domain.PaymentRecord, len(data.Cumulative))
	for _, f := range data.Cumulative {
		cumulative[DateKey(f.Filename)] = record.ParsePayments(f.Content)
	}
	orders := make(map[string][]domain.OrderRecord, len(data.Orders))
	for _, f := range data.Orders {
		orders[DateKey(f.Filename)] = record.ParseOrders(f.Content)
	}
	return newSnapshot(payments, cumulative, orders)
}

func newSnapshot(
	payments, cumulative map[string][]domain.PaymentRecord,
	orders map[string][]domain.OrderRecord,
) *Snapshot {
	dates := make([]string, 0, len(orders))
	for d := range orders {
		dates = append(dates, d)
	}
	slices.Sort(dates)
	return &Snapshot{
		payments:   payments,
		cumulative: cumulative,
		orders:     orders,
		dates:      dates,
	}
}

// Dates returns the sorted date axis, the keys of the order dataset. Dates
// present only in the payment datasets are not part of it.
func (s *Snapshot) Dates() []string {
	return slices.Clone(s.dates)
}

// HasDates reports whether any order data is loaded.
func (s *Snapshot) HasDates() bool { return len(s.dates) > 0 }

// HasDate reports whether date is on the axis.
func (s *Snapshot) HasDate(date string) bool {
	_, ok := s.orders[date]
	return ok
}

// Payments returns the periodic payment rows for date, or nil.
func (s *Snapshot) Payments(date string) []domain.PaymentRecord { return s.payments[date] }

// Cumulative returns the cumulative payment rows for date, or nil.
func (s *Snapshot) Cumulative(date string) []domain.PaymentRecord { return s.cumulative[date] }

// Orders returns the order rows for date, or nil.
func (s *Snapshot) Orders(date string) []domain.OrderRecord { return s.orders[date] }

// DatasetDates returns the sorted keys of one dataset, including dates that
// are not on the order axis.
func (s *Snapshot) DatasetDates(ds Dataset) []string {
	var keys []string
	switch ds {
	case DatasetPayments:
		keys = mapKeys(s.payments)
	case DatasetCumulative:
		keys = mapKeys(s.cumulative)
	default:
		keys = mapKeys(s.orders)
	}
	slices.Sort(keys)
	return keys
}

// RecordCount returns the number of rows held for one dataset.
func (s *Snapshot) RecordCount(ds Dataset) int {
	n := 0
	switch ds {
	case DatasetPayments:
		for _, rows := range s.payments {
			n += len(rows)
		}
	case DatasetCumulative:
		for _, rows := range s.cumulative {
			n += len(rows)
		}
	default:
		for _, rows := range s.orders {
			n += len(rows)
		}
	}
	return n
}

// DateData returns the combined view for date, or nil when the date has no
// order data. Missing payment datasets read as empty.
func (s *Snapshot) DateData(date string) *domain.DateData {
	orders, ok := s.orders[date]
	if !ok {
		return nil
	}
	dd := &domain.DateData{
		Date:       date,
		Payments:   s.payments[date],
		Cumulative: s.cumulative[date],
		Orders:     orders,
	}
	if dd.Payments == nil {
		dd.Payments = []domain.PaymentRecord{}
	}
	if dd.Cumulative == nil {
		dd.Cumulative = []domain.PaymentRecord{}
	}
	return dd
}

// RawData re-serializes every loaded record, grouped back into the three
// datasets with files named <date>.csv in date order. It returns nil when no
// order dates are loaded.
func (s *Snapshot) RawData() *LoadedData {
	if !s.HasDates() {
		return nil
	}
	out := &LoadedData{}
	for _, d := range s.DatasetDates(DatasetPayments) {
		out.Payments = append(out.Payments, CSVFile{Filename: d + ".csv", Content: record.EncodePayments(s.payments[d])})
	}
	for _, d := range s.DatasetDates(DatasetCumulative) {
		out.Cumulative = append(out.Cumulative, CSVFile{Filename: d + ".csv", Content: record.EncodePayments(s.cumulative[d])})
	}
	for _, d := range s.dates {
		out.Orders = append(out.Orders, CSVFile{Filename: d + ".csv", Content: record.EncodeOrders(s.orders[d])})
	}
	return out
}

func mapKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	return keys
}
