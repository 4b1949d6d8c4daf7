package engine

import (
	"reflect"
	"testing"
	"time"

	"shopmetrics/internal/domain"
	"shopmetrics/internal/record"
	"shopmetrics/internal/store"
)

// ---------------------------------------------------------------------------
// Fixtures
// ---------------------------------------------------------------------------

// day is the raw content of one date. A nil orders slice means no order file
// for that date.
type day struct {
	date       string
	orders     []domain.OrderRecord
	payments   []domain.PaymentRecord
	cumulative []domain.PaymentRecord
}

// newEngine encodes the fixtures to CSV and loads them the way real input
// is loaded.
func newEngine(t *testing.T, days []day, opts ...Option) *Engine {
	t.Helper()
	var data store.LoadedData
	for _, d := range days {
		name := d.date + ".csv"
		if d.orders != nil {
			data.Orders = append(data.Orders, store.CSVFile{Filename: name, Content: record.EncodeOrders(d.orders)})
		}
		if d.payments != nil {
			data.Payments = append(data.Payments, store.CSVFile{Filename: name, Content: record.EncodePayments(d.payments)})
		}
		if d.cumulative != nil {
			data.Cumulative = append(data.Cumulative, store.CSVFile{Filename: name, Content: record.EncodePayments(d.cumulative)})
		}
	}
	return New(store.Load(data), opts...)
}

type orderOpt func(*domain.OrderRecord)

func order(code string, status domain.ShopStatus, pay domain.PayType, opts ...orderOpt) domain.OrderRecord {
	o := domain.OrderRecord{
		PayType:          pay,
		ShopCode:         code,
		ShopName:         "Shop " + code,
		POSCode:          "P-" + code,
		SolPayPromotion:  domain.FlagOff,
		NicePayPromotion: domain.FlagOff,
		Registered:       "-",
		FormattedDate:    "-",
		Company:          "Head",
		PrevCompany:      "-",
		Status:           status,
		FormattedDate2:   "-",
	}
	for _, fn := range opts {
		fn(&o)
	}
	return o
}

func registered(s string) orderOpt { return func(o *domain.OrderRecord) { o.Registered = s } }

func agency(name string) orderOpt { return func(o *domain.OrderRecord) { o.PrevCompany = name } }

func devices(n int64) orderOpt { return func(o *domain.OrderRecord) { o.DeviceCount = n } }

func totalOrders(n int64) orderOpt { return func(o *domain.OrderRecord) { o.TotalCountAll = n } }

func noPOS(count, price int64) orderOpt {
	return func(o *domain.OrderRecord) {
		o.OrderCountNoPOS = count
		o.PriceNoPOS = price
	}
}

func solPromo(o *domain.OrderRecord) { o.SolPayPromotion = domain.FlagOn }

func kakaoPromo(o *domain.OrderRecord) { o.NicePayPromotion = domain.FlagOn }

// payment builds a payment row: count/total, then SolPay and KakaoPay
// count/amount pairs.
func payment(code string, count, total, solCount, solAmt, kakaoCount, kakaoAmt int64) domain.PaymentRecord {
	return domain.PaymentRecord{
		PayType:          domain.PayPrepaid,
		ShopCode:         code,
		ShopName:         "Shop " + code,
		Count:            count,
		TotalPrice:       total,
		SolPayCount:      solCount,
		SolPayAmount:     solAmt,
		KakaoMoneyCount:  kakaoCount,
		KakaoMoneyAmount: kakaoAmt,
	}
}

func codes(orders []domain.OrderRecord) []string {
	out := make([]string, 0, len(orders))
	for _, o := range orders {
		out = append(out, o.ShopCode)
	}
	return out
}

const (
	active     = domain.StatusActive
	pending    = domain.StatusPending
	terminated = domain.StatusTerminated
	prepaid    = domain.PayPrepaid
	postpaid   = domain.PayPostpaid
)

// ---------------------------------------------------------------------------
// Lookup primitives
// ---------------------------------------------------------------------------

func TestParseDateKey(t *testing.T) {
	tests := []struct {
		key    string
		want   time.Time
		wantOK bool
	}{
		{"20240115", time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), true},
		{"19991231", time.Date(1999, 12, 31, 0, 0, 0, 0, time.UTC), true},
		{"2024011", time.Time{}, false},
		{"202401150", time.Time{}, false},
		{"2024-1-5", time.Time{}, false},
		{"2024a115", time.Time{}, false},
		{"", time.Time{}, false},
	}
	for _, tt := range tests {
		got, ok := ParseDateKey(tt.key)
		if ok != tt.wantOK || !got.Equal(tt.want) {
			t.Errorf("ParseDateKey(%q) = %v, %v; want %v, %v", tt.key, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestParseDateKeyDecodesPositions(t *testing.T) {
	start := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	for d := start; d.Year() == 2023; d = d.AddDate(0, 0, 1) {
		key := d.Format("20060102")
		got, ok := ParseDateKey(key)
		if !ok || got.Year() != d.Year() || got.Month() != d.Month() || got.Day() != d.Day() {
			t.Fatalf("ParseDateKey(%q) = %v, %v", key, got, ok)
		}
	}
}

func TestParseRegistered(t *testing.T) {
	jan10 := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		in     string
		want   time.Time
		wantOK bool
	}{
		{"2024-01-10 09:30:00", jan10, true},
		{"2024-01-10", jan10, true},
		{" 2024-01-10 ", jan10, true},
		{"-", time.Time{}, false},
		{"", time.Time{}, false},
		{"2024/01/10", time.Time{}, false},
		{"2024-01", time.Time{}, false},
		{"2024--10", time.Time{}, false},
	}
	for _, tt := range tests {
		got, ok := ParseRegistered(tt.in)
		if ok != tt.wantOK || !got.Equal(tt.want) {
			t.Errorf("ParseRegistered(%q) = %v, %v; want %v, %v", tt.in, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestPreviousDate(t *testing.T) {
	e := newEngine(t, []day{
		{date: "20240115", orders: []domain.OrderRecord{}},
		{date: "20240101", orders: []domain.OrderRecord{}},
		{date: "20240108", orders: []domain.OrderRecord{}},
	})

	if got, ok := e.PreviousDate("20240115"); !ok || got != "20240108" {
		t.Errorf("PreviousDate(20240115) = %q, %v", got, ok)
	}
	if _, ok := e.PreviousDate("20240101"); ok {
		t.Error("first date should have no previous date")
	}
	if _, ok := e.PreviousDate("20240102"); ok {
		t.Error("date off the axis should have no previous date")
	}
	if got, ok := e.LatestDate(); !ok || got != "20240115" {
		t.Errorf("LatestDate() = %q, %v", got, ok)
	}
}

func TestNewWithNilSnapshot(t *testing.T) {
	e := New(nil)
	if len(e.Dates()) != 0 {
		t.Errorf("Dates() = %v, want empty", e.Dates())
	}
	if _, ok := e.LatestDate(); ok {
		t.Error("LatestDate() reported a date on an empty engine")
	}
	k := e.KPI("20240101")
	if k.TotalShops != 0 || k.AvgDevicesPerShop != 0 {
		t.Errorf("KPI on empty engine = %+v", k)
	}
}

// ---------------------------------------------------------------------------
// GroupSum
// ---------------------------------------------------------------------------

func TestGroupSum(t *testing.T) {
	type row struct {
		code string
		a, b int64
	}
	rows := []row{{"B", 1, 10}, {"A", 2, 20}, {"B", 3, 30}, {"C", 0, 0}}
	gs := GroupSum(rows,
		func(r *row) string { return r.code },
		func(r *row) int64 { return r.a },
		func(r *row) int64 { return r.b },
	)

	var keys []string
	for _, g := range gs.List {
		keys = append(keys, g.Key)
	}
	if !reflect.DeepEqual(keys, []string{"B", "A", "C"}) {
		t.Errorf("keys = %v, want first-seen order [B A C]", keys)
	}
	if g := gs.Lookup("B"); g == nil || g.Rows != 2 || g.Sums[0] != 4 || g.Sums[1] != 40 {
		t.Errorf("group B = %+v", g)
	}
	if gs.Value("missing", 0) != 0 {
		t.Error("Value of a missing key should be 0")
	}
	positive := func(g *Group) bool { return g.Sums[0] > 0 }
	if n := gs.Count(positive); n != 2 {
		t.Errorf("Count = %d, want 2", n)
	}
	if total := gs.Total(1, positive); total != 60 {
		t.Errorf("Total = %d, want 60", total)
	}
	if total := gs.Total(1, nil); total != 60 {
		t.Errorf("Total(nil) = %d, want 60", total)
	}
}

func TestActivityGroupsSpanRows(t *testing.T) {
	orders := []domain.OrderRecord{
		order("S1", active, prepaid, noPOS(0, 500)),
		order("S1", active, prepaid, noPOS(1, 1000)),
		order("S2", active, prepaid, noPOS(0, 0)),
	}
	gs := activityGroups(orders)
	if gs.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", gs.Len())
	}
	if !activated(gs.Lookup("S1")) || activated(gs.Lookup("S2")) {
		t.Error("S1 should be activated across rows, S2 should not")
	}
	if gs.Value("S1", activityAmount) != 1500 {
		t.Errorf("S1 amount = %d, want 1500", gs.Value("S1", activityAmount))
	}
}
