package engine

import (
	"reflect"
	"testing"

	"shopmetrics/internal/domain"
)

// ---------------------------------------------------------------------------
// Provider stats
// ---------------------------------------------------------------------------

func TestProviderStats(t *testing.T) {
	e := newEngine(t, []day{
		{
			date: "20240108",
			orders: []domain.OrderRecord{
				order("K1", active, prepaid, solPromo),
				order("K2", active, prepaid, solPromo),
				order("K3", pending, prepaid, solPromo),
				order("K4", active, postpaid, kakaoPromo),
				order("K5", active, prepaid),
			},
			cumulative: []domain.PaymentRecord{
				payment("K1", 1, 100, 1, 100, 0, 0),
				payment("K2", 4, 400, 0, 0, 0, 0),
				payment("K3", 2, 200, 2, 200, 0, 0),
				payment("K5", 3, 300, 0, 0, 3, 300),
			},
		},
		{date: "20240101", orders: []domain.OrderRecord{order("K5", active, prepaid)}},
	})

	s := e.ProviderStats("20240108")
	want := domain.ProviderStats{
		Date:                 "20240108",
		SolPayPromoShops:     3,
		SolPayActiveShops:    2,
		SolPayActivationRate: "66.7",
		KakaoPayPromoShops:   1,
		KakaoPayActiveShops:  1,
	}
	if s != want {
		t.Errorf("ProviderStats = %+v, want %+v", s, want)
	}

	if got := e.ProviderStats("20240101").SolPayActivationRate; got != "0" {
		t.Errorf("rate without promotion stores = %q, want \"0\"", got)
	}
}

// ---------------------------------------------------------------------------
// Weekly comparison
// ---------------------------------------------------------------------------

func TestCompare(t *testing.T) {
	tests := []struct {
		last, cur  int64
		wantChange int64
		wantRate   string
	}{
		{0, 5, 5, "-"},
		{0, 0, 0, "-"},
		{4, 5, 1, "25%"},
		{4, 3, -1, "-25%"},
		{5, 5, 0, "0%"},
		{8, 9, 1, "13%"},
		{8, 7, -1, "-13%"},
		{3, 4, 1, "33%"},
		{3, 5, 2, "67%"},
		{4, 0, -4, "-100%"},
	}
	for _, tt := range tests {
		w := Compare("k", "label", tt.last, tt.cur)
		if w.Change != tt.wantChange || w.ChangeRate != tt.wantRate {
			t.Errorf("Compare(%d, %d) = %d %q, want %d %q",
				tt.last, tt.cur, w.Change, w.ChangeRate, tt.wantChange, tt.wantRate)
		}
		if w.Key != "k" || w.Label != "label" || w.LastWeek != tt.last || w.ThisWeek != tt.cur {
			t.Errorf("Compare(%d, %d) = %+v", tt.last, tt.cur, w)
		}
	}
}

// ---------------------------------------------------------------------------
// Payment summary
// ---------------------------------------------------------------------------

func summaryFixture(t *testing.T) *Engine {
	t.Helper()
	return newEngine(t, []day{
		{
			date: "20240101",
			orders: []domain.OrderRecord{
				order("S1", active, prepaid, kakaoPromo, noPOS(2, 2000)),
				order("S5", active, prepaid, kakaoPromo, noPOS(1, 100)),
				order("S3", active, postpaid, kakaoPromo),
				order("S4", active, prepaid, solPromo),
				order("S7", pending, prepaid, kakaoPromo),
			},
			payments: []domain.PaymentRecord{payment("S1", 3, 300, 0, 0, 1, 100)},
		},
		{
			date: "20240108",
			orders: []domain.OrderRecord{
				order("S1", active, prepaid, kakaoPromo, noPOS(1, 1000)),
				order("S1", active, prepaid, kakaoPromo, noPOS(0, 500)),
				order("S2", active, prepaid, kakaoPromo),
				order("S3", active, postpaid, kakaoPromo, noPOS(2, 2000)),
				order("S4", active, prepaid, solPromo, noPOS(3, 3000)),
				order("S7", active, prepaid, kakaoPromo, registered("2024-01-05 12:00:00")),
				order("S6", active, prepaid),
				order("S8", pending, postpaid, kakaoPromo),
			},
			payments: []domain.PaymentRecord{
				payment("S1", 4, 400, 0, 0, 2, 200),
				payment("S4", 1, 50, 1, 50, 0, 0),
				payment("S9", 5, 500, 0, 0, 5, 500),
			},
			cumulative: []domain.PaymentRecord{
				payment("S1", 10, 10000, 0, 0, 4, 400),
				payment("S2", 5, 500, 0, 0, 0, 0),
				payment("S4", 2, 80, 2, 80, 0, 0),
				payment("S9", 3, 300, 0, 0, 3, 300),
			},
		},
	})
}

func weekly(list []domain.WeeklyComparison, key string) domain.WeeklyComparison {
	for _, w := range list {
		if w.Key == key {
			return w
		}
	}
	return domain.WeeklyComparison{}
}

func TestPaymentSummaryShopCounts(t *testing.T) {
	s := summaryFixture(t).PaymentSummary("20240108", "20240101")

	wantKakao := domain.KakaoPayShopStats{
		Prepaid:  domain.StatusCounts{Pending: 0, Active: 4},
		Postpaid: domain.StatusCounts{Pending: 1, Active: 1},
		Total:    6,
	}
	if s.KakaoPayShops != wantKakao {
		t.Errorf("KakaoPayShops = %+v, want %+v", s.KakaoPayShops, wantKakao)
	}
	wantSol := domain.SolPayShopStats{Prepaid: domain.StatusCounts{Active: 1}, Total: 1}
	if s.SolPayShops != wantSol {
		t.Errorf("SolPayShops = %+v, want %+v", s.SolPayShops, wantSol)
	}
	if s.Date != "20240108" || s.PrevDate != "20240101" {
		t.Errorf("dates = %s/%s", s.Date, s.PrevDate)
	}
}

func TestPaymentSummaryKakaoPay(t *testing.T) {
	s := summaryFixture(t).PaymentSummary("20240108", "20240101")
	k := s.KakaoPayActivation

	wantPrepaid := domain.ProviderWeekStats{
		ActivatedShops: 1,
		ProviderShops:  1,
		PaymentCount:   1,
		ProviderCount:  2,
		PaymentAmount:  1500,
		ProviderAmount: 200,
	}
	if k.Prepaid != wantPrepaid {
		t.Errorf("Prepaid = %+v, want %+v", k.Prepaid, wantPrepaid)
	}
	wantPost := domain.PostpaidWeekStats{ActivatedShops: 1, OrderCount: 2, OrderAmount: 2000}
	if k.Postpaid != wantPost || k.CumulativePostpaid != wantPost {
		t.Errorf("Postpaid = %+v, want %+v", k.Postpaid, wantPost)
	}
	wantTotal := domain.ActivationTotals{ActivatedShops: 2, PaymentCount: 3, PaymentAmount: 3500}
	if k.Total != wantTotal {
		t.Errorf("Total = %+v, want %+v", k.Total, wantTotal)
	}

	// Cumulative activation counts S2, which has no weekly activity.
	wantCum := domain.CumulativeStats{
		ActivatedShops: 2,
		ProviderShops:  1,
		PaymentCount:   15,
		ProviderCount:  4,
		PaymentAmount:  10500,
		ProviderAmount: 400,
	}
	if k.Cumulative != wantCum {
		t.Errorf("Cumulative = %+v, want %+v", k.Cumulative, wantCum)
	}

	if len(k.Weekly) != 12 {
		t.Fatalf("len(Weekly) = %d, want 12", len(k.Weekly))
	}
	tests := []struct {
		key        string
		last, cur  int64
		changeRate string
	}{
		{"activatedShops", 2, 1, "-50%"},
		{"kakaoMoneyShops", 1, 1, "0%"},
		{"paymentCount", 3, 1, "-67%"},
		{"kakaoMoneyCount", 1, 2, "100%"},
		{"paymentAmount", 2100, 1500, "-29%"},
		{"kakaoMoneyAmount", 100, 200, "100%"},
		{"postpaidShops", 0, 1, "-"},
		{"totalActivatedShops", 2, 2, "0%"},
		{"totalPaymentAmount", 2100, 3500, "67%"},
	}
	for _, tt := range tests {
		w := weekly(k.Weekly, tt.key)
		if w.LastWeek != tt.last || w.ThisWeek != tt.cur || w.ChangeRate != tt.changeRate {
			t.Errorf("%s = %d -> %d %q, want %d -> %d %q",
				tt.key, w.LastWeek, w.ThisWeek, w.ChangeRate, tt.last, tt.cur, tt.changeRate)
		}
	}
}

func TestPaymentSummarySolPay(t *testing.T) {
	s := summaryFixture(t).PaymentSummary("20240108", "20240101")
	sp := s.SolPayActivation

	wantPrepaid := domain.ProviderWeekStats{
		ActivatedShops: 1,
		ProviderShops:  1,
		PaymentCount:   3,
		ProviderCount:  1,
		PaymentAmount:  3000,
		ProviderAmount: 50,
	}
	if sp.Prepaid != wantPrepaid {
		t.Errorf("Prepaid = %+v, want %+v", sp.Prepaid, wantPrepaid)
	}
	wantCum := domain.CumulativeStats{
		ActivatedShops: 1,
		ProviderShops:  1,
		PaymentCount:   2,
		ProviderCount:  2,
		PaymentAmount:  80,
		ProviderAmount: 80,
	}
	if sp.Cumulative != wantCum {
		t.Errorf("Cumulative = %+v, want %+v", sp.Cumulative, wantCum)
	}

	var keys []string
	for _, w := range sp.Weekly {
		keys = append(keys, w.Key)
	}
	wantKeys := []string{"activatedShops", "solPayShops", "paymentCount", "solPayCount", "paymentAmount", "solPayAmount"}
	if !reflect.DeepEqual(keys, wantKeys) {
		t.Errorf("weekly keys = %v, want %v", keys, wantKeys)
	}
	if w := weekly(sp.Weekly, "activatedShops"); w.LastWeek != 0 || w.ThisWeek != 1 || w.ChangeRate != "-" {
		t.Errorf("activatedShops = %+v", w)
	}
}

func TestPaymentSummaryInflowAndChurn(t *testing.T) {
	e := summaryFixture(t)
	s := e.PaymentSummary("20240108", "20240101")

	wantInflow := domain.NewInflow{KakaoPayNew: 1, KakaoPayConverted: 1}
	if s.NewInflow != wantInflow {
		t.Errorf("NewInflow = %+v, want %+v", s.NewInflow, wantInflow)
	}

	want := []domain.ChurnedShop{{
		ShopCode:   "S5",
		ShopName:   "Shop S5",
		PayTypeRaw: domain.RawPayPrepaid,
		Promotion:  domain.PromotionKakaoPay,
	}}
	if s.ChurnAndRisk.ChurnedShops != 1 || !reflect.DeepEqual(s.ChurnAndRisk.ChurnedShopList, want) {
		t.Errorf("churn = %d %+v, want %+v", s.ChurnAndRisk.ChurnedShops, s.ChurnAndRisk.ChurnedShopList, want)
	}

	risk := e.FindRiskShops("20240108")
	c := s.ChurnAndRisk
	if c.PromotionRiskShops != len(c.PromotionRiskList) || c.PromotionRiskShops != len(risk)-1 {
		t.Errorf("PromotionRiskShops = %d of %d risk rows", c.PromotionRiskShops, len(risk))
	}
	for _, r := range c.PromotionRiskList {
		if !r.KakaoPayPromotion && !r.SolPayPromotion {
			t.Errorf("%s has no promotion flag", r.ShopCode)
		}
	}
}

func TestPaymentSummaryNoPrevious(t *testing.T) {
	s := summaryFixture(t).PaymentSummary("20240101", "")
	if s.ChurnAndRisk.ChurnedShops != 0 || s.ChurnAndRisk.ChurnedShopList == nil {
		t.Errorf("churn without a previous date = %+v", s.ChurnAndRisk)
	}
	if s.NewInflow.KakaoPayConverted != 0 || s.NewInflow.SolPayConverted != 0 {
		t.Errorf("converted without a previous date = %+v", s.NewInflow)
	}
	if w := weekly(s.KakaoPayActivation.Weekly, "activatedShops"); w.LastWeek != 0 || w.ChangeRate != "-" {
		t.Errorf("activatedShops = %+v", w)
	}
}

// A store pending on one date and active on the next, under a promotion,
// is not new but counts once as converted.
func TestPendingToActiveConversion(t *testing.T) {
	e := newEngine(t, []day{
		{
			date:   "20240101",
			orders: []domain.OrderRecord{order("S1", pending, prepaid, kakaoPromo)},
		},
		{
			date:     "20240108",
			orders:   []domain.OrderRecord{order("S1", active, prepaid, kakaoPromo)},
			payments: []domain.PaymentRecord{payment("S1", 1, 100, 0, 0, 1, 100)},
		},
	})

	if got := e.FindNewShops("20240101", "20240108"); len(got) != 0 {
		t.Errorf("FindNewShops = %v, want none", codes(got))
	}
	before := e.PaymentSummary("20240101", "").NewInflow.KakaoPayConverted
	after := e.PaymentSummary("20240108", "20240101").NewInflow.KakaoPayConverted
	if after-before != 1 {
		t.Errorf("converted went %d -> %d, want an increase of 1", before, after)
	}
}

// ---------------------------------------------------------------------------
// Agencies
// ---------------------------------------------------------------------------

func agencyFixture(t *testing.T, opts ...Option) *Engine {
	t.Helper()
	return newEngine(t, []day{
		{
			date: "20240101",
			orders: []domain.OrderRecord{
				order("A2", active, prepaid, agency("Acme, Inc."), noPOS(1, 50)),
				order("B1", active, postpaid, agency("Agency B"), noPOS(1, 10)),
			},
		},
		{
			date: "20240108",
			orders: []domain.OrderRecord{
				order("A1", active, prepaid, agency("Acme, Inc."), noPOS(1, 100), devices(2), registered("2024-01-05")),
				order("E1", pending, prepaid, agency("Agency E")),
				order("A2", active, postpaid, agency("Acme, Inc."), devices(1)),
				order("B1", active, postpaid, agency("Agency B"), noPOS(2, 300)),
				order("D1", active, prepaid, agency("-")),
				order("D2", pending, prepaid, agency("")),
				order("D3", active, postpaid, agency("  ")),
				order("C1", terminated, prepaid, agency("Agency C"), noPOS(5, 500)),
			},
		},
	}, opts...)
}

func TestAgencyPerformance(t *testing.T) {
	list := agencyFixture(t).AgencyPerformance("20240108")

	var names []string
	for _, a := range list {
		names = append(names, a.AgencyName)
	}
	wantNames := []string{DefaultDirectLabel, "Agency B", "Acme, Inc.", "Agency E"}
	if !reflect.DeepEqual(names, wantNames) {
		t.Fatalf("agencies = %v, want %v", names, wantNames)
	}

	direct := list[0]
	if !direct.IsDirect || direct.TotalShops != 3 || direct.ActiveShops != 2 || direct.PendingShops != 1 || direct.ActivationRate != 0 {
		t.Errorf("direct = %+v", direct)
	}

	b := list[1]
	if b.ActivationRate != 100 || b.ActivatedShops != 1 || b.PostpaidShops != 1 || b.ChurnedShops != 0 {
		t.Errorf("Agency B = %+v", b)
	}

	acme := list[2]
	if acme.TotalShops != 2 || acme.ActiveShops != 2 || acme.ActivatedShops != 1 || acme.ActivationRate != 50 {
		t.Errorf("Acme = %+v", acme)
	}
	if acme.ChurnedShops != 1 || acme.NewShops != 1 || acme.RiskShops != 2 {
		t.Errorf("Acme churned/new/risk = %d/%d/%d, want 1/1/2", acme.ChurnedShops, acme.NewShops, acme.RiskShops)
	}
	if acme.TotalDevices != 3 || acme.TotalOrderAmount != 100 || acme.AvgOrderCount != 0.5 {
		t.Errorf("Acme devices/amount/avg = %d/%d/%v", acme.TotalDevices, acme.TotalOrderAmount, acme.AvgOrderCount)
	}
	if len(acme.ShopList) != 2 || acme.ShopList[0].ShopCode != "A1" {
		t.Errorf("Acme stores = %v", codes(acme.ShopList))
	}

	e := list[3]
	if e.ActiveShops != 0 || e.ActivationRate != 0 || e.TotalShops != 1 {
		t.Errorf("Agency E = %+v", e)
	}
}

func TestAgencyPerformanceSkipsTerminated(t *testing.T) {
	for _, a := range agencyFixture(t).AgencyPerformance("20240108") {
		if a.AgencyName == "Agency C" {
			t.Errorf("agency with only terminated stores was reported: %+v", a)
		}
		for _, o := range a.ShopList {
			if o.Status == domain.StatusTerminated {
				t.Errorf("%s lists terminated store %s", a.AgencyName, o.ShopCode)
			}
		}
	}
}

func TestAgencyPerformanceDirectLabel(t *testing.T) {
	list := agencyFixture(t, WithDirectLabel("Direct")).AgencyPerformance("20240108")
	if len(list) == 0 {
		t.Fatal("no agencies reported")
	}
	if list[0].AgencyName != "Direct" || !list[0].IsDirect {
		t.Errorf("first agency = %+v, want Direct", list[0])
	}
}

func TestAgencyRatesAreBounded(t *testing.T) {
	for _, a := range agencyFixture(t).AgencyPerformance("20240108") {
		if a.ActivationRate < 0 || a.ActivationRate > 100 {
			t.Errorf("%s rate = %v", a.AgencyName, a.ActivationRate)
		}
		if a.ActiveShops+a.PendingShops > a.TotalShops {
			t.Errorf("%s active+pending > total", a.AgencyName)
		}
	}
}
