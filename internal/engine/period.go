package engine

import "shopmetrics/internal/domain"

// PeriodComparison returns one entry per axis date, in date order.
func (e *Engine) PeriodComparison() []domain.PeriodComparison {
	dates := e.snap.Dates()
	out := make([]domain.PeriodComparison, 0, len(dates))
	for _, date := range dates {
		orders := filterOrders(e.snap.Orders(date), notTerminated)
		p := domain.PeriodComparison{
			Date:         date,
			TotalShops:   len(orders),
			ActiveShops:  countOrders(orders, isActive),
			PendingShops: countOrders(orders, isPending),
			NewShops:     len(e.NewShops(date)),
			RiskShops:    len(e.FindRiskShops(date)),
		}
		for _, r := range e.snap.Payments(date) {
			p.WeeklyPaymentCount += r.Count
			p.WeeklyPaymentAmount += r.TotalPrice
			p.WeeklySolPayCount += r.SolPayCount
			p.WeeklySolPayAmount += r.SolPayAmount
			p.WeeklyKakaoPayCount += r.KakaoMoneyCount
			p.WeeklyKakaoPayAmount += r.KakaoMoneyAmount
		}
		for _, r := range e.snap.Cumulative(date) {
			p.CumulativePaymentCount += r.Count
			p.CumulativePaymentAmount += r.TotalPrice
			p.CumulativeSolPayCount += r.SolPayCount
			p.CumulativeSolPayAmount += r.SolPayAmount
			p.CumulativeKakaoPayCount += r.KakaoMoneyCount
			p.CumulativeKakaoPayAmount += r.KakaoMoneyAmount
		}
		out = append(out, p)
	}
	return out
}

// ChangeRates computes, for each entry of series, the percentage change of
// the tracked figures against the preceding entry. The first entry, and any
// figure whose previous value is not positive, reads 0.
func ChangeRates(series []domain.PeriodComparison) []domain.ChangeRate {
	out := make([]domain.ChangeRate, 0, len(series))
	for i, cur := range series {
		r := domain.ChangeRate{Date: cur.Date}
		if i > 0 {
			prev := series[i-1]
			r.ShopGrowth = growth(int64(prev.TotalShops), int64(cur.TotalShops))
			r.ActiveGrowth = growth(int64(prev.ActiveShops), int64(cur.ActiveShops))
			r.PaymentGrowth = growth(prev.CumulativePaymentCount, cur.CumulativePaymentCount)
			r.SolPayGrowth = growth(prev.CumulativeSolPayCount, cur.CumulativeSolPayCount)
			r.KakaoPayGrowth = growth(prev.CumulativeKakaoPayCount, cur.CumulativeKakaoPayCount)
		}
		out = append(out, r)
	}
	return out
}

func growth(prev, cur int64) float64 {
	if prev <= 0 {
		return 0
	}
	return float64(cur-prev) / float64(prev) * 100
}
