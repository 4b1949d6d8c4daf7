package engine

import "shopmetrics/internal/domain"

// Field positions of the risk look-back grouping.
const (
	riskOrders   = 0
	riskPayments = 1
)

// riskWindow returns date and up to lookback-1 axis dates before it, newest
// first. It is empty when date is not on the axis.
func (e *Engine) riskWindow(date string) []string {
	dates := e.snap.Dates()
	i := e.dateIndex(date)
	var window []string
	for k := 0; k < e.riskLookback && i-k >= 0; k++ {
		window = append(window, dates[i-k])
	}
	return window
}

// lookbackSums sums, per shop code, order total_count_all and periodic
// payment count over the risk window.
func (e *Engine) lookbackSums(date string) *Groups {
	type activity struct {
		code     string
		orders   int64
		payments int64
	}
	var rows []activity
	for _, d := range e.riskWindow(date) {
		for _, p := range e.snap.Payments(d) {
			rows = append(rows, activity{code: p.ShopCode, payments: p.Count})
		}
		for _, o := range e.snap.Orders(d) {
			rows = append(rows, activity{code: o.ShopCode, orders: o.TotalCountAll})
		}
	}
	return GroupSum(rows,
		func(a *activity) string { return a.code },
		func(a *activity) int64 { return a.orders },
		func(a *activity) int64 { return a.payments },
	)
}

// FindRiskShops returns the active stores on date whose summed orders and
// summed periodic payments over the look-back window are both below the
// threshold. Cumulative payment figures at date are attached for display.
func (e *Engine) FindRiskShops(date string) []domain.ShopAnalysis {
	sums := e.lookbackSums(date)
	cumulative := paymentIndex(e.snap.Cumulative(date))

	out := make([]domain.ShopAnalysis, 0)
	orders := e.snap.Orders(date)
	for i := range orders {
		o := &orders[i]
		if !isActive(o) {
			continue
		}
		orderSum := sums.Value(o.ShopCode, riskOrders)
		paymentSum := sums.Value(o.ShopCode, riskPayments)
		if orderSum >= e.riskThreshold || paymentSum >= e.riskThreshold {
			continue
		}

		a := domain.ShopAnalysis{
			ShopCode:          o.ShopCode,
			ShopName:          o.ShopName,
			PayType:           o.PayType,
			PayTypeRaw:        o.PayTypeText(),
			Status:            o.Status,
			StatusRaw:         o.StatusText(),
			Registered:        o.Registered,
			HasOrders:         orderSum > 0,
			HasPayments:       paymentSum > 0,
			TotalOrderCount:   orderSum,
			TotalPaymentCount: paymentSum,
			DeviceCount:       o.DeviceCount,
			TableCount:        o.TableCount,
			SolPayPromotion:   o.SolPayPromotion.On(),
			KakaoPayPromotion: o.NicePayPromotion.On(),
		}
		if p := cumulative[o.ShopCode]; p != nil {
			a.TotalPaymentAmount = p.TotalPrice
			a.SolPayCount = p.SolPayCount
			a.SolPayAmount = p.SolPayAmount
			a.KakaoPayCount = p.KakaoMoneyCount
			a.KakaoPayAmount = p.KakaoMoneyAmount
		}
		out = append(out, a)
	}
	return out
}

func riskCodes(list []domain.ShopAnalysis) map[string]bool {
	set := make(map[string]bool, len(list))
	for _, a := range list {
		set[a.ShopCode] = true
	}
	return set
}
