package engine

import "shopmetrics/internal/domain"

// KPI computes the headline figures for date. Store counts exclude
// terminated stores, which are counted separately.
func (e *Engine) KPI(date string) domain.KPIMetrics {
	all := e.snap.Orders(date)
	orders := filterOrders(all, notTerminated)

	k := domain.KPIMetrics{
		Date:            date,
		TotalShops:      len(orders),
		ActiveShops:     countOrders(orders, isActive),
		PendingShops:    countOrders(orders, isPending),
		TerminatedShops: len(all) - len(orders),
		PrepaidShops:    countOrders(orders, isPrepaid),
		PostpaidShops:   countOrders(orders, isPostpaid),
	}

	newShops := e.NewShops(date)
	k.NewShops = len(newShops)
	k.NewShopsPrepaid = countOrders(newShops, isPrepaid)
	k.NewShopsPostpaid = countOrders(newShops, isPostpaid)
	k.NewToActiveShops = countOrders(newShops, isActive)

	k.RiskShopList = e.FindRiskShops(date)
	k.RiskShops = len(k.RiskShopList)
	for _, r := range k.RiskShopList {
		switch r.PayType {
		case domain.PayPrepaid:
			k.RiskShopsPrepaid++
		case domain.PayPostpaid:
			k.RiskShopsPostpaid++
		}
	}

	for i := range orders {
		o := &orders[i]
		k.TotalDevices += o.DeviceCount
		switch o.PayType {
		case domain.PayPrepaid:
			k.DevicesPrepaid += o.DeviceCount
		case domain.PayPostpaid:
			k.DevicesPostpaid += o.DeviceCount
		}
	}
	if k.TotalShops > 0 {
		k.AvgDevicesPerShop = float64(k.TotalDevices) / float64(k.TotalShops)
	}

	for _, p := range e.snap.Cumulative(date) {
		if p.SolPayCount > 0 {
			k.SolPayShops++
			k.SolPayTotalAmount += p.SolPayAmount
			k.SolPayTotalCount += p.SolPayCount
		}
		if p.KakaoMoneyCount > 0 {
			k.KakaoPayShops++
			k.KakaoPayTotalAmount += p.KakaoMoneyAmount
			k.KakaoPayTotalCount += p.KakaoMoneyCount
		}
	}
	return k
}
