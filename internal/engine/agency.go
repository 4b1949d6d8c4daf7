package engine

import (
	"cmp"
	"slices"
	"strings"

	"shopmetrics/internal/domain"
)

// agencyName normalises the previous-operator field. Blank and "-" map to
// the direct-operated bucket.
func (e *Engine) agencyName(o *domain.OrderRecord) string {
	name := strings.TrimSpace(o.PrevCompany)
	if name == "" || name == "-" {
		return e.directLabel
	}
	return name
}

// churnedCodes returns the stores with non-POS activity on the axis date
// before date and none on date. Terminated stores are ignored on both sides.
func (e *Engine) churnedCodes(date string, current []domain.OrderRecord) map[string]bool {
	churned := make(map[string]bool)
	prev, ok := e.PreviousDate(date)
	if !ok {
		return churned
	}
	before := activityGroups(filterOrders(e.snap.Orders(prev), notTerminated))
	now := activityGroups(current)
	for _, code := range before.Keys(activated) {
		if g := now.Lookup(code); g == nil || !activated(g) {
			churned[code] = true
		}
	}
	return churned
}

// AgencyPerformance rolls up the non-terminated stores of date per agency.
// The direct-operated bucket comes first; the rest follow by descending
// activation rate, ties keeping first-seen order.
func (e *Engine) AgencyPerformance(date string) []domain.AgencyPerformance {
	orders := filterOrders(e.snap.Orders(date), notTerminated)

	byAgency := GroupSum(orders, func(o *domain.OrderRecord) string { return e.agencyName(o) })
	shops := make(map[string][]domain.OrderRecord, byAgency.Len())
	for i := range orders {
		name := e.agencyName(&orders[i])
		shops[name] = append(shops[name], orders[i])
	}

	risk := riskCodes(e.FindRiskShops(date))
	churned := e.churnedCodes(date, orders)
	fresh := shopCodes(e.NewShops(date))

	out := make([]domain.AgencyPerformance, 0, byAgency.Len())
	for _, g := range byAgency.List {
		list := shops[g.Key]
		a := domain.AgencyPerformance{
			AgencyName:    g.Key,
			IsDirect:      g.Key == e.directLabel,
			TotalShops:    len(list),
			ActiveShops:   countOrders(list, isActive),
			PendingShops:  countOrders(list, isPending),
			PrepaidShops:  countOrders(list, isPrepaid),
			PostpaidShops: countOrders(list, isPostpaid),
			ShopList:      list,
		}

		var orderCount int64
		for i := range list {
			o := &list[i]
			if o.OrderCountNoPOS >= 1 {
				a.ActivatedShops++
			}
			if risk[o.ShopCode] {
				a.RiskShops++
			}
			if churned[o.ShopCode] {
				a.ChurnedShops++
			}
			if fresh[o.ShopCode] {
				a.NewShops++
			}
			a.TotalDevices += o.DeviceCount
			a.TotalOrderAmount += o.PriceNoPOS
			orderCount += o.OrderCountNoPOS
		}
		if a.ActiveShops > 0 {
			a.ActivationRate = float64(a.ActivatedShops) / float64(a.ActiveShops) * 100
		}
		if a.TotalShops > 0 {
			a.AvgOrderCount = float64(orderCount) / float64(a.TotalShops)
		}
		out = append(out, a)
	}

	slices.SortStableFunc(out, func(a, b domain.AgencyPerformance) int {
		if a.IsDirect != b.IsDirect {
			if a.IsDirect {
				return -1
			}
			return 1
		}
		return cmp.Compare(b.ActivationRate, a.ActivationRate)
	})
	return out
}
