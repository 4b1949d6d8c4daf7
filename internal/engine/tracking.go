package engine

import "shopmetrics/internal/domain"

// TrackNewShops reports every order row on base registered within the new
// store window, whatever its status. Days to activation is not derived.
func (e *Engine) TrackNewShops(base string) []domain.NewShopTracking {
	out := make([]domain.NewShopTracking, 0)
	target, ok := ParseDateKey(base)
	if !ok {
		return out
	}
	cumulative := paymentIndex(e.snap.Cumulative(base))

	orders := e.snap.Orders(base)
	for i := range orders {
		o := &orders[i]
		if !registeredWithin(o, target, e.newShopWindow) {
			continue
		}
		t := domain.NewShopTracking{
			ShopCode:             o.ShopCode,
			ShopName:             o.ShopName,
			PayTypeRaw:           o.PayTypeText(),
			Registered:           o.Registered,
			FirstSeenDate:        base,
			CurrentStatus:        o.StatusText(),
			ChangedToActive:      isActive(o),
			TotalOrderCount:      o.TotalCountAll,
			TotalOrderCountNoPOS: o.TotalCountNoPOS,
		}
		if p := cumulative[o.ShopCode]; p != nil {
			t.TotalPaymentCount = p.Count
			t.TotalPaymentAmount = p.TotalPrice
		}
		t.HasActivity = t.TotalOrderCount > 0 || t.TotalOrderCountNoPOS > 0 || t.TotalPaymentCount > 0
		out = append(out, t)
	}
	return out
}
