package engine

import "shopmetrics/internal/domain"

// FindNewShops returns the order rows on cur whose shop code does not appear
// on prev.
func (e *Engine) FindNewShops(prev, cur string) []domain.OrderRecord {
	seen := shopCodes(e.snap.Orders(prev))
	return filterOrders(e.snap.Orders(cur), func(o *domain.OrderRecord) bool {
		return !seen[o.ShopCode]
	})
}

// FindRecentlyAdded returns the active order rows on date registered within
// [date-days, date]. An unparseable date yields no rows.
func (e *Engine) FindRecentlyAdded(date string, days int) []domain.OrderRecord {
	target, ok := ParseDateKey(date)
	if !ok {
		return []domain.OrderRecord{}
	}
	return filterOrders(e.snap.Orders(date), func(o *domain.OrderRecord) bool {
		return registeredWithin(o, target, days) && isActive(o)
	})
}

// FindNewActive narrows FindRecentlyAdded to active stores.
func (e *Engine) FindNewActive(date string, days int) []domain.OrderRecord {
	return filterOrders(e.FindRecentlyAdded(date, days), isActive)
}

// NewShops applies the configured window to FindRecentlyAdded.
func (e *Engine) NewShops(date string) []domain.OrderRecord {
	return e.FindRecentlyAdded(date, e.newShopWindow)
}
