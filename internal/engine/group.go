package engine

import "shopmetrics/internal/domain"

// Group is one key's running totals.
type Group struct {
	Key  string
	Rows int
	Sums []int64
}

// Groups holds GroupSum results in first-seen key order.
type Groups struct {
	List  []*Group
	index map[string]*Group
}

// GroupSum groups items by key and sums each field per group. Sums[i] of a
// group is the total of fields[i].
func GroupSum[T any](items []T, key func(*T) string, fields ...func(*T) int64) *Groups {
	gs := &Groups{index: make(map[string]*Group)}
	for i := range items {
		it := &items[i]
		k := key(it)
		g, ok := gs.index[k]
		if !ok {
			g = &Group{Key: k, Sums: make([]int64, len(fields))}
			gs.index[k] = g
			gs.List = append(gs.List, g)
		}
		g.Rows++
		for j, f := range fields {
			g.Sums[j] += f(it)
		}
	}
	return gs
}

// Lookup returns the group for key, or nil.
func (gs *Groups) Lookup(key string) *Group { return gs.index[key] }

// Value returns field i of key's group, 0 when the key is absent.
func (gs *Groups) Value(key string, i int) int64 {
	if g := gs.index[key]; g != nil {
		return g.Sums[i]
	}
	return 0
}

// Len returns the number of distinct keys.
func (gs *Groups) Len() int { return len(gs.List) }

// Count returns how many groups satisfy keep.
func (gs *Groups) Count(keep func(*Group) bool) int {
	n := 0
	for _, g := range gs.List {
		if keep(g) {
			n++
		}
	}
	return n
}

// Total sums field i over the groups that satisfy keep; a nil keep takes
// every group.
func (gs *Groups) Total(i int, keep func(*Group) bool) int64 {
	var sum int64
	for _, g := range gs.List {
		if keep == nil || keep(g) {
			sum += g.Sums[i]
		}
	}
	return sum
}

// Keys returns the keys of the groups that satisfy keep in first-seen order.
func (gs *Groups) Keys(keep func(*Group) bool) []string {
	var keys []string
	for _, g := range gs.List {
		if keep(g) {
			keys = append(keys, g.Key)
		}
	}
	return keys
}

// ---------------------------------------------------------------------------
// Store activity grouping
// ---------------------------------------------------------------------------

// Field positions of an activity grouping.
const (
	activityOrders = 0
	activityAmount = 1
)

func orderShopCode(o *domain.OrderRecord) string { return o.ShopCode }

// activityGroups sums non-POS order count and price per store. A store may
// span several order rows.
func activityGroups(orders []domain.OrderRecord) *Groups {
	return GroupSum(orders, orderShopCode,
		func(o *domain.OrderRecord) int64 { return o.OrderCountNoPOS },
		func(o *domain.OrderRecord) int64 { return o.PriceNoPOS },
	)
}

// activated reports whether a store had at least one non-POS order.
func activated(g *Group) bool { return g.Sums[activityOrders] >= 1 }
