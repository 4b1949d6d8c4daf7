package engine

import (
	"github.com/shopspring/decimal"

	"shopmetrics/internal/domain"
)

var hundred = decimal.NewFromInt(100)

// ProviderStats compares promotion enrolment on date with provider use in
// the cumulative payment rows. KakaoPay use is counted over every store, not
// only enrolled ones.
func (e *Engine) ProviderStats(date string) domain.ProviderStats {
	orders := e.snap.Orders(date)
	cumulative := paymentIndex(e.snap.Cumulative(date))

	usesProvider := func(pr domain.Provider) func(*domain.OrderRecord) bool {
		return func(o *domain.OrderRecord) bool {
			p := cumulative[o.ShopCode]
			return p != nil && p.ProviderCount(pr) > 0
		}
	}

	solPromo := filterOrders(orders, promoted(domain.ProviderSolPay))
	s := domain.ProviderStats{
		Date:                 date,
		SolPayPromoShops:     len(solPromo),
		SolPayActiveShops:    countOrders(solPromo, usesProvider(domain.ProviderSolPay)),
		SolPayActivationRate: "0",
		KakaoPayPromoShops:   countOrders(orders, promoted(domain.ProviderKakaoPay)),
		KakaoPayActiveShops:  countOrders(orders, usesProvider(domain.ProviderKakaoPay)),
	}
	if s.SolPayPromoShops > 0 {
		s.SolPayActivationRate = percent(int64(s.SolPayActiveShops), int64(s.SolPayPromoShops)).StringFixed(1)
	}
	return s
}

// percent returns part/whole*100; whole must be non-zero.
func percent(part, whole int64) decimal.Decimal {
	return decimal.NewFromInt(part).Mul(hundred).Div(decimal.NewFromInt(whole))
}

// Compare builds a WeeklyComparison. The rate is rounded half away from
// zero to a whole percentage.
func Compare(key, label string, last, cur int64) domain.WeeklyComparison {
	w := domain.WeeklyComparison{
		Key:        key,
		Label:      label,
		LastWeek:   last,
		ThisWeek:   cur,
		Change:     cur - last,
		ChangeRate: "-",
	}
	if last > 0 {
		w.ChangeRate = percent(cur-last, last).Round(0).String() + "%"
	}
	return w
}

// ---------------------------------------------------------------------------
// Payment summary
// ---------------------------------------------------------------------------

// providerWeek holds one provider's prepaid figures for a single date.
type providerWeek struct {
	stats  domain.ProviderWeekStats
	groups *Groups
}

// prepaidWeek computes the weekly figures of a provider's active prepaid
// promotion stores. Activation comes from order rows grouped per store; the
// provider-specific figures come from the periodic payment rows of every
// store enrolled on that date.
func prepaidWeek(orders []domain.OrderRecord, payments []domain.PaymentRecord, pr domain.Provider) providerWeek {
	enrolled := shopCodes(filterOrders(orders, promoted(pr)))
	pays := filterPayments(payments, enrolled)
	groups := activityGroups(filterOrders(orders, allOf(promoted(pr), isPrepaid, isActive)))

	w := providerWeek{groups: groups}
	w.stats.ActivatedShops = groups.Count(activated)
	w.stats.PaymentCount = groups.Total(activityOrders, nil)
	w.stats.PaymentAmount = groups.Total(activityAmount, activated)
	for i := range pays {
		p := &pays[i]
		if p.ProviderCount(pr) > 0 {
			w.stats.ProviderShops++
		}
		w.stats.ProviderCount += p.ProviderCount(pr)
		w.stats.ProviderAmount += p.ProviderAmount(pr)
	}
	return w
}

// postpaidWeek computes the weekly figures of active postpaid KakaoPay
// promotion stores.
func postpaidWeek(orders []domain.OrderRecord) (domain.PostpaidWeekStats, *Groups) {
	groups := activityGroups(filterOrders(orders, allOf(promoted(domain.ProviderKakaoPay), isPostpaid, isActive)))
	return domain.PostpaidWeekStats{
		ActivatedShops: groups.Count(activated),
		OrderCount:     groups.Total(activityOrders, nil),
		OrderAmount:    groups.Total(activityAmount, activated),
	}, groups
}

// cumulativeStats reads a provider's figures from the cumulative payment
// rows of the given promotion stores. A store is activated when its overall
// payment count is positive.
func cumulativeStats(cumulative []domain.PaymentRecord, enrolled map[string]bool, pr domain.Provider) domain.CumulativeStats {
	var c domain.CumulativeStats
	for _, p := range filterPayments(cumulative, enrolled) {
		if p.Count > 0 {
			c.ActivatedShops++
		}
		if p.ProviderCount(pr) > 0 {
			c.ProviderShops++
		}
		c.PaymentCount += p.Count
		c.ProviderCount += p.ProviderCount(pr)
		c.PaymentAmount += p.TotalPrice
		c.ProviderAmount += p.ProviderAmount(pr)
	}
	return c
}

// PaymentSummary compares provider activity on cur against prev. prev need
// not be adjacent to cur on the axis.
func (e *Engine) PaymentSummary(cur, prev string) domain.PaymentSummary {
	curOrders := e.snap.Orders(cur)
	prevOrders := e.snap.Orders(prev)
	curPayments := e.snap.Payments(cur)
	prevPayments := e.snap.Payments(prev)
	curCumulative := e.snap.Cumulative(cur)

	kakaoPromo := filterOrders(curOrders, promoted(domain.ProviderKakaoPay))
	solPromo := filterOrders(curOrders, promoted(domain.ProviderSolPay))

	s := domain.PaymentSummary{
		Date:     cur,
		PrevDate: prev,
		KakaoPayShops: domain.KakaoPayShopStats{
			Prepaid: domain.StatusCounts{
				Pending: countOrders(kakaoPromo, allOf(isPrepaid, isPending)),
				Active:  countOrders(kakaoPromo, allOf(isPrepaid, isActive)),
			},
			Postpaid: domain.StatusCounts{
				Pending: countOrders(kakaoPromo, allOf(isPostpaid, isPending)),
				Active:  countOrders(kakaoPromo, allOf(isPostpaid, isActive)),
			},
			Total: len(kakaoPromo),
		},
		SolPayShops: domain.SolPayShopStats{
			Prepaid: domain.StatusCounts{
				Pending: countOrders(solPromo, isPending),
				Active:  countOrders(solPromo, isActive),
			},
			Total: len(solPromo),
		},
	}

	// KakaoPay.
	curKakao := prepaidWeek(curOrders, curPayments, domain.ProviderKakaoPay)
	prevKakao := prepaidWeek(prevOrders, prevPayments, domain.ProviderKakaoPay)
	curPost, curPostGroups := postpaidWeek(curOrders)
	prevPost, prevPostGroups := postpaidWeek(prevOrders)

	e.log.Debug("kakaopay prepaid grouping",
		"date", cur,
		"rows", countOrders(curOrders, allOf(promoted(domain.ProviderKakaoPay), isPrepaid, isActive)),
		"stores", curKakao.groups.Len(),
		"activated", curKakao.stats.ActivatedShops,
		"amount", curKakao.stats.PaymentAmount,
	)

	s.KakaoPayActivation = domain.KakaoPayActivation{
		Prepaid:  curKakao.stats,
		Postpaid: curPost,
		Total: domain.ActivationTotals{
			ActivatedShops: curKakao.stats.ActivatedShops + curPost.ActivatedShops,
			PaymentCount:   curKakao.stats.PaymentCount + curPost.OrderCount,
			PaymentAmount:  curKakao.stats.PaymentAmount + curPost.OrderAmount,
		},
		Weekly: []domain.WeeklyComparison{
			Compare("activatedShops", "Activated stores", int64(prevKakao.stats.ActivatedShops), int64(curKakao.stats.ActivatedShops)),
			Compare("kakaoMoneyShops", "KakaoMoney stores", int64(prevKakao.stats.ProviderShops), int64(curKakao.stats.ProviderShops)),
			Compare("paymentCount", "Payment count", prevKakao.stats.PaymentCount, curKakao.stats.PaymentCount),
			Compare("kakaoMoneyCount", "KakaoMoney payment count", prevKakao.stats.ProviderCount, curKakao.stats.ProviderCount),
			Compare("paymentAmount", "Payment amount", prevKakao.stats.PaymentAmount, curKakao.stats.PaymentAmount),
			Compare("kakaoMoneyAmount", "KakaoMoney payment amount", prevKakao.stats.ProviderAmount, curKakao.stats.ProviderAmount),
			Compare("postpaidShops", "Postpaid activated stores", int64(prevPost.ActivatedShops), int64(curPost.ActivatedShops)),
			Compare("postpaidOrderCount", "Postpaid order count", prevPost.OrderCount, curPost.OrderCount),
			Compare("postpaidOrderAmount", "Postpaid order amount", prevPost.OrderAmount, curPost.OrderAmount),
			Compare("totalActivatedShops", "Total activated stores",
				int64(prevKakao.stats.ActivatedShops+prevPost.ActivatedShops),
				int64(curKakao.stats.ActivatedShops+curPost.ActivatedShops)),
			Compare("totalPaymentCount", "Total payment count",
				prevKakao.stats.PaymentCount+prevPost.OrderCount,
				curKakao.stats.PaymentCount+curPost.OrderCount),
			Compare("totalPaymentAmount", "Total payment amount",
				prevKakao.stats.PaymentAmount+prevPost.OrderAmount,
				curKakao.stats.PaymentAmount+curPost.OrderAmount),
		},
		Cumulative:         cumulativeStats(curCumulative, shopCodes(kakaoPromo), domain.ProviderKakaoPay),
		CumulativePostpaid: curPost,
	}

	// SolPay.
	curSol := prepaidWeek(curOrders, curPayments, domain.ProviderSolPay)
	prevSol := prepaidWeek(prevOrders, prevPayments, domain.ProviderSolPay)

	s.SolPayActivation = domain.SolPayActivation{
		Prepaid: curSol.stats,
		Weekly: []domain.WeeklyComparison{
			Compare("activatedShops", "Activated stores", int64(prevSol.stats.ActivatedShops), int64(curSol.stats.ActivatedShops)),
			Compare("solPayShops", "SolPay stores", int64(prevSol.stats.ProviderShops), int64(curSol.stats.ProviderShops)),
			Compare("paymentCount", "Payment count", prevSol.stats.PaymentCount, curSol.stats.PaymentCount),
			Compare("solPayCount", "SolPay payment count", prevSol.stats.ProviderCount, curSol.stats.ProviderCount),
			Compare("paymentAmount", "Payment amount", prevSol.stats.PaymentAmount, curSol.stats.PaymentAmount),
			Compare("solPayAmount", "SolPay payment amount", prevSol.stats.ProviderAmount, curSol.stats.ProviderAmount),
		},
		Cumulative: cumulativeStats(curCumulative, shopCodes(solPromo), domain.ProviderSolPay),
	}

	s.NewInflow = e.newInflow(cur, curOrders, prevOrders)

	// Churn: activated on prev under any grouping, activated on cur under none.
	prevActivated := unionActivated(prevKakao.groups, prevPostGroups, prevSol.groups)
	curActivated := unionActivated(curKakao.groups, curPostGroups, curSol.groups)
	churned := make([]domain.ChurnedShop, 0)
	for _, code := range prevActivated.order {
		if curActivated.set[code] {
			continue
		}
		churned = append(churned, churnedShop(code, curOrders, prevOrders))
	}

	risk := e.FindRiskShops(cur)
	promotionRisk := make([]domain.ShopAnalysis, 0)
	for _, r := range risk {
		if r.KakaoPayPromotion || r.SolPayPromotion {
			promotionRisk = append(promotionRisk, r)
		}
	}

	e.log.Debug("payment summary churn",
		"date", cur,
		"prev_activated", len(prevActivated.order),
		"cur_activated", len(curActivated.order),
		"churned", len(churned),
		"risk", len(risk),
		"promotion_risk", len(promotionRisk),
	)

	s.ChurnAndRisk = domain.ChurnAndRisk{
		ChurnedShops:       len(churned),
		ChurnedShopList:    churned,
		PromotionRiskShops: len(promotionRisk),
		PromotionRiskList:  promotionRisk,
	}
	return s
}

// newInflow counts promotion stores registered in the week ending at cur
// and stores that moved from pending on prev to active on cur.
func (e *Engine) newInflow(cur string, curOrders, prevOrders []domain.OrderRecord) domain.NewInflow {
	var in domain.NewInflow

	if target, ok := ParseDateKey(cur); ok {
		// The week includes cur itself.
		days := max(e.newShopWindow-1, 0)
		fresh := filterOrders(curOrders, func(o *domain.OrderRecord) bool {
			return registeredWithin(o, target, days)
		})
		in.KakaoPayNew = countOrders(fresh, promoted(domain.ProviderKakaoPay))
		in.SolPayNew = countOrders(fresh, promoted(domain.ProviderSolPay))
		e.log.Debug("new inflow", "date", cur, "stores", len(fresh),
			"kakaopay", in.KakaoPayNew, "solpay", in.SolPayNew)
	}

	wasPending := shopCodes(filterOrders(prevOrders, isPending))
	converted := filterOrders(curOrders, func(o *domain.OrderRecord) bool {
		return isActive(o) && wasPending[o.ShopCode]
	})
	in.KakaoPayConverted = countOrders(converted, promoted(domain.ProviderKakaoPay))
	in.SolPayConverted = countOrders(converted, promoted(domain.ProviderSolPay))
	return in
}

// orderedSet is a set of shop codes that remembers insertion order.
type orderedSet struct {
	order []string
	set   map[string]bool
}

func (s *orderedSet) add(code string) {
	if !s.set[code] {
		s.set[code] = true
		s.order = append(s.order, code)
	}
}

func unionActivated(groups ...*Groups) *orderedSet {
	s := &orderedSet{set: make(map[string]bool)}
	for _, g := range groups {
		for _, code := range g.Keys(activated) {
			s.add(code)
		}
	}
	return s
}

// churnedShop describes code from its first order row on cur, falling back
// to prev.
func churnedShop(code string, curOrders, prevOrders []domain.OrderRecord) domain.ChurnedShop {
	c := domain.ChurnedShop{ShopCode: code, Promotion: domain.PromotionOther}
	o := firstOrder(curOrders, code)
	if o == nil {
		o = firstOrder(prevOrders, code)
	}
	if o == nil {
		return c
	}
	c.ShopName = o.ShopName
	c.PayTypeRaw = o.PayTypeText()
	switch {
	case o.NicePayPromotion.On():
		c.Promotion = domain.PromotionKakaoPay
	case o.SolPayPromotion.On():
		c.Promotion = domain.PromotionSolPay
	}
	return c
}

func firstOrder(orders []domain.OrderRecord, code string) *domain.OrderRecord {
	for i := range orders {
		if orders[i].ShopCode == code {
			return &orders[i]
		}
	}
	return nil
}
