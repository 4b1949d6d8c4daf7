// Package engine derives store and payment metrics from a loaded snapshot:
// lifecycle counts, risk and new store detection, period series, provider
// activation summaries and agency rollups. Every method is a pure read.
package engine

import (
	"log/slog"
	"strings"
	"time"

	"shopmetrics/internal/domain"
	"shopmetrics/internal/store"
)

// Defaults applied by New.
const (
	DefaultNewShopWindowDays = 7
	DefaultRiskLookback      = 4
	DefaultRiskThreshold     = 10
	DefaultDirectLabel       = "직영업"
)

// Engine answers metric queries over one immutable snapshot. Engines are
// cheap; build a new one per load.
type Engine struct {
	snap *store.Snapshot
	log  *slog.Logger

	newShopWindow int
	riskLookback  int
	riskThreshold int64
	directLabel   string
}

// Option configures an Engine.
type Option func(*Engine)

// WithNewShopWindow sets the registration window, in days, that marks a
// store as new.
func WithNewShopWindow(days int) Option {
	return func(e *Engine) {
		if days >= 0 {
			e.newShopWindow = days
		}
	}
}

// WithRiskLookback sets how many axis dates, the target included, risk
// detection sums over.
func WithRiskLookback(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.riskLookback = n
		}
	}
}

// WithRiskThreshold sets the summed activity below which an active store is
// at risk.
func WithRiskThreshold(n int64) Option {
	return func(e *Engine) { e.riskThreshold = n }
}

// WithDirectLabel sets the agency name used for stores without one.
func WithDirectLabel(label string) Option {
	return func(e *Engine) {
		if label != "" {
			e.directLabel = label
		}
	}
}

// WithLogger sets the logger used for debug diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

// New creates an Engine over snap. A nil snapshot behaves as an empty one.
func New(snap *store.Snapshot, opts ...Option) *Engine {
	if snap == nil {
		snap = store.Load(store.LoadedData{})
	}
	e := &Engine{
		snap:          snap,
		log:           slog.Default(),
		newShopWindow: DefaultNewShopWindowDays,
		riskLookback:  DefaultRiskLookback,
		riskThreshold: DefaultRiskThreshold,
		directLabel:   DefaultDirectLabel,
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Snapshot returns the snapshot the engine reads.
func (e *Engine) Snapshot() *store.Snapshot { return e.snap }

// NewShopWindow returns the registration window, in days, used by NewShops.
func (e *Engine) NewShopWindow() int { return e.newShopWindow }

// ---------------------------------------------------------------------------
// Lookup primitives
// ---------------------------------------------------------------------------

// Dates returns the sorted date axis.
func (e *Engine) Dates() []string { return e.snap.Dates() }

// LatestDate returns the last date on the axis.
func (e *Engine) LatestDate() (string, bool) {
	dates := e.snap.Dates()
	if len(dates) == 0 {
		return "", false
	}
	return dates[len(dates)-1], true
}

// Orders returns the order rows for date, empty when the date is unknown.
func (e *Engine) Orders(date string) []domain.OrderRecord {
	return e.snap.Orders(date)
}

// PreviousDate returns the axis date immediately before date. It reports
// false when date is the first one or not on the axis.
func (e *Engine) PreviousDate(date string) (string, bool) {
	i := e.dateIndex(date)
	if i <= 0 {
		return "", false
	}
	return e.snap.Dates()[i-1], true
}

func (e *Engine) dateIndex(date string) int {
	for i, d := range e.snap.Dates() {
		if d == date {
			return i
		}
	}
	return -1
}

// ParseDateKey parses a YYYYMMDD key into a UTC calendar date. Any other
// shape yields false.
func ParseDateKey(key string) (time.Time, bool) {
	if len(key) != 8 {
		return time.Time{}, false
	}
	for i := 0; i < len(key); i++ {
		if key[i] < '0' || key[i] > '9' {
			return time.Time{}, false
		}
	}
	y, _ := leadingInt(key[0:4])
	m, _ := leadingInt(key[4:6])
	d, _ := leadingInt(key[6:8])
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC), true
}

// ParseRegistered parses the date part of a "YYYY-MM-DD[ HH:mm:ss]"
// registration timestamp. Empty and "-" mean no timestamp.
func ParseRegistered(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" || s == "-" {
		return time.Time{}, false
	}
	datePart, _, _ := strings.Cut(s, " ")
	parts := strings.Split(datePart, "-")
	if len(parts) != 3 {
		return time.Time{}, false
	}
	y, ok1 := leadingInt(parts[0])
	m, ok2 := leadingInt(parts[1])
	d, ok3 := leadingInt(parts[2])
	if !ok1 || !ok2 || !ok3 {
		return time.Time{}, false
	}
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC), true
}

// leadingInt reads the leading decimal digits of s.
func leadingInt(s string) (int, bool) {
	n, digits := 0, 0
	for ; digits < len(s); digits++ {
		c := s[digits]
		if c < '0' || c > '9' {
			break
		}
		n = n*10 + int(c-'0')
	}
	return n, digits > 0
}

// registeredWithin reports whether o was registered in [target-days, target].
func registeredWithin(o *domain.OrderRecord, target time.Time, days int) bool {
	reg, ok := ParseRegistered(o.Registered)
	if !ok {
		return false
	}
	return !reg.Before(target.AddDate(0, 0, -days)) && !reg.After(target)
}

// ---------------------------------------------------------------------------
// Record helpers
// ---------------------------------------------------------------------------

func filterOrders(orders []domain.OrderRecord, keep func(*domain.OrderRecord) bool) []domain.OrderRecord {
	out := make([]domain.OrderRecord, 0, len(orders))
	for i := range orders {
		if keep(&orders[i]) {
			out = append(out, orders[i])
		}
	}
	return out
}

func countOrders(orders []domain.OrderRecord, keep func(*domain.OrderRecord) bool) int {
	n := 0
	for i := range orders {
		if keep(&orders[i]) {
			n++
		}
	}
	return n
}

func notTerminated(o *domain.OrderRecord) bool { return o.Status != domain.StatusTerminated }

func isActive(o *domain.OrderRecord) bool { return o.Status == domain.StatusActive }

func isPending(o *domain.OrderRecord) bool { return o.Status == domain.StatusPending }

func isPrepaid(o *domain.OrderRecord) bool { return o.PayType == domain.PayPrepaid }

func isPostpaid(o *domain.OrderRecord) bool { return o.PayType == domain.PayPostpaid }

func promoted(pr domain.Provider) func(*domain.OrderRecord) bool {
	return func(o *domain.OrderRecord) bool { return o.Promoted(pr) }
}

func allOf(preds ...func(*domain.OrderRecord) bool) func(*domain.OrderRecord) bool {
	return func(o *domain.OrderRecord) bool {
		for _, p := range preds {
			if !p(o) {
				return false
			}
		}
		return true
	}
}

// shopCodes returns the set of shop codes present in orders.
func shopCodes(orders []domain.OrderRecord) map[string]bool {
	set := make(map[string]bool, len(orders))
	for i := range orders {
		set[orders[i].ShopCode] = true
	}
	return set
}

// paymentIndex maps shop code to payment row; a later duplicate wins.
func paymentIndex(payments []domain.PaymentRecord) map[string]*domain.PaymentRecord {
	m := make(map[string]*domain.PaymentRecord, len(payments))
	for i := range payments {
		m[payments[i].ShopCode] = &payments[i]
	}
	return m
}

func filterPayments(payments []domain.PaymentRecord, codes map[string]bool) []domain.PaymentRecord {
	out := make([]domain.PaymentRecord, 0, len(payments))
	for _, p := range payments {
		if codes[p.ShopCode] {
			out = append(out, p)
		}
	}
	return out
}
