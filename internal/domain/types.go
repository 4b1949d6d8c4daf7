// Package domain defines the record types shared by the parser, the snapshot
// store and the derivation engine: payment rows, order rows and the closed
// enumerations carried inside them.
package domain

import "strings"

// ---------------------------------------------------------------------------
// Enumerations
// ---------------------------------------------------------------------------

// ShopStatus is the lifecycle state of a store.
type ShopStatus int

const (
	StatusUnknown ShopStatus = iota
	StatusActive
	StatusPending
	StatusTerminated
)

// Canonical source spellings.
const (
	RawStatusActive     = "이용"
	RawStatusPending    = "이용대기"
	RawStatusTerminated = "종료"
)

// ParseShopStatus maps a raw status field onto a ShopStatus. Both the source
// spelling and the English name are accepted; anything else is
// StatusUnknown.
func ParseShopStatus(raw string) ShopStatus {
	switch strings.TrimSpace(raw) {
	case RawStatusActive, "active":
		return StatusActive
	case RawStatusPending, "pending":
		return StatusPending
	case RawStatusTerminated, "terminated":
		return StatusTerminated
	default:
		return StatusUnknown
	}
}

// String returns the canonical source spelling, or "" for StatusUnknown.
func (s ShopStatus) String() string {
	switch s {
	case StatusActive:
		return RawStatusActive
	case StatusPending:
		return RawStatusPending
	case StatusTerminated:
		return RawStatusTerminated
	default:
		return ""
	}
}

// Name returns a stable English identifier used in JSON output.
func (s ShopStatus) Name() string {
	switch s {
	case StatusActive:
		return "active"
	case StatusPending:
		return "pending"
	case StatusTerminated:
		return "terminated"
	default:
		return "unknown"
	}
}

// PayType distinguishes prepaid (card payment enabled) from postpaid
// (POS only) stores.
type PayType int

const (
	PayUnknown PayType = iota
	PayPrepaid
	PayPostpaid
)

// Canonical source spellings.
const (
	RawPayPrepaid  = "선불"
	RawPayPostpaid = "후불"
)

// ParsePayType maps a raw pg_yn field onto a PayType.
func ParsePayType(raw string) PayType {
	switch strings.TrimSpace(raw) {
	case RawPayPrepaid, "prepaid":
		return PayPrepaid
	case RawPayPostpaid, "postpaid":
		return PayPostpaid
	default:
		return PayUnknown
	}
}

// String returns the canonical source spelling, or "" for PayUnknown.
func (p PayType) String() string {
	switch p {
	case PayPrepaid:
		return RawPayPrepaid
	case PayPostpaid:
		return RawPayPostpaid
	default:
		return ""
	}
}

// Name returns a stable English identifier used in JSON output.
func (p PayType) Name() string {
	switch p {
	case PayPrepaid:
		return "prepaid"
	case PayPostpaid:
		return "postpaid"
	default:
		return "unknown"
	}
}

// Flag is a raw O/X promotion flag.
type Flag string

const (
	FlagOn  Flag = "O"
	FlagOff Flag = "X"
)

// On reports whether the flag is set.
func (f Flag) On() bool { return f == FlagOn }

// Provider identifies one of the two payment-promotion programs.
type Provider string

const (
	ProviderSolPay   Provider = "solpay"
	ProviderKakaoPay Provider = "kakaopay"
)

// ---------------------------------------------------------------------------
// Records
// ---------------------------------------------------------------------------

// PaymentRecord is one store's payment figures for a date, either for a
// single period or cumulative.
type PaymentRecord struct {
	PayType    PayType `json:"-"`
	PayTypeRaw string  `json:"pgYn"`
	ShopCode   string  `json:"shopCode"`
	ShopName   string  `json:"shopName"`

	Count      int64 `json:"count"`
	TotalPrice int64 `json:"totalPrice"`

	SolPayAmount     int64 `json:"solPayAmt"`
	SolPayCount      int64 `json:"solPayCount"`
	KakaoMoneyAmount int64 `json:"kakaoMoneyAmt"`
	KakaoMoneyCount  int64 `json:"kakaoMoneyCount"`
}

// PayTypeText returns the raw pay type when present, otherwise the canonical
// spelling of PayType.
func (p *PaymentRecord) PayTypeText() string {
	if p.PayTypeRaw != "" {
		return p.PayTypeRaw
	}
	return p.PayType.String()
}

// ProviderCount returns the provider-specific transaction count.
func (p *PaymentRecord) ProviderCount(pr Provider) int64 {
	if pr == ProviderSolPay {
		return p.SolPayCount
	}
	return p.KakaoMoneyCount
}

// ProviderAmount returns the provider-specific transaction amount.
func (p *PaymentRecord) ProviderAmount(pr Provider) int64 {
	if pr == ProviderSolPay {
		return p.SolPayAmount
	}
	return p.KakaoMoneyAmount
}

// OrderRecord is one store row of the order dataset for a date. A store may
// appear on several rows.
type OrderRecord struct {
	PayType    PayType `json:"-"`
	PayTypeRaw string  `json:"pgYn"`
	ShopCode   string  `json:"shopCode"`
	ShopName   string  `json:"shopName"`
	POSCode    string  `json:"posCode"`

	SolPayPromotion  Flag `json:"solPayPromotionYn"`
	NicePayPromotion Flag `json:"nicePayPromotionYn"` // gates the KakaoPay program

	Registered     string     `json:"insDatetime"`
	FormattedDate  string     `json:"formattedDate"`
	Company        string     `json:"companyName"`
	PrevCompany    string     `json:"prevCompanyName"`
	Status         ShopStatus `json:"-"`
	StatusRaw      string     `json:"shopStatus"`
	FormattedDate2 string     `json:"formattedDate2"`

	DeviceCount int64 `json:"deviceCount"`
	TableCount  int64 `json:"tableCount"`

	TotalCountAll   int64 `json:"totalCountAll"`
	OrderCountAll   int64 `json:"orderCountAll"`
	TotalCountNoPOS int64 `json:"totalCountNoPos"`
	TotalPriceNoPOS int64 `json:"totalPriceNoPos"`
	OrderCountNoPOS int64 `json:"orderCountNoPos"`
	PriceNoPOS      int64 `json:"priceNoPos"`
}

// PayTypeText returns the raw pay type when present, otherwise the canonical
// spelling of PayType.
func (o *OrderRecord) PayTypeText() string {
	if o.PayTypeRaw != "" {
		return o.PayTypeRaw
	}
	return o.PayType.String()
}

// StatusText returns the raw status when present, otherwise the canonical
// spelling of Status.
func (o *OrderRecord) StatusText() string {
	if o.StatusRaw != "" {
		return o.StatusRaw
	}
	return o.Status.String()
}

// Promoted reports whether the store is enrolled in the provider's program.
func (o *OrderRecord) Promoted(pr Provider) bool {
	if pr == ProviderSolPay {
		return o.SolPayPromotion.On()
	}
	return o.NicePayPromotion.On()
}
