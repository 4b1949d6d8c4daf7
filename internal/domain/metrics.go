package domain

// ---------------------------------------------------------------------------
// Derived metrics
// ---------------------------------------------------------------------------

// ShopAnalysis is one store's look-back view as produced by risk detection.
type ShopAnalysis struct {
	ShopCode   string     `json:"shopCode"`
	ShopName   string     `json:"shopName"`
	PayType    PayType    `json:"-"`
	PayTypeRaw string     `json:"pgYn"`
	Status     ShopStatus `json:"-"`
	StatusRaw  string     `json:"shopStatus"`
	Registered string     `json:"insDatetime"`

	HasOrders   bool `json:"hasOrders"`
	HasPayments bool `json:"hasPayments"`
	IsActive    bool `json:"isActive"`

	// Look-back sums over the risk window.
	TotalOrderCount      int64 `json:"totalOrderCount"`
	TotalOrderCountNoPOS int64 `json:"totalOrderCountNoPos"`
	TotalPaymentCount    int64 `json:"totalPaymentCount"`

	DeviceCount int64 `json:"deviceCount"`
	TableCount  int64 `json:"tableCount"`

	// Cumulative figures at the target date.
	TotalPaymentAmount int64 `json:"totalPaymentAmount"`
	SolPayCount        int64 `json:"solPayCount"`
	SolPayAmount       int64 `json:"solPayAmount"`
	KakaoPayCount      int64 `json:"kakaoPayCount"`
	KakaoPayAmount     int64 `json:"kakaoPayAmount"`

	SolPayPromotion   bool `json:"solPayPromotion"`
	KakaoPayPromotion bool `json:"kakaoPayPromotion"`
}

// KPIMetrics is the headline snapshot for a single date.
type KPIMetrics struct {
	Date string `json:"date"`

	TotalShops      int `json:"totalShops"`
	ActiveShops     int `json:"activeShops"`
	PendingShops    int `json:"pendingShops"`
	TerminatedShops int `json:"terminatedShops"`
	PrepaidShops    int `json:"prepaidShops"`
	PostpaidShops   int `json:"postpaidShops"`

	NewShops         int `json:"newShops"`
	NewShopsPrepaid  int `json:"newShopsPrepaid"`
	NewShopsPostpaid int `json:"newShopsPostpaid"`
	NewToActiveShops int `json:"newToActiveShops"`

	RiskShops         int            `json:"riskShops"`
	RiskShopsPrepaid  int            `json:"riskShopsPrepaid"`
	RiskShopsPostpaid int            `json:"riskShopsPostpaid"`
	RiskShopList      []ShopAnalysis `json:"riskShopList"`

	TotalDevices      int64   `json:"totalDevices"`
	DevicesPrepaid    int64   `json:"devicesPrepaid"`
	DevicesPostpaid   int64   `json:"devicesPostpaid"`
	AvgDevicesPerShop float64 `json:"avgDevicesPerShop"`

	SolPayShops         int   `json:"solPayShops"`
	SolPayTotalAmount   int64 `json:"solPayTotalAmount"`
	SolPayTotalCount    int64 `json:"solPayTotalCount"`
	KakaoPayShops       int   `json:"kakaoPayShops"`
	KakaoPayTotalAmount int64 `json:"kakaoPayTotalAmount"`
	KakaoPayTotalCount  int64 `json:"kakaoPayTotalCount"`
}

// PeriodComparison is one point of the per-date time series.
type PeriodComparison struct {
	Date         string `json:"date"`
	TotalShops   int    `json:"totalShops"`
	ActiveShops  int    `json:"activeShops"`
	PendingShops int    `json:"pendingShops"`
	NewShops     int    `json:"newShops"`
	RiskShops    int    `json:"riskShops"`

	WeeklySolPayCount    int64 `json:"weeklySolPayCount"`
	WeeklySolPayAmount   int64 `json:"weeklySolPayAmount"`
	WeeklyKakaoPayCount  int64 `json:"weeklyKakaoPayCount"`
	WeeklyKakaoPayAmount int64 `json:"weeklyKakaoPayAmount"`
	WeeklyPaymentCount   int64 `json:"weeklyPaymentCount"`
	WeeklyPaymentAmount  int64 `json:"weeklyPaymentAmount"`

	CumulativeSolPayCount    int64 `json:"cumulativeSolPayCount"`
	CumulativeSolPayAmount   int64 `json:"cumulativeSolPayAmount"`
	CumulativeKakaoPayCount  int64 `json:"cumulativeKakaoPayCount"`
	CumulativeKakaoPayAmount int64 `json:"cumulativeKakaoPayAmount"`
	CumulativePaymentCount   int64 `json:"cumulativePaymentCount"`
	CumulativePaymentAmount  int64 `json:"cumulativePaymentAmount"`
}

// ChangeRate holds percentage changes against the preceding series entry.
type ChangeRate struct {
	Date           string  `json:"date"`
	ShopGrowth     float64 `json:"shopGrowth"`
	ActiveGrowth   float64 `json:"activeGrowth"`
	PaymentGrowth  float64 `json:"paymentGrowth"`
	SolPayGrowth   float64 `json:"solPayGrowth"`
	KakaoPayGrowth float64 `json:"kakaoPayGrowth"`
}

// NewShopTracking follows a recently registered store from its base date.
type NewShopTracking struct {
	ShopCode        string `json:"shopCode"`
	ShopName        string `json:"shopName"`
	PayTypeRaw      string `json:"pgYn"`
	Registered      string `json:"insDatetime"`
	FirstSeenDate   string `json:"firstSeenDate"`
	CurrentStatus   string `json:"currentStatus"`
	ChangedToActive bool   `json:"statusChangedToActive"`
	HasActivity     bool   `json:"hasActivity"`

	// DaysToActivation is never computed and always nil.
	DaysToActivation *int `json:"daysToActivation"`

	TotalOrderCount      int64 `json:"totalOrderCount"`
	TotalOrderCountNoPOS int64 `json:"totalOrderCountNoPos"`
	TotalPaymentCount    int64 `json:"totalPaymentCount"`
	TotalPaymentAmount   int64 `json:"totalPaymentAmount"`
}

// ProviderStats summarises promotion enrolment against actual provider use.
type ProviderStats struct {
	Date                 string `json:"date"`
	SolPayPromoShops     int    `json:"solPayPromoShops"`
	SolPayActiveShops    int    `json:"solPayActiveShops"`
	SolPayActivationRate string `json:"solPayActivationRate"`
	KakaoPayPromoShops   int    `json:"kakaoPayPromoShops"`
	KakaoPayActiveShops  int    `json:"kakaoPayActiveShops"`
}

// ---------------------------------------------------------------------------
// Payment summary
// ---------------------------------------------------------------------------

// WeeklyComparison compares one figure between the previous and the current
// date. ChangeRate is a whole percentage such as "25%", or "-" when the
// previous value is not positive.
type WeeklyComparison struct {
	Key        string `json:"key"`
	Label      string `json:"label"`
	LastWeek   int64  `json:"lastWeek"`
	ThisWeek   int64  `json:"thisWeek"`
	Change     int64  `json:"change"`
	ChangeRate string `json:"changeRate"`
}

// StatusCounts counts promotion stores by lifecycle state.
type StatusCounts struct {
	Pending int `json:"pending"`
	Active  int `json:"active"`
}

// KakaoPayShopStats counts KakaoPay promotion stores.
type KakaoPayShopStats struct {
	Prepaid  StatusCounts `json:"prepaid"`
	Postpaid StatusCounts `json:"postpaid"`
	Total    int          `json:"total"`
}

// SolPayShopStats counts SolPay promotion stores. Prepaid counts every
// enrolled store regardless of pay type.
type SolPayShopStats struct {
	Prepaid StatusCounts `json:"prepaid"`
	Total   int          `json:"total"`
}

// ProviderWeekStats are the weekly figures of one provider's prepaid stores.
// Activated, PaymentCount and PaymentAmount come from order rows grouped by
// store; the provider fields come from the periodic payment rows.
type ProviderWeekStats struct {
	ActivatedShops int   `json:"activatedShops"`
	ProviderShops  int   `json:"providerShops"`
	PaymentCount   int64 `json:"paymentCount"`
	ProviderCount  int64 `json:"providerCount"`
	PaymentAmount  int64 `json:"paymentAmount"`
	ProviderAmount int64 `json:"providerAmount"`
}

// PostpaidWeekStats are the weekly figures of KakaoPay postpaid stores.
type PostpaidWeekStats struct {
	ActivatedShops int   `json:"activatedShops"`
	OrderCount     int64 `json:"orderCount"`
	OrderAmount    int64 `json:"orderAmount"`
}

// CumulativeStats are taken from the cumulative payment rows of the
// promotion stores; a store is activated when its payment count is positive.
type CumulativeStats struct {
	ActivatedShops int   `json:"activatedShops"`
	ProviderShops  int   `json:"providerShops"`
	PaymentCount   int64 `json:"paymentCount"`
	ProviderCount  int64 `json:"providerCount"`
	PaymentAmount  int64 `json:"paymentAmount"`
	ProviderAmount int64 `json:"providerAmount"`
}

// ActivationTotals combine prepaid and postpaid weekly figures.
type ActivationTotals struct {
	ActivatedShops int   `json:"activatedShops"`
	PaymentCount   int64 `json:"paymentCount"`
	PaymentAmount  int64 `json:"paymentAmount"`
}

// KakaoPayActivation is the weekly and cumulative KakaoPay picture.
type KakaoPayActivation struct {
	Prepaid    ProviderWeekStats  `json:"prepaid"`
	Postpaid   PostpaidWeekStats  `json:"postpaid"`
	Total      ActivationTotals   `json:"total"`
	Weekly     []WeeklyComparison `json:"weekly"`
	Cumulative CumulativeStats    `json:"cumulative"`
	// Postpaid figures have no cumulative source and repeat the weekly ones.
	CumulativePostpaid PostpaidWeekStats `json:"cumulativePostpaid"`
}

// SolPayActivation is the weekly and cumulative SolPay picture.
type SolPayActivation struct {
	Prepaid    ProviderWeekStats  `json:"prepaid"`
	Weekly     []WeeklyComparison `json:"weekly"`
	Cumulative CumulativeStats    `json:"cumulative"`
}

// NewInflow counts newly registered and newly converted promotion stores.
type NewInflow struct {
	KakaoPayNew       int `json:"kakaoPayNew"`
	KakaoPayConverted int `json:"kakaoPayConverted"`
	SolPayNew         int `json:"solPayNew"`
	SolPayConverted   int `json:"solPayConverted"`
}

// Promotion types reported for churned stores.
const (
	PromotionKakaoPay = "kakaopay"
	PromotionSolPay   = "solpay"
	PromotionOther    = "other"
)

// ChurnedShop is a store that was activated on the previous date and is not
// on the current one.
type ChurnedShop struct {
	ShopCode   string `json:"shopCode"`
	ShopName   string `json:"shopName"`
	PayTypeRaw string `json:"pgYn"`
	Promotion  string `json:"promotionType"`
}

// ChurnAndRisk lists churned stores and promotion stores at risk.
type ChurnAndRisk struct {
	ChurnedShops       int            `json:"churnedShops"`
	ChurnedShopList    []ChurnedShop  `json:"churnedShopList"`
	PromotionRiskShops int            `json:"promotionRiskShops"`
	PromotionRiskList  []ShopAnalysis `json:"promotionRiskShopList"`
}

// PaymentSummary compares provider activity between two dates.
type PaymentSummary struct {
	Date               string             `json:"date"`
	PrevDate           string             `json:"prevDate"`
	KakaoPayShops      KakaoPayShopStats  `json:"kakaoPayShops"`
	SolPayShops        SolPayShopStats    `json:"solPayShops"`
	KakaoPayActivation KakaoPayActivation `json:"kakaoPayActivation"`
	SolPayActivation   SolPayActivation   `json:"solPayActivation"`
	NewInflow          NewInflow          `json:"newInflow"`
	ChurnAndRisk       ChurnAndRisk       `json:"churnAndRisk"`
}

// ---------------------------------------------------------------------------
// Agencies
// ---------------------------------------------------------------------------

// AgencyPerformance rolls up the non-terminated stores of one agency.
type AgencyPerformance struct {
	AgencyName       string        `json:"agencyName"`
	IsDirect         bool          `json:"isDirect"`
	TotalShops       int           `json:"totalShops"`
	ActiveShops      int           `json:"activeShops"`
	PendingShops     int           `json:"pendingShops"`
	PrepaidShops     int           `json:"prepaidShops"`
	PostpaidShops    int           `json:"postpaidShops"`
	ActivatedShops   int           `json:"activatedShops"`
	ActivationRate   float64       `json:"activationRate"`
	RiskShops        int           `json:"riskShops"`
	ChurnedShops     int           `json:"churnedShops"`
	NewShops         int           `json:"newShops"`
	TotalDevices     int64         `json:"totalDevices"`
	AvgOrderCount    float64       `json:"avgOrderCount"`
	TotalOrderAmount int64         `json:"totalOrderAmount"`
	ShopList         []OrderRecord `json:"shopList"`
}

// DateData is the combined per-date view of the three datasets.
type DateData struct {
	Date       string          `json:"date"`
	Payments   []PaymentRecord `json:"payments"`
	Cumulative []PaymentRecord `json:"cumulative"`
	Orders     []OrderRecord   `json:"orders"`
}
