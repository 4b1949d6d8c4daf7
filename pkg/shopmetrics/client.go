// Package shopmetrics is a Go client for the shopmetrics-server JSON API.
package shopmetrics

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"shopmetrics/internal/domain"
	"shopmetrics/internal/httpapi"
	"shopmetrics/internal/store"
)

// Response and metric types, re-exported for callers outside this module.
type (
	KPIMetrics        = domain.KPIMetrics
	PeriodComparison  = domain.PeriodComparison
	ChangeRate        = domain.ChangeRate
	ProviderStats     = domain.ProviderStats
	PaymentSummary    = domain.PaymentSummary
	ShopAnalysis      = domain.ShopAnalysis
	OrderRecord       = domain.OrderRecord
	AgencyPerformance = domain.AgencyPerformance
	LoadedData        = store.LoadedData

	DatesResponse        = httpapi.DatesResponse
	RiskResponse         = httpapi.RiskResponse
	NewShopsResponse     = httpapi.NewShopsResponse
	NewShopsDiffResponse = httpapi.NewShopsDiffResponse
	TrackingResponse     = httpapi.TrackingResponse
	AgenciesResponse     = httpapi.AgenciesResponse
	ReloadResponse       = httpapi.ReloadResponse
)

// APIError is a non-2xx reply from the server.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("shopmetrics: %d %s", e.StatusCode, e.Message)
}

// Client provides a Go SDK for interacting with the shopmetrics-server API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new shopmetrics API client.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// Dates returns the loaded date axis and its latest entry.
func (c *Client) Dates(ctx context.Context) (DatesResponse, error) {
	var out DatesResponse
	err := c.get(ctx, "/api/dates", nil, &out)
	return out, err
}

// KPI returns the KPI figures for date; an empty date means the latest.
func (c *Client) KPI(ctx context.Context, date string) (KPIMetrics, error) {
	var out KPIMetrics
	if err := c.get(ctx, "/api/kpi", dateQuery(date), &out); err != nil {
		return out, err
	}
	restoreShops(out.RiskShopList)
	return out, nil
}

// Period returns the per-date comparison series.
func (c *Client) Period(ctx context.Context) ([]PeriodComparison, error) {
	var out []PeriodComparison
	err := c.get(ctx, "/api/period", nil, &out)
	return out, err
}

// ChangeRates returns the period-over-period growth series.
func (c *Client) ChangeRates(ctx context.Context) ([]ChangeRate, error) {
	var out []ChangeRate
	err := c.get(ctx, "/api/change-rates", nil, &out)
	return out, err
}

// Risk returns the at-risk stores of date.
func (c *Client) Risk(ctx context.Context, date string) (RiskResponse, error) {
	var out RiskResponse
	if err := c.get(ctx, "/api/risk", dateQuery(date), &out); err != nil {
		return out, err
	}
	restoreShops(out.Shops)
	return out, nil
}

// NewShops returns the stores registered within days of date. A negative
// days uses the server's window.
func (c *Client) NewShops(ctx context.Context, date string, days int) (NewShopsResponse, error) {
	q := dateQuery(date)
	if days >= 0 {
		q.Set("days", strconv.Itoa(days))
	}
	var out NewShopsResponse
	if err := c.get(ctx, "/api/new-shops", q, &out); err != nil {
		return out, err
	}
	restoreOrders(out.Shops)
	return out, nil
}

// NewShopsDiff returns the stores present on cur but not on prev.
func (c *Client) NewShopsDiff(ctx context.Context, prev, cur string) (NewShopsDiffResponse, error) {
	q := url.Values{"prev": {prev}, "cur": {cur}}
	var out NewShopsDiffResponse
	if err := c.get(ctx, "/api/new-shops/diff", q, &out); err != nil {
		return out, err
	}
	restoreOrders(out.Shops)
	return out, nil
}

// Tracking returns the activation tracking rows of date.
func (c *Client) Tracking(ctx context.Context, date string) (TrackingResponse, error) {
	var out TrackingResponse
	err := c.get(ctx, "/api/tracking", dateQuery(date), &out)
	return out, err
}

// ProviderStats returns the promotion and activation counts of date.
func (c *Client) ProviderStats(ctx context.Context, date string) (ProviderStats, error) {
	var out ProviderStats
	err := c.get(ctx, "/api/provider-stats", dateQuery(date), &out)
	return out, err
}

// PaymentSummary returns the activation summary of date against prev. An
// empty prev lets the server pick the previous axis date.
func (c *Client) PaymentSummary(ctx context.Context, date, prev string) (PaymentSummary, error) {
	q := dateQuery(date)
	if prev != "" {
		q.Set("prev", prev)
	}
	var out PaymentSummary
	err := c.get(ctx, "/api/payment-summary", q, &out)
	return out, err
}

// Agencies returns the agency rollup of date.
func (c *Client) Agencies(ctx context.Context, date string) (AgenciesResponse, error) {
	var out AgenciesResponse
	err := c.get(ctx, "/api/agencies", dateQuery(date), &out)
	return out, err
}

// Export returns the raw files behind the server's snapshot.
func (c *Client) Export(ctx context.Context) (LoadedData, error) {
	var out LoadedData
	err := c.get(ctx, "/api/export", nil, &out)
	return out, err
}

// Reload asks the server to re-read its data directory.
func (c *Client) Reload(ctx context.Context) (ReloadResponse, error) {
	var out ReloadResponse
	err := c.do(ctx, http.MethodPost, "/api/reload", nil, &out)
	return out, err
}

// ---------------------------------------------------------------------------
// Transport
// ---------------------------------------------------------------------------

func dateQuery(date string) url.Values {
	q := url.Values{}
	if date != "" {
		q.Set("date", date)
	}
	return q
}

func (c *Client) get(ctx context.Context, path string, q url.Values, v any) error {
	return c.do(ctx, http.MethodGet, path, q, v)
}

func (c *Client) do(ctx context.Context, method, path string, q url.Values, v any) error {
	u := c.baseURL + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, u, nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		var e httpapi.ErrorResponse
		msg := strings.TrimSpace(string(body))
		if json.Unmarshal(body, &e) == nil && e.Error != "" {
			msg = e.Error
		}
		return &APIError{StatusCode: resp.StatusCode, Message: msg}
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decoding %s: %w", path, err)
	}
	return nil
}

// restoreShops re-derives the enumerations that travel only as source text.
func restoreShops(shops []ShopAnalysis) {
	for i := range shops {
		shops[i].PayType = domain.ParsePayType(shops[i].PayTypeRaw)
		shops[i].Status = domain.ParseShopStatus(shops[i].StatusRaw)
	}
}

func restoreOrders(orders []OrderRecord) {
	for i := range orders {
		orders[i].PayType = domain.ParsePayType(orders[i].PayTypeRaw)
		orders[i].Status = domain.ParseShopStatus(orders[i].StatusRaw)
	}
}
