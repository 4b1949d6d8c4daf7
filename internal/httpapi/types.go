// Package httpapi serves the engine's metrics as a JSON REST API.
package httpapi

import (
	"shopmetrics/internal/domain"
)

// DatesResponse lists the date axis.
type DatesResponse struct {
	Dates  []string `json:"dates"`
	Latest string   `json:"latest,omitempty"`
}

// RiskResponse is the at-risk store list of one date.
type RiskResponse struct {
	Date  string                `json:"date"`
	Count int                   `json:"count"`
	Shops []domain.ShopAnalysis `json:"shops"`
}

// NewShopsResponse lists the stores registered within a window.
type NewShopsResponse struct {
	Date  string               `json:"date"`
	Days  int                  `json:"days"`
	Count int                  `json:"count"`
	Shops []domain.OrderRecord `json:"shops"`
}

// NewShopsDiffResponse lists the stores present on Cur but not on Prev.
type NewShopsDiffResponse struct {
	Prev  string               `json:"prev"`
	Cur   string               `json:"cur"`
	Count int                  `json:"count"`
	Shops []domain.OrderRecord `json:"shops"`
}

// TrackingResponse wraps the new store tracking rows of one date.
type TrackingResponse struct {
	Date  string                   `json:"date"`
	Shops []domain.NewShopTracking `json:"shops"`
}

// AgenciesResponse wraps the agency rollup of one date.
type AgenciesResponse struct {
	Date     string                     `json:"date"`
	Agencies []domain.AgencyPerformance `json:"agencies"`
}

// ReloadResponse reports the result of a reload.
type ReloadResponse struct {
	Dates    int    `json:"dates"`
	Latest   string `json:"latest,omitempty"`
	LoadedAt string `json:"loadedAt"`
}

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	Error string `json:"error"`
}
