// Package rates manages shipping rate agreements consulted at quote time.
package rates

import (
	"errors"
	"time"
)

// RateType selects the billing basis of an agreement.
type RateType string

const (
	RateAirPerKg      RateType = "air_per_kg"
	RateSeaPerCBM     RateType = "sea_per_cbm"
	RateContainer20ft RateType = "container_20ft"
	RateContainer40ft RateType = "container_40ft"
	RateContainer40hc RateType = "container_40hc"
	RateContainer45ft RateType = "container_45ft"
)

// IsValid reports whether the rate type is one of the supported kinds.
func (t RateType) IsValid() bool {
	switch t {
	case RateAirPerKg, RateSeaPerCBM, RateContainer20ft, RateContainer40ft, RateContainer40hc, RateContainer45ft:
		return true
	default:
		return false
	}
}

// IsContainer reports whether the agreement bills a flat container price.
func (t RateType) IsContainer() bool {
	switch t {
	case RateContainer20ft, RateContainer40ft, RateContainer40hc, RateContainer45ft:
		return true
	default:
		return false
	}
}

// Agreement is a negotiated origin/destination rate. Agreements are
// soft-deactivated, never deleted, so historical quotes stay explainable.
type Agreement struct {
	ID            int64     `json:"id"`
	Origin        string    `json:"origin"`
	Destination   string    `json:"destination"`
	RateType      RateType  `json:"rate_type"`
	BuyPrice      float64   `json:"buy_price"`
	SellPrice     float64   `json:"sell_price"`
	MarginPercent float64   `json:"margin_percent"`
	MinCharge     *float64  `json:"min_charge,omitempty"`
	Currency      string    `json:"currency"`
	ValidFrom     time.Time `json:"valid_from"`
	ValidUntil    time.Time `json:"valid_until"`
	Active        bool      `json:"active"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// ErrNoRateAvailable signals that no active agreement covers the lane.
var ErrNoRateAvailable = errors.New("rates: no rate available")
