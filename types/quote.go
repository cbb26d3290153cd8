package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// MarketCondition describes supply/demand on a lane.
type MarketCondition string

const (
	MarketTight    MarketCondition = "tight"
	MarketBalanced MarketCondition = "balanced"
	MarketLoose    MarketCondition = "loose"
)

// Quote is a priced estimate for a load. Carrier rate is what we expect to
// pay; ShipperRate includes the broker margin.
type Quote struct {
	ID              string                     `json:"id"`
	LoadID          string                     `json:"loadId"`
	TotalMiles      int                        `json:"totalMiles"`
	BaseRatePerMile decimal.Decimal            `json:"baseRatePerMile"`
	LinehaulRate    decimal.Decimal            `json:"linehaulRate"`
	FuelSurcharge   decimal.Decimal            `json:"fuelSurcharge"`
	Accessorials    map[string]decimal.Decimal `json:"accessorials,omitempty"`
	CarrierRate     decimal.Decimal            `json:"carrierRate"`
	RatePerMile     decimal.Decimal            `json:"ratePerMile"`
	ShipperRate     decimal.Decimal            `json:"shipperRate"`
	MarginPercent   float64                    `json:"marginPercent"`
	MarketCondition MarketCondition            `json:"marketCondition"`
	ConfidenceScore float64                    `json:"confidenceScore"`
	PricingNotes    []string                   `json:"pricingNotes,omitempty"`
	ValidUntil      time.Time                  `json:"validUntil"`
	CreatedAt       time.Time                  `json:"createdAt"`
}
