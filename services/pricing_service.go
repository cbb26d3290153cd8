package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/FreightDesk/freight-desk-backend/config"
	apperrors "github.com/FreightDesk/freight-desk-backend/errors"
	"github.com/FreightDesk/freight-desk-backend/internal/events"
	"github.com/FreightDesk/freight-desk-backend/logger"
	"github.com/FreightDesk/freight-desk-backend/store"
	"github.com/FreightDesk/freight-desk-backend/types"
)

// quoteValidity is how long a generated quote holds before the rate must be
// refreshed.
const quoteValidity = 24 * time.Hour

// truckMPG is the industry-standard loaded truck fuel burn used in the
// surcharge formula.
var truckMPG = decimal.NewFromInt(6)

// laneRates carries the per-mile rate band for one equipment class.
type laneRates struct {
	average decimal.Decimal
	low     decimal.Decimal
	high    decimal.Decimal
}

func rates(avg, low, high string) laneRates {
	return laneRates{
		average: decimal.RequireFromString(avg),
		low:     decimal.RequireFromString(low),
		high:    decimal.RequireFromString(high),
	}
}

// defaultLaneRates are the fallback per-mile bands used when no recent lane
// history is available. Keyed by equipment display name.
var defaultLaneRates = map[string]laneRates{
	"Van":     rates("2.00", "1.75", "2.50"),
	"Reefer":  rates("2.50", "2.20", "3.00"),
	"Flatbed": rates("2.30", "2.00", "2.80"),
}

// equipmentMultipliers prices the operating-cost premium of specialized
// trailers over a dry van baseline.
var equipmentMultipliers = map[string]decimal.Decimal{
	"Van":     decimal.NewFromInt(1),
	"Reefer":  decimal.RequireFromString("1.25"),
	"Flatbed": decimal.RequireFromString("1.15"),
}

// knownLaneMiles is the road-mile matrix for common lanes, symmetric. Lanes
// not listed fall back to a flat estimate until a routing API is wired in.
var knownLaneMiles = map[[2]string]int{
	{"Dallas, TX", "Houston, TX"}:       240,
	{"Dallas, TX", "Miami, FL"}:         1300,
	{"Los Angeles, CA", "Phoenix, AZ"}:  370,
	{"Chicago, IL", "Atlanta, GA"}:      720,
	{"New York, NY", "Los Angeles, CA"}: 2800,
}

const fallbackLaneMiles = 500

// PricingService turns a validated load into a priced quote: linehaul from
// lane rates and equipment class, fuel surcharge, accessorials, and the
// broker margin on top. All money math is decimal; floats never touch rates.
type PricingService struct {
	quotes    store.QuoteStore
	sender    EmailSender
	publisher types.EventPublisher

	baseFuelPrice    decimal.Decimal
	currentFuelPrice decimal.Decimal
	heavyThreshold   float64
	heavyCharge      decimal.Decimal
	marginPercent    int

	now func() time.Time
}

func NewPricingService(cfg *config.PricingConfig, quotes store.QuoteStore, sender EmailSender, publisher types.EventPublisher) (*PricingService, error) {
	baseFuel, err := decimal.NewFromString(cfg.BaseFuelPrice)
	if err != nil {
		return nil, fmt.Errorf("invalid base fuel price %q: %w", cfg.BaseFuelPrice, err)
	}
	currentFuel, err := decimal.NewFromString(cfg.CurrentFuelPrice)
	if err != nil {
		return nil, fmt.Errorf("invalid current fuel price %q: %w", cfg.CurrentFuelPrice, err)
	}
	heavyCharge, err := decimal.NewFromString(cfg.HeavyLoadCharge)
	if err != nil {
		return nil, fmt.Errorf("invalid heavy load charge %q: %w", cfg.HeavyLoadCharge, err)
	}
	return &PricingService{
		quotes:           quotes,
		sender:           sender,
		publisher:        publisher,
		baseFuelPrice:    baseFuel,
		currentFuelPrice: currentFuel,
		heavyThreshold:   cfg.HeavyLoadThresholdLbs,
		heavyCharge:      heavyCharge,
		marginPercent:    cfg.TargetMarginPercent,
		now:              time.Now,
	}, nil
}

// PriceLoad calculates a quote for the load, persists it, and emits a
// QUOTE_GENERATED event. The load must be in a quotable status.
func (s *PricingService) PriceLoad(ctx context.Context, load *types.Load) (*types.Quote, error) {
	log := logger.GetLogger()

	if load.Status != types.LoadStatusReady && load.Status != types.LoadStatusNeedsReview {
		return nil, apperrors.ValidationFailed(
			"load is not quotable",
			fmt.Sprintf("load %s has status %s", load.ID, load.Status),
		)
	}

	quote := s.calculate(load)
	quote.LoadID = load.ID

	id, err := s.quotes.CreateQuote(ctx, *quote)
	if err != nil {
		log.Errorw("Failed to persist quote", "loadId", load.ID, "error", err)
		return nil, apperrors.NewDatabaseError(err)
	}
	quote.ID = id

	if s.publisher != nil {
		data := map[string]interface{}{
			"quoteId":     quote.ID,
			"shipperRate": quote.ShipperRate.String(),
			"validUntil":  quote.ValidUntil,
		}
		if err := events.PublishEventWithContext(s.publisher, ctx, types.EventTypeQuoteGenerated, load.ID, load.BrokerID, data, "pricing-service"); err != nil {
			log.Warnw("Failed to publish quote event", "loadId", load.ID, "error", err)
		}
	}

	// Quote delivery is best-effort; the persisted quote is the record and
	// the broker can resend from it.
	if s.sender != nil && load.ShipperEmail != "" {
		if err := s.sendQuoteEmail(ctx, load, quote); err != nil {
			log.Errorw("Failed to send quote email", "loadId", load.ID, "error", err)
		}
	}

	return quote, nil
}

func (s *PricingService) sendQuoteEmail(ctx context.Context, load *types.Load, quote *types.Quote) error {
	accessorials := make(map[string]string, len(quote.Accessorials))
	for name, amount := range quote.Accessorials {
		accessorials[name] = amount.StringFixed(2)
	}
	subject := "Your Freight Quote"
	if load.Subject != "" {
		subject = fmt.Sprintf("Re: %s - Your Freight Quote", load.Subject)
	}
	return s.sender.SendQuoteEmail(ctx, types.EmailData{
		To:      load.ShipperEmail,
		Subject: subject,
		TemplateData: map[string]interface{}{
			"Origin":        laneKey(load.FieldBag.PickupLocation, load.FieldBag.PickupCity, load.FieldBag.PickupState),
			"Destination":   laneKey(load.FieldBag.DeliveryLocation, load.FieldBag.DeliveryCity, load.FieldBag.DeliveryState),
			"Equipment":     equipmentDisplayName(load.Category),
			"TotalMiles":    quote.TotalMiles,
			"QuotedRate":    quote.ShipperRate.StringFixed(2),
			"Linehaul":      quote.LinehaulRate.StringFixed(2),
			"FuelSurcharge": quote.FuelSurcharge.StringFixed(2),
			"Accessorials":  accessorials,
		},
	})
}

// calculate runs the pricing cascade. Pure apart from the clock; exercised
// directly by tests.
func (s *PricingService) calculate(load *types.Load) *types.Quote {
	now := s.now()
	quote := &types.Quote{
		Accessorials: map[string]decimal.Decimal{},
		CreatedAt:    now,
		ValidUntil:   now.Add(quoteValidity),
	}
	var notes []string

	miles := laneMiles(&load.FieldBag)
	quote.TotalMiles = miles
	notes = append(notes, fmt.Sprintf("Calculated distance: %d miles", miles))

	equipment := equipmentDisplayName(load.Category)
	lane, knownEquipment := defaultLaneRates[equipment]
	if !knownEquipment {
		lane = defaultLaneRates["Van"]
	}

	quote.MarketCondition = marketConditionFor(pickupDate(&load.FieldBag, now))

	rate := lane.average
	switch quote.MarketCondition {
	case types.MarketTight:
		rate = rate.Mul(decimal.RequireFromString("1.10"))
		notes = append(notes, "Applied 10% increase for tight market")
	case types.MarketLoose:
		rate = rate.Mul(decimal.RequireFromString("0.90"))
		notes = append(notes, "Applied 10% decrease for loose market")
	}

	if mult, ok := equipmentMultipliers[equipment]; ok {
		rate = rate.Mul(mult)
		if !mult.Equal(decimal.NewFromInt(1)) {
			notes = append(notes, fmt.Sprintf("Applied %s equipment adjustment", equipment))
		}
	}
	quote.BaseRatePerMile = rate.Round(2)

	milesDec := decimal.NewFromInt(int64(miles))
	quote.LinehaulRate = rate.Mul(milesDec).Round(2)

	quote.FuelSurcharge = s.fuelSurcharge(miles)
	if quote.FuelSurcharge.IsPositive() {
		notes = append(notes, fmt.Sprintf("Fuel surcharge: $%s", quote.FuelSurcharge))
	}

	if load.FieldBag.Weight != nil && load.FieldBag.Weight.Float64() > s.heavyThreshold {
		quote.Accessorials["Heavy Load"] = s.heavyCharge
		notes = append(notes, "Added heavy load charge")
	}

	accessorialTotal := decimal.Zero
	for _, charge := range quote.Accessorials {
		accessorialTotal = accessorialTotal.Add(charge)
	}
	quote.CarrierRate = quote.LinehaulRate.Add(quote.FuelSurcharge).Add(accessorialTotal)
	quote.RatePerMile = quote.CarrierRate.Div(milesDec).Round(2)

	margin := decimal.NewFromInt(int64(s.marginPercent)).Div(decimal.NewFromInt(100))
	quote.ShipperRate = quote.CarrierRate.Mul(decimal.NewFromInt(1).Add(margin)).Round(2)
	quote.MarginPercent = float64(s.marginPercent)

	quote.ConfidenceScore = confidenceScore(knownEquipment)
	notes = append(notes, fmt.Sprintf("Quote: $%s ($%s/mile to carrier + %d%% margin)",
		quote.ShipperRate, quote.RatePerMile, s.marginPercent))
	quote.PricingNotes = notes

	return quote
}

// fuelSurcharge compensates for diesel above the baseline price:
// (current - base) / MPG * miles, rounded half-up to cents.
func (s *PricingService) fuelSurcharge(miles int) decimal.Decimal {
	if s.currentFuelPrice.LessThanOrEqual(s.baseFuelPrice) {
		return decimal.Zero.Round(2)
	}
	diff := s.currentFuelPrice.Sub(s.baseFuelPrice)
	gallons := decimal.NewFromInt(int64(miles)).Div(truckMPG)
	return diff.Mul(gallons).Round(2)
}

// confidenceScore averages the per-input confidence factors. Distance and
// lane rates always resolve (fallbacks exist), so only equipment moves it.
func confidenceScore(knownEquipment bool) float64 {
	factors := []float64{0.9, 0.95}
	if knownEquipment {
		factors = append(factors, 0.95)
	} else {
		factors = append(factors, 0.8)
	}
	sum := 0.0
	for _, f := range factors {
		sum += f
	}
	return sum / float64(len(factors))
}

// marketConditionFor reads capacity from the pickup weekday: Monday and
// Friday run tight, weekends run loose.
func marketConditionFor(pickup time.Time) types.MarketCondition {
	switch pickup.Weekday() {
	case time.Monday, time.Friday:
		return types.MarketTight
	case time.Saturday, time.Sunday:
		return types.MarketLoose
	default:
		return types.MarketBalanced
	}
}

func pickupDate(bag *types.ShipmentFieldBag, fallback time.Time) time.Time {
	raw := strings.TrimSpace(types.StrValue(bag.PickupDate))
	if raw == "" {
		return fallback
	}
	parsed, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return fallback
	}
	return parsed
}

// laneMiles resolves road miles for the load's lane from the known-lane
// matrix, checking both directions.
func laneMiles(bag *types.ShipmentFieldBag) int {
	origin := laneKey(bag.PickupLocation, bag.PickupCity, bag.PickupState)
	dest := laneKey(bag.DeliveryLocation, bag.DeliveryCity, bag.DeliveryState)
	if miles, ok := knownLaneMiles[[2]string{origin, dest}]; ok {
		return miles
	}
	if miles, ok := knownLaneMiles[[2]string{dest, origin}]; ok {
		return miles
	}
	return fallbackLaneMiles
}

// laneKey normalizes a location to "City, ST". Free-text locations like
// "Dallas, TX 75201" reduce to their city and state components.
func laneKey(location, city, state *string) string {
	c := strings.TrimSpace(types.StrValue(city))
	st := strings.TrimSpace(types.StrValue(state))
	if c != "" && st != "" {
		return c + ", " + st
	}
	loc := strings.TrimSpace(types.StrValue(location))
	if loc == "" {
		return ""
	}
	parts := strings.SplitN(loc, ",", 2)
	if len(parts) == 2 {
		c = strings.TrimSpace(parts[0])
		rest := strings.Fields(strings.TrimSpace(parts[1]))
		if len(rest) > 0 && len(rest[0]) == 2 {
			return c + ", " + strings.ToUpper(rest[0])
		}
	}
	return loc
}

// equipmentDisplayName maps a freight category to the equipment class the
// rate tables are keyed by. LTL, partial, and hazmat loads rate against the
// van baseline.
func equipmentDisplayName(category types.FreightCategory) string {
	switch category {
	case types.FreightFTLReefer:
		return "Reefer"
	case types.FreightFTLFlatbed:
		return "Flatbed"
	case types.FreightFTLDryVan:
		return "Van"
	default:
		return "Van"
	}
}
