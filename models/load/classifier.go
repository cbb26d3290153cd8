// Package load implements the freight classification and completeness
// validation engine. Everything in this package is pure and synchronous:
// no I/O, no shared state, safe to call concurrently across shipments.
package load

import (
	"regexp"
	"strings"

	"github.com/FreightDesk/freight-desk-backend/types"
)

// coldCommodityPattern matches commodity descriptions that imply
// temperature-controlled freight when no equipment type was stated at all.
var coldCommodityPattern = regexp.MustCompile(
	`(?i)\b(frozen|refrigerated|perishable|chilled|ice\s?cream|dairy|produce|fresh\s+(meat|seafood|fish|fruit|vegetable)s?)\b`)

// Classify infers the freight category from a field bag. It is a
// deterministic, total function: every input yields exactly one category.
//
// Rules form an ordered priority cascade; the first match wins and later
// rules are never consulted. Explicit equipment statements dominate
// inferred signals (temperature data, commodity text) because dispatching
// the wrong trailer has direct cost consequences, and hazmat is checked
// first because compliance must never be silently overridden by equipment
// wording.
func Classify(bag *types.ShipmentFieldBag) types.FreightCategory {
	// Rule 1: hazmat override. Unconditional; a legal/safety classification
	// independent of how the shipper described the trailer.
	if present(bag.HazmatClass) || present(bag.UNNumber) || present(bag.ProperShippingName) {
		return types.FreightFTLHazmat
	}

	equip := strings.ToLower(strings.TrimSpace(types.StrValue(bag.EquipmentType)))

	// Rule 2: explicit dry van. Checked before reefer/flatbed signals
	// because shippers often name a cold-sensitive commodity while
	// explicitly requesting a dry van.
	if strings.Contains(equip, "dry van") || equip == "van" ||
		(strings.Contains(equip, "dry") && !strings.Contains(equip, "deck")) {
		return types.FreightFTLDryVan
	}

	// Rule 3: reefer signals. An explicit reefer request, or a populated
	// temperature object when the equipment text does not claim dry/van.
	if strings.Contains(equip, "reefer") || strings.Contains(equip, "refrigerated") {
		return types.FreightFTLReefer
	}
	if bag.Temperature.Populated() &&
		!strings.Contains(equip, "dry") && !strings.Contains(equip, "van") {
		return types.FreightFTLReefer
	}

	// Rule 4: flatbed signals.
	if strings.Contains(equip, "flatbed") || strings.Contains(equip, "step deck") || strings.Contains(equip, "rgn") {
		return types.FreightFTLFlatbed
	}
	if boolSet(bag.TarpingRequired) || boolSet(bag.OversizePermits) {
		return types.FreightFTLFlatbed
	}

	// Rule 5: weight / LTL / PARTIAL cascade. Only reached when no
	// equipment-type or hazmat signal fired. A stated freight class means
	// LTL regardless of weight. Band edges: lower bounds inclusive;
	// exactly 15,000 lbs sits in the LTL band (see DESIGN.md).
	if present(bag.FreightClass) {
		return types.FreightLTL
	}
	if bag.Weight != nil {
		w := bag.Weight.Float64()
		switch {
		case w >= 150 && w < 5000:
			return types.FreightLTL
		case w >= 5000 && w <= 15000:
			if bag.PieceCount != nil && bag.PieceCount.Int() > 10 {
				return types.FreightPartial
			}
			return types.FreightLTL
		case w > 15000 && w <= 30000:
			return types.FreightPartial
		}
		// Below 150 or above 30,000 lbs no weight rule fires.
	}

	// Rule 6: commodity-implied reefer, only when no equipment was stated.
	if equip == "" && coldCommodityPattern.MatchString(types.StrValue(bag.Commodity)) {
		return types.FreightFTLReefer
	}

	// Rule 7: fallback. Dry van is the most common category; without even
	// locations there is nothing to classify.
	if bag.HasPickup() && bag.HasDelivery() {
		return types.FreightFTLDryVan
	}
	return types.FreightUnknown
}

func present(s *string) bool {
	return s != nil && strings.TrimSpace(*s) != ""
}

func boolSet(b *bool) bool {
	return b != nil && *b
}
