package load

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/FreightDesk/freight-desk-backend/types"
)

// Field names as they appear in validation issues and clarification
// content. These match the wire keys of the field bag.
const (
	FieldPickupLocation     = "pickup_location"
	FieldDeliveryLocation   = "delivery_location"
	FieldWeight             = "weight"
	FieldCommodity          = "commodity"
	FieldPickupDate         = "pickup_date"
	FieldEquipmentType      = "equipment_type"
	FieldTemperature        = "temperature"
	FieldDimensions         = "dimensions"
	FieldPieceCount         = "piece_count"
	FieldFreightClass       = "freight_class"
	FieldHazmatClass        = "hazmat_class"
	FieldUNNumber           = "un_number"
	FieldProperShippingName = "proper_shipping_name"
	FieldPackingGroup       = "packing_group"
	FieldEmergencyContact   = "emergency_contact"
	FieldPlacardsRequired   = "placards_required"
)

// Oversize thresholds in inches. Loads past any of these need permits.
const (
	oversizeWidthIn  = 102
	oversizeHeightIn = 162
	oversizeLengthIn = 636
)

// RuleResult is the outcome of one syntactic field check. Warnings never
// block completeness.
type RuleResult struct {
	Valid    bool
	Reason   string
	Warnings []string
}

func ok() RuleResult               { return RuleResult{Valid: true} }
func bad(reason string) RuleResult { return RuleResult{Reason: reason} }
func warn(ws ...string) RuleResult { return RuleResult{Valid: true, Warnings: ws} }

// FieldRule validates a present field. Presence itself is checked by the
// orchestrator through fieldPresence.
type FieldRule func(bag *types.ShipmentFieldBag) RuleResult

// RequirementSpec describes what a freight category demands: required
// fields in a fixed order, optional fields, and per-field syntactic rules.
type RequirementSpec struct {
	Required   []string
	Optional   []string
	Validators map[string]FieldRule
}

var unNumberPattern = regexp.MustCompile(`^UN\d{4}$`)

// catalog is built once at init and never mutated afterwards.
var catalog map[types.FreightCategory]RequirementSpec

func init() {
	base := []string{FieldPickupLocation, FieldDeliveryLocation, FieldWeight, FieldCommodity, FieldPickupDate}
	baseOptional := []string{FieldEquipmentType, FieldDimensions, FieldPieceCount, "special_requirements", "accessorials", "packaging_type"}

	catalog = map[types.FreightCategory]RequirementSpec{
		types.FreightFTLDryVan: {
			Required: base,
			Optional: baseOptional,
			Validators: map[string]FieldRule{
				FieldWeight: weightRange(1, 45000),
			},
		},
		types.FreightFTLReefer: {
			Required: append(append([]string{}, base...), FieldTemperature),
			Optional: baseOptional,
			Validators: map[string]FieldRule{
				FieldWeight:      weightRange(1, 43000),
				FieldTemperature: temperatureRule,
			},
		},
		types.FreightFTLFlatbed: {
			Required: append(append([]string{}, base...), FieldDimensions),
			Optional: []string{FieldEquipmentType, FieldPieceCount, "tarping_required", "oversize_permits", "escort_required", "special_requirements"},
			Validators: map[string]FieldRule{
				FieldWeight:     weightRange(1, 48000),
				FieldDimensions: dimensionsRule,
			},
		},
		types.FreightFTLHazmat: {
			Required: append(append([]string{}, base...),
				FieldHazmatClass, FieldUNNumber, FieldProperShippingName,
				FieldPackingGroup, FieldEmergencyContact, FieldPlacardsRequired),
			Optional: baseOptional,
			Validators: map[string]FieldRule{
				FieldWeight:       weightRange(1, 45000),
				FieldHazmatClass:  hazmatClassRule,
				FieldUNNumber:     unNumberRule,
				FieldPackingGroup: packingGroupRule,
			},
		},
		types.FreightLTL: {
			Required: []string{
				FieldPickupLocation, FieldDeliveryLocation, FieldWeight, FieldCommodity,
				FieldPickupDate, FieldDimensions, FieldPieceCount, FieldFreightClass,
			},
			Optional: []string{FieldEquipmentType, "packaging_type", "accessorials", "special_requirements"},
			Validators: map[string]FieldRule{
				FieldWeight:       weightRange(150, 15000),
				FieldDimensions:   dimensionsRule,
				FieldPieceCount:   pieceCountRule,
				FieldFreightClass: freightClassRule,
			},
		},
		types.FreightPartial: {
			Required: []string{
				FieldPickupLocation, FieldDeliveryLocation, FieldWeight, FieldCommodity,
				FieldPickupDate, FieldDimensions,
			},
			Optional: []string{FieldEquipmentType, FieldPieceCount, "special_requirements"},
			Validators: map[string]FieldRule{
				FieldWeight:     softWeightRange(5000, 30000),
				FieldDimensions: dimensionsRule,
			},
		},
		types.FreightUnknown: {
			Required:   []string{FieldPickupLocation, FieldDeliveryLocation},
			Optional:   []string{FieldWeight, FieldCommodity, FieldPickupDate, FieldEquipmentType},
			Validators: map[string]FieldRule{},
		},
	}
}

// RequirementsFor returns the static requirement spec for a category. It
// never fails; UNKNOWN maps to the minimal two-field spec.
func RequirementsFor(category types.FreightCategory) RequirementSpec {
	if spec, found := catalog[category]; found {
		return spec
	}
	return catalog[types.FreightUnknown]
}

// weightRange enforces an inclusive weight band in pounds.
func weightRange(min, max float64) FieldRule {
	return func(bag *types.ShipmentFieldBag) RuleResult {
		w := bag.Weight.Float64()
		if w < min || w > max {
			return bad(fmt.Sprintf("weight must be between %s and %s lbs, got %s",
				formatLbs(min), formatLbs(max), formatLbs(w)))
		}
		return ok()
	}
}

// softWeightRange only warns when the weight falls outside the band;
// partial-truckload weight limits are advisory.
func softWeightRange(min, max float64) FieldRule {
	return func(bag *types.ShipmentFieldBag) RuleResult {
		w := bag.Weight.Float64()
		if w < min || w > max {
			return warn(fmt.Sprintf("weight %s lbs is outside the typical partial range (%s-%s lbs)",
				formatLbs(w), formatLbs(min), formatLbs(max)))
		}
		return ok()
	}
}

func temperatureRule(bag *types.ShipmentFieldBag) RuleResult {
	t := bag.Temperature
	if !t.Populated() {
		return bad("temperature range requires at least a min or max value")
	}
	if t.Unit != nil {
		unit := strings.ToUpper(strings.TrimSpace(*t.Unit))
		if unit != "F" && unit != "C" {
			return bad(fmt.Sprintf("temperature unit must be F or C, got %q", *t.Unit))
		}
	}
	return ok()
}

func dimensionsRule(bag *types.ShipmentFieldBag) RuleResult {
	d := bag.Dimensions
	if !d.Complete() {
		return bad("dimensions require length, width, and height")
	}
	var warnings []string
	if d.Width.Float64() > oversizeWidthIn {
		warnings = append(warnings, fmt.Sprintf(
			"width %.0fin exceeds %din: load is oversize and needs permits", d.Width.Float64(), oversizeWidthIn))
	}
	if d.Height.Float64() > oversizeHeightIn {
		warnings = append(warnings, fmt.Sprintf(
			"height %.0fin exceeds %din: load is oversize and needs permits", d.Height.Float64(), oversizeHeightIn))
	}
	if d.Length.Float64() > oversizeLengthIn {
		warnings = append(warnings, fmt.Sprintf(
			"length %.0fin exceeds %din: load is oversize and needs permits", d.Length.Float64(), oversizeLengthIn))
	}
	return RuleResult{Valid: true, Warnings: warnings}
}

func hazmatClassRule(bag *types.ShipmentFieldBag) RuleResult {
	c := strings.TrimSpace(types.StrValue(bag.HazmatClass))
	if len(c) != 1 || c[0] < '1' || c[0] > '9' {
		return bad(fmt.Sprintf("hazmat class must be a single digit 1-9, got %q", c))
	}
	return ok()
}

func unNumberRule(bag *types.ShipmentFieldBag) RuleResult {
	un := strings.ToUpper(strings.TrimSpace(types.StrValue(bag.UNNumber)))
	if !unNumberPattern.MatchString(un) {
		return bad(fmt.Sprintf("UN number must match UN followed by four digits, got %q", types.StrValue(bag.UNNumber)))
	}
	return ok()
}

func packingGroupRule(bag *types.ShipmentFieldBag) RuleResult {
	pg := strings.ToUpper(strings.TrimSpace(types.StrValue(bag.PackingGroup)))
	if pg != "I" && pg != "II" && pg != "III" {
		return bad(fmt.Sprintf("packing group must be I, II, or III, got %q", types.StrValue(bag.PackingGroup)))
	}
	return ok()
}

func pieceCountRule(bag *types.ShipmentFieldBag) RuleResult {
	if bag.PieceCount.Int() <= 0 {
		return bad("piece count must be greater than zero")
	}
	return ok()
}

func freightClassRule(bag *types.ShipmentFieldBag) RuleResult {
	raw := strings.TrimSpace(types.StrValue(bag.FreightClass))
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return bad(fmt.Sprintf("freight class must be numeric, got %q", raw))
	}
	if v < 50 || v > 500 {
		return bad(fmt.Sprintf("freight class must be between 50 and 500, got %s", raw))
	}
	return ok()
}

// LocationSpecificityWarnings emits the cross-field warning for location
// strings supplied without any city/state/zip. Applies to every category
// and never marks the shipment incomplete by itself.
func LocationSpecificityWarnings(bag *types.ShipmentFieldBag) []string {
	var warnings []string
	if present(bag.PickupLocation) &&
		!present(bag.PickupCity) && !present(bag.PickupState) && !present(bag.PickupZip) {
		warnings = append(warnings, "pickup location could be more specific: no city, state, or zip provided")
	}
	if present(bag.DeliveryLocation) &&
		!present(bag.DeliveryCity) && !present(bag.DeliveryState) && !present(bag.DeliveryZip) {
		warnings = append(warnings, "delivery location could be more specific: no city, state, or zip provided")
	}
	return warnings
}

// fieldPresence reports whether a named field is populated and returns a
// display value for issue reporting. Absence and blank strings are both
// treated as not-present.
func fieldPresence(bag *types.ShipmentFieldBag, field string) (bool, string) {
	switch field {
	case FieldPickupLocation:
		return bag.HasPickup(), locationDisplay(bag.PickupLocation, bag.PickupCity, bag.PickupState, bag.PickupZip)
	case FieldDeliveryLocation:
		return bag.HasDelivery(), locationDisplay(bag.DeliveryLocation, bag.DeliveryCity, bag.DeliveryState, bag.DeliveryZip)
	case FieldWeight:
		if bag.Weight == nil {
			return false, ""
		}
		return true, formatLbs(bag.Weight.Float64())
	case FieldCommodity:
		return present(bag.Commodity), types.StrValue(bag.Commodity)
	case FieldPickupDate:
		return present(bag.PickupDate), types.StrValue(bag.PickupDate)
	case FieldEquipmentType:
		return present(bag.EquipmentType), types.StrValue(bag.EquipmentType)
	case FieldTemperature:
		if !bag.Temperature.Populated() {
			return false, ""
		}
		return true, temperatureDisplay(bag.Temperature)
	case FieldDimensions:
		if bag.Dimensions == nil {
			return false, ""
		}
		return true, dimensionsDisplay(bag.Dimensions)
	case FieldPieceCount:
		if bag.PieceCount == nil {
			return false, ""
		}
		return true, strconv.Itoa(bag.PieceCount.Int())
	case FieldFreightClass:
		return present(bag.FreightClass), types.StrValue(bag.FreightClass)
	case FieldHazmatClass:
		return present(bag.HazmatClass), types.StrValue(bag.HazmatClass)
	case FieldUNNumber:
		return present(bag.UNNumber), types.StrValue(bag.UNNumber)
	case FieldProperShippingName:
		return present(bag.ProperShippingName), types.StrValue(bag.ProperShippingName)
	case FieldPackingGroup:
		return present(bag.PackingGroup), types.StrValue(bag.PackingGroup)
	case FieldEmergencyContact:
		return present(bag.EmergencyContact), types.StrValue(bag.EmergencyContact)
	case FieldPlacardsRequired:
		if bag.PlacardsRequired == nil {
			return false, ""
		}
		return true, strconv.FormatBool(*bag.PlacardsRequired)
	default:
		return false, ""
	}
}

func locationDisplay(location, city, state, zip *string) string {
	if present(location) {
		return types.StrValue(location)
	}
	parts := []string{}
	for _, p := range []*string{city, state, zip} {
		if present(p) {
			parts = append(parts, types.StrValue(p))
		}
	}
	return strings.Join(parts, ", ")
}

func temperatureDisplay(t *types.Temperature) string {
	unit := "F"
	if t.Unit != nil {
		unit = *t.Unit
	}
	switch {
	case t.Min != nil && t.Max != nil:
		return fmt.Sprintf("%.0f-%.0f %s", t.Min.Float64(), t.Max.Float64(), unit)
	case t.Min != nil:
		return fmt.Sprintf("min %.0f %s", t.Min.Float64(), unit)
	default:
		return fmt.Sprintf("max %.0f %s", t.Max.Float64(), unit)
	}
}

func dimensionsDisplay(d *types.Dimensions) string {
	f := func(v *types.FlexFloat) string {
		if v == nil {
			return "?"
		}
		return strconv.FormatFloat(v.Float64(), 'f', -1, 64)
	}
	return fmt.Sprintf("%sx%sx%s in", f(d.Length), f(d.Width), f(d.Height))
}

func formatLbs(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	// Insert thousands separators for readability in human reasons.
	dot := strings.Index(s, ".")
	intPart := s
	frac := ""
	if dot != -1 {
		intPart, frac = s[:dot], s[dot:]
	}
	if len(intPart) <= 3 {
		return s
	}
	var b strings.Builder
	lead := len(intPart) % 3
	if lead > 0 {
		b.WriteString(intPart[:lead])
	}
	for i := lead; i < len(intPart); i += 3 {
		if b.Len() > 0 {
			b.WriteString(",")
		}
		b.WriteString(intPart[i : i+3])
	}
	return b.String() + frac
}
