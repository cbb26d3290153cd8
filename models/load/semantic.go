package load

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/FreightDesk/freight-desk-backend/types"
)

// Patterns used to detect "present but practically useless" values. A naive
// is-null check accepts all of these; the broker then wastes a dispatch
// cycle discovering the address was "near the airport".
var (
	landmarkPattern     = regexp.MustCompile(`(?i)\b(near|by|close to|around|vicinity of)\b`)
	streetNumberPattern = regexp.MustCompile(`\b\d+\s+[A-Za-z]`)
	zipPattern          = regexp.MustCompile(`\b\d{5}\b`)
	stateCodePattern    = regexp.MustCompile(`\b[A-Z]{2}\b`)

	// Clock time with no date component: "10:30 AM", "10 AM", "10:30".
	timeOnlyPattern = regexp.MustCompile(`(?i)^\s*\d{1,2}(?::\d{2})\s*(?:am|pm)?\s*$|^\s*\d{1,2}\s*(?:am|pm)\s*$`)

	// Canadian postal code (A1A 1A1) and province abbreviations.
	canadianPostalPattern   = regexp.MustCompile(`(?i)\b[ABCEGHJ-NPRSTVXY]\d[A-Z]\s?\d[A-Z]\d\b`)
	canadianProvincePattern = regexp.MustCompile(`\b(ON|QC|BC|AB|MB|SK|NS|NB|NL|PE|YT|NT|NU)\b`)
)

// genericCommodityTerms are descriptions that tell a carrier nothing about
// what is actually on the trailer.
var genericCommodityTerms = map[string]bool{
	"goods":          true,
	"consumer goods": true,
	"products":       true,
	"items":          true,
	"freight":        true,
	"cargo":          true,
	"shipment":       true,
	"load":           true,
	"merchandise":    true,
	"stuff":          true,
}

// ValidateSemantics catches values that pass syntactic checks but are
// practically unusable. Rules are independent and always all evaluated;
// results concatenate in a fixed order (pickup, delivery, commodity, date,
// freight-specific, international) so two passes over the same bag emit
// byte-identical issue lists. Duplicate issues for the same field are
// intentional: the international rule re-flags commodity and nothing
// downstream deduplicates.
func ValidateSemantics(bag *types.ShipmentFieldBag, category types.FreightCategory) []types.ValidationIssue {
	var issues []types.ValidationIssue

	issues = append(issues, landmarkIssues(bag)...)
	issues = append(issues, commodityIssues(bag)...)
	issues = append(issues, pickupDateIssues(bag)...)
	issues = append(issues, freightSpecificIssues(bag, category)...)
	issues = append(issues, internationalIssues(bag)...)

	return issues
}

// landmarkIssues flags location strings that name a landmark instead of an
// address: a landmark preposition with no street number, zip, or state code
// to anchor it. Pickup and delivery are checked independently, pickup first.
func landmarkIssues(bag *types.ShipmentFieldBag) []types.ValidationIssue {
	var issues []types.ValidationIssue
	if issue := landmarkIssue(FieldPickupLocation, bag.PickupLocation); issue != nil {
		issues = append(issues, *issue)
	}
	if issue := landmarkIssue(FieldDeliveryLocation, bag.DeliveryLocation); issue != nil {
		issues = append(issues, *issue)
	}
	return issues
}

func landmarkIssue(field string, location *string) *types.ValidationIssue {
	if !present(location) {
		return nil
	}
	value := strings.TrimSpace(*location)
	if !landmarkPattern.MatchString(value) {
		return nil
	}
	if streetNumberPattern.MatchString(value) || zipPattern.MatchString(value) || stateCodePattern.MatchString(value) {
		return nil
	}
	return &types.ValidationIssue{
		Field:        field,
		CurrentValue: value,
		Kind:         types.IssueInsufficient,
		Reason:       fmt.Sprintf("%q describes a landmark, not an address; a street address or city/state/zip is needed for dispatch", value),
	}
}

// IsGenericCommodity reports whether a commodity description is too vague
// to book against: an exact match on the generic-term list, or a single
// modifier in front of one ("general freight", "misc items").
func IsGenericCommodity(commodity string) bool {
	normalized := strings.ToLower(strings.TrimSpace(commodity))
	if normalized == "" {
		return false
	}
	if genericCommodityTerms[normalized] {
		return true
	}
	words := strings.Fields(normalized)
	if len(words) >= 2 {
		rest := strings.Join(words[1:], " ")
		if genericCommodityTerms[rest] {
			return true
		}
	}
	return false
}

func commodityIssues(bag *types.ShipmentFieldBag) []types.ValidationIssue {
	if !present(bag.Commodity) {
		return nil
	}
	value := strings.TrimSpace(*bag.Commodity)
	if !IsGenericCommodity(value) {
		return nil
	}
	return []types.ValidationIssue{{
		Field:        FieldCommodity,
		CurrentValue: value,
		Kind:         types.IssueInsufficient,
		Reason:       fmt.Sprintf("%q is too generic; carriers need to know what is actually being shipped", value),
	}}
}

func pickupDateIssues(bag *types.ShipmentFieldBag) []types.ValidationIssue {
	if !present(bag.PickupDate) {
		return nil
	}
	value := strings.TrimSpace(*bag.PickupDate)
	if !timeOnlyPattern.MatchString(value) {
		return nil
	}
	return []types.ValidationIssue{{
		Field:        FieldPickupDate,
		CurrentValue: value,
		Kind:         types.IssueInsufficient,
		Reason:       fmt.Sprintf("%q is a time without a date; the pickup day is needed to schedule the load", value),
	}}
}

// freightSpecificIssues reinforces per-category requirements with reasons
// phrased for that freight type. These intentionally overlap with the
// requirement catalog.
func freightSpecificIssues(bag *types.ShipmentFieldBag, category types.FreightCategory) []types.ValidationIssue {
	var issues []types.ValidationIssue
	missing := func(field, reason string) {
		issues = append(issues, types.ValidationIssue{Field: field, Kind: types.IssueMissing, Reason: reason})
	}

	switch category {
	case types.FreightFTLFlatbed:
		if !bag.Dimensions.Complete() {
			missing(FieldDimensions, "flatbed loads need full dimensions to check legal height/width and plan securement")
		}
	case types.FreightFTLReefer:
		if !bag.Temperature.Populated() {
			missing(FieldTemperature, "refrigerated loads need a temperature range to set the reefer unit")
		}
	case types.FreightLTL:
		if !present(bag.FreightClass) {
			missing(FieldFreightClass, "LTL shipments are rated by NMFC freight class; carriers cannot quote without it")
		}
		if !bag.Dimensions.Complete() {
			missing(FieldDimensions, "LTL carriers price by density and need full dimensions")
		}
	case types.FreightFTLHazmat:
		if !present(bag.UNNumber) {
			missing(FieldUNNumber, "the UN identification number is required on hazmat shipping papers")
		}
		if !present(bag.ProperShippingName) {
			missing(FieldProperShippingName, "the DOT proper shipping name is required on hazmat shipping papers")
		}
		if !present(bag.PackingGroup) {
			missing(FieldPackingGroup, "the packing group (I, II, or III) determines hazmat packaging requirements")
		}
		if !present(bag.EmergencyContact) {
			missing(FieldEmergencyContact, "a 24-hour emergency contact is required for hazmat transport")
		}
	}
	return issues
}

// internationalIssues detects a cross-border load: exactly one side matches
// a Canadian postal code or province abbreviation. Customs paperwork needs
// a specific commodity, so an absent or generic commodity is flagged here
// even when the base per-category check already covered it.
func internationalIssues(bag *types.ShipmentFieldBag) []types.ValidationIssue {
	pickupCanadian := looksCanadian(bag.PickupLocation, bag.PickupState, bag.PickupZip)
	deliveryCanadian := looksCanadian(bag.DeliveryLocation, bag.DeliveryState, bag.DeliveryZip)

	if pickupCanadian == deliveryCanadian {
		return nil
	}

	if !present(bag.Commodity) {
		return []types.ValidationIssue{{
			Field:  FieldCommodity,
			Kind:   types.IssueMissing,
			Reason: "cross-border shipment: customs requires a specific commodity description",
		}}
	}
	value := strings.TrimSpace(*bag.Commodity)
	if IsGenericCommodity(value) {
		return []types.ValidationIssue{{
			Field:        FieldCommodity,
			CurrentValue: value,
			Kind:         types.IssueInsufficient,
			Reason:       fmt.Sprintf("cross-border shipment: %q will not clear customs; a specific commodity description is required", value),
		}}
	}
	return nil
}

func looksCanadian(location, state, zip *string) bool {
	for _, s := range []*string{location, state, zip} {
		if !present(s) {
			continue
		}
		v := strings.TrimSpace(*s)
		if canadianPostalPattern.MatchString(v) || canadianProvincePattern.MatchString(v) {
			return true
		}
	}
	return false
}
