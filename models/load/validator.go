package load

import (
	"fmt"

	"github.com/FreightDesk/freight-desk-backend/types"
)

// humanFieldNames maps issue field keys to the phrasing used in missing
// reasons and clarification content.
var humanFieldNames = map[string]string{
	FieldPickupLocation:     "pickup location",
	FieldDeliveryLocation:   "delivery location",
	FieldWeight:             "weight",
	FieldCommodity:          "commodity",
	FieldPickupDate:         "pickup date",
	FieldTemperature:        "temperature range",
	FieldDimensions:         "dimensions",
	FieldPieceCount:         "piece count",
	FieldFreightClass:       "freight class",
	FieldHazmatClass:        "hazmat class",
	FieldUNNumber:           "UN number",
	FieldProperShippingName: "proper shipping name",
	FieldPackingGroup:       "packing group",
	FieldEmergencyContact:   "emergency contact",
	FieldPlacardsRequired:   "placard requirement",
}

// HumanFieldName returns the human-readable name for a field key.
func HumanFieldName(field string) string {
	if name, found := humanFieldNames[field]; found {
		return name
	}
	return field
}

// Validate runs one full validation pass over a field bag: classify,
// look up requirements, syntactic pass over required fields in declared
// order, semantic pass, then report assembly. The function is pure and is
// re-invoked from scratch on every email in a thread; merged bags are the
// caller's responsibility.
//
// IsComplete is false iff any missing, insufficient, or invalid issue
// targets a field required for the resolved category. Warnings never
// affect completeness.
func Validate(bag *types.ShipmentFieldBag) types.ValidationReport {
	category := Classify(bag)
	spec := RequirementsFor(category)

	var issues []types.ValidationIssue
	var warnings []string

	for _, field := range spec.Required {
		populated, display := fieldPresence(bag, field)
		if !populated {
			issues = append(issues, types.ValidationIssue{
				Field:  field,
				Kind:   types.IssueMissing,
				Reason: fmt.Sprintf("%s is required for %s shipments", HumanFieldName(field), category.DisplayName()),
			})
			continue
		}
		rule, hasRule := spec.Validators[field]
		if !hasRule {
			continue
		}
		result := rule(bag)
		warnings = append(warnings, result.Warnings...)
		if !result.Valid {
			issues = append(issues, types.ValidationIssue{
				Field:        field,
				CurrentValue: display,
				Kind:         types.IssueInvalid,
				Reason:       result.Reason,
			})
		}
	}

	issues = append(issues, ValidateSemantics(bag, category)...)
	warnings = append(warnings, LocationSpecificityWarnings(bag)...)

	required := make(map[string]bool, len(spec.Required))
	for _, field := range spec.Required {
		required[field] = true
	}

	complete := true
	for _, issue := range issues {
		if issue.Blocking() && required[issue.Field] {
			complete = false
			break
		}
	}

	return types.ValidationReport{
		Category:   category,
		IsComplete: complete,
		Issues:     issues,
		Warnings:   warnings,
	}
}

// MissingFields lists the required fields that still block completeness,
// in requirement order and without duplicates. Used for the load record's
// awaiting-information tracking.
func MissingFields(report *types.ValidationReport) []string {
	spec := RequirementsFor(report.Category)
	blocked := make(map[string]bool)
	for _, issue := range report.Issues {
		if issue.Blocking() {
			blocked[issue.Field] = true
		}
	}
	var out []string
	for _, field := range spec.Required {
		if blocked[field] {
			out = append(out, field)
		}
	}
	return out
}
