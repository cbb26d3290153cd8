package types

// FreightCategory is the closed set of freight classifications. Exactly one
// value applies to a shipment at any time; it is recomputed on every
// validation pass because new information can change the inferred category.
type FreightCategory string

const (
	FreightFTLDryVan  FreightCategory = "FTL_DRY_VAN"
	FreightFTLReefer  FreightCategory = "FTL_REEFER"
	FreightFTLFlatbed FreightCategory = "FTL_FLATBED"
	FreightFTLHazmat  FreightCategory = "FTL_HAZMAT"
	FreightLTL        FreightCategory = "LTL"
	FreightPartial    FreightCategory = "PARTIAL"
	FreightUnknown    FreightCategory = "UNKNOWN"
)

// DisplayName returns a human-readable label for quotes and clarification
// emails.
func (c FreightCategory) DisplayName() string {
	switch c {
	case FreightFTLDryVan:
		return "Full Truckload (Dry Van)"
	case FreightFTLReefer:
		return "Full Truckload (Reefer)"
	case FreightFTLFlatbed:
		return "Full Truckload (Flatbed)"
	case FreightFTLHazmat:
		return "Full Truckload (Hazmat)"
	case FreightLTL:
		return "Less Than Truckload"
	case FreightPartial:
		return "Partial Truckload"
	default:
		return "Unclassified"
	}
}
