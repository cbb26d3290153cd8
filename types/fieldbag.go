package types

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// FlexFloat is a float64 that also decodes from JSON strings. Extraction
// output is weakly typed: weights and dimensions arrive as numbers or as
// numeric strings, sometimes with thousands separators ("35,000").
type FlexFloat float64

func (f *FlexFloat) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
		if s == "" {
			return nil
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			// Present but unparseable; keep zero value so the validators
			// can flag it as invalid instead of failing the decode.
			return nil
		}
		*f = FlexFloat(v)
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*f = FlexFloat(v)
	return nil
}

func (f FlexFloat) Float64() float64 {
	return float64(f)
}

// FlexInt is an int that also decodes from JSON strings.
type FlexInt int

func (i *FlexInt) UnmarshalJSON(data []byte) error {
	var f FlexFloat
	if err := f.UnmarshalJSON(data); err != nil {
		return err
	}
	*i = FlexInt(int(f))
	return nil
}

func (i FlexInt) Int() int {
	return int(i)
}

// Dimensions holds load dimensions in inches. Partial objects are valid at
// the type level; completeness is a validation concern.
type Dimensions struct {
	Length *FlexFloat `json:"length,omitempty"`
	Width  *FlexFloat `json:"width,omitempty"`
	Height *FlexFloat `json:"height,omitempty"`
}

// Complete reports whether all three dimensions are populated.
func (d *Dimensions) Complete() bool {
	return d != nil && d.Length != nil && d.Width != nil && d.Height != nil
}

// Temperature holds a required temperature range for refrigerated freight.
type Temperature struct {
	Min  *FlexFloat `json:"min,omitempty"`
	Max  *FlexFloat `json:"max,omitempty"`
	Unit *string    `json:"unit,omitempty"`
}

// Populated reports whether at least one bound is present.
func (t *Temperature) Populated() bool {
	return t != nil && (t.Min != nil || t.Max != nil)
}

// ShipmentFieldBag is the loosely typed extraction result for one inbound
// message. Every field is optional; absence and emptiness both count as
// not-present. A bag is immutable within one validation pass and is
// superseded via Merge when a clarification reply arrives.
type ShipmentFieldBag struct {
	PickupLocation   *string `json:"pickup_location,omitempty"`
	PickupCity       *string `json:"pickup_city,omitempty"`
	PickupState      *string `json:"pickup_state,omitempty"`
	PickupZip        *string `json:"pickup_zip,omitempty"`
	DeliveryLocation *string `json:"delivery_location,omitempty"`
	DeliveryCity     *string `json:"delivery_city,omitempty"`
	DeliveryState    *string `json:"delivery_state,omitempty"`
	DeliveryZip      *string `json:"delivery_zip,omitempty"`

	Weight        *FlexFloat   `json:"weight,omitempty"`
	Commodity     *string      `json:"commodity,omitempty"`
	PickupDate    *string      `json:"pickup_date,omitempty"`
	EquipmentType *string      `json:"equipment_type,omitempty"`
	Dimensions    *Dimensions  `json:"dimensions,omitempty"`
	PieceCount    *FlexInt     `json:"piece_count,omitempty"`
	Temperature   *Temperature `json:"temperature,omitempty"`

	HazmatClass        *string `json:"hazmat_class,omitempty"`
	UNNumber           *string `json:"un_number,omitempty"`
	ProperShippingName *string `json:"proper_shipping_name,omitempty"`
	PackingGroup       *string `json:"packing_group,omitempty"`
	EmergencyContact   *string `json:"emergency_contact,omitempty"`
	PlacardsRequired   *bool   `json:"placards_required,omitempty"`

	TarpingRequired *bool   `json:"tarping_required,omitempty"`
	OversizePermits *bool   `json:"oversize_permits,omitempty"`
	EscortRequired  *bool   `json:"escort_required,omitempty"`
	FreightClass    *string `json:"freight_class,omitempty"`
	PackagingType   *string `json:"packaging_type,omitempty"`

	Accessorials        []string `json:"accessorials,omitempty"`
	SpecialRequirements *string  `json:"special_requirements,omitempty"`
}

// Merge returns a new bag combining b with update: non-null update values
// override, null update values leave the existing value in place. Neither
// input is mutated.
func (b ShipmentFieldBag) Merge(update ShipmentFieldBag) ShipmentFieldBag {
	out := b

	mergeStr := func(dst **string, src *string) {
		if src != nil {
			*dst = src
		}
	}
	mergeStr(&out.PickupLocation, update.PickupLocation)
	mergeStr(&out.PickupCity, update.PickupCity)
	mergeStr(&out.PickupState, update.PickupState)
	mergeStr(&out.PickupZip, update.PickupZip)
	mergeStr(&out.DeliveryLocation, update.DeliveryLocation)
	mergeStr(&out.DeliveryCity, update.DeliveryCity)
	mergeStr(&out.DeliveryState, update.DeliveryState)
	mergeStr(&out.DeliveryZip, update.DeliveryZip)
	mergeStr(&out.Commodity, update.Commodity)
	mergeStr(&out.PickupDate, update.PickupDate)
	mergeStr(&out.EquipmentType, update.EquipmentType)
	mergeStr(&out.HazmatClass, update.HazmatClass)
	mergeStr(&out.UNNumber, update.UNNumber)
	mergeStr(&out.ProperShippingName, update.ProperShippingName)
	mergeStr(&out.PackingGroup, update.PackingGroup)
	mergeStr(&out.EmergencyContact, update.EmergencyContact)
	mergeStr(&out.FreightClass, update.FreightClass)
	mergeStr(&out.PackagingType, update.PackagingType)
	mergeStr(&out.SpecialRequirements, update.SpecialRequirements)

	if update.Weight != nil {
		out.Weight = update.Weight
	}
	if update.Dimensions != nil {
		out.Dimensions = update.Dimensions
	}
	if update.PieceCount != nil {
		out.PieceCount = update.PieceCount
	}
	if update.Temperature != nil {
		out.Temperature = update.Temperature
	}
	if update.PlacardsRequired != nil {
		out.PlacardsRequired = update.PlacardsRequired
	}
	if update.TarpingRequired != nil {
		out.TarpingRequired = update.TarpingRequired
	}
	if update.OversizePermits != nil {
		out.OversizePermits = update.OversizePermits
	}
	if update.EscortRequired != nil {
		out.EscortRequired = update.EscortRequired
	}
	if len(update.Accessorials) > 0 {
		out.Accessorials = update.Accessorials
	}

	return out
}

// HasPickup reports whether any pickup location signal is present.
func (b *ShipmentFieldBag) HasPickup() bool {
	return strPresent(b.PickupLocation) || strPresent(b.PickupCity) || strPresent(b.PickupZip)
}

// HasDelivery reports whether any delivery location signal is present.
func (b *ShipmentFieldBag) HasDelivery() bool {
	return strPresent(b.DeliveryLocation) || strPresent(b.DeliveryCity) || strPresent(b.DeliveryZip)
}

func strPresent(s *string) bool {
	return s != nil && strings.TrimSpace(*s) != ""
}

// StrValue dereferences s, returning "" for nil.
func StrValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// StrPtr returns a pointer to s. Convenience for building bags in tests and
// extraction adapters.
func StrPtr(s string) *string { return &s }

// FloatPtr returns a pointer to a FlexFloat with value v.
func FloatPtr(v float64) *FlexFloat {
	f := FlexFloat(v)
	return &f
}

// IntPtr returns a pointer to a FlexInt with value v.
func IntPtr(v int) *FlexInt {
	i := FlexInt(v)
	return &i
}

// BoolPtr returns a pointer to b.
func BoolPtr(b bool) *bool { return &b }
