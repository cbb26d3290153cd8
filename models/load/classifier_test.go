package load

import (
	"testing"

	"github.com/FreightDesk/freight-desk-backend/types"
	"github.com/stretchr/testify/assert"
)

func TestClassify_HazmatOverridesEverything(t *testing.T) {
	tests := []struct {
		name string
		bag  types.ShipmentFieldBag
	}{
		{
			name: "hazmat class with dry van equipment",
			bag: types.ShipmentFieldBag{
				HazmatClass:   types.StrPtr("3"),
				EquipmentType: types.StrPtr("Dry Van"),
			},
		},
		{
			name: "un number with reefer equipment and temperature",
			bag: types.ShipmentFieldBag{
				UNNumber:      types.StrPtr("UN1993"),
				EquipmentType: types.StrPtr("Reefer"),
				Temperature:   &types.Temperature{Min: types.FloatPtr(-10)},
			},
		},
		{
			name: "proper shipping name alone",
			bag: types.ShipmentFieldBag{
				ProperShippingName: types.StrPtr("Flammable liquids, n.o.s."),
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, types.FreightFTLHazmat, Classify(&tc.bag))
		})
	}
}

func TestClassify_ExplicitDryVanBeatsColdSignals(t *testing.T) {
	bag := types.ShipmentFieldBag{
		EquipmentType: types.StrPtr("Dry Van"),
		Temperature:   &types.Temperature{Min: types.FloatPtr(-20), Unit: types.StrPtr("F")},
		Commodity:     types.StrPtr("frozen pizza"),
	}
	assert.Equal(t, types.FreightFTLDryVan, Classify(&bag))

	// Bare "van" also counts as an explicit statement.
	bag.EquipmentType = types.StrPtr("Van")
	assert.Equal(t, types.FreightFTLDryVan, Classify(&bag))

	// "dry" without "deck" is a dry van; "step deck" must not match.
	bag.EquipmentType = types.StrPtr("53' dry trailer")
	assert.Equal(t, types.FreightFTLDryVan, Classify(&bag))
}

func TestClassify_ReeferSignals(t *testing.T) {
	bag := types.ShipmentFieldBag{EquipmentType: types.StrPtr("Reefer")}
	assert.Equal(t, types.FreightFTLReefer, Classify(&bag))

	bag = types.ShipmentFieldBag{EquipmentType: types.StrPtr("refrigerated trailer")}
	assert.Equal(t, types.FreightFTLReefer, Classify(&bag))

	// Temperature alone triggers reefer when equipment says nothing.
	bag = types.ShipmentFieldBag{
		Temperature: &types.Temperature{Max: types.FloatPtr(34), Unit: types.StrPtr("F")},
	}
	assert.Equal(t, types.FreightFTLReefer, Classify(&bag))
}

func TestClassify_FlatbedSignals(t *testing.T) {
	for _, equip := range []string{"Flatbed", "step deck", "RGN lowboy"} {
		bag := types.ShipmentFieldBag{EquipmentType: types.StrPtr(equip)}
		assert.Equal(t, types.FreightFTLFlatbed, Classify(&bag), "equipment %q", equip)
	}

	bag := types.ShipmentFieldBag{TarpingRequired: types.BoolPtr(true)}
	assert.Equal(t, types.FreightFTLFlatbed, Classify(&bag))

	bag = types.ShipmentFieldBag{OversizePermits: types.BoolPtr(true)}
	assert.Equal(t, types.FreightFTLFlatbed, Classify(&bag))
}

func TestClassify_WeightCascade(t *testing.T) {
	tests := []struct {
		name   string
		weight float64
		pieces *types.FlexInt
		want   types.FreightCategory
	}{
		{"light freight", 150, nil, types.FreightLTL},
		{"just under partial band", 4999, nil, types.FreightLTL},
		{"mid band few pieces", 8000, types.IntPtr(6), types.FreightLTL},
		{"mid band no piece count", 8000, nil, types.FreightLTL},
		{"mid band many pieces", 8000, types.IntPtr(14), types.FreightPartial},
		{"exactly 15000 few pieces", 15000, types.IntPtr(10), types.FreightLTL},
		{"exactly 15000 many pieces", 15000, types.IntPtr(11), types.FreightPartial},
		{"heavy partial", 22000, nil, types.FreightPartial},
		{"exactly 30000", 30000, nil, types.FreightPartial},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			bag := types.ShipmentFieldBag{Weight: types.FloatPtr(tc.weight), PieceCount: tc.pieces}
			assert.Equal(t, tc.want, Classify(&bag))
		})
	}
}

func TestClassify_FreightClassMeansLTLRegardlessOfWeight(t *testing.T) {
	bag := types.ShipmentFieldBag{
		FreightClass: types.StrPtr("125"),
		Weight:       types.FloatPtr(28000),
	}
	assert.Equal(t, types.FreightLTL, Classify(&bag))
}

func TestClassify_WeightOutsideBandsFallsThrough(t *testing.T) {
	// 35,000 lbs with both locations: no weight rule fires, fallback wins.
	bag := types.ShipmentFieldBag{
		Weight:           types.FloatPtr(35000),
		PickupLocation:   types.StrPtr("Dallas, TX"),
		DeliveryLocation: types.StrPtr("Miami, FL"),
	}
	assert.Equal(t, types.FreightFTLDryVan, Classify(&bag))

	// 35,000 lbs with no locations at all.
	bag = types.ShipmentFieldBag{Weight: types.FloatPtr(35000)}
	assert.Equal(t, types.FreightUnknown, Classify(&bag))
}

func TestClassify_CommodityImpliedReefer(t *testing.T) {
	bag := types.ShipmentFieldBag{Commodity: types.StrPtr("frozen chicken")}
	assert.Equal(t, types.FreightFTLReefer, Classify(&bag))

	bag = types.ShipmentFieldBag{Commodity: types.StrPtr("ice cream pallets")}
	assert.Equal(t, types.FreightFTLReefer, Classify(&bag))

	// Only reached when equipment is entirely empty.
	bag = types.ShipmentFieldBag{
		Commodity:     types.StrPtr("frozen chicken"),
		EquipmentType: types.StrPtr("conestoga"),
		PickupLocation:   types.StrPtr("Dallas, TX"),
		DeliveryLocation: types.StrPtr("Miami, FL"),
	}
	assert.Equal(t, types.FreightFTLDryVan, Classify(&bag))
}

func TestClassify_Fallback(t *testing.T) {
	bag := types.ShipmentFieldBag{
		PickupLocation:   types.StrPtr("Dallas, TX"),
		DeliveryLocation: types.StrPtr("Miami, FL"),
	}
	assert.Equal(t, types.FreightFTLDryVan, Classify(&bag))

	bag = types.ShipmentFieldBag{PickupLocation: types.StrPtr("Dallas, TX")}
	assert.Equal(t, types.FreightUnknown, Classify(&bag))

	bag = types.ShipmentFieldBag{}
	assert.Equal(t, types.FreightUnknown, Classify(&bag))

	// City/zip fields count as location signals for the fallback.
	bag = types.ShipmentFieldBag{
		PickupCity:  types.StrPtr("Dallas"),
		DeliveryZip: types.StrPtr("33166"),
	}
	assert.Equal(t, types.FreightFTLDryVan, Classify(&bag))
}

func TestClassify_Deterministic(t *testing.T) {
	bag := types.ShipmentFieldBag{
		EquipmentType: types.StrPtr("53ft dry van"),
		Weight:        types.FloatPtr(12000),
		Temperature:   &types.Temperature{Min: types.FloatPtr(-5)},
	}
	first := Classify(&bag)
	for i := 0; i < 100; i++ {
		assert.Equal(t, first, Classify(&bag))
	}
}
