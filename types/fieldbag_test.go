package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlexFloatUnmarshal(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  float64
	}{
		{"plain number", `35000`, 35000},
		{"decimal", `42.5`, 42.5},
		{"numeric string", `"35000"`, 35000},
		{"string with separators", `"35,000"`, 35000},
		{"string with spaces", `" 12000 "`, 12000},
		{"null", `null`, 0},
		{"empty string", `""`, 0},
		{"unparseable string keeps zero", `"about ten tons"`, 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var f FlexFloat
			require.NoError(t, json.Unmarshal([]byte(tc.input), &f))
			assert.Equal(t, tc.want, f.Float64())
		})
	}

	var f FlexFloat
	assert.Error(t, json.Unmarshal([]byte(`{"lbs":1}`), &f))
}

func TestFlexIntUnmarshal(t *testing.T) {
	var i FlexInt
	require.NoError(t, json.Unmarshal([]byte(`"12"`), &i))
	assert.Equal(t, 12, i.Int())

	require.NoError(t, json.Unmarshal([]byte(`12.9`), &i))
	assert.Equal(t, 12, i.Int(), "fractional counts truncate")
}

func TestFieldBagDecode(t *testing.T) {
	payload := `{
		"pickup_location": "Los Angeles, CA 90001",
		"delivery_location": "Dallas, TX 75201",
		"weight": "35,000",
		"commodity": "Electronics",
		"pickup_date": "2024-02-15",
		"equipment_type": "Dry Van",
		"dimensions": {"length": "48", "width": 40, "height": 48},
		"piece_count": "10"
	}`

	var bag ShipmentFieldBag
	require.NoError(t, json.Unmarshal([]byte(payload), &bag))

	assert.Equal(t, "Los Angeles, CA 90001", StrValue(bag.PickupLocation))
	assert.Equal(t, float64(35000), bag.Weight.Float64())
	require.True(t, bag.Dimensions.Complete())
	assert.Equal(t, float64(48), bag.Dimensions.Length.Float64())
	assert.Equal(t, 10, bag.PieceCount.Int())
	assert.Nil(t, bag.Temperature)
}

func TestMerge(t *testing.T) {
	base := ShipmentFieldBag{
		PickupLocation:   StrPtr("LA"),
		DeliveryLocation: StrPtr("Dallas"),
		EquipmentType:    StrPtr("Dry Van"),
		Weight:           FloatPtr(35000),
	}

	update := ShipmentFieldBag{
		PickupLocation: StrPtr("Los Angeles, CA 90001"),
		Commodity:      StrPtr("Electronics"),
	}

	merged := base.Merge(update)

	assert.Equal(t, "Los Angeles, CA 90001", StrValue(merged.PickupLocation))
	assert.Equal(t, "Electronics", StrValue(merged.Commodity))
	assert.Equal(t, "Dallas", StrValue(merged.DeliveryLocation), "absent update fields keep the prior value")
	assert.Equal(t, float64(35000), merged.Weight.Float64())

	// Inputs are untouched.
	assert.Equal(t, "LA", StrValue(base.PickupLocation))
	assert.Nil(t, base.Commodity)
	assert.Nil(t, update.DeliveryLocation)
}

func TestMergeNestedStructsReplaceWholesale(t *testing.T) {
	base := ShipmentFieldBag{
		Dimensions: &Dimensions{Length: FloatPtr(48), Width: FloatPtr(40), Height: FloatPtr(48)},
	}
	update := ShipmentFieldBag{
		Dimensions: &Dimensions{Length: FloatPtr(53)},
	}

	merged := base.Merge(update)
	assert.False(t, merged.Dimensions.Complete(), "a partial dimensions update replaces the whole object")
	assert.Equal(t, float64(53), merged.Dimensions.Length.Float64())
}

func TestHasPickupAndDelivery(t *testing.T) {
	var bag ShipmentFieldBag
	assert.False(t, bag.HasPickup())
	assert.False(t, bag.HasDelivery())

	bag.PickupCity = StrPtr("Memphis")
	assert.True(t, bag.HasPickup())

	bag.DeliveryZip = StrPtr("30303")
	assert.True(t, bag.HasDelivery())

	bag.PickupCity = StrPtr("   ")
	assert.False(t, bag.HasPickup(), "blank strings are not a location signal")
}

func TestTemperaturePopulated(t *testing.T) {
	var temp *Temperature
	assert.False(t, temp.Populated())

	temp = &Temperature{Unit: StrPtr("F")}
	assert.False(t, temp.Populated(), "a unit with no bounds is not a range")

	temp.Min = FloatPtr(-10)
	assert.True(t, temp.Populated())
}
