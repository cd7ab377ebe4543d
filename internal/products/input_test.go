package products

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizeAcceptsNestedAndFlatShapes(t *testing.T) {
	var nested ProductPayload
	require.NoError(t, json.Unmarshal([]byte(`{
		"name": " Basmati Rice ",
		"category": "Grocery",
		"price": {"mrp": 120, "sellingPrice": "99.5"},
		"inventory": {"stock": 40, "unit": "KG"},
		"tags": ["Rice", "rice", " staples "]
	}`), &nested))
	var flat ProductPayload
	require.NoError(t, json.Unmarshal([]byte(`{
		"name": "Basmati Rice",
		"category": "grocery",
		"mrp": "120",
		"sellingPrice": 99.5,
		"stock": 40,
		"unit": "kg",
		"tags": ["rice", "staples"]
	}`), &flat))

	a, err := nested.Normalize()
	require.NoError(t, err)
	b, err := flat.Normalize()
	require.NoError(t, err)

	require.Equal(t, *a.Name, *b.Name)
	require.Equal(t, "grocery", *a.Category)
	require.True(t, a.MRP.Equal(*b.MRP))
	require.True(t, a.SellingPrice.Equal(*b.SellingPrice))
	require.Equal(t, *a.Stock, *b.Stock)
	require.Equal(t, "kg", *a.Unit)
	require.Equal(t, []string{"rice", "staples"}, *a.Tags)
	require.Equal(t, *a.Tags, *b.Tags)
	require.Nil(t, a.MinStock)
}

func TestNormalizeRejectsConflictingShapes(t *testing.T) {
	var payload ProductPayload
	require.NoError(t, json.Unmarshal([]byte(`{"price": {"mrp": 100}, "mrp": 90}`), &payload))
	_, err := payload.Normalize()
	require.Error(t, err)

	require.NoError(t, json.Unmarshal([]byte(`{"inventory": {"stock": 1}, "stock": 1, "price": {"mrp": 90}, "mrp": 90}`), &payload))
	_, err = payload.Normalize()
	require.NoError(t, err, "identical values in both shapes are accepted")
}
