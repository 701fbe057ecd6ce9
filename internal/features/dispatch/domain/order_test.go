package domain

import (
	"testing"
	"time"

	manifestdomain "manifest-dispatcher/internal/features/manifest/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func enrichedRecord() manifestdomain.DeliveryRecord {
	return manifestdomain.DeliveryRecord{
		Rep:             "John",
		CustomerID:      "C001",
		CustomerName:    "Mama Njeri Shop",
		Location:        "Westlands",
		CoordinatesText: "LAT:-1.2648 LONG:36.8172",
		InvoiceNo:       "INV-101",
		Amount:          "15200.50",
		Tonnage:         "2.5",
		Region:          "Nairobi County",
	}
}

// TestWindowForDay verifies the window spans exactly the calendar day in the
// target zone.
func TestWindowForDay(t *testing.T) {
	loc, err := time.LoadLocation("Africa/Nairobi")
	require.NoError(t, err)

	day := time.Date(2026, 3, 14, 15, 30, 0, 0, time.UTC)
	window := WindowForDay(day, loc)

	start := time.Unix(window.From, 0).In(loc)
	assert.Equal(t, "2026-03-14 00:00:00", start.Format("2006-01-02 15:04:05"))
	assert.Equal(t, int64(24*60*60), window.To-window.From)
}

// TestAssetAssignment_ResourceFor verifies blank and missing assignments fall
// back to the unassigned placeholder.
func TestAssetAssignment_ResourceFor(t *testing.T) {
	assets := AssetAssignment{
		"Nairobi County": "KBX 123A",
		"Kiambu County":  "   ",
	}

	assert.Equal(t, "KBX 123A", assets.ResourceFor("Nairobi County"))
	assert.Equal(t, UnassignedResource, assets.ResourceFor("Kiambu County"))
	assert.Equal(t, UnassignedResource, assets.ResourceFor("Mombasa County"))
}

// TestBuildOrder verifies the full record-to-order mapping.
func TestBuildOrder(t *testing.T) {
	window := TimeWindow{From: 1_700_000_000, To: 1_700_086_400}
	assets := AssetAssignment{"Nairobi County": "KBX 123A"}

	order, ok := BuildOrder(enrichedRecord(), window, assets)
	require.True(t, ok)

	assert.Equal(t, int64(0), order.ID)
	assert.Equal(t, "Mama Njeri Shop", order.CustomerName)
	assert.Equal(t, "Nairobi County (LAT:-1.2648, LONG:36.8172)", order.Address)
	assert.Equal(t, 2500, order.Weight)
	assert.Equal(t, "15200.50", order.Amount)
	assert.Equal(t, "C001", order.CustomerID)
	assert.Equal(t, "INV-101", order.InvoiceNo)
	assert.Equal(t, "KBX 123A", order.Resource)
	assert.Equal(t, window, order.Window)
	assert.InDelta(t, -1.2648, order.Lat, 1e-9)
	assert.InDelta(t, 36.8172, order.Long, 1e-9)
	assert.Equal(t, 0, order.Sequence)
}

// TestBuildOrder_WeightFallsBackToZero verifies unparseable or missing
// tonnage yields weight 0 rather than an error.
func TestBuildOrder_WeightFallsBackToZero(t *testing.T) {
	for _, tonnage := range []string{"", "n/a"} {
		rec := enrichedRecord()
		rec.Tonnage = tonnage

		order, ok := BuildOrder(rec, TimeWindow{}, nil)
		require.True(t, ok)
		assert.Equal(t, 0, order.Weight)
	}
}

// TestBuildOrder_UnassignedRegion verifies records without an asset mapping
// get the unassigned placeholder resource.
func TestBuildOrder_UnassignedRegion(t *testing.T) {
	order, ok := BuildOrder(enrichedRecord(), TimeWindow{}, nil)
	require.True(t, ok)
	assert.Equal(t, UnassignedResource, order.Resource)
}

// TestBuildOrders_SkipsUnparseableCoordinates verifies defensive re-parsing
// drops records whose coordinate text is broken.
func TestBuildOrders_SkipsUnparseableCoordinates(t *testing.T) {
	good := enrichedRecord()
	bad := enrichedRecord()
	bad.CoordinatesText = "somewhere in Nairobi"

	orders := BuildOrders([]manifestdomain.DeliveryRecord{good, bad}, TimeWindow{}, nil)
	require.Len(t, orders, 1)
	assert.Equal(t, "Mama Njeri Shop", orders[0].CustomerName)
}
