package service

import (
	"testing"

	"manifest-dispatcher/internal/features/manifest/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// manifestHeader is the canonical header row used across tests.
var manifestHeader = domain.RawRow{
	"REP", "CUSTOMER ID", "CUSTOMER NAME", "LOCATION", "COORDINATES", "INVOICE NO.", "AMOUNT", "TONNAGE",
}

func dataRow(rep, id, name, loc, coords, inv, amount, tonnage string) domain.RawRow {
	return domain.RawRow{rep, id, name, loc, coords, inv, amount, tonnage}
}

// TestExtractor_Extract_Basic verifies banner skipping, header detection and
// record construction.
func TestExtractor_Extract_Basic(t *testing.T) {
	pages := []domain.Page{
		{
			Number: 1,
			Tables: []domain.Table{
				{
					domain.RawRow{"Sales Order Booking Report - 2026-08-20", "", "", "", "", "", "", ""},
					manifestHeader,
					dataRow("R1", "C1", "Acme", "Nairobi", "LAT: -1.28 LONG: 36.82", "INV1", "100", "2"),
					dataRow("R2", "C2", "Globex", "Thika", "LAT: -1.03 LONG: 37.07", "INV2", "250", "1.5"),
				},
			},
		},
	}

	records, err := NewExtractor().Extract(pages)
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "C1", records[0].CustomerID)
	assert.Equal(t, "Acme", records[0].CustomerName)
	assert.Equal(t, -1.28, records[0].Lat)
	assert.Equal(t, 36.82, records[0].Long)
	assert.Equal(t, "INV2", records[1].InvoiceNo)
	assert.Equal(t, "1.5", records[1].Tonnage)
}

// TestExtractor_Extract_ContinuationPages verifies that subsequent pages are
// treated as header-less data.
func TestExtractor_Extract_ContinuationPages(t *testing.T) {
	pages := []domain.Page{
		{
			Number: 1,
			Tables: []domain.Table{
				{
					manifestHeader,
					dataRow("R1", "C1", "Acme", "Nairobi", "LAT: -1.28 LONG: 36.82", "INV1", "100", "2"),
				},
			},
		},
		{
			Number: 2,
			Tables: []domain.Table{
				{
					dataRow("R2", "C2", "Globex", "Thika", "LAT: -1.03 LONG: 37.07", "INV2", "250", "1.5"),
				},
			},
		},
	}

	records, err := NewExtractor().Extract(pages)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "C2", records[1].CustomerID)
}

// TestExtractor_Extract_FiltersNoiseAndRepeatedHeaders verifies the row
// filter pass.
func TestExtractor_Extract_FiltersNoiseAndRepeatedHeaders(t *testing.T) {
	pages := []domain.Page{
		{
			Number: 1,
			Tables: []domain.Table{
				{
					manifestHeader,
					dataRow("R1", "C1", "Acme", "Nairobi", "LAT: -1.28 LONG: 36.82", "INV1", "100", "2"),
					// Repeated header embedded mid-table.
					manifestHeader,
					// Noise rows.
					domain.RawRow{"", "", "Total Mileage: 120km", "", "", "", "", ""},
					domain.RawRow{"", "", "", "Driver Sign: ______", "", "", "", ""},
					domain.RawRow{"", "", "Cartons: 44", "", "", "", "", ""},
					domain.RawRow{"Fixed charge applies", "", "", "", "", "", "", ""},
					// Blank row.
					domain.RawRow{"", "", "", "", "", "", "", ""},
					// Missing customer id.
					dataRow("R3", "", "NoID Ltd", "Kiambu", "LAT: -1.17 LONG: 36.83", "INV3", "90", "1"),
					// Malformed coordinates.
					dataRow("R4", "C4", "NoCoords", "Unknown", "opposite the market", "INV4", "70", "1"),
				},
			},
		},
	}

	records, err := NewExtractor().Extract(pages)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Acme", records[0].CustomerName)
}

// TestExtractor_Extract_NormalizesWrappedCells verifies newline collapsing in
// both header and cell values, and case-insensitive column matching.
func TestExtractor_Extract_NormalizesWrappedCells(t *testing.T) {
	pages := []domain.Page{
		{
			Number: 1,
			Tables: []domain.Table{
				{
					domain.RawRow{"Rep", "Customer\nID", "customer name", "LOCATION", "COORDINATES", "Invoice\nNo.", "AMOUNT", "TONNAGE"},
					dataRow("R1", "C1", "Acme\nDistributors", "Nairobi\nWest", "LAT: -1.28\nLONG: 36.82", "INV1", "100", "2"),
				},
			},
		},
	}

	records, err := NewExtractor().Extract(pages)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Acme Distributors", records[0].CustomerName)
	assert.Equal(t, "Nairobi West", records[0].Location)
	assert.Equal(t, -1.28, records[0].Lat)
	assert.Equal(t, 36.82, records[0].Long)
}

// TestExtractor_Extract_DropsExtraneousColumns verifies column restriction.
func TestExtractor_Extract_DropsExtraneousColumns(t *testing.T) {
	pages := []domain.Page{
		{
			Number: 1,
			Tables: []domain.Table{
				{
					domain.RawRow{"REP", "CUSTOMER ID", "CUSTOMER NAME", "REMARKS", "LOCATION", "COORDINATES", "INVOICE NO.", "AMOUNT", "TONNAGE"},
					domain.RawRow{"R1", "C1", "Acme", "call ahead", "Nairobi", "LAT: -1.28 LONG: 36.82", "INV1", "100", "2"},
				},
			},
		},
	}

	records, err := NewExtractor().Extract(pages)
	require.NoError(t, err)
	require.Len(t, records, 1)
	// REMARKS is dropped; LOCATION still lands on the right field.
	assert.Equal(t, "Nairobi", records[0].Location)
	assert.Equal(t, "INV1", records[0].InvoiceNo)
}

// TestExtractor_Extract_NoHeader verifies the fatal parse error when no
// header row can be located.
func TestExtractor_Extract_NoHeader(t *testing.T) {
	pages := []domain.Page{
		{
			Number: 1,
			Tables: []domain.Table{
				{
					domain.RawRow{"Sales Order Booking Report", "", ""},
					domain.RawRow{"", "", ""},
				},
			},
		},
	}

	_, err := NewExtractor().Extract(pages)
	assert.ErrorIs(t, err, ErrNoValidData)
}

// TestExtractor_Extract_NoSurvivingRows verifies the fatal parse error when
// every data row is filtered out.
func TestExtractor_Extract_NoSurvivingRows(t *testing.T) {
	pages := []domain.Page{
		{
			Number: 1,
			Tables: []domain.Table{
				{
					manifestHeader,
					domain.RawRow{"", "", "Total Mileage: 120km", "", "", "", "", ""},
				},
			},
		},
	}

	_, err := NewExtractor().Extract(pages)
	assert.ErrorIs(t, err, ErrNoValidData)
}

// TestExtractor_Extract_EmptyDocument verifies empty input fails fast.
func TestExtractor_Extract_EmptyDocument(t *testing.T) {
	_, err := NewExtractor().Extract(nil)
	assert.ErrorIs(t, err, ErrNoValidData)
}
