package domain

// Canonical manifest column names. Extraction keeps exactly these columns
// and drops everything else.
const (
	ColumnRep          = "REP"
	ColumnCustomerID   = "CUSTOMER ID"
	ColumnCustomerName = "CUSTOMER NAME"
	ColumnLocation     = "LOCATION"
	ColumnCoordinates  = "COORDINATES"
	ColumnInvoiceNo    = "INVOICE NO."
	ColumnAmount       = "AMOUNT"
	ColumnTonnage      = "TONNAGE"
)

// RequiredColumns is the fixed column set recognized in a manifest table.
var RequiredColumns = []string{
	ColumnRep,
	ColumnCustomerID,
	ColumnCustomerName,
	ColumnLocation,
	ColumnCoordinates,
	ColumnInvoiceNo,
	ColumnAmount,
	ColumnTonnage,
}

// RawRow is one table row as read from the source document, with no
// semantics attached yet.
type RawRow []string

// Table is a sequence of raw rows extracted from one table region.
type Table []RawRow

// Page is one page of the source document, yielding zero or more tables.
type Page struct {
	// Number is the 1-based page position in the document.
	Number int `json:"number"`
	// Tables are the table regions found on the page.
	Tables []Table `json:"tables"`
}

// DeliveryRecord is one manifest line item after extraction and coordinate
// parsing. Records only exist with a non-empty customer id and successfully
// parsed coordinates; rows failing either are discarded during extraction.
type DeliveryRecord struct {
	// Rep is the sales representative code.
	Rep string `json:"rep"`
	// CustomerID is the customer account identifier.
	CustomerID string `json:"customer_id"`
	// CustomerName is the customer display name.
	CustomerName string `json:"customer_name"`
	// Location is the free-text delivery location from the manifest.
	Location string `json:"location"`
	// CoordinatesText is the raw coordinate cell, e.g. "LAT: -1.28 LONG: 36.82".
	CoordinatesText string `json:"coordinates"`
	// InvoiceNo is the invoice reference for the line item.
	InvoiceNo string `json:"invoice_no"`
	// Amount is the invoiced amount, kept as written in the manifest.
	Amount string `json:"amount"`
	// Tonnage is the load in tonnes, kept as written in the manifest.
	Tonnage string `json:"tonnage"`
	// Lat and Long are the parsed coordinates.
	Lat  float64 `json:"lat"`
	Long float64 `json:"long"`
	// ClusterID labels the proximity cluster the stop belongs to.
	// Informational only: it feeds no asset or routing decision.
	ClusterID int `json:"cluster_id"`
	// Region is the administrative region containing the stop, empty when
	// the point falls outside every known boundary.
	Region string `json:"region"`
}
