package service

import (
	"errors"
	"regexp"
	"strings"

	"manifest-dispatcher/internal/core/logger"
	"manifest-dispatcher/internal/features/manifest/domain"

	"go.uber.org/zap"
)

// ErrNoValidData is returned when the manifest yields no header row or no
// data rows survive filtering. This is fatal to the whole run.
var ErrNoValidData = errors.New("manifest parsing failed: no valid data found")

// reportBannerPrefix marks report title rows that precede the real header on
// the first page.
const reportBannerPrefix = "Sales Order Booking"

// noisePattern matches cells of non-data rows embedded mid-table: fixed
// charge notices, signature lines, mileage summaries and carton counts.
var noisePattern = regexp.MustCompile(`(?i)fixed|driver sign|mileage|cartons`)

// newlineRun collapses embedded line breaks (and surrounding space) that the
// table dump introduces inside wrapped cells.
var newlineRun = regexp.MustCompile(`\s*\n\s*`)

// Extractor turns a paginated table dump into a clean, uniformly-columned
// delivery record set.
type Extractor struct {
	logger *zap.Logger
}

// NewExtractor creates a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{
		logger: logger.Get(),
	}
}

// requiredSet is the canonical column set keyed for case-insensitive lookup.
var requiredSet = func() map[string]bool {
	set := make(map[string]bool, len(domain.RequiredColumns))
	for _, c := range domain.RequiredColumns {
		set[c] = true
	}
	return set
}()

// Extract recovers delivery records from the raw pages.
//
// The header is located on the first page as the first row whose leading cell
// is non-empty and is not a report banner; everything before it is discarded
// and everything after it, on any page, is data. Data rows are filtered
// (blank rows, repeated header rows, noise rows, rows without a customer id,
// rows without parseable coordinates), projected onto the required columns
// and whitespace-normalized.
func (e *Extractor) Extract(pages []domain.Page) ([]domain.DeliveryRecord, error) {
	var header domain.RawRow
	var rows []domain.RawRow

	for pi, page := range pages {
		for _, tbl := range page.Tables {
			data := tbl

			// Continuation pages carry no header; every row is data.
			if pi == 0 && header == nil {
				data = nil
				for ri, row := range tbl {
					if len(row) == 0 || strings.TrimSpace(row[0]) == "" {
						continue
					}
					if strings.HasPrefix(strings.TrimSpace(row[0]), reportBannerPrefix) {
						continue
					}
					header = normalizeRow(row)
					data = tbl[ri+1:]
					break
				}
			}

			for _, row := range data {
				if !isBlank(row) {
					rows = append(rows, row)
				}
			}
		}
	}

	if header == nil || len(rows) == 0 {
		return nil, ErrNoValidData
	}

	// Restrict to the required columns; extraneous columns are dropped.
	type column struct {
		name string
		idx  int
	}
	var columns []column
	for i, name := range header {
		canonical := strings.ToUpper(name)
		if requiredSet[canonical] {
			columns = append(columns, column{name: canonical, idx: i})
		}
	}

	records := make([]domain.DeliveryRecord, 0, len(rows))
	for _, raw := range rows {
		row := normalizeRow(raw)

		if repeatsHeader(row) {
			e.logger.Debug("Skipping repeated header row", zap.Strings("row", row))
			continue
		}
		if matchesNoise(row) {
			e.logger.Debug("Skipping noise row", zap.Strings("row", row))
			continue
		}

		values := make(map[string]string, len(columns))
		for _, col := range columns {
			if col.idx < len(row) {
				values[col.name] = row[col.idx]
			}
		}

		if values[domain.ColumnCustomerID] == "" {
			continue
		}

		rec := domain.DeliveryRecord{
			Rep:             values[domain.ColumnRep],
			CustomerID:      values[domain.ColumnCustomerID],
			CustomerName:    values[domain.ColumnCustomerName],
			Location:        values[domain.ColumnLocation],
			CoordinatesText: values[domain.ColumnCoordinates],
			InvoiceNo:       values[domain.ColumnInvoiceNo],
			Amount:          values[domain.ColumnAmount],
			Tonnage:         values[domain.ColumnTonnage],
		}

		lat, long, ok := domain.ParseCoordinates(rec.CoordinatesText)
		if !ok {
			e.logger.Debug("Dropping record without parseable coordinates",
				zap.String("customer_id", rec.CustomerID),
				zap.String("coordinates", rec.CoordinatesText),
			)
			continue
		}
		rec.Lat = lat
		rec.Long = long

		records = append(records, rec)
	}

	if len(records) == 0 {
		return nil, ErrNoValidData
	}

	e.logger.Info("Manifest extracted",
		zap.Int("pages", len(pages)),
		zap.Int("raw_rows", len(rows)),
		zap.Int("records", len(records)),
	)

	return records, nil
}

// normalizeRow collapses embedded newlines to single spaces and trims every
// cell.
func normalizeRow(row domain.RawRow) domain.RawRow {
	out := make(domain.RawRow, len(row))
	for i, cell := range row {
		out[i] = strings.TrimSpace(newlineRun.ReplaceAllString(cell, " "))
	}
	return out
}

// isBlank reports whether every cell of the row is empty or whitespace.
func isBlank(row domain.RawRow) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// repeatsHeader reports whether any cell matches a required column token,
// which guards against header/footer rows repeated mid-table.
func repeatsHeader(row domain.RawRow) bool {
	for _, cell := range row {
		if requiredSet[strings.ToUpper(cell)] {
			return true
		}
	}
	return false
}

// matchesNoise reports whether any cell contains a known non-data marker.
func matchesNoise(row domain.RawRow) bool {
	for _, cell := range row {
		if noisePattern.MatchString(cell) {
			return true
		}
	}
	return false
}
