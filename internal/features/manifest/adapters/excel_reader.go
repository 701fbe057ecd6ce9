package adapters

import (
	"fmt"
	"io"

	"manifest-dispatcher/internal/core/logger"
	"manifest-dispatcher/internal/features/manifest/domain"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// ExcelReader implements ports.ManifestReader for .xlsx workbooks.
// Each sheet maps to one page carrying its used range as a single table,
// which mirrors how paginated report exports split one logical table across
// sheets.
type ExcelReader struct {
	source io.Reader
	logger *zap.Logger
}

// NewExcelReader creates a reader over an uploaded workbook stream.
func NewExcelReader(source io.Reader) *ExcelReader {
	return &ExcelReader{
		source: source,
		logger: logger.Get(),
	}
}

// ReadPages opens the workbook and returns one page per sheet, in workbook
// order. Sheets without any rows yield pages with no tables.
func (r *ExcelReader) ReadPages() ([]domain.Page, error) {
	f, err := excelize.OpenReader(r.source)
	if err != nil {
		return nil, fmt.Errorf("failed to open manifest workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	pages := make([]domain.Page, 0, len(sheets))

	for i, sheet := range sheets {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
		}

		page := domain.Page{Number: i + 1}
		if len(rows) > 0 {
			table := make(domain.Table, 0, len(rows))
			for _, row := range rows {
				table = append(table, domain.RawRow(row))
			}
			page.Tables = []domain.Table{table}
		}

		r.logger.Debug("Read manifest sheet",
			zap.String("sheet", sheet),
			zap.Int("rows", len(rows)),
		)

		pages = append(pages, page)
	}

	return pages, nil
}
