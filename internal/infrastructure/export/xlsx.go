package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/kirillkom/pdf-highlights/internal/core/domain"
)

const (
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	highlightsSheet = "Highlights"
)

var xlsxHeader = []any{"Page", "Category", "Text", "Comment"}

// XLSXWriter renders highlight records as a single-sheet workbook, one row per
// record in document order, with the category cell tinted by palette colour.
type XLSXWriter struct{}

func NewXLSXWriter() *XLSXWriter {
	return &XLSXWriter{}
}

func (w *XLSXWriter) ContentType() string {
	return xlsxContentType
}

func (w *XLSXWriter) Export(out io.Writer, source string, records []domain.HighlightRecord) error {
	f := excelize.NewFile()
	defer func() {
		_ = f.Close()
	}()

	if err := f.SetSheetName("Sheet1", highlightsSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if source != "" {
		if err := f.SetDocProps(&excelize.DocProperties{Title: source, Subject: "PDF highlights"}); err != nil {
			return fmt.Errorf("set document properties: %w", err)
		}
	}

	if err := f.SetSheetRow(highlightsSheet, "A1", &xlsxHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}
	if err := f.SetCellStyle(highlightsSheet, "A1", "D1", headerStyle); err != nil {
		return fmt.Errorf("style header: %w", err)
	}

	categoryStyles, err := categoryFillStyles(f)
	if err != nil {
		return err
	}

	for i, rec := range records {
		row := i + 2
		cell, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			return fmt.Errorf("resolve row %d: %w", row, err)
		}
		values := []any{rec.Page, rec.Category, rec.Text, rec.Comment}
		if err := f.SetSheetRow(highlightsSheet, cell, &values); err != nil {
			return fmt.Errorf("write row %d: %w", row, err)
		}
		if style, ok := categoryStyles[rec.Category]; ok {
			categoryCell, _ := excelize.CoordinatesToCellName(2, row)
			if err := f.SetCellStyle(highlightsSheet, categoryCell, categoryCell, style); err != nil {
				return fmt.Errorf("style row %d: %w", row, err)
			}
		}
	}

	if err := f.SetColWidth(highlightsSheet, "B", "B", 28); err != nil {
		return fmt.Errorf("set column width: %w", err)
	}
	if err := f.SetColWidth(highlightsSheet, "C", "D", 60); err != nil {
		return fmt.Errorf("set column width: %w", err)
	}

	if _, err := f.WriteTo(out); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func categoryFillStyles(f *excelize.File) (map[string]int, error) {
	styles := make(map[string]int, len(domain.Palette))
	for _, entry := range domain.Palette {
		id, err := f.NewStyle(&excelize.Style{
			Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{entry.Color.Hex()}},
		})
		if err != nil {
			return nil, fmt.Errorf("create style for %q: %w", entry.Category, err)
		}
		styles[entry.Category] = id
	}
	return styles, nil
}
