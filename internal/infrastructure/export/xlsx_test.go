package export

import (
	"bytes"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/kirillkom/pdf-highlights/internal/core/domain"
)

func TestXLSXWriterExportsRowsInOrder(t *testing.T) {
	records := []domain.HighlightRecord{
		{Page: 1, Text: "Remember this", Category: domain.CategoryGeneral},
		{Page: 3, Text: "Fix before release", Category: domain.CategoryCritical, Comment: "blocker"},
	}

	var buf bytes.Buffer
	if err := NewXLSXWriter().Export(&buf, "notes.pdf", records); err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("OpenReader() error = %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(highlightsSheet)
	if err != nil {
		t.Fatalf("GetRows() error = %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected header + 2 rows, got %d", len(rows))
	}
	if rows[0][0] != "Page" || rows[0][3] != "Comment" {
		t.Fatalf("unexpected header %v", rows[0])
	}
	if rows[1][0] != "1" || rows[1][1] != domain.CategoryGeneral || rows[1][2] != "Remember this" {
		t.Fatalf("unexpected first row %v", rows[1])
	}
	if rows[2][0] != "3" || rows[2][3] != "blocker" {
		t.Fatalf("unexpected second row %v", rows[2])
	}
}

func TestXLSXWriterEmptyRecordsHasHeaderOnly(t *testing.T) {
	var buf bytes.Buffer
	if err := NewXLSXWriter().Export(&buf, "", nil); err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("OpenReader() error = %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(highlightsSheet)
	if err != nil {
		t.Fatalf("GetRows() error = %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected header only, got %d rows", len(rows))
	}
}
