package ledger

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"tutornotes/internal/core"
)

const xlsxSheet = "Debit Notes"

// ExportXLSX writes notes as a single-sheet workbook with a header row and a grand total.
func ExportXLSX(w io.Writer, notes []core.IssuedNote) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", xlsxSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create style: %w", err)
	}

	if err := setRow(f, 1, toAny(Header)); err != nil {
		return err
	}
	last, _ := excelize.CoordinatesToCellName(len(Header), 1)
	if err := f.SetCellStyle(xlsxSheet, "A1", last, bold); err != nil {
		return fmt.Errorf("style header: %w", err)
	}

	var total int64
	for i, n := range notes {
		if err := setRow(f, i+2, Row(n)); err != nil {
			return err
		}
		total += n.Total
	}

	totalRow := len(notes) + 2
	label, _ := excelize.CoordinatesToCellName(1, totalRow)
	value, _ := excelize.CoordinatesToCellName(6, totalRow)
	if err := f.SetCellValue(xlsxSheet, label, "Total"); err != nil {
		return fmt.Errorf("write total label: %w", err)
	}
	if err := f.SetCellValue(xlsxSheet, value, total); err != nil {
		return fmt.Errorf("write total: %w", err)
	}
	if err := f.SetCellStyle(xlsxSheet, label, value, bold); err != nil {
		return fmt.Errorf("style total: %w", err)
	}
	if err := f.SetColWidth(xlsxSheet, "A", "I", 16); err != nil {
		return fmt.Errorf("set column width: %w", err)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func setRow(f *excelize.File, row int, values []any) error {
	for col, v := range values {
		cell, err := excelize.CoordinatesToCellName(col+1, row)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(xlsxSheet, cell, v); err != nil {
			return fmt.Errorf("write %s: %w", cell, err)
		}
	}
	return nil
}

func toAny(in []string) []any {
	out := make([]any, len(in))
	for i, v := range in {
		out[i] = v
	}
	return out
}
