// Package export writes expense views to spreadsheet files.
package export

import (
	"bytes"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"expenses/internal/view"
)

const (
	ExpensesSheet   = "Expenses"
	CategoriesSheet = "Categories"
)

// WriteXLSX writes a workbook with the filtered records of snap on the
// Expenses sheet and the per-category totals on the Categories sheet.
func WriteXLSX(w io.Writer, snap view.Snapshot) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", ExpensesSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if _, err := f.NewSheet(CategoriesSheet); err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}

	dateStyle, err := f.NewStyle(&excelize.Style{CustomNumFmt: strPtr("yyyy-mm-dd")})
	if err != nil {
		return fmt.Errorf("date style: %w", err)
	}
	amountStyle, err := f.NewStyle(&excelize.Style{NumFmt: 4}) // #,##0.00
	if err != nil {
		return fmt.Errorf("amount style: %w", err)
	}
	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("header style: %w", err)
	}

	if err := writeRow(f, ExpensesSheet, 1, "Date", "Description", "Category", "Amount"); err != nil {
		return err
	}
	_ = f.SetCellStyle(ExpensesSheet, "A1", "D1", headerStyle)

	row := 2
	for _, e := range snap.Filtered {
		if err := writeRow(f, ExpensesSheet, row, e.Date, e.Description, e.Category, e.Amount); err != nil {
			return err
		}
		row++
	}
	if row > 2 {
		last := row - 1
		_ = f.SetCellStyle(ExpensesSheet, "A2", cell(1, last), dateStyle)
		_ = f.SetCellStyle(ExpensesSheet, "D2", cell(4, last), amountStyle)
	}

	totalRow := row + 1
	if err := writeRow(f, ExpensesSheet, totalRow, nil, "Total", nil, nil); err != nil {
		return err
	}
	if row > 2 {
		if err := f.SetCellFormula(ExpensesSheet, cell(4, totalRow), fmt.Sprintf("SUM(D2:D%d)", row-1)); err != nil {
			return fmt.Errorf("total formula: %w", err)
		}
	} else {
		_ = f.SetCellValue(ExpensesSheet, cell(4, totalRow), 0)
	}
	_ = f.SetCellStyle(ExpensesSheet, cell(2, totalRow), cell(4, totalRow), headerStyle)

	_ = f.SetColWidth(ExpensesSheet, "A", "A", 14)
	_ = f.SetColWidth(ExpensesSheet, "B", "B", 36)
	_ = f.SetColWidth(ExpensesSheet, "C", "C", 20)
	_ = f.SetColWidth(ExpensesSheet, "D", "D", 14)

	if err := writeRow(f, CategoriesSheet, 1, "Category", "Count", "Total"); err != nil {
		return err
	}
	_ = f.SetCellStyle(CategoriesSheet, "A1", "C1", headerStyle)
	for i, c := range view.ByCategory(snap.Filtered) {
		total, _ := c.Total.Float64()
		if err := writeRow(f, CategoriesSheet, i+2, c.Category, c.Count, total); err != nil {
			return err
		}
		_ = f.SetCellStyle(CategoriesSheet, cell(3, i+2), cell(3, i+2), amountStyle)
	}
	_ = f.SetColWidth(CategoriesSheet, "A", "A", 20)

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return fmt.Errorf("xlsx write: %w", err)
	}
	_, err = w.Write(buf.Bytes())
	return err
}

func writeRow(f *excelize.File, sheet string, row int, values ...any) error {
	for i, v := range values {
		if v == nil {
			continue
		}
		if err := f.SetCellValue(sheet, cell(i+1, row), v); err != nil {
			return fmt.Errorf("set %s!%s: %w", sheet, cell(i+1, row), err)
		}
	}
	return nil
}

func cell(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}

func strPtr(s string) *string { return &s }
