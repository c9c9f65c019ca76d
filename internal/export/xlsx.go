package export

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// Workbook builds an xlsx file with one sheet per table, named after the
// table title.
func Workbook(tables ...Table) ([]byte, error) {
	if len(tables) == 0 {
		return nil, fmt.Errorf("workbook needs at least one sheet")
	}

	f := excelize.NewFile()
	defer f.Close()

	header, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"007BFF"}, Pattern: 1},
	})
	if err != nil {
		return nil, fmt.Errorf("creating header style: %w", err)
	}

	for i, t := range tables {
		name := sheetName(t.Title, i)
		if i == 0 {
			if err := f.SetSheetName("Sheet1", name); err != nil {
				return nil, fmt.Errorf("naming sheet: %w", err)
			}
		} else if _, err := f.NewSheet(name); err != nil {
			return nil, fmt.Errorf("creating sheet %s: %w", name, err)
		}

		if err := writeSheet(f, name, t, header); err != nil {
			return nil, err
		}
	}
	f.SetActiveSheet(0)

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("writing workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func writeSheet(f *excelize.File, sheet string, t Table, headerStyle int) error {
	headers := make([]any, len(t.Headers))
	for i, h := range t.Headers {
		headers[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &headers); err != nil {
		return fmt.Errorf("writing header row: %w", err)
	}

	last, err := excelize.CoordinatesToCellName(max(len(t.Headers), 1), 1)
	if err != nil {
		return fmt.Errorf("computing header range: %w", err)
	}
	if err := f.SetCellStyle(sheet, "A1", last, headerStyle); err != nil {
		return fmt.Errorf("styling header row: %w", err)
	}

	for i, row := range t.Rows {
		cells := make([]any, len(row))
		for j, c := range row {
			cells[j] = c
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("computing row cell: %w", err)
		}
		if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
			return fmt.Errorf("writing row %d: %w", i+1, err)
		}
	}

	col, err := excelize.ColumnNumberToName(max(len(t.Headers), 1))
	if err != nil {
		return fmt.Errorf("computing column name: %w", err)
	}
	return f.SetColWidth(sheet, "A", col, 18)
}

// sheetName titles the table name and keeps it within Excel's 31 rune limit.
func sheetName(title string, i int) string {
	name := Title(title)
	if name == "" {
		name = fmt.Sprintf("Sheet%d", i+1)
	}
	if r := []rune(name); len(r) > 31 {
		name = string(r[:31])
	}
	return name
}
