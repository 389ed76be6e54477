package parser

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ParseExcel reads the first sheet of an .xlsx workbook. Cells are read raw,
// so date cells arrive as Excel serial numbers and are resolved by ParseDate.
func ParseExcel(r io.Reader) ([]Row, error) {
	f, err := excelize.OpenReader(r, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrEmptyFile
	}

	cells, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheets[0], err)
	}
	if len(cells) < 2 {
		return nil, ErrEmptyFile
	}

	idx, err := columnIndex(cells[0])
	if err != nil {
		return nil, err
	}

	rows := make([]Row, 0, len(cells)-1)
	for i := 1; i < len(cells); i++ {
		row := fromCells(cells[i], idx, i+1)
		if row.blank() {
			continue
		}
		rows = append(rows, row)
	}

	if len(rows) == 0 {
		return nil, ErrEmptyFile
	}
	return rows, nil
}

func fromCells(cells []string, idx map[string]int, number int) Row {
	get := func(col string) string {
		i := idx[col]
		if i >= len(cells) {
			return ""
		}
		return strings.TrimSpace(cells[i])
	}

	return Row{
		Number:   number,
		Date:     get("date"),
		Merchant: cleanMerchant(get("merchant")),
		Amount:   get("amount"),
		Category: get("category"),
		Payment:  get("payment"),
	}
}
