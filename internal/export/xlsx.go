// Package export renders extraction results to spreadsheet form.
package export

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/tomvasile/ledgerscan/internal/extract"
)

var transactionHeaders = []string{"Date", "Description", "Amount"}

// Workbook renders an extraction result as an XLSX workbook with one
// transaction per row and a summary block below the table.
func Workbook(result *extract.ExtractionResult) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Transactions"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return nil, fmt.Errorf("creating sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("removing default sheet: %w", err)
	}

	for col, header := range transactionHeaders {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, fmt.Errorf("naming header cell: %w", err)
		}
		if err := f.SetCellValue(sheet, cell, header); err != nil {
			return nil, fmt.Errorf("writing header: %w", err)
		}
	}

	for i, t := range result.Transactions {
		row := i + 2
		values := []interface{}{t.Date, t.Description, t.Amount}
		for col, v := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row)
			if err != nil {
				return nil, fmt.Errorf("naming cell: %w", err)
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return nil, fmt.Errorf("writing row %d: %w", row, err)
			}
		}
	}

	summaryRow := len(result.Transactions) + 3
	summary := [][2]interface{}{
		{"Document type", string(result.DocumentType)},
		{"Pages", result.PageCount},
		{"Transactions", result.TransactionCount},
		{"Confidence", result.ExtractionConfidence},
	}
	for i, pair := range summary {
		keyCell, err := excelize.CoordinatesToCellName(1, summaryRow+i)
		if err != nil {
			return nil, fmt.Errorf("naming summary cell: %w", err)
		}
		valCell, err := excelize.CoordinatesToCellName(2, summaryRow+i)
		if err != nil {
			return nil, fmt.Errorf("naming summary cell: %w", err)
		}
		if err := f.SetCellValue(sheet, keyCell, pair[0]); err != nil {
			return nil, fmt.Errorf("writing summary: %w", err)
		}
		if err := f.SetCellValue(sheet, valCell, pair[1]); err != nil {
			return nil, fmt.Errorf("writing summary: %w", err)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("serializing workbook: %w", err)
	}
	return buf.Bytes(), nil
}
