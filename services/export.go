package services

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
)

const financeSheet = "Finance"

var financeHeaders = []string{"Order", "Client", "Total", "Paid", "Remaining", "Status"}

// ExportFinanceWorkbook writes finance rows to an xlsx workbook
func ExportFinanceWorkbook(rows []FinanceRow) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", financeSheet); err != nil {
		return nil, err
	}

	headers := financeHeaders
	if err := f.SetSheetRow(financeSheet, "A1", &headers); err != nil {
		return nil, err
	}

	for i, row := range rows {
		values := []interface{}{
			row.Order.OrderCode,
			row.Order.Client.Name,
			row.Order.Payment.InexactFloat64(),
			row.TotalPaid.InexactFloat64(),
			row.Remaining.InexactFloat64(),
			row.Class,
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(financeSheet, cell, &values); err != nil {
			return nil, fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
