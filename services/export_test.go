package services

import (
	"bytes"
	"testing"

	"github.com/kendall-kelly/mill-ops-console/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestExportFinanceWorkbook(t *testing.T) {
	order := models.Order{OrderCode: "ORD-0001", Payment: d("100"), Client: models.Client{Name: "Ali Khan"}}
	rows := []FinanceRow{
		{Order: order, Balance: ComputeBalance(order.Payment, []models.Invoice{{Amount: d("40")}})},
	}

	data, err := ExportFinanceWorkbook(rows)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	got, err := f.GetRows(financeSheet)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, []string{"Order", "Client", "Total", "Paid", "Remaining", "Status"}, got[0])
	assert.Equal(t, []string{"ORD-0001", "Ali Khan", "100", "40", "60", "partial"}, got[1])
}

func TestExportFinanceWorkbookEmpty(t *testing.T) {
	data, err := ExportFinanceWorkbook(nil)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	got, err := f.GetRows(financeSheet)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}
