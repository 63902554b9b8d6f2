package excel

import (
	"bytes"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"backoffice/internal/domain"
	"backoffice/internal/reporting"
)

func TestWriteMonthlyReport(t *testing.T) {
	summary := reporting.Monthly(2024, time.UTC, reporting.PeriodInput{
		Orders: []domain.Order{{
			Status: domain.OrderStatusPaid, Total: decimal.NewFromInt(500_000),
			Profit: decimal.NewFromInt(155_000), PaymentFee: decimal.NewFromInt(10_000),
			CreatedAt: time.Date(2024, time.February, 3, 10, 0, 0, 0, time.UTC),
		}},
	})

	var buf bytes.Buffer
	require.NoError(t, WriteMonthlyReport(&buf, summary))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{monthlySheet}, f.GetSheetList())
	rows, err := f.GetRows(monthlySheet, excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	require.Len(t, rows, 14)

	assert.Equal(t, "Periodo", rows[0][0])
	assert.Equal(t, "2024-02", rows[2][0])
	assert.Equal(t, "500000", rows[2][2])
	assert.Equal(t, "145000", rows[2][9])
	assert.Equal(t, "Total 2024", rows[13][0])
	assert.Equal(t, "145000", rows[13][9])
}
