package excel

import (
	"fmt"
	"io"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"backoffice/internal/reporting"
)

const monthlySheet = "Mensual"

var monthlyHeader = []any{
	"Periodo", "Pedidos", "Ingresos", "Utilidad bruta", "Gastos", "Intereses",
	"Pérdidas", "Comisiones de pago", "Total egresos", "Utilidad neta",
	"Margen neto %", "Inversión", "Lotes",
}

// WriteMonthlyReport renders a monthly summary as a one-sheet workbook: a
// row per month followed by the annual totals.
func WriteMonthlyReport(w io.Writer, summary reporting.MonthlySummary) error {
	file := excelize.NewFile()
	defer file.Close()

	if err := file.SetSheetName(file.GetSheetName(0), monthlySheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	moneyStyle, err := file.NewStyle(&excelize.Style{NumFmt: 3})
	if err != nil {
		return fmt.Errorf("create money style: %w", err)
	}
	boldStyle, err := file.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}

	if err := file.SetSheetRow(monthlySheet, "A1", &monthlyHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, m := range summary.Months {
		row := []any{
			m.Period, m.Orders, money(m.Revenue), money(m.GrossProfit),
			money(m.Outflows.Expenses), money(m.Outflows.Interests), money(m.Outflows.Losses),
			money(m.Outflows.PaymentFees), money(m.Outflows.Total), money(m.NetProfit),
			m.NetMargin, money(m.Investment), m.Batches,
		}
		if err := file.SetSheetRow(monthlySheet, fmt.Sprintf("A%d", i+2), &row); err != nil {
			return fmt.Errorf("write month %s: %w", m.Period, err)
		}
	}

	a := summary.Annual
	totalRow := len(summary.Months) + 2
	totals := []any{
		fmt.Sprintf("Total %d", summary.Year), a.Orders, money(a.Revenue), money(a.GrossProfit),
		money(a.Expenses), money(a.Interests), money(a.Losses), money(a.PaymentFees),
		money(a.TotalOutflows), money(a.TotalNetProfit), a.NetMargin, money(a.Investment), a.Batches,
	}
	if err := file.SetSheetRow(monthlySheet, fmt.Sprintf("A%d", totalRow), &totals); err != nil {
		return fmt.Errorf("write totals: %w", err)
	}

	lastCell := fmt.Sprintf("M%d", totalRow)
	if err := file.SetCellStyle(monthlySheet, "C2", fmt.Sprintf("J%d", totalRow), moneyStyle); err != nil {
		return fmt.Errorf("style money columns: %w", err)
	}
	if err := file.SetCellStyle(monthlySheet, "L2", fmt.Sprintf("L%d", totalRow), moneyStyle); err != nil {
		return fmt.Errorf("style investment column: %w", err)
	}
	if err := file.SetCellStyle(monthlySheet, "A1", "M1", boldStyle); err != nil {
		return fmt.Errorf("style header: %w", err)
	}
	if err := file.SetCellStyle(monthlySheet, fmt.Sprintf("A%d", totalRow), lastCell, boldStyle); err != nil {
		return fmt.Errorf("style totals: %w", err)
	}
	if err := file.SetColWidth(monthlySheet, "A", "M", 16); err != nil {
		return fmt.Errorf("set column width: %w", err)
	}

	if err := file.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// money hands whole-currency amounts to the sheet as numbers.
func money(value decimal.Decimal) float64 {
	return value.InexactFloat64()
}
