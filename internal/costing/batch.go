package costing

import (
	"github.com/shopspring/decimal"

	"backoffice/internal/domain"
)

type ItemReport struct {
	ItemID      int64           `json:"item_id"`
	ProductID   int64           `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	UnitCost    decimal.Decimal `json:"unit_cost"`
	ItemMetrics
}

// Summary is the potential view: every unit sold at today's price.
type Summary struct {
	TotalItems              int             `json:"total_items"`
	TotalUnits              int             `json:"total_units"`
	TotalProductCost        decimal.Decimal `json:"total_product_cost"`
	TotalShippingAndFees    decimal.Decimal `json:"total_shipping_and_fees"`
	TotalInvestment         decimal.Decimal `json:"total_investment"`
	TotalPotentialRevenue   decimal.Decimal `json:"total_potential_revenue"`
	TotalPotentialProfit    decimal.Decimal `json:"total_potential_profit"`
	AverageMarginPercentage float64         `json:"average_margin_percentage"`
	ROIPercentage           float64         `json:"roi_percentage"`
}

// Metrics is the actual view, built only from units already sold.
type Metrics struct {
	TotalProducts        int             `json:"total_products"`
	TotalSold            int             `json:"total_sold"`
	Remaining            int             `json:"remaining"`
	CompletionPercentage float64         `json:"completion_percentage"`
	Revenue              decimal.Decimal `json:"revenue"`
	Profit               decimal.Decimal `json:"profit"`
	ROI                  float64         `json:"roi"`
}

type BatchReport struct {
	Batch       domain.Batch `json:"batch"`
	StatusLabel string       `json:"status_label"`
	Allocation Allocation   `json:"allocation"`
	Items      []ItemReport `json:"items"`
	Summary    Summary      `json:"summary"`
	Metrics    Metrics      `json:"metrics"`
}

// Evaluate allocates landed cost over the batch and aggregates potential
// and actual profitability.
func Evaluate(batch domain.Batch) BatchReport {
	allocation := Allocate(batch)

	report := BatchReport{
		Batch:       batch,
		StatusLabel: batch.Status.Label(),
		Allocation:  allocation,
		Items:       make([]ItemReport, 0, len(batch.Items)),
	}

	summary := Summary{
		TotalItems:            len(batch.Items),
		TotalProductCost:      allocation.TotalProductCost,
		TotalShippingAndFees:  allocation.TotalShippingAndFees,
		TotalInvestment:       allocation.TotalCost,
		TotalPotentialRevenue: decimal.Zero,
		TotalPotentialProfit:  decimal.Zero,
	}
	metrics := Metrics{Revenue: decimal.Zero}

	for i, item := range batch.Items {
		sold := item.SoldUnits()
		m := EvaluateItem(allocation.Items[i].CostPrice, item.Product.Price, item.Quantity, sold)
		report.Items = append(report.Items, ItemReport{
			ItemID:      item.ID,
			ProductID:   item.ProductID,
			ProductName: item.Product.Name,
			Quantity:    item.Quantity,
			UnitCost:    item.UnitCost,
			ItemMetrics: m,
		})

		summary.TotalUnits += item.Quantity
		summary.TotalPotentialRevenue = summary.TotalPotentialRevenue.Add(m.PotentialRevenue)
		summary.TotalPotentialProfit = summary.TotalPotentialProfit.Add(m.PotentialProfit)

		metrics.TotalSold += sold
		metrics.Remaining += item.Quantity - sold
		metrics.Revenue = metrics.Revenue.Add(m.RealizedRevenue)
	}

	summary.AverageMarginPercentage = Percent(summary.TotalPotentialProfit, summary.TotalPotentialRevenue)
	summary.ROIPercentage = Percent(summary.TotalPotentialProfit, allocation.TotalCost)

	metrics.TotalProducts = summary.TotalUnits
	metrics.CompletionPercentage = PercentInt(metrics.TotalSold, metrics.TotalSold+metrics.Remaining)
	metrics.Profit = metrics.Revenue.Sub(allocation.TotalCost)
	metrics.ROI = Percent(metrics.Profit, allocation.TotalCost)

	report.Summary = summary
	report.Metrics = metrics
	return report
}

// EvaluateAll evaluates each batch in order.
func EvaluateAll(batches []domain.Batch) []BatchReport {
	reports := make([]BatchReport, 0, len(batches))
	for _, batch := range batches {
		reports = append(reports, Evaluate(batch))
	}
	return reports
}
