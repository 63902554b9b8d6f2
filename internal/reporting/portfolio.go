package reporting

import (
	"github.com/shopspring/decimal"

	"backoffice/internal/costing"
	"backoffice/internal/domain"
)

type Overview struct {
	TotalBatches     int `json:"total_batches"`
	ActiveBatches    int `json:"active_batches"`
	CompletedBatches int `json:"completed_batches"`
	TotalProducts    int `json:"total_products"`
	TotalUnits       int `json:"total_units"`
}

type Financial struct {
	TotalInvestment     decimal.Decimal `json:"total_investment"`
	TotalPurchaseCost   decimal.Decimal `json:"total_purchase_cost"`
	TotalShippingCost   decimal.Decimal `json:"total_shipping_cost"`
	TotalCustomsFees    decimal.Decimal `json:"total_customs_fees"`
	TotalAdditionalFees decimal.Decimal `json:"total_additional_fees"`
}

type Potential struct {
	TotalPotentialRevenue   decimal.Decimal `json:"total_potential_revenue"`
	TotalPotentialProfit    decimal.Decimal `json:"total_potential_profit"`
	AverageROI              float64         `json:"average_roi"`
	TotalPotentialProfitNet decimal.Decimal `json:"total_potential_profit_net"`
	NetROI                  float64         `json:"net_roi"`
}

type Actual struct {
	TotalSoldUnits       int             `json:"total_sold_units"`
	TotalRemainingUnits  int             `json:"total_remaining_units"`
	TotalActualRevenue   decimal.Decimal `json:"total_actual_revenue"`
	TotalOutflows        decimal.Decimal `json:"total_outflows"`
	RealProfit           decimal.Decimal `json:"real_profit"`
	SalesMargin          float64         `json:"sales_margin"`
	ProfitVsInvestment   decimal.Decimal `json:"profit_vs_investment"`
	ActualROI            float64         `json:"actual_roi"`
	CompletionPercentage float64         `json:"completion_percentage"`
}

type InterestSection struct {
	Total    decimal.Decimal `json:"total"`
	Count    int             `json:"count"`
	BySource []Group         `json:"by_source"`
}

type LossSection struct {
	Total    decimal.Decimal `json:"total"`
	Count    int             `json:"count"`
	ByReason []Group         `json:"by_reason"`
}

// Realized nets finalized order profit against payment fees and outflows.
// It is the figure the monthly and annual reports add up to.
type Realized struct {
	Orders      int             `json:"orders"`
	Revenue     decimal.Decimal `json:"revenue"`
	GrossProfit decimal.Decimal `json:"gross_profit"`
	PaymentFees decimal.Decimal `json:"payment_fees"`
	Outflows    decimal.Decimal `json:"outflows"`
	NetProfit   decimal.Decimal `json:"net_profit"`
	NetMargin   float64         `json:"net_margin"`
}

type PortfolioSummary struct {
	Overview        Overview                   `json:"overview"`
	Financial       Financial                  `json:"financial"`
	Potential       Potential                  `json:"potential"`
	Actual          Actual                     `json:"actual"`
	Expenses        Tally                      `json:"expenses"`
	Interests       InterestSection            `json:"interests"`
	Losses          LossSection                `json:"losses"`
	OutflowsSummary OutflowTotals              `json:"outflows_summary"`
	ByStatus        map[domain.BatchStatus]int `json:"by_status"`
	Realized        Realized                   `json:"realized"`
}

// Portfolio aggregates evaluated batches, outflows and finalized orders into
// the fleet-wide summary. Its real_profit nets sold revenue against outflows
// and is distinct from each batch's metrics.profit.
func Portfolio(reports []costing.BatchReport, outflows Outflows, orders []domain.Order) PortfolioSummary {
	summary := PortfolioSummary{
		ByStatus: make(map[domain.BatchStatus]int, len(domain.BatchStatuses)),
	}
	for _, status := range domain.BatchStatuses {
		summary.ByStatus[status] = 0
	}

	fin := Financial{
		TotalInvestment:     decimal.Zero,
		TotalPurchaseCost:   decimal.Zero,
		TotalShippingCost:   decimal.Zero,
		TotalCustomsFees:    decimal.Zero,
		TotalAdditionalFees: decimal.Zero,
	}
	potential := Potential{TotalPotentialRevenue: decimal.Zero, TotalPotentialProfit: decimal.Zero}
	actual := Actual{TotalActualRevenue: decimal.Zero}
	products := map[int64]struct{}{}

	for _, report := range reports {
		batch := report.Batch
		summary.Overview.TotalBatches++
		if batch.Status.IsActive() {
			summary.Overview.ActiveBatches++
		} else {
			summary.Overview.CompletedBatches++
		}
		summary.ByStatus[batch.Status]++

		for _, item := range batch.Items {
			products[item.ProductID] = struct{}{}
		}
		summary.Overview.TotalUnits += report.Summary.TotalUnits

		fin.TotalInvestment = fin.TotalInvestment.Add(report.Allocation.TotalCost)
		fin.TotalPurchaseCost = fin.TotalPurchaseCost.Add(batch.PurchaseTotalCost)
		fin.TotalShippingCost = fin.TotalShippingCost.Add(domain.OrZero(batch.ShippingCost))
		fin.TotalCustomsFees = fin.TotalCustomsFees.Add(domain.OrZero(batch.CustomsFees))
		fin.TotalAdditionalFees = fin.TotalAdditionalFees.Add(domain.OrZero(batch.AdditionalFees))

		potential.TotalPotentialRevenue = potential.TotalPotentialRevenue.Add(report.Summary.TotalPotentialRevenue)
		potential.TotalPotentialProfit = potential.TotalPotentialProfit.Add(report.Summary.TotalPotentialProfit)

		actual.TotalSoldUnits += report.Metrics.TotalSold
		actual.TotalRemainingUnits += report.Metrics.Remaining
		actual.TotalActualRevenue = actual.TotalActualRevenue.Add(report.Metrics.Revenue)
	}
	summary.Overview.TotalProducts = len(products)

	expenses := outflows.expenseTally()
	interests := outflows.interestTally()
	losses := outflows.lossTally()
	totals := outflows.Totals()
	totalOutflows := totals.Total

	potential.AverageROI = costing.Percent(potential.TotalPotentialProfit, fin.TotalInvestment)
	potential.TotalPotentialProfitNet = potential.TotalPotentialProfit.Sub(totalOutflows)
	potential.NetROI = costing.Percent(potential.TotalPotentialProfitNet, fin.TotalInvestment)

	actual.TotalOutflows = totalOutflows
	actual.RealProfit = actual.TotalActualRevenue.Sub(totalOutflows)
	actual.SalesMargin = costing.Percent(actual.RealProfit, actual.TotalActualRevenue)
	actual.ProfitVsInvestment = actual.RealProfit.Sub(fin.TotalInvestment)
	actual.ActualROI = costing.Percent(actual.RealProfit, fin.TotalInvestment)
	actual.CompletionPercentage = costing.PercentInt(actual.TotalSoldUnits, actual.TotalSoldUnits+actual.TotalRemainingUnits)

	summary.Financial = fin
	summary.Potential = potential
	summary.Actual = actual
	summary.Expenses = expenses
	summary.Interests = InterestSection{Total: interests.Total, Count: interests.Count, BySource: interests.Groups}
	summary.Losses = LossSection{Total: losses.Total, Count: losses.Count, ByReason: losses.Groups}
	summary.OutflowsSummary = totals
	summary.Realized = realize(orders, totalOutflows)
	return summary
}

func realize(orders []domain.Order, outflows decimal.Decimal) Realized {
	r := Realized{
		Revenue:     decimal.Zero,
		GrossProfit: decimal.Zero,
		PaymentFees: decimal.Zero,
		Outflows:    outflows,
	}
	for _, order := range orders {
		if !order.Status.CountsAsRevenue() {
			continue
		}
		r.Orders++
		r.Revenue = r.Revenue.Add(order.Total)
		r.GrossProfit = r.GrossProfit.Add(order.Profit)
		r.PaymentFees = r.PaymentFees.Add(order.PaymentFee)
	}
	r.NetProfit = r.GrossProfit.Sub(r.PaymentFees).Sub(outflows)
	r.NetMargin = costing.Percent(r.NetProfit, r.Revenue)
	return r
}
