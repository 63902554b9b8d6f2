package costing

import "github.com/shopspring/decimal"

type ItemMetrics struct {
	CostPrice        decimal.Decimal `json:"cost_price"`
	Price            decimal.Decimal `json:"price"`
	ProfitPerUnit    decimal.Decimal `json:"profit_per_unit"`
	MarginPercentage float64         `json:"margin_percentage"`
	PotentialRevenue decimal.Decimal `json:"potential_revenue"`
	PotentialProfit  decimal.Decimal `json:"potential_profit"`
	SoldUnits        int             `json:"sold_units"`
	Sold             bool            `json:"sold"`
	RealizedRevenue  decimal.Decimal `json:"realized_revenue"`
}

// EvaluateItem computes per-unit and line profitability at the current
// selling price. Negative profit and margin are reported as is.
func EvaluateItem(costPrice, price decimal.Decimal, quantity, soldUnits int) ItemMetrics {
	perUnit := price.Sub(costPrice)
	qty := decimal.NewFromInt(int64(quantity))
	return ItemMetrics{
		CostPrice:        costPrice,
		Price:            price,
		ProfitPerUnit:    perUnit,
		MarginPercentage: Percent(perUnit, price),
		PotentialRevenue: price.Mul(qty),
		PotentialProfit:  perUnit.Mul(qty),
		SoldUnits:        soldUnits,
		Sold:             soldUnits > 0,
		RealizedRevenue:  price.Mul(decimal.NewFromInt(int64(soldUnits))),
	}
}
