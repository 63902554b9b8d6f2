package reporting

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"backoffice/internal/costing"
	"backoffice/internal/domain"
)

const topProductsLimit = 10

type SummarySection struct {
	Revenue       decimal.Decimal `json:"revenue"`
	Outflows      decimal.Decimal `json:"outflows"`
	NetProfit     decimal.Decimal `json:"net_profit"`
	NetMargin     float64         `json:"net_margin"`
	Orders        int             `json:"orders"`
	AvgOrderValue decimal.Decimal `json:"avg_order_value"`
	Investment    decimal.Decimal `json:"investment"`
}

type MethodIncome struct {
	Orders  int             `json:"orders"`
	Revenue decimal.Decimal `json:"revenue"`
	Fees    decimal.Decimal `json:"fees"`
	Net     decimal.Decimal `json:"net"`
}

type IncomeSection struct {
	Revenue         decimal.Decimal                        `json:"revenue"`
	Orders          int                                    `json:"orders"`
	AvgOrderValue   decimal.Decimal                        `json:"avg_order_value"`
	GrossProfit     decimal.Decimal                        `json:"gross_profit"`
	ByPaymentMethod map[domain.PaymentMethod]*MethodIncome `json:"by_payment_method"`
	ByStatus        map[domain.OrderStatus]int             `json:"by_status"`
}

type OutflowSection struct {
	Total       decimal.Decimal `json:"total"`
	Expenses    Tally           `json:"expenses"`
	Interests   InterestSection `json:"interests"`
	Losses      LossSection     `json:"losses"`
	PaymentFees decimal.Decimal `json:"payment_fees"`
}

type InvestmentSection struct {
	Total            decimal.Decimal `json:"total"`
	PurchaseCost     decimal.Decimal `json:"purchase_cost"`
	ShippingCost     decimal.Decimal `json:"shipping_cost"`
	CustomsFees      decimal.Decimal `json:"customs_fees"`
	AdditionalFees   decimal.Decimal `json:"additional_fees"`
	Batches          int             `json:"batches"`
	UnitsPurchased   int             `json:"units_purchased"`
	PotentialRevenue decimal.Decimal `json:"potential_revenue"`
	PotentialProfit  decimal.Decimal `json:"potential_profit"`
}

type ProfitabilitySection struct {
	GrossProfit decimal.Decimal `json:"gross_profit"`
	PaymentFees decimal.Decimal `json:"payment_fees"`
	Expenses    decimal.Decimal `json:"expenses"`
	Interests   decimal.Decimal `json:"interests"`
	Losses      decimal.Decimal `json:"losses"`
	NetProfit   decimal.Decimal `json:"net_profit"`
	NetMargin   float64         `json:"net_margin"`
	ROI         float64         `json:"roi"`
}

type ProductSales struct {
	ProductID   int64           `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	Revenue     decimal.Decimal `json:"revenue"`
	Cost        decimal.Decimal `json:"cost"`
	Profit      decimal.Decimal `json:"profit"`
}

// Period is the inclusive calendar range a report covers, as YYYY-MM-DD.
type Period struct {
	From string `json:"from"`
	To   string `json:"to"`
}

func periodOf(r domain.DateRange) Period {
	return Period{
		From: r.From.Format(time.DateOnly),
		To:   r.To.AddDate(0, 0, -1).Format(time.DateOnly),
	}
}

// FinancialSummary is the year-at-a-glance view combining income, outflows,
// investment and the best-selling products.
type FinancialSummary struct {
	Year          int                  `json:"year"`
	Period        Period               `json:"period"`
	Summary       SummarySection       `json:"summary"`
	Income        IncomeSection        `json:"income"`
	Outflows      OutflowSection       `json:"outflows"`
	Investment    InvestmentSection    `json:"investment"`
	Profitability ProfitabilitySection `json:"profitability"`
	TopProducts   []ProductSales       `json:"top_products"`
}

func Annual(year int, loc *time.Location, in PeriodInput) FinancialSummary {
	if loc == nil {
		loc = time.UTC
	}
	r := domain.YearRange(year, loc)
	monthly := Monthly(year, loc, in).Annual
	outflows := in.Outflows.Within(r)

	income := IncomeSection{
		Revenue:         monthly.Revenue,
		Orders:          monthly.Orders,
		AvgOrderValue:   average(monthly.Revenue, monthly.Orders),
		GrossProfit:     monthly.GrossProfit,
		ByPaymentMethod: make(map[domain.PaymentMethod]*MethodIncome, len(domain.PaymentMethods)),
		ByStatus:        map[domain.OrderStatus]int{},
	}
	for _, method := range domain.PaymentMethods {
		income.ByPaymentMethod[method] = newMethodIncome()
	}

	sales := map[int64]*ProductSales{}
	for _, order := range in.Orders {
		if !r.Contains(order.CreatedAt) {
			continue
		}
		income.ByStatus[order.Status]++
		if !order.Status.CountsAsRevenue() {
			continue
		}
		mi, ok := income.ByPaymentMethod[order.PaymentMethod]
		if !ok {
			mi = newMethodIncome()
			income.ByPaymentMethod[order.PaymentMethod] = mi
		}
		mi.Orders++
		mi.Revenue = mi.Revenue.Add(order.Total)
		mi.Fees = mi.Fees.Add(order.PaymentFee)
		mi.Net = mi.Revenue.Sub(mi.Fees)

		for _, item := range order.Items {
			ps, ok := sales[item.ProductID]
			if !ok {
				ps = &ProductSales{
					ProductID:   item.ProductID,
					ProductName: item.ProductName,
					Revenue:     decimal.Zero,
					Cost:        decimal.Zero,
				}
				sales[item.ProductID] = ps
			}
			qty := decimal.NewFromInt(int64(item.Quantity))
			ps.Quantity += item.Quantity
			ps.Revenue = ps.Revenue.Add(item.Subtotal)
			ps.Cost = ps.Cost.Add(item.ProductCost.Mul(qty))
			ps.Profit = ps.Revenue.Sub(ps.Cost)
		}
	}

	interests := outflows.interestTally()
	losses := outflows.lossTally()
	outSection := OutflowSection{
		Total:       monthly.TotalOutflows,
		Expenses:    outflows.expenseTally(),
		Interests:   InterestSection{Total: interests.Total, Count: interests.Count, BySource: interests.Groups},
		Losses:      LossSection{Total: losses.Total, Count: losses.Count, ByReason: losses.Groups},
		PaymentFees: monthly.PaymentFees,
	}

	investment := InvestmentSection{
		Total:            decimal.Zero,
		PurchaseCost:     decimal.Zero,
		ShippingCost:     decimal.Zero,
		CustomsFees:      decimal.Zero,
		AdditionalFees:   decimal.Zero,
		PotentialRevenue: decimal.Zero,
		PotentialProfit:  decimal.Zero,
	}
	for _, batch := range in.Batches {
		if !r.ContainsDate(batch.PurchaseDate) {
			continue
		}
		report := costing.Evaluate(batch)
		investment.Batches++
		investment.Total = investment.Total.Add(report.Allocation.TotalCost)
		investment.PurchaseCost = investment.PurchaseCost.Add(batch.PurchaseTotalCost)
		investment.ShippingCost = investment.ShippingCost.Add(domain.OrZero(batch.ShippingCost))
		investment.CustomsFees = investment.CustomsFees.Add(domain.OrZero(batch.CustomsFees))
		investment.AdditionalFees = investment.AdditionalFees.Add(domain.OrZero(batch.AdditionalFees))
		investment.UnitsPurchased += report.Summary.TotalUnits
		investment.PotentialRevenue = investment.PotentialRevenue.Add(report.Summary.TotalPotentialRevenue)
		investment.PotentialProfit = investment.PotentialProfit.Add(report.Summary.TotalPotentialProfit)
	}

	return FinancialSummary{
		Year:   year,
		Period: periodOf(r),
		Summary: SummarySection{
			Revenue:       monthly.Revenue,
			Outflows:      monthly.TotalOutflows,
			NetProfit:     monthly.TotalNetProfit,
			NetMargin:     monthly.NetMargin,
			Orders:        monthly.Orders,
			AvgOrderValue: income.AvgOrderValue,
			Investment:    investment.Total,
		},
		Income:     income,
		Outflows:   outSection,
		Investment: investment,
		Profitability: ProfitabilitySection{
			GrossProfit: monthly.GrossProfit,
			PaymentFees: monthly.PaymentFees,
			Expenses:    monthly.Expenses,
			Interests:   monthly.Interests,
			Losses:      monthly.Losses,
			NetProfit:   monthly.TotalNetProfit,
			NetMargin:   monthly.NetMargin,
			ROI:         costing.Percent(monthly.TotalNetProfit, investment.Total),
		},
		TopProducts: topProducts(sales, topProductsLimit),
	}
}

func newMethodIncome() *MethodIncome {
	return &MethodIncome{Revenue: decimal.Zero, Fees: decimal.Zero, Net: decimal.Zero}
}

func average(total decimal.Decimal, count int) decimal.Decimal {
	if count == 0 {
		return decimal.Zero
	}
	return total.Div(decimal.NewFromInt(int64(count))).Round(2)
}

// topProducts ranks by quantity sold, then revenue, then name.
func topProducts(sales map[int64]*ProductSales, limit int) []ProductSales {
	ranked := make([]ProductSales, 0, len(sales))
	for _, ps := range sales {
		ranked = append(ranked, *ps)
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Quantity != ranked[j].Quantity {
			return ranked[i].Quantity > ranked[j].Quantity
		}
		if c := ranked[i].Revenue.Cmp(ranked[j].Revenue); c != 0 {
			return c > 0
		}
		if ranked[i].ProductName != ranked[j].ProductName {
			return ranked[i].ProductName < ranked[j].ProductName
		}
		return ranked[i].ProductID < ranked[j].ProductID
	})
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}
