package reporting

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"backoffice/internal/costing"
	"backoffice/internal/domain"
)

// PeriodInput is the record universe a period report is computed over.
type PeriodInput struct {
	Orders   []domain.Order
	Outflows Outflows
	Batches  []domain.Batch
}

type MonthOutflows struct {
	Expenses    decimal.Decimal `json:"expenses"`
	Interests   decimal.Decimal `json:"interests"`
	Losses      decimal.Decimal `json:"losses"`
	PaymentFees decimal.Decimal `json:"payment_fees"`
	Total       decimal.Decimal `json:"total"`
}

type Month struct {
	Month       int             `json:"month"`
	Period      string          `json:"period"`
	Orders      int             `json:"orders"`
	Revenue     decimal.Decimal `json:"revenue"`
	GrossProfit decimal.Decimal `json:"gross_profit"`
	Outflows    MonthOutflows   `json:"outflows"`
	NetProfit   decimal.Decimal `json:"net_profit"`
	NetMargin   float64         `json:"net_margin"`
	Investment  decimal.Decimal `json:"investment"`
	Batches     int             `json:"batches"`
}

type AnnualTotals struct {
	Orders         int             `json:"orders"`
	Revenue        decimal.Decimal `json:"revenue"`
	GrossProfit    decimal.Decimal `json:"gross_profit"`
	Expenses       decimal.Decimal `json:"expenses"`
	Interests      decimal.Decimal `json:"interests"`
	Losses         decimal.Decimal `json:"losses"`
	PaymentFees    decimal.Decimal `json:"payment_fees"`
	TotalOutflows  decimal.Decimal `json:"total_outflows"`
	TotalNetProfit decimal.Decimal `json:"total_net_profit"`
	NetMargin      float64         `json:"net_margin"`
	Investment     decimal.Decimal `json:"investment"`
	Batches        int             `json:"batches"`
}

type MonthlySummary struct {
	Year   int          `json:"year"`
	Months []Month      `json:"months"`
	Annual AnnualTotals `json:"annual"`
}

func newMonth(year int, m time.Month) Month {
	return Month{
		Month:       int(m),
		Period:      fmt.Sprintf("%04d-%02d", year, int(m)),
		Revenue:     decimal.Zero,
		GrossProfit: decimal.Zero,
		Outflows: MonthOutflows{
			Expenses:    decimal.Zero,
			Interests:   decimal.Zero,
			Losses:      decimal.Zero,
			PaymentFees: decimal.Zero,
			Total:       decimal.Zero,
		},
		NetProfit:  decimal.Zero,
		Investment: decimal.Zero,
	}
}

// Monthly buckets the input by calendar month of year in loc. All twelve
// months are present even when empty. Records outside the year are ignored.
func Monthly(year int, loc *time.Location, in PeriodInput) MonthlySummary {
	if loc == nil {
		loc = time.UTC
	}
	months := make([]Month, 12)
	for i := range months {
		months[i] = newMonth(year, time.Month(i+1))
	}
	bucket := func(t time.Time) *Month {
		local := t.In(loc)
		if local.Year() != year {
			return nil
		}
		return &months[int(local.Month())-1]
	}
	// Outflow and purchase dates are calendar dates, not instants.
	bucketDate := func(d time.Time) *Month {
		return bucket(domain.CalendarDay(d, loc))
	}

	for _, order := range in.Orders {
		if !order.Status.CountsAsRevenue() {
			continue
		}
		if m := bucket(order.CreatedAt); m != nil {
			m.Orders++
			m.Revenue = m.Revenue.Add(order.Total)
			m.GrossProfit = m.GrossProfit.Add(order.Profit)
			m.Outflows.PaymentFees = m.Outflows.PaymentFees.Add(order.PaymentFee)
		}
	}
	for _, e := range in.Outflows.Expenses {
		if m := bucketDate(e.ExpenseDate); m != nil {
			m.Outflows.Expenses = m.Outflows.Expenses.Add(e.Amount)
		}
	}
	for _, i := range in.Outflows.Interests {
		if m := bucketDate(i.PaymentDate); m != nil {
			m.Outflows.Interests = m.Outflows.Interests.Add(i.Amount)
		}
	}
	for _, l := range in.Outflows.Losses {
		if m := bucketDate(l.LossDate); m != nil {
			m.Outflows.Losses = m.Outflows.Losses.Add(l.Amount)
		}
	}
	for _, b := range in.Batches {
		if m := bucketDate(b.PurchaseDate); m != nil {
			m.Investment = m.Investment.Add(b.TotalCost())
			m.Batches++
		}
	}

	annual := AnnualTotals{
		Revenue:        decimal.Zero,
		GrossProfit:    decimal.Zero,
		Expenses:       decimal.Zero,
		Interests:      decimal.Zero,
		Losses:         decimal.Zero,
		PaymentFees:    decimal.Zero,
		TotalOutflows:  decimal.Zero,
		TotalNetProfit: decimal.Zero,
		Investment:     decimal.Zero,
	}
	for i := range months {
		m := &months[i]
		o := &m.Outflows
		o.Total = o.Expenses.Add(o.Interests).Add(o.Losses).Add(o.PaymentFees)
		m.NetProfit = m.GrossProfit.Sub(o.Total)
		m.NetMargin = costing.Percent(m.NetProfit, m.Revenue)

		annual.Orders += m.Orders
		annual.Revenue = annual.Revenue.Add(m.Revenue)
		annual.GrossProfit = annual.GrossProfit.Add(m.GrossProfit)
		annual.Expenses = annual.Expenses.Add(o.Expenses)
		annual.Interests = annual.Interests.Add(o.Interests)
		annual.Losses = annual.Losses.Add(o.Losses)
		annual.PaymentFees = annual.PaymentFees.Add(o.PaymentFees)
		annual.TotalOutflows = annual.TotalOutflows.Add(o.Total)
		annual.TotalNetProfit = annual.TotalNetProfit.Add(m.NetProfit)
		annual.Investment = annual.Investment.Add(m.Investment)
		annual.Batches += m.Batches
	}
	annual.NetMargin = costing.Percent(annual.TotalNetProfit, annual.Revenue)

	return MonthlySummary{Year: year, Months: months, Annual: annual}
}
