package reporting

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"backoffice/internal/costing"
	"backoffice/internal/domain"
)

func fixtureInput() PeriodInput {
	return PeriodInput{Orders: fixtureOrders(), Outflows: fixtureOutflows(), Batches: fixtureBatches()}
}

func TestMonthlyBuckets(t *testing.T) {
	s := Monthly(2024, bogota, fixtureInput())

	require.Len(t, s.Months, 12)
	assert.Equal(t, "2024-01", s.Months[0].Period)
	assert.Equal(t, "2024-12", s.Months[11].Period)

	jan := s.Months[0]
	assert.Equal(t, 1, jan.Orders)
	assert.True(t, jan.Revenue.Equal(dec(500_000)))
	assert.True(t, jan.Outflows.Expenses.Equal(dec(30_000)))
	assert.True(t, jan.Outflows.Interests.Equal(dec(15_000)))
	assert.True(t, jan.Outflows.PaymentFees.Equal(dec(20_000)))
	assert.True(t, jan.Outflows.Total.Equal(dec(65_000)))
	assert.True(t, jan.NetProfit.Equal(dec(90_000)))
	assert.InDelta(t, 18.0, jan.NetMargin, 1e-9)
	assert.True(t, jan.Investment.Equal(dec(1_150_000)))
	assert.Equal(t, 1, jan.Batches)

	feb := s.Months[1]
	assert.Equal(t, 1, feb.Orders, "cancelled orders do not count")
	assert.True(t, feb.NetProfit.Equal(dec(125_000)))

	apr := s.Months[3]
	assert.True(t, apr.Revenue.IsZero())
	assert.True(t, apr.NetProfit.Equal(dec(-5_000)))
	assert.Equal(t, 0.0, apr.NetMargin)

	assert.Equal(t, 0, s.Months[6].Orders)
	assert.True(t, s.Months[6].NetProfit.IsZero())
}

func TestMonthlyAnnualTotals(t *testing.T) {
	a := Monthly(2024, bogota, fixtureInput()).Annual

	assert.Equal(t, 3, a.Orders)
	assert.True(t, a.Revenue.Equal(dec(1_120_000)))
	assert.True(t, a.TotalOutflows.Equal(dec(140_000)))
	assert.True(t, a.TotalNetProfit.Equal(dec(230_000)))
	assert.True(t, a.Investment.Equal(dec(1_370_000)))
	assert.Equal(t, 2, a.Batches)
}

func TestMonthlyMatchesPortfolioRealized(t *testing.T) {
	in := fixtureInput()

	monthly := Monthly(2024, bogota, in)
	portfolio := Portfolio(costing.EvaluateAll(in.Batches), in.Outflows, in.Orders)

	sum := dec(0)
	for _, m := range monthly.Months {
		sum = sum.Add(m.NetProfit)
	}
	assert.True(t, sum.Equal(monthly.Annual.TotalNetProfit))
	assert.True(t, sum.Equal(portfolio.Realized.NetProfit), "monthly %s vs portfolio %s", sum, portfolio.Realized.NetProfit)
}

func TestMonthlyUsesLocation(t *testing.T) {
	// 2024-02-01 03:00 UTC is still January 31 in Bogota.
	in := PeriodInput{Orders: []domain.Order{{
		Status: domain.OrderStatusPaid, Total: dec(100), Profit: dec(40),
		CreatedAt: time.Date(2024, time.February, 1, 3, 0, 0, 0, time.UTC),
	}}}

	local := Monthly(2024, bogota, in)
	utc := Monthly(2024, nil, in)

	assert.Equal(t, 1, local.Months[0].Orders)
	assert.Equal(t, 1, utc.Months[1].Orders)
}

func TestMonthlyIgnoresOtherYears(t *testing.T) {
	in := PeriodInput{Outflows: Outflows{Expenses: []domain.Expense{
		{Amount: dec(10), ExpenseDate: at(2023, time.December, 31)},
	}}}

	s := Monthly(2024, bogota, in)

	assert.True(t, s.Annual.TotalOutflows.IsZero())
}
