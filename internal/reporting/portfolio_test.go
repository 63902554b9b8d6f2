package reporting

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"backoffice/internal/costing"
	"backoffice/internal/domain"
)

func TestPortfolio(t *testing.T) {
	reports := costing.EvaluateAll(fixtureBatches())

	s := Portfolio(reports, fixtureOutflows(), fixtureOrders())

	assert.Equal(t, Overview{TotalBatches: 2, ActiveBatches: 1, CompletedBatches: 1, TotalProducts: 2, TotalUnits: 7}, s.Overview)

	assert.True(t, s.Financial.TotalInvestment.Equal(dec(1_370_000)))
	assert.True(t, s.Financial.TotalPurchaseCost.Equal(dec(1_200_000)))
	assert.True(t, s.Financial.TotalShippingCost.Equal(dec(100_000)))
	assert.True(t, s.Financial.TotalCustomsFees.Equal(dec(50_000)))
	assert.True(t, s.Financial.TotalAdditionalFees.Equal(dec(20_000)))

	// 1,700,000 + 2,000,000 potential revenue; 550,000 + 1,780,000 potential profit.
	assert.True(t, s.Potential.TotalPotentialRevenue.Equal(dec(3_700_000)))
	assert.True(t, s.Potential.TotalPotentialProfit.Equal(dec(2_330_000)), s.Potential.TotalPotentialProfit.String())
	assert.True(t, s.Potential.TotalPotentialProfitNet.Equal(dec(2_210_000)))
	assert.InDelta(t, 170.07, s.Potential.AverageROI, 0.01)
	assert.InDelta(t, 161.31, s.Potential.NetROI, 0.01)

	assert.Equal(t, 2, s.Actual.TotalSoldUnits)
	assert.Equal(t, 5, s.Actual.TotalRemainingUnits)
	assert.True(t, s.Actual.TotalActualRevenue.Equal(dec(1_000_000)))
	assert.True(t, s.Actual.TotalOutflows.Equal(dec(120_000)))
	assert.True(t, s.Actual.RealProfit.Equal(dec(880_000)))
	assert.InDelta(t, 88.0, s.Actual.SalesMargin, 1e-9)
	assert.True(t, s.Actual.ProfitVsInvestment.Equal(dec(-490_000)))
	assert.InDelta(t, 64.23, s.Actual.ActualROI, 0.01)
	assert.InDelta(t, 28.57, s.Actual.CompletionPercentage, 0.01)
}

func TestPortfolioOutflowGroups(t *testing.T) {
	s := Portfolio(nil, fixtureOutflows(), nil)

	assert.Equal(t, 2, s.Expenses.Count)
	assert.True(t, s.Expenses.Total.Equal(dec(50_000)))

	require.Len(t, s.Interests.BySource, 2)
	assert.Equal(t, "loan", s.Interests.BySource[0].Key)
	assert.True(t, s.Interests.BySource[0].Total.Equal(dec(40_000)))
	assert.Equal(t, "credit_card", s.Interests.BySource[1].Key)
	assert.Equal(t, 2, s.Interests.BySource[1].Count)
	assert.Equal(t, 3, s.Interests.Count)

	require.Len(t, s.Losses.ByReason, 1)
	assert.Equal(t, "damaged", s.Losses.ByReason[0].Key)

	assert.True(t, s.OutflowsSummary.Total.Equal(dec(120_000)))
	assert.True(t, s.OutflowsSummary.Interests.Equal(dec(60_000)))
}

func TestPortfolioByStatusHasEveryKey(t *testing.T) {
	s := Portfolio(costing.EvaluateAll(fixtureBatches()), Outflows{}, nil)

	require.Len(t, s.ByStatus, len(domain.BatchStatuses))
	assert.Equal(t, 1, s.ByStatus[domain.BatchStatusDelivered])
	assert.Equal(t, 1, s.ByStatus[domain.BatchStatusCompleted])
	assert.Equal(t, 0, s.ByStatus[domain.BatchStatusCustoms])
}

func TestPortfolioEmpty(t *testing.T) {
	s := Portfolio(nil, Outflows{}, nil)

	assert.Equal(t, 0.0, s.Potential.AverageROI)
	assert.Equal(t, 0.0, s.Actual.SalesMargin)
	assert.Equal(t, 0.0, s.Actual.CompletionPercentage)
	assert.True(t, s.Realized.NetProfit.IsZero())
}

func TestPortfolioRealized(t *testing.T) {
	s := Portfolio(nil, fixtureOutflows(), fixtureOrders())

	r := s.Realized
	assert.Equal(t, 3, r.Orders)
	assert.True(t, r.Revenue.Equal(dec(1_120_000)))
	assert.True(t, r.GrossProfit.Equal(dec(370_000)))
	assert.True(t, r.PaymentFees.Equal(dec(20_000)))
	assert.True(t, r.NetProfit.Equal(dec(230_000)), r.NetProfit.String())
}
