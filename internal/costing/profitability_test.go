package costing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEvaluateItem(t *testing.T) {
	m := EvaluateItem(dec(345_000), dec(500_000), 2, 1)

	assert.True(t, m.ProfitPerUnit.Equal(dec(155_000)))
	assert.InDelta(t, 31.0, m.MarginPercentage, 1e-9)
	assert.True(t, m.PotentialRevenue.Equal(dec(1_000_000)))
	assert.True(t, m.PotentialProfit.Equal(dec(310_000)))
	assert.True(t, m.RealizedRevenue.Equal(dec(500_000)))
	assert.Equal(t, 1, m.SoldUnits)
	assert.True(t, m.Sold)
}

func TestEvaluateItemNegativeMargin(t *testing.T) {
	m := EvaluateItem(dec(120), dec(100), 3, 0)

	assert.True(t, m.ProfitPerUnit.Equal(dec(-20)))
	assert.InDelta(t, -20.0, m.MarginPercentage, 1e-9)
	assert.True(t, m.PotentialProfit.Equal(dec(-60)))
	assert.False(t, m.Sold)
	assert.True(t, m.RealizedRevenue.IsZero())
}

func TestEvaluateItemZeroPrice(t *testing.T) {
	m := EvaluateItem(dec(50), dec(0), 1, 0)

	assert.Equal(t, 0.0, m.MarginPercentage)
	assert.True(t, m.ProfitPerUnit.Equal(dec(-50)))
}

func TestFormatPercent(t *testing.T) {
	assert.Equal(t, "47.83", FormatPercent(Percent(dec(550_000), dec(1_150_000))))
	assert.Equal(t, "0.00", FormatPercent(Percent(dec(10), dec(0))))
	assert.Equal(t, "33.33", FormatPercent(PercentInt(1, 3)))
}
