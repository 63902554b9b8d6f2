package reporting

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"backoffice/internal/domain"
)

func TestAnnual(t *testing.T) {
	s := Annual(2024, bogota, fixtureInput())

	assert.Equal(t, 2024, s.Year)
	assert.Equal(t, Period{From: "2024-01-01", To: "2024-12-31"}, s.Period)
	assert.True(t, s.Summary.Revenue.Equal(dec(1_120_000)))
	assert.True(t, s.Summary.NetProfit.Equal(dec(230_000)))
	assert.Equal(t, 3, s.Summary.Orders)
	assert.True(t, s.Summary.AvgOrderValue.Equal(dec(373_333).Add(dec(33).Div(dec(100)))), s.Summary.AvgOrderValue.String())
	assert.True(t, s.Summary.Investment.Equal(dec(1_370_000)))

	mp := s.Income.ByPaymentMethod[domain.PaymentMethodMercadoPago]
	require.NotNil(t, mp)
	assert.Equal(t, 1, mp.Orders)
	assert.True(t, mp.Net.Equal(dec(480_000)))
	cash := s.Income.ByPaymentMethod[domain.PaymentMethodCash]
	assert.Equal(t, 1, cash.Orders, "cancelled cash order excluded")
	assert.Equal(t, 1, s.Income.ByStatus[domain.OrderStatusCancelled])
	assert.Equal(t, 1, s.Income.ByStatus[domain.OrderStatusDelivered])

	assert.True(t, s.Outflows.Total.Equal(dec(140_000)))
	assert.True(t, s.Outflows.PaymentFees.Equal(dec(20_000)))
	assert.Equal(t, "loan", s.Outflows.Interests.BySource[0].Key)

	assert.Equal(t, 2, s.Investment.Batches)
	assert.Equal(t, 7, s.Investment.UnitsPurchased)
	assert.True(t, s.Investment.PotentialRevenue.Equal(dec(3_700_000)))

	assert.True(t, s.Profitability.NetProfit.Equal(dec(230_000)))
	assert.InDelta(t, 16.79, s.Profitability.ROI, 0.01)

	require.Len(t, s.TopProducts, 2)
	assert.Equal(t, "Exhaust", s.TopProducts[0].ProductName)
	assert.Equal(t, 2, s.TopProducts[0].Quantity)
	assert.True(t, s.TopProducts[0].Profit.Equal(dec(310_000)))
	assert.Equal(t, "Mirror", s.TopProducts[1].ProductName)
}

func TestAnnualTopProductsLimit(t *testing.T) {
	var orders []domain.Order
	for i := 1; i <= 12; i++ {
		orders = append(orders, domain.Order{
			Status:    domain.OrderStatusPaid,
			Total:     dec(int64(i * 100)),
			CreatedAt: at(2024, time.June, 1),
			Items: []domain.OrderItem{{
				ProductID: int64(i), ProductName: fmt.Sprintf("P%02d", i),
				Quantity: 1, ProductCost: dec(10), Subtotal: dec(int64(i * 100)),
			}},
		})
	}

	s := Annual(2024, bogota, PeriodInput{Orders: orders})

	require.Len(t, s.TopProducts, 10)
	assert.Equal(t, "P12", s.TopProducts[0].ProductName)
	assert.Equal(t, "P03", s.TopProducts[9].ProductName)
}

func TestAnnualEmptyYear(t *testing.T) {
	s := Annual(2030, bogota, fixtureInput())

	assert.True(t, s.Summary.Revenue.IsZero())
	assert.True(t, s.Summary.AvgOrderValue.IsZero())
	assert.Equal(t, 0.0, s.Profitability.ROI)
	assert.Empty(t, s.TopProducts)
	assert.Len(t, s.Income.ByPaymentMethod, len(domain.PaymentMethods))
}
