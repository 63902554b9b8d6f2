package costing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"backoffice/internal/domain"
)

func TestAllocateScenario(t *testing.T) {
	alloc := Allocate(scenarioBatch())

	assert.True(t, alloc.TotalCost.Equal(dec(1_150_000)), alloc.TotalCost.String())
	assert.True(t, alloc.TotalProductCost.Equal(dec(1_000_000)), alloc.TotalProductCost.String())
	assert.True(t, alloc.TotalShippingAndFees.Equal(dec(150_000)), alloc.TotalShippingAndFees.String())

	require.Len(t, alloc.Items, 2)
	assert.True(t, alloc.Items[0].AllocatedFees.Equal(dec(90_000)), alloc.Items[0].AllocatedFees.String())
	assert.True(t, alloc.Items[0].CostPrice.Equal(dec(345_000)), alloc.Items[0].CostPrice.String())
	assert.True(t, alloc.Items[1].AllocatedFees.Equal(dec(60_000)), alloc.Items[1].AllocatedFees.String())
	assert.True(t, alloc.Items[1].CostPrice.Equal(dec(460_000)), alloc.Items[1].CostPrice.String())
}

func TestAllocateConservesCost(t *testing.T) {
	batches := []domain.Batch{
		scenarioBatch(),
		{
			PurchaseTotalCost: dec(999_999),
			ShippingCost:      nullDec(77_777),
			AdditionalFees:    nullDec(3),
			Items: []domain.BatchItem{
				{ID: 1, Quantity: 3, UnitCost: dec(111_111)},
				{ID: 2, Quantity: 7, UnitCost: dec(33_333)},
				{ID: 3, Quantity: 1, UnitCost: dec(433_335)},
			},
		},
	}

	tolerance := decimal.RequireFromString("0.0001")
	for _, batch := range batches {
		alloc := Allocate(batch)
		landed := decimal.Zero
		for _, item := range alloc.Items {
			landed = landed.Add(item.LandedCost)
		}
		diff := landed.Sub(alloc.TotalCost).Abs()
		assert.True(t, diff.LessThanOrEqual(tolerance), "landed %s vs total %s", landed, alloc.TotalCost)
	}
}

func TestAllocateZeroProductCost(t *testing.T) {
	batch := domain.Batch{
		PurchaseTotalCost: dec(0),
		ShippingCost:      nullDec(20_000),
		Items: []domain.BatchItem{
			{ID: 1, Quantity: 4, UnitCost: dec(0)},
		},
	}

	alloc := Allocate(batch)

	require.Len(t, alloc.Items, 1)
	assert.True(t, alloc.Items[0].CostPrice.IsZero())
	assert.True(t, alloc.Items[0].AllocatedFees.IsZero())
	assert.True(t, alloc.TotalShippingAndFees.Equal(dec(20_000)))
}

func TestAllocateNullFeesCountAsZero(t *testing.T) {
	batch := domain.Batch{
		PurchaseTotalCost: dec(500),
		Items:             []domain.BatchItem{{ID: 1, Quantity: 5, UnitCost: dec(100)}},
	}

	alloc := Allocate(batch)

	assert.True(t, alloc.TotalCost.Equal(dec(500)))
	assert.True(t, alloc.TotalShippingAndFees.IsZero())
	assert.True(t, alloc.Items[0].CostPrice.Equal(dec(100)))
}

func TestAllocateZeroQuantityKeepsUnitCost(t *testing.T) {
	batch := domain.Batch{
		PurchaseTotalCost: dec(1000),
		ShippingCost:      nullDec(100),
		Items: []domain.BatchItem{
			{ID: 1, Quantity: 0, UnitCost: dec(50)},
			{ID: 2, Quantity: 10, UnitCost: dec(100)},
		},
	}

	alloc := Allocate(batch)

	assert.True(t, alloc.Items[0].CostPrice.Equal(dec(50)))
	assert.True(t, alloc.Items[1].CostPrice.Equal(dec(110)))
}

func TestValidateCosts(t *testing.T) {
	assert.Empty(t, ValidateCosts(scenarioBatch()))

	batch := domain.Batch{
		PurchaseTotalCost: dec(-1),
		CustomsFees:       nullDec(-5),
		Items: []domain.BatchItem{
			{Quantity: 0, UnitCost: dec(10)},
			{Quantity: 2, UnitCost: dec(-10)},
		},
	}

	fields := ValidateCosts(batch)
	assert.Equal(t, map[string]string{
		"purchase_total_cost": "must be at least 0",
		"customs_fees":        "must be at least 0",
		"items[0].quantity":   "must be greater than 0",
		"items[1].unit_cost":  "must be at least 0",
	}, fields)
}
