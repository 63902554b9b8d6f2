package costing

import (
	"github.com/shopspring/decimal"

	"backoffice/internal/domain"
)

func dec(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func nullDec(v int64) decimal.NullDecimal {
	return decimal.NullDecimal{Decimal: decimal.NewFromInt(v), Valid: true}
}

func intPtr(v int) *int { return &v }

// scenarioBatch is the two-line import used across the costing tests:
// 1,000,000 purchase, 100,000 shipping, 50,000 customs.
func scenarioBatch() domain.Batch {
	return domain.Batch{
		ID:                1,
		BatchNumber:       "LOT-202401-001",
		PurchaseTotalCost: dec(1_000_000),
		ShippingCost:      nullDec(100_000),
		CustomsFees:       nullDec(50_000),
		AdditionalFees:    nullDec(0),
		Status:            domain.BatchStatusDelivered,
		Items: []domain.BatchItem{
			{
				ID: 10, BatchID: 1, ProductID: 100, Quantity: 2, UnitCost: dec(300_000),
				Product: domain.Product{ID: 100, Name: "Exhaust", Price: dec(500_000), InStock: true},
			},
			{
				ID: 11, BatchID: 1, ProductID: 101, Quantity: 1, UnitCost: dec(400_000),
				Product: domain.Product{ID: 101, Name: "Fairing", Price: dec(700_000), InStock: true},
			},
		},
	}
}
