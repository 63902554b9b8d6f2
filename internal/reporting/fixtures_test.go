package reporting

import (
	"time"

	"github.com/shopspring/decimal"

	"backoffice/internal/domain"
)

var bogota = time.FixedZone("America/Bogota", -5*60*60)

func dec(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func nullDec(v int64) decimal.NullDecimal {
	return decimal.NullDecimal{Decimal: decimal.NewFromInt(v), Valid: true}
}

func at(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 12, 0, 0, 0, bogota)
}

func fixtureBatches() []domain.Batch {
	return []domain.Batch{
		{
			ID:                1,
			PurchaseDate:      at(2024, time.January, 10),
			PurchaseTotalCost: dec(1_000_000),
			ShippingCost:      nullDec(100_000),
			CustomsFees:       nullDec(50_000),
			Status:            domain.BatchStatusDelivered,
			Items: []domain.BatchItem{
				{ID: 10, ProductID: 100, Quantity: 2, UnitCost: dec(300_000),
					Product: domain.Product{ID: 100, Name: "Exhaust", Price: dec(500_000), InStock: false}},
				{ID: 11, ProductID: 101, Quantity: 1, UnitCost: dec(400_000),
					Product: domain.Product{ID: 101, Name: "Fairing", Price: dec(700_000), InStock: true}},
			},
		},
		{
			ID:                2,
			PurchaseDate:      at(2024, time.March, 2),
			PurchaseTotalCost: dec(200_000),
			AdditionalFees:    nullDec(20_000),
			Status:            domain.BatchStatusCompleted,
			Items: []domain.BatchItem{
				{ID: 20, ProductID: 100, Quantity: 4, UnitCost: dec(50_000),
					Product: domain.Product{ID: 100, Name: "Exhaust", Price: dec(500_000), InStock: true}},
			},
		},
	}
}

func fixtureOutflows() Outflows {
	creditor := "Bank"
	return Outflows{
		Expenses: []domain.Expense{
			{ID: 1, Name: "Hosting", Amount: dec(30_000), ExpenseDate: at(2024, time.January, 5)},
			{ID: 2, Name: "Packaging", Amount: dec(20_000), ExpenseDate: at(2024, time.February, 5)},
		},
		Interests: []domain.InterestPayment{
			{ID: 1, Name: "Card", Amount: dec(15_000), Source: "credit_card", PaymentDate: at(2024, time.January, 20)},
			{ID: 2, Name: "Loan", Amount: dec(40_000), Source: "loan", Creditor: &creditor, PaymentDate: at(2024, time.March, 20)},
			{ID: 3, Name: "Card", Amount: dec(5_000), Source: "credit_card", PaymentDate: at(2024, time.April, 20)},
		},
		Losses: []domain.Loss{
			{ID: 1, Name: "Broken", Amount: dec(10_000), Reason: "damaged", LossDate: at(2024, time.February, 11)},
		},
	}
}

func fixtureOrders() []domain.Order {
	return []domain.Order{
		{
			ID: 1, Status: domain.OrderStatusDelivered, PaymentMethod: domain.PaymentMethodMercadoPago,
			Total: dec(500_000), Profit: dec(155_000), PaymentFee: dec(20_000), CreatedAt: at(2024, time.January, 25),
			Items: []domain.OrderItem{{ProductID: 100, ProductName: "Exhaust", Quantity: 1, ProductCost: dec(345_000), Subtotal: dec(500_000)}},
		},
		{
			ID: 2, Status: domain.OrderStatusPaid, PaymentMethod: domain.PaymentMethodTransfer,
			Total: dec(500_000), Profit: dec(155_000), CreatedAt: at(2024, time.February, 2),
			Items: []domain.OrderItem{{ProductID: 100, ProductName: "Exhaust", Quantity: 1, ProductCost: dec(345_000), Subtotal: dec(500_000)}},
		},
		{
			ID: 3, Status: domain.OrderStatusCancelled, PaymentMethod: domain.PaymentMethodCash,
			Total: dec(700_000), Profit: dec(240_000), CreatedAt: at(2024, time.February, 3),
			Items: []domain.OrderItem{{ProductID: 101, ProductName: "Fairing", Quantity: 1, ProductCost: dec(460_000), Subtotal: dec(700_000)}},
		},
		{
			ID: 4, Status: domain.OrderStatusShipped, PaymentMethod: domain.PaymentMethodCash,
			Total: dec(120_000), Profit: dec(60_000), CreatedAt: at(2024, time.May, 9),
			Items: []domain.OrderItem{{ProductID: 102, ProductName: "Mirror", Quantity: 2, ProductCost: dec(30_000), Subtotal: dec(120_000)}},
		},
	}
}
