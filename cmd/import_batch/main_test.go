package main

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"backoffice/internal/apperr"
	"backoffice/internal/costing"
	"backoffice/internal/domain"
	"backoffice/internal/service"
	"backoffice/internal/service/servicetest"
)

func TestBuildInput(t *testing.T) {
	input, err := buildInput(options{
		purchaseDate:  "2024-01-10",
		purchaseTotal: "1000000",
		shippingCost:  "100000",
		notes:         "  air freight ",
	}, time.UTC)
	require.NoError(t, err)

	assert.Equal(t, time.Date(2024, time.January, 10, 0, 0, 0, 0, time.UTC), input.PurchaseDate)
	assert.True(t, input.PurchaseTotalCost.Valid)
	assert.Equal(t, "100000", input.ShippingCost.Decimal.String())
	assert.False(t, input.CustomsFees.Valid)
	require.NotNil(t, input.Notes)
	assert.Equal(t, "air freight", *input.Notes)

	_, err = buildInput(options{purchaseDate: "10/01/2024"}, time.UTC)
	assert.Error(t, err)
	_, err = buildInput(options{customsFees: "lots"}, time.UTC)
	assert.Error(t, err)
}

func TestLinesTotal(t *testing.T) {
	total := linesTotal([]domain.BatchItemInput{
		{ProductID: 1, Quantity: 2, UnitCost: decimal.NewFromInt(300_000)},
		{ProductID: 2, Quantity: 1, UnitCost: decimal.NewFromInt(400_000)},
	})
	assert.Equal(t, "1000000", total.String())
}

func TestPrintReport(t *testing.T) {
	report := costing.Evaluate(domain.Batch{
		BatchNumber:       "LOT-202401-001",
		PurchaseDate:      time.Date(2024, time.January, 10, 0, 0, 0, 0, time.UTC),
		PurchaseTotalCost: decimal.NewFromInt(300_000),
		ShippingCost:      decimal.NewNullDecimal(decimal.NewFromInt(30_000)),
		Status:            domain.BatchStatusOrdered,
		Items: []domain.BatchItem{{
			ID: 1, ProductID: 7, Quantity: 1, UnitCost: decimal.NewFromInt(300_000),
			Product: domain.Product{ID: 7, Name: "Exhaust", Price: decimal.NewFromInt(500_000), InStock: true},
		}},
	})

	var out bytes.Buffer
	printReport(&out, report)

	assert.Contains(t, out.String(), "batch LOT-202401-001  purchased 2024-01-10  Ordenado")
	assert.Contains(t, out.String(), "Exhaust")
	assert.Contains(t, out.String(), "330000")
	assert.Contains(t, out.String(), "investment 330000")
}

func TestPreviewBatch(t *testing.T) {
	svc := service.New(servicetest.NewStore(
		domain.Product{ID: 7, Name: "Exhaust", Price: decimal.NewFromInt(500_000), InStock: true},
	), service.Options{})
	input := domain.BatchCreateInput{
		PurchaseDate:      time.Date(2024, time.January, 10, 0, 0, 0, 0, time.UTC),
		PurchaseTotalCost: decimal.NewNullDecimal(decimal.NewFromInt(600_000)),
		ShippingCost:      decimal.NewNullDecimal(decimal.NewFromInt(60_000)),
		Items:             []domain.BatchItemInput{{ProductID: 7, Quantity: 2, UnitCost: decimal.NewFromInt(300_000)}},
	}

	batch, err := previewBatch(context.Background(), svc, input)
	require.NoError(t, err)
	assert.Equal(t, "(preview)", batch.BatchNumber)
	report := costing.Evaluate(batch)
	assert.True(t, report.Items[0].CostPrice.Equal(decimal.NewFromInt(330_000)), report.Items[0].CostPrice.String())

	input.Items[0].Quantity = 0
	_, err = previewBatch(context.Background(), svc, input)
	require.Error(t, err)
	typed := apperr.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, apperr.CodeValidation, typed.Code())
	assert.Equal(t, map[string]string{"items[0].quantity": "must be greater than 0"}, typed.Details())

	input.Items[0] = domain.BatchItemInput{ProductID: 99, Quantity: 1, UnitCost: decimal.NewFromInt(1)}
	_, err = previewBatch(context.Background(), svc, input)
	assert.Equal(t, apperr.CodeNotFound, apperr.CodeOf(err))
}
