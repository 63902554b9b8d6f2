package costing

import (
	"fmt"

	"github.com/shopspring/decimal"

	"backoffice/internal/domain"
)

type AllocatedItem struct {
	ItemID        int64           `json:"item_id"`
	ProductID     int64           `json:"product_id"`
	Quantity      int             `json:"quantity"`
	UnitCost      decimal.Decimal `json:"unit_cost"`
	CostPrice     decimal.Decimal `json:"cost_price"`
	AllocatedFees decimal.Decimal `json:"allocated_fees"`
	LandedCost    decimal.Decimal `json:"landed_cost"`
}

type Allocation struct {
	TotalCost            decimal.Decimal `json:"total_cost"`
	TotalProductCost     decimal.Decimal `json:"total_product_cost"`
	TotalShippingAndFees decimal.Decimal `json:"total_shipping_and_fees"`
	Items                []AllocatedItem `json:"items"`
}

// Allocate spreads shipping, customs and additional fees over the batch lines
// in proportion to each line's share of the product cost.
func Allocate(batch domain.Batch) Allocation {
	totalCost := batch.TotalCost()
	totalProductCost := decimal.Zero
	for _, item := range batch.Items {
		totalProductCost = totalProductCost.Add(lineCost(item))
	}
	fees := totalCost.Sub(batch.PurchaseTotalCost)

	items := make([]AllocatedItem, 0, len(batch.Items))
	for _, item := range batch.Items {
		allocated := decimal.Zero
		if !totalProductCost.IsZero() {
			allocated = fees.Mul(lineCost(item)).Div(totalProductCost)
		}
		costPrice := item.UnitCost
		if item.Quantity > 0 {
			costPrice = item.UnitCost.Add(allocated.Div(decimal.NewFromInt(int64(item.Quantity))))
		}
		items = append(items, AllocatedItem{
			ItemID:        item.ID,
			ProductID:     item.ProductID,
			Quantity:      item.Quantity,
			UnitCost:      item.UnitCost,
			CostPrice:     costPrice,
			AllocatedFees: allocated,
			LandedCost:    costPrice.Mul(decimal.NewFromInt(int64(item.Quantity))),
		})
	}

	return Allocation{
		TotalCost:            totalCost,
		TotalProductCost:     totalProductCost,
		TotalShippingAndFees: fees,
		Items:                items,
	}
}

func lineCost(item domain.BatchItem) decimal.Decimal {
	return item.UnitCost.Mul(decimal.NewFromInt(int64(item.Quantity)))
}

// ValidateCosts checks the inputs Allocate relies on and returns field
// messages keyed by json path. An empty map means the batch is costable.
func ValidateCosts(batch domain.Batch) map[string]string {
	fields := map[string]string{}
	if batch.PurchaseTotalCost.IsNegative() {
		fields["purchase_total_cost"] = "must be at least 0"
	}
	checkFee := func(name string, value decimal.NullDecimal) {
		if value.Valid && value.Decimal.IsNegative() {
			fields[name] = "must be at least 0"
		}
	}
	checkFee("shipping_cost", batch.ShippingCost)
	checkFee("customs_fees", batch.CustomsFees)
	checkFee("additional_fees", batch.AdditionalFees)
	for i, item := range batch.Items {
		if item.Quantity <= 0 {
			fields[fmt.Sprintf("items[%d].quantity", i)] = "must be greater than 0"
		}
		if item.UnitCost.IsNegative() {
			fields[fmt.Sprintf("items[%d].unit_cost", i)] = "must be at least 0"
		}
	}
	return fields
}
