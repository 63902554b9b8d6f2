package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type BatchItemInput struct {
	ProductID int64           `json:"product_id" validate:"required,gt=0"`
	Quantity  int             `json:"quantity" validate:"required,gt=0"`
	UnitCost  decimal.Decimal `json:"unit_cost" validate:"gte=0"`
}

type BatchCreateInput struct {
	BatchNumber       string              `json:"batch_number" validate:"max=64"`
	PurchaseDate      time.Time           `json:"purchase_date" validate:"required"`
	PurchaseTotalCost decimal.NullDecimal `json:"purchase_total_cost" validate:"gte=0"`
	ShippingCost      decimal.NullDecimal `json:"shipping_cost" validate:"omitempty,gte=0"`
	CustomsFees       decimal.NullDecimal `json:"customs_fees" validate:"omitempty,gte=0"`
	AdditionalFees    decimal.NullDecimal `json:"additional_fees" validate:"omitempty,gte=0"`
	MailboxTracking   *string             `json:"mailbox_tracking"`
	Notes             *string             `json:"notes"`
	Items             []BatchItemInput    `json:"items" validate:"dive"`
}

// BatchPatchInput carries the editable cost fields; nil pointers are left untouched.
type BatchPatchInput struct {
	PurchaseTotalCost *decimal.Decimal `json:"purchase_total_cost" validate:"omitempty,gte=0"`
	ShippingCost      *decimal.Decimal `json:"shipping_cost" validate:"omitempty,gte=0"`
	CustomsFees       *decimal.Decimal `json:"customs_fees" validate:"omitempty,gte=0"`
	AdditionalFees    *decimal.Decimal `json:"additional_fees" validate:"omitempty,gte=0"`
	MailboxTracking   *string          `json:"mailbox_tracking"`
	Notes             *string          `json:"notes"`
}

type BatchStatusInput struct {
	Status          BatchStatus      `json:"status" validate:"required,batch_status"`
	CustomsFees     *decimal.Decimal `json:"customs_fees" validate:"omitempty,gte=0"`
	AdditionalFees  *decimal.Decimal `json:"additional_fees" validate:"omitempty,gte=0"`
	MailboxTracking *string          `json:"mailbox_tracking"`

	// Lifecycle stamps filled by the service, never by callers.
	ArrivedMailboxAt    *time.Time `json:"-"`
	ShippedToColombiaAt *time.Time `json:"-"`
	DeliveredAt         *time.Time `json:"-"`
}

type BatchListFilter struct {
	Status    BatchStatus
	Purchased DateRange
}

type ProductListFilter struct {
	Search string
	Limit  int
	Offset int
}

type DrawInput struct {
	OrderID  *int64 `json:"order_id" validate:"omitempty,gt=0"`
	Quantity int    `json:"quantity" validate:"required,gt=0"`
}

type MoveItemInput struct {
	ToBatchID int64            `json:"to_batch_id" validate:"required,gt=0"`
	UnitCost  *decimal.Decimal `json:"unit_cost" validate:"omitempty,gte=0"`
}

type ExpenseInput struct {
	Name        string          `json:"name" validate:"required,max=200"`
	Amount      decimal.Decimal `json:"amount" validate:"gt=0"`
	ExpenseDate time.Time       `json:"expense_date" validate:"required"`
	Notes       *string         `json:"notes"`
}

type InterestInput struct {
	Name        string          `json:"name" validate:"required,max=200"`
	Amount      decimal.Decimal `json:"amount" validate:"gt=0"`
	Source      string          `json:"source" validate:"required,max=100"`
	Creditor    *string         `json:"creditor"`
	PaymentDate time.Time       `json:"payment_date" validate:"required"`
	Notes       *string         `json:"notes"`
}

type LossInput struct {
	Name     string          `json:"name" validate:"required,max=200"`
	Amount   decimal.Decimal `json:"amount" validate:"gt=0"`
	Reason   string          `json:"reason" validate:"required,max=100"`
	OrderID  *int64          `json:"order_id" validate:"omitempty,gt=0"`
	LossDate time.Time       `json:"loss_date" validate:"required"`
	Notes    *string         `json:"notes"`
}

// BatchItemImportRow is one spreadsheet line; Product is a name or slug
// resolved to a product id before the line is stored.
type BatchItemImportRow struct {
	Row      int
	Product  string
	Quantity int
	UnitCost decimal.Decimal
}
