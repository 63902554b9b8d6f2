package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"backoffice/internal/domain"
)

const dateLayout = "2006-01-02"

// date accepts "YYYY-MM-DD" or RFC 3339 and keeps only the calendar day.
type date struct {
	time.Time
}

func (d *date) UnmarshalJSON(raw []byte) error {
	if bytes.Equal(raw, []byte("null")) {
		return nil
	}
	var value string
	if err := json.Unmarshal(raw, &value); err != nil {
		return fmt.Errorf("date must be a string")
	}
	for _, layout := range []string{dateLayout, time.RFC3339} {
		if parsed, err := time.Parse(layout, value); err == nil {
			d.Time = time.Date(parsed.Year(), parsed.Month(), parsed.Day(), 0, 0, 0, 0, time.UTC)
			return nil
		}
	}
	return fmt.Errorf("invalid date %q", value)
}

type createBatchRequest struct {
	BatchNumber       string                  `json:"batch_number"`
	PurchaseDate      date                    `json:"purchase_date"`
	PurchaseTotalCost decimal.NullDecimal     `json:"purchase_total_cost"`
	ShippingCost      decimal.NullDecimal     `json:"shipping_cost"`
	CustomsFees       decimal.NullDecimal     `json:"customs_fees"`
	AdditionalFees    decimal.NullDecimal     `json:"additional_fees"`
	MailboxTracking   *string                 `json:"mailbox_tracking"`
	Notes             *string                 `json:"notes"`
	Items             []domain.BatchItemInput `json:"items"`
}

func (req createBatchRequest) input() domain.BatchCreateInput {
	return domain.BatchCreateInput{
		BatchNumber:       req.BatchNumber,
		PurchaseDate:      req.PurchaseDate.Time,
		PurchaseTotalCost: req.PurchaseTotalCost,
		ShippingCost:      req.ShippingCost,
		CustomsFees:       req.CustomsFees,
		AdditionalFees:    req.AdditionalFees,
		MailboxTracking:   req.MailboxTracking,
		Notes:             req.Notes,
		Items:             req.Items,
	}
}

type addItemsRequest struct {
	Items []domain.BatchItemInput `json:"items"`
}

type removeItemsRequest struct {
	ItemIDs []int64 `json:"item_ids"`
	Force   bool    `json:"force"`
}

type itemQuantityRequest struct {
	Quantity int `json:"quantity"`
}

type expenseRequest struct {
	Name        string          `json:"name"`
	Amount      decimal.Decimal `json:"amount"`
	ExpenseDate date            `json:"expense_date"`
	Notes       *string         `json:"notes"`
}

func (req expenseRequest) input() domain.ExpenseInput {
	return domain.ExpenseInput{
		Name:        req.Name,
		Amount:      req.Amount,
		ExpenseDate: req.ExpenseDate.Time,
		Notes:       req.Notes,
	}
}

type interestRequest struct {
	Name        string          `json:"name"`
	Amount      decimal.Decimal `json:"amount"`
	Source      string          `json:"source"`
	Creditor    *string         `json:"creditor"`
	PaymentDate date            `json:"payment_date"`
	Notes       *string         `json:"notes"`
}

func (req interestRequest) input() domain.InterestInput {
	return domain.InterestInput{
		Name:        req.Name,
		Amount:      req.Amount,
		Source:      req.Source,
		Creditor:    req.Creditor,
		PaymentDate: req.PaymentDate.Time,
		Notes:       req.Notes,
	}
}

type lossRequest struct {
	Name     string          `json:"name"`
	Amount   decimal.Decimal `json:"amount"`
	Reason   string          `json:"reason"`
	OrderID  *int64          `json:"order_id"`
	LossDate date            `json:"loss_date"`
	Notes    *string         `json:"notes"`
}

func (req lossRequest) input() domain.LossInput {
	return domain.LossInput{
		Name:     req.Name,
		Amount:   req.Amount,
		Reason:   req.Reason,
		OrderID:  req.OrderID,
		LossDate: req.LossDate.Time,
		Notes:    req.Notes,
	}
}
