package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID        int64               `json:"id"`
	Name      string              `json:"name"`
	Slug      string              `json:"slug"`
	Price     decimal.Decimal     `json:"price"`
	Cost      decimal.NullDecimal `json:"cost"`
	InStock   bool                `json:"in_stock"`
	CreatedAt time.Time           `json:"created_at"`
	UpdatedAt time.Time           `json:"updated_at"`
}

type Batch struct {
	ID                  int64               `json:"id"`
	BatchNumber         string              `json:"batch_number"`
	PurchaseDate        time.Time           `json:"purchase_date"`
	PurchaseTotalCost   decimal.Decimal     `json:"purchase_total_cost"`
	ShippingCost        decimal.NullDecimal `json:"shipping_cost"`
	CustomsFees         decimal.NullDecimal `json:"customs_fees"`
	AdditionalFees      decimal.NullDecimal `json:"additional_fees"`
	Status              BatchStatus         `json:"status"`
	MailboxTracking     *string             `json:"mailbox_tracking,omitempty"`
	Notes               *string             `json:"notes,omitempty"`
	ArrivedMailboxAt    *time.Time          `json:"arrived_mailbox_at,omitempty"`
	ShippedToColombiaAt *time.Time          `json:"shipped_to_colombia_at,omitempty"`
	DeliveredAt         *time.Time          `json:"delivered_at,omitempty"`
	CreatedAt           time.Time           `json:"created_at"`
	UpdatedAt           time.Time           `json:"updated_at"`
	Items               []BatchItem         `json:"items"`
}

// TotalCost is the landed cost of the whole batch; null fee components count as zero.
func (b Batch) TotalCost() decimal.Decimal {
	return b.PurchaseTotalCost.
		Add(OrZero(b.ShippingCost)).
		Add(OrZero(b.CustomsFees)).
		Add(OrZero(b.AdditionalFees))
}

// Units returns the number of purchased units across all lines.
func (b Batch) Units() int {
	total := 0
	for _, item := range b.Items {
		total += item.Quantity
	}
	return total
}

// FindItem returns the line with the given id.
func (b Batch) FindItem(itemID int64) (BatchItem, bool) {
	for _, item := range b.Items {
		if item.ID == itemID {
			return item, true
		}
	}
	return BatchItem{}, false
}

type BatchItem struct {
	ID        int64           `json:"id"`
	BatchID   int64           `json:"batch_id"`
	ProductID int64           `json:"product_id"`
	Quantity  int             `json:"quantity"`
	UnitCost  decimal.Decimal `json:"unit_cost"`
	CreatedAt time.Time       `json:"created_at"`
	Product   Product         `json:"product"`
	// DrawnUnits is the number of units consumed through the inventory draw
	// ledger. Nil when the line has no draws recorded.
	DrawnUnits *int `json:"drawn_units,omitempty"`
}

// SoldUnits counts the units of this line that already left inventory. Draws
// win over the product stock flag; without draws a line is sold all-or-nothing.
func (i BatchItem) SoldUnits() int {
	if i.DrawnUnits != nil {
		drawn := *i.DrawnUnits
		if drawn < 0 {
			return 0
		}
		if drawn > i.Quantity {
			return i.Quantity
		}
		return drawn
	}
	if !i.Product.InStock {
		return i.Quantity
	}
	return 0
}

func (i BatchItem) IsSold() bool {
	return i.SoldUnits() > 0
}

type InventoryDraw struct {
	ID          int64     `json:"id"`
	BatchItemID int64     `json:"batch_item_id"`
	OrderID     *int64    `json:"order_id,omitempty"`
	Quantity    int       `json:"quantity"`
	DrawnAt     time.Time `json:"drawn_at"`
}

type Expense struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Amount      decimal.Decimal `json:"amount"`
	ExpenseDate time.Time       `json:"expense_date"`
	Notes       *string         `json:"notes,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

type InterestPayment struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Amount      decimal.Decimal `json:"amount"`
	Source      string          `json:"source"`
	Creditor    *string         `json:"creditor,omitempty"`
	PaymentDate time.Time       `json:"payment_date"`
	Notes       *string         `json:"notes,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

type Loss struct {
	ID        int64           `json:"id"`
	Name      string          `json:"name"`
	Amount    decimal.Decimal `json:"amount"`
	Reason    string          `json:"reason"`
	OrderID   *int64          `json:"order_id,omitempty"`
	LossDate  time.Time       `json:"loss_date"`
	Notes     *string         `json:"notes,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

type Order struct {
	ID            int64           `json:"id"`
	OrderNumber   string          `json:"order_number"`
	Status        OrderStatus     `json:"status"`
	PaymentMethod PaymentMethod   `json:"payment_method"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	ShippingCost  decimal.Decimal `json:"shipping_cost"`
	Discount      decimal.Decimal `json:"discount"`
	Total         decimal.Decimal `json:"total"`
	TotalCost     decimal.Decimal `json:"total_cost"`
	Profit        decimal.Decimal `json:"profit"`
	PaymentFee    decimal.Decimal `json:"payment_fee"`
	CreatedAt     time.Time       `json:"created_at"`
	Items         []OrderItem     `json:"items,omitempty"`
}

type OrderItem struct {
	ID           int64           `json:"id"`
	OrderID      int64           `json:"order_id"`
	ProductID    int64           `json:"product_id"`
	ProductName  string          `json:"product_name"`
	ProductPrice decimal.Decimal `json:"product_price"`
	ProductCost  decimal.Decimal `json:"product_cost"`
	Quantity     int             `json:"quantity"`
	Subtotal     decimal.Decimal `json:"subtotal"`
}

// DateRange is half-open: From inclusive, To exclusive. Zero bounds are open.
type DateRange struct {
	From time.Time
	To   time.Time
}

func (r DateRange) Contains(t time.Time) bool {
	return r.contains(t)
}

// ContainsDate checks a calendar date (expense, payment, loss and purchase
// dates). Only its year, month and day count; they are read in the zone of
// the range bounds.
func (r DateRange) ContainsDate(d time.Time) bool {
	return r.contains(CalendarDay(d, r.location()))
}

func (r DateRange) location() *time.Location {
	if !r.From.IsZero() {
		return r.From.Location()
	}
	if !r.To.IsZero() {
		return r.To.Location()
	}
	return time.UTC
}

func (r DateRange) contains(t time.Time) bool {
	if !r.From.IsZero() && t.Before(r.From) {
		return false
	}
	if !r.To.IsZero() && !t.Before(r.To) {
		return false
	}
	return true
}

// YearRange covers the calendar year in loc.
func YearRange(year int, loc *time.Location) DateRange {
	if loc == nil {
		loc = time.UTC
	}
	return DateRange{
		From: time.Date(year, time.January, 1, 0, 0, 0, 0, loc),
		To:   time.Date(year+1, time.January, 1, 0, 0, 0, 0, loc),
	}
}

// CalendarDay places the calendar date of d at midnight in loc.
func CalendarDay(d time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, loc)
}

func OrZero(value decimal.NullDecimal) decimal.Decimal {
	if !value.Valid {
		return decimal.Zero
	}
	return value.Decimal
}

// FormatBatchNumber renders the LOT-YYYYMM-NNN batch number.
func FormatBatchNumber(purchaseDate time.Time, seq int) string {
	return fmt.Sprintf("LOT-%04d%02d-%03d", purchaseDate.Year(), int(purchaseDate.Month()), seq)
}
