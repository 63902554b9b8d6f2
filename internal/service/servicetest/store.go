// Package servicetest provides in-memory collaborators for exercising the
// service layer without Postgres or Redis.
package servicetest

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"backoffice/internal/cache"
	"backoffice/internal/domain"
	"backoffice/internal/repository"
)

// Store is an in-memory service.Store with the same not-found, draw and
// lifecycle stamp semantics as the Postgres repository.
type Store struct {
	mu        sync.Mutex
	nextID    int64
	products  map[int64]domain.Product
	batches   map[int64]*domain.Batch
	expenses  []domain.Expense
	interests []domain.InterestPayment
	losses    []domain.Loss
	// Orders are served by ListOrders; tests set them directly.
	Orders []domain.Order
	// Calls counts invocations of the list and mutation methods tests assert on.
	Calls map[string]int
	// BeforeRemove runs at the start of RemoveItems with the lock released.
	BeforeRemove func()
}

func NewStore(products ...domain.Product) *Store {
	m := &Store{
		nextID:   1000,
		products: map[int64]domain.Product{},
		batches:  map[int64]*domain.Batch{},
		Calls:    map[string]int{},
	}
	for _, p := range products {
		m.products[p.ID] = p
	}
	return m
}

func (m *Store) id() int64 {
	m.nextID++
	return m.nextID
}

func (m *Store) called(op string) {
	m.Calls[op]++
}

func cloneBatch(b *domain.Batch) *domain.Batch {
	out := *b
	out.Items = append([]domain.BatchItem(nil), b.Items...)
	return &out
}

func (m *Store) ListBatches(_ context.Context, filter domain.BatchListFilter) ([]domain.Batch, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.called("ListBatches")
	var out []domain.Batch
	for _, b := range m.batches {
		if filter.Status != "" && b.Status != filter.Status {
			continue
		}
		if !filter.Purchased.ContainsDate(b.PurchaseDate) {
			continue
		}
		out = append(out, *cloneBatch(b))
	}
	return out, nil
}

func (m *Store) GetBatch(_ context.Context, id int64) (*domain.Batch, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.batches[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return cloneBatch(b), nil
}

func (m *Store) NextBatchNumber(_ context.Context, purchaseDate time.Time) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, b := range m.batches {
		if b.PurchaseDate.Year() == purchaseDate.Year() && b.PurchaseDate.Month() == purchaseDate.Month() {
			count++
		}
	}
	return domain.FormatBatchNumber(purchaseDate, count+1), nil
}

func (m *Store) CreateBatch(_ context.Context, input domain.BatchCreateInput) (*domain.Batch, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.called("CreateBatch")
	b := &domain.Batch{
		ID:                m.id(),
		BatchNumber:       input.BatchNumber,
		PurchaseDate:      input.PurchaseDate,
		PurchaseTotalCost: input.PurchaseTotalCost.Decimal,
		ShippingCost:      input.ShippingCost,
		CustomsFees:       input.CustomsFees,
		AdditionalFees:    input.AdditionalFees,
		Status:            domain.BatchStatusOrdered,
		MailboxTracking:   input.MailboxTracking,
		Notes:             input.Notes,
	}
	m.batches[b.ID] = b
	m.appendItems(b, input.Items)
	return cloneBatch(b), nil
}

func (m *Store) appendItems(b *domain.Batch, items []domain.BatchItemInput) {
	for _, in := range items {
		b.Items = append(b.Items, domain.BatchItem{
			ID:        m.id(),
			BatchID:   b.ID,
			ProductID: in.ProductID,
			Quantity:  in.Quantity,
			UnitCost:  in.UnitCost,
			Product:   m.products[in.ProductID],
		})
	}
}

func (m *Store) UpdateBatch(_ context.Context, id int64, input domain.BatchPatchInput) (*domain.Batch, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.batches[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if input.PurchaseTotalCost != nil {
		b.PurchaseTotalCost = *input.PurchaseTotalCost
	}
	if input.ShippingCost != nil {
		b.ShippingCost = decimal.NewNullDecimal(*input.ShippingCost)
	}
	if input.CustomsFees != nil {
		b.CustomsFees = decimal.NewNullDecimal(*input.CustomsFees)
	}
	if input.AdditionalFees != nil {
		b.AdditionalFees = decimal.NewNullDecimal(*input.AdditionalFees)
	}
	if input.Notes != nil {
		b.Notes = input.Notes
	}
	return cloneBatch(b), nil
}

func (m *Store) UpdateBatchStatus(_ context.Context, id int64, input domain.BatchStatusInput) (*domain.Batch, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.batches[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	b.Status = input.Status
	if b.ArrivedMailboxAt == nil {
		b.ArrivedMailboxAt = input.ArrivedMailboxAt
	}
	if b.ShippedToColombiaAt == nil {
		b.ShippedToColombiaAt = input.ShippedToColombiaAt
	}
	if b.DeliveredAt == nil {
		b.DeliveredAt = input.DeliveredAt
	}
	if input.CustomsFees != nil {
		b.CustomsFees = decimal.NewNullDecimal(*input.CustomsFees)
	}
	return cloneBatch(b), nil
}

func (m *Store) DeleteBatch(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.batches[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.batches, id)
	return nil
}

func (m *Store) AddItems(_ context.Context, batchID int64, items []domain.BatchItemInput) (*domain.Batch, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.batches[batchID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	m.appendItems(b, items)
	return cloneBatch(b), nil
}

func (m *Store) RemoveItems(_ context.Context, batchID int64, itemIDs []int64, check func([]domain.BatchItem) error) (*domain.Batch, error) {
	if m.BeforeRemove != nil {
		m.BeforeRemove()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.called("RemoveItems")
	b, ok := m.batches[batchID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if check != nil {
		if err := check(cloneBatch(b).Items); err != nil {
			return nil, err
		}
	}
	drop := map[int64]bool{}
	for _, id := range itemIDs {
		drop[id] = true
	}
	kept := b.Items[:0]
	for _, item := range b.Items {
		if !drop[item.ID] {
			kept = append(kept, item)
		}
	}
	b.Items = kept
	return cloneBatch(b), nil
}

func (m *Store) UpdateItemQuantity(_ context.Context, batchID, itemID int64, quantity int) (*domain.Batch, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.batches[batchID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	for i := range b.Items {
		if b.Items[i].ID == itemID {
			b.Items[i].Quantity = quantity
			return cloneBatch(b), nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *Store) MoveItem(_ context.Context, fromBatchID, itemID int64, input domain.MoveItemInput) (*domain.Batch, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	from, ok := m.batches[fromBatchID]
	if !ok {
		return nil, &repository.BatchNotFoundError{BatchID: fromBatchID}
	}
	to, ok := m.batches[input.ToBatchID]
	if !ok {
		return nil, &repository.BatchNotFoundError{BatchID: input.ToBatchID}
	}
	for i, item := range from.Items {
		if item.ID != itemID {
			continue
		}
		from.Items = append(from.Items[:i], from.Items[i+1:]...)
		item.BatchID = to.ID
		if input.UnitCost != nil {
			item.UnitCost = *input.UnitCost
		}
		to.Items = append(to.Items, item)
		return cloneBatch(to), nil
	}
	return nil, repository.ErrNotFound
}

func (m *Store) RecordDraw(_ context.Context, batchID, itemID int64, input domain.DrawInput) (*domain.InventoryDraw, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.batches[batchID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	for i := range b.Items {
		item := &b.Items[i]
		if item.ID != itemID {
			continue
		}
		drawn := 0
		if item.DrawnUnits != nil {
			drawn = *item.DrawnUnits
		}
		if drawn+input.Quantity > item.Quantity {
			return nil, fmt.Errorf("item %d: %w", itemID, repository.ErrInsufficientUnits)
		}
		total := drawn + input.Quantity
		item.DrawnUnits = &total
		return &domain.InventoryDraw{ID: m.id(), BatchItemID: itemID, OrderID: input.OrderID, Quantity: input.Quantity}, nil
	}
	return nil, repository.ErrNotFound
}

func (m *Store) ListProducts(_ context.Context, filter domain.ProductListFilter) ([]domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Product
	for _, p := range m.products {
		if filter.Search == "" || strings.Contains(strings.ToLower(p.Name), strings.ToLower(filter.Search)) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *Store) GetProduct(_ context.Context, id int64) (*domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &p, nil
}

func (m *Store) ProductIDsByName(_ context.Context, names []string) (map[string]int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := map[string]int64{}
	for _, name := range names {
		key := strings.ToLower(strings.TrimSpace(name))
		for _, p := range m.products {
			if strings.ToLower(p.Name) == key || p.Slug == key {
				out[key] = p.ID
			}
		}
	}
	return out, nil
}

func (m *Store) ListExpenses(_ context.Context, period domain.DateRange) ([]domain.Expense, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Expense
	for _, e := range m.expenses {
		if period.ContainsDate(e.ExpenseDate) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *Store) CreateExpense(_ context.Context, input domain.ExpenseInput) (*domain.Expense, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e := domain.Expense{ID: m.id(), Name: input.Name, Amount: input.Amount, ExpenseDate: input.ExpenseDate, Notes: input.Notes}
	m.expenses = append(m.expenses, e)
	return &e, nil
}

func (m *Store) ListInterests(_ context.Context, period domain.DateRange) ([]domain.InterestPayment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.InterestPayment
	for _, p := range m.interests {
		if period.ContainsDate(p.PaymentDate) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *Store) CreateInterest(_ context.Context, input domain.InterestInput) (*domain.InterestPayment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p := domain.InterestPayment{ID: m.id(), Name: input.Name, Amount: input.Amount, Source: input.Source, Creditor: input.Creditor, PaymentDate: input.PaymentDate}
	m.interests = append(m.interests, p)
	return &p, nil
}

func (m *Store) ListLosses(_ context.Context, period domain.DateRange) ([]domain.Loss, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Loss
	for _, l := range m.losses {
		if period.ContainsDate(l.LossDate) {
			out = append(out, l)
		}
	}
	return out, nil
}

func (m *Store) CreateLoss(_ context.Context, input domain.LossInput) (*domain.Loss, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l := domain.Loss{ID: m.id(), Name: input.Name, Amount: input.Amount, Reason: input.Reason, OrderID: input.OrderID, LossDate: input.LossDate}
	m.losses = append(m.losses, l)
	return &l, nil
}

func (m *Store) ListOrders(_ context.Context, period domain.DateRange) ([]domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.called("ListOrders")
	var out []domain.Order
	for _, o := range m.Orders {
		if o.Status.CountsAsRevenue() && period.Contains(o.CreatedAt) {
			out = append(out, o)
		}
	}
	return out, nil
}

// Cache is a map-backed cache.Store with generation-scoped entries.
type Cache struct {
	mu          sync.Mutex
	entries     map[string][]byte
	generation  int64
	invalidated int

	// BeforeSet runs ahead of every Set with the lock released.
	BeforeSet func()
}

func NewCache() *Cache {
	return &Cache{entries: map[string][]byte{}}
}

func (c *Cache) Invalidations() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.invalidated
}

func (c *Cache) Get(_ context.Context, key string) (cache.Lookup, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.entries[c.entryKey(c.generation, key)]
	return cache.Lookup{Value: v, Hit: ok, Generation: c.generation}, nil
}

func (c *Cache) Set(_ context.Context, generation int64, key string, value []byte, _ time.Duration) error {
	if c.BeforeSet != nil {
		c.BeforeSet()
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[c.entryKey(generation, key)] = value
	return nil
}

func (c *Cache) entryKey(generation int64, key string) string {
	return fmt.Sprintf("%d:%s", generation, key)
}

func (c *Cache) Invalidate(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.generation++
	c.invalidated++
	return nil
}
