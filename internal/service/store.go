package service

import (
	"context"
	"time"

	"backoffice/internal/domain"
)

type BatchStore interface {
	ListBatches(ctx context.Context, filter domain.BatchListFilter) ([]domain.Batch, error)
	GetBatch(ctx context.Context, id int64) (*domain.Batch, error)
	NextBatchNumber(ctx context.Context, purchaseDate time.Time) (string, error)
	CreateBatch(ctx context.Context, input domain.BatchCreateInput) (*domain.Batch, error)
	UpdateBatch(ctx context.Context, id int64, input domain.BatchPatchInput) (*domain.Batch, error)
	UpdateBatchStatus(ctx context.Context, id int64, input domain.BatchStatusInput) (*domain.Batch, error)
	DeleteBatch(ctx context.Context, id int64) error
	AddItems(ctx context.Context, batchID int64, items []domain.BatchItemInput) (*domain.Batch, error)
	// RemoveItems runs check against the locked lines before deleting.
	RemoveItems(ctx context.Context, batchID int64, itemIDs []int64, check func([]domain.BatchItem) error) (*domain.Batch, error)
	UpdateItemQuantity(ctx context.Context, batchID, itemID int64, quantity int) (*domain.Batch, error)
	MoveItem(ctx context.Context, fromBatchID, itemID int64, input domain.MoveItemInput) (*domain.Batch, error)
	RecordDraw(ctx context.Context, batchID, itemID int64, input domain.DrawInput) (*domain.InventoryDraw, error)
}

type ProductStore interface {
	ListProducts(ctx context.Context, filter domain.ProductListFilter) ([]domain.Product, error)
	GetProduct(ctx context.Context, id int64) (*domain.Product, error)
	ProductIDsByName(ctx context.Context, names []string) (map[string]int64, error)
}

type OutflowStore interface {
	ListExpenses(ctx context.Context, period domain.DateRange) ([]domain.Expense, error)
	CreateExpense(ctx context.Context, input domain.ExpenseInput) (*domain.Expense, error)
	ListInterests(ctx context.Context, period domain.DateRange) ([]domain.InterestPayment, error)
	CreateInterest(ctx context.Context, input domain.InterestInput) (*domain.InterestPayment, error)
	ListLosses(ctx context.Context, period domain.DateRange) ([]domain.Loss, error)
	CreateLoss(ctx context.Context, input domain.LossInput) (*domain.Loss, error)
}

type OrderStore interface {
	ListOrders(ctx context.Context, period domain.DateRange) ([]domain.Order, error)
}

// Store is everything the service reads and writes; *repository.Repository implements it.
type Store interface {
	BatchStore
	ProductStore
	OutflowStore
	OrderStore
}
