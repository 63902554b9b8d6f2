package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"backoffice/internal/apperr"
	"backoffice/internal/costing"
	"backoffice/internal/domain"
	"backoffice/internal/repository"
)

func (s *Service) ListBatches(ctx context.Context, filter domain.BatchListFilter) ([]costing.BatchReport, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, apperr.Validation("invalid status filter", map[string]string{
			"status": fmt.Sprintf("must be one of %s", strings.Join(batchStatusNames(), ", ")),
		})
	}
	batches, err := s.store.ListBatches(ctx, filter)
	if err != nil {
		return nil, err
	}
	return costing.EvaluateAll(batches), nil
}

func (s *Service) GetBatch(ctx context.Context, id int64) (*domain.Batch, error) {
	batch, err := s.store.GetBatch(ctx, id)
	if err != nil {
		return nil, storeErr(err, "batch", id)
	}
	return batch, nil
}

// EvaluateBatch returns the batch with its allocation, summary and metrics.
func (s *Service) EvaluateBatch(ctx context.Context, id int64) (costing.BatchReport, error) {
	batch, err := s.GetBatch(ctx, id)
	if err != nil {
		return costing.BatchReport{}, err
	}
	return costing.Evaluate(*batch), nil
}

func (s *Service) CreateBatch(ctx context.Context, input domain.BatchCreateInput) (costing.BatchReport, error) {
	if !input.PurchaseTotalCost.Valid {
		return costing.BatchReport{}, apperr.Validation("validation failed", map[string]string{
			"purchase_total_cost": "is required",
		})
	}
	if err := s.validateStruct(input); err != nil {
		return costing.BatchReport{}, err
	}
	if err := s.checkProducts(ctx, input.Items); err != nil {
		return costing.BatchReport{}, err
	}

	input.BatchNumber = strings.TrimSpace(input.BatchNumber)
	if input.BatchNumber == "" {
		number, err := s.store.NextBatchNumber(ctx, input.PurchaseDate)
		if err != nil {
			return costing.BatchReport{}, err
		}
		input.BatchNumber = number
	}
	input.MailboxTracking = normalizeNullable(input.MailboxTracking)
	input.Notes = normalizeNullable(input.Notes)

	batch, err := s.store.CreateBatch(ctx, input)
	if err != nil {
		return costing.BatchReport{}, err
	}
	s.invalidateReports(ctx)

	logCtx := s.log.WithFields(s.log.WithBatchID(ctx, batch.ID), map[string]any{
		"batch_number": batch.BatchNumber,
		"item_count":   len(batch.Items),
	})
	s.log.Info(logCtx, "batch.created")
	return costing.Evaluate(*batch), nil
}

func (s *Service) UpdateBatch(ctx context.Context, id int64, input domain.BatchPatchInput) (costing.BatchReport, error) {
	if err := s.validateStruct(input); err != nil {
		return costing.BatchReport{}, err
	}
	input.MailboxTracking = normalizeNullable(input.MailboxTracking)
	input.Notes = normalizeNullable(input.Notes)

	batch, err := s.store.UpdateBatch(ctx, id, input)
	if err != nil {
		return costing.BatchReport{}, storeErr(err, "batch", id)
	}
	s.invalidateReports(ctx)
	s.log.Info(s.log.WithBatchID(ctx, id), "batch.updated")
	return costing.Evaluate(*batch), nil
}

// UpdateStatus moves the batch to any status. The first time a batch enters
// in_mailbox, in_transit or delivered the matching timestamp is recorded.
func (s *Service) UpdateStatus(ctx context.Context, id int64, input domain.BatchStatusInput) (costing.BatchReport, error) {
	if err := s.validateStruct(input); err != nil {
		return costing.BatchReport{}, err
	}

	now := s.now()
	input.ArrivedMailboxAt, input.ShippedToColombiaAt, input.DeliveredAt = nil, nil, nil
	switch input.Status {
	case domain.BatchStatusInMailbox:
		input.ArrivedMailboxAt = &now
	case domain.BatchStatusInTransit:
		input.ShippedToColombiaAt = &now
	case domain.BatchStatusDelivered:
		input.DeliveredAt = &now
	}
	input.MailboxTracking = normalizeNullable(input.MailboxTracking)

	batch, err := s.store.UpdateBatchStatus(ctx, id, input)
	if err != nil {
		return costing.BatchReport{}, storeErr(err, "batch", id)
	}
	s.invalidateReports(ctx)
	s.log.Info(s.log.WithField(s.log.WithBatchID(ctx, id), "status", string(input.Status)), "batch.status_changed")
	return costing.Evaluate(*batch), nil
}

func (s *Service) DeleteBatch(ctx context.Context, id int64) error {
	if err := s.store.DeleteBatch(ctx, id); err != nil {
		return storeErr(err, "batch", id)
	}
	s.invalidateReports(ctx)
	s.log.Info(s.log.WithBatchID(ctx, id), "batch.deleted")
	return nil
}

func (s *Service) AddItems(ctx context.Context, batchID int64, items []domain.BatchItemInput) (costing.BatchReport, error) {
	if len(items) == 0 {
		return costing.BatchReport{}, apperr.Validation("validation failed", map[string]string{"items": "is required"})
	}
	if err := s.validateStruct(struct {
		Items []domain.BatchItemInput `json:"items" validate:"dive"`
	}{items}); err != nil {
		return costing.BatchReport{}, err
	}
	if err := s.checkProducts(ctx, items); err != nil {
		return costing.BatchReport{}, err
	}

	batch, err := s.store.AddItems(ctx, batchID, items)
	if err != nil {
		return costing.BatchReport{}, storeErr(err, "batch", batchID)
	}
	s.invalidateReports(ctx)
	s.log.Info(s.log.WithField(s.log.WithBatchID(ctx, batchID), "item_count", len(items)), "batch.items_added")
	return costing.Evaluate(*batch), nil
}

// RemoveItems deletes lines from a batch. Lines with sold units are refused
// with SOLD_ITEMS_PROTECTED unless force is set.
func (s *Service) RemoveItems(ctx context.Context, batchID int64, itemIDs []int64, force bool) (costing.BatchReport, error) {
	current, err := s.GetBatch(ctx, batchID)
	if err != nil {
		return costing.BatchReport{}, err
	}
	if err := costing.CheckRemoval(current.Items, itemIDs, force); err != nil {
		return costing.BatchReport{}, err
	}

	// Draws may land between the read above and the delete; the store
	// re-runs the guard on the locked lines.
	var sold []int64
	batch, err := s.store.RemoveItems(ctx, batchID, itemIDs, func(items []domain.BatchItem) error {
		if err := costing.CheckRemoval(items, itemIDs, force); err != nil {
			return err
		}
		sold = costing.SoldAmong(items, itemIDs)
		return nil
	})
	if err != nil {
		return costing.BatchReport{}, storeErr(err, "batch", batchID)
	}
	s.invalidateReports(ctx)

	logCtx := s.log.WithBatchID(ctx, batchID)
	if len(sold) > 0 {
		s.log.Warn(s.log.WithField(logCtx, "sold_item_ids", sold), "batch.items_force_removed")
	}
	s.log.Info(s.log.WithField(logCtx, "item_ids", itemIDs), "batch.items_removed")
	return costing.Evaluate(*batch), nil
}

func (s *Service) UpdateItemQuantity(ctx context.Context, batchID, itemID int64, quantity int) (costing.BatchReport, error) {
	if quantity <= 0 {
		return costing.BatchReport{}, apperr.Validation("validation failed", map[string]string{"quantity": "must be greater than 0"})
	}
	current, err := s.GetBatch(ctx, batchID)
	if err != nil {
		return costing.BatchReport{}, err
	}
	item, ok := current.FindItem(itemID)
	if !ok {
		return costing.BatchReport{}, apperr.NotFound("batch item", itemID)
	}
	if item.DrawnUnits != nil && quantity < *item.DrawnUnits {
		return costing.BatchReport{}, apperr.Validation("validation failed", map[string]string{
			"quantity": fmt.Sprintf("must be at least %d (units already drawn)", *item.DrawnUnits),
		})
	}

	batch, err := s.store.UpdateItemQuantity(ctx, batchID, itemID, quantity)
	if err != nil {
		return costing.BatchReport{}, storeErr(err, "batch item", itemID)
	}
	s.invalidateReports(ctx)
	s.log.Info(s.log.WithFields(s.log.WithBatchID(ctx, batchID), map[string]any{
		"item_id":  itemID,
		"quantity": quantity,
	}), "batch.item_quantity_changed")
	return costing.Evaluate(*batch), nil
}

// MoveItem re-parents a line to another batch and returns the destination.
func (s *Service) MoveItem(ctx context.Context, batchID, itemID int64, input domain.MoveItemInput) (costing.BatchReport, error) {
	if err := s.validateStruct(input); err != nil {
		return costing.BatchReport{}, err
	}
	if input.ToBatchID == batchID {
		return costing.BatchReport{}, apperr.Validation("validation failed", map[string]string{
			"to_batch_id": "must differ from the current batch",
		})
	}

	batch, err := s.store.MoveItem(ctx, batchID, itemID, input)
	if err != nil {
		var missing *repository.BatchNotFoundError
		if errors.As(err, &missing) {
			return costing.BatchReport{}, storeErr(err, "batch", missing.BatchID)
		}
		return costing.BatchReport{}, storeErr(err, "batch item", itemID)
	}
	s.invalidateReports(ctx)
	s.log.Info(s.log.WithFields(s.log.WithBatchID(ctx, batchID), map[string]any{
		"item_id":     itemID,
		"to_batch_id": input.ToBatchID,
	}), "batch.item_moved")
	return costing.Evaluate(*batch), nil
}

// RecordDraw consumes units from a batch line into the draw ledger.
func (s *Service) RecordDraw(ctx context.Context, batchID, itemID int64, input domain.DrawInput) (*domain.InventoryDraw, error) {
	if err := s.validateStruct(input); err != nil {
		return nil, err
	}
	draw, err := s.store.RecordDraw(ctx, batchID, itemID, input)
	if err != nil {
		return nil, storeErr(err, "batch item", itemID)
	}
	s.invalidateReports(ctx)
	s.log.Info(s.log.WithFields(s.log.WithBatchID(ctx, batchID), map[string]any{
		"item_id":  itemID,
		"quantity": input.Quantity,
	}), "batch.units_drawn")
	return draw, nil
}

// ResolveImportRows maps spreadsheet rows onto product ids.
func (s *Service) ResolveImportRows(ctx context.Context, rows []domain.BatchItemImportRow) ([]domain.BatchItemInput, error) {
	if len(rows) == 0 {
		return nil, apperr.Validation("import file has no data rows", nil)
	}
	names := make([]string, 0, len(rows))
	for _, row := range rows {
		names = append(names, row.Product)
	}
	ids, err := s.store.ProductIDsByName(ctx, names)
	if err != nil {
		return nil, err
	}

	items := make([]domain.BatchItemInput, 0, len(rows))
	unknown := map[string]string{}
	for _, row := range rows {
		id, ok := ids[strings.ToLower(strings.TrimSpace(row.Product))]
		if !ok {
			unknown[fmt.Sprintf("row %d", row.Row)] = fmt.Sprintf("unknown product %q", row.Product)
			continue
		}
		items = append(items, domain.BatchItemInput{ProductID: id, Quantity: row.Quantity, UnitCost: row.UnitCost})
	}
	if len(unknown) > 0 {
		return nil, apperr.Validation("import references unknown products", unknown)
	}
	return items, nil
}

// ImportItems adds spreadsheet rows to an existing batch.
func (s *Service) ImportItems(ctx context.Context, batchID int64, rows []domain.BatchItemImportRow) (costing.BatchReport, error) {
	items, err := s.ResolveImportRows(ctx, rows)
	if err != nil {
		return costing.BatchReport{}, err
	}
	return s.AddItems(ctx, batchID, items)
}

func (s *Service) checkProducts(ctx context.Context, items []domain.BatchItemInput) error {
	missing := map[string]string{}
	seen := map[int64]bool{}
	for i, item := range items {
		if known, ok := seen[item.ProductID]; ok {
			if !known {
				missing[fmt.Sprintf("items[%d].product_id", i)] = "unknown product"
			}
			continue
		}
		_, err := s.store.GetProduct(ctx, item.ProductID)
		switch {
		case err == nil:
			seen[item.ProductID] = true
		case errors.Is(err, repository.ErrNotFound):
			seen[item.ProductID] = false
			missing[fmt.Sprintf("items[%d].product_id", i)] = "unknown product"
		default:
			return err
		}
	}
	if len(missing) > 0 {
		return apperr.Validation("validation failed", missing)
	}
	return nil
}
