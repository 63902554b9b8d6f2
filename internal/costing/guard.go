package costing

import (
	"fmt"

	"backoffice/internal/apperr"
	"backoffice/internal/domain"
)

// CheckRemoval decides whether itemIDs may be removed from a batch whose
// current lines are items. Lines with sold units block the removal unless
// force is set.
func CheckRemoval(items []domain.BatchItem, itemIDs []int64, force bool) error {
	if len(itemIDs) == 0 {
		return apperr.Validation("no items selected", map[string]string{"item_ids": "is required"})
	}

	byID := make(map[int64]domain.BatchItem, len(items))
	for _, item := range items {
		byID[item.ID] = item
	}

	var blocked []int64
	seen := make(map[int64]struct{}, len(itemIDs))
	for _, id := range itemIDs {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}

		item, ok := byID[id]
		if !ok {
			return apperr.New(apperr.CodeNotFound, fmt.Sprintf("batch item %d not found", id))
		}
		if item.IsSold() {
			blocked = append(blocked, id)
		}
	}

	if len(blocked) > 0 && !force {
		return apperr.SoldItemsProtected(blocked)
	}
	return nil
}

// SoldAmong returns the ids from itemIDs whose lines already sold units.
func SoldAmong(items []domain.BatchItem, itemIDs []int64) []int64 {
	wanted := make(map[int64]struct{}, len(itemIDs))
	for _, id := range itemIDs {
		wanted[id] = struct{}{}
	}
	var sold []int64
	for _, item := range items {
		if _, ok := wanted[item.ID]; ok && item.IsSold() {
			sold = append(sold, item.ID)
		}
	}
	return sold
}
