package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"backoffice/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

const batchColumns = `
	b.id,
	b.batch_number,
	b.purchase_date,
	b.purchase_total_cost::text,
	b.shipping_cost::text,
	b.customs_fees::text,
	b.additional_fees::text,
	b.status,
	b.mailbox_tracking,
	b.notes,
	b.arrived_mailbox_at,
	b.shipped_to_colombia_at,
	b.delivered_at,
	b.created_at,
	b.updated_at`

func (r *Repository) ListBatches(ctx context.Context, filter domain.BatchListFilter) ([]domain.Batch, error) {
	from, to := dateArgs(filter.Purchased)
	rows, err := r.pool.Query(ctx, `
		SELECT`+batchColumns+`
		FROM batches b
		WHERE ($1 = '' OR b.status = $1)
			AND ($2::date IS NULL OR b.purchase_date >= $2::date)
			AND ($3::date IS NULL OR b.purchase_date < $3::date)
		ORDER BY b.purchase_date DESC, b.id DESC
	`, string(filter.Status), from, to)
	if err != nil {
		return nil, fmt.Errorf("list batches: %w", err)
	}
	defer rows.Close()

	batches := make([]domain.Batch, 0)
	for rows.Next() {
		batch, err := scanBatchRow(rows)
		if err != nil {
			return nil, fmt.Errorf("scan batch: %w", err)
		}
		batches = append(batches, batch)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate batches: %w", err)
	}

	if err := r.attachItems(ctx, r.pool, batches); err != nil {
		return nil, err
	}
	return batches, nil
}

func (r *Repository) GetBatch(ctx context.Context, id int64) (*domain.Batch, error) {
	return r.getBatch(ctx, r.pool, id, false)
}

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func (r *Repository) getBatch(ctx context.Context, q querier, id int64, lock bool) (*domain.Batch, error) {
	query := `
		SELECT` + batchColumns + `
		FROM batches b
		WHERE b.id = $1
	`
	if lock {
		query += " FOR UPDATE"
	}
	batch, err := scanBatchRow(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get batch %d: %w", id, err)
	}

	batches := []domain.Batch{batch}
	if err := r.attachItems(ctx, q, batches); err != nil {
		return nil, err
	}
	return &batches[0], nil
}

// attachItems loads the lines of every batch in one query, with each line's
// product snapshot and the units already drawn from it.
func (r *Repository) attachItems(ctx context.Context, q querier, batches []domain.Batch) error {
	if len(batches) == 0 {
		return nil
	}
	ids := make([]int64, 0, len(batches))
	index := make(map[int64]int, len(batches))
	for i := range batches {
		ids = append(ids, batches[i].ID)
		index[batches[i].ID] = i
		batches[i].Items = []domain.BatchItem{}
	}

	rows, err := q.Query(ctx, `
		SELECT
			bi.id,
			bi.batch_id,
			bi.product_id,
			bi.quantity,
			bi.unit_cost::text,
			bi.created_at,
			d.drawn,`+productColumns+`
		FROM batch_items bi
		JOIN products p ON p.id = bi.product_id
		LEFT JOIN (
			SELECT batch_item_id, SUM(quantity)::bigint AS drawn
			FROM inventory_draws
			GROUP BY batch_item_id
		) d ON d.batch_item_id = bi.id
		WHERE bi.batch_id = ANY($1)
		ORDER BY bi.batch_id, bi.id
	`, ids)
	if err != nil {
		return fmt.Errorf("list batch items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			item  domain.BatchItem
			drawn sql.NullInt64
		)
		if err := rows.Scan(
			&item.ID,
			&item.BatchID,
			&item.ProductID,
			&item.Quantity,
			&item.UnitCost,
			&item.CreatedAt,
			&drawn,
			&item.Product.ID,
			&item.Product.Name,
			&item.Product.Slug,
			&item.Product.Price,
			&item.Product.Cost,
			&item.Product.InStock,
			&item.Product.CreatedAt,
			&item.Product.UpdatedAt,
		); err != nil {
			return fmt.Errorf("scan batch item: %w", err)
		}
		if drawn.Valid {
			units := int(drawn.Int64)
			item.DrawnUnits = &units
		}
		i := index[item.BatchID]
		batches[i].Items = append(batches[i].Items, item)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate batch items: %w", err)
	}
	return nil
}

// NextBatchNumber returns LOT-YYYYMM-NNN where NNN follows the number of
// batches already purchased in that month.
func (r *Repository) NextBatchNumber(ctx context.Context, purchaseDate time.Time) (string, error) {
	monthStart := time.Date(purchaseDate.Year(), purchaseDate.Month(), 1, 0, 0, 0, 0, time.UTC)
	var count int
	if err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*)::int
		FROM batches
		WHERE purchase_date >= $1::date AND purchase_date < $2::date
	`, monthStart, monthStart.AddDate(0, 1, 0)).Scan(&count); err != nil {
		return "", fmt.Errorf("count batches for month: %w", err)
	}
	return domain.FormatBatchNumber(purchaseDate, count+1), nil
}

func (r *Repository) CreateBatch(ctx context.Context, input domain.BatchCreateInput) (*domain.Batch, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin create batch tx: %w", err)
	}
	defer tx.Rollback(ctx)

	var id int64
	if err := tx.QueryRow(ctx, `
		INSERT INTO batches (
			batch_number,
			purchase_date,
			purchase_total_cost,
			shipping_cost,
			customs_fees,
			additional_fees,
			status,
			mailbox_tracking,
			notes
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`,
		input.BatchNumber,
		input.PurchaseDate,
		input.PurchaseTotalCost.Decimal,
		input.ShippingCost,
		input.CustomsFees,
		input.AdditionalFees,
		string(domain.BatchStatusOrdered),
		input.MailboxTracking,
		input.Notes,
	).Scan(&id); err != nil {
		return nil, fmt.Errorf("insert batch: %w", err)
	}

	if err := insertItemsTx(ctx, tx, id, input.Items); err != nil {
		return nil, err
	}

	batch, err := r.getBatch(ctx, tx, id, false)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit create batch tx: %w", err)
	}
	return batch, nil
}

func insertItemsTx(ctx context.Context, tx pgx.Tx, batchID int64, items []domain.BatchItemInput) error {
	for _, item := range items {
		if _, err := tx.Exec(ctx, `
			INSERT INTO batch_items (batch_id, product_id, quantity, unit_cost)
			VALUES ($1, $2, $3, $4)
		`, batchID, item.ProductID, item.Quantity, item.UnitCost); err != nil {
			return fmt.Errorf("insert batch item for product %d: %w", item.ProductID, err)
		}
	}
	return nil
}

func (r *Repository) UpdateBatch(ctx context.Context, id int64, input domain.BatchPatchInput) (*domain.Batch, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin update batch tx: %w", err)
	}
	defer tx.Rollback(ctx)

	cmd, err := tx.Exec(ctx, `
		UPDATE batches
		SET
			purchase_total_cost = COALESCE($2::numeric, purchase_total_cost),
			shipping_cost = COALESCE($3::numeric, shipping_cost),
			customs_fees = COALESCE($4::numeric, customs_fees),
			additional_fees = COALESCE($5::numeric, additional_fees),
			mailbox_tracking = COALESCE($6, mailbox_tracking),
			notes = COALESCE($7, notes),
			updated_at = NOW()
		WHERE id = $1
	`,
		id,
		decimalArg(input.PurchaseTotalCost),
		decimalArg(input.ShippingCost),
		decimalArg(input.CustomsFees),
		decimalArg(input.AdditionalFees),
		input.MailboxTracking,
		input.Notes,
	)
	if err != nil {
		return nil, fmt.Errorf("update batch %d: %w", id, err)
	}
	if cmd.RowsAffected() == 0 {
		return nil, ErrNotFound
	}
	return r.finishTx(ctx, tx, id, "update batch")
}

func (r *Repository) UpdateBatchStatus(ctx context.Context, id int64, input domain.BatchStatusInput) (*domain.Batch, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin batch status tx: %w", err)
	}
	defer tx.Rollback(ctx)

	cmd, err := tx.Exec(ctx, `
		UPDATE batches
		SET
			status = $2,
			customs_fees = COALESCE($3::numeric, customs_fees),
			additional_fees = COALESCE($4::numeric, additional_fees),
			mailbox_tracking = COALESCE($5, mailbox_tracking),
			arrived_mailbox_at = COALESCE(arrived_mailbox_at, $6),
			shipped_to_colombia_at = COALESCE(shipped_to_colombia_at, $7),
			delivered_at = COALESCE(delivered_at, $8),
			updated_at = NOW()
		WHERE id = $1
	`,
		id,
		string(input.Status),
		decimalArg(input.CustomsFees),
		decimalArg(input.AdditionalFees),
		input.MailboxTracking,
		input.ArrivedMailboxAt,
		input.ShippedToColombiaAt,
		input.DeliveredAt,
	)
	if err != nil {
		return nil, fmt.Errorf("update batch %d status: %w", id, err)
	}
	if cmd.RowsAffected() == 0 {
		return nil, ErrNotFound
	}
	return r.finishTx(ctx, tx, id, "batch status")
}

func (r *Repository) DeleteBatch(ctx context.Context, id int64) error {
	cmd, err := r.pool.Exec(ctx, "DELETE FROM batches WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete batch %d: %w", id, err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repository) AddItems(ctx context.Context, batchID int64, items []domain.BatchItemInput) (*domain.Batch, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin add items tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := lockBatch(ctx, tx, batchID); err != nil {
		return nil, err
	}
	if err := insertItemsTx(ctx, tx, batchID, items); err != nil {
		return nil, err
	}
	return r.finishTx(ctx, tx, batchID, "add items")
}

// RemoveItems deletes the given lines. check receives the lines as read
// under the batch row lock and may veto the removal; historical orders are
// not touched.
func (r *Repository) RemoveItems(ctx context.Context, batchID int64, itemIDs []int64, check func([]domain.BatchItem) error) (*domain.Batch, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin remove items tx: %w", err)
	}
	defer tx.Rollback(ctx)

	current, err := r.getBatch(ctx, tx, batchID, true)
	if err != nil {
		return nil, err
	}
	if check != nil {
		if err := check(current.Items); err != nil {
			return nil, err
		}
	}
	if _, err := tx.Exec(ctx, `
		DELETE FROM batch_items
		WHERE batch_id = $1 AND id = ANY($2)
	`, batchID, itemIDs); err != nil {
		return nil, fmt.Errorf("remove items from batch %d: %w", batchID, err)
	}
	return r.finishTx(ctx, tx, batchID, "remove items")
}

func (r *Repository) UpdateItemQuantity(ctx context.Context, batchID, itemID int64, quantity int) (*domain.Batch, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin item quantity tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := lockBatch(ctx, tx, batchID); err != nil {
		return nil, err
	}
	cmd, err := tx.Exec(ctx, `
		UPDATE batch_items SET quantity = $3
		WHERE batch_id = $1 AND id = $2
	`, batchID, itemID, quantity)
	if err != nil {
		return nil, fmt.Errorf("update item %d quantity: %w", itemID, err)
	}
	if cmd.RowsAffected() == 0 {
		return nil, ErrNotFound
	}
	return r.finishTx(ctx, tx, batchID, "item quantity")
}

// MoveItem re-parents a line to another batch, optionally re-pricing it.
// It returns the destination batch.
func (r *Repository) MoveItem(ctx context.Context, fromBatchID, itemID int64, input domain.MoveItemInput) (*domain.Batch, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin move item tx: %w", err)
	}
	defer tx.Rollback(ctx)

	// Lock in id order so concurrent opposite moves cannot deadlock.
	first, second := fromBatchID, input.ToBatchID
	if second < first {
		first, second = second, first
	}
	for _, id := range []int64{first, second} {
		if err := lockBatch(ctx, tx, id); err != nil {
			if errors.Is(err, ErrNotFound) {
				return nil, &BatchNotFoundError{BatchID: id}
			}
			return nil, err
		}
	}

	cmd, err := tx.Exec(ctx, `
		UPDATE batch_items
		SET
			batch_id = $3,
			unit_cost = COALESCE($4::numeric, unit_cost)
		WHERE batch_id = $1 AND id = $2
	`, fromBatchID, itemID, input.ToBatchID, decimalArg(input.UnitCost))
	if err != nil {
		return nil, fmt.Errorf("move item %d: %w", itemID, err)
	}
	if cmd.RowsAffected() == 0 {
		return nil, ErrNotFound
	}
	return r.finishTx(ctx, tx, input.ToBatchID, "move item")
}

// RecordDraw consumes units of a batch line, optionally for an order.
func (r *Repository) RecordDraw(ctx context.Context, batchID, itemID int64, input domain.DrawInput) (*domain.InventoryDraw, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin draw tx: %w", err)
	}
	defer tx.Rollback(ctx)

	// Same lock order as the other line mutations: batch row, then line.
	if err := lockBatch(ctx, tx, batchID); err != nil {
		return nil, err
	}
	var quantity int
	err = tx.QueryRow(ctx, `
		SELECT quantity
		FROM batch_items
		WHERE batch_id = $1 AND id = $2
		FOR UPDATE
	`, batchID, itemID).Scan(&quantity)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load item %d for draw: %w", itemID, err)
	}

	var drawn int
	if err := tx.QueryRow(ctx, `
		SELECT COALESCE(SUM(quantity), 0)::int
		FROM inventory_draws
		WHERE batch_item_id = $1
	`, itemID).Scan(&drawn); err != nil {
		return nil, fmt.Errorf("sum draws for item %d: %w", itemID, err)
	}
	if drawn+input.Quantity > quantity {
		return nil, fmt.Errorf("%w: %d of %d units already drawn", ErrInsufficientUnits, drawn, quantity)
	}

	var (
		draw    domain.InventoryDraw
		orderID sql.NullInt64
	)
	if err := tx.QueryRow(ctx, `
		INSERT INTO inventory_draws (batch_item_id, order_id, quantity)
		VALUES ($1, $2, $3)
		RETURNING id, batch_item_id, order_id, quantity, drawn_at
	`, itemID, input.OrderID, input.Quantity).Scan(
		&draw.ID,
		&draw.BatchItemID,
		&orderID,
		&draw.Quantity,
		&draw.DrawnAt,
	); err != nil {
		return nil, fmt.Errorf("insert draw: %w", err)
	}
	draw.OrderID = nullableInt64(orderID)

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit draw tx: %w", err)
	}
	return &draw, nil
}

func lockBatch(ctx context.Context, tx pgx.Tx, id int64) error {
	var locked int64
	err := tx.QueryRow(ctx, "SELECT id FROM batches WHERE id = $1 FOR UPDATE", id).Scan(&locked)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("lock batch %d: %w", id, err)
	}
	return nil
}

// finishTx touches the batch, reloads it inside tx and commits.
func (r *Repository) finishTx(ctx context.Context, tx pgx.Tx, id int64, op string) (*domain.Batch, error) {
	if _, err := tx.Exec(ctx, "UPDATE batches SET updated_at = NOW() WHERE id = $1", id); err != nil {
		return nil, fmt.Errorf("%s: touch batch %d: %w", op, id, err)
	}
	batch, err := r.getBatch(ctx, tx, id, false)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit %s tx: %w", op, err)
	}
	return batch, nil
}

func decimalArg(value *decimal.Decimal) any {
	if value == nil {
		return nil
	}
	return *value
}

func scanBatchRow(row pgx.Row) (domain.Batch, error) {
	var (
		batch     domain.Batch
		status    string
		tracking  sql.NullString
		notes     sql.NullString
		arrived   sql.NullTime
		shipped   sql.NullTime
		delivered sql.NullTime
	)
	if err := row.Scan(
		&batch.ID,
		&batch.BatchNumber,
		&batch.PurchaseDate,
		&batch.PurchaseTotalCost,
		&batch.ShippingCost,
		&batch.CustomsFees,
		&batch.AdditionalFees,
		&status,
		&tracking,
		&notes,
		&arrived,
		&shipped,
		&delivered,
		&batch.CreatedAt,
		&batch.UpdatedAt,
	); err != nil {
		return domain.Batch{}, err
	}
	batch.Status = domain.BatchStatus(status)
	batch.MailboxTracking = nullableString(tracking)
	batch.Notes = nullableString(notes)
	batch.ArrivedMailboxAt = nullableTime(arrived)
	batch.ShippedToColombiaAt = nullableTime(shipped)
	batch.DeliveredAt = nullableTime(delivered)
	return batch, nil
}
