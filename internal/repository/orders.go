package repository

import (
	"context"
	"fmt"

	"backoffice/internal/domain"
)

// ListOrders returns orders created inside period, each with its lines.
// Orders are read-only here; their lifecycle is owned elsewhere.
func (r *Repository) ListOrders(ctx context.Context, period domain.DateRange) ([]domain.Order, error) {
	from, to := rangeArgs(period)
	rows, err := r.pool.Query(ctx, `
		SELECT
			id,
			order_number,
			status,
			payment_method,
			subtotal::text,
			shipping_cost::text,
			discount::text,
			total::text,
			total_cost::text,
			profit::text,
			payment_fee::text,
			created_at
		FROM orders
		WHERE ($1::timestamptz IS NULL OR created_at >= $1::timestamptz)
			AND ($2::timestamptz IS NULL OR created_at < $2::timestamptz)
		ORDER BY created_at ASC, id ASC
	`, from, to)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	orders := make([]domain.Order, 0)
	index := map[int64]int{}
	for rows.Next() {
		var (
			o      domain.Order
			status string
			method string
		)
		if err := rows.Scan(
			&o.ID,
			&o.OrderNumber,
			&status,
			&method,
			&o.Subtotal,
			&o.ShippingCost,
			&o.Discount,
			&o.Total,
			&o.TotalCost,
			&o.Profit,
			&o.PaymentFee,
			&o.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		o.Status = domain.OrderStatus(status)
		o.PaymentMethod = domain.PaymentMethod(method)
		index[o.ID] = len(orders)
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate orders: %w", err)
	}
	if len(orders) == 0 {
		return orders, nil
	}

	ids := make([]int64, 0, len(orders))
	for _, o := range orders {
		ids = append(ids, o.ID)
	}
	itemRows, err := r.pool.Query(ctx, `
		SELECT
			id,
			order_id,
			product_id,
			product_name,
			product_price::text,
			product_cost::text,
			quantity,
			subtotal::text
		FROM order_items
		WHERE order_id = ANY($1)
		ORDER BY order_id, id
	`, ids)
	if err != nil {
		return nil, fmt.Errorf("list order items: %w", err)
	}
	defer itemRows.Close()

	for itemRows.Next() {
		var item domain.OrderItem
		if err := itemRows.Scan(
			&item.ID,
			&item.OrderID,
			&item.ProductID,
			&item.ProductName,
			&item.ProductPrice,
			&item.ProductCost,
			&item.Quantity,
			&item.Subtotal,
		); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		i := index[item.OrderID]
		orders[i].Items = append(orders[i].Items, item)
	}
	if err := itemRows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order items: %w", err)
	}
	return orders, nil
}
