package repository

import (
	"context"
	"database/sql"
	"fmt"

	"backoffice/internal/domain"
)

func (r *Repository) ListExpenses(ctx context.Context, period domain.DateRange) ([]domain.Expense, error) {
	from, to := dateArgs(period)
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, amount::text, expense_date, notes, created_at
		FROM expenses
		WHERE ($1::date IS NULL OR expense_date >= $1::date)
			AND ($2::date IS NULL OR expense_date < $2::date)
		ORDER BY expense_date DESC, id DESC
	`, from, to)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	defer rows.Close()

	list := make([]domain.Expense, 0)
	for rows.Next() {
		var (
			e     domain.Expense
			notes sql.NullString
		)
		if err := rows.Scan(&e.ID, &e.Name, &e.Amount, &e.ExpenseDate, &notes, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		e.Notes = nullableString(notes)
		list = append(list, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate expenses: %w", err)
	}
	return list, nil
}

func (r *Repository) CreateExpense(ctx context.Context, input domain.ExpenseInput) (*domain.Expense, error) {
	var (
		e     domain.Expense
		notes sql.NullString
	)
	if err := r.pool.QueryRow(ctx, `
		INSERT INTO expenses (name, amount, expense_date, notes)
		VALUES ($1, $2, $3, $4)
		RETURNING id, name, amount::text, expense_date, notes, created_at
	`, input.Name, input.Amount, input.ExpenseDate, input.Notes).Scan(
		&e.ID, &e.Name, &e.Amount, &e.ExpenseDate, &notes, &e.CreatedAt,
	); err != nil {
		return nil, fmt.Errorf("create expense: %w", err)
	}
	e.Notes = nullableString(notes)
	return &e, nil
}

func (r *Repository) ListInterests(ctx context.Context, period domain.DateRange) ([]domain.InterestPayment, error) {
	from, to := dateArgs(period)
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, amount::text, source, creditor, payment_date, notes, created_at
		FROM interest_payments
		WHERE ($1::date IS NULL OR payment_date >= $1::date)
			AND ($2::date IS NULL OR payment_date < $2::date)
		ORDER BY payment_date DESC, id DESC
	`, from, to)
	if err != nil {
		return nil, fmt.Errorf("list interest payments: %w", err)
	}
	defer rows.Close()

	list := make([]domain.InterestPayment, 0)
	for rows.Next() {
		var (
			p        domain.InterestPayment
			creditor sql.NullString
			notes    sql.NullString
		)
		if err := rows.Scan(&p.ID, &p.Name, &p.Amount, &p.Source, &creditor, &p.PaymentDate, &notes, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan interest payment: %w", err)
		}
		p.Creditor = nullableString(creditor)
		p.Notes = nullableString(notes)
		list = append(list, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate interest payments: %w", err)
	}
	return list, nil
}

func (r *Repository) CreateInterest(ctx context.Context, input domain.InterestInput) (*domain.InterestPayment, error) {
	var (
		p        domain.InterestPayment
		creditor sql.NullString
		notes    sql.NullString
	)
	if err := r.pool.QueryRow(ctx, `
		INSERT INTO interest_payments (name, amount, source, creditor, payment_date, notes)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, name, amount::text, source, creditor, payment_date, notes, created_at
	`, input.Name, input.Amount, input.Source, input.Creditor, input.PaymentDate, input.Notes).Scan(
		&p.ID, &p.Name, &p.Amount, &p.Source, &creditor, &p.PaymentDate, &notes, &p.CreatedAt,
	); err != nil {
		return nil, fmt.Errorf("create interest payment: %w", err)
	}
	p.Creditor = nullableString(creditor)
	p.Notes = nullableString(notes)
	return &p, nil
}

func (r *Repository) ListLosses(ctx context.Context, period domain.DateRange) ([]domain.Loss, error) {
	from, to := dateArgs(period)
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, amount::text, reason, order_id, loss_date, notes, created_at
		FROM losses
		WHERE ($1::date IS NULL OR loss_date >= $1::date)
			AND ($2::date IS NULL OR loss_date < $2::date)
		ORDER BY loss_date DESC, id DESC
	`, from, to)
	if err != nil {
		return nil, fmt.Errorf("list losses: %w", err)
	}
	defer rows.Close()

	list := make([]domain.Loss, 0)
	for rows.Next() {
		var (
			l       domain.Loss
			orderID sql.NullInt64
			notes   sql.NullString
		)
		if err := rows.Scan(&l.ID, &l.Name, &l.Amount, &l.Reason, &orderID, &l.LossDate, &notes, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan loss: %w", err)
		}
		l.OrderID = nullableInt64(orderID)
		l.Notes = nullableString(notes)
		list = append(list, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate losses: %w", err)
	}
	return list, nil
}

func (r *Repository) CreateLoss(ctx context.Context, input domain.LossInput) (*domain.Loss, error) {
	var (
		l       domain.Loss
		orderID sql.NullInt64
		notes   sql.NullString
	)
	if err := r.pool.QueryRow(ctx, `
		INSERT INTO losses (name, amount, reason, order_id, loss_date, notes)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, name, amount::text, reason, order_id, loss_date, notes, created_at
	`, input.Name, input.Amount, input.Reason, input.OrderID, input.LossDate, input.Notes).Scan(
		&l.ID, &l.Name, &l.Amount, &l.Reason, &orderID, &l.LossDate, &notes, &l.CreatedAt,
	); err != nil {
		return nil, fmt.Errorf("create loss: %w", err)
	}
	l.OrderID = nullableInt64(orderID)
	l.Notes = nullableString(notes)
	return &l, nil
}
