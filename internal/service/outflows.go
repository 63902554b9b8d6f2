package service

import (
	"context"
	"strings"

	"backoffice/internal/domain"
)

func (s *Service) ListExpenses(ctx context.Context, period domain.DateRange) ([]domain.Expense, error) {
	return s.store.ListExpenses(ctx, period)
}

func (s *Service) CreateExpense(ctx context.Context, input domain.ExpenseInput) (*domain.Expense, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Notes = normalizeNullable(input.Notes)
	if err := s.validateStruct(input); err != nil {
		return nil, err
	}
	expense, err := s.store.CreateExpense(ctx, input)
	if err != nil {
		return nil, err
	}
	s.recordOutflow(ctx, "expense", expense.ID)
	return expense, nil
}

func (s *Service) ListInterests(ctx context.Context, period domain.DateRange) ([]domain.InterestPayment, error) {
	return s.store.ListInterests(ctx, period)
}

func (s *Service) CreateInterest(ctx context.Context, input domain.InterestInput) (*domain.InterestPayment, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Source = strings.TrimSpace(input.Source)
	input.Creditor = normalizeNullable(input.Creditor)
	input.Notes = normalizeNullable(input.Notes)
	if err := s.validateStruct(input); err != nil {
		return nil, err
	}
	payment, err := s.store.CreateInterest(ctx, input)
	if err != nil {
		return nil, err
	}
	s.recordOutflow(ctx, "interest", payment.ID)
	return payment, nil
}

func (s *Service) ListLosses(ctx context.Context, period domain.DateRange) ([]domain.Loss, error) {
	return s.store.ListLosses(ctx, period)
}

func (s *Service) CreateLoss(ctx context.Context, input domain.LossInput) (*domain.Loss, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Reason = strings.TrimSpace(input.Reason)
	input.Notes = normalizeNullable(input.Notes)
	if err := s.validateStruct(input); err != nil {
		return nil, err
	}
	loss, err := s.store.CreateLoss(ctx, input)
	if err != nil {
		return nil, err
	}
	s.recordOutflow(ctx, "loss", loss.ID)
	return loss, nil
}

func (s *Service) recordOutflow(ctx context.Context, kind string, id int64) {
	s.invalidateReports(ctx)
	s.log.Info(s.log.WithFields(ctx, map[string]any{"kind": kind, "id": id}), "outflow.created")
}
