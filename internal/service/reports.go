package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"backoffice/internal/apperr"
	"backoffice/internal/costing"
	"backoffice/internal/domain"
	"backoffice/internal/reporting"
)

const maxReportYear = 9999

// PortfolioSummary aggregates every batch, all outflows and all finalized
// orders on record.
func (s *Service) PortfolioSummary(ctx context.Context) (reporting.PortfolioSummary, error) {
	return cachedReport(ctx, s, "portfolio", func(ctx context.Context) (reporting.PortfolioSummary, error) {
		batches, err := s.store.ListBatches(ctx, domain.BatchListFilter{})
		if err != nil {
			return reporting.PortfolioSummary{}, err
		}
		outflows, err := s.loadOutflows(ctx, domain.DateRange{})
		if err != nil {
			return reporting.PortfolioSummary{}, err
		}
		orders, err := s.store.ListOrders(ctx, domain.DateRange{})
		if err != nil {
			return reporting.PortfolioSummary{}, err
		}
		return reporting.Portfolio(costing.EvaluateAll(batches), outflows, orders), nil
	})
}

func (s *Service) MonthlySummary(ctx context.Context, year int) (reporting.MonthlySummary, error) {
	year, err := s.resolveYear(year)
	if err != nil {
		return reporting.MonthlySummary{}, err
	}
	return cachedReport(ctx, s, fmt.Sprintf("monthly:%d", year), func(ctx context.Context) (reporting.MonthlySummary, error) {
		in, err := s.loadPeriodInput(ctx, year)
		if err != nil {
			return reporting.MonthlySummary{}, err
		}
		return reporting.Monthly(year, s.loc, in), nil
	})
}

func (s *Service) FinancialSummary(ctx context.Context, year int) (reporting.FinancialSummary, error) {
	year, err := s.resolveYear(year)
	if err != nil {
		return reporting.FinancialSummary{}, err
	}
	return cachedReport(ctx, s, fmt.Sprintf("annual:%d", year), func(ctx context.Context) (reporting.FinancialSummary, error) {
		in, err := s.loadPeriodInput(ctx, year)
		if err != nil {
			return reporting.FinancialSummary{}, err
		}
		return reporting.Annual(year, s.loc, in), nil
	})
}

// resolveYear defaults a zero year to the current one in the report zone.
func (s *Service) resolveYear(year int) (int, error) {
	if year == 0 {
		return s.now().In(s.loc).Year(), nil
	}
	if year < 1 || year > maxReportYear {
		return 0, apperr.Validation("invalid year", map[string]string{"year": fmt.Sprintf("must be between 1 and %d", maxReportYear)})
	}
	return year, nil
}

func (s *Service) loadPeriodInput(ctx context.Context, year int) (reporting.PeriodInput, error) {
	period := domain.YearRange(year, s.loc)
	orders, err := s.store.ListOrders(ctx, period)
	if err != nil {
		return reporting.PeriodInput{}, err
	}
	outflows, err := s.loadOutflows(ctx, period)
	if err != nil {
		return reporting.PeriodInput{}, err
	}
	batches, err := s.store.ListBatches(ctx, domain.BatchListFilter{Purchased: period})
	if err != nil {
		return reporting.PeriodInput{}, err
	}
	return reporting.PeriodInput{Orders: orders, Outflows: outflows, Batches: batches}, nil
}

func (s *Service) loadOutflows(ctx context.Context, period domain.DateRange) (reporting.Outflows, error) {
	expenses, err := s.store.ListExpenses(ctx, period)
	if err != nil {
		return reporting.Outflows{}, err
	}
	interests, err := s.store.ListInterests(ctx, period)
	if err != nil {
		return reporting.Outflows{}, err
	}
	losses, err := s.store.ListLosses(ctx, period)
	if err != nil {
		return reporting.Outflows{}, err
	}
	return reporting.Outflows{Expenses: expenses, Interests: interests, Losses: losses}, nil
}

// cachedReport serves a report from the cache, computing and storing it on a
// miss. The payload is written under the generation read before computing.
// Cache failures fall through to a fresh computation.
func cachedReport[T any](ctx context.Context, s *Service, key string, compute func(context.Context) (T, error)) (T, error) {
	logCtx := s.log.WithField(ctx, "report", key)
	lookup, err := s.cache.Get(ctx, key)
	cacheable := err == nil
	if err != nil {
		s.log.Warn(s.log.WithField(logCtx, "error", err.Error()), "report.cache.read_failed")
	} else if lookup.Hit {
		var cached T
		if err := json.Unmarshal(lookup.Value, &cached); err == nil {
			return cached, nil
		}
		s.log.Warn(logCtx, "report.cache.decode_failed")
	}

	started := time.Now()
	report, err := compute(ctx)
	if err != nil {
		var zero T
		return zero, err
	}
	s.log.Debug(s.log.WithField(logCtx, "duration_ms", time.Since(started).Milliseconds()), "report.computed")

	if !cacheable {
		return report, nil
	}
	if raw, err := json.Marshal(report); err == nil {
		if err := s.cache.Set(ctx, lookup.Generation, key, raw, s.cacheTTL); err != nil {
			s.log.Warn(s.log.WithField(logCtx, "error", err.Error()), "report.cache.write_failed")
		}
	}
	return report, nil
}
