package service

import (
	"context"
	"strings"

	"backoffice/internal/domain"
)

func (s *Service) ListProducts(ctx context.Context, filter domain.ProductListFilter) ([]domain.Product, error) {
	filter.Search = strings.TrimSpace(filter.Search)
	return s.store.ListProducts(ctx, filter)
}

func (s *Service) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	product, err := s.store.GetProduct(ctx, id)
	if err != nil {
		return nil, storeErr(err, "product", id)
	}
	return product, nil
}
