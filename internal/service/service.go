package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"backoffice/internal/apperr"
	"backoffice/internal/cache"
	"backoffice/internal/logger"
	"backoffice/internal/repository"
)

type Options struct {
	Cache    cache.Store
	CacheTTL time.Duration
	Logger   *logger.Logger
	// Location is the zone report months are cut in.
	Location *time.Location
	Now      func() time.Time
}

type Service struct {
	store    Store
	cache    cache.Store
	cacheTTL time.Duration
	log      *logger.Logger
	loc      *time.Location
	now      func() time.Time
	validate *validator.Validate
}

func New(store Store, opts Options) *Service {
	s := &Service{
		store:    store,
		cache:    opts.Cache,
		cacheTTL: opts.CacheTTL,
		log:      opts.Logger,
		loc:      opts.Location,
		now:      opts.Now,
		validate: newValidator(),
	}
	if s.cache == nil {
		s.cache = cache.Noop{}
	}
	if s.cacheTTL <= 0 {
		s.cacheTTL = 5 * time.Minute
	}
	if s.log == nil {
		s.log = logger.Nop()
	}
	if s.loc == nil {
		s.loc = time.UTC
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

func (s *Service) Location() *time.Location {
	return s.loc
}

// storeErr maps repository sentinels onto the error taxonomy.
func storeErr(err error, resource string, id int64) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrNotFound):
		return apperr.Wrap(apperr.CodeNotFound, err, fmt.Sprintf("%s %d not found", resource, id))
	case errors.Is(err, repository.ErrInsufficientUnits):
		return apperr.Wrap(apperr.CodeConflict, err, err.Error())
	}
	return err
}

// invalidateReports drops cached reports after a mutation. Failures only
// cost a stale read until the TTL runs out, so they are logged, not returned.
func (s *Service) invalidateReports(ctx context.Context) {
	if err := s.cache.Invalidate(ctx); err != nil {
		s.log.Warn(s.log.WithField(ctx, "error", err.Error()), "report.cache.invalidate_failed")
	}
}

func normalizeNullable(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
