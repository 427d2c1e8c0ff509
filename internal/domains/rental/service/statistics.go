package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"bookrental-backend/internal/domains/rental/model"
)

const (
	statisticsCacheKey   = "rental:statistics"
	defaultStatisticsTTL = 30 * time.Second
)

// Statistics aggregates the four counters concurrently. The result may be
// served from cache for up to the statistics TTL.
func (s *rentalService) Statistics(ctx context.Context) (*model.Statistics, error) {
	if s.cache != nil {
		var cached model.Statistics
		found, err := s.cache.Get(ctx, statisticsCacheKey, &cached)
		if err != nil {
			log.Warn().Err(err).Msg("[RentalService] statistics cache read failed")
		}
		if found {
			return &cached, nil
		}
	}

	now := s.now()
	stats := &model.Statistics{GeneratedAt: now}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := s.repo.CountActive(gctx, now)
		stats.ActiveCount = n
		return err
	})
	g.Go(func() error {
		n, err := s.repo.CountOverdue(gctx, now)
		stats.OverdueCount = n
		return err
	})
	g.Go(func() error {
		n, err := s.repo.CountAll(gctx)
		stats.TotalCount = n
		return err
	})
	g.Go(func() error {
		sum, err := s.repo.SumRevenue(gctx)
		stats.TotalRevenue = sum
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("rental statistics: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, statisticsCacheKey, stats, s.statsTTL); err != nil {
			log.Warn().Err(err).Msg("[RentalService] statistics cache write failed")
		}
	}
	return stats, nil
}

func (s *rentalService) invalidateStatistics(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, statisticsCacheKey); err != nil {
		log.Warn().Err(err).Msg("[RentalService] statistics cache invalidation failed")
	}
}
