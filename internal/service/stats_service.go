package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/patto-app/patto-api/internal/models"
	"github.com/patto-app/patto-api/pkg/config"
	appErrors "github.com/patto-app/patto-api/pkg/errors"
)

type statsRepository interface {
	AdminStats(ctx context.Context, today time.Time) (*models.AdminStats, error)
	FacilityBreakdown(ctx context.Context, rng models.BreakdownRange) ([]models.FacilityRecordCount, error)
}

type statsCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

type recentRecordLister interface {
	ListRecent(ctx context.Context, limit int) ([]models.RecordWithChild, error)
}

type operatorProfileLister interface {
	ListWithFacility(ctx context.Context) ([]models.ProfileWithFacility, error)
}

// StatsService backs the operator dashboard: summary counts, per-facility
// breakdowns, the cross-tenant user list, and the recent record feed.
type StatsService struct {
	stats    statsRepository
	records  recentRecordLister
	profiles operatorProfileLister
	cache    statsCache
	config   config.StatsConfig
	logger   *zap.Logger
	now      func() time.Time
}

// NewStatsService constructs a StatsService instance.
func NewStatsService(stats statsRepository, records recentRecordLister, profiles operatorProfileLister, cache statsCache, cfg config.StatsConfig, logger *zap.Logger) *StatsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StatsService{
		stats:    stats,
		records:  records,
		profiles: profiles,
		cache:    cache,
		config:   cfg,
		logger:   logger,
		now:      time.Now,
	}
}

// Summary returns the dashboard counts, served from cache when warm. A
// cache failure degrades to a direct read, never an error.
func (s *StatsService) Summary(ctx context.Context) (*models.AdminStats, error) {
	today := s.today()
	key := fmt.Sprintf("admin:stats:%s", today.Format("2006-01-02"))

	if s.cacheEnabled() {
		var cached models.AdminStats
		if err := s.cache.Get(ctx, key, &cached); err == nil {
			return &cached, nil
		} else if !errors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("stats cache read failed", zap.Error(err))
		}
	}

	stats, err := s.stats.AdminStats(ctx, today)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load stats")
	}

	if s.cacheEnabled() {
		if err := s.cache.Set(ctx, key, stats, s.config.CacheTTL); err != nil {
			s.logger.Warn("stats cache write failed", zap.Error(err))
		}
	}
	return stats, nil
}

// Breakdown returns record counts per facility within an optional range.
func (s *StatsService) Breakdown(ctx context.Context, from, to string) ([]models.FacilityRecordCount, error) {
	rng := models.BreakdownRange{}
	if from != "" {
		t, err := time.Parse("2006-01-02", from)
		if err != nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, "invalid from date")
		}
		rng.From = &t
	}
	if to != "" {
		t, err := time.Parse("2006-01-02", to)
		if err != nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, "invalid to date")
		}
		rng.To = &t
	}
	rows, err := s.stats.FacilityBreakdown(ctx, rng)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load breakdown")
	}
	return rows, nil
}

// RecentRecords returns the latest records across all tenants.
func (s *StatsService) RecentRecords(ctx context.Context, limit int) ([]models.RecordWithChild, error) {
	rows, err := s.records.ListRecent(ctx, limit)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load recent records")
	}
	return rows, nil
}

// Users returns every profile with its facility name.
func (s *StatsService) Users(ctx context.Context) ([]models.ProfileWithFacility, error) {
	rows, err := s.profiles.ListWithFacility(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load users")
	}
	return rows, nil
}

func (s *StatsService) cacheEnabled() bool {
	return s.config.CacheEnabled && s.cache != nil
}

func (s *StatsService) today() time.Time {
	y, m, d := s.now().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
