package dashboard

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/guudweb/judicial-backend/internal/domain"
	"github.com/guudweb/judicial-backend/internal/repository"
)

const generationKey = "stats:generation"

// Service serves workflow statistics from a Redis cache. Every cache key
// embeds the current generation, so Invalidate drops all cached stats at
// once by bumping it.
type Service interface {
	CaseFileStats(ctx context.Context, userID uuid.UUID, scope domain.CaseFileFilter) (*domain.CaseFileStats, error)
	NewsStats(ctx context.Context) (*domain.NewsStats, error)
	Invalidate(ctx context.Context)
}

type service struct {
	caseFileRepo repository.CaseFileRepository
	newsRepo     repository.NewsRepository
	redis        *redis.Client
	ttl          time.Duration
	now          func() time.Time
}

func NewService(caseFileRepo repository.CaseFileRepository, newsRepo repository.NewsRepository, redis *redis.Client, ttl time.Duration) Service {
	return &service{
		caseFileRepo: caseFileRepo,
		newsRepo:     newsRepo,
		redis:        redis,
		ttl:          ttl,
		now:          time.Now,
	}
}

func (s *service) CaseFileStats(ctx context.Context, userID uuid.UUID, scope domain.CaseFileFilter) (*domain.CaseFileStats, error) {
	key := s.key(ctx, fmt.Sprintf("casefiles:%s:%s:%s", optionalID(scope.ScopeDepartmentID), optionalID(scope.ScopeUserID), userID))

	var stats domain.CaseFileStats
	if s.load(ctx, key, &stats) {
		return &stats, nil
	}

	byStatus, err := s.caseFileRepo.CountByStatus(ctx, scope)
	if err != nil {
		return nil, err
	}

	pending, err := s.caseFileRepo.CountPendingFor(ctx, userID)
	if err != nil {
		return nil, err
	}

	stats = domain.CaseFileStats{
		ByStatus:     byStatus,
		PendingForMe: pending,
	}
	for _, n := range byStatus {
		stats.Total += n
	}

	s.store(ctx, key, stats)
	return &stats, nil
}

func (s *service) NewsStats(ctx context.Context) (*domain.NewsStats, error) {
	key := s.key(ctx, "news")

	var stats domain.NewsStats
	if s.load(ctx, key, &stats) {
		return &stats, nil
	}

	byStatus, err := s.newsRepo.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}

	byType, err := s.newsRepo.CountByType(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	published, err := s.newsRepo.CountPublishedSince(ctx, monthStart)
	if err != nil {
		return nil, err
	}

	stats = domain.NewsStats{
		ByStatus:           byStatus,
		ByType:             byType,
		PublishedThisMonth: published,
	}
	for _, n := range byStatus {
		stats.Total += n
	}

	s.store(ctx, key, stats)
	return &stats, nil
}

func (s *service) Invalidate(ctx context.Context) {
	if s.redis == nil {
		return
	}
	if err := s.redis.Incr(ctx, generationKey).Err(); err != nil {
		log.Printf("failed to invalidate stats cache: %v", err)
	}
}

func (s *service) key(ctx context.Context, suffix string) string {
	var gen int64
	if s.redis != nil {
		if v, err := s.redis.Get(ctx, generationKey).Int64(); err == nil {
			gen = v
		}
	}
	return fmt.Sprintf("stats:g%d:%s", gen, suffix)
}

func (s *service) load(ctx context.Context, key string, dest interface{}) bool {
	if s.redis == nil {
		return false
	}
	cached, err := s.redis.Get(ctx, key).Result()
	if err != nil {
		return false
	}
	return json.Unmarshal([]byte(cached), dest) == nil
}

func (s *service) store(ctx context.Context, key string, v interface{}) {
	if s.redis == nil {
		return
	}
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	_ = s.redis.Set(ctx, key, data, s.ttl).Err()
}

func optionalID(id *uuid.UUID) string {
	if id == nil {
		return "all"
	}
	return id.String()
}
