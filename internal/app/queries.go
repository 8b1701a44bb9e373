package app

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/mitchell1972/cafesnearme/internal/domain"
)

type QueryService struct {
	repo     domain.CafeRepository
	cache    domain.Cache
	cacheTTL time.Duration
}

func NewQueryService(r domain.CafeRepository, c domain.Cache, ttl time.Duration) *QueryService {
	return &QueryService{repo: r, cache: c, cacheTTL: ttl}
}

func (s *QueryService) GetCafe(ctx context.Context, slug string) (domain.Cafe, error) {
	key := "cafe:" + slug
	var c domain.Cafe
	if ok, _ := s.cache.Get(ctx, key, &c); ok {
		return c, nil
	}
	c, err := s.repo.GetCafeBySlug(ctx, slug)
	if err != nil {
		return domain.Cafe{}, err
	}
	_ = s.cache.Set(ctx, key, c, int(s.cacheTTL.Seconds()))
	return c, nil
}

func (s *QueryService) ListCities(ctx context.Context) ([]domain.CityCount, error) {
	var out []domain.CityCount
	if ok, _ := s.cache.Get(ctx, "cities", &out); ok {
		return out, nil
	}
	cs, err := s.repo.ListCities(ctx)
	if err != nil {
		return nil, err
	}
	_ = s.cache.Set(ctx, "cities", cs, int(s.cacheTTL.Seconds()))
	return cs, nil
}

func (s *QueryService) ListCafesByCity(ctx context.Context, city string, pg domain.PageQuery) ([]domain.Cafe, error) {
	if pg.Limit <= 0 {
		pg.Limit = defaultPageLimit
	}
	if pg.Limit > maxPageLimit {
		pg.Limit = maxPageLimit
	}
	if pg.Offset < 0 {
		pg.Offset = 0
	}

	key := fmt.Sprintf("city:%s:%d:%d", strings.ToLower(city), pg.Limit, pg.Offset)
	var out []domain.Cafe
	if ok, _ := s.cache.Get(ctx, key, &out); ok {
		return out, nil
	}

	cs, err := s.repo.ListCafesByCity(ctx, city, pg)
	if err != nil {
		return nil, err
	}

	// copy before caching so callers mutating the result cannot poison
	// the cached value
	copyCS := make([]domain.Cafe, len(cs))
	copy(copyCS, cs)

	if b, _ := json.Marshal(copyCS); len(b) < 1_000_000 {
		_ = s.cache.Set(ctx, key, copyCS, int(s.cacheTTL.Seconds()))
	}
	return copyCS, nil
}
