package app

import (
	"context"
	"encoding/json"

	"github.com/mitchell1972/cafesnearme/internal/domain"
)

// ---- fakes ----

type fakeRepo struct {
	upserts    []domain.Cafe
	logs       []domain.ImportLog
	upsertErr  error
	cafe       domain.Cafe
	cafeErr    error
	searchOut  []domain.Cafe
	count      int
	cities     []domain.CityCount
	byCity     []domain.Cafe
	lastFilter domain.SearchFilter
}

func (f *fakeRepo) UpsertCafe(ctx context.Context, c domain.Cafe) error {
	if f.upsertErr != nil {
		return f.upsertErr
	}
	f.upserts = append(f.upserts, c)
	return nil
}

func (f *fakeRepo) InsertImportLog(ctx context.Context, l domain.ImportLog) error {
	f.logs = append(f.logs, l)
	return nil
}

func (f *fakeRepo) GetCafeBySlug(ctx context.Context, slug string) (domain.Cafe, error) {
	return f.cafe, f.cafeErr
}

func (f *fakeRepo) SearchCafes(ctx context.Context, sf domain.SearchFilter) ([]domain.Cafe, error) {
	f.lastFilter = sf
	return f.searchOut, nil
}

func (f *fakeRepo) CountCafes(ctx context.Context, sf domain.SearchFilter) (int, error) {
	return f.count, nil
}

func (f *fakeRepo) ListCities(ctx context.Context) ([]domain.CityCount, error) {
	return f.cities, nil
}

func (f *fakeRepo) ListCafesByCity(ctx context.Context, city string, pg domain.PageQuery) ([]domain.Cafe, error) {
	return f.byCity, nil
}

// fakeCache round-trips through JSON like the real adapter, so it works
// for any cached type and never aliases the stored value.
type fakeCache struct {
	store   map[string][]byte
	deleted []string
}

func (c *fakeCache) Get(ctx context.Context, key string, dst any) (bool, error) {
	b, ok := c.store[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(b, dst)
}

func (c *fakeCache) Set(ctx context.Context, key string, v any, ttlSec int) error {
	if c.store == nil {
		c.store = map[string][]byte{}
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.store[key] = b
	return nil
}

func (c *fakeCache) Del(ctx context.Context, key string) error {
	c.deleted = append(c.deleted, key)
	delete(c.store, key)
	return nil
}
