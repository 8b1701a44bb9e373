// Package noop backs the API when no database is configured: reads serve
// empty results, writes fail loudly. Keeps local development of the HTTP
// surface possible without MySQL.
package noop

import (
	"context"

	"github.com/mitchell1972/cafesnearme/internal/domain"
)

type Store struct{}

func New() *Store { return &Store{} }

func (*Store) UpsertCafe(ctx context.Context, c domain.Cafe) error {
	return domain.ErrStoreUnconfigured
}

func (*Store) InsertImportLog(ctx context.Context, l domain.ImportLog) error {
	return domain.ErrStoreUnconfigured
}

func (*Store) GetCafeBySlug(ctx context.Context, slug string) (domain.Cafe, error) {
	return domain.Cafe{}, domain.ErrNotFound
}

func (*Store) SearchCafes(ctx context.Context, f domain.SearchFilter) ([]domain.Cafe, error) {
	return nil, nil
}

func (*Store) CountCafes(ctx context.Context, f domain.SearchFilter) (int, error) {
	return 0, nil
}

func (*Store) ListCities(ctx context.Context) ([]domain.CityCount, error) {
	return nil, nil
}

func (*Store) ListCafesByCity(ctx context.Context, city string, pg domain.PageQuery) ([]domain.Cafe, error) {
	return nil, nil
}
