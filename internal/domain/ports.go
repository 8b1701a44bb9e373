package domain

import "context"

type CafeRepository interface {
	// Write paths
	UpsertCafe(ctx context.Context, c Cafe) error
	InsertImportLog(ctx context.Context, l ImportLog) error

	// Read paths
	GetCafeBySlug(ctx context.Context, slug string) (Cafe, error)
	SearchCafes(ctx context.Context, f SearchFilter) ([]Cafe, error)
	CountCafes(ctx context.Context, f SearchFilter) (int, error)
	ListCities(ctx context.Context) ([]CityCount, error)
	ListCafesByCity(ctx context.Context, city string, pg PageQuery) ([]Cafe, error)
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}

// Bounds is an axis-aligned lat/lng rectangle used as a cheap storage-level
// prefilter before exact distance computation.
type Bounds struct {
	MinLat, MaxLat float64
	MinLng, MaxLng float64
}

// SearchFilter is the storage-level filter: free-text OR-match across
// name/address/postcode/city/area/description, an optional bounding box,
// and has-all tag filters. Limit/Offset apply at the storage level; the
// search service oversizes Limit to absorb post-filter attrition.
type SearchFilter struct {
	Text      string
	Bounds    *Bounds
	Amenities []string
	Features  []string
	Limit     int
	Offset    int
}

// SearchQuery is the request-level query as the API accepts it.
// Radius is in miles; miles are the unit end to end.
type SearchQuery struct {
	Text      string
	Lat, Lng  *float64
	Radius    float64
	OpenNow   bool
	Amenities []string
	Features  []string
	Limit     int
	Offset    int
}

type Pagination struct {
	Total   int  `json:"total"`
	Limit   int  `json:"limit"`
	Offset  int  `json:"offset"`
	HasMore bool `json:"hasMore"`
}

type SearchPage struct {
	Cafes      []CafeWithDistance `json:"cafes"`
	Pagination Pagination         `json:"pagination"`
}

type PageQuery struct {
	Limit  int
	Offset int
}

type CityCount struct {
	City  string `json:"city"`
	Count int    `json:"count"`
}
