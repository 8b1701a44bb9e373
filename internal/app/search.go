package app

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/mitchell1972/cafesnearme/internal/domain"
	"github.com/mitchell1972/cafesnearme/internal/geo"
	"github.com/mitchell1972/cafesnearme/internal/hours"
)

const (
	defaultRadiusMiles = 10
	defaultPageLimit   = 20
	maxPageLimit       = 100

	// oversizeFactor pads the storage fetch so the exact-distance and
	// open-now refilters still leave a full page in the common case.
	oversizeFactor = 2
)

// SearchService orchestrates the geographic search pipeline: resolve a
// center point, prefilter in storage with a bounding box, then refilter
// and re-sort by exact distance in memory.
type SearchService struct {
	repo domain.CafeRepository
	now  func() time.Time
}

func NewSearchService(r domain.CafeRepository) *SearchService {
	return &SearchService{repo: r, now: time.Now}
}

func (s *SearchService) Search(ctx context.Context, q domain.SearchQuery) (domain.SearchPage, error) {
	limit := q.Limit
	if limit <= 0 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	offset := q.Offset
	if offset < 0 {
		offset = 0
	}
	radius := q.Radius
	if radius <= 0 {
		radius = defaultRadiusMiles
	}

	text := strings.TrimSpace(q.Text)
	var point *domain.Coords
	if q.Lat != nil && q.Lng != nil {
		point = &domain.Coords{Lat: *q.Lat, Lng: *q.Lng}
	} else if text != "" && geo.LooksLikePostcode(text) {
		// A recognized postcode also anchors a location filter; the text
		// still participates in the OR-match (it hits the postcode column).
		point = geo.PostcodeCoords(text)
	}

	f := domain.SearchFilter{
		Text:      text,
		Amenities: q.Amenities,
		Features:  q.Features,
	}
	if point != nil {
		b := geo.BoundingBox(*point, radius)
		f.Bounds = &b
	}

	// Total is counted before the exact-distance and open-now refilters,
	// so it is an upper bound. Cheap and stable across pages.
	total, err := s.repo.CountCafes(ctx, f)
	if err != nil {
		return domain.SearchPage{}, err
	}

	f.Limit = limit * oversizeFactor
	f.Offset = offset
	cafes, err := s.repo.SearchCafes(ctx, f)
	if err != nil {
		return domain.SearchPage{}, err
	}

	out := make([]domain.CafeWithDistance, 0, len(cafes))
	for _, c := range cafes {
		item := domain.CafeWithDistance{Cafe: c}
		if point != nil {
			d := geo.Distance(*point, domain.Coords{Lat: c.Lat, Lng: c.Lng})
			if d > radius {
				continue
			}
			item.Distance = &d
		}
		if q.OpenNow && hours.StatusAt(c.Hours, s.now()) != hours.StatusOpen {
			// "open now" keeps only records known to be open; unknown
			// hours are excluded rather than guessed at.
			continue
		}
		out = append(out, item)
	}

	if point != nil {
		sort.SliceStable(out, func(i, j int) bool {
			return *out[i].Distance < *out[j].Distance
		})
	}
	if len(out) > limit {
		out = out[:limit]
	}

	return domain.SearchPage{
		Cafes: out,
		Pagination: domain.Pagination{
			Total:   total,
			Limit:   limit,
			Offset:  offset,
			HasMore: offset+limit < total,
		},
	}, nil
}
