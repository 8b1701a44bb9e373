package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"

	"github.com/mitchell1972/cafesnearme/internal/domain"
)

func valStr(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}
func valInt(p *int) any {
	if p == nil {
		return nil
	}
	return *p
}
func valF64(p *float64) any {
	if p == nil {
		return nil
	}
	return *p
}

// valList marshals a tag list for a JSON column; empty lists are stored
// as NULL, not "[]".
func valList(ss []string) any {
	if len(ss) == 0 {
		return nil
	}
	b, _ := json.Marshal(ss)
	return string(b)
}

func valHours(h domain.OpeningHours) any {
	if h == nil {
		return nil
	}
	b, _ := json.Marshal(h)
	return string(b)
}

type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

func (r *Repo) UpsertCafe(ctx context.Context, c domain.Cafe) error {
	_, err := r.db.ExecContext(ctx, upsertCafeSQL,
		c.Slug,
		c.Name,
		c.Address,
		c.Postcode,
		c.City,
		valStr(c.Area),
		c.Lat,
		c.Lng,
		valStr(c.Phone),
		valStr(c.Website),
		valStr(c.Email),
		valStr(c.Description),
		valStr(c.PriceRange),
		valList(c.Amenities),
		valList(c.Features),
		valHours(c.Hours),
		valF64(c.Rating),
		valInt(c.ReviewCount),
		valStr(c.Thumbnail),
		valList(c.Images),
	)
	return err
}

func (r *Repo) InsertImportLog(ctx context.Context, l domain.ImportLog) error {
	errs, _ := json.Marshal(l.Errors)
	_, err := r.db.ExecContext(ctx, insertImportLogSQL,
		l.Filename,
		l.Status,
		l.RowsTotal,
		l.RowsSuccess,
		l.RowsFailed,
		string(errs),
	)
	return err
}

func (r *Repo) GetCafeBySlug(ctx context.Context, slug string) (domain.Cafe, error) {
	row := r.db.QueryRowContext(ctx, getCafeBySlugSQL, slug)
	c, err := scanCafe(row)
	if err == sql.ErrNoRows {
		return domain.Cafe{}, domain.ErrNotFound
	}
	return c, err
}

// searchWhere builds the WHERE clause shared by SearchCafes and
// CountCafes so the two can never disagree about what matches.
func searchWhere(f domain.SearchFilter) (string, []any) {
	var conds []string
	var args []any

	if t := strings.TrimSpace(f.Text); t != "" {
		like := "%" + t + "%"
		conds = append(conds,
			"(name LIKE ? OR address LIKE ? OR postcode LIKE ? OR city LIKE ? OR area LIKE ? OR description LIKE ?)")
		args = append(args, like, like, like, like, like, like)
	}
	if b := f.Bounds; b != nil {
		conds = append(conds, "(lat BETWEEN ? AND ? AND lng BETWEEN ? AND ?)")
		args = append(args, b.MinLat, b.MaxLat, b.MinLng, b.MaxLng)
	}
	// has-all semantics: one JSON_CONTAINS per requested tag
	for _, a := range f.Amenities {
		v, _ := json.Marshal(a)
		conds = append(conds, "JSON_CONTAINS(amenities, ?)")
		args = append(args, string(v))
	}
	for _, ft := range f.Features {
		v, _ := json.Marshal(ft)
		conds = append(conds, "JSON_CONTAINS(features, ?)")
		args = append(args, string(v))
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func (r *Repo) SearchCafes(ctx context.Context, f domain.SearchFilter) ([]domain.Cafe, error) {
	where, args := searchWhere(f)
	q := "SELECT" + cafeColumns + "\nFROM cafes" + where +
		"\nORDER BY rating DESC, name ASC\nLIMIT ? OFFSET ?"
	args = append(args, f.Limit, f.Offset)

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Cafe
	for rows.Next() {
		c, err := scanCafe(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *Repo) CountCafes(ctx context.Context, f domain.SearchFilter) (int, error) {
	where, args := searchWhere(f)
	var n int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM cafes"+where, args...).Scan(&n)
	return n, err
}

func (r *Repo) ListCities(ctx context.Context) ([]domain.CityCount, error) {
	rows, err := r.db.QueryContext(ctx, listCitiesSQL)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.CityCount
	for rows.Next() {
		var cc domain.CityCount
		if err := rows.Scan(&cc.City, &cc.Count); err != nil {
			return nil, err
		}
		out = append(out, cc)
	}
	return out, rows.Err()
}

func (r *Repo) ListCafesByCity(ctx context.Context, city string, pg domain.PageQuery) ([]domain.Cafe, error) {
	rows, err := r.db.QueryContext(ctx, listCafesByCitySQL, city, pg.Limit, pg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Cafe
	for rows.Next() {
		c, err := scanCafe(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanCafe(s scanner) (domain.Cafe, error) {
	var c domain.Cafe
	var (
		area, phone, website, email     sql.NullString
		description, priceRange, thumb  sql.NullString
		amenities, features, hrs, imgs  []byte
		rating                          sql.NullFloat64
		reviewCount                     sql.NullInt64
	)

	if err := s.Scan(
		&c.ID,
		&c.Slug,
		&c.Name,
		&c.Address,
		&c.Postcode,
		&c.City,
		&area,
		&c.Lat,
		&c.Lng,
		&phone,
		&website,
		&email,
		&description,
		&priceRange,
		&amenities,
		&features,
		&hrs,
		&rating,
		&reviewCount,
		&thumb,
		&imgs,
	); err != nil {
		return domain.Cafe{}, err
	}

	c.Area = strPtr(area)
	c.Phone = strPtr(phone)
	c.Website = strPtr(website)
	c.Email = strPtr(email)
	c.Description = strPtr(description)
	c.PriceRange = strPtr(priceRange)
	c.Thumbnail = strPtr(thumb)
	if rating.Valid {
		f := rating.Float64
		c.Rating = &f
	}
	if reviewCount.Valid {
		n := int(reviewCount.Int64)
		c.ReviewCount = &n
	}
	_ = json.Unmarshal(amenities, &c.Amenities)
	_ = json.Unmarshal(features, &c.Features)
	_ = json.Unmarshal(imgs, &c.Images)
	if len(hrs) > 0 {
		_ = json.Unmarshal(hrs, &c.Hours)
	}
	return c, nil
}

func strPtr(ns sql.NullString) *string {
	if !ns.Valid || ns.String == "" {
		return nil
	}
	s := ns.String
	return &s
}
