package app

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/mitchell1972/cafesnearme/internal/domain"
	"github.com/mitchell1972/cafesnearme/internal/geo"
)

// returnedErrorLimit caps how many row errors an advanced-import response
// carries back to the caller.
const returnedErrorLimit = 20

// ImportOutscraper ingests a raw Outscraper XLSX export. Unlike the
// generic pipeline it knows the export's column names directly, scans
// every sheet, requires only name and address, and defaults the city to
// London when the export omits it. Rows are numbered from 1 across the
// concatenated sheets.
func (s *ImportService) ImportOutscraper(ctx context.Context, filename string, data []byte) (domain.ImportReport, error) {
	rows, notes, err := parseWorkbook(data)
	if err != nil {
		return s.parseFailure(ctx, filename, err)
	}
	if len(rows) == 0 {
		return s.parseFailure(ctx, filename, fmt.Errorf("no data rows found in any sheet"))
	}

	for _, n := range notes {
		log.Debug().Str("sheet", n.Name).Int("rows", n.Rows).Int("columns", n.Columns).Msg("outscraper sheet scanned")
	}

	report := domain.ImportReport{TotalRows: len(rows), Errors: []string{}}
	for i, row := range rows {
		rowNum := i + 1

		c, err := mapOutscraperRow(row, rowNum)
		if err != nil {
			report.FailedCount++
			report.Errors = append(report.Errors, err.Error())
			s.OnRow("failed")
			continue
		}

		if err := s.repo.UpsertCafe(ctx, c); err != nil {
			report.FailedCount++
			report.Errors = append(report.Errors, fmt.Sprintf("row %d: %v", rowNum, err))
			s.writeAuditLog(ctx, filename, report)
			return report, fmt.Errorf("upsert cafe %q: %w", c.Slug, err)
		}

		report.SuccessCount++
		s.OnRow("ok")
		s.invalidateCafe(ctx, c)
	}

	report.Success = report.FailedCount == 0
	s.writeAuditLog(ctx, filename, report)
	if len(report.Errors) > returnedErrorLimit {
		report.Errors = report.Errors[:returnedErrorLimit]
	}

	log.Info().
		Str("file", filename).
		Int("sheets", len(notes)).
		Int("total", report.TotalRows).
		Int("ok", report.SuccessCount).
		Int("failed", report.FailedCount).
		Msg("outscraper import completed")

	return report, nil
}

// mapOutscraperRow maps an Outscraper export row. Column names here are
// the export's own, not the alias registry: the two pipelines drift
// independently as Outscraper changes its format.
func mapOutscraperRow(row Row, rowNum int) (domain.Cafe, error) {
	name := pick(row, "name", "Name")
	address := pick(row, "full_address", "address")
	if name == "" || address == "" {
		return domain.Cafe{}, fmt.Errorf("row %d: missing required fields: name or address", rowNum)
	}

	lat := parseCell(row, "latitude", "lat")
	lng := parseCell(row, "longitude", "lng")
	coords := domain.Coords{Lat: lat, Lng: lng}
	if (lat == 0 && lng == 0) || !geo.Valid(coords) {
		coords = domain.Coords{Lat: geo.FallbackLat, Lng: geo.FallbackLng}
	}

	city := pick(row, "city")
	if city == "" {
		city = "London"
	}
	postcode := strings.ToUpper(pick(row, "postal_code", "postcode"))

	var features []string
	if cat := pick(row, "category"); cat != "" {
		features = []string{cat}
	}

	c := domain.Cafe{
		Name:        name,
		Slug:        CafeSlug(name, city, postcode),
		Address:     address,
		Postcode:    postcode,
		City:        city,
		Area:        ptrStr(pick(row, "borough", "area")),
		Lat:         coords.Lat,
		Lng:         coords.Lng,
		Phone:       ptrStr(pick(row, "phone")),
		Website:     ptrStr(pick(row, "site", "website")),
		Description: ptrStr(pick(row, "about", "description")),
		PriceRange:  ptrStr(pick(row, "price_level")),
		Amenities:   splitList(pick(row, "subtypes")),
		Features:    features,
		Hours:       deriveHours(row),
		Rating:      ptrFloat(parseCell(row, "rating")),
		ReviewCount: ptrInt(parseIntCell(row, "reviews")),
		Thumbnail:   ptrStr(pick(row, "photo")),
	}
	return c, nil
}

// pick returns the first non-empty cell among the named columns.
func pick(row Row, cols ...string) string {
	for _, col := range cols {
		if v := strings.TrimSpace(row[col]); v != "" {
			return v
		}
	}
	return ""
}

func parseCell(row Row, cols ...string) float64 {
	s := strings.ReplaceAll(pick(row, cols...), ",", ".")
	if s == "" {
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return f
}

func parseIntCell(row Row, cols ...string) int {
	f := parseCell(row, cols...)
	return int(f)
}
