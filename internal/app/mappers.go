package app

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/mitchell1972/cafesnearme/internal/domain"
	"github.com/mitchell1972/cafesnearme/internal/geo"
	"github.com/mitchell1972/cafesnearme/internal/hours"
)

/********** alias registries (single source of truth) **********/

// Spreadsheets arrive with unpredictable column names (Outscraper exports,
// hand-maintained sheets, other scrapers). Each canonical field consults an
// ordered alias list; the first alias present with a non-empty value wins.
// Order matters: these are sequences, not sets.
var fieldAliases = map[string][]string{
	"name":        {"name", "Name", "cafe_name", "business_name", "title", "place_name", "restaurant_name"},
	"address":     {"full_address", "address", "Address", "street_address", "location", "street", "addr"},
	"postcode":    {"postal_code", "postcode", "Postcode", "zip", "zip_code", "post_code"},
	"latitude":    {"latitude", "lat", "Latitude", "LAT", "coord_lat", "lat_coord"},
	"longitude":   {"longitude", "lng", "lon", "Longitude", "LNG", "LON", "coord_lng", "lng_coord"},
	"phone":       {"phone", "Phone", "telephone", "tel", "phone_number", "contact_phone"},
	"website":     {"site", "website", "Website", "url", "web", "homepage"},
	"email":       {"email", "Email", "e_mail", "contact_email"},
	"description": {"about", "description", "Description", "summary", "details"},
	"city":        {"city", "City", "locality", "town"},
	"area":        {"borough", "area", "Area", "neighborhood", "district", "region", "zone"},
	"priceRange":  {"priceRange", "price_range", "price", "price_level", "cost"},
	"rating":      {"rating", "Rating", "score"},
	"reviewCount": {"reviews", "review_count", "reviews_count", "total_reviews"},
	"thumbnail":   {"thumbnail", "image", "photo", "photos"},
	"amenities":   {"amenities", "Amenities", "services", "subtypes", "category"},
	"features":    {"features", "Features", "categories", "type", "subtypes"},
	"images":      {"images", "Images", "photos"},
}

// Hours columns tried in order: a blob column (JSON or free text), then
// individual weekday columns, then a JSON-only fallback column.
var hoursBlobAliases = []string{"working_hours", "working_hours_csv_compatible"}
var hoursJSONAliases = []string{"openingHours", "opening_hours"}

/********** row shape **********/

// Row is one spreadsheet row as a loose string-keyed bag. It exists only
// between the parser and mapRow; nothing typed ever sees it.
type Row map[string]string

/********** tiny helpers **********/

// firstAlias returns the first non-empty value among the aliases
// registered for a canonical field.
func firstAlias(row Row, field string) string {
	for _, col := range fieldAliases[field] {
		if v, ok := row[col]; ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

// splitList splits a free-text cell on comma, semicolon, or pipe into
// trimmed, deduplicated tags. Insertion order is preserved for display.
func splitList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ';' || r == '|'
	})
	seen := make(map[string]struct{}, len(parts))
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}

func floatField(row Row, field string) float64 {
	s := strings.TrimSpace(strings.ReplaceAll(firstAlias(row, field), ",", "."))
	if s == "" {
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return f
}

func intField(row Row, field string) int {
	s := firstAlias(row, field)
	if s == "" {
		return 0
	}
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		// tolerate "123.0" style cells from spreadsheet tools
		if f, ferr := strconv.ParseFloat(s, 64); ferr == nil {
			return int(f)
		}
		return 0
	}
	return n
}

func ptrStr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func ptrFloat(f float64) *float64 {
	if f == 0 {
		return nil
	}
	return &f
}

func ptrInt(n int) *int {
	if n == 0 {
		return nil
	}
	return &n
}

/********** slug **********/

var (
	slugStripRe    = regexp.MustCompile(`[^a-z0-9]+`)
	slugCollapseRe = regexp.MustCompile(`-+`)
)

// Slugify lowercases, collapses non-alphanumeric runs to single hyphens,
// and trims. Deterministic, so the same (name, city, postcode) triple
// always lands on the same record.
func Slugify(text string) string {
	s := strings.ToLower(text)
	s = slugStripRe.ReplaceAllString(s, "-")
	s = slugCollapseRe.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// CafeSlug derives the unique key for a record.
func CafeSlug(name, city, postcode string) string {
	return Slugify(name + " " + city + " " + postcode)
}

/********** row -> candidate record **********/

// mapRow normalizes one loose spreadsheet row into a Cafe candidate.
// rowNum is the 1-based source row (header included) used in error
// messages. Missing required fields fail the row; bad coordinates do not,
// they fall back to the central-London constant.
func mapRow(row Row, rowNum int) (domain.Cafe, error) {
	name := firstAlias(row, "name")
	address := firstAlias(row, "address")
	postcode := firstAlias(row, "postcode")
	if name == "" || address == "" || postcode == "" {
		return domain.Cafe{}, fmt.Errorf("row %d: missing required fields: name, address, or postcode", rowNum)
	}

	lat := floatField(row, "latitude")
	lng := floatField(row, "longitude")
	coords := domain.Coords{Lat: lat, Lng: lng}
	if (lat == 0 && lng == 0) || !geo.Valid(coords) {
		coords = domain.Coords{Lat: geo.FallbackLat, Lng: geo.FallbackLng}
	}

	city := firstAlias(row, "city")
	if city == "" {
		city = cityFromAddress(address)
	}

	c := domain.Cafe{
		Name:        name,
		Slug:        CafeSlug(name, city, postcode),
		Address:     address,
		Postcode:    strings.ToUpper(postcode),
		City:        city,
		Area:        ptrStr(firstAlias(row, "area")),
		Lat:         coords.Lat,
		Lng:         coords.Lng,
		Phone:       ptrStr(firstAlias(row, "phone")),
		Website:     ptrStr(firstAlias(row, "website")),
		Email:       ptrStr(firstAlias(row, "email")),
		Description: ptrStr(firstAlias(row, "description")),
		PriceRange:  ptrStr(firstAlias(row, "priceRange")),
		Amenities:   splitList(firstAlias(row, "amenities")),
		Features:    splitList(firstAlias(row, "features")),
		Hours:       deriveHours(row),
		Rating:      ptrFloat(floatField(row, "rating")),
		ReviewCount: ptrInt(intField(row, "reviewCount")),
		Thumbnail:   ptrStr(firstAlias(row, "thumbnail")),
		Images:      splitList(firstAlias(row, "images")),
	}
	return c, nil
}

// deriveHours tries, in order: a blob column parsed as JSON then as free
// text; individual weekday columns ("monday" or "Monday", single range
// each); a JSON-only fallback column. No recognizable source yields nil
// ("unknown"), never an empty map.
func deriveHours(row Row) domain.OpeningHours {
	for _, col := range hoursBlobAliases {
		blob, ok := row[col]
		if !ok || strings.TrimSpace(blob) == "" {
			continue
		}
		if h := hours.ParseJSON(blob); h != nil {
			return h
		}
		if h := hours.ParseText(blob); h != nil {
			return h
		}
	}

	perDay := domain.OpeningHours{}
	for _, day := range []string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"} {
		cell := row[day]
		if strings.TrimSpace(cell) == "" {
			cell = row[strings.ToUpper(day[:1])+day[1:]]
		}
		if strings.TrimSpace(cell) == "" {
			continue
		}
		if dh, parsed := hours.ParseRange(cell); parsed {
			perDay[day] = dh
		}
	}
	if len(perDay) > 0 {
		return perDay
	}

	for _, col := range hoursJSONAliases {
		if blob, ok := row[col]; ok {
			if h := hours.ParseJSON(blob); h != nil {
				return h
			}
		}
	}
	return nil
}

// cityFromAddress takes the second-to-last comma-separated segment, or the
// last when there is only one.
func cityFromAddress(address string) string {
	parts := strings.Split(address, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	if len(parts) >= 2 && parts[len(parts)-2] != "" {
		return parts[len(parts)-2]
	}
	if last := parts[len(parts)-1]; last != "" {
		return last
	}
	return "Unknown"
}
