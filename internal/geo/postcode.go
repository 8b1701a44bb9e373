package geo

import (
	"regexp"
	"sort"
	"strings"

	"github.com/mitchell1972/cafesnearme/internal/domain"
)

// Approximate centroids for UK postcode areas and districts. A static
// table rather than a geocoding call: close enough to seed a radius
// search, and it keeps search working offline. Longest prefix wins, so
// "BR1 2AB" resolves via BR1, not BR.
var postcodeCoords = map[string]domain.Coords{
	// London
	"E":  {Lat: 51.5320, Lng: 0.0551},
	"EC": {Lat: 51.5174, Lng: -0.0836},
	"N":  {Lat: 51.5647, Lng: -0.1055},
	"NW": {Lat: 51.5344, Lng: -0.1910},
	"SE": {Lat: 51.4832, Lng: -0.0045},
	"SW": {Lat: 51.4614, Lng: -0.1383},
	"W":  {Lat: 51.5136, Lng: -0.1997},
	"WC": {Lat: 51.5246, Lng: -0.1340},

	// Bromley area
	"BR":  {Lat: 51.4059, Lng: 0.0149},
	"BR1": {Lat: 51.4059, Lng: 0.0149},
	"BR2": {Lat: 51.3892, Lng: 0.0211},
	"BR3": {Lat: 51.4084, Lng: -0.0197},
	"BR4": {Lat: 51.3789, Lng: -0.0197},
	"BR5": {Lat: 51.3653, Lng: 0.0831},
	"BR6": {Lat: 51.3517, Lng: 0.1033},
	"BR7": {Lat: 51.4059, Lng: 0.0649},
	"BR8": {Lat: 51.4523, Lng: 0.1494},

	// East of England
	"CB":   {Lat: 52.2053, Lng: 0.1218},
	"CB9":  {Lat: 52.0736, Lng: 0.4472},
	"CM":   {Lat: 51.7343, Lng: 0.4691},
	"CM0":  {Lat: 51.6755, Lng: 0.6795},
	"CM9":  {Lat: 51.7316, Lng: 0.6773},
	"CO":   {Lat: 51.8959, Lng: 0.8919},
	"CO1":  {Lat: 51.8959, Lng: 0.8919},
	"CO2":  {Lat: 51.8892, Lng: 0.8640},
	"CO3":  {Lat: 51.8914, Lng: 0.8485},
	"CO4":  {Lat: 51.9023, Lng: 0.9093},
	"CO9":  {Lat: 51.9319, Lng: 0.6061},
	"CO10": {Lat: 52.0375, Lng: 0.7329},
	"EN9":  {Lat: 51.8097, Lng: 0.0105},
	"IG":   {Lat: 51.5590, Lng: 0.0821},
	"IG7":  {Lat: 51.6094, Lng: 0.0342},
	"IG8":  {Lat: 51.6194, Lng: 0.0934},
	"IG9":  {Lat: 51.6097, Lng: 0.0505},
	"IG10": {Lat: 51.6458, Lng: 0.0754},
	"IP":   {Lat: 52.0567, Lng: 1.1582},
	"IP1":  {Lat: 52.0567, Lng: 1.1582},
	"IP2":  {Lat: 52.0567, Lng: 1.1300},
	"IP3":  {Lat: 52.0567, Lng: 1.1100},
	"IP4":  {Lat: 52.0667, Lng: 1.1582},
	"NR":   {Lat: 52.9493, Lng: 1.1328},
	"PE":   {Lat: 52.5695, Lng: -0.2405},
	"RM":   {Lat: 51.5590, Lng: 0.1834},
	"RM1":  {Lat: 51.5764, Lng: 0.1834},
	"RM2":  {Lat: 51.5764, Lng: 0.1634},
	"RM3":  {Lat: 51.5964, Lng: 0.2234},
	"SG":   {Lat: 51.9017, Lng: -0.2018},
	"SS":   {Lat: 51.5456, Lng: 0.7077},
	"SS0":  {Lat: 51.5344, Lng: 0.7052},
	"SS1":  {Lat: 51.5456, Lng: 0.7077},
	"SS2":  {Lat: 51.5372, Lng: 0.7142},
	"SS3":  {Lat: 51.5372, Lng: 0.7942},
	"SS4":  {Lat: 51.5172, Lng: 0.6542},
	"SS5":  {Lat: 51.5572, Lng: 0.6542},
	"SS6":  {Lat: 51.5672, Lng: 0.6842},
	"SS7":  {Lat: 51.5172, Lng: 0.5842},
	"SS8":  {Lat: 51.5072, Lng: 0.5742},
	"SS9":  {Lat: 51.5411, Lng: 0.6529},
}

// prefixesByLength caches the table keys sorted longest-first so lookups
// always hit the most specific district before its parent area.
var prefixesByLength = func() []string {
	keys := make([]string, 0, len(postcodeCoords))
	for k := range postcodeCoords {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})
	return keys
}()

var postcodePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^[A-Z]{1,2}[0-9][A-Z0-9]?\s?[0-9][A-Z]{2}$`), // full: SW1A 1AA
	regexp.MustCompile(`(?i)^[A-Z]{1,2}[0-9][A-Z0-9]?$`),                 // district: SW1A, CO1
	regexp.MustCompile(`(?i)^[A-Z]{1,2}[0-9]$`),                          // short: E1, SW1
}

// LooksLikePostcode reports whether q is shaped like a full or partial UK
// postcode.
func LooksLikePostcode(q string) bool {
	cleaned := strings.ReplaceAll(q, " ", "")
	if len(cleaned) < 2 || len(cleaned) > 8 {
		return false
	}
	for _, p := range postcodePatterns {
		if p.MatchString(q) {
			return true
		}
	}
	return false
}

// PostcodeCoords resolves a postcode (full or partial) to approximate
// coordinates via longest-prefix match over the static table. Returns nil
// for unknown areas.
func PostcodeCoords(postcode string) *domain.Coords {
	cleaned := strings.ToUpper(strings.ReplaceAll(postcode, " ", ""))
	if cleaned == "" {
		return nil
	}
	for _, prefix := range prefixesByLength {
		if strings.HasPrefix(cleaned, prefix) {
			c := postcodeCoords[prefix]
			return &c
		}
	}
	return nil
}

// FormatPostcode normalizes display form: uppercase with the single space
// before the final three characters of a full postcode.
func FormatPostcode(postcode string) string {
	cleaned := strings.ToUpper(strings.ReplaceAll(postcode, " ", ""))
	if len(cleaned) <= 4 {
		return cleaned
	}
	return cleaned[:len(cleaned)-3] + " " + cleaned[len(cleaned)-3:]
}
