package domain

// Cafe is the canonical directory record, uniquely keyed by Slug.
// Slug is derived from (name, city, postcode) and stable across re-imports.
type Cafe struct {
	ID          int64        `json:"id,omitempty"`
	Slug        string       `json:"slug"`
	Name        string       `json:"name"`
	Address     string       `json:"address"`
	Postcode    string       `json:"postcode"`
	City        string       `json:"city"`
	Area        *string      `json:"area,omitempty"`
	Lat         float64      `json:"latitude"`
	Lng         float64      `json:"longitude"`
	Phone       *string      `json:"phone,omitempty"`
	Website     *string      `json:"website,omitempty"`
	Email       *string      `json:"email,omitempty"`
	Description *string      `json:"description,omitempty"`
	PriceRange  *string      `json:"priceRange,omitempty"`
	Amenities   []string     `json:"amenities"`
	Features    []string     `json:"features"`
	Hours       OpeningHours `json:"openingHours,omitempty"`
	Rating      *float64     `json:"rating,omitempty"`
	ReviewCount *int         `json:"reviewCount,omitempty"`
	Thumbnail   *string      `json:"thumbnail,omitempty"`
	Images      []string     `json:"images"`
}

// DayHours is a single day's open/close pair in 24-hour "HH:MM".
type DayHours struct {
	Open  string `json:"open"`
	Close string `json:"close"`
}

// OpeningHours maps lowercase weekday names ("monday"…"sunday") to that
// day's hours. Days without an entry are closed. A nil map means the hours
// are unknown, which is not the same thing as closed all week.
type OpeningHours map[string]DayHours

type Coords struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// CafeWithDistance decorates a search hit with the exact great-circle
// distance (miles) from the search point. Distance is nil when the search
// had no geographic point.
type CafeWithDistance struct {
	Cafe
	Distance *float64 `json:"distance"`
}
