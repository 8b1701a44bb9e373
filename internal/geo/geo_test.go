package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mitchell1972/cafesnearme/internal/domain"
)

func TestDistance_IdenticalPointsIsZero(t *testing.T) {
	p := domain.Coords{Lat: 51.5074, Lng: -0.1278}
	assert.Equal(t, 0.0, Distance(p, p))
}

func TestDistance_Symmetric(t *testing.T) {
	a := domain.Coords{Lat: 51.5074, Lng: -0.1278}
	b := domain.Coords{Lat: 52.2053, Lng: 0.1218}
	assert.Equal(t, Distance(a, b), Distance(b, a))
}

func TestDistance_OneDegreeLatitude(t *testing.T) {
	// One degree of latitude on a 3959-mile sphere is 69.1 miles after
	// rounding to one decimal. Pinned as a regression fixture.
	a := domain.Coords{Lat: 51.5074, Lng: -0.1278}
	b := domain.Coords{Lat: 52.5074, Lng: -0.1278}
	assert.Equal(t, 69.1, Distance(a, b))
}

func TestDistance_NearbyPoints(t *testing.T) {
	// ~0.04 miles apart; the 1-decimal rounding floors this to 0.0, which
	// is what the radius filter sees.
	a := domain.Coords{Lat: 51.5074, Lng: -0.1278}
	b := domain.Coords{Lat: 51.5080, Lng: -0.1280}
	d := Distance(a, b)
	assert.GreaterOrEqual(t, d, 0.0)
	assert.Less(t, d, 0.1)
}

func TestBoundingBox_ContainsCenterAndOrdered(t *testing.T) {
	for _, radius := range []float64{0.5, 1, 10, 50} {
		center := domain.Coords{Lat: 51.5074, Lng: -0.1278}
		b := BoundingBox(center, radius)

		assert.LessOrEqual(t, b.MinLat, b.MaxLat)
		assert.LessOrEqual(t, b.MinLng, b.MaxLng)
		assert.GreaterOrEqual(t, center.Lat, b.MinLat)
		assert.LessOrEqual(t, center.Lat, b.MaxLat)
		assert.GreaterOrEqual(t, center.Lng, b.MinLng)
		assert.LessOrEqual(t, center.Lng, b.MaxLng)
	}
}

func TestBoundingBox_LongitudeWiderAtHighLatitude(t *testing.T) {
	low := BoundingBox(domain.Coords{Lat: 0, Lng: 0}, 10)
	high := BoundingBox(domain.Coords{Lat: 60, Lng: 0}, 10)
	assert.Greater(t, high.MaxLng-high.MinLng, low.MaxLng-low.MinLng)
}

func TestValid(t *testing.T) {
	assert.True(t, Valid(domain.Coords{Lat: 51.5, Lng: -0.12}))
	assert.True(t, Valid(domain.Coords{Lat: -90, Lng: 180}))
	assert.False(t, Valid(domain.Coords{Lat: 90.1, Lng: 0}))
	assert.False(t, Valid(domain.Coords{Lat: 0, Lng: -180.5}))
}

func TestParseCoords(t *testing.T) {
	c := ParseCoords("51.5074, -0.1278")
	require.NotNil(t, c)
	assert.Equal(t, 51.5074, c.Lat)
	assert.Equal(t, -0.1278, c.Lng)

	assert.Nil(t, ParseCoords("51.5074"))
	assert.Nil(t, ParseCoords("abc,def"))
	assert.Nil(t, ParseCoords("91.0,0.0"))
}

func TestMilesToKm(t *testing.T) {
	assert.Equal(t, 1.6, MilesToKm(1))
	assert.Equal(t, 16.1, MilesToKm(10))
}
