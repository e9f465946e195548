package domain

// Coordinates is a latitude/longitude pair in degrees
type Coordinates struct {
	Latitude  float64
	Longitude float64
}

// Bounds is a rectangular geographic area
type Bounds struct {
	MinLatitude  float64
	MaxLatitude  float64
	MinLongitude float64
	MaxLongitude float64
}

// Contains reports whether c lies inside b (inclusive)
func (b Bounds) Contains(c Coordinates) bool {
	return c.Latitude >= b.MinLatitude && c.Latitude <= b.MaxLatitude &&
		c.Longitude >= b.MinLongitude && c.Longitude <= b.MaxLongitude
}

// MapBounds is the fixed box every character is placed in (Seattle)
var MapBounds = Bounds{
	MinLatitude:  47.4814,
	MaxLatitude:  47.7341,
	MinLongitude: -122.4594,
	MaxLongitude: -122.2244,
}

const (
	latMultiplier = 6364136223846793005
	lngMultiplier = 1442695040888963407
	lngMix        = 0x5BD1E995
	normModulus   = 1_000_000
)

// CoordinatesFor maps an id to a stable position inside MapBounds.
// Latitude and longitude use distinct multipliers so the axes are uncorrelated.
// Arithmetic wraps at 64 bits.
func CoordinatesFor(id int) Coordinates {
	x := uint64(id)
	latHash := x*latMultiplier + 1
	lngHash := (x * lngMultiplier) ^ lngMix

	lat := MapBounds.MinLatitude + normalize(latHash)*(MapBounds.MaxLatitude-MapBounds.MinLatitude)
	lng := MapBounds.MinLongitude + normalize(lngHash)*(MapBounds.MaxLongitude-MapBounds.MinLongitude)
	return Coordinates{Latitude: lat, Longitude: lng}
}

// normalize maps v into [0,1)
func normalize(v uint64) float64 {
	return float64(v%normModulus) / normModulus
}
