package trackfuse

import (
	"github.com/golang/geo/s2"
)

// EarthRadiusMeters is the mean earth radius used for distance summaries.
const EarthRadiusMeters = 6371000.0

// Bounds is the geographic bounding box of a track in degrees. For a
// track crossing the antimeridian the longitude interval wraps: LonMin is
// greater than LonMax and the box spans the 180° meridian between them.
type Bounds struct {
	LatMin float64 `json:"lat_min"`
	LatMax float64 `json:"lat_max"`
	LonMin float64 `json:"lon_min"`
	LonMax float64 `json:"lon_max"`
}

// Bounds computes the bounding box over all spatially-valid records as the
// minimal spherical rectangle, so longitudes wrap across the antimeridian
// rather than ballooning to a near-global box. The second return value is
// false for a track with no usable positions; callers must check it before
// placing markers or fitting a viewport.
func (t *Track) Bounds() (Bounds, bool) {
	rect := s2.EmptyRect()
	found := false
	for _, r := range t.Records {
		if !r.SpatiallyValid() {
			continue
		}
		rect = rect.AddPoint(s2.LatLngFromDegrees(r.Lat.Float64, r.Lon.Float64))
		found = true
	}
	if !found {
		return Bounds{}, false
	}
	return Bounds{
		LatMin: rect.Lo().Lat.Degrees(),
		LatMax: rect.Hi().Lat.Degrees(),
		LonMin: rect.Lo().Lng.Degrees(),
		LonMax: rect.Hi().Lng.Degrees(),
	}, true
}

// Endpoints returns the first and last spatially-valid records in timestamp
// order. ok is false when the track has no usable positions.
func (t *Track) Endpoints() (first, last Record, ok bool) {
	for _, r := range t.Records {
		if !r.SpatiallyValid() {
			continue
		}
		if !ok {
			first = r
			ok = true
		}
		last = r
	}
	return first, last, ok
}

// MaxByField returns the record attaining the maximum present value of the
// named field. Ties keep the earliest record. ok is false when the field is
// not in the track schema or no record carries a reading for it.
func (t *Track) MaxByField(name string) (Record, bool) {
	var best Record
	found := false
	for _, r := range t.Records {
		v := r.Field(name)
		if !v.Valid {
			continue
		}
		if !found || v.Float64 > best.Field(name).Float64 {
			best = r
			found = true
		}
	}
	return best, found
}

// Range is a caller-facing {min, max} pair for colour-gradient scaling.
type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// FieldRange returns the min/max of all present readings of the named field.
func (t *Track) FieldRange(name string) (Range, bool) {
	var rng Range
	found := false
	for _, r := range t.Records {
		v := r.Field(name)
		if !v.Valid {
			continue
		}
		if !found {
			rng = Range{Min: v.Float64, Max: v.Float64}
			found = true
			continue
		}
		if v.Float64 < rng.Min {
			rng.Min = v.Float64
		}
		if v.Float64 > rng.Max {
			rng.Max = v.Float64
		}
	}
	return rng, found
}

// Polyline projects the track into parallel lat/lon slices, the shape
// polyline map renderers consume. Non-spatial records are skipped.
func (t *Track) Polyline() (lats, lons []float64) {
	for _, r := range t.Records {
		if !r.SpatiallyValid() {
			continue
		}
		lats = append(lats, r.Lat.Float64)
		lons = append(lons, r.Lon.Float64)
	}
	return lats, lons
}

// GradientPoint is one (position, value) triple for colour-gradient overlays.
type GradientPoint struct {
	Lat   float64 `json:"lat"`
	Lon   float64 `json:"lon"`
	Value float64 `json:"value"`
}

// GradientPoints projects the track for a gradient overlay of the named
// field. Records missing either position or the field value are skipped.
func (t *Track) GradientPoints(name string) []GradientPoint {
	out := make([]GradientPoint, 0, len(t.Records))
	for _, r := range t.Records {
		v := r.Field(name)
		if !r.SpatiallyValid() || !v.Valid {
			continue
		}
		out = append(out, GradientPoint{Lat: r.Lat.Float64, Lon: r.Lon.Float64, Value: v.Float64})
	}
	return out
}

// TotalDistanceMeters sums great-circle distances between consecutive
// spatially-valid records.
func (t *Track) TotalDistanceMeters() float64 {
	total := 0.0
	havePrev := false
	var prev s2.LatLng
	for _, r := range t.Records {
		if !r.SpatiallyValid() {
			continue
		}
		cur := s2.LatLngFromDegrees(r.Lat.Float64, r.Lon.Float64)
		if havePrev {
			total += prev.Distance(cur).Radians() * EarthRadiusMeters
		}
		prev = cur
		havePrev = true
	}
	return total
}
