package trackfuse

import (
	"sort"
	"time"
)

// Canonical field names shared by every source adapter. Source-specific
// aliases (position_lat, altitude, ...) are resolved to these during
// normalization; anything else rides along in Record.Extra.
const (
	FieldLat       = "lat"
	FieldLon       = "lon"
	FieldEle       = "ele"
	FieldTimestamp = "timestamp"
)

// Value is one optional sensor reading. The zero Value means "no reading",
// which keeps a missing heart-rate sample distinguishable from a true zero.
type Value struct {
	Float64 float64
	Valid   bool
}

// Float wraps a present reading.
func Float(v float64) Value {
	return Value{Float64: v, Valid: true}
}

// Record is one normalized timestamped observation.
type Record struct {
	Timestamp time.Time
	Lat       Value
	Lon       Value
	Ele       Value
	Extra     map[string]Value
}

// SpatiallyValid reports whether the record carries a usable position.
// Latitude and longitude are only ever set together.
func (r Record) SpatiallyValid() bool {
	return r.Lat.Valid && r.Lon.Valid
}

// Field returns the named reading. Canonical elevation is addressable as
// "ele"; every other name is looked up in the extra-field map.
func (r Record) Field(name string) Value {
	switch name {
	case FieldEle:
		return r.Ele
	case FieldLat:
		return r.Lat
	case FieldLon:
		return r.Lon
	}
	return r.Extra[name]
}

// Track is the terminal artifact of one ingestion run: records globally
// sorted by timestamp, ties kept in stream arrival order, with Schema
// holding the union of every contributing stream's extra fields.
type Track struct {
	Schema  []string
	Records []Record
}

// Empty reports whether the track holds no records at all.
func (t *Track) Empty() bool {
	return len(t.Records) == 0
}

// HasField reports whether the named extra field is part of the track schema.
func (t *Track) HasField(name string) bool {
	i := sort.SearchStrings(t.Schema, name)
	return i < len(t.Schema) && t.Schema[i] == name
}

// SpatialRecords returns the records usable for map rendering, preserving
// timestamp order. Records kept for non-spatial analysis are filtered out.
func (t *Track) SpatialRecords() []Record {
	out := make([]Record, 0, len(t.Records))
	for _, r := range t.Records {
		if r.SpatiallyValid() {
			out = append(out, r)
		}
	}
	return out
}
