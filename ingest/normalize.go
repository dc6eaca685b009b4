package ingest

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"trackfuse"
)

// aliasTable maps source-specific column names onto the canonical schema.
// It is read-only after package init, so concurrent ingestion runs may
// share it without locking. Names not listed here pass through unchanged
// into Record.Extra.
var aliasTable = map[string]string{
	"lat":          trackfuse.FieldLat,
	"latitude":     trackfuse.FieldLat,
	"position_lat": trackfuse.FieldLat,

	"lon":           trackfuse.FieldLon,
	"lng":           trackfuse.FieldLon,
	"longitude":     trackfuse.FieldLon,
	"position_long": trackfuse.FieldLon,

	"ele":               trackfuse.FieldEle,
	"elevation":         trackfuse.FieldEle,
	"alt":               trackfuse.FieldEle,
	"altitude":          trackfuse.FieldEle,
	"enhanced_altitude": trackfuse.FieldEle,

	"time":      trackfuse.FieldTimestamp,
	"timestamp": trackfuse.FieldTimestamp,

	"speed":          "speed",
	"enhanced_speed": "speed",
	"heart_rate":     "heart_rate",
	"hr":             "heart_rate",
	"cadence":        "cadence",
	"cad":            "cadence",
	"temperature":    "temperature",
	"temp":           "temperature",
	"power":          "power",
	"distance":       "distance",
	"grade":          "grade",
}

// canonicalName resolves one source column name. Unrecognized names are
// returned unchanged so unknown sensor types survive ingestion.
func canonicalName(name string) string {
	if c, ok := aliasTable[strings.ToLower(name)]; ok {
		return c
	}
	return name
}

// NormalizedStream is one stream after normalization: records with canonical
// field names plus the set of extra fields this stream contributes to the
// track schema.
type NormalizedStream struct {
	Fields  []string
	Records []trackfuse.Record
}

// NormalizeStream converts one raw stream into canonical records. The
// transformation is pure aside from the stats counters: rows with an
// unparseable required field are dropped and counted, unparseable optional
// fields become explicit missing values, and unrecognized column names pass
// through into the extra-field map.
func NormalizeStream(s Stream, stats *Stats) NormalizedStream {
	fields := map[string]struct{}{}
	records := make([]trackfuse.Record, 0, len(s.Rows))

rows:
	for _, row := range s.Rows {
		// Required fields decide keep-or-drop before any counter or
		// schema effect, so a dropped row leaves no trace beyond its
		// drop counter regardless of map iteration order.
		ts, ok := rowTimestamp(row)
		if !ok {
			stats.DroppedNoTimestamp++
			continue
		}

		var lat, lon trackfuse.Value
		for name, raw := range row {
			canonical := canonicalName(name)
			if canonical != trackfuse.FieldLat && canonical != trackfuse.FieldLon {
				continue
			}
			f, ok := coerceFloat(raw)
			if !ok {
				// A position that arrived but cannot be parsed
				// invalidates the whole row.
				stats.DroppedBadPosition++
				continue rows
			}
			if canonical == trackfuse.FieldLat {
				lat = trackfuse.Float(f)
			} else {
				lon = trackfuse.Float(f)
			}
		}

		rec := trackfuse.Record{Timestamp: ts, Extra: map[string]trackfuse.Value{}}
		// Latitude and longitude are only usable as a pair.
		if lat.Valid && lon.Valid {
			rec.Lat, rec.Lon = lat, lon
		}

		for name, raw := range row {
			switch canonical := canonicalName(name); canonical {
			case trackfuse.FieldTimestamp, trackfuse.FieldLat, trackfuse.FieldLon:
				// resolved above
			case trackfuse.FieldEle:
				if f, ok := coerceFloat(raw); ok {
					rec.Ele = trackfuse.Float(f)
				} else {
					stats.AbsentOptional++
				}
			default:
				fields[canonical] = struct{}{}
				if f, ok := coerceFloat(raw); ok {
					rec.Extra[canonical] = trackfuse.Float(f)
				} else {
					rec.Extra[canonical] = trackfuse.Value{}
					stats.AbsentOptional++
				}
			}
		}
		records = append(records, rec)
	}

	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	return NormalizedStream{Fields: names, Records: records}
}

func rowTimestamp(row Row) (time.Time, bool) {
	for name, raw := range row {
		if canonicalName(name) != trackfuse.FieldTimestamp {
			continue
		}
		return coerceTime(raw)
	}
	return time.Time{}, false
}

// coerceFloat parses a raw cell into a float64. Text-encoded numbers (GPX
// elevation arrives as XML character data) are accepted alongside the
// numeric types the decoders hand us.
func coerceFloat(raw any) (float64, bool) {
	switch v := raw.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint16:
		return float64(v), true
	case uint32:
		return float64(v), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	}
	return 0, false
}

// coerceTime accepts time.Time from decoders and RFC 3339 text. Timezone
// offsets are folded into the instant so timestamps from different sources
// compare directly.
func coerceTime(raw any) (time.Time, bool) {
	switch v := raw.(type) {
	case time.Time:
		if v.IsZero() {
			return time.Time{}, false
		}
		return v.UTC(), true
	case string:
		t, err := time.Parse(time.RFC3339, strings.TrimSpace(v))
		if err != nil {
			return time.Time{}, false
		}
		return t.UTC(), true
	}
	return time.Time{}, false
}
