package ingest

import (
	"math"
	"sort"
	"strings"

	"github.com/tormoder/fit"
)

// FromFIT reshapes a decoded FIT activity into the source form the
// assembler consumes. Record messages are grouped by field signature, so
// each concurrently active sensor definition (GPS-only, HR-only, combined)
// becomes its own stream and the merger reconstructs the union schema.
func FromFIT(activity *fit.ActivityFile) FITSource {
	byShape := map[string]int{}
	var streams []Stream

	for _, rec := range activity.Records {
		if rec == nil {
			continue
		}
		row := fitRecordRow(rec)
		if len(row) == 0 {
			continue
		}

		shape := rowShape(row)
		idx, ok := byShape[shape]
		if !ok {
			idx = len(streams)
			byShape[shape] = idx
			streams = append(streams, Stream{Kind: SourceFITRecords})
		}
		streams[idx].Rows = append(streams[idx].Rows, row)
	}

	return FITSource{Streams: streams}
}

// fitRecordRow extracts one record message, honoring the FIT invalid-value
// sentinels so a 0xFF heart rate never becomes a reading.
func fitRecordRow(rec *fit.RecordMsg) Row {
	row := Row{}

	if ts := rec.Timestamp; !ts.IsZero() && !fit.IsBaseTime(ts) {
		row["timestamp"] = ts.UTC()
	}

	lat := rec.PositionLat.Degrees()
	lon := rec.PositionLong.Degrees()
	if !math.IsNaN(lat) && !math.IsNaN(lon) {
		row["position_lat"] = lat
		row["position_long"] = lon
	}

	if alt := rec.GetEnhancedAltitudeScaled(); isFinite(alt) {
		row["altitude"] = alt
	} else if alt := rec.GetAltitudeScaled(); isFinite(alt) {
		row["altitude"] = alt
	}

	if speed := rec.GetEnhancedSpeedScaled(); isFinite(speed) && speed >= 0 {
		row["speed"] = speed
	} else if speed := rec.GetSpeedScaled(); isFinite(speed) && speed >= 0 {
		row["speed"] = speed
	}

	if dist := rec.GetDistanceScaled(); isFinite(dist) && dist >= 0 {
		row["distance"] = dist
	}

	if rec.HeartRate != math.MaxUint8 {
		row["heart_rate"] = float64(rec.HeartRate)
	}
	if rec.Cadence != math.MaxUint8 {
		row["cadence"] = float64(rec.Cadence)
	}
	if rec.Temperature != math.MaxInt8 {
		row["temperature"] = float64(rec.Temperature)
	}
	if rec.Power != math.MaxUint16 {
		row["power"] = float64(rec.Power)
	}

	return row
}

func rowShape(row Row) string {
	return strings.Join(shapeFields(row), ",")
}

func shapeFields(row Row) []string {
	names := make([]string, 0, len(row))
	for name := range row {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
