// Package ingest turns raw parser output (GPX segments, FIT sensor streams)
// into normalized, time-ordered trackfuse Tracks.
package ingest

// SourceKind identifies the physical source of a raw stream.
type SourceKind string

const (
	SourceGPXTrack   SourceKind = "gpx-track"
	SourceFITRecords SourceKind = "fit-records"
)

// Row is one raw observation as emitted by a source adapter. Values may be
// float64, int, string-encoded numbers, or time.Time; the normalizer owns
// the coercion rules.
type Row map[string]any

// Stream is one source's ordered raw rows before normalization: one GPX
// track segment, or one FIT per-definition record set. The stream schema
// is derived from the rows during normalization.
type Stream struct {
	Kind SourceKind
	Rows []Row
}

// Stats counts data lost or degraded during one ingestion run. Ingestion
// never aborts for a single bad row; these counters are how callers learn
// what was dropped.
type Stats struct {
	// DroppedBadPosition counts rows whose latitude or longitude was
	// present but not parseable as a number.
	DroppedBadPosition int

	// DroppedNoTimestamp counts rows without a usable timestamp; such rows
	// cannot participate in the chronological merge.
	DroppedNoTimestamp int

	// AbsentOptional counts optional fields that arrived unparseable and
	// were recorded as explicit missing values instead.
	AbsentOptional int
}

// Add accumulates another stats block into s.
func (s *Stats) Add(o Stats) {
	s.DroppedBadPosition += o.DroppedBadPosition
	s.DroppedNoTimestamp += o.DroppedNoTimestamp
	s.AbsentOptional += o.AbsentOptional
}

// Dropped is the total number of rows excluded from the track.
func (s Stats) Dropped() int {
	return s.DroppedBadPosition + s.DroppedNoTimestamp
}
