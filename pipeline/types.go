package pipeline

import (
	"trackfuse"
	"trackfuse/ingest"
)

// Options configures one ingestion run.
type Options struct {
	// InputPath points at a .gpx or .fit activity file.
	InputPath string

	// OutDir receives the track table and summary artifacts.
	OutDir string

	// Selection names which tracks of a multi-track GPX file to ingest.
	// The zero value merges every track; narrowing to one track (and
	// discarding the rest) takes an explicit ingest.SelectTrack call, so
	// a caller can never lose data by leaving this unset.
	Selection ingest.Selection

	// Format chooses the track table encoding: parquet|csv.
	Format string

	// Overwrite allows writing into a non-empty output directory.
	Overwrite bool
}

// Result returns generated output paths and run counters.
type Result struct {
	OutputDir         string   `json:"output_dir"`
	TrackTablePath    string   `json:"track_table_path"`
	SummaryPath       string   `json:"summary_path"`
	PointCount        int      `json:"point_count"`
	SpatialPointCount int      `json:"spatial_point_count"`
	DroppedRows       int      `json:"dropped_rows"`
	Warnings          []string `json:"warnings,omitempty"`
}

// SummaryPoint is one marker-worthy record in the summary artifact.
type SummaryPoint struct {
	TSUTCISO string   `json:"ts_utc_iso"`
	Lat      float64  `json:"lat"`
	Lon      float64  `json:"lon"`
	Ele      *float64 `json:"ele,omitempty"`
	Value    *float64 `json:"value,omitempty"`
}

// TrackSummary is the track_summary.json artifact: everything a renderer
// needs for viewport fitting, endpoint markers, and gradient scaling.
type TrackSummary struct {
	SourceFile         string            `json:"source_file"`
	SourceKind         string            `json:"source_kind"`
	PointCount         int               `json:"point_count"`
	SpatialPointCount  int               `json:"spatial_point_count"`
	DroppedBadPosition int               `json:"dropped_bad_position"`
	DroppedNoTimestamp int               `json:"dropped_no_timestamp"`
	AbsentOptional     int               `json:"absent_optional_fields"`
	Schema             []string          `json:"schema"`
	Bounds             *trackfuse.Bounds `json:"bounds,omitempty"`
	Start              *SummaryPoint     `json:"start,omitempty"`
	End                *SummaryPoint     `json:"end,omitempty"`
	MaxSpeed           *SummaryPoint     `json:"max_speed,omitempty"`
	SpeedRange         *trackfuse.Range  `json:"speed_range,omitempty"`
	TotalDistanceM     float64           `json:"total_distance_m"`
}
