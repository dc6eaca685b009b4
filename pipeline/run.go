package pipeline

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/tkrajina/gpxgo/gpx"
	"github.com/tormoder/fit"

	"trackfuse"
	"trackfuse/ingest"
)

// Run ingests one activity file and writes the track table plus the
// track_summary.json artifact.
func Run(opts Options) (*Result, error) {
	if strings.TrimSpace(opts.InputPath) == "" {
		return nil, fmt.Errorf("input path is required")
	}
	if strings.TrimSpace(opts.OutDir) == "" {
		return nil, fmt.Errorf("output directory is required")
	}
	format := strings.ToLower(strings.TrimSpace(opts.Format))
	if format == "" {
		format = "parquet"
	}
	if format != "parquet" && format != "csv" {
		return nil, fmt.Errorf("unsupported format %q (expected parquet|csv)", format)
	}

	data, err := os.ReadFile(opts.InputPath)
	if err != nil {
		return nil, fmt.Errorf("read activity file: %w", err)
	}

	var (
		track trackfuse.Track
		stats ingest.Stats
		kind  string
	)
	switch ext := strings.ToLower(filepath.Ext(opts.InputPath)); ext {
	case ".gpx":
		kind = "gpx"
		parsed, err := gpx.ParseBytes(data)
		if err != nil {
			return nil, fmt.Errorf("parse gpx file: %w", err)
		}
		track, err = ingest.AssembleGPX(ingest.FromGPX(parsed), opts.Selection, &stats)
		if err != nil {
			return nil, err
		}
	case ".fit":
		kind = "fit"
		decoded, err := fit.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("decode fit file: %w", err)
		}
		activity, err := decoded.Activity()
		if err != nil {
			return nil, fmt.Errorf("activity fit expected: %w", err)
		}
		track = ingest.AssembleFIT(ingest.FromFIT(activity), &stats)
	default:
		return nil, fmt.Errorf("unsupported activity format %q (expected .gpx or .fit)", ext)
	}

	if err := ensureOutputDir(opts.OutDir, opts.Overwrite); err != nil {
		return nil, err
	}

	tablePath := filepath.Join(opts.OutDir, "track."+format)
	switch format {
	case "csv":
		if err := writeTrackCSV(tablePath, &track); err != nil {
			return nil, fmt.Errorf("write track csv: %w", err)
		}
	case "parquet":
		if err := writeTrackParquet(tablePath, &track); err != nil {
			return nil, fmt.Errorf("write track parquet: %w", err)
		}
	}

	summary := buildSummary(opts.InputPath, kind, &track, stats)
	summaryPath := filepath.Join(opts.OutDir, "track_summary.json")
	if err := writeJSON(summaryPath, summary); err != nil {
		return nil, fmt.Errorf("write track_summary.json: %w", err)
	}

	result := &Result{
		OutputDir:         opts.OutDir,
		TrackTablePath:    tablePath,
		SummaryPath:       summaryPath,
		PointCount:        summary.PointCount,
		SpatialPointCount: summary.SpatialPointCount,
		DroppedRows:       stats.Dropped(),
	}
	if track.Empty() {
		result.Warnings = append(result.Warnings, "track is empty; renderers must skip bounds and markers")
	}
	if n := stats.Dropped(); n > 0 {
		result.Warnings = append(result.Warnings, fmt.Sprintf("dropped %d malformed rows (%d bad position, %d missing timestamp)",
			n, stats.DroppedBadPosition, stats.DroppedNoTimestamp))
	}
	return result, nil
}

func buildSummary(inputPath, kind string, track *trackfuse.Track, stats ingest.Stats) TrackSummary {
	summary := TrackSummary{
		SourceFile:         filepath.Base(inputPath),
		SourceKind:         kind,
		PointCount:         len(track.Records),
		SpatialPointCount:  len(track.SpatialRecords()),
		DroppedBadPosition: stats.DroppedBadPosition,
		DroppedNoTimestamp: stats.DroppedNoTimestamp,
		AbsentOptional:     stats.AbsentOptional,
		Schema:             track.Schema,
		TotalDistanceM:     track.TotalDistanceMeters(),
	}

	if bounds, ok := track.Bounds(); ok {
		summary.Bounds = &bounds
	}
	if first, last, ok := track.Endpoints(); ok {
		summary.Start = summaryPoint(first, "")
		summary.End = summaryPoint(last, "")
	}
	if rec, ok := track.MaxByField("speed"); ok && rec.SpatiallyValid() {
		summary.MaxSpeed = summaryPoint(rec, "speed")
	}
	if rng, ok := track.FieldRange("speed"); ok {
		summary.SpeedRange = &rng
	}
	return summary
}

func summaryPoint(rec trackfuse.Record, field string) *SummaryPoint {
	p := &SummaryPoint{
		TSUTCISO: rec.Timestamp.UTC().Format(time.RFC3339),
		Lat:      rec.Lat.Float64,
		Lon:      rec.Lon.Float64,
	}
	if rec.Ele.Valid {
		ele := rec.Ele.Float64
		p.Ele = &ele
	}
	if field != "" {
		if v := rec.Field(field); v.Valid {
			val := v.Float64
			p.Value = &val
		}
	}
	return p
}

func ensureOutputDir(path string, overwrite bool) error {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	entries, err := os.ReadDir(path)
	if err != nil {
		return fmt.Errorf("read output directory: %w", err)
	}
	if len(entries) > 0 && !overwrite {
		return fmt.Errorf("output directory is not empty: %s (set overwrite to allow)", path)
	}
	return nil
}

// writeTrackCSV covers the full unioned schema: canonical columns first,
// then every extra field in schema order. Absent values are empty cells.
func writeTrackCSV(path string, track *trackfuse.Track) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	header := append([]string{"ts_utc_iso", "lat", "lon", "ele"}, track.Schema...)
	if err := w.Write(header); err != nil {
		return err
	}
	for _, rec := range track.Records {
		row := make([]string, 0, len(header))
		row = append(row,
			rec.Timestamp.UTC().Format(time.RFC3339),
			formatValue(rec.Lat),
			formatValue(rec.Lon),
			formatValue(rec.Ele),
		)
		for _, name := range track.Schema {
			row = append(row, formatValue(rec.Extra[name]))
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func formatValue(v trackfuse.Value) string {
	if !v.Valid {
		return ""
	}
	return strconv.FormatFloat(v.Float64, 'f', -1, 64)
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
