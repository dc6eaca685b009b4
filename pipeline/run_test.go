package pipeline

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"trackfuse/ingest"
)

const sampleGPX = `<?xml version="1.0" encoding="UTF-8"?>
<gpx version="1.1" creator="unit-test" xmlns="http://www.topografix.com/GPX/1/1">
  <trk>
    <trkseg>
      <trkpt lat="47.1" lon="8.5"><ele>430.0</ele><time>2023-06-01T06:00:00Z</time></trkpt>
      <trkpt lat="47.2" lon="8.6"><ele>435.5</ele><time>2023-06-01T06:00:10Z</time></trkpt>
    </trkseg>
  </trk>
</gpx>`

func writeSampleGPX(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ride.gpx")
	if err := os.WriteFile(path, []byte(sampleGPX), 0o644); err != nil {
		t.Fatalf("write sample gpx: %v", err)
	}
	return path
}

func TestRunGPXToCSV(t *testing.T) {
	outDir := filepath.Join(t.TempDir(), "out")
	res, err := Run(Options{
		InputPath: writeSampleGPX(t),
		OutDir:    outDir,
		Format:    "csv",
		Overwrite: true,
	})
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	if res.PointCount != 2 || res.SpatialPointCount != 2 {
		t.Fatalf("point counts = %d/%d, want 2/2", res.PointCount, res.SpatialPointCount)
	}

	f, err := os.Open(res.TrackTablePath)
	if err != nil {
		t.Fatalf("open track table: %v", err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read track csv: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("got %d csv rows, want header + 2", len(rows))
	}
	wantHeader := []string{"ts_utc_iso", "lat", "lon", "ele"}
	for i, col := range wantHeader {
		if rows[0][i] != col {
			t.Fatalf("header column %d = %q, want %q", i, rows[0][i], col)
		}
	}
	if rows[1][0] != "2023-06-01T06:00:00Z" {
		t.Fatalf("first timestamp cell = %q", rows[1][0])
	}

	var summary TrackSummary
	data, err := os.ReadFile(res.SummaryPath)
	if err != nil {
		t.Fatalf("read summary: %v", err)
	}
	if err := json.Unmarshal(data, &summary); err != nil {
		t.Fatalf("unmarshal summary: %v", err)
	}
	if summary.SourceKind != "gpx" {
		t.Fatalf("source kind = %q, want gpx", summary.SourceKind)
	}
	if summary.Bounds == nil {
		t.Fatalf("expected bounds for a spatial track")
	}
	if summary.Bounds.LatMin > 47.1+1e-6 || summary.Bounds.LatMax < 47.2-1e-6 {
		t.Fatalf("bounds = %+v", summary.Bounds)
	}
	if summary.Start == nil || summary.End == nil {
		t.Fatalf("expected endpoints in summary")
	}
	if summary.TotalDistanceM <= 0 {
		t.Fatalf("total distance = %v, want > 0", summary.TotalDistanceM)
	}
}

const twoTrackGPX = `<?xml version="1.0" encoding="UTF-8"?>
<gpx version="1.1" creator="unit-test" xmlns="http://www.topografix.com/GPX/1/1">
  <trk>
    <trkseg>
      <trkpt lat="47.1" lon="8.5"><time>2023-06-01T06:00:00Z</time></trkpt>
    </trkseg>
  </trk>
  <trk>
    <trkseg>
      <trkpt lat="48.1" lon="9.5"><time>2023-06-01T07:00:00Z</time></trkpt>
      <trkpt lat="48.2" lon="9.6"><time>2023-06-01T07:00:10Z</time></trkpt>
    </trkseg>
  </trk>
</gpx>`

func TestRunDefaultSelectionKeepsEveryTrack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ride.gpx")
	if err := os.WriteFile(path, []byte(twoTrackGPX), 0o644); err != nil {
		t.Fatalf("write sample gpx: %v", err)
	}

	// Selection left at its zero value: every track must survive.
	// Discarding tracks takes an explicit SelectTrack call.
	res, err := Run(Options{
		InputPath: path,
		OutDir:    filepath.Join(t.TempDir(), "out"),
		Format:    "csv",
		Overwrite: true,
	})
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if res.PointCount != 3 {
		t.Fatalf("got %d points, want 3: unset selection must not drop tracks", res.PointCount)
	}
}

func TestRunRejectsUnknownFormat(t *testing.T) {
	_, err := Run(Options{
		InputPath: writeSampleGPX(t),
		OutDir:    t.TempDir(),
		Format:    "xlsx",
		Overwrite: true,
	})
	if err == nil {
		t.Fatalf("expected error for unknown table format")
	}
}

func TestRunRejectsUnknownExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ride.tcx")
	if err := os.WriteFile(path, []byte("<tcx/>"), 0o644); err != nil {
		t.Fatalf("write sample: %v", err)
	}
	_, err := Run(Options{InputPath: path, OutDir: t.TempDir(), Overwrite: true})
	if err == nil {
		t.Fatalf("expected error for unsupported activity format")
	}
}

func TestRunTrackSelectionOutOfRange(t *testing.T) {
	_, err := Run(Options{
		InputPath: writeSampleGPX(t),
		OutDir:    t.TempDir(),
		Selection: ingest.SelectTrack(5),
		Format:    "csv",
		Overwrite: true,
	})
	if err == nil {
		t.Fatalf("expected error for out-of-range track selection")
	}
}

func TestRunRequiresPaths(t *testing.T) {
	if _, err := Run(Options{OutDir: "x"}); err == nil {
		t.Fatalf("expected error for missing input path")
	}
	if _, err := Run(Options{InputPath: "x.gpx"}); err == nil {
		t.Fatalf("expected error for missing output directory")
	}
}
