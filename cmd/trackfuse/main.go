package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"trackfuse/ingest"
	"trackfuse/pipeline"
)

func main() {
	var (
		inPath    = flag.String("in", "", "Path to input .gpx or .fit file")
		outDir    = flag.String("out", "", "Output directory")
		gpxTrack  = flag.Int("track", -1, "GPX track index to ingest (-1 merges all tracks)")
		format    = flag.String("format", "parquet", "Track table format: parquet|csv")
		overwrite = flag.Bool("overwrite", true, "Allow writing into non-empty output directories")
	)
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s --in activity.gpx --out outdir [--track 0] [--format parquet|csv]\n", filepath.Base(os.Args[0]))
		flag.PrintDefaults()
	}
	flag.Parse()

	if strings.TrimSpace(*inPath) == "" || strings.TrimSpace(*outDir) == "" {
		flag.Usage()
		os.Exit(2)
	}

	sel := ingest.SelectAll()
	if *gpxTrack >= 0 {
		sel = ingest.SelectTrack(*gpxTrack)
	}
	result, err := pipeline.Run(pipeline.Options{
		InputPath: *inPath,
		OutDir:    *outDir,
		Selection: sel,
		Format:    *format,
		Overwrite: *overwrite,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "trackfuse failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("trackfuse complete\n")
	fmt.Printf("output dir:      %s\n", result.OutputDir)
	fmt.Printf("track table:     %s\n", result.TrackTablePath)
	fmt.Printf("track summary:   %s\n", result.SummaryPath)
	fmt.Printf("points:          %d (%d with position)\n", result.PointCount, result.SpatialPointCount)
	if result.DroppedRows > 0 {
		fmt.Printf("dropped rows:    %d\n", result.DroppedRows)
	}
	for _, w := range result.Warnings {
		fmt.Printf("warning:         %s\n", w)
	}
}
