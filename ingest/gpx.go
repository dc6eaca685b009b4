package ingest

import (
	"github.com/tkrajina/gpxgo/gpx"
)

// FromGPX reshapes a parsed GPX file into the document form the assembler
// consumes. Each track segment becomes one raw stream; waypoints, routes,
// and bounds ride along untouched for the caller.
func FromGPX(g *gpx.GPX) GPXDocument {
	doc := GPXDocument{
		Metadata: map[string]any{
			"creator":     g.Creator,
			"version":     g.Version,
			"name":        g.Name,
			"description": g.Description,
			"author_name": g.AuthorName,
			"keywords":    g.Keywords,
			"time":        g.Time,
		},
		Bounds:    g.Bounds,
		Waypoints: g.Waypoints,
		Routes:    g.Routes,
	}

	for _, track := range g.Tracks {
		segments := make([]Stream, 0, len(track.Segments))
		for _, seg := range track.Segments {
			segments = append(segments, gpxSegmentStream(seg))
		}
		doc.Tracks = append(doc.Tracks, segments)
	}
	return doc
}

func gpxSegmentStream(seg gpx.GPXTrackSegment) Stream {
	s := Stream{
		Kind: SourceGPXTrack,
		Rows: make([]Row, 0, len(seg.Points)),
	}
	for _, p := range seg.Points {
		row := Row{
			"lat":  p.Latitude,
			"lon":  p.Longitude,
			"time": p.Timestamp,
		}
		if p.Elevation.NotNull() {
			row["ele"] = p.Elevation.Value()
		}
		s.Rows = append(s.Rows, row)
	}
	return s
}
