package ingest

import (
	"fmt"

	"trackfuse"
)

// GPXDocument is the raw parsed shape of one GPX file. Only Tracks is
// consumed by assembly; the remaining members are carried through untouched
// for callers that want them.
type GPXDocument struct {
	Metadata  map[string]any
	Bounds    any
	Waypoints any
	Routes    any

	// Tracks is ordered track -> segment; each segment is one Stream.
	Tracks [][]Stream
}

// FITSource is the raw parsed shape of one FIT activity: one stream per
// concurrently active record definition.
type FITSource struct {
	Streams []Stream
}

// Selection names which GPX tracks feed the merge. Picking is an explicit
// caller decision; the zero value selects every track, so narrowing to one
// track (and discarding the rest) is always opt-in.
type Selection struct {
	index int
	one   bool
}

// SelectAll merges every track and segment in the document.
func SelectAll() Selection {
	return Selection{}
}

// SelectTrack merges only the track at the given index.
func SelectTrack(i int) Selection {
	return Selection{index: i, one: true}
}

// AssembleGPX produces the final track from a parsed GPX document. A
// document with no tracks yields an empty track, not an error; an
// out-of-range explicit selection is an error because it names data that
// does not exist.
func AssembleGPX(doc GPXDocument, sel Selection, stats *Stats) (trackfuse.Track, error) {
	tracks := doc.Tracks
	if sel.one {
		if sel.index < 0 || sel.index >= len(doc.Tracks) {
			return trackfuse.Track{}, fmt.Errorf("track selection %d out of range (document has %d tracks)", sel.index, len(doc.Tracks))
		}
		tracks = doc.Tracks[sel.index : sel.index+1]
	}

	var normalized []NormalizedStream
	for _, segments := range tracks {
		for _, seg := range segments {
			normalized = append(normalized, NormalizeStream(seg, stats))
		}
	}
	return Merge(normalized...), nil
}

// AssembleFIT produces the final track from a parsed FIT activity. Every
// record stream participates; a stream whose rows all fail validation
// contributes nothing but does not halt the merge.
func AssembleFIT(src FITSource, stats *Stats) trackfuse.Track {
	normalized := make([]NormalizedStream, 0, len(src.Streams))
	for _, s := range src.Streams {
		normalized = append(normalized, NormalizeStream(s, stats))
	}
	return Merge(normalized...)
}
