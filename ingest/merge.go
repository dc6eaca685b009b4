package ingest

import (
	"sort"

	"trackfuse"
)

// Merge combines normalized streams recorded concurrently by independent
// sensors into one track. The track schema is the union of every stream's
// fields; records are sorted by timestamp with ties kept in stream arrival
// order; and any schema field a record's stream never carried is
// materialized as an explicit missing value, never a silent zero.
func Merge(streams ...NormalizedStream) trackfuse.Track {
	fields := map[string]struct{}{}
	total := 0
	for _, s := range streams {
		for _, name := range s.Fields {
			fields[name] = struct{}{}
		}
		total += len(s.Records)
	}

	schema := make([]string, 0, len(fields))
	for name := range fields {
		schema = append(schema, name)
	}
	sort.Strings(schema)

	records := make([]trackfuse.Record, 0, total)
	for _, s := range streams {
		records = append(records, s.Records...)
	}

	// Concatenation order above is stream arrival order, which the stable
	// sort preserves for identical instants.
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Timestamp.Before(records[j].Timestamp)
	})

	for i := range records {
		if records[i].Extra == nil {
			records[i].Extra = make(map[string]trackfuse.Value, len(schema))
		}
		for _, name := range schema {
			if _, ok := records[i].Extra[name]; !ok {
				records[i].Extra[name] = trackfuse.Value{}
			}
		}
	}

	return trackfuse.Track{Schema: schema, Records: records}
}
