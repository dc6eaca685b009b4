package pipeline

import (
	"math"
	"time"

	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/writer"

	"trackfuse"
)

// trackParquetRow is the fixed-column Parquet projection of a track record:
// canonical position columns plus the common sensor fields. Absent readings
// are NaN with the paired valid flag false; fields outside this set are
// only present in the CSV export.
type trackParquetRow struct {
	TSUTCISO     string  `parquet:"name=ts_utc_iso, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	Lat          float64 `parquet:"name=lat, type=DOUBLE"`
	Lon          float64 `parquet:"name=lon, type=DOUBLE"`
	Ele          float64 `parquet:"name=ele, type=DOUBLE"`
	SpeedMPS     float64 `parquet:"name=speed_mps, type=DOUBLE"`
	HRBPM        float64 `parquet:"name=hr_bpm, type=DOUBLE"`
	CadenceRPM   float64 `parquet:"name=cadence_rpm, type=DOUBLE"`
	TemperatureC float64 `parquet:"name=temperature_c, type=DOUBLE"`
	PowerW       float64 `parquet:"name=power_w, type=DOUBLE"`
	DistanceM    float64 `parquet:"name=distance_m, type=DOUBLE"`
	ValidPos     bool    `parquet:"name=valid_pos, type=BOOLEAN"`
	ValidEle     bool    `parquet:"name=valid_ele, type=BOOLEAN"`
	ValidSpeed   bool    `parquet:"name=valid_speed, type=BOOLEAN"`
	ValidHR      bool    `parquet:"name=valid_hr, type=BOOLEAN"`
}

func writeTrackParquet(path string, track *trackfuse.Track) error {
	fw, err := local.NewLocalFileWriter(path)
	if err != nil {
		return err
	}
	pw, err := writer.NewParquetWriter(fw, new(trackParquetRow), 4)
	if err != nil {
		_ = fw.Close()
		return err
	}
	pw.CompressionType = parquet.CompressionCodec_SNAPPY
	for _, rec := range track.Records {
		row := trackParquetRow{
			TSUTCISO:     rec.Timestamp.UTC().Format(time.RFC3339),
			Lat:          valueOrNaN(rec.Lat),
			Lon:          valueOrNaN(rec.Lon),
			Ele:          valueOrNaN(rec.Ele),
			SpeedMPS:     valueOrNaN(rec.Extra["speed"]),
			HRBPM:        valueOrNaN(rec.Extra["heart_rate"]),
			CadenceRPM:   valueOrNaN(rec.Extra["cadence"]),
			TemperatureC: valueOrNaN(rec.Extra["temperature"]),
			PowerW:       valueOrNaN(rec.Extra["power"]),
			DistanceM:    valueOrNaN(rec.Extra["distance"]),
			ValidPos:     rec.SpatiallyValid(),
			ValidEle:     rec.Ele.Valid,
			ValidSpeed:   rec.Extra["speed"].Valid,
			ValidHR:      rec.Extra["heart_rate"].Valid,
		}
		if err := pw.Write(row); err != nil {
			_ = pw.WriteStop()
			_ = fw.Close()
			return err
		}
	}
	if err := pw.WriteStop(); err != nil {
		_ = fw.Close()
		return err
	}
	return fw.Close()
}

func valueOrNaN(v trackfuse.Value) float64 {
	if !v.Valid {
		return math.NaN()
	}
	return v.Float64
}
