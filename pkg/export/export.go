// Package export writes trip summaries in machine-readable formats.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
)

// TripRow is one exported trip.
type TripRow struct {
	Trip           int     `json:"trip"`
	DistanceKm     float64 `json:"distance_km"`
	EnergyUsedWh   float64 `json:"energy_used_wh"`
	EfficiencyWhKm float64 `json:"efficiency_wh_km"`
	DurationS      float64 `json:"duration_s"`
	MeanSpeed      float64 `json:"mean_speed_kmh"`
	StdDevSpeed    float64 `json:"stddev_speed_kmh"`
	MaxSpeed       float64 `json:"max_speed_kmh"`
}

// Formats accepted by Write.
const (
	FormatJSON = "json"
	FormatCSV  = "csv"
)

// Write encodes rows in the named format.
func Write(w io.Writer, format string, rows []TripRow) error {
	switch format {
	case FormatJSON:
		return WriteJSON(w, rows)
	case FormatCSV:
		return WriteCSV(w, rows)
	default:
		return fmt.Errorf("unknown export format %q", format)
	}
}

// WriteJSON writes rows as a JSON array.
func WriteJSON(w io.Writer, rows []TripRow) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rows)
}

// WriteCSV writes rows with a header line.
func WriteCSV(w io.Writer, rows []TripRow) error {
	cw := csv.NewWriter(w)
	header := []string{"trip", "distance_km", "energy_used_wh", "efficiency_wh_km", "duration_s",
		"mean_speed_kmh", "stddev_speed_kmh", "max_speed_kmh"}
	if err := cw.Write(header); err != nil {
		return err
	}
	f := func(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
	for _, r := range rows {
		rec := []string{
			strconv.Itoa(r.Trip),
			f(r.DistanceKm),
			f(r.EnergyUsedWh),
			f(r.EfficiencyWhKm),
			f(r.DurationS),
			f(r.MeanSpeed),
			f(r.StdDevSpeed),
			f(r.MaxSpeed),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
