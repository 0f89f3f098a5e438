package export

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

var rows = []TripRow{
	{Trip: 1, DistanceKm: 3.21, EnergyUsedWh: 450.5, EfficiencyWhKm: 140.3, DurationS: 330, MeanSpeed: 35.1, StdDevSpeed: 22.4, MaxSpeed: 66.8},
	{Trip: 2, DistanceKm: 3.3, EnergyUsedWh: 460, EfficiencyWhKm: 139.4, DurationS: 330, MeanSpeed: 36, StdDevSpeed: 21.9, MaxSpeed: 67.2},
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, FormatCSV, rows); err != nil {
		t.Fatalf("write: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header and 2 rows, got %d lines", len(lines))
	}
	if !strings.HasPrefix(lines[0], "trip,distance_km,") {
		t.Fatalf("unexpected header %q", lines[0])
	}
	if lines[1] != "1,3.21,450.5,140.3,330,35.1,22.4,66.8" {
		t.Fatalf("unexpected row %q", lines[1])
	}
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, FormatJSON, rows); err != nil {
		t.Fatalf("write: %v", err)
	}
	var got []TripRow
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got) != 2 || got[1] != rows[1] {
		t.Fatalf("unexpected rows %+v", got)
	}
}

func TestWriteUnknownFormat(t *testing.T) {
	if err := Write(&bytes.Buffer{}, "xml", rows); err == nil {
		t.Fatal("expected error")
	}
}
