package serial

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/kilianp07/evdash/core/telemetry"
)

var (
	// ErrEmptyRecord is returned for blank lines.
	ErrEmptyRecord = errors.New("empty record")
	// ErrFieldCount is returned when a record has fewer than five fields.
	ErrFieldCount = errors.New("record has too few fields")
)

const recordFields = 5

// Parser decodes delimiter-separated telemetry records of the form
// timestamp;speed;temperature;voltage;wh.
type Parser struct {
	Delimiter  string
	CapacityWh float64
}

// NewParser returns a parser with the default delimiter and pack capacity
// for zero values.
func NewParser(delimiter string, capacityWh float64) Parser {
	if delimiter == "" {
		delimiter = ";"
	}
	if capacityWh <= 0 {
		capacityWh = telemetry.PackCapacityWh
	}
	return Parser{Delimiter: delimiter, CapacityWh: capacityWh}
}

// Parse decodes line on top of prev. Only the transmitted fields and the
// derived SoC change; trip summary fields are carried over. Extra trailing
// fields are ignored.
func (p Parser) Parse(line string, prev telemetry.Snapshot) (telemetry.Snapshot, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return prev, ErrEmptyRecord
	}
	parts := strings.Split(line, p.Delimiter)
	if len(parts) < recordFields {
		return prev, fmt.Errorf("%w: got %d", ErrFieldCount, len(parts))
	}

	var vals [recordFields]float64
	names := [recordFields]string{"timestamp", "speed", "temperature", "voltage", "wh"}
	for i := range vals {
		v, err := strconv.ParseFloat(strings.TrimSpace(parts[i]), 64)
		if err != nil {
			return prev, fmt.Errorf("parse %s: %w", names[i], err)
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return prev, fmt.Errorf("parse %s: non-finite value %q", names[i], parts[i])
		}
		vals[i] = v
	}

	s := prev
	s.Timestamp = vals[0]
	s.Speed = vals[1]
	s.Temperature = vals[2]
	s.Voltage = vals[3]
	s.Wh = vals[4]
	s.SoC = telemetry.SoCFromWh(s.Wh, p.CapacityWh)
	return s.Bounded(), nil
}
