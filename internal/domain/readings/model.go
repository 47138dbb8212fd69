package readings

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Type identifies one biometric reading category.
type Type string

const (
	TypeGlucose         Type = "glucose"
	TypeBloodPressure   Type = "blood_pressure"
	TypeBodyTemperature Type = "body_temperature"
	TypeHRV             Type = "hrv"
	TypeSpO2            Type = "spo2"
	TypeStress          Type = "stress"
	TypeSleep           Type = "sleep"
	TypeActivity        Type = "activity"
)

// typeInfo carries the static per-type metadata: storage mapping, the column
// holding the comparable value, and the clinical thresholds used by the
// cross-patient scan. Types without thresholds do not support the scan.
type typeInfo struct {
	table       string
	timeColumn  string
	valueColumn string
	high, low   float64
	scannable   bool
}

var registry = map[Type]typeInfo{
	TypeGlucose:         {table: "glucose_readings", timeColumn: "timestamp", valueColumn: "value", high: 180, low: 70, scannable: true},
	TypeBloodPressure:   {table: "blood_pressure_readings", timeColumn: "timestamp", valueColumn: "systolic", high: 140, low: 90, scannable: true},
	TypeBodyTemperature: {table: "body_temperature_readings", timeColumn: "timestamp", valueColumn: "temperature", high: 100.4, low: 96.0, scannable: true},
	TypeHRV:             {table: "hrv_readings", timeColumn: "timestamp", valueColumn: "value", high: 50, low: 20, scannable: true},
	TypeSpO2:            {table: "spo2_readings", timeColumn: "timestamp", valueColumn: "value", high: 100, low: 90, scannable: true},
	TypeStress:          {table: "stress_readings", timeColumn: "timestamp", valueColumn: "value", high: 80, low: 20, scannable: true},
	TypeSleep:           {table: "sleep_readings_details", timeColumn: "date", valueColumn: "value"},
	TypeActivity:        {table: "activity_readings", timeColumn: "timestamp", valueColumn: "value"},
}

// AllTypes returns the supported reading types in stable order.
func AllTypes() []Type {
	types := make([]Type, 0, len(registry))
	for t := range registry {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	return types
}

// ParseType validates a reading type string against the closed set.
func ParseType(s string) (Type, error) {
	t := Type(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := registry[t]; !ok {
		names := make([]string, 0, len(registry))
		for _, known := range AllTypes() {
			names = append(names, string(known))
		}
		return "", fmt.Errorf("%w: %q (available types: %s)", ErrInvalidReadingType, s, strings.Join(names, ", "))
	}
	return t, nil
}

// Table returns the backing table name.
func (t Type) Table() string { return registry[t].table }

// TimeColumn returns the timestamp column; sleep rows are keyed by date.
func (t Type) TimeColumn() string { return registry[t].timeColumn }

// ValueColumn returns the column holding the comparable value.
func (t Type) ValueColumn() string { return registry[t].valueColumn }

// SupportsThresholdScan reports whether the type has clinical thresholds.
func (t Type) SupportsThresholdScan() bool { return registry[t].scannable }

// Threshold returns the clinical cutoff for the given scan kind.
func (t Type) Threshold(kind ThresholdKind) (float64, error) {
	info := registry[t]
	if !info.scannable {
		return 0, fmt.Errorf("%w: reading type %s doesn't support high/low analysis", ErrUnsupportedAnalysis, t)
	}
	switch kind {
	case ThresholdHigh:
		return info.high, nil
	case ThresholdLow:
		return info.low, nil
	default:
		return 0, fmt.Errorf("%w: find type must be \"high\" or \"low\", got %q", ErrInvalidArgument, string(kind))
	}
}

// ThresholdKind selects which clinical cutoff a scan compares against.
type ThresholdKind string

const (
	ThresholdHigh ThresholdKind = "high"
	ThresholdLow  ThresholdKind = "low"
)

// ParseThresholdKind validates a find type string.
func ParseThresholdKind(s string) (ThresholdKind, error) {
	switch k := ThresholdKind(strings.ToLower(strings.TrimSpace(s))); k {
	case ThresholdHigh, ThresholdLow:
		return k, nil
	default:
		return "", fmt.Errorf("%w: find type must be \"high\" or \"low\", got %q", ErrInvalidArgument, s)
	}
}

// Sleep stage levels as stored in the level column.
const (
	SleepDeep  = 0
	SleepLight = 1
	SleepREM   = 2
	SleepAwake = 3
)

// SleepLevelDescription renders a stored sleep level for humans. Unknown and
// absent levels are reported, not dropped, so callers can see bad rows.
func SleepLevelDescription(level *int) string {
	if level == nil {
		return "unknown"
	}
	switch *level {
	case SleepDeep:
		return "deep sleep"
	case SleepLight:
		return "light sleep"
	case SleepREM:
		return "REM sleep"
	case SleepAwake:
		return "awake"
	default:
		return fmt.Sprintf("unknown level %d", *level)
	}
}

// Reading is one measurement row. The value fields are mutually exclusive by
// type: blood pressure carries systolic/diastolic, body temperature carries
// temperature, everything else carries value. Sleep rows additionally carry
// the stage level and a free-text sleep type.
type Reading struct {
	ID        int       `db:"id" json:"id"`
	PatientID int       `db:"patient_id" json:"patient_id"`
	Type      Type      `db:"-" json:"reading_type"`
	Timestamp time.Time `db:"timestamp" json:"timestamp"`

	Value       *float64 `db:"value" json:"value,omitempty"`
	Systolic    *int     `db:"systolic" json:"systolic,omitempty"`
	Diastolic   *int     `db:"diastolic" json:"diastolic,omitempty"`
	Temperature *float64 `db:"temperature" json:"temperature,omitempty"`

	SleepType  *string `db:"sleep_type" json:"sleep_type,omitempty"`
	SleepLevel *int    `db:"level" json:"level,omitempty"`
}

// CompareValue returns the value used for ordering and threshold comparison,
// per the type's value column. The boolean is false when the row is missing
// its value field; such rows never participate in highest/lowest selection.
func (r *Reading) CompareValue() (float64, bool) {
	switch r.Type {
	case TypeBloodPressure:
		if r.Systolic == nil {
			return 0, false
		}
		return float64(*r.Systolic), true
	case TypeBodyTemperature:
		if r.Temperature == nil {
			return 0, false
		}
		return *r.Temperature, true
	default:
		if r.Value == nil {
			return 0, false
		}
		return *r.Value, true
	}
}
