package readings

import (
	"fmt"
	"math"
)

// SleepSummary is the aggregated view of a patient's sleep rows. Minutes are
// exact sums; hour figures are minutes/60 rounded to two decimals. Total
// asleep time excludes the awake stage.
type SleepSummary struct {
	PatientID          int            `json:"patient_id"`
	ReadingType        Type           `json:"reading_type"`
	DateFilter         string         `json:"date_filter,omitempty"`
	TotalSleepMinutes  float64        `json:"total_sleep_minutes"`
	TotalSleepHours    float64        `json:"total_sleep_hours"`
	TotalSleepDuration string         `json:"total_sleep_duration"`
	SleepBreakdown     SleepBreakdown `json:"sleep_breakdown"`
	TotalSleepRecords  int            `json:"total_sleep_records"`
	Records            []SleepRecord  `json:"records,omitempty"`
	Summary            string         `json:"summary"`
}

// SleepRecord is one stored sleep row with its stage rendered for humans.
type SleepRecord struct {
	Date    string   `json:"date"`
	Stage   string   `json:"stage"`
	Minutes *float64 `json:"minutes,omitempty"`
}

type SleepBreakdown struct {
	DeepSleepMinutes  float64 `json:"deep_sleep_minutes"`
	DeepSleepHours    float64 `json:"deep_sleep_hours"`
	LightSleepMinutes float64 `json:"light_sleep_minutes"`
	LightSleepHours   float64 `json:"light_sleep_hours"`
	REMSleepMinutes   float64 `json:"rem_sleep_minutes"`
	REMSleepHours     float64 `json:"rem_sleep_hours"`
	AwakeMinutes      float64 `json:"awake_minutes"`
	AwakeHours        float64 `json:"awake_hours"`
}

// AggregateSleep folds sleep rows into per-stage totals. Rows with a missing
// or unrecognized level are dropped from both the total and the breakdown;
// they still count toward TotalSleepRecords so callers can see them.
func AggregateSleep(patientID int, rows []*Reading) *SleepSummary {
	var deep, light, rem, awake float64
	records := make([]SleepRecord, 0, len(rows))
	for _, r := range rows {
		records = append(records, SleepRecord{
			Date:    r.Timestamp.Format("2006-01-02"),
			Stage:   SleepLevelDescription(r.SleepLevel),
			Minutes: r.Value,
		})
		if r.SleepLevel == nil || r.Value == nil {
			continue
		}
		switch *r.SleepLevel {
		case SleepDeep:
			deep += *r.Value
		case SleepLight:
			light += *r.Value
		case SleepREM:
			rem += *r.Value
		case SleepAwake:
			awake += *r.Value
		}
	}

	total := deep + light + rem
	s := &SleepSummary{
		PatientID:          patientID,
		ReadingType:        TypeSleep,
		TotalSleepMinutes:  total,
		TotalSleepHours:    roundHours(total),
		TotalSleepDuration: FormatDuration(total),
		SleepBreakdown: SleepBreakdown{
			DeepSleepMinutes:  deep,
			DeepSleepHours:    roundHours(deep),
			LightSleepMinutes: light,
			LightSleepHours:   roundHours(light),
			REMSleepMinutes:   rem,
			REMSleepHours:     roundHours(rem),
			AwakeMinutes:      awake,
			AwakeHours:        roundHours(awake),
		},
		TotalSleepRecords: len(rows),
		Records:           records,
	}

	if len(rows) == 0 {
		s.Summary = fmt.Sprintf("No sleep data available for patient %d.", patientID)
	} else {
		s.Summary = fmt.Sprintf("Patient %d slept %s across %d records (deep %.2fh, light %.2fh, REM %.2fh, awake %.2fh).",
			patientID, s.TotalSleepDuration, len(rows),
			s.SleepBreakdown.DeepSleepHours, s.SleepBreakdown.LightSleepHours,
			s.SleepBreakdown.REMSleepHours, s.SleepBreakdown.AwakeHours)
	}
	return s
}

// FormatDuration renders minutes as "H hours and M minutes", omitting the
// minutes clause when the remainder is zero.
func FormatDuration(minutes float64) string {
	hours := int(minutes) / 60
	remainder := int(minutes) % 60
	if remainder == 0 {
		return fmt.Sprintf("%d hours", hours)
	}
	return fmt.Sprintf("%d hours and %d minutes", hours, remainder)
}

func roundHours(minutes float64) float64 {
	return math.Round(minutes/60*100) / 100
}
