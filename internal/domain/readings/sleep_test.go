package readings

import (
	"strings"
	"testing"
	"time"
)

func sleepRow(day int, level int, minutes float64) *Reading {
	return &Reading{
		Type:       TypeSleep,
		PatientID:  111,
		Timestamp:  time.Date(2025, 8, day, 0, 0, 0, 0, time.UTC),
		Value:      fval(minutes),
		SleepLevel: ival(level),
	}
}

func TestAggregateSleep_TotalExcludesAwake(t *testing.T) {
	rows := []*Reading{
		sleepRow(11, SleepDeep, 95),
		sleepRow(11, SleepLight, 210),
		sleepRow(11, SleepREM, 84),
		sleepRow(11, SleepAwake, 31),
	}
	s := AggregateSleep(111, rows)

	if s.TotalSleepMinutes != 389 {
		t.Errorf("total = %v, want 389", s.TotalSleepMinutes)
	}
	b := s.SleepBreakdown
	if got := b.DeepSleepMinutes + b.LightSleepMinutes + b.REMSleepMinutes; got != s.TotalSleepMinutes {
		t.Errorf("deep+light+rem = %v, want %v", got, s.TotalSleepMinutes)
	}
	if s.TotalSleepMinutes > b.DeepSleepMinutes+b.LightSleepMinutes+b.REMSleepMinutes+b.AwakeMinutes {
		t.Error("total should never exceed the sum of all stages")
	}
	if s.TotalSleepDuration != "6 hours and 29 minutes" {
		t.Errorf("duration = %q, want \"6 hours and 29 minutes\"", s.TotalSleepDuration)
	}
	if s.TotalSleepRecords != 4 {
		t.Errorf("records = %d, want 4", s.TotalSleepRecords)
	}
	if b.DeepSleepHours != 1.58 {
		t.Errorf("deep hours = %v, want 1.58", b.DeepSleepHours)
	}
	if len(s.Records) != 4 {
		t.Fatalf("records = %d, want 4", len(s.Records))
	}
	if s.Records[0].Stage != "deep sleep" || s.Records[0].Date != "2025-08-11" {
		t.Errorf("first record = %+v", s.Records[0])
	}
}

func TestAggregateSleep_DropsUnknownLevels(t *testing.T) {
	rows := []*Reading{
		sleepRow(11, SleepDeep, 60),
		sleepRow(11, 7, 45),
		{Type: TypeSleep, PatientID: 111, Timestamp: time.Date(2025, 8, 11, 0, 0, 0, 0, time.UTC), Value: fval(30)},
	}
	s := AggregateSleep(111, rows)

	if s.TotalSleepMinutes != 60 {
		t.Errorf("total = %v, want 60 (unknown levels dropped)", s.TotalSleepMinutes)
	}
	if s.TotalSleepRecords != 3 {
		t.Errorf("records = %d, want 3 (dropped rows still counted)", s.TotalSleepRecords)
	}
}

func TestAggregateSleep_NoRecords(t *testing.T) {
	s := AggregateSleep(111, nil)

	if s.TotalSleepMinutes != 0 || s.TotalSleepRecords != 0 {
		t.Errorf("empty aggregate = %v minutes, %d records", s.TotalSleepMinutes, s.TotalSleepRecords)
	}
	if !strings.Contains(s.Summary, "No sleep data") {
		t.Errorf("summary = %q, want a no-data message", s.Summary)
	}
}

func TestFormatDuration(t *testing.T) {
	cases := []struct {
		minutes float64
		want    string
	}{
		{389, "6 hours and 29 minutes"},
		{420, "7 hours"},
		{0, "0 hours"},
		{59, "0 hours and 59 minutes"},
	}
	for _, tc := range cases {
		if got := FormatDuration(tc.minutes); got != tc.want {
			t.Errorf("FormatDuration(%v) = %q, want %q", tc.minutes, got, tc.want)
		}
	}
}

func TestSleepLevelDescription(t *testing.T) {
	if got := SleepLevelDescription(ival(SleepREM)); got != "REM sleep" {
		t.Errorf("REM description = %q", got)
	}
	if got := SleepLevelDescription(nil); got != "unknown" {
		t.Errorf("nil description = %q", got)
	}
}
