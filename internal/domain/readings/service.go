package readings

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/healthbot/healthbot/internal/domain/patient"
	"github.com/healthbot/healthbot/internal/platform/auth"
)

// Service orchestrates a query: scope the caller, resolve the patient,
// resolve the time window, fetch, then branch into the analyzer or the sleep
// aggregator. It holds no state between calls.
type Service struct {
	store    Store
	patients *patient.Service
}

func NewService(store Store, patients *patient.Service) *Service {
	return &Service{store: store, patients: patients}
}

// QueryRequest carries the raw request fields. Validation happens inside
// Query so malformed input fails before any store access.
type QueryRequest struct {
	PatientID    int    `json:"patient_id,omitempty"`
	PatientName  string `json:"patient_name,omitempty"`
	ReadingType  string `json:"reading_type"`
	SpecificTime string `json:"specific_time,omitempty"`
	DateFilter   string `json:"date_filter,omitempty"`
	TimeRange    string `json:"time_range,omitempty"`
	AnalysisType string `json:"analysis_type,omitempty"`
	Limit        int    `json:"limit,omitempty"`
}

// ReadingItem is one reading as rendered in a query response. Exactly one of
// the value fields is set, per the reading type.
type ReadingItem struct {
	Timestamp   string   `json:"timestamp"`
	Value       *float64 `json:"value,omitempty"`
	Systolic    *int     `json:"systolic,omitempty"`
	Diastolic   *int     `json:"diastolic,omitempty"`
	Temperature *float64 `json:"temperature,omitempty"`
}

// QueryResult is the non-sleep query response.
type QueryResult struct {
	PatientID    int           `json:"patient_id"`
	ReadingType  Type          `json:"reading_type"`
	AnalysisType AnalysisMode  `json:"analysis_type"`
	DateFilter   string        `json:"date_filter,omitempty"`
	Readings     []ReadingItem `json:"readings"`
	Count        int           `json:"count"`
	HighestValue *float64      `json:"highest_value,omitempty"`
	LowestValue  *float64      `json:"lowest_value,omitempty"`
	Message      string        `json:"message"`
}

const timestampLayout = "2006-01-02 15:04:05"

var specificTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	timestampLayout,
}

func parseSpecificTime(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	for _, layout := range specificTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t, nil
		}
	}
	return nil, fmt.Errorf("%w: specific time must be an ISO datetime, got %q", ErrInvalidArgument, s)
}

// Query runs a single-patient readings query. Patient-role callers are
// always scoped to their own records regardless of the request fields. Sleep
// queries return a *SleepSummary, everything else a *QueryResult.
func (s *Service) Query(ctx context.Context, req QueryRequest) (interface{}, error) {
	t, err := ParseType(req.ReadingType)
	if err != nil {
		return nil, err
	}
	specific, err := parseSpecificTime(req.SpecificTime)
	if err != nil {
		return nil, err
	}
	var date *DateFilter
	if strings.TrimSpace(req.DateFilter) != "" {
		df, err := ParseDateFilter(req.DateFilter)
		if err != nil {
			return nil, err
		}
		date = &df
	}
	mode, err := ParseMode(req.AnalysisType)
	if err != nil {
		return nil, err
	}

	// A staff caller naming no patient is an unresolvable reference, the
	// same taxonomy as a name that matches nobody.
	patientID, patientName, err := auth.ScopePatient(ctx, req.PatientID, req.PatientName)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", patient.ErrNotFound, err)
	}
	if patientID == 0 {
		patientID, err = s.patients.Resolve(ctx, 0, patientName)
		if err != nil {
			return nil, err
		}
	}

	window := ResolveWindow(specific, date, req.TimeRange, t)

	if t == TypeSleep {
		rows, err := s.store.FetchByPatient(ctx, t, patientID, window, OrderTimeDesc, 0)
		if err != nil {
			return nil, err
		}
		summary := AggregateSleep(patientID, rows)
		summary.DateFilter = strings.TrimSpace(req.DateFilter)
		return summary, nil
	}

	order := OrderTimeDesc
	switch mode {
	case ModeHighest:
		order = OrderValueDesc
	case ModeLowest:
		order = OrderValueAsc
	}
	rows, err := s.store.FetchByPatient(ctx, t, patientID, window, order, 0)
	if err != nil {
		return nil, err
	}

	selected := Analyze(rows, mode, req.Limit, window)
	result := &QueryResult{
		PatientID:    patientID,
		ReadingType:  t,
		AnalysisType: mode,
		DateFilter:   strings.TrimSpace(req.DateFilter),
		Readings:     make([]ReadingItem, 0, len(selected)),
		Count:        len(selected),
	}
	for _, r := range selected {
		result.Readings = append(result.Readings, ReadingItem{
			Timestamp:   r.Timestamp.Format(timestampLayout),
			Value:       r.Value,
			Systolic:    r.Systolic,
			Diastolic:   r.Diastolic,
			Temperature: r.Temperature,
		})
	}
	if len(selected) > 0 {
		switch mode {
		case ModeHighest:
			if v, ok := selected[0].CompareValue(); ok {
				result.HighestValue = &v
			}
		case ModeLowest:
			if v, ok := selected[0].CompareValue(); ok {
				result.LowestValue = &v
			}
		}
		result.Message = fmt.Sprintf("Found %d %s readings for patient %d.", len(selected), describeAnalysis(mode, t), patientID)
	} else {
		result.Message = fmt.Sprintf("No %s readings found for patient %d.", t, patientID)
	}
	return result, nil
}

// describeAnalysis names the result set the way the message reads: the mode
// qualifies the type except for plain specific queries.
func describeAnalysis(mode AnalysisMode, t Type) string {
	if mode == ModeSpecific {
		return string(t)
	}
	return fmt.Sprintf("%s %s", mode, t)
}

// ScanRequest asks for all patients breaching a clinical threshold.
type ScanRequest struct {
	ReadingType string `json:"reading_type"`
	DateFilter  string `json:"date_filter,omitempty"`
	FindType    string `json:"find_type"`
}

// Scan runs the cross-patient threshold scan.
func (s *Service) Scan(ctx context.Context, req ScanRequest) (*ThresholdReport, error) {
	t, err := ParseType(req.ReadingType)
	if err != nil {
		return nil, err
	}
	kind, err := ParseThresholdKind(req.FindType)
	if err != nil {
		return nil, err
	}
	if !t.SupportsThresholdScan() {
		return nil, fmt.Errorf("%w: reading type %s doesn't support high/low analysis", ErrUnsupportedAnalysis, t)
	}
	var date *DateFilter
	if strings.TrimSpace(req.DateFilter) != "" {
		df, err := ParseDateFilter(req.DateFilter)
		if err != nil {
			return nil, err
		}
		date = &df
	}
	window := ResolveWindow(nil, date, "", t)

	rows, err := s.store.FetchQualifying(ctx, t, kind, window)
	if err != nil {
		return nil, err
	}
	report, err := GroupByThreshold(rows, t, kind)
	if err != nil {
		return nil, err
	}
	report.DateFilter = strings.TrimSpace(req.DateFilter)
	if report.TotalPatients == 0 {
		report.Message = fmt.Sprintf("No patients found with %s %s readings.", kind, t)
	} else {
		report.Message = fmt.Sprintf("Found %d distinct patients with %s %s readings (%d readings total).",
			report.TotalPatients, kind, t, report.TotalReadings)
	}
	return report, nil
}
