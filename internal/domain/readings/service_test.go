package readings

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/healthbot/healthbot/internal/domain/patient"
	"github.com/healthbot/healthbot/internal/platform/auth"
)

type patientStub struct {
	patients map[int]*patient.Patient
}

func (s *patientStub) GetByID(_ context.Context, id int) (*patient.Patient, error) {
	p, ok := s.patients[id]
	if !ok {
		return nil, patient.ErrNotFound
	}
	return p, nil
}

func (s *patientStub) all() []*patient.Patient {
	items := make([]*patient.Patient, 0, len(s.patients))
	for _, p := range s.patients {
		items = append(items, p)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return items
}

func contains(field, term string) bool {
	return strings.Contains(strings.ToLower(field), strings.ToLower(term))
}

func (s *patientStub) SearchFirstLast(_ context.Context, first, last string) ([]*patient.Patient, error) {
	var out []*patient.Patient
	for _, p := range s.all() {
		if contains(p.FirstName, first) && contains(p.LastName, last) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *patientStub) SearchAnyField(_ context.Context, term string) ([]*patient.Patient, error) {
	var out []*patient.Patient
	for _, p := range s.all() {
		if contains(p.FirstName, term) || contains(p.LastName, term) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *patientStub) SearchFullName(_ context.Context, term string) ([]*patient.Patient, error) {
	var out []*patient.Patient
	for _, p := range s.all() {
		if contains(p.FirstName, term) || contains(p.LastName, term) ||
			contains(p.FirstName+" "+p.LastName, term) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *patientStub) List(_ context.Context, limit, offset int) ([]*patient.Patient, int, error) {
	items := s.all()
	return items, len(items), nil
}

// storeStub applies windows and ordering in memory, mirroring what the
// Postgres store pushes into SQL.
type storeStub struct {
	rows    map[int][]*Reading // by patient, all types mixed
	names   map[int]string
	failure error
}

func (s *storeStub) FetchByPatient(_ context.Context, t Type, patientID int, w TimeWindow, order FetchOrder, limit int) ([]*Reading, error) {
	if s.failure != nil {
		return nil, s.failure
	}
	var out []*Reading
	for _, r := range s.rows[patientID] {
		if r.Type == t && w.Contains(r.Timestamp) {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		switch order {
		case OrderValueDesc:
			vi, _ := out[i].CompareValue()
			vj, _ := out[j].CompareValue()
			return vi > vj
		case OrderValueAsc:
			vi, _ := out[i].CompareValue()
			vj, _ := out[j].CompareValue()
			return vi < vj
		case OrderTimeAsc:
			return out[i].Timestamp.Before(out[j].Timestamp)
		default:
			return out[i].Timestamp.After(out[j].Timestamp)
		}
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *storeStub) FetchQualifying(_ context.Context, t Type, kind ThresholdKind, w TimeWindow) ([]PatientRow, error) {
	if s.failure != nil {
		return nil, s.failure
	}
	threshold, err := t.Threshold(kind)
	if err != nil {
		return nil, err
	}
	var out []PatientRow
	for id, rows := range s.rows {
		for _, r := range rows {
			if r.Type != t || !w.Contains(r.Timestamp) {
				continue
			}
			v, ok := r.CompareValue()
			if !ok {
				continue
			}
			if (kind == ThresholdHigh && v > threshold) || (kind == ThresholdLow && v < threshold) {
				out = append(out, PatientRow{Reading: r, PatientID: id, PatientName: s.names[id]})
			}
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].PatientID < out[j].PatientID })
	return out, nil
}

func newFixture() (*Service, *storeStub) {
	patients := &patientStub{patients: map[int]*patient.Patient{
		111: {ID: 111, FirstName: "Anil", LastName: "Kumar", RoleID: auth.RoleIDPatient},
		132: {ID: 132, FirstName: "Rayudu", LastName: "Varma", RoleID: auth.RoleIDPatient},
	}}
	store := &storeStub{
		rows:  map[int][]*Reading{},
		names: map[int]string{111: "Anil Kumar", 132: "Rayudu Varma"},
	}
	return NewService(store, patient.NewService(patients)), store
}

func staffCtx() context.Context {
	return auth.WithIdentity(context.Background(), auth.Identity{UserID: 7, Role: "doctor", RoleID: auth.RoleIDDoctor})
}

func patientCtx(id int) context.Context {
	return auth.WithIdentity(context.Background(), auth.Identity{UserID: id, Role: "patient", RoleID: auth.RoleIDPatient})
}

func TestQuery_NameResolvesHighestInMonth(t *testing.T) {
	svc, store := newFixture()
	july := func(day, hour int, v float64) *Reading {
		return &Reading{Type: TypeGlucose, PatientID: 132,
			Timestamp: time.Date(2025, 7, day, hour, 0, 0, 0, time.UTC), Value: fval(v)}
	}
	store.rows[132] = []*Reading{
		july(3, 8, 140), july(10, 9, 232), july(18, 7, 199), july(25, 20, 178),
		// outside the window
		{Type: TypeGlucose, PatientID: 132, Timestamp: time.Date(2025, 6, 30, 8, 0, 0, 0, time.UTC), Value: fval(400)},
	}

	got, err := svc.Query(staffCtx(), QueryRequest{
		PatientName:  "Rayudu",
		ReadingType:  "glucose",
		DateFilter:   "2025-07",
		AnalysisType: "highest",
	})
	if err != nil {
		t.Fatal(err)
	}
	result := got.(*QueryResult)

	if result.PatientID != 132 {
		t.Errorf("patient id = %d, want 132", result.PatientID)
	}
	if result.Count != 4 {
		t.Errorf("count = %d, want 4", result.Count)
	}
	if result.HighestValue == nil || *result.HighestValue != 232 {
		t.Errorf("highest value = %v, want 232", result.HighestValue)
	}
	if result.DateFilter != "2025-07" {
		t.Errorf("date filter = %q, want the request's filter echoed back", result.DateFilter)
	}
	if !strings.Contains(result.Message, "highest glucose readings") {
		t.Errorf("message = %q, want the analysis type named", result.Message)
	}
	for i := 1; i < len(result.Readings); i++ {
		if *result.Readings[i].Value > *result.Readings[i-1].Value {
			t.Fatal("readings not in descending value order")
		}
	}
	for _, item := range result.Readings {
		if !strings.HasPrefix(item.Timestamp, "2025-07") {
			t.Errorf("reading %s outside July 2025", item.Timestamp)
		}
	}
}

func TestQuery_SleepBranch(t *testing.T) {
	svc, store := newFixture()
	store.rows[111] = []*Reading{
		sleepRow(11, SleepDeep, 95),
		sleepRow(11, SleepLight, 210),
		sleepRow(11, SleepREM, 84),
		sleepRow(11, SleepAwake, 31),
	}

	got, err := svc.Query(staffCtx(), QueryRequest{PatientID: 111, ReadingType: "sleep", DateFilter: "2025-08-11"})
	if err != nil {
		t.Fatal(err)
	}
	summary := got.(*SleepSummary)

	if summary.TotalSleepDuration != "6 hours and 29 minutes" {
		t.Errorf("duration = %q", summary.TotalSleepDuration)
	}
	if summary.TotalSleepMinutes != 389 {
		t.Errorf("total minutes = %v, want 389", summary.TotalSleepMinutes)
	}
	if summary.DateFilter != "2025-08-11" {
		t.Errorf("date filter = %q, want the request's filter echoed back", summary.DateFilter)
	}
}

func TestQuery_SleepHonorsDateFilter(t *testing.T) {
	svc, store := newFixture()
	store.rows[111] = []*Reading{
		sleepRow(11, SleepDeep, 100),
		{Type: TypeSleep, PatientID: 111,
			Timestamp:  time.Date(2024, 8, 11, 0, 0, 0, 0, time.UTC),
			Value:      fval(500),
			SleepLevel: ival(SleepDeep)},
	}

	got, err := svc.Query(staffCtx(), QueryRequest{PatientID: 111, ReadingType: "sleep", DateFilter: "2025-08-11"})
	if err != nil {
		t.Fatal(err)
	}
	summary := got.(*SleepSummary)

	if summary.TotalSleepMinutes != 100 {
		t.Errorf("total minutes = %v, want 100 (last year's row must stay outside the window)", summary.TotalSleepMinutes)
	}
	if summary.TotalSleepRecords != 1 {
		t.Errorf("records = %d, want 1", summary.TotalSleepRecords)
	}

	// Without a filter the whole history aggregates.
	got, err = svc.Query(staffCtx(), QueryRequest{PatientID: 111, ReadingType: "sleep"})
	if err != nil {
		t.Fatal(err)
	}
	if total := got.(*SleepSummary).TotalSleepMinutes; total != 600 {
		t.Errorf("unfiltered total = %v, want 600", total)
	}
}

func TestQuery_PatientRolePinnedToOwnRecords(t *testing.T) {
	svc, store := newFixture()
	at := time.Date(2025, 7, 16, 10, 0, 0, 0, time.UTC)
	store.rows[111] = []*Reading{{Type: TypeGlucose, PatientID: 111, Timestamp: at, Value: fval(120)}}
	store.rows[132] = []*Reading{{Type: TypeGlucose, PatientID: 132, Timestamp: at, Value: fval(250)}}

	got, err := svc.Query(patientCtx(111), QueryRequest{PatientID: 132, ReadingType: "glucose"})
	if err != nil {
		t.Fatal(err)
	}
	result := got.(*QueryResult)
	if result.PatientID != 111 {
		t.Errorf("patient id = %d, want caller's own 111", result.PatientID)
	}
	if result.Count != 1 || *result.Readings[0].Value != 120 {
		t.Errorf("patient saw someone else's readings: %+v", result.Readings)
	}
}

func TestQuery_StaffMustIdentifyPatient(t *testing.T) {
	svc, _ := newFixture()
	_, err := svc.Query(staffCtx(), QueryRequest{ReadingType: "glucose"})
	if !errors.Is(err, patient.ErrNotFound) {
		t.Errorf("err = %v, want patient.ErrNotFound", err)
	}
}

func TestQuery_EmptyValidQueryIsNotAnError(t *testing.T) {
	svc, _ := newFixture()
	got, err := svc.Query(staffCtx(), QueryRequest{PatientID: 132, ReadingType: "glucose", DateFilter: "2025-07"})
	if err != nil {
		t.Fatal(err)
	}
	result := got.(*QueryResult)
	if result.Count != 0 {
		t.Errorf("count = %d, want 0", result.Count)
	}
	if !strings.Contains(result.Message, "No glucose readings") {
		t.Errorf("message = %q", result.Message)
	}
}

func TestQuery_Errors(t *testing.T) {
	svc, store := newFixture()

	if _, err := svc.Query(staffCtx(), QueryRequest{PatientID: 132, ReadingType: "cholesterol"}); !errors.Is(err, ErrInvalidReadingType) {
		t.Errorf("bad type: err = %v", err)
	}
	if _, err := svc.Query(staffCtx(), QueryRequest{PatientID: 132, ReadingType: "glucose", DateFilter: "July 2025"}); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("bad date: err = %v", err)
	}
	if _, err := svc.Query(staffCtx(), QueryRequest{PatientName: "NonexistentName", ReadingType: "glucose"}); !errors.Is(err, patient.ErrNotFound) {
		t.Errorf("unknown name: err = %v", err)
	}

	store.failure = fmt.Errorf("%w: connection refused", ErrUpstream)
	if _, err := svc.Query(staffCtx(), QueryRequest{PatientID: 132, ReadingType: "glucose"}); !errors.Is(err, ErrUpstream) {
		t.Errorf("store failure: err = %v", err)
	}
}

func TestScan_ThresholdReport(t *testing.T) {
	svc, store := newFixture()
	bp := func(id, hour, systolic int) *Reading {
		return &Reading{Type: TypeBloodPressure, PatientID: id,
			Timestamp: time.Date(2025, 7, 16, hour, 0, 0, 0, time.UTC),
			Systolic:  ival(systolic), Diastolic: ival(85)}
	}
	store.rows[111] = []*Reading{bp(111, 8, 152), bp(111, 12, 138)}
	store.rows[132] = []*Reading{bp(132, 9, 171)}

	report, err := svc.Scan(staffCtx(), ScanRequest{ReadingType: "blood_pressure", FindType: "high", DateFilter: "2025-07-16"})
	if err != nil {
		t.Fatal(err)
	}

	if report.Threshold != 140 {
		t.Errorf("threshold = %v, want 140", report.Threshold)
	}
	if report.TotalPatients != 2 || report.TotalReadings != 2 {
		t.Errorf("totals = %d patients, %d readings; want 2, 2", report.TotalPatients, report.TotalReadings)
	}
	if report.DateFilter != "2025-07-16" {
		t.Errorf("date filter = %q, want the request's filter echoed back", report.DateFilter)
	}
	if report.DistinctPatients[0].PatientID != 132 {
		t.Errorf("first group = %d, want 132 (highest systolic)", report.DistinctPatients[0].PatientID)
	}
	for _, g := range report.DistinctPatients {
		for _, r := range g.Readings {
			if *r.Systolic <= 140 {
				t.Errorf("reading with systolic %d should not qualify", *r.Systolic)
			}
		}
	}
}

func TestScan_Errors(t *testing.T) {
	svc, _ := newFixture()

	if _, err := svc.Scan(staffCtx(), ScanRequest{ReadingType: "sleep", FindType: "high"}); !errors.Is(err, ErrUnsupportedAnalysis) {
		t.Errorf("sleep scan: err = %v", err)
	}
	if _, err := svc.Scan(staffCtx(), ScanRequest{ReadingType: "activity", FindType: "low"}); !errors.Is(err, ErrUnsupportedAnalysis) {
		t.Errorf("activity scan: err = %v", err)
	}
	if _, err := svc.Scan(staffCtx(), ScanRequest{ReadingType: "glucose", FindType: "middling"}); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("bad find type: err = %v", err)
	}
}
