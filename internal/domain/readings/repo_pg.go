package readings

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/healthbot/healthbot/internal/platform/db"
)

type storePG struct{ pool *pgxpool.Pool }

func NewStorePG(pool *pgxpool.Pool) Store {
	return &storePG{pool: pool}
}

func (s *storePG) conn(ctx context.Context) db.Conn {
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return s.pool
}

// selectCols returns the column list for a type. Table and column names come
// from the closed type registry, never from request input.
func selectCols(t Type) string {
	switch t {
	case TypeBloodPressure:
		return "id, patient_id, timestamp, systolic, diastolic"
	case TypeBodyTemperature:
		return "id, patient_id, timestamp, temperature"
	case TypeSleep:
		return "id, patient_id, date, value, level, sleep_type"
	default:
		return "id, patient_id, timestamp, value"
	}
}

func scanReading(t Type, row pgx.Row) (*Reading, error) {
	r := &Reading{Type: t}
	var err error
	switch t {
	case TypeBloodPressure:
		err = row.Scan(&r.ID, &r.PatientID, &r.Timestamp, &r.Systolic, &r.Diastolic)
	case TypeBodyTemperature:
		err = row.Scan(&r.ID, &r.PatientID, &r.Timestamp, &r.Temperature)
	case TypeSleep:
		err = row.Scan(&r.ID, &r.PatientID, &r.Timestamp, &r.Value, &r.SleepLevel, &r.SleepType)
	default:
		err = row.Scan(&r.ID, &r.PatientID, &r.Timestamp, &r.Value)
	}
	if err != nil {
		return nil, err
	}
	return r, nil
}

// windowClauses appends the window's bound conditions, returning the updated
// predicate list and args. prefix qualifies the time column for joins.
func windowClauses(w TimeWindow, t Type, prefix string, where []string, args []interface{}) ([]string, []interface{}) {
	col := prefix + t.TimeColumn()
	if w.Bounded() {
		args = append(args, w.Start)
		where = append(where, fmt.Sprintf("%s >= $%d", col, len(args)))
		args = append(args, w.End)
		op := "<="
		if w.EndExclusive() {
			op = "<"
		}
		where = append(where, fmt.Sprintf("%s %s $%d", col, op, len(args)))
	}
	if w.Clock != nil {
		args = append(args, clockString(w.Clock.From))
		where = append(where, fmt.Sprintf("%s::time >= $%d::time", col, len(args)))
		args = append(args, clockString(w.Clock.To))
		where = append(where, fmt.Sprintf("%s::time <= $%d::time", col, len(args)))
	}
	return where, args
}

func clockString(d time.Duration) string {
	return time.Time{}.Add(d).Format("15:04:05")
}

func orderClause(t Type, order FetchOrder) string {
	switch order {
	case OrderValueDesc:
		return t.ValueColumn() + " DESC"
	case OrderValueAsc:
		return t.ValueColumn() + " ASC"
	case OrderTimeAsc:
		return t.TimeColumn() + " ASC"
	default:
		return t.TimeColumn() + " DESC"
	}
}

func (s *storePG) FetchByPatient(ctx context.Context, t Type, patientID int, w TimeWindow, order FetchOrder, limit int) ([]*Reading, error) {
	args := []interface{}{patientID}
	where := []string{"patient_id = $1"}
	where, args = windowClauses(w, t, "", where, args)

	sql := fmt.Sprintf(`SELECT %s FROM %s WHERE %s ORDER BY %s`,
		selectCols(t), t.Table(), strings.Join(where, " AND "), orderClause(t, order))
	if limit > 0 {
		args = append(args, limit)
		sql += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := s.conn(ctx).Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer rows.Close()

	var items []*Reading
	for rows.Next() {
		r, err := scanReading(t, rows)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
		}
		items = append(items, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	return items, nil
}

func (s *storePG) FetchQualifying(ctx context.Context, t Type, kind ThresholdKind, w TimeWindow) ([]PatientRow, error) {
	threshold, err := t.Threshold(kind)
	if err != nil {
		return nil, err
	}
	op := ">"
	if kind == ThresholdLow {
		op = "<"
	}

	args := []interface{}{threshold}
	where := []string{fmt.Sprintf("r.%s %s $1", t.ValueColumn(), op)}
	where, args = windowClauses(w, t, "r.", where, args)

	cols := "r." + strings.ReplaceAll(selectCols(t), ", ", ", r.")
	sql := fmt.Sprintf(
		`SELECT %s, u.first_name, u.last_name
		 FROM %s r JOIN users u ON u.id = r.patient_id
		 WHERE %s
		 ORDER BY r.%s DESC`,
		cols, t.Table(), strings.Join(where, " AND "), t.TimeColumn())

	rows, err := s.conn(ctx).Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer rows.Close()

	var items []PatientRow
	for rows.Next() {
		r := &Reading{Type: t}
		var first, last string
		var scanErr error
		switch t {
		case TypeBloodPressure:
			scanErr = rows.Scan(&r.ID, &r.PatientID, &r.Timestamp, &r.Systolic, &r.Diastolic, &first, &last)
		case TypeBodyTemperature:
			scanErr = rows.Scan(&r.ID, &r.PatientID, &r.Timestamp, &r.Temperature, &first, &last)
		default:
			scanErr = rows.Scan(&r.ID, &r.PatientID, &r.Timestamp, &r.Value, &first, &last)
		}
		if scanErr != nil {
			return nil, fmt.Errorf("%w: %v", ErrUpstream, scanErr)
		}
		items = append(items, PatientRow{
			Reading:     r,
			PatientID:   r.PatientID,
			PatientName: strings.TrimSpace(first + " " + last),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	return items, nil
}
