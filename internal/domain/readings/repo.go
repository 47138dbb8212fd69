package readings

import "context"

// FetchOrder controls the ordering the store applies before any limit.
type FetchOrder string

const (
	OrderTimeDesc  FetchOrder = "time_desc"
	OrderTimeAsc   FetchOrder = "time_asc"
	OrderValueDesc FetchOrder = "value_desc"
	OrderValueAsc  FetchOrder = "value_asc"
)

// Store fetches reading rows. Implementations apply the window bounds and
// ordering; selection and aggregation happen above this interface.
type Store interface {
	// FetchByPatient returns one patient's readings of the given type inside
	// the window. A limit of zero means no row cap.
	FetchByPatient(ctx context.Context, t Type, patientID int, w TimeWindow, order FetchOrder, limit int) ([]*Reading, error)

	// FetchQualifying returns readings across all patients that breach the
	// type's clinical threshold inside the window, joined to patient names.
	FetchQualifying(ctx context.Context, t Type, kind ThresholdKind, w TimeWindow) ([]PatientRow, error)
}
