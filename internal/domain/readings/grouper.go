package readings

import "sort"

// displayCap limits how many readings each patient group lists in the
// output. Totals and extremes always reflect every qualifying row; only the
// display list is capped.
const displayCap = 5

// PatientRow is a reading joined to its owning patient.
type PatientRow struct {
	Reading     *Reading
	PatientID   int
	PatientName string
}

// PatientGroup collects one patient's qualifying readings for a threshold
// scan. Readings holds at most displayCap rows; TotalReadings and the
// highest/lowest values cover all of them.
type PatientGroup struct {
	PatientID     int        `json:"patient_id"`
	PatientName   string     `json:"patient_name"`
	Readings      []*Reading `json:"readings"`
	ReadingsShown int        `json:"readings_shown"`
	HighestValue  float64    `json:"highest_value"`
	LowestValue   float64    `json:"lowest_value"`
	TotalReadings int        `json:"total_readings"`
}

// ThresholdReport is the result of a cross-patient threshold scan.
type ThresholdReport struct {
	ReadingType      Type            `json:"reading_type"`
	FindType         ThresholdKind   `json:"find_type"`
	DateFilter       string          `json:"date_filter,omitempty"`
	Threshold        float64         `json:"threshold"`
	DistinctPatients []*PatientGroup `json:"distinct_patients"`
	TotalPatients    int             `json:"total_patients"`
	TotalReadings    int             `json:"total_readings"`
	Message          string          `json:"message"`
}

// GroupByThreshold buckets qualifying rows by patient and ranks the groups
// by their extreme value: descending by highest for high scans, ascending by
// lowest for low scans. Rows on the wrong side of the threshold are dropped
// even if the store already filtered, so the result is correct for any input.
func GroupByThreshold(rows []PatientRow, t Type, kind ThresholdKind) (*ThresholdReport, error) {
	threshold, err := t.Threshold(kind)
	if err != nil {
		return nil, err
	}

	groups := make(map[int]*PatientGroup)
	order := make([]int, 0)
	total := 0
	for _, row := range rows {
		v, ok := row.Reading.CompareValue()
		if !ok {
			continue
		}
		if kind == ThresholdHigh && v <= threshold {
			continue
		}
		if kind == ThresholdLow && v >= threshold {
			continue
		}

		g, seen := groups[row.PatientID]
		if !seen {
			g = &PatientGroup{
				PatientID:    row.PatientID,
				PatientName:  row.PatientName,
				HighestValue: v,
				LowestValue:  v,
			}
			groups[row.PatientID] = g
			order = append(order, row.PatientID)
		}
		if v > g.HighestValue {
			g.HighestValue = v
		}
		if v < g.LowestValue {
			g.LowestValue = v
		}
		g.TotalReadings++
		total++
		if len(g.Readings) < displayCap {
			g.Readings = append(g.Readings, row.Reading)
		}
	}

	ranked := make([]*PatientGroup, 0, len(order))
	for _, id := range order {
		g := groups[id]
		g.ReadingsShown = len(g.Readings)
		ranked = append(ranked, g)
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if kind == ThresholdHigh {
			return ranked[i].HighestValue > ranked[j].HighestValue
		}
		return ranked[i].LowestValue < ranked[j].LowestValue
	})

	return &ThresholdReport{
		ReadingType:      t,
		FindType:         kind,
		Threshold:        threshold,
		DistinctPatients: ranked,
		TotalPatients:    len(ranked),
		TotalReadings:    total,
	}, nil
}
