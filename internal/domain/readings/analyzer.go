package readings

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// AnalysisMode selects how fetched rows are reduced to a result set.
type AnalysisMode string

const (
	// ModeSpecific returns rows matching the query window; with a point
	// window it returns the single reading closest to the requested instant.
	ModeSpecific AnalysisMode = "specific"
	// ModeHighest returns the top readings by value, descending.
	ModeHighest AnalysisMode = "highest"
	// ModeLowest returns the bottom readings by value, ascending.
	ModeLowest AnalysisMode = "lowest"
	// ModeLatest returns the most recent readings.
	ModeLatest AnalysisMode = "latest"
)

// ParseMode validates an analysis type string; blank defaults to specific.
func ParseMode(s string) (AnalysisMode, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return ModeSpecific, nil
	}
	switch m := AnalysisMode(s); m {
	case ModeSpecific, ModeHighest, ModeLowest, ModeLatest:
		return m, nil
	default:
		return "", fmt.Errorf("%w: unknown analysis type %q", ErrInvalidArgument, s)
	}
}

// DefaultLimit caps result sets when the caller gives no limit.
const DefaultLimit = 10

// Analyze reduces rows to the result set for the given mode. Rows are assumed
// to already satisfy the window and arrive newest first unless value-ordered;
// extremes are selected in memory so the store can stay a plain fetch. Rows
// missing their value field are skipped for value-ordered modes. Specific
// mode returns a single reading unless the caller asks for a bounded list.
func Analyze(rows []*Reading, mode AnalysisMode, limit int, window TimeWindow) []*Reading {
	requested := limit
	if limit <= 0 || limit > DefaultLimit {
		limit = DefaultLimit
	}

	switch mode {
	case ModeHighest, ModeLowest:
		valued := make([]*Reading, 0, len(rows))
		for _, r := range rows {
			if _, ok := r.CompareValue(); ok {
				valued = append(valued, r)
			}
		}
		sort.SliceStable(valued, func(i, j int) bool {
			vi, _ := valued[i].CompareValue()
			vj, _ := valued[j].CompareValue()
			if mode == ModeHighest {
				return vi > vj
			}
			return vi < vj
		})
		return truncate(valued, limit)

	case ModeSpecific:
		if window.Kind == WindowPoint && len(rows) > 0 {
			return []*Reading{closestTo(rows, window)}
		}
		if requested <= 0 {
			return truncate(rows, 1)
		}
		return truncate(rows, limit)

	case ModeLatest:
		sorted := make([]*Reading, len(rows))
		copy(sorted, rows)
		sort.SliceStable(sorted, func(i, j int) bool {
			return sorted[i].Timestamp.After(sorted[j].Timestamp)
		})
		return truncate(sorted, 1)

	default:
		return truncate(rows, limit)
	}
}

func truncate(rows []*Reading, limit int) []*Reading {
	if len(rows) > limit {
		return rows[:limit]
	}
	return rows
}

func closestTo(rows []*Reading, window TimeWindow) *Reading {
	best := rows[0]
	bestDist := absDuration(best.Timestamp.Sub(window.Instant))
	for _, r := range rows[1:] {
		if d := absDuration(r.Timestamp.Sub(window.Instant)); d < bestDist {
			best, bestDist = r, d
		}
	}
	return best
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
