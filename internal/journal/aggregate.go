package journal

import "math"

// Counts summarizes a row listing for dashboards.
type Counts struct {
	Open            int `json:"open_count"`
	InProgress      int `json:"in_progress_count"`
	Complete        int `json:"complete_count"`
	PercentComplete int `json:"percent_complete"`
}

// AggregateCounts buckets rows by display status. The percentage is taken
// over the full 52-week plan, not over len(rows).
func AggregateCounts(rows []WeekRow) Counts {
	var c Counts
	for _, r := range rows {
		switch r.Status {
		case DisplayComplete:
			c.Complete++
		case DisplayInProgress:
			c.InProgress++
		default:
			c.Open++
		}
	}
	c.PercentComplete = int(math.Round(float64(c.Complete) / TotalWeeks * 100))
	return c
}

// AllCompleted is true only for a full 52-row catalog with every row complete.
func AllCompleted(rows []WeekRow) bool {
	if len(rows) != TotalWeeks {
		return false
	}
	for _, r := range rows {
		if r.Status != DisplayComplete {
			return false
		}
	}
	return true
}

// OpenWeek is an item of the "what's left" list.
type OpenWeek struct {
	Week  int    `json:"week"`
	Title string `json:"title"`
}

// OpenWeeks lists every row that is not yet complete, Open and InProgress
// alike. This is wider than Counts.Open, which counts Open rows only.
func OpenWeeks(rows []WeekRow) []OpenWeek {
	out := []OpenWeek{}
	for _, r := range SortRows(rows, SortByWeek) {
		if r.Status != DisplayComplete {
			out = append(out, OpenWeek{Week: r.Week, Title: r.Title})
		}
	}
	return out
}
