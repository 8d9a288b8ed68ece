package models

// DayGroup is one per-date bucket in a report: every task logged on that date,
// how many there are and the summed, truncated duration in hours.
type DayGroup struct {
	Date       string       `json:"date"`
	TaskCount  int          `json:"task_count"`
	TotalHours float64      `json:"total_hours"`
	Tasks      []TaskDetail `json:"tasks"`
}

// Report carries the (possibly limited) date groups plus the distinct date
// count of the whole filtered set, which ignores the group limit.
type Report struct {
	Days      []DayGroup `json:"days"`
	DateCount int        `json:"date_count"`
}
