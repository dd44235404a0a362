package service

import (
	"sort"

	"github.com/teamdesk/console/internal/models"
)

// Project derives the display order from the cache without mutating it: a
// copy sorted by date descending, ties keeping their relative cache order.
// ISO 8601 date strings order lexicographically, so plain string comparison
// is the calendar comparison.
func Project(records []models.AttendanceRecord) []models.AttendanceRecord {
	out := append([]models.AttendanceRecord(nil), records...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date > out[j].Date
	})
	return out
}
