package leave

import (
	"time"

	leaveerrors "github.com/SeptianSamdani/leave-management-api/internal/leave/errors"
)

// CountWorkingDays counts the weekdays in [start, end] inclusive.
// Saturdays and Sundays never count toward leave duration; there is no
// holiday calendar. Returns ErrInvalidDateRange when start is after
// end, and ErrNoWorkingDays when the range contains only weekend days.
func CountWorkingDays(start, end time.Time) (int, error) {
	if start.After(end) {
		return 0, leaveerrors.ErrInvalidDateRange
	}

	days := 0
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		wd := d.Weekday()
		if wd != time.Saturday && wd != time.Sunday {
			days++
		}
	}

	if days == 0 {
		return 0, leaveerrors.ErrNoWorkingDays
	}
	return days, nil
}
