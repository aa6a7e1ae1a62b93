package leave_test

import (
	"testing"
	"time"

	"github.com/SeptianSamdani/leave-management-api/internal/leave"
	leaveerrors "github.com/SeptianSamdani/leave-management-api/internal/leave/errors"

	"github.com/stretchr/testify/assert"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestCountWorkingDays(t *testing.T) {
	t.Run("success full working week", func(t *testing.T) {
		// Mon 2026-02-09 .. Fri 2026-02-13.
		n, err := leave.CountWorkingDays(day(2026, 2, 9), day(2026, 2, 13))
		assert.NoError(t, err)
		assert.Equal(t, 5, n)
	})

	t.Run("success friday to monday", func(t *testing.T) {
		n, err := leave.CountWorkingDays(day(2026, 2, 6), day(2026, 2, 9))
		assert.NoError(t, err)
		assert.Equal(t, 2, n)
	})

	t.Run("success single weekday", func(t *testing.T) {
		n, err := leave.CountWorkingDays(day(2026, 2, 11), day(2026, 2, 11))
		assert.NoError(t, err)
		assert.Equal(t, 1, n)
	})

	t.Run("success two full weeks", func(t *testing.T) {
		n, err := leave.CountWorkingDays(day(2026, 2, 9), day(2026, 2, 20))
		assert.NoError(t, err)
		assert.Equal(t, 10, n)
	})

	t.Run("negative weekend only", func(t *testing.T) {
		_, err := leave.CountWorkingDays(day(2026, 2, 7), day(2026, 2, 8))
		assert.ErrorIs(t, err, leaveerrors.ErrNoWorkingDays)
	})

	t.Run("negative single saturday", func(t *testing.T) {
		_, err := leave.CountWorkingDays(day(2026, 2, 7), day(2026, 2, 7))
		assert.ErrorIs(t, err, leaveerrors.ErrNoWorkingDays)
	})

	t.Run("negative start after end", func(t *testing.T) {
		_, err := leave.CountWorkingDays(day(2026, 2, 13), day(2026, 2, 9))
		assert.ErrorIs(t, err, leaveerrors.ErrInvalidDateRange)
	})
}
