package quotaerrors

import (
	"fmt"
	"net/http"

	"github.com/SeptianSamdani/leave-management-api/internal/shared/apperror"
)

var ErrQuotaNotFound = apperror.New(
	apperror.CodeNotFound,
	"leave quota not found for this year",
	http.StatusNotFound,
)

// InsufficientQuota is returned when the balance cannot cover the
// requested days. The remaining balance is part of the message.
func InsufficientQuota(remaining int) *apperror.AppError {
	return apperror.New(
		apperror.CodeConflict,
		fmt.Sprintf("insufficient leave quota: %d day(s) remaining", remaining),
		http.StatusConflict,
	)
}

// QuotaExceeded is returned when a concurrent debit won the race and
// the conditional update applied nothing.
func QuotaExceeded(remaining int) *apperror.AppError {
	return apperror.New(
		apperror.CodeConflict,
		fmt.Sprintf("leave quota exceeded by a concurrent update: %d day(s) remaining", remaining),
		http.StatusConflict,
	)
}
