package leaveerrors

import (
	"net/http"

	"github.com/SeptianSamdani/leave-management-api/internal/shared/apperror"
)

var (
	ErrInvalidUserID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid user id",
		http.StatusBadRequest,
	)
	ErrInvalidActorID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid actor id",
		http.StatusBadRequest,
	)
	ErrInvalidRequestID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid leave request id",
		http.StatusBadRequest,
	)
	ErrInvalidDateFormat = apperror.New(
		apperror.CodeInvalidInput,
		"invalid date format, expected YYYY-MM-DD",
		http.StatusBadRequest,
	)
	ErrInvalidDateRange = apperror.New(
		apperror.CodeInvalidInput,
		"start_date must be before or equal end_date",
		http.StatusBadRequest,
	)
	ErrNoWorkingDays = apperror.New(
		apperror.CodeInvalidInput,
		"leave period must include at least one working day",
		http.StatusBadRequest,
	)
	ErrStartDateInPast = apperror.New(
		apperror.CodeInvalidInput,
		"start_date must not be in the past",
		http.StatusBadRequest,
	)
	ErrLeaveOverlap = apperror.New(
		apperror.CodeConflict,
		"you already have a leave request for this period",
		http.StatusConflict,
	)
	ErrLeaveNotFound = apperror.New(
		apperror.CodeNotFound,
		"leave request not found",
		http.StatusNotFound,
	)
	ErrNotRequestOwner = apperror.New(
		apperror.CodeForbidden,
		"leave request does not belong to this user",
		http.StatusForbidden,
	)
	ErrLeaveNotPending = apperror.New(
		apperror.CodeInvalidState,
		"only pending leave requests can be approved or rejected",
		http.StatusBadRequest,
	)
	ErrRejectionNotesRequired = apperror.New(
		apperror.CodeInvalidInput,
		"admin_notes is required when rejecting a leave request",
		http.StatusBadRequest,
	)
	ErrAttachmentRequired = apperror.New(
		apperror.CodeInvalidInput,
		"attachment is required",
		http.StatusBadRequest,
	)
	ErrAttachmentInvalid = apperror.New(
		apperror.CodeInvalidInput,
		"attachment must be a pdf, jpg, jpeg or png of at most 2 MB",
		http.StatusBadRequest,
	)
)
