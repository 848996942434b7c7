package requesterrors

import (
	"net/http"

	"github.com/LamineOzilJr/memoire-master2/internal/shared/apperror"
)

var (
	ErrInvalidRequestID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid request id",
		http.StatusBadRequest,
	)
	ErrInvalidEmployeeID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid employee id",
		http.StatusBadRequest,
	)
	ErrInvalidStage = apperror.New(
		apperror.CodeInvalidInput,
		"unknown approval stage",
		http.StatusBadRequest,
	)
	ErrInvalidAction = apperror.New(
		apperror.CodeInvalidInput,
		"unknown decision action",
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
	ErrRequestNotFound = apperror.New(
		apperror.CodeNotFound,
		"leave request not found",
		http.StatusNotFound,
	)
	ErrUnauthorizedStage = apperror.New(
		apperror.CodeForbidden,
		"actor role is not authorized for this stage",
		http.StatusForbidden,
	)
	ErrRequestNotAccessible = apperror.New(
		apperror.CodeForbidden,
		"the request is not visible to this actor",
		http.StatusForbidden,
	)
	ErrNotRequestOwner = apperror.New(
		apperror.CodeForbidden,
		"only the requester may perform this operation",
		http.StatusForbidden,
	)
	ErrStaleTransition = apperror.New(
		apperror.CodeConflict,
		"stage is not the active stage of this request",
		http.StatusConflict,
	)
	ErrMissingComment = apperror.New(
		apperror.CodeInvalidInput,
		"a comment is required to reject or request more information",
		http.StatusBadRequest,
	)
	ErrConcurrentModification = apperror.New(
		apperror.CodeConflict,
		"the request was modified concurrently, re-fetch and retry",
		http.StatusConflict,
	)
	ErrEditNotAllowed = apperror.New(
		apperror.CodeInvalidState,
		"the request can no longer be edited",
		http.StatusBadRequest,
	)
	ErrWithdrawNotAllowed = apperror.New(
		apperror.CodeInvalidState,
		"the request can only be withdrawn while manager and HR review are pending",
		http.StatusBadRequest,
	)
	ErrAttestationNotAvailable = apperror.New(
		apperror.CodeInvalidState,
		"an attestation is only available once the request is fully approved",
		http.StatusBadRequest,
	)
	ErrNoManagerAssigned = apperror.New(
		apperror.CodeInvalidState,
		"employee has no manager assigned to review the request",
		http.StatusBadRequest,
	)
)
