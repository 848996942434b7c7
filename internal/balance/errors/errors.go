package balanceerrors

import (
	"net/http"

	"github.com/LamineOzilJr/memoire-master2/internal/shared/apperror"
)

var (
	ErrInsufficientBalance = apperror.New(
		apperror.CodeConflict,
		"insufficient leave balance for the requested period",
		http.StatusConflict,
	)
	ErrBalanceNotFound = apperror.New(
		apperror.CodeNotFound,
		"no leave balance for this employee, type and year",
		http.StatusNotFound,
	)
	ErrInvalidEmployeeID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid employee id",
		http.StatusBadRequest,
	)
	ErrInvalidDays = apperror.New(
		apperror.CodeInvalidInput,
		"days must be strictly positive",
		http.StatusBadRequest,
	)
)
