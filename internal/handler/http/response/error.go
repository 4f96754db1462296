package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/hris-leave-ledger/internal/pkg/apperror"
	"github.com/cmlabs-hris/hris-leave-ledger/internal/pkg/requestctx"
	"github.com/cmlabs-hris/hris-leave-ledger/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, r *http.Request, err error) {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	var appErr *apperror.Error
	if !errors.As(err, &appErr) {
		slog.Error("Unhandled error", "error", err, "request_id", requestctx.GetRequestID(r.Context()),
			"method", r.Method, "path", r.URL.Path)
		InternalServerError(w, "An unexpected error occurred")
		return
	}

	switch appErr.Kind {
	case apperror.KindValidation:
		Fail(w, http.StatusBadRequest, appErr.Code, appErr.Message, nil)
	case apperror.KindUnauthorized:
		Fail(w, http.StatusUnauthorized, appErr.Code, appErr.Message, nil)
	case apperror.KindPermission:
		Fail(w, http.StatusForbidden, appErr.Code, appErr.Message, nil)
	case apperror.KindNotFound:
		Fail(w, http.StatusNotFound, appErr.Code, appErr.Message, nil)
	case apperror.KindConflict:
		Fail(w, http.StatusConflict, appErr.Code, appErr.Message, nil)
	case apperror.KindState:
		// err carries the current state, e.g. "leave is already approved".
		Fail(w, http.StatusConflict, apperror.CodeInvalidState, err.Error(), map[string]string{"reason": appErr.Code})
	default:
		slog.Error("Internal error", "error", err, "request_id", requestctx.GetRequestID(r.Context()))
		InternalServerError(w, "An unexpected error occurred")
	}
}
