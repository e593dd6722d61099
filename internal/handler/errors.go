package handler

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/BuzzLyutic/todo-tracker/internal/service"
	"github.com/BuzzLyutic/todo-tracker/pkg/respond"
)

// writeError maps service error kinds to HTTP statuses: validation and
// limit failures are the client's fault, duplicates conflict, missing
// entities 404, anything else is an internal store failure.
func writeError(w http.ResponseWriter, r *http.Request, logger *zap.Logger, err error) {
	switch {
	case errors.Is(err, service.ErrValidation):
		respond.Error(w, r, http.StatusBadRequest, "validation", err.Error())
	case errors.Is(err, service.ErrProjectLimit), errors.Is(err, service.ErrTaskLimit):
		respond.Error(w, r, http.StatusBadRequest, "limit", err.Error())
	case errors.Is(err, service.ErrDuplicateProject), errors.Is(err, service.ErrDuplicateTask):
		respond.Error(w, r, http.StatusConflict, "duplicate", err.Error())
	case errors.Is(err, service.ErrProjectNotFound), errors.Is(err, service.ErrTaskNotFound):
		respond.Error(w, r, http.StatusNotFound, "not_found", err.Error())
	default:
		logger.Error("internal error", zap.Error(err))
		respond.Error(w, r, http.StatusInternalServerError, "internal", "internal error")
	}
}
