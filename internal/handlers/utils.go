package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/jjudge-oj/userapi/internal/services"
	"github.com/jjudge-oj/userapi/internal/store"
	"go.uber.org/zap"
)

const (
	detailNotFound         = "Not found."
	detailPermission       = "You do not have permission to perform this action."
	detailNotAuthenticated = "Authentication credentials were not provided."
	detailInvalidPage      = "Invalid page."
)

// ErrorResponse is the body of every non-validation error.
type ErrorResponse struct {
	Detail string `json:"detail"`
}

func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Detail: message})
}

func writeValidationError(w http.ResponseWriter, err *services.ValidationError) {
	writeJSON(w, http.StatusBadRequest, err.Fields)
}

// writeServiceError maps service and store errors onto HTTP responses.
func writeServiceError(w http.ResponseWriter, logger *zap.Logger, err error, message string) {
	var verr *services.ValidationError
	switch {
	case errors.As(err, &verr):
		writeValidationError(w, verr)
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, detailNotFound)
	default:
		logger.Error(message, zap.Error(err))
		writeError(w, http.StatusInternalServerError, message)
	}
}

// parseUserID reads the {userID} path segment. Anything that is not a
// positive integer cannot name a user, so it is reported as not found.
func parseUserID(r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "userID"))
	if err != nil || id < 1 {
		return 0, false
	}
	return id, true
}
