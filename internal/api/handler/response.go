package handler

import (
	"credit-approval/internal/api/handler/dto"
	"credit-approval/internal/pkg/apperrors"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

func decodeJSON(r *http.Request, v any) error {
	if r.Body == nil {
		return fmt.Errorf("no request body")
	}
	defer r.Body.Close()
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(v)
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	response, err := json.Marshal(payload)
	if err != nil {
		slog.Default().Error("Failed to marshal JSON response", "error", err)
		http.Error(w, `{"error":{"code":"INTERNAL","message":"Internal server error"}}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(response)
}

// errorStatus maps an error chain onto the HTTP status and the error body.
func errorStatus(err error) (int, dto.ErrorDetail) {
	var validationError *apperrors.ValidationError
	var appErr *apperrors.AppError

	switch {
	case errors.As(err, &validationError):
		return http.StatusBadRequest, dto.ErrorDetail{Code: "VALIDATION_ERROR", Message: validationError.Message, Field: validationError.Field}
	case errors.Is(err, apperrors.ErrNotFound):
		message := "Resource not found."
		if errors.As(err, &appErr) {
			message = appErr.Message
		}
		return http.StatusNotFound, dto.ErrorDetail{Code: "NOT_FOUND", Message: message}
	case errors.Is(err, apperrors.ErrInvalidArgument), errors.Is(err, apperrors.ErrValidation):
		return http.StatusBadRequest, dto.ErrorDetail{Code: "INVALID_ARGUMENT", Message: err.Error()}
	case errors.Is(err, apperrors.ErrAlreadyExists), errors.Is(err, apperrors.ErrConflict):
		return http.StatusConflict, dto.ErrorDetail{Code: "CONFLICT", Message: err.Error()}
	case errors.Is(err, apperrors.ErrUnauthorized):
		return http.StatusUnauthorized, dto.ErrorDetail{Code: "UNAUTHORIZED", Message: "Unauthorized"}
	default:
		slog.Default().Error("Unhandled internal error", "error", err)
		return http.StatusInternalServerError, dto.ErrorDetail{Code: "INTERNAL", Message: "An unexpected error occurred."}
	}
}

func respondError(w http.ResponseWriter, err error) {
	status, detail := errorStatus(err)
	respondJSON(w, status, dto.ErrorResponse{Error: detail})
}

// logLevelFor keeps client mistakes at warn so error logs stay meaningful.
func logLevelFor(err error) slog.Level {
	if status, _ := errorStatus(err); status >= http.StatusInternalServerError {
		return slog.LevelError
	}
	return slog.LevelWarn
}

func getIDFromURL(r *http.Request, param string) (int64, error) {
	idStr := chi.URLParam(r, param)
	if idStr == "" {
		return 0, fmt.Errorf("%w: %s not found in URL path", apperrors.ErrInvalidArgument, param)
	}
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid %s format in URL path: %s", apperrors.ErrInvalidArgument, param, idStr)
	}
	return id, nil
}
