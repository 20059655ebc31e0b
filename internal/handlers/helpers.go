package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"perfdash-backend/internal/config"
	"perfdash-backend/internal/models"
	"perfdash-backend/internal/services"
)

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func errorResp(code, message string, r *http.Request) models.ErrorResponse {
	return models.ErrorResponse{
		Error: models.APIError{
			Code:      code,
			Message:   message,
			RequestID: r.Header.Get("X-Request-ID"),
		},
	}
}

func errorRespWithFields(code, message string, fields map[string]string, r *http.Request) models.ErrorResponse {
	resp := errorResp(code, message, r)
	resp.Error.Fields = fields
	return resp
}

func handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		valErr *services.ValidationError
		cfgErr *config.ConfigError
		extErr *services.ExtractionError
	)
	switch {
	case errors.As(err, &valErr):
		writeJSON(w, http.StatusBadRequest, errorRespWithFields("VALIDATION_ERROR", "Validation failed", valErr.Fields, r))
	case errors.As(err, &cfgErr):
		writeJSON(w, http.StatusServiceUnavailable, errorResp("CONFIG_ERROR", services.UserMessage(err), r))
	case errors.Is(err, services.ErrSuperseded):
		writeJSON(w, http.StatusConflict, errorResp("SUPERSEDED", services.UserMessage(err), r))
	case errors.Is(err, services.ErrNoDraft):
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "No extraction draft pending", r))
	case errors.Is(err, services.ErrRecordNotFound):
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "Record not found", r))
	case errors.Is(err, services.ErrDuplicateID):
		writeJSON(w, http.StatusConflict, errorResp("CONFLICT", "A record with this id already exists", r))
	case services.IsRateLimited(err):
		writeJSON(w, http.StatusTooManyRequests, errorResp("RATE_LIMITED", services.UserMessage(err), r))
	case errors.As(err, &extErr), errors.Is(err, services.ErrAllModelsBusy):
		writeJSON(w, http.StatusBadGateway, errorResp("EXTRACTION_FAILED", services.UserMessage(err), r))
	default:
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "An unexpected error occurred", r))
	}
}
