package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"perfdash-backend/internal/models"
	"perfdash-backend/internal/services"
)

type recordService interface {
	Records() []models.Record
	Source() string
	Load(ctx context.Context) services.LoadResult
	Delete(ctx context.Context, id models.RecordID) error
}

type RecordHandler struct {
	records recordService
}

func NewRecordHandler(records recordService) *RecordHandler {
	return &RecordHandler{records: records}
}

func (h *RecordHandler) List(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, models.RecordsResponse{
		Records: h.records.Records(),
		Source:  h.records.Source(),
	})
}

// Reload re-reads the store. A failed read still answers 200 with the
// fallback collection; the failure is reported through notices.
func (h *RecordHandler) Reload(w http.ResponseWriter, r *http.Request) {
	res := h.records.Load(r.Context())
	writeJSON(w, http.StatusOK, models.RecordsResponse{
		Records: res.Records,
		Source:  res.Source,
	})
}

func (h *RecordHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := models.ParseRecordID(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid record ID", r))
		return
	}

	if err := h.records.Delete(r.Context(), id); err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]interface{}{
		"id":      id,
		"message": "Record deleted",
	})
}
