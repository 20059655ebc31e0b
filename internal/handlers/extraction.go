package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"perfdash-backend/internal/models"
)

const maxImageBytes = 10 << 20

var (
	errNoImage = errors.New("no image provided")
	errBadBody = errors.New("invalid request body")
)

type intakeService interface {
	Extract(ctx context.Context, input []byte) (*models.DraftState, error)
	Draft() (*models.DraftState, error)
	UpdateDraft(d models.Draft) (*models.DraftState, error)
	Discard()
	Confirm(ctx context.Context, thumbnail string) (*models.Record, error)
}

type ExtractionHandler struct {
	intake intakeService
	logger *zap.Logger
}

func NewExtractionHandler(intake intakeService, logger *zap.Logger) *ExtractionHandler {
	return &ExtractionHandler{intake: intake, logger: logger}
}

// Extract accepts a screenshot either as a multipart "image" file or as a
// JSON body {"image": "data:image/png;base64,..."}.
func (h *ExtractionHandler) Extract(w http.ResponseWriter, r *http.Request) {
	if r.ContentLength > maxImageBytes*2 {
		writeJSON(w, http.StatusRequestEntityTooLarge, errorResp("FILE_TOO_LARGE", "Image exceeds 10MB limit", r))
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxImageBytes*2)

	input, err := readImage(r)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorResp("FILE_TOO_LARGE", "Image exceeds 10MB limit", r))
			return
		}
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", err.Error(), r))
		return
	}

	state, err := h.intake.Extract(r.Context(), input)
	if err != nil {
		h.logger.Warn("extraction failed", zap.String("request_id", r.Header.Get("X-Request-ID")), zap.Error(err))
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, state)
}

func readImage(r *http.Request) ([]byte, error) {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		file, _, err := r.FormFile("image")
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				return nil, err
			}
			return nil, errNoImage
		}
		defer file.Close()

		data, err := io.ReadAll(io.LimitReader(file, maxImageBytes+1))
		if err != nil {
			return nil, err
		}
		if len(data) > maxImageBytes {
			return nil, &http.MaxBytesError{Limit: maxImageBytes}
		}
		return data, nil
	}

	var req models.ExtractImageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, err
		}
		return nil, errBadBody
	}
	if strings.TrimSpace(req.Image) == "" {
		return nil, errNoImage
	}
	return []byte(req.Image), nil
}

func (h *ExtractionHandler) GetDraft(w http.ResponseWriter, r *http.Request) {
	state, err := h.intake.Draft()
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

func (h *ExtractionHandler) UpdateDraft(w http.ResponseWriter, r *http.Request) {
	var req models.DraftUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	state, err := h.intake.UpdateDraft(req.Draft)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

func (h *ExtractionHandler) DiscardDraft(w http.ResponseWriter, r *http.Request) {
	h.intake.Discard()
	w.WriteHeader(http.StatusNoContent)
}

func (h *ExtractionHandler) ConfirmDraft(w http.ResponseWriter, r *http.Request) {
	var req models.ConfirmDraftRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
			return
		}
	}

	rec, err := h.intake.Confirm(r.Context(), req.Thumbnail)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}
