package handlers

import (
	"net/http"

	"perfdash-backend/internal/models"
)

type noticeSource interface {
	Recent() []models.Notice
}

type NoticeHandler struct {
	notices noticeSource
}

func NewNoticeHandler(notices noticeSource) *NoticeHandler {
	return &NoticeHandler{notices: notices}
}

func (h *NoticeHandler) List(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"notices": h.notices.Recent(),
	})
}
