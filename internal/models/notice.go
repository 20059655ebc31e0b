package models

import (
	"time"

	"github.com/google/uuid"
)

type NoticeLevel string

const (
	NoticeInfo  NoticeLevel = "info"
	NoticeError NoticeLevel = "error"
)

// Notice codes pushed to the dashboard.
const (
	NoticeRecordSaved        = "record_saved"
	NoticeRecordSaveFailed   = "record_save_failed"
	NoticeRecordDeleted      = "record_deleted"
	NoticeRecordDeleteFailed = "record_delete_failed"
	NoticeLoadFailed         = "load_failed"
	NoticeConfigError        = "config_error"
)

type Notice struct {
	ID        uuid.UUID   `json:"id"`
	Level     NoticeLevel `json:"level"`
	Code      string      `json:"code"`
	Message   string      `json:"message"`
	RecordID  RecordID    `json:"record_id,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
}

func NewNotice(level NoticeLevel, code, message string, recordID RecordID) Notice {
	return Notice{
		ID:        uuid.New(),
		Level:     level,
		Code:      code,
		Message:   message,
		RecordID:  recordID,
		CreatedAt: time.Now().UTC(),
	}
}

type WSMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}
