package models

import "time"

// Draft is the unconfirmed output of a screenshot extraction.
type Draft struct {
	Name     string `json:"name"`
	TikTokID string `json:"tiktokId"`
	Metrics
	MainProduct MainProduct `json:"mainProduct,omitempty"`
	Permalink   string      `json:"permalink,omitempty"`
}

type DraftState struct {
	Draft        *Draft    `json:"draft"`
	ImagePreview string    `json:"image_preview"`
	Model        string    `json:"model"`
	ExtractedAt  time.Time `json:"extracted_at"`
}

type DraftUpdateRequest struct {
	Draft
}

type ConfirmDraftRequest struct {
	Thumbnail string `json:"thumbnail"`
}

type ExtractImageRequest struct {
	Image string `json:"image"`
}
