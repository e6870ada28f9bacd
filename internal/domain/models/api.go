package models

// PreviewRequest asks for the core pipeline result of one date.
type PreviewRequest struct {
	Date string `query:"date" validate:"required,len=6,numeric"`
}

// EnqueueRequest asks for a full run in the background.
type EnqueueRequest struct {
	Date string `json:"date" validate:"required,len=6,numeric"`
	Send *bool  `json:"send" default:"true"`
}

// EnqueueResponse acknowledges a queued run.
type EnqueueResponse struct {
	Date   string `json:"date"`
	Send   bool   `json:"send"`
	Status string `json:"status"`
}

// PreviewResponse carries a built report and its text rendering.
type PreviewResponse struct {
	Report Report `json:"report"`
	Text   string `json:"text"`
}
