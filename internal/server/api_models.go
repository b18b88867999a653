package server

import "github.com/trustlens/trustlens/internal/app"

// AnalyzeRequest asks for one URL to be analysed. When Text or ImageURLs is
// present the page is not fetched and the supplied content is scored.
type AnalyzeRequest struct {
	URL       string   `json:"url" example:"https://example.com"`
	Text      *string  `json:"text,omitempty" example:"Claim your free prize now"`
	ImageURLs []string `json:"image_urls,omitempty" example:"https://example.com/logo.png"`
}

// BatchRequest submits several URLs as one background job.
type BatchRequest struct {
	URLs []string `json:"urls" example:"https://example.com,https://example.org"`
}

// HealthResponse reports liveness and the active engine setup.
type HealthResponse struct {
	Status         string `json:"status" example:"ok"`
	ScoringVersion string `json:"scoring_version" example:"v1.0.0"`
	Classifier     string `json:"classifier" example:"keyword"`
	Identity       string `json:"identity" example:"random"`
}

// CancelResponse is returned when a batch is canceled.
type CancelResponse struct {
	Job      *app.Job `json:"job"`
	Canceled bool     `json:"canceled" example:"true"`
}

// ErrorResponse is a uniform error payload returned by the API.
type ErrorResponse struct {
	Error string `json:"error" example:"not found"`
}
