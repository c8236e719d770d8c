package models

import "time"

// ApplicationDocument is one loan application submitted for analysis. It
// lives only for the duration of the request that carries it.
type ApplicationDocument struct {
	ID          string    `json:"id"`
	Text        string    `json:"text"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// AnalysisResult is the generated risk analysis for a single application,
// together with the guideline chunks that grounded it.
type AnalysisResult struct {
	ApplicationID string           `json:"application_id"`
	Analysis      string           `json:"analysis"`
	SourceChunks  []SourceDocument `json:"source_chunks,omitempty"`
}
