package models

// GuidelineChunk is a single indexed fragment of the underwriting
// guidelines as stored in the vector database.
type GuidelineChunk struct {
	ID       string                 `json:"id"`
	Text     string                 `json:"text"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

// GuidelineListResponse is the structure for the response of the
// GET /guidelines endpoint.
type GuidelineListResponse struct {
	Count  int              `json:"count"`
	Chunks []GuidelineChunk `json:"chunks"`
}

// SourceDocument represents a retrieved guideline chunk and its origin.
type SourceDocument struct {
	Text     string                 `json:"text"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}
