package models

type AnalyzeRequest struct {
	Text string `json:"text"`
}

type IngestGuidelineRequest struct {
	Text string `json:"text"`
}
