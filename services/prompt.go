package services

import (
	"fmt"
	"strings"

	"github.com/intelliwrite/underwriter/models"
)

// GetSystemPrompt defines the core instructions for the underwriting assistant.
func GetSystemPrompt() string {
	return `You are an expert underwriting assistant. Your task is to analyze a
loan application based *only* on the provided 'Underwriting Guidelines'.

Do not use any external knowledge.

Analyze the 'Loan Application' against the 'Underwriting Guidelines' and
provide your analysis in the following format:

**Summary:**
[Provide a brief summary of the loan application.]

**Flagged Risks:**
[List all violations or risks found in the application based on the guidelines.
For each risk, state the guideline that was violated and why.
If no risks are found, state "No risks flagged."]`
}

// BuildAnalysisPrompt stuffs the retrieved guideline chunks and the
// application text into the user prompt sent to the model.
func BuildAnalysisPrompt(chunks []models.SourceDocument, applicationText string) string {
	var sb strings.Builder

	sb.WriteString("Underwriting Guidelines:\n\n")
	for i, chunk := range chunks {
		sb.WriteString(fmt.Sprintf("[Guideline %d]\n%s\n\n", i+1, chunk.Text))
	}

	sb.WriteString("Loan Application:\n\n")
	sb.WriteString(applicationText)
	sb.WriteString("\n")

	return sb.String()
}
