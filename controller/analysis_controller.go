package controller

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/intelliwrite/underwriter/models"
	"github.com/intelliwrite/underwriter/services"
)

// AnalysisController handles the HTTP requests for the underwriting API. It
// depends on the AnalysisService to perform the actual business logic.
type AnalysisController struct {
	analysisService services.AnalysisService
}

// NewAnalysisController is a constructor function that creates a new
// AnalysisController. This is called from main.go to inject the service
// dependency.
func NewAnalysisController(service services.AnalysisService) *AnalysisController {
	return &AnalysisController{
		analysisService: service,
	}
}

// AnalyzeApplication is the Gin handler for the POST /api/v1/analyze
// endpoint. It accepts a JSON body with the application text and returns the
// generated analysis.
func (c *AnalysisController) AnalyzeApplication(ctx *gin.Context) {
	var req models.AnalyzeRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	c.runAnalysis(ctx, req)
}

// AnalyzeApplicationFile is the Gin handler for the POST
// /api/v1/analyze/file endpoint. It accepts a multipart upload of a PDF,
// TXT, or MD loan application, extracts the text server side, and runs the
// same pipeline.
func (c *AnalysisController) AnalyzeApplicationFile(ctx *gin.Context) {
	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Missing uploaded file: " + err.Error()})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Could not open uploaded file"})
		return
	}
	defer file.Close()

	text, err := services.ExtractTextFromUpload(fileHeader.Filename, file)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Could not read text from uploaded file: " + err.Error()})
		return
	}

	c.runAnalysis(ctx, models.AnalyzeRequest{Text: text})
}

// runAnalysis delegates to the service layer and maps pipeline errors onto
// HTTP statuses.
func (c *AnalysisController) runAnalysis(ctx *gin.Context, req models.AnalyzeRequest) {
	result, err := c.analysisService.Analyze(ctx.Request.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrEmptyDocument):
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Application text must not be empty"})
		case errors.Is(err, services.ErrDocumentTooLarge):
			ctx.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "Application text exceeds the size limit"})
		case errors.Is(err, services.ErrNoGuidelines):
			ctx.JSON(http.StatusServiceUnavailable, gin.H{"error": "No underwriting guidelines are indexed yet"})
		default:
			log.Printf("CONTROLLER: Analysis failed: %v", err)
			ctx.JSON(http.StatusBadGateway, gin.H{"error": "Failed to generate analysis"})
		}
		return
	}

	ctx.JSON(http.StatusOK, result)
}

// IngestGuideline is the Gin handler for the POST /api/v1/guidelines
// endpoint. It adds one ad-hoc guideline snippet to the index.
func (c *AnalysisController) IngestGuideline(ctx *gin.Context) {
	var req models.IngestGuidelineRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	if err := c.analysisService.IngestGuideline(ctx.Request.Context(), req); err != nil {
		if errors.Is(err, services.ErrEmptyDocument) {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Guideline text must not be empty"})
			return
		}
		log.Printf("CONTROLLER: Guideline ingest failed: %v", err)
		ctx.JSON(http.StatusBadGateway, gin.H{"error": "Failed to ingest guideline"})
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{"message": "Guideline ingested successfully"})
}

// ListGuidelines is the Gin handler for the GET /api/v1/guidelines endpoint.
func (c *AnalysisController) ListGuidelines(ctx *gin.Context) {
	response, err := c.analysisService.ListGuidelines(ctx.Request.Context())
	if err != nil {
		log.Printf("CONTROLLER: Listing guidelines failed: %v", err)
		ctx.JSON(http.StatusBadGateway, gin.H{"error": "Failed to retrieve guidelines"})
		return
	}

	ctx.JSON(http.StatusOK, response)
}
