package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/intelliwrite/underwriter/models"
	"github.com/intelliwrite/underwriter/services"
)

// fakeAnalysisService implements services.AnalysisService with canned
// behavior per test.
type fakeAnalysisService struct {
	analyzeFn func(ctx context.Context, req models.AnalyzeRequest) (*models.AnalysisResult, error)
	ingestFn  func(ctx context.Context, req models.IngestGuidelineRequest) error
	listFn    func(ctx context.Context) (*models.GuidelineListResponse, error)
}

func (f *fakeAnalysisService) Analyze(ctx context.Context, req models.AnalyzeRequest) (*models.AnalysisResult, error) {
	return f.analyzeFn(ctx, req)
}

func (f *fakeAnalysisService) IngestGuideline(ctx context.Context, req models.IngestGuidelineRequest) error {
	return f.ingestFn(ctx, req)
}

func (f *fakeAnalysisService) ListGuidelines(ctx context.Context) (*models.GuidelineListResponse, error) {
	return f.listFn(ctx)
}

func newTestRouter(svc services.AnalysisService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	ctrl := NewAnalysisController(svc)

	router := gin.New()
	api := router.Group("/api/v1")
	{
		api.POST("/analyze", ctrl.AnalyzeApplication)
		api.POST("/analyze/file", ctrl.AnalyzeApplicationFile)
		api.GET("/guidelines", ctrl.ListGuidelines)
		api.POST("/guidelines", ctrl.IngestGuideline)
	}
	return router
}

func lowRiskService() *fakeAnalysisService {
	return &fakeAnalysisService{
		analyzeFn: func(ctx context.Context, req models.AnalyzeRequest) (*models.AnalysisResult, error) {
			return &models.AnalysisResult{
				ApplicationID: "app-123",
				Analysis:      "Low risk.",
				SourceChunks: []models.SourceDocument{
					{Text: "Applicants must show two years of stable income."},
				},
			}, nil
		},
	}
}

func TestAnalyzeEndpoint(t *testing.T) {
	router := newTestRouter(lowRiskService())

	body, _ := json.Marshal(models.AnalyzeRequest{
		Text: "Applicant has stable income and no prior defaults.",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyze", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var result models.AnalysisResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, "Low risk.", result.Analysis)
	assert.NotEmpty(t, result.ApplicationID)
	assert.NotEmpty(t, result.SourceChunks)
}

func TestAnalyzeEndpointErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		serviceErr error
		wantStatus int
	}{
		{"empty document", services.ErrEmptyDocument, http.StatusBadRequest},
		{"oversized document", services.ErrDocumentTooLarge, http.StatusRequestEntityTooLarge},
		{"cold index", services.ErrNoGuidelines, http.StatusServiceUnavailable},
		{"upstream failure", errors.New("ollama unreachable"), http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeAnalysisService{
				analyzeFn: func(ctx context.Context, req models.AnalyzeRequest) (*models.AnalysisResult, error) {
					return nil, tt.serviceErr
				},
			}
			router := newTestRouter(svc)

			body, _ := json.Marshal(models.AnalyzeRequest{Text: "whatever"})
			req := httptest.NewRequest(http.MethodPost, "/api/v1/analyze", bytes.NewReader(body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Contains(t, w.Body.String(), "error")
		})
	}
}

func TestAnalyzeEndpointInvalidBody(t *testing.T) {
	router := newTestRouter(lowRiskService())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyze", strings.NewReader("{not json"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAnalyzeFileEndpoint(t *testing.T) {
	var received string
	svc := lowRiskService()
	svc.analyzeFn = func(ctx context.Context, req models.AnalyzeRequest) (*models.AnalysisResult, error) {
		received = req.Text
		return &models.AnalysisResult{ApplicationID: "app-456", Analysis: "Low risk."}, nil
	}
	router := newTestRouter(svc)

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", "application.txt")
	require.NoError(t, err)
	_, err = part.Write([]byte("Applicant has stable income and no prior defaults."))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyze/file", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Applicant has stable income and no prior defaults.", received)
}

func TestAnalyzeFileEndpointUnsupportedType(t *testing.T) {
	router := newTestRouter(lowRiskService())

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", "application.docx")
	require.NoError(t, err)
	_, err = part.Write([]byte("binary stuff"))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyze/file", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAnalyzeFileEndpointMissingFile(t *testing.T) {
	router := newTestRouter(lowRiskService())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyze/file", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestIngestGuidelineEndpoint(t *testing.T) {
	svc := &fakeAnalysisService{
		ingestFn: func(ctx context.Context, req models.IngestGuidelineRequest) error {
			return nil
		},
	}
	router := newTestRouter(svc)

	body, _ := json.Marshal(models.IngestGuidelineRequest{Text: "New guideline."})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/guidelines", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestListGuidelinesEndpoint(t *testing.T) {
	svc := &fakeAnalysisService{
		listFn: func(ctx context.Context) (*models.GuidelineListResponse, error) {
			return &models.GuidelineListResponse{
				Count:  1,
				Chunks: []models.GuidelineChunk{{ID: "id-1", Text: "Minimum credit score is 640."}},
			}, nil
		},
	}
	router := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/guidelines", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp models.GuidelineListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Count)
	assert.Equal(t, "Minimum credit score is 640.", resp.Chunks[0].Text)
}
