package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/intelliwrite/underwriter/models"
)

// AnalysisService is the orchestration layer: it turns a loan-application
// document into a risk analysis grounded in the indexed guidelines.
type AnalysisService interface {
	Analyze(c context.Context, req models.AnalyzeRequest) (*models.AnalysisResult, error)
	IngestGuideline(c context.Context, req models.IngestGuidelineRequest) error
	ListGuidelines(c context.Context) (*models.GuidelineListResponse, error)
}

// AnalysisConfig bounds the pipeline.
type AnalysisConfig struct {
	TopK             int
	MaxDocumentBytes int
}

// analysisServiceImpl holds the collaborators the pipeline needs.
type analysisServiceImpl struct {
	embedder  Embedder
	generator Generator
	store     GuidelineStore
	config    AnalysisConfig
}

// NewAnalysisService creates the orchestration service.
func NewAnalysisService(embedder Embedder, generator Generator, store GuidelineStore, config AnalysisConfig) AnalysisService {
	if config.TopK == 0 {
		config.TopK = 3
	}
	if config.MaxDocumentBytes == 0 {
		config.MaxDocumentBytes = 512 * 1024
	}
	return &analysisServiceImpl{
		embedder:  embedder,
		generator: generator,
		store:     store,
		config:    config,
	}
}

// Analyze implements AnalysisService. The pipeline is linear: validate,
// embed, retrieve, prompt, generate. Validation failures never reach the
// collaborators.
func (s *analysisServiceImpl) Analyze(c context.Context, req models.AnalyzeRequest) (*models.AnalysisResult, error) {
	text := strings.TrimSpace(req.Text)
	if text == "" {
		return nil, ErrEmptyDocument
	}
	if len(req.Text) > s.config.MaxDocumentBytes {
		return nil, fmt.Errorf("%w: %d bytes, limit is %d", ErrDocumentTooLarge, len(req.Text), s.config.MaxDocumentBytes)
	}

	doc := models.ApplicationDocument{
		ID:          uuid.New().String(),
		Text:        text,
		SubmittedAt: time.Now().UTC(),
	}
	log.Printf("SERVICE: Analyzing application %s (%d bytes)", doc.ID, len(doc.Text))

	queryEmbedding, err := s.embedder.EmbedText(c, doc.Text)
	if err != nil {
		return nil, fmt.Errorf("failed to embed application text: %w", err)
	}

	chunks, err := s.store.Search(c, queryEmbedding, s.config.TopK)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve guideline chunks: %w", err)
	}
	if len(chunks) == 0 {
		return nil, ErrNoGuidelines
	}
	log.Printf("SERVICE: Retrieved %d guideline chunks for application %s", len(chunks), doc.ID)

	analysis, err := s.generator.Generate(c, GetSystemPrompt(), BuildAnalysisPrompt(chunks, doc.Text))
	if err != nil {
		return nil, fmt.Errorf("could not generate analysis: %w", err)
	}

	return &models.AnalysisResult{
		ApplicationID: doc.ID,
		Analysis:      analysis,
		SourceChunks:  chunks,
	}, nil
}

// IngestGuideline implements AnalysisService. It embeds and stores one
// ad-hoc guideline snippet.
func (s *analysisServiceImpl) IngestGuideline(c context.Context, req models.IngestGuidelineRequest) error {
	text := strings.TrimSpace(req.Text)
	if text == "" {
		return ErrEmptyDocument
	}
	log.Printf("SERVICE: Ingesting guideline snippet (%d bytes)", len(text))

	embedding, err := s.embedder.EmbedText(c, text)
	if err != nil {
		return fmt.Errorf("could not generate embedding for guideline: %w", err)
	}

	err = s.store.Add(c, uuid.New().String(), text, embedding, ChunkMetadata{Source: "user_input"})
	if err != nil {
		return err
	}

	log.Printf("SERVICE: Successfully added guideline snippet")
	return nil
}

// ListGuidelines implements AnalysisService.
func (s *analysisServiceImpl) ListGuidelines(c context.Context) (*models.GuidelineListResponse, error) {
	chunks, err := s.store.List(c)
	if err != nil {
		return nil, err
	}
	log.Printf("SERVICE: Listed %d indexed guideline chunks", len(chunks))
	return &models.GuidelineListResponse{
		Count:  len(chunks),
		Chunks: chunks,
	}, nil
}
