package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	chromago "github.com/amikos-tech/chroma-go/pkg/api/v2"
	"github.com/gin-gonic/gin"
	"google.golang.org/genai"

	"github.com/intelliwrite/underwriter/config"
	"github.com/intelliwrite/underwriter/controller"
	"github.com/intelliwrite/underwriter/services"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "", "Path to config file")
	flag.Parse()

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		log.Fatalf("FATAL: Failed to load config: %v", err)
	}
	if errs := cfg.Validate(); len(errs) > 0 {
		for _, e := range errs {
			log.Printf("CONFIG ERROR: %v", e)
		}
		log.Fatalf("FATAL: Invalid configuration (%d errors)", len(errs))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Create HTTP client for the Ollama embedding endpoint
	httpClient := &http.Client{
		Timeout: time.Duration(cfg.Embedding.TimeoutSeconds) * time.Second,
	}

	// Create Chroma client using v2 API
	chromaClient, err := chromago.NewHTTPClient(chromago.WithBaseURL(cfg.Chroma.URL))
	if err != nil {
		log.Fatalf("FATAL: Failed to create chroma client: %v", err)
	}

	// Ensure we close the client to release resources like local embedding functions
	defer func() {
		if cerr := chromaClient.Close(); cerr != nil {
			log.Printf("Warning: Failed to close chroma client: %v", cerr)
		}
	}()

	// Get or create collection using v2 API
	collection, err := getOrCreateCollectionV2(chromaClient, cfg.Chroma.Collection)
	if err != nil {
		log.Fatalf("FATAL: Failed to get or create collection: %v", err)
	}

	embedder := services.NewOllamaEmbedder(httpClient, cfg.Embedding.BaseURL, cfg.Embedding.Model,
		time.Duration(cfg.Embedding.TimeoutSeconds)*time.Second)

	generator, err := buildGenerator(ctx, cfg)
	if err != nil {
		log.Fatalf("FATAL: Failed to create completion backend: %v", err)
	}
	log.Printf("Using %q completion backend.", cfg.LLM.Provider)

	store := services.NewChromaGuidelineStore(collection)
	analysisService := services.NewAnalysisService(embedder, generator, store, services.AnalysisConfig{
		TopK:             cfg.Guidelines.TopK,
		MaxDocumentBytes: cfg.Server.MaxDocumentBytes,
	})
	analysisController := controller.NewAnalysisController(analysisService)

	// Build the guidelines knowledge base before serving traffic, then keep
	// it in sync with the directory.
	indexer := services.NewGuidelineIndexer(store, embedder, cfg.Guidelines.ChunkSize, cfg.Guidelines.ChunkOverlap)
	if _, err := os.Stat(cfg.Guidelines.Dir); err != nil {
		log.Printf("Warning: Guidelines directory %s not readable: %v", cfg.Guidelines.Dir, err)
	} else {
		indexer.ScanAndIndexDirectory(ctx, cfg.Guidelines.Dir)
		if cfg.Guidelines.Watch {
			go indexer.WatchDirectory(ctx, cfg.Guidelines.Dir)
		}
	}

	// Setup Gin router
	router := gin.Default()

	// Add CORS middleware so a separately served UI can call the API
	router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	// Minimal browser UI
	router.StaticFile("/", "./web/index.html")

	// Add health check endpoint
	router.GET("/health", func(c *gin.Context) {
		indexedChunks, err := store.Count(c.Request.Context())
		if err != nil {
			log.Printf("Warning: Could not count indexed chunks: %v", err)
			indexedChunks = -1
		}
		c.JSON(200, gin.H{
			"status":         "healthy",
			"service":        "Underwriting Assistant API",
			"version":        "1.0.0",
			"indexed_chunks": indexedChunks,
		})
	})

	// API routes
	apiV1 := router.Group("/api/v1")
	{
		apiV1.POST("/analyze", analysisController.AnalyzeApplication)          // Analyze application text
		apiV1.POST("/analyze/file", analysisController.AnalyzeApplicationFile) // Analyze an uploaded PDF/TXT application
		apiV1.GET("/guidelines", analysisController.ListGuidelines)            // List indexed guideline chunks
		apiV1.POST("/guidelines", analysisController.IngestGuideline)          // Ingest an ad-hoc guideline snippet
	}

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	go func() {
		log.Printf("Underwriting assistant backend starting on http://localhost:%s", cfg.Server.Port)
		log.Printf("Health check available at: http://localhost:%s/health", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("FATAL: Failed to start server: %v", err)
		}
	}()

	// Block until interrupted, then drain in-flight requests.
	<-ctx.Done()
	log.Println("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Warning: Server shutdown: %v", err)
	}
}

// buildGenerator picks the completion backend from config. Ollama is the
// default; Gemini is available for deployments without local inference.
func buildGenerator(ctx context.Context, cfg *config.Config) (services.Generator, error) {
	timeout := time.Duration(cfg.LLM.TimeoutSeconds) * time.Second

	if cfg.LLM.Provider == "gemini" {
		geminiClient, err := genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:  os.Getenv("GEMINI_API_KEY"),
			Backend: genai.BackendGeminiAPI,
		})
		if err != nil {
			return nil, err
		}
		return services.NewGeminiGenerator(geminiClient, cfg.LLM.GeminiModel, timeout), nil
	}

	return services.NewOllamaGenerator(services.GeneratorConfig{
		Model:       cfg.LLM.Model,
		BaseURL:     cfg.LLM.BaseURL,
		MaxTokens:   cfg.LLM.MaxTokens,
		Temperature: cfg.LLM.Temperature,
		Timeout:     timeout,
	})
}

// getOrCreateCollectionV2 implements collection management using v2 API
func getOrCreateCollectionV2(client chromago.Client, collectionName string) (chromago.Collection, error) {
	ctx := context.Background()

	log.Printf("Getting or creating collection '%s' using v2 API...", collectionName)

	collection, err := client.GetOrCreateCollection(
		ctx,
		collectionName,
		chromago.WithCollectionMetadataCreate(
			chromago.NewMetadata(
				chromago.NewStringAttribute("description", "Underwriting guidelines knowledge base"),
				chromago.NewStringAttribute("created_by", "underwriting_assistant"),
			),
		),
	)
	if err != nil {
		return nil, err
	}

	log.Printf("Successfully got/created collection '%s'", collectionName)
	return collection, nil
}
