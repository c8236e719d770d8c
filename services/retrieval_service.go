package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	chromago "github.com/amikos-tech/chroma-go/pkg/api/v2"
	"github.com/amikos-tech/chroma-go/pkg/embeddings"

	"github.com/intelliwrite/underwriter/models"
)

// ChunkMetadata describes where an indexed guideline chunk came from.
// SourceFile, FileHash and ChunkNum are set only for chunks produced by the
// directory indexer.
type ChunkMetadata struct {
	Source     string
	SourceFile string
	FileHash   string
	ChunkNum   int
}

// GuidelineStore is the vector-database interface for guideline chunks.
// The indexer is the only writer; everything else reads.
type GuidelineStore interface {
	Add(ctx context.Context, id, text string, embedding []float32, meta ChunkMetadata) error
	Search(ctx context.Context, embedding []float32, topK int) ([]models.SourceDocument, error)
	List(ctx context.Context) ([]models.GuidelineChunk, error)
	Count(ctx context.Context) (int, error)
	DeleteBySourceFile(ctx context.Context, path string) error
}

// chromaGuidelineStore implements GuidelineStore on a ChromaDB collection
// using the v2 API.
type chromaGuidelineStore struct {
	collection chromago.Collection
}

// NewChromaGuidelineStore wraps an already-created collection.
func NewChromaGuidelineStore(collection chromago.Collection) GuidelineStore {
	return &chromaGuidelineStore{collection: collection}
}

// Add stores one chunk with its embedding and metadata.
func (s *chromaGuidelineStore) Add(ctx context.Context, id, text string, embedding []float32, meta ChunkMetadata) error {
	var metadata chromago.DocumentMetadata
	if meta.SourceFile != "" {
		metadata = chromago.NewDocumentMetadata(
			chromago.NewStringAttribute("source", meta.Source),
			chromago.NewStringAttribute("source_file", meta.SourceFile),
			chromago.NewStringAttribute("file_hash", meta.FileHash),
			chromago.NewIntAttribute("chunk_num", int64(meta.ChunkNum)),
		)
	} else {
		metadata = chromago.NewDocumentMetadata(
			chromago.NewStringAttribute("source", meta.Source),
		)
	}

	err := s.collection.Add(ctx,
		chromago.WithIDs(chromago.DocumentID(id)),
		chromago.WithTexts(text),
		chromago.WithEmbeddings(embeddings.NewEmbeddingFromFloat32(embedding)),
		chromago.WithMetadatas(metadata),
	)
	if err != nil {
		return fmt.Errorf("failed to add record to chromadb: %w", err)
	}
	return nil
}

// Search returns the topK chunks nearest to the query embedding.
func (s *chromaGuidelineStore) Search(ctx context.Context, embedding []float32, topK int) ([]models.SourceDocument, error) {
	results, err := s.collection.Query(
		ctx,
		chromago.WithQueryEmbeddings(embeddings.NewEmbeddingFromFloat32(embedding)),
		chromago.WithNResults(topK),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query chromadb: %w", err)
	}

	var documents []models.SourceDocument
	documentGroups := results.GetDocumentsGroups()
	metadataGroups := results.GetMetadatasGroups()

	if len(documentGroups) > 0 {
		for i, doc := range documentGroups[0] {
			if doc.ContentString() == "" {
				continue
			}
			var metadataMap map[string]interface{}
			if len(metadataGroups) > 0 && i < len(metadataGroups[0]) {
				metadataMap = metadataToMap(metadataGroups[0][i])
			}
			documents = append(documents, models.SourceDocument{
				Text:     doc.ContentString(),
				Metadata: metadataMap,
			})
		}
	}
	return documents, nil
}

// List retrieves every chunk in the collection.
func (s *chromaGuidelineStore) List(ctx context.Context) ([]models.GuidelineChunk, error) {
	results, err := s.collection.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get documents from chromadb: %w", err)
	}

	ids := results.GetIDs()
	documents := results.GetDocuments()
	metadatas := results.GetMetadatas()

	chunks := make([]models.GuidelineChunk, 0, len(documents))
	for i := range documents {
		var metadataMap map[string]interface{}
		if len(metadatas) > i && metadatas[i] != nil {
			metadataMap = metadataToMap(metadatas[i])
		}
		chunks = append(chunks, models.GuidelineChunk{
			ID:       string(ids[i]),
			Text:     documents[i].ContentString(),
			Metadata: metadataMap,
		})
	}
	return chunks, nil
}

// Count reports how many chunks are indexed.
func (s *chromaGuidelineStore) Count(ctx context.Context) (int, error) {
	count, err := s.collection.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count items in collection: %w", err)
	}
	return int(count), nil
}

// DeleteBySourceFile removes every chunk indexed from the given file.
func (s *chromaGuidelineStore) DeleteBySourceFile(ctx context.Context, path string) error {
	where := chromago.EqString("source_file", path)
	return s.collection.Delete(ctx, chromago.WithWhereDelete(where))
}

// metadataToMap converts chroma's DocumentMetadata to a plain map. The struct
// has no public accessor for all values, so round-trip through JSON.
func metadataToMap(metadata chromago.DocumentMetadata) map[string]interface{} {
	if metadata == nil {
		return nil
	}
	jsonBytes, err := json.Marshal(metadata)
	if err != nil {
		log.Printf("WARN: could not marshal chunk metadata: %v", err)
		return map[string]interface{}{}
	}
	var metadataMap map[string]interface{}
	if err := json.Unmarshal(jsonBytes, &metadataMap); err != nil {
		log.Printf("WARN: could not unmarshal chunk metadata: %v", err)
		return map[string]interface{}{}
	}
	return metadataMap
}
