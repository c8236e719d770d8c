package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"
	"github.com/tmc/langchaingo/textsplitter"
)

// GuidelineIndexer scans, chunks, and embeds the underwriting guidelines
// directory into the vector store, and keeps the index in sync while the
// server runs.
type GuidelineIndexer struct {
	store        GuidelineStore
	embedder     Embedder
	chunkSize    int
	chunkOverlap int
}

// NewGuidelineIndexer creates a new indexer.
func NewGuidelineIndexer(store GuidelineStore, embedder Embedder, chunkSize, chunkOverlap int) *GuidelineIndexer {
	if chunkSize == 0 {
		chunkSize = 1000
	}
	if chunkOverlap == 0 {
		chunkOverlap = 200
	}
	return &GuidelineIndexer{
		store:        store,
		embedder:     embedder,
		chunkSize:    chunkSize,
		chunkOverlap: chunkOverlap,
	}
}

// IndexState holds the current hash of a file in the index.
type IndexState struct {
	Hash string
}

// WatchDirectory starts a long-running process to watch for file changes in real-time.
func (s *GuidelineIndexer) WatchDirectory(ctx context.Context, dirPath string) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		log.Printf("WATCHER ERROR: Failed to create file watcher: %v", err)
		return
	}
	defer watcher.Close()

	// Goroutine to handle events from the watcher.
	go func() {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if !isSupportedFile(event.Name) {
					continue
				}

				// Many editors perform a "write" by creating a temp file and
				// renaming, which can trigger multiple events. Create and
				// Write are handled the same.
				if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
					log.Printf("WATCHER: File modified/created: %s. Re-indexing...", event.Name)
					hash, err := calculateFileHash(event.Name)
					if err != nil {
						log.Printf("WATCHER WARN: Could not hash file %s: %v", event.Name, err)
						continue
					}
					// Delete old versions before re-indexing
					if err := s.store.DeleteBySourceFile(ctx, event.Name); err != nil {
						log.Printf("WATCHER WARN: Could not delete old records for %s: %v", event.Name, err)
					}
					if err := s.processAndEmbedFile(ctx, event.Name, hash); err != nil {
						log.Printf("WATCHER ERROR: Failed to process file %s: %v", event.Name, err)
					}
				} else if event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
					log.Printf("WATCHER: File removed/renamed: %s. Removing from index...", event.Name)
					if err := s.store.DeleteBySourceFile(ctx, event.Name); err != nil {
						log.Printf("WATCHER ERROR: Failed to delete records for %s: %v", event.Name, err)
					}
				}

			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Printf("WATCHER ERROR: %v", err)
			case <-ctx.Done():
				log.Println("WATCHER: Context cancelled, shutting down watcher.")
				return
			}
		}
	}()

	log.Printf("WATCHER: Watching guidelines directory: %s", dirPath)
	if err := watcher.Add(dirPath); err != nil {
		log.Printf("WATCHER ERROR: Failed to add path to watcher: %v", err)
	}

	// Block until the context is cancelled (server shutdown).
	<-ctx.Done()
}

// ScanAndIndexDirectory syncs the guidelines directory with the vector store.
func (s *GuidelineIndexer) ScanAndIndexDirectory(ctx context.Context, dirPath string) {
	log.Printf("INDEXER: Starting guidelines scan for: %s", dirPath)

	indexedFiles, err := s.getCurrentIndexState(ctx)
	if err != nil {
		log.Printf("INDEXER ERROR: Could not get current index state: %v", err)
		return
	}
	log.Printf("INDEXER: Found %d files currently in the index.", len(indexedFiles))

	localFiles := make(map[string]bool)
	err = filepath.Walk(dirPath, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && isSupportedFile(path) {
			localFiles[path] = true
			hash, err := calculateFileHash(path)
			if err != nil {
				log.Printf("INDEXER WARN: Could not hash file %s: %v", path, err)
				return nil
			}

			if state, ok := indexedFiles[path]; ok {
				if state.Hash == hash {
					return nil // File is unchanged, skip.
				}
				log.Printf("INDEXER: File has changed: %s. Re-indexing...", path)
				if err := s.store.DeleteBySourceFile(ctx, path); err != nil {
					log.Printf("INDEXER ERROR: Failed to delete old version of %s: %v", path, err)
					return nil
				}
			}

			log.Printf("INDEXER: Indexing new/modified file: %s", path)
			if err := s.processAndEmbedFile(ctx, path, hash); err != nil {
				log.Printf("INDEXER ERROR: Failed to process file %s: %v", path, err)
			}
		}
		return nil
	})
	if err != nil {
		log.Printf("INDEXER ERROR: Error walking the path %s: %v", dirPath, err)
	}

	// Handle deletions
	for path := range indexedFiles {
		if !localFiles[path] {
			log.Printf("INDEXER: File deleted: %s. Removing from index...", path)
			if err := s.store.DeleteBySourceFile(ctx, path); err != nil {
				log.Printf("INDEXER ERROR: Failed to delete records for %s: %v", path, err)
			}
		}
	}
	log.Println("INDEXER: Guidelines scan finished.")
}

func (s *GuidelineIndexer) processAndEmbedFile(ctx context.Context, path, hash string) error {
	content, err := ExtractTextFromFile(path)
	if err != nil {
		return err
	}

	splitter := textsplitter.NewRecursiveCharacter(
		textsplitter.WithChunkSize(s.chunkSize),
		textsplitter.WithChunkOverlap(s.chunkOverlap),
	)
	chunks, err := splitter.SplitText(content)
	if err != nil {
		return err
	}
	log.Printf("INDEXER: Split %s into %d chunks.", path, len(chunks))

	for i, chunk := range chunks {
		embedding, err := s.embedder.EmbedText(ctx, chunk)
		if err != nil {
			return fmt.Errorf("could not embed chunk %d of %s: %w", i, path, err)
		}
		id := fmt.Sprintf("%s-chunk%d", uuid.New().String(), i)
		meta := ChunkMetadata{
			Source:     "guidelines",
			SourceFile: path,
			FileHash:   hash,
			ChunkNum:   i,
		}
		if err := s.store.Add(ctx, id, chunk, embedding, meta); err != nil {
			return fmt.Errorf("failed to add chunk %d of %s to the store: %w", i, path, err)
		}
	}
	return nil
}

func (s *GuidelineIndexer) getCurrentIndexState(ctx context.Context) (map[string]IndexState, error) {
	state := make(map[string]IndexState)
	chunks, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, chunk := range chunks {
		path, ok := chunk.Metadata["source_file"].(string)
		if !ok {
			continue
		}
		hash, ok := chunk.Metadata["file_hash"].(string)
		if !ok {
			continue
		}
		if _, exists := state[path]; !exists {
			state[path] = IndexState{Hash: hash}
		}
	}
	return state, nil
}

func isSupportedFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".txt", ".md", ".pdf":
		return true
	default:
		return false
	}
}

func calculateFileHash(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer file.Close()
	hash := sha256.New()
	if _, err := io.Copy(hash, file); err != nil {
		return "", err
	}
	return hex.EncodeToString(hash.Sum(nil)), nil
}
