package services

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsSupportedFile(t *testing.T) {
	tests := []struct {
		path     string
		expected bool
	}{
		{"guidelines.txt", true},
		{"policy.md", true},
		{"manual.PDF", true},
		{"notes.docx", false},
		{"archive.tar.gz", false},
		{"noextension", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.expected, isSupportedFile(tt.path))
		})
	}
}

func TestCalculateFileHash(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "guidelines.txt")
	require.NoError(t, os.WriteFile(path, []byte("minimum credit score is 640"), 0644))

	first, err := calculateFileHash(path)
	require.NoError(t, err)
	second, err := calculateFileHash(path)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	require.NoError(t, os.WriteFile(path, []byte("minimum credit score is 680"), 0644))
	changed, err := calculateFileHash(path)
	require.NoError(t, err)
	assert.NotEqual(t, first, changed)
}

func TestScanAndIndexDirectory(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "guidelines.txt"),
		[]byte("Applicants must show two years of stable income."), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ignored.docx"),
		[]byte("should not be indexed"), 0644))

	store := &fakeStore{}
	embedder := &fakeEmbedder{}
	indexer := NewGuidelineIndexer(store, embedder, 1000, 200)

	indexer.ScanAndIndexDirectory(context.Background(), dir)

	require.NotEmpty(t, store.added)
	chunk := store.added[0]
	assert.Equal(t, "guidelines", chunk.Metadata["source"])
	assert.Equal(t, filepath.Join(dir, "guidelines.txt"), chunk.Metadata["source_file"])
	assert.NotEmpty(t, chunk.Metadata["file_hash"])
	assert.Contains(t, chunk.Text, "stable income")
	assert.Equal(t, len(store.added), embedder.calls)
}

func TestScanSkipsUnchangedFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "guidelines.txt"),
		[]byte("Prior defaults within five years require manual review."), 0644))

	store := &fakeStore{}
	embedder := &fakeEmbedder{}
	indexer := NewGuidelineIndexer(store, embedder, 1000, 200)

	indexer.ScanAndIndexDirectory(context.Background(), dir)
	indexedOnce := len(store.added)
	callsAfterFirst := embedder.calls

	// Second scan over an unchanged directory must be a no-op.
	indexer.ScanAndIndexDirectory(context.Background(), dir)
	assert.Equal(t, indexedOnce, len(store.added))
	assert.Equal(t, callsAfterFirst, embedder.calls)
}

func TestScanRemovesDeletedFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "guidelines.txt")
	require.NoError(t, os.WriteFile(path, []byte("Debt-to-income ratio above 43% is a rejection criterion."), 0644))

	store := &fakeStore{}
	indexer := NewGuidelineIndexer(store, &fakeEmbedder{}, 1000, 200)

	indexer.ScanAndIndexDirectory(context.Background(), dir)
	require.NotEmpty(t, store.added)

	require.NoError(t, os.Remove(path))
	indexer.ScanAndIndexDirectory(context.Background(), dir)

	assert.Empty(t, store.added)
	assert.Contains(t, store.deletedFiles, path)
}
