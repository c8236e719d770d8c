package services

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractTextFromFile(t *testing.T) {
	dir := t.TempDir()

	txtPath := filepath.Join(dir, "application.txt")
	require.NoError(t, os.WriteFile(txtPath, []byte("Applicant has stable income."), 0644))

	mdPath := filepath.Join(dir, "guidelines.md")
	require.NoError(t, os.WriteFile(mdPath, []byte("# Guidelines\nNo prior defaults."), 0644))

	t.Run("txt", func(t *testing.T) {
		text, err := ExtractTextFromFile(txtPath)
		require.NoError(t, err)
		assert.Equal(t, "Applicant has stable income.", text)
	})

	t.Run("md", func(t *testing.T) {
		text, err := ExtractTextFromFile(mdPath)
		require.NoError(t, err)
		assert.Contains(t, text, "No prior defaults.")
	})

	t.Run("unsupported extension", func(t *testing.T) {
		_, err := ExtractTextFromFile(filepath.Join(dir, "application.docx"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unsupported file type")
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := ExtractTextFromFile(filepath.Join(dir, "missing.txt"))
		require.Error(t, err)
	})
}

func TestExtractTextFromUpload(t *testing.T) {
	t.Run("txt", func(t *testing.T) {
		text, err := ExtractTextFromUpload("application.txt", strings.NewReader("Requested amount: $250,000"))
		require.NoError(t, err)
		assert.Equal(t, "Requested amount: $250,000", text)
	})

	t.Run("unsupported extension", func(t *testing.T) {
		_, err := ExtractTextFromUpload("application.xlsx", strings.NewReader("data"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unsupported file type")
	})

	t.Run("corrupt pdf", func(t *testing.T) {
		_, err := ExtractTextFromUpload("application.pdf", strings.NewReader("not a real pdf"))
		require.Error(t, err)
	})
}
