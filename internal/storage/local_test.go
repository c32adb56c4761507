package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUploadKeepsExtensionAndStaysInsideRoot(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	rel, err := store.Upload(strings.NewReader("%PDF-1.4"), "Comprobante.PDF", "proofs")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(rel, "proofs/"))
	assert.Equal(t, ".pdf", filepath.Ext(rel))
	assert.True(t, store.Exists(rel))

	full, err := store.SafeFullPath(rel)
	require.NoError(t, err)
	data, err := os.ReadFile(full)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4", string(data))

	require.NoError(t, store.Delete(rel))
	assert.False(t, store.Exists(rel))
}

func TestUploadFromBytesGeneratesUniqueNames(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	a, err := store.UploadFromBytes([]byte("a"), "statement.pdf", "statements")
	require.NoError(t, err)
	b, err := store.UploadFromBytes([]byte("b"), "statement.pdf", "statements")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestSafeFullPathRejectsTraversal(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	for _, ref := range []string{"", "   ", "../secret.txt", "proofs/../../etc/passwd", "/etc/passwd"} {
		_, err := store.SafeFullPath(ref)
		assert.ErrorIs(t, err, ErrInvalidPath, ref)
	}
}

func TestIsValidContentType(t *testing.T) {
	assert.True(t, IsValidContentType("application/pdf"))
	assert.True(t, IsValidContentType("image/png"))
	assert.False(t, IsValidContentType("text/html"))
}
