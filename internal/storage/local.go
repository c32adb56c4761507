package storage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrInvalidPath is returned for references that escape the storage root
var ErrInvalidPath = errors.New("ruta de archivo inválida")

// LocalStorage keeps payment proofs and generated documents on the local filesystem.
// Callers only ever see the relative path it returns.
type LocalStorage struct {
	basePath string
}

// NewLocalStorage creates a new local storage instance
func NewLocalStorage(basePath string) (*LocalStorage, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	abs, err := filepath.Abs(basePath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve storage directory: %w", err)
	}
	return &LocalStorage{basePath: abs}, nil
}

// Upload saves the stream under subDir/YYYY/MM and returns its relative path
func (s *LocalStorage) Upload(src io.Reader, filename, subDir string) (string, error) {
	filePath, err := s.newPath(filename, subDir)
	if err != nil {
		return "", err
	}

	dst, err := os.Create(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		os.Remove(filePath)
		return "", fmt.Errorf("failed to save file: %w", err)
	}

	return s.relative(filePath)
}

// UploadFromBytes saves bytes to a file and returns its relative path
func (s *LocalStorage) UploadFromBytes(data []byte, filename, subDir string) (string, error) {
	filePath, err := s.newPath(filename, subDir)
	if err != nil {
		return "", err
	}

	if err := os.WriteFile(filePath, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write file: %w", err)
	}

	return s.relative(filePath)
}

// Delete removes a file
func (s *LocalStorage) Delete(relativePath string) error {
	filePath, err := s.SafeFullPath(relativePath)
	if err != nil {
		return err
	}
	return os.Remove(filePath)
}

// Exists checks if a file exists
func (s *LocalStorage) Exists(relativePath string) bool {
	filePath, err := s.SafeFullPath(relativePath)
	if err != nil {
		return false
	}
	_, err = os.Stat(filePath)
	return err == nil
}

// SafeFullPath resolves a stored reference to an absolute path inside the storage root
func (s *LocalStorage) SafeFullPath(relativePath string) (string, error) {
	if strings.TrimSpace(relativePath) == "" || filepath.IsAbs(relativePath) {
		return "", ErrInvalidPath
	}
	full := filepath.Join(s.basePath, relativePath)
	if full != s.basePath && !strings.HasPrefix(full, s.basePath+string(os.PathSeparator)) {
		return "", ErrInvalidPath
	}
	return full, nil
}

func (s *LocalStorage) newPath(filename, subDir string) (string, error) {
	dir := filepath.Join(s.basePath, subDir, time.Now().Format("2006/01"))
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}
	ext := strings.ToLower(filepath.Ext(filename))
	return filepath.Join(dir, uuid.NewString()+ext), nil
}

func (s *LocalStorage) relative(filePath string) (string, error) {
	rel, err := filepath.Rel(s.basePath, filePath)
	if err != nil {
		return "", err
	}
	return filepath.ToSlash(rel), nil
}

// ValidContentTypes returns allowed MIME types for proof uploads
func ValidContentTypes() map[string]bool {
	return map[string]bool{
		"application/pdf": true,
		"image/jpeg":      true,
		"image/jpg":       true,
		"image/png":       true,
	}
}

// MaxFileSize returns the maximum allowed file size (10MB)
func MaxFileSize() int64 {
	return 10 * 1024 * 1024
}

// IsValidContentType checks if the content type is allowed
func IsValidContentType(contentType string) bool {
	return ValidContentTypes()[contentType]
}
