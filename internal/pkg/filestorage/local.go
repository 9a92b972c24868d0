package filestorage

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"regexp"

	"github.com/google/uuid"

	"github.com/fasbit/thesisvault/internal/pkg/logger"
)

var unsafeFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9._-]`)

// LocalStorage saves uploaded files on the local filesystem under one base
// directory, with a uuid prefix to prevent collisions.
type LocalStorage struct {
	basePath string
}

// NewLocalStorage creates a LocalStorage rooted at basePath, creating the
// directory if needed.
func NewLocalStorage(basePath string) (*LocalStorage, error) {
	if err := os.MkdirAll(basePath, os.ModePerm); err != nil {
		logger.Error().Err(err).Str("path", basePath).Msg("Failed to create storage directory")
		return nil, fmt.Errorf("failed to create storage directory %s: %w", basePath, err)
	}
	logger.Info().Str("path", basePath).Msg("Local storage directory ensured")

	return &LocalStorage{basePath: basePath}, nil
}

// SaveFile persists an uploaded file and returns the stored filename.
func (ls *LocalStorage) SaveFile(fileHeader *multipart.FileHeader) (string, error) {
	if fileHeader == nil {
		return "", nil // No file uploaded
	}

	file, err := fileHeader.Open()
	if err != nil {
		logger.Error().Err(err).Str("filename", fileHeader.Filename).Msg("Failed to open uploaded file")
		return "", fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer file.Close()

	safe := unsafeFilenameChars.ReplaceAllString(filepath.Base(fileHeader.Filename), "_")
	storedName := uuid.New().String() + "-" + safe
	dstPath := filepath.Join(ls.basePath, storedName)

	dst, err := os.Create(dstPath)
	if err != nil {
		logger.Error().Err(err).Str("path", dstPath).Msg("Failed to create destination file")
		return "", fmt.Errorf("failed to create destination file: %w", err)
	}
	defer dst.Close()

	if _, err = io.Copy(dst, file); err != nil {
		logger.Error().Err(err).Str("path", dstPath).Msg("Failed to copy uploaded file content")
		// Attempt to remove the partially created file
		_ = os.Remove(dstPath)
		return "", fmt.Errorf("failed to save file content: %w", err)
	}

	logger.Info().Str("filename", fileHeader.Filename).Str("saved_as", storedName).Msg("File saved successfully")
	return storedName, nil
}

// DeleteFile removes a stored file. Returns nil if deletion succeeds or the
// file is already gone (idempotent).
func (ls *LocalStorage) DeleteFile(filename string) error {
	if filename == "" {
		return nil // Nothing to delete
	}

	// Filenames are stored without directory components; refuse anything else.
	base := filepath.Base(filename)
	if base == "" || base == "." || base == "/" {
		return fmt.Errorf("invalid file reference: %s", filename)
	}

	physicalPath := filepath.Join(ls.basePath, base)

	if _, err := os.Stat(physicalPath); os.IsNotExist(err) {
		logger.Warn().Str("path", physicalPath).Msg("File to delete does not exist")
		return nil
	}

	if err := os.Remove(physicalPath); err != nil {
		logger.Error().Err(err).Str("path", physicalPath).Msg("Failed to delete file")
		return fmt.Errorf("failed to delete file: %w", err)
	}

	logger.Info().Str("path", physicalPath).Msg("File deleted successfully")
	return nil
}

// FullPath returns the filesystem path for a stored filename.
func (ls *LocalStorage) FullPath(filename string) string {
	base := filepath.Base(filename)
	if base == "" || base == "." || base == "/" {
		return ""
	}
	return filepath.Join(ls.basePath, base)
}

// Exists reports whether the stored file is present on disk.
func (ls *LocalStorage) Exists(filename string) bool {
	if filename == "" {
		return false
	}
	_, err := os.Stat(ls.FullPath(filename))
	return err == nil
}
