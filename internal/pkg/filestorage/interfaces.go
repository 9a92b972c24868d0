package filestorage

import (
	"mime/multipart"
)

// FileStorage defines the interface for stored-file operations. Callers keep
// only the returned filename reference; the storage owns path layout.
type FileStorage interface {
	// SaveFile persists an uploaded file and returns its stored filename.
	SaveFile(fileHeader *multipart.FileHeader) (string, error)

	// DeleteFile removes a stored file by its filename reference. Deleting
	// a missing file is not an error.
	DeleteFile(filename string) error

	// FullPath returns the filesystem path for a stored filename.
	FullPath(filename string) string

	// Exists reports whether the stored file is present on disk.
	Exists(filename string) bool
}
