package pdftext

import (
	"bytes"
	"os"

	"github.com/ledongthuc/pdf"

	"github.com/fasbit/thesisvault/internal/pkg/logger"
)

// Extract reads the plain text of a PDF file for search indexing. It is
// best-effort: any read or parse failure (including a panic inside the
// parser on malformed input) yields an empty string, never an error, so an
// unreadable PDF cannot fail the surrounding upload.
func Extract(path string) (text string) {
	defer func() {
		if r := recover(); r != nil {
			logger.Warn().Str("path", path).Interface("panic", r).Msg("PDF text extraction panicked, storing empty text")
			text = ""
		}
	}()

	f, err := os.Open(path)
	if err != nil {
		logger.Warn().Err(err).Str("path", path).Msg("Failed to open PDF for text extraction")
		return ""
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		logger.Warn().Err(err).Str("path", path).Msg("Failed to stat PDF for text extraction")
		return ""
	}

	reader, err := pdf.NewReader(f, info.Size())
	if err != nil {
		logger.Warn().Err(err).Str("path", path).Msg("Failed to parse PDF, storing empty text")
		return ""
	}

	var buf bytes.Buffer
	plain, err := reader.GetPlainText()
	if err != nil {
		logger.Warn().Err(err).Str("path", path).Msg("Failed to extract PDF text, storing empty text")
		return ""
	}
	if _, err := buf.ReadFrom(plain); err != nil {
		logger.Warn().Err(err).Str("path", path).Msg("Failed to read PDF text stream, storing empty text")
		return ""
	}

	return buf.String()
}
