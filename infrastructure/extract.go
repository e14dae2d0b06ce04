package infrastructure

import (
	"fmt"
	"strings"

	"cv-checker/domain"
	"cv-checker/usecase"
)

// Extractor converts one document format to plain text.
type Extractor interface {
	Extract(data []byte) (string, error)
}

// TextExtractor resolves an upload and dispatches it to the backend
// registered for its declared type. It implements
// usecase.TextExtractor and has no side effects on process records.
type TextExtractor struct {
	files    usecase.FileStore
	backends map[string]Extractor
}

func NewTextExtractor(files usecase.FileStore) *TextExtractor {
	word := wordExtractor{}
	return &TextExtractor{
		files: files,
		backends: map[string]Extractor{
			domain.FileTypePDF:  pdfExtractor{},
			domain.FileTypeDOC:  word,
			domain.FileTypeDOCX: word,
			domain.FileTypeTXT:  plainTextExtractor{},
		},
	}
}

// Extract rejects unknown declared types and missing files, then runs
// the format backend. Backend failures come back as extraction
// failures, never as panics.
func (t *TextExtractor) Extract(fileName, declaredType string) (string, error) {
	backend, ok := t.backends[strings.ToLower(declaredType)]
	if !ok {
		return "", usecase.NewValidationError("file type is not pdf, txt, doc, or docx")
	}

	if !t.files.Exists(fileName) {
		return "", fmt.Errorf("file %q: %w", fileName, usecase.ErrNotFound)
	}

	data, err := t.files.Read(fileName)
	if err != nil {
		return "", &usecase.ExtractionError{Err: err}
	}

	text, err := backend.Extract(data)
	if err != nil {
		return "", &usecase.ExtractionError{Err: err}
	}
	return text, nil
}
