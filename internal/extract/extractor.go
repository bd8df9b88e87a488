// Package extract provides text extraction from resume and job-description documents.
package extract

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrUnsupported is returned for document formats that cannot be converted to text.
var ErrUnsupported = errors.New("unsupported document format")

// unsupportedExts are binary formats that would produce garbage if read as plain text.
var unsupportedExts = map[string]bool{
	".doc": true, ".xls": true, ".ppt": true, ".pages": true,
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true, ".zip": true,
}

var pdfMagic = []byte("%PDF-")

// Extractor extracts plain text from document files.
type Extractor struct{}

// NewExtractor returns a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract reads the file at path and returns its text content.
// Returns an error if the file cannot be read or the format is unsupported.
func (e *Extractor) Extract(path string) (string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read file: %w", err)
	}
	return e.ExtractBytes(content, ExtForUpload(path, content))
}

// ExtractUpload extracts text from an uploaded file, choosing the format from
// the client-supplied filename and falling back to content sniffing.
func (e *Extractor) ExtractUpload(filename string, content []byte) (string, error) {
	return e.ExtractBytes(content, ExtForUpload(filename, content))
}

// ExtractBytes extracts text from content based on the given extension.
// ext should include the leading dot (e.g. ".pdf").
// For plain text (.txt, .md, .rst and unknown extensions) content is returned UTF-8 validated.
func (e *Extractor) ExtractBytes(content []byte, ext string) (string, error) {
	ext = strings.ToLower(ext)
	if unsupportedExts[ext] {
		return "", fmt.Errorf("%w: %s", ErrUnsupported, ext)
	}
	switch ext {
	case ".pdf":
		return extractPDF(content)
	case ".docx":
		return extractDOCX(content)
	case ".odt", ".rtf":
		return extractWithCat(content, ext)
	case ".xlsx":
		return extractExcel(content)
	default:
		return extractPlain(content)
	}
}

// ExtForUpload returns the lowercased extension of filename. When the name has no
// extension, a PDF signature in content yields ".pdf"; otherwise "" (plain text).
func ExtForUpload(filename string, content []byte) string {
	if ext := strings.ToLower(filepath.Ext(filename)); ext != "" {
		return ext
	}
	if bytes.HasPrefix(content, pdfMagic) {
		return ".pdf"
	}
	return ""
}
