package ingest

import (
	"errors"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// ErrUnsupportedFormat is returned for file extensions with no registered
// extractor. No partial document is ever produced.
var ErrUnsupportedFormat = errors.New("unsupported file format")

// Extractor converts one uploaded file into plain UTF-8 text.
type Extractor func(data []byte) (string, error)

type Registry struct {
	byExt map[string]Extractor
}

func NewRegistry() *Registry {
	r := &Registry{byExt: map[string]Extractor{}}
	r.Register(".txt", extractPlainText)
	r.Register(".pdf", extractPDF)
	r.Register(".docx", extractDocx)
	r.Register(".pptx", extractPptx)
	return r
}

func (r *Registry) Register(ext string, fn Extractor) {
	r.byExt[strings.ToLower(ext)] = fn
}

func (r *Registry) Supported(filename string) bool {
	_, ok := r.byExt[strings.ToLower(filepath.Ext(filename))]
	return ok
}

func (r *Registry) Extract(filename string, data []byte) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	fn, ok := r.byExt[ext]
	if !ok {
		return "", ErrUnsupportedFormat
	}
	return fn(data)
}

func extractPlainText(data []byte) (string, error) {
	if !utf8.Valid(data) {
		return "", errors.New("file is not valid UTF-8 text")
	}
	return string(data), nil
}
