package ingest

import (
	"fmt"
	"strings"

	"github.com/gen2brain/go-fitz"
)

func extractPDF(data []byte) (string, error) {
	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return "", fmt.Errorf("failed to open PDF: %w", err)
	}
	defer doc.Close()

	var pages []string
	for i := 0; i < doc.NumPage(); i++ {
		text, err := doc.Text(i)
		if err == nil && strings.TrimSpace(text) != "" {
			pages = append(pages, text)
		}
	}

	return strings.Join(pages, "\n\n"), nil
}
