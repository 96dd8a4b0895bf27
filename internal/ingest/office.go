package ingest

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
)

// docx and pptx are zip containers around OOXML; the visible text lives in
// <w:t> runs (documents) and <a:t> runs (slides).

func extractDocx(data []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to open docx: %w", err)
	}

	for _, f := range zr.File {
		if f.Name != "word/document.xml" {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return "", err
		}
		defer rc.Close()
		return collectRuns(rc, "p")
	}
	return "", fmt.Errorf("docx has no word/document.xml")
}

func extractPptx(data []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to open pptx: %w", err)
	}

	var slides []*zip.File
	for _, f := range zr.File {
		if strings.HasPrefix(f.Name, "ppt/slides/slide") && strings.HasSuffix(f.Name, ".xml") {
			slides = append(slides, f)
		}
	}
	sort.Slice(slides, func(i, j int) bool {
		return slideNumber(slides[i].Name) < slideNumber(slides[j].Name)
	})

	var b strings.Builder
	for _, f := range slides {
		rc, err := f.Open()
		if err != nil {
			return "", err
		}
		text, err := collectRuns(rc, "")
		rc.Close()
		if err != nil {
			return "", err
		}
		b.WriteString(text)
		b.WriteString("\n")
	}
	return b.String(), nil
}

func slideNumber(name string) int {
	s := strings.TrimSuffix(strings.TrimPrefix(name, "ppt/slides/slide"), ".xml")
	n, _ := strconv.Atoi(s)
	return n
}

// collectRuns gathers the character data of every <t> element; closing the
// paragraphElem (when non-empty) emits a newline.
func collectRuns(r io.Reader, paragraphElem string) (string, error) {
	dec := xml.NewDecoder(r)
	var b strings.Builder
	inRun := false

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("malformed document xml: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "t" {
				inRun = true
			}
		case xml.EndElement:
			if t.Name.Local == "t" {
				inRun = false
				b.WriteString(" ")
			}
			if paragraphElem != "" && t.Name.Local == paragraphElem {
				b.WriteString("\n")
			}
		case xml.CharData:
			if inRun {
				b.Write(t)
			}
		}
	}
	return b.String(), nil
}
