package ingest

import (
	"archive/zip"
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func zipWith(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range files {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestRegistrySupported(t *testing.T) {
	r := NewRegistry()

	assert.True(t, r.Supported("aantekeningen.txt"))
	assert.True(t, r.Supported("Hoofdstuk.PDF"))
	assert.True(t, r.Supported("verslag.docx"))
	assert.True(t, r.Supported("les.pptx"))
	assert.False(t, r.Supported("plaatje.png"))
	assert.False(t, r.Supported("archief.zip"))
	assert.False(t, r.Supported("zonder-extensie"))
}

func TestExtractUnsupportedFormat(t *testing.T) {
	r := NewRegistry()

	_, err := r.Extract("foto.jpg", []byte{0xFF, 0xD8})

	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestExtractPlainText(t *testing.T) {
	r := NewRegistry()

	out, err := r.Extract("notities.txt", []byte("De Romeinen bouwden wegen."))

	require.NoError(t, err)
	assert.Equal(t, "De Romeinen bouwden wegen.", out)
}

func TestExtractPlainTextRejectsBinary(t *testing.T) {
	r := NewRegistry()

	_, err := r.Extract("kapot.txt", []byte{0xFF, 0xFE, 0x00, 0x81})

	assert.Error(t, err)
}

func TestExtractDocx(t *testing.T) {
	doc := `<?xml version="1.0"?>
<document xmlns:w="ns">
  <body>
    <p><r><t>Eerste alinea.</t></r></p>
    <p><r><t>Tweede</t></r><r><t>alinea.</t></r></p>
  </body>
</document>`
	data := zipWith(t, map[string]string{"word/document.xml": doc})

	r := NewRegistry()
	out, err := r.Extract("verslag.docx", data)

	require.NoError(t, err)
	assert.Contains(t, out, "Eerste alinea.")
	assert.Contains(t, out, "Tweede")
	assert.Contains(t, out, "alinea.")
}

func TestExtractDocxMissingDocumentXML(t *testing.T) {
	data := zipWith(t, map[string]string{"word/other.xml": "<x/>"})

	r := NewRegistry()
	_, err := r.Extract("leeg.docx", data)

	assert.Error(t, err)
}

func TestExtractPptxOrdersSlidesNumerically(t *testing.T) {
	slide := func(text string) string {
		return `<sld><t>` + text + `</t></sld>`
	}
	data := zipWith(t, map[string]string{
		"ppt/slides/slide10.xml": slide("tiende"),
		"ppt/slides/slide2.xml":  slide("tweede"),
		"ppt/slides/slide1.xml":  slide("eerste"),
	})

	r := NewRegistry()
	out, err := r.Extract("les.pptx", data)

	require.NoError(t, err)
	first := bytes.Index([]byte(out), []byte("eerste"))
	second := bytes.Index([]byte(out), []byte("tweede"))
	tenth := bytes.Index([]byte(out), []byte("tiende"))
	assert.True(t, first < second && second < tenth, "slides out of order: %q", out)
}

func TestExtractCorruptZip(t *testing.T) {
	r := NewRegistry()

	_, err := r.Extract("kapot.docx", []byte("geen zip"))
	assert.Error(t, err)

	_, err = r.Extract("kapot.pptx", []byte("geen zip"))
	assert.Error(t, err)
}
