package ingest

import (
	"archive/zip"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeDoc(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestDetect_KnownExtensions(t *testing.T) {
	p := New(Config{})

	cases := map[string]Format{
		"guide.docx":     FormatDocx,
		"guide.html":     FormatHTML,
		"guide.HTM":      FormatHTML,
		"guide.md":       FormatMD,
		"guide.markdown": FormatMD,
		"guide.txt":      FormatTXT,
	}
	for name, want := range cases {
		got, err := p.Detect(name)
		require.NoError(t, err, name)
		assert.Equal(t, want, got, name)
	}
}

func TestDetect_UnsupportedExtension(t *testing.T) {
	p := New(Config{})
	_, err := p.Detect("guide.pdf")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported format")
}

func TestExtract_Markdown(t *testing.T) {
	body := "# PowerEdge R750\n\nIntro line.\n\n## Specifications\n\nDepth: 5 in\nHeight: 3.4 in\n\n```\n# not a heading\n```\n"
	path := writeDoc(t, "guide.md", body)

	doc, err := New(Config{}).Extract(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, "PowerEdge R750", doc.Title)
	require.Len(t, doc.Sections, 2)
	assert.Equal(t, "PowerEdge R750", doc.Sections[0].Heading)
	assert.Equal(t, 1, doc.Sections[0].Level)
	assert.Equal(t, []string{"Intro line."}, doc.Sections[0].Content)
	assert.Equal(t, "Specifications", doc.Sections[1].Heading)
	assert.Equal(t, []string{"Depth: 5 in", "Height: 3.4 in", "# not a heading"}, doc.Sections[1].Content)
}

func TestExtract_PlainText(t *testing.T) {
	path := writeDoc(t, "guide.txt", "Depth: 5 in\n\nHeight: 3.4 in\n")

	doc, err := New(Config{}).Extract(context.Background(), path)
	require.NoError(t, err)

	require.Len(t, doc.Sections, 1)
	assert.Empty(t, doc.Sections[0].Heading)
	assert.Equal(t, []string{"Depth: 5 in", "Height: 3.4 in"}, doc.Sections[0].Content)
}

func TestExtract_HTML(t *testing.T) {
	body := `<html><head><title>R750 Guide</title><style>p{}</style></head>
<body>
<nav><p>skip me</p></nav>
<h1>PowerEdge R750</h1>
<p>Rack server.</p>
<h2>Specifications</h2>
<ul><li>Depth: <b>5 in</b></li><li>Height: 3.4 in</li></ul>
<table><tr><td>Weight</td><td>24.5 lbs</td></tr></table>
<script>var x = 1;</script>
</body></html>`
	path := writeDoc(t, "guide.html", body)

	doc, err := New(Config{}).Extract(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, "R750 Guide", doc.Title)
	require.Len(t, doc.Sections, 2)
	assert.Equal(t, "PowerEdge R750", doc.Sections[0].Heading)
	assert.Equal(t, []string{"Rack server."}, doc.Sections[0].Content)
	assert.Equal(t, "Specifications", doc.Sections[1].Heading)
	assert.Equal(t, []string{"Depth: 5 in", "Height: 3.4 in", "Weight", "24.5 lbs"}, doc.Sections[1].Content)
}

func TestExtract_Docx(t *testing.T) {
	documentXML := `<?xml version="1.0"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
 <w:body>
  <w:p><w:pPr><w:pStyle w:val="Title"/></w:pPr><w:r><w:t>PowerEdge R750</w:t></w:r></w:p>
  <w:p><w:pPr><w:pStyle w:val="Heading2"/></w:pPr><w:r><w:t>Specifications</w:t></w:r></w:p>
  <w:p><w:r><w:t>Depth: </w:t></w:r><w:r><w:t>5 in</w:t></w:r></w:p>
  <w:p><w:r><w:t>   </w:t></w:r></w:p>
 </w:body>
</w:document>`

	path := filepath.Join(t.TempDir(), "guide.docx")
	f, err := os.Create(path)
	require.NoError(t, err)
	zw := zip.NewWriter(f)
	entry, err := zw.Create("word/document.xml")
	require.NoError(t, err)
	_, err = entry.Write([]byte(documentXML))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())

	doc, err := New(Config{}).Extract(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, "PowerEdge R750", doc.Title)
	require.Len(t, doc.Sections, 2)
	assert.Equal(t, "PowerEdge R750", doc.Sections[0].Heading)
	assert.Equal(t, 1, doc.Sections[0].Level)
	assert.Equal(t, "Specifications", doc.Sections[1].Heading)
	assert.Equal(t, 2, doc.Sections[1].Level)
	assert.Equal(t, []string{"Depth: 5 in"}, doc.Sections[1].Content)
}

func TestExtract_DocxMissingDocumentXML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.docx")
	f, err := os.Create(path)
	require.NoError(t, err)
	zw := zip.NewWriter(f)
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())

	_, err = New(Config{}).Extract(context.Background(), path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "word/document.xml")
}

func TestExtract_FileTooLarge(t *testing.T) {
	path := writeDoc(t, "guide.txt", "0123456789")

	_, err := New(Config{MaxFileSize: 5}).Extract(context.Background(), path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "file too large")
}

func TestExtract_CanceledContext(t *testing.T) {
	path := writeDoc(t, "guide.txt", "body")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(Config{}).Extract(ctx, path)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestExtract_MissingFile(t *testing.T) {
	_, err := New(Config{}).Extract(context.Background(), filepath.Join(t.TempDir(), "absent.md"))
	require.Error(t, err)
}

func TestDocxHeadingLevel(t *testing.T) {
	assert.Equal(t, 1, docxHeadingLevel("Title"))
	assert.Equal(t, 2, docxHeadingLevel("Subtitle"))
	assert.Equal(t, 3, docxHeadingLevel("Heading3"))
	assert.Equal(t, 0, docxHeadingLevel("Heading9"))
	assert.Equal(t, 0, docxHeadingLevel("BodyText"))
}
