package ingest

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"strings"

	"specdoc/internal/content"
)

// extractDocx reads word/document.xml from the ZIP archive and streams its
// paragraphs. Paragraphs styled Heading1-6 (or Title/Subtitle) open
// sections; everything else becomes content lines.
func extractDocx(path string) (*content.Document, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("open zip: %w", err)
	}
	defer r.Close()

	var docFile *zip.File
	for _, f := range r.File {
		if f.Name == "word/document.xml" {
			docFile = f
			break
		}
	}
	if docFile == nil {
		return nil, fmt.Errorf("word/document.xml not found in archive")
	}

	rc, err := docFile.Open()
	if err != nil {
		return nil, fmt.Errorf("open document.xml: %w", err)
	}
	defer rc.Close()

	decoder := xml.NewDecoder(rc)
	b := newSectionBuilder()
	var paragraph strings.Builder
	var style string
	inParagraph := false

	for {
		tok, err := decoder.Token()
		if err != nil {
			break
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch {
			case t.Name.Local == "p":
				inParagraph = true
				paragraph.Reset()
				style = ""
			case t.Name.Local == "pStyle" && inParagraph:
				for _, attr := range t.Attr {
					if attr.Name.Local == "val" {
						style = attr.Value
					}
				}
			}
		case xml.CharData:
			if inParagraph {
				paragraph.Write(t)
			}
		case xml.EndElement:
			if t.Name.Local == "p" && inParagraph {
				inParagraph = false
				text := strings.TrimSpace(paragraph.String())
				if text == "" {
					continue
				}
				if level := docxHeadingLevel(style); level > 0 {
					b.heading(text, level)
				} else {
					b.line(text)
				}
			}
		}
	}
	return b.build(), nil
}

// docxHeadingLevel maps a paragraph style name to a heading level,
// e.g. "Heading2" → 2, "Title" → 1. Returns 0 for body paragraphs.
func docxHeadingLevel(style string) int {
	lower := strings.ToLower(style)
	if lower == "title" {
		return 1
	}
	if lower == "subtitle" {
		return 2
	}
	if rest, ok := strings.CutPrefix(lower, "heading"); ok {
		if len(rest) == 1 && rest[0] >= '1' && rest[0] <= '6' {
			return int(rest[0] - '0')
		}
	}
	return 0
}
