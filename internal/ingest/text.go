package ingest

import (
	"os"
	"strings"

	"specdoc/internal/content"
)

// extractText splits a plain text file into lines. Blank lines separate
// paragraphs; every non-blank line becomes one content line.
func extractText(path string) (*content.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	b := newSectionBuilder()
	for _, line := range strings.Split(string(data), "\n") {
		b.line(line)
	}
	return b.build(), nil
}

// extractMarkdown splits a Markdown file on ATX headings. The first heading
// becomes the document title.
func extractMarkdown(path string) (*content.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	b := newSectionBuilder()
	inFence := false
	for _, line := range strings.Split(string(data), "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "```") {
			inFence = !inFence
			continue
		}
		if inFence {
			b.line(line)
			continue
		}
		if strings.HasPrefix(trimmed, "#") {
			level := 0
			for _, ch := range trimmed {
				if ch != '#' {
					break
				}
				level++
			}
			if level > 6 {
				level = 6
			}
			heading := strings.TrimSpace(strings.Trim(trimmed, "#"))
			if heading != "" {
				b.heading(heading, level)
			}
			continue
		}
		b.line(line)
	}
	return b.build(), nil
}
