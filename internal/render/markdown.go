// Package render serializes a templated content tree into Markdown.
package render

import (
	"regexp"
	"strings"

	"specdoc/internal/content"
)

var (
	fusedBefore = regexp.MustCompile(`(\w)\{\{`)
	fusedAfter  = regexp.MustCompile(`\}\}(\w)`)
)

// Markdown renders a document tree. The function is pure and deterministic:
// the same tree always yields byte-identical output.
//
// Layout contract:
//   - the title becomes a level-1 heading followed by a blank line, omitted
//     when blank;
//   - section headings render at their level clamped to [1,6]; a section
//     with an empty heading renders content only;
//   - each non-blank content line is its own paragraph; bullet lines
//     ("•" or "-") are normalized to "* ";
//   - placeholders fused to neighboring word characters get a separating
//     space;
//   - non-empty output ends with exactly two trailing newlines, an empty
//     document renders as "".
func Markdown(doc *content.Document) string {
	if doc == nil || doc.Empty() {
		return ""
	}

	var sb strings.Builder
	if strings.TrimSpace(doc.Title) != "" {
		sb.WriteString("# " + strings.TrimSpace(doc.Title) + "\n\n")
	}
	for i := range doc.Sections {
		renderSection(&sb, &doc.Sections[i])
	}

	out := strings.TrimRight(sb.String(), "\n")
	if out == "" {
		return ""
	}
	return out + "\n\n"
}

func renderSection(sb *strings.Builder, s *content.Section) {
	if strings.TrimSpace(s.Heading) != "" {
		level := s.Level
		if level < 1 {
			level = 1
		}
		if level > 6 {
			level = 6
		}
		sb.WriteString(strings.Repeat("#", level) + " " + strings.TrimSpace(s.Heading) + "\n\n")
	}
	for _, line := range s.Content {
		if strings.TrimSpace(line) == "" {
			continue
		}
		sb.WriteString(renderLine(line) + "\n\n")
	}
	for i := range s.Children {
		renderSection(sb, &s.Children[i])
	}
}

func renderLine(line string) string {
	line = strings.TrimSpace(line)
	for _, marker := range []string{"•", "-"} {
		if strings.HasPrefix(line, marker) {
			text := strings.TrimPrefix(line, marker)
			text = strings.TrimPrefix(text, " ")
			line = "* " + text
			break
		}
	}
	return spacePlaceholders(line)
}

// spacePlaceholders keeps {{placeholder}} tokens from visually fusing with
// surrounding words, e.g. "weighs{{Weight}}" → "weighs {{Weight}}".
func spacePlaceholders(line string) string {
	line = fusedBefore.ReplaceAllString(line, "$1 {{")
	line = fusedAfter.ReplaceAllString(line, "}} $1")
	return line
}
