package ingest

import (
	"bytes"
	"os"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"specdoc/internal/content"
)

var skipElements = map[atom.Atom]bool{
	atom.Script:   true,
	atom.Style:    true,
	atom.Noscript: true,
	atom.Head:     true,
	atom.Nav:      true,
	atom.Footer:   true,
}

// extractHTML walks the parsed HTML tree: h1-h6 elements open sections,
// block-level text becomes content lines. The <title> element (or the
// first heading) becomes the document title.
func extractHTML(path string) (*content.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	root, err := html.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	b := newSectionBuilder()
	walkHTML(root, b)
	doc := b.build()
	if title := findTitle(root); title != "" {
		doc.Title = title
	}
	return doc, nil
}

func walkHTML(n *html.Node, b *sectionBuilder) {
	if n.Type == html.ElementNode {
		if skipElements[n.DataAtom] {
			return
		}
		if level := headingLevel(n.DataAtom); level > 0 {
			if text := nodeText(n); text != "" {
				b.heading(text, level)
			}
			return
		}
		switch n.DataAtom {
		case atom.P, atom.Li, atom.Td, atom.Th, atom.Dt, atom.Dd, atom.Caption:
			if text := nodeText(n); text != "" {
				b.line(text)
			}
			return
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walkHTML(c, b)
	}
}

func headingLevel(a atom.Atom) int {
	switch a {
	case atom.H1:
		return 1
	case atom.H2:
		return 2
	case atom.H3:
		return 3
	case atom.H4:
		return 4
	case atom.H5:
		return 5
	case atom.H6:
		return 6
	}
	return 0
}

// nodeText collapses the text content of a node into one whitespace-normal
// line.
func nodeText(n *html.Node) string {
	var sb strings.Builder
	var visit func(*html.Node)
	visit = func(node *html.Node) {
		if node.Type == html.TextNode {
			sb.WriteString(node.Data)
			sb.WriteByte(' ')
			return
		}
		if node.Type == html.ElementNode && skipElements[node.DataAtom] {
			return
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			visit(c)
		}
	}
	visit(n)
	return strings.Join(strings.Fields(sb.String()), " ")
}

func findTitle(n *html.Node) string {
	if n.Type == html.ElementNode && n.DataAtom == atom.Title {
		return nodeText(n)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if t := findTitle(c); t != "" {
			return t
		}
	}
	return ""
}
