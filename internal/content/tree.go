// Package content defines the typed document tree shared by ingestion,
// templating, and rendering.
package content

import (
	"encoding/json"
	"fmt"
	"os"
)

// Section is a structural unit of a document. Content holds the section's
// text lines in document order; Children holds nested subsections.
type Section struct {
	Heading  string    `json:"heading,omitempty"`
	Level    int       `json:"level"`
	Content  []string  `json:"content"`
	Children []Section `json:"children,omitempty"`
}

// Document is the root of a content tree.
type Document struct {
	Title    string    `json:"title"`
	Sections []Section `json:"sections"`
}

// Empty reports whether the document has no title and no sections.
func (d *Document) Empty() bool {
	return d.Title == "" && len(d.Sections) == 0
}

// Walk visits every section depth-first, parents before children.
func (d *Document) Walk(fn func(*Section)) {
	for i := range d.Sections {
		walkSection(&d.Sections[i], fn)
	}
}

func walkSection(s *Section, fn func(*Section)) {
	fn(s)
	for i := range s.Children {
		walkSection(&s.Children[i], fn)
	}
}

// Save writes the document tree as indented JSON.
func (d *Document) Save(path string) error {
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0644)
}

// Load reads a document tree from a JSON file.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read content tree %s: %w", path, err)
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse content tree %s: %w", path, err)
	}
	return &doc, nil
}
