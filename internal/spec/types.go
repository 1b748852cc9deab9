// Package spec holds the specification item model and the heuristic
// candidate extractor that seeds the pipeline.
package spec

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
)

// Item is a single named specification value with its assigned confidence.
// Confidence is a percentage in [0,100], set once at extraction time.
type Item struct {
	SpecItem   string  `json:"spec_item"`
	Value      string  `json:"value"`
	Confidence float64 `json:"confidence"`
}

// LoadItems reads a JSON array of spec items. Every item must carry a
// non-empty spec_item key; values may be empty (partial data is retained).
func LoadItems(path string) ([]Item, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read spec file %s: %w", path, err)
	}
	var items []Item
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("parse spec file %s: %w", path, err)
	}
	for i, it := range items {
		if strings.TrimSpace(it.SpecItem) == "" {
			return nil, fmt.Errorf("spec file %s: item %d has empty spec_item", path, i)
		}
	}
	return items, nil
}

// SaveItems writes spec items as an indented JSON array.
func SaveItems(path string, items []Item) error {
	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0644)
}

// ByKey indexes items by spec_item name. Later duplicates win.
func ByKey(items []Item) map[string]Item {
	m := make(map[string]Item, len(items))
	for _, it := range items {
		m[it.SpecItem] = it
	}
	return m
}

// Keys returns the sorted spec_item names of a keyed item map.
func Keys(m map[string]Item) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// ConfidenceMap projects items onto their confidence scores.
func ConfidenceMap(items []Item) map[string]float64 {
	m := make(map[string]float64, len(items))
	for _, it := range items {
		m[it.SpecItem] = it.Confidence
	}
	return m
}
