// Package units builds the canonical measurement-unit vocabulary and the
// unit → spec-item provenance map that drives rule generation.
package units

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"

	"specdoc/internal/spec"
)

// Registry is the persisted unit reference: the distinct canonical units
// seen in a spec collection plus which spec items each unit came from.
// Loaded once per pipeline run and never mutated afterwards.
type Registry struct {
	Units   []string            `json:"units"`
	Sources map[string][]string `json:"unit_sources"`
}

// Vocabulary maps unit variant spellings to one canonical token per unit
// family. It is configuration data: callers may extend it (for example via
// the synonym oracle) before extraction.
type Vocabulary struct {
	canonical map[string]string   // lowercased variant -> canonical token
	variants  map[string][]string // canonical token -> variant spellings, insertion order
}

// NewVocabulary returns an empty vocabulary.
func NewVocabulary() *Vocabulary {
	return &Vocabulary{
		canonical: make(map[string]string),
		variants:  make(map[string][]string),
	}
}

// Add registers variant spellings for a canonical unit token. The canonical
// spelling itself is always registered as a variant.
func (v *Vocabulary) Add(canonical string, variants ...string) {
	all := append([]string{canonical}, variants...)
	for _, variant := range all {
		key := strings.ToLower(variant)
		if _, ok := v.canonical[key]; ok {
			continue
		}
		v.canonical[key] = canonical
		v.variants[canonical] = append(v.variants[canonical], variant)
	}
}

// Normalize maps a token to its canonical unit, reporting whether the token
// is part of the known vocabulary.
func (v *Vocabulary) Normalize(token string) (string, bool) {
	c, ok := v.canonical[strings.ToLower(token)]
	return c, ok
}

// Variants returns the known spellings of a canonical unit.
func (v *Vocabulary) Variants(canonical string) []string {
	return v.variants[canonical]
}

// Canonicals returns all canonical unit tokens, sorted.
func (v *Vocabulary) Canonicals() []string {
	out := make([]string, 0, len(v.variants))
	for c := range v.variants {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// DefaultVocabulary covers the measurement families that occur in hardware
// guides: length, mass, power, temperature, frequency, data rate,
// percentage, and time. Hand-tuned; treat as data to extend, not as an
// exhaustive unit system.
func DefaultVocabulary() *Vocabulary {
	v := NewVocabulary()
	// length
	v.Add("in", "inch", "inches")
	v.Add("cm", "centimeter", "centimeters")
	v.Add("mm", "millimeter", "millimeters")
	v.Add("m", "meter", "meters", "metre", "metres")
	v.Add("ft", "foot", "feet")
	// mass
	v.Add("lb", "lbs", "pound", "pounds")
	v.Add("kg", "kilogram", "kilograms")
	v.Add("g", "gram", "grams")
	v.Add("oz", "ounce", "ounces")
	// power and electrical
	v.Add("W", "watt", "watts")
	v.Add("kW", "kilowatt", "kilowatts")
	v.Add("BTU", "BTUs", "btu/hr")
	v.Add("VA", "volt-ampere", "volt-amperes")
	v.Add("V", "volt", "volts")
	v.Add("A", "amp", "amps", "ampere", "amperes")
	// temperature
	v.Add("°F", "°f", "fahrenheit", "degf")
	v.Add("°C", "°c", "celsius", "degc")
	// frequency
	v.Add("Hz", "hertz")
	v.Add("kHz", "kilohertz")
	v.Add("MHz", "megahertz")
	v.Add("GHz", "gigahertz")
	// data rate
	v.Add("Gbps", "gbit/s", "gb/s")
	v.Add("Mbps", "mbit/s", "mb/s")
	// percentage
	v.Add("%", "percent", "pct")
	// time
	v.Add("s", "sec", "secs", "second", "seconds")
	v.Add("ms", "millisecond", "milliseconds")
	v.Add("min", "mins", "minute", "minutes")
	v.Add("h", "hr", "hrs", "hour", "hours")
	return v
}

// numberAdjacent captures a number followed by its trailing token, e.g.
// "24.5 lbs" or "100%". Thousands separators and decimals are accepted.
var numberAdjacent = regexp.MustCompile(`\d(?:[\d,]*(?:\.\d+)?)\s*([A-Za-z°%][A-Za-z°%/-]*)`)

// conservativeShape is the fallback filter for tokens outside the known
// vocabulary: letters, percent, or degree sign only, at least two runes.
// Everything else adjacent to a number is discarded rather than guessed at.
var conservativeShape = regexp.MustCompile(`^[A-Za-z°%]{2,}$`)

// connectorWords follow numbers in prose without being units ("50 to 95").
var connectorWords = map[string]bool{
	"to": true, "of": true, "by": true, "at": true, "or": true,
	"and": true, "per": true, "for": true, "the": true, "up": true,
}

// Extract scans the values of the given spec items and returns the unit
// registry. Items with empty values are skipped. The result is
// deterministic: units and provenance lists are sorted and duplicate-free.
func Extract(items []spec.Item, vocab *Vocabulary) Registry {
	if vocab == nil {
		vocab = DefaultVocabulary()
	}
	sources := make(map[string]map[string]bool)

	for _, it := range items {
		value := strings.TrimSpace(it.Value)
		if value == "" {
			continue
		}
		for _, m := range numberAdjacent.FindAllStringSubmatch(value, -1) {
			token := strings.Trim(m[1], "/-")
			unit, known := vocab.Normalize(token)
			if !known {
				if !conservativeShape.MatchString(token) || connectorWords[strings.ToLower(token)] {
					continue
				}
				unit = token
			}
			if sources[unit] == nil {
				sources[unit] = make(map[string]bool)
			}
			sources[unit][it.SpecItem] = true
		}
	}

	reg := Registry{Sources: make(map[string][]string, len(sources))}
	for unit, specSet := range sources {
		reg.Units = append(reg.Units, unit)
		names := make([]string, 0, len(specSet))
		for name := range specSet {
			names = append(names, name)
		}
		sort.Strings(names)
		reg.Sources[unit] = names
	}
	sort.Strings(reg.Units)
	return reg
}

// Save writes the registry reference file.
func (r Registry) Save(path string) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0644)
}

// Load reads a registry reference file.
func Load(path string) (Registry, error) {
	var r Registry
	data, err := os.ReadFile(path)
	if err != nil {
		return r, fmt.Errorf("read unit registry %s: %w", path, err)
	}
	if err := json.Unmarshal(data, &r); err != nil {
		return r, fmt.Errorf("parse unit registry %s: %w", path, err)
	}
	if r.Sources == nil {
		r.Sources = make(map[string][]string)
	}
	return r, nil
}
