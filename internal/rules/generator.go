package rules

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"specdoc/internal/units"
)

// number matches integers and decimals with optional thousands separators.
const number = `\d{1,3}(?:,\d{3})*(?:\.\d+)?|\d+(?:\.\d+)?`

// Generate builds the ranked rule set for a unit registry. Each unit yields
// a regex over its variant spellings; units with provenance are specialized
// into one rule per (unit, spec item) pair, the rest keep a generic
// placeholder. Hand-authored rules win over generated rules with the same
// pattern. The result is sorted by priority descending and is guaranteed to
// compile.
func Generate(reg units.Registry, vocab *units.Vocabulary, hand []Rule) ([]Rule, error) {
	if vocab == nil {
		vocab = units.DefaultVocabulary()
	}

	merged := make([]Rule, 0, len(hand)+len(reg.Units))
	handPatterns := make(map[string]bool, len(hand))
	for _, r := range hand {
		if handPatterns[r.Pattern] {
			continue
		}
		handPatterns[r.Pattern] = true
		if r.Priority == 0 {
			r.Priority = len(r.Pattern)
		}
		merged = append(merged, r)
	}

	// Specialized siblings share a pattern but carry distinct placeholders,
	// so dedupe only suppresses auto rules shadowed by a hand rule.
	seen := make(map[Rule]bool)
	for _, unit := range reg.Units {
		pattern := unitPattern(unit, vocab)
		for _, r := range unitRules(unit, pattern, reg.Sources[unit]) {
			if handPatterns[r.Pattern] || seen[r] {
				continue
			}
			seen[r] = true
			merged = append(merged, r)
		}
	}

	if err := Validate(merged); err != nil {
		return nil, err
	}
	sortRules(merged)
	return merged, nil
}

// GenerateGeneric is the degraded mode used when the unit-provenance
// reference is unavailable: only generic per-unit rules are emitted, so the
// pipeline keeps running without specialization.
func GenerateGeneric(unitList []string, vocab *units.Vocabulary, hand []Rule) ([]Rule, error) {
	reg := units.Registry{Units: unitList, Sources: map[string][]string{}}
	return Generate(reg, vocab, hand)
}

func unitRules(unit, pattern string, specItems []string) []Rule {
	if len(specItems) == 0 {
		return []Rule{{
			Pattern:     pattern,
			Placeholder: fmt.Sprintf("{{%s_value}}", unit),
			Priority:    len(pattern),
			Description: fmt.Sprintf("auto: generic %s value", unit),
		}}
	}
	out := make([]Rule, 0, len(specItems))
	for _, item := range specItems {
		out = append(out, Rule{
			Pattern:     pattern,
			Placeholder: fmt.Sprintf("{{%s}}", item),
			Priority:    len(pattern),
			Description: fmt.Sprintf("auto: %s value for %q", unit, item),
		})
	}
	return out
}

// unitPattern builds the case-insensitive regex for one canonical unit:
// number, optional whitespace, any known variant spelling, and a trailing
// word boundary when the variant ends in a word character. Longer variants
// come first so the alternation prefers "inches" over "in".
func unitPattern(unit string, vocab *units.Vocabulary) string {
	variants := vocab.Variants(unit)
	if len(variants) == 0 {
		variants = []string{unit}
	}
	sorted := append([]string(nil), variants...)
	sort.Slice(sorted, func(i, j int) bool {
		if len(sorted[i]) != len(sorted[j]) {
			return len(sorted[i]) > len(sorted[j])
		}
		return sorted[i] < sorted[j]
	})

	quoted := make([]string, len(sorted))
	for i, v := range sorted {
		quoted[i] = regexp.QuoteMeta(v)
		// A trailing \b only works when the variant ends in a word
		// character; symbol variants like "%" end the match as-is.
		if isWordChar(v[len(v)-1]) {
			quoted[i] += `\b`
		}
	}

	var sb strings.Builder
	sb.WriteString(`(?i)\b(?:`)
	sb.WriteString(number)
	sb.WriteString(`)\s*(?:`)
	sb.WriteString(strings.Join(quoted, "|"))
	sb.WriteString(`)`)
	return sb.String()
}

func isWordChar(b byte) bool {
	return b == '_' ||
		(b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}

// sortRules orders by priority descending, then pattern length descending,
// then pattern and placeholder ascending so equal-priority ordering stays
// reproducible.
func sortRules(rs []Rule) {
	sort.SliceStable(rs, func(i, j int) bool {
		if rs[i].Priority != rs[j].Priority {
			return rs[i].Priority > rs[j].Priority
		}
		if len(rs[i].Pattern) != len(rs[j].Pattern) {
			return len(rs[i].Pattern) > len(rs[j].Pattern)
		}
		if rs[i].Pattern != rs[j].Pattern {
			return rs[i].Pattern < rs[j].Pattern
		}
		return rs[i].Placeholder < rs[j].Placeholder
	})
}
