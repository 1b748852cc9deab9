// Package template applies ranked regex rules to a content tree, replacing
// literal spec values with {{placeholder}} tokens.
package template

import (
	"fmt"
	"regexp"

	"specdoc/internal/content"
	"specdoc/internal/rules"
)

// pageRef protects page references from substitution. Page numbers look
// exactly like numeric-plus-unit text and must never be templated.
var pageRef = regexp.MustCompile(`(?i)^page \d+( of \d+)?$`)

type compiledRule struct {
	re          *regexp.Regexp
	placeholder string
}

// Applier substitutes rule matches in document trees. Rules are compiled
// once at construction; a malformed pattern is a configuration error
// surfaced here, never inside traversal.
type Applier struct {
	compiled []compiledRule
}

// New compiles a ranked rule set. The slice order is the application order,
// so callers pass rules already sorted by priority descending (the rule
// generator's output contract).
func New(rs []rules.Rule) (*Applier, error) {
	compiled := make([]compiledRule, 0, len(rs))
	for _, r := range rs {
		re, err := regexp.Compile(r.Pattern)
		if err != nil {
			return nil, fmt.Errorf("rule %q: pattern does not compile: %w", r.Pattern, err)
		}
		compiled = append(compiled, compiledRule{re: re, placeholder: r.Placeholder})
	}
	return &Applier{compiled: compiled}, nil
}

// Apply walks the tree depth-first and substitutes rule matches into every
// content line. The document is mutated in place; sections and line counts
// are never changed, only line text. Applying the same rule set twice is a
// no-op because rules match raw values, not {{...}} tokens.
func (a *Applier) Apply(doc *content.Document) {
	doc.Walk(func(s *content.Section) {
		for i, line := range s.Content {
			s.Content[i] = a.applyLine(line)
		}
	})
}

// applyLine runs rules in priority order against one line. Each rule
// replaces all of its remaining literal matches before the next rule runs,
// so once a span has been substituted no lower-priority rule can re-match
// it: the span now holds placeholder text.
func (a *Applier) applyLine(line string) string {
	if pageRef.MatchString(line) {
		return line
	}
	for _, cr := range a.compiled {
		line = cr.re.ReplaceAllString(line, cr.placeholder)
	}
	return line
}
