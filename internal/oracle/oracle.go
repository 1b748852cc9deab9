// Package oracle abstracts the external synonym service used to extend the
// unit vocabulary. The core pipeline treats it as a black box behind a
// cache; it is never on the critical path.
package oracle

import (
	"context"
	"sort"
	"strings"
	"sync"
)

// Oracle answers synonym queries for unit and spec-item terms.
type Oracle interface {
	// Synonyms returns alternative spellings for a term, excluding the
	// term itself. An empty slice is a valid answer.
	Synonyms(ctx context.Context, term string) ([]string, error)
}

// Store persists oracle answers between runs.
type Store interface {
	GetSynonyms(term string) ([]string, bool, error)
	PutSynonyms(term string, synonyms []string) error
}

// Cached decorates an Oracle with a persistent store plus an in-process
// memo, so a term is asked at most once per deployment.
type Cached struct {
	inner Oracle
	store Store

	mu   sync.Mutex
	memo map[string][]string
}

// NewCached wraps an oracle with caching. store may be nil, in which case
// only the in-process memo applies.
func NewCached(inner Oracle, store Store) *Cached {
	return &Cached{inner: inner, store: store, memo: make(map[string][]string)}
}

func (c *Cached) Synonyms(ctx context.Context, term string) ([]string, error) {
	key := strings.ToLower(strings.TrimSpace(term))
	if key == "" {
		return nil, nil
	}

	c.mu.Lock()
	if cached, ok := c.memo[key]; ok {
		c.mu.Unlock()
		return cached, nil
	}
	c.mu.Unlock()

	if c.store != nil {
		if cached, ok, err := c.store.GetSynonyms(key); err == nil && ok {
			c.remember(key, cached)
			return cached, nil
		}
	}

	answer, err := c.inner.Synonyms(ctx, term)
	if err != nil {
		return nil, err
	}
	answer = dedupe(answer, key)
	if c.store != nil {
		// Best effort: a cache write failure must not fail the lookup.
		_ = c.store.PutSynonyms(key, answer)
	}
	c.remember(key, answer)
	return answer, nil
}

func (c *Cached) remember(key string, synonyms []string) {
	c.mu.Lock()
	c.memo[key] = synonyms
	c.mu.Unlock()
}

func dedupe(in []string, exclude string) []string {
	seen := map[string]bool{exclude: true}
	out := make([]string, 0, len(in))
	for _, s := range in {
		key := strings.ToLower(strings.TrimSpace(s))
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, strings.TrimSpace(s))
	}
	sort.Strings(out)
	return out
}
