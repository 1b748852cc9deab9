package oracle

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeOracle struct {
	answers map[string][]string
	calls   int
	err     error
}

func (f *fakeOracle) Synonyms(ctx context.Context, term string) ([]string, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.answers[term], nil
}

type fakeStore struct {
	data     map[string][]string
	putErr   error
	putCalls int
}

func newFakeStore() *fakeStore {
	return &fakeStore{data: map[string][]string{}}
}

func (f *fakeStore) GetSynonyms(term string) ([]string, bool, error) {
	s, ok := f.data[term]
	return s, ok, nil
}

func (f *fakeStore) PutSynonyms(term string, synonyms []string) error {
	f.putCalls++
	if f.putErr != nil {
		return f.putErr
	}
	f.data[term] = synonyms
	return nil
}

func TestCached_AsksInnerOncePerTerm(t *testing.T) {
	inner := &fakeOracle{answers: map[string][]string{"lb": {"lbs", "pounds"}}}
	c := NewCached(inner, nil)

	first, err := c.Synonyms(context.Background(), "lb")
	require.NoError(t, err)
	second, err := c.Synonyms(context.Background(), "lb")
	require.NoError(t, err)

	assert.Equal(t, []string{"lbs", "pounds"}, first)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, inner.calls)
}

func TestCached_NormalizesTermKey(t *testing.T) {
	inner := &fakeOracle{answers: map[string][]string{"lb": {"lbs"}}}
	c := NewCached(inner, nil)

	_, err := c.Synonyms(context.Background(), "lb")
	require.NoError(t, err)
	_, err = c.Synonyms(context.Background(), "  LB ")
	require.NoError(t, err)

	assert.Equal(t, 1, inner.calls)
}

func TestCached_PersistentStorePreferredOverInner(t *testing.T) {
	store := newFakeStore()
	store.data["kg"] = []string{"kilogram", "kilograms"}
	inner := &fakeOracle{}
	c := NewCached(inner, store)

	got, err := c.Synonyms(context.Background(), "kg")
	require.NoError(t, err)
	assert.Equal(t, []string{"kilogram", "kilograms"}, got)
	assert.Equal(t, 0, inner.calls)
}

func TestCached_WritesAnswerToStore(t *testing.T) {
	store := newFakeStore()
	inner := &fakeOracle{answers: map[string][]string{"W": {"watts", "watt"}}}
	c := NewCached(inner, store)

	_, err := c.Synonyms(context.Background(), "W")
	require.NoError(t, err)
	assert.Equal(t, []string{"watt", "watts"}, store.data["w"])
}

func TestCached_StoreWriteFailureIsNotFatal(t *testing.T) {
	store := newFakeStore()
	store.putErr = errors.New("disk full")
	inner := &fakeOracle{answers: map[string][]string{"in": {"inches"}}}
	c := NewCached(inner, store)

	got, err := c.Synonyms(context.Background(), "in")
	require.NoError(t, err)
	assert.Equal(t, []string{"inches"}, got)
	assert.Equal(t, 1, store.putCalls)
}

func TestCached_DedupesAndExcludesTermItself(t *testing.T) {
	inner := &fakeOracle{answers: map[string][]string{
		"lb": {"lbs", "LB", "pounds", "lbs", "  ", "pound"},
	}}
	c := NewCached(inner, nil)

	got, err := c.Synonyms(context.Background(), "lb")
	require.NoError(t, err)
	assert.Equal(t, []string{"lbs", "pound", "pounds"}, got)
}

func TestCached_EmptyTerm(t *testing.T) {
	inner := &fakeOracle{}
	c := NewCached(inner, nil)

	got, err := c.Synonyms(context.Background(), "   ")
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.Equal(t, 0, inner.calls)
}

func TestCached_InnerErrorPropagatesAndIsNotCached(t *testing.T) {
	inner := &fakeOracle{err: errors.New("quota exceeded")}
	c := NewCached(inner, nil)

	_, err := c.Synonyms(context.Background(), "GHz")
	require.Error(t, err)

	inner.err = nil
	inner.answers = map[string][]string{"GHz": {"gigahertz"}}
	got, err := c.Synonyms(context.Background(), "GHz")
	require.NoError(t, err)
	assert.Equal(t, []string{"gigahertz"}, got)
}
