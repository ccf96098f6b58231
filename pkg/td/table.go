package td

import (
	"maps"
	"slices"
)

// DefaultValue is the estimate given to a state the first time it is read.
const DefaultValue = 0.5

// ValueTable maps board keys to estimated win probabilities.
// Entries are only ever created by GetOrInit and are never removed.
type ValueTable struct {
	values map[string]float64
}

func NewValueTable() *ValueTable {
	return &ValueTable{
		values: make(map[string]float64),
	}
}

// GetOrInit returns the stored estimate for key, inserting DefaultValue first if absent.
func (t *ValueTable) GetOrInit(key string) float64 {
	v, ok := t.values[key]
	if !ok {
		v = DefaultValue
		t.values[key] = v
	}

	return v
}

func (t *ValueTable) Set(key string, value float64) {
	t.values[key] = value
}

// Lookup reads an estimate without inserting it.
func (t *ValueTable) Lookup(key string) (float64, bool) {
	v, ok := t.values[key]
	return v, ok
}

func (t *ValueTable) Len() int {
	return len(t.values)
}

type Entry struct {
	Key   string
	Value float64
}

// Snapshot copies the table sorted by key.
func (t *ValueTable) Snapshot() []Entry {
	keys := slices.Sorted(maps.Keys(t.values))
	entries := make([]Entry, 0, len(keys))
	for _, k := range keys {
		entries = append(entries, Entry{Key: k, Value: t.values[k]})
	}

	return entries
}
