package jsonenv

import (
	"regexp"

	"github.com/Azhovan/jsonenv/envstore"
	"github.com/Azhovan/jsonenv/internal/normalize"
	"github.com/Azhovan/jsonenv/tree"
)

// Filter is an include/exclude pair. A nil pattern is not applied.
type Filter struct {
	Include *regexp.Regexp
	Exclude *regexp.Regexp
}

// Allows reports whether name matches Include (if set) and does not match Exclude (if set).
func (f Filter) Allows(name string) bool {
	if f.Include != nil && !f.Include.MatchString(name) {
		return false
	}
	if f.Exclude != nil && f.Exclude.MatchString(name) {
		return false
	}
	return true
}

// Flatten turns node into an ordered list of writes without touching any Store.
// Keys are upper(prefix + key); nested nodes are always descended into with
// prefix "<derived key>_", and entries filters only apply to leaf keys as they
// appear at their own level.
func Flatten(node tree.Node, prefix string, entries Filter) []Write {
	return appendWrites(nil, node, prefix, entries)
}

func appendWrites(writes []Write, node tree.Node, prefix string, entries Filter) []Write {
	for _, field := range node {
		key := normalize.EnvKey(prefix, field.Key)

		switch v := field.Value.(type) {
		case tree.Node:
			writes = appendWrites(writes, v, normalize.NestedPrefix(key), entries)
		case tree.Scalar:
			if !entries.Allows(field.Key) {
				continue
			}
			writes = append(writes, Write{Key: key, LocalKey: field.Key, Value: string(v)})
		}
	}
	return writes
}

// Apply performs writes in order against store. A key that is already set is
// skipped (Ignore), replaced (Overwrite) or aborts the whole call with a
// *DuplicateKeyError (Throw). Writes made before an error are not rolled back.
// A key the store refuses (e.g. one containing "=" in the process environment)
// is skipped. It returns the writes that were actually applied.
func Apply(store Store, writes []Write, policy DuplicatePolicy) ([]Write, error) {
	applied, _, err := apply(store, writes, policy)
	return applied, err
}

// rejectedWrite is a write the store refused to Set.
type rejectedWrite struct {
	Write
	err error
}

func apply(store Store, writes []Write, policy DuplicatePolicy) ([]Write, []rejectedWrite, error) {
	applied := make([]Write, 0, len(writes))
	var rejected []rejectedWrite

	for _, w := range writes {
		if store.Has(w.Key) {
			switch policy {
			case Overwrite:
			case Throw:
				return applied, rejected, &DuplicateKeyError{Key: w.Key, LocalKey: w.LocalKey}
			default:
				continue
			}
		}

		if err := store.Set(w.Key, w.Value); err != nil {
			rejected = append(rejected, rejectedWrite{Write: w, err: err})
			continue
		}
		applied = append(applied, w)
	}

	return applied, rejected, nil
}

// Merge flattens node under prefix and applies the result to store.
func Merge(store Store, node tree.Node, prefix string, entries Filter, policy DuplicatePolicy) error {
	_, err := Apply(store, Flatten(node, prefix, entries), policy)
	return err
}

// MergeIntoEnvironment flattens node into the process environment with no entry filters.
// It is the building block for feeding trees from other configuration pipelines.
func MergeIntoEnvironment(node tree.Node, prefix string, policy DuplicatePolicy) error {
	return Merge(envstore.Process(), node, prefix, Filter{}, policy)
}
