package jsonenv

import "sync"

// Provenance lists the entries a load wrote, in the order they were applied.
type Provenance struct {
	Entries []EntryProvenance
}

// EntryProvenance describes where a written entry came from.
type EntryProvenance struct {
	Key      string // Derived key (e.g., "CONFIG1_CONFIG_1")
	LocalKey string // Key in the source document (e.g., "config_1")
	Value    string
	File     string // Path of the source file
}

// Lookup returns the provenance of the value key ended up with.
// When key was overwritten, the last write wins.
func (p *Provenance) Lookup(key string) (EntryProvenance, bool) {
	if p == nil {
		return EntryProvenance{}, false
	}
	for i := len(p.Entries) - 1; i >= 0; i-- {
		if p.Entries[i].Key == key {
			return p.Entries[i], true
		}
	}
	return EntryProvenance{}, false
}

// recorder collects provenance from concurrently processed files.
type recorder struct {
	mu      sync.Mutex
	entries []EntryProvenance
}

func (r *recorder) record(file string, applied []Write) {
	if len(applied) == 0 {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, w := range applied {
		r.entries = append(r.entries, EntryProvenance{
			Key:      w.Key,
			LocalKey: w.LocalKey,
			Value:    w.Value,
			File:     file,
		})
	}
}

func (r *recorder) provenance() *Provenance {
	r.mu.Lock()
	defer r.mu.Unlock()
	entries := make([]EntryProvenance, len(r.entries))
	copy(entries, r.entries)
	return &Provenance{Entries: entries}
}
