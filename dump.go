package jsonenv

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strconv"
)

const redacted = "***redacted***"

// DumpOption configures dump behavior using the functional options pattern.
type DumpOption func(*dumpConfig)

// dumpConfig holds options for Dump.
type dumpConfig struct {
	withSources bool           // Include the source file of each entry
	asJSON      bool           // Output as JSON instead of dotenv lines
	indent      string         // Indentation for JSON output (default: "  ")
	redact      *regexp.Regexp // Keys whose values are hidden
}

// WithSources includes the source file of each entry in the output.
func WithSources() DumpOption {
	return func(cfg *dumpConfig) {
		cfg.withSources = true
	}
}

// AsJSON outputs entries as a JSON object instead of dotenv lines.
func AsJSON() DumpOption {
	return func(cfg *dumpConfig) {
		cfg.asJSON = true
	}
}

// WithIndent sets the indentation for JSON output.
// Default is two spaces ("  "); an empty string produces compact JSON.
func WithIndent(indent string) DumpOption {
	return func(cfg *dumpConfig) {
		cfg.indent = indent
	}
}

// WithRedact replaces the values of keys matching re with "***redacted***".
func WithRedact(re *regexp.Regexp) DumpOption {
	return func(cfg *dumpConfig) {
		cfg.redact = re
	}
}

// Dump writes the effective entries of prov sorted by key, as dotenv lines by default.
// When a key was written more than once, its last value is shown.
func Dump(w io.Writer, prov *Provenance, opts ...DumpOption) error {
	if prov == nil {
		return errors.New("provenance is nil")
	}

	config := dumpConfig{
		indent: "  ",
	}
	for _, opt := range opts {
		opt(&config)
	}

	entries := effectiveEntries(prov)
	for i := range entries {
		if config.redact != nil && config.redact.MatchString(entries[i].Key) {
			entries[i].Value = redacted
		}
	}

	if config.asJSON {
		return dumpAsJSON(w, entries, config)
	}
	return dumpAsText(w, entries, config)
}

// effectiveEntries keeps the last write of every key, sorted by key.
func effectiveEntries(prov *Provenance) []EntryProvenance {
	latest := make(map[string]EntryProvenance, len(prov.Entries))
	for _, e := range prov.Entries {
		latest[e.Key] = e
	}

	entries := make([]EntryProvenance, 0, len(latest))
	for _, e := range latest {
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Key < entries[j].Key
	})
	return entries
}

// dumpAsText outputs one dotenv line per entry. Values are always double-quoted
// so integer-looking values keep their exact text (e.g. leading zeros).
func dumpAsText(w io.Writer, entries []EntryProvenance, config dumpConfig) error {
	for _, e := range entries {
		line := e.Key + "=" + strconv.Quote(e.Value)
		if config.withSources && e.File != "" {
			line += " # " + e.File
		}
		line += "\n"

		if _, err := io.WriteString(w, line); err != nil {
			return fmt.Errorf("write error: %w", err)
		}
	}

	return nil
}

type jsonEntry struct {
	Value string `json:"value"`
	File  string `json:"file"`
}

// dumpAsJSON outputs a single JSON object keyed by entry name.
func dumpAsJSON(w io.Writer, entries []EntryProvenance, config dumpConfig) error {
	var result any
	if config.withSources {
		withFiles := make(map[string]jsonEntry, len(entries))
		for _, e := range entries {
			withFiles[e.Key] = jsonEntry{Value: e.Value, File: e.File}
		}
		result = withFiles
	} else {
		values := make(map[string]string, len(entries))
		for _, e := range entries {
			values[e.Key] = e.Value
		}
		result = values
	}

	var data []byte
	var err error
	if config.indent != "" {
		data, err = json.MarshalIndent(result, "", config.indent)
	} else {
		data, err = json.Marshal(result)
	}
	if err != nil {
		return fmt.Errorf("json marshal error: %w", err)
	}

	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write error: %w", err)
	}

	// Add newline for better formatting
	if _, err := w.Write([]byte("\n")); err != nil {
		return fmt.Errorf("write error: %w", err)
	}

	return nil
}
