package jsonenv

import (
	"fmt"
	"regexp"
	"time"
)

// Store is the key/value mapping that flattened entries are written to.
// envstore.Process wraps the process environment; envstore.Map is an in-memory store.
// Implementations used with LoadConcurrent must be safe for concurrent use.
type Store interface {
	// Get returns the value of key and whether it is set.
	Get(key string) (string, bool)

	// Has reports whether key is set.
	Has(key string) bool

	// Set assigns value to key.
	Set(key, value string) error
}

// DuplicatePolicy decides what happens when a derived key already exists in the Store.
type DuplicatePolicy string

// Duplicate policies.
const (
	// Ignore keeps the existing value and skips the write.
	Ignore DuplicatePolicy = "ignore"
	// Overwrite replaces the existing value.
	Overwrite DuplicatePolicy = "overwrite"
	// Throw aborts with a *DuplicateKeyError.
	Throw DuplicatePolicy = "throw"
)

// ParseDuplicatePolicy parses a policy name. The empty string yields Ignore.
func ParseDuplicatePolicy(name string) (DuplicatePolicy, error) {
	switch DuplicatePolicy(name) {
	case "":
		return Ignore, nil
	case Ignore, Overwrite, Throw:
		return DuplicatePolicy(name), nil
	default:
		return "", fmt.Errorf("%w: unknown duplicate policy %q (expected ignore, overwrite or throw)", ErrInvalidConfig, name)
	}
}

// Optional distinguishes "not set" from "zero value".
type Optional[T any] struct {
	Value T
	Set   bool
}

// Some returns an Optional holding v.
func Some[T any](v T) Optional[T] {
	return Optional[T]{Value: v, Set: true}
}

// Get returns the wrapped value and whether it was set.
func (o Optional[T]) Get() (T, bool) {
	return o.Value, o.Set
}

// OrDefault returns the wrapped value or the provided default.
func (o Optional[T]) OrDefault(defaultVal T) T {
	if o.Set {
		return o.Value
	}
	return defaultVal
}

// Config selects the folder to load and how its files are filtered and merged.
// Zero fields fall back to JSONENVLOADER_CONFIG_* environment variables; see Resolve.
type Config struct {
	// Folder is scanned one level deep. Required.
	Folder string `validate:"required"`

	// IncludeFolder, when set, must match a file name for the file to be loaded.
	IncludeFolder *regexp.Regexp
	// ExcludeFolder skips file names it matches.
	ExcludeFolder *regexp.Regexp

	// IncludeEntry, when set, must match a leaf key for it to be written.
	IncludeEntry *regexp.Regexp
	// ExcludeEntry skips leaf keys it matches.
	ExcludeEntry *regexp.Regexp

	// OnDuplicateEntry defaults to Ignore.
	OnDuplicateEntry DuplicatePolicy `validate:"omitempty,oneof=ignore overwrite throw"`

	// Strict makes a file that is not a parseable object fatal instead of contributing nothing.
	Strict bool

	// UseFilePrefix prefixes keys with the upper-cased file base name (default: true).
	UseFilePrefix Optional[bool]

	// Formats enables extra decoders selected by file extension ("yaml", "toml", "dotenv").
	// JSON is always enabled and is used for every other file.
	Formats []string
}

// Write is a single entry produced by Flatten.
type Write struct {
	Key      string // Derived key (e.g., "CONFIG2_LEVEL_2_CONFIG_1")
	LocalKey string // Key at the level it was written (e.g., "config_1")
	Value    string
}

// Reload is emitted by Watch after each successful load.
type Reload struct {
	Version  int64 // Increments on reload (starts at 1)
	LoadedAt time.Time
	Cause    string // What triggered the load (e.g., "initial", "write:config1.json")
}
