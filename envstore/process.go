package envstore

import (
	"fmt"
	"os"
	"sort"
	"strings"
)

// ProcessEnv reads and writes the environment of the current process.
// os.Setenv is safe for concurrent use, so ProcessEnv needs no locking of its own.
type ProcessEnv struct{}

// Process returns the store backed by the process environment.
func Process() ProcessEnv {
	return ProcessEnv{}
}

// Get returns the value of key and whether it is set.
func (ProcessEnv) Get(key string) (string, bool) {
	return os.LookupEnv(key)
}

// Has reports whether key is set, including when it is set to an empty value.
func (ProcessEnv) Has(key string) bool {
	_, ok := os.LookupEnv(key)
	return ok
}

// Set assigns value to key.
func (ProcessEnv) Set(key, value string) error {
	if err := os.Setenv(key, value); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

// Keys returns the sorted names of all variables starting with prefix.
// An empty prefix returns every variable.
func (ProcessEnv) Keys(prefix string) []string {
	var keys []string
	for _, env := range os.Environ() {
		parts := strings.SplitN(env, "=", 2)
		if len(parts) != 2 || parts[0] == "" {
			continue
		}
		if strings.HasPrefix(parts[0], prefix) {
			keys = append(keys, parts[0])
		}
	}
	sort.Strings(keys)
	return keys
}
