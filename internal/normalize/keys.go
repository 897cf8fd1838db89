package normalize

import (
	"path/filepath"
	"strings"
)

// Separator joins key segments in derived environment variable names.
const Separator = "_"

// EnvKey derives an environment variable name from an accumulated prefix and a local key.
// The result is upper-cased; the prefix is expected to already end with Separator.
// Examples:
//   - EnvKey("CONFIG1_", "config_1") → "CONFIG1_CONFIG_1"
//   - EnvKey("", "entry1") → "ENTRY1"
func EnvKey(prefix, key string) string {
	return strings.ToUpper(prefix + key)
}

// NestedPrefix returns the prefix used for the children of a nested mapping.
// Examples:
//   - NestedPrefix("CONFIG2_LEVEL_2") → "CONFIG2_LEVEL_2_"
func NestedPrefix(derivedKey string) string {
	return derivedKey + Separator
}

// FilePrefix derives the per-file key prefix from a file name: the base name
// without its extension, upper-cased, followed by Separator.
// Examples:
//   - "config1.json" → "CONFIG1_"
//   - "/etc/app/db.prod.json" → "DB.PROD_"
//   - "settings" → "SETTINGS_"
func FilePrefix(name string) string {
	base := filepath.Base(name)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return strings.ToUpper(base) + Separator
}
