package normalize

import (
	"testing"
)

func TestEnvKey(t *testing.T) {
	tests := []struct {
		name     string
		prefix   string
		key      string
		expected string
	}{
		{
			name:     "file prefix and lowercase key",
			prefix:   "CONFIG1_",
			key:      "config_1",
			expected: "CONFIG1_CONFIG_1",
		},
		{
			name:     "no prefix",
			prefix:   "",
			key:      "entry1",
			expected: "ENTRY1",
		},
		{
			name:     "already uppercase",
			prefix:   "APP_",
			key:      "HOST",
			expected: "APP_HOST",
		},
		{
			name:     "mixed case prefix is upper-cased too",
			prefix:   "app_",
			key:      "Port",
			expected: "APP_PORT",
		},
		{
			name:     "empty key",
			prefix:   "APP_",
			key:      "",
			expected: "APP_",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := EnvKey(tt.prefix, tt.key)
			if result != tt.expected {
				t.Errorf("EnvKey(%q, %q) = %q, want %q", tt.prefix, tt.key, result, tt.expected)
			}
		})
	}
}

func TestNestedPrefix(t *testing.T) {
	if got := NestedPrefix("CONFIG2_LEVEL_2"); got != "CONFIG2_LEVEL_2_" {
		t.Errorf("NestedPrefix() = %q, want %q", got, "CONFIG2_LEVEL_2_")
	}
	if got := NestedPrefix(""); got != "_" {
		t.Errorf("NestedPrefix(\"\") = %q, want %q", got, "_")
	}
}

func TestFilePrefix(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{input: "config1.json", expected: "CONFIG1_"},
		{input: "/etc/app/config2.json", expected: "CONFIG2_"},
		{input: "db.prod.json", expected: "DB.PROD_"},
		{input: "settings", expected: "SETTINGS_"},
		{input: "Mixed-Case.yaml", expected: "MIXED-CASE_"},
		{input: ".hidden", expected: "_"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result := FilePrefix(tt.input)
			if result != tt.expected {
				t.Errorf("FilePrefix(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}
