package envstore

import (
	"os"
	"testing"
)

func TestProcessEnv_GetSetHas(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{
			name:  "simple value",
			key:   "JSONENV_TEST_HOST",
			value: "localhost",
		},
		{
			name:  "empty value is still set",
			key:   "JSONENV_TEST_EMPTY",
			value: "",
		},
		{
			name:  "value with separators",
			key:   "JSONENV_TEST_DSN",
			value: "postgres://user:pass@db:5432/app?sslmode=disable",
		},
	}

	store := Process()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Unsetenv(tt.key)
			defer os.Unsetenv(tt.key)

			if store.Has(tt.key) {
				t.Fatalf("Has(%q) = true before Set", tt.key)
			}

			if err := store.Set(tt.key, tt.value); err != nil {
				t.Fatalf("Set() error = %v", err)
			}

			if !store.Has(tt.key) {
				t.Errorf("Has(%q) = false after Set", tt.key)
			}

			got, ok := store.Get(tt.key)
			if !ok {
				t.Fatalf("Get(%q) reported unset", tt.key)
			}
			if got != tt.value {
				t.Errorf("Get(%q) = %q, want %q", tt.key, got, tt.value)
			}

			if os.Getenv(tt.key) != tt.value {
				t.Errorf("os.Getenv(%q) = %q, want %q", tt.key, os.Getenv(tt.key), tt.value)
			}
		})
	}
}

func TestProcessEnv_SetInvalidKey(t *testing.T) {
	if err := Process().Set("", "value"); err == nil {
		t.Error("Set() with empty key should fail")
	}
}

func TestProcessEnv_Keys(t *testing.T) {
	t.Setenv("JSONENVKEYS_B", "2")
	t.Setenv("JSONENVKEYS_A", "1")
	t.Setenv("OTHER_JSONENVKEYS", "x")

	keys := Process().Keys("JSONENVKEYS_")
	if len(keys) != 2 {
		t.Fatalf("Keys() = %v, want 2 keys", keys)
	}
	if keys[0] != "JSONENVKEYS_A" || keys[1] != "JSONENVKEYS_B" {
		t.Errorf("Keys() = %v, want sorted [JSONENVKEYS_A JSONENVKEYS_B]", keys)
	}
}
