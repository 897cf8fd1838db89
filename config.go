package jsonenv

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"

	"dario.cat/mergo"
	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"

	"github.com/Azhovan/jsonenv/tree"
)

// Environment variables consulted by Resolve for fields left unset in Config.
const (
	EnvFolder        = "JSONENVLOADER_CONFIG_FOLDER"
	EnvIncludeFolder = "JSONENVLOADER_CONFIG_INCLUDE_FOLDER"
	EnvExcludeFolder = "JSONENVLOADER_CONFIG_EXCLUDE_FOLDER"
	EnvIncludeEntry  = "JSONENVLOADER_CONFIG_INCLUDE_ENTRY"
	EnvExcludeEntry  = "JSONENVLOADER_CONFIG_EXCLUDE_ENTRY"
	EnvOnDuplicate   = "JSONENVLOADER_CONFIG_ON_DUPLICATE_ENTRY"
	EnvStrict        = "JSONENVLOADER_CONFIG_STRICT"
	EnvFormats       = "JSONENVLOADER_CONFIG_FORMATS"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// envDefaults mirrors Config with the raw environment variable values.
type envDefaults struct {
	Folder        string   `env:"JSONENVLOADER_CONFIG_FOLDER"`
	IncludeFolder string   `env:"JSONENVLOADER_CONFIG_INCLUDE_FOLDER"`
	ExcludeFolder string   `env:"JSONENVLOADER_CONFIG_EXCLUDE_FOLDER"`
	IncludeEntry  string   `env:"JSONENVLOADER_CONFIG_INCLUDE_ENTRY"`
	ExcludeEntry  string   `env:"JSONENVLOADER_CONFIG_EXCLUDE_ENTRY"`
	OnDuplicate   string   `env:"JSONENVLOADER_CONFIG_ON_DUPLICATE_ENTRY"`
	Strict        string   `env:"JSONENVLOADER_CONFIG_STRICT"`
	Formats       []string `env:"JSONENVLOADER_CONFIG_FORMATS" envSeparator:","`
}

// Resolve fills the unset fields of cfg from the environment and applies defaults.
// Values set in cfg always win; Strict is true if either side enables it.
// It fails with ErrMissingFolder when no folder can be found.
func Resolve(cfg Config) (Config, error) {
	var raw envDefaults
	if err := env.Parse(&raw); err != nil {
		return Config{}, fmt.Errorf("jsonenv: read environment defaults: %w", err)
	}

	defaults, err := raw.config()
	if err != nil {
		return Config{}, err
	}

	if err := mergo.Merge(&cfg, defaults, mergo.WithoutDereference); err != nil {
		return Config{}, fmt.Errorf("jsonenv: merge environment defaults: %w", err)
	}

	if cfg.OnDuplicateEntry == "" {
		cfg.OnDuplicateEntry = Ignore
	}
	if len(cfg.Formats) == 0 {
		cfg.Formats = []string{string(tree.JSON)}
	}

	if err := validateConfig(cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// envFlag reports whether a flag variable is enabled. Unset, empty and the
// values strconv.ParseBool reads as false disable it; anything else enables it.
func envFlag(value string) bool {
	if value == "" {
		return false
	}
	if b, err := strconv.ParseBool(value); err == nil {
		return b
	}
	return true
}

func (r envDefaults) config() (Config, error) {
	cfg := Config{
		Folder:           r.Folder,
		OnDuplicateEntry: DuplicatePolicy(r.OnDuplicate),
		Strict:           envFlag(r.Strict),
		Formats:          r.Formats,
	}

	patterns := []struct {
		name   string
		source string
		target **regexp.Regexp
	}{
		{EnvIncludeFolder, r.IncludeFolder, &cfg.IncludeFolder},
		{EnvExcludeFolder, r.ExcludeFolder, &cfg.ExcludeFolder},
		{EnvIncludeEntry, r.IncludeEntry, &cfg.IncludeEntry},
		{EnvExcludeEntry, r.ExcludeEntry, &cfg.ExcludeEntry},
	}
	for _, p := range patterns {
		if p.source == "" {
			continue
		}
		re, err := regexp.Compile(p.source)
		if err != nil {
			return Config{}, fmt.Errorf("%w: %s: %v", ErrInvalidConfig, p.name, err)
		}
		*p.target = re
	}

	return cfg, nil
}

func validateConfig(cfg Config) error {
	if err := validate.Struct(cfg); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			for _, fe := range fieldErrs {
				switch fe.StructField() {
				case "Folder":
					return ErrMissingFolder
				case "OnDuplicateEntry":
					_, perr := ParseDuplicatePolicy(string(cfg.OnDuplicateEntry))
					return perr
				}
			}
		}
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	for _, name := range cfg.Formats {
		if _, err := tree.ParseFormat(name); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
		}
	}

	return nil
}

// formats returns the parsed Formats of a resolved Config.
func (c Config) formats() []tree.Format {
	out := make([]tree.Format, 0, len(c.Formats))
	for _, name := range c.Formats {
		if f, err := tree.ParseFormat(name); err == nil {
			out = append(out, f)
		}
	}
	return out
}

// entryFilter and folderFilter split Config into its two filter pairs.
func (c Config) entryFilter() Filter {
	return Filter{Include: c.IncludeEntry, Exclude: c.ExcludeEntry}
}

func (c Config) folderFilter() Filter {
	return Filter{Include: c.IncludeFolder, Exclude: c.ExcludeFolder}
}
