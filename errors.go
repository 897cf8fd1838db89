package jsonenv

import (
	"errors"
	"fmt"

	"github.com/Azhovan/jsonenv/tree"
)

var (
	// ErrMissingFolder is returned when no folder is configured and JSONENVLOADER_CONFIG_FOLDER is empty.
	ErrMissingFolder = errors.New("jsonenv: folder path is required")

	// ErrInvalidConfig is returned for option values that cannot be used (unknown policy or format).
	ErrInvalidConfig = errors.New("jsonenv: invalid configuration")
)

// NotADirectoryError reports that the configured folder is missing or is not a directory.
type NotADirectoryError struct {
	Path string
	Err  error // Underlying stat error, if any
}

func (e *NotADirectoryError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("jsonenv: a path to an existing folder must be configured: %s: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("jsonenv: a path to an existing folder must be configured: %s is not a directory", e.Path)
}

func (e *NotADirectoryError) Unwrap() error {
	return e.Err
}

// InvalidJSONError reports a file that could not be read or decoded into an object in strict mode.
type InvalidJSONError struct {
	Path   string      // Folder joined with the file name
	Format tree.Format // Decoder that was used
	Err    error
}

func (e *InvalidJSONError) Error() string {
	format := e.Format
	if format == "" {
		format = tree.JSON
	}
	return fmt.Sprintf("jsonenv: file %s does not contain valid %s", e.Path, format)
}

func (e *InvalidJSONError) Unwrap() error {
	return e.Err
}

// DuplicateKeyError reports a key that already exists when the policy is Throw.
type DuplicateKeyError struct {
	Key      string // Derived key that collided
	LocalKey string // Key as written in the source document
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("jsonenv: %q is already defined in the environment", e.Key)
}
