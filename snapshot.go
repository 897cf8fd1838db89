package jsonenv

import (
	"bytes"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// MaxSnapshotSize is the maximum allowed snapshot size (100MB).
const MaxSnapshotSize = 100 * 1024 * 1024

// ErrSnapshotTooLarge is returned when a rendered snapshot exceeds MaxSnapshotSize.
var ErrSnapshotTooLarge = errors.New("jsonenv: snapshot exceeds 100MB size limit")

// ExpandPath replaces every {{timestamp}} in template with t formatted as 20060102-150405 (UTC).
func ExpandPath(template string, t time.Time) string {
	timestamp := t.UTC().Format("20060102-150405")
	return strings.ReplaceAll(template, "{{timestamp}}", timestamp)
}

// WriteSnapshot renders prov with Dump and writes it to pathTemplate atomically.
// {{timestamp}} in the path is expanded with the current time. Parent directories
// are created with 0700 and the file is written with 0600, since loaded entries
// often hold credentials. It returns the path that was written.
func WriteSnapshot(prov *Provenance, pathTemplate string, opts ...DumpOption) (string, error) {
	var buf bytes.Buffer
	if err := Dump(&buf, prov, opts...); err != nil {
		return "", err
	}
	if buf.Len() > MaxSnapshotSize {
		return "", ErrSnapshotTooLarge
	}

	targetPath := ExpandPath(pathTemplate, time.Now())

	dir := filepath.Dir(targetPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return "", err
		}
	}

	tempPath, err := tempFileName(targetPath)
	if err != nil {
		return "", err
	}

	var tempFileCreated bool
	defer func() {
		if tempFileCreated {
			_ = os.Remove(tempPath)
		}
	}()

	if err := os.WriteFile(tempPath, buf.Bytes(), 0o600); err != nil {
		return "", err
	}
	tempFileCreated = true

	// WriteFile leaves the mode of an existing file alone
	if err := os.Chmod(tempPath, 0o600); err != nil {
		return "", err
	}

	if err := os.Rename(tempPath, targetPath); err != nil {
		return "", err
	}
	tempFileCreated = false

	return targetPath, nil
}

// tempFileName returns targetPath + ".tmp." + 16 random hex characters.
// The temp file lives next to the target so the rename stays on one file system.
func tempFileName(targetPath string) (string, error) {
	randomBytes := make([]byte, 8)
	if _, err := rand.Read(randomBytes); err != nil {
		return "", err
	}
	return targetPath + ".tmp." + hex.EncodeToString(randomBytes), nil
}
