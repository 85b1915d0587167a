// Package utils provides utility functions for the backup sweeper.
package utils

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
)

// DefaultSuffixMarker identifies compressed database snapshots.
const DefaultSuffixMarker = ".sql.gz"

// timestampLayout is the embedded timestamp, e.g. 2024-03-01T02_15.
// Underscores replace colons for filesystem compatibility.
const timestampLayout = "2006-01-02T15_04"

// ErrInvalidBackupFilename is returned for names that carry the suffix
// marker but do not follow the backup naming convention.
var ErrInvalidBackupFilename = errors.New("invalid backup filename")

// prefix-YYYY-MM-DDTHH_MM.suffix; the prefix may itself contain dashes.
var backupFilenamePattern = regexp.MustCompile(`^(.+)-(\d{4}-\d{2}-\d{2}T\d{2}_\d{2})\.(.+)$`)

// HasSuffixMarker reports whether name is a candidate backup file.
func HasSuffixMarker(name, marker string) bool {
	if marker == "" {
		marker = DefaultSuffixMarker
	}
	return strings.Contains(name, marker)
}

// GenerateBackupFilename creates the canonical backup filename for a timestamp.
func GenerateBackupFilename(prefix string, timestamp time.Time) string {
	// Format: prefix-2006-01-02T15_04.sql.gz
	prefix = strings.TrimSuffix(prefix, "-")
	if prefix == "" {
		prefix = "backup"
	}
	return fmt.Sprintf("%s-%s%s", prefix, timestamp.UTC().Format(timestampLayout), DefaultSuffixMarker)
}

// ParseBackupFilename extracts the creation timestamp from a backup filename.
// Only minute precision is encoded; the result is in UTC.
func ParseBackupFilename(filename string) (time.Time, error) {
	m := backupFilenamePattern.FindStringSubmatch(filename)
	if m == nil {
		return time.Time{}, fmt.Errorf("%w: %q does not match prefix-YYYY-MM-DDTHH_MM.suffix", ErrInvalidBackupFilename, filename)
	}

	// time.Parse rejects out of range fields such as month 13 or hour 25
	t, err := time.Parse(timestampLayout, m[2])
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q: %v", ErrInvalidBackupFilename, filename, err)
	}

	return t.UTC(), nil
}
