package storage

import (
	"path"
	"strings"
)

// fullKey returns the object key with the storage prefix applied.
func fullKey(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return path.Join(prefix, key)
}

// listPrefix returns the prefix used to list objects below the storage prefix.
// A trailing slash keeps "backups" from matching "backups-old/...".
func listPrefix(prefix, namePrefix string) string {
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		return namePrefix
	}
	return prefix + "/" + namePrefix
}

// stripPrefix removes the storage prefix from a key.
func stripPrefix(prefix, key string) string {
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		return key
	}
	return strings.TrimPrefix(key, prefix+"/")
}

// isDirectEntry reports whether a listed key names a file directly inside
// the storage prefix, not a nested object or a folder marker.
func isDirectEntry(key string) bool {
	return key != "" && !strings.Contains(key, "/")
}
