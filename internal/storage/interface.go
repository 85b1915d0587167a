// Package storage defines the interface for backup storage providers.
package storage

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by Delete when the backup no longer exists.
var ErrNotFound = errors.New("backup not found")

// Storage defines the operations a sweep needs from a backup location.
type Storage interface {
	// List returns all backup files whose name starts with prefix.
	List(ctx context.Context, prefix string) ([]ObjectInfo, error)

	// Delete removes a backup file with the given key.
	// Implementations wrap ErrNotFound when the key is already gone.
	Delete(ctx context.Context, key string) error
}

// ObjectInfo contains information about a stored backup.
type ObjectInfo struct {
	Key          string
	Size         int64
	LastModified time.Time
}
