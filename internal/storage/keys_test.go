package storage

import (
	"testing"
)

func TestFullKey(t *testing.T) {
	tests := []struct {
		name   string
		prefix string
		key    string
		want   string
	}{
		{
			name:   "no prefix",
			prefix: "",
			key:    "hawc-2024-03-01T02_15.sql.gz",
			want:   "hawc-2024-03-01T02_15.sql.gz",
		},
		{
			name:   "with prefix",
			prefix: "backups/hawc",
			key:    "hawc-2024-03-01T02_15.sql.gz",
			want:   "backups/hawc/hawc-2024-03-01T02_15.sql.gz",
		},
		{
			name:   "prefix with trailing slash",
			prefix: "backups/",
			key:    "hawc-2024-03-01T02_15.sql.gz",
			want:   "backups/hawc-2024-03-01T02_15.sql.gz",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := fullKey(tt.prefix, tt.key); got != tt.want {
				t.Errorf("fullKey() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestListPrefix(t *testing.T) {
	tests := []struct {
		name       string
		prefix     string
		namePrefix string
		want       string
	}{
		{"no prefix", "", "", ""},
		{"no prefix with name prefix", "", "hawc", "hawc"},
		{"folder only", "backups", "", "backups/"},
		{"folder with trailing slash", "backups/", "hawc", "backups/hawc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := listPrefix(tt.prefix, tt.namePrefix); got != tt.want {
				t.Errorf("listPrefix() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestStripPrefix(t *testing.T) {
	tests := []struct {
		name   string
		prefix string
		key    string
		want   string
	}{
		{
			name:   "no prefix",
			prefix: "",
			key:    "hawc-2024-03-01T02_15.sql.gz",
			want:   "hawc-2024-03-01T02_15.sql.gz",
		},
		{
			name:   "with prefix",
			prefix: "backups",
			key:    "backups/hawc-2024-03-01T02_15.sql.gz",
			want:   "hawc-2024-03-01T02_15.sql.gz",
		},
		{
			name:   "prefix with trailing slash",
			prefix: "backups/",
			key:    "backups/hawc-2024-03-01T02_15.sql.gz",
			want:   "hawc-2024-03-01T02_15.sql.gz",
		},
		{
			name:   "key shorter than prefix",
			prefix: "backups",
			key:    "back",
			want:   "back",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := stripPrefix(tt.prefix, tt.key); got != tt.want {
				t.Errorf("stripPrefix() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsDirectEntry(t *testing.T) {
	tests := []struct {
		key  string
		want bool
	}{
		{"hawc-2024-01-15T02_00.sql.gz", true},
		{"archive/hawc-2024-01-15T02_00.sql.gz", false},
		{"archive/", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			if got := isDirectEntry(tt.key); got != tt.want {
				t.Errorf("isDirectEntry(%q) = %v, want %v", tt.key, got, tt.want)
			}
		})
	}
}
