package main

import (
	"bytes"
	"errors"
	"net"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var wallClock = func() time.Time { return time.Date(2030, 1, 1, 12, 0, 0, 0, time.UTC) }

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"STORAGE_PROVIDER", "BACKUP_DIR", "BACKUP_FILE_PREFIX", "BACKUP_SUFFIX",
		"AWS_ACCESS_KEY_ID", "AWS_SECRET_ACCESS_KEY", "S3_BUCKET", "S3_REGION", "S3_ENDPOINT", "S3_PREFIX",
		"GCS_BUCKET", "GOOGLE_PROJECT_ID", "GOOGLE_SERVICE_ACCOUNT_JSON", "GCS_PREFIX",
		"MINIO_ENDPOINT", "MINIO_ACCESS_KEY", "MINIO_SECRET_KEY", "MINIO_BUCKET", "MINIO_REGION", "MINIO_USE_SSL", "MINIO_PREFIX",
		"DRY_RUN", "SWEEP_TODAY", "LOG_LEVEL", "LOG_FORMAT", "METRICS_PORT", "METRICS_LINGER_SECONDS",
	} {
		t.Setenv(k, "")
	}
}

func backupDir(t *testing.T, names ...string) string {
	t.Helper()
	dir := t.TempDir()
	for _, name := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("dump"), 0o644))
	}
	return dir
}

func listDir(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd(&out, wallClock)
	cmd.SetArgs(args)
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	err := cmd.Execute()
	return out.String(), err
}

func TestRootCmd_Sweep(t *testing.T) {
	clearEnv(t)
	dir := backupDir(t,
		"hawc-2024-06-10T02_00.sql.gz",
		"hawc-2024-05-01T02_00.sql.gz",
		"hawc-2024-05-13T02_00.sql.gz",
		"hawc-2024-05-14T02_00.sql.gz",
		"hawc-2024-01-01T02_00.sql.gz",
		"hawc-2024-01-15T02_00.sql.gz",
		".lock",
	)

	out, err := execute(t, "--dir", dir, "--today", "2024-06-15")
	require.NoError(t, err)

	assert.Equal(t, []string{
		".lock",
		"hawc-2024-01-01T02_00.sql.gz",
		"hawc-2024-05-01T02_00.sql.gz",
		"hawc-2024-05-13T02_00.sql.gz",
		"hawc-2024-06-10T02_00.sql.gz",
	}, listDir(t, dir))
	assert.Contains(t, out, "Deleted expired backup")
	assert.Contains(t, out, "Sweep summary")
}

func TestRootCmd_EnvironmentConfig(t *testing.T) {
	clearEnv(t)
	dir := backupDir(t, "hawc-2024-01-15T02_00.sql.gz")
	t.Setenv("BACKUP_DIR", dir)
	t.Setenv("SWEEP_TODAY", "2024-06-15")
	t.Setenv("LOG_FORMAT", "json")

	out, err := execute(t)
	require.NoError(t, err)

	assert.Empty(t, listDir(t, dir))
	assert.Contains(t, out, `"msg":"Deleted expired backup"`)
}

func TestRootCmd_DryRun(t *testing.T) {
	clearEnv(t)
	dir := backupDir(t, "hawc-2024-01-15T02_00.sql.gz")

	out, err := execute(t, "--dir", dir, "--today", "2024-06-15", "--dry-run")
	require.NoError(t, err)

	assert.Equal(t, []string{"hawc-2024-01-15T02_00.sql.gz"}, listDir(t, dir))
	assert.Contains(t, out, "Would delete expired backup")
}

func TestRootCmd_ParseFailureExitsNonZero(t *testing.T) {
	clearEnv(t)
	dir := backupDir(t,
		"hawc-2024-13-01T02_00.sql.gz",
		"hawc-2024-01-15T02_00.sql.gz",
	)

	_, err := execute(t, "--dir", dir, "--today", "2024-06-15")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errParseFailures))

	// The rest of the directory is still swept.
	assert.Equal(t, []string{"hawc-2024-13-01T02_00.sql.gz"}, listDir(t, dir))
}

func TestRootCmd_MetricsServerExitsAfterLinger(t *testing.T) {
	clearEnv(t)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := ln.Addr().(*net.TCPAddr).Port
	require.NoError(t, ln.Close())

	t.Setenv("METRICS_PORT", strconv.Itoa(port))
	t.Setenv("METRICS_LINGER_SECONDS", "0")
	dir := backupDir(t, "hawc-2024-01-15T02_00.sql.gz", "hawc-2024-06-14T02_00.sql.gz")

	done := make(chan error, 1)
	var out string
	go func() {
		var err error
		out, err = execute(t, "--dir", dir, "--today", "2024-06-15")
		done <- err
	}()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("sweep with metrics enabled did not exit")
	}

	assert.Equal(t, []string{"hawc-2024-06-14T02_00.sql.gz"}, listDir(t, dir))
	assert.Contains(t, out, "Starting HTTP server")
	assert.Contains(t, out, "Shutting down HTTP server")
}

func TestRootCmd_HelpDocumentsMetricsLinger(t *testing.T) {
	cmd := newRootCmd(&bytes.Buffer{}, wallClock)
	assert.Contains(t, cmd.Long, "METRICS_LINGER_SECONDS")
}

func TestRootCmd_Errors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		args []string
	}{
		{"missing directory", nil, []string{"--dir", filepath.Join(os.TempDir(), "hawc-sweep-does-not-exist")}},
		{"positional argument", nil, []string{"extra"}},
		{"malformed today", nil, []string{"--today", "June 15"}},
		{"invalid provider", map[string]string{"STORAGE_PROVIDER": "ftp"}, nil},
		{
			"dir with cloud storage",
			map[string]string{
				"STORAGE_PROVIDER":      "s3",
				"AWS_ACCESS_KEY_ID":     "key",
				"AWS_SECRET_ACCESS_KEY": "secret",
				"S3_BUCKET":             "bucket",
				"S3_REGION":             "us-east-1",
			},
			[]string{"--dir", "/tmp"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := execute(t, tt.args...)
			assert.Error(t, err)
		})
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, "warn", "text")

	logger.Info("hidden")
	logger.Warn("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}
