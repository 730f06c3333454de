// Package testutil provides shared helpers for tests.
package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// WriteManifest writes content to name inside a fresh temp directory
// and returns the directory. Each call creates its own directory, so
// parallel tests never share manifest state.
func WriteManifest(t *testing.T, name, content string) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write manifest %s: %v", name, err)
	}
	return dir
}
