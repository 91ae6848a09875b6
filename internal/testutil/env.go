// Package testutil isolates tests from the user's real ~/.clickhouse store.
package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// SetupTestEnv points CLICKHOUSE_HOME at a per-test temporary directory and
// creates the versions hierarchy inside it. Cleanup is handled by t.TempDir.
// It returns the temporary home directory.
func SetupTestEnv(t *testing.T) string {
	t.Helper()

	home := filepath.Join(t.TempDir(), "clickhouse")
	t.Setenv("CLICKHOUSE_HOME", home)

	if err := os.MkdirAll(filepath.Join(home, "versions"), 0o755); err != nil {
		t.Fatalf("create test versions dir: %v", err)
	}
	return home
}
