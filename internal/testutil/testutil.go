// Package testutil provides shared test helpers for setting up vaults.
package testutil

import (
	"testing"

	"github.com/ashvale/lattice/internal/storage"
)

// TestVault creates a temporary vault directory with a storage.Provider.
func TestVault(t *testing.T) (string, storage.Provider) {
	t.Helper()
	vaultDir := t.TempDir()
	store, err := storage.NewFS(vaultDir)
	if err != nil {
		t.Fatal(err)
	}
	return vaultDir, store
}

// Seed writes a set of notes into the vault, failing the test on error.
func Seed(t *testing.T, store storage.Provider, notes map[string]string) {
	t.Helper()
	for path, content := range notes {
		if err := store.Write(path, []byte(content)); err != nil {
			t.Fatalf("seed %s: %v", path, err)
		}
	}
}
