package testsupport

import (
	"context"
	"testing"

	"cuesplice/internal/config"
	"cuesplice/internal/registry"
)

// MustOpenRegistry opens a registry.Store for tests and registers cleanup.
func MustOpenRegistry(t testing.TB, cfg *config.Config) *registry.Store {
	t.Helper()

	store, err := registry.Open(cfg)
	if err != nil {
		t.Fatalf("registry.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// AddReplacement records a replacement and fails the test on error.
func AddReplacement(t testing.TB, store *registry.Store, project string, index int, scene string) {
	t.Helper()

	if _, err := store.AddReplacement(context.Background(), project, registry.Replacement{SrtIndex: index, ScenePath: scene}); err != nil {
		t.Fatalf("AddReplacement: %v", err)
	}
}
