package testsupport

import (
	"testing"

	"cdrip/internal/config"
	"cdrip/internal/history"
)

// MustOpenHistory opens the history database for cfg and closes it when the test ends.
func MustOpenHistory(t testing.TB, cfg *config.Config) *history.Store {
	t.Helper()

	store, err := history.Open(cfg)
	if err != nil {
		t.Fatalf("history.Open failed: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}
