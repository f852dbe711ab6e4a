package testsupport

import (
	"testing"

	"firewatch/internal/config"
	"firewatch/internal/ledger"
)

// MustOpenStore opens a throwaway ledger store under the test config's data
// directory and closes it when the test finishes.
func MustOpenStore(t testing.TB, cfg *config.Config) *ledger.Store {
	t.Helper()

	store, err := ledger.Open(cfg.LedgerPath())
	if err != nil {
		t.Fatalf("open test ledger: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("close test ledger: %v", err)
		}
	})
	return store
}
