package storage

import (
	"context"
	"testing"

	"github.com/randalmurphal/gantt/internal/db/driver"
)

// NewTestKV creates an in-memory SQLite KV for testing.
// The store is closed automatically when the test completes.
//
// Usage:
//
//	func TestSomething(t *testing.T) {
//	    t.Parallel()
//	    kv := storage.NewTestKV(t)
//	    // use kv...
//	}
func NewTestKV(t testing.TB) *SQLKV {
	t.Helper()

	kv, err := OpenSQL(context.Background(), driver.DialectSQLite, ":memory:")
	if err != nil {
		t.Fatalf("create test kv: %v", err)
	}

	t.Cleanup(func() {
		_ = kv.Close()
	})

	return kv
}
