// Package helpers builds fixtures shared by package tests.
package helpers

import (
	"testing"

	"github.com/xiaot623/gogo/vizstudio/internal/config"
	"github.com/xiaot623/gogo/vizstudio/internal/repository"
)

// NewTestSQLiteStore opens an in-memory studio store closed at test end.
func NewTestSQLiteStore(t *testing.T) *store.SQLiteStore {
	t.Helper()

	s, err := store.NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("failed to create sqlite store: %v", err)
	}

	t.Cleanup(func() {
		_ = s.Close()
	})

	return s
}

// NewTestConfig returns the default config with its editable documents
// rooted in a fresh temp dir.
func NewTestConfig(t *testing.T) *config.Config {
	t.Helper()

	cfg := config.Default()
	cfg.DocsDir = t.TempDir()
	cfg.Documents = config.DefaultDocuments(cfg.DocsDir)
	return cfg
}
