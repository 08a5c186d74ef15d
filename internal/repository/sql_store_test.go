package repository_test

import (
	"path/filepath"
	"testing"

	"giftcircle/internal/database"
	"giftcircle/internal/repository"
	"giftcircle/internal/repository/storetest"
)

func TestSQLStore(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	storetest.Run(t, func(t *testing.T) repository.Store {
		db, err := database.Initialize(filepath.Join(t.TempDir(), "store.db"))
		if err != nil {
			t.Fatalf("Failed to initialize database: %v", err)
		}
		t.Cleanup(func() { db.Close() })
		return repository.NewSQLStore(db)
	})
}
