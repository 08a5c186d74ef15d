package database

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db, err := Initialize(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to initialize database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestDatabaseIntegration tests the complete database lifecycle
func TestDatabaseIntegration(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	if err := db.PingContext(ctx); err != nil {
		t.Fatalf("Failed to ping database: %v", err)
	}

	tables := []string{"users", "family_groups", "wishlist_items", "activities", "secret_notes"}
	for _, table := range tables {
		var name string
		err := db.QueryRowContext(ctx, "SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
		if err != nil {
			t.Errorf("Table %s not found: %v", table, err)
		}
	}

	// A second run must be a no-op
	if err := db.RunMigrations(ctx); err != nil {
		t.Fatalf("Re-running migrations failed: %v", err)
	}
	var count int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM migrations").Scan(&count); err != nil {
		t.Fatalf("Failed to count migrations: %v", err)
	}
	if count != 1 {
		t.Errorf("Expected 1 recorded migration, got %d", count)
	}
}

// TestDatabaseTransactions tests transaction support
func TestDatabaseTransactions(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	now := time.Now().UTC()

	err := db.WithTx(ctx, func(tx *Tx) error {
		_, err := tx.ExecReturningID(ctx, "INSERT INTO users (name, email, password_hash, created_at) VALUES (?, ?, ?, ?)",
			"testuser", "test@example.com", "hashedpass", now)
		return err
	})
	if err != nil {
		t.Fatalf("Committed transaction failed: %v", err)
	}

	var count int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM users WHERE name = ?", "testuser").Scan(&count); err != nil {
		t.Fatalf("Failed to query after commit: %v", err)
	}
	if count != 1 {
		t.Errorf("Expected 1 user, got %d", count)
	}

	err = db.WithTx(ctx, func(tx *Tx) error {
		if _, err := tx.ExecContext(ctx, "INSERT INTO users (name, email, password_hash, created_at) VALUES (?, ?, ?, ?)",
			"testuser2", "test2@example.com", "hashedpass", now); err != nil {
			return err
		}
		// Duplicate email aborts the whole transaction
		_, err := tx.ExecContext(ctx, "INSERT INTO users (name, email, password_hash, created_at) VALUES (?, ?, ?, ?)",
			"testuser3", "test2@example.com", "hashedpass", now)
		return err
	})
	if err == nil {
		t.Fatal("Expected duplicate email to fail the transaction")
	}
	if !db.Dialect.IsUniqueViolation(err) {
		t.Errorf("Expected a unique violation, got %v", err)
	}

	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM users WHERE name = ?", "testuser2").Scan(&count); err != nil {
		t.Fatalf("Failed to query after rollback: %v", err)
	}
	if count != 0 {
		t.Errorf("Expected 0 users after rollback, got %d", count)
	}
}

func TestNullEmailsAreNotUnique(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	for _, name := range []string{"kid one", "kid two"} {
		if _, err := db.ExecContext(ctx, "INSERT INTO users (name, email, password_hash, created_at) VALUES (?, NULL, ?, ?)",
			name, "hashedpass", time.Now().UTC()); err != nil {
			t.Fatalf("Insert of %s failed: %v", name, err)
		}
	}
}

func TestReservationCheckConstraint(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	now := time.Now().UTC()

	userID, err := db.ExecReturningID(ctx, "INSERT INTO users (name, password_hash, created_at) VALUES (?, ?, ?)", "owner", "x", now)
	if err != nil {
		t.Fatalf("Failed to create user: %v", err)
	}

	_, err = db.ExecContext(ctx, `INSERT INTO wishlist_items (user_id, name, is_reserved, reserved_by_user_id, created_at)
		VALUES (?, ?, ?, NULL, ?)`, userID, "Bike", true, now)
	if err == nil {
		t.Error("Expected reserved item without reserver to violate the check constraint")
	}
}

// TestConcurrentAccess tests concurrent database access
func TestConcurrentAccess(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	_, err := db.ExecContext(ctx, "INSERT INTO users (name, email, password_hash, created_at) VALUES (?, ?, ?, ?)",
		"concurrentuser", "concurrent@example.com", "hashedpass", time.Now().UTC())
	if err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			var name string
			err := db.QueryRowContext(ctx, "SELECT name FROM users WHERE email = ?", "concurrent@example.com").Scan(&name)
			if err != nil {
				t.Errorf("Concurrent read failed: %v", err)
				return
			}
			if name != "concurrentuser" {
				t.Errorf("Expected name 'concurrentuser', got '%s'", name)
			}
		}()
	}
	wg.Wait()
}
