package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/sirupsen/logrus"

	"giftcircle/internal/database"
	"giftcircle/internal/models"
)

// BackupVersion is written into every export
const BackupVersion = "1.0"

// BackupData represents a complete database backup
type BackupData struct {
	Version      string              `json:"version"`
	ExportedAt   time.Time           `json:"exported_at"`
	DatabaseType string              `json:"database_type"`
	FamilyGroups []FamilyGroupBackup `json:"family_groups"`
	Users        []UserBackup        `json:"users"`
	Items        []ItemBackup        `json:"wishlist_items"`
	Activities   []ActivityBackup    `json:"activities"`
	SecretNotes  []SecretNoteBackup  `json:"secret_notes"`
}

type FamilyGroupBackup struct {
	ID         int64     `json:"id"`
	Name       string    `json:"name"`
	InviteCode string    `json:"invite_code"`
	CreatedAt  time.Time `json:"created_at"`
}

type UserBackup struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	Email         *string   `json:"email"`
	PasswordHash  string    `json:"password_hash"`
	FamilyGroupID *int64    `json:"family_group_id"`
	CreatedAt     time.Time `json:"created_at"`
}

type ItemBackup struct {
	ID               int64     `json:"id"`
	UserID           int64     `json:"user_id"`
	Name             string    `json:"name"`
	Description      string    `json:"description"`
	Price            *int64    `json:"price"`
	Category         string    `json:"category"`
	Priority         string    `json:"priority"`
	StoreLink        string    `json:"store_link"`
	ImageURL         string    `json:"image_url"`
	IsReserved       bool      `json:"is_reserved"`
	ReservedByUserID *int64    `json:"reserved_by_user_id"`
	CreatedAt        time.Time `json:"created_at"`
}

type ActivityBackup struct {
	ID            int64     `json:"id"`
	UserID        int64     `json:"user_id"`
	FamilyGroupID int64     `json:"family_group_id"`
	Action        string    `json:"action"`
	ItemName      *string   `json:"item_name"`
	TargetUserID  *int64    `json:"target_user_id"`
	CreatedAt     time.Time `json:"created_at"`
}

type SecretNoteBackup struct {
	ID             int64     `json:"id"`
	WishlistItemID int64     `json:"wishlist_item_id"`
	UserID         int64     `json:"user_id"`
	Note           string    `json:"note"`
	CreatedAt      time.Time `json:"created_at"`
}

// BackupService handles database backup and restore operations
type BackupService struct {
	db  *database.DB
	log logrus.FieldLogger
}

// NewBackupService creates a new backup service
func NewBackupService(db *database.DB, log logrus.FieldLogger) *BackupService {
	return &BackupService{db: db, log: log}
}

// Export writes a complete backup of the database to w as indented JSON
func (s *BackupService) Export(ctx context.Context, w io.Writer) (*BackupData, error) {
	s.log.Info("Starting database export...")

	backup := &BackupData{
		Version:      BackupVersion,
		ExportedAt:   time.Now().UTC(),
		DatabaseType: s.db.Dialect.DriverName(),
	}

	steps := []struct {
		name string
		fn   func(context.Context, *BackupData) error
	}{
		{"family groups", s.exportFamilyGroups},
		{"users", s.exportUsers},
		{"wishlist items", s.exportItems},
		{"activities", s.exportActivities},
		{"secret notes", s.exportSecretNotes},
	}
	for _, step := range steps {
		if err := step.fn(ctx, backup); err != nil {
			return nil, fmt.Errorf("failed to export %s: %w", step.name, err)
		}
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(backup); err != nil {
		return nil, fmt.Errorf("failed to encode backup: %w", err)
	}

	s.log.WithFields(logrus.Fields{
		"family_groups":  len(backup.FamilyGroups),
		"users":          len(backup.Users),
		"wishlist_items": len(backup.Items),
		"activities":     len(backup.Activities),
		"secret_notes":   len(backup.SecretNotes),
	}).Info("Database exported successfully")

	return backup, nil
}

// Import restores a backup read from r into the database. Rows keep their
// original IDs, so the target tables must be empty unless clearExisting is set, in
// which case existing rows are deleted first. The file is decoded and checked
// before anything is written, and the clear and the inserts share one
// transaction.
func (s *BackupService) Import(ctx context.Context, r io.Reader, clearExisting bool) error {
	var backup BackupData
	if err := json.NewDecoder(r).Decode(&backup); err != nil {
		return fmt.Errorf("failed to decode backup: %w", err)
	}

	s.log.WithFields(logrus.Fields{
		"version":     backup.Version,
		"exported_at": backup.ExportedAt,
		"clear":       clearExisting,
	}).Info("Starting database import...")

	if backup.Version != BackupVersion {
		return fmt.Errorf("unsupported backup version %q", backup.Version)
	}
	for _, i := range backup.Items {
		if !models.Priority(i.Priority).Valid() {
			return fmt.Errorf("wishlist item %d has unknown priority %q", i.ID, i.Priority)
		}
	}

	err := s.db.WithTx(ctx, func(tx *database.Tx) error {
		if clearExisting {
			if err := s.clearTables(ctx, tx); err != nil {
				return err
			}
		}

		// Import in order of dependencies
		if err := importFamilyGroups(ctx, tx, backup.FamilyGroups); err != nil {
			return fmt.Errorf("failed to import family groups: %w", err)
		}
		if err := importUsers(ctx, tx, backup.Users); err != nil {
			return fmt.Errorf("failed to import users: %w", err)
		}
		if err := importItems(ctx, tx, backup.Items); err != nil {
			return fmt.Errorf("failed to import wishlist items: %w", err)
		}
		if err := importActivities(ctx, tx, backup.Activities); err != nil {
			return fmt.Errorf("failed to import activities: %w", err)
		}
		if err := importSecretNotes(ctx, tx, backup.SecretNotes); err != nil {
			return fmt.Errorf("failed to import secret notes: %w", err)
		}
		if s.db.Dialect.DriverName() == "postgres" {
			return resetPostgresSequences(ctx, tx)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.log.Info("Database import completed successfully")
	return nil
}

// clearTables deletes every row in reverse order of dependencies
func (s *BackupService) clearTables(ctx context.Context, tx *database.Tx) error {
	tables := []string{
		"secret_notes",
		"activities",
		"wishlist_items",
		"users",
		"family_groups",
	}

	for _, table := range tables {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("failed to clear table %s: %w", table, err)
		}
		s.log.WithField("table", table).Info("Cleared table")
	}
	return nil
}

func (s *BackupService) exportFamilyGroups(ctx context.Context, backup *BackupData) error {
	rows, err := s.db.QueryContext(ctx, "SELECT id, name, invite_code, created_at FROM family_groups ORDER BY id")
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var g FamilyGroupBackup
		if err := rows.Scan(&g.ID, &g.Name, &g.InviteCode, &g.CreatedAt); err != nil {
			return err
		}
		backup.FamilyGroups = append(backup.FamilyGroups, g)
	}
	return rows.Err()
}

func (s *BackupService) exportUsers(ctx context.Context, backup *BackupData) error {
	rows, err := s.db.QueryContext(ctx, "SELECT id, name, email, password_hash, family_group_id, created_at FROM users ORDER BY id")
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			u             UserBackup
			email         sql.NullString
			familyGroupID sql.NullInt64
		)
		if err := rows.Scan(&u.ID, &u.Name, &email, &u.PasswordHash, &familyGroupID, &u.CreatedAt); err != nil {
			return err
		}
		if email.Valid {
			u.Email = &email.String
		}
		if familyGroupID.Valid {
			u.FamilyGroupID = &familyGroupID.Int64
		}
		backup.Users = append(backup.Users, u)
	}
	return rows.Err()
}

func (s *BackupService) exportItems(ctx context.Context, backup *BackupData) error {
	query := `SELECT id, user_id, name, description, price, category, priority, store_link, image_url,
		is_reserved, reserved_by_user_id, created_at FROM wishlist_items ORDER BY id`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			i          ItemBackup
			price      sql.NullInt64
			reservedBy sql.NullInt64
		)
		if err := rows.Scan(&i.ID, &i.UserID, &i.Name, &i.Description, &price, &i.Category, &i.Priority,
			&i.StoreLink, &i.ImageURL, &i.IsReserved, &reservedBy, &i.CreatedAt); err != nil {
			return err
		}
		if price.Valid {
			i.Price = &price.Int64
		}
		if reservedBy.Valid {
			i.ReservedByUserID = &reservedBy.Int64
		}
		backup.Items = append(backup.Items, i)
	}
	return rows.Err()
}

func (s *BackupService) exportActivities(ctx context.Context, backup *BackupData) error {
	rows, err := s.db.QueryContext(ctx, "SELECT id, user_id, family_group_id, action, item_name, target_user_id, created_at FROM activities ORDER BY id")
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			a        ActivityBackup
			itemName sql.NullString
			targetID sql.NullInt64
		)
		if err := rows.Scan(&a.ID, &a.UserID, &a.FamilyGroupID, &a.Action, &itemName, &targetID, &a.CreatedAt); err != nil {
			return err
		}
		if itemName.Valid {
			a.ItemName = &itemName.String
		}
		if targetID.Valid {
			a.TargetUserID = &targetID.Int64
		}
		backup.Activities = append(backup.Activities, a)
	}
	return rows.Err()
}

func (s *BackupService) exportSecretNotes(ctx context.Context, backup *BackupData) error {
	rows, err := s.db.QueryContext(ctx, "SELECT id, wishlist_item_id, user_id, note, created_at FROM secret_notes ORDER BY id")
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var n SecretNoteBackup
		if err := rows.Scan(&n.ID, &n.WishlistItemID, &n.UserID, &n.Note, &n.CreatedAt); err != nil {
			return err
		}
		backup.SecretNotes = append(backup.SecretNotes, n)
	}
	return rows.Err()
}

func importFamilyGroups(ctx context.Context, tx *database.Tx, groups []FamilyGroupBackup) error {
	for _, g := range groups {
		query := "INSERT INTO family_groups (id, name, invite_code, created_at) VALUES (?, ?, ?, ?)"
		if _, err := tx.ExecContext(ctx, query, g.ID, g.Name, g.InviteCode, g.CreatedAt); err != nil {
			return fmt.Errorf("failed to import family group %d: %w", g.ID, err)
		}
	}
	return nil
}

func importUsers(ctx context.Context, tx *database.Tx, users []UserBackup) error {
	for _, u := range users {
		query := "INSERT INTO users (id, name, email, password_hash, family_group_id, created_at) VALUES (?, ?, ?, ?, ?, ?)"
		if _, err := tx.ExecContext(ctx, query, u.ID, u.Name, u.Email, u.PasswordHash, u.FamilyGroupID, u.CreatedAt); err != nil {
			return fmt.Errorf("failed to import user %d: %w", u.ID, err)
		}
	}
	return nil
}

func importItems(ctx context.Context, tx *database.Tx, items []ItemBackup) error {
	for _, i := range items {
		query := `INSERT INTO wishlist_items (id, user_id, name, description, price, category, priority, store_link,
			image_url, is_reserved, reserved_by_user_id, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
		_, err := tx.ExecContext(ctx, query, i.ID, i.UserID, i.Name, i.Description, i.Price, i.Category, i.Priority,
			i.StoreLink, i.ImageURL, i.IsReserved, i.ReservedByUserID, i.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to import wishlist item %d: %w", i.ID, err)
		}
	}
	return nil
}

func importActivities(ctx context.Context, tx *database.Tx, activities []ActivityBackup) error {
	for _, a := range activities {
		query := "INSERT INTO activities (id, user_id, family_group_id, action, item_name, target_user_id, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)"
		if _, err := tx.ExecContext(ctx, query, a.ID, a.UserID, a.FamilyGroupID, a.Action, a.ItemName, a.TargetUserID, a.CreatedAt); err != nil {
			return fmt.Errorf("failed to import activity %d: %w", a.ID, err)
		}
	}
	return nil
}

func importSecretNotes(ctx context.Context, tx *database.Tx, notes []SecretNoteBackup) error {
	for _, n := range notes {
		query := "INSERT INTO secret_notes (id, wishlist_item_id, user_id, note, created_at) VALUES (?, ?, ?, ?, ?)"
		if _, err := tx.ExecContext(ctx, query, n.ID, n.WishlistItemID, n.UserID, n.Note, n.CreatedAt); err != nil {
			return fmt.Errorf("failed to import secret note %d: %w", n.ID, err)
		}
	}
	return nil
}

// resetPostgresSequences moves each serial sequence past the imported IDs
func resetPostgresSequences(ctx context.Context, tx *database.Tx) error {
	for _, table := range []string{"family_groups", "users", "wishlist_items", "activities", "secret_notes"} {
		query := fmt.Sprintf("SELECT setval(pg_get_serial_sequence('%s', 'id'), COALESCE(MAX(id), 0) + 1, false) FROM %s", table, table)
		if _, err := tx.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to reset sequence for %s: %w", table, err)
		}
	}
	return nil
}
