package repository

import (
	"database/sql"
	"time"

	"giftcircle/internal/database"
)

// SQLStore implements Store on top of a relational database
type SQLStore struct {
	*UserRepository
	*FamilyGroupRepository
	*WishlistRepository
	*ActivityRepository
	*SecretNoteRepository
}

var _ Store = (*SQLStore)(nil)

// NewSQLStore creates a store backed by db, which may be a *database.DB or
// a *database.Tx
func NewSQLStore(db database.DBTX) *SQLStore {
	return &SQLStore{
		UserRepository:        NewUserRepository(db),
		FamilyGroupRepository: NewFamilyGroupRepository(db),
		WishlistRepository:    NewWishlistRepository(db),
		ActivityRepository:    NewActivityRepository(db),
		SecretNoteRepository:  NewSecretNoteRepository(db),
	}
}

func now() time.Time {
	return time.Now().UTC()
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullStringPtr(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func nullInt64(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}

func int64Ptr(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	n := v.Int64
	return &n
}

func stringPtr(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	s := v.String
	return &s
}
