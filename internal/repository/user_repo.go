package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"giftcircle/internal/database"
	"giftcircle/internal/models"
)

// UserRepository handles database operations for users
type UserRepository struct {
	db database.DBTX
}

// NewUserRepository creates a new user repository
func NewUserRepository(db database.DBTX) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = "id, name, email, password_hash, family_group_id, created_at"

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*models.User, error) {
	var (
		user          models.User
		email         sql.NullString
		familyGroupID sql.NullInt64
	)
	if err := row.Scan(&user.ID, &user.Name, &email, &user.PasswordHash, &familyGroupID, &user.CreatedAt); err != nil {
		return nil, err
	}
	user.Email = email.String
	user.FamilyGroupID = int64Ptr(familyGroupID)
	return &user, nil
}

// CreateUser inserts a new user. An empty email is stored as NULL.
func (r *UserRepository) CreateUser(ctx context.Context, name, email, passwordHash string) (*models.User, error) {
	createdAt := now()
	query := "INSERT INTO users (name, email, password_hash, created_at) VALUES (?, ?, ?, ?)"
	id, err := r.db.ExecReturningID(ctx, query, name, nullString(email), passwordHash, createdAt)
	if err != nil {
		if r.db.GetDialect().IsUniqueViolation(err) {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return &models.User{
		ID:           id,
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    createdAt,
	}, nil
}

// GetUser retrieves a user by ID
func (r *UserRepository) GetUser(ctx context.Context, id int64) (*models.User, error) {
	user, err := scanUser(r.db.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// GetUserByEmail retrieves a user by email address
func (r *UserRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	user, err := scanUser(r.db.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE email = ?", email))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return user, nil
}

// UpdateUserFamilyGroup moves a user into a family group, replacing any
// previous membership
func (r *UserRepository) UpdateUserFamilyGroup(ctx context.Context, userID, familyGroupID int64) error {
	_, err := r.db.ExecContext(ctx, "UPDATE users SET family_group_id = ? WHERE id = ?", familyGroupID, userID)
	if err != nil {
		return fmt.Errorf("failed to update user family group: %w", err)
	}
	return nil
}

// ListFamilyGroupMembers retrieves all users in a family group ordered by ID
func (r *UserRepository) ListFamilyGroupMembers(ctx context.Context, familyGroupID int64) ([]models.User, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT "+userColumns+" FROM users WHERE family_group_id = ? ORDER BY id ASC", familyGroupID)
	if err != nil {
		return nil, fmt.Errorf("failed to query family group members: %w", err)
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, *user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate family group members: %w", err)
	}

	return users, nil
}
