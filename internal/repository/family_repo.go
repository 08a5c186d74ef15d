package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"giftcircle/internal/database"
	"giftcircle/internal/models"
)

// FamilyGroupRepository handles database operations for family groups
type FamilyGroupRepository struct {
	db database.DBTX
}

// NewFamilyGroupRepository creates a new family group repository
func NewFamilyGroupRepository(db database.DBTX) *FamilyGroupRepository {
	return &FamilyGroupRepository{db: db}
}

// CreateFamilyGroup creates a new family group. It returns
// ErrDuplicateInviteCode if inviteCode is already used by another group.
func (r *FamilyGroupRepository) CreateFamilyGroup(ctx context.Context, name, inviteCode string) (*models.FamilyGroup, error) {
	createdAt := now()
	query := "INSERT INTO family_groups (name, invite_code, created_at) VALUES (?, ?, ?)"
	id, err := r.db.ExecReturningID(ctx, query, name, inviteCode, createdAt)
	if err != nil {
		if r.db.GetDialect().IsUniqueViolation(err) {
			return nil, ErrDuplicateInviteCode
		}
		return nil, fmt.Errorf("failed to create family group: %w", err)
	}

	return &models.FamilyGroup{
		ID:         id,
		Name:       name,
		InviteCode: inviteCode,
		CreatedAt:  createdAt,
	}, nil
}

// GetFamilyGroup retrieves a family group by ID
func (r *FamilyGroupRepository) GetFamilyGroup(ctx context.Context, id int64) (*models.FamilyGroup, error) {
	return r.getBy(ctx, "id", id)
}

// GetFamilyGroupByInviteCode retrieves a family group by its invite code
func (r *FamilyGroupRepository) GetFamilyGroupByInviteCode(ctx context.Context, code string) (*models.FamilyGroup, error) {
	return r.getBy(ctx, "invite_code", code)
}

func (r *FamilyGroupRepository) getBy(ctx context.Context, column string, value any) (*models.FamilyGroup, error) {
	query := "SELECT id, name, invite_code, created_at FROM family_groups WHERE " + column + " = ?"
	group := &models.FamilyGroup{}
	err := r.db.QueryRowContext(ctx, query, value).Scan(
		&group.ID,
		&group.Name,
		&group.InviteCode,
		&group.CreatedAt,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get family group: %w", err)
	}

	return group, nil
}
