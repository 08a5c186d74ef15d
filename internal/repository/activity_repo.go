package repository

import (
	"context"
	"database/sql"
	"fmt"

	"giftcircle/internal/database"
	"giftcircle/internal/models"
)

// ActivityRepository handles database operations for the activity feed
type ActivityRepository struct {
	db database.DBTX
}

// NewActivityRepository creates a new activity repository
func NewActivityRepository(db database.DBTX) *ActivityRepository {
	return &ActivityRepository{db: db}
}

// CreateActivity appends an activity and fills in its ID and creation time
func (r *ActivityRepository) CreateActivity(ctx context.Context, activity *models.Activity) error {
	activity.CreatedAt = now()
	query := `
		INSERT INTO activities (user_id, family_group_id, action, item_name, target_user_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	id, err := r.db.ExecReturningID(ctx, query,
		activity.UserID, activity.FamilyGroupID, activity.Action,
		nullStringPtr(activity.ItemName), nullInt64(activity.TargetUserID), activity.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create activity: %w", err)
	}
	activity.ID = id
	return nil
}

// ListActivitiesByFamilyGroup retrieves the most recent activities of a
// family group with the actor and target names filled in
func (r *ActivityRepository) ListActivitiesByFamilyGroup(ctx context.Context, familyGroupID int64, limit int) ([]models.ActivityView, error) {
	if limit <= 0 {
		limit = DefaultActivityLimit
	}

	query := `
		SELECT a.id, a.user_id, a.family_group_id, a.action, a.item_name, a.target_user_id, a.created_at,
		       u.name, t.name
		FROM activities a
		INNER JOIN users u ON a.user_id = u.id
		LEFT JOIN users t ON a.target_user_id = t.id
		WHERE a.family_group_id = ?
		ORDER BY a.created_at DESC, a.id DESC
		LIMIT ?
	`
	rows, err := r.db.QueryContext(ctx, query, familyGroupID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query activities: %w", err)
	}
	defer rows.Close()

	var activities []models.ActivityView
	for rows.Next() {
		var (
			view       models.ActivityView
			itemName   sql.NullString
			targetID   sql.NullInt64
			targetName sql.NullString
		)
		err := rows.Scan(
			&view.ID,
			&view.UserID,
			&view.FamilyGroupID,
			&view.Action,
			&itemName,
			&targetID,
			&view.CreatedAt,
			&view.UserName,
			&targetName,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan activity: %w", err)
		}
		view.ItemName = stringPtr(itemName)
		view.TargetUserID = int64Ptr(targetID)
		view.TargetUserName = stringPtr(targetName)
		activities = append(activities, view)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate activities: %w", err)
	}

	return activities, nil
}
