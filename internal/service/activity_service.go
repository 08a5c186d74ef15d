package service

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"giftcircle/internal/models"
	"giftcircle/internal/repository"
)

// MaxActivityLimit caps how many feed entries a single request may ask for
const MaxActivityLimit = 100

// ActivityService serves the family activity feed
type ActivityService struct {
	store         repository.Store
	log           logrus.FieldLogger
	hideFromOwner bool
}

// NewActivityService creates a new activity service. With hideFromOwner set,
// users do not see reservations made on their own items.
func NewActivityService(store repository.Store, log logrus.FieldLogger, hideFromOwner bool) *ActivityService {
	return &ActivityService{
		store:         store,
		log:           log,
		hideFromOwner: hideFromOwner,
	}
}

// List returns the most recent activities of the user's family group,
// newest first. Users outside any group get an empty feed.
func (s *ActivityService) List(ctx context.Context, user models.PublicUser, limit int) ([]models.ActivityView, error) {
	if !user.InFamilyGroup() {
		return []models.ActivityView{}, nil
	}
	if limit <= 0 {
		limit = repository.DefaultActivityLimit
	}
	if limit > MaxActivityLimit {
		limit = MaxActivityLimit
	}

	activities, err := s.store.ListActivitiesByFamilyGroup(ctx, *user.FamilyGroupID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list activities: %w", err)
	}

	result := make([]models.ActivityView, 0, len(activities))
	for _, a := range activities {
		if s.hideFromOwner && a.Action == models.ActionReservedItem && a.TargetUserID != nil && *a.TargetUserID == user.ID {
			continue
		}
		result = append(result, a)
	}
	return result, nil
}

// recordActivity appends to a group's feed. The feed is secondary to the
// action that produced it, so failures are logged and swallowed.
func recordActivity(ctx context.Context, store repository.Store, log logrus.FieldLogger, activity *models.Activity) {
	if err := store.CreateActivity(ctx, activity); err != nil {
		log.WithError(err).WithFields(logrus.Fields{
			"action":          activity.Action,
			"user_id":         activity.UserID,
			"family_group_id": activity.FamilyGroupID,
		}).Warn("Failed to record activity")
	}
}
