// Package memstore is an in-memory repository.Store for tests.
package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"giftcircle/internal/models"
	"giftcircle/internal/repository"
)

// Store keeps every record in maps guarded by a single mutex
type Store struct {
	mu sync.Mutex

	nextID     int64
	users      map[int64]models.User
	groups     map[int64]models.FamilyGroup
	items      map[int64]models.WishlistItem
	activities []models.Activity
	notes      []models.SecretNote

	clock func() time.Time
}

var _ repository.Store = (*Store)(nil)

// New creates an empty store
func New() *Store {
	return &Store{
		users:  make(map[int64]models.User),
		groups: make(map[int64]models.FamilyGroup),
		items:  make(map[int64]models.WishlistItem),
		clock:  func() time.Time { return time.Now().UTC() },
	}
}

func (s *Store) id() int64 {
	s.nextID++
	return s.nextID
}

func (s *Store) GetUser(_ context.Context, id int64) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (s *Store) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if email == "" {
		return nil, nil
	}
	for _, u := range s.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, nil
}

func (s *Store) CreateUser(_ context.Context, name, email, passwordHash string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if email != "" {
		for _, existing := range s.users {
			if existing.Email == email {
				return nil, repository.ErrDuplicateEmail
			}
		}
	}

	u := models.User{
		ID:           s.id(),
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    s.clock(),
	}
	s.users[u.ID] = u
	return &u, nil
}

func (s *Store) UpdateUserFamilyGroup(_ context.Context, userID, familyGroupID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[userID]
	if !ok {
		return nil
	}
	u.FamilyGroupID = &familyGroupID
	s.users[userID] = u
	return nil
}

func (s *Store) ListFamilyGroupMembers(_ context.Context, familyGroupID int64) ([]models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var members []models.User
	for _, u := range s.users {
		if u.FamilyGroupID != nil && *u.FamilyGroupID == familyGroupID {
			members = append(members, u)
		}
	}
	sort.Slice(members, func(i, j int) bool { return members[i].ID < members[j].ID })
	return members, nil
}

func (s *Store) GetFamilyGroup(_ context.Context, id int64) (*models.FamilyGroup, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, ok := s.groups[id]
	if !ok {
		return nil, nil
	}
	return &g, nil
}

func (s *Store) GetFamilyGroupByInviteCode(_ context.Context, code string) (*models.FamilyGroup, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, g := range s.groups {
		if g.InviteCode == code {
			return &g, nil
		}
	}
	return nil, nil
}

func (s *Store) CreateFamilyGroup(_ context.Context, name, inviteCode string) (*models.FamilyGroup, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, g := range s.groups {
		if g.InviteCode == inviteCode {
			return nil, repository.ErrDuplicateInviteCode
		}
	}

	g := models.FamilyGroup{
		ID:         s.id(),
		Name:       name,
		InviteCode: inviteCode,
		CreatedAt:  s.clock(),
	}
	s.groups[g.ID] = g
	return &g, nil
}

func (s *Store) GetWishlistItem(_ context.Context, id int64) (*models.WishlistItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.items[id]
	if !ok {
		return nil, nil
	}
	return copyItem(item), nil
}

func (s *Store) ListWishlistItemsByUser(_ context.Context, userID int64) ([]models.WishlistItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.filterItems(func(item models.WishlistItem) bool { return item.UserID == userID }), nil
}

func (s *Store) ListWishlistItemsByFamilyGroup(_ context.Context, familyGroupID int64) ([]models.WishlistItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.filterItems(func(item models.WishlistItem) bool {
		owner, ok := s.users[item.UserID]
		return ok && owner.FamilyGroupID != nil && *owner.FamilyGroupID == familyGroupID
	}), nil
}

func (s *Store) filterItems(keep func(models.WishlistItem) bool) []models.WishlistItem {
	var items []models.WishlistItem
	for _, item := range s.items {
		if keep(item) {
			items = append(items, *copyItem(item))
		}
	}
	sort.Slice(items, func(i, j int) bool {
		return newerFirst(items[i].CreatedAt, items[i].ID, items[j].CreatedAt, items[j].ID)
	})
	return items
}

func (s *Store) CreateWishlistItem(_ context.Context, item *models.WishlistItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	item.ID = s.id()
	item.CreatedAt = s.clock()
	item.IsReserved = false
	item.ReservedByUserID = nil
	s.items[item.ID] = *copyItem(*item)
	return nil
}

func (s *Store) UpdateWishlistItem(_ context.Context, item *models.WishlistItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.items[item.ID]
	if !ok {
		return nil
	}
	existing.Name = item.Name
	existing.Description = item.Description
	existing.Price = copyInt64(item.Price)
	existing.Category = item.Category
	existing.Priority = item.Priority
	existing.StoreLink = item.StoreLink
	existing.ImageURL = item.ImageURL
	s.items[item.ID] = existing
	return nil
}

func (s *Store) DeleteWishlistItem(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.items, id)
	notes := s.notes[:0]
	for _, n := range s.notes {
		if n.WishlistItemID != id {
			notes = append(notes, n)
		}
	}
	s.notes = notes
	return nil
}

func (s *Store) ReserveWishlistItem(_ context.Context, itemID, userID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.items[itemID]
	if !ok || item.IsReserved || item.UserID == userID {
		return false, nil
	}
	item.IsReserved = true
	item.ReservedByUserID = &userID
	s.items[itemID] = item
	return true, nil
}

func (s *Store) UnreserveWishlistItem(_ context.Context, itemID, userID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.items[itemID]
	if !ok || !item.IsReservedBy(userID) {
		return false, nil
	}
	item.IsReserved = false
	item.ReservedByUserID = nil
	s.items[itemID] = item
	return true, nil
}

func (s *Store) CreateActivity(_ context.Context, activity *models.Activity) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	activity.ID = s.id()
	activity.CreatedAt = s.clock()
	s.activities = append(s.activities, *activity)
	return nil
}

func (s *Store) ListActivitiesByFamilyGroup(_ context.Context, familyGroupID int64, limit int) ([]models.ActivityView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if limit <= 0 {
		limit = repository.DefaultActivityLimit
	}

	var views []models.ActivityView
	for _, a := range s.activities {
		if a.FamilyGroupID != familyGroupID {
			continue
		}
		actor, ok := s.users[a.UserID]
		if !ok {
			continue
		}
		view := models.ActivityView{Activity: a, UserName: actor.Name}
		if a.TargetUserID != nil {
			if target, ok := s.users[*a.TargetUserID]; ok {
				name := target.Name
				view.TargetUserName = &name
			}
		}
		views = append(views, view)
	}
	sort.Slice(views, func(i, j int) bool {
		return newerFirst(views[i].CreatedAt, views[i].ID, views[j].CreatedAt, views[j].ID)
	})
	if len(views) > limit {
		views = views[:limit]
	}
	return views, nil
}

func (s *Store) CreateSecretNote(_ context.Context, note *models.SecretNote) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	note.ID = s.id()
	note.CreatedAt = s.clock()
	s.notes = append(s.notes, *note)
	return nil
}

func (s *Store) ListSecretNotesByItem(_ context.Context, itemID int64) ([]models.SecretNote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var notes []models.SecretNote
	for _, n := range s.notes {
		if n.WishlistItemID == itemID {
			notes = append(notes, n)
		}
	}
	return notes, nil
}

func newerFirst(at time.Time, aID int64, bt time.Time, bID int64) bool {
	if !at.Equal(bt) {
		return at.After(bt)
	}
	return aID > bID
}

func copyItem(item models.WishlistItem) *models.WishlistItem {
	item.Price = copyInt64(item.Price)
	item.ReservedByUserID = copyInt64(item.ReservedByUserID)
	return &item
}

func copyInt64(v *int64) *int64 {
	if v == nil {
		return nil
	}
	n := *v
	return &n
}
