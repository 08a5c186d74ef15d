// Package storetest holds behaviour checks shared by every repository.Store
// implementation.
package storetest

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"giftcircle/internal/models"
	"giftcircle/internal/repository"
)

// Run exercises newStore with the checks every Store must pass. newStore
// is called once per subtest and must return an empty store.
func Run(t *testing.T, newStore func(t *testing.T) repository.Store) {
	tests := []struct {
		name string
		fn   func(t *testing.T, s repository.Store)
	}{
		{"Users", testUsers},
		{"FamilyGroups", testFamilyGroups},
		{"WishlistItems", testWishlistItems},
		{"Reservations", testReservations},
		{"ConcurrentReserve", testConcurrentReserve},
		{"Activities", testActivities},
		{"SecretNotes", testSecretNotes},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.fn(t, newStore(t))
		})
	}
}

func testUsers(t *testing.T, s repository.Store) {
	ctx := context.Background()

	missing, err := s.GetUser(ctx, 999)
	require.NoError(t, err)
	assert.Nil(t, missing)

	ann, err := s.CreateUser(ctx, "Ann", "ann@example.com", "hash")
	require.NoError(t, err)
	assert.NotZero(t, ann.ID)
	assert.Nil(t, ann.FamilyGroupID)

	_, err = s.CreateUser(ctx, "Ann again", "ann@example.com", "hash")
	assert.ErrorIs(t, err, repository.ErrDuplicateEmail)

	kid, err := s.CreateUser(ctx, "Kid", "", "hash")
	require.NoError(t, err)
	_, err = s.CreateUser(ctx, "Other kid", "", "hash")
	require.NoError(t, err, "users without email must not collide")

	byEmail, err := s.GetUserByEmail(ctx, "ann@example.com")
	require.NoError(t, err)
	require.NotNil(t, byEmail)
	assert.Equal(t, ann.ID, byEmail.ID)
	assert.Equal(t, "hash", byEmail.PasswordHash)

	got, err := s.GetUser(ctx, kid.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "", got.Email)

	group, err := s.CreateFamilyGroup(ctx, "Smith", "ABC123")
	require.NoError(t, err)
	require.NoError(t, s.UpdateUserFamilyGroup(ctx, kid.ID, group.ID))
	require.NoError(t, s.UpdateUserFamilyGroup(ctx, ann.ID, group.ID))

	members, err := s.ListFamilyGroupMembers(ctx, group.ID)
	require.NoError(t, err)
	require.Len(t, members, 2)
	assert.Equal(t, ann.ID, members[0].ID)
	assert.Equal(t, kid.ID, members[1].ID)
	require.NotNil(t, members[1].FamilyGroupID)
	assert.Equal(t, group.ID, *members[1].FamilyGroupID)
}

func testFamilyGroups(t *testing.T, s repository.Store) {
	ctx := context.Background()

	group, err := s.CreateFamilyGroup(ctx, "Smith", "K4J9QZ")
	require.NoError(t, err)

	_, err = s.CreateFamilyGroup(ctx, "Jones", "K4J9QZ")
	assert.ErrorIs(t, err, repository.ErrDuplicateInviteCode)

	byCode, err := s.GetFamilyGroupByInviteCode(ctx, "K4J9QZ")
	require.NoError(t, err)
	require.NotNil(t, byCode)
	assert.Equal(t, group.ID, byCode.ID)
	assert.Equal(t, "Smith", byCode.Name)

	byID, err := s.GetFamilyGroup(ctx, group.ID)
	require.NoError(t, err)
	require.NotNil(t, byID)
	assert.Equal(t, "K4J9QZ", byID.InviteCode)

	missing, err := s.GetFamilyGroupByInviteCode(ctx, "NOPE00")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func price(v int64) *int64 { return &v }

func testWishlistItems(t *testing.T, s repository.Store) {
	ctx := context.Background()

	owner, err := s.CreateUser(ctx, "Ann", "ann@example.com", "hash")
	require.NoError(t, err)
	outsider, err := s.CreateUser(ctx, "Bob", "bob@example.com", "hash")
	require.NoError(t, err)
	group, err := s.CreateFamilyGroup(ctx, "Smith", "ABC123")
	require.NoError(t, err)
	require.NoError(t, s.UpdateUserFamilyGroup(ctx, owner.ID, group.ID))

	first := &models.WishlistItem{UserID: owner.ID, Name: "Bike", Price: price(2000), Priority: models.PriorityHigh}
	require.NoError(t, s.CreateWishlistItem(ctx, first))
	second := &models.WishlistItem{UserID: owner.ID, Name: "Book", Priority: models.PriorityLow}
	require.NoError(t, s.CreateWishlistItem(ctx, second))
	require.NoError(t, s.CreateWishlistItem(ctx, &models.WishlistItem{UserID: outsider.ID, Name: "Kite", Priority: models.PriorityMedium}))

	items, err := s.ListWishlistItemsByUser(ctx, owner.ID)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "Book", items[0].Name, "newest item first")
	assert.Equal(t, "Bike", items[1].Name)
	require.NotNil(t, items[1].Price)
	assert.Equal(t, int64(2000), *items[1].Price)
	assert.Nil(t, items[0].Price)

	groupItems, err := s.ListWishlistItemsByFamilyGroup(ctx, group.ID)
	require.NoError(t, err)
	assert.Len(t, groupItems, 2)

	first.Name = "Red bike"
	first.Price = nil
	first.IsReserved = true
	first.ReservedByUserID = &outsider.ID
	require.NoError(t, s.UpdateWishlistItem(ctx, first))

	got, err := s.GetWishlistItem(ctx, first.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Red bike", got.Name)
	assert.Nil(t, got.Price)
	assert.False(t, got.IsReserved, "update must not touch reservation fields")
	assert.Nil(t, got.ReservedByUserID)

	require.NoError(t, s.DeleteWishlistItem(ctx, first.ID))
	got, err = s.GetWishlistItem(ctx, first.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func testReservations(t *testing.T, s repository.Store) {
	ctx := context.Background()

	owner, err := s.CreateUser(ctx, "Ann", "ann@example.com", "hash")
	require.NoError(t, err)
	bob, err := s.CreateUser(ctx, "Bob", "bob@example.com", "hash")
	require.NoError(t, err)
	cat, err := s.CreateUser(ctx, "Cat", "cat@example.com", "hash")
	require.NoError(t, err)

	item := &models.WishlistItem{UserID: owner.ID, Name: "Bike", Priority: models.PriorityHigh}
	require.NoError(t, s.CreateWishlistItem(ctx, item))

	ok, err := s.ReserveWishlistItem(ctx, item.ID, owner.ID)
	require.NoError(t, err)
	assert.False(t, ok, "owner cannot reserve own item")

	ok, err = s.ReserveWishlistItem(ctx, item.ID, bob.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.ReserveWishlistItem(ctx, item.ID, cat.ID)
	require.NoError(t, err)
	assert.False(t, ok, "already reserved")

	got, err := s.GetWishlistItem(ctx, item.ID)
	require.NoError(t, err)
	assert.True(t, got.IsReservedBy(bob.ID))

	ok, err = s.UnreserveWishlistItem(ctx, item.ID, cat.ID)
	require.NoError(t, err)
	assert.False(t, ok, "only the reserver can unreserve")

	ok, err = s.UnreserveWishlistItem(ctx, item.ID, bob.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	got, err = s.GetWishlistItem(ctx, item.ID)
	require.NoError(t, err)
	assert.False(t, got.IsReserved)
	assert.Nil(t, got.ReservedByUserID)

	ok, err = s.ReserveWishlistItem(ctx, item.ID, cat.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.ReserveWishlistItem(ctx, 999, cat.ID)
	require.NoError(t, err)
	assert.False(t, ok, "missing item")
}

func testConcurrentReserve(t *testing.T, s repository.Store) {
	ctx := context.Background()

	owner, err := s.CreateUser(ctx, "Ann", "ann@example.com", "hash")
	require.NoError(t, err)
	item := &models.WishlistItem{UserID: owner.ID, Name: "Bike", Priority: models.PriorityHigh}
	require.NoError(t, s.CreateWishlistItem(ctx, item))

	const contenders = 8
	var reservers []int64
	for i := 0; i < contenders; i++ {
		u, err := s.CreateUser(ctx, "Guest", "", "hash")
		require.NoError(t, err)
		reservers = append(reservers, u.ID)
	}

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
	)
	for _, id := range reservers {
		wg.Add(1)
		go func(userID int64) {
			defer wg.Done()
			ok, err := s.ReserveWishlistItem(ctx, item.ID, userID)
			assert.NoError(t, err)
			if ok {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}(id)
	}
	wg.Wait()

	assert.Equal(t, 1, wins, "exactly one reservation must win")
	got, err := s.GetWishlistItem(ctx, item.ID)
	require.NoError(t, err)
	assert.True(t, got.IsReserved)
	assert.NotNil(t, got.ReservedByUserID)
}

func testActivities(t *testing.T, s repository.Store) {
	ctx := context.Background()

	ann, err := s.CreateUser(ctx, "Ann", "ann@example.com", "hash")
	require.NoError(t, err)
	bob, err := s.CreateUser(ctx, "Bob", "bob@example.com", "hash")
	require.NoError(t, err)
	group, err := s.CreateFamilyGroup(ctx, "Smith", "ABC123")
	require.NoError(t, err)
	other, err := s.CreateFamilyGroup(ctx, "Jones", "XYZ789")
	require.NoError(t, err)

	require.NoError(t, s.CreateActivity(ctx, &models.Activity{UserID: ann.ID, FamilyGroupID: group.ID, Action: models.ActionCreatedGroup}))
	require.NoError(t, s.CreateActivity(ctx, &models.Activity{UserID: bob.ID, FamilyGroupID: other.ID, Action: models.ActionCreatedGroup}))
	for i := 0; i < 11; i++ {
		itemName := "Bike"
		require.NoError(t, s.CreateActivity(ctx, &models.Activity{
			UserID:        bob.ID,
			FamilyGroupID: group.ID,
			Action:        models.ActionReservedItem,
			ItemName:      &itemName,
			TargetUserID:  &ann.ID,
		}))
	}

	all, err := s.ListActivitiesByFamilyGroup(ctx, group.ID, 100)
	require.NoError(t, err)
	require.Len(t, all, 12)
	assert.Equal(t, models.ActionCreatedGroup, all[len(all)-1].Action, "oldest last")
	assert.Equal(t, "Ann", all[len(all)-1].UserName)
	assert.Nil(t, all[len(all)-1].TargetUserName)

	newest := all[0]
	assert.Equal(t, models.ActionReservedItem, newest.Action)
	assert.Equal(t, "Bob", newest.UserName)
	require.NotNil(t, newest.TargetUserName)
	assert.Equal(t, "Ann", *newest.TargetUserName)
	require.NotNil(t, newest.ItemName)
	assert.Equal(t, "Bike", *newest.ItemName)

	defaulted, err := s.ListActivitiesByFamilyGroup(ctx, group.ID, 0)
	require.NoError(t, err)
	assert.Len(t, defaulted, repository.DefaultActivityLimit)

	limited, err := s.ListActivitiesByFamilyGroup(ctx, group.ID, 3)
	require.NoError(t, err)
	assert.Len(t, limited, 3)
	assert.Equal(t, all[0].ID, limited[0].ID)
}

func testSecretNotes(t *testing.T, s repository.Store) {
	ctx := context.Background()

	owner, err := s.CreateUser(ctx, "Ann", "ann@example.com", "hash")
	require.NoError(t, err)
	bob, err := s.CreateUser(ctx, "Bob", "bob@example.com", "hash")
	require.NoError(t, err)

	item := &models.WishlistItem{UserID: owner.ID, Name: "Bike", Priority: models.PriorityHigh}
	require.NoError(t, s.CreateWishlistItem(ctx, item))

	first := &models.SecretNote{WishlistItemID: item.ID, UserID: bob.ID, Note: "blue one"}
	require.NoError(t, s.CreateSecretNote(ctx, first))
	assert.NotZero(t, first.ID)
	require.NoError(t, s.CreateSecretNote(ctx, &models.SecretNote{WishlistItemID: item.ID, UserID: bob.ID, Note: "size M"}))

	notes, err := s.ListSecretNotesByItem(ctx, item.ID)
	require.NoError(t, err)
	require.Len(t, notes, 2)
	assert.Equal(t, "blue one", notes[0].Note)
	assert.Equal(t, "size M", notes[1].Note)

	require.NoError(t, s.DeleteWishlistItem(ctx, item.ID))
	notes, err = s.ListSecretNotesByItem(ctx, item.ID)
	require.NoError(t, err)
	assert.Empty(t, notes, "notes go with their item")
}
