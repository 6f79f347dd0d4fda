package memberbus_test

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/printdesk/printdesk/business/domain/memberbus"
	"github.com/printdesk/printdesk/business/sdk/sqldb"
	"github.com/printdesk/printdesk/business/types/memberstatus"
	"github.com/printdesk/printdesk/business/types/role"
	"github.com/printdesk/printdesk/foundation/logger"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	memberships  []memberbus.Membership
	userDefaults map[uuid.UUID]*uuid.UUID
}

func (s *fakeStore) NewWithTx(tx sqldb.CommitRollbacker) (memberbus.Storer, error) {
	return s, nil
}

func (s *fakeStore) Upsert(_ context.Context, m memberbus.Membership) error {
	for i, existing := range s.memberships {
		if existing.UserID == m.UserID && existing.WorkgroupID == m.WorkgroupID {
			s.memberships[i] = m
			return nil
		}
	}
	s.memberships = append(s.memberships, m)
	return nil
}

func (s *fakeStore) Update(_ context.Context, m memberbus.Membership) error {
	for i, existing := range s.memberships {
		if existing.UserID == m.UserID && existing.WorkgroupID == m.WorkgroupID {
			s.memberships[i] = m
		}
	}
	return nil
}

func (s *fakeStore) Delete(_ context.Context, m memberbus.Membership) error {
	for i, existing := range s.memberships {
		if existing.UserID == m.UserID && existing.WorkgroupID == m.WorkgroupID {
			s.memberships = append(s.memberships[:i], s.memberships[i+1:]...)
			return nil
		}
	}
	return nil
}

func (s *fakeStore) ClearDefault(_ context.Context, userID uuid.UUID) error {
	for i, m := range s.memberships {
		if m.UserID == userID {
			s.memberships[i].IsDefault = false
		}
	}
	return nil
}

func (s *fakeStore) SetUserDefault(_ context.Context, userID uuid.UUID, workgroupID *uuid.UUID) error {
	if s.userDefaults == nil {
		s.userDefaults = make(map[uuid.UUID]*uuid.UUID)
	}
	s.userDefaults[userID] = workgroupID
	return nil
}

func (s *fakeStore) QueryByKey(_ context.Context, userID uuid.UUID, workgroupID uuid.UUID) (memberbus.Membership, error) {
	for _, m := range s.memberships {
		if m.UserID == userID && m.WorkgroupID == workgroupID {
			return m, nil
		}
	}
	return memberbus.Membership{}, memberbus.ErrNotFound
}

func (s *fakeStore) QueryByUser(_ context.Context, userID uuid.UUID) ([]memberbus.Membership, error) {
	var ms []memberbus.Membership
	for _, m := range s.memberships {
		if m.UserID == userID {
			ms = append(ms, m)
		}
	}
	return ms, nil
}

func (s *fakeStore) QueryByWorkgroup(_ context.Context, workgroupID uuid.UUID) ([]memberbus.Membership, error) {
	var ms []memberbus.Membership
	for _, m := range s.memberships {
		if m.WorkgroupID == workgroupID {
			ms = append(ms, m)
		}
	}
	return ms, nil
}

func (s *fakeStore) ExistsRoleAnywhere(_ context.Context, userID uuid.UUID, r role.Role) (bool, error) {
	for _, m := range s.memberships {
		if m.UserID == userID && m.Role.Equal(r) && m.Status.Equal(memberstatus.Active) {
			return true, nil
		}
	}
	return false, nil
}

// =============================================================================

func newTestCore(t *testing.T) (*memberbus.Core, *fakeStore) {
	t.Helper()

	log := logger.New(io.Discard, logger.LevelInfo, "TEST", nil)
	store := &fakeStore{}

	return memberbus.NewCore(log, store), store
}

func Test_Apply_CollapsesToUpdate(t *testing.T) {
	core, store := newTestCore(t)
	ctx := context.Background()

	userID := uuid.New()
	wgID := uuid.New()

	_, err := core.Apply(ctx, memberbus.NewMembership{
		UserID:      userID,
		WorkgroupID: wgID,
		Role:        role.Member,
		Status:      memberstatus.Invited,
	})
	require.NoError(t, err)

	// Applying again for the same pair must not create a second row.
	m, err := core.Apply(ctx, memberbus.NewMembership{
		UserID:      userID,
		WorkgroupID: wgID,
		Role:        role.Designer,
		Status:      memberstatus.Active,
	})
	require.NoError(t, err)

	require.Len(t, store.memberships, 1)
	require.True(t, m.Role.Equal(role.Designer))
	require.True(t, m.Status.Equal(memberstatus.Active))
}

func Test_Apply_DefaultIsExclusive(t *testing.T) {
	core, store := newTestCore(t)
	ctx := context.Background()

	userID := uuid.New()
	firstWG := uuid.New()
	secondWG := uuid.New()

	_, err := core.Apply(ctx, memberbus.NewMembership{
		UserID:      userID,
		WorkgroupID: firstWG,
		Role:        role.Member,
		Status:      memberstatus.Active,
		IsDefault:   true,
	})
	require.NoError(t, err)

	_, err = core.Apply(ctx, memberbus.NewMembership{
		UserID:      userID,
		WorkgroupID: secondWG,
		Role:        role.Member,
		Status:      memberstatus.Active,
		IsDefault:   true,
	})
	require.NoError(t, err)

	var defaults int
	for _, m := range store.memberships {
		if m.IsDefault {
			defaults++
			require.Equal(t, secondWG, m.WorkgroupID)
		}
	}
	require.Equal(t, 1, defaults)
}

func Test_Update_SettingDefaultClearsOthers(t *testing.T) {
	core, _ := newTestCore(t)
	ctx := context.Background()

	userID := uuid.New()
	firstWG := uuid.New()
	secondWG := uuid.New()

	_, err := core.Apply(ctx, memberbus.NewMembership{
		UserID:      userID,
		WorkgroupID: firstWG,
		Role:        role.Member,
		Status:      memberstatus.Active,
		IsDefault:   true,
	})
	require.NoError(t, err)

	second, err := core.Apply(ctx, memberbus.NewMembership{
		UserID:      userID,
		WorkgroupID: secondWG,
		Role:        role.Member,
		Status:      memberstatus.Active,
	})
	require.NoError(t, err)

	isDefault := true
	updated, err := core.Update(ctx, second, memberbus.UpdateMembership{IsDefault: &isDefault})
	require.NoError(t, err)
	require.True(t, updated.IsDefault)

	first, err := core.QueryByKey(ctx, userID, firstWG)
	require.NoError(t, err)
	require.False(t, first.IsDefault)
}

func Test_UserDefaultColumnFollowsMemberships(t *testing.T) {
	core, store := newTestCore(t)
	ctx := context.Background()

	userID := uuid.New()
	firstWG := uuid.New()
	secondWG := uuid.New()

	// Applying a default membership records it on the user.
	m, err := core.Apply(ctx, memberbus.NewMembership{
		UserID:      userID,
		WorkgroupID: firstWG,
		Role:        role.Member,
		Status:      memberstatus.Active,
		IsDefault:   true,
	})
	require.NoError(t, err)
	require.NotNil(t, store.userDefaults[userID])
	require.Equal(t, firstWG, *store.userDefaults[userID])

	// Moving the flag to a second membership moves the user's copy.
	second, err := core.Apply(ctx, memberbus.NewMembership{
		UserID:      userID,
		WorkgroupID: secondWG,
		Role:        role.Member,
		Status:      memberstatus.Active,
	})
	require.NoError(t, err)

	isDefault := true
	second, err = core.Update(ctx, second, memberbus.UpdateMembership{IsDefault: &isDefault})
	require.NoError(t, err)
	require.Equal(t, secondWG, *store.userDefaults[userID])

	// Unsetting the flag clears the user's copy.
	isDefault = false
	second, err = core.Update(ctx, second, memberbus.UpdateMembership{IsDefault: &isDefault})
	require.NoError(t, err)
	require.Nil(t, store.userDefaults[userID])

	// Removing a default membership clears it as well.
	m, err = core.QueryByKey(ctx, userID, firstWG)
	require.NoError(t, err)

	isDefault = true
	m, err = core.Update(ctx, m, memberbus.UpdateMembership{IsDefault: &isDefault})
	require.NoError(t, err)
	require.Equal(t, firstWG, *store.userDefaults[userID])

	require.NoError(t, core.Remove(ctx, m))
	require.Nil(t, store.userDefaults[userID])
}

func Test_QueryActive_FiltersStatus(t *testing.T) {
	core, _ := newTestCore(t)
	ctx := context.Background()

	userID := uuid.New()
	wgID := uuid.New()

	_, err := core.Apply(ctx, memberbus.NewMembership{
		UserID:      userID,
		WorkgroupID: wgID,
		Role:        role.Member,
		Status:      memberstatus.Invited,
	})
	require.NoError(t, err)

	_, err = core.QueryActive(ctx, userID, wgID)
	require.ErrorIs(t, err, memberbus.ErrNotFound)

	_, err = core.QueryByKey(ctx, userID, wgID)
	require.NoError(t, err)
}

func Test_Default_MostRecentJoinWins(t *testing.T) {
	core, store := newTestCore(t)
	ctx := context.Background()

	userID := uuid.New()
	olderWG := uuid.New()
	newerWG := uuid.New()

	now := time.Now()

	// Corrupted state with two defaults, seeded directly past the core.
	store.memberships = append(store.memberships,
		memberbus.Membership{
			UserID:      userID,
			WorkgroupID: olderWG,
			Role:        role.Member,
			Status:      memberstatus.Active,
			IsDefault:   true,
			JoinedAt:    now.Add(-time.Hour),
		},
		memberbus.Membership{
			UserID:      userID,
			WorkgroupID: newerWG,
			Role:        role.Member,
			Status:      memberstatus.Active,
			IsDefault:   true,
			JoinedAt:    now,
		},
	)

	m, err := core.Default(ctx, userID)
	require.NoError(t, err)
	require.Equal(t, newerWG, m.WorkgroupID)
}

func Test_Default_IgnoresInactive(t *testing.T) {
	core, store := newTestCore(t)
	ctx := context.Background()

	userID := uuid.New()

	store.memberships = append(store.memberships, memberbus.Membership{
		UserID:      userID,
		WorkgroupID: uuid.New(),
		Role:        role.Member,
		Status:      memberstatus.Suspended,
		IsDefault:   true,
		JoinedAt:    time.Now(),
	})

	_, err := core.Default(ctx, userID)
	require.ErrorIs(t, err, memberbus.ErrNotFound)
}

func Test_HasRoleAnywhere(t *testing.T) {
	core, store := newTestCore(t)
	ctx := context.Background()

	userID := uuid.New()

	store.memberships = append(store.memberships, memberbus.Membership{
		UserID:      userID,
		WorkgroupID: uuid.New(),
		Role:        role.SuperAdmin,
		Status:      memberstatus.Active,
		JoinedAt:    time.Now(),
	})

	has, err := core.HasRoleAnywhere(ctx, userID, role.SuperAdmin)
	require.NoError(t, err)
	require.True(t, has)

	has, err = core.HasRoleAnywhere(ctx, uuid.New(), role.SuperAdmin)
	require.NoError(t, err)
	require.False(t, has)
}
